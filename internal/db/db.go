package db

import (
	"fmt"
	"time"

	"platewatch/internal/config"
	gormModels "platewatch/internal/models/gorm"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// ORM is the GORM handle used by the CRUD path.
var ORM *gorm.DB

// DB is the sqlx handle used by the raw listing/search queries. Both point
// at the same database.
var DB *sqlx.DB

// Init opens both database handles and migrates the schema. Postgres is
// used when the configured URL says so, sqlite otherwise.
func Init(cfg *config.Config) error {
	var dialector gorm.Dialector
	var driver, dsn string

	if cfg.IsPostgres() {
		dialector = postgres.Open(cfg.DatabaseURL)
		driver, dsn = "postgres", cfg.DatabaseURL
	} else {
		dialector = sqlite.Open(cfg.DatabaseURL)
		driver, dsn = "sqlite3", cfg.DatabaseURL
	}

	orm, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := orm.AutoMigrate(&gormModels.Sighting{}); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	ORM = orm

	// Postgres in a fresh container can take a moment to accept connections.
	var sdb *sqlx.DB
	for i := 0; i < 10; i++ {
		sdb, err = sqlx.Connect(driver, dsn)
		if err == nil {
			break
		}
		time.Sleep(500 * time.Millisecond)
	}
	if err != nil {
		return fmt.Errorf("failed to connect via sqlx: %w", err)
	}
	DB = sdb

	return nil
}

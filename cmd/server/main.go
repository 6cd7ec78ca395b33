package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"platewatch/internal/api"
	"platewatch/internal/config"
	"platewatch/internal/db"
	"platewatch/internal/logging"
	"platewatch/internal/metrics"
	"platewatch/internal/routes"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	log.SetOutput(os.Stdout)
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := logging.Init(cfg.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logging.Close()

	logging.Info("PlateWatch starting up",
		"environment", cfg.Env,
		"timestamp", time.Now().Format(time.RFC3339),
	)

	if err := db.Init(cfg); err != nil {
		logging.Error("Failed to connect to database", "error", err.Error())
		log.Fatalf("Failed to connect to database: %v", err)
	}
	logging.Info("Connected to database", "postgres", cfg.IsPostgres())

	metricsReg := metrics.NewMetricsRegistry()

	deps, err := api.InitDependencies(cfg, db.ORM, db.DB, metricsReg)
	if err != nil {
		logging.Error("Failed to initialize dependencies", "error", err.Error())
		log.Fatalf("Failed to initialize dependencies: %v", err)
	}
	defer deps.Services.Cache.Close()

	upSince := time.Now()
	router := routes.RegisterRoutes(cfg, deps, upSince)

	// Metrics endpoint lives outside the chi router
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", router)
	logging.Info("Prometheus metrics endpoint registered at /metrics")

	addr := fmt.Sprintf(":%d", cfg.Port)
	logging.Info("Server starting",
		"port", cfg.Port,
		"environment", cfg.Env,
	)

	log.Fatal(http.ListenAndServe(addr, mux))
}

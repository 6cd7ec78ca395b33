package gorm

import "time"

// Sighting is one observed-vehicle record, the only persisted entity.
// State and LicensePlate are always stored upper-cased; ImageFilename, when
// set, names a file in the image store (maintained by the service layer, not
// a database constraint).
type Sighting struct {
	ID            int64      `gorm:"column:id;primaryKey;autoIncrement"`
	State         string     `gorm:"column:state;size:2;not null"`
	LicensePlate  string     `gorm:"column:license_plate;size:15;not null"`
	CarMake       string     `gorm:"column:car_make;size:50;not null"`
	CarModel      string     `gorm:"column:car_model;size:50;not null"`
	Color         string     `gorm:"column:color;size:30;not null"`
	Location      *string    `gorm:"column:location;size:200"`
	Timestamp     *time.Time `gorm:"column:timestamp"`
	Notes         *string    `gorm:"column:notes;type:text"`
	ImageFilename *string    `gorm:"column:image_filename;size:255"`
}

// TableName specifies the table name for GORM
func (Sighting) TableName() string {
	return "sightings"
}

package constants

const (
	SelectSightingsBase = `
	SELECT id, state, license_plate, car_make, car_model, color, location, timestamp, notes, image_filename
	FROM sightings
	`
)

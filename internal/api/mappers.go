package api

import (
	"platewatch/internal/models/dtos"
	"platewatch/internal/models/entities"
	gormModels "platewatch/internal/models/gorm"
)

func toSightingResponse(s gormModels.Sighting) dtos.SightingResponse {
	resp := dtos.SightingResponse{
		ID:            s.ID,
		State:         s.State,
		LicensePlate:  s.LicensePlate,
		CarMake:       s.CarMake,
		CarModel:      s.CarModel,
		Color:         s.Color,
		Location:      s.Location,
		Timestamp:     s.Timestamp,
		Notes:         s.Notes,
		ImageFilename: s.ImageFilename,
	}
	if s.ImageFilename != nil {
		resp.ImageURL = "/image/" + *s.ImageFilename
	}
	return resp
}

func entityToSightingResponse(s entities.Sighting) dtos.SightingResponse {
	resp := dtos.SightingResponse{
		ID:            s.ID,
		State:         s.State,
		LicensePlate:  s.LicensePlate,
		CarMake:       s.CarMake,
		CarModel:      s.CarModel,
		Color:         s.Color,
		Location:      s.Location,
		Timestamp:     s.Timestamp,
		Notes:         s.Notes,
		ImageFilename: s.ImageFilename,
	}
	if s.ImageFilename != nil {
		resp.ImageURL = "/image/" + *s.ImageFilename
	}
	return resp
}

func entitiesToSightingResponses(rows []entities.Sighting) []dtos.SightingResponse {
	out := make([]dtos.SightingResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, entityToSightingResponse(row))
	}
	return out
}

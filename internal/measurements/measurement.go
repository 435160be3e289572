package measurements

import (
	"errors"
	"strings"
	"time"
)

var ErrWeightRequired = errors.New("weight is required")

// BodyMeasurement is append only.
type BodyMeasurement struct {
	ID                string    `json:"id"`
	UserID            string    `json:"userId"`
	Date              time.Time `json:"date"`
	Weight            *float64  `json:"weight,omitempty"`
	BodyFatPercentage *float64  `json:"bodyFatPercentage,omitempty"`
	Notes             string    `json:"notes,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
}

type NewMeasurementRequest struct {
	Date              *time.Time `json:"date"`
	Weight            *float64   `json:"weight"`
	BodyFatPercentage *float64   `json:"bodyFatPercentage"`
	Notes             string     `json:"notes"`
}

func (r NewMeasurementRequest) ToMeasurement(userID string, now time.Time) (*BodyMeasurement, error) {
	if r.Weight == nil || *r.Weight <= 0 {
		return nil, ErrWeightRequired
	}
	if r.BodyFatPercentage != nil && (*r.BodyFatPercentage < 0 || *r.BodyFatPercentage > 100) {
		return nil, errors.New("body fat percentage out of range")
	}

	m := &BodyMeasurement{
		UserID:            userID,
		Date:              now,
		Weight:            r.Weight,
		BodyFatPercentage: r.BodyFatPercentage,
		Notes:             strings.TrimSpace(r.Notes),
		CreatedAt:         now,
	}
	if r.Date != nil && !r.Date.IsZero() {
		m.Date = *r.Date
	}
	return m, nil
}

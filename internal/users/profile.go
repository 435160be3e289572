package users

import (
	"errors"
	"strings"
	"time"
)

var ErrInvalidProfile = errors.New("invalid profile")

// Profile is the per user document of the users collection, keyed by the account id.
type Profile struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"displayName"`
	PhotoURL    string    `json:"photoURL,omitempty"`
	Age         *int      `json:"age,omitempty"`
	Gender      string    `json:"gender,omitempty"`
	Height      *float64  `json:"height,omitempty"`
	Weight      *float64  `json:"weight,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// UpdateProfileRequest carries the editable profile fields, nil fields stay unchanged.
type UpdateProfileRequest struct {
	DisplayName *string  `json:"displayName"`
	Age         *int     `json:"age"`
	Gender      *string  `json:"gender"`
	Height      *float64 `json:"height"`
	Weight      *float64 `json:"weight"`
}

// Fields returns the partial document update, validated.
func (r UpdateProfileRequest) Fields() (map[string]any, error) {
	fields := map[string]any{}
	if r.DisplayName != nil {
		name := strings.TrimSpace(*r.DisplayName)
		if name == "" {
			return nil, ErrInvalidProfile
		}
		fields["displayName"] = name
	}
	if r.Age != nil {
		if *r.Age <= 0 || *r.Age > 150 {
			return nil, ErrInvalidProfile
		}
		fields["age"] = *r.Age
	}
	if r.Gender != nil {
		fields["gender"] = strings.TrimSpace(*r.Gender)
	}
	if r.Height != nil {
		if *r.Height <= 0 {
			return nil, ErrInvalidProfile
		}
		fields["height"] = *r.Height
	}
	if r.Weight != nil {
		if *r.Weight <= 0 {
			return nil, ErrInvalidProfile
		}
		fields["weight"] = *r.Weight
	}
	return fields, nil
}

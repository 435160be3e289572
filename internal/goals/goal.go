package goals

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrTitleRequired = errors.New("goal title is required")
	ErrGoalNotFound  = errors.New("goal not found")
	ErrEmptyUpdate   = errors.New("nothing to update")
)

const DefaultCategory = "other"

// Goal is never completed implicitly, Completed is only set by the user.
type Goal struct {
	ID           string     `json:"id"`
	UserID       string     `json:"userId"`
	Title        string     `json:"title"`
	Description  string     `json:"description,omitempty"`
	Category     string     `json:"category"`
	TargetValue  *float64   `json:"targetValue,omitempty"`
	CurrentValue *float64   `json:"currentValue,omitempty"`
	TargetDate   *time.Time `json:"targetDate,omitempty"`
	Completed    bool       `json:"completed"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

type NewGoalRequest struct {
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Category     string     `json:"category"`
	TargetValue  *float64   `json:"targetValue"`
	CurrentValue *float64   `json:"currentValue"`
	TargetDate   *time.Time `json:"targetDate"`
}

func (r NewGoalRequest) ToGoal(userID string, now time.Time) (*Goal, error) {
	title := strings.TrimSpace(r.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}

	category := strings.TrimSpace(r.Category)
	if category == "" {
		category = DefaultCategory
	}
	current := 0.0
	if r.CurrentValue != nil {
		current = *r.CurrentValue
	}

	return &Goal{
		UserID:       userID,
		Title:        title,
		Description:  strings.TrimSpace(r.Description),
		Category:     category,
		TargetValue:  r.TargetValue,
		CurrentValue: &current,
		TargetDate:   r.TargetDate,
		Completed:    false,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// UpdateGoalRequest is the manual progress update of a goal.
type UpdateGoalRequest struct {
	CurrentValue *float64 `json:"currentValue"`
	Completed    *bool    `json:"completed"`
}

func (r UpdateGoalRequest) Fields() (map[string]any, error) {
	fields := map[string]any{}
	if r.CurrentValue != nil {
		fields["currentValue"] = *r.CurrentValue
	}
	if r.Completed != nil {
		fields["completed"] = *r.Completed
	}
	if len(fields) == 0 {
		return nil, ErrEmptyUpdate
	}
	return fields, nil
}

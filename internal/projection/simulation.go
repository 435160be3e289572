package projection

import (
	"time"

	"github.com/2beens/bodyforecast/internal/stats"
)

// Simulation is a stored body projection, immutable once created.
type Simulation struct {
	ID               string                `json:"id"`
	UserID           string                `json:"userId"`
	OriginalImageURL string                `json:"originalImageUrl"`
	ImageURL         string                `json:"imageUrl"`
	ProjectionText   string                `json:"projectionText"`
	WorkoutStats     stats.TrainingSummary `json:"workoutStats"`
	CreatedAt        time.Time             `json:"createdAt"`
}

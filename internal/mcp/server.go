package mcp

import (
	"github.com/2beens/bodyforecast/internal/stats"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// NewServer builds an MCP server with training statistics tools. It is mounted
// by the main backend at /mcp and run over stdio by cmd/stats_mcp.
func NewServer(workouts WorkoutsRepo, measurementsRepo MeasurementsRepo, rnd stats.Picker) *mcp.Server {
	h := NewHandler(NewStatsService(workouts, measurementsRepo, rnd))
	s := mcp.NewServer(&mcp.Implementation{
		Name:    "bodyforecast-stats",
		Version: "1.0.0",
	}, nil)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_training_summary",
		Description: "Returns the training summary of a user: total workouts, workouts in the last 7 days, exercise entries, average exercises per workout, total sets, average reps and top muscle groups by set count. This is the same summary fed into the body projection prompt.",
	}, h.GetTrainingSummaryTool())

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_weekly_counts",
		Description: "Returns the number of workouts per week, oldest week first. Arg: user_id; optional: weeks (default 4).",
	}, h.GetWeeklyCountsTool())

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_streak",
		Description: "Returns the current streak of consecutive training days for a user. A streak survives until the end of the day after the last workout.",
	}, h.GetStreakTool())

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_top_exercises",
		Description: "Returns the most trained exercises by total sets, with total reps and rounded average reps. Arg: user_id; optional: limit (default 3).",
	}, h.GetTopExercisesTool())

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_exercise_progress",
		Description: "Returns the max weight lifted per workout for the given exercise names, ascending by date. Arg: user_id; optional: exercises (default bench press, squat, deadlift).",
	}, h.GetExerciseProgressTool())

	mcp.AddTool(s, &mcp.Tool{
		Name:        "suggest_next_workout",
		Description: "Suggests a muscle group not trained in the latest workout, with canonical exercises for it. The pick is random among uncovered groups.",
	}, h.SuggestNextWorkoutTool())

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_body_measurements",
		Description: "Returns the body measurements (weight, body fat percentage, notes) of a user, oldest first.",
	}, h.GetBodyMeasurementsTool())

	mcp.AddTool(s, &mcp.Tool{
		Name:        "classify_exercise",
		Description: "Classifies a free text exercise name into a muscle group (chest, back, legs, shoulders, arms, abs, other) using the keyword table.",
	}, h.ClassifyExerciseTool())

	return s
}

package mcp

import (
	"context"
	"encoding/json"

	"github.com/2beens/bodyforecast/internal/stats"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Handler handles MCP tool requests: parses input, calls the service, formats the MCP result.
type Handler struct {
	service statsService
}

func NewHandler(service statsService) *Handler {
	return &Handler{
		service: service,
	}
}

// UserInput is the input of every per-user tool without extra arguments.
type UserInput struct {
	UserID string `json:"user_id" jsonschema:"Id of the user whose history is analyzed"`
}

type WeeklyCountsInput struct {
	UserID string `json:"user_id" jsonschema:"Id of the user whose history is analyzed"`
	Weeks  int    `json:"weeks,omitempty" jsonschema:"Number of weeks to bucket, defaults to 4"`
}

type TopExercisesInput struct {
	UserID string `json:"user_id" jsonschema:"Id of the user whose history is analyzed"`
	Limit  int    `json:"limit,omitempty" jsonschema:"How many exercises to return, defaults to 3"`
}

type ExerciseProgressInput struct {
	UserID    string   `json:"user_id" jsonschema:"Id of the user whose history is analyzed"`
	Exercises []string `json:"exercises,omitempty" jsonschema:"Exercise names to chart, defaults to the main lifts"`
}

type ClassifyInput struct {
	ExerciseName string `json:"exercise_name" jsonschema:"Free text exercise name (e.g. ベンチプレス)"`
}

type classification struct {
	MuscleGroup stats.MuscleGroup `json:"muscleGroup"`
	Label       string            `json:"label"`
}

func errorResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		IsError: true,
	}
}

func jsonResult(v any) *mcp.CallToolResult {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errorResult("Error encoding response: " + err.Error())
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(raw)}},
	}
}

// GetTrainingSummaryTool returns the MCP tool handler for get_training_summary.
func (h *Handler) GetTrainingSummaryTool() func(context.Context, *mcp.CallToolRequest, UserInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in UserInput) (*mcp.CallToolResult, any, error) {
		summary, err := h.service.Summary(ctx, in.UserID)
		if err != nil {
			return errorResult("Error computing summary: " + err.Error()), nil, nil
		}
		return jsonResult(summary), nil, nil
	}
}

// GetWeeklyCountsTool returns the MCP tool handler for get_weekly_counts.
func (h *Handler) GetWeeklyCountsTool() func(context.Context, *mcp.CallToolRequest, WeeklyCountsInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in WeeklyCountsInput) (*mcp.CallToolResult, any, error) {
		counts, err := h.service.WeeklyCounts(ctx, in.UserID, in.Weeks)
		if err != nil {
			return errorResult("Error computing weekly counts: " + err.Error()), nil, nil
		}
		return jsonResult(counts), nil, nil
	}
}

// GetStreakTool returns the MCP tool handler for get_streak.
func (h *Handler) GetStreakTool() func(context.Context, *mcp.CallToolRequest, UserInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in UserInput) (*mcp.CallToolResult, any, error) {
		streak, err := h.service.Streak(ctx, in.UserID)
		if err != nil {
			return errorResult("Error computing streak: " + err.Error()), nil, nil
		}
		return jsonResult(map[string]int{"streakDays": streak}), nil, nil
	}
}

// GetTopExercisesTool returns the MCP tool handler for get_top_exercises.
func (h *Handler) GetTopExercisesTool() func(context.Context, *mcp.CallToolRequest, TopExercisesInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in TopExercisesInput) (*mcp.CallToolResult, any, error) {
		top, err := h.service.TopExercises(ctx, in.UserID, in.Limit)
		if err != nil {
			return errorResult("Error computing top exercises: " + err.Error()), nil, nil
		}
		return jsonResult(top), nil, nil
	}
}

// GetExerciseProgressTool returns the MCP tool handler for get_exercise_progress.
func (h *Handler) GetExerciseProgressTool() func(context.Context, *mcp.CallToolRequest, ExerciseProgressInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in ExerciseProgressInput) (*mcp.CallToolResult, any, error) {
		progress, err := h.service.ExerciseProgress(ctx, in.UserID, in.Exercises)
		if err != nil {
			return errorResult("Error computing exercise progress: " + err.Error()), nil, nil
		}
		return jsonResult(progress), nil, nil
	}
}

// SuggestNextWorkoutTool returns the MCP tool handler for suggest_next_workout.
func (h *Handler) SuggestNextWorkoutTool() func(context.Context, *mcp.CallToolRequest, UserInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in UserInput) (*mcp.CallToolResult, any, error) {
		suggestion, err := h.service.SuggestNextWorkout(ctx, in.UserID)
		if err != nil {
			return errorResult("Error suggesting workout: " + err.Error()), nil, nil
		}
		if suggestion == nil {
			return &mcp.CallToolResult{
				Content: []mcp.Content{&mcp.TextContent{Text: "No suggestion: no workouts yet or every muscle group was covered."}},
			}, nil, nil
		}
		return jsonResult(suggestion), nil, nil
	}
}

// GetBodyMeasurementsTool returns the MCP tool handler for get_body_measurements.
func (h *Handler) GetBodyMeasurementsTool() func(context.Context, *mcp.CallToolRequest, UserInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in UserInput) (*mcp.CallToolResult, any, error) {
		list, err := h.service.BodyMeasurements(ctx, in.UserID)
		if err != nil {
			return errorResult("Error listing measurements: " + err.Error()), nil, nil
		}
		return jsonResult(list), nil, nil
	}
}

// ClassifyExerciseTool returns the MCP tool handler for classify_exercise. It needs no storage.
func (h *Handler) ClassifyExerciseTool() func(context.Context, *mcp.CallToolRequest, ClassifyInput) (*mcp.CallToolResult, any, error) {
	return func(_ context.Context, _ *mcp.CallToolRequest, in ClassifyInput) (*mcp.CallToolResult, any, error) {
		if in.ExerciseName == "" {
			return errorResult("exercise_name is required"), nil, nil
		}
		group := stats.ClassifyMuscleGroup(in.ExerciseName)
		return jsonResult(classification{
			MuscleGroup: group,
			Label:       group.Label(),
		}), nil, nil
	}
}

package projection

import (
	"fmt"
	"strings"

	"github.com/2beens/bodyforecast/internal/stats"
)

const fallbackMuscleFocus = "全体的な筋肉"

// BuildPrompt composes the Japanese projection prompt for the given training
// summary and the URL of the uploaded current body image.
func BuildPrompt(summary stats.TrainingSummary, imageURL string) string {
	focus := fallbackMuscleFocus
	if dominant := summary.DominantMuscleGroup(); dominant != nil {
		focus = dominant.Name
	}

	var groups []string
	for _, g := range summary.TopMuscleGroups {
		groups = append(groups, fmt.Sprintf("%s(%dセット)", g.Name, g.SetCount))
	}
	topGroups := "なし"
	if len(groups) > 0 {
		topGroups = strings.Join(groups, "、")
	}

	var sb strings.Builder
	sb.WriteString("あなたは筋トレシミュレーションAIです。ユーザーの現在の体型写真から、トレーニング内容に基づいて1ヶ月後の体型を予測してください。\n\n")
	sb.WriteString("筋トレ情報:\n")
	fmt.Fprintf(&sb, "- 合計ワークアウト数: %d回\n", summary.TotalWorkouts)
	fmt.Fprintf(&sb, "- 直近1週間のワークアウト数: %d回\n", summary.LastWeekWorkouts)
	fmt.Fprintf(&sb, "- 種目数の合計: %d種目 (1回あたり平均%.2f種目)\n", summary.TotalExercises, summary.AvgExercisesPerWorkout)
	fmt.Fprintf(&sb, "- 合計セット数: %dセット\n", summary.TotalSets)
	fmt.Fprintf(&sb, "- 平均レップス: %.2f\n", summary.AvgReps)
	fmt.Fprintf(&sb, "- よく鍛えている部位: %s\n\n", topGroups)
	sb.WriteString("以下の特徴を持つリアルな体型予測を作成してください:\n")
	sb.WriteString("1. 元の写真と同じポーズで\n")
	fmt.Fprintf(&sb, "2. 特に%sの成長が見られる\n", focus)
	sb.WriteString("3. 自然な筋肉の発達を表現\n")
	sb.WriteString("4. 現実的な体型変化（急激な変化ではなく、1ヶ月で達成可能な範囲で）\n")
	sb.WriteString("5. 高品質で写実的な表現\n\n")
	fmt.Fprintf(&sb, "現在の画像URL: %s\n", imageURL)
	return sb.String()
}

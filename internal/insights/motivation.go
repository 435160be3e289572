package insights

import (
	"encoding/csv"
	"errors"
	"io"
	"strings"

	"github.com/2beens/bodyforecast/internal/stats"

	log "github.com/sirupsen/logrus"
)

var defaultMotivationalMessages = []string{
	"今日の努力が明日の筋肉になる。",
	"結果は裏切らない。過程は苦しいが、成長は確実。",
	"痛みは一時的、諦めたときの後悔は永遠に続く。",
	"理想の体は言い訳ではなく、決断によって作られる。",
	"汗をかけば、それだけ成長する。限界を超えろ！",
	"小さな一歩の積み重ねが、大きな変化を生み出す。",
	"今日の自己ベストが、明日のウォームアップになる。",
	"トレーニングに言い訳は不要。やるかやらないか、それだけ。",
	"筋肉は裏切らない。あなたが努力した分だけ応えてくれる。",
	"強さとは、始める勇気と、諦めない意志。",
}

type MotivationManager struct {
	Messages []string
	rnd      stats.Picker
}

func NewDefaultMotivationManager() *MotivationManager {
	messages := make([]string, len(defaultMotivationalMessages))
	copy(messages, defaultMotivationalMessages)
	return &MotivationManager{
		Messages: messages,
		rnd:      stats.GlobalRand{},
	}
}

// NewMotivationManager reads one message per CSV record, MESSAGE[;AUTHOR].
func NewMotivationManager(messagesCsvReader *csv.Reader) (*MotivationManager, error) {
	mm := &MotivationManager{rnd: stats.GlobalRand{}}

	log.Println("reading motivational messages CSV ...")

	messagesCsvReader.Comma = ';'
	messagesCsvReader.FieldsPerRecord = -1
	for {
		record, err := messagesCsvReader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		message := strings.TrimSpace(record[0])
		if message == "" {
			continue
		}
		mm.Messages = append(mm.Messages, message)
	}

	if len(mm.Messages) == 0 {
		return nil, errors.New("no motivational messages found")
	}

	log.Printf("motivational messages CSV read %d messages", len(mm.Messages))

	return mm, nil
}

func (mm *MotivationManager) RandomMessage() string {
	if len(mm.Messages) == 0 {
		return ""
	}
	return mm.Messages[mm.rnd.Intn(len(mm.Messages))]
}

package service

import (
	"fmt"
	"onlinecourse_backend/internal/model"
	"onlinecourse_backend/internal/util"
	"sort"
)

// QuestionResult is the all-or-nothing outcome for one question.
type QuestionResult struct {
	QuestionID uint `json:"questionId"`
	Points     int  `json:"points"`
	Earned     int  `json:"earned"`
	Correct    bool `json:"correct"`
}

// LessonScore is the weighted result of grading one answer set.
type LessonScore struct {
	Score     float64          `json:"score"` // in [0,1]
	Earned    int              `json:"earned"`
	Total     int              `json:"total"`
	Anomaly   bool             `json:"anomaly"`
	Selected  []uint           `json:"selected"`
	Questions []QuestionResult `json:"questions"`
}

// ScoreLesson grades selected choice ids against the lesson's questions,
// which must have their Choices loaded. A question earns its full grade only
// when the selection for it equals its correct set exactly. A lesson without
// questions scores 0 and is reported as an anomaly.
func ScoreLesson(questions []model.Question, selected []uint) (*LessonScore, error) {
	owner := make(map[uint]uint)
	for _, q := range questions {
		for _, c := range q.Choices {
			owner[c.ID] = q.ID
		}
	}

	picked := make(map[uint]map[uint]struct{}, len(questions))
	unique := make([]uint, 0, len(selected))
	seen := make(map[uint]struct{}, len(selected))
	for _, id := range selected {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		qid, ok := owner[id]
		if !ok {
			return nil, fmt.Errorf("choice %d: %w", id, util.ErrInvalidChoiceReference)
		}
		if picked[qid] == nil {
			picked[qid] = make(map[uint]struct{})
		}
		picked[qid][id] = struct{}{}
		unique = append(unique, id)
	}
	sort.Slice(unique, func(i, j int) bool { return unique[i] < unique[j] })

	result := &LessonScore{
		Selected:  unique,
		Questions: make([]QuestionResult, 0, len(questions)),
	}
	for _, q := range questions {
		qr := QuestionResult{QuestionID: q.ID, Points: q.Grade}
		if exactMatch(q.Choices, picked[q.ID]) {
			qr.Correct = true
			qr.Earned = q.Grade
		}
		result.Total += q.Grade
		result.Earned += qr.Earned
		result.Questions = append(result.Questions, qr)
	}

	if result.Total <= 0 {
		result.Anomaly = true
		return result, nil
	}
	result.Score = clamp(float64(result.Earned)/float64(result.Total), 0, 1)
	return result, nil
}

func exactMatch(choices []model.Choice, picked map[uint]struct{}) bool {
	correct := 0
	for _, c := range choices {
		_, chosen := picked[c.ID]
		if c.IsCorrect != chosen {
			return false
		}
		if c.IsCorrect {
			correct++
		}
	}
	// a question with no correct choice can never be answered correctly
	return correct > 0
}

// RatingFromScores turns lesson scores in [0,1] into a 0–100 rating: the mean
// of the scores as percentages, 0 when nothing has been graded.
func RatingFromScores(scores []float64) float64 {
	if len(scores) == 0 {
		return 0
	}
	var sum float64
	for _, s := range scores {
		sum += s
	}
	return clamp(sum/float64(len(scores))*100, 0, 100)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

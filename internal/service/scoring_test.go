package service

import (
	"errors"
	"math"
	"onlinecourse_backend/internal/model"
	"onlinecourse_backend/internal/util"
	"testing"
)

func choice(id uint, correct bool) model.Choice {
	c := model.Choice{ChoiceText: "c", IsCorrect: correct}
	c.ID = id
	return c
}

func question(id uint, grade int, choices ...model.Choice) model.Question {
	q := model.Question{QuestionText: "q", Grade: grade, Choices: choices}
	q.ID = id
	return q
}

// Q1 (1 point): A=11 correct, 12 wrong. Q2 (3 points): 21 wrong, B=22 and C=23 correct.
func scenarioQuestions() []model.Question {
	return []model.Question{
		question(1, 1, choice(11, true), choice(12, false)),
		question(2, 3, choice(21, false), choice(22, true), choice(23, true)),
	}
}

func TestScoreLessonScenario(t *testing.T) {
	cases := []struct {
		name     string
		selected []uint
		want     float64
	}{
		{"all correct", []uint{11, 22, 23}, 1.0},
		{"partial on weighted question", []uint{11, 22}, 0.25},
		{"only weighted question", []uint{22, 23}, 0.75},
		{"empty selection", nil, 0},
		{"superset on Q2", []uint{11, 21, 22, 23}, 0.25},
		{"disjoint", []uint{12, 21}, 0},
		{"duplicates collapse", []uint{11, 11, 22, 23, 23}, 1.0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ScoreLesson(scenarioQuestions(), tc.selected)
			if err != nil {
				t.Fatalf("ScoreLesson: %v", err)
			}
			if math.Abs(got.Score-tc.want) > 1e-9 {
				t.Fatalf("score = %v, want %v", got.Score, tc.want)
			}
			if got.Score < 0 || got.Score > 1 {
				t.Fatalf("score %v outside [0,1]", got.Score)
			}
			if got.Total != 4 {
				t.Fatalf("total = %d, want 4", got.Total)
			}
			if got.Anomaly {
				t.Fatal("unexpected anomaly")
			}
		})
	}
}

func TestScoreLessonPerQuestionAllOrNothing(t *testing.T) {
	q := []model.Question{question(1, 5, choice(1, true), choice(2, true), choice(3, false))}
	cases := []struct {
		name     string
		selected []uint
		correct  bool
	}{
		{"exact", []uint{1, 2}, true},
		{"exact reversed", []uint{2, 1}, true},
		{"proper subset", []uint{1}, false},
		{"superset", []uint{1, 2, 3}, false},
		{"disjoint", []uint{3}, false},
		{"nothing", nil, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ScoreLesson(q, tc.selected)
			if err != nil {
				t.Fatalf("ScoreLesson: %v", err)
			}
			if got.Questions[0].Correct != tc.correct {
				t.Fatalf("correct = %v, want %v", got.Questions[0].Correct, tc.correct)
			}
			wantEarned := 0
			if tc.correct {
				wantEarned = 5
			}
			if got.Earned != wantEarned {
				t.Fatalf("earned = %d, want %d", got.Earned, wantEarned)
			}
		})
	}
}

func TestScoreLessonRejectsForeignChoice(t *testing.T) {
	_, err := ScoreLesson(scenarioQuestions(), []uint{11, 99})
	if !errors.Is(err, util.ErrInvalidChoiceReference) {
		t.Fatalf("err = %v, want ErrInvalidChoiceReference", err)
	}
}

func TestScoreLessonWithoutQuestions(t *testing.T) {
	got, err := ScoreLesson(nil, nil)
	if err != nil {
		t.Fatalf("ScoreLesson: %v", err)
	}
	if got.Score != 0 || !got.Anomaly {
		t.Fatalf("got score=%v anomaly=%v, want 0 and anomaly", got.Score, got.Anomaly)
	}

	if _, err := ScoreLesson(nil, []uint{1}); !errors.Is(err, util.ErrInvalidChoiceReference) {
		t.Fatalf("err = %v, want ErrInvalidChoiceReference", err)
	}
}

func TestScoreLessonQuestionWithoutCorrectChoice(t *testing.T) {
	q := []model.Question{question(1, 2, choice(1, false), choice(2, false))}
	got, err := ScoreLesson(q, nil)
	if err != nil {
		t.Fatalf("ScoreLesson: %v", err)
	}
	if got.Score != 0 {
		t.Fatalf("score = %v, want 0", got.Score)
	}
}

func TestScoreLessonSelectedSorted(t *testing.T) {
	got, err := ScoreLesson(scenarioQuestions(), []uint{23, 11, 22})
	if err != nil {
		t.Fatalf("ScoreLesson: %v", err)
	}
	want := []uint{11, 22, 23}
	for i := range want {
		if got.Selected[i] != want[i] {
			t.Fatalf("selected = %v, want %v", got.Selected, want)
		}
	}
}

func TestRatingFromScores(t *testing.T) {
	cases := []struct {
		scores []float64
		want   float64
	}{
		{nil, 0},
		{[]float64{0.25, 1.0}, 62.5},
		{[]float64{1, 1, 1}, 100},
		{[]float64{0, 0}, 0},
		{[]float64{1.5}, 100},
	}
	for _, tc := range cases {
		if got := RatingFromScores(tc.scores); math.Abs(got-tc.want) > 1e-9 {
			t.Fatalf("RatingFromScores(%v) = %v, want %v", tc.scores, got, tc.want)
		}
	}
}

package quizzes

import "testing"

func TestAnswerPoints(t *testing.T) {
	if got := AnswerPoints(true); got != 10 {
		t.Errorf("AnswerPoints(true) = %d, want 10", got)
	}
	if got := AnswerPoints(false); got != 0 {
		t.Errorf("AnswerPoints(false) = %d, want 0", got)
	}
}

func TestPercent(t *testing.T) {
	tests := []struct {
		score, maxScore int
		want            float64
	}{
		{0, 0, 0},
		{0, 50, 0},
		{30, 50, 60},
		{50, 50, 100},
		{10, 40, 25},
	}

	for _, tt := range tests {
		if got := Percent(tt.score, tt.maxScore); got != tt.want {
			t.Errorf("Percent(%d, %d) = %f, want %f", tt.score, tt.maxScore, got, tt.want)
		}
	}
}

func TestResultMessage(t *testing.T) {
	tests := []struct {
		percent float64
		want    string
	}{
		{100, "Perfect score!"},
		{95, "Excellent work!"},
		{80, "Excellent work!"},
		{79, "Good job!"},
		{60, "Good job!"},
		{59, "Keep practicing!"},
		{0, "Keep practicing!"},
	}

	for _, tt := range tests {
		if got := ResultMessage(tt.percent); got != tt.want {
			t.Errorf("ResultMessage(%f) = %q, want %q", tt.percent, got, tt.want)
		}
	}
}

func TestMaxScore(t *testing.T) {
	if got := MaxScore(5); got != 50 {
		t.Errorf("MaxScore(5) = %d, want 50", got)
	}
	if got := MaxScore(0); got != 0 {
		t.Errorf("MaxScore(0) = %d, want 0", got)
	}
}

package quizzes

// PointsPerCorrect is the flat award for a correct answer.
const PointsPerCorrect = 10

func AnswerPoints(correct bool) int {
	if correct {
		return PointsPerCorrect
	}
	return 0
}

func MaxScore(questionCount int) int {
	return questionCount * PointsPerCorrect
}

// Percent returns the score as a percentage of the maximum, 0 for an
// empty quiz.
func Percent(score, maxScore int) float64 {
	if maxScore <= 0 {
		return 0
	}
	return float64(score) / float64(maxScore) * 100
}

// ResultMessage maps a percentage to the results-page tier message.
func ResultMessage(percent float64) string {
	switch {
	case percent >= 100:
		return "Perfect score!"
	case percent >= 80:
		return "Excellent work!"
	case percent >= 60:
		return "Good job!"
	default:
		return "Keep practicing!"
	}
}

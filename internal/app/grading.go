package app

import (
	"math"

	"quiz-platform/internal/domain"
)

// Grade compares answers[i] with the i-th question's correct option.
// A missing, nil or out-of-range answer counts as incorrect.
func Grade(questions []domain.Question, answers []*int) (int, []domain.QuestionOutcome) {
	score := 0
	outcomes := make([]domain.QuestionOutcome, 0, len(questions))
	for i, q := range questions {
		var answer *int
		if i < len(answers) && answers[i] != nil {
			v := *answers[i]
			answer = &v
		}
		correct := answer != nil && *answer >= 0 && *answer < len(q.Options) && *answer == q.Correct
		if correct {
			score++
		}
		outcomes = append(outcomes, domain.QuestionOutcome{
			QuestionID:    q.ID,
			UserAnswer:    answer,
			CorrectAnswer: q.Correct,
			IsCorrect:     correct,
		})
	}
	return score, outcomes
}

// Percentage rounds 100*score/total half away from zero. A test without questions scores 0.
func Percentage(score, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(score) / float64(total)))
}

package analytics

import (
	"time"

	"github.com/lumenlearn/insight-api/internal/models"
)

// AttemptKey identifies one (user, quiz) pairing.
type AttemptKey struct {
	UserID int64
	QuizID int64
}

// ScoreBoard holds best-attempt normalized scores for every observed
// (user, quiz) pair plus course-level rollups.
type ScoreBoard struct {
	Best           map[AttemptKey]float64
	AttemptsByUser map[int64]int
	CourseAverage  *float64
	OnTimeRate     *float64
}

// QuizTotalPoints sums question weights, defaulting each unset or
// non-positive weight to 1. A quiz without questions falls back to a total
// of 1 so normalization never divides by zero.
func QuizTotalPoints(quiz models.Quiz) float64 {
	total := 0.0
	for _, question := range quiz.Questions {
		points := question.Points
		if points <= 0 {
			points = 1
		}
		total += points
	}
	if total <= 0 {
		if len(quiz.Questions) > 0 {
			return float64(len(quiz.Questions))
		}
		return 1
	}
	return total
}

// NormalizeSubmissions converts raw scores to the [0,1] scale and resolves
// the best attempt per (user, quiz). Reattempts can only improve a pair's
// recorded score. The course average is the mean over observed pairs only;
// unattempted quizzes do not contribute zeroes here (the certificate
// average in CertificateAverage intentionally differs). The on-time rate
// judges only the first chronological submission per pair against the quiz
// deadline and is nil when no deadline applies.
func NormalizeSubmissions(quizzes []models.Quiz, submissions []models.Submission) ScoreBoard {
	weights := make(map[int64]float64, len(quizzes))
	deadlines := make(map[int64]*time.Time, len(quizzes))
	for _, quiz := range quizzes {
		total := QuizTotalPoints(quiz)
		if total <= 0 {
			continue
		}
		weights[quiz.ID] = total
		deadlines[quiz.ID] = quiz.Deadline
	}

	board := ScoreBoard{
		Best:           make(map[AttemptKey]float64),
		AttemptsByUser: make(map[int64]int),
	}
	firstAttempt := make(map[AttemptKey]models.Submission)

	for _, sub := range submissions {
		total, known := weights[sub.QuizID]
		if !known {
			continue
		}
		board.AttemptsByUser[sub.UserID]++

		normalized := sub.Score / total
		if normalized < 0 {
			normalized = 0
		}
		if normalized > 1 {
			normalized = 1
		}

		key := AttemptKey{UserID: sub.UserID, QuizID: sub.QuizID}
		if best, ok := board.Best[key]; !ok || normalized > best {
			board.Best[key] = normalized
		}
		if first, ok := firstAttempt[key]; !ok || sub.SubmittedAt.Before(first.SubmittedAt) {
			firstAttempt[key] = sub
		}
	}

	if len(board.Best) > 0 {
		sum := 0.0
		for _, score := range board.Best {
			sum += score
		}
		avg := sum / float64(len(board.Best))
		board.CourseAverage = &avg
	}

	withDeadline, onTime := 0, 0
	for key, first := range firstAttempt {
		deadline := deadlines[key.QuizID]
		if deadline == nil {
			continue
		}
		withDeadline++
		if !first.SubmittedAt.After(*deadline) {
			onTime++
		}
	}
	if withDeadline > 0 {
		rate := float64(onTime) / float64(withDeadline)
		board.OnTimeRate = &rate
	}

	return board
}

// UserAverage is the mean best-normalized score over the quizzes this user
// actually attempted, or nil when they attempted none.
func (b ScoreBoard) UserAverage(userID int64) *float64 {
	sum, count := 0.0, 0
	for key, score := range b.Best {
		if key.UserID != userID {
			continue
		}
		sum += score
		count++
	}
	if count == 0 {
		return nil
	}
	avg := sum / float64(count)
	return &avg
}

// CertificateAverage sums the user's best score per quiz, defaulting
// unattempted quizzes to zero, and divides by the total quiz count. This is
// strictly more punishing than UserAverage and is the gating rule for
// certificate issuance. Returns 0 when the course has no quizzes.
func CertificateAverage(quizzes []models.Quiz, board ScoreBoard, userID int64) float64 {
	if len(quizzes) == 0 {
		return 0
	}
	sum := 0.0
	for _, quiz := range quizzes {
		sum += board.Best[AttemptKey{UserID: userID, QuizID: quiz.ID}]
	}
	return sum / float64(len(quizzes))
}

// LowScoreQuizzes lists quizzes the user attempted but whose best normalized
// score sits below the threshold, for review recommendations.
func LowScoreQuizzes(quizzes []models.Quiz, board ScoreBoard, userID int64, threshold float64) []models.Quiz {
	var flagged []models.Quiz
	for _, quiz := range quizzes {
		score, attempted := board.Best[AttemptKey{UserID: userID, QuizID: quiz.ID}]
		if attempted && score < threshold {
			flagged = append(flagged, quiz)
		}
	}
	return flagged
}

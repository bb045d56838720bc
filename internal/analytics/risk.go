package analytics

// RiskLevel buckets the composite risk score.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Verdict labels summarizing a learner's study pattern. The rule list is a
// fixed heuristic, not a model: thresholds and precedence are part of the
// contract.
const (
	VerdictNotStarted       = "not started"
	VerdictSkimming         = "skimming"
	VerdictNeedsQuizAttempt = "needs quiz attempt"
	VerdictIntegrityConcern = "possible integrity concern"
	VerdictNeedsReview      = "needs review"
	VerdictSeriousLearner   = "serious learner"
	VerdictImproving        = "improving"
)

// CertificateDecision is the outcome of the certificate-eligibility gate.
type CertificateDecision string

const (
	CertificateAutoIssue    CertificateDecision = "auto_issue"
	CertificateManualReview CertificateDecision = "manual_review"
	CertificateNotEligible  CertificateDecision = "not_eligible"
)

// RiskInput bundles the per-learner signals feeding the risk and verdict
// rules. Nil completion or quiz average means "no data" and defaults to
// zero inside the score.
type RiskInput struct {
	CompletionRate *float64
	QuizAverage    *float64
	InactiveDays   int
	StudyMinutes   float64
	TabOutCount    int
	QuizAttempts   int
}

// RiskProfile is the derived composite for one learner, recomputed on every
// request.
type RiskProfile struct {
	UserID              int64     `json:"user_id"`
	CompletionRate      *float64  `json:"completion_rate"`
	NormalizedQuizScore *float64  `json:"normalized_quiz_score"`
	InactiveDays        int       `json:"inactive_days"`
	RiskScore           float64   `json:"risk_score"`
	RiskLevel           RiskLevel `json:"risk_level"`
	Verdict             string    `json:"verdict"`
}

// RiskScore combines inverse completion, inverse quiz score and inactivity
// into a bounded composite: 0.4*(1-completion) + 0.4*(1-quiz) +
// 0.2*min(1, inactiveDays/7).
func RiskScore(in RiskInput) float64 {
	completion := 0.0
	if in.CompletionRate != nil {
		completion = *in.CompletionRate
	}
	quiz := 0.0
	if in.QuizAverage != nil {
		quiz = *in.QuizAverage
	}
	inactivity := float64(in.InactiveDays) / 7
	if inactivity > 1 {
		inactivity = 1
	}
	if inactivity < 0 {
		inactivity = 0
	}
	return 0.4*(1-completion) + 0.4*(1-quiz) + 0.2*inactivity
}

// LevelFor buckets a risk score: high >= 0.66, medium >= 0.33, else low.
func LevelFor(score float64) RiskLevel {
	switch {
	case score >= 0.66:
		return RiskHigh
	case score >= 0.33:
		return RiskMedium
	default:
		return RiskLow
	}
}

// VerdictFor walks the ordered heuristic rule list; the first match wins.
func VerdictFor(in RiskInput) string {
	score := 0.0
	if in.QuizAverage != nil {
		score = *in.QuizAverage
	}
	minutes := in.StudyMinutes

	switch {
	case in.QuizAttempts == 0 && minutes < 5:
		return VerdictNotStarted
	case in.QuizAttempts == 0 && minutes < 30:
		return VerdictSkimming
	case in.QuizAttempts == 0:
		return VerdictNeedsQuizAttempt
	case minutes < 20 && score >= 0.8 && in.TabOutCount > 5:
		return VerdictIntegrityConcern
	case minutes < 30 && score < 0.5:
		return VerdictSkimming
	case minutes >= 30 && score < 0.5:
		return VerdictNeedsReview
	case score >= 0.8:
		return VerdictSeriousLearner
	default:
		return VerdictImproving
	}
}

// BuildRiskProfile assembles the composite profile for one learner.
func BuildRiskProfile(userID int64, in RiskInput) RiskProfile {
	score := RiskScore(in)
	return RiskProfile{
		UserID:              userID,
		CompletionRate:      in.CompletionRate,
		NormalizedQuizScore: in.QuizAverage,
		InactiveDays:        in.InactiveDays,
		RiskScore:           score,
		RiskLevel:           LevelFor(score),
		Verdict:             VerdictFor(in),
	}
}

// CertificateEligibility gates certificate issuance: full completion plus
// the all-quizzes average (unattempted quizzes count as zero). Auto-issue
// at >= 0.9, manual review above 0.45, otherwise not eligible.
func CertificateEligibility(completionRate *float64, certificateAverage float64) CertificateDecision {
	if completionRate == nil || *completionRate < 1 {
		return CertificateNotEligible
	}
	switch {
	case certificateAverage >= 0.9:
		return CertificateAutoIssue
	case certificateAverage > 0.45:
		return CertificateManualReview
	default:
		return CertificateNotEligible
	}
}

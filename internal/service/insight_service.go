package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/lumenlearn/insight-api/internal/analytics"
	"github.com/lumenlearn/insight-api/internal/dto"
	"github.com/lumenlearn/insight-api/internal/models"
	appErrors "github.com/lumenlearn/insight-api/pkg/errors"
)

type activityLister interface {
	ListEvents(ctx context.Context, filter models.ActivityFilter) ([]models.ActivityEvent, error)
}

type enrollmentReader interface {
	ListStudentIDs(ctx context.Context, courseID int64) ([]int64, error)
	IsEnrolled(ctx context.Context, courseID, userID int64) (bool, error)
}

type courseReader interface {
	GetCourse(ctx context.Context, courseID int64) (*models.Course, error)
	ListCompletions(ctx context.Context, courseID int64) ([]models.LessonCompletion, error)
	CountUserCompletedLessons(ctx context.Context, courseID, userID int64) (int, error)
}

type quizReader interface {
	ListQuizzes(ctx context.Context, courseID int64) ([]models.Quiz, error)
	ListSubmissions(ctx context.Context, courseID int64) ([]models.Submission, error)
}

// InsightServiceConfig tunes report windows and recommendation thresholds.
type InsightServiceConfig struct {
	WindowDays        int
	MaxWindowDays     int
	LowScoreThreshold float64
	CatalogCacheTTL   time.Duration
}

// InsightService composes the analytics engine over the event store. Every
// report recomputes from source rows; only the immutable course catalog
// (course shape, quiz weights) may be served from cache.
type InsightService struct {
	activities  activityLister
	enrollments enrollmentReader
	courses     courseReader
	quizzes     quizReader
	cache       *CacheService
	metrics     *MetricsService
	logger      *zap.Logger
	now         func() time.Time
	cfg         InsightServiceConfig
}

// InsightServiceParams groups constructor dependencies.
type InsightServiceParams struct {
	Activities  activityLister
	Enrollments enrollmentReader
	Courses     courseReader
	Quizzes     quizReader
	Cache       *CacheService
	Metrics     *MetricsService
	Logger      *zap.Logger
	Config      InsightServiceConfig
}

// NewInsightService constructs an InsightService with sane defaults.
func NewInsightService(params InsightServiceParams) *InsightService {
	cfg := params.Config
	if cfg.WindowDays <= 0 {
		cfg.WindowDays = 30
	}
	if cfg.MaxWindowDays <= 0 {
		cfg.MaxWindowDays = 365
	}
	if cfg.LowScoreThreshold <= 0 {
		cfg.LowScoreThreshold = 0.6
	}
	if cfg.CatalogCacheTTL <= 0 {
		cfg.CatalogCacheTTL = 10 * time.Minute
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InsightService{
		activities:  params.Activities,
		enrollments: params.Enrollments,
		courses:     params.Courses,
		quizzes:     params.Quizzes,
		cache:       params.Cache,
		metrics:     params.Metrics,
		logger:      logger,
		now:         time.Now,
		cfg:         cfg,
	}
}

// courseDataset holds the raw rows every course-level report derives from.
type courseDataset struct {
	course      *models.Course
	roster      []int64
	completions []models.LessonCompletion
	quizzes     []models.Quiz
	submissions []models.Submission
	events      []models.ActivityEvent
}

// CoursePerformance reports class-wide completion and quiz outcomes.
func (s *InsightService) CoursePerformance(ctx context.Context, courseID int64) (*dto.CoursePerformanceResponse, error) {
	if courseID <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "course id must be a positive integer")
	}

	data, err := s.loadCourseDataset(ctx, courseID, 0)
	if err != nil {
		return nil, err
	}

	completion := analytics.ClassCompletion(data.course.LessonCount, data.roster, data.completions)
	board := analytics.NormalizeSubmissions(data.quizzes, data.submissions)

	return &dto.CoursePerformanceResponse{
		CourseID:             courseID,
		LearnerCount:         len(data.roster),
		TotalLessons:         data.course.LessonCount,
		CompletionRate:       completion.CompletionRate,
		AverageQuizScore:     board.CourseAverage,
		OnTimeSubmissionRate: board.OnTimeRate,
	}, nil
}

// CourseEngagement reports daily study minutes and login trends for a course.
func (s *InsightService) CourseEngagement(ctx context.Context, courseID int64, windowDays int) (*dto.CourseEngagementResponse, error) {
	if courseID <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "course id must be a positive integer")
	}
	windowDays, err := s.resolveWindow(windowDays)
	if err != nil {
		return nil, err
	}

	course, err := s.getCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	events, err := s.listCourseEvents(ctx, courseID, windowDays, nil)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	study := analytics.ReconstructSessions(events, now)
	trend := analytics.BuildEngagement(events, study, now)

	return &dto.CourseEngagementResponse{
		CourseID:                     course.ID,
		WindowDays:                   windowDays,
		StudyMinutesPerDay:           study.MinutesPerDay,
		AverageStudyMinutesLast7Days: trend.AverageStudyMinutesLast7Days,
		LoginsPerDay:                 trend.LoginsPerDay,
		LoginsByUser:                 trend.LoginsByUser,
	}, nil
}

// CourseBehavior classifies the course-wide activity cadence.
func (s *InsightService) CourseBehavior(ctx context.Context, courseID int64, windowDays int) (*dto.CourseBehaviorResponse, error) {
	if courseID <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "course id must be a positive integer")
	}
	windowDays, err := s.resolveWindow(windowDays)
	if err != nil {
		return nil, err
	}

	course, err := s.getCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	events, err := s.listCourseEvents(ctx, courseID, windowDays, nil)
	if err != nil {
		return nil, err
	}

	report := analytics.ClassifyBehavior(events, countTabOuts(events, 0), windowDays, s.now().UTC())

	return &dto.CourseBehaviorResponse{
		CourseID:       course.ID,
		WindowDays:     windowDays,
		InactiveDays:   report.InactiveDays,
		TabOutCount:    report.TabOutCount,
		LongestGapDays: report.LongestGapDays,
		Pattern:        report.Pattern,
	}, nil
}

// CourseInsights composes the full instructor dashboard: course aggregates
// plus per-learner stats and risk profiles sorted by descending risk.
func (s *InsightService) CourseInsights(ctx context.Context, courseID int64) (*dto.CourseInsightsResponse, error) {
	if courseID <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "course id must be a positive integer")
	}

	windowDays := s.cfg.WindowDays
	data, err := s.loadCourseDataset(ctx, courseID, windowDays)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	study := analytics.ReconstructSessions(data.events, now)
	trend := analytics.BuildEngagement(data.events, study, now)
	completion := analytics.ClassCompletion(data.course.LessonCount, data.roster, data.completions)
	board := analytics.NormalizeSubmissions(data.quizzes, data.submissions)
	classBehavior := analytics.ClassifyBehavior(data.events, countTabOuts(data.events, 0), windowDays, now)

	completedByUser := make(map[int64]int)
	for _, row := range data.completions {
		if row.IsCompleted {
			completedByUser[row.UserID]++
		}
	}
	eventsByUser := make(map[int64][]models.ActivityEvent)
	for _, event := range data.events {
		eventsByUser[event.UserID] = append(eventsByUser[event.UserID], event)
	}

	stats := make([]dto.LearnerStats, 0, len(data.roster))
	profiles := make([]analytics.RiskProfile, 0, len(data.roster))
	for _, userID := range data.roster {
		userEvents := eventsByUser[userID]
		userStudy := study.PerUser[userID]
		tabOuts := countTabOuts(userEvents, userID)
		behavior := analytics.ClassifyBehavior(userEvents, tabOuts, windowDays, now)

		userCompletion := analytics.UserCompletion(data.course.LessonCount, completedByUser[userID])
		quizAverage := board.UserAverage(userID)

		stats = append(stats, dto.LearnerStats{
			UserID:           userID,
			CompletionRate:   userCompletion.CompletionRate,
			QuizAverage:      quizAverage,
			QuizAttempts:     board.AttemptsByUser[userID],
			StudyMinutes:     userStudy.TotalMinutes,
			Last7DaysMinutes: userStudy.Last7DaysMinutes,
			TabOutCount:      tabOuts,
			InactiveDays:     behavior.InactiveDays,
			Pattern:          behavior.Pattern,
		})
		profiles = append(profiles, analytics.BuildRiskProfile(userID, analytics.RiskInput{
			CompletionRate: userCompletion.CompletionRate,
			QuizAverage:    quizAverage,
			InactiveDays:   behavior.InactiveDays,
			StudyMinutes:   userStudy.TotalMinutes,
			TabOutCount:    tabOuts,
			QuizAttempts:   board.AttemptsByUser[userID],
		}))
	}

	sort.SliceStable(profiles, func(i, j int) bool {
		if profiles[i].RiskScore == profiles[j].RiskScore {
			return profiles[i].UserID < profiles[j].UserID
		}
		return profiles[i].RiskScore > profiles[j].RiskScore
	})

	return &dto.CourseInsightsResponse{
		Performance: &dto.CoursePerformanceResponse{
			CourseID:             courseID,
			LearnerCount:         len(data.roster),
			TotalLessons:         data.course.LessonCount,
			CompletionRate:       completion.CompletionRate,
			AverageQuizScore:     board.CourseAverage,
			OnTimeSubmissionRate: board.OnTimeRate,
		},
		Engagement: &dto.CourseEngagementResponse{
			CourseID:                     courseID,
			WindowDays:                   windowDays,
			StudyMinutesPerDay:           study.MinutesPerDay,
			AverageStudyMinutesLast7Days: trend.AverageStudyMinutesLast7Days,
			LoginsPerDay:                 trend.LoginsPerDay,
			LoginsByUser:                 trend.LoginsByUser,
		},
		Behavior: &dto.CourseBehaviorResponse{
			CourseID:       courseID,
			WindowDays:     windowDays,
			InactiveDays:   classBehavior.InactiveDays,
			TabOutCount:    classBehavior.TabOutCount,
			LongestGapDays: classBehavior.LongestGapDays,
			Pattern:        classBehavior.Pattern,
		},
		PerUserStats: stats,
		Insights:     profiles,
	}, nil
}

// UserCourseReport compares one learner against the class benchmark and
// recommends quizzes worth revisiting.
func (s *InsightService) UserCourseReport(ctx context.Context, courseID, userID int64) (*dto.UserCourseReportResponse, error) {
	if courseID <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "course id must be a positive integer")
	}
	if userID <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "user id must be a positive integer")
	}

	windowDays := s.cfg.WindowDays
	data, err := s.loadCourseDataset(ctx, courseID, windowDays)
	if err != nil {
		return nil, err
	}

	var (
		enrolled       bool
		completedCount int
		userEvents     []models.ActivityEvent
	)
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		var err error
		enrolled, err = s.enrollments.IsEnrolled(groupCtx, courseID, userID)
		return err
	})
	group.Go(func() error {
		var err error
		completedCount, err = s.observeCount(groupCtx, "count_user_completed_lessons", func(ctx context.Context) (int, error) {
			return s.courses.CountUserCompletedLessons(ctx, courseID, userID)
		})
		return err
	})
	group.Go(func() error {
		var err error
		userEvents, err = s.listCourseEvents(groupCtx, courseID, windowDays, &userID)
		return err
	})
	if err := group.Wait(); err != nil {
		return nil, err
	}
	if !enrolled {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "user is not enrolled in this course")
	}

	now := s.now().UTC()
	study := analytics.ReconstructSessions(userEvents, now)
	userStudy := study.PerUser[userID]
	tabOuts := countTabOuts(userEvents, userID)
	behavior := analytics.ClassifyBehavior(userEvents, tabOuts, windowDays, now)

	userCompletion := analytics.UserCompletion(data.course.LessonCount, completedCount)
	classCompletion := analytics.ClassCompletion(data.course.LessonCount, data.roster, data.completions)
	board := analytics.NormalizeSubmissions(data.quizzes, data.submissions)
	quizAverage := board.UserAverage(userID)

	recommendations := make([]dto.QuizRecommendation, 0)
	for _, quiz := range analytics.LowScoreQuizzes(data.quizzes, board, userID, s.cfg.LowScoreThreshold) {
		recommendations = append(recommendations, dto.QuizRecommendation{
			QuizID:    quiz.ID,
			Title:     quiz.Title,
			BestScore: board.Best[analytics.AttemptKey{UserID: userID, QuizID: quiz.ID}],
		})
	}

	insight := analytics.BuildRiskProfile(userID, analytics.RiskInput{
		CompletionRate: userCompletion.CompletionRate,
		QuizAverage:    quizAverage,
		InactiveDays:   behavior.InactiveDays,
		StudyMinutes:   userStudy.TotalMinutes,
		TabOutCount:    tabOuts,
		QuizAttempts:   board.AttemptsByUser[userID],
	})

	return &dto.UserCourseReportResponse{
		CourseID:                courseID,
		UserID:                  userID,
		UserCompletion:          userCompletion,
		ClassBenchmark:          classCompletion.CompletionRate,
		UserQuizAverage:         quizAverage,
		LowScoreRecommendations: recommendations,
		Insight:                 insight,
	}, nil
}

// Certificate gates certificate issuance for one learner. Unlike the report
// average, every course quiz enters the denominator here.
func (s *InsightService) Certificate(ctx context.Context, courseID, userID int64) (*dto.CertificateResponse, error) {
	if courseID <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "course id must be a positive integer")
	}
	if userID <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "user id must be a positive integer")
	}

	course, err := s.getCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	var (
		enrolled       bool
		completedCount int
		quizzes        []models.Quiz
		submissions    []models.Submission
	)
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		var err error
		enrolled, err = s.enrollments.IsEnrolled(groupCtx, courseID, userID)
		return err
	})
	group.Go(func() error {
		var err error
		completedCount, err = s.courses.CountUserCompletedLessons(groupCtx, courseID, userID)
		return err
	})
	group.Go(func() error {
		var err error
		quizzes, err = s.getQuizzes(groupCtx, courseID)
		return err
	})
	group.Go(func() error {
		var err error
		submissions, err = s.quizzes.ListSubmissions(groupCtx, courseID)
		return err
	})
	if err := group.Wait(); err != nil {
		return nil, err
	}
	if !enrolled {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "user is not enrolled in this course")
	}

	completion := analytics.UserCompletion(course.LessonCount, completedCount)
	board := analytics.NormalizeSubmissions(quizzes, submissions)
	certificateAverage := analytics.CertificateAverage(quizzes, board, userID)

	return &dto.CertificateResponse{
		CourseID:       courseID,
		UserID:         userID,
		Decision:       analytics.CertificateEligibility(completion.CompletionRate, certificateAverage),
		CompletionRate: completion.CompletionRate,
		QuizAverage:    certificateAverage,
	}, nil
}

// loadCourseDataset fans out the independent course-level fetches. Fetch
// errors propagate unmodified; the course lookup is the only NotFound source.
// windowDays of zero loads data without activity events.
func (s *InsightService) loadCourseDataset(ctx context.Context, courseID int64, windowDays int) (*courseDataset, error) {
	data := &courseDataset{}
	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		course, err := s.getCourse(groupCtx, courseID)
		if err != nil {
			return err
		}
		data.course = course
		return nil
	})
	group.Go(func() error {
		start := time.Now()
		roster, err := s.enrollments.ListStudentIDs(groupCtx, courseID)
		s.observeQuery("list_student_ids", start)
		if err != nil {
			return err
		}
		data.roster = roster
		return nil
	})
	group.Go(func() error {
		start := time.Now()
		completions, err := s.courses.ListCompletions(groupCtx, courseID)
		s.observeQuery("list_completions", start)
		if err != nil {
			return err
		}
		data.completions = completions
		return nil
	})
	group.Go(func() error {
		quizzes, err := s.getQuizzes(groupCtx, courseID)
		if err != nil {
			return err
		}
		data.quizzes = quizzes
		return nil
	})
	group.Go(func() error {
		start := time.Now()
		submissions, err := s.quizzes.ListSubmissions(groupCtx, courseID)
		s.observeQuery("list_submissions", start)
		if err != nil {
			return err
		}
		data.submissions = submissions
		return nil
	})
	if windowDays > 0 {
		group.Go(func() error {
			events, err := s.listCourseEvents(groupCtx, courseID, windowDays, nil)
			if err != nil {
				return err
			}
			data.events = events
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}
	return data, nil
}

// getCourse resolves the course shape, optionally via the catalog cache.
func (s *InsightService) getCourse(ctx context.Context, courseID int64) (*models.Course, error) {
	cacheKey := fmt.Sprintf("catalog:course:%d", courseID)
	if s.cache.Enabled() {
		var cached models.Course
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
			return &cached, nil
		}
	}

	start := time.Now()
	course, err := s.courses.GetCourse(ctx, courseID)
	s.observeQuery("get_course", start)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, fmt.Errorf("get course %d: %w", courseID, err)
	}

	if s.cache.Enabled() {
		if err := s.cache.Set(ctx, cacheKey, course, s.cfg.CatalogCacheTTL); err != nil {
			s.logger.Warn("catalog cache write failed", zap.String("key", cacheKey), zap.Error(err))
		}
	}
	return course, nil
}

// getQuizzes resolves quiz definitions and weights, optionally via the
// catalog cache.
func (s *InsightService) getQuizzes(ctx context.Context, courseID int64) ([]models.Quiz, error) {
	cacheKey := fmt.Sprintf("catalog:quizzes:%d", courseID)
	if s.cache.Enabled() {
		var cached []models.Quiz
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
			return cached, nil
		}
	}

	start := time.Now()
	quizzes, err := s.quizzes.ListQuizzes(ctx, courseID)
	s.observeQuery("list_quizzes", start)
	if err != nil {
		return nil, err
	}

	if s.cache.Enabled() {
		if err := s.cache.Set(ctx, cacheKey, quizzes, s.cfg.CatalogCacheTTL); err != nil {
			s.logger.Warn("catalog cache write failed", zap.String("key", cacheKey), zap.Error(err))
		}
	}
	return quizzes, nil
}

func (s *InsightService) listCourseEvents(ctx context.Context, courseID int64, windowDays int, userID *int64) ([]models.ActivityEvent, error) {
	filter := models.ActivityFilter{
		CourseID: courseID,
		From:     analytics.DayStart(s.now().UTC()).AddDate(0, 0, -(windowDays - 1)),
	}
	if userID != nil {
		filter.UserID = *userID
	}
	start := time.Now()
	events, err := s.activities.ListEvents(ctx, filter)
	s.observeQuery("list_events", start)
	if err != nil {
		return nil, err
	}
	return events, nil
}

// resolveWindow applies the default lookback and bounds-checks the override.
func (s *InsightService) resolveWindow(windowDays int) (int, error) {
	if windowDays == 0 {
		return s.cfg.WindowDays, nil
	}
	if windowDays < 1 || windowDays > s.cfg.MaxWindowDays {
		return 0, appErrors.Clone(appErrors.ErrValidation,
			fmt.Sprintf("windowDays must be between 1 and %d", s.cfg.MaxWindowDays))
	}
	return windowDays, nil
}

func (s *InsightService) observeQuery(label string, start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveDBQuery(label, time.Since(start))
	}
}

func (s *InsightService) observeCount(ctx context.Context, label string, fn func(context.Context) (int, error)) (int, error) {
	start := time.Now()
	count, err := fn(ctx)
	s.observeQuery(label, start)
	return count, err
}

// countTabOuts counts TAB_OUT events, scoped to one user when userID is
// non-zero.
func countTabOuts(events []models.ActivityEvent, userID int64) int {
	count := 0
	for _, event := range events {
		if event.EventType != models.EventTabOut {
			continue
		}
		if userID != 0 && event.UserID != userID {
			continue
		}
		count++
	}
	return count
}

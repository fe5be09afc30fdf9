package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/genasnewdar/lever-stg/internal/data/repos"
	"github.com/genasnewdar/lever-stg/internal/platform/apierr"
	"github.com/genasnewdar/lever-stg/internal/platform/ctxutil"
	"github.com/genasnewdar/lever-stg/internal/platform/logger"
	"github.com/genasnewdar/lever-stg/internal/types"
)

// TestSummary is the catalog card for a test: enough to render a list
// without shipping sections or answer keys.
type TestSummary struct {
	ID          uuid.UUID         `json:"id"`
	Title       string            `json:"title"`
	Subject     types.TestSubject `json:"subject"`
	Duration    int               `json:"duration"`
	Description string            `json:"description,omitempty"`
}

type TestPage struct {
	Tests      []*TestSummary `json:"tests"`
	Page       int            `json:"page"`
	PageSize   int            `json:"per_page"`
	Total      int64          `json:"total"`
	TotalPages int            `json:"total_pages"`
}

// SubmitResponseInput carries one answer. Exactly one of
// SelectedOptionID or AdditionalData may be set, matching the declared
// question type: an option id for MULTIPLE_CHOICE, the pair map for
// MATCHING.
type SubmitResponseInput struct {
	AttemptID        uuid.UUID          `json:"attempt_id"`
	QuestionID       uuid.UUID          `json:"question_id"`
	QuestionType     types.QuestionType `json:"question_type"`
	SelectedOptionID string             `json:"selected_option_id,omitempty"`
	AdditionalData   datatypes.JSON     `json:"additional_data,omitempty"`
}

// SubmitResult reports one item of a batch submission. Message carries
// the error code when the item failed.
type SubmitResult struct {
	QuestionID uuid.UUID  `json:"question_id"`
	Status     string     `json:"status"`
	Message    string     `json:"message,omitempty"`
	ResponseID *uuid.UUID `json:"response_id,omitempty"`
}

// GradeReport is the outcome of closing an attempt: the graded row,
// the test-wide maximum and the resulting percentage.
type GradeReport struct {
	Attempt    *types.TestAttempt `json:"attempt"`
	MaxScore   int                `json:"max_score"`
	Percentage float64            `json:"percentage"`
}

// MatchingKey exposes the pairing answer key of a MATCHING question.
type MatchingKey struct {
	Items   datatypes.JSON `json:"matching_items,omitempty"`
	Mapping datatypes.JSON `json:"correct_mapping,omitempty"`
}

// CorrectAnswerKey is the grading key for one question, shown once the
// attempt is closed.
type CorrectAnswerKey struct {
	MultipleChoice []string     `json:"multiple_choice,omitempty"`
	NumericAnswer  *float64     `json:"numeric_answer,omitempty"`
	Matching       *MatchingKey `json:"matching,omitempty"`
	Formula        string       `json:"formula,omitempty"`
}

// ResponseInsight mirrors the stored response. ResponseID is nil when
// the student never answered the question and the row is a placeholder.
type ResponseInsight struct {
	ResponseID     *uuid.UUID     `json:"response_id"`
	SelectedOption string         `json:"selected_option,omitempty"`
	AdditionalData datatypes.JSON `json:"additional_data,omitempty"`
	PointsAwarded  float64        `json:"points_awarded"`
	IsCorrect      bool           `json:"is_correct"`
}

type QuestionInsight struct {
	QuestionID     uuid.UUID          `json:"question_id"`
	QuestionText   string             `json:"question_text"`
	QuestionType   types.QuestionType `json:"question_type"`
	QuestionPoints int                `json:"question_points"`
	CorrectAnswers *CorrectAnswerKey  `json:"correct_answers"`
	Response       *ResponseInsight   `json:"student_response"`
}

type SectionInsight struct {
	SectionName  string             `json:"section_name"`
	SectionScore float64            `json:"section_score"`
	Questions    []*QuestionInsight `json:"questions"`
}

// AttemptInsights is the per-section report for a closed attempt:
// every question in authoring order, its grading key and what the
// student answered, including questions left blank.
type AttemptInsights struct {
	StudentName      string                  `json:"student_name"`
	TestTitle        string                  `json:"test_title"`
	Score            float64                 `json:"score"`
	MaximumScore     int                     `json:"maximum_score"`
	Status           types.TestAttemptStatus `json:"status"`
	TimeTakenMinutes *float64                `json:"time_taken_minutes,omitempty"`
	Sections         []*SectionInsight       `json:"sections"`
}

// AttemptDetailView is the taker's view of one attempt. Insights is
// present once the attempt has been submitted or graded.
type AttemptDetailView struct {
	ID          uuid.UUID               `json:"id"`
	Test        *TestSummary            `json:"test"`
	Status      types.TestAttemptStatus `json:"status"`
	StartedAt   time.Time               `json:"started_at"`
	SubmittedAt *time.Time              `json:"submitted_at,omitempty"`
	DueAt       *time.Time              `json:"due_at,omitempty"`
	Score       *float64                `json:"score,omitempty"`
	Responses   []*types.Response       `json:"responses"`
	Insights    *AttemptInsights        `json:"insights,omitempty"`
}

type AttemptListItem struct {
	ID          uuid.UUID               `json:"id"`
	Status      types.TestAttemptStatus `json:"status"`
	StartedAt   time.Time               `json:"started_at"`
	SubmittedAt *time.Time              `json:"submitted_at,omitempty"`
	DueAt       *time.Time              `json:"due_at,omitempty"`
	Score       *float64                `json:"score,omitempty"`
	Test        *TestSummary            `json:"test,omitempty"`
}

type AttemptPage struct {
	Attempts   []*AttemptListItem `json:"attempts"`
	Page       int                `json:"page"`
	PageSize   int                `json:"per_page"`
	Total      int64              `json:"total"`
	TotalPages int                `json:"total_pages"`
}

type AssessmentService interface {
	ListTests(ctx context.Context, page, pageSize int) (*TestPage, error)
	GetTest(ctx context.Context, testID uuid.UUID) (*types.Test, error)
	StartTest(ctx context.Context, testID uuid.UUID) (*types.TestAttempt, error)
	SubmitResponse(ctx context.Context, input *SubmitResponseInput) (*types.Response, error)
	SubmitBatch(ctx context.Context, inputs []*SubmitResponseInput) ([]*SubmitResult, error)
	FinishAttempt(ctx context.Context, attemptID uuid.UUID) (*GradeReport, error)
	SystemFinish(ctx context.Context, attemptID uuid.UUID) error
	AttemptDetail(ctx context.Context, attemptID uuid.UUID) (*AttemptDetailView, error)
	MyAttempts(ctx context.Context, page, pageSize int) (*AttemptPage, error)
}

type assessmentService struct {
	db           *gorm.DB
	log          *logger.Logger
	testRepo     repos.TestRepo
	attemptRepo  repos.AttemptRepo
	responseRepo repos.ResponseRepo
	userRepo     repos.UserRepo
	scheduler    SchedulerService
}

func NewAssessmentService(
	db *gorm.DB,
	baseLog *logger.Logger,
	testRepo repos.TestRepo,
	attemptRepo repos.AttemptRepo,
	responseRepo repos.ResponseRepo,
	userRepo repos.UserRepo,
	scheduler SchedulerService,
) AssessmentService {
	return &assessmentService{
		db:           db,
		log:          baseLog.With("service", "AssessmentService"),
		testRepo:     testRepo,
		attemptRepo:  attemptRepo,
		responseRepo: responseRepo,
		userRepo:     userRepo,
		scheduler:    scheduler,
	}
}

// round2 keeps percentages and durations at two decimal places.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func testSummary(test *types.Test) *TestSummary {
	if test == nil {
		return nil
	}
	return &TestSummary{
		ID:          test.ID,
		Title:       test.Title,
		Subject:     test.Subject,
		Duration:    test.Duration,
		Description: test.Description,
	}
}

func (as *assessmentService) ListTests(ctx context.Context, page, pageSize int) (*TestPage, error) {
	identity := ctxutil.GetIdentity(ctx)
	if identity == nil || identity.Auth0ID == "" {
		return nil, apierr.Unauthorized("UNAUTHORIZED")
	}

	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 10
	}

	tests, total, err := as.testRepo.List(ctx, nil, page, pageSize)
	if err != nil {
		as.log.Warn("ListTests: query failed", "error", err)
		return nil, fmt.Errorf("list tests: %w", err)
	}

	out := &TestPage{
		Tests:      make([]*TestSummary, 0, len(tests)),
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: int((total + int64(pageSize) - 1) / int64(pageSize)),
	}
	for _, test := range tests {
		out.Tests = append(out.Tests, testSummary(test))
	}
	return out, nil
}

// GetTest returns the full section/task/question tree with the answer
// key blanked, so the payload is safe to hand to a test taker.
func (as *assessmentService) GetTest(ctx context.Context, testID uuid.UUID) (*types.Test, error) {
	identity := ctxutil.GetIdentity(ctx)
	if identity == nil || identity.Auth0ID == "" {
		return nil, apierr.Unauthorized("UNAUTHORIZED")
	}

	test, err := as.testRepo.GetFull(ctx, nil, testID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound("TEST_NOT_FOUND")
		}
		as.log.Warn("GetTest: query failed", "test_id", testID, "error", err)
		return nil, fmt.Errorf("load test: %w", err)
	}
	return sanitizeTest(test), nil
}

func sanitizeTest(test *types.Test) *types.Test {
	for si := range test.Sections {
		section := &test.Sections[si]
		for qi := range section.Questions {
			sanitizeQuestion(&section.Questions[qi])
		}
		for ti := range section.Tasks {
			task := &section.Tasks[ti]
			for qi := range task.Questions {
				sanitizeQuestion(&task.Questions[qi])
			}
		}
	}
	return test
}

func sanitizeQuestion(question *types.Question) {
	question.CorrectOptionID = ""
	question.CorrectNumericAnswer = nil
	question.CorrectFormulaLatex = ""
	question.CorrectMapping = nil
	for oi := range question.Options {
		question.Options[oi].IsCorrect = false
	}
}

func (as *assessmentService) StartTest(ctx context.Context, testID uuid.UUID) (*types.TestAttempt, error) {
	identity := ctxutil.GetIdentity(ctx)
	if identity == nil || identity.Auth0ID == "" {
		return nil, apierr.Unauthorized("UNAUTHORIZED")
	}

	var out *types.TestAttempt
	if err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		test, err := as.testRepo.GetByID(ctx, tx, testID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierr.NotFound("TEST_NOT_FOUND")
			}
			return fmt.Errorf("load test: %w", err)
		}

		if _, err := as.attemptRepo.GetActiveByUserAndTest(ctx, tx, identity.Auth0ID, test.ID); err == nil {
			return apierr.Conflict("TEST_ALREADY_IN_PROGRESS")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("check active attempt: %w", err)
		}

		now := time.Now().UTC()
		dueAt := now.Add(time.Duration(test.Duration) * time.Minute)
		attempt := &types.TestAttempt{
			UserID:    identity.Auth0ID,
			TestID:    test.ID,
			Status:    types.TestAttemptInProgress,
			StartedAt: now,
			DueAt:     &dueAt,
		}
		if _, err := as.attemptRepo.Create(ctx, tx, attempt); err != nil {
			return fmt.Errorf("create attempt: %w", err)
		}
		out = attempt
		return nil
	}); err != nil {
		as.log.Warn("StartTest: transaction failed", "test_id", testID, "error", err)
		return nil, err
	}

	// An attempt without a registered deadline would never close, so a
	// failed registration cancels the fresh attempt.
	if err := as.scheduler.ScheduleTestExpiry(ctx, out.ID, *out.DueAt); err != nil {
		as.log.Error("StartTest: scheduling expiry failed", "attempt_id", out.ID, "error", err)
		if ferr := as.attemptRepo.Finish(ctx, nil, out.ID, types.TestAttemptCanceledBySystem, types.AttemptFinisherSystem, nil); ferr != nil {
			as.log.Error("StartTest: canceling unscheduled attempt failed", "attempt_id", out.ID, "error", ferr)
		}
		return nil, apierr.BadRequest("START_TEST_FAILED", err)
	}

	as.log.Info("Test attempt started", "attempt_id", out.ID, "test_id", testID, "user_id", identity.Auth0ID)
	return out, nil
}

func validateSubmitInput(input *SubmitResponseInput) error {
	if input == nil || input.AttemptID == uuid.Nil || input.QuestionID == uuid.Nil {
		return apierr.BadRequest("INVALID_RESPONSE_PAYLOAD", nil)
	}
	if input.SelectedOptionID != "" && len(input.AdditionalData) > 0 {
		return apierr.BadRequest("INVALID_RESPONSE_PAYLOAD", errors.New("selected_option_id and additional_data are mutually exclusive"))
	}
	switch input.QuestionType {
	case types.QuestionTypeMultipleChoice:
		if input.SelectedOptionID == "" {
			return apierr.BadRequest("SELECTED_OPTION_REQUIRED", nil)
		}
	case types.QuestionTypeMatching:
		if len(input.AdditionalData) == 0 {
			return apierr.BadRequest("ADDITIONAL_DATA_REQUIRED", nil)
		}
	default:
		return apierr.BadRequest("UNSUPPORTED_QUESTION_TYPE", nil)
	}
	return nil
}

func (as *assessmentService) SubmitResponse(ctx context.Context, input *SubmitResponseInput) (*types.Response, error) {
	identity := ctxutil.GetIdentity(ctx)
	if identity == nil || identity.Auth0ID == "" {
		return nil, apierr.Unauthorized("UNAUTHORIZED")
	}

	response, err := as.submitOne(ctx, identity.Auth0ID, input)
	if err != nil {
		as.log.Warn("SubmitResponse: failed", "question_id", questionIDOf(input), "error", err)
		return nil, err
	}
	return response, nil
}

// SubmitBatch processes every item even when some fail; each item gets
// its own result row. Only a missing identity aborts the whole batch.
func (as *assessmentService) SubmitBatch(ctx context.Context, inputs []*SubmitResponseInput) ([]*SubmitResult, error) {
	identity := ctxutil.GetIdentity(ctx)
	if identity == nil || identity.Auth0ID == "" {
		return nil, apierr.Unauthorized("UNAUTHORIZED")
	}

	results := make([]*SubmitResult, 0, len(inputs))
	for _, input := range inputs {
		result := &SubmitResult{QuestionID: questionIDOf(input)}
		response, err := as.submitOne(ctx, identity.Auth0ID, input)
		if err != nil {
			result.Status = "failed"
			result.Message = apierr.From(err).Code
			as.log.Warn("SubmitBatch: item failed", "question_id", result.QuestionID, "error", err)
		} else {
			result.Status = "success"
			result.ResponseID = &response.ID
		}
		results = append(results, result)
	}
	return results, nil
}

func questionIDOf(input *SubmitResponseInput) uuid.UUID {
	if input == nil {
		return uuid.Nil
	}
	return input.QuestionID
}

// submitOne validates and upserts a single response inside its own
// transaction, keyed on (attempt, question) so re-answering replaces
// the earlier answer.
func (as *assessmentService) submitOne(ctx context.Context, userID string, input *SubmitResponseInput) (*types.Response, error) {
	if err := validateSubmitInput(input); err != nil {
		return nil, err
	}

	var out *types.Response
	err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		attempt, err := as.attemptRepo.GetByID(ctx, tx, input.AttemptID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierr.NotFound("TEST_ATTEMPT_NOT_FOUND")
			}
			return fmt.Errorf("load attempt: %w", err)
		}
		if attempt.UserID != userID {
			return apierr.NotFound("TEST_ATTEMPT_NOT_FOUND")
		}
		if attempt.Status != types.TestAttemptInProgress {
			return apierr.Conflict("TEST_ATTEMPT_NOT_IN_PROGRESS")
		}

		question, err := as.testRepo.GetQuestion(ctx, tx, input.QuestionID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierr.NotFound("QUESTION_NOT_FOUND")
			}
			return fmt.Errorf("load question: %w", err)
		}
		if question.Type != input.QuestionType {
			return apierr.BadRequest("QUESTION_TYPE_MISMATCH", nil)
		}

		response := &types.Response{
			AttemptID:  attempt.ID,
			QuestionID: question.ID,
		}
		switch question.Type {
		case types.QuestionTypeMultipleChoice:
			if !optionBelongsTo(question, input.SelectedOptionID) {
				return apierr.NotFound("OPTION_NOT_FOUND")
			}
			response.SelectedOption = input.SelectedOptionID
		case types.QuestionTypeMatching:
			response.AdditionalData = input.AdditionalData
		}

		saved, err := as.responseRepo.Upsert(ctx, tx, response)
		if err != nil {
			return fmt.Errorf("save response: %w", err)
		}
		out = saved
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func optionBelongsTo(question *types.Question, optionID string) bool {
	for _, option := range question.Options {
		if option.ID.String() == optionID {
			return true
		}
	}
	return false
}

func (as *assessmentService) FinishAttempt(ctx context.Context, attemptID uuid.UUID) (*GradeReport, error) {
	identity := ctxutil.GetIdentity(ctx)
	if identity == nil || identity.Auth0ID == "" {
		return nil, apierr.Unauthorized("UNAUTHORIZED")
	}

	var out *GradeReport
	if err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		attempt, err := as.attemptRepo.GetByID(ctx, tx, attemptID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierr.NotFound("TEST_ATTEMPT_NOT_FOUND")
			}
			return fmt.Errorf("load attempt: %w", err)
		}
		if attempt.UserID != identity.Auth0ID {
			return apierr.NotFound("TEST_ATTEMPT_NOT_FOUND")
		}
		if attempt.DueAt != nil && attempt.DueAt.Before(time.Now().UTC()) {
			return apierr.Conflict("TEST_ATTEMPT_EXPIRED")
		}
		if attempt.Status != types.TestAttemptInProgress {
			return apierr.Conflict("TEST_ATTEMPT_NOT_IN_PROGRESS")
		}

		now := time.Now().UTC()
		if err := as.attemptRepo.Finish(ctx, tx, attempt.ID, types.TestAttemptSubmitted, identity.Auth0ID, &now); err != nil {
			return fmt.Errorf("submit attempt: %w", err)
		}

		report, err := as.gradeAttempt(ctx, tx, attempt.ID)
		if err != nil {
			return err
		}
		out = report
		return nil
	}); err != nil {
		as.log.Warn("FinishAttempt: transaction failed", "attempt_id", attemptID, "error", err)
		return nil, err
	}

	if err := as.scheduler.CancelTestExpiry(ctx, attemptID); err != nil {
		as.log.Warn("FinishAttempt: canceling expiry failed", "attempt_id", attemptID, "error", err)
	}

	as.log.Info("Test attempt graded", "attempt_id", attemptID, "score", out.Attempt.Score, "max_score", out.MaxScore)
	return out, nil
}

// SystemFinish closes an overdue attempt on behalf of the platform: the
// expiry scheduler and the system finish endpoint both land here. An
// attempt that is no longer IN_PROGRESS is left untouched so retries
// and sweep races stay harmless.
func (as *assessmentService) SystemFinish(ctx context.Context, attemptID uuid.UUID) error {
	err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		attempt, err := as.attemptRepo.GetByID(ctx, tx, attemptID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierr.NotFound("TEST_ATTEMPT_NOT_FOUND")
			}
			return fmt.Errorf("load attempt: %w", err)
		}
		if attempt.Status != types.TestAttemptInProgress {
			return nil
		}

		now := time.Now().UTC()
		if err := as.attemptRepo.Finish(ctx, tx, attempt.ID, types.TestAttemptSubmitted, types.AttemptFinisherSystem, &now); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return fmt.Errorf("submit attempt: %w", err)
		}

		if _, err := as.gradeAttempt(ctx, tx, attempt.ID); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		as.log.Warn("SystemFinish: failed", "attempt_id", attemptID, "error", err)
		return err
	}

	as.log.Info("Test attempt closed by system", "attempt_id", attemptID)
	return nil
}

// gradeAttempt scores every stored response of a SUBMITTED attempt,
// writes the per-response verdicts and stamps the total on the attempt.
// Partial matching credit is recorded on the response but only fully
// correct answers count toward the total.
func (as *assessmentService) gradeAttempt(ctx context.Context, tx *gorm.DB, attemptID uuid.UUID) (*GradeReport, error) {
	attempt, err := as.attemptRepo.GetWithResponses(ctx, tx, attemptID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound("SUBMITTED_TEST_ATTEMPT_NOT_FOUND")
		}
		return nil, fmt.Errorf("load attempt for grading: %w", err)
	}
	if attempt.Status != types.TestAttemptSubmitted {
		return nil, apierr.Conflict("SUBMITTED_TEST_ATTEMPT_NOT_FOUND")
	}

	total := 0.0
	for i := range attempt.Responses {
		response := &attempt.Responses[i]
		if response.Question == nil {
			continue
		}

		graded := GradeQuestionResponse(response.Question, response)
		if err := as.responseRepo.UpdateGrading(ctx, tx, response.ID, graded.IsCorrect, graded.PointsAwarded); err != nil {
			return nil, fmt.Errorf("record grading: %w", err)
		}
		if graded.IsCorrect != nil && *graded.IsCorrect {
			total += graded.PointsAwarded
		}
	}

	if err := as.attemptRepo.SetScore(ctx, tx, attempt.ID, total, types.TestAttemptGraded); err != nil {
		return nil, fmt.Errorf("record score: %w", err)
	}

	questions, err := as.testRepo.QuestionsByTest(ctx, tx, attempt.TestID)
	if err != nil {
		return nil, fmt.Errorf("load questions for max score: %w", err)
	}
	maxScore := 0
	for _, question := range questions {
		maxScore += question.Points
	}

	attempt.Score = &total
	attempt.Status = types.TestAttemptGraded
	attempt.Responses = nil
	attempt.Test = nil

	report := &GradeReport{Attempt: attempt, MaxScore: maxScore}
	if maxScore > 0 {
		report.Percentage = round2(total / float64(maxScore) * 100)
	}
	return report, nil
}

// AttemptDetail returns the attempt with its responses. Once the
// attempt is out of IN_PROGRESS the response includes the full
// per-section insights with answer keys; until then questions stay
// hidden so the payload never leaks the key mid-attempt.
func (as *assessmentService) AttemptDetail(ctx context.Context, attemptID uuid.UUID) (*AttemptDetailView, error) {
	identity := ctxutil.GetIdentity(ctx)
	if identity == nil || identity.Auth0ID == "" {
		return nil, apierr.Unauthorized("UNAUTHORIZED")
	}

	attempt, err := as.attemptRepo.GetWithResponses(ctx, nil, attemptID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound("TEST_ATTEMPT_NOT_FOUND")
		}
		as.log.Warn("AttemptDetail: query failed", "attempt_id", attemptID, "error", err)
		return nil, fmt.Errorf("load attempt: %w", err)
	}
	if attempt.UserID != identity.Auth0ID {
		return nil, apierr.NotFound("TEST_ATTEMPT_NOT_FOUND")
	}

	view := &AttemptDetailView{
		ID:          attempt.ID,
		Test:        testSummary(attempt.Test),
		Status:      attempt.Status,
		StartedAt:   attempt.StartedAt,
		SubmittedAt: attempt.SubmittedAt,
		DueAt:       attempt.DueAt,
		Score:       attempt.Score,
		Responses:   make([]*types.Response, 0, len(attempt.Responses)),
	}

	graded := attempt.Status == types.TestAttemptSubmitted || attempt.Status == types.TestAttemptGraded
	for i := range attempt.Responses {
		response := attempt.Responses[i]
		response.Question = nil
		view.Responses = append(view.Responses, &response)
	}

	if graded {
		insights, err := as.buildInsights(ctx, attempt)
		if err != nil {
			as.log.Warn("AttemptDetail: building insights failed", "attempt_id", attemptID, "error", err)
			return nil, err
		}
		view.Insights = insights
	}
	return view, nil
}

func (as *assessmentService) buildInsights(ctx context.Context, attempt *types.TestAttempt) (*AttemptInsights, error) {
	user, err := as.userRepo.GetByAuth0ID(ctx, nil, attempt.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound("USER_NOT_FOUND")
		}
		return nil, fmt.Errorf("load user: %w", err)
	}

	test, err := as.testRepo.GetFull(ctx, nil, attempt.TestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound("TEST_NOT_FOUND")
		}
		return nil, fmt.Errorf("load test: %w", err)
	}

	return buildAttemptInsights(attempt, test, user.FullName), nil
}

// buildAttemptInsights assembles the report from rows already in hand.
// Questions the student skipped get a placeholder response so the
// report covers the entire test.
func buildAttemptInsights(attempt *types.TestAttempt, test *types.Test, studentName string) *AttemptInsights {
	responsesByQuestion := make(map[uuid.UUID]*types.Response, len(attempt.Responses))
	for i := range attempt.Responses {
		responsesByQuestion[attempt.Responses[i].QuestionID] = &attempt.Responses[i]
	}

	insights := &AttemptInsights{
		StudentName:  studentName,
		TestTitle:    test.Title,
		MaximumScore: MaxTestPoints(test),
		Status:       attempt.Status,
		Sections:     make([]*SectionInsight, 0, len(test.Sections)),
	}
	if attempt.Score != nil {
		insights.Score = *attempt.Score
	}
	if attempt.SubmittedAt != nil {
		minutes := round2(attempt.SubmittedAt.Sub(attempt.StartedAt).Minutes())
		insights.TimeTakenMinutes = &minutes
	}

	for si := range test.Sections {
		section := &test.Sections[si]
		sectionInsight := &SectionInsight{SectionName: section.Name}

		for qi := range section.Questions {
			appendQuestionInsight(sectionInsight, &section.Questions[qi], responsesByQuestion)
		}
		for ti := range section.Tasks {
			task := &section.Tasks[ti]
			for qi := range task.Questions {
				appendQuestionInsight(sectionInsight, &task.Questions[qi], responsesByQuestion)
			}
		}
		insights.Sections = append(insights.Sections, sectionInsight)
	}
	return insights
}

func appendQuestionInsight(section *SectionInsight, question *types.Question, responses map[uuid.UUID]*types.Response) {
	insight := &QuestionInsight{
		QuestionID:     question.ID,
		QuestionText:   question.Text,
		QuestionType:   question.Type,
		QuestionPoints: question.Points,
		CorrectAnswers: correctAnswerKey(question),
		Response:       &ResponseInsight{},
	}

	if response, ok := responses[question.ID]; ok {
		insight.Response.ResponseID = &response.ID
		insight.Response.SelectedOption = response.SelectedOption
		insight.Response.AdditionalData = response.AdditionalData
		if response.PointsAwarded != nil {
			insight.Response.PointsAwarded = *response.PointsAwarded
		}
		if response.IsCorrect != nil {
			insight.Response.IsCorrect = *response.IsCorrect
		}
	}

	section.SectionScore += insight.Response.PointsAwarded
	section.Questions = append(section.Questions, insight)
}

func correctAnswerKey(question *types.Question) *CorrectAnswerKey {
	key := &CorrectAnswerKey{}
	switch question.Type {
	case types.QuestionTypeMultipleChoice:
		for _, option := range question.Options {
			if option.IsCorrect {
				key.MultipleChoice = append(key.MultipleChoice, option.Text)
			}
		}
	case types.QuestionTypeNumeric:
		key.NumericAnswer = question.CorrectNumericAnswer
	case types.QuestionTypeMatching:
		key.Matching = &MatchingKey{
			Items:   question.MatchingItems,
			Mapping: question.CorrectMapping,
		}
	}
	if question.CorrectFormulaLatex != "" {
		key.Formula = question.CorrectFormulaLatex
	}
	return key
}

func (as *assessmentService) MyAttempts(ctx context.Context, page, pageSize int) (*AttemptPage, error) {
	identity := ctxutil.GetIdentity(ctx)
	if identity == nil || identity.Auth0ID == "" {
		return nil, apierr.Unauthorized("UNAUTHORIZED")
	}

	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 10
	}

	attempts, total, err := as.attemptRepo.ListByUser(ctx, nil, identity.Auth0ID, page, pageSize)
	if err != nil {
		as.log.Warn("MyAttempts: query failed", "user_id", identity.Auth0ID, "error", err)
		return nil, fmt.Errorf("list attempts: %w", err)
	}

	out := &AttemptPage{
		Attempts:   make([]*AttemptListItem, 0, len(attempts)),
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: int((total + int64(pageSize) - 1) / int64(pageSize)),
	}
	for _, attempt := range attempts {
		out.Attempts = append(out.Attempts, &AttemptListItem{
			ID:          attempt.ID,
			Status:      attempt.Status,
			StartedAt:   attempt.StartedAt,
			SubmittedAt: attempt.SubmittedAt,
			DueAt:       attempt.DueAt,
			Score:       attempt.Score,
			Test:        testSummary(attempt.Test),
		})
	}
	return out, nil
}

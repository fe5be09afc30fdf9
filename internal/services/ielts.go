package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/genasnewdar/lever-stg/internal/data/repos"
	"github.com/genasnewdar/lever-stg/internal/platform/apierr"
	"github.com/genasnewdar/lever-stg/internal/platform/ctxutil"
	"github.com/genasnewdar/lever-stg/internal/platform/logger"
	"github.com/genasnewdar/lever-stg/internal/types"
)

// defaultIeltsDurationMinutes covers tests whose module subtests carry
// no durations of their own.
const defaultIeltsDurationMinutes = 180

// IeltsTestSummary is the catalog card for an IELTS test.
type IeltsTestSummary struct {
	ID          uuid.UUID             `json:"id"`
	Title       string                `json:"title"`
	Description string                `json:"description,omitempty"`
	TestType    types.IeltsTestType   `json:"test_type"`
	Status      types.IeltsTestStatus `json:"status"`
	PublishedAt *time.Time            `json:"published_at,omitempty"`
	CreatedAt   time.Time             `json:"created_at"`
}

type IeltsTestPage struct {
	Tests      []*IeltsTestSummary `json:"tests"`
	Page       int                 `json:"page"`
	PageSize   int                 `json:"per_page"`
	Total      int64               `json:"total"`
	TotalPages int                 `json:"total_pages"`
}

// IeltsListeningAnswer carries one listening answer. Free-text question
// types fill AnswerText; multiple choice sends the option id.
type IeltsListeningAnswer struct {
	AttemptID        uuid.UUID  `json:"attempt_id"`
	QuestionID       uuid.UUID  `json:"question_id"`
	AnswerText       string     `json:"answer_text,omitempty"`
	SelectedOptionID *uuid.UUID `json:"selected_option_id,omitempty"`
}

type IeltsReadingAnswer struct {
	AttemptID        uuid.UUID  `json:"attempt_id"`
	QuestionID       uuid.UUID  `json:"question_id"`
	AnswerText       string     `json:"answer_text,omitempty"`
	SelectedOptionID *uuid.UUID `json:"selected_option_id,omitempty"`
}

// IeltsWritingAnswer carries one essay. WordCount is recomputed from the
// essay text when the client omits it.
type IeltsWritingAnswer struct {
	AttemptID uuid.UUID `json:"attempt_id"`
	TaskID    uuid.UUID `json:"task_id"`
	EssayText string    `json:"essay_text"`
	WordCount *int      `json:"word_count,omitempty"`
}

type IeltsSpeakingAnswer struct {
	AttemptID       uuid.UUID `json:"attempt_id"`
	PartID          uuid.UUID `json:"part_id"`
	AudioURL        string    `json:"audio_url,omitempty"`
	Transcript      string    `json:"transcript,omitempty"`
	DurationSeconds int       `json:"duration_seconds,omitempty"`
}

// IeltsService runs the student-facing IELTS flow: browsing active
// tests, the four-module attempt lifecycle, grading and the static
// study content.
type IeltsService interface {
	ListTests(ctx context.Context, testType types.IeltsTestType, page, pageSize int) (*IeltsTestPage, error)
	GetTest(ctx context.Context, testID uuid.UUID) (*types.IeltsTest, error)
	StartAttempt(ctx context.Context, testID uuid.UUID) (*types.IeltsTestAttempt, error)
	SubmitListening(ctx context.Context, input *IeltsListeningAnswer) (*types.IeltsListeningResponse, error)
	SubmitReading(ctx context.Context, input *IeltsReadingAnswer) (*types.IeltsReadingResponse, error)
	SubmitWriting(ctx context.Context, input *IeltsWritingAnswer) (*types.IeltsWritingResponse, error)
	SubmitSpeaking(ctx context.Context, input *IeltsSpeakingAnswer) (*types.IeltsSpeakingResponse, error)
	CompleteModule(ctx context.Context, attemptID uuid.UUID, module types.IeltsModule) (*types.IeltsTestAttempt, error)
	MyAttempts(ctx context.Context) ([]*types.IeltsTestAttempt, error)
	AttemptDetail(ctx context.Context, attemptID uuid.UUID) (*types.IeltsTestAttempt, error)
	FinishExpired(ctx context.Context, attemptID uuid.UUID) (*types.IeltsTestAttempt, error)
	BandScores(ctx context.Context, module types.IeltsModule) ([]*types.IeltsBandScore, error)
	Vocabulary(ctx context.Context, topic, level string) ([]*types.IeltsVocabulary, error)
	GrammarPoints(ctx context.Context, level string) ([]*types.IeltsGrammarPoint, error)
	StudyMaterials(ctx context.Context, module types.IeltsModule) ([]*types.IeltsStudyMaterial, error)
}

type ieltsService struct {
	db            *gorm.DB
	log           *logger.Logger
	testRepo      repos.IeltsTestRepo
	attemptRepo   repos.IeltsAttemptRepo
	responseRepo  repos.IeltsResponseRepo
	referenceRepo repos.IeltsReferenceRepo
	scheduler     SchedulerService
}

func NewIeltsService(
	db *gorm.DB,
	baseLog *logger.Logger,
	testRepo repos.IeltsTestRepo,
	attemptRepo repos.IeltsAttemptRepo,
	responseRepo repos.IeltsResponseRepo,
	referenceRepo repos.IeltsReferenceRepo,
	scheduler SchedulerService,
) IeltsService {
	return &ieltsService{
		db:            db,
		log:           baseLog.With("service", "IeltsService"),
		testRepo:      testRepo,
		attemptRepo:   attemptRepo,
		responseRepo:  responseRepo,
		referenceRepo: referenceRepo,
		scheduler:     scheduler,
	}
}

func (s *ieltsService) ListTests(ctx context.Context, testType types.IeltsTestType, page, pageSize int) (*IeltsTestPage, error) {
	identity := ctxutil.GetIdentity(ctx)
	if identity == nil || identity.Auth0ID == "" {
		return nil, apierr.Unauthorized("UNAUTHORIZED")
	}
	if testType != "" && !testType.Valid() {
		return nil, apierr.BadRequest("INVALID_TEST_TYPE", fmt.Errorf("unknown test type %q", testType))
	}

	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 50 {
		pageSize = 10
	}

	tests, total, err := s.testRepo.List(ctx, nil, repos.IeltsListFilter{
		Status:   types.IeltsTestActive,
		TestType: testType,
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		s.log.Warn("ListTests: query failed", "error", err)
		return nil, fmt.Errorf("list ielts tests: %w", err)
	}

	summaries := make([]*IeltsTestSummary, 0, len(tests))
	for _, test := range tests {
		summaries = append(summaries, ieltsTestSummary(test))
	}
	return &IeltsTestPage{
		Tests:      summaries,
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: int((total + int64(pageSize) - 1) / int64(pageSize)),
	}, nil
}

// GetTest returns the full four-module tree of an active test with the
// answer key stripped out.
func (s *ieltsService) GetTest(ctx context.Context, testID uuid.UUID) (*types.IeltsTest, error) {
	identity := ctxutil.GetIdentity(ctx)
	if identity == nil || identity.Auth0ID == "" {
		return nil, apierr.Unauthorized("UNAUTHORIZED")
	}

	test, err := s.testRepo.GetFull(ctx, nil, testID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound("IELTS_TEST_NOT_FOUND")
		}
		return nil, fmt.Errorf("get ielts test: %w", err)
	}
	if test.Status != types.IeltsTestActive {
		return nil, apierr.NotFound("IELTS_TEST_NOT_FOUND")
	}

	sanitizeIeltsTest(test)
	return test, nil
}

func (s *ieltsService) StartAttempt(ctx context.Context, testID uuid.UUID) (*types.IeltsTestAttempt, error) {
	identity := ctxutil.GetIdentity(ctx)
	if identity == nil || identity.Auth0ID == "" {
		return nil, apierr.Unauthorized("UNAUTHORIZED")
	}

	var attempt *types.IeltsTestAttempt
	var expiresAt time.Time
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		test, err := s.testRepo.GetFull(ctx, tx, testID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierr.NotFound("IELTS_TEST_NOT_FOUND")
			}
			return fmt.Errorf("get ielts test: %w", err)
		}
		if test.Status != types.IeltsTestActive {
			return apierr.NotFound("IELTS_TEST_NOT_FOUND")
		}

		if _, err := s.attemptRepo.GetActiveByUserAndTest(ctx, tx, identity.Auth0ID, testID); err == nil {
			return apierr.Conflict("IELTS_TEST_ALREADY_IN_PROGRESS")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("check active ielts attempt: %w", err)
		}

		now := time.Now().UTC()
		expiresAt = now.Add(time.Duration(ieltsDurationMinutes(test)) * time.Minute)
		attempt, err = s.attemptRepo.Create(ctx, tx, &types.IeltsTestAttempt{
			UserID:      identity.Auth0ID,
			IeltsTestID: testID,
			Status:      types.IeltsAttemptNotStarted,
			StartedAt:   &now,
			ExpiresAt:   &expiresAt,
		})
		if err != nil {
			return fmt.Errorf("create ielts attempt: %w", err)
		}
		return nil
	})
	if err != nil {
		s.log.Warn("StartAttempt: transaction failed", "testId", testID, "error", err)
		return nil, err
	}

	if err := s.scheduler.ScheduleIeltsExpiry(ctx, attempt.ID, expiresAt); err != nil {
		s.log.Error("StartAttempt: expiry scheduling failed, cancelling attempt", "attemptId", attempt.ID, "error", err)
		if cancelErr := s.attemptRepo.UpdateFields(ctx, nil, attempt.ID, map[string]interface{}{
			"status": types.IeltsAttemptCancelled,
		}); cancelErr != nil {
			s.log.Error("StartAttempt: cancel after scheduling failure failed", "attemptId", attempt.ID, "error", cancelErr)
		}
		return nil, apierr.BadRequest("FAILED_TO_START_TEST", err)
	}
	return attempt, nil
}

func (s *ieltsService) SubmitListening(ctx context.Context, input *IeltsListeningAnswer) (*types.IeltsListeningResponse, error) {
	identity := ctxutil.GetIdentity(ctx)
	if identity == nil || identity.Auth0ID == "" {
		return nil, apierr.Unauthorized("UNAUTHORIZED")
	}
	if input == nil || input.AttemptID == uuid.Nil || input.QuestionID == uuid.Nil {
		return nil, apierr.BadRequest("INVALID_RESPONSE_PAYLOAD", errors.New("attempt_id and question_id are required"))
	}

	var response *types.IeltsListeningResponse
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		attempt, err := s.answerableAttempt(ctx, tx, input.AttemptID, identity.Auth0ID,
			types.IeltsAttemptNotStarted, types.IeltsAttemptInProgress)
		if err != nil {
			return err
		}

		response = &types.IeltsListeningResponse{
			AttemptID:        input.AttemptID,
			QuestionID:       input.QuestionID,
			AnswerText:       strings.TrimSpace(input.AnswerText),
			SelectedOptionID: input.SelectedOptionID,
		}
		if err := s.responseRepo.UpsertListening(ctx, tx, response); err != nil {
			return fmt.Errorf("upsert listening response: %w", err)
		}
		return s.markInProgress(ctx, tx, attempt, types.IeltsModuleListening)
	})
	if err != nil {
		s.log.Warn("SubmitListening: transaction failed", "attemptId", input.AttemptID, "error", err)
		return nil, err
	}
	return response, nil
}

func (s *ieltsService) SubmitReading(ctx context.Context, input *IeltsReadingAnswer) (*types.IeltsReadingResponse, error) {
	identity := ctxutil.GetIdentity(ctx)
	if identity == nil || identity.Auth0ID == "" {
		return nil, apierr.Unauthorized("UNAUTHORIZED")
	}
	if input == nil || input.AttemptID == uuid.Nil || input.QuestionID == uuid.Nil {
		return nil, apierr.BadRequest("INVALID_RESPONSE_PAYLOAD", errors.New("attempt_id and question_id are required"))
	}

	var response *types.IeltsReadingResponse
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		attempt, err := s.answerableAttempt(ctx, tx, input.AttemptID, identity.Auth0ID,
			types.IeltsAttemptNotStarted, types.IeltsAttemptInProgress, types.IeltsAttemptListeningCompleted)
		if err != nil {
			return err
		}

		response = &types.IeltsReadingResponse{
			AttemptID:        input.AttemptID,
			QuestionID:       input.QuestionID,
			AnswerText:       strings.TrimSpace(input.AnswerText),
			SelectedOptionID: input.SelectedOptionID,
		}
		if err := s.responseRepo.UpsertReading(ctx, tx, response); err != nil {
			return fmt.Errorf("upsert reading response: %w", err)
		}
		return s.markInProgress(ctx, tx, attempt, types.IeltsModuleReading)
	})
	if err != nil {
		s.log.Warn("SubmitReading: transaction failed", "attemptId", input.AttemptID, "error", err)
		return nil, err
	}
	return response, nil
}

func (s *ieltsService) SubmitWriting(ctx context.Context, input *IeltsWritingAnswer) (*types.IeltsWritingResponse, error) {
	identity := ctxutil.GetIdentity(ctx)
	if identity == nil || identity.Auth0ID == "" {
		return nil, apierr.Unauthorized("UNAUTHORIZED")
	}
	if input == nil || input.AttemptID == uuid.Nil || input.TaskID == uuid.Nil {
		return nil, apierr.BadRequest("INVALID_RESPONSE_PAYLOAD", errors.New("attempt_id and task_id are required"))
	}

	wordCount := essayWordCount(input.EssayText, input.WordCount)
	var response *types.IeltsWritingResponse
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		attempt, err := s.answerableAttempt(ctx, tx, input.AttemptID, identity.Auth0ID,
			types.IeltsAttemptNotStarted, types.IeltsAttemptInProgress,
			types.IeltsAttemptListeningCompleted, types.IeltsAttemptReadingCompleted)
		if err != nil {
			return err
		}

		response = &types.IeltsWritingResponse{
			AttemptID: input.AttemptID,
			TaskID:    input.TaskID,
			EssayText: input.EssayText,
			WordCount: &wordCount,
		}
		if err := s.responseRepo.UpsertWriting(ctx, tx, response); err != nil {
			return fmt.Errorf("upsert writing response: %w", err)
		}
		return s.markInProgress(ctx, tx, attempt, types.IeltsModuleWriting)
	})
	if err != nil {
		s.log.Warn("SubmitWriting: transaction failed", "attemptId", input.AttemptID, "error", err)
		return nil, err
	}
	return response, nil
}

func (s *ieltsService) SubmitSpeaking(ctx context.Context, input *IeltsSpeakingAnswer) (*types.IeltsSpeakingResponse, error) {
	identity := ctxutil.GetIdentity(ctx)
	if identity == nil || identity.Auth0ID == "" {
		return nil, apierr.Unauthorized("UNAUTHORIZED")
	}
	if input == nil || input.AttemptID == uuid.Nil || input.PartID == uuid.Nil {
		return nil, apierr.BadRequest("INVALID_RESPONSE_PAYLOAD", errors.New("attempt_id and part_id are required"))
	}

	var response *types.IeltsSpeakingResponse
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		attempt, err := s.answerableAttempt(ctx, tx, input.AttemptID, identity.Auth0ID,
			types.IeltsAttemptNotStarted, types.IeltsAttemptInProgress,
			types.IeltsAttemptListeningCompleted, types.IeltsAttemptReadingCompleted,
			types.IeltsAttemptWritingCompleted)
		if err != nil {
			return err
		}

		response = &types.IeltsSpeakingResponse{
			AttemptID:       input.AttemptID,
			PartID:          input.PartID,
			AudioURL:        input.AudioURL,
			Transcript:      input.Transcript,
			DurationSeconds: input.DurationSeconds,
		}
		if err := s.responseRepo.UpsertSpeaking(ctx, tx, response); err != nil {
			return fmt.Errorf("upsert speaking response: %w", err)
		}
		return s.markInProgress(ctx, tx, attempt, types.IeltsModuleSpeaking)
	})
	if err != nil {
		s.log.Warn("SubmitSpeaking: transaction failed", "attemptId", input.AttemptID, "error", err)
		return nil, err
	}
	return response, nil
}

// CompleteModule advances the attempt one rung down the module ladder.
// Completing SPEAKING closes the attempt and triggers grading.
func (s *ieltsService) CompleteModule(ctx context.Context, attemptID uuid.UUID, module types.IeltsModule) (*types.IeltsTestAttempt, error) {
	identity := ctxutil.GetIdentity(ctx)
	if identity == nil || identity.Auth0ID == "" {
		return nil, apierr.Unauthorized("UNAUTHORIZED")
	}
	if !module.Valid() {
		return nil, apierr.BadRequest("INVALID_MODULE", fmt.Errorf("unknown module %q", module))
	}

	var finished bool
	var attempt *types.IeltsTestAttempt
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := s.attemptRepo.GetByID(ctx, tx, attemptID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierr.NotFound("IELTS_ATTEMPT_NOT_FOUND")
			}
			return fmt.Errorf("get ielts attempt: %w", err)
		}
		if current.UserID != identity.Auth0ID {
			return apierr.NotFound("IELTS_ATTEMPT_NOT_FOUND")
		}

		next, nextModule, err := nextAttemptStage(current.Status, module)
		if err != nil {
			return err
		}

		updates := map[string]interface{}{
			"status":         next,
			"current_module": nextModule,
		}
		if next == types.IeltsAttemptFullyCompleted {
			finished = true
			updates["completed_at"] = time.Now().UTC()
		}
		if err := s.attemptRepo.UpdateFields(ctx, tx, attemptID, updates); err != nil {
			return fmt.Errorf("advance ielts attempt: %w", err)
		}

		if finished {
			if err := s.gradeAttemptTx(ctx, tx, current); err != nil {
				return err
			}
		}

		attempt, err = s.attemptRepo.GetByID(ctx, tx, attemptID)
		if err != nil {
			return fmt.Errorf("reload ielts attempt: %w", err)
		}
		return nil
	})
	if err != nil {
		s.log.Warn("CompleteModule: transaction failed", "attemptId", attemptID, "module", module, "error", err)
		return nil, err
	}

	if finished {
		if err := s.scheduler.CancelIeltsExpiry(ctx, attemptID); err != nil {
			s.log.Warn("CompleteModule: expiry cancel failed", "attemptId", attemptID, "error", err)
		}
	}
	return attempt, nil
}

func (s *ieltsService) MyAttempts(ctx context.Context) ([]*types.IeltsTestAttempt, error) {
	identity := ctxutil.GetIdentity(ctx)
	if identity == nil || identity.Auth0ID == "" {
		return nil, apierr.Unauthorized("UNAUTHORIZED")
	}

	attempts, err := s.attemptRepo.ListByUser(ctx, nil, identity.Auth0ID)
	if err != nil {
		s.log.Warn("MyAttempts: query failed", "error", err)
		return nil, fmt.Errorf("list ielts attempts: %w", err)
	}
	return attempts, nil
}

func (s *ieltsService) AttemptDetail(ctx context.Context, attemptID uuid.UUID) (*types.IeltsTestAttempt, error) {
	identity := ctxutil.GetIdentity(ctx)
	if identity == nil || identity.Auth0ID == "" {
		return nil, apierr.Unauthorized("UNAUTHORIZED")
	}

	attempt, err := s.attemptRepo.GetWithResponses(ctx, nil, attemptID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound("IELTS_ATTEMPT_NOT_FOUND")
		}
		return nil, fmt.Errorf("get ielts attempt: %w", err)
	}
	if attempt.UserID != identity.Auth0ID {
		return nil, apierr.NotFound("IELTS_ATTEMPT_NOT_FOUND")
	}
	return attempt, nil
}

// FinishExpired closes an attempt whose deadline passed. Attempts that
// finished at least one module are treated as fully completed and
// graded; untouched ones simply expire. Terminal attempts are left
// alone so the redis loop and the sweep can both hand over the same id.
func (s *ieltsService) FinishExpired(ctx context.Context, attemptID uuid.UUID) (*types.IeltsTestAttempt, error) {
	var attempt *types.IeltsTestAttempt
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := s.attemptRepo.GetByID(ctx, tx, attemptID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierr.NotFound("IELTS_ATTEMPT_NOT_FOUND")
			}
			return fmt.Errorf("get ielts attempt: %w", err)
		}
		if !current.Status.Active() {
			attempt = current
			return nil
		}

		final := types.IeltsAttemptExpired
		switch current.Status {
		case types.IeltsAttemptListeningCompleted,
			types.IeltsAttemptReadingCompleted,
			types.IeltsAttemptWritingCompleted:
			final = types.IeltsAttemptFullyCompleted
		}

		if err := s.attemptRepo.UpdateFields(ctx, tx, attemptID, map[string]interface{}{
			"status":         final,
			"current_module": nil,
			"completed_at":   time.Now().UTC(),
		}); err != nil {
			return fmt.Errorf("finish ielts attempt: %w", err)
		}

		if final == types.IeltsAttemptFullyCompleted {
			if err := s.gradeAttemptTx(ctx, tx, current); err != nil {
				return err
			}
		}

		attempt, err = s.attemptRepo.GetByID(ctx, tx, attemptID)
		if err != nil {
			return fmt.Errorf("reload ielts attempt: %w", err)
		}
		return nil
	})
	if err != nil {
		s.log.Warn("FinishExpired: transaction failed", "attemptId", attemptID, "error", err)
		return nil, err
	}
	return attempt, nil
}

func (s *ieltsService) BandScores(ctx context.Context, module types.IeltsModule) ([]*types.IeltsBandScore, error) {
	if module != "" && !module.Valid() {
		return nil, apierr.BadRequest("INVALID_MODULE", fmt.Errorf("unknown module %q", module))
	}

	rows, err := s.referenceRepo.BandScores(ctx, nil, module)
	if err != nil {
		s.log.Warn("BandScores: query failed", "module", module, "error", err)
		return nil, fmt.Errorf("list band scores: %w", err)
	}
	if len(rows) > 0 {
		return rows, nil
	}

	// Unseeded database: serve the built-in conversion tables instead.
	modules := []types.IeltsModule{types.IeltsModuleListening, types.IeltsModuleReading}
	if module != "" {
		modules = []types.IeltsModule{module}
	}
	for _, m := range modules {
		for _, row := range ReferenceBandRows(s.log, m) {
			rows = append(rows, &types.IeltsBandScore{
				Module:      m,
				MinRawScore: row.MinRaw,
				BandScore:   row.Band,
			})
		}
	}
	return rows, nil
}

func (s *ieltsService) Vocabulary(ctx context.Context, topic, level string) ([]*types.IeltsVocabulary, error) {
	words, err := s.referenceRepo.Vocabulary(ctx, nil, topic, level)
	if err != nil {
		s.log.Warn("Vocabulary: query failed", "topic", topic, "level", level, "error", err)
		return nil, fmt.Errorf("list vocabulary: %w", err)
	}
	return words, nil
}

func (s *ieltsService) GrammarPoints(ctx context.Context, level string) ([]*types.IeltsGrammarPoint, error) {
	points, err := s.referenceRepo.GrammarPoints(ctx, nil, level)
	if err != nil {
		s.log.Warn("GrammarPoints: query failed", "level", level, "error", err)
		return nil, fmt.Errorf("list grammar points: %w", err)
	}
	return points, nil
}

func (s *ieltsService) StudyMaterials(ctx context.Context, module types.IeltsModule) ([]*types.IeltsStudyMaterial, error) {
	if module != "" && !module.Valid() {
		return nil, apierr.BadRequest("INVALID_MODULE", fmt.Errorf("unknown module %q", module))
	}

	materials, err := s.referenceRepo.StudyMaterials(ctx, nil, module)
	if err != nil {
		s.log.Warn("StudyMaterials: query failed", "module", module, "error", err)
		return nil, fmt.Errorf("list study materials: %w", err)
	}
	return materials, nil
}

// answerableAttempt loads the attempt and enforces ownership plus the
// module's allowed statuses. All three failures collapse into the same
// not-found so callers cannot probe other users' attempts.
func (s *ieltsService) answerableAttempt(ctx context.Context, tx *gorm.DB, attemptID uuid.UUID, userID string, allowed ...types.IeltsAttemptStatus) (*types.IeltsTestAttempt, error) {
	attempt, err := s.attemptRepo.GetByID(ctx, tx, attemptID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound("INVALID_ATTEMPT")
		}
		return nil, fmt.Errorf("get ielts attempt: %w", err)
	}
	if attempt.UserID != userID {
		return nil, apierr.NotFound("INVALID_ATTEMPT")
	}
	for _, status := range allowed {
		if attempt.Status == status {
			return attempt, nil
		}
	}
	return nil, apierr.NotFound("INVALID_ATTEMPT")
}

// markInProgress promotes a fresh attempt on its first answer and keeps
// current_module pointed at the module being worked.
func (s *ieltsService) markInProgress(ctx context.Context, tx *gorm.DB, attempt *types.IeltsTestAttempt, module types.IeltsModule) error {
	updates := map[string]interface{}{}
	if attempt.Status == types.IeltsAttemptNotStarted {
		updates["status"] = types.IeltsAttemptInProgress
	}
	if attempt.CurrentModule == nil || *attempt.CurrentModule != module {
		updates["current_module"] = module
	}
	if len(updates) == 0 {
		return nil
	}
	if err := s.attemptRepo.UpdateFields(ctx, tx, attempt.ID, updates); err != nil {
		return fmt.Errorf("mark attempt in progress: %w", err)
	}
	return nil
}

// gradeAttemptTx grades listening and reading, pulls examiner bands for
// writing and speaking when present, and stamps the final status.
func (s *ieltsService) gradeAttemptTx(ctx context.Context, tx *gorm.DB, attempt *types.IeltsTestAttempt) error {
	updates := map[string]interface{}{}
	var bands []float64

	listeningRaw, listeningTotal, err := s.gradeListeningTx(ctx, tx, attempt)
	if err != nil {
		return err
	}
	if listeningTotal > 0 {
		band := s.bandFor(ctx, tx, types.IeltsModuleListening, listeningRaw)
		updates["listening_score"] = listeningRaw
		updates["listening_band"] = band
		bands = append(bands, band)
	}

	readingRaw, readingTotal, err := s.gradeReadingTx(ctx, tx, attempt)
	if err != nil {
		return err
	}
	if readingTotal > 0 {
		band := s.bandFor(ctx, tx, types.IeltsModuleReading, readingRaw)
		updates["reading_score"] = readingRaw
		updates["reading_band"] = band
		bands = append(bands, band)
	}

	writingResponses, err := s.responseRepo.WritingByAttempt(ctx, tx, attempt.ID)
	if err != nil {
		return fmt.Errorf("load writing responses: %w", err)
	}
	writingBand := examinerBand(writingBandScores(writingResponses))
	if writingBand != nil {
		updates["writing_band"] = *writingBand
		bands = append(bands, *writingBand)
	}

	speakingResponses, err := s.responseRepo.SpeakingByAttempt(ctx, tx, attempt.ID)
	if err != nil {
		return fmt.Errorf("load speaking responses: %w", err)
	}
	speakingBand := examinerBand(speakingBandScores(speakingResponses))
	if speakingBand != nil {
		updates["speaking_band"] = *speakingBand
		bands = append(bands, *speakingBand)
	}

	status := types.IeltsAttemptPartiallyGraded
	if listeningTotal > 0 && readingTotal > 0 && writingBand != nil && speakingBand != nil {
		status = types.IeltsAttemptGraded
	}
	updates["status"] = status
	if len(bands) > 0 {
		updates["overall_band"] = overallBand(bands)
	}

	if err := s.attemptRepo.UpdateFields(ctx, tx, attempt.ID, updates); err != nil {
		return fmt.Errorf("store ielts grades: %w", err)
	}
	return nil
}

func (s *ieltsService) gradeListeningTx(ctx context.Context, tx *gorm.DB, attempt *types.IeltsTestAttempt) (raw, total int, err error) {
	questions, err := s.testRepo.ListeningQuestions(ctx, tx, attempt.IeltsTestID)
	if err != nil {
		return 0, 0, fmt.Errorf("load listening questions: %w", err)
	}
	if len(questions) == 0 {
		return 0, 0, nil
	}

	responses, err := s.responseRepo.ListeningByAttempt(ctx, tx, attempt.ID)
	if err != nil {
		return 0, 0, fmt.Errorf("load listening responses: %w", err)
	}

	byID := make(map[uuid.UUID]*types.IeltsListeningQuestion, len(questions))
	for _, question := range questions {
		byID[question.ID] = question
	}
	for _, response := range responses {
		question, ok := byID[response.QuestionID]
		if !ok {
			continue
		}
		correct := listeningAnswerCorrect(question, response)
		if err := s.responseRepo.GradeListening(ctx, tx, response.ID, correct); err != nil {
			return 0, 0, fmt.Errorf("grade listening response: %w", err)
		}
		if correct {
			raw++
		}
	}
	return raw, len(questions), nil
}

func (s *ieltsService) gradeReadingTx(ctx context.Context, tx *gorm.DB, attempt *types.IeltsTestAttempt) (raw, total int, err error) {
	questions, err := s.testRepo.ReadingQuestions(ctx, tx, attempt.IeltsTestID)
	if err != nil {
		return 0, 0, fmt.Errorf("load reading questions: %w", err)
	}
	if len(questions) == 0 {
		return 0, 0, nil
	}

	responses, err := s.responseRepo.ReadingByAttempt(ctx, tx, attempt.ID)
	if err != nil {
		return 0, 0, fmt.Errorf("load reading responses: %w", err)
	}

	byID := make(map[uuid.UUID]*types.IeltsReadingQuestion, len(questions))
	for _, question := range questions {
		byID[question.ID] = question
	}
	for _, response := range responses {
		question, ok := byID[response.QuestionID]
		if !ok {
			continue
		}
		correct := readingAnswerCorrect(question, response)
		if err := s.responseRepo.GradeReading(ctx, tx, response.ID, correct); err != nil {
			return 0, 0, fmt.Errorf("grade reading response: %w", err)
		}
		if correct {
			raw++
		}
	}
	return raw, len(questions), nil
}

// bandFor prefers the seeded conversion table and falls back to the
// built-in one when the database has no rows for the module.
func (s *ieltsService) bandFor(ctx context.Context, tx *gorm.DB, module types.IeltsModule, raw int) float64 {
	rows, err := s.referenceRepo.BandScores(ctx, tx, module)
	if err != nil {
		s.log.Warn("bandFor: conversion lookup failed, using built-in table", "module", module, "error", err)
	}
	if err == nil && len(rows) > 0 {
		for _, row := range rows {
			if raw >= row.MinRawScore {
				return row.BandScore
			}
		}
		return 1.0
	}
	return ConvertRawToBand(s.log, module, raw)
}

func ieltsTestSummary(test *types.IeltsTest) *IeltsTestSummary {
	if test == nil {
		return nil
	}
	return &IeltsTestSummary{
		ID:          test.ID,
		Title:       test.Title,
		Description: test.Description,
		TestType:    test.TestType,
		Status:      test.Status,
		PublishedAt: test.PublishedAt,
		CreatedAt:   test.CreatedAt,
	}
}

// ieltsDurationMinutes sums the durations of the attached module
// subtests to size the attempt window.
func ieltsDurationMinutes(test *types.IeltsTest) int {
	total := 0
	if test.Listening != nil {
		total += test.Listening.Duration
	}
	if test.Reading != nil {
		total += test.Reading.Duration
	}
	if test.Writing != nil {
		total += test.Writing.Duration
	}
	if test.Speaking != nil {
		total += test.Speaking.Duration
	}
	if total <= 0 {
		return defaultIeltsDurationMinutes
	}
	return total
}

// sanitizeIeltsTest blanks answer keys on listening and reading
// questions before the tree is handed to a test taker.
func sanitizeIeltsTest(test *types.IeltsTest) {
	if test == nil {
		return
	}
	if test.Listening != nil {
		for si := range test.Listening.Sections {
			questions := test.Listening.Sections[si].Questions
			for qi := range questions {
				questions[qi].CorrectAnswer = ""
				for oi := range questions[qi].Options {
					questions[qi].Options[oi].IsCorrect = false
				}
			}
		}
	}
	if test.Reading != nil {
		for pi := range test.Reading.Passages {
			questions := test.Reading.Passages[pi].Questions
			for qi := range questions {
				questions[qi].CorrectAnswer = ""
				for oi := range questions[qi].Options {
					questions[qi].Options[oi].IsCorrect = false
				}
			}
		}
	}
}

// nextAttemptStage maps a completed module onto the attempt's next
// status. Modules must be closed in test order.
func nextAttemptStage(current types.IeltsAttemptStatus, module types.IeltsModule) (types.IeltsAttemptStatus, *types.IeltsModule, error) {
	switch module {
	case types.IeltsModuleListening:
		if current == types.IeltsAttemptNotStarted || current == types.IeltsAttemptInProgress {
			next := types.IeltsModuleReading
			return types.IeltsAttemptListeningCompleted, &next, nil
		}
	case types.IeltsModuleReading:
		if current == types.IeltsAttemptListeningCompleted {
			next := types.IeltsModuleWriting
			return types.IeltsAttemptReadingCompleted, &next, nil
		}
	case types.IeltsModuleWriting:
		if current == types.IeltsAttemptReadingCompleted {
			next := types.IeltsModuleSpeaking
			return types.IeltsAttemptWritingCompleted, &next, nil
		}
	case types.IeltsModuleSpeaking:
		if current == types.IeltsAttemptWritingCompleted {
			return types.IeltsAttemptFullyCompleted, nil, nil
		}
	}
	return "", nil, apierr.Conflict("INVALID_MODULE_SEQUENCE")
}

// listeningAnswerCorrect checks a response against the question's key:
// a normalized text match when correct_answer is set, otherwise the
// flagged option by id, label or text.
func listeningAnswerCorrect(question *types.IeltsListeningQuestion, response *types.IeltsListeningResponse) bool {
	if key := normalizeAnswer(question.CorrectAnswer); key != "" {
		return normalizeAnswer(response.AnswerText) == key
	}
	for _, option := range question.Options {
		if !option.IsCorrect {
			continue
		}
		if response.SelectedOptionID != nil && *response.SelectedOptionID == option.ID {
			return true
		}
		if text := normalizeAnswer(response.AnswerText); text != "" &&
			(text == normalizeAnswer(option.Label) || text == normalizeAnswer(option.Text)) {
			return true
		}
	}
	return false
}

func readingAnswerCorrect(question *types.IeltsReadingQuestion, response *types.IeltsReadingResponse) bool {
	if key := normalizeAnswer(question.CorrectAnswer); key != "" {
		return normalizeAnswer(response.AnswerText) == key
	}
	for _, option := range question.Options {
		if !option.IsCorrect {
			continue
		}
		if response.SelectedOptionID != nil && *response.SelectedOptionID == option.ID {
			return true
		}
		if text := normalizeAnswer(response.AnswerText); text != "" &&
			(text == normalizeAnswer(option.Label) || text == normalizeAnswer(option.Text)) {
			return true
		}
	}
	return false
}

func normalizeAnswer(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// essayWordCount trusts a positive client-sent count and otherwise
// counts whitespace-separated fields.
func essayWordCount(essay string, provided *int) int {
	if provided != nil && *provided > 0 {
		return *provided
	}
	return len(strings.Fields(essay))
}

func writingBandScores(responses []*types.IeltsWritingResponse) []*float64 {
	scores := make([]*float64, 0, len(responses))
	for _, response := range responses {
		scores = append(scores, response.BandScore)
	}
	return scores
}

func speakingBandScores(responses []*types.IeltsSpeakingResponse) []*float64 {
	scores := make([]*float64, 0, len(responses))
	for _, response := range responses {
		scores = append(scores, response.BandScore)
	}
	return scores
}

// examinerBand averages per-response examiner bands. It returns nil
// until every response has been graded, so a half-marked module never
// reports a band.
func examinerBand(scores []*float64) *float64 {
	if len(scores) == 0 {
		return nil
	}
	sum := 0.0
	for _, score := range scores {
		if score == nil {
			return nil
		}
		sum += *score
	}
	band := roundToHalf(sum / float64(len(scores)))
	return &band
}

// overallBand is the mean of the module bands rounded to the nearest
// half band, matching how composite IELTS scores are reported.
func overallBand(bands []float64) float64 {
	sum := 0.0
	for _, band := range bands {
		sum += band
	}
	return roundToHalf(sum / float64(len(bands)))
}

func roundToHalf(v float64) float64 {
	return math.Round(v*2) / 2
}

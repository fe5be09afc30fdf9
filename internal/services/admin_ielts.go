package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/genasnewdar/lever-stg/internal/data/repos"
	"github.com/genasnewdar/lever-stg/internal/platform/apierr"
	"github.com/genasnewdar/lever-stg/internal/platform/logger"
	"github.com/genasnewdar/lever-stg/internal/types"
)

type IeltsOptionInput struct {
	Label     string `json:"label"`
	Text      string `json:"text"`
	Order     int    `json:"order"`
	IsCorrect bool   `json:"is_correct"`
}

// IeltsQuestionInput is one authored listening or reading question; the
// two subtests share a shape. CorrectAnswer keys free-text questions,
// Options key multiple choice.
type IeltsQuestionInput struct {
	QuestionNumber int                `json:"question_number"`
	Text           string             `json:"text"`
	QuestionType   string             `json:"question_type"`
	CorrectAnswer  string             `json:"correct_answer"`
	Points         int                `json:"points"`
	Options        []IeltsOptionInput `json:"options"`
}

type IeltsListeningSectionInput struct {
	SectionNumber int                  `json:"section_number"`
	Title         string               `json:"title"`
	AudioURL      string               `json:"audio_url"`
	Instructions  string               `json:"instructions"`
	Questions     []IeltsQuestionInput `json:"questions"`
}

type IeltsListeningTestInput struct {
	AudioURL     string                       `json:"audio_url"`
	Duration     int                          `json:"duration"`
	Instructions string                       `json:"instructions"`
	Sections     []IeltsListeningSectionInput `json:"sections"`
}

type IeltsReadingPassageInput struct {
	PassageNumber int                  `json:"passage_number"`
	Title         string               `json:"title"`
	Content       string               `json:"content"`
	Questions     []IeltsQuestionInput `json:"questions"`
}

type IeltsReadingTestInput struct {
	Duration     int                        `json:"duration"`
	Instructions string                     `json:"instructions"`
	Passages     []IeltsReadingPassageInput `json:"passages"`
}

type IeltsWritingTaskInput struct {
	TaskNumber int                        `json:"task_number"`
	TaskType   types.IeltsWritingTaskType `json:"task_type"`
	Prompt     string                     `json:"prompt"`
	WordLimit  int                        `json:"word_limit"`
	Duration   int                        `json:"duration"`
	ImageURL   string                     `json:"image_url"`
}

type IeltsWritingTestInput struct {
	Duration     int                     `json:"duration"`
	Instructions string                  `json:"instructions"`
	Tasks        []IeltsWritingTaskInput `json:"tasks"`
}

// IeltsSpeakingPartInput carries one interview part; Questions is the
// ordered prompt list the examiner works through.
type IeltsSpeakingPartInput struct {
	PartNumber int      `json:"part_number"`
	Topic      string   `json:"topic"`
	CueCard    string   `json:"cue_card"`
	Questions  []string `json:"questions"`
	Duration   int      `json:"duration"`
}

type IeltsSpeakingTestInput struct {
	Duration     int                      `json:"duration"`
	Instructions string                   `json:"instructions"`
	Parts        []IeltsSpeakingPartInput `json:"parts"`
}

// CreateIeltsTestInput assembles a whole test in one request. Each of
// the four subtests is optional; zero durations fall back to the schema
// defaults.
type CreateIeltsTestInput struct {
	Title       string                   `json:"title"`
	Description string                   `json:"description"`
	TestType    types.IeltsTestType      `json:"test_type"`
	Status      types.IeltsTestStatus    `json:"status"`
	Listening   *IeltsListeningTestInput `json:"listening"`
	Reading     *IeltsReadingTestInput   `json:"reading"`
	Writing     *IeltsWritingTestInput   `json:"writing"`
	Speaking    *IeltsSpeakingTestInput  `json:"speaking"`
}

type AdminIeltsQuery struct {
	Status   types.IeltsTestStatus
	TestType types.IeltsTestType
	Page     int
	PageSize int
}

// AdminIeltsService authors IELTS tests, drives their lifecycle and
// records examiner bands for the two manually scored modules.
type AdminIeltsService interface {
	CreateTest(ctx context.Context, input CreateIeltsTestInput) (*types.IeltsTest, error)
	GetTest(ctx context.Context, testID uuid.UUID) (*types.IeltsTest, error)
	ListTests(ctx context.Context, query AdminIeltsQuery) (*IeltsTestPage, error)
	UpdateStatus(ctx context.Context, testID uuid.UUID, status types.IeltsTestStatus) (*types.IeltsTest, error)
	GradeWriting(ctx context.Context, responseID uuid.UUID, band float64, feedback string) (*types.IeltsTestAttempt, error)
	GradeSpeaking(ctx context.Context, responseID uuid.UUID, band float64, feedback string) (*types.IeltsTestAttempt, error)
}

type adminIeltsService struct {
	db           *gorm.DB
	log          *logger.Logger
	userRepo     repos.UserRepo
	testRepo     repos.IeltsTestRepo
	attemptRepo  repos.IeltsAttemptRepo
	responseRepo repos.IeltsResponseRepo
}

func NewAdminIeltsService(db *gorm.DB, baseLog *logger.Logger, userRepo repos.UserRepo, testRepo repos.IeltsTestRepo, attemptRepo repos.IeltsAttemptRepo, responseRepo repos.IeltsResponseRepo) AdminIeltsService {
	return &adminIeltsService{
		db:           db,
		log:          baseLog.With("service", "AdminIeltsService"),
		userRepo:     userRepo,
		testRepo:     testRepo,
		attemptRepo:  attemptRepo,
		responseRepo: responseRepo,
	}
}

func (s *adminIeltsService) CreateTest(ctx context.Context, input CreateIeltsTestInput) (*types.IeltsTest, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, apierr.BadRequest("IELTS_TEST_TITLE_REQUIRED", fmt.Errorf("title must not be empty"))
	}

	testType := input.TestType
	if testType == "" {
		testType = types.IeltsTestAcademic
	}
	if !testType.Valid() {
		return nil, apierr.BadRequest("INVALID_TEST_TYPE", fmt.Errorf("unknown test type %q", input.TestType))
	}

	status := input.Status
	if status == "" {
		status = types.IeltsTestDraft
	}
	if !status.Valid() {
		return nil, apierr.BadRequest("INVALID_TEST_STATUS", fmt.Errorf("unknown status %q", input.Status))
	}

	test := &types.IeltsTest{
		Title:       title,
		Description: input.Description,
		TestType:    testType,
		Status:      status,
	}
	if status == types.IeltsTestActive {
		now := time.Now().UTC()
		test.PublishedAt = &now
	}

	if input.Listening != nil {
		listening, err := buildIeltsListening(input.Listening)
		if err != nil {
			return nil, err
		}
		test.Listening = listening
	}
	if input.Reading != nil {
		reading, err := buildIeltsReading(input.Reading)
		if err != nil {
			return nil, err
		}
		test.Reading = reading
	}
	if input.Writing != nil {
		writing, err := buildIeltsWriting(input.Writing)
		if err != nil {
			return nil, err
		}
		test.Writing = writing
	}
	if input.Speaking != nil {
		speaking, err := buildIeltsSpeaking(input.Speaking)
		if err != nil {
			return nil, err
		}
		test.Speaking = speaking
	}

	var out *types.IeltsTest
	if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		admin, err := requireAdmin(ctx, tx, s.userRepo)
		if err != nil {
			return err
		}

		test.CreatedBy = admin.Auth0ID
		created, err := s.testRepo.Create(ctx, tx, test)
		if err != nil {
			return fmt.Errorf("create ielts test: %w", err)
		}
		out = created
		s.log.Info("CreateTest: ielts test created", "admin", admin.Auth0ID, "test_id", created.ID, "status", status)
		return nil
	}); err != nil {
		s.log.Warn("CreateTest: transaction failed", "title", title, "error", err)
		return nil, err
	}
	return out, nil
}

func buildIeltsListening(input *IeltsListeningTestInput) (*types.IeltsListeningTest, error) {
	sections := make([]types.IeltsListeningSection, 0, len(input.Sections))
	for _, sec := range input.Sections {
		questions := make([]types.IeltsListeningQuestion, 0, len(sec.Questions))
		for _, q := range sec.Questions {
			if strings.TrimSpace(q.QuestionType) == "" {
				return nil, apierr.BadRequest("QUESTION_TYPE_REQUIRED", fmt.Errorf("listening question %d has no type", q.QuestionNumber))
			}
			questions = append(questions, types.IeltsListeningQuestion{
				QuestionNumber: q.QuestionNumber,
				Text:           q.Text,
				QuestionType:   q.QuestionType,
				CorrectAnswer:  q.CorrectAnswer,
				Points:         q.Points,
				Options:        buildIeltsOptions(q.Options),
			})
		}
		sections = append(sections, types.IeltsListeningSection{
			SectionNumber: sec.SectionNumber,
			Title:         sec.Title,
			AudioURL:      sec.AudioURL,
			Instructions:  sec.Instructions,
			Questions:     questions,
		})
	}
	return &types.IeltsListeningTest{
		AudioURL:     input.AudioURL,
		Duration:     input.Duration,
		Instructions: input.Instructions,
		Sections:     sections,
	}, nil
}

func buildIeltsReading(input *IeltsReadingTestInput) (*types.IeltsReadingTest, error) {
	passages := make([]types.IeltsReadingPassage, 0, len(input.Passages))
	for _, p := range input.Passages {
		if strings.TrimSpace(p.Content) == "" {
			return nil, apierr.BadRequest("PASSAGE_CONTENT_REQUIRED", fmt.Errorf("passage %d has no content", p.PassageNumber))
		}
		questions := make([]types.IeltsReadingQuestion, 0, len(p.Questions))
		for _, q := range p.Questions {
			if strings.TrimSpace(q.QuestionType) == "" {
				return nil, apierr.BadRequest("QUESTION_TYPE_REQUIRED", fmt.Errorf("reading question %d has no type", q.QuestionNumber))
			}
			questions = append(questions, types.IeltsReadingQuestion{
				QuestionNumber: q.QuestionNumber,
				Text:           q.Text,
				QuestionType:   q.QuestionType,
				CorrectAnswer:  q.CorrectAnswer,
				Points:         q.Points,
				Options:        buildIeltsReadingOptions(q.Options),
			})
		}
		passages = append(passages, types.IeltsReadingPassage{
			PassageNumber: p.PassageNumber,
			Title:         p.Title,
			Content:       p.Content,
			Questions:     questions,
		})
	}
	return &types.IeltsReadingTest{
		Duration:     input.Duration,
		Instructions: input.Instructions,
		Passages:     passages,
	}, nil
}

func buildIeltsWriting(input *IeltsWritingTestInput) (*types.IeltsWritingTest, error) {
	tasks := make([]types.IeltsWritingTask, 0, len(input.Tasks))
	for _, t := range input.Tasks {
		if !t.TaskType.Valid() {
			return nil, apierr.BadRequest("INVALID_WRITING_TASK_TYPE", fmt.Errorf("unknown writing task type %q", t.TaskType))
		}
		if strings.TrimSpace(t.Prompt) == "" {
			return nil, apierr.BadRequest("WRITING_PROMPT_REQUIRED", fmt.Errorf("writing task %d has no prompt", t.TaskNumber))
		}
		tasks = append(tasks, types.IeltsWritingTask{
			TaskNumber: t.TaskNumber,
			TaskType:   t.TaskType,
			Prompt:     t.Prompt,
			WordLimit:  t.WordLimit,
			Duration:   t.Duration,
			ImageURL:   t.ImageURL,
		})
	}
	return &types.IeltsWritingTest{
		Duration:     input.Duration,
		Instructions: input.Instructions,
		Tasks:        tasks,
	}, nil
}

func buildIeltsSpeaking(input *IeltsSpeakingTestInput) (*types.IeltsSpeakingTest, error) {
	parts := make([]types.IeltsSpeakingPart, 0, len(input.Parts))
	for _, p := range input.Parts {
		part := types.IeltsSpeakingPart{
			PartNumber: p.PartNumber,
			Topic:      p.Topic,
			CueCard:    p.CueCard,
			Duration:   p.Duration,
		}
		if len(p.Questions) > 0 {
			encoded, err := json.Marshal(p.Questions)
			if err != nil {
				return nil, apierr.BadRequest("INVALID_SPEAKING_QUESTIONS", err)
			}
			part.Questions = datatypes.JSON(encoded)
		}
		parts = append(parts, part)
	}
	return &types.IeltsSpeakingTest{
		Duration:     input.Duration,
		Instructions: input.Instructions,
		Parts:        parts,
	}, nil
}

func buildIeltsOptions(inputs []IeltsOptionInput) []types.IeltsListeningOption {
	options := make([]types.IeltsListeningOption, 0, len(inputs))
	for _, o := range inputs {
		options = append(options, types.IeltsListeningOption{
			Label:     o.Label,
			Text:      o.Text,
			Order:     o.Order,
			IsCorrect: o.IsCorrect,
		})
	}
	return options
}

func buildIeltsReadingOptions(inputs []IeltsOptionInput) []types.IeltsReadingOption {
	options := make([]types.IeltsReadingOption, 0, len(inputs))
	for _, o := range inputs {
		options = append(options, types.IeltsReadingOption{
			Label:     o.Label,
			Text:      o.Text,
			Order:     o.Order,
			IsCorrect: o.IsCorrect,
		})
	}
	return options
}

// GetTest returns the full tree with answer keys, for the authoring
// screens.
func (s *adminIeltsService) GetTest(ctx context.Context, testID uuid.UUID) (*types.IeltsTest, error) {
	if _, err := requireAdmin(ctx, nil, s.userRepo); err != nil {
		return nil, err
	}

	test, err := s.testRepo.GetFull(ctx, nil, testID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound("IELTS_TEST_NOT_FOUND")
		}
		s.log.Warn("GetTest: fetch failed", "test_id", testID, "error", err)
		return nil, fmt.Errorf("fetch ielts test: %w", err)
	}
	return test, nil
}

func (s *adminIeltsService) ListTests(ctx context.Context, query AdminIeltsQuery) (*IeltsTestPage, error) {
	if _, err := requireAdmin(ctx, nil, s.userRepo); err != nil {
		return nil, err
	}
	if query.Status != "" && !query.Status.Valid() {
		return nil, apierr.BadRequest("INVALID_TEST_STATUS", fmt.Errorf("unknown status %q", query.Status))
	}
	if query.TestType != "" && !query.TestType.Valid() {
		return nil, apierr.BadRequest("INVALID_TEST_TYPE", fmt.Errorf("unknown test type %q", query.TestType))
	}

	page := query.Page
	if page < 1 {
		page = 1
	}
	pageSize := query.PageSize
	if pageSize < 1 || pageSize > 100 {
		pageSize = 10
	}

	tests, total, err := s.testRepo.List(ctx, nil, repos.IeltsListFilter{
		Status:   query.Status,
		TestType: query.TestType,
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		s.log.Warn("ListTests: fetch failed", "error", err)
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

// UpdateStatus moves a test through DRAFT/ACTIVE/INACTIVE/ARCHIVED.
// published_at is stamped on the first activation only, so republishing
// keeps the original date.
func (s *adminIeltsService) UpdateStatus(ctx context.Context, testID uuid.UUID, status types.IeltsTestStatus) (*types.IeltsTest, error) {
	if !status.Valid() {
		return nil, apierr.BadRequest("INVALID_TEST_STATUS", fmt.Errorf("unknown status %q", status))
	}

	var out *types.IeltsTest
	if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		admin, err := requireAdmin(ctx, tx, s.userRepo)
		if err != nil {
			return err
		}

		test, err := s.testRepo.GetByID(ctx, tx, testID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierr.NotFound("IELTS_TEST_NOT_FOUND")
			}
			return fmt.Errorf("fetch ielts test: %w", err)
		}

		markPublished := status == types.IeltsTestActive && test.PublishedAt == nil
		if err := s.testRepo.UpdateStatus(ctx, tx, testID, status, markPublished); err != nil {
			return fmt.Errorf("update ielts test status: %w", err)
		}

		out, err = s.testRepo.GetByID(ctx, tx, testID)
		if err != nil {
			return fmt.Errorf("reload ielts test: %w", err)
		}
		s.log.Info("UpdateStatus: status changed", "admin", admin.Auth0ID, "test_id", testID, "status", status)
		return nil
	}); err != nil {
		s.log.Warn("UpdateStatus: transaction failed", "test_id", testID, "error", err)
		return nil, err
	}
	return out, nil
}

func (s *adminIeltsService) GradeWriting(ctx context.Context, responseID uuid.UUID, band float64, feedback string) (*types.IeltsTestAttempt, error) {
	if !validBandScore(band) {
		return nil, apierr.BadRequest("INVALID_BAND_SCORE", fmt.Errorf("band must be 0 to 9 in half steps, got %g", band))
	}

	var attempt *types.IeltsTestAttempt
	if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		admin, err := requireAdmin(ctx, tx, s.userRepo)
		if err != nil {
			return err
		}

		response, err := s.responseRepo.WritingByID(ctx, tx, responseID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierr.NotFound("RESPONSE_NOT_FOUND")
			}
			return fmt.Errorf("fetch writing response: %w", err)
		}

		current, err := s.attemptRepo.GetByID(ctx, tx, response.AttemptID)
		if err != nil {
			return fmt.Errorf("fetch ielts attempt: %w", err)
		}
		if current.Status.Active() {
			return apierr.Conflict("ATTEMPT_NOT_COMPLETED")
		}

		if err := s.responseRepo.GradeWriting(ctx, tx, responseID, band, feedback); err != nil {
			return fmt.Errorf("grade writing response: %w", err)
		}

		attempt, err = s.refreshExaminerBands(ctx, tx, current)
		if err != nil {
			return err
		}
		s.log.Info("GradeWriting: response graded", "admin", admin.Auth0ID, "response_id", responseID, "band", band)
		return nil
	}); err != nil {
		s.log.Warn("GradeWriting: transaction failed", "response_id", responseID, "error", err)
		return nil, err
	}
	return attempt, nil
}

func (s *adminIeltsService) GradeSpeaking(ctx context.Context, responseID uuid.UUID, band float64, feedback string) (*types.IeltsTestAttempt, error) {
	if !validBandScore(band) {
		return nil, apierr.BadRequest("INVALID_BAND_SCORE", fmt.Errorf("band must be 0 to 9 in half steps, got %g", band))
	}

	var attempt *types.IeltsTestAttempt
	if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		admin, err := requireAdmin(ctx, tx, s.userRepo)
		if err != nil {
			return err
		}

		response, err := s.responseRepo.SpeakingByID(ctx, tx, responseID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierr.NotFound("RESPONSE_NOT_FOUND")
			}
			return fmt.Errorf("fetch speaking response: %w", err)
		}

		current, err := s.attemptRepo.GetByID(ctx, tx, response.AttemptID)
		if err != nil {
			return fmt.Errorf("fetch ielts attempt: %w", err)
		}
		if current.Status.Active() {
			return apierr.Conflict("ATTEMPT_NOT_COMPLETED")
		}

		if err := s.responseRepo.GradeSpeaking(ctx, tx, responseID, band, feedback); err != nil {
			return fmt.Errorf("grade speaking response: %w", err)
		}

		attempt, err = s.refreshExaminerBands(ctx, tx, current)
		if err != nil {
			return err
		}
		s.log.Info("GradeSpeaking: response graded", "admin", admin.Auth0ID, "response_id", responseID, "band", band)
		return nil
	}); err != nil {
		s.log.Warn("GradeSpeaking: transaction failed", "response_id", responseID, "error", err)
		return nil, err
	}
	return attempt, nil
}

// refreshExaminerBands recomputes the writing and speaking module bands
// from the per-response examiner scores, then rolls the overall band
// and graded status forward. Module bands stay unset until every
// response in the module carries a score.
func (s *adminIeltsService) refreshExaminerBands(ctx context.Context, tx *gorm.DB, attempt *types.IeltsTestAttempt) (*types.IeltsTestAttempt, error) {
	writingResponses, err := s.responseRepo.WritingByAttempt(ctx, tx, attempt.ID)
	if err != nil {
		return nil, fmt.Errorf("load writing responses: %w", err)
	}
	speakingResponses, err := s.responseRepo.SpeakingByAttempt(ctx, tx, attempt.ID)
	if err != nil {
		return nil, fmt.Errorf("load speaking responses: %w", err)
	}

	writingBand := examinerBand(writingBandScores(writingResponses))
	speakingBand := examinerBand(speakingBandScores(speakingResponses))

	updates := map[string]interface{}{}
	if writingBand != nil {
		updates["writing_band"] = *writingBand
	}
	if speakingBand != nil {
		updates["speaking_band"] = *speakingBand
	}

	var bands []float64
	if attempt.ListeningBand != nil {
		bands = append(bands, *attempt.ListeningBand)
	}
	if attempt.ReadingBand != nil {
		bands = append(bands, *attempt.ReadingBand)
	}
	if writingBand != nil {
		bands = append(bands, *writingBand)
	}
	if speakingBand != nil {
		bands = append(bands, *speakingBand)
	}
	if len(bands) > 0 {
		updates["overall_band"] = overallBand(bands)
	}

	status := types.IeltsAttemptPartiallyGraded
	if attempt.ListeningBand != nil && attempt.ReadingBand != nil && writingBand != nil && speakingBand != nil {
		status = types.IeltsAttemptGraded
	}
	updates["status"] = status

	if err := s.attemptRepo.UpdateFields(ctx, tx, attempt.ID, updates); err != nil {
		return nil, fmt.Errorf("store examiner bands: %w", err)
	}
	return s.attemptRepo.GetByID(ctx, tx, attempt.ID)
}

// validBandScore accepts 0 through 9 in half-band steps.
func validBandScore(band float64) bool {
	if band < 0 || band > 9 {
		return false
	}
	return band*2 == float64(int(band*2))
}

package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/genasnewdar/lever-stg/internal/data/repos"
	"github.com/genasnewdar/lever-stg/internal/platform/apierr"
	"github.com/genasnewdar/lever-stg/internal/platform/logger"
	"github.com/genasnewdar/lever-stg/internal/types"
)

type OptionInput struct {
	Label     string `json:"label"`
	Text      string `json:"text"`
	Order     int    `json:"order"`
	IsCorrect bool   `json:"is_correct"`
}

// MatchingItemsInput carries the two columns of a MATCHING question as
// authored.
type MatchingItemsInput struct {
	Left  []string `json:"left"`
	Right []string `json:"right"`
}

// QuestionInput is one authored question. CorrectMapping pairs left
// column indexes with right column indexes; keys are stored prefixed
// with "k" so the persisted JSON keys never start with a digit.
type QuestionInput struct {
	QuestionNumber       string                 `json:"question_number"`
	Text                 string                 `json:"text"`
	Points               int                    `json:"points"`
	Type                 types.QuestionType     `json:"type"`
	Options              []OptionInput          `json:"options"`
	CorrectOptionID      string                 `json:"correct_option_id"`
	CorrectNumericAnswer *float64               `json:"correct_numeric_answer"`
	CorrectFormulaLatex  string                 `json:"correct_formula_latex"`
	MatchingItems        *MatchingItemsInput    `json:"matching_items"`
	CorrectMapping       map[string]interface{} `json:"correct_mapping"`
}

type TaskInput struct {
	Title        string          `json:"title"`
	Instructions string          `json:"instructions"`
	Passage      string          `json:"passage"`
	Order        int             `json:"order"`
	Questions    []QuestionInput `json:"questions"`
}

// SectionInput holds either tasks or direct questions; mixed sections
// are allowed and both lists cascade on create.
type SectionInput struct {
	Name         string          `json:"name"`
	Instructions string          `json:"instructions"`
	Order        int             `json:"order"`
	Tasks        []TaskInput     `json:"tasks"`
	Questions    []QuestionInput `json:"questions"`
}

type CreateTestInput struct {
	Subject      types.TestSubject `json:"subject"`
	Duration     int               `json:"duration"`
	Title        string            `json:"title"`
	Description  string            `json:"description"`
	Instructions string            `json:"instructions"`
	Sections     []SectionInput    `json:"sections"`
}

type AdminTestPage struct {
	Tests      []*types.Test `json:"tests"`
	Page       int           `json:"page"`
	PageSize   int           `json:"per_page"`
	Total      int64         `json:"total"`
	TotalPages int           `json:"total_pages"`
}

// AdminAssessmentService authors tests. Reads return the full tree
// including answer keys; the student-facing service strips those.
type AdminAssessmentService interface {
	CreateTest(ctx context.Context, input CreateTestInput) (*types.Test, error)
	GetTest(ctx context.Context, testID uuid.UUID) (*types.Test, error)
	ListTests(ctx context.Context, page, pageSize int) (*AdminTestPage, error)
	DeleteTest(ctx context.Context, testID uuid.UUID) error
}

type adminAssessmentService struct {
	db       *gorm.DB
	log      *logger.Logger
	userRepo repos.UserRepo
	testRepo repos.TestRepo
}

func NewAdminAssessmentService(db *gorm.DB, baseLog *logger.Logger, userRepo repos.UserRepo, testRepo repos.TestRepo) AdminAssessmentService {
	return &adminAssessmentService{
		db:       db,
		log:      baseLog.With("service", "AdminAssessmentService"),
		userRepo: userRepo,
		testRepo: testRepo,
	}
}

func (s *adminAssessmentService) CreateTest(ctx context.Context, input CreateTestInput) (*types.Test, error) {
	if !input.Subject.Valid() {
		return nil, apierr.BadRequest("INVALID_TEST_SUBJECT", fmt.Errorf("unknown subject %q", input.Subject))
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, apierr.BadRequest("TEST_TITLE_REQUIRED", fmt.Errorf("title must not be empty"))
	}
	if input.Duration < 1 {
		return nil, apierr.BadRequest("INVALID_TEST_DURATION", fmt.Errorf("duration must be positive, got %d", input.Duration))
	}

	sections, err := buildSections(input.Sections)
	if err != nil {
		return nil, err
	}

	var out *types.Test
	if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		admin, err := requireAdmin(ctx, tx, s.userRepo)
		if err != nil {
			return err
		}

		test := &types.Test{
			Subject:      input.Subject,
			Duration:     input.Duration,
			Title:        title,
			Description:  input.Description,
			Instructions: input.Instructions,
			Sections:     sections,
		}
		created, err := s.testRepo.Create(ctx, tx, test)
		if err != nil {
			return fmt.Errorf("create test: %w", err)
		}
		out = created
		s.log.Info("CreateTest: test created", "admin", admin.Auth0ID, "test_id", created.ID, "sections", len(sections))
		return nil
	}); err != nil {
		s.log.Warn("CreateTest: transaction failed", "title", title, "error", err)
		return nil, err
	}
	return out, nil
}

func buildSections(inputs []SectionInput) ([]types.Section, error) {
	sections := make([]types.Section, 0, len(inputs))
	for _, sec := range inputs {
		name := strings.TrimSpace(sec.Name)
		if name == "" {
			return nil, apierr.BadRequest("SECTION_NAME_REQUIRED", fmt.Errorf("section name must not be empty"))
		}

		tasks := make([]types.Task, 0, len(sec.Tasks))
		for _, t := range sec.Tasks {
			questions, err := buildQuestions(t.Questions)
			if err != nil {
				return nil, err
			}
			tasks = append(tasks, types.Task{
				Title:        t.Title,
				Instructions: t.Instructions,
				Passage:      t.Passage,
				Order:        t.Order,
				Questions:    questions,
			})
		}

		questions, err := buildQuestions(sec.Questions)
		if err != nil {
			return nil, err
		}

		sections = append(sections, types.Section{
			Name:         name,
			Instructions: sec.Instructions,
			Order:        sec.Order,
			Tasks:        tasks,
			Questions:    questions,
		})
	}
	return sections, nil
}

func buildQuestions(inputs []QuestionInput) ([]types.Question, error) {
	questions := make([]types.Question, 0, len(inputs))
	for _, q := range inputs {
		text := strings.TrimSpace(q.Text)
		if text == "" {
			return nil, apierr.BadRequest("QUESTION_TEXT_REQUIRED", fmt.Errorf("question text must not be empty"))
		}
		if !q.Type.Valid() {
			return nil, apierr.BadRequest("INVALID_QUESTION_TYPE", fmt.Errorf("unknown question type %q", q.Type))
		}

		points := q.Points
		if points < 1 {
			points = 1
		}

		question := types.Question{
			QuestionNumber:       q.QuestionNumber,
			Text:                 text,
			Points:               points,
			Type:                 q.Type,
			CorrectOptionID:      q.CorrectOptionID,
			CorrectNumericAnswer: q.CorrectNumericAnswer,
			CorrectFormulaLatex:  q.CorrectFormulaLatex,
		}

		if q.MatchingItems != nil {
			encoded, err := json.Marshal(q.MatchingItems)
			if err != nil {
				return nil, apierr.BadRequest("INVALID_MATCHING_ITEMS", err)
			}
			question.MatchingItems = datatypes.JSON(encoded)
		}
		if len(q.CorrectMapping) > 0 {
			encoded, err := json.Marshal(prefixMappingKeys(q.CorrectMapping))
			if err != nil {
				return nil, apierr.BadRequest("INVALID_CORRECT_MAPPING", err)
			}
			question.CorrectMapping = datatypes.JSON(encoded)
		}

		options := make([]types.Option, 0, len(q.Options))
		for _, o := range q.Options {
			options = append(options, types.Option{
				Label:     o.Label,
				Text:      o.Text,
				Order:     o.Order,
				IsCorrect: o.IsCorrect,
			})
		}
		question.Options = options

		questions = append(questions, question)
	}
	return questions, nil
}

// prefixMappingKeys rewrites {"0": 2} into {"k0": "2"} so the stored
// keys match what the grader looks up.
func prefixMappingKeys(mapping map[string]interface{}) map[string]string {
	prefixed := make(map[string]string, len(mapping))
	for key, value := range mapping {
		prefixed["k"+key] = normalizePairValue(value)
	}
	return prefixed
}

func (s *adminAssessmentService) GetTest(ctx context.Context, testID uuid.UUID) (*types.Test, error) {
	if _, err := requireAdmin(ctx, nil, s.userRepo); err != nil {
		return nil, err
	}

	test, err := s.testRepo.GetFull(ctx, nil, testID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound("TEST_NOT_FOUND")
		}
		s.log.Warn("GetTest: fetch failed", "test_id", testID, "error", err)
		return nil, fmt.Errorf("fetch test: %w", err)
	}
	return test, nil
}

func (s *adminAssessmentService) ListTests(ctx context.Context, page, pageSize int) (*AdminTestPage, error) {
	if _, err := requireAdmin(ctx, nil, s.userRepo); err != nil {
		return nil, err
	}

	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	tests, total, err := s.testRepo.List(ctx, nil, page, pageSize)
	if err != nil {
		s.log.Warn("ListTests: fetch failed", "error", err)
		return nil, fmt.Errorf("list tests: %w", err)
	}

	return &AdminTestPage{
		Tests:      tests,
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: int((total + int64(pageSize) - 1) / int64(pageSize)),
	}, nil
}

func (s *adminAssessmentService) DeleteTest(ctx context.Context, testID uuid.UUID) error {
	if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		admin, err := requireAdmin(ctx, tx, s.userRepo)
		if err != nil {
			return err
		}

		if _, err := s.testRepo.GetByID(ctx, tx, testID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierr.NotFound("TEST_NOT_FOUND")
			}
			return fmt.Errorf("fetch test: %w", err)
		}
		if err := s.testRepo.Delete(ctx, tx, testID); err != nil {
			return fmt.Errorf("delete test: %w", err)
		}
		s.log.Info("DeleteTest: test deleted", "admin", admin.Auth0ID, "test_id", testID)
		return nil
	}); err != nil {
		s.log.Warn("DeleteTest: transaction failed", "test_id", testID, "error", err)
		return err
	}
	return nil
}

package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// The test authoring family predates the snake_case convention; its
// column names stay camelCase in the database, so every field carries
// an explicit column tag.

type Test struct {
	ID           uuid.UUID   `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Subject      TestSubject `gorm:"column:subject;not null" json:"subject"`
	Duration     int         `gorm:"column:duration;not null" json:"duration"`
	Title        string      `gorm:"column:title;not null" json:"title"`
	Description  string      `gorm:"column:description" json:"description,omitempty"`
	Instructions string      `gorm:"column:instructions" json:"instructions,omitempty"`
	CreatedAt    time.Time   `gorm:"column:createdAt;not null;default:now()" json:"created_at"`
	UpdatedAt    time.Time   `gorm:"column:updatedAt;not null;default:now()" json:"updated_at"`

	Sections []Section `gorm:"foreignKey:TestID" json:"sections,omitempty"`
}

func (Test) TableName() string { return "t_test" }

type Section struct {
	ID           uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	TestID       uuid.UUID `gorm:"column:testId;type:uuid;not null" json:"test_id"`
	Name         string    `gorm:"column:name;not null" json:"name"`
	Instructions string    `gorm:"column:instructions" json:"instructions,omitempty"`
	Order        int       `gorm:"column:order;not null" json:"order"`
	CreatedAt    time.Time `gorm:"column:createdAt;not null;default:now()" json:"created_at"`
	UpdatedAt    time.Time `gorm:"column:updatedAt;not null;default:now()" json:"updated_at"`

	Tasks     []Task     `gorm:"foreignKey:SectionID" json:"tasks,omitempty"`
	Questions []Question `gorm:"foreignKey:SectionID" json:"questions,omitempty"`
}

func (Section) TableName() string { return "t_section" }

type Task struct {
	ID           uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	SectionID    uuid.UUID `gorm:"column:sectionId;type:uuid;not null" json:"section_id"`
	Title        string    `gorm:"column:title" json:"title,omitempty"`
	Instructions string    `gorm:"column:instructions" json:"instructions,omitempty"`
	Passage      string    `gorm:"column:passage" json:"passage,omitempty"`
	Order        int       `gorm:"column:order;not null" json:"order"`
	CreatedAt    time.Time `gorm:"column:createdAt;not null;default:now()" json:"created_at"`
	UpdatedAt    time.Time `gorm:"column:updatedAt;not null;default:now()" json:"updated_at"`

	Questions []Question `gorm:"foreignKey:TaskID" json:"questions,omitempty"`
}

func (Task) TableName() string { return "t_task" }

// Question hangs off either a section or a task, never both; the
// database enforces the exclusivity. MatchingItems and CorrectMapping
// carry the MATCHING payloads (left/right item lists, k<i> keyed pair
// answers).
type Question struct {
	ID                   uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	SectionID            *uuid.UUID     `gorm:"column:sectionId;type:uuid" json:"section_id,omitempty"`
	TaskID               *uuid.UUID     `gorm:"column:taskId;type:uuid" json:"task_id,omitempty"`
	QuestionNumber       string         `gorm:"column:questionNumber" json:"question_number,omitempty"`
	Text                 string         `gorm:"column:text;not null" json:"text"`
	Points               int            `gorm:"column:points;not null;default:1" json:"points"`
	Type                 QuestionType   `gorm:"column:type;not null" json:"type"`
	CorrectOptionID      string         `gorm:"column:correctOptionId" json:"correct_option_id,omitempty"`
	CorrectNumericAnswer *float64       `gorm:"column:correctNumericAnswer" json:"correct_numeric_answer,omitempty"`
	CorrectFormulaLatex  string         `gorm:"column:correctFormulaLatex" json:"correct_formula_latex,omitempty"`
	MatchingItems        datatypes.JSON `gorm:"column:matchingItems;type:jsonb" json:"matching_items,omitempty"`
	CorrectMapping       datatypes.JSON `gorm:"column:correctMapping;type:jsonb" json:"correct_mapping,omitempty"`
	CreatedAt            time.Time      `gorm:"column:createdAt;not null;default:now()" json:"created_at"`
	UpdatedAt            time.Time      `gorm:"column:updatedAt;not null;default:now()" json:"updated_at"`

	Options []Option `gorm:"foreignKey:QuestionID" json:"options,omitempty"`
}

func (Question) TableName() string { return "t_question" }

type Option struct {
	ID         uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	QuestionID uuid.UUID `gorm:"column:questionId;type:uuid;not null" json:"question_id"`
	Label      string    `gorm:"column:label;not null" json:"label"`
	Text       string    `gorm:"column:text;not null" json:"text"`
	Order      int       `gorm:"column:order;not null" json:"order"`
	IsCorrect  bool      `gorm:"column:is_correct;not null;default:false" json:"is_correct"`
	CreatedAt  time.Time `gorm:"column:createdAt;not null;default:now()" json:"created_at"`
	UpdatedAt  time.Time `gorm:"column:updatedAt;not null;default:now()" json:"updated_at"`
}

func (Option) TableName() string { return "t_option" }

package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// IeltsTest is the parent record; each of the four subtests hangs off
// it one-to-one and owns its own content tree.
type IeltsTest struct {
	ID          uuid.UUID       `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Title       string          `gorm:"column:title;not null" json:"title"`
	Description string          `gorm:"column:description" json:"description,omitempty"`
	TestType    IeltsTestType   `gorm:"column:test_type;not null" json:"test_type"`
	Status      IeltsTestStatus `gorm:"column:status;not null;default:'DRAFT'" json:"status"`
	PublishedAt *time.Time      `gorm:"column:published_at" json:"published_at,omitempty"`
	CreatedBy   string          `gorm:"column:created_by" json:"created_by,omitempty"`
	CreatedAt   time.Time       `gorm:"column:created_at;not null;default:now()" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;not null;default:now()" json:"updated_at"`

	Listening *IeltsListeningTest `gorm:"foreignKey:IeltsTestID" json:"listening,omitempty"`
	Reading   *IeltsReadingTest   `gorm:"foreignKey:IeltsTestID" json:"reading,omitempty"`
	Writing   *IeltsWritingTest   `gorm:"foreignKey:IeltsTestID" json:"writing,omitempty"`
	Speaking  *IeltsSpeakingTest  `gorm:"foreignKey:IeltsTestID" json:"speaking,omitempty"`
}

func (IeltsTest) TableName() string { return "t_ielts_test" }

type IeltsListeningTest struct {
	ID           uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	IeltsTestID  uuid.UUID `gorm:"column:ielts_test_id;type:uuid;not null;uniqueIndex" json:"ielts_test_id"`
	AudioURL     string    `gorm:"column:audio_url" json:"audio_url,omitempty"`
	Duration     int       `gorm:"column:duration;not null;default:30" json:"duration"`
	Instructions string    `gorm:"column:instructions" json:"instructions,omitempty"`
	CreatedAt    time.Time `gorm:"column:created_at;not null;default:now()" json:"created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at;not null;default:now()" json:"updated_at"`

	Sections []IeltsListeningSection `gorm:"foreignKey:ListeningTestID" json:"sections,omitempty"`
}

func (IeltsListeningTest) TableName() string { return "t_ielts_listening_test" }

type IeltsListeningSection struct {
	ID              uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ListeningTestID uuid.UUID `gorm:"column:listening_test_id;type:uuid;not null" json:"listening_test_id"`
	SectionNumber   int       `gorm:"column:section_number;not null" json:"section_number"`
	Title           string    `gorm:"column:title" json:"title,omitempty"`
	AudioURL        string    `gorm:"column:audio_url" json:"audio_url,omitempty"`
	Instructions    string    `gorm:"column:instructions" json:"instructions,omitempty"`
	CreatedAt       time.Time `gorm:"column:created_at;not null;default:now()" json:"created_at"`
	UpdatedAt       time.Time `gorm:"column:updated_at;not null;default:now()" json:"updated_at"`

	Questions []IeltsListeningQuestion `gorm:"foreignKey:SectionID" json:"questions,omitempty"`
}

func (IeltsListeningSection) TableName() string { return "t_ielts_listening_section" }

type IeltsListeningQuestion struct {
	ID             uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	SectionID      uuid.UUID `gorm:"column:section_id;type:uuid;not null" json:"section_id"`
	QuestionNumber int       `gorm:"column:question_number;not null" json:"question_number"`
	Text           string    `gorm:"column:text;not null" json:"text"`
	QuestionType   string    `gorm:"column:question_type;not null" json:"question_type"`
	CorrectAnswer  string    `gorm:"column:correct_answer" json:"correct_answer,omitempty"`
	Points         int       `gorm:"column:points;not null;default:1" json:"points"`
	CreatedAt      time.Time `gorm:"column:created_at;not null;default:now()" json:"created_at"`
	UpdatedAt      time.Time `gorm:"column:updated_at;not null;default:now()" json:"updated_at"`

	Options []IeltsListeningOption `gorm:"foreignKey:QuestionID" json:"options,omitempty"`
}

func (IeltsListeningQuestion) TableName() string { return "t_ielts_listening_question" }

type IeltsListeningOption struct {
	ID         uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	QuestionID uuid.UUID `gorm:"column:question_id;type:uuid;not null" json:"question_id"`
	Label      string    `gorm:"column:label;not null" json:"label"`
	Text       string    `gorm:"column:text;not null" json:"text"`
	Order      int       `gorm:"column:order;not null" json:"order"`
	IsCorrect  bool      `gorm:"column:is_correct;not null;default:false" json:"is_correct"`
	CreatedAt  time.Time `gorm:"column:created_at;not null;default:now()" json:"created_at"`
}

func (IeltsListeningOption) TableName() string { return "t_ielts_listening_option" }

type IeltsReadingTest struct {
	ID           uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	IeltsTestID  uuid.UUID `gorm:"column:ielts_test_id;type:uuid;not null;uniqueIndex" json:"ielts_test_id"`
	Duration     int       `gorm:"column:duration;not null;default:60" json:"duration"`
	Instructions string    `gorm:"column:instructions" json:"instructions,omitempty"`
	CreatedAt    time.Time `gorm:"column:created_at;not null;default:now()" json:"created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at;not null;default:now()" json:"updated_at"`

	Passages []IeltsReadingPassage `gorm:"foreignKey:ReadingTestID" json:"passages,omitempty"`
}

func (IeltsReadingTest) TableName() string { return "t_ielts_reading_test" }

type IeltsReadingPassage struct {
	ID            uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ReadingTestID uuid.UUID `gorm:"column:reading_test_id;type:uuid;not null" json:"reading_test_id"`
	PassageNumber int       `gorm:"column:passage_number;not null" json:"passage_number"`
	Title         string    `gorm:"column:title" json:"title,omitempty"`
	Content       string    `gorm:"column:content;not null" json:"content"`
	CreatedAt     time.Time `gorm:"column:created_at;not null;default:now()" json:"created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at;not null;default:now()" json:"updated_at"`

	Questions []IeltsReadingQuestion `gorm:"foreignKey:PassageID" json:"questions,omitempty"`
}

func (IeltsReadingPassage) TableName() string { return "t_ielts_reading_passage" }

type IeltsReadingQuestion struct {
	ID             uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	PassageID      uuid.UUID `gorm:"column:passage_id;type:uuid;not null" json:"passage_id"`
	QuestionNumber int       `gorm:"column:question_number;not null" json:"question_number"`
	Text           string    `gorm:"column:text;not null" json:"text"`
	QuestionType   string    `gorm:"column:question_type;not null" json:"question_type"`
	CorrectAnswer  string    `gorm:"column:correct_answer" json:"correct_answer,omitempty"`
	Points         int       `gorm:"column:points;not null;default:1" json:"points"`
	CreatedAt      time.Time `gorm:"column:created_at;not null;default:now()" json:"created_at"`
	UpdatedAt      time.Time `gorm:"column:updated_at;not null;default:now()" json:"updated_at"`

	Options []IeltsReadingOption `gorm:"foreignKey:QuestionID" json:"options,omitempty"`
}

func (IeltsReadingQuestion) TableName() string { return "t_ielts_reading_question" }

type IeltsReadingOption struct {
	ID         uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	QuestionID uuid.UUID `gorm:"column:question_id;type:uuid;not null" json:"question_id"`
	Label      string    `gorm:"column:label;not null" json:"label"`
	Text       string    `gorm:"column:text;not null" json:"text"`
	Order      int       `gorm:"column:order;not null" json:"order"`
	IsCorrect  bool      `gorm:"column:is_correct;not null;default:false" json:"is_correct"`
	CreatedAt  time.Time `gorm:"column:created_at;not null;default:now()" json:"created_at"`
}

func (IeltsReadingOption) TableName() string { return "t_ielts_reading_option" }

type IeltsWritingTest struct {
	ID           uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	IeltsTestID  uuid.UUID `gorm:"column:ielts_test_id;type:uuid;not null;uniqueIndex" json:"ielts_test_id"`
	Duration     int       `gorm:"column:duration;not null;default:60" json:"duration"`
	Instructions string    `gorm:"column:instructions" json:"instructions,omitempty"`
	CreatedAt    time.Time `gorm:"column:created_at;not null;default:now()" json:"created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at;not null;default:now()" json:"updated_at"`

	Tasks []IeltsWritingTask `gorm:"foreignKey:WritingTestID" json:"tasks,omitempty"`
}

func (IeltsWritingTest) TableName() string { return "t_ielts_writing_test" }

type IeltsWritingTask struct {
	ID            uuid.UUID            `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	WritingTestID uuid.UUID            `gorm:"column:writing_test_id;type:uuid;not null" json:"writing_test_id"`
	TaskNumber    int                  `gorm:"column:task_number;not null" json:"task_number"`
	TaskType      IeltsWritingTaskType `gorm:"column:task_type;not null" json:"task_type"`
	Prompt        string               `gorm:"column:prompt;not null" json:"prompt"`
	WordLimit     int                  `gorm:"column:word_limit" json:"word_limit,omitempty"`
	Duration      int                  `gorm:"column:duration" json:"duration,omitempty"`
	ImageURL      string               `gorm:"column:image_url" json:"image_url,omitempty"`
	CreatedAt     time.Time            `gorm:"column:created_at;not null;default:now()" json:"created_at"`
	UpdatedAt     time.Time            `gorm:"column:updated_at;not null;default:now()" json:"updated_at"`
}

func (IeltsWritingTask) TableName() string { return "t_ielts_writing_task" }

type IeltsSpeakingTest struct {
	ID           uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	IeltsTestID  uuid.UUID `gorm:"column:ielts_test_id;type:uuid;not null;uniqueIndex" json:"ielts_test_id"`
	Duration     int       `gorm:"column:duration;not null;default:14" json:"duration"`
	Instructions string    `gorm:"column:instructions" json:"instructions,omitempty"`
	CreatedAt    time.Time `gorm:"column:created_at;not null;default:now()" json:"created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at;not null;default:now()" json:"updated_at"`

	Parts []IeltsSpeakingPart `gorm:"foreignKey:SpeakingTestID" json:"parts,omitempty"`
}

func (IeltsSpeakingTest) TableName() string { return "t_ielts_speaking_test" }

// IeltsSpeakingPart covers one of the three interview parts; Questions
// is a JSON list of prompts the examiner works through.
type IeltsSpeakingPart struct {
	ID             uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	SpeakingTestID uuid.UUID      `gorm:"column:speaking_test_id;type:uuid;not null" json:"speaking_test_id"`
	PartNumber     int            `gorm:"column:part_number;not null" json:"part_number"`
	Topic          string         `gorm:"column:topic" json:"topic,omitempty"`
	CueCard        string         `gorm:"column:cue_card" json:"cue_card,omitempty"`
	Questions      datatypes.JSON `gorm:"column:questions;type:jsonb" json:"questions,omitempty"`
	Duration       int            `gorm:"column:duration" json:"duration,omitempty"`
	CreatedAt      time.Time      `gorm:"column:created_at;not null;default:now()" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"column:updated_at;not null;default:now()" json:"updated_at"`
}

func (IeltsSpeakingPart) TableName() string { return "t_ielts_speaking_part" }

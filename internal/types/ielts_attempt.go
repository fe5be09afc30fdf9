package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// IeltsTestAttempt walks the module sequence listening → reading →
// writing → speaking. Raw scores exist only for the two objectively
// graded modules; every band lands here once graded.
type IeltsTestAttempt struct {
	ID             uuid.UUID          `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID         string             `gorm:"column:user_id;not null" json:"user_id"`
	IeltsTestID    uuid.UUID          `gorm:"column:ielts_test_id;type:uuid;not null" json:"ielts_test_id"`
	IeltsTest      *IeltsTest         `gorm:"foreignKey:IeltsTestID;references:ID" json:"ielts_test,omitempty"`
	Status         IeltsAttemptStatus `gorm:"column:status;not null;default:'NOT_STARTED'" json:"status"`
	CurrentModule  *IeltsModule       `gorm:"column:current_module" json:"current_module,omitempty"`
	StartedAt      *time.Time         `gorm:"column:started_at" json:"started_at,omitempty"`
	ExpiresAt      *time.Time         `gorm:"column:expires_at" json:"expires_at,omitempty"`
	CompletedAt    *time.Time         `gorm:"column:completed_at" json:"completed_at,omitempty"`
	ListeningScore *int               `gorm:"column:listening_score" json:"listening_score,omitempty"`
	ReadingScore   *int               `gorm:"column:reading_score" json:"reading_score,omitempty"`
	ListeningBand  *float64           `gorm:"column:listening_band" json:"listening_band,omitempty"`
	ReadingBand    *float64           `gorm:"column:reading_band" json:"reading_band,omitempty"`
	WritingBand    *float64           `gorm:"column:writing_band" json:"writing_band,omitempty"`
	SpeakingBand   *float64           `gorm:"column:speaking_band" json:"speaking_band,omitempty"`
	OverallBand    *float64           `gorm:"column:overall_band" json:"overall_band,omitempty"`
	CreatedAt      time.Time          `gorm:"column:created_at;not null;default:now()" json:"created_at"`
	UpdatedAt      time.Time          `gorm:"column:updated_at;not null;default:now()" json:"updated_at"`

	ListeningResponses []IeltsListeningResponse `gorm:"foreignKey:AttemptID" json:"listening_responses,omitempty"`
	ReadingResponses   []IeltsReadingResponse   `gorm:"foreignKey:AttemptID" json:"reading_responses,omitempty"`
	WritingResponses   []IeltsWritingResponse   `gorm:"foreignKey:AttemptID" json:"writing_responses,omitempty"`
	SpeakingResponses  []IeltsSpeakingResponse  `gorm:"foreignKey:AttemptID" json:"speaking_responses,omitempty"`
}

func (IeltsTestAttempt) TableName() string { return "t_ielts_test_attempt" }

type IeltsListeningResponse struct {
	ID               uuid.UUID               `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	AttemptID        uuid.UUID               `gorm:"column:attempt_id;type:uuid;not null" json:"attempt_id"`
	QuestionID       uuid.UUID               `gorm:"column:question_id;type:uuid;not null" json:"question_id"`
	Question         *IeltsListeningQuestion `gorm:"foreignKey:QuestionID;references:ID" json:"question,omitempty"`
	AnswerText       string                  `gorm:"column:answer_text" json:"answer_text,omitempty"`
	SelectedOptionID *uuid.UUID              `gorm:"column:selected_option_id;type:uuid" json:"selected_option_id,omitempty"`
	IsCorrect        *bool                   `gorm:"column:is_correct" json:"is_correct,omitempty"`
	CreatedAt        time.Time               `gorm:"column:created_at;not null;default:now()" json:"created_at"`
	UpdatedAt        time.Time               `gorm:"column:updated_at;not null;default:now()" json:"updated_at"`
}

func (IeltsListeningResponse) TableName() string { return "t_ielts_listening_response" }

type IeltsReadingResponse struct {
	ID               uuid.UUID             `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	AttemptID        uuid.UUID             `gorm:"column:attempt_id;type:uuid;not null" json:"attempt_id"`
	QuestionID       uuid.UUID             `gorm:"column:question_id;type:uuid;not null" json:"question_id"`
	Question         *IeltsReadingQuestion `gorm:"foreignKey:QuestionID;references:ID" json:"question,omitempty"`
	AnswerText       string                `gorm:"column:answer_text" json:"answer_text,omitempty"`
	SelectedOptionID *uuid.UUID            `gorm:"column:selected_option_id;type:uuid" json:"selected_option_id,omitempty"`
	IsCorrect        *bool                 `gorm:"column:is_correct" json:"is_correct,omitempty"`
	CreatedAt        time.Time             `gorm:"column:created_at;not null;default:now()" json:"created_at"`
	UpdatedAt        time.Time             `gorm:"column:updated_at;not null;default:now()" json:"updated_at"`
}

func (IeltsReadingResponse) TableName() string { return "t_ielts_reading_response" }

type IeltsWritingResponse struct {
	ID               uuid.UUID         `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	AttemptID        uuid.UUID         `gorm:"column:attempt_id;type:uuid;not null" json:"attempt_id"`
	TaskID           uuid.UUID         `gorm:"column:task_id;type:uuid;not null" json:"task_id"`
	Task             *IeltsWritingTask `gorm:"foreignKey:TaskID;references:ID" json:"task,omitempty"`
	EssayText        string            `gorm:"column:essay_text" json:"essay_text,omitempty"`
	WordCount        *int              `gorm:"column:word_count" json:"word_count,omitempty"`
	BandScore        *float64          `gorm:"column:band_score" json:"band_score,omitempty"`
	ExaminerFeedback string            `gorm:"column:examiner_feedback" json:"examiner_feedback,omitempty"`
	CreatedAt        time.Time         `gorm:"column:created_at;not null;default:now()" json:"created_at"`
	UpdatedAt        time.Time         `gorm:"column:updated_at;not null;default:now()" json:"updated_at"`
}

func (IeltsWritingResponse) TableName() string { return "t_ielts_writing_response" }

type IeltsSpeakingResponse struct {
	ID               uuid.UUID          `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	AttemptID        uuid.UUID          `gorm:"column:attempt_id;type:uuid;not null" json:"attempt_id"`
	PartID           uuid.UUID          `gorm:"column:part_id;type:uuid;not null" json:"part_id"`
	Part             *IeltsSpeakingPart `gorm:"foreignKey:PartID;references:ID" json:"part,omitempty"`
	AudioURL         string             `gorm:"column:audio_url" json:"audio_url,omitempty"`
	Transcript       string             `gorm:"column:transcript" json:"transcript,omitempty"`
	DurationSeconds  int                `gorm:"column:duration_seconds" json:"duration_seconds,omitempty"`
	BandScore        *float64           `gorm:"column:band_score" json:"band_score,omitempty"`
	ExaminerFeedback string             `gorm:"column:examiner_feedback" json:"examiner_feedback,omitempty"`
	CreatedAt        time.Time          `gorm:"column:created_at;not null;default:now()" json:"created_at"`
	UpdatedAt        time.Time          `gorm:"column:updated_at;not null;default:now()" json:"updated_at"`
}

func (IeltsSpeakingResponse) TableName() string { return "t_ielts_speaking_response" }

// IeltsBandScore is one row of the raw-score conversion table seeded by
// the schema migration.
type IeltsBandScore struct {
	ID          uuid.UUID   `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Module      IeltsModule `gorm:"column:module;not null" json:"module"`
	MinRawScore int         `gorm:"column:min_raw_score;not null" json:"min_raw_score"`
	BandScore   float64     `gorm:"column:band_score;not null" json:"band_score"`
	CreatedAt   time.Time   `gorm:"column:created_at;not null;default:now()" json:"created_at"`
}

func (IeltsBandScore) TableName() string { return "t_ielts_band_score" }

type IeltsVocabulary struct {
	ID         uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Word       string    `gorm:"column:word;not null" json:"word"`
	Definition string    `gorm:"column:definition;not null" json:"definition"`
	Example    string    `gorm:"column:example" json:"example,omitempty"`
	Topic      string    `gorm:"column:topic" json:"topic,omitempty"`
	Level      string    `gorm:"column:level" json:"level,omitempty"`
	CreatedAt  time.Time `gorm:"column:created_at;not null;default:now()" json:"created_at"`
}

func (IeltsVocabulary) TableName() string { return "t_ielts_vocabulary" }

type IeltsGrammarPoint struct {
	ID          uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Title       string         `gorm:"column:title;not null" json:"title"`
	Explanation string         `gorm:"column:explanation;not null" json:"explanation"`
	Examples    datatypes.JSON `gorm:"column:examples;type:jsonb" json:"examples,omitempty"`
	Level       string         `gorm:"column:level" json:"level,omitempty"`
	CreatedAt   time.Time      `gorm:"column:created_at;not null;default:now()" json:"created_at"`
}

func (IeltsGrammarPoint) TableName() string { return "t_ielts_grammar_point" }

type IeltsStudyMaterial struct {
	ID           uuid.UUID    `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Title        string       `gorm:"column:title;not null" json:"title"`
	Description  string       `gorm:"column:description" json:"description,omitempty"`
	MaterialType string       `gorm:"column:material_type;not null" json:"material_type"`
	ContentURL   string       `gorm:"column:content_url" json:"content_url,omitempty"`
	Module       *IeltsModule `gorm:"column:module" json:"module,omitempty"`
	CreatedAt    time.Time    `gorm:"column:created_at;not null;default:now()" json:"created_at"`
	UpdatedAt    time.Time    `gorm:"column:updated_at;not null;default:now()" json:"updated_at"`
}

func (IeltsStudyMaterial) TableName() string { return "t_ielts_study_material" }

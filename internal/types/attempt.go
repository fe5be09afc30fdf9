package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// TestAttempt tracks one sitting of a test. FinishID records who closed
// the attempt: the taker's auth0_id or AttemptFinisherSystem when the
// expiry worker or the system hook closed it.
type TestAttempt struct {
	ID          uuid.UUID         `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID      string            `gorm:"column:user_id;not null" json:"user_id"`
	TestID      uuid.UUID         `gorm:"column:test_id;type:uuid;not null" json:"test_id"`
	Test        *Test             `gorm:"foreignKey:TestID;references:ID" json:"test,omitempty"`
	Status      TestAttemptStatus `gorm:"column:status;not null;default:'IN_PROGRESS'" json:"status"`
	StartedAt   time.Time         `gorm:"column:started_at;not null;default:now()" json:"started_at"`
	DueAt       *time.Time        `gorm:"column:due_at" json:"due_at,omitempty"`
	SubmittedAt *time.Time        `gorm:"column:submitted_at" json:"submitted_at,omitempty"`
	FinishID    string            `gorm:"column:finish_id" json:"finish_id,omitempty"`
	Score       *float64          `gorm:"column:score" json:"score,omitempty"`
	CreatedAt   time.Time         `gorm:"column:created_at;not null;default:now()" json:"created_at"`
	UpdatedAt   time.Time         `gorm:"column:updated_at;not null;default:now()" json:"updated_at"`

	Responses []Response `gorm:"foreignKey:AttemptID" json:"responses,omitempty"`
}

func (TestAttempt) TableName() string { return "t_test_attempt" }

// Response is one answer within an attempt. SelectedOption stores the
// option id for MULTIPLE_CHOICE and the literal answer text otherwise;
// AdditionalData carries the pair map for MATCHING questions.
type Response struct {
	ID             uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	AttemptID      uuid.UUID      `gorm:"column:attempt_id;type:uuid;not null" json:"attempt_id"`
	QuestionID     uuid.UUID      `gorm:"column:question_id;type:uuid;not null" json:"question_id"`
	Question       *Question      `gorm:"foreignKey:QuestionID;references:ID" json:"question,omitempty"`
	SelectedOption string         `gorm:"column:selected_option" json:"selected_option,omitempty"`
	AdditionalData datatypes.JSON `gorm:"column:additional_data;type:jsonb" json:"additional_data,omitempty"`
	IsCorrect      *bool          `gorm:"column:is_correct" json:"is_correct,omitempty"`
	PointsAwarded  *float64       `gorm:"column:points_awarded" json:"points_awarded,omitempty"`
	CreatedAt      time.Time      `gorm:"column:created_at;not null;default:now()" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"column:updated_at;not null;default:now()" json:"updated_at"`
}

func (Response) TableName() string { return "t_response" }

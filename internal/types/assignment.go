package types

import (
	"time"

	"github.com/google/uuid"
)

type Assignment struct {
	ID          uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	CourseID    uuid.UUID  `gorm:"column:course_id;type:uuid;not null" json:"course_id"`
	ModuleID    *uuid.UUID `gorm:"column:module_id;type:uuid" json:"module_id,omitempty"`
	Title       string     `gorm:"column:title;not null" json:"title"`
	Description string     `gorm:"column:description" json:"description,omitempty"`
	DueDate     *time.Time `gorm:"column:due_date" json:"due_date,omitempty"`
	MaxPoints   int        `gorm:"column:max_points" json:"max_points,omitempty"`
	CreatedAt   time.Time  `gorm:"column:created_at;not null;default:now()" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;not null;default:now()" json:"updated_at"`
}

func (Assignment) TableName() string { return "t_assignment" }

type AssignmentSubmission struct {
	ID           uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	AssignmentID uuid.UUID `gorm:"column:assignment_id;type:uuid;not null" json:"assignment_id"`
	UserID       string    `gorm:"column:user_id;not null" json:"user_id"`
	Content      string    `gorm:"column:content" json:"content,omitempty"`
	FileURL      string    `gorm:"column:file_url" json:"file_url,omitempty"`
	SubmittedAt  time.Time `gorm:"column:submitted_at;not null;default:now()" json:"submitted_at"`
	Grade        *float64  `gorm:"column:grade" json:"grade,omitempty"`
	Feedback     string    `gorm:"column:feedback" json:"feedback,omitempty"`
	CreatedAt    time.Time `gorm:"column:created_at;not null;default:now()" json:"created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at;not null;default:now()" json:"updated_at"`
}

func (AssignmentSubmission) TableName() string { return "t_assignment_submission" }

// Certificate is issued once per completed course; CertificateNumber is
// the human-facing unique reference.
type Certificate struct {
	ID                uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID            string    `gorm:"column:user_id;not null" json:"user_id"`
	CourseID          uuid.UUID `gorm:"column:course_id;type:uuid;not null" json:"course_id"`
	Course            *Course   `gorm:"foreignKey:CourseID;references:ID" json:"course,omitempty"`
	CertificateNumber string    `gorm:"column:certificate_number;uniqueIndex;not null" json:"certificate_number"`
	IssuedAt          time.Time `gorm:"column:issued_at;not null;default:now()" json:"issued_at"`
	CreatedAt         time.Time `gorm:"column:created_at;not null;default:now()" json:"created_at"`
}

func (Certificate) TableName() string { return "t_certificate" }

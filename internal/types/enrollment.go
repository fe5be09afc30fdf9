package types

import (
	"time"

	"github.com/google/uuid"
)

// Enrollment links a user to a course. One row per (user, course) pair;
// progress_percentage mirrors the course progress rollup so catalog
// listings avoid a join.
type Enrollment struct {
	ID                 uuid.UUID        `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID             string           `gorm:"column:user_id;not null" json:"user_id"`
	User               *User            `gorm:"foreignKey:UserID;references:Auth0ID" json:"user,omitempty"`
	CourseID           uuid.UUID        `gorm:"column:course_id;type:uuid;not null" json:"course_id"`
	Course             *Course          `gorm:"foreignKey:CourseID;references:ID" json:"course,omitempty"`
	Status             EnrollmentStatus `gorm:"column:status;not null;default:'ACTIVE'" json:"status"`
	EnrolledAt         time.Time        `gorm:"column:enrolled_at;not null;default:now()" json:"enrolled_at"`
	CompletedAt        *time.Time       `gorm:"column:completed_at" json:"completed_at,omitempty"`
	ProgressPercentage float64          `gorm:"column:progress_percentage;not null;default:0" json:"progress_percentage"`
	LastAccessedAt     *time.Time       `gorm:"column:last_accessed_at" json:"last_accessed_at,omitempty"`
	CreatedAt          time.Time        `gorm:"column:created_at;not null;default:now()" json:"created_at"`
	UpdatedAt          time.Time        `gorm:"column:updated_at;not null;default:now()" json:"updated_at"`
}

func (Enrollment) TableName() string { return "t_enrollment" }

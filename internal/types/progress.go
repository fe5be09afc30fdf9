package types

import (
	"time"

	"github.com/google/uuid"
)

// CourseProgress is the per-user rollup over a course. Percentages are
// recomputed from module progress whenever a lesson completes.
type CourseProgress struct {
	ID                 uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID             string     `gorm:"column:user_id;not null" json:"user_id"`
	CourseID           uuid.UUID  `gorm:"column:course_id;type:uuid;not null" json:"course_id"`
	Course             *Course    `gorm:"foreignKey:CourseID;references:ID" json:"course,omitempty"`
	ProgressPercentage float64    `gorm:"column:progress_percentage;not null;default:0" json:"progress_percentage"`
	TimeSpent          int        `gorm:"column:time_spent;not null;default:0" json:"time_spent"`
	IsCompleted        bool       `gorm:"column:is_completed;not null;default:false" json:"is_completed"`
	CompletedAt        *time.Time `gorm:"column:completed_at" json:"completed_at,omitempty"`
	LastAccessedAt     *time.Time `gorm:"column:last_accessed_at" json:"last_accessed_at,omitempty"`
	CreatedAt          time.Time  `gorm:"column:created_at;not null;default:now()" json:"created_at"`
	UpdatedAt          time.Time  `gorm:"column:updated_at;not null;default:now()" json:"updated_at"`

	Modules []ModuleProgress `gorm:"foreignKey:CourseProgressID" json:"modules,omitempty"`
}

func (CourseProgress) TableName() string { return "t_course_progress" }

type ModuleProgress struct {
	ID                 uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	CourseProgressID   uuid.UUID  `gorm:"column:course_progress_id;type:uuid;not null" json:"course_progress_id"`
	ModuleID           uuid.UUID  `gorm:"column:module_id;type:uuid;not null" json:"module_id"`
	Module             *Module    `gorm:"foreignKey:ModuleID;references:ID" json:"module,omitempty"`
	ProgressPercentage float64    `gorm:"column:progress_percentage;not null;default:0" json:"progress_percentage"`
	TimeSpent          int        `gorm:"column:time_spent;not null;default:0" json:"time_spent"`
	IsCompleted        bool       `gorm:"column:is_completed;not null;default:false" json:"is_completed"`
	CompletedAt        *time.Time `gorm:"column:completed_at" json:"completed_at,omitempty"`
	CreatedAt          time.Time  `gorm:"column:created_at;not null;default:now()" json:"created_at"`
	UpdatedAt          time.Time  `gorm:"column:updated_at;not null;default:now()" json:"updated_at"`

	Lessons []LessonProgress `gorm:"foreignKey:ModuleProgressID" json:"lessons,omitempty"`
}

func (ModuleProgress) TableName() string { return "t_module_progress" }

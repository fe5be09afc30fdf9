package types

import (
	"time"

	"github.com/google/uuid"
)

// LessonProgress is the leaf of the progress tree. WatchTime tracks
// video playback separately from overall time spent on the lesson.
type LessonProgress struct {
	ID               uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ModuleProgressID uuid.UUID  `gorm:"column:module_progress_id;type:uuid;not null" json:"module_progress_id"`
	LessonID         uuid.UUID  `gorm:"column:lesson_id;type:uuid;not null" json:"lesson_id"`
	Lesson           *Lesson    `gorm:"foreignKey:LessonID;references:ID" json:"lesson,omitempty"`
	IsCompleted      bool       `gorm:"column:is_completed;not null;default:false" json:"is_completed"`
	CompletedAt      *time.Time `gorm:"column:completed_at" json:"completed_at,omitempty"`
	TimeSpent        int        `gorm:"column:time_spent;not null;default:0" json:"time_spent"`
	WatchTime        int        `gorm:"column:watch_time;not null;default:0" json:"watch_time"`
	CreatedAt        time.Time  `gorm:"column:created_at;not null;default:now()" json:"created_at"`
	UpdatedAt        time.Time  `gorm:"column:updated_at;not null;default:now()" json:"updated_at"`
}

func (LessonProgress) TableName() string { return "t_lesson_progress" }

package types

import (
	"time"

	"github.com/google/uuid"
)

type Course struct {
	ID                 uuid.UUID       `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Title              string          `gorm:"column:title;not null" json:"title"`
	ShortTitle         string          `gorm:"column:short_title" json:"short_title,omitempty"`
	Description        string          `gorm:"column:description" json:"description,omitempty"`
	Overview           string          `gorm:"column:overview" json:"overview,omitempty"`
	LearningObjectives string          `gorm:"column:learning_objectives" json:"learning_objectives,omitempty"`
	Prerequisites      string          `gorm:"column:prerequisites" json:"prerequisites,omitempty"`
	DifficultyLevel    DifficultyLevel `gorm:"column:difficulty_level;not null;default:'BEGINNER'" json:"difficulty_level"`
	EstimatedDuration  int             `gorm:"column:estimated_duration" json:"estimated_duration,omitempty"`
	Language           string          `gorm:"column:language;not null;default:'en'" json:"language"`
	Category           string          `gorm:"column:category" json:"category,omitempty"`
	Subcategory        string          `gorm:"column:subcategory" json:"subcategory,omitempty"`
	ThumbnailURL       string          `gorm:"column:thumbnail_url" json:"thumbnail_url,omitempty"`
	VideoPreviewURL    string          `gorm:"column:video_preview_url" json:"video_preview_url,omitempty"`
	Price              *float64        `gorm:"column:price" json:"price,omitempty"`
	IsFree             bool            `gorm:"column:is_free;not null;default:true" json:"is_free"`
	IsPublished        bool            `gorm:"column:is_published;not null;default:false" json:"is_published"`
	IsFeatured         bool            `gorm:"column:is_featured;not null;default:false" json:"is_featured"`
	EnrollmentCount    int             `gorm:"column:enrollment_count;not null;default:0" json:"enrollment_count"`
	Rating             float64         `gorm:"column:rating;not null;default:0" json:"rating"`
	RatingCount        int             `gorm:"column:rating_count;not null;default:0" json:"rating_count"`
	CreatorID          *string         `gorm:"column:creator_id" json:"creator_id,omitempty"`
	Creator            *User           `gorm:"foreignKey:CreatorID;references:Auth0ID" json:"creator,omitempty"`
	InstructorID       *string         `gorm:"column:instructor_id" json:"instructor_id,omitempty"`
	Instructor         *User           `gorm:"foreignKey:InstructorID;references:Auth0ID" json:"instructor,omitempty"`
	CreatedAt          time.Time       `gorm:"column:created_at;not null;default:now()" json:"created_at"`
	UpdatedAt          time.Time       `gorm:"column:updated_at;not null;default:now()" json:"updated_at"`

	Modules []Module `gorm:"foreignKey:CourseID" json:"modules,omitempty"`
}

func (Course) TableName() string { return "t_course" }

type Module struct {
	ID                uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	CourseID          uuid.UUID `gorm:"column:course_id;type:uuid;not null" json:"course_id"`
	Title             string    `gorm:"column:title;not null" json:"title"`
	Description       string    `gorm:"column:description" json:"description,omitempty"`
	Order             int       `gorm:"column:order;not null" json:"order"`
	IsPublished       bool      `gorm:"column:is_published;not null;default:true" json:"is_published"`
	EstimatedDuration int       `gorm:"column:estimated_duration" json:"estimated_duration,omitempty"`
	CreatedAt         time.Time `gorm:"column:created_at;not null;default:now()" json:"created_at"`
	UpdatedAt         time.Time `gorm:"column:updated_at;not null;default:now()" json:"updated_at"`

	Lessons []Lesson `gorm:"foreignKey:ModuleID" json:"lessons,omitempty"`
}

func (Module) TableName() string { return "t_module" }

type Lesson struct {
	ID            uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ModuleID      uuid.UUID  `gorm:"column:module_id;type:uuid;not null" json:"module_id"`
	Title         string     `gorm:"column:title;not null" json:"title"`
	Description   string     `gorm:"column:description" json:"description,omitempty"`
	Content       string     `gorm:"column:content" json:"content,omitempty"`
	VideoURL      string     `gorm:"column:video_url" json:"video_url,omitempty"`
	VideoDuration int        `gorm:"column:video_duration" json:"video_duration,omitempty"`
	Order         int        `gorm:"column:order;not null" json:"order"`
	LessonType    LessonType `gorm:"column:lesson_type;not null;default:'VIDEO'" json:"lesson_type"`
	IsPublished   bool       `gorm:"column:is_published;not null;default:true" json:"is_published"`
	IsPreview     bool       `gorm:"column:is_preview;not null;default:false" json:"is_preview"`
	CreatedAt     time.Time  `gorm:"column:created_at;not null;default:now()" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"column:updated_at;not null;default:now()" json:"updated_at"`

	Resources []LessonResource `gorm:"foreignKey:LessonID" json:"resources,omitempty"`
}

func (Lesson) TableName() string { return "t_lesson" }

type LessonResource struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	LessonID    uuid.UUID `gorm:"column:lesson_id;type:uuid;not null" json:"lesson_id"`
	Title       string    `gorm:"column:title;not null" json:"title"`
	Description string    `gorm:"column:description" json:"description,omitempty"`
	FileURL     string    `gorm:"column:file_url;not null" json:"file_url"`
	FileType    string    `gorm:"column:file_type;not null" json:"file_type"`
	FileSize    int       `gorm:"column:file_size" json:"file_size,omitempty"`
	CreatedAt   time.Time `gorm:"column:created_at;not null;default:now()" json:"created_at"`
}

func (LessonResource) TableName() string { return "t_lesson_resource" }

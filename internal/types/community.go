package types

import (
	"time"

	"github.com/google/uuid"
)

// CourseReview holds a 1..5 star rating with optional text. One review
// per (course, user) pair.
type CourseReview struct {
	ID         uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	CourseID   uuid.UUID `gorm:"column:course_id;type:uuid;not null" json:"course_id"`
	Course     *Course   `gorm:"foreignKey:CourseID;references:ID" json:"course,omitempty"`
	UserID     string    `gorm:"column:user_id;not null" json:"user_id"`
	User       *User     `gorm:"foreignKey:UserID;references:Auth0ID" json:"user,omitempty"`
	Rating     int       `gorm:"column:rating;not null" json:"rating"`
	ReviewText string    `gorm:"column:review_text" json:"review_text,omitempty"`
	CreatedAt  time.Time `gorm:"column:created_at;not null;default:now()" json:"created_at"`
	UpdatedAt  time.Time `gorm:"column:updated_at;not null;default:now()" json:"updated_at"`
}

func (CourseReview) TableName() string { return "t_course_review" }

type Announcement struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	CourseID  uuid.UUID `gorm:"column:course_id;type:uuid;not null" json:"course_id"`
	AuthorID  *string   `gorm:"column:author_id" json:"author_id,omitempty"`
	Author    *User     `gorm:"foreignKey:AuthorID;references:Auth0ID" json:"author,omitempty"`
	Title     string    `gorm:"column:title;not null" json:"title"`
	Content   string    `gorm:"column:content;not null" json:"content"`
	IsPinned  bool      `gorm:"column:is_pinned;not null;default:false" json:"is_pinned"`
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now()" json:"updated_at"`
}

func (Announcement) TableName() string { return "t_announcement" }

type Forum struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	CourseID    uuid.UUID `gorm:"column:course_id;type:uuid;not null" json:"course_id"`
	Title       string    `gorm:"column:title;not null" json:"title"`
	Description string    `gorm:"column:description" json:"description,omitempty"`
	CreatedAt   time.Time `gorm:"column:created_at;not null;default:now()" json:"created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at;not null;default:now()" json:"updated_at"`

	Posts []ForumPost `gorm:"foreignKey:ForumID" json:"posts,omitempty"`
}

func (Forum) TableName() string { return "t_forum" }

type ForumPost struct {
	ID           uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ForumID      uuid.UUID  `gorm:"column:forum_id;type:uuid;not null" json:"forum_id"`
	AuthorID     *string    `gorm:"column:author_id" json:"author_id,omitempty"`
	Author       *User      `gorm:"foreignKey:AuthorID;references:Auth0ID" json:"author,omitempty"`
	ParentPostID *uuid.UUID `gorm:"column:parent_post_id;type:uuid" json:"parent_post_id,omitempty"`
	Title        string     `gorm:"column:title" json:"title,omitempty"`
	Content      string     `gorm:"column:content;not null" json:"content"`
	CreatedAt    time.Time  `gorm:"column:created_at;not null;default:now()" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"column:updated_at;not null;default:now()" json:"updated_at"`

	Replies []ForumPost `gorm:"foreignKey:ParentPostID" json:"replies,omitempty"`
}

func (ForumPost) TableName() string { return "t_forum_post" }

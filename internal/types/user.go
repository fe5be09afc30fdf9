package types

import (
	"time"

	"github.com/google/uuid"
)

// User is a platform account. Auth0ID is the external identity the
// token layer resolves; every other table references users through it
// rather than through the row id.
type User struct {
	ID            uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Auth0ID       string     `gorm:"column:auth0_id;uniqueIndex;not null" json:"auth0_id"`
	Email         *string    `gorm:"column:email;uniqueIndex" json:"email,omitempty"`
	FullName      string     `gorm:"column:full_name" json:"full_name,omitempty"`
	Picture       string     `gorm:"column:picture" json:"picture,omitempty"`
	Type          UserType   `gorm:"column:type;not null;default:'STUDENT'" json:"type"`
	SchoolClassID *uuid.UUID `gorm:"column:school_class_id;type:uuid" json:"school_class_id,omitempty"`
	SchoolClass   *SchoolClass `gorm:"foreignKey:SchoolClassID;references:ID" json:"school_class,omitempty"`
	LoginCount    int        `gorm:"column:login_count;not null;default:0" json:"login_count"`
	IsDeleted     bool       `gorm:"column:is_deleted;not null;default:false" json:"is_deleted"`
	CreatedAt     time.Time  `gorm:"column:created_at;not null;default:now()" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"column:updated_at;not null;default:now()" json:"updated_at"`
}

func (User) TableName() string { return "t_user" }

type School struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Name      string    `gorm:"column:name;not null" json:"name"`
	City      string    `gorm:"column:city" json:"city,omitempty"`
	Address   string    `gorm:"column:address" json:"address,omitempty"`
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now()" json:"updated_at"`

	Classes []SchoolClass `gorm:"foreignKey:SchoolID" json:"classes,omitempty"`
}

func (School) TableName() string { return "t_school" }

type SchoolClass struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	SchoolID  uuid.UUID `gorm:"column:school_id;type:uuid;not null" json:"school_id"`
	School    *School   `gorm:"foreignKey:SchoolID;references:ID" json:"school,omitempty"`
	Name      string    `gorm:"column:name;not null" json:"name"`
	Grade     *int      `gorm:"column:grade" json:"grade,omitempty"`
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now()" json:"updated_at"`
}

func (SchoolClass) TableName() string { return "t_school_class" }

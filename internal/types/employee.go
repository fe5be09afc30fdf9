package types

import (
	"time"

	"github.com/google/uuid"
)

// Employee is the HR-side record. It shares the UserType enum with
// platform accounts and is keyed by the same external identity, but
// lives in its own table with its own soft delete.
type Employee struct {
	ID         uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Auth0ID    string    `gorm:"column:auth0_id;uniqueIndex;not null" json:"auth0_id"`
	Email      string    `gorm:"column:email;uniqueIndex;not null" json:"email"`
	FullName   string    `gorm:"column:full_name" json:"full_name,omitempty"`
	Position   string    `gorm:"column:position" json:"position,omitempty"`
	Department string    `gorm:"column:department" json:"department,omitempty"`
	Type       UserType  `gorm:"column:type;not null;default:'STUDENT'" json:"type"`
	IsDeleted  bool      `gorm:"column:is_deleted;not null;default:false" json:"is_deleted"`
	CreatedAt  time.Time `gorm:"column:created_at;not null;default:now()" json:"created_at"`
	UpdatedAt  time.Time `gorm:"column:updated_at;not null;default:now()" json:"updated_at"`
}

func (Employee) TableName() string { return "t_employee" }

// AttendanceEvent is one check-in or check-out with the geolocation it
// was recorded from. DistanceFromOffice is persisted so history queries
// do not recompute it.
type AttendanceEvent struct {
	ID                 uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	EmployeeID         uuid.UUID      `gorm:"column:employee_id;type:uuid;not null" json:"employee_id"`
	Employee           *Employee      `gorm:"foreignKey:EmployeeID;references:ID" json:"employee,omitempty"`
	EventType          AttendanceType `gorm:"column:event_type;not null" json:"event_type"`
	EventTime          time.Time      `gorm:"column:event_time;not null;default:now()" json:"event_time"`
	Latitude           float64        `gorm:"column:latitude;not null" json:"latitude"`
	Longitude          float64        `gorm:"column:longitude;not null" json:"longitude"`
	DistanceFromOffice float64        `gorm:"column:distance_from_office;not null" json:"distance_from_office"`
	DeviceInfo         string         `gorm:"column:device_info" json:"device_info,omitempty"`
	CreatedAt          time.Time      `gorm:"column:created_at;not null;default:now()" json:"created_at"`
}

func (AttendanceEvent) TableName() string { return "t_attendance_event" }

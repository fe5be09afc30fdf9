package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/genasnewdar/lever-stg/internal/data/repos"
	"github.com/genasnewdar/lever-stg/internal/data/repos/hr"
	"github.com/genasnewdar/lever-stg/internal/platform/apierr"
	"github.com/genasnewdar/lever-stg/internal/platform/ctxutil"
	"github.com/genasnewdar/lever-stg/internal/platform/logger"
	"github.com/genasnewdar/lever-stg/internal/types"
)

// lowAccuracyMeters flags GPS fixes worth a warning without blocking
// the event.
const lowAccuracyMeters = 50

// AttendanceLocation is the GPS fix sent with a check-in or check-out.
type AttendanceLocation struct {
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Accuracy  *float64 `json:"accuracy,omitempty"`
}

type RecordAttendanceInput struct {
	EventType  types.AttendanceType `json:"event_type"`
	Location   AttendanceLocation   `json:"location"`
	DeviceInfo string               `json:"device_info,omitempty"`
}

// AttendanceStatusView reports whether the employee is currently inside
// a check-in/check-out pair.
type AttendanceStatusView struct {
	EmployeeID string                 `json:"employee_id"`
	CheckedIn  bool                   `json:"checked_in"`
	LastEvent  *types.AttendanceEvent `json:"last_event,omitempty"`
}

type AttendancePage struct {
	Events     []*types.AttendanceEvent `json:"events"`
	Page       int                      `json:"page"`
	PageSize   int                      `json:"per_page"`
	Total      int64                    `json:"total"`
	TotalPages int                      `json:"total_pages"`
}

// AttendanceService records geofenced employee attendance. Every entry
// point resolves the caller to a t_employee row first; users without
// one are turned away.
type AttendanceService interface {
	Record(ctx context.Context, input *RecordAttendanceInput) (*types.AttendanceEvent, error)
	History(ctx context.Context, from, to *time.Time, page, pageSize int) (*AttendancePage, error)
	Status(ctx context.Context) (*AttendanceStatusView, error)
	OfficeInfo(ctx context.Context) (*OfficeConfig, error)
}

type attendanceService struct {
	db             *gorm.DB
	log            *logger.Logger
	employeeRepo   repos.EmployeeRepo
	attendanceRepo repos.AttendanceRepo
}

func NewAttendanceService(
	db *gorm.DB,
	baseLog *logger.Logger,
	employeeRepo repos.EmployeeRepo,
	attendanceRepo repos.AttendanceRepo,
) AttendanceService {
	return &attendanceService{
		db:             db,
		log:            baseLog.With("service", "AttendanceService"),
		employeeRepo:   employeeRepo,
		attendanceRepo: attendanceRepo,
	}
}

func (s *attendanceService) Record(ctx context.Context, input *RecordAttendanceInput) (*types.AttendanceEvent, error) {
	identity := ctxutil.GetIdentity(ctx)
	if identity == nil || identity.Auth0ID == "" {
		return nil, apierr.Unauthorized("UNAUTHORIZED")
	}
	if input == nil || !input.EventType.Valid() {
		return nil, apierr.BadRequest("INVALID_EVENT_TYPE", errors.New("event_type must be CHECK_IN or CHECK_OUT"))
	}
	if err := validateCoordinates(input.Location.Latitude, input.Location.Longitude); err != nil {
		return nil, apierr.BadRequest("INVALID_COORDINATES", err)
	}

	office := ReferenceOffice(s.log)
	distance := haversineMeters(input.Location.Latitude, input.Location.Longitude, office.Latitude, office.Longitude)
	if distance > office.AllowedRadiusMeters {
		s.log.Warn("Record: event outside geofence",
			"auth0Id", identity.Auth0ID, "eventType", input.EventType, "distance", distance)
		return nil, apierr.New(http.StatusForbidden, "LOCATION_OUT_OF_RANGE",
			fmt.Errorf("you are %.0fm from the office, the maximum allowed distance is %.0fm",
				distance, office.AllowedRadiusMeters))
	}
	if input.Location.Accuracy != nil && *input.Location.Accuracy > lowAccuracyMeters {
		s.log.Warn("Record: low GPS accuracy",
			"auth0Id", identity.Auth0ID, "accuracy", *input.Location.Accuracy)
	}

	var event *types.AttendanceEvent
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		employee, err := s.activeEmployee(ctx, tx, identity.Auth0ID)
		if err != nil {
			return err
		}

		last, err := s.attendanceRepo.LastByEmployee(ctx, tx, employee.ID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("load last attendance event: %w", err)
		}
		if last != nil && last.EventType == input.EventType {
			code := "ALREADY_CHECKED_OUT"
			if input.EventType == types.AttendanceCheckIn {
				code = "ALREADY_CHECKED_IN"
			}
			return apierr.BadRequest(code, fmt.Errorf("last event on %s was already %s",
				last.EventTime.Format(time.RFC3339), last.EventType))
		}

		event, err = s.attendanceRepo.Create(ctx, tx, &types.AttendanceEvent{
			EmployeeID:         employee.ID,
			EventType:          input.EventType,
			EventTime:          time.Now().UTC(),
			Latitude:           input.Location.Latitude,
			Longitude:          input.Location.Longitude,
			DistanceFromOffice: distance,
			DeviceInfo:         input.DeviceInfo,
		})
		if err != nil {
			return fmt.Errorf("create attendance event: %w", err)
		}
		return nil
	})
	if err != nil {
		s.log.Warn("Record: transaction failed", "auth0Id", identity.Auth0ID, "error", err)
		return nil, err
	}

	s.log.Info("Record: attendance recorded",
		"auth0Id", identity.Auth0ID, "eventType", event.EventType, "distance", distance)
	return event, nil
}

// History lists the employee's events newest first. From is inclusive,
// To exclusive, so callers can page whole days without overlap.
func (s *attendanceService) History(ctx context.Context, from, to *time.Time, page, pageSize int) (*AttendancePage, error) {
	identity := ctxutil.GetIdentity(ctx)
	if identity == nil || identity.Auth0ID == "" {
		return nil, apierr.Unauthorized("UNAUTHORIZED")
	}

	employee, err := s.activeEmployee(ctx, nil, identity.Auth0ID)
	if err != nil {
		return nil, err
	}

	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 200 {
		pageSize = 50
	}

	events, total, err := s.attendanceRepo.ListByEmployee(ctx, nil, employee.ID, hr.AttendanceFilter{
		From:     from,
		To:       to,
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		s.log.Warn("History: query failed", "auth0Id", identity.Auth0ID, "error", err)
		return nil, fmt.Errorf("list attendance events: %w", err)
	}

	return &AttendancePage{
		Events:     events,
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: int((total + int64(pageSize) - 1) / int64(pageSize)),
	}, nil
}

func (s *attendanceService) Status(ctx context.Context) (*AttendanceStatusView, error) {
	identity := ctxutil.GetIdentity(ctx)
	if identity == nil || identity.Auth0ID == "" {
		return nil, apierr.Unauthorized("UNAUTHORIZED")
	}

	employee, err := s.activeEmployee(ctx, nil, identity.Auth0ID)
	if err != nil {
		return nil, err
	}

	last, err := s.attendanceRepo.LastByEmployee(ctx, nil, employee.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &AttendanceStatusView{EmployeeID: employee.ID.String()}, nil
		}
		s.log.Warn("Status: query failed", "auth0Id", identity.Auth0ID, "error", err)
		return nil, fmt.Errorf("load last attendance event: %w", err)
	}

	return &AttendanceStatusView{
		EmployeeID: employee.ID.String(),
		CheckedIn:  last.EventType == types.AttendanceCheckIn,
		LastEvent:  last,
	}, nil
}

func (s *attendanceService) OfficeInfo(ctx context.Context) (*OfficeConfig, error) {
	identity := ctxutil.GetIdentity(ctx)
	if identity == nil || identity.Auth0ID == "" {
		return nil, apierr.Unauthorized("UNAUTHORIZED")
	}
	if _, err := s.activeEmployee(ctx, nil, identity.Auth0ID); err != nil {
		return nil, err
	}

	office := ReferenceOffice(s.log)
	return &office, nil
}

func (s *attendanceService) activeEmployee(ctx context.Context, tx *gorm.DB, auth0ID string) (*types.Employee, error) {
	employee, err := s.employeeRepo.GetByAuth0ID(ctx, tx, auth0ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound("EMPLOYEE_NOT_FOUND")
		}
		return nil, fmt.Errorf("get employee: %w", err)
	}
	if employee.IsDeleted {
		return nil, apierr.NotFound("EMPLOYEE_NOT_FOUND")
	}
	return employee, nil
}

func validateCoordinates(latitude, longitude float64) error {
	if latitude < -90 || latitude > 90 {
		return fmt.Errorf("latitude %v out of range", latitude)
	}
	if longitude < -180 || longitude > 180 {
		return fmt.Errorf("longitude %v out of range", longitude)
	}
	return nil
}

// haversineMeters is the great-circle distance between two coordinates.
func haversineMeters(lat1, lon1, lat2, lon2 float64) float64 {
	const earthRadiusMeters = 6371000.0

	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusMeters * math.Asin(math.Sqrt(a))
}

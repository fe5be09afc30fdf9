package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/genasnewdar/lever-stg/internal/data/repos"
	"github.com/genasnewdar/lever-stg/internal/data/repos/user"
	"github.com/genasnewdar/lever-stg/internal/platform/apierr"
	"github.com/genasnewdar/lever-stg/internal/platform/ctxutil"
	"github.com/genasnewdar/lever-stg/internal/platform/logger"
	"github.com/genasnewdar/lever-stg/internal/types"
)

// bulkRoleLimit caps how many accounts a single bulk role update may
// touch.
const bulkRoleLimit = 50

// AdminUserQuery carries the admin listing filters. UserType and
// SortOrder arrive as raw query strings and are validated here rather
// than at the binding layer so the error codes stay consistent.
type AdminUserQuery struct {
	Search    string
	UserType  string
	SortBy    string
	SortOrder string
	Page      int
	PageSize  int
}

type AdminUserStats struct {
	EnrollmentsCount       int64 `json:"enrollments_count"`
	InstructorCoursesCount int64 `json:"instructor_courses_count"`
}

type AdminUserView struct {
	*types.User
	Stats AdminUserStats `json:"stats"`
}

type AdminUserPage struct {
	Users       []AdminUserView `json:"users"`
	Page        int             `json:"page"`
	PageSize    int             `json:"per_page"`
	Total       int64           `json:"total"`
	TotalPages  int             `json:"total_pages"`
	HasNext     bool            `json:"has_next"`
	HasPrevious bool            `json:"has_previous"`
}

type AdminEnrollmentView struct {
	CourseID           uuid.UUID              `json:"course_id"`
	CourseTitle        string                 `json:"course_title"`
	Status             types.EnrollmentStatus `json:"status"`
	ProgressPercentage float64                `json:"progress_percentage"`
	EnrolledAt         time.Time              `json:"enrolled_at"`
}

type AdminCourseRef struct {
	ID              uuid.UUID `json:"id"`
	Title           string    `json:"title"`
	IsPublished     bool      `json:"is_published"`
	EnrollmentCount int       `json:"enrollment_count"`
	Rating          float64   `json:"rating"`
	CreatedAt       time.Time `json:"created_at"`
}

// AdminUserDetail is the full admin view of one account: profile plus
// everything they are enrolled in, teach, created and reviewed.
// AverageRatingGiven is nil until the user has written a review.
type AdminUserDetail struct {
	*types.User
	Enrollments        []AdminEnrollmentView `json:"enrollments"`
	InstructorCourses  []AdminCourseRef      `json:"instructor_courses"`
	CreatedCourses     []AdminCourseRef      `json:"created_courses"`
	RecentReviews      []*types.CourseReview `json:"recent_reviews"`
	ReviewsCount       int64                 `json:"reviews_count"`
	AverageRatingGiven *float64              `json:"average_rating_given"`
}

type RoleUpdateResult struct {
	UserID       string         `json:"user_id"`
	PreviousType types.UserType `json:"previous_type"`
	NewType      types.UserType `json:"new_type"`
	Changed      bool           `json:"changed"`
}

type BulkRoleChange struct {
	UserID       string         `json:"user_id"`
	PreviousType types.UserType `json:"previous_type"`
}

type BulkRoleUpdateResult struct {
	NewType   types.UserType   `json:"new_type"`
	Changed   []BulkRoleChange `json:"changed"`
	Unchanged []string         `json:"unchanged"`
}

type RoleStatEntry struct {
	Type       types.UserType `json:"type"`
	Count      int64          `json:"count"`
	Percentage float64        `json:"percentage"`
}

type RoleStatsView struct {
	TotalUsers  int64           `json:"total_users"`
	Roles       []RoleStatEntry `json:"roles"`
	GeneratedAt time.Time       `json:"generated_at"`
}

type AdminUserService interface {
	ListUsers(ctx context.Context, query AdminUserQuery) (*AdminUserPage, error)
	UserDetail(ctx context.Context, auth0ID string) (*AdminUserDetail, error)
	UpdateRole(ctx context.Context, auth0ID string, newType types.UserType) (*RoleUpdateResult, error)
	BulkUpdateRoles(ctx context.Context, auth0IDs []string, newType types.UserType) (*BulkRoleUpdateResult, error)
	RoleStats(ctx context.Context) (*RoleStatsView, error)
}

type adminUserService struct {
	db             *gorm.DB
	log            *logger.Logger
	userRepo       repos.UserRepo
	courseRepo     repos.CourseRepo
	enrollmentRepo repos.EnrollmentRepo
	reviewRepo     repos.ReviewRepo
}

func NewAdminUserService(db *gorm.DB, baseLog *logger.Logger, userRepo repos.UserRepo, courseRepo repos.CourseRepo, enrollmentRepo repos.EnrollmentRepo, reviewRepo repos.ReviewRepo) AdminUserService {
	return &adminUserService{
		db:             db,
		log:            baseLog.With("service", "AdminUserService"),
		userRepo:       userRepo,
		courseRepo:     courseRepo,
		enrollmentRepo: enrollmentRepo,
		reviewRepo:     reviewRepo,
	}
}

// requireAdmin resolves the calling identity and checks the account
// holds the ADMIN role. Deleted accounts are treated as missing. Shared
// by every admin-facing service.
func requireAdmin(ctx context.Context, tx *gorm.DB, userRepo repos.UserRepo) (*types.User, error) {
	identity := ctxutil.GetIdentity(ctx)
	if identity == nil || identity.Auth0ID == "" {
		return nil, apierr.Unauthorized("UNAUTHORIZED")
	}

	admin, err := userRepo.GetByAuth0ID(ctx, tx, identity.Auth0ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound("USER_NOT_FOUND")
		}
		return nil, fmt.Errorf("fetch requesting user: %w", err)
	}
	if admin.IsDeleted {
		return nil, apierr.NotFound("USER_NOT_FOUND")
	}
	if admin.Type != types.UserTypeAdmin {
		return nil, apierr.Forbidden("ADMIN_ACCESS_REQUIRED")
	}
	return admin, nil
}

func (s *adminUserService) ListUsers(ctx context.Context, query AdminUserQuery) (*AdminUserPage, error) {
	if _, err := requireAdmin(ctx, nil, s.userRepo); err != nil {
		return nil, err
	}

	filter := user.ListFilter{
		Search:   strings.TrimSpace(query.Search),
		SortBy:   query.SortBy,
		SortDesc: true,
		Page:     query.Page,
		PageSize: query.PageSize,
	}
	switch strings.ToLower(query.SortOrder) {
	case "asc":
		filter.SortDesc = false
	case "", "desc":
	default:
		return nil, apierr.BadRequest("INVALID_SORT_ORDER", fmt.Errorf("sort_order must be asc or desc"))
	}
	if query.UserType != "" {
		userType := types.UserType(strings.ToUpper(query.UserType))
		if !userType.Valid() {
			return nil, apierr.BadRequest("INVALID_USER_TYPE", fmt.Errorf("unknown user type %q", query.UserType))
		}
		filter.Types = []types.UserType{userType}
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 || filter.PageSize > 100 {
		filter.PageSize = 20
	}

	users, total, err := s.userRepo.List(ctx, nil, filter)
	if err != nil {
		s.log.Warn("ListUsers: fetch failed", "error", err)
		return nil, fmt.Errorf("list users: %w", err)
	}

	auth0IDs := make([]string, 0, len(users))
	for _, u := range users {
		auth0IDs = append(auth0IDs, u.Auth0ID)
	}
	enrollCounts, err := s.enrollmentRepo.CountByUsers(ctx, nil, auth0IDs)
	if err != nil {
		return nil, fmt.Errorf("count enrollments: %w", err)
	}
	courseCounts, err := s.courseRepo.CountByInstructors(ctx, nil, auth0IDs)
	if err != nil {
		return nil, fmt.Errorf("count instructor courses: %w", err)
	}

	views := make([]AdminUserView, 0, len(users))
	for _, u := range users {
		views = append(views, AdminUserView{
			User: u,
			Stats: AdminUserStats{
				EnrollmentsCount:       enrollCounts[u.Auth0ID],
				InstructorCoursesCount: courseCounts[u.Auth0ID],
			},
		})
	}

	totalPages := int((total + int64(filter.PageSize) - 1) / int64(filter.PageSize))
	return &AdminUserPage{
		Users:       views,
		Page:        filter.Page,
		PageSize:    filter.PageSize,
		Total:       total,
		TotalPages:  totalPages,
		HasNext:     int64(filter.Page)*int64(filter.PageSize) < total,
		HasPrevious: filter.Page > 1,
	}, nil
}

func (s *adminUserService) UserDetail(ctx context.Context, auth0ID string) (*AdminUserDetail, error) {
	if _, err := requireAdmin(ctx, nil, s.userRepo); err != nil {
		return nil, err
	}

	target, err := s.userRepo.GetByAuth0ID(ctx, nil, auth0ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound("USER_NOT_FOUND")
		}
		s.log.Warn("UserDetail: fetch failed", "auth0_id", auth0ID, "error", err)
		return nil, fmt.Errorf("fetch user: %w", err)
	}
	if target.IsDeleted {
		return nil, apierr.NotFound("USER_NOT_FOUND")
	}

	enrollments, err := s.enrollmentRepo.ListByUser(ctx, nil, auth0ID)
	if err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}
	enrollmentViews := make([]AdminEnrollmentView, 0, len(enrollments))
	for _, e := range enrollments {
		view := AdminEnrollmentView{
			CourseID:           e.CourseID,
			Status:             e.Status,
			ProgressPercentage: e.ProgressPercentage,
			EnrolledAt:         e.EnrolledAt,
		}
		if e.Course != nil {
			view.CourseTitle = e.Course.Title
		}
		enrollmentViews = append(enrollmentViews, view)
	}

	instructorCourses, err := s.courseRepo.ListByInstructor(ctx, nil, auth0ID)
	if err != nil {
		return nil, fmt.Errorf("list instructor courses: %w", err)
	}
	createdCourses, err := s.courseRepo.ListByCreator(ctx, nil, auth0ID)
	if err != nil {
		return nil, fmt.Errorf("list created courses: %w", err)
	}

	recent, _, err := s.reviewRepo.ListByUser(ctx, nil, auth0ID, 1, 10)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	reviewCount, ratingAvg, err := s.reviewRepo.UserRatingSummary(ctx, nil, auth0ID)
	if err != nil {
		return nil, fmt.Errorf("summarize reviews: %w", err)
	}
	var averageGiven *float64
	if reviewCount > 0 {
		rounded := round2(ratingAvg)
		averageGiven = &rounded
	}

	return &AdminUserDetail{
		User:               target,
		Enrollments:        enrollmentViews,
		InstructorCourses:  courseRefs(instructorCourses),
		CreatedCourses:     courseRefs(createdCourses),
		RecentReviews:      recent,
		ReviewsCount:       reviewCount,
		AverageRatingGiven: averageGiven,
	}, nil
}

func (s *adminUserService) UpdateRole(ctx context.Context, auth0ID string, newType types.UserType) (*RoleUpdateResult, error) {
	if !newType.Valid() {
		return nil, apierr.BadRequest("INVALID_USER_TYPE", fmt.Errorf("unknown user type %q", newType))
	}

	var out *RoleUpdateResult
	if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		admin, err := requireAdmin(ctx, tx, s.userRepo)
		if err != nil {
			return err
		}
		if admin.Auth0ID == auth0ID {
			return apierr.BadRequest("CANNOT_CHANGE_OWN_ROLE", fmt.Errorf("admins cannot change their own role"))
		}

		target, err := s.userRepo.GetByAuth0ID(ctx, tx, auth0ID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierr.NotFound("USER_NOT_FOUND")
			}
			return err
		}
		if target.IsDeleted {
			return apierr.NotFound("USER_NOT_FOUND")
		}

		out = &RoleUpdateResult{
			UserID:       target.Auth0ID,
			PreviousType: target.Type,
			NewType:      newType,
		}
		if target.Type == newType {
			return nil
		}
		if err := s.userRepo.SetType(ctx, tx, auth0ID, newType); err != nil {
			return fmt.Errorf("set user type: %w", err)
		}
		out.Changed = true
		return nil
	}); err != nil {
		s.log.Warn("UpdateRole: transaction failed", "auth0_id", auth0ID, "error", err)
		return nil, err
	}

	s.log.Info("UpdateRole: role updated", "auth0_id", auth0ID, "new_type", out.NewType, "changed", out.Changed)
	return out, nil
}

func (s *adminUserService) BulkUpdateRoles(ctx context.Context, auth0IDs []string, newType types.UserType) (*BulkRoleUpdateResult, error) {
	if !newType.Valid() {
		return nil, apierr.BadRequest("INVALID_USER_TYPE", fmt.Errorf("unknown user type %q", newType))
	}

	ids := dedupeStrings(auth0IDs)
	if len(ids) == 0 {
		return nil, apierr.BadRequest("NO_USERS_PROVIDED", fmt.Errorf("user_ids must not be empty"))
	}
	if len(ids) > bulkRoleLimit {
		return nil, apierr.BadRequest("TOO_MANY_USERS", fmt.Errorf("at most %d users per request", bulkRoleLimit))
	}

	var out *BulkRoleUpdateResult
	if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		admin, err := requireAdmin(ctx, tx, s.userRepo)
		if err != nil {
			return err
		}
		for _, id := range ids {
			if id == admin.Auth0ID {
				return apierr.BadRequest("CANNOT_CHANGE_OWN_ROLE", fmt.Errorf("admins cannot change their own role"))
			}
		}

		found, err := s.userRepo.GetByAuth0IDs(ctx, tx, ids)
		if err != nil {
			return fmt.Errorf("fetch users: %w", err)
		}
		byID := make(map[string]*types.User, len(found))
		for _, u := range found {
			if !u.IsDeleted {
				byID[u.Auth0ID] = u
			}
		}
		var missing []string
		for _, id := range ids {
			if _, ok := byID[id]; !ok {
				missing = append(missing, id)
			}
		}
		if len(missing) > 0 {
			return apierr.New(http.StatusNotFound, "USERS_NOT_FOUND", fmt.Errorf("users not found: %s", strings.Join(missing, ", ")))
		}

		result := &BulkRoleUpdateResult{
			NewType:   newType,
			Changed:   []BulkRoleChange{},
			Unchanged: []string{},
		}
		var changeIDs []string
		for _, id := range ids {
			u := byID[id]
			if u.Type == newType {
				result.Unchanged = append(result.Unchanged, id)
				continue
			}
			result.Changed = append(result.Changed, BulkRoleChange{UserID: id, PreviousType: u.Type})
			changeIDs = append(changeIDs, id)
		}
		if len(changeIDs) > 0 {
			if _, err := s.userRepo.SetTypeBulk(ctx, tx, changeIDs, newType); err != nil {
				return fmt.Errorf("set user types: %w", err)
			}
		}
		out = result
		return nil
	}); err != nil {
		s.log.Warn("BulkUpdateRoles: transaction failed", "count", len(ids), "error", err)
		return nil, err
	}

	s.log.Info("BulkUpdateRoles: roles updated", "new_type", newType, "changed", len(out.Changed), "unchanged", len(out.Unchanged))
	return out, nil
}

// roleOrder fixes the stats ordering so every role shows up even with a
// zero count.
var roleOrder = []types.UserType{
	types.UserTypeStudent,
	types.UserTypeInstructor,
	types.UserTypeTeachingAssistant,
	types.UserTypeAdmin,
}

func (s *adminUserService) RoleStats(ctx context.Context) (*RoleStatsView, error) {
	if _, err := requireAdmin(ctx, nil, s.userRepo); err != nil {
		return nil, err
	}

	counts, err := s.userRepo.CountByType(ctx, nil)
	if err != nil {
		s.log.Warn("RoleStats: fetch failed", "error", err)
		return nil, fmt.Errorf("count users by type: %w", err)
	}

	byType := make(map[types.UserType]int64, len(counts))
	var total int64
	for _, row := range counts {
		byType[row.Type] = row.Count
		total += row.Count
	}

	entries := make([]RoleStatEntry, 0, len(roleOrder))
	for _, role := range roleOrder {
		entry := RoleStatEntry{Type: role, Count: byType[role]}
		if total > 0 {
			entry.Percentage = round2(float64(entry.Count) * 100 / float64(total))
		}
		entries = append(entries, entry)
	}

	return &RoleStatsView{
		TotalUsers:  total,
		Roles:       entries,
		GeneratedAt: time.Now().UTC(),
	}, nil
}

func courseRefs(courses []*types.Course) []AdminCourseRef {
	refs := make([]AdminCourseRef, 0, len(courses))
	for _, c := range courses {
		refs = append(refs, AdminCourseRef{
			ID:              c.ID,
			Title:           c.Title,
			IsPublished:     c.IsPublished,
			EnrollmentCount: c.EnrollmentCount,
			Rating:          c.Rating,
			CreatedAt:       c.CreatedAt,
		})
	}
	return refs
}

func dedupeStrings(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

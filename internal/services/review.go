package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/genasnewdar/lever-stg/internal/data/repos"
	"github.com/genasnewdar/lever-stg/internal/data/repos/learning"
	"github.com/genasnewdar/lever-stg/internal/platform/apierr"
	"github.com/genasnewdar/lever-stg/internal/platform/ctxutil"
	"github.com/genasnewdar/lever-stg/internal/platform/logger"
	"github.com/genasnewdar/lever-stg/internal/types"
)

const maxReviewTextLen = 2000

type ReviewCreateInput struct {
	Rating     int     `json:"rating"`
	ReviewText *string `json:"review_text"`
}

type ReviewUpdateInput struct {
	Rating     *int    `json:"rating"`
	ReviewText *string `json:"review_text"`
}

// ReviewView decorates a stored review with caller-relative flags.
type ReviewView struct {
	*types.CourseReview
	IsOwnReview bool `json:"is_own_review"`
}

type ReviewPage struct {
	Reviews    []*ReviewView           `json:"reviews"`
	Summary    *learning.RatingSummary `json:"rating_stats"`
	Page       int                     `json:"page"`
	PageSize   int                     `json:"per_page"`
	Total      int64                   `json:"total"`
	TotalPages int                     `json:"total_pages"`
}

// CanReviewView explains review eligibility; Reason is NOT_ENROLLED or
// ALREADY_REVIEWED when CanReview is false.
type CanReviewView struct {
	CanReview      bool                `json:"can_review"`
	Reason         string              `json:"reason,omitempty"`
	ExistingReview *types.CourseReview `json:"existing_review,omitempty"`
}

// ReviewService manages course reviews. Creating or re-rating a review
// recomputes the denormalized rating and rating_count on the course.
type ReviewService interface {
	Create(ctx context.Context, courseID uuid.UUID, input *ReviewCreateInput) (*types.CourseReview, error)
	Update(ctx context.Context, reviewID uuid.UUID, input *ReviewUpdateInput) (*types.CourseReview, error)
	Delete(ctx context.Context, reviewID uuid.UUID) error
	ListByCourse(ctx context.Context, courseID uuid.UUID, filter learning.ReviewFilter) (*ReviewPage, error)
	MyReviews(ctx context.Context, page, pageSize int) ([]*types.CourseReview, int64, error)
	RatingStats(ctx context.Context, courseID uuid.UUID) (*learning.RatingSummary, error)
	CanReview(ctx context.Context, courseID uuid.UUID) (*CanReviewView, error)
	TopRated(ctx context.Context, category string, minReviews, limit int) ([]*types.Course, error)
	Recent(ctx context.Context, days, limit int) ([]*types.CourseReview, error)
}

type reviewService struct {
	db             *gorm.DB
	log            *logger.Logger
	courseRepo     repos.CourseRepo
	enrollmentRepo repos.EnrollmentRepo
	reviewRepo     repos.ReviewRepo
}

func NewReviewService(
	db *gorm.DB,
	baseLog *logger.Logger,
	courseRepo repos.CourseRepo,
	enrollmentRepo repos.EnrollmentRepo,
	reviewRepo repos.ReviewRepo,
) ReviewService {
	return &reviewService{
		db:             db,
		log:            baseLog.With("service", "ReviewService"),
		courseRepo:     courseRepo,
		enrollmentRepo: enrollmentRepo,
		reviewRepo:     reviewRepo,
	}
}

func validRating(rating int) bool { return rating >= 1 && rating <= 5 }

// normalizeReviewText trims whitespace-only text to empty and enforces
// the length cap.
func normalizeReviewText(text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}
	if utf8.RuneCountInString(text) > maxReviewTextLen {
		return "", fmt.Errorf("review text cannot exceed %d characters", maxReviewTextLen)
	}
	return text, nil
}

func (rs *reviewService) Create(ctx context.Context, courseID uuid.UUID, input *ReviewCreateInput) (*types.CourseReview, error) {
	identity := ctxutil.GetIdentity(ctx)
	if identity == nil || identity.Auth0ID == "" {
		return nil, apierr.Unauthorized("UNAUTHORIZED")
	}
	if !validRating(input.Rating) {
		return nil, apierr.BadRequest("INVALID_RATING", fmt.Errorf("rating must be between 1 and 5"))
	}
	reviewText := ""
	if input.ReviewText != nil {
		normalized, err := normalizeReviewText(*input.ReviewText)
		if err != nil {
			return nil, apierr.BadRequest("INVALID_REVIEW_TEXT", err)
		}
		reviewText = normalized
	}

	var out *types.CourseReview
	if err := rs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		course, err := rs.courseRepo.GetByID(ctx, tx, courseID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierr.NotFound("COURSE_NOT_FOUND")
			}
			return fmt.Errorf("fetch course: %w", err)
		}
		if !course.IsPublished {
			return apierr.NotFound("COURSE_NOT_FOUND")
		}

		enrollment, err := activeEnrollment(ctx, rs.enrollmentRepo, tx, identity.Auth0ID, courseID)
		if err != nil {
			return fmt.Errorf("check enrollment: %w", err)
		}
		if enrollment == nil {
			return apierr.Forbidden("ENROLLMENT_REQUIRED")
		}

		if _, err := rs.reviewRepo.GetByCourseAndUser(ctx, tx, courseID, identity.Auth0ID); err == nil {
			return apierr.Conflict("REVIEW_ALREADY_EXISTS")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("check existing review: %w", err)
		}

		created, err := rs.reviewRepo.Create(ctx, tx, &types.CourseReview{
			CourseID:   courseID,
			UserID:     identity.Auth0ID,
			Rating:     input.Rating,
			ReviewText: reviewText,
		})
		if err != nil {
			return fmt.Errorf("create review: %w", err)
		}

		if err := rs.syncCourseRating(ctx, tx, courseID); err != nil {
			return err
		}

		created.Course = course
		out = created
		return nil
	}); err != nil {
		rs.log.Warn("Create: transaction failed", "course_id", courseID, "error", err)
		return nil, err
	}
	return out, nil
}

func (rs *reviewService) Update(ctx context.Context, reviewID uuid.UUID, input *ReviewUpdateInput) (*types.CourseReview, error) {
	identity := ctxutil.GetIdentity(ctx)
	if identity == nil || identity.Auth0ID == "" {
		return nil, apierr.Unauthorized("UNAUTHORIZED")
	}
	if input.Rating == nil && input.ReviewText == nil {
		return nil, apierr.BadRequest("NO_UPDATE_DATA", fmt.Errorf("nothing to update"))
	}
	if input.Rating != nil && !validRating(*input.Rating) {
		return nil, apierr.BadRequest("INVALID_RATING", fmt.Errorf("rating must be between 1 and 5"))
	}

	var out *types.CourseReview
	if err := rs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		review, err := rs.reviewRepo.GetByID(ctx, tx, reviewID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierr.NotFound("REVIEW_NOT_FOUND")
			}
			return fmt.Errorf("fetch review: %w", err)
		}
		if review.Course == nil || !review.Course.IsPublished {
			return apierr.NotFound("REVIEW_NOT_FOUND")
		}
		if review.UserID != identity.Auth0ID {
			return apierr.Forbidden("UNAUTHORIZED_ACCESS")
		}

		ratingChanged := false
		if input.Rating != nil && *input.Rating != review.Rating {
			review.Rating = *input.Rating
			ratingChanged = true
		}
		if input.ReviewText != nil {
			normalized, err := normalizeReviewText(*input.ReviewText)
			if err != nil {
				return apierr.BadRequest("INVALID_REVIEW_TEXT", err)
			}
			review.ReviewText = normalized
		}

		course := review.Course
		review.Course = nil
		if err := rs.reviewRepo.Update(ctx, tx, review); err != nil {
			return fmt.Errorf("update review: %w", err)
		}
		review.Course = course

		if ratingChanged {
			if err := rs.syncCourseRating(ctx, tx, review.CourseID); err != nil {
				return err
			}
		}

		out = review
		return nil
	}); err != nil {
		rs.log.Warn("Update: transaction failed", "review_id", reviewID, "error", err)
		return nil, err
	}
	return out, nil
}

func (rs *reviewService) Delete(ctx context.Context, reviewID uuid.UUID) error {
	identity := ctxutil.GetIdentity(ctx)
	if identity == nil || identity.Auth0ID == "" {
		return apierr.Unauthorized("UNAUTHORIZED")
	}

	if err := rs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		review, err := rs.reviewRepo.GetByID(ctx, tx, reviewID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierr.NotFound("REVIEW_NOT_FOUND")
			}
			return fmt.Errorf("fetch review: %w", err)
		}
		if review.UserID != identity.Auth0ID && identity.UserType != string(types.UserTypeAdmin) {
			return apierr.Forbidden("UNAUTHORIZED_ACCESS")
		}

		if err := rs.reviewRepo.Delete(ctx, tx, reviewID); err != nil {
			return fmt.Errorf("delete review: %w", err)
		}
		return rs.syncCourseRating(ctx, tx, review.CourseID)
	}); err != nil {
		rs.log.Warn("Delete: transaction failed", "review_id", reviewID, "error", err)
		return err
	}
	return nil
}

// syncCourseRating refreshes the denormalized rating columns from the
// review table.
func (rs *reviewService) syncCourseRating(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) error {
	summary, err := rs.reviewRepo.Summary(ctx, tx, courseID)
	if err != nil {
		return fmt.Errorf("summarize reviews: %w", err)
	}
	if err := rs.courseRepo.SetRating(ctx, tx, courseID, round1(summary.Average), int(summary.Count)); err != nil {
		return fmt.Errorf("set course rating: %w", err)
	}
	return nil
}

func (rs *reviewService) ListByCourse(ctx context.Context, courseID uuid.UUID, filter learning.ReviewFilter) (*ReviewPage, error) {
	identity := ctxutil.GetIdentity(ctx)
	if identity == nil || identity.Auth0ID == "" {
		return nil, apierr.Unauthorized("UNAUTHORIZED")
	}

	course, err := rs.courseRepo.GetByID(ctx, nil, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound("COURSE_NOT_FOUND")
		}
		return nil, fmt.Errorf("fetch course: %w", err)
	}
	if !course.IsPublished {
		return nil, apierr.NotFound("COURSE_NOT_FOUND")
	}

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 || filter.PageSize > 50 {
		filter.PageSize = 10
	}

	reviews, total, err := rs.reviewRepo.ListByCourse(ctx, nil, courseID, filter)
	if err != nil {
		rs.log.Warn("ListByCourse: query failed", "course_id", courseID, "error", err)
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	summary, err := rs.reviewRepo.Summary(ctx, nil, courseID)
	if err != nil {
		return nil, fmt.Errorf("summarize reviews: %w", err)
	}
	summary.Average = round1(summary.Average)

	page := &ReviewPage{
		Reviews:    make([]*ReviewView, 0, len(reviews)),
		Summary:    summary,
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		Total:      total,
		TotalPages: int((total + int64(filter.PageSize) - 1) / int64(filter.PageSize)),
	}
	for _, review := range reviews {
		page.Reviews = append(page.Reviews, &ReviewView{
			CourseReview: review,
			IsOwnReview:  review.UserID == identity.Auth0ID,
		})
	}
	return page, nil
}

func (rs *reviewService) MyReviews(ctx context.Context, page, pageSize int) ([]*types.CourseReview, int64, error) {
	identity := ctxutil.GetIdentity(ctx)
	if identity == nil || identity.Auth0ID == "" {
		return nil, 0, apierr.Unauthorized("UNAUTHORIZED")
	}

	reviews, total, err := rs.reviewRepo.ListByUser(ctx, nil, identity.Auth0ID, page, pageSize)
	if err != nil {
		rs.log.Warn("MyReviews: query failed", "error", err)
		return nil, 0, fmt.Errorf("list reviews: %w", err)
	}
	return reviews, total, nil
}

func (rs *reviewService) RatingStats(ctx context.Context, courseID uuid.UUID) (*learning.RatingSummary, error) {
	course, err := rs.courseRepo.GetByID(ctx, nil, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound("COURSE_NOT_FOUND")
		}
		return nil, fmt.Errorf("fetch course: %w", err)
	}
	if !course.IsPublished {
		return nil, apierr.NotFound("COURSE_NOT_FOUND")
	}

	summary, err := rs.reviewRepo.Summary(ctx, nil, courseID)
	if err != nil {
		rs.log.Warn("RatingStats: query failed", "course_id", courseID, "error", err)
		return nil, fmt.Errorf("summarize reviews: %w", err)
	}
	summary.Average = round1(summary.Average)
	return summary, nil
}

func (rs *reviewService) CanReview(ctx context.Context, courseID uuid.UUID) (*CanReviewView, error) {
	identity := ctxutil.GetIdentity(ctx)
	if identity == nil || identity.Auth0ID == "" {
		return nil, apierr.Unauthorized("UNAUTHORIZED")
	}

	course, err := rs.courseRepo.GetByID(ctx, nil, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound("COURSE_NOT_FOUND")
		}
		return nil, fmt.Errorf("fetch course: %w", err)
	}
	if !course.IsPublished {
		return nil, apierr.NotFound("COURSE_NOT_FOUND")
	}

	enrollment, err := activeEnrollment(ctx, rs.enrollmentRepo, nil, identity.Auth0ID, courseID)
	if err != nil {
		return nil, fmt.Errorf("check enrollment: %w", err)
	}

	existing, err := rs.reviewRepo.GetByCourseAndUser(ctx, nil, courseID, identity.Auth0ID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("check existing review: %w", err)
	}

	view := &CanReviewView{CanReview: enrollment != nil && existing == nil, ExistingReview: existing}
	if enrollment == nil {
		view.Reason = "NOT_ENROLLED"
	} else if existing != nil {
		view.Reason = "ALREADY_REVIEWED"
	}
	return view, nil
}

func (rs *reviewService) TopRated(ctx context.Context, category string, minReviews, limit int) ([]*types.Course, error) {
	if minReviews < 1 {
		minReviews = 5
	}
	if limit < 1 || limit > 50 {
		limit = 10
	}

	courses, err := rs.courseRepo.TopRated(ctx, nil, category, minReviews, limit)
	if err != nil {
		rs.log.Warn("TopRated: query failed", "error", err)
		return nil, fmt.Errorf("list top rated courses: %w", err)
	}
	return courses, nil
}

func (rs *reviewService) Recent(ctx context.Context, days, limit int) ([]*types.CourseReview, error) {
	if days < 1 || days > 365 {
		days = 30
	}
	if limit < 1 || limit > 50 {
		limit = 10
	}

	since := time.Now().UTC().AddDate(0, 0, -days)
	reviews, err := rs.reviewRepo.RecentAcrossCourses(ctx, nil, since, limit)
	if err != nil {
		rs.log.Warn("Recent: query failed", "error", err)
		return nil, fmt.Errorf("list recent reviews: %w", err)
	}
	return reviews, nil
}

package learning

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/genasnewdar/lever-stg/internal/data/repos/testutil"
	"github.com/genasnewdar/lever-stg/internal/types"
)

func TestReviewRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	repo := NewReviewRepo(db, testutil.Logger(t))

	u := testutil.SeedUser(t, ctx, tx, "reviewrepo")
	u2 := testutil.SeedUser(t, ctx, tx, "reviewrepo2")
	c := testutil.SeedCourse(t, ctx, tx, u.Auth0ID)

	r1, err := repo.Create(ctx, tx, &types.CourseReview{
		ID:         uuid.New(),
		CourseID:   c.ID,
		UserID:     u.Auth0ID,
		Rating:     5,
		ReviewText: "great",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := repo.Create(ctx, tx, &types.CourseReview{
		ID:       uuid.New(),
		CourseID: c.ID,
		UserID:   u2.Auth0ID,
		Rating:   3,
	}); err != nil {
		t.Fatalf("Create second: %v", err)
	}

	if got, err := repo.GetByCourseAndUser(ctx, tx, c.ID, u.Auth0ID); err != nil || got.ID != r1.ID {
		t.Fatalf("GetByCourseAndUser: err=%v got=%+v", err, got)
	}

	rows, total, err := repo.ListByCourse(ctx, tx, c.ID, ReviewFilter{Page: 1, PageSize: 10})
	if err != nil || total != 2 || len(rows) != 2 {
		t.Fatalf("ListByCourse: err=%v total=%d len=%d", err, total, len(rows))
	}
	rows, total, err = repo.ListByCourse(ctx, tx, c.ID, ReviewFilter{Page: 1, PageSize: 10, Rating: 5})
	if err != nil || total != 1 || rows[0].ID != r1.ID {
		t.Fatalf("ListByCourse rating filter: err=%v total=%d", err, total)
	}

	summary, err := repo.Summary(ctx, tx, c.ID)
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if summary.Count != 2 || summary.Average != 4 || summary.Distribution[5] != 1 || summary.Distribution[3] != 1 {
		t.Fatalf("Summary: %+v", summary)
	}

	count, avg, err := repo.UserRatingSummary(ctx, tx, u.Auth0ID)
	if err != nil || count != 1 || avg != 5 {
		t.Fatalf("UserRatingSummary: err=%v count=%d avg=%v", err, count, avg)
	}

	if rows, err := repo.RecentAcrossCourses(ctx, tx, time.Now().Add(-time.Hour), 10); err != nil || len(rows) != 2 {
		t.Fatalf("RecentAcrossCourses: err=%v len=%d", err, len(rows))
	}

	r1.Rating = 4
	r1.ReviewText = "good"
	if err := repo.Update(ctx, tx, r1); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got, err := repo.GetByID(ctx, tx, r1.ID); err != nil || got.Rating != 4 {
		t.Fatalf("GetByID after Update: err=%v rating=%d", err, got.Rating)
	}

	if err := repo.Delete(ctx, tx, r1.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.GetByID(ctx, tx, r1.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("GetByID after Delete: want ErrRecordNotFound, got %v", err)
	}
}

package learning

import (
	"context"
	"errors"
	"testing"

	"gorm.io/gorm"

	"github.com/genasnewdar/lever-stg/internal/data/repos/testutil"
)

func TestCourseRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	repo := NewCourseRepo(db, testutil.Logger(t))

	u := testutil.SeedUser(t, ctx, tx, "courserepo")
	c := testutil.SeedCourse(t, ctx, tx, u.Auth0ID)

	got, err := repo.GetByID(ctx, tx, c.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Title != c.Title {
		t.Fatalf("GetByID title: got %q want %q", got.Title, c.Title)
	}

	rows, total, err := repo.Catalog(ctx, tx, CatalogFilter{Category: c.Category, Page: 1, PageSize: 10})
	if err != nil || total != 1 || len(rows) != 1 {
		t.Fatalf("Catalog: err=%v total=%d len=%d", err, total, len(rows))
	}

	// Unpublished rows stay out of the catalog but show up for admins.
	if err := repo.SetPublished(ctx, tx, c.ID, false); err != nil {
		t.Fatalf("SetPublished: %v", err)
	}
	if _, total, err := repo.Catalog(ctx, tx, CatalogFilter{Page: 1, PageSize: 10}); err != nil || total != 0 {
		t.Fatalf("Catalog after unpublish: err=%v total=%d", err, total)
	}
	if _, total, err := repo.AdminList(ctx, tx, AdminCourseFilter{Page: 1, PageSize: 10}); err != nil || total != 1 {
		t.Fatalf("AdminList: err=%v total=%d", err, total)
	}
	if err := repo.SetPublished(ctx, tx, c.ID, true); err != nil {
		t.Fatalf("SetPublished back: %v", err)
	}

	if err := repo.IncrementEnrollmentCount(ctx, tx, c.ID, 1); err != nil {
		t.Fatalf("IncrementEnrollmentCount: %v", err)
	}
	if err := repo.SetRating(ctx, tx, c.ID, 4.5, 2); err != nil {
		t.Fatalf("SetRating: %v", err)
	}
	got, err = repo.GetByID(ctx, tx, c.ID)
	if err != nil {
		t.Fatalf("GetByID after counters: %v", err)
	}
	if got.EnrollmentCount != 1 || got.Rating != 4.5 || got.RatingCount != 2 {
		t.Fatalf("counters: enrollment=%d rating=%v count=%d", got.EnrollmentCount, got.Rating, got.RatingCount)
	}

	cats, err := repo.Categories(ctx, tx)
	if err != nil || len(cats) != 1 || cats[0].Category != c.Category {
		t.Fatalf("Categories: err=%v cats=%+v", err, cats)
	}

	if rows, err := repo.Trending(ctx, tx, 5); err != nil || len(rows) != 1 {
		t.Fatalf("Trending: err=%v len=%d", err, len(rows))
	}

	stats, err := repo.Stats(ctx, tx)
	if err != nil || stats.TotalCourses != 1 {
		t.Fatalf("Stats: err=%v stats=%+v", err, stats)
	}

	if err := repo.Delete(ctx, tx, c.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.GetByID(ctx, tx, c.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("GetByID after Delete: want ErrRecordNotFound, got %v", err)
	}
}

func TestCourseRepoFeatured(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	repo := NewCourseRepo(db, testutil.Logger(t))

	u := testutil.SeedUser(t, ctx, tx, "featuredrepo")
	plain := testutil.SeedCourse(t, ctx, tx, u.Auth0ID)
	starred := testutil.SeedCourse(t, ctx, tx, u.Auth0ID)
	starred.IsFeatured = true
	if err := repo.Update(ctx, tx, starred); err != nil {
		t.Fatalf("Update: %v", err)
	}

	rows, err := repo.Featured(ctx, tx, 5)
	if err != nil || len(rows) != 1 {
		t.Fatalf("Featured: err=%v len=%d", err, len(rows))
	}
	if rows[0].ID != starred.ID || rows[0].ID == plain.ID {
		t.Fatalf("Featured: got %v want %v", rows[0].ID, starred.ID)
	}
}

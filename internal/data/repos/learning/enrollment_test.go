package learning

import (
	"context"
	"testing"
	"time"

	"github.com/genasnewdar/lever-stg/internal/data/repos/testutil"
	"github.com/genasnewdar/lever-stg/internal/types"
)

func TestEnrollmentRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	repo := NewEnrollmentRepo(db, testutil.Logger(t))

	u := testutil.SeedUser(t, ctx, tx, "enrollrepo")
	c := testutil.SeedCourse(t, ctx, tx, u.Auth0ID)
	e := testutil.SeedEnrollment(t, ctx, tx, u.Auth0ID, c.ID)

	got, err := repo.GetByUserAndCourse(ctx, tx, u.Auth0ID, c.ID)
	if err != nil || got.ID != e.ID {
		t.Fatalf("GetByUserAndCourse: err=%v got=%+v", err, got)
	}

	if rows, err := repo.ListByUser(ctx, tx, u.Auth0ID); err != nil || len(rows) != 1 {
		t.Fatalf("ListByUser: err=%v len=%d", err, len(rows))
	}

	active := types.EnrollmentActive
	if n, err := repo.CountByCourse(ctx, tx, c.ID, &active); err != nil || n != 1 {
		t.Fatalf("CountByCourse active: err=%v n=%d", err, n)
	}

	counts, err := repo.CountByUsers(ctx, tx, []string{u.Auth0ID})
	if err != nil || counts[u.Auth0ID] != 1 {
		t.Fatalf("CountByUsers: err=%v counts=%v", err, counts)
	}

	if n, err := repo.CountRecentByCourse(ctx, tx, c.ID, time.Now().Add(-time.Hour)); err != nil || n != 1 {
		t.Fatalf("CountRecentByCourse: err=%v n=%d", err, n)
	}

	if err := repo.TouchLastAccessed(ctx, tx, u.Auth0ID, c.ID); err != nil {
		t.Fatalf("TouchLastAccessed: %v", err)
	}
	got, err = repo.GetByID(ctx, tx, e.ID)
	if err != nil || got.LastAccessedAt == nil {
		t.Fatalf("after TouchLastAccessed: err=%v last_accessed=%v", err, got.LastAccessedAt)
	}

	// Reaching 100 percent flips the status and stamps completion.
	if err := repo.SyncProgress(ctx, tx, u.Auth0ID, c.ID, 100); err != nil {
		t.Fatalf("SyncProgress: %v", err)
	}
	got, err = repo.GetByID(ctx, tx, e.ID)
	if err != nil {
		t.Fatalf("GetByID after SyncProgress: %v", err)
	}
	if got.Status != types.EnrollmentCompleted || got.CompletedAt == nil || got.ProgressPercentage != 100 {
		t.Fatalf("after SyncProgress: status=%s completed_at=%v pct=%v", got.Status, got.CompletedAt, got.ProgressPercentage)
	}

	if err := repo.UpdateStatus(ctx, tx, e.ID, types.EnrollmentDropped); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	rows, total, err := repo.ListByCourse(ctx, tx, c.ID, &active, 1, 10)
	if err != nil || total != 0 || len(rows) != 0 {
		t.Fatalf("ListByCourse active after drop: err=%v total=%d len=%d", err, total, len(rows))
	}
}

package ielts

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

func TestAttemptRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	repo := NewAttemptRepo(db, testutil.Logger(t))

	u := testutil.SeedUser(t, ctx, tx, "ieltsattemptrepo")
	test := testutil.SeedIeltsTest(t, ctx, tx)

	started := time.Now().UTC()
	expires := started.Add(-time.Minute)
	a, err := repo.Create(ctx, tx, &types.IeltsTestAttempt{
		ID:          uuid.New(),
		UserID:      u.Auth0ID,
		IeltsTestID: test.ID,
		Status:      types.IeltsAttemptInProgress,
		StartedAt:   &started,
		ExpiresAt:   &expires,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if got, err := repo.GetActiveByUserAndTest(ctx, tx, u.Auth0ID, test.ID); err != nil || got.ID != a.ID {
		t.Fatalf("GetActiveByUserAndTest: err=%v", err)
	}

	// Module completions keep the attempt active for resume.
	module := types.IeltsModuleListening
	if err := repo.UpdateFields(ctx, tx, a.ID, map[string]interface{}{
		"status":          types.IeltsAttemptListeningCompleted,
		"current_module":  module,
		"listening_score": 1,
		"listening_band":  9.0,
	}); err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}
	got, err := repo.GetByID(ctx, tx, a.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Status != types.IeltsAttemptListeningCompleted || got.ListeningBand == nil || *got.ListeningBand != 9.0 {
		t.Fatalf("after UpdateFields: status=%s band=%v", got.Status, got.ListeningBand)
	}
	if _, err := repo.GetActiveByUserAndTest(ctx, tx, u.Auth0ID, test.ID); err != nil {
		t.Fatalf("GetActiveByUserAndTest mid-test: %v", err)
	}

	if rows, err := repo.ListExpiredBefore(ctx, tx, time.Now()); err != nil || len(rows) != 1 {
		t.Fatalf("ListExpiredBefore: err=%v len=%d", err, len(rows))
	}

	got.Status = types.IeltsAttemptExpired
	if err := repo.Update(ctx, tx, got); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if _, err := repo.GetActiveByUserAndTest(ctx, tx, u.Auth0ID, test.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("GetActiveByUserAndTest after expire: want ErrRecordNotFound, got %v", err)
	}
	if rows, err := repo.ListExpiredBefore(ctx, tx, time.Now()); err != nil || len(rows) != 0 {
		t.Fatalf("ListExpiredBefore after expire: err=%v len=%d", err, len(rows))
	}

	if rows, err := repo.ListByUser(ctx, tx, u.Auth0ID); err != nil || len(rows) != 1 {
		t.Fatalf("ListByUser: err=%v len=%d", err, len(rows))
	}
}

package assessment

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

	u := testutil.SeedUser(t, ctx, tx, "attemptrepo")
	test := testutil.SeedTest(t, ctx, tx)

	due := time.Now().UTC().Add(time.Duration(test.Duration) * time.Minute)
	a, err := repo.Create(ctx, tx, &types.TestAttempt{
		ID:     uuid.New(),
		UserID: u.Auth0ID,
		TestID: test.ID,
		Status: types.TestAttemptInProgress,
		DueAt:  &due,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if got, err := repo.GetActiveByUserAndTest(ctx, tx, u.Auth0ID, test.ID); err != nil || got.ID != a.ID {
		t.Fatalf("GetActiveByUserAndTest: err=%v", err)
	}

	// The overdue scan only picks up running attempts past their deadline.
	if rows, err := repo.ListDueBefore(ctx, tx, time.Now()); err != nil || len(rows) != 0 {
		t.Fatalf("ListDueBefore before deadline: err=%v len=%d", err, len(rows))
	}
	if rows, err := repo.ListDueBefore(ctx, tx, due.Add(time.Minute)); err != nil || len(rows) != 1 {
		t.Fatalf("ListDueBefore past deadline: err=%v len=%d", err, len(rows))
	}

	now := time.Now().UTC()
	if err := repo.Finish(ctx, tx, a.ID, types.TestAttemptSubmitted, u.Auth0ID, &now); err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if _, err := repo.GetActiveByUserAndTest(ctx, tx, u.Auth0ID, test.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("GetActiveByUserAndTest after Finish: want ErrRecordNotFound, got %v", err)
	}
	if rows, err := repo.ListDueBefore(ctx, tx, due.Add(time.Minute)); err != nil || len(rows) != 0 {
		t.Fatalf("ListDueBefore after Finish: err=%v len=%d", err, len(rows))
	}

	if err := repo.SetScore(ctx, tx, a.ID, 87.5, types.TestAttemptGraded); err != nil {
		t.Fatalf("SetScore: %v", err)
	}
	got, err := repo.GetByID(ctx, tx, a.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Status != types.TestAttemptGraded || got.Score == nil || *got.Score != 87.5 {
		t.Fatalf("after SetScore: status=%s score=%v", got.Status, got.Score)
	}
	if got.FinishID != u.Auth0ID || got.SubmittedAt == nil {
		t.Fatalf("after Finish: finish_id=%q submitted_at=%v", got.FinishID, got.SubmittedAt)
	}

	if rows, total, err := repo.ListByUser(ctx, tx, u.Auth0ID, 1, 10); err != nil || total != 1 || len(rows) != 1 {
		t.Fatalf("ListByUser: err=%v total=%d len=%d", err, total, len(rows))
	}
}

func TestResponseRepoUpsert(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	repo := NewResponseRepo(db, testutil.Logger(t))
	attempts := NewAttemptRepo(db, testutil.Logger(t))

	u := testutil.SeedUser(t, ctx, tx, "responserepo")
	test := testutil.SeedTest(t, ctx, tx)
	a, err := attempts.Create(ctx, tx, &types.TestAttempt{
		ID:     uuid.New(),
		UserID: u.Auth0ID,
		TestID: test.ID,
		Status: types.TestAttemptInProgress,
	})
	if err != nil {
		t.Fatalf("attempt Create: %v", err)
	}
	question := test.Sections[0].Questions[0]

	first, err := repo.Upsert(ctx, tx, &types.Response{
		ID:             uuid.New(),
		AttemptID:      a.ID,
		QuestionID:     question.ID,
		SelectedOption: "wrong",
	})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	// A second answer to the same question replaces the first row.
	if _, err := repo.Upsert(ctx, tx, &types.Response{
		ID:             uuid.New(),
		AttemptID:      a.ID,
		QuestionID:     question.ID,
		SelectedOption: question.CorrectOptionID,
	}); err != nil {
		t.Fatalf("Upsert second: %v", err)
	}

	rows, err := repo.ListByAttempt(ctx, tx, a.ID)
	if err != nil || len(rows) != 1 {
		t.Fatalf("ListByAttempt: err=%v len=%d", err, len(rows))
	}
	if rows[0].ID != first.ID || rows[0].SelectedOption != question.CorrectOptionID {
		t.Fatalf("ListByAttempt: id=%v selected=%q", rows[0].ID, rows[0].SelectedOption)
	}

	correct := true
	if err := repo.UpdateGrading(ctx, tx, first.ID, &correct, 1); err != nil {
		t.Fatalf("UpdateGrading: %v", err)
	}
	rows, err = repo.ListByAttempt(ctx, tx, a.ID)
	if err != nil || len(rows) != 1 {
		t.Fatalf("ListByAttempt after grading: err=%v", err)
	}
	if rows[0].IsCorrect == nil || !*rows[0].IsCorrect || rows[0].PointsAwarded == nil || *rows[0].PointsAwarded != 1 {
		t.Fatalf("after UpdateGrading: %+v", rows[0])
	}
}

package learning

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/genasnewdar/lever-stg/internal/data/repos/testutil"
	"github.com/genasnewdar/lever-stg/internal/types"
)

func TestProgressRepos(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	log := testutil.Logger(t)
	courseRepo := NewCourseProgressRepo(db, log)
	moduleRepo := NewModuleProgressRepo(db, log)
	lessonRepo := NewLessonProgressRepo(db, log)

	u := testutil.SeedUser(t, ctx, tx, "progressrepo")
	c := testutil.SeedCourse(t, ctx, tx, u.Auth0ID)
	m := testutil.SeedModule(t, ctx, tx, c.ID, 1)
	l := testutil.SeedLesson(t, ctx, tx, m.ID, 1)

	cp, err := courseRepo.Create(ctx, tx, &types.CourseProgress{
		ID:       uuid.New(),
		UserID:   u.Auth0ID,
		CourseID: c.ID,
	})
	if err != nil {
		t.Fatalf("CourseProgress Create: %v", err)
	}
	mp, err := moduleRepo.Create(ctx, tx, &types.ModuleProgress{
		ID:               uuid.New(),
		CourseProgressID: cp.ID,
		ModuleID:         m.ID,
	})
	if err != nil {
		t.Fatalf("ModuleProgress Create: %v", err)
	}
	now := time.Now().UTC()
	lp, err := lessonRepo.Create(ctx, tx, &types.LessonProgress{
		ID:               uuid.New(),
		ModuleProgressID: mp.ID,
		LessonID:         l.ID,
		IsCompleted:      true,
		CompletedAt:      &now,
		TimeSpent:        300,
		WatchTime:        240,
	})
	if err != nil {
		t.Fatalf("LessonProgress Create: %v", err)
	}

	if got, err := courseRepo.GetByUserAndCourse(ctx, tx, u.Auth0ID, c.ID); err != nil || got.ID != cp.ID {
		t.Fatalf("GetByUserAndCourse: err=%v got=%+v", err, got)
	}

	tree, err := courseRepo.GetTree(ctx, tx, u.Auth0ID, c.ID)
	if err != nil {
		t.Fatalf("GetTree: %v", err)
	}
	if len(tree.Modules) != 1 || len(tree.Modules[0].Lessons) != 1 {
		t.Fatalf("GetTree shape: modules=%d", len(tree.Modules))
	}
	if tree.Modules[0].Lessons[0].ID != lp.ID {
		t.Fatalf("GetTree leaf: got %v want %v", tree.Modules[0].Lessons[0].ID, lp.ID)
	}

	if got, err := moduleRepo.GetByParentAndModule(ctx, tx, cp.ID, m.ID); err != nil || got.ID != mp.ID {
		t.Fatalf("GetByParentAndModule: err=%v", err)
	}

	completion, err := moduleRepo.CompletionByModules(ctx, tx, []uuid.UUID{m.ID})
	if err != nil {
		t.Fatalf("CompletionByModules: %v", err)
	}
	if c := completion[m.ID]; c.Total != 1 || c.Completed != 0 {
		t.Fatalf("CompletionByModules: %+v", c)
	}

	mp.IsCompleted = true
	mp.ProgressPercentage = 100
	if err := moduleRepo.Update(ctx, tx, mp); err != nil {
		t.Fatalf("ModuleProgress Update: %v", err)
	}
	completion, err = moduleRepo.CompletionByModules(ctx, tx, []uuid.UUID{m.ID})
	if err != nil {
		t.Fatalf("CompletionByModules after update: %v", err)
	}
	if c := completion[m.ID]; c.Completed != 1 {
		t.Fatalf("CompletionByModules after update: %+v", c)
	}

	recent, err := lessonRepo.RecentCompleted(ctx, tx, u.Auth0ID, time.Now().Add(-time.Hour), 10)
	if err != nil || len(recent) != 1 {
		t.Fatalf("RecentCompleted: err=%v len=%d", err, len(recent))
	}
	if recent[0].LessonID != l.ID || recent[0].CourseID != c.ID {
		t.Fatalf("RecentCompleted row: %+v", recent[0])
	}

	nowAccess := time.Now().UTC()
	cp.LastAccessedAt = &nowAccess
	if err := courseRepo.Update(ctx, tx, cp); err != nil {
		t.Fatalf("CourseProgress Update: %v", err)
	}
	since := time.Now().Add(-time.Minute)
	if rows, err := courseRepo.ListByUser(ctx, tx, u.Auth0ID, &since); err != nil || len(rows) != 1 {
		t.Fatalf("ListByUser accessedSince: err=%v len=%d", err, len(rows))
	}
}

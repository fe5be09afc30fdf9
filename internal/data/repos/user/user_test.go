package user

import (
	"context"
	"testing"

	"github.com/genasnewdar/lever-stg/internal/data/repos/testutil"
	"github.com/genasnewdar/lever-stg/internal/types"
)

func TestUserRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	repo := NewUserRepo(db, testutil.Logger(t))

	u := testutil.SeedUser(t, ctx, tx, "userrepo")
	other := testutil.SeedUser(t, ctx, tx, "userrepo2")

	got, err := repo.GetByAuth0ID(ctx, tx, u.Auth0ID)
	if err != nil || got.ID != u.ID {
		t.Fatalf("GetByAuth0ID: err=%v got=%+v", err, got)
	}

	if rows, err := repo.GetByAuth0IDs(ctx, tx, []string{u.Auth0ID, other.Auth0ID}); err != nil || len(rows) != 2 {
		t.Fatalf("GetByAuth0IDs: err=%v len=%d", err, len(rows))
	}

	if err := repo.UpdateProfile(ctx, tx, u.Auth0ID, map[string]interface{}{"full_name": "Renamed"}); err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if err := repo.IncrementLoginCount(ctx, tx, u.Auth0ID); err != nil {
		t.Fatalf("IncrementLoginCount: %v", err)
	}
	got, err = repo.GetByAuth0ID(ctx, tx, u.Auth0ID)
	if err != nil {
		t.Fatalf("GetByAuth0ID after updates: %v", err)
	}
	if got.FullName != "Renamed" || got.LoginCount != 1 {
		t.Fatalf("after updates: name=%q logins=%d", got.FullName, got.LoginCount)
	}

	rows, total, err := repo.List(ctx, tx, ListFilter{Search: "renamed", Page: 1, PageSize: 10})
	if err != nil || total != 1 || rows[0].Auth0ID != u.Auth0ID {
		t.Fatalf("List search: err=%v total=%d", err, total)
	}

	if err := repo.SetType(ctx, tx, u.Auth0ID, types.UserTypeAdmin); err != nil {
		t.Fatalf("SetType: %v", err)
	}
	if n, err := repo.SetTypeBulk(ctx, tx, []string{other.Auth0ID, "missing|id"}, types.UserTypeInstructor); err != nil || n != 1 {
		t.Fatalf("SetTypeBulk: err=%v n=%d", err, n)
	}

	stats, err := repo.CountByType(ctx, tx)
	if err != nil {
		t.Fatalf("CountByType: %v", err)
	}
	byType := map[types.UserType]int64{}
	for _, s := range stats {
		byType[s.Type] = s.Count
	}
	if byType[types.UserTypeAdmin] != 1 || byType[types.UserTypeInstructor] != 1 {
		t.Fatalf("CountByType: %v", byType)
	}
}

func TestSchoolRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	repo := NewSchoolRepo(db, testutil.Logger(t))

	school := &types.School{Name: "School 1"}
	if err := tx.WithContext(ctx).Create(school).Error; err != nil {
		t.Fatalf("seed school: %v", err)
	}
	class := &types.SchoolClass{SchoolID: school.ID, Name: "11a"}
	if err := tx.WithContext(ctx).Create(class).Error; err != nil {
		t.Fatalf("seed class: %v", err)
	}

	schools, err := repo.List(ctx, tx)
	if err != nil || len(schools) != 1 {
		t.Fatalf("List: err=%v len=%d", err, len(schools))
	}
	if len(schools[0].Classes) != 1 {
		t.Fatalf("List classes: %+v", schools[0].Classes)
	}

	if got, err := repo.GetClassByID(ctx, tx, class.ID); err != nil || got.SchoolID != school.ID {
		t.Fatalf("GetClassByID: err=%v got=%+v", err, got)
	}
}

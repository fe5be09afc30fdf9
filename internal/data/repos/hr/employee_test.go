package hr

import (
	"context"
	"errors"
	"testing"

	"gorm.io/gorm"

	"github.com/genasnewdar/lever-stg/internal/data/repos/testutil"
	"github.com/genasnewdar/lever-stg/internal/types"
)

func TestEmployeeRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	repo := NewEmployeeRepo(db, testutil.Logger(t))

	e := testutil.SeedEmployee(t, ctx, tx, "employeerepo")

	if got, err := repo.GetByID(ctx, tx, e.ID); err != nil || got.Email != e.Email {
		t.Fatalf("GetByID: err=%v got=%+v", err, got)
	}
	if got, err := repo.GetByAuth0ID(ctx, tx, e.Auth0ID); err != nil || got.ID != e.ID {
		t.Fatalf("GetByAuth0ID: err=%v", err)
	}
	if got, err := repo.GetByEmail(ctx, tx, e.Email); err != nil || got.ID != e.ID {
		t.Fatalf("GetByEmail: err=%v", err)
	}

	// Email fallback finds pre-provisioned rows before their first login.
	if got, err := repo.GetByAuth0IDOrEmail(ctx, tx, "unknown|sub", e.Email); err != nil || got.ID != e.ID {
		t.Fatalf("GetByAuth0IDOrEmail: err=%v", err)
	}
	if err := repo.Relink(ctx, tx, e.ID, "linked|sub"); err != nil {
		t.Fatalf("Relink: %v", err)
	}
	if got, err := repo.GetByAuth0ID(ctx, tx, "linked|sub"); err != nil || got.ID != e.ID {
		t.Fatalf("GetByAuth0ID after Relink: err=%v", err)
	}

	rows, total, err := repo.List(ctx, tx, EmployeeFilter{Search: "test employee", Page: 1, PageSize: 10})
	if err != nil || total != 1 || len(rows) != 1 {
		t.Fatalf("List search: err=%v total=%d len=%d", err, total, len(rows))
	}
	if _, total, err := repo.List(ctx, tx, EmployeeFilter{Types: []types.UserType{types.UserTypeStudent}, Page: 1, PageSize: 10}); err != nil || total != 0 {
		t.Fatalf("List type filter: err=%v total=%d", err, total)
	}

	e.Position = "Head of English"
	if err := repo.Update(ctx, tx, e); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got, err := repo.GetByID(ctx, tx, e.ID); err != nil || got.Position != "Head of English" {
		t.Fatalf("GetByID after Update: err=%v position=%q", err, got.Position)
	}

	if err := repo.SoftDelete(ctx, tx, e.ID); err != nil {
		t.Fatalf("SoftDelete: %v", err)
	}
	// GetByID still sees the row for admin inspection; identity lookups
	// and listings treat it as gone.
	if got, err := repo.GetByID(ctx, tx, e.ID); err != nil || !got.IsDeleted {
		t.Fatalf("GetByID after SoftDelete: err=%v deleted=%v", err, got.IsDeleted)
	}
	if _, err := repo.GetByAuth0ID(ctx, tx, "linked|sub"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("GetByAuth0ID after SoftDelete: want ErrRecordNotFound, got %v", err)
	}
	if _, total, err := repo.List(ctx, tx, EmployeeFilter{Page: 1, PageSize: 10}); err != nil || total != 0 {
		t.Fatalf("List after SoftDelete: err=%v total=%d", err, total)
	}
}

package hr

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

func TestAttendanceRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	repo := NewAttendanceRepo(db, testutil.Logger(t))

	e := testutil.SeedEmployee(t, ctx, tx, "attendancerepo")

	if _, err := repo.LastByEmployee(ctx, tx, e.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("LastByEmployee empty: want ErrRecordNotFound, got %v", err)
	}

	base := time.Now().UTC().Add(-2 * time.Hour)
	checkIn := &types.AttendanceEvent{
		ID:                 uuid.New(),
		EmployeeID:         e.ID,
		EventType:          types.AttendanceCheckIn,
		EventTime:          base,
		Latitude:           47.9162,
		Longitude:          106.9022,
		DistanceFromOffice: 4.2,
	}
	if _, err := repo.Create(ctx, tx, checkIn); err != nil {
		t.Fatalf("Create check-in: %v", err)
	}
	checkOut := &types.AttendanceEvent{
		ID:                 uuid.New(),
		EmployeeID:         e.ID,
		EventType:          types.AttendanceCheckOut,
		EventTime:          base.Add(time.Hour),
		Latitude:           47.9163,
		Longitude:          106.9023,
		DistanceFromOffice: 12.8,
	}
	if _, err := repo.Create(ctx, tx, checkOut); err != nil {
		t.Fatalf("Create check-out: %v", err)
	}

	last, err := repo.LastByEmployee(ctx, tx, e.ID)
	if err != nil {
		t.Fatalf("LastByEmployee: %v", err)
	}
	if last.ID != checkOut.ID || last.EventType != types.AttendanceCheckOut {
		t.Fatalf("LastByEmployee: got %v want %v", last.ID, checkOut.ID)
	}

	rows, total, err := repo.ListByEmployee(ctx, tx, e.ID, AttendanceFilter{Page: 1, PageSize: 10})
	if err != nil || total != 2 || len(rows) != 2 {
		t.Fatalf("ListByEmployee: err=%v total=%d len=%d", err, total, len(rows))
	}
	// Newest first.
	if rows[0].ID != checkOut.ID {
		t.Fatalf("ListByEmployee order: first=%v", rows[0].ID)
	}

	from := base.Add(30 * time.Minute)
	rows, total, err = repo.ListByEmployee(ctx, tx, e.ID, AttendanceFilter{From: &from, Page: 1, PageSize: 10})
	if err != nil || total != 1 || rows[0].ID != checkOut.ID {
		t.Fatalf("ListByEmployee from filter: err=%v total=%d", err, total)
	}

	to := base.Add(30 * time.Minute)
	rows, total, err = repo.ListByEmployee(ctx, tx, e.ID, AttendanceFilter{To: &to, Page: 1, PageSize: 10})
	if err != nil || total != 1 || rows[0].ID != checkIn.ID {
		t.Fatalf("ListByEmployee to filter: err=%v total=%d", err, total)
	}
}

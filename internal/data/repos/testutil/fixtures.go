package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/genasnewdar/lever-stg/internal/types"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, auth0ID string) *types.User {
	tb.Helper()
	email := fmt.Sprintf("%s@example.com", auth0ID)
	u := &types.User{
		ID:       uuid.New(),
		Auth0ID:  auth0ID,
		Email:    &email,
		FullName: "Test User",
		Type:     types.UserTypeStudent,
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedCourse(tb testing.TB, ctx context.Context, tx *gorm.DB, creatorAuth0ID string) *types.Course {
	tb.Helper()
	c := &types.Course{
		ID:          uuid.New(),
		Title:       "course",
		Category:    "language",
		IsPublished: true,
		CreatorID:   &creatorAuth0ID,
	}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed course: %v", err)
	}
	return c
}

func SeedModule(tb testing.TB, ctx context.Context, tx *gorm.DB, courseID uuid.UUID, order int) *types.Module {
	tb.Helper()
	m := &types.Module{
		ID:       uuid.New(),
		CourseID: courseID,
		Title:    "module",
		Order:    order,
	}
	if err := tx.WithContext(ctx).Create(m).Error; err != nil {
		tb.Fatalf("seed module: %v", err)
	}
	return m
}

func SeedLesson(tb testing.TB, ctx context.Context, tx *gorm.DB, moduleID uuid.UUID, order int) *types.Lesson {
	tb.Helper()
	l := &types.Lesson{
		ID:         uuid.New(),
		ModuleID:   moduleID,
		Title:      "lesson",
		Order:      order,
		LessonType: types.LessonTypeVideo,
	}
	if err := tx.WithContext(ctx).Create(l).Error; err != nil {
		tb.Fatalf("seed lesson: %v", err)
	}
	return l
}

func SeedEnrollment(tb testing.TB, ctx context.Context, tx *gorm.DB, userID string, courseID uuid.UUID) *types.Enrollment {
	tb.Helper()
	e := &types.Enrollment{
		ID:         uuid.New(),
		UserID:     userID,
		CourseID:   courseID,
		Status:     types.EnrollmentActive,
		EnrolledAt: time.Now().UTC(),
	}
	if err := tx.WithContext(ctx).Create(e).Error; err != nil {
		tb.Fatalf("seed enrollment: %v", err)
	}
	return e
}

// SeedTest creates a test with one section holding a two-option
// multiple choice question, the smallest gradable shape.
func SeedTest(tb testing.TB, ctx context.Context, tx *gorm.DB) *types.Test {
	tb.Helper()
	t := &types.Test{
		ID:       uuid.New(),
		Subject:  types.TestSubjectEnglish,
		Duration: 60,
		Title:    "test",
	}
	if err := tx.WithContext(ctx).Create(t).Error; err != nil {
		tb.Fatalf("seed test: %v", err)
	}

	section := &types.Section{
		ID:     uuid.New(),
		TestID: t.ID,
		Name:   "Section 1",
		Order:  1,
	}
	if err := tx.WithContext(ctx).Create(section).Error; err != nil {
		tb.Fatalf("seed section: %v", err)
	}

	correct := uuid.New()
	question := &types.Question{
		ID:              uuid.New(),
		SectionID:       &section.ID,
		QuestionNumber:  "1",
		Text:            "Pick A",
		Points:          1,
		Type:            types.QuestionTypeMultipleChoice,
		CorrectOptionID: correct.String(),
	}
	if err := tx.WithContext(ctx).Create(question).Error; err != nil {
		tb.Fatalf("seed question: %v", err)
	}

	options := []*types.Option{
		{ID: correct, QuestionID: question.ID, Label: "A", Text: "first", Order: 1, IsCorrect: true},
		{ID: uuid.New(), QuestionID: question.ID, Label: "B", Text: "second", Order: 2},
	}
	for _, o := range options {
		if err := tx.WithContext(ctx).Create(o).Error; err != nil {
			tb.Fatalf("seed option: %v", err)
		}
	}

	section.Questions = []types.Question{*question}
	t.Sections = []types.Section{*section}
	return t
}

// SeedIeltsTest creates an ACTIVE test with a one-question listening
// module and a one-passage reading module.
func SeedIeltsTest(tb testing.TB, ctx context.Context, tx *gorm.DB) *types.IeltsTest {
	tb.Helper()
	it := &types.IeltsTest{
		ID:       uuid.New(),
		Title:    "ielts test",
		TestType: types.IeltsTestAcademic,
		Status:   types.IeltsTestActive,
	}
	if err := tx.WithContext(ctx).Create(it).Error; err != nil {
		tb.Fatalf("seed ielts test: %v", err)
	}

	listening := &types.IeltsListeningTest{
		ID:          uuid.New(),
		IeltsTestID: it.ID,
		Duration:    30,
	}
	if err := tx.WithContext(ctx).Create(listening).Error; err != nil {
		tb.Fatalf("seed ielts listening test: %v", err)
	}
	section := &types.IeltsListeningSection{
		ID:              uuid.New(),
		ListeningTestID: listening.ID,
		SectionNumber:   1,
	}
	if err := tx.WithContext(ctx).Create(section).Error; err != nil {
		tb.Fatalf("seed ielts listening section: %v", err)
	}
	question := &types.IeltsListeningQuestion{
		ID:             uuid.New(),
		SectionID:      section.ID,
		QuestionNumber: 1,
		Text:           "What time does the library open?",
		QuestionType:   "FILL_BLANK",
		CorrectAnswer:  "nine",
		Points:         1,
	}
	if err := tx.WithContext(ctx).Create(question).Error; err != nil {
		tb.Fatalf("seed ielts listening question: %v", err)
	}

	reading := &types.IeltsReadingTest{
		ID:          uuid.New(),
		IeltsTestID: it.ID,
		Duration:    60,
	}
	if err := tx.WithContext(ctx).Create(reading).Error; err != nil {
		tb.Fatalf("seed ielts reading test: %v", err)
	}
	passage := &types.IeltsReadingPassage{
		ID:            uuid.New(),
		ReadingTestID: reading.ID,
		PassageNumber: 1,
		Content:       "passage text",
	}
	if err := tx.WithContext(ctx).Create(passage).Error; err != nil {
		tb.Fatalf("seed ielts reading passage: %v", err)
	}

	section.Questions = []types.IeltsListeningQuestion{*question}
	listening.Sections = []types.IeltsListeningSection{*section}
	reading.Passages = []types.IeltsReadingPassage{*passage}
	it.Listening = listening
	it.Reading = reading
	return it
}

func SeedEmployee(tb testing.TB, ctx context.Context, tx *gorm.DB, auth0ID string) *types.Employee {
	tb.Helper()
	e := &types.Employee{
		ID:       uuid.New(),
		Auth0ID:  auth0ID,
		Email:    fmt.Sprintf("%s@lever.mn", auth0ID),
		FullName: "Test Employee",
		Type:     types.UserTypeAdmin,
	}
	if err := tx.WithContext(ctx).Create(e).Error; err != nil {
		tb.Fatalf("seed employee: %v", err)
	}
	return e
}

func PtrUUID(v uuid.UUID) *uuid.UUID { return &v }

func PtrTime(v time.Time) *time.Time { return &v }

func PtrString(v string) *string { return &v }

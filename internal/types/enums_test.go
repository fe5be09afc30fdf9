package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnumValid(t *testing.T) {
	assert.True(t, UserTypeTeachingAssistant.Valid())
	assert.False(t, UserType("TEACHER").Valid())
	assert.False(t, UserType("student").Valid())

	assert.True(t, QuestionTypeMatching.Valid())
	assert.False(t, QuestionType("TRUE_FALSE").Valid())

	assert.True(t, EnrollmentSuspended.Valid())
	assert.False(t, EnrollmentStatus("").Valid())

	assert.True(t, AttendanceCheckOut.Valid())
	assert.False(t, AttendanceType("BREAK").Valid())

	assert.True(t, IeltsTestGeneralTraining.Valid())
	assert.False(t, IeltsTestType("GENERAL").Valid())

	assert.True(t, IeltsModuleSpeaking.Valid())
	assert.False(t, IeltsModule("VOCABULARY").Valid())

	assert.True(t, IeltsWritingTask2.Valid())
	assert.False(t, IeltsWritingTaskType("TASK_3").Valid())
}

func TestIeltsAttemptStatusActive(t *testing.T) {
	active := []IeltsAttemptStatus{
		IeltsAttemptNotStarted,
		IeltsAttemptInProgress,
		IeltsAttemptListeningCompleted,
		IeltsAttemptReadingCompleted,
		IeltsAttemptWritingCompleted,
	}
	for _, s := range active {
		assert.True(t, s.Active(), "status %s", s)
	}

	terminal := []IeltsAttemptStatus{
		IeltsAttemptFullyCompleted,
		IeltsAttemptGraded,
		IeltsAttemptPartiallyGraded,
		IeltsAttemptCancelled,
		IeltsAttemptExpired,
	}
	for _, s := range terminal {
		assert.False(t, s.Active(), "status %s", s)
	}
}

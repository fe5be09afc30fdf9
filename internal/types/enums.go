package types

// Enum values mirror the postgres enum types exactly. The Valid methods
// guard writes that arrive from request payloads before they reach the
// database.

type UserType string

const (
	UserTypeStudent           UserType = "STUDENT"
	UserTypeInstructor        UserType = "INSTRUCTOR"
	UserTypeAdmin             UserType = "ADMIN"
	UserTypeTeachingAssistant UserType = "TEACHING_ASSISTANT"
)

func (t UserType) Valid() bool {
	switch t {
	case UserTypeStudent, UserTypeInstructor, UserTypeAdmin, UserTypeTeachingAssistant:
		return true
	}
	return false
}

type TestSubject string

const (
	TestSubjectMath    TestSubject = "MATH"
	TestSubjectEnglish TestSubject = "ENGLISH"
)

func (s TestSubject) Valid() bool {
	return s == TestSubjectMath || s == TestSubjectEnglish
}

type QuestionType string

const (
	QuestionTypeMultipleChoice QuestionType = "MULTIPLE_CHOICE"
	QuestionTypeShortAnswer    QuestionType = "SHORT_ANSWER"
	QuestionTypeNumeric        QuestionType = "NUMERIC"
	QuestionTypeFormula        QuestionType = "FORMULA"
	QuestionTypeMatching       QuestionType = "MATCHING"
	QuestionTypeEssay          QuestionType = "ESSAY"
)

func (t QuestionType) Valid() bool {
	switch t {
	case QuestionTypeMultipleChoice, QuestionTypeShortAnswer, QuestionTypeNumeric,
		QuestionTypeFormula, QuestionTypeMatching, QuestionTypeEssay:
		return true
	}
	return false
}

type TestAttemptStatus string

const (
	TestAttemptInProgress       TestAttemptStatus = "IN_PROGRESS"
	TestAttemptSubmitted        TestAttemptStatus = "SUBMITTED"
	TestAttemptGraded           TestAttemptStatus = "GRADED"
	TestAttemptCanceledBySystem TestAttemptStatus = "CANCELED_BY_SYSTEM"
)

// AttemptFinisherSystem marks attempts closed by the platform rather
// than the test taker.
const AttemptFinisherSystem = "SYSTEM"

type EnrollmentStatus string

const (
	EnrollmentActive    EnrollmentStatus = "ACTIVE"
	EnrollmentCompleted EnrollmentStatus = "COMPLETED"
	EnrollmentDropped   EnrollmentStatus = "DROPPED"
	EnrollmentSuspended EnrollmentStatus = "SUSPENDED"
)

func (s EnrollmentStatus) Valid() bool {
	switch s {
	case EnrollmentActive, EnrollmentCompleted, EnrollmentDropped, EnrollmentSuspended:
		return true
	}
	return false
}

type LessonType string

const (
	LessonTypeVideo       LessonType = "VIDEO"
	LessonTypeText        LessonType = "TEXT"
	LessonTypeQuiz        LessonType = "QUIZ"
	LessonTypeAssignment  LessonType = "ASSIGNMENT"
	LessonTypeReading     LessonType = "READING"
	LessonTypeInteractive LessonType = "INTERACTIVE"
)

func (t LessonType) Valid() bool {
	switch t {
	case LessonTypeVideo, LessonTypeText, LessonTypeQuiz,
		LessonTypeAssignment, LessonTypeReading, LessonTypeInteractive:
		return true
	}
	return false
}

type DifficultyLevel string

const (
	DifficultyBeginner     DifficultyLevel = "BEGINNER"
	DifficultyIntermediate DifficultyLevel = "INTERMEDIATE"
	DifficultyAdvanced     DifficultyLevel = "ADVANCED"
	DifficultyExpert       DifficultyLevel = "EXPERT"
)

func (l DifficultyLevel) Valid() bool {
	switch l {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced, DifficultyExpert:
		return true
	}
	return false
}

type AttendanceType string

const (
	AttendanceCheckIn  AttendanceType = "CHECK_IN"
	AttendanceCheckOut AttendanceType = "CHECK_OUT"
)

func (t AttendanceType) Valid() bool {
	return t == AttendanceCheckIn || t == AttendanceCheckOut
}

type IeltsTestType string

const (
	IeltsTestAcademic        IeltsTestType = "ACADEMIC"
	IeltsTestGeneralTraining IeltsTestType = "GENERAL_TRAINING"
)

func (t IeltsTestType) Valid() bool {
	return t == IeltsTestAcademic || t == IeltsTestGeneralTraining
}

type IeltsTestStatus string

const (
	IeltsTestDraft    IeltsTestStatus = "DRAFT"
	IeltsTestActive   IeltsTestStatus = "ACTIVE"
	IeltsTestInactive IeltsTestStatus = "INACTIVE"
	IeltsTestArchived IeltsTestStatus = "ARCHIVED"
)

func (s IeltsTestStatus) Valid() bool {
	switch s {
	case IeltsTestDraft, IeltsTestActive, IeltsTestInactive, IeltsTestArchived:
		return true
	}
	return false
}

type IeltsModule string

const (
	IeltsModuleListening IeltsModule = "LISTENING"
	IeltsModuleReading   IeltsModule = "READING"
	IeltsModuleWriting   IeltsModule = "WRITING"
	IeltsModuleSpeaking  IeltsModule = "SPEAKING"
)

func (m IeltsModule) Valid() bool {
	switch m {
	case IeltsModuleListening, IeltsModuleReading, IeltsModuleWriting, IeltsModuleSpeaking:
		return true
	}
	return false
}

type IeltsAttemptStatus string

const (
	IeltsAttemptNotStarted         IeltsAttemptStatus = "NOT_STARTED"
	IeltsAttemptInProgress         IeltsAttemptStatus = "IN_PROGRESS"
	IeltsAttemptListeningCompleted IeltsAttemptStatus = "LISTENING_COMPLETED"
	IeltsAttemptReadingCompleted   IeltsAttemptStatus = "READING_COMPLETED"
	IeltsAttemptWritingCompleted   IeltsAttemptStatus = "WRITING_COMPLETED"
	IeltsAttemptFullyCompleted     IeltsAttemptStatus = "FULLY_COMPLETED"
	IeltsAttemptGraded             IeltsAttemptStatus = "GRADED"
	IeltsAttemptPartiallyGraded    IeltsAttemptStatus = "PARTIALLY_GRADED"
	IeltsAttemptCancelled          IeltsAttemptStatus = "CANCELLED"
	IeltsAttemptExpired            IeltsAttemptStatus = "EXPIRED"
)

// Active reports whether an attempt in this state blocks starting
// another attempt on the same test.
func (s IeltsAttemptStatus) Active() bool {
	switch s {
	case IeltsAttemptNotStarted, IeltsAttemptInProgress,
		IeltsAttemptListeningCompleted, IeltsAttemptReadingCompleted,
		IeltsAttemptWritingCompleted:
		return true
	}
	return false
}

type IeltsWritingTaskType string

const (
	IeltsWritingTask1 IeltsWritingTaskType = "TASK_1"
	IeltsWritingTask2 IeltsWritingTaskType = "TASK_2"
)

func (t IeltsWritingTaskType) Valid() bool {
	return t == IeltsWritingTask1 || t == IeltsWritingTask2
}

package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genasnewdar/lever-stg/internal/types"
)

func listeningTextQuestion(answer string) *types.IeltsListeningQuestion {
	return &types.IeltsListeningQuestion{
		ID:            uuid.New(),
		Text:          "What does the speaker order?",
		QuestionType:  "SHORT_ANSWER",
		CorrectAnswer: answer,
	}
}

func listeningChoiceQuestion() *types.IeltsListeningQuestion {
	return &types.IeltsListeningQuestion{
		ID:           uuid.New(),
		Text:         "Where does the conversation take place?",
		QuestionType: "MULTIPLE_CHOICE",
		Options: []types.IeltsListeningOption{
			{ID: uuid.New(), Label: "A", Text: "at a library"},
			{ID: uuid.New(), Label: "B", Text: "at a station", IsCorrect: true},
			{ID: uuid.New(), Label: "C", Text: "at a cafe"},
		},
	}
}

func TestListeningAnswerTextMatchIgnoresCaseAndSpace(t *testing.T) {
	question := listeningTextQuestion("a cup of coffee")

	correct := &types.IeltsListeningResponse{QuestionID: question.ID, AnswerText: "  A Cup Of Coffee "}
	wrong := &types.IeltsListeningResponse{QuestionID: question.ID, AnswerText: "a cup of tea"}

	assert.True(t, listeningAnswerCorrect(question, correct))
	assert.False(t, listeningAnswerCorrect(question, wrong))
}

func TestListeningAnswerBySelectedOption(t *testing.T) {
	question := listeningChoiceQuestion()

	chosen := question.Options[1].ID
	response := &types.IeltsListeningResponse{QuestionID: question.ID, SelectedOptionID: &chosen}
	assert.True(t, listeningAnswerCorrect(question, response))

	other := question.Options[0].ID
	response = &types.IeltsListeningResponse{QuestionID: question.ID, SelectedOptionID: &other}
	assert.False(t, listeningAnswerCorrect(question, response))
}

func TestListeningAnswerByOptionLabelOrText(t *testing.T) {
	question := listeningChoiceQuestion()

	byLabel := &types.IeltsListeningResponse{QuestionID: question.ID, AnswerText: "b"}
	byText := &types.IeltsListeningResponse{QuestionID: question.ID, AnswerText: "At A Station"}
	empty := &types.IeltsListeningResponse{QuestionID: question.ID}

	assert.True(t, listeningAnswerCorrect(question, byLabel))
	assert.True(t, listeningAnswerCorrect(question, byText))
	assert.False(t, listeningAnswerCorrect(question, empty))
}

func TestReadingAnswerMatching(t *testing.T) {
	question := &types.IeltsReadingQuestion{
		ID:            uuid.New(),
		QuestionType:  "TRUE_FALSE_NOT_GIVEN",
		CorrectAnswer: "NOT GIVEN",
	}

	response := &types.IeltsReadingResponse{QuestionID: question.ID, AnswerText: "not given"}
	assert.True(t, readingAnswerCorrect(question, response))

	response = &types.IeltsReadingResponse{QuestionID: question.ID, AnswerText: "false"}
	assert.False(t, readingAnswerCorrect(question, response))
}

func TestNextAttemptStageLadder(t *testing.T) {
	status, module, err := nextAttemptStage(types.IeltsAttemptNotStarted, types.IeltsModuleListening)
	require.NoError(t, err)
	assert.Equal(t, types.IeltsAttemptListeningCompleted, status)
	require.NotNil(t, module)
	assert.Equal(t, types.IeltsModuleReading, *module)

	status, module, err = nextAttemptStage(types.IeltsAttemptListeningCompleted, types.IeltsModuleReading)
	require.NoError(t, err)
	assert.Equal(t, types.IeltsAttemptReadingCompleted, status)
	require.NotNil(t, module)
	assert.Equal(t, types.IeltsModuleWriting, *module)

	status, module, err = nextAttemptStage(types.IeltsAttemptReadingCompleted, types.IeltsModuleWriting)
	require.NoError(t, err)
	assert.Equal(t, types.IeltsAttemptWritingCompleted, status)
	require.NotNil(t, module)
	assert.Equal(t, types.IeltsModuleSpeaking, *module)

	status, module, err = nextAttemptStage(types.IeltsAttemptWritingCompleted, types.IeltsModuleSpeaking)
	require.NoError(t, err)
	assert.Equal(t, types.IeltsAttemptFullyCompleted, status)
	assert.Nil(t, module)
}

func TestNextAttemptStageRejectsOutOfOrder(t *testing.T) {
	cases := []struct {
		name    string
		current types.IeltsAttemptStatus
		module  types.IeltsModule
	}{
		{"reading before listening", types.IeltsAttemptInProgress, types.IeltsModuleReading},
		{"speaking before writing", types.IeltsAttemptReadingCompleted, types.IeltsModuleSpeaking},
		{"listening twice", types.IeltsAttemptListeningCompleted, types.IeltsModuleListening},
		{"after fully completed", types.IeltsAttemptFullyCompleted, types.IeltsModuleSpeaking},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := nextAttemptStage(tc.current, tc.module)
			require.Error(t, err)
		})
	}
}

func TestEssayWordCount(t *testing.T) {
	provided := 187
	assert.Equal(t, 187, essayWordCount("short essay", &provided))

	zero := 0
	assert.Equal(t, 2, essayWordCount("short essay", &zero))
	assert.Equal(t, 5, essayWordCount("one  two\tthree\nfour five", nil))
	assert.Equal(t, 0, essayWordCount("   ", nil))
}

func TestExaminerBandWaitsForAllScores(t *testing.T) {
	first := 6.0
	second := 7.0

	assert.Nil(t, examinerBand(nil))
	assert.Nil(t, examinerBand([]*float64{&first, nil}))

	band := examinerBand([]*float64{&first, &second})
	require.NotNil(t, band)
	assert.Equal(t, 6.5, *band)
}

func TestOverallBandRoundsToNearestHalf(t *testing.T) {
	assert.Equal(t, 6.5, overallBand([]float64{6.5, 6.5}))
	assert.Equal(t, 6.5, overallBand([]float64{6.0, 6.5, 6.5, 7.0}))
	assert.Equal(t, 7.0, overallBand([]float64{6.5, 7.0, 7.0, 7.0}))
	assert.Equal(t, 6.5, overallBand([]float64{6.5, 6.0}))
	assert.Equal(t, 9.0, overallBand([]float64{9.0}))
}

func TestIeltsDurationMinutes(t *testing.T) {
	test := &types.IeltsTest{
		Listening: &types.IeltsListeningTest{Duration: 30},
		Reading:   &types.IeltsReadingTest{Duration: 60},
		Writing:   &types.IeltsWritingTest{Duration: 60},
		Speaking:  &types.IeltsSpeakingTest{Duration: 14},
	}
	assert.Equal(t, 164, ieltsDurationMinutes(test))

	partial := &types.IeltsTest{Listening: &types.IeltsListeningTest{Duration: 40}}
	assert.Equal(t, 40, ieltsDurationMinutes(partial))

	assert.Equal(t, defaultIeltsDurationMinutes, ieltsDurationMinutes(&types.IeltsTest{}))
}

func TestSanitizeIeltsTestStripsAnswerKey(t *testing.T) {
	test := &types.IeltsTest{
		Listening: &types.IeltsListeningTest{
			Sections: []types.IeltsListeningSection{{
				Questions: []types.IeltsListeningQuestion{{
					CorrectAnswer: "library card",
					Options: []types.IeltsListeningOption{
						{Label: "A", IsCorrect: true},
						{Label: "B"},
					},
				}},
			}},
		},
		Reading: &types.IeltsReadingTest{
			Passages: []types.IeltsReadingPassage{{
				Questions: []types.IeltsReadingQuestion{{
					CorrectAnswer: "TRUE",
					Options:       []types.IeltsReadingOption{{Label: "A", IsCorrect: true}},
				}},
			}},
		},
	}

	sanitizeIeltsTest(test)

	listening := test.Listening.Sections[0].Questions[0]
	assert.Empty(t, listening.CorrectAnswer)
	for _, option := range listening.Options {
		assert.False(t, option.IsCorrect)
	}

	reading := test.Reading.Passages[0].Questions[0]
	assert.Empty(t, reading.CorrectAnswer)
	assert.False(t, reading.Options[0].IsCorrect)
}

func TestConvertRawToBandBoundaries(t *testing.T) {
	cases := []struct {
		module types.IeltsModule
		raw    int
		band   float64
	}{
		{types.IeltsModuleListening, 40, 9.0},
		{types.IeltsModuleListening, 39, 9.0},
		{types.IeltsModuleListening, 38, 8.5},
		{types.IeltsModuleListening, 32, 7.5},
		{types.IeltsModuleListening, 31, 7.0},
		{types.IeltsModuleListening, 3, 2.0},
		{types.IeltsModuleListening, 2, 1.0},
		{types.IeltsModuleListening, 0, 1.0},
		{types.IeltsModuleReading, 33, 7.5},
		{types.IeltsModuleReading, 32, 7.0},
		{types.IeltsModuleReading, 19, 5.5},
		{types.IeltsModuleReading, 15, 5.0},
	}
	for _, tc := range cases {
		got := ConvertRawToBand(nil, tc.module, tc.raw)
		if got != tc.band {
			t.Fatalf("ConvertRawToBand(%s, %d) = %v, want %v", tc.module, tc.raw, got, tc.band)
		}
	}
}

func TestConvertRawToBandUnknownModule(t *testing.T) {
	// Writing and speaking have no raw-score table.
	assert.Equal(t, 1.0, ConvertRawToBand(nil, types.IeltsModuleWriting, 40))
}

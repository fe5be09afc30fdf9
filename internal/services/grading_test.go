package services

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/genasnewdar/lever-stg/internal/types"
)

func multipleChoiceQuestion(points int) *types.Question {
	correct := uuid.New()
	wrong := uuid.New()
	return &types.Question{
		ID:     uuid.New(),
		Text:   "Pick the synonym",
		Points: points,
		Type:   types.QuestionTypeMultipleChoice,
		Options: []types.Option{
			{ID: correct, Label: "A", Text: "first", Order: 1, IsCorrect: true},
			{ID: wrong, Label: "B", Text: "second", Order: 2},
		},
	}
}

func matchingQuestion() *types.Question {
	items := `{"left":["to provoke","rapid","constant"],"right":["quick","irritate","continuous"]}`
	mapping := `{"k0":"1","k1":"0","k2":"2"}`
	return &types.Question{
		ID:             uuid.New(),
		Text:           "Match the words",
		Points:         3,
		Type:           types.QuestionTypeMatching,
		MatchingItems:  datatypes.JSON(items),
		CorrectMapping: datatypes.JSON(mapping),
	}
}

func TestGradeMultipleChoiceCorrect(t *testing.T) {
	question := multipleChoiceQuestion(5)
	response := &types.Response{
		QuestionID:     question.ID,
		SelectedOption: question.Options[0].ID.String(),
	}

	graded := GradeQuestionResponse(question, response)
	require.NotNil(t, graded.IsCorrect)
	assert.True(t, *graded.IsCorrect)
	assert.Equal(t, 5.0, graded.PointsAwarded)
}

func TestGradeMultipleChoiceWrongOption(t *testing.T) {
	question := multipleChoiceQuestion(5)
	response := &types.Response{
		QuestionID:     question.ID,
		SelectedOption: question.Options[1].ID.String(),
	}

	graded := GradeQuestionResponse(question, response)
	require.NotNil(t, graded.IsCorrect)
	assert.False(t, *graded.IsCorrect)
	assert.Zero(t, graded.PointsAwarded)
}

func TestGradeMultipleChoiceFallsBackToStoredID(t *testing.T) {
	// No option carries the flag; the stored correct option id decides.
	correct := uuid.New()
	question := &types.Question{
		ID:              uuid.New(),
		Points:          2,
		Type:            types.QuestionTypeMultipleChoice,
		CorrectOptionID: correct.String(),
		Options: []types.Option{
			{ID: correct, Label: "A", Text: "first", Order: 1},
			{ID: uuid.New(), Label: "B", Text: "second", Order: 2},
		},
	}
	response := &types.Response{QuestionID: question.ID, SelectedOption: correct.String()}

	graded := GradeQuestionResponse(question, response)
	require.NotNil(t, graded.IsCorrect)
	assert.True(t, *graded.IsCorrect)
	assert.Equal(t, 2.0, graded.PointsAwarded)
}

func TestGradeMatchingAllPairs(t *testing.T) {
	question := matchingQuestion()
	answers := `{"to provoke":"irritate","rapid":"quick","constant":"continuous"}`
	response := &types.Response{
		QuestionID:     question.ID,
		AdditionalData: datatypes.JSON(answers),
	}

	graded := GradeQuestionResponse(question, response)
	require.NotNil(t, graded.IsCorrect)
	assert.True(t, *graded.IsCorrect)
	assert.Equal(t, 3.0, graded.PointsAwarded)
}

func TestGradeMatchingPartialCredit(t *testing.T) {
	question := matchingQuestion()
	// Two of three pairs wrong: points accrue per pair but the response
	// is not counted correct.
	answers := `{"to provoke":"irritate","rapid":"continuous","constant":"quick"}`
	response := &types.Response{
		QuestionID:     question.ID,
		AdditionalData: datatypes.JSON(answers),
	}

	graded := GradeQuestionResponse(question, response)
	require.NotNil(t, graded.IsCorrect)
	assert.False(t, *graded.IsCorrect)
	assert.Equal(t, 1.0, graded.PointsAwarded)
}

func TestGradeMatchingNumericMappingValues(t *testing.T) {
	question := matchingQuestion()
	question.CorrectMapping = datatypes.JSON(`{"k0":1,"k1":0,"k2":2}`)
	answers := `{"to provoke":"irritate","rapid":"quick","constant":"continuous"}`
	response := &types.Response{
		QuestionID:     question.ID,
		AdditionalData: datatypes.JSON(answers),
	}

	graded := GradeQuestionResponse(question, response)
	require.NotNil(t, graded.IsCorrect)
	assert.True(t, *graded.IsCorrect)
}

func TestGradeMatchingMalformedPayload(t *testing.T) {
	question := matchingQuestion()
	response := &types.Response{
		QuestionID:     question.ID,
		AdditionalData: datatypes.JSON(`["not","an","object"]`),
	}

	graded := GradeQuestionResponse(question, response)
	require.NotNil(t, graded.IsCorrect)
	assert.False(t, *graded.IsCorrect)
	assert.Zero(t, graded.PointsAwarded)
}

func TestGradeEssayNotAutoGraded(t *testing.T) {
	question := &types.Question{
		ID:     uuid.New(),
		Points: 10,
		Type:   types.QuestionTypeEssay,
	}
	response := &types.Response{QuestionID: question.ID}

	graded := GradeQuestionResponse(question, response)
	assert.Nil(t, graded.IsCorrect)
	assert.Zero(t, graded.PointsAwarded)
}

func TestMaxTestPointsCountsSectionAndTaskQuestions(t *testing.T) {
	test := &types.Test{
		Sections: []types.Section{
			{
				Questions: []types.Question{{Points: 2}, {Points: 3}},
				Tasks: []types.Task{
					{Questions: []types.Question{{Points: 5}}},
				},
			},
			{
				Questions: []types.Question{{Points: 1}},
			},
		},
	}

	assert.Equal(t, 11, MaxTestPoints(test))
	assert.Zero(t, MaxTestPoints(nil))
}

func TestBuildAttemptInsightsCoversUnanswered(t *testing.T) {
	mc := multipleChoiceQuestion(2)
	matching := matchingQuestion()
	test := &types.Test{
		Title: "Vocabulary drill",
		Sections: []types.Section{
			{
				Name:      "VOCABULARY",
				Questions: []types.Question{*mc},
				Tasks: []types.Task{
					{Questions: []types.Question{*matching}},
				},
			},
		},
	}

	awarded := 2.0
	correct := true
	score := 2.0
	attempt := &types.TestAttempt{
		ID:     uuid.New(),
		Status: types.TestAttemptGraded,
		Score:  &score,
		Responses: []types.Response{
			{
				ID:             uuid.New(),
				QuestionID:     mc.ID,
				SelectedOption: mc.Options[0].ID.String(),
				IsCorrect:      &correct,
				PointsAwarded:  &awarded,
			},
		},
	}

	insights := buildAttemptInsights(attempt, test, "Bat-Erdene")
	require.Len(t, insights.Sections, 1)

	section := insights.Sections[0]
	assert.Equal(t, "VOCABULARY", section.SectionName)
	assert.Equal(t, 2.0, section.SectionScore)
	require.Len(t, section.Questions, 2)

	answered := section.Questions[0]
	require.NotNil(t, answered.Response.ResponseID)
	assert.True(t, answered.Response.IsCorrect)
	assert.Equal(t, []string{"first"}, answered.CorrectAnswers.MultipleChoice)

	skipped := section.Questions[1]
	assert.Nil(t, skipped.Response.ResponseID)
	assert.False(t, skipped.Response.IsCorrect)
	assert.Zero(t, skipped.Response.PointsAwarded)
	require.NotNil(t, skipped.CorrectAnswers.Matching)

	assert.Equal(t, "Bat-Erdene", insights.StudentName)
	assert.Equal(t, 5, insights.MaximumScore)
	assert.Equal(t, 2.0, insights.Score)
}

func TestRound2(t *testing.T) {
	cases := map[float64]float64{
		66.666666: 66.67,
		0.005:     0.01,
		100:       100,
	}
	for in, want := range cases {
		if got := round2(in); got != want {
			t.Fatalf("round2(%v) = %v, want %v", in, got, want)
		}
	}
}

func TestSanitizeTestStripsAnswerKey(t *testing.T) {
	numeric := 4.2
	test := &types.Test{
		Sections: []types.Section{
			{
				Questions: []types.Question{
					{
						Type:                 types.QuestionTypeMultipleChoice,
						CorrectOptionID:      uuid.New().String(),
						CorrectNumericAnswer: &numeric,
						CorrectFormulaLatex:  `x^2`,
						CorrectMapping:       datatypes.JSON(`{"k0":"1"}`),
						MatchingItems:        datatypes.JSON(`{"left":["a"],"right":["b"]}`),
						Options: []types.Option{
							{Label: "A", IsCorrect: true},
						},
					},
				},
				Tasks: []types.Task{
					{
						Questions: []types.Question{
							{
								Type:           types.QuestionTypeMatching,
								CorrectMapping: datatypes.JSON(`{"k0":"0"}`),
							},
						},
					},
				},
			},
		},
	}

	sanitized := sanitizeTest(test)

	direct := sanitized.Sections[0].Questions[0]
	assert.Empty(t, direct.CorrectOptionID)
	assert.Nil(t, direct.CorrectNumericAnswer)
	assert.Empty(t, direct.CorrectFormulaLatex)
	assert.Nil(t, direct.CorrectMapping)
	assert.NotEmpty(t, direct.MatchingItems, "takers still need the item lists")
	assert.False(t, direct.Options[0].IsCorrect)

	nested := sanitized.Sections[0].Tasks[0].Questions[0]
	assert.Nil(t, nested.CorrectMapping)
}

func TestValidateSubmitInput(t *testing.T) {
	attemptID := uuid.New()
	questionID := uuid.New()

	cases := []struct {
		name    string
		input   *SubmitResponseInput
		wantErr bool
	}{
		{
			name: "multiple choice with option",
			input: &SubmitResponseInput{
				AttemptID:        attemptID,
				QuestionID:       questionID,
				QuestionType:     types.QuestionTypeMultipleChoice,
				SelectedOptionID: uuid.New().String(),
			},
		},
		{
			name: "matching with pair map",
			input: &SubmitResponseInput{
				AttemptID:      attemptID,
				QuestionID:     questionID,
				QuestionType:   types.QuestionTypeMatching,
				AdditionalData: datatypes.JSON(`{"a":"b"}`),
			},
		},
		{
			name: "multiple choice missing option",
			input: &SubmitResponseInput{
				AttemptID:    attemptID,
				QuestionID:   questionID,
				QuestionType: types.QuestionTypeMultipleChoice,
			},
			wantErr: true,
		},
		{
			name: "matching missing pair map",
			input: &SubmitResponseInput{
				AttemptID:    attemptID,
				QuestionID:   questionID,
				QuestionType: types.QuestionTypeMatching,
			},
			wantErr: true,
		},
		{
			name: "both payloads set",
			input: &SubmitResponseInput{
				AttemptID:        attemptID,
				QuestionID:       questionID,
				QuestionType:     types.QuestionTypeMultipleChoice,
				SelectedOptionID: uuid.New().String(),
				AdditionalData:   datatypes.JSON(`{"a":"b"}`),
			},
			wantErr: true,
		},
		{
			name: "essay not submittable",
			input: &SubmitResponseInput{
				AttemptID:    attemptID,
				QuestionID:   questionID,
				QuestionType: types.QuestionTypeEssay,
			},
			wantErr: true,
		},
		{name: "nil input", wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := validateSubmitInput(tc.input)
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNormalizePairValueFormats(t *testing.T) {
	cases := []struct {
		in   interface{}
		want string
	}{
		{" spaced ", "spaced"},
		{float64(3), "3"},
		{3.5, "3.5"},
		{true, "true"},
	}
	for _, tc := range cases {
		if got := normalizePairValue(tc.in); got != tc.want {
			t.Fatalf("normalizePairValue(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestGradeMatchingMappingKeyGaps(t *testing.T) {
	question := matchingQuestion()
	// Drop k1 from the key: that pair can never match, so full
	// correctness is unreachable.
	question.CorrectMapping = datatypes.JSON(`{"k0":"1","k2":"2"}`)
	answers := fmt.Sprintf(`{%q:%q,%q:%q,%q:%q}`,
		"to provoke", "irritate",
		"rapid", "quick",
		"constant", "continuous",
	)
	response := &types.Response{
		QuestionID:     question.ID,
		AdditionalData: datatypes.JSON(answers),
	}

	graded := GradeQuestionResponse(question, response)
	require.NotNil(t, graded.IsCorrect)
	assert.False(t, *graded.IsCorrect)
	assert.Equal(t, 2.0, graded.PointsAwarded)
}

package services

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/genasnewdar/lever-stg/internal/types"
)

// GradedResponse is the outcome of grading a single response.
// IsCorrect is nil for question types the grader does not score.
type GradedResponse struct {
	IsCorrect     *bool
	PointsAwarded float64
}

// GradeQuestionResponse grades one response against its question.
// MULTIPLE_CHOICE awards the question's points when the selected option
// id matches the option flagged correct (falling back to the stored
// correct option id when no option carries the flag). MATCHING pairs
// the submitted left-to-right answers against the key and awards one
// point per matched pair; the response counts as correct only when
// every pair matches. Other question types wait for manual review.
func GradeQuestionResponse(question *types.Question, response *types.Response) GradedResponse {
	if question == nil || response == nil {
		return GradedResponse{}
	}

	switch question.Type {
	case types.QuestionTypeMultipleChoice:
		correct := false
		selected := strings.TrimSpace(response.SelectedOption)
		if target := correctOptionID(question); target != "" && selected == target {
			correct = true
		}
		graded := GradedResponse{IsCorrect: &correct}
		if correct {
			graded.PointsAwarded = float64(question.Points)
		}
		return graded

	case types.QuestionTypeMatching:
		return gradeMatchingResponse(question, response)
	}

	return GradedResponse{}
}

func correctOptionID(question *types.Question) string {
	for _, option := range question.Options {
		if option.IsCorrect {
			return option.ID.String()
		}
	}
	return strings.TrimSpace(question.CorrectOptionID)
}

// matchingLists carries the two columns of a MATCHING question.
type matchingLists struct {
	Left  []string `json:"left"`
	Right []string `json:"right"`
}

// gradeMatchingResponse walks the left column in order. The key maps
// "k<i>" to an index into the right column; the student's payload maps
// left item text to the chosen right item text. Every agreeing pair is
// one point.
func gradeMatchingResponse(question *types.Question, response *types.Response) GradedResponse {
	incorrect := false

	var lists matchingLists
	if len(question.MatchingItems) == 0 || json.Unmarshal(question.MatchingItems, &lists) != nil {
		return GradedResponse{IsCorrect: &incorrect}
	}
	key := decodePairMap(question.CorrectMapping)
	answers := decodePairMap(response.AdditionalData)
	if len(key) == 0 || len(answers) == 0 {
		return GradedResponse{IsCorrect: &incorrect}
	}

	matched := 0
	for i, left := range lists.Left {
		rawIndex, ok := key[fmt.Sprintf("k%d", i)]
		if !ok {
			continue
		}
		rightIndex, err := strconv.Atoi(rawIndex)
		if err != nil || rightIndex < 0 || rightIndex >= len(lists.Right) {
			continue
		}
		if answers[left] == lists.Right[rightIndex] {
			matched++
		}
	}

	allMatched := matched == len(lists.Left)
	return GradedResponse{
		IsCorrect:     &allMatched,
		PointsAwarded: float64(matched),
	}
}

// decodePairMap reads a JSON object into normalized string values so
// numeric and string right-hand sides compare equal.
func decodePairMap(raw []byte) map[string]string {
	if len(raw) == 0 {
		return nil
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil
	}
	pairs := make(map[string]string, len(decoded))
	for key, value := range decoded {
		pairs[key] = normalizePairValue(value)
	}
	return pairs
}

func normalizePairValue(value interface{}) string {
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprintf("%g", v)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

// MaxTestPoints sums the points of every question under the test's
// sections, both direct questions and those nested under tasks.
func MaxTestPoints(test *types.Test) int {
	if test == nil {
		return 0
	}
	total := 0
	for _, section := range test.Sections {
		for _, question := range section.Questions {
			total += question.Points
		}
		for _, task := range section.Tasks {
			for _, question := range task.Questions {
				total += question.Points
			}
		}
	}
	return total
}

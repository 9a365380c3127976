package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/masoncl/review-reply/internal/domain"
)

// FindingsInput is the on-disk shape of a findings file: an optional
// summary plus the findings the reviewer wants raised.
type FindingsInput struct {
	Summary  string           `json:"summary,omitempty"`
	Findings []domain.Finding `json:"findings"`
}

func readFindingsFile(path string) (FindingsInput, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return FindingsInput{}, fmt.Errorf("read findings file: %w", err)
	}
	return parseFindings(raw)
}

func parseFindings(raw []byte) (FindingsInput, error) {
	var input FindingsInput
	if err := json.Unmarshal(raw, &input); err != nil {
		return FindingsInput{}, fmt.Errorf("parse findings file: %w", err)
	}

	for i, f := range input.Findings {
		if f.AnchorFunction == "" {
			return FindingsInput{}, fmt.Errorf("finding %d has no function", i)
		}
		if f.QuestionText == "" {
			return FindingsInput{}, fmt.Errorf("finding %d (%s) has no question", i, f.AnchorFunction)
		}
	}

	return input, nil
}

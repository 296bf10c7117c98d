package gemini

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/spigell/scholarship-matcher/internal/eligibility"
	"github.com/spigell/scholarship-matcher/internal/utils"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, system, message string) (string, error)
	Model() string
}

// Assessor asks Gemini for eligibility verdicts over a whole catalog.
type Assessor struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

//go:embed prompt.md
var systemPrompt string

const defaultMaxLogLength = 200

func NewAssessor(generator contentGenerator, logger *zap.Logger, maxLogLength int) *Assessor {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Assessor{
		generator: generator,
		logger:    logger,
		maxLogLen: maxLogLength,
	}
}

func (a *Assessor) Model() string {
	return a.generator.Model()
}

type scholarshipPayload struct {
	ID           string                   `json:"id"`
	Name         string                   `json:"name"`
	Requirements eligibility.Requirements `json:"requirements"`
}

// Assess returns the model verdicts merged with catalog data and sorted like
// engine results. Ids the model invents resolve to the Unknown placeholder.
func (a *Assessor) Assess(ctx context.Context, profile eligibility.StudentProfile, scholarships []eligibility.Scholarship) ([]eligibility.MatchResult, error) {
	if len(scholarships) == 0 {
		return []eligibility.MatchResult{}, nil
	}

	message, err := buildMessage(profile, scholarships)
	if err != nil {
		return nil, err
	}

	a.logger.Debug("gemini generate content request",
		zap.Int("scholarships", len(scholarships)),
		zap.Int("message_length", utf8.RuneCountInString(message)),
		zap.String("message_preview", utils.TruncateForLog(message, a.maxLogLen)),
	)

	raw, err := a.generator.GenerateContent(ctx, systemPrompt, message)
	if err != nil {
		return nil, err
	}

	a.logger.Debug("gemini generate content response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, a.maxLogLen)),
	)

	results, err := parseResponse(raw)
	if err != nil {
		return nil, err
	}

	resolved := eligibility.ResolveResults(results, scholarships)
	eligibility.SortResults(resolved)
	return resolved, nil
}

func buildMessage(profile eligibility.StudentProfile, scholarships []eligibility.Scholarship) (string, error) {
	profileJSON, err := json.MarshalIndent(profile, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal profile payload: %w", err)
	}

	payload := make([]scholarshipPayload, 0, len(scholarships))
	for _, s := range scholarships {
		payload = append(payload, scholarshipPayload{ID: s.ID, Name: s.Name, Requirements: s.Requirements})
	}
	catalogJSON, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal scholarships payload: %w", err)
	}

	return fmt.Sprintf("Student profile:\n%s\n\nScholarships:\n%s\n\nReturn the result for every scholarship provided.",
		profileJSON, catalogJSON), nil
}

func parseResponse(raw string) ([]eligibility.MatchResult, error) {
	cleaned := extractJSON(raw)

	var items []map[string]any
	if err := json.Unmarshal([]byte(cleaned), &items); err != nil {
		return nil, fmt.Errorf("parse gemini response: %w", err)
	}

	results := make([]eligibility.MatchResult, 0, len(items))
	var problems []error
	for i, item := range items {
		id := coerceString(item["scholarshipId"])
		if id == "" {
			problems = append(problems, fmt.Errorf("item %d has no scholarshipId", i))
			continue
		}

		status, err := eligibility.ParseStatus(coerceString(item["status"]))
		if err != nil {
			problems = append(problems, fmt.Errorf("item %d (%s): %w", i, id, err))
			continue
		}

		score := coerceFloat(item["matchScore"])
		if math.IsNaN(score) {
			score = 0
		}

		results = append(results, eligibility.MatchResult{
			ScholarshipID:       id,
			Status:              status,
			MatchScore:          int(math.Round(math.Min(math.Max(score, 0), 100))),
			Reason:              coerceString(item["reason"]),
			MissingRequirements: coerceStrings(item["missingRequirements"]),
		})
	}

	if len(results) == 0 && len(problems) > 0 {
		return nil, fmt.Errorf("parse gemini response: %w", errors.Join(problems...))
	}
	return results, nil
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}

func coerceFloat(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case int:
		return float64(val)
	case string:
		trimmed := strings.TrimSpace(val)
		if trimmed == "" {
			return math.NaN()
		}
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}

func coerceString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case fmt.Stringer:
		return strings.TrimSpace(val.String())
	default:
		if v == nil {
			return ""
		}
		bytes, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(bytes)
	}
}

func coerceStrings(v any) []string {
	out := []string{}
	switch val := v.(type) {
	case []any:
		for _, item := range val {
			if s := coerceString(item); s != "" {
				out = append(out, s)
			}
		}
	case string:
		if s := strings.TrimSpace(val); s != "" {
			out = append(out, s)
		}
	}
	return out
}

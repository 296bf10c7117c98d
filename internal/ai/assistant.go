package ai

import (
	"context"

	"github.com/spigell/scholarship-matcher/internal/eligibility"
)

// ProviderGemini is the only supported model provider.
const ProviderGemini = "gemini"

// Assessor produces eligibility verdicts with a language model. Its output is
// advisory and is compared against the deterministic engine, never used in
// place of it.
type Assessor interface {
	Assess(ctx context.Context, profile eligibility.StudentProfile, scholarships []eligibility.Scholarship) ([]eligibility.MatchResult, error)
	Model() string
}

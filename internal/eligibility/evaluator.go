package eligibility

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// DefaultGPATolerance is the width of the soft band below a minimum GPA.
const DefaultGPATolerance = 0.2

// gpaEpsilon absorbs float noise at the edge of the tolerance band, so that
// 3.3 against a 3.5 minimum stays inside it.
const gpaEpsilon = 1e-9

// ErrInvalidRequirements marks a catalog entry whose requirements cannot be evaluated.
var ErrInvalidRequirements = errors.New("invalid requirements")

// Criterion is one independently evaluable eligibility dimension.
type Criterion string

const (
	CriterionGPA           Criterion = "gpa"
	CriterionLevel         Criterion = "level"
	CriterionMajor         Criterion = "major"
	CriterionFinancialNeed Criterion = "financial_need"
	CriterionDemographics  Criterion = "demographics"
	CriterionRegion        Criterion = "region"
)

// Criteria lists every criterion in evaluation order.
func Criteria() []Criterion {
	return []Criterion{
		CriterionGPA, CriterionLevel, CriterionMajor,
		CriterionFinancialNeed, CriterionDemographics, CriterionRegion,
	}
}

// Outcome is the per-criterion verdict.
type Outcome int

const (
	Met Outcome = iota
	SoftMiss
	HardMiss
)

func (o Outcome) String() string {
	switch o {
	case Met:
		return "met"
	case SoftMiss:
		return "soft-miss"
	case HardMiss:
		return "hard-miss"
	default:
		return "unknown"
	}
}

// Verdict is the result of checking one applicable criterion.
type Verdict struct {
	Criterion Criterion
	Outcome   Outcome
	// Missing is the human-readable unmet requirement; empty when met.
	Missing string
	// Explanation is a short clause used to build the reason text.
	Explanation string
}

// Evaluator applies the per-criterion rules. It holds only read-only data and
// is safe for concurrent use.
type Evaluator struct {
	vocab        *vocabularyIndex
	gpaTolerance float64
}

// NewEvaluator builds an evaluator over the given vocabulary. A non-positive
// tolerance falls back to DefaultGPATolerance.
func NewEvaluator(vocab Vocabulary, gpaTolerance float64) *Evaluator {
	if gpaTolerance <= 0 || math.IsNaN(gpaTolerance) || math.IsInf(gpaTolerance, 0) {
		gpaTolerance = DefaultGPATolerance
	}
	return &Evaluator{
		vocab:        newVocabularyIndex(vocab),
		gpaTolerance: gpaTolerance,
	}
}

// Evaluate returns one verdict per applicable criterion, in Criteria() order.
// Requirements that are absent produce no verdict and never constrain.
func (e *Evaluator) Evaluate(p StudentProfile, r Requirements) ([]Verdict, error) {
	if err := validateRequirements(r); err != nil {
		return nil, err
	}

	verdicts := make([]Verdict, 0, 6)
	if r.MinGPA != nil {
		verdicts = append(verdicts, e.checkGPA(p.GPA, *r.MinGPA))
	}
	if len(r.Levels) > 0 {
		verdicts = append(verdicts, checkLevel(p.EducationLevel, r.Levels))
	}
	if len(nonBlank(r.Majors)) > 0 {
		verdicts = append(verdicts, e.checkMajor(p.Major, nonBlank(r.Majors)))
	}
	if r.FinancialNeedRequired {
		verdicts = append(verdicts, checkFinancialNeed(p.FinancialNeed))
	}
	if len(nonBlank(r.Demographics)) > 0 {
		verdicts = append(verdicts, e.checkDemographics(p.Gender, nonBlank(r.Demographics)))
	}
	if len(nonBlank(r.Regions)) > 0 {
		verdicts = append(verdicts, e.checkRegion(p.Region, nonBlank(r.Regions)))
	}

	return verdicts, nil
}

func validateRequirements(r Requirements) error {
	if r.invalid != "" {
		return fmt.Errorf("%w: %s", ErrInvalidRequirements, r.invalid)
	}
	if r.MinGPA != nil {
		required := *r.MinGPA
		if math.IsNaN(required) || math.IsInf(required, 0) || required < 0 {
			return fmt.Errorf("%w: minimum gpa %v is out of domain", ErrInvalidRequirements, required)
		}
	}
	for _, level := range r.Levels {
		if !level.Valid() {
			return fmt.Errorf("%w: unknown education level %q", ErrInvalidRequirements, level)
		}
	}
	return nil
}

func (e *Evaluator) checkGPA(gpa, required float64) Verdict {
	v := Verdict{Criterion: CriterionGPA}
	switch {
	case gpa >= required:
		v.Outcome = Met
	case gpa >= required-e.gpaTolerance-gpaEpsilon:
		v.Outcome = SoftMiss
		v.Missing = fmt.Sprintf("GPA %s < required %s", formatGPA(gpa), formatGPA(required))
		v.Explanation = fmt.Sprintf("GPA %s is within %s of the required %s",
			formatGPA(gpa), formatGPA(e.gpaTolerance), formatGPA(required))
	default:
		v.Outcome = HardMiss
		v.Missing = fmt.Sprintf("GPA %s < required %s", formatGPA(gpa), formatGPA(required))
		v.Explanation = fmt.Sprintf("GPA %s is more than %s below the required %s",
			formatGPA(gpa), formatGPA(e.gpaTolerance), formatGPA(required))
	}
	return v
}

func checkLevel(level EducationLevel, accepted []EducationLevel) Verdict {
	v := Verdict{Criterion: CriterionLevel}
	for _, l := range accepted {
		if l == level {
			return v
		}
	}

	labels := make([]string, 0, len(accepted))
	for _, l := range accepted {
		labels = append(labels, string(l))
	}
	v.Outcome = HardMiss
	v.Missing = fmt.Sprintf("Wrong education level: %s (accepted: %s)", level, strings.Join(labels, ", "))
	v.Explanation = fmt.Sprintf("education level %s is not accepted", level)
	return v
}

func (e *Evaluator) checkMajor(major string, accepted []string) Verdict {
	v := Verdict{Criterion: CriterionMajor}
	shown := strings.TrimSpace(major)
	if shown == "" {
		shown = "none"
	}

	switch e.vocab.relateMajor(major, accepted) {
	case majorExact:
		v.Outcome = Met
	case majorAdjacent:
		v.Outcome = SoftMiss
		v.Missing = fmt.Sprintf("Major adjacent but not exact: %s vs required %s", shown, strings.Join(accepted, "/"))
		v.Explanation = fmt.Sprintf("major %s is adjacent to, but not one of, the required fields", shown)
	default:
		v.Outcome = HardMiss
		v.Missing = fmt.Sprintf("Major not aligned: %s vs required %s", shown, strings.Join(accepted, "/"))
		v.Explanation = fmt.Sprintf("major %s is not aligned with the required fields", shown)
	}
	return v
}

func checkFinancialNeed(hasNeed bool) Verdict {
	v := Verdict{Criterion: CriterionFinancialNeed}
	if !hasNeed {
		v.Outcome = HardMiss
		v.Missing = "Financial need required"
		v.Explanation = "demonstrated financial need is required"
	}
	return v
}

func (e *Evaluator) checkDemographics(gender string, accepted []string) Verdict {
	v := Verdict{Criterion: CriterionDemographics}
	switch {
	case e.vocab.isUnspecified(gender):
		v.Outcome = SoftMiss
		v.Missing = fmt.Sprintf("Demographic not specified (eligible: %s)", strings.Join(accepted, ", "))
		v.Explanation = "the award is restricted by demographic and none was provided"
	case e.vocab.matchDemographic(gender, accepted):
		v.Outcome = Met
	default:
		v.Outcome = HardMiss
		v.Missing = "Excluded demographic"
		v.Explanation = fmt.Sprintf("demographic %s is not among the eligible groups", strings.TrimSpace(gender))
	}
	return v
}

func (e *Evaluator) checkRegion(region string, accepted []string) Verdict {
	v := Verdict{Criterion: CriterionRegion}
	switch {
	case strings.TrimSpace(region) == "":
		v.Outcome = SoftMiss
		v.Missing = fmt.Sprintf("Region not specified (eligible: %s)", strings.Join(accepted, ", "))
		v.Explanation = "the award is regional and no region was provided"
	case e.vocab.matchRegion(region, accepted):
		v.Outcome = Met
	default:
		v.Outcome = HardMiss
		v.Missing = "Outside eligible region"
		v.Explanation = fmt.Sprintf("region %s is outside the eligible regions", strings.TrimSpace(region))
	}
	return v
}

func nonBlank(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			out = append(out, strings.TrimSpace(v))
		}
	}
	return out
}

func formatGPA(v float64) string {
	if v == math.Trunc(v) {
		return strconv.FormatFloat(v, 'f', 1, 64)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

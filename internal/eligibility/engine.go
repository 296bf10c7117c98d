package eligibility

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"
	"slices"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	ErrNilProfile     = errors.New("student profile is required")
	ErrInvalidProfile = errors.New("invalid student profile")
)

// UnknownPlaceholder fills name and organization of results whose
// scholarship id is not in the catalog.
const UnknownPlaceholder = "Unknown"

// Options configure an Engine. Zero values select the defaults.
type Options struct {
	Vocabulary   Vocabulary
	Penalties    Penalties
	GPATolerance float64
	// Concurrency bounds parallel evaluations; <= 0 means GOMAXPROCS.
	Concurrency int
	Logger      *zap.Logger
}

// Engine evaluates a student profile against a catalog. It keeps no state
// between calls and may be shared across goroutines.
type Engine struct {
	evaluator   *Evaluator
	penalties   Penalties
	concurrency int
	logger      *zap.Logger
}

func NewEngine(opts Options) *Engine {
	vocab := opts.Vocabulary
	if vocab.isZero() {
		vocab = DefaultVocabulary()
	}

	penalties := opts.Penalties
	if penalties == (Penalties{}) {
		penalties = DefaultPenalties()
	}

	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = runtime.GOMAXPROCS(0)
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Engine{
		evaluator:   NewEvaluator(vocab, opts.GPATolerance),
		penalties:   penalties,
		concurrency: concurrency,
		logger:      logger,
	}
}

func (v Vocabulary) isZero() bool {
	return len(v.MajorClusters) == 0 && len(v.MajorAliases) == 0 &&
		len(v.DemographicAliases) == 0 && len(v.Unspecified) == 0 &&
		len(v.RegionAliases) == 0 && len(v.RegionParents) == 0
}

// WithLogger returns a copy of the engine logging to logger.
func (e *Engine) WithLogger(logger *zap.Logger) *Engine {
	if logger == nil {
		return e
	}
	clone := *e
	clone.logger = logger
	return &clone
}

// Diagnostic describes a catalog entry that was skipped or could not be evaluated.
type Diagnostic struct {
	Index         int    `json:"index"`
	ScholarshipID string `json:"scholarshipId,omitempty"`
	Message       string `json:"message"`
}

// Pass is the full outcome of one evaluation pass.
type Pass struct {
	Results []MatchResult `json:"results"`
	// Skipped entries lack identity fields and have no result.
	Skipped []Diagnostic `json:"skipped,omitempty"`
	// Failed entries have a NONE result carrying a diagnostic reason.
	Failed []Diagnostic `json:"failed,omitempty"`
}

// EvaluateCatalog returns one result per well-formed catalog entry, sorted by
// status, then descending score, then catalog order. It fails only on
// batch-level problems and never returns partial results.
func (e *Engine) EvaluateCatalog(ctx context.Context, profile *StudentProfile, catalog []Scholarship) ([]MatchResult, error) {
	pass, err := e.Run(ctx, profile, catalog)
	if err != nil {
		return nil, err
	}
	return pass.Results, nil
}

// Run is EvaluateCatalog with diagnostics for skipped and failed entries.
func (e *Engine) Run(ctx context.Context, profile *StudentProfile, catalog []Scholarship) (*Pass, error) {
	if err := ValidateProfile(profile); err != nil {
		return nil, err
	}
	snapshot := *profile

	pass := &Pass{Results: []MatchResult{}}
	entries := make([]Scholarship, 0, len(catalog))
	positions := make([]int, 0, len(catalog))
	seen := make(map[string]struct{}, len(catalog))
	for i, s := range catalog {
		msg := ""
		switch {
		case strings.TrimSpace(s.ID) == "":
			msg = "missing scholarship id"
		case strings.TrimSpace(s.Name) == "":
			msg = "missing scholarship name"
		default:
			if _, dup := seen[s.ID]; dup {
				msg = "duplicate scholarship id"
			}
		}
		if msg != "" {
			pass.Skipped = append(pass.Skipped, Diagnostic{Index: i, ScholarshipID: s.ID, Message: msg})
			e.logger.Warn("skipping malformed catalog entry",
				zap.Int("index", i),
				zap.String("scholarship_id", s.ID),
				zap.String("reason", msg),
			)
			continue
		}
		seen[s.ID] = struct{}{}
		entries = append(entries, s)
		positions = append(positions, i)
	}

	results := make([]MatchResult, len(entries))
	failures := make([]string, len(entries))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for i := range entries {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i], failures[i] = e.evaluateOne(snapshot, entries[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("evaluate catalog: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("evaluate catalog: %w", err)
	}

	for i, failure := range failures {
		if failure == "" {
			continue
		}
		pass.Failed = append(pass.Failed, Diagnostic{Index: positions[i], ScholarshipID: entries[i].ID, Message: failure})
		e.logger.Warn("scholarship evaluation failed",
			zap.String("scholarship_id", entries[i].ID),
			zap.String("reason", failure),
		)
	}

	SortResults(results)
	pass.Results = results

	e.logger.Info("evaluation pass completed", summaryFields(pass)...)

	return pass, nil
}

// ValidateProfile rejects profiles the rules cannot evaluate. Finite GPAs
// outside [0, 4] are accepted and evaluated literally.
func ValidateProfile(profile *StudentProfile) error {
	if profile == nil {
		return ErrNilProfile
	}
	if math.IsNaN(profile.GPA) || math.IsInf(profile.GPA, 0) {
		return fmt.Errorf("%w: gpa must be a finite number", ErrInvalidProfile)
	}
	if !profile.EducationLevel.Valid() {
		return fmt.Errorf("%w: unknown education level %q", ErrInvalidProfile, profile.EducationLevel)
	}
	return nil
}

// EvaluateOne evaluates a single scholarship. Invalid requirements and panics
// produce a NONE result instead of an error.
func (e *Engine) EvaluateOne(profile StudentProfile, s Scholarship) MatchResult {
	result, _ := e.evaluateOne(profile, s)
	return result
}

func (e *Engine) evaluateOne(profile StudentProfile, s Scholarship) (result MatchResult, failure string) {
	defer func() {
		if r := recover(); r != nil {
			failure = fmt.Sprintf("evaluation panicked: %v", r)
			result = failedResult(s, failure)
		}
	}()

	verdicts, err := e.evaluator.Evaluate(profile, s.Requirements)
	if err != nil {
		return failedResult(s, err.Error()), err.Error()
	}

	assessment := Aggregate(verdicts, e.penalties)

	if ce := e.logger.Check(zap.DebugLevel, "scholarship evaluated"); ce != nil {
		fields := []zap.Field{
			zap.String("scholarship_id", s.ID),
			zap.String("status", string(assessment.Status)),
			zap.Int("score", assessment.Score),
		}
		for _, v := range verdicts {
			fields = append(fields, zap.String("criterion_"+string(v.Criterion), v.Outcome.String()))
		}
		ce.Write(fields...)
	}

	return MatchResult{
		ScholarshipID:       s.ID,
		ScholarshipName:     s.Name,
		Organization:        s.Organization,
		Amount:              s.Amount,
		Status:              assessment.Status,
		MatchScore:          assessment.Score,
		Reason:              assessment.Reason,
		MissingRequirements: assessment.MissingRequirements,
	}, ""
}

func failedResult(s Scholarship, diagnostic string) MatchResult {
	return MatchResult{
		ScholarshipID:       s.ID,
		ScholarshipName:     s.Name,
		Organization:        s.Organization,
		Amount:              s.Amount,
		Status:              StatusNone,
		MatchScore:          0,
		Reason:              fmt.Sprintf("Not eligible: requirements could not be evaluated (%s).", diagnostic),
		MissingRequirements: []string{"Requirements could not be evaluated"},
	}
}

// SortResults orders results by status rank, then descending score. The sort
// is stable, so equal results keep their input (catalog) order.
func SortResults(results []MatchResult) {
	slices.SortStableFunc(results, func(a, b MatchResult) int {
		if ra, rb := a.Status.Rank(), b.Status.Rank(); ra != rb {
			return ra - rb
		}
		return b.MatchScore - a.MatchScore
	})
}

// ResolveResults fills catalog data into results by scholarship id. Ids that
// are not in the catalog get UnknownPlaceholder and a zero amount.
func ResolveResults(results []MatchResult, catalog []Scholarship) []MatchResult {
	byID := make(map[string]Scholarship, len(catalog))
	for _, s := range catalog {
		if _, ok := byID[s.ID]; !ok {
			byID[s.ID] = s
		}
	}

	resolved := make([]MatchResult, len(results))
	for i, r := range results {
		if s, ok := byID[r.ScholarshipID]; ok {
			r.ScholarshipName = s.Name
			r.Organization = s.Organization
			r.Amount = s.Amount
		} else {
			r.ScholarshipName = UnknownPlaceholder
			r.Organization = UnknownPlaceholder
			r.Amount = 0
		}
		if r.MissingRequirements == nil {
			r.MissingRequirements = []string{}
		}
		resolved[i] = r
	}
	return resolved
}

func summaryFields(pass *Pass) []zap.Field {
	counts := map[Status]int{}
	for _, r := range pass.Results {
		counts[r.Status]++
	}
	return []zap.Field{
		zap.Int("results", len(pass.Results)),
		zap.Int("full", counts[StatusFull]),
		zap.Int("partial", counts[StatusPartial]),
		zap.Int("none", counts[StatusNone]),
		zap.Int("skipped", len(pass.Skipped)),
		zap.Int("failed", len(pass.Failed)),
	}
}

// Package audit compares deterministic engine verdicts with an advisory
// assessment produced by a language model.
package audit

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spigell/scholarship-matcher/internal/ai"
	"github.com/spigell/scholarship-matcher/internal/eligibility"
)

// Kind classifies a discrepancy.
type Kind string

const (
	KindStatus  Kind = "status"
	KindMissing Kind = "missing"
	KindUnknown Kind = "unknown"
)

// Discrepancy is one point where the model disagrees with the engine.
type Discrepancy struct {
	Kind          Kind               `json:"kind"`
	ScholarshipID string             `json:"scholarshipId"`
	Name          string             `json:"name"`
	EngineStatus  eligibility.Status `json:"engineStatus,omitempty"`
	ModelStatus   eligibility.Status `json:"modelStatus,omitempty"`
	ModelReason   string             `json:"modelReason,omitempty"`
}

func (d Discrepancy) String() string {
	switch d.Kind {
	case KindStatus:
		return fmt.Sprintf("%s: engine says %s, model says %s (%s)", d.ScholarshipID, d.EngineStatus, d.ModelStatus, d.ModelReason)
	case KindMissing:
		return fmt.Sprintf("%s: model returned no verdict", d.ScholarshipID)
	default:
		return fmt.Sprintf("%s: model returned a verdict for an unknown scholarship", d.ScholarshipID)
	}
}

// Report is the outcome of one comparison.
type Report struct {
	Model         string        `json:"model"`
	Compared      int           `json:"compared"`
	Agreed        int           `json:"agreed"`
	Discrepancies []Discrepancy `json:"discrepancies"`
}

// Agreement is the share of engine results the model agreed with, in [0,1].
func (r *Report) Agreement() float64 {
	if r.Compared == 0 {
		return 1
	}
	return float64(r.Agreed) / float64(r.Compared)
}

// Compare matches model results to engine results by scholarship id. Engine
// order is kept; unknown ids from the model are appended last.
func Compare(engine, model []eligibility.MatchResult) *Report {
	byID := make(map[string]eligibility.MatchResult, len(model))
	for _, r := range model {
		if _, ok := byID[r.ScholarshipID]; !ok {
			byID[r.ScholarshipID] = r
		}
	}

	report := &Report{Compared: len(engine), Discrepancies: []Discrepancy{}}
	known := make(map[string]struct{}, len(engine))
	for _, want := range engine {
		known[want.ScholarshipID] = struct{}{}

		got, ok := byID[want.ScholarshipID]
		switch {
		case !ok:
			report.Discrepancies = append(report.Discrepancies, Discrepancy{
				Kind:          KindMissing,
				ScholarshipID: want.ScholarshipID,
				Name:          want.ScholarshipName,
				EngineStatus:  want.Status,
			})
		case got.Status != want.Status:
			report.Discrepancies = append(report.Discrepancies, Discrepancy{
				Kind:          KindStatus,
				ScholarshipID: want.ScholarshipID,
				Name:          want.ScholarshipName,
				EngineStatus:  want.Status,
				ModelStatus:   got.Status,
				ModelReason:   got.Reason,
			})
		default:
			report.Agreed++
		}
	}

	for _, r := range model {
		if _, ok := known[r.ScholarshipID]; ok {
			continue
		}
		known[r.ScholarshipID] = struct{}{}
		report.Discrepancies = append(report.Discrepancies, Discrepancy{
			Kind:          KindUnknown,
			ScholarshipID: r.ScholarshipID,
			Name:          r.ScholarshipName,
			ModelStatus:   r.Status,
			ModelReason:   r.Reason,
		})
	}

	return report
}

// Auditor runs the engine and the model over the same catalog.
type Auditor struct {
	engine   *eligibility.Engine
	assessor ai.Assessor
	logger   *zap.Logger
}

func New(engine *eligibility.Engine, assessor ai.Assessor, logger *zap.Logger) *Auditor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Auditor{engine: engine, assessor: assessor, logger: logger}
}

// Run evaluates the catalog with both sides and compares them. The engine
// result is authoritative and is returned alongside the report.
func (a *Auditor) Run(ctx context.Context, profile *eligibility.StudentProfile, catalog []eligibility.Scholarship) ([]eligibility.MatchResult, *Report, error) {
	results, err := a.engine.EvaluateCatalog(ctx, profile, catalog)
	if err != nil {
		return nil, nil, err
	}

	modelResults, err := a.assessor.Assess(ctx, *profile, catalog)
	if err != nil {
		return results, nil, fmt.Errorf("model assessment: %w", err)
	}

	report := Compare(results, modelResults)
	report.Model = a.assessor.Model()

	a.logger.Info("audit completed",
		zap.String("model", report.Model),
		zap.Int("compared", report.Compared),
		zap.Int("agreed", report.Agreed),
		zap.Int("discrepancies", len(report.Discrepancies)),
	)
	for _, d := range report.Discrepancies {
		a.logger.Debug("audit discrepancy",
			zap.String("kind", string(d.Kind)),
			zap.String("scholarship_id", d.ScholarshipID),
			zap.String("engine_status", string(d.EngineStatus)),
			zap.String("model_status", string(d.ModelStatus)),
		)
	}

	return results, report, nil
}

package audit

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/scholarship-matcher/internal/eligibility"
)

func result(id string, status eligibility.Status) eligibility.MatchResult {
	return eligibility.MatchResult{ScholarshipID: id, ScholarshipName: "name-" + id, Status: status}
}

func TestCompare(t *testing.T) {
	engine := []eligibility.MatchResult{
		result("s1", eligibility.StatusFull),
		result("s2", eligibility.StatusPartial),
		result("s3", eligibility.StatusNone),
	}
	model := []eligibility.MatchResult{
		result("s9", eligibility.StatusFull),
		result("s1", eligibility.StatusFull),
		result("s2", eligibility.StatusNone),
	}

	report := Compare(engine, model)

	if report.Compared != 3 || report.Agreed != 1 {
		t.Fatalf("unexpected counts: %+v", report)
	}
	if len(report.Discrepancies) != 3 {
		t.Fatalf("expected 3 discrepancies, got %+v", report.Discrepancies)
	}

	expected := []struct {
		kind Kind
		id   string
	}{
		{KindStatus, "s2"},
		{KindMissing, "s3"},
		{KindUnknown, "s9"},
	}
	for i, want := range expected {
		got := report.Discrepancies[i]
		if got.Kind != want.kind || got.ScholarshipID != want.id {
			t.Fatalf("discrepancy %d: expected %s/%s, got %+v", i, want.kind, want.id, got)
		}
	}

	status := report.Discrepancies[0]
	if status.EngineStatus != eligibility.StatusPartial || status.ModelStatus != eligibility.StatusNone {
		t.Fatalf("unexpected status discrepancy: %+v", status)
	}
	if report.Agreement() < 0.33 || report.Agreement() > 0.34 {
		t.Fatalf("unexpected agreement %v", report.Agreement())
	}
}

func TestCompareEmpty(t *testing.T) {
	report := Compare(nil, nil)
	if report.Agreement() != 1 || report.Discrepancies == nil {
		t.Fatalf("unexpected empty report: %+v", report)
	}
}

type stubAssessor struct {
	results []eligibility.MatchResult
	err     error
}

func (s stubAssessor) Assess(context.Context, eligibility.StudentProfile, []eligibility.Scholarship) ([]eligibility.MatchResult, error) {
	return s.results, s.err
}

func (s stubAssessor) Model() string { return "stub" }

func auditCatalog() []eligibility.Scholarship {
	return []eligibility.Scholarship{
		{ID: "s1", Name: "Open Award", Organization: "Org", Amount: 1000},
		{ID: "s2", Name: "Need Award", Organization: "Org", Amount: 2000,
			Requirements: eligibility.Requirements{FinancialNeedRequired: true}},
	}
}

func TestAuditorRun(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)
	assessor := stubAssessor{results: []eligibility.MatchResult{
		result("s1", eligibility.StatusFull),
		result("s2", eligibility.StatusFull),
	}}
	auditor := New(eligibility.NewEngine(eligibility.Options{}), assessor, zap.New(core))

	profile := &eligibility.StudentProfile{GPA: 3.0, EducationLevel: eligibility.Undergraduate, Major: "History"}
	results, report, err := auditor.Run(context.Background(), profile, auditCatalog())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(results) != 2 || results[0].ScholarshipID != "s1" {
		t.Fatalf("unexpected engine results: %+v", results)
	}
	if report.Model != "stub" || report.Agreed != 1 || len(report.Discrepancies) != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if report.Discrepancies[0].ScholarshipID != "s2" || report.Discrepancies[0].EngineStatus != eligibility.StatusNone {
		t.Fatalf("unexpected discrepancy: %+v", report.Discrepancies[0])
	}

	if observed.FilterMessage("audit completed").Len() != 1 {
		t.Fatalf("expected audit summary log")
	}
}

func TestAuditorRunErrors(t *testing.T) {
	engine := eligibility.NewEngine(eligibility.Options{})

	auditor := New(engine, stubAssessor{err: errors.New("quota")}, nil)
	profile := &eligibility.StudentProfile{GPA: 3.0, EducationLevel: eligibility.Undergraduate, Major: "History"}
	results, report, err := auditor.Run(context.Background(), profile, auditCatalog())
	if err == nil || report != nil {
		t.Fatalf("expected model error, got %v, %+v", err, report)
	}
	if len(results) != 2 {
		t.Fatalf("expected engine results to survive a model error")
	}

	if _, _, err := auditor.Run(context.Background(), nil, auditCatalog()); !errors.Is(err, eligibility.ErrNilProfile) {
		t.Fatalf("expected nil profile error, got %v", err)
	}
}

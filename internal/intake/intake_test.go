package intake

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/spigell/scholarship-matcher/internal/eligibility"
)

func floatPtr(v float64) *float64 { return &v }

func validInput() ProfileInput {
	return ProfileInput{
		Name:           " Alex ",
		GPA:            floatPtr(3.6),
		EducationLevel: "undergrad",
		Major:          "Computer Science ",
		Gender:         "Female",
		Region:         "Ohio",
	}
}

func TestProfileConversion(t *testing.T) {
	profile, err := validInput().Profile()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if profile.EducationLevel != eligibility.Undergraduate {
		t.Fatalf("expected canonical level, got %q", profile.EducationLevel)
	}
	if profile.Name != "Alex" || profile.Major != "Computer Science" {
		t.Fatalf("expected trimmed fields, got %+v", profile)
	}
	if profile.GPA != 3.6 {
		t.Fatalf("unexpected gpa %v", profile.GPA)
	}

	back := FromProfile(*profile)
	if *back.GPA != 3.6 || back.EducationLevel != string(eligibility.Undergraduate) {
		t.Fatalf("unexpected round trip: %+v", back)
	}
}

func TestValidationProblems(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		mutate  func(*ProfileInput)
		problem string
	}{
		{name: "missing gpa", mutate: func(p *ProfileInput) { p.GPA = nil }, problem: "field gpa is required"},
		{name: "nan gpa", mutate: func(p *ProfileInput) { p.GPA = floatPtr(math.NaN()) }, problem: "field gpa must be a finite number"},
		{name: "missing major", mutate: func(p *ProfileInput) { p.Major = "" }, problem: "field major is required"},
		{name: "missing region", mutate: func(p *ProfileInput) { p.Region = "" }, problem: "field region is required"},
		{name: "unknown level", mutate: func(p *ProfileInput) { p.EducationLevel = "Postdoc" }, problem: "field educationLevel must be one of: High School Senior, Undergraduate, Graduate/PhD"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			input := validInput()
			tc.mutate(&input)

			_, err := input.Profile()
			if !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}

			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected *ValidationError, got %T", err)
			}
			if len(verr.Problems) != 1 || verr.Problems[0] != tc.problem {
				t.Fatalf("unexpected problems: %v", verr.Problems)
			}
		})
	}
}

func TestZeroGPAIsAccepted(t *testing.T) {
	input := validInput()
	input.GPA = floatPtr(0)

	if err := input.Validate(); err != nil {
		t.Fatalf("expected explicit zero gpa to be valid, got %v", err)
	}
}

func TestAllProblemsAreReported(t *testing.T) {
	err := ProfileInput{}.Validate()
	if err == nil {
		t.Fatalf("expected validation error")
	}
	for _, field := range []string{"gpa", "educationLevel", "major", "region"} {
		if !strings.Contains(err.Error(), "field "+field+" is required") {
			t.Fatalf("expected %s to be reported, got %q", field, err.Error())
		}
	}
}

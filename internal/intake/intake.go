package intake

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/spigell/scholarship-matcher/internal/eligibility"
)

// ErrInvalidInput is wrapped by every ValidationError.
var ErrInvalidInput = errors.New("invalid profile input")

// ProfileInput is the student profile as collected from a form, a config file
// or an API request, before it is handed to the engine.
type ProfileInput struct {
	Name             string   `mapstructure:"name" json:"name"`
	GPA              *float64 `mapstructure:"gpa" json:"gpa" validate:"required,finite"`
	EducationLevel   string   `mapstructure:"education-level" json:"educationLevel" validate:"required,education_level"`
	Major            string   `mapstructure:"major" json:"major" validate:"required"`
	FinancialNeed    bool     `mapstructure:"financial-need" json:"financialNeed"`
	Gender           string   `mapstructure:"gender" json:"gender"`
	Region           string   `mapstructure:"region" json:"region" validate:"required"`
	Extracurriculars string   `mapstructure:"extracurriculars" json:"extracurriculars"`
}

// ValidationError lists every problem found in a ProfileInput.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Problems, ", ")
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation("education_level", func(fl validator.FieldLevel) bool {
		_, err := eligibility.ParseEducationLevel(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("finite", func(fl validator.FieldLevel) bool {
		f := fl.Field().Float()
		return !math.IsNaN(f) && !math.IsInf(f, 0)
	})
	return v
}

// Validate checks the input and returns a *ValidationError describing every
// failing field.
func (p ProfileInput) Validate() error {
	err := validate.Struct(p)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return &ValidationError{Problems: describe(fieldErrs)}
}

func describe(errs validator.ValidationErrors) []string {
	problems := make([]string, 0, len(errs))
	for _, e := range errs {
		switch e.ActualTag() {
		case "required":
			problems = append(problems, fmt.Sprintf("field %s is required", e.Field()))
		case "education_level":
			labels := make([]string, 0, 3)
			for _, l := range eligibility.Levels() {
				labels = append(labels, string(l))
			}
			problems = append(problems, fmt.Sprintf("field %s must be one of: %s", e.Field(), strings.Join(labels, ", ")))
		case "finite":
			problems = append(problems, fmt.Sprintf("field %s must be a finite number", e.Field()))
		default:
			problems = append(problems, fmt.Sprintf("field %s is invalid", e.Field()))
		}
	}
	return problems
}

// Profile validates the input and converts it to an engine profile with a
// canonical education level.
func (p ProfileInput) Profile() (*eligibility.StudentProfile, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	level, err := eligibility.ParseEducationLevel(p.EducationLevel)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	return &eligibility.StudentProfile{
		Name:             strings.TrimSpace(p.Name),
		GPA:              *p.GPA,
		EducationLevel:   level,
		Major:            strings.TrimSpace(p.Major),
		FinancialNeed:    p.FinancialNeed,
		Gender:           strings.TrimSpace(p.Gender),
		Region:           strings.TrimSpace(p.Region),
		Extracurriculars: strings.TrimSpace(p.Extracurriculars),
	}, nil
}

// FromProfile is the inverse of Profile, used to prefill forms.
func FromProfile(p eligibility.StudentProfile) ProfileInput {
	gpa := p.GPA
	return ProfileInput{
		Name:             p.Name,
		GPA:              &gpa,
		EducationLevel:   string(p.EducationLevel),
		Major:            p.Major,
		FinancialNeed:    p.FinancialNeed,
		Gender:           p.Gender,
		Region:           p.Region,
		Extracurriculars: p.Extracurriculars,
	}
}

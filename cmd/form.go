package cmd

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"

	"github.com/spigell/scholarship-matcher/internal/eligibility"
	"github.com/spigell/scholarship-matcher/internal/intake"
)

var genderOptions = []string{"Prefer not to say", "Male", "Female", "Non-binary"}

// askProfile walks the student through the profile form, prefilled with input.
func askProfile(input intake.ProfileInput) (intake.ProfileInput, error) {
	var err error

	if input.Name, err = ask("Full name", input.Name, nil); err != nil {
		return input, err
	}

	gpaDefault := ""
	if input.GPA != nil {
		gpaDefault = strconv.FormatFloat(*input.GPA, 'f', -1, 64)
	}
	rawGPA, err := ask("GPA (0.0 - 4.0)", gpaDefault, validateGPA)
	if err != nil {
		return input, err
	}
	gpa, _ := strconv.ParseFloat(strings.TrimSpace(rawGPA), 64)
	input.GPA = &gpa

	levels := make([]string, 0, 3)
	for _, l := range eligibility.Levels() {
		levels = append(levels, string(l))
	}
	if input.EducationLevel, err = choose("Education level", levels, input.EducationLevel); err != nil {
		return input, err
	}

	if input.Major, err = ask("Major / field of study", input.Major, required); err != nil {
		return input, err
	}

	need := PromptNo
	if input.FinancialNeed {
		need = PromptYes
	}
	if need, err = choose("Do you have financial need?", []string{PromptYes, PromptNo}, need); err != nil {
		return input, err
	}
	input.FinancialNeed = need == PromptYes

	if input.Gender, err = choose("Gender", genderOptions, input.Gender); err != nil {
		return input, err
	}

	if input.Region, err = ask("State / region", input.Region, required); err != nil {
		return input, err
	}

	if input.Extracurriculars, err = ask("Extracurriculars (optional)", input.Extracurriculars, nil); err != nil {
		return input, err
	}

	return input, nil
}

func ask(label, def string, validate promptui.ValidateFunc) (string, error) {
	p := promptui.Prompt{
		Label:     label,
		Default:   def,
		AllowEdit: true,
		Validate:  validate,
	}
	value, err := p.Run()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(value), nil
}

func choose(label string, items []string, current string) (string, error) {
	cursor := slices.IndexFunc(items, func(item string) bool {
		return strings.EqualFold(item, current)
	})
	if cursor < 0 {
		if level, err := eligibility.ParseEducationLevel(current); err == nil {
			cursor = slices.Index(items, string(level))
		}
	}

	s := promptui.Select{
		Label:     label,
		Items:     items,
		CursorPos: max(cursor, 0),
	}
	_, value, err := s.Run()
	return value, err
}

func required(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("value is required")
	}
	return nil
}

func validateGPA(s string) error {
	gpa, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return errors.New("GPA must be a number")
	}
	if gpa < 0 || gpa > 4 {
		return fmt.Errorf("GPA must be between 0 and 4, got %v", gpa)
	}
	return nil
}

package eligibility

import (
	"fmt"
	"strings"
	"time"
)

// EducationLevel is one of the closed set of academic stages a student can be in.
type EducationLevel string

const (
	HighSchoolSenior EducationLevel = "High School Senior"
	Undergraduate    EducationLevel = "Undergraduate"
	GraduateOrPhD    EducationLevel = "Graduate/PhD"
)

var levelAliases = map[string]EducationLevel{
	"high school senior": HighSchoolSenior,
	"high school":        HighSchoolSenior,
	"highschool":         HighSchoolSenior,
	"highschoolsenior":   HighSchoolSenior,
	"hs":                 HighSchoolSenior,
	"undergraduate":      Undergraduate,
	"undergrad":          Undergraduate,
	"bachelor":           Undergraduate,
	"graduate/phd":       GraduateOrPhD,
	"graduate":           GraduateOrPhD,
	"graduateorphd":      GraduateOrPhD,
	"grad":               GraduateOrPhD,
	"phd":                GraduateOrPhD,
	"masters":            GraduateOrPhD,
}

// Levels returns every known education level in display order.
func Levels() []EducationLevel {
	return []EducationLevel{HighSchoolSenior, Undergraduate, GraduateOrPhD}
}

// ParseEducationLevel resolves a label or alias to a canonical level.
func ParseEducationLevel(s string) (EducationLevel, error) {
	key := strings.ToLower(strings.Join(strings.Fields(strings.ReplaceAll(s, "_", " ")), " "))
	if level, ok := levelAliases[key]; ok {
		return level, nil
	}
	if level, ok := levelAliases[strings.ReplaceAll(key, " ", "")]; ok {
		return level, nil
	}
	return "", fmt.Errorf("unknown education level %q", s)
}

// Valid reports whether the level belongs to the closed set.
func (l EducationLevel) Valid() bool {
	switch l {
	case HighSchoolSenior, Undergraduate, GraduateOrPhD:
		return true
	default:
		return false
	}
}

// UnmarshalText canonicalizes known aliases. Unknown values are kept as-is so
// that a bad catalog entry can be reported per scholarship instead of failing
// the whole decode.
func (l *EducationLevel) UnmarshalText(text []byte) error {
	if level, err := ParseEducationLevel(string(text)); err == nil {
		*l = level
		return nil
	}
	*l = EducationLevel(strings.TrimSpace(string(text)))
	return nil
}

// Status is the eligibility verdict for one scholarship.
type Status string

const (
	StatusFull    Status = "FULL"
	StatusPartial Status = "PARTIAL"
	StatusNone    Status = "NONE"
)

// Rank orders statuses for result sorting: FULL=0, PARTIAL=1, NONE=2.
func (s Status) Rank() int {
	switch s {
	case StatusFull:
		return 0
	case StatusPartial:
		return 1
	default:
		return 2
	}
}

// Label is the human-readable form of the status.
func (s Status) Label() string {
	switch s {
	case StatusFull:
		return "Full Match"
	case StatusPartial:
		return "Partial Match"
	case StatusNone:
		return "Not Eligible"
	default:
		return string(s)
	}
}

// ParseStatus accepts both the short codes and the display labels.
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "full", "full match":
		return StatusFull, nil
	case "partial", "partial match":
		return StatusPartial, nil
	case "none", "not eligible":
		return StatusNone, nil
	default:
		return "", fmt.Errorf("unknown eligibility status %q", s)
	}
}

// StudentProfile is a snapshot of the applicant. Name and Extracurriculars are
// informational and never used in decisions.
type StudentProfile struct {
	Name             string         `json:"name"`
	GPA              float64        `json:"gpa"`
	EducationLevel   EducationLevel `json:"educationLevel"`
	Major            string         `json:"major"`
	FinancialNeed    bool           `json:"financialNeed"`
	Gender           string         `json:"gender"`
	Region           string         `json:"region"`
	Extracurriculars string         `json:"extracurriculars"`
}

// Requirements are the eligibility constraints of one scholarship. Absent or
// empty fields impose no constraint.
type Requirements struct {
	MinGPA                *float64         `json:"minGpa,omitempty"`
	Levels                []EducationLevel `json:"levels,omitempty"`
	Majors                []string         `json:"majors,omitempty"`
	FinancialNeedRequired bool             `json:"financialNeedRequired,omitempty"`
	Demographics          []string         `json:"demographics,omitempty"`
	Regions               []string         `json:"regions,omitempty"`

	// invalid is set when the entry could not be decoded into the fields above.
	invalid string
}

// InvalidRequirements returns requirements that every evaluation reports as
// ErrInvalidRequirements with the given reason.
func InvalidRequirements(reason string) Requirements {
	if reason == "" {
		reason = "malformed entry"
	}
	return Requirements{invalid: reason}
}

// DeadlineLayout is the calendar date format of Scholarship.Deadline.
const DeadlineLayout = "2006-01-02"

// Scholarship is one catalog entry.
type Scholarship struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Organization string       `json:"organization"`
	Amount       int64        `json:"amount"`
	Deadline     string       `json:"deadline,omitempty"`
	Description  string       `json:"description,omitempty"`
	Requirements Requirements `json:"requirements"`
}

// DeadlineTime parses the informational deadline.
func (s Scholarship) DeadlineTime() (time.Time, error) {
	return time.Parse(DeadlineLayout, strings.TrimSpace(s.Deadline))
}

// MatchResult is the verdict for one scholarship in one evaluation pass.
type MatchResult struct {
	ScholarshipID       string   `json:"scholarshipId"`
	ScholarshipName     string   `json:"scholarshipName"`
	Organization        string   `json:"organization"`
	Amount              int64    `json:"amount"`
	Status              Status   `json:"status"`
	MatchScore          int      `json:"matchScore"`
	Reason              string   `json:"reason"`
	MissingRequirements []string `json:"missingRequirements"`
}

package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/spigell/scholarship-matcher/internal/eligibility"
)

type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown output format %q (expected text or json)", s)
	}
}

// Summary counts results per status.
type Summary struct {
	Total   int `json:"total"`
	Full    int `json:"full"`
	Partial int `json:"partial"`
	None    int `json:"none"`
	// EligibleAmount is the sum of FULL and PARTIAL awards.
	EligibleAmount int64 `json:"eligibleAmount"`
}

func Summarize(results []eligibility.MatchResult) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		switch r.Status {
		case eligibility.StatusFull:
			s.Full++
			s.EligibleAmount += r.Amount
		case eligibility.StatusPartial:
			s.Partial++
			s.EligibleAmount += r.Amount
		default:
			s.None++
		}
	}
	return s
}

var printer = message.NewPrinter(language.AmericanEnglish)

// FormatAmount renders a whole-dollar amount with grouping, e.g. $10,000.
func FormatAmount(amount int64) string {
	return printer.Sprintf("$%d", amount)
}

// Write renders results in the requested format.
func Write(w io.Writer, format Format, results []eligibility.MatchResult) error {
	switch format {
	case FormatJSON:
		return WriteJSON(w, results)
	default:
		return WriteText(w, results)
	}
}

// WriteJSON writes the results as an indented JSON array.
func WriteJSON(w io.Writer, results []eligibility.MatchResult) error {
	if results == nil {
		results = []eligibility.MatchResult{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}

// WriteText writes one table per status, in result order, followed by the
// unmet requirements of every non-full result.
func WriteText(w io.Writer, results []eligibility.MatchResult) error {
	summary := Summarize(results)
	if _, err := fmt.Fprintf(w, "%d scholarships evaluated: %d full, %d partial, %d not eligible. Potential awards: %s\n",
		summary.Total, summary.Full, summary.Partial, summary.None, FormatAmount(summary.EligibleAmount)); err != nil {
		return err
	}

	for _, status := range []eligibility.Status{eligibility.StatusFull, eligibility.StatusPartial, eligibility.StatusNone} {
		group := filterStatus(results, status)
		if len(group) == 0 {
			continue
		}

		fmt.Fprintf(w, "\n%s (%d)\n", status.Label(), len(group))

		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "  ID\tSCHOLARSHIP\tORGANIZATION\tAMOUNT\tSCORE\tREASON")
		for _, r := range group {
			fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\t%d\t%s\n",
				r.ScholarshipID, r.ScholarshipName, r.Organization, FormatAmount(r.Amount), r.MatchScore, r.Reason)
		}
		if err := tw.Flush(); err != nil {
			return err
		}

		for _, r := range group {
			for _, missing := range r.MissingRequirements {
				fmt.Fprintf(w, "  - %s: %s\n", r.ScholarshipID, missing)
			}
		}
	}
	return nil
}

func filterStatus(results []eligibility.MatchResult, status eligibility.Status) []eligibility.MatchResult {
	var out []eligibility.MatchResult
	for _, r := range results {
		if r.Status == status {
			out = append(out, r)
		}
	}
	return out
}

// ByStatus groups results under their status label.
func ByStatus(results []eligibility.MatchResult) map[string][]map[string]string {
	report := make(map[string][]map[string]string)
	for _, r := range results {
		key := fmt.Sprintf("%s (%s)", r.Status.Label(), r.Status)
		report[key] = append(report[key], map[string]string{
			"id":           r.ScholarshipID,
			"name":         r.ScholarshipName,
			"organization": r.Organization,
			"amount":       FormatAmount(r.Amount),
			"score":        strconv.Itoa(r.MatchScore),
			"reason":       r.Reason,
			"missing":      strings.Join(r.MissingRequirements, "; "),
		})
	}
	return report
}

// DumpToTmpFile writes the results as JSON to a temporary file and returns its path.
func DumpToTmpFile(results []eligibility.MatchResult) (string, error) {
	file, err := os.CreateTemp("", "eligibility_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	if err := WriteJSON(file, results); err != nil {
		return "", err
	}
	return file.Name(), nil
}

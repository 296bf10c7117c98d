package eligibility

import (
	"fmt"
	"strings"
)

// Score bands keep FULL > PARTIAL > NONE whatever penalties are configured.
const (
	fullScore       = 100
	partialScoreMax = 99
	partialScoreMin = 51
	noneScoreMax    = 50
)

// Penalties are the points subtracted from 100 per unmet criterion.
type Penalties struct {
	GPA          int `mapstructure:"gpa" json:"gpa"`
	Major        int `mapstructure:"major" json:"major"`
	Demographics int `mapstructure:"demographics" json:"demographics"`
	Region       int `mapstructure:"region" json:"region"`
	// Hard is added on top of the soft penalty for every hard miss.
	Hard int `mapstructure:"hard" json:"hard"`
}

// DefaultPenalties returns the built-in scoring weights.
func DefaultPenalties() Penalties {
	return Penalties{
		GPA:          15,
		Major:        15,
		Demographics: 10,
		Region:       10,
		Hard:         40,
	}
}

func (p Penalties) soft(c Criterion) int {
	switch c {
	case CriterionGPA:
		return p.GPA
	case CriterionMajor:
		return p.Major
	case CriterionDemographics:
		return p.Demographics
	case CriterionRegion:
		return p.Region
	default:
		return 0
	}
}

// Assessment is the reduced form of a scholarship's verdicts.
type Assessment struct {
	Status              Status
	Score               int
	MissingRequirements []string
	Reason              string
}

// structural criteria explain a NONE status before tolerant ones do.
var hardPriority = []Criterion{
	CriterionLevel, CriterionFinancialNeed, CriterionDemographics,
	CriterionRegion, CriterionGPA, CriterionMajor,
}

// Aggregate combines per-criterion verdicts into a status, a 0-100 score, the
// missing requirement lines and a reason. Any hard miss is absorbing.
func Aggregate(verdicts []Verdict, penalties Penalties) Assessment {
	var soft, hard []Verdict
	missing := make([]string, 0, len(verdicts))
	for _, v := range verdicts {
		switch v.Outcome {
		case SoftMiss:
			soft = append(soft, v)
			missing = append(missing, v.Missing)
		case HardMiss:
			hard = append(hard, v)
			missing = append(missing, v.Missing)
		}
	}

	penalty := 0
	for _, v := range soft {
		penalty += max(penalties.soft(v.Criterion), 0)
	}
	for _, v := range hard {
		penalty += max(penalties.soft(v.Criterion), 0) + max(penalties.Hard, 0)
	}

	switch {
	case len(hard) > 0:
		dominant := pickDominant(hard, penalties)
		return Assessment{
			Status:              StatusNone,
			Score:               clamp(fullScore-penalty, 0, noneScoreMax),
			MissingRequirements: missing,
			Reason:              reasonText("Not eligible", dominant, len(missing)-1, "requirement", "not met"),
		}
	case len(soft) > 0:
		dominant := pickDominant(soft, penalties)
		return Assessment{
			Status:              StatusPartial,
			Score:               clamp(fullScore-penalty, partialScoreMin, partialScoreMax),
			MissingRequirements: missing,
			Reason:              reasonText("Partial match", dominant, len(soft)-1, "requirement", "only partially met"),
		}
	default:
		reason := "Full match: no eligibility restrictions apply."
		if len(verdicts) > 0 {
			reason = fmt.Sprintf("Full match: meets all %d stated requirements.", len(verdicts))
		}
		return Assessment{
			Status:              StatusFull,
			Score:               fullScore,
			MissingRequirements: []string{},
			Reason:              reason,
		}
	}
}

// pickDominant returns the miss most responsible for the status. Hard misses
// follow hardPriority; soft misses are ranked by penalty, then by criterion order.
func pickDominant(misses []Verdict, penalties Penalties) Verdict {
	if misses[0].Outcome == HardMiss {
		for _, c := range hardPriority {
			for _, v := range misses {
				if v.Criterion == c {
					return v
				}
			}
		}
		return misses[0]
	}

	best := misses[0]
	for _, v := range misses[1:] {
		if penalties.soft(v.Criterion) > penalties.soft(best.Criterion) {
			best = v
		}
	}
	return best
}

func reasonText(verdict string, dominant Verdict, others int, noun, state string) string {
	var b strings.Builder
	b.WriteString(verdict)
	b.WriteString(": ")
	b.WriteString(dominant.Explanation)
	b.WriteString(".")
	switch {
	case others == 1:
		fmt.Fprintf(&b, " 1 other %s is %s.", noun, state)
	case others > 1:
		fmt.Fprintf(&b, " %d other %ss are %s.", others, noun, state)
	}
	return b.String()
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}

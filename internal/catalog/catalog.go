package catalog

import (
	"encoding/json"
	"os"
	"slices"
	"strings"

	"github.com/spigell/scholarship-matcher/internal/eligibility"
)

const (
	IDField           = "ID"
	OrganizationField = "Organization"
)

// Catalog is an ordered list of scholarship offers. Order is significant: it
// is the final tie-break when results are sorted.
type Catalog struct {
	Source   string                    `json:"source"`
	Items    []eligibility.Scholarship `json:"scholarships"`
	Rejected []Rejection               `json:"rejected,omitempty"`
}

// Rejection records a catalog entry left out of Items because it is not a
// mapping or has no usable id or name.
type Rejection struct {
	Index  int      `json:"index"`
	ID     string   `json:"id,omitempty"`
	Errors []string `json:"errors"`
}

func (c *Catalog) Len() int {
	return len(c.Items)
}

func (c *Catalog) IDs() []string {
	ids := make([]string, 0, len(c.Items))
	for _, s := range c.Items {
		ids = append(ids, s.ID)
	}
	return ids
}

func (c *Catalog) FindByID(id string) (eligibility.Scholarship, bool) {
	for _, s := range c.Items {
		if s.ID == id {
			return s, true
		}
	}
	return eligibility.Scholarship{}, false
}

// Clone returns a copy whose Items can be filtered without touching c.
func (c *Catalog) Clone() *Catalog {
	return &Catalog{
		Source:   c.Source,
		Items:    slices.Clone(c.Items),
		Rejected: slices.Clone(c.Rejected),
	}
}

// Exclude removes every offer whose field matches one of targets, keeping the
// order of the rest. Organization names compare case-insensitively. It returns
// the ids of removed offers.
func (c *Catalog) Exclude(field string, targets []string) []string {
	if len(targets) == 0 {
		return nil
	}

	set := make(map[string]struct{}, len(targets))
	for _, t := range targets {
		set[fieldKey(field, t)] = struct{}{}
	}

	var excluded []string
	c.Items = slices.DeleteFunc(c.Items, func(s eligibility.Scholarship) bool {
		if _, ok := set[fieldKey(field, stringField(s, field))]; ok {
			excluded = append(excluded, s.ID)
			return true
		}
		return false
	})
	return excluded
}

// ExcludeFunc removes offers for which drop returns true.
func (c *Catalog) ExcludeFunc(drop func(eligibility.Scholarship) bool) []string {
	var excluded []string
	c.Items = slices.DeleteFunc(c.Items, func(s eligibility.Scholarship) bool {
		if drop(s) {
			excluded = append(excluded, s.ID)
			return true
		}
		return false
	})
	return excluded
}

func stringField(s eligibility.Scholarship, name string) string {
	switch name {
	case IDField:
		return s.ID
	case OrganizationField:
		return s.Organization
	default:
		return ""
	}
}

func fieldKey(field, value string) string {
	value = strings.TrimSpace(value)
	if field == OrganizationField {
		return strings.ToLower(value)
	}
	return value
}

// Organizations returns the distinct organizations in catalog order.
func (c *Catalog) Organizations() []string {
	var orgs []string
	for _, s := range c.Items {
		if s.Organization != "" && !slices.Contains(orgs, s.Organization) {
			orgs = append(orgs, s.Organization)
		}
	}
	return orgs
}

// DumpToTmpFile writes the catalog as indented JSON to a temporary file and
// returns its path.
func (c *Catalog) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "scholarships_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(c); err != nil {
		return "", err
	}
	return file.Name(), nil
}

package screening

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"slices"
	"time"

	"github.com/spigell/scholarship-matcher/internal/eligibility"
)

// Dismissed is the content of the exclude file: scholarships the student has
// chosen to hide from future passes.
type Dismissed struct {
	Items []*DismissedScholarship `json:"items"`
}

type DismissedScholarship struct {
	ID           string    `json:"id"`
	Name         string    `json:"name,omitempty"`
	Organization string    `json:"organization,omitempty"`
	DismissedAt  time.Time `json:"dismissedAt"`
}

// DismissResults converts results into exclude file entries stamped with now.
func DismissResults(results []eligibility.MatchResult, now time.Time) *Dismissed {
	dismissed := &Dismissed{}
	for _, r := range results {
		dismissed.Items = append(dismissed.Items, &DismissedScholarship{
			ID:           r.ScholarshipID,
			Name:         r.ScholarshipName,
			Organization: r.Organization,
			DismissedAt:  now.UTC(),
		})
	}
	return dismissed
}

// ReadDismissed loads an exclude file. A missing or empty file yields an empty list.
func ReadDismissed(path string) (*Dismissed, error) {
	file, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &Dismissed{}, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, err
	}

	if stat.Size() == 0 {
		return &Dismissed{}, nil
	}

	var dismissed Dismissed
	if err := json.NewDecoder(file).Decode(&dismissed); err != nil {
		return nil, err
	}
	return &dismissed, nil
}

// Append adds entries whose ids are not already present.
func (d *Dismissed) Append(other *Dismissed) {
	known := d.IDs()
	for _, item := range other.Items {
		if !slices.Contains(known, item.ID) {
			d.Items = append(d.Items, item)
			known = append(known, item.ID)
		}
	}
}

func (d *Dismissed) IDs() []string {
	ids := make([]string, 0, len(d.Items))
	for _, item := range d.Items {
		ids = append(ids, item.ID)
	}
	return ids
}

func (d *Dismissed) ToFile(path string) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	return enc.Encode(d)
}

// AppendToFile merges entries into the exclude file at path, creating it if needed.
func AppendToFile(path string, entries *Dismissed) error {
	existing, err := ReadDismissed(path)
	if err != nil {
		return err
	}
	existing.Append(entries)
	return existing.ToFile(path)
}

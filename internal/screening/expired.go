package screening

import (
	"context"
	"strconv"

	"go.uber.org/zap"

	"github.com/spigell/scholarship-matcher/internal/catalog"
	"github.com/spigell/scholarship-matcher/internal/eligibility"
)

type expiredFilter struct {
	disabled bool
	reason   string
	enabled  bool
}

// NewExpired creates a step that removes offers whose deadline has passed.
// It only acts when skip-expired is set. Offers without a parseable deadline are kept.
func NewExpired() Filter {
	return &expiredFilter{}
}

func (f *expiredFilter) Name() string { return "expired" }

func (f *expiredFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *expiredFilter) IsEnabled() bool { return !f.disabled }

func (f *expiredFilter) Validate(cfg *Config) error {
	f.enabled = cfg != nil && cfg.SkipExpired
	return nil
}

func (f *expiredFilter) Apply(_ context.Context, deps Deps, c *catalog.Catalog) (*catalog.Catalog, Step, error) {
	initial := c.Len()
	if !f.enabled {
		return c, Step{Initial: initial, Dropped: 0, Left: c.Len()}, nil
	}

	now := deps.now()
	today := now.Format(eligibility.DeadlineLayout)
	excluded := c.ExcludeFunc(func(s eligibility.Scholarship) bool {
		deadline, err := s.DeadlineTime()
		if err != nil {
			return false
		}
		// the deadline day itself is still open
		return deadline.Format(eligibility.DeadlineLayout) < today
	})

	if deps.Logger != nil && len(excluded) > 0 {
		deps.Logger.Info("excluding scholarships past their deadline",
			zap.String("today", today),
			zap.Strings("excluded_scholarships", excluded),
			zap.Int("scholarships_left", c.Len()),
		)
	}

	return c, Step{Initial: initial, Dropped: len(excluded), Left: c.Len()}, nil
}

func (f *expiredFilter) Status() Status {
	return Status{
		Name:    f.Name(),
		Enabled: f.IsEnabled(),
		Reason:  f.reason,
		Details: map[string]string{"skip_expired": strconv.FormatBool(f.enabled)},
	}
}

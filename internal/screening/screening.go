package screening

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/scholarship-matcher/internal/catalog"
)

// Filter is a single screening step applied to the catalog before evaluation.
// Screening only narrows what is shown; it never changes an eligibility verdict.
type Filter interface {
	Name() string
	Disable(reason string)
	IsEnabled() bool

	Validate(cfg *Config) error
	Apply(ctx context.Context, deps Deps, c *catalog.Catalog) (*catalog.Catalog, Step, error)
}

// Deps aggregates dependencies shared across all screening steps.
type Deps struct {
	Logger *zap.Logger
	// Now is the clock used by date-based steps.
	Now func() time.Time
}

func (d Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

// Step describes the result of executing a screening step.
type Step struct {
	Initial int
	Dropped int
	Left    int
}

// Config contains the settings consumed by the steps.
type Config struct {
	ExcludeOrganizations []string `mapstructure:"exclude-organizations"`
	ExcludeFile          string   `mapstructure:"exclude-file"`
	SkipExpired          bool     `mapstructure:"skip-expired"`
}

// Status represents runtime information about a step.
type Status struct {
	Name    string            `json:"name"`
	Enabled bool              `json:"enabled"`
	Reason  string            `json:"reason,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

type statusProvider interface {
	Status() Status
}

// Default returns the standard steps in execution order.
func Default() []Filter {
	return []Filter{
		NewOrganizations(),
		NewExcludeFile(),
		NewExpired(),
	}
}

// DisableByName marks the step with the provided name as disabled while keeping it in the list.
func DisableByName(steps []Filter, name, reason string) {
	for _, step := range steps {
		if step.Name() == name {
			step.Disable(reason)
		}
	}
}

// Run validates and then applies the enabled steps in order. The input catalog
// is not modified; the screened copy is returned.
func Run(ctx context.Context, cfg *Config, deps Deps, steps []Filter, c *catalog.Catalog) (*catalog.Catalog, error) {
	for _, step := range steps {
		if !step.IsEnabled() {
			continue
		}
		if err := step.Validate(cfg); err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name(), err)
		}
	}

	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	current := c.Clone()
	for _, step := range steps {
		if !step.IsEnabled() {
			deps.Logger.Info("screening step disabled", zap.String("name", step.Name()))
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		next, info, err := step.Apply(ctx, deps, current)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name(), err)
		}

		deps.Logger.Info("screening step",
			zap.String("name", step.Name()),
			zap.Int("initial", info.Initial),
			zap.Int("dropped", info.Dropped),
			zap.Int("left", info.Left),
		)

		current = next
	}

	return current, nil
}

// Describe returns status entries for the provided steps.
func Describe(steps []Filter) []Status {
	statuses := make([]Status, 0, len(steps))
	for _, step := range steps {
		if reporter, ok := step.(statusProvider); ok {
			statuses = append(statuses, reporter.Status())
			continue
		}

		statuses = append(statuses, Status{
			Name:    step.Name(),
			Enabled: step.IsEnabled(),
		})
	}
	return statuses
}

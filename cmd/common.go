package cmd

import (
	"context"
	"fmt"
	"log"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/scholarship-matcher/internal/catalog"
	"github.com/spigell/scholarship-matcher/internal/eligibility"
	"github.com/spigell/scholarship-matcher/internal/intake"
	"github.com/spigell/scholarship-matcher/internal/logger"
	"github.com/spigell/scholarship-matcher/internal/screening"
)

// setup builds the logger and reads the config. Failures here are fatal.
func setup() (*zap.Logger, *Config) {
	lg, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		lg.Fatal("getting a config", zap.Error(err))
	}

	lg.Debug("starting with config", zap.Any("config", config))
	return lg, config
}

func newEngine(config *Config, log *zap.Logger) *eligibility.Engine {
	return eligibility.NewEngine(eligibility.Options{
		Vocabulary:   eligibility.DefaultVocabulary().Merge(config.Engine.Vocabulary),
		Penalties:    config.Engine.Penalties,
		GPATolerance: config.Engine.GPATolerance,
		Concurrency:  config.Engine.Concurrency,
		Logger:       log,
	})
}

// loadCatalog reads the configured catalog and runs the screening steps on it.
func loadCatalog(ctx context.Context, config *Config, steps []screening.Filter, log *zap.Logger) (*catalog.Catalog, error) {
	offers, err := catalog.Load(config.Catalog)
	if err != nil {
		return nil, err
	}

	for _, rejected := range offers.Rejected {
		log.Warn("catalog entry rejected",
			zap.Int("index", rejected.Index),
			zap.String(logger.FieldScholarshipID, rejected.ID),
			zap.Strings("errors", rejected.Errors),
		)
	}
	log.Info("catalog loaded", zap.String(logger.FieldCatalog, offers.Source), zap.Int("count", offers.Len()))

	screened, err := screening.Run(ctx, &config.Screening, screening.Deps{Logger: log}, steps, offers)
	if err != nil {
		return nil, fmt.Errorf("screening: %w", err)
	}
	return screened, nil
}

const (
	flagName             = "name"
	flagGPA              = "gpa"
	flagEducationLevel   = "education-level"
	flagMajor            = "major"
	flagFinancialNeed    = "financial-need"
	flagGender           = "gender"
	flagRegion           = "region"
	flagExtracurriculars = "extracurriculars"
)

func addProfileFlags(flags *pflag.FlagSet) {
	flags.String(flagName, "", "student name (informational)")
	flags.Float64(flagGPA, 0, "grade point average")
	flags.StringP(flagEducationLevel, "l", "", "education level: High School Senior, Undergraduate or Graduate/PhD")
	flags.String(flagMajor, "", "intended or current major")
	flags.Bool(flagFinancialNeed, false, "the student demonstrates financial need")
	flags.String(flagGender, "", "gender or demographic")
	flags.String(flagRegion, "", "state, region or country of residence")
	flags.String(flagExtracurriculars, "", "extracurricular activities (informational)")
}

// profileInput merges the config profile with the flags the user set.
func profileInput(cmd *cobra.Command, config *Config) (intake.ProfileInput, error) {
	var input intake.ProfileInput
	if config.Profile != nil {
		input = *config.Profile
	}

	flags := cmd.Flags()
	set := func(name string, target *string) {
		if flags.Changed(name) {
			*target, _ = flags.GetString(name)
		}
	}
	set(flagName, &input.Name)
	set(flagEducationLevel, &input.EducationLevel)
	set(flagMajor, &input.Major)
	set(flagGender, &input.Gender)
	set(flagRegion, &input.Region)
	set(flagExtracurriculars, &input.Extracurriculars)

	if flags.Changed(flagGPA) {
		raw := flags.Lookup(flagGPA).Value.String()
		gpa, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return input, fmt.Errorf("parse --%s: %w", flagGPA, err)
		}
		input.GPA = &gpa
	}
	if flags.Changed(flagFinancialNeed) {
		input.FinancialNeed, _ = flags.GetBool(flagFinancialNeed)
	}

	return input, nil
}

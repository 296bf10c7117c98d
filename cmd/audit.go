package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/scholarship-matcher/internal/ai"
	"github.com/spigell/scholarship-matcher/internal/ai/gemini"
	"github.com/spigell/scholarship-matcher/internal/audit"
	"github.com/spigell/scholarship-matcher/internal/logger"
	"github.com/spigell/scholarship-matcher/internal/report"
	"github.com/spigell/scholarship-matcher/internal/screening"
	"github.com/spigell/scholarship-matcher/internal/secrets"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Compare engine verdicts with a Gemini assessment of the same profile",
	Run: func(cmd *cobra.Command, _ []string) {
		runAudit(cmd)
	},
}

func init() {
	rootCmd.AddCommand(auditCmd)

	addProfileFlags(auditCmd.Flags())
}

func runAudit(cmd *cobra.Command) {
	ctx := context.Background()

	lg, config := setup()

	format, err := report.ParseFormat(config.Output.Format)
	if err != nil {
		lg.Fatal("parsing output format", zap.Error(err))
	}

	input, err := profileInput(cmd, config)
	if err != nil {
		lg.Fatal("reading profile flags", zap.Error(err))
	}
	profile, err := input.Profile()
	if err != nil {
		lg.Fatal("invalid student profile", zap.Error(err))
	}

	assessor, err := newAssessor(ctx, config.AI, lg)
	if err != nil {
		lg.Fatal("building ai assessor",
			zap.Error(err),
			zap.String("hint", "set ai.gemini.api-key-file or GEMINI_API_KEY"),
		)
	}

	offers, err := loadCatalog(ctx, config, screening.Default(), lg)
	if err != nil {
		lg.Fatal("loading the catalog", zap.Error(err))
	}

	passLogger := logger.WithCommonFields(logger.WithPass(lg, uuid.NewString(), offers.Source), ai.ProviderGemini, assessor.Model())
	auditor := audit.New(newEngine(config, passLogger), assessor, passLogger)

	_, result, err := auditor.Run(ctx, profile, offers.Items)
	if err != nil {
		passLogger.Fatal("running the audit", zap.Error(err))
	}

	if format == report.FormatJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			passLogger.Fatal("writing the audit", zap.Error(err))
		}
		return
	}

	fmt.Printf("%s agreed with the engine on %d of %d scholarships (%.0f%%)\n",
		result.Model, result.Agreed, result.Compared, result.Agreement()*100)
	for _, d := range result.Discrepancies {
		fmt.Printf("  - %s\n", d)
	}
}

func newAssessor(ctx context.Context, cfg *AIConfig, lg *zap.Logger) (ai.Assessor, error) {
	if cfg == nil || cfg.Gemini == nil {
		return nil, fmt.Errorf("gemini configuration is required for the audit")
	}

	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != ai.ProviderGemini {
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		File:  cfg.Gemini.APIKeyFile,
		Value: cfg.Gemini.APIKey,
		Env:   "GEMINI_API_KEY",
	})
	if err != nil {
		return nil, err
	}

	genLogger := logger.WithCommonFields(lg, ai.ProviderGemini, cfg.Gemini.Model).With(
		zap.Int("ai_retry_attempts", cfg.Gemini.MaxRetries),
	)

	generator, err := gemini.NewGenerator(ctx, apiKey, cfg.Gemini.Model, cfg.Gemini.MaxRetries, genLogger)
	if err != nil {
		return nil, err
	}

	return gemini.NewAssessor(generator, genLogger, cfg.Gemini.MaxLogLength), nil
}

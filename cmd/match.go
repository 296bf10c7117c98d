package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/scholarship-matcher/internal/eligibility"
	"github.com/spigell/scholarship-matcher/internal/logger"
	"github.com/spigell/scholarship-matcher/internal/report"
	"github.com/spigell/scholarship-matcher/internal/screening"
)

const (
	PromptYes                 = "Yes"
	PromptNo                  = "No"
	PromptBack                = "back"
	PromptExit                = "Exit"
	PromptReportByStatus      = "Report by status"
	PromptDetails             = "Show scholarship details"
	PromptAppendToExcludeFile = "Append not eligible scholarships to exclude file"
	PromptResultsToFile       = "Dump results to file"
)

var errExit = errors.New("exit requested")

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Check the student profile against every scholarship in the catalog",
	Run: func(cmd *cobra.Command, _ []string) {
		match(cmd)
	},
}

func init() {
	rootCmd.AddCommand(matchCmd)

	matchCmd.Flags().BoolP("interactive", "i", false, "fill in the student profile with an interactive form")
	matchCmd.Flags().BoolP("yes", "y", false, "print the report and exit without the action menu")
	addProfileFlags(matchCmd.Flags())
}

// match is the main command for the cli.
func match(cmd *cobra.Command) {
	ctx := context.Background()

	lg, config := setup()
	lg.Info("starting the scholarship-matcher", zap.String("version", version))

	format, err := report.ParseFormat(config.Output.Format)
	if err != nil {
		lg.Fatal("parsing output format", zap.Error(err))
	}

	input, err := profileInput(cmd, config)
	if err != nil {
		lg.Fatal("reading profile flags", zap.Error(err))
	}

	if interactive, _ := cmd.Flags().GetBool("interactive"); interactive {
		input, err = askProfile(input)
		if err != nil {
			lg.Fatal("exiting", zap.Error(err))
		}
	}

	profile, err := input.Profile()
	if err != nil {
		lg.Fatal("invalid student profile",
			zap.Error(err),
			zap.String("hint", "set the profile section in the config file, use profile flags or --interactive"),
		)
	}

	offers, err := loadCatalog(ctx, config, screening.Default(), lg)
	if err != nil {
		lg.Fatal("loading the catalog", zap.Error(err))
	}

	if offers.Len() == 0 {
		lg.Info("exiting", zap.String("reason", "no scholarships left after screening"))
		return
	}

	passLogger := logger.WithPass(lg, uuid.NewString(), offers.Source)

	if config.Engine.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, config.Engine.Timeout)
		defer cancel()
	}

	pass, err := newEngine(config, passLogger).Run(ctx, profile, offers.Items)
	if err != nil {
		passLogger.Fatal("evaluating the catalog", zap.Error(err))
	}

	if err := report.Write(os.Stdout, format, pass.Results); err != nil {
		passLogger.Fatal("writing the report", zap.Error(err))
	}

	if yes, _ := cmd.Flags().GetBool("yes"); yes || format == report.FormatJSON {
		return
	}

	results := pass.Results
	for {
		items := []string{PromptReportByStatus, PromptDetails, PromptResultsToFile}
		if config.Screening.ExcludeFile != "" {
			items = append(items, PromptAppendToExcludeFile)
		}

		prompt := promptui.Select{
			Label: "What next?",
			Items: append(items, PromptExit),
		}
		_, action, err := prompt.Run()
		if err != nil {
			passLogger.Fatal("exiting", zap.Error(err))
		}

		results, err = handleAction(action, passLogger, config, results)
		if err != nil {
			if errors.Is(err, errExit) {
				return
			}
			passLogger.Fatal("exiting", zap.Error(err))
		}
	}
}

func handleAction(action string, lg *zap.Logger, config *Config, results []eligibility.MatchResult) ([]eligibility.MatchResult, error) {
	switch action {
	case PromptExit:
		lg.Info("exiting", zap.String("reason", "got exit from prompt"))
		return results, errExit
	case PromptReportByStatus:
		pretty, _ := json.MarshalIndent(report.ByStatus(results), "", "  ")
		lg.Info(string(pretty), zap.Int("scholarships count", len(results)))
		return results, nil
	case PromptDetails:
		return results, showDetails(results)
	case PromptResultsToFile:
		filename, err := report.DumpToTmpFile(results)
		if err != nil {
			return results, fmt.Errorf("dump results to file: %w", err)
		}
		lg.Info("dumping result to file", zap.String("filename", filename))
		return results, nil
	case PromptAppendToExcludeFile:
		return dismissNotEligible(lg, config.Screening.ExcludeFile, results)
	default:
		return results, fmt.Errorf("invalid action: %s", action)
	}
}

// dismissNotEligible appends NONE results to the exclude file and drops them
// from the current list.
func dismissNotEligible(lg *zap.Logger, excludeFile string, results []eligibility.MatchResult) ([]eligibility.MatchResult, error) {
	var none []eligibility.MatchResult
	for _, r := range results {
		if r.Status == eligibility.StatusNone {
			none = append(none, r)
		}
	}
	if len(none) == 0 {
		lg.Info("nothing to exclude", zap.String("reason", "no not eligible scholarships in the list"))
		return results, nil
	}

	if err := screening.AppendToFile(excludeFile, screening.DismissResults(none, time.Now())); err != nil {
		return results, err
	}
	lg.Info("appended to exclude file", zap.String("filename", excludeFile), zap.Int("count", len(none)))

	return slices.DeleteFunc(results, func(r eligibility.MatchResult) bool {
		return r.Status == eligibility.StatusNone
	}), nil
}

func showDetails(results []eligibility.MatchResult) error {
	for {
		items := make([]string, 0, len(results)+1)
		for _, r := range results {
			items = append(items, fmt.Sprintf("%s %s / %s / %s %d", r.ScholarshipID, r.ScholarshipName, r.Organization, r.Status, r.MatchScore))
		}

		resultPrompt := promptui.Select{
			Label: "Choose a scholarship and press ENTER",
			Items: append(items, PromptBack),
			Size:  10,
		}

		idx, selected, err := resultPrompt.Run()
		if err != nil {
			return err
		}
		if selected == PromptBack {
			return nil
		}

		r := results[idx]
		fmt.Printf("\n%s (%s)\n  Organization: %s\n  Amount: %s\n  Status: %s, score %d\n  %s\n",
			r.ScholarshipName, r.ScholarshipID, r.Organization, report.FormatAmount(r.Amount),
			r.Status.Label(), r.MatchScore, r.Reason)
		for _, missing := range r.MissingRequirements {
			fmt.Printf("  - %s\n", missing)
		}
		fmt.Println()
	}
}

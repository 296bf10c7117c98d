package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/scholarship-matcher/internal/catalog"
	"github.com/spigell/scholarship-matcher/internal/report"
	"github.com/spigell/scholarship-matcher/internal/screening"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List the scholarships left after screening",
	Run: func(cmd *cobra.Command, _ []string) {
		dump, _ := cmd.Flags().GetBool("dump")
		listCatalog(dump)
	},
}

func init() {
	catalogCmd.Flags().Bool("dump", false, "also write the screened catalog as JSON to a temporary file")
	rootCmd.AddCommand(catalogCmd)
}

func listCatalog(dump bool) {
	lg, config := setup()

	format, err := report.ParseFormat(config.Output.Format)
	if err != nil {
		lg.Fatal("parsing output format", zap.Error(err))
	}

	steps := screening.Default()
	offers, err := loadCatalog(context.Background(), config, steps, lg)
	if err != nil {
		lg.Fatal("loading the catalog", zap.Error(err))
	}

	for _, status := range screening.Describe(steps) {
		lg.Debug("screening status",
			zap.String("name", status.Name),
			zap.Bool("enabled", status.Enabled),
			zap.Any("details", status.Details),
		)
	}

	if dump {
		filename, err := offers.DumpToTmpFile()
		if err != nil {
			lg.Fatal("dumping the catalog", zap.Error(err))
		}
		lg.Info("dumping catalog to file", zap.String("filename", filename))
	}

	if format == report.FormatJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(offers); err != nil {
			lg.Fatal("writing the catalog", zap.Error(err))
		}
		return
	}

	if err := writeCatalog(os.Stdout, offers); err != nil {
		lg.Fatal("writing the catalog", zap.Error(err))
	}
}

func writeCatalog(w io.Writer, offers *catalog.Catalog) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSCHOLARSHIP\tORGANIZATION\tAMOUNT\tDEADLINE")
	for _, s := range offers.Items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", s.ID, s.Name, s.Organization, report.FormatAmount(s.Amount), s.Deadline)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	orgs := offers.Organizations()
	_, err := fmt.Fprintf(w, "\n%d scholarships from %s, offered by %d organizations: %s\n",
		offers.Len(), offers.Source, len(orgs), strings.Join(orgs, ", "))
	return err
}

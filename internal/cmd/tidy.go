package cmd

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"loanprep/pkg/data"
)

func newTidyCmd(a *app) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "tidy",
		Short: "Decompose packed dates and normalize DELINQUENT without splitting",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.finish(a.runTidy(cmd, output))
		},
	}
	addInputFlags(cmd)
	cmd.Flags().StringVar(&output, "output", "", "file to write (.csv or .xlsx)")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

func (a *app) runTidy(cmd *cobra.Command, output string) error {
	f, err := a.readInput()
	if err != nil {
		return err
	}
	tidy, err := a.newPipeline().TidyData(f)
	if err != nil {
		return fmt.Errorf("tidy: %w", err)
	}

	if strings.EqualFold(filepath.Ext(output), ".xlsx") {
		err = data.WriteXLSX(output, data.Sheet{Name: "tidy", Frame: tidy})
	} else {
		err = data.SaveCSV(output, tidy)
	}
	if err != nil {
		return err
	}

	a.logger.Info("wrote tidy data", slog.String("path", output), slog.Int("rows", tidy.Nrow()))
	fmt.Fprintln(cmd.OutOrStdout(), output)
	return nil
}

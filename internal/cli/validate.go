package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/loueydridii/The-Flexi-Income-Intelligence-Suite/internal/metrics"
	"github.com/loueydridii/The-Flexi-Income-Intelligence-Suite/internal/validate"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the CSV exports without loading them",
	Long: `validate runs the CSV-layer checks: primary-key uniqueness,
foreign-key existence, numeric ranges, completeness, and consistency
rules. It never touches a database and exits non-zero when any check
reports an error (warnings do not fail the run).`,
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().String("data-dir", "", "directory holding the source CSV files")
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	runner := &validate.Runner{DataDir: cfg.DataDir, Log: newLogger(cmd)}

	start := time.Now()
	res, err := runner.Run()
	metrics.RecordStep("validate", err, time.Since(start))
	if err != nil {
		return err
	}

	validate.Render(os.Stdout, res)
	if !res.OK() {
		return fmt.Errorf("validation failed with %d error(s)", len(res.Report.Errors))
	}
	return nil
}

package cli

import (
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/loueydridii/The-Flexi-Income-Intelligence-Suite/internal/config"
	"github.com/loueydridii/The-Flexi-Income-Intelligence-Suite/internal/etl"
	"github.com/loueydridii/The-Flexi-Income-Intelligence-Suite/internal/metrics"
	"github.com/loueydridii/The-Flexi-Income-Intelligence-Suite/internal/metrics/prompush"
	"github.com/loueydridii/The-Flexi-Income-Intelligence-Suite/internal/warehouse"

	// Register the warehouse backends.
	_ "github.com/loueydridii/The-Flexi-Income-Intelligence-Suite/internal/warehouse/all"
)

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Load the CSV exports into the warehouse",
	RunE:  runLoad,
}

func init() {
	f := loadCmd.Flags()
	f.String("data-dir", "", "directory holding the source CSV files")
	f.String("backend", "", `warehouse backend: "sqlite" or "postgres"`)
	f.String("dsn", "", "warehouse connection string (file path for sqlite)")
	f.Int("batch-size", 0, "fact-table batch size")
	f.String("metrics-backend", "", `metrics backend: "pushgateway" to enable`)
	f.String("pushgateway-url", "", "Prometheus Pushgateway base URL")
	rootCmd.AddCommand(loadCmd)
}

func runLoad(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log := newLogger(cmd)

	if cfg.Metrics.Backend == "pushgateway" {
		backend, err := prompush.NewBackend(cfg.Metrics.Job, cfg.Metrics.PushgatewayURL)
		if err != nil {
			return err
		}
		metrics.SetBackend(backend)
		defer func() {
			if err := metrics.Flush(); err != nil {
				log.Warn("metrics push failed", "err", err)
			}
		}()
	}

	ctx := cmd.Context()
	repo, err := warehouse.New(ctx, warehouse.Config{Kind: cfg.Warehouse.Kind, DSN: cfg.Warehouse.DSN})
	if err != nil {
		return err
	}
	defer repo.Close()

	runner := &etl.Runner{
		Repo:      repo,
		DataDir:   cfg.DataDir,
		BatchSize: cfg.BatchSize,
		Log:       log,
	}
	sum, err := runner.Run(ctx)
	if err != nil {
		return err
	}

	printLoadSummary(sum)
	if sum.Status != etl.StatusSuccess {
		return fmt.Errorf("load finished with status %s", sum.Status)
	}
	return nil
}

// printLoadSummary writes the per-table row counts and the integrity verdict
// to stdout.
func printLoadSummary(sum *etl.Summary) {
	printer := message.NewPrinter(language.English)

	table := tablewriter.NewWriter(os.Stdout)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Table", "Rows", "Status"})
	for _, res := range sum.Tables {
		status := "ok"
		if res.Err != nil {
			status = res.Err.Error()
		}
		table.Append([]string{res.Table, printer.Sprintf("%d", res.Rows), status})
	}
	table.Render()

	if sum.Integrity != nil {
		for _, c := range sum.Integrity.Checks {
			mark := "✓"
			if c.Orphans > 0 {
				mark = "✗"
			}
			printer.Printf("  %s %s -> %s (%d orphan(s))\n", mark, c.ForeignKey, c.DimTable, c.Orphans)
		}
	}
	printer.Printf("%s: %d records in %.2fs (run %s)\n",
		sum.Status, sum.Records, sum.Duration.Seconds(), sum.RunID)
}

// loadConfig resolves the layered configuration and applies explicit flag
// overrides on top.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return cfg, err
	}

	f := cmd.Flags()
	if f.Changed("data-dir") {
		cfg.DataDir, _ = f.GetString("data-dir")
	}
	if f.Changed("backend") {
		cfg.Warehouse.Kind, _ = f.GetString("backend")
	}
	if f.Changed("dsn") {
		cfg.Warehouse.DSN, _ = f.GetString("dsn")
	}
	if f.Changed("batch-size") {
		cfg.BatchSize, _ = f.GetInt("batch-size")
	}
	if f.Changed("metrics-backend") {
		cfg.Metrics.Backend, _ = f.GetString("metrics-backend")
	}
	if f.Changed("pushgateway-url") {
		cfg.Metrics.PushgatewayURL, _ = f.GetString("pushgateway-url")
	}

	return cfg, cfg.Validate()
}

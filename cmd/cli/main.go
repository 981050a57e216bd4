package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/go-resty/resty/v2"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"battwatch/domain/artifact"
	"battwatch/domain/battery"
	"battwatch/internal/analysis"
	"battwatch/internal/config"
	"battwatch/internal/dataset"
	"battwatch/internal/modelinfo"
	"battwatch/internal/store"
)

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "battwatch-cli",
		Short: "battwatch CLI for dataset statistics and artifact management",
	}

	rootCmd.AddCommand(
		newStatsCmd(),
		newInspectCmd(),
		newUploadCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func openStore() (*config.Config, *store.ArtifactStore, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	artifactStore, err := store.NewArtifactStore(cfg.Paths.DataDir)
	if err != nil {
		return nil, nil, err
	}
	return cfg, artifactStore, nil
}

func newStatsCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print summary statistics for the stored battery dataset",
		Long: `Load the battery dataset from DATA_DIR and print row counts,
battery units, failure rate and per-feature statistics.

Example: battwatch-cli stats --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, artifactStore, err := openStore()
			if err != nil {
				return err
			}

			loader := dataset.NewLoader(artifactStore)
			ds, err := loader.Load()
			if err != nil {
				return fmt.Errorf("no dataset available, upload one first: %w", err)
			}

			summary := battery.Summarize(ds)
			features := analysis.ProfileFeatures(ds)

			if asJSON {
				return printJSON(map[string]interface{}{"summary": summary, "features": features})
			}

			fmt.Printf("Total records:  %d\n", summary.TotalRecords)
			fmt.Printf("Battery units:  %d\n", summary.BatteryUnits)
			fmt.Printf("Features:       %d\n", summary.FeatureCount)
			fmt.Printf("Failure rate:   %.1f%%\n\n", summary.FailureRate)
			fmt.Printf("%-22s %8s %10s %10s %10s\n", "feature", "n", "mean", "stddev", "corr")
			for _, f := range features {
				fmt.Printf("%-22s %8d %10.3f %10.3f %10.3f\n", f.Name, f.SampleSize, f.Mean, f.StdDev, f.FailureCorr)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of a table")
	return cmd
}

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect",
		Short: "Show stored artifact metadata (dataset and model files)",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, artifactStore, err := openStore()
			if err != nil {
				return err
			}

			inspector := modelinfo.NewInspector(artifactStore, nil)
			return printJSON(inspector.InspectAll(context.Background()))
		},
	}
}

func newUploadCmd() *cobra.Command {
	var server string

	cmd := &cobra.Command{
		Use:   "upload [kind] [file]",
		Short: "Upload an artifact to a running dashboard",
		Long: `Push a dataset or model file to a running battwatch server.

Kind is one of: dataset, xgboost, lstm, svm.

Example: battwatch-cli upload dataset ./nasa_battery_data_combined.csv --server http://localhost:8080`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := artifact.ParseKind(args[0])
			if err != nil {
				return err
			}
			path := args[1]
			if !kind.AcceptsExtension(path) {
				return fmt.Errorf("%s does not accept %s (expected %v)", kind.Label(), path, kind.Extensions())
			}

			endpoint := server + "/upload/model/" + string(kind)
			if kind == artifact.KindDataset {
				endpoint = server + "/upload/dataset"
			}

			resp, err := resty.New().R().
				SetFile("file", path).
				SetHeader("HX-Request", "true").
				Post(endpoint)
			if err != nil {
				return fmt.Errorf("upload failed: %w", err)
			}
			if resp.IsError() {
				return fmt.Errorf("server rejected upload: %s", resp.String())
			}

			fmt.Printf("Uploaded %s from %s\n", kind.Label(), path)
			return nil
		},
	}

	cmd.Flags().StringVar(&server, "server", "http://localhost:8080", "Dashboard base URL")
	return cmd
}

func printJSON(v interface{}) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/shopstack/shopper-etl/internal/pipeline"
)

var runCSVPath string

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full ETL pipeline",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		log := zap.L()

		csvPath := cfg.CSVFilePath
		if runCSVPath != "" {
			csvPath = runCSVPath
		}
		if csvPath == "" {
			return eris.New("csv file path is required (csv_file_path in config, or --csv)")
		}
		log.Info("stage", zap.String("state", string(pipeline.StateConfigLoaded)), zap.String("csv", csvPath))

		st, err := openStore(ctx, cfg)
		if err != nil {
			return eris.Wrap(err, "open store")
		}
		defer st.Close()

		if err := pipeline.New(st, csvPath).Run(ctx); err != nil {
			// Already logged with stage context by the pipeline.
			return eris.Wrap(err, "run pipeline")
		}

		log.Info("run complete", zap.String("csv", csvPath))
		return nil
	},
}

func init() {
	runCmd.Flags().StringVar(&runCSVPath, "csv", "", "path to source CSV (overrides csv_file_path)")
	rootCmd.AddCommand(runCmd)
}

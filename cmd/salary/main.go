// Command salary trains the salary model and serves the prediction form.
//
//	salary train --dataset Employers_data.csv --model model.gob
//	salary serve --model model.gob --addr :8501
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/salary-predictor/internal/config"
	"github.com/YuminosukeSato/salary-predictor/pkg/errors"
	"github.com/YuminosukeSato/salary-predictor/pkg/log"
)

type rootOptions struct {
	envFile  string
	logLevel string
	cfg      *config.Config
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		code := errorCode(err)
		fields := []any{log.ErrorCodeKey, code, log.ErrAttr(err)}
		if hint, ok := suggestions[code]; ok {
			fields = append(fields, log.SuggestionKey, hint)
		}
		log.GetLogger().Error("command failed", fields...)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "salary",
		Short:         "Employee salary prediction",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(opts.envFile)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("log-level") {
				cfg.Log.Level = opts.logLevel
			}
			if err := log.SetupLogger(cfg.Log.Level); err != nil {
				return err
			}
			opts.cfg = cfg
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&opts.envFile, "env", ".env", "dotenv file to load before reading the environment")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	cmd.AddCommand(newTrainCmd(opts), newServeCmd(opts), newExportCmd(opts))
	return cmd
}

var suggestions = map[string]string{
	"DATASET_NOT_FOUND": "check --dataset or SALARY_DATASET",
	"MISSING_COLUMNS":   "the dataset needs Experience_Years, Education_Level, Job_Title, Department, Location, Gender and Salary",
	"ARTIFACT":          "run `salary train` to write a new model",
}

// errorCode gives each fatal error class a stable value for log queries.
func errorCode(err error) string {
	var (
		dnf *errors.DatasetNotFoundError
		mc  *errors.MissingColumnsError
		ve  *errors.ValidationError
	)
	switch {
	case errors.As(err, &dnf):
		return "DATASET_NOT_FOUND"
	case errors.As(err, &mc):
		return "MISSING_COLUMNS"
	case errors.As(err, &ve):
		return "INVALID_DATA"
	case errors.Is(err, errors.ErrArtifactNotFound),
		errors.Is(err, errors.ErrArtifactCorrupt),
		errors.Is(err, errors.ErrSchemaMismatch):
		return "ARTIFACT"
	default:
		return "INTERNAL"
	}
}

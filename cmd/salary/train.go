package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/salary-predictor/internal/trainer"
)

func newTrainCmd(root *rootOptions) *cobra.Command {
	var (
		dataset  string
		model    string
		trees    int
		seed     int64
		testSize float64
		plot     string
		jobs     int
	)

	cmd := &cobra.Command{
		Use:   "train",
		Short: "Fit the pipeline on a dataset and write the model artifact",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := trainer.OptionsFromConfig(root.cfg)
			flags := cmd.Flags()
			if flags.Changed("dataset") {
				opts.Dataset = dataset
			}
			if flags.Changed("model") {
				opts.ModelPath = model
			}
			if flags.Changed("trees") {
				opts.Trees = trees
			}
			if flags.Changed("seed") {
				opts.Seed = seed
			}
			if flags.Changed("test-size") {
				opts.TestSize = testSize
			}
			if flags.Changed("plot") {
				opts.Plot = plot
			}
			if flags.Changed("jobs") {
				opts.NJobs = jobs
			}
			opts.Out = os.Stdout

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			_, err := trainer.Train(ctx, opts)
			return err
		},
	}

	f := cmd.Flags()
	f.StringVar(&dataset, "dataset", "Employers_data.csv", "CSV or XLSX dataset path")
	f.StringVar(&model, "model", "model.gob", "artifact output path")
	f.IntVar(&trees, "trees", 100, "number of trees in the forest")
	f.Int64Var(&seed, "seed", 42, "random seed for the split and the forest")
	f.Float64Var(&testSize, "test-size", 0.2, "fraction of rows held out for evaluation")
	f.StringVar(&plot, "plot", "", "write a feature importance chart to this PNG")
	f.IntVar(&jobs, "jobs", -1, "goroutines fitting trees (-1 for all CPUs)")
	return cmd
}

package main

import (
	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/salary-predictor/internal/dataset"
	"github.com/YuminosukeSato/salary-predictor/pkg/log"
)

func newExportCmd(root *rootOptions) *cobra.Command {
	var in, out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Convert a dataset to an XLSX workbook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("dataset") {
				in = root.cfg.Data.Dataset
			}
			f, err := dataset.Load(in)
			if err != nil {
				return err
			}
			if err := dataset.WriteXLSX(f, out); err != nil {
				return err
			}
			log.GetLoggerWithName("export").Info("dataset exported",
				log.PathKey, out,
				log.SamplesKey, f.NRows(),
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&in, "dataset", "Employers_data.csv", "CSV or XLSX dataset path")
	cmd.Flags().StringVar(&out, "out", "", "workbook to write")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

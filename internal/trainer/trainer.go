// Package trainer fits the salary pipeline from a dataset file and writes
// the model artifact.
package trainer

import (
	"context"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/YuminosukeSato/salary-predictor/core/frame"
	"github.com/YuminosukeSato/salary-predictor/internal/artifact"
	"github.com/YuminosukeSato/salary-predictor/internal/config"
	"github.com/YuminosukeSato/salary-predictor/internal/dataset"
	"github.com/YuminosukeSato/salary-predictor/internal/report"
	"github.com/YuminosukeSato/salary-predictor/metrics"
	"github.com/YuminosukeSato/salary-predictor/pkg/log"
	"github.com/YuminosukeSato/salary-predictor/preprocessing"
	"github.com/YuminosukeSato/salary-predictor/sklearn/ensemble"
	"github.com/YuminosukeSato/salary-predictor/sklearn/model_selection"
	"github.com/YuminosukeSato/salary-predictor/sklearn/pipeline"
)

// Options controls one training run.
type Options struct {
	Dataset   string
	ModelPath string
	Trees     int
	Seed      int64
	TestSize  float64
	// NJobs is the number of goroutines fitting trees; <= 0 uses every CPU.
	NJobs int
	// Plot, when set, is where the feature importance chart is written.
	Plot string
	// Out receives the human-readable confirmation line. Nil discards it.
	Out io.Writer
	// Logger defaults to the "trainer" component logger.
	Logger log.Logger
}

// OptionsFromConfig maps the application config onto training options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Dataset:   cfg.Data.Dataset,
		ModelPath: cfg.Model.Path,
		Trees:     cfg.Model.Trees,
		Seed:      cfg.Model.Seed,
		TestSize:  cfg.Data.TestSize,
		NJobs:     -1,
		Plot:      cfg.Model.Plot,
	}
}

// Result describes a completed run.
type Result struct {
	Pipeline  *pipeline.Pipeline
	ModelPath string
	TrainRows int
	TestRows  int
	// Holdout is nil when the test split is empty or could not be scored.
	Holdout *metrics.Report
}

// Train loads the dataset, fits the pipeline on the train split, saves
// the artifact and scores the test split. Scoring is informational: it is
// logged and returned but never fails the run.
func Train(ctx context.Context, opts Options) (*Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.GetLoggerWithName("trainer")
	}
	start := time.Now()

	raw, err := dataset.Load(opts.Dataset)
	if err != nil {
		return nil, err
	}
	logger.Info("dataset loaded",
		log.PathKey, opts.Dataset,
		log.SamplesKey, raw.NRows(),
		log.ColumnsKey, raw.Columns(),
	)

	df, err := dataset.Prepare(raw)
	if err != nil {
		return nil, err
	}
	X, y, err := dataset.Split(df)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	trainIdx, testIdx, err := model_selection.TrainTestSplit(X.NRows(), opts.TestSize, opts.Seed)
	if err != nil {
		return nil, err
	}
	XTrain, yTrain := X.Take(trainIdx), take(y, trainIdx)

	pipe := pipeline.New(
		preprocessing.NewColumnTransformer(dataset.Categorical,
			preprocessing.WithEncoder(preprocessing.NewOneHotEncoder(
				preprocessing.WithHandleUnknown(preprocessing.HandleUnknownIgnore))),
			preprocessing.WithRemainder(preprocessing.RemainderPassthrough),
		),
		ensemble.NewRandomForestRegressor(
			ensemble.WithNEstimators(opts.Trees),
			ensemble.WithRandomState(opts.Seed),
			ensemble.WithNJobs(opts.NJobs),
		),
	)

	logger.Info("fitting pipeline",
		log.PhaseKey, log.PhaseTraining,
		log.SamplesKey, len(trainIdx),
		log.EstimatorsKey, opts.Trees,
		log.RandomSeedKey, opts.Seed,
		log.TestSizeKey, opts.TestSize,
	)
	if err := pipe.Fit(XTrain, yTrain); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := artifact.Save(pipe, opts.ModelPath); err != nil {
		return nil, err
	}
	if opts.Out != nil {
		fmt.Fprintf(opts.Out, "Model trained and saved as %s\n", opts.ModelPath)
	}

	result := &Result{
		Pipeline:  pipe,
		ModelPath: opts.ModelPath,
		TrainRows: len(trainIdx),
		TestRows:  len(testIdx),
	}
	if len(testIdx) > 0 {
		result.Holdout = holdout(logger, pipe, X.Take(testIdx), take(y, testIdx))
	}

	if opts.Plot != "" {
		if err := plotImportances(pipe, opts.Plot); err != nil {
			logger.Warn("feature importance chart failed", log.ErrAttr(err))
		} else {
			logger.Info("feature importance chart written", log.PathKey, opts.Plot)
		}
	}

	logger.Info("training complete",
		log.OperationKey, log.OperationFit,
		log.PathKey, opts.ModelPath,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return result, nil
}

// holdout scores the test split and logs the result. Failures are logged
// and yield nil.
func holdout(logger log.Logger, pipe *pipeline.Pipeline, X *frame.Frame, y []float64) *metrics.Report {
	pred, err := pipe.Predict(X)
	if err != nil {
		logger.Warn("holdout prediction failed", log.PhaseKey, log.PhaseTesting, log.ErrAttr(err))
		return nil
	}
	r, err := metrics.Evaluate(y, pred)
	if err != nil {
		logger.Warn("holdout scoring failed", log.PhaseKey, log.PhaseTesting, log.ErrAttr(err))
		return nil
	}

	fields := []any{
		log.OperationKey, log.OperationScore,
		log.PhaseKey, log.PhaseTesting,
		log.SamplesKey, r.N,
		log.MAEKey, r.MAE,
		log.RMSEKey, r.RMSE,
	}
	// テストデータの分散が0のときR²は定義されない
	if !math.IsNaN(r.R2) {
		fields = append(fields, log.R2ScoreKey, r.R2)
	}
	logger.Info("holdout evaluation", fields...)
	return &r
}

func take(values []float64, idx []int) []float64 {
	out := make([]float64, len(idx))
	for i, j := range idx {
		out[i] = values[j]
	}
	return out
}

func plotImportances(pipe *pipeline.Pipeline, path string) error {
	imp, err := pipe.FeatureImportances()
	if err != nil {
		return err
	}
	return report.ImportanceChart(imp, path, report.DefaultTop)
}

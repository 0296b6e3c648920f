// Package ensemble provides bagged tree ensembles.
package ensemble

import (
	"fmt"
	"math/rand"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/salary-predictor/core/model"
	"github.com/YuminosukeSato/salary-predictor/core/parallel"
	"github.com/YuminosukeSato/salary-predictor/pkg/errors"
	"github.com/YuminosukeSato/salary-predictor/pkg/log"
	"github.com/YuminosukeSato/salary-predictor/sklearn/tree"
)

// predictParallelThreshold 以下の行数では予測を逐次実行する
const predictParallelThreshold = 256

var (
	_ model.Regressor          = (*RandomForestRegressor)(nil)
	_ model.FeatureImportancer = (*RandomForestRegressor)(nil)
)

// RandomForestRegressor はscikit-learn互換のランダムフォレスト回帰
//
// 各木はブートストラップ標本で学習され、予測は全ての木の平均になる。
// 木iの乱数シードは RandomState+i で、学習結果はスケジューリングに依存しない。
type RandomForestRegressor struct {
	State *model.StateManager

	// NEstimators は木の本数 (デフォルト: 100)
	NEstimators int
	// Bootstrap はブートストラップ標本を使うかどうか (デフォルト: true)
	Bootstrap bool
	// RandomState は乱数シード
	RandomState int64
	// NJobs は並列数。0以下で全CPUを使う (デフォルト: -1)
	NJobs int

	MaxDepth        int
	MinSamplesSplit int
	MinSamplesLeaf  int
	MaxFeatures     int

	Estimators []*tree.DecisionTreeRegressor
	NFeatures  int
}

// Option はRandomForestRegressorの設定オプション
type Option func(*RandomForestRegressor)

// WithNEstimators は木の本数を設定
func WithNEstimators(n int) Option {
	return func(rf *RandomForestRegressor) { rf.NEstimators = n }
}

// WithBootstrap はブートストラップの有無を設定
func WithBootstrap(b bool) Option {
	return func(rf *RandomForestRegressor) { rf.Bootstrap = b }
}

// WithRandomState は乱数シードを設定
func WithRandomState(seed int64) Option {
	return func(rf *RandomForestRegressor) { rf.RandomState = seed }
}

// WithNJobs は並列数を設定
func WithNJobs(n int) Option {
	return func(rf *RandomForestRegressor) { rf.NJobs = n }
}

// WithMaxDepth は各木の最大深さを設定
func WithMaxDepth(d int) Option {
	return func(rf *RandomForestRegressor) { rf.MaxDepth = d }
}

// WithMinSamplesLeaf は各木の葉の最小サンプル数を設定
func WithMinSamplesLeaf(n int) Option {
	return func(rf *RandomForestRegressor) { rf.MinSamplesLeaf = n }
}

// WithMaxFeatures は分割ごとに検討する特徴量数を設定
func WithMaxFeatures(k int) Option {
	return func(rf *RandomForestRegressor) { rf.MaxFeatures = k }
}

// NewRandomForestRegressor は新しいRandomForestRegressorを作成する
//
// 使用例:
//
//	rf := ensemble.NewRandomForestRegressor(
//	    ensemble.WithNEstimators(100),
//	    ensemble.WithRandomState(42),
//	)
//	err := rf.Fit(X, y)
//	pred, err := rf.Predict(X)
func NewRandomForestRegressor(opts ...Option) *RandomForestRegressor {
	rf := &RandomForestRegressor{
		State:           model.NewStateManager(),
		NEstimators:     100,
		Bootstrap:       true,
		RandomState:     time.Now().UnixNano(),
		NJobs:           -1,
		MinSamplesSplit: 2,
		MinSamplesLeaf:  1,
	}
	for _, opt := range opts {
		opt(rf)
	}
	return rf
}

// Fit はフォレストを学習する
func (rf *RandomForestRegressor) Fit(X, y mat.Matrix) error {
	// 再学習に失敗した場合は未学習として扱う
	rf.State.Reset()
	if rf.NEstimators < 1 {
		return errors.NewValidationError("n_estimators", "must be >= 1", rf.NEstimators)
	}
	rows, target, err := tree.ToRows("RandomForestRegressor.Fit", X, y)
	if err != nil {
		return err
	}

	logger := log.GetLoggerWithName("RandomForestRegressor")
	start := time.Now()
	n := len(rows)

	estimators := make([]*tree.DecisionTreeRegressor, rf.NEstimators)
	errs := make([]error, rf.NEstimators)

	parallel.Parallelize(rf.NEstimators, rf.NJobs, func(s, e int) {
		for i := s; i < e; i++ {
			seed := rf.RandomState + int64(i)
			sample := bootstrapSample(n, rf.Bootstrap, rand.New(rand.NewSource(seed)))
			t := tree.NewDecisionTreeRegressor(
				tree.WithMaxDepth(rf.MaxDepth),
				tree.WithMinSamplesSplit(rf.MinSamplesSplit),
				tree.WithMinSamplesLeaf(rf.MinSamplesLeaf),
				tree.WithMaxFeatures(rf.MaxFeatures),
				tree.WithRandomState(seed),
			)
			errs[i] = errors.SafeExecute("DecisionTreeRegressor.Fit", func() error {
				return t.FitSample(rows, target, sample)
			})
			estimators[i] = t
		}
	})

	for i, err := range errs {
		if err != nil {
			return errors.Wrapf(err, "fit estimator %d", i)
		}
	}

	rf.Estimators = estimators
	rf.NFeatures = len(rows[0])
	if rf.State == nil {
		rf.State = model.NewStateManager()
	}
	rf.State.SetFitted(rf.NFeatures, n)

	logger.Debug("forest fitted",
		log.OperationKey, log.OperationFit,
		log.EstimatorsKey, rf.NEstimators,
		log.SamplesKey, n,
		log.FeaturesKey, rf.NFeatures,
		log.RandomSeedKey, rf.RandomState,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return nil
}

// bootstrapSample は復元抽出したn個のインデックスを返す
func bootstrapSample(n int, bootstrap bool, rng *rand.Rand) []int {
	sample := make([]int, n)
	for j := range sample {
		if bootstrap {
			sample[j] = rng.Intn(n)
		} else {
			sample[j] = j
		}
	}
	return sample
}

// Predict は全ての木の予測の平均を n×1 行列で返す
func (rf *RandomForestRegressor) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !rf.IsFitted() {
		return nil, errors.NewNotFittedError("RandomForestRegressor", "Predict")
	}
	r, c := X.Dims()
	if c != rf.NFeatures {
		return nil, errors.NewDimensionError("RandomForestRegressor.Predict", rf.NFeatures, c, 1)
	}
	if r == 0 {
		return nil, errors.NewModelError("RandomForestRegressor.Predict", "empty data", errors.ErrEmptyData)
	}

	out := mat.NewDense(r, 1, nil)
	parallel.ParallelizeWithThreshold(r, predictParallelThreshold, rf.NJobs, func(s, e int) {
		row := make([]float64, c)
		for i := s; i < e; i++ {
			mat.Row(row, i, X)
			var sum float64
			for _, t := range rf.Estimators {
				sum += t.PredictRow(row)
			}
			out.Set(i, 0, sum/float64(len(rf.Estimators)))
		}
	})
	return out, nil
}

// IsFitted は学習済みかどうかを返す
func (rf *RandomForestRegressor) IsFitted() bool {
	return rf.State.IsFitted() && len(rf.Estimators) > 0
}

// FeatureImportances は各木の不純度ベース重要度の平均を返す
func (rf *RandomForestRegressor) FeatureImportances() ([]float64, error) {
	if !rf.IsFitted() {
		return nil, errors.NewNotFittedError("RandomForestRegressor", "FeatureImportances")
	}
	out := make([]float64, rf.NFeatures)
	for _, t := range rf.Estimators {
		imp, err := t.FeatureImportances()
		if err != nil {
			return nil, err
		}
		for j, v := range imp {
			out[j] += v
		}
	}
	var total float64
	for j := range out {
		out[j] /= float64(len(rf.Estimators))
		total += out[j]
	}
	// 全ての木が単一ノードの場合は0のまま
	if total > 0 {
		for j := range out {
			out[j] /= total
		}
	}
	return out, nil
}

// String はモデルの文字列表現を返す
func (rf *RandomForestRegressor) String() string {
	return fmt.Sprintf("RandomForestRegressor(n_estimators=%d, bootstrap=%t, random_state=%d)",
		rf.NEstimators, rf.Bootstrap, rf.RandomState)
}

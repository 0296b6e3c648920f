// Package tree implements CART decision trees for regression.
//
// Trees are stored as a flat slice of nodes so that a fitted tree can be
// persisted with encoding/gob without custom marshalling.
package tree

import (
	"fmt"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/salary-predictor/core/model"
	"github.com/YuminosukeSato/salary-predictor/pkg/errors"
)

// Leaf marks a node without a split in Node.Feature.
const Leaf = -1

var _ model.Regressor = (*DecisionTreeRegressor)(nil)

// Node is one node of a fitted tree. Samples with x[Feature] <= Threshold
// go to Left, the rest to Right. Value is the mean target of the node.
type Node struct {
	Feature   int
	Threshold float64
	Left      int
	Right     int
	Value     float64
	NSamples  int
	Impurity  float64
}

// DecisionTreeRegressor is a CART regressor using the squared error
// criterion.
type DecisionTreeRegressor struct {
	State *model.StateManager

	// MaxDepth limits the depth of the tree (root depth = 0). 0 means unlimited.
	MaxDepth int
	// MinSamplesSplit is the minimum number of samples needed to split a node.
	MinSamplesSplit int
	// MinSamplesLeaf is the minimum number of samples in each child.
	MinSamplesLeaf int
	// MaxFeatures is the number of features drawn per split. 0 means all.
	MaxFeatures int
	// RandomState seeds feature sub-sampling.
	RandomState int64

	Nodes       []Node
	NFeatures   int
	Importances []float64
}

// Option configures a DecisionTreeRegressor.
type Option func(*DecisionTreeRegressor)

// WithMaxDepth sets the maximum depth.
func WithMaxDepth(d int) Option {
	return func(t *DecisionTreeRegressor) { t.MaxDepth = d }
}

// WithMinSamplesSplit sets the minimum samples required to split.
func WithMinSamplesSplit(n int) Option {
	return func(t *DecisionTreeRegressor) { t.MinSamplesSplit = n }
}

// WithMinSamplesLeaf sets the minimum samples per leaf.
func WithMinSamplesLeaf(n int) Option {
	return func(t *DecisionTreeRegressor) { t.MinSamplesLeaf = n }
}

// WithMaxFeatures sets the number of candidate features per split.
func WithMaxFeatures(k int) Option {
	return func(t *DecisionTreeRegressor) { t.MaxFeatures = k }
}

// WithRandomState sets the seed.
func WithRandomState(seed int64) Option {
	return func(t *DecisionTreeRegressor) { t.RandomState = seed }
}

// NewDecisionTreeRegressor returns a regressor with scikit-learn defaults:
// fully grown, min_samples_split=2, min_samples_leaf=1, all features.
func NewDecisionTreeRegressor(opts ...Option) *DecisionTreeRegressor {
	t := &DecisionTreeRegressor{
		State:           model.NewStateManager(),
		MinSamplesSplit: 2,
		MinSamplesLeaf:  1,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Fit builds the tree from X (n×p) and y (n×1).
func (t *DecisionTreeRegressor) Fit(X, y mat.Matrix) error {
	rows, target, err := ToRows("DecisionTreeRegressor.Fit", X, y)
	if err != nil {
		return err
	}
	sample := make([]int, len(rows))
	for i := range sample {
		sample[i] = i
	}
	return t.FitSample(rows, target, sample)
}

// FitSample builds the tree from the rows listed in sample. Indices may
// repeat, which is how bootstrap samples are passed in by ensembles.
func (t *DecisionTreeRegressor) FitSample(X [][]float64, y []float64, sample []int) error {
	if len(sample) == 0 {
		return errors.NewModelError("DecisionTreeRegressor.Fit", "empty data", errors.ErrEmptyData)
	}
	if t.MinSamplesSplit < 2 {
		return errors.NewValidationError("min_samples_split", "must be >= 2", t.MinSamplesSplit)
	}
	if t.MinSamplesLeaf < 1 {
		return errors.NewValidationError("min_samples_leaf", "must be >= 1", t.MinSamplesLeaf)
	}
	if t.MaxDepth < 0 {
		return errors.NewValidationError("max_depth", "must be >= 0", t.MaxDepth)
	}

	b := &builder{
		tree:      t,
		X:         X,
		y:         y,
		nFeatures: len(X[0]),
		rng:       rand.New(rand.NewSource(t.RandomState)),
	}
	b.importance = make([]float64, b.nFeatures)

	idx := make([]int, len(sample))
	copy(idx, sample)
	t.Nodes = t.Nodes[:0]
	b.build(idx, 0)

	var total float64
	for _, v := range b.importance {
		total += v
	}
	if total > 0 {
		for i := range b.importance {
			b.importance[i] /= total
		}
	}

	t.NFeatures = b.nFeatures
	t.Importances = b.importance
	if t.State == nil {
		t.State = model.NewStateManager()
	}
	t.State.SetFitted(b.nFeatures, len(sample))
	return nil
}

// Predict returns an n×1 matrix of predictions.
func (t *DecisionTreeRegressor) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !t.IsFitted() {
		return nil, errors.NewNotFittedError("DecisionTreeRegressor", "Predict")
	}
	r, c := X.Dims()
	if c != t.NFeatures {
		return nil, errors.NewDimensionError("DecisionTreeRegressor.Predict", t.NFeatures, c, 1)
	}
	out := mat.NewDense(r, 1, nil)
	row := make([]float64, c)
	for i := 0; i < r; i++ {
		mat.Row(row, i, X)
		out.Set(i, 0, t.PredictRow(row))
	}
	return out, nil
}

// PredictRow walks the tree for a single sample. The tree must be fitted
// and x must have NFeatures values.
func (t *DecisionTreeRegressor) PredictRow(x []float64) float64 {
	n := 0
	for t.Nodes[n].Feature != Leaf {
		node := t.Nodes[n]
		if x[node.Feature] <= node.Threshold {
			n = node.Left
		} else {
			n = node.Right
		}
	}
	return t.Nodes[n].Value
}

// IsFitted reports whether Fit has completed.
func (t *DecisionTreeRegressor) IsFitted() bool {
	return t.State.IsFitted() && len(t.Nodes) > 0
}

// FeatureImportances returns the normalized total squared-error reduction
// contributed by each feature.
func (t *DecisionTreeRegressor) FeatureImportances() ([]float64, error) {
	if !t.IsFitted() {
		return nil, errors.NewNotFittedError("DecisionTreeRegressor", "FeatureImportances")
	}
	out := make([]float64, len(t.Importances))
	copy(out, t.Importances)
	return out, nil
}

// Depth returns the depth of the fitted tree.
func (t *DecisionTreeRegressor) Depth() int {
	if len(t.Nodes) == 0 {
		return 0
	}
	var depth func(n int) int
	depth = func(n int) int {
		node := t.Nodes[n]
		if node.Feature == Leaf {
			return 0
		}
		return 1 + max(depth(node.Left), depth(node.Right))
	}
	return depth(0)
}

// NLeaves returns the number of leaves.
func (t *DecisionTreeRegressor) NLeaves() int {
	n := 0
	for _, node := range t.Nodes {
		if node.Feature == Leaf {
			n++
		}
	}
	return n
}

func (t *DecisionTreeRegressor) String() string {
	if !t.IsFitted() {
		return fmt.Sprintf("DecisionTreeRegressor(max_depth=%d, min_samples_split=%d, min_samples_leaf=%d)",
			t.MaxDepth, t.MinSamplesSplit, t.MinSamplesLeaf)
	}
	return fmt.Sprintf("DecisionTreeRegressor(depth=%d, leaves=%d, n_features=%d)",
		t.Depth(), t.NLeaves(), t.NFeatures)
}

// ToRows validates X and y and copies them into row slices.
func ToRows(op string, X, y mat.Matrix) ([][]float64, []float64, error) {
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return nil, nil, errors.NewModelError(op, "empty data", errors.ErrEmptyData)
	}
	yr, yc := y.Dims()
	if yr != r {
		return nil, nil, errors.NewDimensionError(op, r, yr, 0)
	}
	if yc != 1 {
		return nil, nil, errors.NewDimensionError(op, 1, yc, 1)
	}
	if err := errors.CheckMatrix(op, X, r, c); err != nil {
		return nil, nil, err
	}
	if err := errors.CheckMatrix(op, y, yr, yc); err != nil {
		return nil, nil, err
	}
	rows := make([][]float64, r)
	for i := range rows {
		rows[i] = mat.Row(nil, i, X)
	}
	return rows, mat.Col(nil, 0, y), nil
}

// builder holds the per-fit scratch state.
type builder struct {
	tree       *DecisionTreeRegressor
	X          [][]float64
	y          []float64
	nFeatures  int
	rng        *rand.Rand
	importance []float64
}

type split struct {
	feature   int
	threshold float64
	pos       int // left = idx[:pos] after sorting by feature
	gain      float64
}

// build appends the subtree for idx and returns its node index.
func (b *builder) build(idx []int, depth int) int {
	sum, _ := b.moments(idx)
	n := float64(len(idx))
	mean := sum / n
	var sse float64
	for _, i := range idx {
		d := b.y[i] - mean
		sse += d * d
	}

	id := len(b.tree.Nodes)
	b.tree.Nodes = append(b.tree.Nodes, Node{
		Feature:  Leaf,
		Value:    mean,
		NSamples: len(idx),
		Impurity: sse / n,
	})

	if len(idx) < b.tree.MinSamplesSplit ||
		len(idx) < 2*b.tree.MinSamplesLeaf ||
		(b.tree.MaxDepth > 0 && depth >= b.tree.MaxDepth) ||
		sse <= 0 {
		return id
	}

	best, ok := b.bestSplit(idx, sse)
	if !ok {
		return id
	}

	sortByFeature(b.X, idx, best.feature)
	left := append([]int(nil), idx[:best.pos]...)
	right := append([]int(nil), idx[best.pos:]...)
	b.importance[best.feature] += best.gain

	l := b.build(left, depth+1)
	r := b.build(right, depth+1)
	node := &b.tree.Nodes[id]
	node.Feature = best.feature
	node.Threshold = best.threshold
	node.Left = l
	node.Right = r
	return id
}

// bestSplit scans candidate features and returns the split with the
// largest reduction in squared error. Ties keep the first candidate.
func (b *builder) bestSplit(idx []int, parentSSE float64) (split, bool) {
	// 丸め誤差による無意味な分割を避ける
	best := split{gain: parentSSE * 1e-12}
	found := false
	minLeaf := b.tree.MinSamplesLeaf
	total, totalSq := b.moments(idx)
	n := len(idx)

	for _, f := range b.candidates() {
		sortByFeature(b.X, idx, f)
		if b.X[idx[0]][f] == b.X[idx[n-1]][f] {
			continue
		}
		var lSum, lSq float64
		for i := 0; i < n-1; i++ {
			v := b.y[idx[i]]
			lSum += v
			lSq += v * v
			nl := i + 1
			if nl < minLeaf || n-nl < minLeaf {
				continue
			}
			cur, next := b.X[idx[i]][f], b.X[idx[i+1]][f]
			if cur == next {
				continue
			}
			rSum, rSq := total-lSum, totalSq-lSq
			childSSE := nonNegative(lSq-lSum*lSum/float64(nl)) +
				nonNegative(rSq-rSum*rSum/float64(n-nl))
			gain := parentSSE - childSSE
			if gain > best.gain {
				best = split{feature: f, threshold: cur + (next-cur)/2, pos: nl, gain: gain}
				found = true
			}
		}
	}
	return best, found
}

// candidates returns the features examined at one node.
func (b *builder) candidates() []int {
	k := b.tree.MaxFeatures
	if k <= 0 || k >= b.nFeatures {
		all := make([]int, b.nFeatures)
		for i := range all {
			all[i] = i
		}
		return all
	}
	feats := b.rng.Perm(b.nFeatures)[:k]
	sort.Ints(feats)
	return feats
}

func (b *builder) moments(idx []int) (sum, sumSq float64) {
	for _, i := range idx {
		v := b.y[i]
		sum += v
		sumSq += v * v
	}
	return sum, sumSq
}

// sortByFeature sorts idx by X[.][f]; equal values keep index order so
// that fits are reproducible.
func sortByFeature(X [][]float64, idx []int, f int) {
	sort.SliceStable(idx, func(a, b int) bool {
		va, vb := X[idx[a]][f], X[idx[b]][f]
		if va != vb {
			return va < vb
		}
		return idx[a] < idx[b]
	})
}

func nonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

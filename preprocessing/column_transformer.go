package preprocessing

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/salary-predictor/core/frame"
	"github.com/YuminosukeSato/salary-predictor/core/model"
	"github.com/YuminosukeSato/salary-predictor/pkg/errors"
)

var _ model.FrameTransformer = (*ColumnTransformer)(nil)

// 残りの列の扱い
const (
	RemainderPassthrough = "passthrough"
	RemainderDrop        = "drop"
)

// ColumnTransformer はカテゴリ列をOneHotEncoderで変換し、
// 残りの列を数値としてそのまま（passthrough）または破棄（drop）する
//
// 出力列の順序は [エンコード済みカテゴリ列 | 残りの列] で、
// scikit-learnのColumnTransformer(remainder="passthrough")と同じ
type ColumnTransformer struct {
	State *model.StateManager

	Categorical []string
	Encoder     *OneHotEncoder
	Remainder   string

	// InputColumns は学習時の入力列（特徴量スキーマ）
	InputColumns []string
	// RemainderColumns は学習時に残りとして扱われた列
	RemainderColumns []string
}

// ColumnTransformerOption は設定オプション
type ColumnTransformerOption func(*ColumnTransformer)

// WithRemainder は残りの列の扱いを設定
func WithRemainder(mode string) ColumnTransformerOption {
	return func(ct *ColumnTransformer) {
		ct.Remainder = mode
	}
}

// WithEncoder はカテゴリ列用のエンコーダーを設定
func WithEncoder(enc *OneHotEncoder) ColumnTransformerOption {
	return func(ct *ColumnTransformer) {
		ct.Encoder = enc
	}
}

// NewColumnTransformer は新しいColumnTransformerを作成する
//
// 使用例:
//
//	ct := preprocessing.NewColumnTransformer(
//	    []string{"Education", "Role"},
//	    preprocessing.WithRemainder(preprocessing.RemainderPassthrough),
//	)
func NewColumnTransformer(categorical []string, opts ...ColumnTransformerOption) *ColumnTransformer {
	cats := make([]string, len(categorical))
	copy(cats, categorical)
	ct := &ColumnTransformer{
		State:       model.NewStateManager(),
		Categorical: cats,
		Encoder:     NewOneHotEncoder(WithHandleUnknown(HandleUnknownIgnore)),
		Remainder:   RemainderDrop,
	}
	for _, opt := range opts {
		opt(ct)
	}
	return ct
}

// Fit はカテゴリ列のエンコーダーを学習し、入力スキーマを記録する
func (ct *ColumnTransformer) Fit(X *frame.Frame) error {
	ct.State.Reset()
	if ct.Remainder != RemainderPassthrough && ct.Remainder != RemainderDrop {
		return errors.NewValidationError("remainder", "must be 'passthrough' or 'drop'", ct.Remainder)
	}
	if missing := X.Missing(ct.Categorical); len(missing) > 0 {
		return errors.NewMissingColumnsError(missing)
	}

	isCat := make(map[string]bool, len(ct.Categorical))
	for _, c := range ct.Categorical {
		isCat[c] = true
	}
	var remainder []string
	for _, c := range X.Columns() {
		if !isCat[c] {
			remainder = append(remainder, c)
		}
	}

	cats, err := X.Select(ct.Categorical...)
	if err != nil {
		return err
	}
	if err := ct.Encoder.Fit(cats); err != nil {
		return err
	}

	ct.InputColumns = X.Columns()
	ct.RemainderColumns = nil
	if ct.Remainder == RemainderPassthrough {
		ct.RemainderColumns = remainder
		// 数値として解釈できることを学習時に確認する
		for _, c := range remainder {
			if _, err := X.Float(c); err != nil {
				return err
			}
		}
	}
	if ct.State == nil {
		ct.State = model.NewStateManager()
	}
	ct.State.SetFitted(len(ct.InputColumns), X.NRows())
	return nil
}

// Transform はフレームを数値行列に変換する
// 必要な列は名前で参照し、学習時に無かった余分な列は無視する
func (ct *ColumnTransformer) Transform(X *frame.Frame) (*mat.Dense, error) {
	if err := ct.State.RequireFitted("ColumnTransformer", "Transform"); err != nil {
		return nil, err
	}
	needed := append(append([]string{}, ct.Categorical...), ct.RemainderColumns...)
	if missing := X.Missing(needed); len(missing) > 0 {
		return nil, errors.NewMissingColumnsError(missing)
	}

	cats, err := X.Select(ct.Categorical...)
	if err != nil {
		return nil, err
	}
	encoded, err := ct.Encoder.Transform(cats)
	if err != nil {
		return nil, err
	}
	if len(ct.RemainderColumns) == 0 {
		return encoded, nil
	}

	n, encWidth := encoded.Dims()
	result := mat.NewDense(n, encWidth+len(ct.RemainderColumns), nil)
	result.Slice(0, n, 0, encWidth).(*mat.Dense).Copy(encoded)
	for k, c := range ct.RemainderColumns {
		values, err := X.Float(c)
		if err != nil {
			return nil, err
		}
		for i, v := range values {
			result.Set(i, encWidth+k, v)
		}
	}
	return result, nil
}

// FitTransform は学習と変換を同時に実行する
func (ct *ColumnTransformer) FitTransform(X *frame.Frame) (*mat.Dense, error) {
	if err := ct.Fit(X); err != nil {
		return nil, err
	}
	return ct.Transform(X)
}

// OutputNames は変換後の列名を返す
func (ct *ColumnTransformer) OutputNames() []string {
	names := ct.Encoder.OutputNames()
	return append(names, ct.RemainderColumns...)
}

// String は文字列表現を返す
func (ct *ColumnTransformer) String() string {
	return fmt.Sprintf("ColumnTransformer(categorical=%v, remainder=%q)", ct.Categorical, ct.Remainder)
}

package preprocessing

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/salary-predictor/core/frame"
	"github.com/YuminosukeSato/salary-predictor/core/model"
	"github.com/YuminosukeSato/salary-predictor/pkg/errors"
)

// 未知カテゴリの扱い
const (
	// HandleUnknownError は未知カテゴリでエラーを返す
	HandleUnknownError = "error"
	// HandleUnknownIgnore は未知カテゴリをゼロベクトルとしてエンコードする
	HandleUnknownIgnore = "ignore"
)

// OneHotEncoder はscikit-learn互換のOne-Hotエンコーダー
// 各カテゴリ列を、学習時に現れたカテゴリ数の長さの指示ベクトルに変換する
type OneHotEncoder struct {
	State *model.StateManager

	// HandleUnknown は未知カテゴリの扱い ("error" または "ignore")
	HandleUnknown string

	// Columns は学習した入力列名
	Columns []string

	// Categories は列ごとの学習済みカテゴリ（辞書順）
	Categories [][]string
}

// OneHotEncoderOption は設定オプション
type OneHotEncoderOption func(*OneHotEncoder)

// WithHandleUnknown は未知カテゴリの扱いを設定
func WithHandleUnknown(mode string) OneHotEncoderOption {
	return func(e *OneHotEncoder) {
		e.HandleUnknown = mode
	}
}

// NewOneHotEncoder は新しいOneHotEncoderを作成する
//
// 使用例:
//
//	enc := preprocessing.NewOneHotEncoder(preprocessing.WithHandleUnknown("ignore"))
//	err := enc.Fit(X)
//	encoded, err := enc.Transform(X)
func NewOneHotEncoder(opts ...OneHotEncoderOption) *OneHotEncoder {
	e := &OneHotEncoder{
		State:         model.NewStateManager(),
		HandleUnknown: HandleUnknownError,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Fit はフレームの全列からカテゴリを学習する
func (e *OneHotEncoder) Fit(X *frame.Frame) error {
	e.State.Reset()
	if e.HandleUnknown != HandleUnknownError && e.HandleUnknown != HandleUnknownIgnore {
		return errors.NewValidationError("handle_unknown", "must be 'error' or 'ignore'", e.HandleUnknown)
	}
	if X.NRows() == 0 {
		return errors.NewModelError("OneHotEncoder.Fit", "empty data", errors.ErrEmptyData)
	}

	columns := X.Columns()
	categories := make([][]string, len(columns))
	for j, name := range columns {
		cells, err := X.Column(name)
		if err != nil {
			return err
		}
		seen := make(map[string]struct{})
		for _, c := range cells {
			seen[c] = struct{}{}
		}
		cats := make([]string, 0, len(seen))
		for c := range seen {
			cats = append(cats, c)
		}
		sort.Strings(cats)
		categories[j] = cats
	}

	e.Columns = columns
	e.Categories = categories
	if e.State == nil {
		e.State = model.NewStateManager()
	}
	e.State.SetFitted(len(columns), X.NRows())
	return nil
}

// Transform は学習済みのカテゴリでフレームをエンコードする
// 列は名前で参照されるため、Xの列順は問わない
func (e *OneHotEncoder) Transform(X *frame.Frame) (*mat.Dense, error) {
	if err := e.State.RequireFitted("OneHotEncoder", "Transform"); err != nil {
		return nil, err
	}
	n := X.NRows()
	if n == 0 {
		return nil, errors.NewModelError("OneHotEncoder.Transform", "empty data", errors.ErrEmptyData)
	}

	width := e.NOutputs()
	result := mat.NewDense(n, width, nil)

	offset := 0
	for j, name := range e.Columns {
		cells, err := X.Column(name)
		if err != nil {
			return nil, err
		}
		cats := e.Categories[j]
		var unknown []string
		for i, c := range cells {
			k := sort.SearchStrings(cats, c)
			if k < len(cats) && cats[k] == c {
				result.Set(i, offset+k, 1)
				continue
			}
			if e.HandleUnknown == HandleUnknownError {
				return nil, errors.NewValueError("OneHotEncoder.Transform",
					fmt.Sprintf("found unknown category %q in column %q", c, name))
			}
			unknown = append(unknown, c)
		}
		if len(unknown) > 0 {
			errors.Warn(errors.NewUnknownCategoryWarning(name, unknown))
		}
		offset += len(cats)
	}
	return result, nil
}

// FitTransform は学習と変換を同時に実行する
func (e *OneHotEncoder) FitTransform(X *frame.Frame) (*mat.Dense, error) {
	if err := e.Fit(X); err != nil {
		return nil, err
	}
	return e.Transform(X)
}

// NOutputs はエンコード後の列数を返す
func (e *OneHotEncoder) NOutputs() int {
	width := 0
	for _, cats := range e.Categories {
		width += len(cats)
	}
	return width
}

// OutputNames は "列名_カテゴリ" 形式の出力列名を返す
func (e *OneHotEncoder) OutputNames() []string {
	names := make([]string, 0, e.NOutputs())
	for j, col := range e.Columns {
		for _, c := range e.Categories[j] {
			names = append(names, col+"_"+c)
		}
	}
	return names
}

// String はエンコーダーの文字列表現を返す
func (e *OneHotEncoder) String() string {
	if !e.State.IsFitted() {
		return fmt.Sprintf("OneHotEncoder(handle_unknown=%q)", e.HandleUnknown)
	}
	return fmt.Sprintf("OneHotEncoder(handle_unknown=%q, n_columns=%d, n_outputs=%d)",
		e.HandleUnknown, len(e.Columns), e.NOutputs())
}

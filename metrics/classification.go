// Package metrics は分類結果を評価する指標を提供する。
package metrics

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/treelab/pkg/errors"
)

// Accuracy は正解率（予測が一致したサンプルの割合）を計算する
func Accuracy(yTrue, yPred *mat.VecDense) (float64, error) {
	if yTrue == nil || yPred == nil || yTrue.Len() == 0 {
		return 0, errors.Wrap(errors.ErrEmptyData, "Accuracy")
	}

	n := yTrue.Len()
	if yPred.Len() != n {
		return 0, errors.NewDimensionError("Accuracy", n, yPred.Len(), 0)
	}

	correct := 0
	for i := 0; i < n; i++ {
		if yTrue.AtVec(i) == yPred.AtVec(i) {
			correct++
		}
	}
	return float64(correct) / float64(n), nil
}

// ClassificationError は誤分類率（1 - 正解率）を計算する
func ClassificationError(yTrue, yPred *mat.VecDense) (float64, error) {
	acc, err := Accuracy(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return 1 - acc, nil
}

// AccuracyScore は列ベクトル（n×1行列）同士の正解率を計算する
func AccuracyScore(yTrue, yPred mat.Matrix) (float64, error) {
	rTrue, cTrue := yTrue.Dims()
	rPred, cPred := yPred.Dims()

	if rTrue == 0 {
		return 0, errors.Wrap(errors.ErrEmptyData, "AccuracyScore")
	}
	if rTrue != rPred {
		return 0, errors.NewDimensionError("AccuracyScore", rTrue, rPred, 0)
	}
	if cTrue != 1 || cPred != 1 {
		return 0, errors.NewValueError("AccuracyScore", "must be a column vector (n×1 matrix)")
	}

	return Accuracy(
		mat.NewVecDense(rTrue, mat.Col(nil, 0, yTrue)),
		mat.NewVecDense(rPred, mat.Col(nil, 0, yPred)),
	)
}

// ConfusionMatrix は nClasses×nClasses の混同行列を返す。
// 行が正解ラベル、列が予測ラベルに対応する。
func ConfusionMatrix(yTrue, yPred []int, nClasses int) (*mat.Dense, error) {
	if len(yTrue) == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "ConfusionMatrix")
	}
	if len(yPred) != len(yTrue) {
		return nil, errors.NewDimensionError("ConfusionMatrix", len(yTrue), len(yPred), 0)
	}
	if nClasses < 1 {
		return nil, errors.NewValueError("ConfusionMatrix", fmt.Sprintf("nClasses must be >= 1, got %d", nClasses))
	}

	cm := mat.NewDense(nClasses, nClasses, nil)
	for i := range yTrue {
		t, p := yTrue[i], yPred[i]
		if t < 0 || t >= nClasses || p < 0 || p >= nClasses {
			return nil, errors.NewValueError("ConfusionMatrix",
				fmt.Sprintf("label pair (%d, %d) at %d outside [0, %d)", t, p, i, nClasses))
		}
		cm.Set(t, p, cm.At(t, p)+1)
	}
	return cm, nil
}

// RecallPerClass は混同行列からクラスごとの再現率を計算する。
// サポートが0のクラスは0とし、UndefinedMetricWarning を発行する。
func RecallPerClass(cm *mat.Dense) []float64 {
	k, _ := cm.Dims()
	recall := make([]float64, k)
	for i := 0; i < k; i++ {
		support := mat.Sum(cm.RowView(i))
		if support == 0 {
			errors.Warn(errors.NewUndefinedMetricWarning("recall",
				fmt.Sprintf("class %d has no true samples", i), 0))
			continue
		}
		recall[i] = cm.At(i, i) / support
	}
	return recall
}

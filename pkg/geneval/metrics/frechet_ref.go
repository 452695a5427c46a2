package metrics

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"geneval/pkg/geneval/features"
)

// newtonSchulzIterations is plenty for the covariance scales seen here.
const newtonSchulzIterations = 30

// FrechetReference recomputes the Fréchet distance through a second
// numerical path, a Newton-Schulz iteration for the matrix square root
// instead of an eigendecomposition. It is reported at the bottom of the
// table as a cross check on the FID value, the two should agree to several
// decimals.
type FrechetReference struct {
	extractor *features.Extractor
	device    *Device
}

// NewFrechetReference returns the cross check metric.
func NewFrechetReference(extractor *features.Extractor, device *Device) *FrechetReference {
	return &FrechetReference{extractor: extractor, device: device}
}

// Name returns the report column name.
func (f *FrechetReference) Name() string {
	return "FID-Ref"
}

// Compute embeds both folders and returns the Fréchet distance.
func (f *FrechetReference) Compute(ctx context.Context, gtDir, predDir string) (float64, error) {
	var muGT, sigmaGT, err = folderStats(ctx, f.extractor, gtDir, f.device.Workers())
	if err != nil {
		return 0, fmt.Errorf("FID-Ref stats for dir: %s, err: %w", gtDir, err)
	}
	muPred, sigmaPred, err := folderStats(ctx, f.extractor, predDir, f.device.Workers())
	if err != nil {
		return 0, fmt.Errorf("FID-Ref stats for dir: %s, err: %w", predDir, err)
	}

	var meanDiff float64
	for i := range muGT {
		var d = muGT[i] - muPred[i]
		meanDiff += d * d
	}

	var prod mat.Dense
	prod.Mul(sigmaGT, sigmaPred)
	var root = newtonSchulzSqrt(&prod)

	return meanDiff + mat.Trace(sigmaGT) + mat.Trace(sigmaPred) - 2*mat.Trace(root), nil
}

// newtonSchulzSqrt approximates the square root of a PSD matrix. The input
// is scaled by its Frobenius norm so the iteration contracts, Y converges to
// the root of the scaled matrix and the scale is restored at the end.
func newtonSchulzSqrt(a *mat.Dense) *mat.Dense {
	var n, _ = a.Dims()
	var norm = mat.Norm(a, 2)
	if norm == 0 {
		return mat.NewDense(n, n, nil)
	}

	var y = mat.NewDense(n, n, nil)
	y.Scale(1/norm, a)
	var z = eye(n)

	var zy mat.Dense
	var t = mat.NewDense(n, n, nil)
	for i := 0; i < newtonSchulzIterations; i++ {
		// T = 1.5·I - 0.5·Z·Y
		zy.Mul(z, y)
		t.Scale(-0.5, &zy)
		for j := 0; j < n; j++ {
			t.Set(j, j, t.At(j, j)+1.5)
		}

		var nextY, nextZ mat.Dense
		nextY.Mul(y, t)
		nextZ.Mul(t, z)
		y.Copy(&nextY)
		z.Copy(&nextZ)
	}

	y.Scale(math.Sqrt(norm), y)
	return y
}

func eye(n int) *mat.Dense {
	var m = mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		m.Set(i, i, 1)
	}
	return m
}

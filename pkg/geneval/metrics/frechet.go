package metrics

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"geneval/pkg/geneval/features"
)

// covarianceEpsilon is the ridge added to covariance diagonals, it keeps the
// decompositions stable on rank deficient feature sets.
const covarianceEpsilon = 1e-10

// Frechet is the Fréchet distance between the feature distributions of two
// image folders: both corpora are embedded, a gaussian is fit to each and
// d² = |μ1-μ2|² + tr(Σ1 + Σ2 - 2·(Σ1·Σ2)^½) is reported. 0 means the
// distributions match, lower is better.
type Frechet struct {
	extractor *features.Extractor
	device    *Device
}

// NewFrechet returns the Fréchet distance metric.
func NewFrechet(extractor *features.Extractor, device *Device) *Frechet {
	return &Frechet{extractor: extractor, device: device}
}

// Name returns the report column name.
func (f *Frechet) Name() string {
	return "FID"
}

// Compute embeds both folders and returns the Fréchet distance.
func (f *Frechet) Compute(ctx context.Context, gtDir, predDir string) (float64, error) {
	var muGT, sigmaGT, err = folderStats(ctx, f.extractor, gtDir, f.device.Workers())
	if err != nil {
		return 0, fmt.Errorf("FID stats for dir: %s, err: %w", gtDir, err)
	}
	muPred, sigmaPred, err := folderStats(ctx, f.extractor, predDir, f.device.Workers())
	if err != nil {
		return 0, fmt.Errorf("FID stats for dir: %s, err: %w", predDir, err)
	}
	return frechetDistance(muGT, sigmaGT, muPred, sigmaPred)
}

// folderStats embeds every image in dir and reduces the rows to a mean
// vector and covariance matrix.
func folderStats(ctx context.Context, extractor *features.Extractor, dir string, workers int) ([]float64, *mat.SymDense, error) {
	var vecs, err = extractor.Folder(ctx, dir, workers)
	if err != nil {
		return nil, nil, err
	}
	if len(vecs) < 2 {
		return nil, nil, fmt.Errorf("need at least 2 images to fit a distribution, dir %s has %d", dir, len(vecs))
	}

	var data = mat.NewDense(len(vecs), features.Dim, nil)
	for i, vec := range vecs {
		data.SetRow(i, vec)
	}

	var mu = make([]float64, features.Dim)
	for j := range mu {
		mu[j] = stat.Mean(mat.Col(nil, j, data), nil)
	}

	var sigma = mat.NewSymDense(features.Dim, nil)
	stat.CovarianceMatrix(sigma, data, nil)
	for i := 0; i < features.Dim; i++ {
		sigma.SetSym(i, i, sigma.At(i, i)+covarianceEpsilon)
	}

	return mu, sigma, nil
}

// frechetDistance computes d² from the two gaussian moments. The cross term
// tr((Σ1·Σ2)^½) is evaluated on √Σ1·Σ2·√Σ1, a symmetric matrix with the
// same eigenvalues as Σ1·Σ2.
func frechetDistance(mu1 []float64, sigma1 *mat.SymDense, mu2 []float64, sigma2 *mat.SymDense) (float64, error) {
	var meanDiff float64
	for i := range mu1 {
		var d = mu1[i] - mu2[i]
		meanDiff += d * d
	}

	var root1, err = symSqrt(sigma1)
	if err != nil {
		return 0, err
	}

	var inner, prod mat.Dense
	inner.Mul(root1, sigma2)
	prod.Mul(&inner, root1)

	// fold float asymmetry away before the eigendecomposition
	var n = len(mu1)
	var sym = mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			sym.SetSym(i, j, (prod.At(i, j)+prod.At(j, i))/2)
		}
	}

	var eig mat.EigenSym
	if ok := eig.Factorize(sym, false); !ok {
		return 0, fmt.Errorf("eigendecomposition of the covariance product failed")
	}

	var trCross float64
	for _, v := range eig.Values(nil) {
		if v > 0 {
			trCross += math.Sqrt(v)
		}
	}

	return meanDiff + mat.Trace(sigma1) + mat.Trace(sigma2) - 2*trCross, nil
}

// symSqrt is the principal square root of a PSD symmetric matrix by
// eigendecomposition, negative rounding noise is clamped to zero.
func symSqrt(s *mat.SymDense) (*mat.Dense, error) {
	var eig mat.EigenSym
	if ok := eig.Factorize(s, true); !ok {
		return nil, fmt.Errorf("eigendecomposition failed")
	}

	var vals = eig.Values(nil)
	for i, v := range vals {
		if v < 0 {
			v = 0
		}
		vals[i] = math.Sqrt(v)
	}

	var vecs mat.Dense
	eig.VectorsTo(&vecs)

	var tmp, out mat.Dense
	tmp.Mul(&vecs, mat.NewDiagDense(len(vals), vals))
	out.Mul(&tmp, vecs.T())
	return &out, nil
}

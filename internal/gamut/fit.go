package gamut

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/banshee-data/munsell.report/internal/munsell"
)

// fit.go fits correction models against a bias table by weighted least
// squares. Rows are scaled by sqrt(weight) so the QR solution minimizes
// the weighted residual sum of squares; the design basis for the Fourier
// family is [1, cos kθ, sin kθ]. Hue-undefined records never enter a fit.

// usableBiases filters the table to hue-defined records.
func usableBiases(biases []CategoryBias) []CategoryBias {
	out := make([]CategoryBias, 0, len(biases))
	for _, b := range biases {
		if b.HueDefined {
			out = append(out, b)
		}
	}
	return out
}

func biasWeight(b CategoryBias) float64 {
	w := float64(b.ScreenSamples)
	if w < 1 {
		return 1
	}
	return w
}

// fourierRow fills a design-matrix row for hue theta (degrees) at
// harmonic order K: [1, cos θ, sin θ, ..., cos Kθ, sin Kθ].
func fourierRow(thetaDeg float64, order int, row []float64) {
	rad := munsell.NormalizeHue(thetaDeg) * math.Pi / 180
	row[0] = 1
	for k := 1; k <= order; k++ {
		row[2*k-1] = math.Cos(float64(k) * rad)
		row[2*k] = math.Sin(float64(k) * rad)
	}
}

// FitFourier fits a trigonometric series of the given order to the
// hue-defined records by weighted least squares. Order 0 yields the
// constant baseline (Kind ModelConstant).
//
// Fitting demands at least 2·order+2 usable categories, one more than
// the parameter count, so there is always at least one residual degree
// of freedom. An order the table cannot support returns
// InsufficientDOFError and is excluded from candidacy rather than
// solving an ill-conditioned system.
func FitFourier(biases []CategoryBias, order int) (*CorrectionModel, error) {
	if order < 0 {
		return nil, fmt.Errorf("gamut: negative fourier order %d", order)
	}
	usable := usableBiases(biases)
	params := 2*order + 1
	if len(usable) < params+1 {
		return nil, &InsufficientDOFError{Order: order, Usable: len(usable)}
	}

	n := len(usable)
	a := mat.NewDense(n, params, nil)
	b := mat.NewVecDense(n, nil)
	row := make([]float64, params)
	for i, rec := range usable {
		fourierRow(rec.AnchorHue, order, row)
		sw := math.Sqrt(biasWeight(rec))
		for j, v := range row {
			a.Set(i, j, sw*v)
		}
		b.SetVec(i, sw*rec.HueOffset)
	}

	var qr mat.QR
	qr.Factorize(a)
	coeffs := mat.NewDense(params, 1, nil)
	if err := qr.SolveTo(coeffs, false, b); err != nil {
		return nil, fmt.Errorf("gamut: fourier order %d solve: %w", order, err)
	}

	model := &CorrectionModel{
		Kind:   ModelFourier,
		Order:  order,
		Coeffs: make([]float64, params),
	}
	if order == 0 {
		model.Kind = ModelConstant
	}
	for j := 0; j < params; j++ {
		model.Coeffs[j] = coeffs.At(j, 0)
	}
	model.Diagnostics.ParamCount = params
	model.Diagnostics.ResidualDOF = n - params
	model.Diagnostics.TrainError = trainError(model, usable)
	return model, nil
}

// FitPiecewise fits the per-sector constant baseline: each sector's
// coefficient is the weighted mean of the offsets falling in it. Empty
// sectors get coefficient 0 (no correction where there is no evidence).
func FitPiecewise(biases []CategoryBias, breaks []float64) (*CorrectionModel, error) {
	if len(breaks) == 0 {
		breaks = DefaultPiecewiseBreaks
	}
	usable := usableBiases(biases)
	if len(usable) == 0 {
		return nil, &InsufficientDOFError{Order: 0, Usable: 0}
	}

	model := &CorrectionModel{
		Kind:   ModelPiecewise,
		Coeffs: make([]float64, len(breaks)),
		Breaks: append([]float64(nil), breaks...),
	}

	sums := make([]float64, len(breaks))
	wsums := make([]float64, len(breaks))
	for _, rec := range usable {
		sector := pieceSector(model.Breaks, munsell.NormalizeHue(rec.AnchorHue))
		w := biasWeight(rec)
		sums[sector] += w * rec.HueOffset
		wsums[sector] += w
	}
	for i := range model.Coeffs {
		if wsums[i] > 0 {
			model.Coeffs[i] = sums[i] / wsums[i]
		}
	}
	model.Diagnostics.ParamCount = len(breaks)
	model.Diagnostics.ResidualDOF = len(usable) - len(breaks)
	model.Diagnostics.TrainError = trainError(model, usable)
	return model, nil
}

// trainError computes the weighted mean absolute residual of the model
// over the given records.
func trainError(m *CorrectionModel, records []CategoryBias) float64 {
	var errSum, wSum float64
	for _, rec := range records {
		w := biasWeight(rec)
		errSum += w * math.Abs(rec.HueOffset-m.Evaluate(rec.AnchorHue))
		wSum += w
	}
	if wSum == 0 {
		return 0
	}
	return errSum / wSum
}

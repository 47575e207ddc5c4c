package gamut

import (
	"errors"
	"math"
	"sync"
)

// selector.go implements correction-model selection: every candidate
// Fourier order is fit and scored by leave-one-out cross-validation, and
// the smallest order whose CV error sits at or near the global minimum
// without overfitting is chosen. The rule is an explicit comparison, not
// a judgment call: it can be unit-tested against synthetic bias tables
// with a known harmonic structure.

// Candidate records one tried model order with its outcome. Models that
// could not be fit (insufficient degrees of freedom) carry Err and a nil
// Model; their diagnostics are retained for the run report either way.
type Candidate struct {
	Order int
	Model *CorrectionModel
	Err   error

	// Rejected is true for fittable orders the selection rule ruled
	// out: overfit ratio at or above the ceiling, or past a decisive
	// CV-error jump.
	Rejected bool
	Reason   string
}

// Selection is the outcome of model selection over a bias table.
type Selection struct {
	// Model is the selected correction model. Never nil on success.
	Model *CorrectionModel

	// Candidates holds every tried Fourier order (ascending), with
	// diagnostics retained for reporting even for unselected models.
	Candidates []Candidate

	// Piecewise is the per-sector baseline, fit for comparison only; it
	// never competes in the order-selection rule. Nil when unfittable.
	Piecewise *CorrectionModel

	UsableCategories   int
	ExcludedCategories []string
}

// ErrNoViableModel is returned when no candidate order could be fit,
// typically because too few hue-defined categories remain.
var ErrNoViableModel = errors.New("gamut: no correction model order could be fit")

// SelectModel fits Fourier orders 0..params.MaxOrder against the
// hue-defined bias records and applies the selection rule:
//
//  1. Score each fittable order by leave-one-out CV (weighted mean
//     absolute error), refitting on n−1 categories per fold.
//  2. If CV error jumps by more than params.CVJumpThreshold (relative)
//     from one order to the next, every higher order is rejected: a
//     sharp CV increase past K is decisive evidence to stop at K even
//     when higher orders train better.
//  3. Among the surviving orders, pick the smallest whose CV error is
//     within params.NearMinTolerance (relative) of the minimum and
//     whose cv/train ratio is below params.OverfitRatio.
//  4. If the ratio guard rejects every near-minimum order, fall back to
//     the surviving order with the lowest CV error.
//
// Orders whose parameter count the table cannot support are excluded
// from candidacy (InsufficientDOFError on the candidate), never fit.
func SelectModel(biases []CategoryBias, params SelectorParams) (*Selection, error) {
	usable := usableBiases(biases)
	sel := &Selection{
		UsableCategories: len(usable),
	}
	for _, b := range biases {
		if !b.HueDefined {
			sel.ExcludedCategories = append(sel.ExcludedCategories, b.Category)
		}
	}

	for order := 0; order <= params.MaxOrder; order++ {
		cand := Candidate{Order: order}
		model, err := FitFourier(biases, order)
		if err != nil {
			cand.Err = err
		} else {
			cvW, cvU := crossValidate(usable, order)
			model.Diagnostics.CVError = cvW
			model.Diagnostics.CVErrorUnweighted = cvU
			cand.Model = model
		}
		sel.Candidates = append(sel.Candidates, cand)
	}

	// Piecewise baseline: diagnostics only.
	if pw, err := FitPiecewise(biases, nil); err == nil {
		pw.Diagnostics.CVError, pw.Diagnostics.CVErrorUnweighted = crossValidatePiecewise(usable)
		sel.Piecewise = pw
	}

	applySelectionRule(sel, params)
	if sel.Model == nil {
		return sel, ErrNoViableModel
	}
	return sel, nil
}

// applySelectionRule marks rejected candidates and sets sel.Model.
func applySelectionRule(sel *Selection, params SelectorParams) {
	cands := sel.Candidates

	// Step 2: a decisive CV jump caps the viable range.
	maxViable := len(cands) - 1
	var prev *CorrectionModel
	for i := range cands {
		if cands[i].Model == nil {
			continue
		}
		cur := cands[i].Model
		if prev != nil && prev.Diagnostics.CVError > 0 {
			jump := cur.Diagnostics.CVError/prev.Diagnostics.CVError - 1
			if jump > params.CVJumpThreshold {
				maxViable = i - 1
				break
			}
		}
		prev = cur
	}
	for i := range cands {
		if cands[i].Order > maxViable && cands[i].Model != nil {
			cands[i].Rejected = true
			cands[i].Reason = "past decisive CV-error jump"
		}
	}

	// Global minimum over surviving fittable orders.
	minCV := math.Inf(1)
	for i := range cands {
		if cands[i].Model == nil || cands[i].Rejected {
			continue
		}
		if cv := cands[i].Model.Diagnostics.CVError; cv < minCV {
			minCV = cv
		}
	}
	if math.IsInf(minCV, 1) {
		return
	}

	// Step 3: smallest near-minimum order passing the overfit guard.
	nearCeil := minCV * (1 + params.NearMinTolerance)
	for i := range cands {
		if cands[i].Model == nil || cands[i].Rejected {
			continue
		}
		d := cands[i].Model.Diagnostics
		if d.CVError > nearCeil {
			continue
		}
		if d.Ratio() >= params.OverfitRatio {
			cands[i].Rejected = true
			cands[i].Reason = "cv/train ratio at or above overfit ceiling"
			continue
		}
		sel.Model = cands[i].Model
		return
	}

	// Step 4: ratio guard rejected the whole near-minimum band; take the
	// best surviving CV error so the run still yields a correction.
	for i := range cands {
		if cands[i].Model == nil || cands[i].Rejected {
			continue
		}
		if sel.Model == nil || cands[i].Model.Diagnostics.CVError < sel.Model.Diagnostics.CVError {
			sel.Model = cands[i].Model
		}
	}
}

// crossValidate runs leave-one-out cross-validation for a Fourier order
// over the usable records, parallel across the held-out index. Returns
// the weighted and unweighted mean absolute prediction errors. Folds
// whose reduced table cannot support the order are skipped; if every
// fold is skipped the errors are +Inf.
func crossValidate(usable []CategoryBias, order int) (weighted, unweighted float64) {
	n := len(usable)
	absErr := make([]float64, n)
	ok := make([]bool, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			train := make([]CategoryBias, 0, n-1)
			train = append(train, usable[:i]...)
			train = append(train, usable[i+1:]...)
			model, err := FitFourier(train, order)
			if err != nil {
				return
			}
			absErr[i] = math.Abs(usable[i].HueOffset - model.Evaluate(usable[i].AnchorHue))
			ok[i] = true
		}(i)
	}
	wg.Wait()

	return foldMeans(usable, absErr, ok)
}

// crossValidatePiecewise is the LOOCV loop for the piecewise baseline.
func crossValidatePiecewise(usable []CategoryBias) (weighted, unweighted float64) {
	n := len(usable)
	absErr := make([]float64, n)
	ok := make([]bool, n)
	for i := 0; i < n; i++ {
		train := make([]CategoryBias, 0, n-1)
		train = append(train, usable[:i]...)
		train = append(train, usable[i+1:]...)
		model, err := FitPiecewise(train, nil)
		if err != nil {
			continue
		}
		absErr[i] = math.Abs(usable[i].HueOffset - model.Evaluate(usable[i].AnchorHue))
		ok[i] = true
	}
	return foldMeans(usable, absErr, ok)
}

func foldMeans(usable []CategoryBias, absErr []float64, ok []bool) (weighted, unweighted float64) {
	var wSum, wErr, uErr float64
	count := 0
	for i := range usable {
		if !ok[i] {
			continue
		}
		w := biasWeight(usable[i])
		wErr += w * absErr[i]
		wSum += w
		uErr += absErr[i]
		count++
	}
	if count == 0 {
		return math.Inf(1), math.Inf(1)
	}
	return wErr / wSum, uErr / float64(count)
}

// Package forecasting implements the spending projection algorithms used for
// budget forecasts. All computation is on float64 series; callers convert to
// and from monetary decimals at the boundary.
package forecasting

import (
	"fmt"
	"math"
)

// Algorithm names accepted by Forecast.
const (
	AlgorithmLinear      = "LINEAR"
	AlgorithmSeasonal    = "SEASONAL"
	AlgorithmExponential = "EXPONENTIAL"
	AlgorithmML          = "ML"
)

// MinHistory is the fewest observed periods any algorithm accepts.
const MinHistory = 3

// Options tunes a forecast run.
type Options struct {
	Horizon     int     // future periods to project, must be positive
	CycleLength int     // periods per seasonal cycle, e.g. 12 for monthly data
	Alpha       float64 // exponential smoothing factor in (0,1)
	ZScore      float64 // confidence interval width in residual std deviations
}

// Point is one projected period with its confidence bounds. Lower is floored
// at zero since projected spending cannot go negative.
type Point struct {
	Predicted float64
	Lower     float64
	Upper     float64
}

// Result is a completed forecast with in-sample accuracy metrics.
// MAPE is nil when any historical actual is zero, since the percentage error
// is undefined there.
type Result struct {
	Points        []Point
	Methodology   string
	LowConfidence bool
	MAPE          *float64
	RMSE          float64
}

// Forecast projects future spending from a historical series using the named
// algorithm. Seasonal forecasting needs at least two full cycles of history;
// with less it falls back to linear and flags the result low confidence.
func Forecast(algorithm string, history []float64, opts Options) (Result, error) {
	if len(history) < MinHistory {
		return Result{}, fmt.Errorf("need at least %d historical periods, have %d", MinHistory, len(history))
	}
	if opts.Horizon <= 0 {
		return Result{}, fmt.Errorf("horizon must be positive, got %d", opts.Horizon)
	}

	var (
		fitted, future []float64
		methodology    string
		lowConfidence  bool
	)

	switch algorithm {
	case AlgorithmLinear:
		fitted, future = fitLinear(history, opts.Horizon)
		methodology = "ordinary least squares trend"
	case AlgorithmSeasonal:
		if opts.CycleLength <= 1 || len(history) < 2*opts.CycleLength {
			fitted, future = fitLinear(history, opts.Horizon)
			methodology = "linear fallback (insufficient seasonal history)"
			lowConfidence = true
		} else {
			fitted, future = fitSeasonal(history, opts.CycleLength, opts.Horizon)
			methodology = "seasonal decomposition over linear trend"
		}
	case AlgorithmExponential:
		fitted, future = fitExponential(history, opts.Alpha, opts.Horizon)
		methodology = fmt.Sprintf("exponential smoothing (alpha=%.2f)", opts.Alpha)
	case AlgorithmML:
		fitted, future, lowConfidence = fitEnsemble(history, opts)
		methodology = "ensemble of linear, seasonal and exponential models"
	default:
		return Result{}, fmt.Errorf("unknown forecast algorithm %q", algorithm)
	}

	sd := residualStdDev(history, fitted)
	points := make([]Point, len(future))
	for i, pred := range future {
		if pred < 0 {
			pred = 0
		}
		points[i] = Point{
			Predicted: pred,
			Lower:     math.Max(0, pred-opts.ZScore*sd),
			Upper:     pred + opts.ZScore*sd,
		}
	}

	return Result{
		Points:        points,
		Methodology:   methodology,
		LowConfidence: lowConfidence,
		MAPE:          mape(history, fitted),
		RMSE:          rmse(history, fitted),
	}, nil
}

// Evaluate scores predictions against realized actuals, pairwise by index.
// MAPE is nil when any actual is zero.
func Evaluate(actual, predicted []float64) (float64, *float64) {
	return rmse(actual, predicted), mape(actual, predicted)
}

// LinearFit returns the ordinary least squares slope and intercept of a series
// indexed 0..n-1.
func LinearFit(series []float64) (slope, intercept float64) {
	n := float64(len(series))
	var sumX, sumY, sumXY, sumXX float64
	for i, y := range series {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0, sumY / n
	}
	slope = (n*sumXY - sumX*sumY) / denom
	intercept = (sumY - slope*sumX) / n
	return slope, intercept
}

func fitLinear(history []float64, horizon int) (fitted, future []float64) {
	slope, intercept := LinearFit(history)
	fitted = make([]float64, len(history))
	for i := range history {
		fitted[i] = slope*float64(i) + intercept
	}
	future = make([]float64, horizon)
	for i := 0; i < horizon; i++ {
		future[i] = slope*float64(len(history)+i) + intercept
	}
	return fitted, future
}

// fitSeasonal layers multiplicative seasonal factors over a linear trend. The
// factor for each cycle position is that position's mean relative to the
// overall mean.
func fitSeasonal(history []float64, cycle, horizon int) (fitted, future []float64) {
	var overall float64
	for _, y := range history {
		overall += y
	}
	overall /= float64(len(history))

	factors := make([]float64, cycle)
	counts := make([]int, cycle)
	for i, y := range history {
		factors[i%cycle] += y
		counts[i%cycle]++
	}
	for i := range factors {
		if counts[i] > 0 && overall != 0 {
			factors[i] = (factors[i] / float64(counts[i])) / overall
		} else {
			factors[i] = 1
		}
	}

	slope, intercept := LinearFit(history)
	fitted = make([]float64, len(history))
	for i := range history {
		fitted[i] = (slope*float64(i) + intercept) * factors[i%cycle]
	}
	future = make([]float64, horizon)
	for i := 0; i < horizon; i++ {
		idx := len(history) + i
		future[i] = (slope*float64(idx) + intercept) * factors[idx%cycle]
	}
	return fitted, future
}

// fitExponential produces one-step-ahead smoothed predictions in sample and a
// flat projection at the final level for the future.
func fitExponential(history []float64, alpha float64, horizon int) (fitted, future []float64) {
	if alpha <= 0 || alpha >= 1 {
		alpha = 0.3
	}
	fitted = make([]float64, len(history))
	level := history[0]
	fitted[0] = level
	for i := 1; i < len(history); i++ {
		fitted[i] = level
		level = alpha*history[i] + (1-alpha)*level
	}
	future = make([]float64, horizon)
	for i := range future {
		future[i] = level
	}
	return fitted, future
}

// fitEnsemble averages the three base models point by point. The result is low
// confidence when the seasonal component had to fall back.
func fitEnsemble(history []float64, opts Options) (fitted, future []float64, lowConfidence bool) {
	linFitted, linFuture := fitLinear(history, opts.Horizon)

	var seaFitted, seaFuture []float64
	if opts.CycleLength > 1 && len(history) >= 2*opts.CycleLength {
		seaFitted, seaFuture = fitSeasonal(history, opts.CycleLength, opts.Horizon)
	} else {
		seaFitted, seaFuture = linFitted, linFuture
		lowConfidence = true
	}

	expFitted, expFuture := fitExponential(history, opts.Alpha, opts.Horizon)

	fitted = make([]float64, len(history))
	for i := range fitted {
		fitted[i] = (linFitted[i] + seaFitted[i] + expFitted[i]) / 3
	}
	future = make([]float64, opts.Horizon)
	for i := range future {
		future[i] = (linFuture[i] + seaFuture[i] + expFuture[i]) / 3
	}
	return fitted, future, lowConfidence
}

func residualStdDev(actual, fitted []float64) float64 {
	if len(actual) == 0 {
		return 0
	}
	var mean float64
	residuals := make([]float64, len(actual))
	for i := range actual {
		residuals[i] = actual[i] - fitted[i]
		mean += residuals[i]
	}
	mean /= float64(len(residuals))

	var ss float64
	for _, r := range residuals {
		ss += (r - mean) * (r - mean)
	}
	return math.Sqrt(ss / float64(len(residuals)))
}

// mape returns the mean absolute percentage error, or nil when any actual is
// zero.
func mape(actual, fitted []float64) *float64 {
	var sum float64
	for i := range actual {
		if actual[i] == 0 {
			return nil
		}
		sum += math.Abs((actual[i]-fitted[i])/actual[i]) * 100
	}
	v := sum / float64(len(actual))
	return &v
}

func rmse(actual, fitted []float64) float64 {
	var ss float64
	for i := range actual {
		diff := actual[i] - fitted[i]
		ss += diff * diff
	}
	return math.Sqrt(ss / float64(len(actual)))
}

// Package arima implements the ARIMA(p,d,q) model and AIC-driven order
// search used by the expense forecasting pipeline.
package arima

import (
	"errors"
	"math"

	"github.com/spendtrack/expense-forecast/internal/stats"
	"github.com/spendtrack/expense-forecast/internal/timeseries"
)

// Order is the (p, d, q) structure of an ARIMA model: autoregressive terms,
// differencing degree and moving-average terms.
type Order struct {
	P int
	D int
	Q int
}

// Model represents an ARIMA model fitted by conditional sum of squares.
type Model struct {
	Order     Order
	ARCoeffs  []float64
	MACoeffs  []float64
	Intercept float64
	Variance  float64
	AIC       float64

	fitted    bool
	data      *timeseries.Series
	diffData  *timeseries.Series
	residuals []float64
}

// New creates an unfitted ARIMA model with the specified order.
func New(p, d, q int) *Model {
	return &Model{
		Order:    Order{P: p, D: d, Q: q},
		ARCoeffs: make([]float64, p),
		MACoeffs: make([]float64, q),
	}
}

// Fit estimates the model parameters from the given series.
func (m *Model) Fit(series *timeseries.Series) error {
	if series.Len() < m.Order.P+m.Order.Q+m.Order.D+10 {
		return errors.New("insufficient data points for the specified order")
	}

	m.data = series

	diffSeries := series
	for i := 0; i < m.Order.D; i++ {
		diffSeries = diffSeries.Diff()
		if diffSeries.Len() == 0 {
			return errors.New("differencing resulted in empty series")
		}
	}
	m.diffData = diffSeries

	if err := m.fitCSS(); err != nil {
		return err
	}
	m.calculateAIC()

	if math.IsNaN(m.AIC) {
		return errors.New("estimation produced a non-finite criterion")
	}

	m.fitted = true
	return nil
}

// fitCSS estimates parameters via conditional sum of squares.
func (m *Model) fitCSS() error {
	y := m.diffData.Values
	n := len(y)
	p := m.Order.P
	q := m.Order.Q

	if p == 0 && q == 0 {
		// White noise around the intercept.
		mean := 0.0
		for _, v := range y {
			mean += v
		}
		m.Intercept = mean / float64(n)
		m.Variance = 0
		for _, v := range y {
			diff := v - m.Intercept
			m.Variance += diff * diff
		}
		m.Variance /= float64(n - 1)
		m.residuals = make([]float64, n)
		for i, v := range y {
			m.residuals[i] = v - m.Intercept
		}
		return nil
	}

	if p > 0 {
		// Yule-Walker initial AR estimates.
		acf := stats.ACF(y, p)
		if acf != nil {
			if phi := yuleWalker(acf, p); phi != nil {
				m.ARCoeffs = phi
			}
		}
	}
	for i := range m.MACoeffs {
		m.MACoeffs[i] = 0.1
	}

	m.optimizeCSS(y)
	return nil
}

// optimizeCSS refines coefficients with gradient descent on the conditional
// sum of squares.
func (m *Model) optimizeCSS(y []float64) {
	n := len(y)
	p := m.Order.P
	q := m.Order.Q

	mean := 0.0
	for _, v := range y {
		mean += v
	}
	m.Intercept = mean / float64(n)

	const (
		maxIter      = 100
		tolerance    = 1e-6
		learningRate = 0.01
	)

	startIdx := p
	if q > startIdx {
		startIdx = q
	}

	for iter := 0; iter < maxIter; iter++ {
		residuals := make([]float64, n)
		prevSSE := 0.0

		for t := startIdx; t < n; t++ {
			pred := m.predictAt(y, residuals, t)
			residuals[t] = y[t] - pred
			prevSSE += residuals[t] * residuals[t]
		}

		arGrad := make([]float64, p)
		maGrad := make([]float64, q)
		for t := startIdx; t < n; t++ {
			for i := 0; i < p && t-i-1 >= 0; i++ {
				arGrad[i] -= 2 * residuals[t] * (y[t-i-1] - m.Intercept)
			}
			for i := 0; i < q && t-i-1 >= 0; i++ {
				maGrad[i] -= 2 * residuals[t] * residuals[t-i-1]
			}
		}

		for i := 0; i < p; i++ {
			m.ARCoeffs[i] -= learningRate * arGrad[i] / float64(n)
			m.ARCoeffs[i] = math.Max(-0.99, math.Min(0.99, m.ARCoeffs[i]))
		}
		for i := 0; i < q; i++ {
			m.MACoeffs[i] -= learningRate * maGrad[i] / float64(n)
			m.MACoeffs[i] = math.Max(-0.99, math.Min(0.99, m.MACoeffs[i]))
		}

		newSSE := 0.0
		for t := startIdx; t < n; t++ {
			pred := m.predictAt(y, residuals, t)
			residuals[t] = y[t] - pred
			newSSE += residuals[t] * residuals[t]
		}

		if math.Abs(prevSSE-newSSE) < tolerance {
			break
		}
	}

	// Final residuals and variance.
	m.residuals = make([]float64, n)
	for t := 0; t < n; t++ {
		if t < startIdx {
			m.residuals[t] = y[t] - m.Intercept
			continue
		}
		pred := m.predictAt(y, m.residuals, t)
		m.residuals[t] = y[t] - pred
	}

	sse := 0.0
	count := 0
	for t := startIdx; t < n; t++ {
		sse += m.residuals[t] * m.residuals[t]
		count++
	}
	if count > p+q+1 {
		m.Variance = sse / float64(count-p-q-1)
	} else if count > 0 {
		m.Variance = sse / float64(count)
	}
}

// predictAt evaluates the one-step prediction at index t given the
// differenced observations and residuals seen so far.
func (m *Model) predictAt(y, residuals []float64, t int) float64 {
	pred := m.Intercept
	for i := 0; i < m.Order.P && t-i-1 >= 0; i++ {
		pred += m.ARCoeffs[i] * (y[t-i-1] - m.Intercept)
	}
	for i := 0; i < m.Order.Q && t-i-1 >= 0; i++ {
		pred += m.MACoeffs[i] * residuals[t-i-1]
	}
	return pred
}

// calculateAIC computes the Akaike criterion from the Gaussian
// log-likelihood of the residuals.
func (m *Model) calculateAIC() {
	n := len(m.residuals)
	k := m.Order.P + m.Order.Q + 1

	sse := 0.0
	for _, r := range m.residuals {
		sse += r * r
	}

	logLik := math.Inf(-1)
	if m.Variance > 0 {
		logLik = -float64(n)/2*math.Log(2*math.Pi) - float64(n)/2*math.Log(m.Variance) - sse/(2*m.Variance)
	}
	m.AIC = -2*logLik + 2*float64(k)
}

// Predict generates point forecasts for the given number of steps ahead on
// the original (undifferenced) scale.
func (m *Model) Predict(steps int) ([]float64, error) {
	if !m.fitted {
		return nil, errors.New("model must be fitted before prediction")
	}
	if steps < 1 {
		return nil, errors.New("steps must be at least 1")
	}

	p := m.Order.P
	q := m.Order.Q
	y := m.diffData.Values
	n := len(y)

	extY := make([]float64, n+steps)
	copy(extY, y)
	extResiduals := make([]float64, n+steps)
	copy(extResiduals, m.residuals)

	for h := 0; h < steps; h++ {
		t := n + h
		pred := m.Intercept
		for i := 0; i < p && t-i-1 >= 0; i++ {
			pred += m.ARCoeffs[i] * (extY[t-i-1] - m.Intercept)
		}
		// Future residuals have expectation zero.
		for i := 0; i < q && t-i-1 >= 0 && t-i-1 < n; i++ {
			pred += m.MACoeffs[i] * extResiduals[t-i-1]
		}
		extY[t] = pred
		extResiduals[t] = 0
	}

	forecasts := extY[n:]
	if m.Order.D > 0 {
		forecasts = m.integrate(forecasts)
	}
	return forecasts, nil
}

// integrate undoes differencing to return forecasts on the original scale.
func (m *Model) integrate(forecasts []float64) []float64 {
	original := m.data.Values
	result := make([]float64, len(forecasts))
	copy(result, forecasts)

	for i := 0; i < m.Order.D; i++ {
		lastVal := original[len(original)-1-i]
		for j := range result {
			if j == 0 {
				result[j] += lastVal
			} else {
				result[j] += result[j-1]
			}
		}
	}
	return result
}

// Residuals returns a copy of the model residuals, or nil if unfitted.
func (m *Model) Residuals() []float64 {
	if !m.fitted {
		return nil
	}
	result := make([]float64, len(m.residuals))
	copy(result, m.residuals)
	return result
}

// yuleWalker estimates AR coefficients from autocorrelations via
// Levinson-Durbin recursion.
func yuleWalker(acf []float64, order int) []float64 {
	if order <= 0 || len(acf) <= order {
		return nil
	}

	phi := make([]float64, order)
	phi[0] = acf[1]
	if order == 1 {
		return phi
	}

	v := 1 - phi[0]*phi[0]
	for i := 1; i < order; i++ {
		lambda := acf[i+1]
		for j := 0; j < i; j++ {
			lambda -= phi[j] * acf[i-j]
		}
		lambda /= v

		newPhi := make([]float64, i+1)
		for j := 0; j < i; j++ {
			newPhi[j] = phi[j] - lambda*phi[i-1-j]
		}
		newPhi[i] = lambda
		copy(phi, newPhi)

		v *= 1 - lambda*lambda
		if v <= 0 {
			break
		}
	}
	return phi
}

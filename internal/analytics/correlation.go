package analytics

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"retail-inventory-lab/internal/domain"
)

// minTestSample is the smallest paired sample a significance test will
// accept. The gate is strict: exactly this many points is still skipped.
const minTestSample = 10

// significanceLevel is the two-sided alpha for flagging a test result.
const significanceLevel = 0.05

// ErrInsufficientSample is returned when a correlation test is requested on
// too few paired, non-NaN observations. The caller omits that pair's test
// from the report instead of failing the run.
var ErrInsufficientSample = errors.New("insufficient sample: need more than 10 paired observations")

// ErrZeroVariance is returned when either sample of a requested test is
// constant, so the coefficient is undefined. Like ErrInsufficientSample,
// the pair is skipped rather than reported.
var ErrZeroVariance = errors.New("zero variance in sample")

// NumericColumn names one numeric column of the derived table together
// with its accessor, for building the correlation matrix.
type NumericColumn struct {
	Name  string
	Value ValueFunc
}

// NumericColumns lists the columns participating in the correlation matrix,
// in display order.
func NumericColumns() []NumericColumn {
	return []NumericColumn{
		{"inventory_level", func(r *domain.MetricRow) float64 { return float64(r.Record.InventoryLevel) }},
		{"units_sold", func(r *domain.MetricRow) float64 { return float64(r.Record.UnitsSold) }},
		{"inventory_days", func(r *domain.MetricRow) float64 { return r.InventoryDays }},
		{"turnover_ratio", func(r *domain.MetricRow) float64 { return r.TurnoverRatio }},
		{"net_revenue", func(r *domain.MetricRow) float64 { return r.NetRevenue }},
		{"profit_margin", func(r *domain.MetricRow) float64 { return r.ProfitMargin }},
		{"profit_per_unit", func(r *domain.MetricRow) float64 { return r.ProfitPerUnit }},
		{"efficiency_score", func(r *domain.MetricRow) float64 { return r.Efficiency }},
		{"price", func(r *domain.MetricRow) float64 { return r.Record.Price }},
		{"discount", func(r *domain.MetricRow) float64 { return r.Record.Discount }},
		{"demand_forecast", func(r *domain.MetricRow) float64 { return r.Record.DemandForecast }},
	}
}

// dropPairwiseNaN keeps only index positions where both samples are finite,
// the same convention pandas dropna applies before a pairwise test.
func dropPairwiseNaN(xs, ys []float64) ([]float64, []float64) {
	cx := make([]float64, 0, len(xs))
	cy := make([]float64, 0, len(ys))
	for i := range xs {
		if math.IsNaN(xs[i]) || math.IsNaN(ys[i]) {
			continue
		}
		cx = append(cx, xs[i])
		cy = append(cy, ys[i])
	}
	return cx, cy
}

// Pearson computes the Pearson correlation coefficient over paired,
// NaN-dropped samples. Returns NaN when fewer than two pairs remain or
// when either sample has zero variance (the pandas corr convention).
func Pearson(xs, ys []float64) float64 {
	cx, cy := dropPairwiseNaN(xs, ys)
	n := len(cx)
	if n < 2 {
		return math.NaN()
	}

	mx, my := 0.0, 0.0
	for i := 0; i < n; i++ {
		mx += cx[i]
		my += cy[i]
	}
	mx /= float64(n)
	my /= float64(n)

	var sxy, sxx, syy float64
	for i := 0; i < n; i++ {
		dx := cx[i] - mx
		dy := cy[i] - my
		sxy += dx * dy
		sxx += dx * dx
		syy += dy * dy
	}
	if sxx == 0 || syy == 0 {
		return math.NaN()
	}
	return sxy / math.Sqrt(sxx*syy)
}

// PearsonTest runs a two-sided significance test for the correlation of two
// columns. Samples are paired then NaN-dropped; the test requires strictly
// more than minTestSample pairs, otherwise ErrInsufficientSample is
// returned and the pair is omitted from the report (not reported as
// zero-confidence). The p-value uses Student's t with n-2 degrees of
// freedom.
func PearsonTest(xName, yName string, xs, ys []float64) (*domain.CorrelationTest, error) {
	if len(xs) != len(ys) {
		return nil, fmt.Errorf("pearson test: sample length mismatch %d vs %d", len(xs), len(ys))
	}

	cx, cy := dropPairwiseNaN(xs, ys)
	n := len(cx)
	if n <= minTestSample {
		return nil, ErrInsufficientSample
	}

	r := Pearson(cx, cy)
	if math.IsNaN(r) {
		return nil, fmt.Errorf("pearson test %s vs %s: %w", xName, yName, ErrZeroVariance)
	}

	p := twoSidedPValue(r, n)
	return &domain.CorrelationTest{
		X:           xName,
		Y:           yName,
		Coefficient: r,
		PValue:      p,
		SampleSize:  n,
		Significant: p < significanceLevel,
	}, nil
}

// twoSidedPValue converts a coefficient into a two-sided p-value via the
// t statistic r*sqrt((n-2)/(1-r^2)).
func twoSidedPValue(r float64, n int) float64 {
	df := float64(n - 2)
	denom := 1 - r*r
	if denom <= 0 {
		// |r| == 1: the statistic diverges, the p-value is exactly zero.
		return 0
	}
	t := r * math.Sqrt(df/denom)
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	return 2 * dist.CDF(-math.Abs(t))
}

// StrengthLabel maps |r| onto the report's strength vocabulary.
func StrengthLabel(r float64) domain.CorrelationStrength {
	abs := math.Abs(r)
	switch {
	case abs >= 0.7:
		return domain.StrengthStrong
	case abs >= 0.3:
		return domain.StrengthModerate
	case abs >= 0.1:
		return domain.StrengthWeak
	default:
		return domain.StrengthVeryWeak
	}
}

// CorrelationMatrix computes pairwise Pearson coefficients for all numeric
// columns over the derived table. Returns ErrEmptyInput on an empty table.
func CorrelationMatrix(rows []*domain.MetricRow) (*domain.CorrelationMatrix, error) {
	if len(rows) == 0 {
		return nil, ErrEmptyInput
	}

	cols := NumericColumns()
	samples := make([][]float64, len(cols))
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
		samples[i] = make([]float64, len(rows))
		for j, row := range rows {
			samples[i][j] = c.Value(row)
		}
	}

	values := make([][]float64, len(cols))
	for i := range cols {
		values[i] = make([]float64, len(cols))
		for j := range cols {
			if j < i {
				values[i][j] = values[j][i]
				continue
			}
			if j == i {
				values[i][j] = 1
				continue
			}
			values[i][j] = Pearson(samples[i], samples[j])
		}
	}

	return &domain.CorrelationMatrix{Columns: names, Values: values}, nil
}

// columnSamples extracts one named column as a sample vector.
func columnSamples(rows []*domain.MetricRow, name string) ([]float64, error) {
	for _, c := range NumericColumns() {
		if c.Name != name {
			continue
		}
		out := make([]float64, len(rows))
		for i, row := range rows {
			out[i] = c.Value(row)
		}
		return out, nil
	}
	return nil, fmt.Errorf("unknown numeric column %q", name)
}

// TestPair identifies one requested significance test.
type TestPair struct {
	X string
	Y string
}

// SignificancePairs lists the relationships tested on every run.
func SignificancePairs() []TestPair {
	return []TestPair{
		{"inventory_days", "profit_margin"},
		{"turnover_ratio", "net_revenue"},
		{"inventory_level", "efficiency_score"},
	}
}

// RunSignificanceTests evaluates all standard pairs over the table. Each
// pair is independent: a pair skipped for insufficient sample or zero
// variance is reported by name in skipped and never discards the results
// of the other pairs.
func RunSignificanceTests(rows []*domain.MetricRow) (results []*domain.CorrelationTest, skipped []string, err error) {
	for _, pair := range SignificancePairs() {
		xs, err := columnSamples(rows, pair.X)
		if err != nil {
			return nil, nil, err
		}
		ys, err := columnSamples(rows, pair.Y)
		if err != nil {
			return nil, nil, err
		}

		test, err := PearsonTest(pair.X, pair.Y, xs, ys)
		if err != nil {
			if errors.Is(err, ErrInsufficientSample) || errors.Is(err, ErrZeroVariance) {
				skipped = append(skipped, fmt.Sprintf("%s vs %s", pair.X, pair.Y))
				continue
			}
			return nil, nil, err
		}
		results = append(results, test)
	}
	return results, skipped, nil
}

package domain

// CorrelationStrength labels the magnitude of a Pearson coefficient.
type CorrelationStrength string

const (
	StrengthStrong   CorrelationStrength = "Strong"
	StrengthModerate CorrelationStrength = "Moderate"
	StrengthWeak     CorrelationStrength = "Weak"
	StrengthVeryWeak CorrelationStrength = "Very Weak"
)

// CorrelationTest is the result of a Pearson significance test between two
// derived columns over paired, NaN-dropped samples.
type CorrelationTest struct {
	X           string
	Y           string
	Coefficient float64
	PValue      float64 // two-sided, Student's t with n-2 degrees of freedom
	SampleSize  int
	Significant bool // p < 0.05
}

// KeyCorrelation is a named coefficient from the correlation matrix,
// reported with its strength label.
type KeyCorrelation struct {
	Label       string
	Coefficient float64
	Strength    CorrelationStrength
}

// CorrelationMatrix holds pairwise Pearson coefficients for a fixed set of
// numeric columns. Values[i][j] is corr(Columns[i], Columns[j]); entries are
// NaN when either column has zero variance.
type CorrelationMatrix struct {
	Columns []string
	Values  [][]float64
}

// At returns the coefficient for a pair of named columns. The second return
// is false when either column is not part of the matrix.
func (m *CorrelationMatrix) At(x, y string) (float64, bool) {
	xi, yi := -1, -1
	for i, c := range m.Columns {
		if c == x {
			xi = i
		}
		if c == y {
			yi = i
		}
	}
	if xi < 0 || yi < 0 {
		return 0, false
	}
	return m.Values[xi][yi], true
}

package ztest

import (
	"testing"

	"abstats/domain/hypothesis"
	"abstats/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func indicators(successes, n int) []float64 {
	xs := make([]float64, n)
	for i := 0; i < successes; i++ {
		xs[i] = 1
	}
	return xs
}

func TestPropZStatScenario(t *testing.T) {
	st, err := PropZStat(50, 500, 70, 500)
	require.NoError(t, err)

	assert.InDelta(t, 0.1, st.P1, 1e-15)
	assert.InDelta(t, 0.14, st.P2, 1e-15)
	assert.InDelta(t, 0.12, st.PooledProportion, 1e-15)
	assert.InDelta(t, 0.020552372125864207, st.StdErr, 1e-9)
	assert.Less(t, st.Z, 0.0)
	assert.InDelta(t, -1.9462473604038077, st.Z, 1e-9)
}

func TestPropPValueManual(t *testing.T) {
	tests := []struct {
		alt  hypothesis.Alternative
		want float64
	}{
		{hypothesis.TwoSided, 0.05162503339423854},
		{hypothesis.Less, 0.02581251669711927},
		{hypothesis.Greater, 1 - 0.02581251669711927},
	}

	for _, tt := range tests {
		t.Run(tt.alt.String(), func(t *testing.T) {
			res, err := PropPValueManual(50, 500, 70, 500, tt.alt)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, res.PValue, 1e-9)
			assert.Equal(t, 500, res.N1)
			assert.Equal(t, 500, res.N2)
			assert.Equal(t, tt.alt, res.Alternative)
		})
	}
}

func TestPropPValueArrays(t *testing.T) {
	res, err := PropPValue(indicators(50, 500), indicators(70, 500), hypothesis.TwoSided)
	require.NoError(t, err)

	assert.InDelta(t, -1.9499439399175797, res.Z, 1e-9)
	assert.InDelta(t, 0.051182801176771084, res.PValue, 1e-9)
	assert.InDelta(t, 0.1, res.P1, 1e-12)
	assert.InDelta(t, 0.14, res.P2, 1e-12)
	assert.InDelta(t, 0.12, res.PooledProportion, 1e-12)

	// Close to the summary-count test for large groups.
	manual, err := PropPValueManual(50, 500, 70, 500, hypothesis.TwoSided)
	require.NoError(t, err)
	assert.InDelta(t, manual.PValue, res.PValue, 1e-3)
}

func TestPropPValueArraysAlternatives(t *testing.T) {
	a := indicators(30, 200)
	b := indicators(18, 200)

	two, err := PropPValue(a, b, hypothesis.TwoSided)
	require.NoError(t, err)
	greater, err := PropPValue(a, b, hypothesis.Greater)
	require.NoError(t, err)
	less, err := PropPValue(a, b, hypothesis.Less)
	require.NoError(t, err)

	assert.Greater(t, two.Z, 0.0)
	assert.InDelta(t, two.PValue/2, greater.PValue, 1e-12)
	assert.InDelta(t, 1, greater.PValue+less.PValue, 1e-12)
}

func TestEqualProportions(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n1 := rapid.IntRange(2, 2000).Draw(rt, "n1")
		x1 := rapid.IntRange(1, n1-1).Draw(rt, "x1")
		m := rapid.IntRange(1, 20).Draw(rt, "m")

		res, err := PropPValueManual(x1, n1, x1*m, n1*m, hypothesis.TwoSided)
		require.NoError(rt, err)
		assert.Equal(rt, 0.0, res.Z)
		assert.Equal(rt, 1.0, res.PValue)
	})
}

func TestPropInvalidInput(t *testing.T) {
	tests := []struct {
		name           string
		x1, n1, x2, n2 int
		code           string
	}{
		{"empty group 1", 0, 0, 3, 10, errors.CodeInvalidInput},
		{"empty group 2", 3, 10, 0, 0, errors.CodeInvalidInput},
		{"successes exceed trials", 11, 10, 3, 10, errors.CodeInvalidInput},
		{"negative successes", 3, 10, -1, 10, errors.CodeInvalidInput},
		{"no successes anywhere", 0, 10, 0, 12, errors.CodeNumericDegenerate},
		{"all successes", 10, 10, 12, 12, errors.CodeNumericDegenerate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := PropPValueManual(tt.x1, tt.n1, tt.x2, tt.n2, hypothesis.TwoSided)
			require.Error(t, err)
			assert.Equal(t, tt.code, errors.GetCode(err))
			assert.Equal(t, hypothesis.ZTestResult{}, res)
		})
	}
}

func TestPropPValueArraysInvalid(t *testing.T) {
	_, err := PropPValue(nil, indicators(1, 3), hypothesis.TwoSided)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))

	_, err = PropPValue([]float64{0, 1, 0.5}, indicators(1, 3), hypothesis.TwoSided)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))

	_, err = PropPValue(indicators(0, 4), indicators(5, 5), hypothesis.TwoSided)
	assert.Equal(t, errors.CodeNumericDegenerate, errors.GetCode(err))
}

func TestCountsAndIndicatorsRoundTrip(t *testing.T) {
	conv, err := Indicators("group 1", 3, 8)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 1, 1, 0, 0, 0, 0, 0}, conv)

	x, n, err := CountSuccesses("group 1", conv)
	require.NoError(t, err)
	assert.Equal(t, 3, x)
	assert.Equal(t, 8, n)

	_, err = Indicators("group 1", 9, 8)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))

	_, _, err = CountSuccesses("group 1", []float64{1, 2})
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

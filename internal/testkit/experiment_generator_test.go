package testkit

import (
	"testing"

	"abstats/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExperimentGeneratorDeterministic(t *testing.T) {
	config := DefaultExperimentConfig()

	gen1, err := NewExperimentGenerator(config)
	require.NoError(t, err)
	gen2, err := NewExperimentGenerator(config)
	require.NoError(t, err)

	assert.Equal(t, gen1.Generate(), gen2.Generate())
}

func TestExperimentGeneratorShapes(t *testing.T) {
	config := DefaultExperimentConfig()
	config.ControlSize = 300
	config.TreatmentSize = 200

	gen, err := NewExperimentGenerator(config)
	require.NoError(t, err)
	exp := gen.Generate()

	assert.Equal(t, 300, exp.Control.Size())
	assert.Len(t, exp.Control.Revenue, 300)
	assert.Equal(t, 200, exp.Treatment.Size())

	for _, arm := range []Arm{exp.Control, exp.Treatment} {
		var sum float64
		for _, c := range arm.Conversions {
			assert.True(t, c == 0 || c == 1)
			sum += c
		}
		assert.Equal(t, float64(arm.Successes), sum)
	}
}

func TestExperimentGeneratorRatesAndMeans(t *testing.T) {
	config := ExperimentConfig{
		ControlSize:   20000,
		TreatmentSize: 20000,
		ControlRate:   0.2,
		TreatmentRate: 0.5,
		ControlMean:   10,
		TreatmentMean: 30,
		StdDev:        2,
		Seed:          3,
	}
	gen, err := NewExperimentGenerator(config)
	require.NoError(t, err)
	exp := gen.Generate()

	control, err := Summarize(exp.Control)
	require.NoError(t, err)
	treatment, err := Summarize(exp.Treatment)
	require.NoError(t, err)

	assert.InDelta(t, 0.2, control.ConversionRate, 0.02)
	assert.InDelta(t, 0.5, treatment.ConversionRate, 0.02)
	assert.InDelta(t, 10, control.RevenueMean, 0.1)
	assert.InDelta(t, 30, treatment.RevenueMedian, 0.1)
	assert.InDelta(t, 2, treatment.RevenueStdDev, 0.1)
}

func TestExperimentGeneratorRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ExperimentConfig)
	}{
		{"tiny control", func(c *ExperimentConfig) { c.ControlSize = 1 }},
		{"rate above one", func(c *ExperimentConfig) { c.TreatmentRate = 1.5 }},
		{"zero spread", func(c *ExperimentConfig) { c.StdDev = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultExperimentConfig()
			tt.mutate(&config)
			_, err := NewExperimentGenerator(config)
			assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
		})
	}
}

func TestSummarizeEmptyArm(t *testing.T) {
	_, err := Summarize(Arm{})
	assert.True(t, errors.IsInvalidInput(err))
}

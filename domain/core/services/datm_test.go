package services

import (
	"testing"

	"capsulehub/domain/core/valueobjects"
	pkgerrors "capsulehub/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeScore_WeightedOverall(t *testing.T) {
	inputs := valueobjects.DATMInputs{
		Truth:        85,
		Goodness:     80,
		Beauty:       75,
		Intelligence: 90,
		Confidence:   0.85,
	}

	score, err := ComputeScore(inputs)

	require.NoError(t, err)
	// 0.85 * (85*0.35 + 80*0.20 + 75*0.15 + 90*0.30) = 72.25
	assert.InDelta(t, 72.25, score.OverallScore, 1e-9)
	assert.Equal(t, "B", score.OverallGrade)
}

func TestComputeScore_GradeBoundaries(t *testing.T) {
	tests := []struct {
		name       string
		confidence float64
		grade      string
	}{
		{"full confidence is A+", 1.0, "A+"},
		{"at 90 is A+", 0.90, "A+"},
		{"just under 90 is A", 0.899, "A"},
		{"at 80 is A", 0.80, "A"},
		{"at 70 is B", 0.70, "B"},
		{"at 60 is C", 0.60, "C"},
		{"below 60 is D", 0.59, "D"},
		{"zero confidence is D", 0.0, "D"},
	}

	// All sub-scores at 100 so overall == confidence * 100
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inputs := valueobjects.DATMInputs{
				Truth:        100,
				Goodness:     100,
				Beauty:       100,
				Intelligence: 100,
				Confidence:   tt.confidence,
			}

			score, err := ComputeScore(inputs)

			require.NoError(t, err)
			assert.Equal(t, tt.grade, score.OverallGrade)
		})
	}
}

func TestComputeScore_RejectsOutOfRangeInputs(t *testing.T) {
	valid := valueobjects.DATMInputs{
		Truth:        50,
		Goodness:     50,
		Beauty:       50,
		Intelligence: 50,
		Confidence:   0.5,
	}

	tests := []struct {
		name   string
		mutate func(*valueobjects.DATMInputs)
	}{
		{"truth above 100", func(in *valueobjects.DATMInputs) { in.Truth = 100.1 }},
		{"truth below 0", func(in *valueobjects.DATMInputs) { in.Truth = -0.1 }},
		{"goodness above 100", func(in *valueobjects.DATMInputs) { in.Goodness = 101 }},
		{"beauty below 0", func(in *valueobjects.DATMInputs) { in.Beauty = -5 }},
		{"intelligence above 100", func(in *valueobjects.DATMInputs) { in.Intelligence = 200 }},
		{"confidence above 1", func(in *valueobjects.DATMInputs) { in.Confidence = 1.01 }},
		{"confidence below 0", func(in *valueobjects.DATMInputs) { in.Confidence = -0.01 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inputs := valid
			tt.mutate(&inputs)

			_, err := ComputeScore(inputs)

			require.Error(t, err)
			assert.True(t, pkgerrors.IsInvalidScoreInput(err), "expected InvalidScoreInput, got %v", err)
		})
	}
}

func TestComputeScore_Deterministic(t *testing.T) {
	inputs := valueobjects.DATMInputs{
		Truth:        61.7,
		Goodness:     44.3,
		Beauty:       92.1,
		Intelligence: 73.9,
		Confidence:   0.77,
	}

	first, err := ComputeScore(inputs)
	require.NoError(t, err)

	for i := 0; i < 100; i++ {
		again, err := ComputeScore(inputs)
		require.NoError(t, err)
		assert.Equal(t, first.OverallScore, again.OverallScore)
		assert.Equal(t, first.OverallGrade, again.OverallGrade)
	}
}

func TestComputeScore_MonotonicInConfidence(t *testing.T) {
	base := valueobjects.DATMInputs{
		Truth:        70,
		Goodness:     70,
		Beauty:       70,
		Intelligence: 70,
	}

	prev := -1.0
	for _, confidence := range []float64{0.1, 0.3, 0.5, 0.7, 0.9, 1.0} {
		inputs := base
		inputs.Confidence = confidence

		score, err := ComputeScore(inputs)

		require.NoError(t, err)
		assert.Greater(t, score.OverallScore, prev)
		prev = score.OverallScore
	}
}

func TestComputeScore_MonotonicInSubScores(t *testing.T) {
	low := valueobjects.DATMInputs{Truth: 40, Goodness: 40, Beauty: 40, Intelligence: 40, Confidence: 0.8}
	high := low
	high.Truth = 95

	lowScore, err := ComputeScore(low)
	require.NoError(t, err)
	highScore, err := ComputeScore(high)
	require.NoError(t, err)

	assert.Greater(t, highScore.OverallScore, lowScore.OverallScore)
}

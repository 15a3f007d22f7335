package services

import (
	"fmt"

	"capsulehub/domain/core/valueobjects"
	pkgerrors "capsulehub/pkg/errors"
)

// DATM sub-score weights. Fixed constants, sum to 1.0.
const (
	WeightTruth        = 0.35
	WeightGoodness     = 0.20
	WeightBeauty       = 0.15
	WeightIntelligence = 0.30
)

// Score is the derived DATM result. Never persisted as authoritative
// state; always recomputable from its inputs.
type Score struct {
	Inputs       valueobjects.DATMInputs `json:"inputs"`
	OverallScore float64                 `json:"overall_score"`
	OverallGrade string                  `json:"overall_grade"`
}

// ComputeScore derives the weighted overall score and letter grade.
// The function is pure and deterministic: identical inputs always produce
// identical output. Out-of-range inputs fail, never clamp.
func ComputeScore(in valueobjects.DATMInputs) (Score, error) {
	if err := validateInputs(in); err != nil {
		return Score{}, err
	}

	weighted := WeightTruth*in.Truth +
		WeightGoodness*in.Goodness +
		WeightBeauty*in.Beauty +
		WeightIntelligence*in.Intelligence
	overall := in.Confidence * weighted

	return Score{
		Inputs:       in,
		OverallScore: overall,
		OverallGrade: GradeFor(overall),
	}, nil
}

// GradeFor maps an overall score on the 0..100 scale to a letter grade
func GradeFor(overall float64) string {
	switch {
	case overall >= 90:
		return "A+"
	case overall >= 80:
		return "A"
	case overall >= 70:
		return "B"
	case overall >= 60:
		return "C"
	default:
		return "D"
	}
}

func validateInputs(in valueobjects.DATMInputs) error {
	subScores := []struct {
		name  string
		value float64
	}{
		{"truth", in.Truth},
		{"goodness", in.Goodness},
		{"beauty", in.Beauty},
		{"intelligence", in.Intelligence},
	}
	for _, s := range subScores {
		if s.value < 0 || s.value > 100 {
			return pkgerrors.NewInvalidScoreInputError(
				fmt.Sprintf("%s sub-score %v outside [0,100]", s.name, s.value))
		}
	}
	if in.Confidence < 0 || in.Confidence > 1 {
		return pkgerrors.NewInvalidScoreInputError(
			fmt.Sprintf("confidence %v outside [0,1]", in.Confidence))
	}
	return nil
}

package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type evolveFixture struct {
	TargetCapsuleID string `validate:"required,uuid4"`
	RelationType    string `validate:"required,oneof=derived_from forked_from merged_from refuted_by superseded_by"`
	Note            string `validate:"max=10"`
}

func TestValidateStruct_ValidInput(t *testing.T) {
	err := ValidateStruct(evolveFixture{
		TargetCapsuleID: "b2c9d3e4-5f60-4a1b-8c2d-3e4f5a6b7c8d",
		RelationType:    "derived_from",
	})
	assert.NoError(t, err)
}

func TestValidateStruct_MessagesPerTag(t *testing.T) {
	tests := []struct {
		name  string
		input evolveFixture
		want  string
	}{
		{
			name:  "missing required field",
			input: evolveFixture{RelationType: "derived_from"},
			want:  "targetcapsuleid is required",
		},
		{
			name: "malformed uuid",
			input: evolveFixture{
				TargetCapsuleID: "not-a-uuid",
				RelationType:    "derived_from",
			},
			want: "targetcapsuleid must be a valid UUID",
		},
		{
			name: "unknown relation type",
			input: evolveFixture{
				TargetCapsuleID: "b2c9d3e4-5f60-4a1b-8c2d-3e4f5a6b7c8d",
				RelationType:    "sideways",
			},
			want: "relationtype must be one of: derived_from forked_from merged_from refuted_by superseded_by",
		},
		{
			name: "note too long",
			input: evolveFixture{
				TargetCapsuleID: "b2c9d3e4-5f60-4a1b-8c2d-3e4f5a6b7c8d",
				RelationType:    "derived_from",
				Note:            "this note exceeds the bound",
			},
			want: "note must be at most 10",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(tt.input)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidateStruct_JoinsMultipleFieldErrors(t *testing.T) {
	err := ValidateStruct(evolveFixture{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "targetcapsuleid is required; relationtype is required")
}

package valueobjects

import "fmt"

// DATMInputs are the four quality sub-scores plus the confidence
// multiplier attached to a capsule version. Sub-scores live in [0,100],
// confidence in [0,1]. Bounds are enforced by the scorer, which fails on
// out-of-range values rather than clamping.
type DATMInputs struct {
	Truth        float64 `json:"truth" validate:"min=0,max=100"`
	Goodness     float64 `json:"goodness" validate:"min=0,max=100"`
	Beauty       float64 `json:"beauty" validate:"min=0,max=100"`
	Intelligence float64 `json:"intelligence" validate:"min=0,max=100"`
	Confidence   float64 `json:"confidence" validate:"min=0,max=1"`
}

// CacheKey derives a stable memoization key. Two input sets share a key
// only when they are bit-identical, which is exactly the invalidation rule
// a cached derived score needs.
func (in DATMInputs) CacheKey() string {
	return fmt.Sprintf("datm:%x:%x:%x:%x:%x",
		in.Truth, in.Goodness, in.Beauty, in.Intelligence, in.Confidence)
}

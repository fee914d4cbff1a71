// Package emotion carries the fixed 8-dimensional emotion vectors the
// speech synthesizer consumes and the client for the sentiment service
// that produces them.
package emotion

import "math"

// Dimensions of a Vector, index-aligned with the sentiment service's
// label order: joy, sadness, anger, fear, surprise, disgust, neutral,
// other.
const Dims = 8

// Labels as the sentiment service reports them in all_scores.
var Labels = [Dims]string{"기쁨", "슬픔", "분노", "두려움", "놀라움", "혐오", "중립", "기타"}

const neutralIndex = 6

type Vector [Dims]float64

// Neutral is the fallback when scoring is unavailable.
func Neutral() Vector {
	var v Vector
	v[neutralIndex] = 1.0
	return v
}

// Blend mixes the user- and assistant-derived vectors 30/70 and rounds
// each component to 3 decimals.
func Blend(user, assistant Vector) Vector {
	var out Vector
	for i := range out {
		out[i] = round3(0.3*user[i] + 0.7*assistant[i])
	}
	return out
}

// Dominant returns the label and score of the strongest component.
// Diagnostics only; ties resolve to the lowest index.
func (v Vector) Dominant() (string, float64) {
	best := 0
	for i := 1; i < Dims; i++ {
		if v[i] > v[best] {
			best = i
		}
	}
	return Labels[best], v[best]
}

// Slice returns the vector as a plain slice for JSON payloads.
func (v Vector) Slice() []float64 {
	out := make([]float64, Dims)
	copy(out, v[:])
	return out
}

// FromScores builds a vector from a label→score map, defaulting missing
// labels to 0 and rounding to 3 decimals.
func FromScores(scores map[string]float64) Vector {
	var v Vector
	for i, label := range Labels {
		v[i] = round3(scores[label])
	}
	return v
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}

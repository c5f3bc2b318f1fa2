package utils

import "math"

// NormalizeL2 scales the embedding vector in place to unit L2 norm. The sum
// of squares accumulates in float64 so long vectors do not lose precision. A
// zero vector is left untouched.
func NormalizeL2(vec []float32) {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return
	}
	inv := float32(1 / math.Sqrt(sum))
	for i := range vec {
		vec[i] *= inv
	}
}

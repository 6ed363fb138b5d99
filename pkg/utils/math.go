package utils

import "math"

// L2Norm returns the Euclidean length of x.
func L2Norm(x []float64) float64 {
	var sum float64
	for _, v := range x {
		sum += v * v
	}
	return math.Sqrt(sum)
}

// NormalizeL2 divides every component of x by its L2 norm in place.
// A zero vector is left unchanged.
func NormalizeL2(x []float64) {
	n := L2Norm(x)
	if n == 0 {
		return
	}
	for i := range x {
		x[i] /= n
	}
}

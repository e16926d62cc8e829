package utils

import "math"

func ToPtr[T any](v T) *T {
	return &v
}

// RoundTo rounds v to the given number of decimal places.
func RoundTo(v float64, places int) float64 {
	pow := math.Pow(10, float64(places))
	return math.Round(v*pow) / pow
}

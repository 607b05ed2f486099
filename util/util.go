package util

import (
	"math"
	"strconv"

	"golang.org/x/exp/constraints"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

func GetSortedKeys[A constraints.Ordered, B any](m map[A]B) []A {
	keys := maps.Keys(m)
	slices.Sort(keys)
	return keys
}

func Min[A constraints.Integer | constraints.Float](num1 A, num2 A) A {
	if num1 > num2 {
		return num2
	}
	return num1
}

func Max[A constraints.Integer | constraints.Float](num1 A, num2 A) A {
	if num1 < num2 {
		return num2
	}
	return num1
}

func Abs[A constraints.Signed | constraints.Float](num A) A {
	if num < 0 {
		return -num
	}
	return num
}

func Sign[A constraints.Signed | constraints.Float](num A) int {
	switch {
	case num > 0:
		return 1
	case num < 0:
		return -1
	}
	return 0
}

func Round(f float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(f*p) / p
}

// FormatNumber prints f with at most places decimals and no trailing zeros,
// so 2.500 becomes "2.5" and 3.000 becomes "3".
func FormatNumber(f float64, places int) string {
	return strconv.FormatFloat(Round(f, places), 'f', -1, 64)
}

func IsPowerOfTwo[A constraints.Integer](n A) bool {
	return n > 0 && n&(n-1) == 0
}

package score

import (
	"math"

	"github.com/google/go-cmp/cmp"
)

func floatNear() cmp.Option {
	return cmp.Comparer(func(x, y float64) bool {
		return math.Abs(x-y) < 1e-9
	})
}

// Iterator helpers
package iterutils

import "iter"

// Passes seq through unchanged, calling f with the 0-based index of each value
// before it is yielded downstream.
func Tap[V any](seq iter.Seq[V], f func(i int, v V)) iter.Seq[V] {
	return func(yield func(V) bool) {
		i := 0
		for v := range seq {
			f(i, v)
			i += 1

			if !yield(v) {
				return
			}
		}
	}
}

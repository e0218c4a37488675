// Package metric implements the distance functions the index is
// parametric over. The default and only metric this implementation wires
// up is squared Euclidean distance, which is monotonic in true Euclidean
// distance and avoids a square root on every comparison — the conventional
// choice for ranking in ANN graphs.
package metric

import (
	"unsafe"

	"github.com/x448/float16"
)

// Scalar is the set of element types a vector can be stored as.
type Scalar interface {
	~float32 | ~float64 | float16.Float16
}

// Func computes a symmetric, non-negative distance between two vectors of
// equal length. Implementations assume len(a) == len(b).
type Func[T Scalar] func(a, b []T) float64

// SquaredL2 returns the squared Euclidean distance function appropriate
// for T, resolved once at index construction time rather than per call.
func SquaredL2[T Scalar]() Func[T] {
	var zero T
	switch any(zero).(type) {
	case float32:
		return func(a, b []T) float64 { return squaredL2F32(asF32(a), asF32(b)) }
	case float64:
		return func(a, b []T) float64 { return squaredL2F64(asF64(a), asF64(b)) }
	case float16.Float16:
		return func(a, b []T) float64 { return squaredL2F16(asF16(a), asF16(b)) }
	default:
		panic("metric: unsupported scalar type")
	}
}

// asF32/asF64/asF16 reinterpret a []T as the concrete scalar slice the
// SquaredL2 type switch just proved T to be. Each case is only reachable
// when T's memory layout matches the target type exactly, so the pointer
// cast is sound; it exists purely to work around Go generics not
// permitting []T to unify with []float32 even after a runtime type switch.
func asF32[T Scalar](v []T) []float32 {
	if len(v) == 0 {
		return nil
	}
	return unsafe.Slice((*float32)(unsafe.Pointer(&v[0])), len(v))
}

func asF64[T Scalar](v []T) []float64 {
	if len(v) == 0 {
		return nil
	}
	return unsafe.Slice((*float64)(unsafe.Pointer(&v[0])), len(v))
}

func asF16[T Scalar](v []T) []float16.Float16 {
	if len(v) == 0 {
		return nil
	}
	return unsafe.Slice((*float16.Float16)(unsafe.Pointer(&v[0])), len(v))
}

func squaredL2F32(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum
}

func squaredL2F64(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

func squaredL2F16(a, b []float16.Float16) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i].Float32()) - float64(b[i].Float32())
		sum += d * d
	}
	return sum
}

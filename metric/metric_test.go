package metric

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/x448/float16"
)

func TestSquaredL2Float32(t *testing.T) {
	d := SquaredL2[float32]()
	assert.Equal(t, 0.0, d([]float32{1, 2, 3}, []float32{1, 2, 3}))
	assert.InDelta(t, 1.0, d([]float32{0, 0}, []float32{1, 0}), 1e-9)
	assert.InDelta(t, 2.0, d([]float32{0, 0}, []float32{1, 1}), 1e-9)
}

func TestSquaredL2Float64(t *testing.T) {
	d := SquaredL2[float64]()
	assert.InDelta(t, 25.0, d([]float64{0, 0}, []float64{3, 4}), 1e-9)
}

func TestSquaredL2Float16(t *testing.T) {
	d := SquaredL2[float16.Float16]()
	a := []float16.Float16{float16.Fromfloat32(0), float16.Fromfloat32(0)}
	b := []float16.Float16{float16.Fromfloat32(3), float16.Fromfloat32(4)}
	assert.InDelta(t, 25.0, d(a, b), 1e-2)
}

package random_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sherine-k/outbreak/pkg/random"
)

func TestSeededSourceIsReproducible(t *testing.T) {
	a := random.NewSeeded(42)
	b := random.NewSeeded(42)
	for i := 0; i < 100; i++ {
		require.Equal(t, a.Float64(), b.Float64())
		require.Equal(t, a.IntRange(7, 14), b.IntRange(7, 14))
		require.Equal(t, a.Intn(200), b.Intn(200))
	}
	assert.Equal(t, int64(42), a.Seed())
}

func TestSeededRanges(t *testing.T) {
	r := random.NewSeeded(7)
	for i := 0; i < 1000; i++ {
		f := r.Float64()
		require.GreaterOrEqual(t, f, 0.0)
		require.Less(t, f, 1.0)

		u := r.Uniform(-1, 1)
		require.GreaterOrEqual(t, u, -1.0)
		require.Less(t, u, 1.0)

		n := r.IntRange(7, 14)
		require.GreaterOrEqual(t, n, 7)
		require.LessOrEqual(t, n, 14)

		k := r.Intn(5)
		require.GreaterOrEqual(t, k, 0)
		require.Less(t, k, 5)
	}
}

func TestIntRangeSingleValue(t *testing.T) {
	r := random.NewSeeded(1)
	for i := 0; i < 10; i++ {
		assert.Equal(t, 3, r.IntRange(3, 3))
	}
}

func TestIntRangeCoversBothEnds(t *testing.T) {
	r := random.NewSeeded(99)
	seen := map[int]bool{}
	for i := 0; i < 2000; i++ {
		seen[r.IntRange(1, 3)] = true
	}
	assert.True(t, seen[1], "lower bound never drawn")
	assert.True(t, seen[3], "upper bound never drawn")
}

func TestScriptReplaysValues(t *testing.T) {
	s := random.NewScript([]float64{0.25, 0.75}, []int{4, 2})

	assert.Equal(t, 0.25, s.Float64())
	assert.Equal(t, 0.5, s.Uniform(-1, 1))
	assert.Equal(t, 4, s.IntRange(1, 10))
	assert.Equal(t, 2, s.Intn(10))

	assert.Equal(t, 2, s.FloatDraws())
	assert.Equal(t, 2, s.IntDraws())

	floats, ints := s.Remaining()
	assert.Zero(t, floats)
	assert.Zero(t, ints)
}

func TestScriptExhaustedWithoutFallback(t *testing.T) {
	s := random.NewScript(nil, nil)
	assert.Equal(t, 0.0, s.Float64())
	assert.Equal(t, 5, s.IntRange(5, 9))
	assert.Equal(t, 0, s.Intn(3))
}

func TestScriptFallback(t *testing.T) {
	want := random.NewSeeded(3).Float64()
	s := random.NewScript([]float64{0.1}, nil).WithFallback(random.NewSeeded(3))

	assert.Equal(t, 0.1, s.Float64())
	assert.Equal(t, want, s.Float64())
}

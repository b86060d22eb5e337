package rand

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit(t *testing.T) {
	assert.Equal(t, uint32(987654322), New(1).State())
	assert.Equal(t, uint32(987654321), New(0).State())

	// Seeds are truncated to 32 bits and wrap when the offset is added.
	assert.Equal(t, New(1).State(), New(1+(1<<32)).State())
	assert.Equal(t, uint32(987654321-1), New(-1).State())
}

func TestUniformGolden(t *testing.T) {
	gen := New(1)
	golden := []float64{
		0.7876072750422032,
		0.026087507984698388,
		0.11750270868985102,
		0.7585303715459895,
		0.1073489864801132,
	}
	for i, want := range golden {
		assert.Equal(t, want, gen.Uniform01(), "draw %d", i)
	}
	assert.Equal(t, uint32(2138399140), gen.State())

	gen.Init(42)
	assert.Equal(t, 0.79018378498106, gen.Uniform01())
	assert.Equal(t, 0.3762733809728108, gen.Uniform01())
	assert.Equal(t, 0.04730487767203401, gen.Uniform01())
}

func TestNormalGolden(t *testing.T) {
	gen := New(1)
	golden := []float64{
		0.6022639682831608,
		0.5166296939480286,
		0.46042160805681415,
	}
	for i, want := range golden {
		assert.InDelta(t, want, gen.Normal01(), 1e-12, "draw %d", i)
	}
}

func TestUniformRange(t *testing.T) {
	gen := New(7)
	for i := 0; i < 100000; i++ {
		x := gen.Uniform01()
		require.True(t, x >= 0 && x < 1, "draw %d = %g", i, x)
	}
}

func TestNormalRange(t *testing.T) {
	for _, seed := range []int64{1, 2, 3, 1234567, 1 << 31} {
		gen := New(seed)
		for i := 0; i < 20000; i++ {
			x := gen.Normal01()
			require.True(t, x >= 0 && x < 1, "seed %d draw %d = %g", seed, i, x)
		}
	}
}

func TestNormalConsumesUniformPairs(t *testing.T) {
	gen, ref := New(99), New(99)
	gen.Normal01()

	// An accepted draw consumes an even, non-zero number of uniforms.
	n := 0
	for ref.State() != gen.State() {
		ref.Uniform01()
		n++
		require.True(t, n < 1000)
	}
	assert.True(t, n >= 2)
	assert.Equal(t, 0, n%2)
}

func TestGeneratorsAreIndependent(t *testing.T) {
	a, b := New(5), New(5)
	xs := make([]float64, 10)
	for i := range xs {
		xs[i] = a.Uniform01()
		New(1234).Uniform01()
	}
	for i := range xs {
		assert.Equal(t, xs[i], b.Uniform01())
	}
}

func TestKindForSeed(t *testing.T) {
	k, s := KindForSeed(17)
	assert.Equal(t, Uniform, k)
	assert.Equal(t, int64(17), s)

	k, s = KindForSeed(-17)
	assert.Equal(t, Normal, k)
	assert.Equal(t, int64(17), s)

	k, s = KindForSeed(0)
	assert.Equal(t, Uniform, k)
	assert.Equal(t, int64(0), s)
}

func TestDraw(t *testing.T) {
	a, b := New(3), New(3)
	assert.Equal(t, a.Uniform01(), b.Draw(Uniform))
	assert.Equal(t, a.Normal01(), b.Draw(Normal))
	assert.Panics(t, func() { b.Draw(Kind(9)) })
	assert.Equal(t, "Normal", Normal.String())
	assert.Equal(t, "Kind(9)", Kind(9).String())
}

func BenchmarkUniform01(b *testing.B) {
	gen := New(1)
	for i := 0; i < b.N; i++ {
		gen.Uniform01()
	}
}

func BenchmarkNormal01(b *testing.B) {
	gen := New(1)
	for i := 0; i < b.N; i++ {
		gen.Normal01()
	}
}

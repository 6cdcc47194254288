package calib

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/cyclopcam/labeltool/pkg/annotation"
	"github.com/stretchr/testify/require"
)

const eps = 1e-9

func requireBoxNear(t *testing.T, expect, actual *annotation.Annotation, delta float64) {
	t.Helper()
	require.InDelta(t, expect.X, actual.X, delta)
	require.InDelta(t, expect.Y, actual.Y, delta)
	require.InDelta(t, expect.Width, actual.Width, delta)
	require.InDelta(t, expect.Height, actual.Height, delta)
}

func randomBox(rng *rand.Rand) *annotation.Annotation {
	a := annotation.NewBox("Vehicle", rng.Float64()*1920, rng.Float64()*1200, rng.Float64()*300, rng.Float64()*300)
	a.SetID(rng.Int63n(1000))
	return a
}

func TestUnsupportedCameraCount(t *testing.T) {
	for _, n := range []int{0, 1, 3, 5} {
		_, err := New(n, 1920, 1200)
		require.True(t, errors.Is(err, ErrUnsupportedCameraCount), "n=%v", n)
	}
	for _, n := range []int{2, 4} {
		c, err := New(n, 1920, 1200)
		require.NoError(t, err)
		require.Equal(t, n, c.NumViews())
	}
	_, err := NewWithAnchors([]Anchor{{Scale: 0}}, 10, 10)
	require.Error(t, err)
}

func TestGolden(t *testing.T) {
	c, err := New(4, 1920, 1200)
	require.NoError(t, err)
	x0, y0 := c.Reference()
	require.Equal(t, 910.0, x0)
	require.Equal(t, 630.0, y0)

	in := annotation.NewBox("Vehicle", 100, 100, 50, 50)
	in.SetID(7)
	in.Attributes = map[string]any{"scale": "small"}
	out, err := c.Convert(in, 0, 2)
	require.NoError(t, err)
	require.InDelta(t, -2450.0, out.X, eps)
	require.InDelta(t, -1593.0-1.0/3.0, out.Y, eps)
	require.InDelta(t, 1250.0/6.0, out.Width, eps)
	require.InDelta(t, 1250.0/6.0, out.Height, eps)

	// Everything else is copied, and the input is untouched
	require.True(t, out.HasID(7))
	require.Equal(t, "Vehicle", out.Class)
	require.Equal(t, "small", out.Attributes["scale"])
	require.Equal(t, 100.0, in.X)
	require.Equal(t, 50.0, in.Width)
	out.Attributes["scale"] = "large"
	out.SetID(8)
	require.Equal(t, "small", in.Attributes["scale"])
	require.True(t, in.HasID(7))
}

func TestIdentity(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	c, err := New(4, 1920, 1200)
	require.NoError(t, err)
	for i := 0; i < 100; i++ {
		in := randomBox(rng)
		for v := 0; v < 4; v++ {
			out, err := c.Convert(in, v, v)
			require.NoError(t, err)
			requireBoxNear(t, in, out, 1e-9)
		}
	}
}

func TestScaleInvariant(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	c, err := New(4, 1920, 1200)
	require.NoError(t, err)
	for i := 0; i < 100; i++ {
		in := randomBox(rng)
		from := rng.Intn(4)
		to := rng.Intn(4)
		ratio, err := c.Ratio(from, to)
		require.NoError(t, err)
		require.Equal(t, c.Anchor(to).Scale/c.Anchor(from).Scale, ratio)
		out, err := c.Convert(in, from, to)
		require.NoError(t, err)
		require.InDelta(t, in.Width*ratio, out.Width, 1e-9)
		require.InDelta(t, in.Height*ratio, out.Height, 1e-9)
	}
}

func TestRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(3))

	// Anchors that share a center invert exactly
	shared, err := NewWithAnchors([]Anchor{{Scale: 6}, {Scale: 12.5}, {Scale: 50}}, 1920, 1200)
	require.NoError(t, err)
	for i := 0; i < 100; i++ {
		in := randomBox(rng)
		a := rng.Intn(3)
		b := rng.Intn(3)
		there, err := shared.Convert(in, a, b)
		require.NoError(t, err)
		back, err := shared.Convert(there, b, a)
		require.NoError(t, err)
		requireBoxNear(t, in, back, 1e-6)
	}

	// When centers differ, the translation is applied after scaling, so the way back
	// lands d*(1/r - 1) away from the start.
	c, err := New(4, 1920, 1200)
	require.NoError(t, err)
	for i := 0; i < 100; i++ {
		in := randomBox(rng)
		a := rng.Intn(4)
		b := rng.Intn(4)
		ratio, _ := c.Ratio(a, b)
		dx := c.Anchor(b).CenterX - c.Anchor(a).CenterX
		dy := c.Anchor(b).CenterY - c.Anchor(a).CenterY
		there, err := c.Convert(in, a, b)
		require.NoError(t, err)
		back, err := c.Convert(there, b, a)
		require.NoError(t, err)
		require.InDelta(t, in.X+dx*(1/ratio-1), back.X, 1e-6)
		require.InDelta(t, in.Y+dy*(1/ratio-1), back.Y, 1e-6)
		require.InDelta(t, in.Width, back.Width, 1e-6)
		require.InDelta(t, in.Height, back.Height, 1e-6)
	}
}

func TestDegenerate(t *testing.T) {
	c, err := New(2, 1920, 1200)
	require.NoError(t, err)
	out, err := c.Convert(annotation.NewBox("", -50, 5000, 0, 0), 0, 1)
	require.NoError(t, err)
	require.Equal(t, 0.0, out.Width)
	require.Equal(t, 0.0, out.Height)

	_, err = c.Convert(annotation.NewBox("", 0, 0, 1, 1), 0, 2)
	require.True(t, errors.Is(err, ErrInvalidView))
	_, err = c.Convert(annotation.NewBox("", 0, 0, 1, 1), -1, 0)
	require.True(t, errors.Is(err, ErrInvalidView))
}

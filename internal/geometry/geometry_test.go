package geometry

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestClampZoom_Bounds(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{"below min", 0.01, MinZoom},
		{"at min", MinZoom, MinZoom},
		{"in range", 1.5, 1.5},
		{"above max", 99, MaxZoom},
		{"rounds to two decimals", 1.239, 1.24},
		{"nan", math.NaN(), DefaultZoom},
		{"positive inf", math.Inf(1), DefaultZoom},
		{"negative inf", math.Inf(-1), DefaultZoom},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.InDelta(t, tt.want, ClampZoom(tt.in), 1e-9)
		})
	}
}

// TestClampZoom_AlwaysInRange is a property-based test: any input lands
// inside [MinZoom, MaxZoom].
func TestClampZoom_AlwaysInRange(t *testing.T) {
	rapid.Check(t, func(r *rapid.T) {
		z := rapid.Float64().Draw(r, "z")
		got := ClampZoom(z)
		if got < MinZoom || got > MaxZoom {
			r.Fatalf("ClampZoom(%v) = %v, outside [%v, %v]", z, got, MinZoom, MaxZoom)
		}
	})
}

func TestNormalizeRotation(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{0, 0},
		{90, 90},
		{180, 180},
		{270, 270},
		{360, 0},
		{450, 90},
		{-90, 270},
		{-450, 270},
		{44, 0},
		{46, 90},
		{135, 180},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, NormalizeRotation(tt.in), "NormalizeRotation(%d)", tt.in)
	}
}

// TestNormalizeRotation_Idempotent verifies normalize(normalize(d)) == normalize(d)
// and that the result is always a right-angle value.
func TestNormalizeRotation_Idempotent(t *testing.T) {
	rapid.Check(t, func(r *rapid.T) {
		deg := rapid.IntRange(-10000, 10000).Draw(r, "deg")
		once := NormalizeRotation(deg)
		if once != 0 && once != 90 && once != 180 && once != 270 {
			r.Fatalf("NormalizeRotation(%d) = %d, not a right angle", deg, once)
		}
		if NormalizeRotation(once) != once {
			r.Fatalf("NormalizeRotation not idempotent for %d", deg)
		}
	})
}

func TestClampPage(t *testing.T) {
	require.Equal(t, 1, ClampPage(0, 10))
	require.Equal(t, 1, ClampPage(-5, 10))
	require.Equal(t, 10, ClampPage(11, 10))
	require.Equal(t, 7, ClampPage(7, 10))
	// Unknown total: only the lower bound applies.
	require.Equal(t, 9999, ClampPage(9999, 0))
	require.Equal(t, 1, ClampPage(0, 0))
}

func TestRect_ClampTo(t *testing.T) {
	container := Rect{X: 0, Y: 0, Width: 120, Height: 40}

	t.Run("oversized rect shrinks to container", func(t *testing.T) {
		got := Rect{X: 0, Y: 0, Width: 500, Height: 500}.ClampTo(container)
		require.Equal(t, 120, got.Width)
		require.Equal(t, 40, got.Height)
	})

	t.Run("overflowing rect shifts back inside", func(t *testing.T) {
		got := Rect{X: 110, Y: 35, Width: 30, Height: 10}.ClampTo(container)
		require.Equal(t, 90, got.X)
		require.Equal(t, 30, got.Y)
	})

	t.Run("negative origin snaps to container origin", func(t *testing.T) {
		got := Rect{X: -10, Y: -10, Width: 30, Height: 10}.ClampTo(container)
		require.Equal(t, 0, got.X)
		require.Equal(t, 0, got.Y)
	})

	t.Run("size floor applies", func(t *testing.T) {
		got := Rect{X: 0, Y: 0, Width: 1, Height: 1}.ClampTo(container)
		require.Equal(t, MinWidth, got.Width)
		require.Equal(t, MinHeight, got.Height)
	})
}

func TestRect_ClampTo_AlwaysInside(t *testing.T) {
	rapid.Check(t, func(r *rapid.T) {
		container := Rect{
			X:      0,
			Y:      0,
			Width:  rapid.IntRange(MinWidth, 500).Draw(r, "cw"),
			Height: rapid.IntRange(MinHeight, 200).Draw(r, "ch"),
		}
		in := Rect{
			X:      rapid.IntRange(-100, 600).Draw(r, "x"),
			Y:      rapid.IntRange(-100, 300).Draw(r, "y"),
			Width:  rapid.IntRange(0, 600).Draw(r, "w"),
			Height: rapid.IntRange(0, 300).Draw(r, "h"),
		}
		got := in.ClampTo(container)
		if got.X < 0 || got.Y < 0 {
			r.Fatalf("clamped rect has negative origin: %+v", got)
		}
		if got.X+got.Width > container.Width || got.Y+got.Height > container.Height {
			r.Fatalf("clamped rect overflows container: %+v in %+v", got, container)
		}
	})
}

func TestOffsetForDuplicate_WrapsInside(t *testing.T) {
	container := Rect{Width: 120, Height: 40}

	got := OffsetForDuplicate(Rect{X: 10, Y: 5, Width: 40, Height: 12}, container)
	require.Equal(t, 12, got.X)
	require.Equal(t, 6, got.Y)

	// Near the edge: the cascade wraps back to the origin.
	got = OffsetForDuplicate(Rect{X: 80, Y: 28, Width: 40, Height: 12}, container)
	require.Equal(t, 0, got.X)
	require.Equal(t, 0, got.Y)
}

func TestRect_Contains(t *testing.T) {
	r := Rect{X: 10, Y: 10, Width: 20, Height: 10}
	require.True(t, r.Contains(10, 10))
	require.True(t, r.Contains(29, 19))
	require.False(t, r.Contains(30, 10))
	require.False(t, r.Contains(9, 10))
}

package plots

import (
	"image/color"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg/draw"

	"github.com/decibelcooper/d0z0/points"
)

func pt(mom, theta, value, radius float64) points.Point {
	return points.Point{
		P:        mom,
		Theta:    theta,
		CosTheta: math.Cos(theta * math.Pi / 180),
		Value:    value,
		Err:      0.05 * value,
		Radius:   radius,
	}
}

func scanSeries(scale, radius float64) points.Series {
	s := make(points.Series)
	for _, mom := range []float64{1, 5, 10, 50, 100} {
		for _, theta := range []float64{90, 50, 10} {
			s[mom] = append(s[mom], pt(mom, theta, scale*(2+40/mom)/math.Sin(theta*math.Pi/180), radius))
		}
	}
	return s
}

func assertSaved(t *testing.T, out string) {
	t.Helper()
	assert.FileExists(t, out+".png")
	assert.FileExists(t, out+".pdf")
}

func TestMomentumStyle(t *testing.T) {
	s := MomentumStyle(50, 3)
	assert.Equal(t, color.RGBA{G: 153, A: 255}, s.Color)
	assert.Equal(t, draw.PlusGlyph{}, s.Glyph)
	assert.Equal(t, draw.CrossGlyph{}, s.Open)

	other := MomentumStyle(7, 2)
	assert.NotNil(t, other.Color)
	assert.NotNil(t, other.Glyph)
	assert.NotEqual(t, other.Glyph, other.Open)
}

func TestRatios(t *testing.T) {
	num := points.Series{1: {pt(1, 10, 4, 0), pt(1, 20, 3, 0), pt(1, 30, 1, 0)}}
	den := points.Series{1: {pt(1, 30, 0, 0), pt(1, 10, 2, 0)}}

	got := Ratios(num, den, Theta)
	assert.Equal(t, plotter.XYs{{X: 10, Y: 2}, {X: 30, Y: 0}}, got[1])

	lo, hi := PaddedRange(got)
	assert.InDelta(t, -0.2, lo, 1e-12)
	assert.InDelta(t, 2.2, hi, 1e-12)

	lo, hi = PaddedRange(map[float64]plotter.XYs{1: {{X: 0, Y: 1}}})
	assert.InDelta(t, 0.9, lo, 1e-12)
	assert.InDelta(t, 1.1, hi, 1e-12)
}

func TestRelative(t *testing.T) {
	refs := points.ByTheta{10: points.Series{1: {pt(1, 10, 40, 13.7)}}}
	s := points.Series{
		1:  {pt(1, 10, 36, 11.7), pt(1, 10, 40, 13.7), pt(1, 10, 44, 15.7)},
		10: {pt(10, 10, 8, 11.7)},
	}

	rel := Relative(s, refs)
	require.Len(t, rel, 1)
	want := []float64{-10, 0, 10}
	for i, xy := range rel[1] {
		assert.InDelta(t, want[i], xy.Y, 1e-9)
	}
	assert.Equal(t, 15.7, rel[1][2].X)
}

func TestResGrid(t *testing.T) {
	s := points.Series{
		1:   {pt(1, 30, 3, 0), pt(1, 10, 1, 0)},
		100: {pt(100, 20, 5, 0)},
	}
	g := NewResGrid(s)
	nx, ny := g.Dims()
	assert.Equal(t, 3, nx)
	assert.Equal(t, 2, ny)
	assert.Equal(t, 20.0, g.X(1))
	assert.Equal(t, 1.0, g.Y(1))
	assert.Equal(t, 3.0, g.Z(2, 0))
	assert.True(t, math.IsNaN(g.Z(1, 0)))
	assert.Equal(t, 5.0, g.Max())
	assert.Equal(t, "100", g.momTicks()[1].Label)
}

func TestPlotsAreSaved(t *testing.T) {
	dir := t.TempDir()
	det, ref := scanSeries(1.1, 11.7), scanSeries(1, 13.7)

	out := filepath.Join(dir, "IDEA_base25_d0_individual")
	require.NoError(t, Individual(ref, "d0 resolution vs cos θ for IDEA_base25", "sigma (Δd0) (µm)", out))
	assertSaved(t, out)

	out = filepath.Join(dir, "d0_ratio_IDEA_VTXIB_r1_117_over_IDEA_base25")
	require.NoError(t, Comparison(det, ref, "IDEA_VTXIB_r1_117", "IDEA_base25", "d0 resolution", "sigma (Δd0) (µm)", out))
	assertSaved(t, out)

	out = filepath.Join(dir, "d0_IDEA_2T")
	require.NoError(t, ThetaScan(ref, "D0 resolution vs θ", "σ(Δd0) (µm)", out))
	assertSaved(t, out)

	out = filepath.Join(dir, "d0_IDEA_2T_117_IDEA_2T_137_ratio")
	require.NoError(t, ThetaRatio(det, ref, "IDEA_2T_117", "IDEA_2T_137", "D0 resolution ratio", out))
	assertSaved(t, out)

	out = filepath.Join(dir, "IDEA_base25_d0_map")
	require.NoError(t, ResolutionMap(ref, "d0 sigma", "σ (µm)", 0, out))
	assertSaved(t, out)

	refs := points.ByTheta{50: points.Series{}}
	scan := points.Series{}
	for mom, pts := range ref {
		for _, p := range pts {
			if p.Theta == 50 {
				refs[50][mom] = []points.Point{p}
				scan[mom] = append(scan[mom], pt(mom, 50, 0.9*p.Value, 11.7), p, pt(mom, 50, 1.2*p.Value, 15.7))
			}
		}
	}
	out = filepath.Join(dir, "d0_theta_50_vs_res")
	require.NoError(t, RadiusScan(scan, refs, 13.7, "d0 resolution vs radius for theta 50", "VTXIB layer 1 radius (mm)", "sigma change (%)", out))
	assertSaved(t, out)
}

func TestSingleValueLogPlot(t *testing.T) {
	out := filepath.Join(t.TempDir(), "single")
	s := points.Series{1: {pt(1, 10, 0.5, 0)}}
	require.NoError(t, Individual(s, "", "σ", out))
	assertSaved(t, out)
}

func TestNothingToDraw(t *testing.T) {
	dir := t.TempDir()
	s := points.Series{1: {pt(1, 10, math.NaN(), 0), pt(1, 20, 0, 0)}}
	assert.Error(t, Individual(s, "", "", filepath.Join(dir, "a")))
	assert.Error(t, Comparison(s, s, "a", "b", "", "", filepath.Join(dir, "b")))
	assert.Error(t, RadiusScan(s, points.ByTheta{}, 13.7, "", "", "", filepath.Join(dir, "c")))
	assert.Error(t, ResolutionMap(points.Series{}, "", "", 1, filepath.Join(dir, "d")))
}

package plot

import (
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testChart(n int) *Chart {
	ts := make([]float64, n)
	alt := make([]float64, n)
	vel := make([]float64, n)
	for i := 0; i < n; i++ {
		ts[i] = float64(i) * 0.05
		alt[i] = 50 * math.Sin(float64(i)/float64(n)*math.Pi)
		vel[i] = 10 * math.Cos(float64(i)/float64(n)*math.Pi)
	}
	return &Chart{
		Title: "Flight Analysis",
		Time:  ts,
		Panels: []Panel{
			{Label: "Altitude (m)", Caption: "Max Altitude: 50.0 m", Color: color.RGBA{31, 119, 180, 255}, Y: alt},
			{Label: "Velocity (m/s)", Caption: "Max Velocity: 10.0 m/s", Color: color.RGBA{44, 160, 44, 255}, Y: vel},
		},
		Marker:      ts[n/2],
		MarkerLabel: "apogee",
	}
}

func hasColor(img *image.RGBA, col color.RGBA) bool {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if img.RGBAAt(x, y) == col {
				return true
			}
		}
	}
	return false
}

func TestRender(t *testing.T) {
	c := testChart(120)
	img, err := c.Render()
	require.NoError(t, err)

	wantH := marginTop + 2*panelHeight + panelGap + marginBottom
	assert.Equal(t, image.Rect(0, 0, chartWidth, wantH), img.Bounds())

	assert.Equal(t, colorBackground, img.RGBAAt(0, 0))
	for _, p := range c.Panels {
		assert.True(t, hasColor(img, p.Color), "series %q not drawn", p.Label)
	}
	assert.True(t, hasColor(img, colorMarker), "marker not drawn")
	assert.True(t, hasColor(img, colorFrame), "frame not drawn")
}

func TestRenderNaNBreaksLine(t *testing.T) {
	c := testChart(60)
	for i := 20; i < 30; i++ {
		c.Panels[0].Y[i] = math.NaN()
	}
	img, err := c.Render()
	require.NoError(t, err)
	assert.True(t, hasColor(img, c.Panels[0].Color))
}

func TestRenderAllNaNPanel(t *testing.T) {
	c := testChart(60)
	for i := range c.Panels[1].Y {
		c.Panels[1].Y[i] = math.NaN()
	}
	_, err := c.Render()
	require.NoError(t, err)
}

func TestRenderFlatSeries(t *testing.T) {
	c := &Chart{
		Time:   []float64{0, 1, 2, 3},
		Panels: []Panel{{Label: "Altitude (m)", Color: color.RGBA{0, 0, 255, 255}, Y: []float64{5, 5, 5, 5}}},
	}
	img, err := c.Render()
	require.NoError(t, err)
	assert.True(t, hasColor(img, c.Panels[0].Color))
}

func TestRenderErrors(t *testing.T) {
	c := &Chart{Time: []float64{0, 1}}
	_, err := c.Render()
	assert.Error(t, err)

	c = testChart(60)
	c.Time = c.Time[:1]
	_, err = c.Render()
	assert.Error(t, err)

	c = testChart(60)
	c.Panels[1].Y = c.Panels[1].Y[:10]
	_, err = c.Render()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Velocity")
}

func TestWritePNG(t *testing.T) {
	img, err := testChart(60).Render()
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "flight_00001_analysis.png")
	require.NoError(t, WritePNG(path, img))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, img.Bounds().Dx(), cfg.Width)
	assert.Equal(t, img.Bounds().Dy(), cfg.Height)
}

func TestWritePNGBadPath(t *testing.T) {
	img, err := testChart(60).Render()
	require.NoError(t, err)
	assert.Error(t, WritePNG(filepath.Join(t.TempDir(), "missing", "x.png"), img))
}

func assertTicks(t *testing.T, want, got []float64) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		assert.InDelta(t, want[i], got[i], 1e-9, "tick %d", i)
	}
}

func TestNiceTicks(t *testing.T) {
	ticks, step := niceTicks(0, 10, 5)
	assert.InDelta(t, 2.0, step, 1e-12)
	assertTicks(t, []float64{0, 2, 4, 6, 8, 10}, ticks)

	ticks, step = niceTicks(-1, 1, 5)
	assert.InDelta(t, 0.5, step, 1e-12)
	assertTicks(t, []float64{-1, -0.5, 0, 0.5, 1}, ticks)

	ticks, step = niceTicks(0, 6.4, 8)
	assert.InDelta(t, 1.0, step, 1e-12)
	assertTicks(t, []float64{0, 1, 2, 3, 4, 5, 6}, ticks)
}

func TestTickPrec(t *testing.T) {
	assert.Equal(t, 0, tickPrec(1))
	assert.Equal(t, 0, tickPrec(2))
	assert.Equal(t, 0, tickPrec(10))
	assert.Equal(t, 1, tickPrec(0.5))
	assert.Equal(t, 2, tickPrec(0.05))
}

func TestFiniteRange(t *testing.T) {
	lo, hi := finiteRange([]float64{math.NaN(), 3, -2, math.Inf(1), 7})
	assert.Equal(t, -2.0, lo)
	assert.Equal(t, 7.0, hi)

	lo, hi = finiteRange([]float64{math.NaN(), math.NaN()})
	assert.Equal(t, 0.0, lo)
	assert.Equal(t, 1.0, hi)
}

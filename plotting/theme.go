package plotting

import (
	"image/color"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/YuminosukeSato/trafobench/pkg/errors"
)

// Theme holds the colors applied to every chart.
type Theme struct {
	Name       string
	Background color.Color
	Foreground color.Color
	Grid       color.Color
	BoxFill    color.Color
	// Series colors, cycled when a chart has more series than entries.
	Series []color.Color
	// Negative and Positive color rows by Outcome.
	Negative color.Color
	Positive color.Color
}

var (
	// LightTheme is white on black text.
	LightTheme = Theme{
		Name:       "light",
		Background: color.White,
		Foreground: color.Black,
		Grid:       color.Gray{Y: 200},
		BoxFill:    color.RGBA{R: 31, G: 119, B: 180, A: 255},
		Series: []color.Color{
			color.RGBA{R: 31, G: 119, B: 180, A: 255},
			color.RGBA{R: 255, G: 0, B: 255, A: 255},
			color.RGBA{R: 0, G: 128, B: 0, A: 255},
		},
		Negative: color.RGBA{R: 31, G: 119, B: 180, A: 200},
		Positive: color.RGBA{R: 255, G: 127, B: 14, A: 200},
	}

	// DarkTheme mirrors the #1d1f21 background with white text and dashed
	// white grid.
	DarkTheme = Theme{
		Name:       "dark",
		Background: color.RGBA{R: 0x1d, G: 0x1f, B: 0x21, A: 255},
		Foreground: color.White,
		Grid:       color.RGBA{R: 255, G: 255, B: 255, A: 90},
		BoxFill:    color.RGBA{R: 31, G: 119, B: 180, A: 255},
		Series: []color.Color{
			color.RGBA{R: 31, G: 119, B: 180, A: 255},
			color.RGBA{R: 255, G: 0, B: 255, A: 255},
			color.RGBA{R: 0, G: 128, B: 0, A: 255},
		},
		Negative: color.RGBA{R: 86, G: 180, B: 233, A: 200},
		Positive: color.RGBA{R: 230, G: 159, B: 0, A: 200},
	}
)

// ThemeByName returns the theme configured by name.
func ThemeByName(name string) (Theme, error) {
	switch strings.ToLower(name) {
	case "dark":
		return DarkTheme, nil
	case "light", "":
		return LightTheme, nil
	default:
		return Theme{}, errors.NewValidationError("plot.theme", "must be light or dark", name)
	}
}

// SeriesColor returns the i-th series color.
func (th Theme) SeriesColor(i int) color.Color {
	return th.Series[i%len(th.Series)]
}

// newPlot creates a plot with the theme colors and a dashed grid.
func (th Theme) newPlot(title string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.BackgroundColor = th.Background
	p.Title.TextStyle.Color = th.Foreground
	p.Legend.TextStyle.Color = th.Foreground
	for _, ax := range []*plot.Axis{&p.X, &p.Y} {
		ax.LineStyle.Color = th.Foreground
		ax.Label.TextStyle.Color = th.Foreground
		ax.Tick.LineStyle.Color = th.Foreground
		ax.Tick.Label.Color = th.Foreground
	}

	grid := plotter.NewGrid()
	grid.Vertical.Color = th.Grid
	grid.Horizontal.Color = th.Grid
	grid.Vertical.Width = vg.Points(0.5)
	grid.Horizontal.Width = vg.Points(0.5)
	grid.Vertical.Dashes = []vg.Length{vg.Points(3), vg.Points(3)}
	grid.Horizontal.Dashes = []vg.Length{vg.Points(3), vg.Points(3)}
	p.Add(grid)
	return p
}

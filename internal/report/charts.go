package report

import (
	"fmt"
	"image/color"
	"math"
	"os"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/go-scripts/scrape/internal/clean"
)

const (
	ChartWidth  = 1200
	ChartHeight = 960
	histBins    = 20
)

// WriteCharts renders the 2x2 analysis figure as a PNG: category shares,
// content length histogram, word counts per category and URL presence per
// category.
func WriteCharts(path string, rows []clean.Row, a clean.Analysis) error {
	grid := [][]*plot.Plot{
		{distributionPlot(a), lengthPlot(rows)},
		{wordCountPlot(a), urlPresencePlot(a)},
	}

	img := vgimg.NewWith(
		vgimg.UseWH(vg.Points(ChartWidth), vg.Points(ChartHeight)),
		vgimg.UseDPI(72),
	)
	dc := draw.New(img)
	tiles := draw.Tiles{
		Rows:      2,
		Cols:      2,
		PadX:      vg.Millimeter * 8,
		PadY:      vg.Millimeter * 8,
		PadTop:    vg.Millimeter * 4,
		PadBottom: vg.Millimeter * 4,
		PadLeft:   vg.Millimeter * 4,
		PadRight:  vg.Millimeter * 4,
	}

	canvases := plot.Align(grid, tiles, dc)
	for j := range grid {
		for i, p := range grid[j] {
			p.Draw(canvases[j][i])
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create chart: %w", err)
	}
	defer f.Close()

	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(f); err != nil {
		return fmt.Errorf("failed to write chart: %w", err)
	}
	return f.Close()
}

func categoryNames(a clean.Analysis) []string {
	names := make([]string, len(a.Categories))
	for i, c := range a.Categories {
		names[i] = c.DataType
	}
	return names
}

func rotateTicks(p *plot.Plot) {
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = text.XRight
	p.X.Tick.Label.YAlign = text.YCenter
}

func distributionPlot(a clean.Analysis) *plot.Plot {
	p := plot.New()
	p.Title.Text = "Data Type Distribution"
	p.HideAxes()

	if len(a.Categories) > 0 {
		pie := &pieChart{}
		for _, c := range a.Categories {
			pie.values = append(pie.values, float64(c.Count))
			pie.labels = append(pie.labels, c.DataType)
		}
		p.Add(pie)
	}
	return p
}

func lengthPlot(rows []clean.Row) *plot.Plot {
	p := plot.New()
	p.Title.Text = "Content Length Distribution"
	p.X.Label.Text = "Content Length (characters)"
	p.Y.Label.Text = "Frequency"

	if len(rows) == 0 {
		return p
	}
	h, err := plotter.NewHist(plotter.Values(clean.Lengths(rows)), histBins)
	if err != nil {
		return p
	}
	h.FillColor = color.RGBA{R: 31, G: 119, B: 180, A: 180}
	p.Add(h)
	return p
}

func wordCountPlot(a clean.Analysis) *plot.Plot {
	p := plot.New()
	p.Title.Text = "Word Count by Data Type"
	p.Y.Label.Text = "Word Count"

	for i, c := range a.Categories {
		box, err := plotter.NewBoxPlot(vg.Points(20), float64(i), plotter.Values(c.WordCounts))
		if err != nil {
			continue
		}
		p.Add(box)
	}
	if len(a.Categories) > 0 {
		p.NominalX(categoryNames(a)...)
		rotateTicks(p)
	}
	return p
}

func urlPresencePlot(a clean.Analysis) *plot.Plot {
	p := plot.New()
	p.Title.Text = "URL Presence by Data Type"
	p.Y.Label.Text = "Proportion with URLs"
	p.Y.Min = 0
	p.Y.Max = 1

	if len(a.Categories) == 0 {
		return p
	}
	ratios := make(plotter.Values, len(a.Categories))
	for i, c := range a.Categories {
		ratios[i] = c.URLRatio
	}
	bars, err := plotter.NewBarChart(ratios, vg.Points(20))
	if err != nil {
		return p
	}
	bars.Color = plotutil.Color(0)
	p.Add(bars)
	p.NominalX(categoryNames(a)...)
	rotateTicks(p)
	return p
}

// pieChart draws wedges proportional to values, labelled with their
// percentage
type pieChart struct {
	values []float64
	labels []string
}

func (pc *pieChart) Plot(c draw.Canvas, plt *plot.Plot) {
	var total float64
	for _, v := range pc.values {
		total += v
	}
	if total <= 0 {
		return
	}

	center := vg.Point{
		X: (c.Min.X + c.Max.X) / 2,
		Y: (c.Min.Y + c.Max.Y) / 2,
	}
	radius := min(c.Max.X-c.Min.X, c.Max.Y-c.Min.Y) * 0.38

	sty := plt.X.Tick.Label
	sty.XAlign = text.XCenter
	sty.YAlign = text.YCenter

	start := math.Pi / 2
	for i, v := range pc.values {
		sweep := 2 * math.Pi * v / total

		var wedge vg.Path
		wedge.Move(center)
		wedge.Line(vg.Point{
			X: center.X + radius*vg.Length(math.Cos(start)),
			Y: center.Y + radius*vg.Length(math.Sin(start)),
		})
		wedge.Arc(center, radius, start, sweep)
		wedge.Close()

		c.SetColor(plotutil.Color(i))
		c.Fill(wedge)
		c.SetColor(color.White)
		c.SetLineWidth(vg.Points(1))
		c.Stroke(wedge)

		mid := start + sweep/2
		label := vg.Point{
			X: center.X + radius*1.2*vg.Length(math.Cos(mid)),
			Y: center.Y + radius*1.2*vg.Length(math.Sin(mid)),
		}
		c.FillText(sty, label, fmt.Sprintf("%s %.1f%%", pc.labels[i], 100*v/total))

		start += sweep
	}
}

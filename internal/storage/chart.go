package storage

import (
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

// chartLanguages caps the bars of the language chart.
const chartLanguages = 15

// WriteChart renders the summary as an HTML page to path.
func WriteChart(path string, s Summary) error {
	return writeFile(path, func(w io.Writer) error {
		return RenderChart(w, s)
	})
}

// RenderChart writes a category pie and a language bar chart.
func RenderChart(w io.Writer, s Summary) error {
	pie := charts.NewPie()
	pie.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Distribusi Kategori"}),
		charts.WithInitializationOpts(opts.Initialization{Theme: types.ThemeWesteros}),
	)

	var pieItems []opts.PieData
	for _, c := range s.Categories {
		pieItems = append(pieItems, opts.PieData{Name: c.Name, Value: c.Count})
	}
	pie.AddSeries("Repositories", pieItems)

	bar := charts.NewBar()
	bar.SetGlobalOptions(charts.WithTitleOpts(opts.Title{Title: "Top Bahasa Pemrograman"}))

	languages := s.Languages
	if len(languages) > chartLanguages {
		languages = languages[:chartLanguages]
	}

	var barX []string
	var barY []opts.BarData
	for _, c := range languages {
		barX = append(barX, c.Name)
		barY = append(barY, opts.BarData{Value: c.Count})
	}
	bar.SetXAxis(barX).AddSeries("Repositories", barY)

	page := components.NewPage()
	page.AddCharts(pie, bar)
	return page.Render(w)
}

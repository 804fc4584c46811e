package dashboard

import (
	"fmt"
	"html/template"
	"io"
	"log/slog"

	"github.com/couchcryptid/wildlife-park-etl/internal/domain"
	"github.com/couchcryptid/wildlife-park-etl/internal/observability"
)

// PageTitle heads the dashboard page.
const PageTitle = "Wildlife Park Data Visualization"

// Dashboard renders charts and the page for a report. Rendered charts are
// cached per report, so a new report never serves stale images.
type Dashboard struct {
	charts  []Chart
	cache   *lruCache[[]byte]
	logger  *slog.Logger
	metrics *observability.Metrics
}

// New creates a Dashboard with the standard chart catalogue.
func New(airTemp domain.Reduction, cacheSize int, logger *slog.Logger, metrics *observability.Metrics) *Dashboard {
	return &Dashboard{
		charts:  Catalogue(airTemp),
		cache:   newLRUCache[[]byte](cacheSize),
		logger:  logger,
		metrics: metrics,
	}
}

// Charts returns the catalogue in page order.
func (d *Dashboard) Charts() []Chart {
	return append([]Chart(nil), d.charts...)
}

// Lookup finds a chart by ID.
func (d *Dashboard) Lookup(id string) (Chart, bool) {
	for _, c := range d.charts {
		if c.ID == id {
			return c, true
		}
	}
	return Chart{}, false
}

// Chart returns the SVG for chart id, rendering it on first use.
func (d *Dashboard) Chart(r *domain.Report, id string) ([]byte, error) {
	c, ok := d.Lookup(id)
	if !ok || !c.available(r) {
		return nil, fmt.Errorf("chart %q: %w", id, ErrUnknownChart)
	}

	key := fmt.Sprintf("%s|%d|%s", r.Variant, r.GeneratedAt.UnixNano(), id)
	if svg, ok := d.cache.get(key); ok {
		d.metrics.ChartCache.WithLabelValues("hit").Inc()
		return svg, nil
	}
	d.metrics.ChartCache.WithLabelValues("miss").Inc()

	svg, err := RenderSVG(r, c)
	if err != nil {
		d.metrics.ChartRenders.WithLabelValues("error").Inc()
		return nil, err
	}
	d.metrics.ChartRenders.WithLabelValues("success").Inc()
	d.logger.Debug("chart rendered", "chart", id, "bytes", len(svg))

	d.cache.put(key, svg)
	return svg, nil
}

type pageData struct {
	Title       string
	Variant     string
	GeneratedAt string
	Matrices    []matrixBlock
	Groups      []chartGroup
}

type matrixBlock struct {
	View string
	Text string
}

type chartGroup struct {
	Name   string
	Charts []Chart
}

// WritePage renders the HTML dashboard for the report.
func (d *Dashboard) WritePage(w io.Writer, r *domain.Report) error {
	data := pageData{
		Title:       PageTitle,
		Variant:     r.Variant,
		GeneratedAt: r.GeneratedAt.Format("2006-01-02 15:04:05 MST"),
	}
	for _, m := range r.Correlations {
		data.Matrices = append(data.Matrices, matrixBlock{View: m.View(), Text: FormatMatrix(m)})
	}
	for _, c := range d.charts {
		if !c.available(r) {
			continue
		}
		if n := len(data.Groups); n == 0 || data.Groups[n-1].Name != c.Group {
			data.Groups = append(data.Groups, chartGroup{Name: c.Group})
		}
		g := &data.Groups[len(data.Groups)-1]
		g.Charts = append(g.Charts, c)
	}
	return pageTemplate.Execute(w, data)
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; margin: 1.5rem; }
pre { background: #f6f8fa; padding: 0.75rem; overflow-x: auto; }
.row { display: flex; flex-wrap: wrap; gap: 1rem; }
.row img { max-width: 100%; }
footer { color: #666; font-size: 0.8rem; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<h2>Correlation Matrix</h2>
{{range .Matrices}}<section class="matrix" id="matrix-{{.View}}">
<h3>{{.View}}</h3>
<pre>{{.Text}}</pre>
</section>
{{end}}
{{range .Groups}}<h2>{{.Name}}</h2>
<div class="row">
{{range .Charts}}<figure id="{{.ID}}"><img src="/charts/{{.ID}}" alt="{{.Title}}" width="640" height="400"></figure>
{{end}}</div>
{{end}}
<footer>variant {{.Variant}}, generated {{.GeneratedAt}}</footer>
</body>
</html>
`))

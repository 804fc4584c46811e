package domain

import "time"

// Report is everything one run hands to the rendering side.
type Report struct {
	Variant      string
	GeneratedAt  time.Time
	Summary      SeriesSummary
	Views        []*DailyTable
	Correlations []*CorrelationMatrix
}

// SeriesSummary describes the cleaned input.
type SeriesSummary struct {
	Rows    int           `json:"rows"`
	Start   time.Time     `json:"start"`
	End     time.Time     `json:"end"`
	Missing map[Field]int `json:"missing"`
}

// Summarize captures the size, span and missing counts of a series.
func Summarize(s *Series) SeriesSummary {
	missing := make(map[Field]int, len(s.fields))
	for _, f := range s.fields {
		missing[f] = s.MissingCount(f)
	}
	return SeriesSummary{Rows: s.Len(), Start: s.Start(), End: s.End(), Missing: missing}
}

// NewReport stamps a report with the package clock.
func NewReport(variant string, summary SeriesSummary, views []*DailyTable, corr []*CorrelationMatrix) *Report {
	return &Report{
		Variant:      variant,
		GeneratedAt:  now(),
		Summary:      summary,
		Views:        views,
		Correlations: corr,
	}
}

// View returns the named daily table.
func (r *Report) View(name string) (*DailyTable, bool) {
	for _, v := range r.Views {
		if v.Name() == name {
			return v, true
		}
	}
	return nil, false
}

// Correlation returns the matrix computed over the named view.
func (r *Report) Correlation(view string) (*CorrelationMatrix, bool) {
	for _, m := range r.Correlations {
		if m.View() == view {
			return m, true
		}
	}
	return nil, false
}

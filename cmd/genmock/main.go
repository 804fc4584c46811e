// Command genmock writes a synthetic wildlife park logger export for demos
// and fixtures. Output is deterministic for a given seed: hourly readings
// during opening hours, weather that drifts by day, visitor and digital
// activity counts that follow the weather, and a sprinkling of missing
// tokens. The file format follows the output extension (.csv or .xlsx).
//
// Usage:
//
//	go run ./cmd/genmock -out data/mock/ALLDATA.csv -days 60 -seed 7
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/wildlife-park-etl/internal/domain"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/xuri/excelize/v2"
)

const exportLayout = "02/01/2006 15:04"

type options struct {
	out         string
	start       time.Time
	days        int
	open, close int // opening hours, [open, close)
	missingRate float64
	closedEvery int // every Nth day has no readings at all; 0 disables
	wind        bool
	token       string
	seed        uint64
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "output path (.csv or .xlsx)")
	start := flag.String("start", "2023-03-01", "first day (YYYY-MM-DD)")
	days := flag.Int("days", 30, "number of days to generate")
	open := flag.Int("open", 8, "first reading hour")
	closing := flag.Int("close", 18, "hour after the last reading")
	missing := flag.Float64("missing-rate", 0.03, "probability that a cell is written as the missing token")
	closedEvery := flag.Int("closed-every", 9, "every Nth day has no readings (0 disables)")
	wind := flag.Bool("wind", false, "include the optional windSpeed column")
	token := flag.String("token", domain.DefaultMissingToken, "missing value token")
	seed := flag.Uint64("seed", 1, "random seed")
	flag.Parse()

	if *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}
	first, err := time.Parse("2006-01-02", *start)
	if err != nil {
		return fmt.Errorf("parse -start: %w", err)
	}
	if *days <= 0 || *open < 0 || *closing > 24 || *open >= *closing {
		return fmt.Errorf("invalid range: days=%d open=%d close=%d", *days, *open, *closing)
	}
	if *missing < 0 || *missing >= 1 {
		return fmt.Errorf("invalid -missing-rate %g", *missing)
	}

	opts := options{
		out: *out, start: first, days: *days, open: *open, close: *closing,
		missingRate: *missing, closedEvery: *closedEvery, wind: *wind,
		token: *token, seed: *seed,
	}
	records := generate(opts)

	if err := os.MkdirAll(filepath.Dir(opts.out), 0o755); err != nil {
		return err
	}
	switch ext := strings.ToLower(filepath.Ext(opts.out)); ext {
	case ".csv":
		err = writeCSV(opts.out, records)
	case ".xlsx":
		err = writeXLSX(opts.out, records)
	default:
		err = fmt.Errorf("unsupported output extension %q", ext)
	}
	if err != nil {
		return fmt.Errorf("writing %s: %w", opts.out, err)
	}
	log.Printf("wrote %s", opts.out)

	printStats(records, opts.token)
	return nil
}

func header(wind bool) []string {
	h := []string{
		string(domain.FieldTimestamp),
		string(domain.FieldPeopleIn),
		string(domain.FieldPeopleOut),
		string(domain.FieldDigitalActivity),
		string(domain.FieldRelativeHumidity),
		string(domain.FieldAirTemperature),
		string(domain.FieldPrecipitation),
	}
	if wind {
		h = append(h, string(domain.FieldWindSpeed))
	}
	return h
}

// generate returns the header followed by one record per reading.
func generate(o options) [][]string {
	rng := rand.New(rand.NewPCG(o.seed, o.seed^0x9e3779b97f4a7c15))
	records := [][]string{header(o.wind)}

	for d := 0; d < o.days; d++ {
		if o.closedEvery > 0 && d > 0 && d%o.closedEvery == 0 {
			continue
		}
		day := o.start.AddDate(0, 0, d)

		// Daily weather regime.
		base := 12 + 6*math.Sin(float64(d)/9) + rng.NormFloat64()*1.5
		wet := rng.Float64() < 0.3
		humidBase := 70 - (base-12)*1.5

		for h := o.open; h < o.close; h++ {
			// Warmest mid-afternoon.
			temp := base + 4*math.Sin(math.Pi*float64(h-o.open)/float64(o.close-o.open)) + rng.NormFloat64()*0.5
			humidity := clamp(humidBase+rng.NormFloat64()*4, 20, 100)
			rain := 0.0
			if wet && rng.Float64() < 0.5 {
				rain = math.Round(rng.ExpFloat64()*1.2*10) / 10
			}

			appeal := math.Max(0.2, 1+(temp-12)/10-rain/3)
			in := poisson(rng, 6*appeal)
			out := poisson(rng, 5*appeal)
			digital := poisson(rng, 2+float64(in)*1.4)

			rec := []string{
				day.Add(time.Duration(h) * time.Hour).Format(exportLayout),
				strconv.Itoa(in),
				strconv.Itoa(out),
				strconv.Itoa(digital),
				strconv.FormatFloat(humidity, 'f', 1, 64),
				strconv.FormatFloat(temp, 'f', 1, 64),
				strconv.FormatFloat(rain, 'f', 1, 64),
			}
			if o.wind {
				rec = append(rec, strconv.FormatFloat(math.Abs(rng.NormFloat64()*3+4), 'f', 1, 64))
			}
			for i := 1; i < len(rec); i++ {
				if rng.Float64() < o.missingRate {
					rec[i] = o.token
				}
			}
			records = append(records, rec)
		}
	}
	return records
}

func poisson(rng *rand.Rand, lambda float64) int {
	// Knuth; lambda stays small here.
	l, k, p := math.Exp(-lambda), 0, 1.0
	for {
		p *= rng.Float64()
		if p <= l {
			return k
		}
		k++
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func writeCSV(path string, records [][]string) error {
	df := dataframe.LoadRecords(records,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues(nil),
	)
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := df.WriteCSV(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeXLSX(path string, records [][]string) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "ALLDATA"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}
	for i, rec := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		row := make([]any, len(rec))
		for j, v := range rec {
			row[j] = v
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return f.SaveAs(path)
}

func printStats(records [][]string, token string) {
	h, rows := records[0], records[1:]

	days := map[string]bool{}
	missing := make([]int, len(h))
	for _, rec := range rows {
		days[rec[0][:10]] = true
		for i, v := range rec {
			if v == token {
				missing[i]++
			}
		}
	}

	fmt.Println("\n=== Generated dataset ===")
	fmt.Printf("Rows: %d\n", len(rows))
	fmt.Printf("Days with readings: %d\n", len(days))
	if len(rows) > 0 {
		fmt.Printf("Span: %s .. %s\n", rows[0][0], rows[len(rows)-1][0])
	}
	fmt.Println("Missing tokens:")
	for i := 1; i < len(h); i++ {
		fmt.Printf("  %-20s %d\n", h[i], missing[i])
	}
}

// Command snapshot runs the pipeline once and prints the per-state table,
// optionally exporting it as XLSX or JSON.
//
// Usage:
//
//	go run ./cmd/snapshot -top 5
//	go run ./cmd/snapshot -input internal/adapter/brasilio/testdata/states.json -xlsx covid.xlsx
//	go run ./cmd/snapshot -json > snapshot.json
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/couchcryptid/covid-br-dashboard/internal/adapter/brasilio"
	"github.com/couchcryptid/covid-br-dashboard/internal/config"
	"github.com/couchcryptid/covid-br-dashboard/internal/domain"
	"github.com/couchcryptid/covid-br-dashboard/internal/export"
	"github.com/couchcryptid/covid-br-dashboard/internal/observability"
	"github.com/couchcryptid/covid-br-dashboard/internal/pipeline"
	"github.com/davecgh/go-spew/spew"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	input := flag.String("input", "", "saved Brasil.io response to read instead of calling the API")
	baseURL := flag.String("url", brasilio.DefaultBaseURL, "Brasil.io dataset endpoint")
	token := flag.String("token", os.Getenv("BRASILIO_TOKEN"), "Brasil.io API token")
	timeout := flag.Duration("timeout", 10*time.Second, "upstream request timeout")
	top := flag.Int("top", domain.DefaultTopN, "number of states in the ranking")
	xlsxOut := flag.String("xlsx", "", "write the snapshot to this XLSX file")
	jsonOut := flag.Bool("json", false, "print the report as JSON instead of a table")
	dump := flag.Bool("dump", false, "dump the raw report structure")
	logLevel := flag.String("log-level", "warn", "log level (debug, info, warn, error)")
	flag.Parse()

	logger := observability.NewLogger(&config.Config{LogLevel: *logLevel, LogFormat: "text"})
	metrics := observability.NewMetrics()

	var fetcher pipeline.Fetcher = brasilio.NewClient(*baseURL, *token, *timeout, metrics, logger)
	if *input != "" {
		fetcher = brasilio.FileFetcher{Path: *input}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	report, err := pipeline.New(fetcher, nil, logger, metrics, *top).Run(ctx)
	if err != nil {
		return describe(err)
	}

	switch {
	case *dump:
		spew.Dump(report)
	case *jsonOut:
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return fmt.Errorf("encode report: %w", err)
		}
	default:
		printReport(os.Stdout, report)
	}

	if *xlsxOut != "" {
		if err := writeXLSX(*xlsxOut, report); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "wrote %s\n", *xlsxOut)
	}
	return nil
}

// describe prefixes err with a hint about which stage failed.
func describe(err error) error {
	var fetchErr *domain.FetchError
	if errors.As(err, &fetchErr) && fetchErr.Kind == domain.HTTPStatusError && fetchErr.StatusCode == 401 {
		return fmt.Errorf("%w (set BRASILIO_TOKEN or -token)", err)
	}
	return fmt.Errorf("%s: %w", pipeline.Outcome(err), err)
}

func printReport(w io.Writer, report domain.Report) {
	p := message.NewPrinter(language.BrazilianPortuguese)
	agg := report.Aggregates

	p.Fprintf(w, "COVID-19 Brasil (dados atualizados até %s)\n\n", agg.LatestReportDate.Format("02/01/2006"))
	p.Fprintf(w, "Confirmados: %d\n", agg.TotalConfirmed)
	p.Fprintf(w, "Mortes:      %d\n", agg.TotalDeaths)
	p.Fprintf(w, "Incidência:  %d/100mil hab\n", agg.Incidence)
	p.Fprintf(w, "Letalidade:  %.2f%%\n\n", agg.CaseFatality*100)

	p.Fprintf(w, "%-3s %12s %10s %10s %10s %11s\n", "UF", "Confirmados", "Mortes", "Letalidade", "Incidência", "Data")
	for _, r := range report.Snapshot.Records() {
		p.Fprintf(w, "%-3s %12d %10d %9.2f%% %10d %11s\n",
			r.UF, r.Confirmed, r.Deaths, r.DeathRate, r.ConfirmedPer100k, r.ReportDate.Format("02/01/2006"))
	}

	p.Fprintf(w, "\nTop %d por casos confirmados:\n", report.Top.Len())
	for i, r := range report.Top.Records() {
		p.Fprintf(w, "%02d. %-3s %12d\n", i+1, r.UF, r.Confirmed)
	}
}

func writeXLSX(path string, report domain.Report) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := export.WriteXLSX(f, report.Snapshot, report.Aggregates); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

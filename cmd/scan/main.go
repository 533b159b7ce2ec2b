// Command scan runs one screener scan from the terminal and optionally
// writes the result workbook.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"TechScreener/internal/domain/models"
	"TechScreener/internal/service/tradingview"
	"TechScreener/internal/usecase"
	"TechScreener/pkg/config"
	"TechScreener/pkg/lock"
	applogger "TechScreener/pkg/logger"

	"github.com/go-playground/validator/v10"
	"github.com/tidwall/pretty"
)

// previewRows bounds the table printed to stdout.
const previewRows = 20

func main() {
	d := models.DefaultFilter()

	configPath := flag.String("config", "config/config.yaml", "config file path")
	profile := flag.String("profile", models.TechnicalProfile.Name, "screener profile: technical or momentum")
	rsiMin := flag.Float64("rsi-min", d.Momentum.Lower, "RSI lower bound")
	rsiMax := flag.Float64("rsi-max", d.Momentum.Upper, "RSI upper bound")
	adxMin := flag.Float64("adx-min", d.TrendStrengthMin, "minimum ADX (technical profile only)")
	direction := flag.String("direction", string(d.Direction), "trend direction: any, bullish, bearish")
	ma20 := flag.Bool("ma20", d.MovingAverages.Above20, "close above the 20-period moving average")
	ma50 := flag.Bool("ma50", d.MovingAverages.Above50, "close above the 50-period moving average")
	ma200 := flag.Bool("ma200", d.MovingAverages.Above200, "close above the 200-period moving average")
	band := flag.String("band", string(d.Band), "band condition: any, near_lower_band, above_upper_band")
	osc := flag.String("oscillator", string(d.Oscillator), "oscillator: any, oversold, overbought, bullish_cross, bearish_cross")
	minVolume := flag.Int64("min-volume", d.MinVolume, "minimum traded volume")
	limit := flag.Int("limit", d.Limit, "maximum rows (10-200)")
	preset := flag.String("preset", string(d.Preset), "preset: none, gainers, losers, most_active, unusual_volume")
	dryRun := flag.Bool("dry-run", false, "print the provider payload and exit")
	out := flag.String("out", "", "write the result workbook to this path (a directory uses the profile's file name)")
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	logger, err := applogger.New(&applogger.Config{Level: cfg.Log.Level, Format: "console", Output: "stderr"})
	if err != nil {
		log.Fatalf("logger: %v", err)
	}

	req := &models.ScanRequest{
		Profile:    *profile,
		RSIMin:     rsiMin,
		RSIMax:     rsiMax,
		ADXMin:     adxMin,
		Direction:  *direction,
		Above20:    ma20,
		Above50:    ma50,
		Above200:   ma200,
		Band:       *band,
		Oscillator: *osc,
		MinVolume:  minVolume,
		Limit:      *limit,
		Preset:     *preset,
	}
	if err := validator.New().Struct(req); err != nil {
		logger.Error("invalid flags", applogger.Error(err))
		os.Exit(2)
	}
	f := req.Filter()
	f.Market = cfg.Provider.Market

	client := tradingview.New(cfg.Provider.BaseURL, cfg.Provider.Timeout, cfg.Provider.UserAgent)
	screener := usecase.NewScreener(client, lock.NewMemoryLocker(), nil, logger, cfg.Scan.LockTTL)

	if *dryRun {
		if err := printPayload(screener, *profile, f); err != nil {
			logger.Error("dry run failed", applogger.Error(err))
			os.Exit(1)
		}
		return
	}

	res, err := screener.Scan(context.Background(), *profile, f)
	if err != nil {
		logger.Error("scan failed", applogger.Error(err))
		os.Exit(1)
	}
	if res.Notice != nil {
		fmt.Fprintln(os.Stderr, res.Notice.Message)
		if res.Notice.Kind != usecase.NoticeNoMatch {
			os.Exit(1)
		}
		return
	}

	printTable(os.Stdout, res.Presentation)

	if *out == "" {
		return
	}
	p, _ := models.LookupProfile(res.Profile)
	exp, err := usecase.ExportPresentation(p, res.Presentation)
	if err != nil {
		logger.Error("export failed", applogger.Error(err))
		os.Exit(1)
	}
	path := *out
	if st, err := os.Stat(path); err == nil && st.IsDir() {
		path = filepath.Join(path, exp.FileName)
	}
	if err := os.WriteFile(path, exp.Data, 0o644); err != nil {
		logger.Error("write workbook", applogger.String("path", path), applogger.Error(err))
		os.Exit(1)
	}
	logger.Info("workbook written", applogger.String("path", path), applogger.Int("rows", exp.Rows))
}

func printPayload(s *usecase.Screener, profile string, f models.Filter) error {
	q, err := s.Preview(profile, f)
	if err != nil {
		return err
	}
	payload, err := tradingview.EncodeQuery(q)
	if err != nil {
		return err
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	for _, c := range q.Clauses() {
		fmt.Fprintln(os.Stderr, "  "+c)
	}
	os.Stdout.Write(pretty.Pretty(b))
	return nil
}

func printTable(out io.Writer, p models.Presentation) {
	fmt.Fprintf(out, "Results (%d stocks)\n", len(p.Rows))
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(p.Columns, "\t"))
	for i, row := range p.Rows {
		if i == previewRows {
			break
		}
		vals := p.Values(row)
		cells := make([]string, len(vals))
		for j, v := range vals {
			cells[j] = formatCell(v)
		}
		fmt.Fprintln(w, strings.Join(cells, "\t"))
	}
	w.Flush()
	if len(p.Rows) > previewRows {
		fmt.Fprintf(out, "... %d more rows\n", len(p.Rows)-previewRows)
	}
}

func formatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return "-"
	case float64:
		return fmt.Sprintf("%.2f", x)
	default:
		return fmt.Sprint(x)
	}
}

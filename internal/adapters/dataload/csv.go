package dataload

// csv.go — carga de velas OHLCV desde archivos CSV.
//
// Formato esperado (con header):
//
//	timestamp,open,high,low,close,volume
//
// El timestamp acepta RFC3339 o epoch en segundos. La serie resultante se
// valida antes de devolverse: timestamps estrictamente crecientes, sin filas
// de precio no positivo.

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/alejandrodnm/gridbot/internal/domain"
)

// LoadCSV lee una serie OHLCV completa desde la ruta dada.
func LoadCSV(path string) (domain.PriceSeries, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dataload.LoadCSV: open %q: %w", path, err)
	}
	defer f.Close()

	series, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("dataload.LoadCSV: %q: %w", path, err)
	}
	return series, nil
}

// ReadCSV parsea una serie OHLCV desde cualquier reader.
func ReadCSV(r io.Reader) (domain.PriceSeries, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols, err := mapColumns(header)
	if err != nil {
		return nil, err
	}

	var series domain.PriceSeries
	line := 1
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line+1, err)
		}
		line++

		tick, err := parseTick(record, cols)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		series = append(series, tick)
	}

	if err := series.Validate(); err != nil {
		return nil, err
	}
	return series, nil
}

// columns mapea el nombre de cada campo a su índice en el CSV.
type columns struct {
	ts, open, high, low, close, volume int
}

func mapColumns(header []string) (columns, error) {
	cols := columns{ts: -1, open: -1, high: -1, low: -1, close: -1, volume: -1}
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "timestamp", "time", "date":
			cols.ts = i
		case "open":
			cols.open = i
		case "high":
			cols.high = i
		case "low":
			cols.low = i
		case "close":
			cols.close = i
		case "volume":
			cols.volume = i
		}
	}
	if cols.ts < 0 || cols.open < 0 || cols.high < 0 || cols.low < 0 || cols.close < 0 {
		return cols, fmt.Errorf("missing required columns in header %v", header)
	}
	return cols, nil
}

func parseTick(record []string, cols columns) (domain.PriceTick, error) {
	var tick domain.PriceTick
	var err error

	if tick.Timestamp, err = parseTimestamp(record[cols.ts]); err != nil {
		return tick, err
	}
	if tick.Open, err = parsePrice("open", record[cols.open]); err != nil {
		return tick, err
	}
	if tick.High, err = parsePrice("high", record[cols.high]); err != nil {
		return tick, err
	}
	if tick.Low, err = parsePrice("low", record[cols.low]); err != nil {
		return tick, err
	}
	if tick.Close, err = parsePrice("close", record[cols.close]); err != nil {
		return tick, err
	}

	// El volumen es opcional; algunas fuentes no lo traen.
	if cols.volume >= 0 && cols.volume < len(record) {
		if v := strings.TrimSpace(record[cols.volume]); v != "" {
			if tick.Volume, err = strconv.ParseFloat(v, 64); err != nil {
				return tick, fmt.Errorf("volume %q: %w", v, err)
			}
		}
	}
	return tick, nil
}

func parseTimestamp(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t.UTC(), nil
	}
	if secs, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return time.Unix(secs, 0).UTC(), nil
	}
	return time.Time{}, fmt.Errorf("unparseable timestamp %q", raw)
}

func parsePrice(field, raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, fmt.Errorf("%s %q: %w", field, raw, err)
	}
	if v <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %v", field, v)
	}
	return v, nil
}

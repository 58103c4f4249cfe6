// Package export renders result envelopes into downloadable documents:
// CSV for the record tables, indented JSON for the envelope itself.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/mohammad-safakhou/marketscope/models"
)

// Columns resolves the header order for a table. A supported kind fixes
// the order outright. Otherwise the records' keys are matched against the
// known schemas, because stored envelopes do not carry their kind; as the
// last resort the union of keys is used in sorted order.
func Columns(kind models.AnalysisKind, records []models.Record) []string {
	if cols := kind.Fields(); cols != nil {
		return cols
	}
	if len(records) == 0 {
		return nil
	}
	for _, k := range []models.AnalysisKind{models.KindMarketGap, models.KindTrending, models.KindHighSelling, models.KindCompetitor} {
		if matchesSchema(records[0], k.Fields()) {
			return k.Fields()
		}
	}
	return unionKeys(records)
}

// TableCSV writes one record table with a header row. Missing fields
// render as empty cells.
func TableCSV(w io.Writer, kind models.AnalysisKind, records []models.Record) error {
	cols := Columns(kind, records)
	if cols == nil {
		return nil
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(cols); err != nil {
		return err
	}
	row := make([]string, len(cols))
	for _, rec := range records {
		for i, col := range cols {
			row[i] = ""
			if v, ok := rec[col]; ok {
				row[i] = formatValue(v)
			}
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// EnvelopeCSV writes every table of the envelope in order, separated by
// one blank line. Envelopes carry a single table in practice, so the
// common output is a plain CSV document.
func EnvelopeCSV(w io.Writer, kind models.AnalysisKind, env models.ResultEnvelope) error {
	for i, records := range env.Tables {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		if err := TableCSV(w, kind, records); err != nil {
			return err
		}
	}
	return nil
}

// EnvelopeJSON writes the whole envelope indented.
func EnvelopeJSON(w io.Writer, env models.ResultEnvelope) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(env)
}

func matchesSchema(rec models.Record, cols []string) bool {
	if len(rec) != len(cols) {
		return false
	}
	for _, col := range cols {
		if _, ok := rec[col]; !ok {
			return false
		}
	}
	return true
}

func unionKeys(records []models.Record) []string {
	seen := map[string]bool{}
	for _, rec := range records {
		for k := range rec {
			seen[k] = true
		}
	}
	out := make([]string, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func formatValue(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		// JSON decoding turns whole numbers into float64; keep them whole
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%g", t)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", t)
	}
}

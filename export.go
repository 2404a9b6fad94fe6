package atelier

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
)

// ErrInvalidExport is returned when an export payload is not JSON.
var ErrInvalidExport = errors.New("export payload is not valid JSON")

// WriteExport writes a JSON payload to path. A ".csv" path gets a CSV table
// flattened from an array of objects; anything else gets indented JSON.
// An empty payload writes nothing.
func WriteExport(path string, payload []byte) error {
	payload = bytes.TrimSpace(payload)
	if len(payload) == 0 {
		return nil
	}
	if !gjson.ValidBytes(payload) {
		return ErrInvalidExport
	}

	var out []byte
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		data, err := toCSV(gjson.ParseBytes(payload))
		if err != nil {
			return err
		}
		out = data
	} else {
		var buf bytes.Buffer
		if err := json.Indent(&buf, payload, "", "  "); err != nil {
			return errors.Wrap(err, "format json export")
		}
		buf.WriteByte('\n')
		out = buf.Bytes()
	}

	if err := os.WriteFile(path, out, 0o644); err != nil {
		return errors.Wrapf(err, "write export %s", path)
	}
	return nil
}

// toCSV flattens records into rows. The header is the union of top-level
// keys in first-seen order. Nested values are written as raw JSON.
func toCSV(root gjson.Result) ([]byte, error) {
	var records []gjson.Result
	switch {
	case root.IsArray():
		records = root.Array()
	case root.IsObject():
		records = []gjson.Result{root}
	default:
		return nil, errors.Wrap(ErrInvalidExport, "csv export needs an object or an array of objects")
	}

	var header []string
	seen := make(map[string]bool)
	rows := make([]map[string]string, 0, len(records))

	for _, rec := range records {
		row := make(map[string]string)
		if !rec.IsObject() {
			row["value"] = cell(rec)
			if !seen["value"] {
				seen["value"] = true
				header = append(header, "value")
			}
			rows = append(rows, row)
			continue
		}
		rec.ForEach(func(key, value gjson.Result) bool {
			k := key.String()
			if !seen[k] {
				seen[k] = true
				header = append(header, k)
			}
			row[k] = cell(value)
			return true
		})
		rows = append(rows, row)
	}
	if len(header) == 0 {
		return nil, errors.Wrap(ErrInvalidExport, "csv export has no records")
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return nil, errors.Wrap(err, "write csv header")
	}
	line := make([]string, len(header))
	for _, row := range rows {
		for i, k := range header {
			line[i] = row[k]
		}
		if err := w.Write(line); err != nil {
			return nil, errors.Wrap(err, "write csv row")
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, errors.Wrap(err, "flush csv")
	}
	return buf.Bytes(), nil
}

func cell(v gjson.Result) string {
	switch v.Type {
	case gjson.Null:
		return ""
	case gjson.JSON:
		return v.Raw
	default:
		return v.String()
	}
}

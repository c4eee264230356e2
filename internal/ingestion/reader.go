package ingestion

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ReadFile loads a document file and flattens it to plain UTF-8 text for the
// chunker. JSON files are pretty-printed; CSV rows become "header: value"
// lines, one blank-line-separated block per record; everything else is
// treated as plain text. The returned source is the file's base name.
func ReadFile(path string) (content, source string, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", fmt.Errorf("ingestion: read %s: %w", path, err)
	}
	source = filepath.Base(path)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		content, err = flattenJSON(data)
	case ".csv":
		content, err = flattenCSV(data)
	default:
		content = string(data)
	}
	if err != nil {
		return "", "", fmt.Errorf("ingestion: process %s: %w", path, err)
	}
	return content, source, nil
}

// flattenJSON re-indents arbitrary JSON so nested structures chunk on
// meaningful line boundaries instead of one opaque line.
func flattenJSON(data []byte) (string, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return "", fmt.Errorf("parse json: %w", err)
	}
	if s, ok := v.(string); ok {
		return s, nil
	}
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("render json: %w", err)
	}
	return string(out), nil
}

// flattenCSV renders each record as "header: value" lines so the chunker
// and the embedder see readable prose-like text rather than a delimiter grid.
func flattenCSV(data []byte) (string, error) {
	rows, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	if err != nil {
		return "", fmt.Errorf("parse csv: %w", err)
	}
	if len(rows) < 2 {
		return "", nil
	}

	headers := rows[0]
	var blocks []string
	for _, row := range rows[1:] {
		var lines []string
		for i, field := range row {
			if i >= len(headers) {
				break
			}
			lines = append(lines, headers[i]+": "+field)
		}
		blocks = append(blocks, strings.Join(lines, "\n"))
	}
	return strings.Join(blocks, "\n\n"), nil
}

package cli

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	inputCSV   = "csv"
	inputJSONL = "jsonl"
)

// inputKind picks the reader for path by extension, sniffing the first
// byte of head when the extension says nothing.
func inputKind(path string, head []byte) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return inputCSV
	case ".jsonl", ".ndjson", ".json":
		return inputJSONL
	}
	if b := bytes.TrimSpace(head); len(b) > 0 && b[0] == '{' {
		return inputJSONL
	}
	return inputCSV
}

// readRows reads raw records from r. Both readers return one map per
// record keyed by the names found in the input.
func readRows(r io.Reader, path string) ([]map[string]string, error) {
	br := bufio.NewReader(r)
	head, _ := br.Peek(64)

	if inputKind(path, head) == inputJSONL {
		return readJSONL(br)
	}
	return readCSV(br)
}

func readCSV(r io.Reader) ([]map[string]string, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading csv header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}

	var rows []map[string]string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading csv: %w", err)
		}
		m := make(map[string]string, len(header))
		for i, h := range header {
			m[h] = rec[i]
		}
		rows = append(rows, m)
	}
	return rows, nil
}

func readJSONL(r io.Reader) ([]map[string]string, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var rows []map[string]string
	for line := 1; ; line++ {
		var obj map[string]any
		err := dec.Decode(&obj)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading json record %d: %w", line, err)
		}
		m, err := stringValues(obj)
		if err != nil {
			return nil, fmt.Errorf("reading json record %d: %w", line, err)
		}
		rows = append(rows, m)
	}
	return rows, nil
}

// stringValues flattens decoded JSON scalars to their string form. Null
// values are left out so that they surface as missing fields.
func stringValues(obj map[string]any) (map[string]string, error) {
	m := make(map[string]string, len(obj))
	for k, v := range obj {
		switch t := v.(type) {
		case nil:
			continue
		case string:
			m[k] = t
		case json.Number:
			m[k] = t.String()
		case float64:
			m[k] = strconv.FormatFloat(t, 'f', -1, 64)
		case bool:
			m[k] = strconv.FormatBool(t)
		default:
			return nil, fmt.Errorf("%s: unsupported value type %T", k, v)
		}
	}
	return m, nil
}

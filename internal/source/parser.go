// Package source reads and writes portable copies of the usage event log.
package source

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/theirongolddev/wburn/internal/model"
)

// Format names a serialization.
type Format string

const (
	FormatJSON  Format = "json"
	FormatJSONL Format = "jsonl"
	FormatYAML  Format = "yaml"
)

// Formats lists the supported formats.
var Formats = []Format{FormatJSON, FormatJSONL, FormatYAML}

// ParseFormat accepts a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatJSONL, FormatYAML:
		return f, nil
	case "yml":
		return FormatYAML, nil
	case "ndjson":
		return FormatJSONL, nil
	default:
		return "", fmt.Errorf("unknown format %q (want json, jsonl or yaml)", s)
	}
}

// DetectFormat picks a format from the file extension, then from content.
func DetectFormat(path string, data []byte) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".jsonl", ".ndjson":
		return FormatJSONL
	case ".json":
		return FormatJSON
	}

	trimmed := bytes.TrimSpace(data)
	switch {
	case len(trimmed) == 0:
		return FormatJSON
	case trimmed[0] == '[':
		return FormatJSON
	case trimmed[0] == '{':
		return FormatJSONL
	default:
		return FormatYAML
	}
}

// ParseResult holds decoded events and a count of records that could not
// be turned into events.
type ParseResult struct {
	Events      []model.UsageEvent
	ParseErrors int
}

// Parse decodes data in the given format. Civil dates are read in loc.
// Malformed records are counted and skipped; only an unreadable document
// as a whole is an error.
func Parse(data []byte, format Format, loc *time.Location) (ParseResult, error) {
	switch format {
	case FormatJSONL:
		return parseJSONL(bytes.NewReader(data), loc)
	case FormatYAML:
		var recs []Record
		if err := yaml.Unmarshal(data, &recs); err != nil {
			return ParseResult{}, fmt.Errorf("parsing yaml: %w", err)
		}
		return fromRecords(recs, loc), nil
	default:
		if len(bytes.TrimSpace(data)) == 0 {
			return ParseResult{}, nil
		}
		var recs []Record
		if err := json.Unmarshal(data, &recs); err != nil {
			return ParseResult{}, fmt.Errorf("parsing json: %w", err)
		}
		return fromRecords(recs, loc), nil
	}
}

func parseJSONL(r io.Reader, loc *time.Location) (ParseResult, error) {
	var res ParseResult

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var rec Record
		if err := json.Unmarshal(line, &rec); err != nil {
			res.ParseErrors++
			continue
		}
		e, err := rec.Event(loc)
		if err != nil {
			res.ParseErrors++
			continue
		}
		res.Events = append(res.Events, e)
	}
	if err := scanner.Err(); err != nil {
		return res, fmt.Errorf("reading jsonl: %w", err)
	}
	return res, nil
}

func fromRecords(recs []Record, loc *time.Location) ParseResult {
	var res ParseResult
	for _, rec := range recs {
		e, err := rec.Event(loc)
		if err != nil {
			res.ParseErrors++
			continue
		}
		res.Events = append(res.Events, e)
	}
	return res
}

// Event converts a record. The amount is passed through unchecked so the
// caller's validation can report it.
func (r Record) Event(loc *time.Location) (model.UsageEvent, error) {
	date, err := model.ParseDate(r.Date, loc)
	if err != nil {
		return model.UsageEvent{}, err
	}
	typ, err := model.ParseEventType(r.Type)
	if err != nil {
		return model.UsageEvent{}, err
	}

	e := model.UsageEvent{
		ID:     string(r.ID),
		Date:   date,
		Type:   typ,
		Amount: r.Amount,
	}
	switch {
	case r.CreatedAt != "":
		if t, err := time.Parse(time.RFC3339Nano, r.CreatedAt); err == nil {
			e.CreatedAt = t.UTC()
		}
	default:
		// Browser ids are the creation time in milliseconds.
		if ms, ok := r.ID.millis(); ok {
			e.CreatedAt = time.UnixMilli(ms).UTC()
		}
	}
	return e, nil
}

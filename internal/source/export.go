package source

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/theirongolddev/wburn/internal/model"
)

// NewRecord converts an event to its portable form.
func NewRecord(e model.UsageEvent) Record {
	r := Record{
		ID:     FlexID(e.ID),
		Date:   model.FormatDate(e.Date),
		Type:   string(e.Type),
		Amount: e.Amount,
	}
	if !e.CreatedAt.IsZero() {
		r.CreatedAt = e.CreatedAt.UTC().Format(time.RFC3339Nano)
	}
	return r
}

// Write encodes events to w in the given format.
func Write(w io.Writer, format Format, events []model.UsageEvent) error {
	recs := make([]Record, 0, len(events))
	for _, e := range events {
		recs = append(recs, NewRecord(e))
	}

	switch format {
	case FormatJSONL:
		enc := json.NewEncoder(w)
		for _, r := range recs {
			if err := enc.Encode(r); err != nil {
				return fmt.Errorf("writing jsonl: %w", err)
			}
		}
		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(recs); err != nil {
			return fmt.Errorf("writing yaml: %w", err)
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(recs); err != nil {
			return fmt.Errorf("writing json: %w", err)
		}
		return nil
	}
}

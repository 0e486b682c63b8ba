package source

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Record is the portable form of a usage event. It also matches the
// browser tracker's saved history, whose ids are millisecond timestamps
// and whose dates are ISO timestamps of local midnight.
type Record struct {
	ID        FlexID `json:"id" yaml:"id"`
	Date      string `json:"date" yaml:"date"`
	Type      string `json:"type" yaml:"type"`
	Amount    int    `json:"amount" yaml:"amount"`
	CreatedAt string `json:"created_at,omitempty" yaml:"created_at,omitempty"`
}

// FlexID accepts either a JSON string or a JSON number.
type FlexID string

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexID) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*f = ""
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		*f = FlexID(str)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	*f = FlexID(n.String())
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (f *FlexID) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: id must be a scalar", node.Line)
	}
	*f = FlexID(node.Value)
	return nil
}

// millis returns the id as a millisecond timestamp when it is one.
func (f FlexID) millis() (int64, bool) {
	n, err := strconv.ParseInt(string(f), 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

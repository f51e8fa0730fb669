// Package dataset loads the session's entity collections. Collections are
// supplied as a JSON document (or the embedded sample set) and validated
// into a memstore at startup; there is no durable persistence.
package dataset

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/linnemanlabs/risklens/internal/investigation"
)

//go:embed sample.json
var sampleJSON []byte

// Data is the wire shape of a session dataset.
type Data struct {
	Customers    []investigation.Customer    `json:"customers"`
	Transactions []investigation.Transaction `json:"transactions"`
	Alerts       []investigation.Alert       `json:"alerts"`
}

// Load reads and decodes a dataset document from disk.
func Load(path string) (*Data, error) {
	raw, err := os.ReadFile(path) //nolint:gosec // G304: path comes from operator config
	if err != nil {
		return nil, fmt.Errorf("dataset: read %s: %w", path, err)
	}
	return decode(raw)
}

// Sample returns the embedded demonstration dataset.
func Sample() (*Data, error) {
	return decode(sampleJSON)
}

func decode(raw []byte) (*Data, error) {
	var d Data
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("dataset: decode: %w", err)
	}
	return &d, nil
}

package ports

import (
	"encoding/json"
	"fmt"

	"github.com/aretw0/props"
)

// EncodeRecord encodes a record as JSON, the storage format shared by the
// bundled backends.
func EncodeRecord(rec Record) ([]byte, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal record: %w", err)
	}
	return data, nil
}

// DecodeRecord decodes a JSON record. Numbers are kept as json.Number.
func DecodeRecord(data []byte) (Record, error) {
	v, err := props.DecodeJSON(data)
	if err != nil {
		return nil, err
	}
	rec, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: stored record is %T", props.ErrNotMapping, v)
	}
	return rec, nil
}

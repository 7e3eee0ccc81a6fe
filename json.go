package props

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// Marshal serializes inst and encodes the mapping as JSON.
func (c *Codec) Marshal(inst *Instance, opts ...SerializeOption) ([]byte, error) {
	data, err := c.Serialize(inst, opts...)
	if err != nil {
		return nil, err
	}
	return json.Marshal(data)
}

// Unmarshal decodes JSON and deserializes it generically (see Deserialize).
func (c *Codec) Unmarshal(data []byte, opts ...DecodeOption) (Object, error) {
	plain, err := DecodeJSON(data)
	if err != nil {
		return nil, err
	}
	return c.Deserialize(plain, opts...)
}

// UnmarshalAs decodes JSON and deserializes it as an instance of m.
func (c *Codec) UnmarshalAs(m *Model, data []byte) (*Instance, error) {
	plain, err := DecodeJSON(data)
	if err != nil {
		return nil, err
	}
	return c.DeserializeAs(m, plain)
}

// DecodeJSON decodes a single JSON value into plain Go values.
// Numbers are kept as json.Number so integers do not turn into float64.
func DecodeJSON(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidJSON, err)
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return nil, fmt.Errorf("%w: unexpected data after value", ErrInvalidJSON)
	}
	return v, nil
}

package cli

import (
	"fmt"

	"github.com/aretw0/props"
)

// DecodeResult is what the decode command prints.
type DecodeResult struct {
	Model    string          `json:"model,omitempty"`
	Resolved bool            `json:"resolved"`
	Object   map[string]any  `json:"object"`
	Warnings []props.Warning `json:"warnings,omitempty"`
	Errors   []string        `json:"errors,omitempty"`
}

// Decode deserializes a JSON document. With a model name the document is
// decoded as that model and validated; otherwise class tags are honoured
// only when trusted is set.
func Decode(p *Project, data []byte, model string, trusted bool) (props.Object, *DecodeResult, error) {
	var (
		obj      props.Object
		err      error
		warnings props.WarningRecorder
	)
	if model != "" {
		m, lookupErr := p.Model(model)
		if lookupErr != nil {
			return nil, nil, lookupErr
		}
		obj, err = p.Codec.UnmarshalAs(m, data)
	} else {
		obj, err = p.Codec.Unmarshal(data, props.WithTrust(trusted), props.OnWarning(warnings.Record))
	}
	if err != nil {
		return nil, nil, err
	}

	result := &DecodeResult{Warnings: warnings.Warnings()}
	switch o := obj.(type) {
	case *props.Instance:
		plain, err := p.Codec.Serialize(o)
		if err != nil {
			return nil, nil, err
		}
		result.Model, result.Resolved, result.Object = o.ModelName(), true, plain
		for _, verr := range props.ValidationErrors(o.Validate()) {
			result.Errors = append(result.Errors, verr.Error())
		}
	case *props.Unresolved:
		result.Object = o.Fields
	default:
		return nil, nil, fmt.Errorf("unexpected object type %T", obj)
	}
	return obj, result, nil
}

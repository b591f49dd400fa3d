// Package envelope decodes the {data, status, error} wrapper the upstream
// employee service puts around every response.
//
// Absent or null data is not an error: DecodeOne yields nil and DecodeMany
// yields an empty slice. Shape mismatches yield a failure.KindDecode error.
package envelope

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/devkichauhan/reliaquest/internal/employee/failure"
	"github.com/devkichauhan/reliaquest/internal/employee/models"
)

// Schema is implemented by types that need certain keys present in each
// decoded object. Unknown keys are always ignored.
type Schema interface {
	RequiredFields() []string
}

// Parse decodes a raw response body. An empty body yields nil.
func Parse(body []byte) (*models.Envelope, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, nil
	}
	var env models.Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, failure.Wrap(failure.KindDecode, "", err, "malformed envelope")
	}
	return &env, nil
}

// DecodeOne reshapes the envelope data into a single T. It returns nil, nil
// when env is nil or carries no data.
func DecodeOne[T any](env *models.Envelope) (*T, error) {
	if !hasData(env) {
		return nil, nil
	}
	var v T
	if err := decode(env.Data, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// DecodeMany reshapes the envelope data into a slice of T. The result is
// never nil.
func DecodeMany[T any](env *models.Envelope) ([]T, error) {
	if !hasData(env) {
		return []T{}, nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(env.Data, &items); err != nil {
		return nil, failure.Wrap(failure.KindDecode, "", err, "data is not a list")
	}

	out := make([]T, 0, len(items))
	for i, item := range items {
		var v T
		if err := decode(item, &v); err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func hasData(env *models.Envelope) bool {
	if env == nil {
		return false
	}
	data := bytes.TrimSpace(env.Data)
	return len(data) > 0 && !bytes.Equal(data, []byte("null"))
}

func decode[T any](raw json.RawMessage, v *T) error {
	if schema, ok := any(v).(Schema); ok {
		if err := checkRequired(raw, schema.RequiredFields()); err != nil {
			return err
		}
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return failure.Wrap(failure.KindDecode, "", err, "data does not match expected shape")
	}
	return nil
}

func checkRequired(raw json.RawMessage, fields []string) error {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return failure.Wrap(failure.KindDecode, "", err, "data is not an object")
	}
	for _, f := range fields {
		val, ok := obj[f]
		if !ok || bytes.Equal(bytes.TrimSpace(val), []byte("null")) {
			return failure.New(failure.KindDecode, "", fmt.Sprintf("missing required field %q", f))
		}
	}
	return nil
}

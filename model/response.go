package model

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"

	"github.com/pkg/errors"
)

// ErrInvalidValue is returned when a submitted value has the wrong shape
// for its field type, e.g. an object where a string was expected.
var ErrInvalidValue = errors.New("invalid field value")

type Response struct {
	ID        string    `json:"id"`
	FormID    string    `json:"formId"`
	Data      Data      `json:"data"`
	CreatedAt time.Time `json:"createdAt"`
}

// Value is a submitted answer: either Text or Choices. The set of
// implementations is closed.
type Value interface {
	// Present reports whether the value counts as supplied: non-empty text
	// or at least one choice.
	Present() bool
	isValue()
}

// Text answers text, email, number, textarea, select and radio fields.
type Text string

// Choices answers checkbox fields.
type Choices []string

func (t Text) Present() bool    { return t != "" }
func (c Choices) Present() bool { return len(c) > 0 }

func (Text) isValue()    {}
func (Choices) isValue() {}

func (c Choices) MarshalJSON() ([]byte, error) {
	if c == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(c))
}

// Data maps field ids to submitted values.
type Data map[string]Value

// UnmarshalJSON infers each value's variant from its JSON shape: arrays
// become Choices, everything else Text. Stored responses may reference
// fields that were since removed from the form, so the field type is not
// always known when reading.
func (d *Data) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	out := make(Data, len(raw))
	for id, msg := range raw {
		v, err := decodeValue(msg, bytes.HasPrefix(bytes.TrimSpace(msg), []byte("[")))
		if err != nil {
			return errors.Wrapf(err, "field %s", id)
		}
		out[id] = v
	}
	*d = out
	return nil
}

// EncodeData serialises response data into the text stored in the response row.
func EncodeData(d Data) (string, error) {
	if d == nil {
		d = Data{}
	}
	b, err := json.Marshal(d)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func DecodeData(text string) (Data, error) {
	d := Data{}
	if text == "" {
		return d, nil
	}
	if err := json.Unmarshal([]byte(text), &d); err != nil {
		return nil, err
	}
	return d, nil
}

// DecodeSubmission coerces a raw submission into typed values, keyed by the
// form's field types. Keys that name no field of the form are dropped.
func DecodeSubmission(fields []Field, raw map[string]json.RawMessage) (Data, error) {
	data := make(Data, len(fields))
	for _, f := range fields {
		msg, ok := raw[f.ID]
		if !ok {
			continue
		}
		v, err := decodeValue(msg, f.Type.MultiValued())
		if err != nil {
			return nil, errors.Wrapf(err, "field %s", f.ID)
		}
		data[f.ID] = v
	}
	return data, nil
}

func decodeValue(msg json.RawMessage, multi bool) (Value, error) {
	var x any
	dec := json.NewDecoder(bytes.NewReader(msg))
	dec.UseNumber()
	if err := dec.Decode(&x); err != nil {
		return nil, errors.Wrap(ErrInvalidValue, err.Error())
	}
	if multi {
		return toChoices(x)
	}
	return toText(x)
}

func toText(x any) (Text, error) {
	switch v := x.(type) {
	case nil:
		return "", nil
	case string:
		return Text(v), nil
	case json.Number:
		return Text(v.String()), nil
	case bool:
		return Text(strconv.FormatBool(v)), nil
	}
	return "", errors.Wrapf(ErrInvalidValue, "expected a string, got %T", x)
}

func toChoices(x any) (Choices, error) {
	switch v := x.(type) {
	case nil:
		return Choices{}, nil
	case string:
		if v == "" {
			return Choices{}, nil
		}
		return Choices{v}, nil
	case []any:
		out := make(Choices, 0, len(v))
		for _, item := range v {
			s, err := toText(item)
			if err != nil {
				return nil, err
			}
			out = append(out, string(s))
		}
		return out, nil
	}
	return nil, errors.Wrapf(ErrInvalidValue, "expected a list of strings, got %T", x)
}

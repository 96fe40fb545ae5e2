package assistant

import (
	"bytes"
	"encoding/json"
	"regexp"

	"github.com/pkg/errors"
)

// ErrNotUnderstood is returned when the completion holds no JSON the
// assistant can use.
var ErrNotUnderstood = errors.New("assistant response not understood")

var (
	reArraySpan  = regexp.MustCompile(`(?s)\[.*\]`)
	reObjectSpan = regexp.MustCompile(`(?s)\{.*\}`)
)

// decodeLenient parses text as JSON into a T. When the text as a whole is
// not valid JSON, the widest span matched by span is tried instead, which
// tolerates prose around the payload. Either the value or ErrNotUnderstood
// is returned. A bare null is not a value.
func decodeLenient[T any](text string, span *regexp.Regexp) (T, error) {
	var out T
	raw := bytes.TrimSpace([]byte(text))
	if bytes.Equal(raw, []byte("null")) {
		return out, errors.Wrap(ErrNotUnderstood, "null completion")
	}
	if err := json.Unmarshal(raw, &out); err == nil {
		return out, nil
	}

	match := span.FindString(text)
	if match == "" {
		return out, ErrNotUnderstood
	}
	var retry T
	if err := json.Unmarshal([]byte(match), &retry); err != nil {
		return out, errors.Wrap(ErrNotUnderstood, err.Error())
	}
	return retry, nil
}

// Proposal is a field as the model describes it. It has no id; the caller
// assigns one.
type Proposal struct {
	Type        string           `json:"type"`
	Label       string           `json:"label"`
	Placeholder string           `json:"placeholder"`
	Description string           `json:"description"`
	Required    bool             `json:"required"`
	Options     []ProposedOption `json:"options"`
	Validation  *struct {
		Min *float64 `json:"min"`
		Max *float64 `json:"max"`
	} `json:"validation"`
}

type ProposedOption struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Enhancement is the improved copy proposed for a single field.
type Enhancement struct {
	Label       string `json:"label"`
	Placeholder string `json:"placeholder"`
	Description string `json:"description"`
}

// ParseFields extracts the proposed fields from a completion. A completion
// proposing no field at all is not understood.
func ParseFields(text string) ([]Proposal, error) {
	proposals, err := decodeLenient[[]Proposal](text, reArraySpan)
	if err != nil {
		return nil, err
	}
	if len(proposals) == 0 {
		return nil, errors.Wrap(ErrNotUnderstood, "no fields proposed")
	}
	return proposals, nil
}

// ParseEnhancement extracts a field enhancement from a completion. The label
// is mandatory.
func ParseEnhancement(text string) (Enhancement, error) {
	e, err := decodeLenient[Enhancement](text, reObjectSpan)
	if err != nil {
		return Enhancement{}, err
	}
	if e.Label == "" {
		return Enhancement{}, errors.Wrap(ErrNotUnderstood, "no label proposed")
	}
	return e, nil
}

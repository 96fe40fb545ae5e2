package model

import (
	"encoding/json"
	"time"
)

type Form struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Slug        string    `json:"slug"`
	Fields      []Field   `json:"fields"`
	IsPublished bool      `json:"isPublished"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// FormWithResponses is the builder's view of a form: the definition plus
// every response collected so far.
type FormWithResponses struct {
	Form
	Responses []Response `json:"responses"`
}

// EncodeFields serialises fields into the text stored in the form row.
// A nil slice is stored as an empty list, never as null.
func EncodeFields(fields []Field) (string, error) {
	if fields == nil {
		fields = []Field{}
	}
	b, err := json.Marshal(fields)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// DecodeFields parses the stored text back into fields, preserving order.
func DecodeFields(text string) ([]Field, error) {
	fields := []Field{}
	if text == "" {
		return fields, nil
	}
	if err := json.Unmarshal([]byte(text), &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		fields = []Field{}
	}
	return fields, nil
}

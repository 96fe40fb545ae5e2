package model

// FieldType is the kind of input a field renders as. It also decides the
// shape of the submitted value: Choices for checkbox, Text for the rest.
type FieldType string

const (
	FieldText     FieldType = "text"
	FieldEmail    FieldType = "email"
	FieldNumber   FieldType = "number"
	FieldSelect   FieldType = "select"
	FieldCheckbox FieldType = "checkbox"
	FieldTextarea FieldType = "textarea"
	FieldRadio    FieldType = "radio"
)

// FieldTypes lists every known field type in builder order.
var FieldTypes = []FieldType{
	FieldText,
	FieldEmail,
	FieldNumber,
	FieldSelect,
	FieldCheckbox,
	FieldTextarea,
	FieldRadio,
}

// Valid reports whether t is one of FieldTypes.
func (t FieldType) Valid() bool {
	for _, known := range FieldTypes {
		if t == known {
			return true
		}
	}
	return false
}

// HasOptions reports whether fields of this type carry an option list.
// Nothing enforces that the list is present; the builder supplies it.
func (t FieldType) HasOptions() bool {
	switch t {
	case FieldSelect, FieldCheckbox, FieldRadio:
		return true
	}
	return false
}

// MultiValued reports whether a submission holds a list of values.
func (t FieldType) MultiValued() bool {
	return t == FieldCheckbox
}

// Field is one input of a form, identified by an id that responses are keyed on.
type Field struct {
	ID          string      `json:"id" yaml:"id,omitempty"`
	Type        FieldType   `json:"type" yaml:"type"`
	Label       string      `json:"label" yaml:"label"`
	Placeholder string      `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	Description string      `json:"description,omitempty" yaml:"description,omitempty"`
	Required    bool        `json:"required" yaml:"required,omitempty"`
	Validation  *Validation `json:"validation,omitempty" yaml:"validation,omitempty"`
	Options     []Option    `json:"options,omitempty" yaml:"options,omitempty"`
}

// Validation holds per-field rules. Pattern and Message are stored and
// returned as given, but no validator evaluates them.
type Validation struct {
	Min     *float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max     *float64 `json:"max,omitempty" yaml:"max,omitempty"`
	Pattern string   `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	Message string   `json:"message,omitempty" yaml:"message,omitempty"`
}

// Option is a choice offered by select, checkbox and radio fields.
type Option struct {
	Label string `json:"label" yaml:"label"`
	Value string `json:"value" yaml:"value"`
}

// FieldIDs returns the set of ids used by fields.
func FieldIDs(fields []Field) map[string]bool {
	ids := make(map[string]bool, len(fields))
	for _, f := range fields {
		if f.ID != "" {
			ids[f.ID] = true
		}
	}
	return ids
}

// Package validator checks a response against the form it answers.
package validator

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/mbolis/quick-forms/model"
)

const (
	MsgRequired = "This field is required"
	MsgEmail    = "Please enter a valid email address"
	MsgNumber   = "Please enter a valid number"
)

var reEmail = regexp.MustCompile(`^[^\s\p{Z}@]+@[^\s\p{Z}@]+\.[^\s\p{Z}@]+$`)

// Errors maps a field id to the message explaining why its value was
// rejected. An empty map means the response is accepted.
type Errors map[string]string

func (e Errors) OK() bool { return len(e) == 0 }

// Validate applies the presence, email and number rules to every field.
// Fields are checked independently; a missing required value skips the
// remaining rules for that field.
func Validate(fields []model.Field, data model.Data) Errors {
	errs := Errors{}
	for _, f := range fields {
		if msg, ok := checkField(f, data[f.ID]); !ok {
			errs[f.ID] = msg
		}
	}
	return errs
}

func checkField(f model.Field, v model.Value) (string, bool) {
	present := v != nil && v.Present()
	if f.Required && !present {
		return MsgRequired, false
	}
	if !present {
		return "", true
	}

	switch f.Type {
	case model.FieldEmail:
		return checkEmail(v)
	case model.FieldNumber:
		return checkNumber(f.Validation, v)
	case model.FieldText, model.FieldTextarea, model.FieldSelect, model.FieldRadio, model.FieldCheckbox:
		return "", true
	default:
		// unknown types only get the presence rule
		return "", true
	}
}

func checkEmail(v model.Value) (string, bool) {
	s, ok := v.(model.Text)
	if !ok || !reEmail.MatchString(string(s)) {
		return MsgEmail, false
	}
	return "", true
}

func checkNumber(rules *model.Validation, v model.Value) (string, bool) {
	s, ok := v.(model.Text)
	if !ok {
		return MsgNumber, false
	}
	n, err := parseNumber(string(s))
	if err != nil {
		return MsgNumber, false
	}
	if rules == nil {
		return "", true
	}

	msg := ""
	if rules.Min != nil && n < *rules.Min {
		msg = "Minimum value is " + formatNumber(*rules.Min)
	}
	if rules.Max != nil && n > *rules.Max {
		msg = "Maximum value is " + formatNumber(*rules.Max)
	}
	return msg, msg == ""
}

func parseNumber(s string) (float64, error) {
	n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, strconv.ErrSyntax
	}
	return n, nil
}

func formatNumber(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}

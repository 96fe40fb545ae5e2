// Package assistant proposes form fields and field copy using a text
// completion service. Its output is untrusted: it is parsed leniently,
// stripped of markup and given fresh ids before anything else sees it.
package assistant

import (
	"context"
	"html"

	"github.com/microcosm-cc/bluemonday"
	"github.com/pkg/errors"

	"github.com/mbolis/quick-forms/idgen"
	"github.com/mbolis/quick-forms/log"
	"github.com/mbolis/quick-forms/model"
)

// ErrNotConfigured is returned when no completion service is set up.
var ErrNotConfigured = errors.New("assistant not configured")

const (
	generateMaxTokens = 1000
	enhanceMaxTokens  = 200
)

// Completer turns a prompt into a completion.
type Completer interface {
	Complete(ctx context.Context, prompt string, maxTokens int) (string, error)
}

type Assistant struct {
	completer Completer
	policy    *bluemonday.Policy
	newID     func() string
}

// New returns an Assistant backed by c. A nil c gives an assistant whose
// every call fails with ErrNotConfigured.
func New(c Completer) *Assistant {
	return &Assistant{
		completer: c,
		policy:    bluemonday.StrictPolicy(),
		newID:     idgen.NewID,
	}
}

func (a *Assistant) Configured() bool {
	return a != nil && a.completer != nil
}

type GenerateRequest struct {
	Title          string        `json:"title"`
	Description    string        `json:"description,omitempty"`
	ExistingFields []model.Field `json:"existingFields"`
}

// GenerateFields asks for new fields fitting the form. Every returned field
// has a fresh id that none of the existing fields use.
func (a *Assistant) GenerateFields(ctx context.Context, req GenerateRequest) ([]model.Field, error) {
	if !a.Configured() {
		return nil, ErrNotConfigured
	}

	text, err := a.completer.Complete(ctx, generatePrompt(req), generateMaxTokens)
	if err != nil {
		return nil, errors.Wrap(err, "complete")
	}
	if text == "" {
		return nil, errors.Wrap(ErrNotUnderstood, "empty completion")
	}

	proposals, err := ParseFields(text)
	if err != nil {
		log.Debugf("assistant.generate_fields: unparseable completion: %q", text)
		return nil, err
	}

	taken := model.FieldIDs(req.ExistingFields)
	fields := make([]model.Field, 0, len(proposals))
	for _, p := range proposals {
		f := a.toField(p)
		f.ID = a.freshID(taken)
		taken[f.ID] = true
		fields = append(fields, f)
	}
	return fields, nil
}

// EnhanceField asks for clearer label, placeholder and description copy.
func (a *Assistant) EnhanceField(ctx context.Context, field model.Field) (Enhancement, error) {
	if !a.Configured() {
		return Enhancement{}, ErrNotConfigured
	}

	text, err := a.completer.Complete(ctx, enhancePrompt(field), enhanceMaxTokens)
	if err != nil {
		return Enhancement{}, errors.Wrap(err, "complete")
	}
	if text == "" {
		return Enhancement{}, errors.Wrap(ErrNotUnderstood, "empty completion")
	}

	e, err := ParseEnhancement(text)
	if err != nil {
		log.Debugf("assistant.enhance_field: unparseable completion: %q", text)
		return Enhancement{}, err
	}
	return Enhancement{
		Label:       a.clean(e.Label),
		Placeholder: a.clean(e.Placeholder),
		Description: a.clean(e.Description),
	}, nil
}

func (a *Assistant) toField(p Proposal) model.Field {
	t := model.FieldType(p.Type)
	if !t.Valid() {
		log.WithFields(log.Fields{"type": p.Type, "label": p.Label}).Warn("assistant: unknown field type, using text")
		t = model.FieldText
	}
	f := model.Field{
		Type:        t,
		Label:       a.clean(p.Label),
		Placeholder: a.clean(p.Placeholder),
		Description: a.clean(p.Description),
		Required:    p.Required,
	}
	if p.Validation != nil && (p.Validation.Min != nil || p.Validation.Max != nil) {
		f.Validation = &model.Validation{Min: p.Validation.Min, Max: p.Validation.Max}
	}
	if t.HasOptions() {
		for _, o := range p.Options {
			f.Options = append(f.Options, model.Option{Label: a.clean(o.Label), Value: a.clean(o.Value)})
		}
	}
	return f
}

func (a *Assistant) freshID(taken map[string]bool) string {
	for {
		id := a.newID()
		if !taken[id] {
			return id
		}
	}
}

// clean strips any markup from model text. The strict policy escapes what
// it keeps, so the result is unescaped back to plain text.
func (a *Assistant) clean(s string) string {
	return html.UnescapeString(a.policy.Sanitize(s))
}

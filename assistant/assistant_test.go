package assistant

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbolis/quick-forms/model"
)

type fakeCompleter struct {
	text      string
	err       error
	prompt    string
	maxTokens int
}

func (f *fakeCompleter) Complete(_ context.Context, prompt string, maxTokens int) (string, error) {
	f.prompt = prompt
	f.maxTokens = maxTokens
	return f.text, f.err
}

func TestParseFields(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		count int
		err   bool
	}{
		{"strict", `[{"type":"text","label":"Name"},{"type":"email","label":"Email"}]`, 2, false},
		{"prose around", "here you go: [{\"type\":\"text\",\"label\":\"Name\"}] thanks", 1, false},
		{"wrapped object", `{"fields":[{"type":"number","label":"Age"}]}`, 1, false},
		{"multiline fence", "```json\n[\n  {\"type\": \"radio\", \"label\": \"Pick\"}\n]\n```", 1, false},
		{"no json", "sorry, I cannot help with that", 0, true},
		{"broken span", "[ not json ]", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFields(tt.text)
			if tt.err {
				assert.ErrorIs(t, err, ErrNotUnderstood)
				return
			}
			require.NoError(t, err)
			assert.Len(t, got, tt.count)
		})
	}
}

func TestParseEnhancement(t *testing.T) {
	e, err := ParseEnhancement("Sure! {\"label\":\"Full name\",\"placeholder\":\"Jane Doe\",\"description\":\"As on your ID\"} Hope it helps.")
	require.NoError(t, err)
	assert.Equal(t, Enhancement{Label: "Full name", Placeholder: "Jane Doe", Description: "As on your ID"}, e)

	_, err = ParseEnhancement("no braces here")
	assert.ErrorIs(t, err, ErrNotUnderstood)
}

func TestGenerateFieldsAssignsFreshIDs(t *testing.T) {
	fc := &fakeCompleter{text: "here you go: [{\"type\":\"text\",\"label\":\"Name\"}] thanks"}
	a := New(fc)

	existing := []model.Field{{ID: "taken", Type: model.FieldText, Label: "Company"}}
	ids := []string{"taken", "fresh"}
	a.newID = func() string {
		id := ids[0]
		ids = ids[1:]
		return id
	}

	fields, err := a.GenerateFields(context.Background(), GenerateRequest{Title: "Signup", ExistingFields: existing})
	require.NoError(t, err)
	require.Len(t, fields, 1)
	assert.Equal(t, "Name", fields[0].Label)
	assert.Equal(t, "fresh", fields[0].ID)

	assert.Equal(t, generateMaxTokens, fc.maxTokens)
	assert.Contains(t, fc.prompt, `"Signup"`)
	assert.Contains(t, fc.prompt, "Existing fields: Company")
}

func TestGenerateFieldsNormalises(t *testing.T) {
	fc := &fakeCompleter{text: `[
		{"type":"date","label":"<b>When</b>"},
		{"type":"select","label":"Size","options":[{"label":"S & M","value":"s"}]},
		{"type":"text","label":"Name","options":[{"label":"x","value":"x"}]},
		{"type":"number","label":"Qty","validation":{"min":1}}
	]`}
	fields, err := New(fc).GenerateFields(context.Background(), GenerateRequest{Title: "Order"})
	require.NoError(t, err)
	require.Len(t, fields, 4)

	assert.Equal(t, model.FieldText, fields[0].Type)
	assert.Equal(t, "When", fields[0].Label)
	assert.Equal(t, []model.Option{{Label: "S & M", Value: "s"}}, fields[1].Options)
	assert.Nil(t, fields[2].Options)
	require.NotNil(t, fields[3].Validation)
	assert.Equal(t, 1.0, *fields[3].Validation.Min)

	seen := map[string]bool{}
	for _, f := range fields {
		assert.NotEmpty(t, f.ID)
		assert.False(t, seen[f.ID], "duplicate id %s", f.ID)
		seen[f.ID] = true
	}
}

func TestGenerateFieldsFailures(t *testing.T) {
	ctx := context.Background()

	_, err := New(nil).GenerateFields(ctx, GenerateRequest{Title: "x"})
	assert.ErrorIs(t, err, ErrNotConfigured)

	boom := errors.New("connection refused")
	_, err = New(&fakeCompleter{err: boom}).GenerateFields(ctx, GenerateRequest{Title: "x"})
	assert.ErrorIs(t, err, boom)

	_, err = New(&fakeCompleter{text: ""}).GenerateFields(ctx, GenerateRequest{Title: "x"})
	assert.ErrorIs(t, err, ErrNotUnderstood)

	for _, text := range []string{"I would rather not", "null", " null\n", "[]", "Sure: []"} {
		fields, err := New(&fakeCompleter{text: text}).GenerateFields(ctx, GenerateRequest{Title: "x"})
		assert.ErrorIs(t, err, ErrNotUnderstood, text)
		assert.Nil(t, fields, text)
	}
}

func TestEnhanceField(t *testing.T) {
	fc := &fakeCompleter{text: `{"label":"Email address","placeholder":"you@example.com","description":"<script>x</script>We never share it"}`}
	e, err := New(fc).EnhanceField(context.Background(), model.Field{Type: model.FieldEmail, Label: "mail"})
	require.NoError(t, err)

	assert.Equal(t, "Email address", e.Label)
	assert.Equal(t, "you@example.com", e.Placeholder)
	assert.Equal(t, "We never share it", e.Description)
	assert.Equal(t, enhanceMaxTokens, fc.maxTokens)
	assert.Contains(t, fc.prompt, "- Placeholder: none")

	_, err = New(nil).EnhanceField(context.Background(), model.Field{})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestEnhanceFieldNeedsALabel(t *testing.T) {
	for _, text := range []string{"null", "{}", `{"placeholder":"x"}`} {
		e, err := New(&fakeCompleter{text: text}).EnhanceField(context.Background(), model.Field{Label: "mail"})
		assert.ErrorIs(t, err, ErrNotUnderstood, text)
		assert.Equal(t, Enhancement{}, e, text)
	}
}

func TestOpenAICompleter(t *testing.T) {
	var gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			http.NotFound(w, r)
			return
		}
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"created": 1700000000,
			"model": "gpt-3.5-turbo",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "[]"}, "finish_reason": "stop"}]
		}`)
	}))
	defer srv.Close()

	c := NewOpenAI("test-key", "", srv.URL+"/v1")
	text, err := c.Complete(context.Background(), "hello", 42)
	require.NoError(t, err)
	assert.Equal(t, "[]", text)
	assert.True(t, strings.Contains(gotBody, `"max_tokens":42`), gotBody)
	assert.True(t, strings.Contains(gotBody, DefaultModel), gotBody)
}

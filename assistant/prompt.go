package assistant

import (
	"fmt"
	"strings"

	"github.com/mbolis/quick-forms/model"
)

func generatePrompt(req GenerateRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate form fields for a form titled %q", req.Title)
	if req.Description != "" {
		fmt.Fprintf(&b, " with description: %q", req.Description)
	}
	b.WriteString(".\n\n")

	if len(req.ExistingFields) > 0 {
		labels := make([]string, len(req.ExistingFields))
		for i, f := range req.ExistingFields {
			labels[i] = f.Label
		}
		fmt.Fprintf(&b, "Existing fields: %s\n\n", strings.Join(labels, ", "))
	}

	b.WriteString(`Generate 3-5 relevant form fields that would make sense for this form. For each field, provide:
- A descriptive label
- Appropriate field type (text, email, number, select, checkbox, textarea, radio)
- Helpful placeholder text
- Whether it should be required
- A brief description/help text
- For select/radio/checkbox fields, provide 3-4 realistic options

Return a JSON array of fields with this structure:
{
  "type": "text|email|number|select|checkbox|textarea|radio",
  "label": "Field Label",
  "placeholder": "Placeholder text",
  "required": true|false,
  "description": "Help text",
  "options": [{"label": "Option 1", "value": "option1"}] // only for select/radio/checkbox
}

Make the fields practical and relevant to the form purpose.
`)
	return b.String()
}

func enhancePrompt(f model.Field) string {
	return fmt.Sprintf(`Enhance this form field with better content:

Current field:
- Type: %s
- Label: %s
- Placeholder: %s
- Description: %s

Please provide improved versions for:
- A clear, user-friendly label
- Helpful placeholder text (if applicable for this field type)
- A brief, helpful description to guide users

Return a JSON object with these properties:
{
  "label": "Improved label",
  "placeholder": "Improved placeholder (or empty string if not applicable)",
  "description": "Brief helpful description"
}

Make the content natural, clear, and user-friendly.
`, f.Type, f.Label, orNone(f.Placeholder), orNone(f.Description))
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}

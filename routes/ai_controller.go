package routes

import (
	"net/http"

	"github.com/go-chi/render"

	"github.com/mbolis/quick-forms/app"
	"github.com/mbolis/quick-forms/assistant"
	"github.com/mbolis/quick-forms/httpx"
	"github.com/mbolis/quick-forms/model"
)

type generateFieldsResponse struct {
	Fields []model.Field `json:"fields"`
}

type enhanceFieldRequest struct {
	Field model.Field     `json:"field"`
	Type  model.FieldType `json:"type"`
}

// Every assistant failure is reported with the same generic message; the
// cause is only logged.
func GenerateFields(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req assistant.GenerateRequest
		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			httpx.LogInternalError(w, r, "request.parse_body", err, "Failed to generate AI fields")
			return
		}

		fields, err := app.Assistant.GenerateFields(r.Context(), req)
		if err != nil {
			httpx.LogInternalError(w, r, "assistant.generate_fields", err, "Failed to generate AI fields")
			return
		}

		render.JSON(w, r, generateFieldsResponse{Fields: fields})
	}
}

func EnhanceField(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req enhanceFieldRequest
		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			httpx.LogInternalError(w, r, "request.parse_body", err, "Failed to enhance field")
			return
		}
		field := req.Field
		if field.Type == "" {
			field.Type = req.Type
		}

		enhanced, err := app.Assistant.EnhanceField(r.Context(), field)
		if err != nil {
			httpx.LogInternalError(w, r, "assistant.enhance_field", err, "Failed to enhance field")
			return
		}

		render.JSON(w, r, enhanced)
	}
}

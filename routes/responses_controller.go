package routes

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/render"

	"github.com/mbolis/quick-forms/app"
	"github.com/mbolis/quick-forms/database"
	"github.com/mbolis/quick-forms/httpx"
	"github.com/mbolis/quick-forms/idgen"
	"github.com/mbolis/quick-forms/log"
	"github.com/mbolis/quick-forms/model"
	"github.com/mbolis/quick-forms/validator"
)

type submitRequest struct {
	FormID string                     `json:"formId"`
	Data   map[string]json.RawMessage `json:"data"`
}

type submitResponse struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

func SubmitResponse(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req submitRequest
		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			httpx.LogStatusMsg(w, r, http.StatusBadRequest, log.DebugLevel, "request.parse_body", "Invalid request body")
			return
		}
		if req.FormID == "" || req.Data == nil {
			httpx.LogStatusMsg(w, r, http.StatusBadRequest, log.DebugLevel, "submit_response.validate", "Form ID and data are required")
			return
		}

		form, err := app.Store.GetPublishedForm(r.Context(), req.FormID)
		if errors.Is(err, database.ErrNotFound) {
			httpx.LogNotFound(w, r, "submit_response", req.FormID, "Form not found or not published")
			return
		}
		if err != nil {
			httpx.LogInternalError(w, r, "db.get_form", err, "Failed to save response")
			return
		}

		data, err := model.DecodeSubmission(form.Fields, req.Data)
		if err != nil {
			httpx.LogStatusMsg(w, r, http.StatusBadRequest, log.DebugLevel, "submit_response.decode", "Invalid response data")
			return
		}
		if errs := validator.Validate(form.Fields, data); !errs.OK() {
			httpx.LogInvalidFields(w, r, "submit_response.validate_fields", errs)
			return
		}

		resp := model.Response{
			ID:     idgen.NewResponseID(),
			FormID: form.ID,
			Data:   data,
		}
		err = app.Store.CreateResponse(r.Context(), &resp)
		if errors.Is(err, database.ErrNotFound) {
			httpx.LogNotFound(w, r, "submit_response", req.FormID, "Form not found or not published")
			return
		}
		if err != nil {
			httpx.LogInternalError(w, r, "db.create_response", err, "Failed to save response")
			return
		}

		render.JSON(w, r, submitResponse{ID: resp.ID, Message: "Response saved successfully"})
	}
}

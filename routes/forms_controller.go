package routes

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/mbolis/quick-forms/app"
	"github.com/mbolis/quick-forms/database"
	"github.com/mbolis/quick-forms/httpx"
	"github.com/mbolis/quick-forms/idgen"
	"github.com/mbolis/quick-forms/log"
	"github.com/mbolis/quick-forms/model"
)

type createFormRequest struct {
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Fields      []model.Field `json:"fields"`
}

type updateFormRequest struct {
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Fields      []model.Field `json:"fields"`
	IsPublished bool          `json:"isPublished"`
}

func ListForms(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		forms, err := app.Store.ListForms(r.Context())
		if err != nil {
			httpx.LogInternalError(w, r, "db.list_forms", err, "Failed to fetch forms")
			return
		}
		if forms == nil {
			forms = []model.Form{}
		}
		render.JSON(w, r, forms)
	}
}

func CreateForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createFormRequest
		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			httpx.LogStatusMsg(w, r, http.StatusBadRequest, log.DebugLevel, "request.parse_body", "Invalid request body")
			return
		}
		if req.Title == "" || req.Fields == nil {
			httpx.LogStatusMsg(w, r, http.StatusBadRequest, log.DebugLevel, "create_form.validate", "Title and fields are required")
			return
		}

		slug, err := idgen.Slug(req.Title)
		if err != nil {
			httpx.LogInternalError(w, r, "create_form.slug", err, "Failed to create form")
			return
		}

		form := model.Form{
			ID:          idgen.NewID(),
			Title:       req.Title,
			Description: req.Description,
			Slug:        slug,
			Fields:      assignFieldIDs(req.Fields),
		}
		err = app.Store.CreateForm(r.Context(), &form)
		if err != nil {
			httpx.LogInternalError(w, r, "db.create_form", err, "Failed to create form")
			return
		}

		log.Infof("form %s created (%s)", form.ID, form.Slug)
		render.JSON(w, r, form)
	}
}

func GetFormById(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		form, err := app.Store.GetForm(r.Context(), id)
		if errors.Is(err, database.ErrNotFound) {
			httpx.LogNotFound(w, r, "get_form", id, "Form not found")
			return
		}
		if err != nil {
			httpx.LogInternalError(w, r, "db.get_form", err, "Failed to fetch form")
			return
		}

		responses, err := app.Store.ListResponses(r.Context(), id)
		if err != nil {
			httpx.LogInternalError(w, r, "db.list_responses", err, "Failed to fetch form")
			return
		}
		if responses == nil {
			responses = []model.Response{}
		}

		render.JSON(w, r, model.FormWithResponses{Form: form, Responses: responses})
	}
}

func UpdateForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		var req updateFormRequest
		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			httpx.LogStatusMsg(w, r, http.StatusBadRequest, log.DebugLevel, "request.parse_body", "Invalid request body")
			return
		}

		form, err := app.Store.ReplaceForm(r.Context(), model.Form{
			ID:          id,
			Title:       req.Title,
			Description: req.Description,
			Fields:      assignFieldIDs(req.Fields),
			IsPublished: req.IsPublished,
		})
		if errors.Is(err, database.ErrNotFound) {
			httpx.LogNotFound(w, r, "update_form", id, "Form not found")
			return
		}
		if err != nil {
			httpx.LogInternalError(w, r, "db.update_form", err, "Failed to update form")
			return
		}

		render.JSON(w, r, form)
	}
}

func DeleteForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		err := app.Store.DeleteForm(r.Context(), id)
		if errors.Is(err, database.ErrNotFound) {
			httpx.LogNotFound(w, r, "delete_form", id, "Form not found")
			return
		}
		if err != nil {
			httpx.LogInternalError(w, r, "db.delete_form", err, "Failed to delete form")
			return
		}

		log.Infof("form %s deleted", id)
		render.JSON(w, r, map[string]bool{"success": true})
	}
}

// assignFieldIDs gives every field without an id a fresh one. Ids already set
// by the builder are kept, so responses stay keyed to the same fields.
func assignFieldIDs(fields []model.Field) []model.Field {
	out := make([]model.Field, len(fields))
	for i, f := range fields {
		if f.ID == "" {
			f.ID = idgen.NewID()
		}
		out[i] = f
	}
	return out
}

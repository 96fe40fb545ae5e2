package routes

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/mbolis/quick-forms/app"
	"github.com/mbolis/quick-forms/database"
	"github.com/mbolis/quick-forms/httpx"
)

// PublicGetFormBySlug serves a published form to respondents. Unpublished
// forms look exactly like missing ones.
func PublicGetFormBySlug(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug := chi.URLParam(r, "slug")

		form, err := app.Store.GetPublishedFormBySlug(r.Context(), slug)
		if errors.Is(err, database.ErrNotFound) {
			httpx.LogNotFound(w, r, "public_get_form", slug, "Form not found")
			return
		}
		if err != nil {
			httpx.LogInternalError(w, r, "db.get_form_by_slug", err, "Failed to fetch form")
			return
		}

		render.JSON(w, r, form)
	}
}

package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"github.com/mbolis/quick-forms/app"
	"github.com/mbolis/quick-forms/log"
	"github.com/mbolis/quick-forms/routes/middlewares"
)

// Wire builds the HTTP handler serving the JSON API under /api.
func Wire(app app.App) http.Handler {
	root := chi.NewRouter()
	root.Use(
		middleware.RequestID,
		middleware.RequestLogger(&middleware.DefaultLogFormatter{Logger: log.Logger, NoColor: true}),
		middleware.Recoverer,
	)

	root.Mount("/api", apiRouter(app))

	return root
}

func apiRouter(app app.App) http.Handler {
	api := chi.NewRouter()
	api.Use(render.SetContentType(render.ContentTypeJSON))

	api.Get("/health", Health())

	// public
	api.Get("/f/{slug}", PublicGetFormBySlug(app))
	api.Post("/responses", SubmitResponse(app))

	api.Group(func(r chi.Router) {
		if app.Config.AuthEnabled() {
			r.Use(middlewares.Admin(app.Config.TokenSecret))
		}

		// CRUD form
		r.Get("/forms", ListForms(app))
		r.Post("/forms", CreateForm(app))
		r.Get("/forms/{id}", GetFormById(app))
		r.Put("/forms/{id}", UpdateForm(app))
		r.Delete("/forms/{id}", DeleteForm(app))

		r.Post("/ai/generate-fields", GenerateFields(app))
		r.Post("/ai/enhance-field", EnhanceField(app))
	})

	if app.Config.AuthEnabled() {
		api.Post("/login", Login(app))
		api.Post("/refresh", Refresh(app))
	}

	api.NotFound(func(w http.ResponseWriter, r *http.Request) {
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, map[string]string{"error": "Not found"})
	})

	return api
}

func Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, map[string]string{"status": "ok"})
	}
}

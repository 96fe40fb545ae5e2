package app

import (
	"github.com/go-chi/oauth"

	"github.com/mbolis/quick-forms/assistant"
	"github.com/mbolis/quick-forms/config"
	"github.com/mbolis/quick-forms/database"
)

// App carries the dependencies handlers need. It is built once at startup
// and passed by value into every handler constructor.
type App struct {
	*database.Store
	*assistant.Assistant
	// BearerServer is nil unless admin auth is enabled.
	*oauth.BearerServer
	config.Config
}

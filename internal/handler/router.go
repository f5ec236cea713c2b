package handler

import (
	"log/slog"

	"github.com/CageChen/nbhub/internal/config"
	"github.com/CageChen/nbhub/internal/notebook"
	"github.com/CageChen/nbhub/internal/render"
	"github.com/gin-gonic/gin"
)

// RouterOptions carries the dependencies of NewRouter. WS may be nil, in
// which case the websocket route is not registered.
type RouterOptions struct {
	Config   *config.Config
	Store    *notebook.Store
	Renderer *render.Renderer
	WS       *WSHandler
	Logger   *slog.Logger
}

// NewRouter builds the gin engine with all API routes.
func NewRouter(opts RouterOptions) *gin.Engine {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	notebookHandler := NewNotebookHandler(opts.Store, opts.Renderer, opts.Logger)
	healthHandler := NewHealthHandler(opts.Store)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(opts.Logger))
	r.Use(CORS(opts.Config))

	r.GET("/", healthHandler.Info)

	api := r.Group("/api")
	{
		api.GET("/health", healthHandler.Health)

		api.GET("/notebooks", notebookHandler.List)
		api.GET("/notebooks/:filename", notebookHandler.Get)
		api.GET("/notebooks/:filename/raw", notebookHandler.GetRaw)
		api.GET("/notebooks/:filename/html", notebookHandler.GetHTML)
		api.GET("/highlight.css", notebookHandler.GetCSS)

		if opts.WS != nil {
			api.GET("/ws", opts.WS.HandleWS)
		}
	}

	return r
}

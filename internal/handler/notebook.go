// Package handler provides HTTP handlers for the NBHub REST API.
package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/CageChen/nbhub/internal/notebook"
	"github.com/CageChen/nbhub/internal/render"
	"github.com/gin-gonic/gin"
)

// Generic messages for the raw endpoint, which does not report error details.
const (
	rawNotFoundMessage = "notebook not found"
	rawFailedMessage   = "failed to load notebook"
)

// RenderResponse is the payload of the rendered-HTML endpoint.
type RenderResponse struct {
	Filename string `json:"filename"`
	*render.Result
}

// NotebookHandler handles notebook listing and content API requests
type NotebookHandler struct {
	store    *notebook.Store
	renderer *render.Renderer
	logger   *slog.Logger
}

// NewNotebookHandler creates a new notebook handler
func NewNotebookHandler(store *notebook.Store, renderer *render.Renderer, logger *slog.Logger) *NotebookHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &NotebookHandler{
		store:    store,
		renderer: renderer,
		logger:   logger,
	}
}

// statusFor maps a store error to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, notebook.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, notebook.ErrInvalidFormat), errors.Is(err, notebook.ErrInvalidName):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (h *NotebookHandler) fail(c *gin.Context, name string, err error) {
	status := statusFor(err)
	h.logger.Warn("notebook request failed",
		"filename", name, "status", status, "error", err, "request_id", c.GetString(requestIDKey))
	c.JSON(status, gin.H{"error": err.Error()})
}

func (h *NotebookHandler) logMatch(c *gin.Context, requested string, m notebook.Match) {
	if m.Fuzzy {
		h.logger.Debug("notebook matched by substring",
			"requested", requested, "filename", m.Name, "request_id", c.GetString(requestIDKey))
	}
}

// List returns a summary of every notebook in the root
func (h *NotebookHandler) List(c *gin.Context) {
	summaries, err := h.store.List()
	if err != nil {
		h.logger.Error("list notebooks", "root", h.store.Root(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, summaries)
}

// Get returns a notebook parsed, with structural defaults and _file_info
func (h *NotebookHandler) Get(c *gin.Context) {
	name := c.Param("filename")

	content, m, err := h.store.Parsed(name)
	if err != nil {
		h.fail(c, name, err)
		return
	}
	h.logMatch(c, name, m)
	h.logger.Debug("notebook loaded", "filename", m.Name, "cells", content.CellCount())

	c.JSON(http.StatusOK, content)
}

// GetRaw returns the notebook file bytes unchanged. Failures other than a
// missing notebook are reported with a single generic message.
func (h *NotebookHandler) GetRaw(c *gin.Context) {
	name := c.Param("filename")

	data, m, err := h.store.Raw(name)
	if err != nil {
		h.logger.Warn("raw notebook request failed",
			"filename", name, "error", err, "request_id", c.GetString(requestIDKey))
		if errors.Is(err, notebook.ErrNotFound) || errors.Is(err, notebook.ErrInvalidName) {
			c.JSON(http.StatusNotFound, gin.H{"error": rawNotFoundMessage})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": rawFailedMessage})
		return
	}
	h.logMatch(c, name, m)

	c.Data(http.StatusOK, "application/json; charset=utf-8", data)
}

// GetHTML returns the notebook rendered to HTML with a table of contents
func (h *NotebookHandler) GetHTML(c *gin.Context) {
	name := c.Param("filename")

	nb, m, err := h.store.Notebook(name)
	if err != nil {
		h.fail(c, name, err)
		return
	}
	h.logMatch(c, name, m)

	result, err := h.renderer.Render(nb)
	if err != nil {
		h.fail(c, name, err)
		return
	}

	c.JSON(http.StatusOK, RenderResponse{
		Filename: m.Name,
		Result:   result,
	})
}

// GetCSS returns the stylesheet for highlighted code in rendered notebooks
func (h *NotebookHandler) GetCSS(c *gin.Context) {
	css, err := h.renderer.CSS()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "text/css; charset=utf-8", []byte(css))
}

package handlers

import (
	"net/http"
	"os"
	"path/filepath"

	"chelmassage/utils"

	"github.com/gin-gonic/gin"
)

// PageHandler serves the static booking frontend.
type PageHandler struct {
	TemplateDir string
}

func NewPageHandler(templateDir string) *PageHandler {
	return &PageHandler{TemplateDir: templateDir}
}

// Page serves one HTML file from the template directory.
func (h *PageHandler) Page(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := filepath.Join(h.TemplateDir, filepath.Base(name))
		if _, err := os.Stat(path); err != nil {
			utils.JSONError(c, http.StatusNotFound, "Page not found.", err.Error())
			return
		}
		c.File(path)
	}
}

package handler

import (
	_ "embed"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
)

// Minimal HTML that loads Swagger UI from a CDN and points to /openapi.yaml.
//
//go:embed swagger.html
var swaggerHTML string

// DefaultOpenAPIPath is where the OpenAPI document lives relative to the repository root.
const DefaultOpenAPIPath = "api/openapi.yaml"

// RegisterDocs mounts documentation endpoints at the root:
//   - GET /openapi.yaml: raw OpenAPI document read from docPath
//   - GET /docs: Swagger UI rendering of it
func RegisterDocs(r *gin.Engine, docPath string) {
	if docPath == "" {
		docPath = DefaultOpenAPIPath
	}
	r.GET("/openapi.yaml", func(c *gin.Context) {
		data, err := os.ReadFile(docPath)
		if err != nil {
			c.String(http.StatusInternalServerError, "failed to read openapi document: %v", err)
			return
		}
		c.Data(http.StatusOK, "application/yaml; charset=utf-8", data)
	})
	r.GET("/docs", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(swaggerHTML))
	})
}

package sources

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// SourceAPIServer serves the configured sources and their fetch health.
type SourceAPIServer struct {
	store *SourceStore
}

// NewSourceAPIServer creates a new source API server.
func NewSourceAPIServer(store *SourceStore) *SourceAPIServer {
	return &SourceAPIServer{
		store: store,
	}
}

// RegisterRoutes mounts the source routes on an existing router group.
func (s *SourceAPIServer) RegisterRoutes(group *gin.RouterGroup) {
	group.GET("/sources", s.HandleListSources)
	group.GET("/sources/:name", s.HandleGetSource)
}

// ListSourcesResponse represents the response for GET /api/sources.
type ListSourcesResponse struct {
	Sources []SourceStatus `json:"sources"`
	Total   int            `json:"total"`
}

// errorResponse creates a standardized error response.
func errorResponse(code, message string) gin.H {
	return gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	}
}

// handleError maps domain errors to HTTP responses.
func (s *SourceAPIServer) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrSourceNotFound):
		c.JSON(http.StatusNotFound, errorResponse("not_found", err.Error()))
	default:
		c.JSON(http.StatusInternalServerError, errorResponse("internal_error", "Failed to process request"))
	}
}

// HandleListSources handles GET /api/sources.
func (s *SourceAPIServer) HandleListSources(c *gin.Context) {
	statuses, err := s.store.ListStatuses()
	if err != nil {
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, ListSourcesResponse{
		Sources: statuses,
		Total:   len(statuses),
	})
}

// HandleGetSource handles GET /api/sources/{name}.
func (s *SourceAPIServer) HandleGetSource(c *gin.Context) {
	status, err := s.store.GetStatus(c.Param("name"))
	if err != nil {
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, status)
}

package newsfeed

import (
	"embed"
	"html/template"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html
var templateFS embed.FS

// neverRefreshed is shown on the index page before the first refresh cycle
// has completed.
const neverRefreshed = "never"

// APIServer serves the news feed as an HTML page and a JSON API.
type APIServer struct {
	feed      *NewsFeed
	staticDir string
}

// NewAPIServer creates a new API server reading from the given news feed.
// Static assets are served from staticDir when it is non-empty.
func NewAPIServer(feed *NewsFeed, staticDir string) *APIServer {
	return &APIServer{
		feed:      feed,
		staticDir: staticDir,
	}
}

// SetupRouter configures the Gin router with the page, API and static routes.
func (s *APIServer) SetupRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.Use(CORSMiddleware())

	router.SetHTMLTemplate(template.Must(template.ParseFS(templateFS, "templates/*.html")))

	router.GET("/", s.HandleIndex)

	api := router.Group("/api")
	api.GET("/news", s.HandleListNews)
	api.GET("/status", s.HandleStatus)

	if s.staticDir != "" {
		router.Static("/static", s.staticDir)
	}

	return router
}

// CORSMiddleware allows read access to the API from any origin.
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}

		c.Next()
	}
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error code and message.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// StatusResponse represents the response for GET /api/status.
type StatusResponse struct {
	RefreshedAt  *time.Time `json:"refreshed_at"`
	CycleID      *string    `json:"cycle_id"`
	ArticleCount int        `json:"article_count"`
}

// indexPage is the data rendered by templates/index.html.
type indexPage struct {
	Articles     []Article
	SearchTerm   string
	HasSearch    bool
	ArticleCount int
	LastUpdated  string
}

// HandleIndex handles GET /.
func (s *APIServer) HandleIndex(c *gin.Context) {
	term := c.Query("q")
	snap := s.feed.Snapshot()
	articles := Filter(snap.Articles, term)

	c.HTML(http.StatusOK, "index.html", indexPage{
		Articles:     articles,
		SearchTerm:   term,
		HasSearch:    term != "",
		ArticleCount: len(articles),
		LastUpdated:  formatRefreshedAt(snap.RefreshedAt),
	})
}

// HandleListNews handles GET /api/news. The optional q parameter filters the
// articles and the optional limit parameter caps how many are returned.
func (s *APIServer) HandleListNews(c *gin.Context) {
	limit := 0
	if limitParam := c.Query("limit"); limitParam != "" {
		parsed, err := strconv.Atoi(limitParam)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error: ErrorDetail{
					Code:    "invalid_parameter",
					Message: "Invalid limit parameter",
				},
			})
			return
		}
		limit = parsed
	}

	articles := Filter(s.feed.Snapshot().Articles, c.Query("q"))
	if limit > 0 && len(articles) > limit {
		articles = articles[:limit]
	}

	c.JSON(http.StatusOK, articles)
}

// HandleStatus handles GET /api/status. It reports when the cache was last
// refreshed so clients can tell stale data apart from fresh data.
func (s *APIServer) HandleStatus(c *gin.Context) {
	snap := s.feed.Snapshot()

	resp := StatusResponse{
		ArticleCount: len(snap.Articles),
	}
	if !snap.RefreshedAt.IsZero() {
		refreshedAt := snap.RefreshedAt
		cycleID := snap.CycleID.String()
		resp.RefreshedAt = &refreshedAt
		resp.CycleID = &cycleID
	}

	c.JSON(http.StatusOK, resp)
}

func formatRefreshedAt(t time.Time) string {
	if t.IsZero() {
		return neverRefreshed
	}
	return t.UTC().Format(time.RFC1123Z)
}

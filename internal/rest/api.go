package rest

import (
	"net/http"

	"github.com/dfryer1193/sitepress/api"
	"github.com/dfryer1193/sitepress/auth"
	"github.com/dfryer1193/sitepress/blog/application"
	"github.com/dfryer1193/sitepress/internal/config"
	"github.com/dfryer1193/sitepress/internal/middleware"
	"github.com/gin-gonic/gin"
)

type Api struct {
	posts *application.PostService
	gate  *auth.Gate
	cfg   *config.Config
}

// NewApi registers every route. Reads are public; mutations sit behind the session check.
func NewApi(router *gin.Engine, posts *application.PostService, gate *auth.Gate, cfg *config.Config) {
	a := &Api{
		posts: posts,
		gate:  gate,
		cfg:   cfg,
	}
	requireSession := middleware.RequireSession(gate)

	router.GET("/healthz", a.Health)

	postsGroup := router.Group("/posts")
	{
		postsGroup.GET("", a.GetPosts)
		postsGroup.GET("/:slug", a.GetPost)
		postsGroup.GET("/:slug/html", a.GetPostHTML)

		postsGroup.POST("", requireSession, a.CreatePost)
		postsGroup.PUT("/:slug", requireSession, a.UpdatePost)
		postsGroup.DELETE("/:slug", requireSession, a.DeletePost)
	}

	authGroup := router.Group("/auth")
	{
		authGroup.GET("/probe", a.Probe)
		authGroup.POST("/local", a.LocalLogin)
		authGroup.GET("/github/login", a.GithubLogin)
		authGroup.GET("/github/callback", a.GithubCallback)
		authGroup.GET("/session", requireSession, a.Session)
		authGroup.POST("/logout", a.Logout)
	}
}

func (a *Api) Health(c *gin.Context) {
	c.JSON(http.StatusOK, api.HealthResponse{Status: "ok", Backend: a.posts.Backend()})
}

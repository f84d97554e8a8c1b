package rest

import (
	"net/http"

	"github.com/dfryer1193/sitepress/api"
	"github.com/dfryer1193/sitepress/blog/domain"
	"github.com/gin-gonic/gin"
)

func (a *Api) GetPosts(c *gin.Context) {
	posts, err := a.posts.ListPosts(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to fetch posts")
		return
	}
	c.JSON(http.StatusOK, posts)
}

func (a *Api) GetPost(c *gin.Context) {
	post, err := a.posts.GetPost(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondError(c, err, "Failed to fetch post")
		return
	}
	c.JSON(http.StatusOK, post)
}

func (a *Api) GetPostHTML(c *gin.Context) {
	post, err := a.posts.RenderPost(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondError(c, err, "Failed to render post")
		return
	}
	c.JSON(http.StatusOK, post)
}

func (a *Api) CreatePost(c *gin.Context) {
	in, ok := bindPostInput(c)
	if !ok {
		return
	}

	slug, err := a.posts.CreatePost(c.Request.Context(), in)
	if err != nil {
		respondError(c, err, "Failed to create post")
		return
	}
	c.JSON(http.StatusCreated, api.CreatedResponse{Slug: slug})
}

func (a *Api) UpdatePost(c *gin.Context) {
	in, ok := bindPostInput(c)
	if !ok {
		return
	}

	if err := a.posts.UpdatePost(c.Request.Context(), c.Param("slug"), in); err != nil {
		respondError(c, err, "Failed to update post")
		return
	}
	c.JSON(http.StatusOK, api.SuccessResponse{Success: true})
}

func (a *Api) DeletePost(c *gin.Context) {
	if err := a.posts.DeletePost(c.Request.Context(), c.Param("slug")); err != nil {
		respondError(c, err, "Failed to delete post")
		return
	}
	c.JSON(http.StatusOK, api.SuccessResponse{Success: true})
}

func bindPostInput(c *gin.Context) (domain.PostInput, bool) {
	var req api.PostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid request body"})
		return domain.PostInput{}, false
	}

	return domain.PostInput{
		Title:    req.Title,
		Excerpt:  req.Excerpt,
		Category: req.Category,
		Content:  req.Content,
		Date:     req.Date,
		Author:   req.Author,
	}, true
}

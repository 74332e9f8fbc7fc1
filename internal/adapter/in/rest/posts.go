package rest

import (
	"fmt"
	"net/http"
	"strconv"

	"inkwell/internal/service"
	"inkwell/pkg/pagination"

	"github.com/gin-gonic/gin"
)

func (h *Handler) listPosts(c *gin.Context) {
	req := service.ListPostsRequest{
		PageRequest: pagination.PageRequest{
			Page:  queryInt(c, "page"),
			Limit: queryInt(c, "limit"),
		},
		Search:     c.Query("search"),
		CategoryID: c.Query("category"),
	}

	page, err := h.posts.ListPosts(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}

	resp := listPostsResponse{
		Posts:      make([]postResponse, 0, len(page.Items)),
		Page:       page.Page,
		TotalCount: page.TotalCount,
		TotalPages: page.TotalPages,
	}
	for _, v := range page.Items {
		resp.Posts = append(resp.Posts, toPostResponse(v))
	}

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) getPost(c *gin.Context) {
	view, err := h.posts.GetPost(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toPostResponse(view))
}

func (h *Handler) createPost(c *gin.Context) {
	var req createPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, fmt.Errorf("%w: %v", service.ErrInvalidRequest, err))
		return
	}

	view, err := h.posts.CreatePost(c.Request.Context(), service.CreatePostRequest{
		AuthorID:   currentUserID(c),
		Title:      req.Title,
		Content:    req.Content,
		CategoryID: req.CategoryID,
		Image:      req.Image,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toPostResponse(view))
}

func (h *Handler) updatePost(c *gin.Context) {
	var req updatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, fmt.Errorf("%w: %v", service.ErrInvalidRequest, err))
		return
	}

	view, err := h.posts.UpdatePost(c.Request.Context(), currentUserID(c), c.Param("id"), service.UpdatePostRequest{
		Title:      req.Title,
		Content:    req.Content,
		Image:      req.Image,
		CategoryID: req.CategoryID,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, toPostResponse(view))
}

func (h *Handler) deletePost(c *gin.Context) {
	if err := h.posts.DeletePost(c.Request.Context(), currentUserID(c), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "post deleted"})
}

func (h *Handler) likePost(c *gin.Context) {
	likes, err := h.posts.LikePost(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, likeResponse{Likes: likes})
}

func (h *Handler) addComment(c *gin.Context) {
	var req addCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, fmt.Errorf("%w: %v", service.ErrInvalidRequest, err))
		return
	}

	view, err := h.posts.AddComment(c.Request.Context(), service.AddCommentRequest{
		PostID:   c.Param("id"),
		AuthorID: currentUserID(c),
		Content:  req.Content,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toPostResponse(view))
}

// queryInt parses an integer query parameter, returning 0 when absent or
// malformed so the service applies its defaults.
func queryInt(c *gin.Context, name string) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil || v < 0 {
		return 0
	}
	return v
}

package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"mdd-forum/internal/domain"
)

type createPostRequest struct {
	Title   string `json:"title" binding:"required"`
	Content string `json:"content" binding:"required"`
	TopicID int64  `json:"topicId" binding:"required,gt=0"`
}

type createCommentRequest struct {
	Content string `json:"content" binding:"required"`
	PostID  int64  `json:"postId" binding:"required,gt=0"`
}

func (h *Handler) listPosts(c *gin.Context) {
	order := domain.ParseSortOrder(c.DefaultQuery("sort", string(domain.SortDesc)))
	posts, err := h.posts.Feed(c.Request.Context(), currentUserID(c), order)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, postsToResponse(posts))
}

func (h *Handler) listPostsByTopic(c *gin.Context) {
	topicID, ok := parseID(c, "topicId")
	if !ok {
		return
	}
	posts, err := h.posts.ListByTopic(c.Request.Context(), topicID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, postsToResponse(posts))
}

func (h *Handler) getPost(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	post, err := h.posts.GetPost(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, postToResponse(*post))
}

func (h *Handler) createPost(c *gin.Context) {
	var req createPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	post, err := h.posts.CreatePost(c.Request.Context(), currentUserID(c), req.TopicID, req.Title, req.Content)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, postToResponse(*post))
}

func (h *Handler) listComments(c *gin.Context) {
	postID, err := strconv.ParseInt(c.Query("postId"), 10, 64)
	if err != nil || postID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid postId"})
		return
	}
	comments, err := h.posts.ListComments(c.Request.Context(), postID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	resp := make([]CommentResponse, len(comments))
	for i := range comments {
		resp[i] = commentToResponse(comments[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) createComment(c *gin.Context) {
	var req createCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	comment, err := h.posts.CreateComment(c.Request.Context(), currentUserID(c), req.PostID, req.Content)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, commentToResponse(*comment))
}

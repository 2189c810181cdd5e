package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) listTopics(c *gin.Context) {
	topics, err := h.topics.ListTopics(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, topicsToResponse(topics))
}

func (h *Handler) getTopic(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	topic, err := h.topics.GetTopic(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, topicToResponse(*topic))
}

func (h *Handler) subscribe(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	subs, err := h.topics.Subscribe(c.Request.Context(), currentUserID(c), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, topicsToResponse(subs))
}

func (h *Handler) unsubscribe(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	subs, err := h.topics.Unsubscribe(c.Request.Context(), currentUserID(c), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, topicsToResponse(subs))
}

func (h *Handler) listSubscriptions(c *gin.Context) {
	subs, err := h.topics.Subscriptions(c.Request.Context(), currentUserID(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, topicsToResponse(subs))
}

package webapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"quill-server-go/internal/platform/storage"
	httptransport "quill-server-go/internal/transport/http"
)

type commentRequest struct {
	AuthorName  string `json:"authorName"  binding:"required"`
	AuthorEmail string `json:"authorEmail" binding:"omitempty,email"`
	Body        string `json:"body"        binding:"required"`
}

func (s *Service) handleListComments(c *gin.Context) {
	post, ok := s.findPublishedPost(c)
	if !ok {
		return
	}
	comments, err := s.comments.ListByPost(c.Request.Context(), post.ID)
	if err != nil {
		s.logger.Error("[HTTP] list comments failed: %v", err)
		httptransport.RespondError(c, http.StatusInternalServerError, "failed to list comments", nil)
		return
	}
	httptransport.RespondSuccess(c, http.StatusOK, comments, "")
}

func (s *Service) handleCreateComment(c *gin.Context) {
	post, ok := s.findPublishedPost(c)
	if !ok {
		return
	}

	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httptransport.RespondError(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}

	comment := &storage.Comment{
		PostID:      post.ID,
		AuthorName:  req.AuthorName,
		AuthorEmail: req.AuthorEmail,
		Body:        req.Body,
	}
	if err := s.comments.Create(c.Request.Context(), comment); err != nil {
		s.logger.Error("[HTTP] create comment failed: %v", err)
		httptransport.RespondError(c, http.StatusInternalServerError, "failed to create comment", nil)
		return
	}
	httptransport.RespondSuccess(c, http.StatusCreated, comment, "comment created")
}

func (s *Service) handleDeleteComment(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		httptransport.RespondError(c, http.StatusBadRequest, "invalid comment id", nil)
		return
	}
	if err := s.comments.Delete(c.Request.Context(), uint(id)); err != nil {
		s.logger.Error("[HTTP] delete comment failed: %v", err)
		httptransport.RespondError(c, http.StatusInternalServerError, "failed to delete comment", nil)
		return
	}
	httptransport.RespondSuccess(c, http.StatusOK, nil, "comment deleted")
}

// findPublishedPost resolves the :slug route param to a live post.
// Drafts look the same as missing posts to readers.
func (s *Service) findPublishedPost(c *gin.Context) (*storage.Post, bool) {
	post, err := s.posts.FindBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		s.logger.Error("[HTTP] post lookup failed: %v", err)
		httptransport.RespondError(c, http.StatusInternalServerError, "failed to load post", nil)
		return nil, false
	}
	if post == nil || !post.Published {
		httptransport.RespondError(c, http.StatusNotFound, "post not found", nil)
		return nil, false
	}
	return post, true
}

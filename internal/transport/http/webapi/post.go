package webapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"

	"quill-server-go/internal/domain/events"
	"quill-server-go/internal/platform/storage"
	httptransport "quill-server-go/internal/transport/http"
	"quill-server-go/internal/transport/http/middleware"
)

type postRequest struct {
	Title string   `json:"title" binding:"required"`
	Slug  string   `json:"slug"`
	Body  string   `json:"body"`
	Tags  []string `json:"tags"`
}

func (s *Service) handleListPosts(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	posts, err := s.posts.ListPublished(c.Request.Context(), limit, offset)
	if err != nil {
		s.logger.Error("[HTTP] list posts failed: %v", err)
		httptransport.RespondError(c, http.StatusInternalServerError, "failed to list posts", nil)
		return
	}
	httptransport.RespondSuccess(c, http.StatusOK, posts, "")
}

func (s *Service) handleGetPost(c *gin.Context) {
	post, err := s.posts.FindBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		s.logger.Error("[HTTP] get post failed: %v", err)
		httptransport.RespondError(c, http.StatusInternalServerError, "failed to load post", nil)
		return
	}
	if post == nil || !post.Published {
		httptransport.RespondError(c, http.StatusNotFound, "post not found", nil)
		return
	}
	httptransport.RespondSuccess(c, http.StatusOK, post, "")
}

func (s *Service) handleListAllPosts(c *gin.Context) {
	posts, err := s.posts.ListAll(c.Request.Context())
	if err != nil {
		s.logger.Error("[HTTP] list all posts failed: %v", err)
		httptransport.RespondError(c, http.StatusInternalServerError, "failed to list posts", nil)
		return
	}
	httptransport.RespondSuccess(c, http.StatusOK, posts, "")
}

func (s *Service) handleCreatePost(c *gin.Context) {
	var req postRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httptransport.RespondError(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}

	slug := req.Slug
	if slug == "" {
		slug = slugify(req.Title)
	}
	if slug == "" {
		httptransport.RespondError(c, http.StatusBadRequest, "post needs a slug", nil)
		return
	}
	existing, err := s.posts.FindBySlug(c.Request.Context(), slug)
	if err != nil {
		s.logger.Error("[HTTP] slug lookup failed: %v", err)
		httptransport.RespondError(c, http.StatusInternalServerError, "failed to create post", nil)
		return
	}
	if existing != nil {
		httptransport.RespondError(c, http.StatusConflict, "slug already in use", nil)
		return
	}

	principal, _ := middleware.CurrentPrincipal(c)
	post := &storage.Post{
		AuthorID: principal.ID,
		Title:    req.Title,
		Slug:     slug,
		Body:     req.Body,
		Tags:     encodeTags(req.Tags),
	}
	if err := s.posts.Create(c.Request.Context(), post); err != nil {
		s.logger.Error("[HTTP] create post failed: %v", err)
		httptransport.RespondError(c, http.StatusInternalServerError, "failed to create post", nil)
		return
	}
	httptransport.RespondSuccess(c, http.StatusCreated, post, "post created")
}

func (s *Service) handleUpdatePost(c *gin.Context) {
	post, ok := s.findPostByParam(c)
	if !ok {
		return
	}

	var req postRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httptransport.RespondError(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}

	post.Title = req.Title
	post.Body = req.Body
	if req.Slug != "" {
		post.Slug = req.Slug
	}
	if req.Tags != nil {
		post.Tags = encodeTags(req.Tags)
	}
	if err := s.posts.Update(c.Request.Context(), post); err != nil {
		s.logger.Error("[HTTP] update post failed: %v", err)
		httptransport.RespondError(c, http.StatusInternalServerError, "failed to update post", nil)
		return
	}
	httptransport.RespondSuccess(c, http.StatusOK, post, "post updated")
}

func (s *Service) handleDeletePost(c *gin.Context) {
	post, ok := s.findPostByParam(c)
	if !ok {
		return
	}
	if err := s.posts.Delete(c.Request.Context(), post.ID); err != nil {
		s.logger.Error("[HTTP] delete post failed: %v", err)
		httptransport.RespondError(c, http.StatusInternalServerError, "failed to delete post", nil)
		return
	}
	httptransport.RespondSuccess(c, http.StatusOK, nil, "post deleted")
}

// handlePublishPost flips a draft live and announces it on the bus so
// subscriber notification runs off the request path. Publishing an
// already-published post is a no-op.
func (s *Service) handlePublishPost(c *gin.Context) {
	post, ok := s.findPostByParam(c)
	if !ok {
		return
	}
	if post.Published {
		httptransport.RespondSuccess(c, http.StatusOK, post, "already published")
		return
	}

	now := time.Now()
	post.Published = true
	post.PublishedAt = &now
	if err := s.posts.Update(c.Request.Context(), post); err != nil {
		s.logger.Error("[HTTP] publish post failed: %v", err)
		httptransport.RespondError(c, http.StatusInternalServerError, "failed to publish post", nil)
		return
	}

	s.bus.PublishAsync(events.TopicPostPublished, events.PostPublished{
		PostID: post.ID,
		Title:  post.Title,
		Slug:   post.Slug,
	})
	s.logger.Info("[HTTP] published post %d (%s)", post.ID, post.Slug)
	httptransport.RespondSuccess(c, http.StatusOK, post, "post published")
}

func (s *Service) findPostByParam(c *gin.Context) (*storage.Post, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		httptransport.RespondError(c, http.StatusBadRequest, "invalid post id", nil)
		return nil, false
	}
	post, err := s.posts.FindByID(c.Request.Context(), uint(id))
	if err != nil {
		s.logger.Error("[HTTP] post lookup failed: %v", err)
		httptransport.RespondError(c, http.StatusInternalServerError, "failed to load post", nil)
		return nil, false
	}
	if post == nil {
		httptransport.RespondError(c, http.StatusNotFound, "post not found", nil)
		return nil, false
	}
	return post, true
}

func encodeTags(tags []string) datatypes.JSON {
	if len(tags) == 0 {
		return datatypes.JSON([]byte("[]"))
	}
	raw, err := json.Marshal(tags)
	if err != nil {
		return datatypes.JSON([]byte("[]"))
	}
	return datatypes.JSON(raw)
}

// slugify lowercases the title and collapses anything that is not a
// letter or digit into single hyphens.
func slugify(title string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastHyphen = false
		} else if !lastHyphen {
			b.WriteByte('-')
			lastHyphen = true
		}
	}
	return strings.Trim(b.String(), "-")
}

package webapi

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"quill-server-go/internal/domain/events"
	"quill-server-go/internal/platform/storage"
	httptransport "quill-server-go/internal/transport/http"
)

type subscribeRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// handleSubscribe adds an email to the mailing list. Re-subscribing an
// address that is already on the list succeeds without creating a
// duplicate.
func (s *Service) handleSubscribe(c *gin.Context) {
	var req subscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httptransport.RespondError(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	existing, err := s.subscribers.FindByEmail(c.Request.Context(), email)
	if err != nil {
		s.logger.Error("[HTTP] subscriber lookup failed: %v", err)
		httptransport.RespondError(c, http.StatusInternalServerError, "failed to subscribe", nil)
		return
	}
	if existing != nil {
		httptransport.RespondSuccess(c, http.StatusOK, gin.H{"email": email}, "already subscribed")
		return
	}

	subscriber := &storage.Subscriber{Email: email, Confirmed: true}
	if err := s.subscribers.Create(c.Request.Context(), subscriber); err != nil {
		s.logger.Error("[HTTP] subscribe failed: %v", err)
		httptransport.RespondError(c, http.StatusInternalServerError, "failed to subscribe", nil)
		return
	}

	s.bus.PublishAsync(events.TopicSubscriberAdded, events.SubscriberAdded{Email: email})
	s.logger.Info("[HTTP] new subscriber %s", email)
	httptransport.RespondSuccess(c, http.StatusCreated, gin.H{"email": email}, "subscribed")
}

func (s *Service) handleUnsubscribe(c *gin.Context) {
	var req subscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httptransport.RespondError(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if err := s.subscribers.DeleteByEmail(c.Request.Context(), email); err != nil {
		s.logger.Error("[HTTP] unsubscribe failed: %v", err)
		httptransport.RespondError(c, http.StatusInternalServerError, "failed to unsubscribe", nil)
		return
	}
	httptransport.RespondSuccess(c, http.StatusOK, nil, "unsubscribed")
}

func (s *Service) handleListSubscribers(c *gin.Context) {
	subscribers, err := s.subscribers.List(c.Request.Context())
	if err != nil {
		s.logger.Error("[HTTP] list subscribers failed: %v", err)
		httptransport.RespondError(c, http.StatusInternalServerError, "failed to list subscribers", nil)
		return
	}
	httptransport.RespondSuccess(c, http.StatusOK, subscribers, "")
}

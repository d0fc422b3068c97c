package webapi

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"quill-server-go/internal/domain/auth/model"
	"quill-server-go/internal/platform/storage"
	httptransport "quill-server-go/internal/transport/http"
	"quill-server-go/internal/transport/http/middleware"
)

type registerRequest struct {
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Name     string `json:"name"`
}

type loginRequest struct {
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (s *Service) handleRegister(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httptransport.RespondError(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	existing, err := s.users.FindByEmail(c.Request.Context(), email)
	if err != nil {
		s.logger.Error("[AUTH] register lookup failed: %v", err)
		httptransport.RespondError(c, http.StatusInternalServerError, "registration failed", nil)
		return
	}
	if existing != nil {
		httptransport.RespondError(c, http.StatusConflict, "email already registered", nil)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("[AUTH] password hash failed: %v", err)
		httptransport.RespondError(c, http.StatusInternalServerError, "registration failed", nil)
		return
	}

	user := &storage.User{
		Email:    email,
		Password: string(hash),
		Name:     req.Name,
		Role:     model.RoleUser,
		Enabled:  true,
	}
	if err := s.users.Create(c.Request.Context(), user); err != nil {
		s.logger.Error("[AUTH] register create failed: %v", err)
		httptransport.RespondError(c, http.StatusInternalServerError, "registration failed", nil)
		return
	}

	s.logger.Info("[AUTH] registered account %s", email)
	httptransport.RespondSuccess(c, http.StatusCreated, gin.H{
		"id":    user.ID,
		"email": user.Email,
		"name":  user.Name,
	}, "registered")
}

// handleLogin verifies credentials and issues a fresh token. Issuing
// supersedes any session the account already held.
func (s *Service) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httptransport.RespondError(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	user, err := s.users.FindByEmail(c.Request.Context(), email)
	if err != nil {
		s.logger.Error("[AUTH] login lookup failed: %v", err)
		httptransport.RespondError(c, http.StatusInternalServerError, "login failed", nil)
		return
	}
	// Same answer for unknown account, bad password, and disabled
	// account: the caller learns nothing about which applied.
	if user == nil || !user.Enabled ||
		bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		httptransport.RespondError(c, http.StatusUnauthorized, "invalid credentials", nil)
		return
	}

	token, err := s.authority.Issue(c.Request.Context(), model.Principal{
		ID:      user.ID,
		Email:   user.Email,
		Name:    user.Name,
		Role:    user.Role,
		Enabled: user.Enabled,
	})
	if err != nil {
		s.logger.Error("[AUTH] token issue failed for %s: %v", email, err)
		httptransport.RespondError(c, http.StatusInternalServerError, "login failed", nil)
		return
	}

	s.logger.Info("[AUTH] login %s", email)
	httptransport.RespondSuccess(c, http.StatusOK, gin.H{
		"token": token,
		"user": gin.H{
			"id":    user.ID,
			"email": user.Email,
			"name":  user.Name,
			"role":  user.Role,
		},
	}, "logged in")
}

func (s *Service) handleLogout(c *gin.Context) {
	principal, _ := middleware.CurrentPrincipal(c)
	if err := s.authority.Invalidate(c.Request.Context(), principal.Email); err != nil {
		s.logger.Error("[AUTH] logout failed for %s: %v", principal.Email, err)
		httptransport.RespondError(c, http.StatusInternalServerError, "logout failed", nil)
		return
	}
	httptransport.RespondSuccess(c, http.StatusOK, nil, "logged out")
}

func (s *Service) handleMe(c *gin.Context) {
	principal, _ := middleware.CurrentPrincipal(c)
	httptransport.RespondSuccess(c, http.StatusOK, gin.H{
		"id":    principal.ID,
		"email": principal.Email,
		"name":  principal.Name,
		"role":  principal.Role,
	}, "")
}

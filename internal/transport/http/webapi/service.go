package webapi

import (
	"github.com/gin-gonic/gin"

	"quill-server-go/internal/domain/admission"
	"quill-server-go/internal/domain/auth"
	"quill-server-go/internal/domain/auth/model"
	"quill-server-go/internal/domain/events"
	"quill-server-go/internal/platform/config"
	"quill-server-go/internal/platform/logging"
	"quill-server-go/internal/platform/storage"
	"quill-server-go/internal/transport/http/middleware"
)

// Service owns the blog API handlers and their route wiring.
type Service struct {
	cfg         *config.Config
	logger      *logging.Logger
	authority   *auth.Authority
	admission   *admission.Controller
	users       storage.UserRepository
	posts       storage.PostRepository
	comments    storage.CommentRepository
	subscribers storage.SubscriberRepository
	bus         *events.Bus
}

// Options bundles the service dependencies.
type Options struct {
	Config      *config.Config
	Logger      *logging.Logger
	Authority   *auth.Authority
	Admission   *admission.Controller
	Users       storage.UserRepository
	Posts       storage.PostRepository
	Comments    storage.CommentRepository
	Subscribers storage.SubscriberRepository
	Bus         *events.Bus
}

func NewService(opts Options) *Service {
	return &Service{
		cfg:         opts.Config,
		logger:      opts.Logger,
		authority:   opts.Authority,
		admission:   opts.Admission,
		users:       opts.Users,
		posts:       opts.Posts,
		comments:    opts.Comments,
		subscribers: opts.Subscribers,
		bus:         opts.Bus,
	}
}

// Register mounts all API routes. Reader-facing routes live on
// public paths (the gate's allow-list covers them); management
// routes live under /admin and require a role.
func (s *Service) Register(api *gin.RouterGroup) {
	api.POST("/auth/register", s.handleRegister)
	api.POST("/auth/login", s.guard("auth.login"), s.handleLogin)
	api.POST("/auth/logout", middleware.RequireIdentity(), s.handleLogout)
	api.GET("/auth/me", middleware.RequireIdentity(), s.handleMe)

	api.GET("/posts", s.handleListPosts)
	api.GET("/posts/:slug", s.handleGetPost)
	api.GET("/posts/:slug/comments", s.handleListComments)
	api.POST("/posts/:slug/comments", s.guard("comments.create"), s.handleCreateComment)

	api.POST("/subscribers/subscribe", s.guard("subscribers.subscribe"), s.handleSubscribe)
	api.POST("/subscribers/unsubscribe", s.handleUnsubscribe)

	staff := api.Group("/admin")
	staff.Use(middleware.RequireRole(model.RoleAuthor, model.RoleAdmin))
	{
		staff.GET("/posts", s.handleListAllPosts)
		staff.POST("/posts", s.handleCreatePost)
		staff.PUT("/posts/:id", s.handleUpdatePost)
		staff.DELETE("/posts/:id", s.handleDeletePost)
		staff.POST("/posts/:id/publish", s.handlePublishPost)
	}

	admin := api.Group("/admin")
	admin.Use(middleware.RequireRole(model.RoleAdmin))
	{
		admin.GET("/subscribers", s.handleListSubscribers)
		admin.DELETE("/comments/:id", s.handleDeleteComment)
		admin.GET("/system", s.handleSystemStatus)
	}
}

// guard wraps a route with the configured admission rule for the
// signature. Routes without a configured rule run unthrottled.
func (s *Service) guard(signature string) gin.HandlerFunc {
	rule, ok := s.cfg.RateLimit.Rules[signature]
	if !ok {
		return func(c *gin.Context) { c.Next() }
	}
	return middleware.RateLimit(s.admission, signature, admission.Limit{
		Capacity:       rule.Capacity,
		RefillAmount:   rule.RefillAmount,
		RefillInterval: rule.RefillInterval,
	})
}

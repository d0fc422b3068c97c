package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"quill-server-go/internal/domain/admission"
	domainauth "quill-server-go/internal/domain/auth"
	"quill-server-go/internal/domain/auth/session"
	"quill-server-go/internal/domain/events"
	"quill-server-go/internal/domain/mail"
	platformconfig "quill-server-go/internal/platform/config"
	platformerrors "quill-server-go/internal/platform/errors"
	platformlogging "quill-server-go/internal/platform/logging"
	platformstorage "quill-server-go/internal/platform/storage"
	httptransport "quill-server-go/internal/transport/http"
	"quill-server-go/internal/transport/http/middleware"
	httpwebapi "quill-server-go/internal/transport/http/webapi"
)

const shutdownTimeout = 15 * time.Second

type stepFn func(context.Context, *appState) error

type initStep struct {
	ID        string
	Title     string
	DependsOn []string
	Kind      platformerrors.Kind
	Execute   stepFn
}

type appState struct {
	config       *platformconfig.Config
	configPath   string
	logger       *platformlogging.Logger
	db           *gorm.DB
	sessionStore session.Store
	authority    *domainauth.Authority
	admission    *admission.Controller
	bus          *events.Bus
	notifier     *mail.Notifier
}

// Run drives the whole service lifecycle: configuration, dependency
// initialisation, serving, and graceful shutdown on SIGINT/SIGTERM.
func Run(ctx context.Context) error {
	state := &appState{}

	steps := InitGraph()
	if err := executeInitSteps(ctx, steps, state); err != nil {
		return err
	}

	config := state.config
	logger := state.logger
	if config == nil || logger == nil {
		return platformerrors.New(
			platformerrors.KindBootstrap,
			"bootstrap state validation",
			"config/logger not initialised",
		)
	}
	defer logger.Close()

	logBootstrapGraph(steps, logger)

	defer func() {
		if state.bus != nil {
			state.bus.Stop()
		}
		if state.sessionStore != nil {
			if err := state.sessionStore.Close(context.Background()); err != nil {
				logger.Error("[BOOT] session store did not close cleanly: %v", err)
			}
		}
	}()

	rootCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	signalCtx, stop := signal.NotifyContext(rootCtx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(rootCtx)

	if _, err := startHTTPServer(state, group, groupCtx); err != nil {
		cancel()
		return err
	}

	if err := waitForShutdown(signalCtx, cancel, logger, group); err != nil {
		return err
	}

	logger.Info("[BOOT] service stopped")
	return nil
}

func logBootstrapGraph(steps []initStep, logger *platformlogging.Logger) {
	logger.Info("[BOOT] initialisation order")
	for _, step := range steps {
		logger.Info("[BOOT]   %s", step.Title)
	}
}

func executeInitSteps(ctx context.Context, steps []initStep, state *appState) error {
	if state == nil {
		return platformerrors.New(
			platformerrors.KindBootstrap,
			"execute init steps",
			"nil bootstrap state",
		)
	}

	completed := make(map[string]struct{}, len(steps))
	for _, step := range steps {
		for _, dep := range step.DependsOn {
			if _, ok := completed[dep]; !ok {
				return platformerrors.New(
					platformerrors.KindBootstrap,
					step.ID,
					fmt.Sprintf("dependency %s not satisfied", dep),
				)
			}
		}
		if step.Execute == nil {
			return platformerrors.New(
				platformerrors.KindBootstrap,
				step.ID,
				"missing execute function",
			)
		}
		if err := step.Execute(ctx, state); err != nil {
			var typed *platformerrors.Error
			if errors.As(err, &typed) {
				return err
			}

			kind := step.Kind
			if kind == "" {
				kind = platformerrors.KindBootstrap
			}
			return platformerrors.Wrap(kind, step.ID, "bootstrap step failed", err)
		}
		completed[step.ID] = struct{}{}
	}
	return nil
}

func InitGraph() []initStep {
	return []initStep{
		{
			ID:      "config:load",
			Title:   "Load configuration",
			Kind:    platformerrors.KindConfig,
			Execute: loadConfigStep,
		},
		{
			ID:        "logging:init",
			Title:     "Initialise logging",
			DependsOn: []string{"config:load"},
			Kind:      platformerrors.KindBootstrap,
			Execute:   initLoggingStep,
		},
		{
			ID:        "storage:open",
			Title:     "Open database",
			DependsOn: []string{"config:load", "logging:init"},
			Kind:      platformerrors.KindStorage,
			Execute:   openStorageStep,
		},
		{
			ID:        "session:init-store",
			Title:     "Initialise session store",
			DependsOn: []string{"config:load", "logging:init"},
			Kind:      platformerrors.KindAuth,
			Execute:   initSessionStoreStep,
		},
		{
			ID:        "auth:init-authority",
			Title:     "Initialise token authority",
			DependsOn: []string{"session:init-store"},
			Kind:      platformerrors.KindAuth,
			Execute:   initAuthorityStep,
		},
		{
			ID:        "admission:init-controller",
			Title:     "Initialise admission controller",
			DependsOn: []string{"logging:init"},
			Kind:      platformerrors.KindAdmission,
			Execute:   initAdmissionStep,
		},
		{
			ID:        "events:init-bus",
			Title:     "Start event bus",
			DependsOn: []string{"logging:init"},
			Kind:      platformerrors.KindBootstrap,
			Execute:   initEventBusStep,
		},
		{
			ID:        "mail:init-notifier",
			Title:     "Register subscriber notifier",
			DependsOn: []string{"storage:open", "events:init-bus"},
			Kind:      platformerrors.KindMail,
			Execute:   initNotifierStep,
		},
	}
}

func loadConfigStep(_ context.Context, state *appState) error {
	result, err := platformconfig.NewLoader().WithDotEnv(true).Load()
	if err != nil {
		return err
	}
	state.config = result.Config
	state.configPath = result.Path
	return nil
}

func initLoggingStep(_ context.Context, state *appState) error {
	if state.config == nil {
		return platformerrors.New(
			platformerrors.KindBootstrap,
			"logging:init",
			"config not loaded",
		)
	}

	logger, err := platformlogging.New(platformlogging.Config{
		Level:    state.config.Log.Level,
		Dir:      state.config.Log.Dir,
		Filename: state.config.Log.File,
	})
	if err != nil {
		return platformerrors.Wrap(platformerrors.KindBootstrap, "logging:init", "failed to initialise logging", err)
	}
	state.logger = logger

	source := state.configPath
	if source == "" {
		source = "defaults"
	}
	logger.Info("[BOOT] logging ready [%s] config from %s", state.config.Log.Level, source)
	return nil
}

func openStorageStep(_ context.Context, state *appState) error {
	db, err := platformstorage.Open(state.config.Database)
	if err != nil {
		return err
	}
	state.db = db
	state.logger.Info("[BOOT] database open (%s)", state.config.Database.Driver)
	return nil
}

func initSessionStoreStep(_ context.Context, state *appState) error {
	cfg := session.Config{
		Driver: state.config.Session.Driver,
		TTL:    state.config.Session.TTL,
		Prefix: state.config.Session.Prefix,
	}
	if cfg.Driver == session.DriverRedis {
		cfg.Redis = &session.RedisConfig{
			Addr:     state.config.Session.Redis.Addr,
			Username: state.config.Session.Redis.Username,
			Password: state.config.Session.Redis.Password,
			DB:       state.config.Session.Redis.DB,
		}
	}

	store, err := session.New(cfg)
	if err != nil {
		return platformerrors.Wrap(platformerrors.KindAuth, "session:init-store", "failed to create session store", err)
	}
	state.sessionStore = store
	state.logger.Info("[BOOT] session store ready (%s)", cfg.Driver)
	return nil
}

func initAuthorityStep(_ context.Context, state *appState) error {
	authority, err := domainauth.NewAuthority(domainauth.Options{
		Secret:        state.config.Auth.Secret,
		TokenLifetime: state.config.Auth.TokenLifetime,
		StoreTimeout:  state.config.Auth.StoreTimeout,
		Store:         state.sessionStore,
		Logger:        state.logger,
	})
	if err != nil {
		return platformerrors.Wrap(platformerrors.KindAuth, "auth:init-authority", "failed to create token authority", err)
	}
	state.authority = authority
	return nil
}

func initAdmissionStep(_ context.Context, state *appState) error {
	state.admission = admission.NewController(state.logger)
	return nil
}

func initEventBusStep(_ context.Context, state *appState) error {
	bus := events.NewBus(4)
	bus.Start()
	state.bus = bus
	return nil
}

func initNotifierStep(_ context.Context, state *appState) error {
	subscribers := platformstorage.NewSubscriberRepository(state.db)
	notifier := mail.NewNotifier(subscribers, mail.NewLogSender(state.logger), state.logger)
	if err := notifier.Register(state.bus); err != nil {
		return platformerrors.Wrap(platformerrors.KindMail, "mail:init-notifier", "failed to register notifier", err)
	}
	state.notifier = notifier
	return nil
}

func startHTTPServer(
	state *appState,
	g *errgroup.Group,
	groupCtx context.Context,
) (*http.Server, error) {
	config := state.config
	logger := state.logger

	users := platformstorage.NewUserRepository(state.db)
	gate, err := middleware.NewGate(
		state.authority,
		platformstorage.NewPrincipalSource(users),
		config.Auth.PublicPaths,
		logger,
	)
	if err != nil {
		return nil, platformerrors.Wrap(platformerrors.KindTransport, "http:init-gate", "failed to build request gate", err)
	}

	httpRouter, err := httptransport.Build(httptransport.Options{
		Config: config,
		Logger: logger,
		Gate:   gate.Handler(),
	})
	if err != nil {
		return nil, platformerrors.Wrap(platformerrors.KindTransport, "http:build-router", "failed to build router", err)
	}
	router := httpRouter.Engine

	router.NoRoute(func(c *gin.Context) {
		httptransport.RespondError(c, http.StatusNotFound, "not found", nil)
	})

	webapiService := httpwebapi.NewService(httpwebapi.Options{
		Config:      config,
		Logger:      logger,
		Authority:   state.authority,
		Admission:   state.admission,
		Users:       users,
		Posts:       platformstorage.NewPostRepository(state.db),
		Comments:    platformstorage.NewCommentRepository(state.db),
		Subscribers: platformstorage.NewSubscriberRepository(state.db),
		Bus:         state.bus,
	})
	webapiService.Register(httpRouter.API)

	httpServer := &http.Server{
		Addr:    state.config.Server.IP + ":" + strconv.Itoa(config.Server.Port),
		Handler: router,
	}

	g.Go(func() error {
		logger.Info("[HTTP] listening on http://%s", httpServer.Addr)

		go func() {
			<-groupCtx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				logger.Error("[HTTP] shutdown failed: %v", err)
			} else {
				logger.Info("[HTTP] server stopped")
			}
		}()

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("[HTTP] serve failed: %v", err)
			return err
		}
		return nil
	})

	return httpServer, nil
}

func waitForShutdown(
	ctx context.Context,
	cancel context.CancelFunc,
	logger *platformlogging.Logger,
	g *errgroup.Group,
) error {
	<-ctx.Done()
	logger.Info("[BOOT] shutdown requested (%v), cleaning up", context.Cause(ctx))

	cancel()

	done := make(chan error, 1)
	go func() {
		done <- g.Wait()
	}()

	select {
	case err := <-done:
		if err != nil {
			logger.Error("[BOOT] error during shutdown: %v", err)
			return err
		}
		logger.Info("[BOOT] all services stopped")
	case <-time.After(shutdownTimeout):
		logger.Error("[BOOT] shutdown timed out")
		return errors.New("shutdown timed out")
	}
	return nil
}

package internal

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/IBM/pgxpoolprometheus"
	"github.com/getsentry/sentry-go"
	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redis_rate/v9"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"google.golang.org/api/option"

	"github.com/2beens/bodyforecast/internal/auth"
	"github.com/2beens/bodyforecast/internal/config"
	"github.com/2beens/bodyforecast/internal/db"
	"github.com/2beens/bodyforecast/internal/goals"
	"github.com/2beens/bodyforecast/internal/insights"
	statsmcp "github.com/2beens/bodyforecast/internal/mcp"
	"github.com/2beens/bodyforecast/internal/measurements"
	"github.com/2beens/bodyforecast/internal/media"
	"github.com/2beens/bodyforecast/internal/middleware"
	"github.com/2beens/bodyforecast/internal/projection"
	"github.com/2beens/bodyforecast/internal/stats"
	"github.com/2beens/bodyforecast/internal/store"
	"github.com/2beens/bodyforecast/internal/telemetry/metrics"
	"github.com/2beens/bodyforecast/internal/telemetry/tracing"
	"github.com/2beens/bodyforecast/internal/training"
	"github.com/2beens/bodyforecast/internal/users"
	"github.com/2beens/bodyforecast/pkg"
)

type Server struct {
	httpServer        *http.Server
	metricsHttpServer *http.Server
	versionInfo       string
	mcpSecret         string // used by MCP clients calling /mcp

	config      *config.Config
	dbPool      *pgxpool.Pool
	docs        store.DocStore
	redisClient *redis.Client
	rateLimiter middleware.RequestRateLimiter

	authService *auth.Service
	accounts    *auth.AccountsRepo

	uploader   media.Uploader
	diskStore  *media.DiskStore // nil when media is stored in GCS
	generator  projection.Generator
	motivation *insights.MotivationManager

	// metrics
	metricsManager *metrics.Manager
	promRegistry   *prometheus.Registry
	otelShutdown   func()
}

type NewServerParams struct {
	Config                  *config.Config
	VersionInfo             string
	DBPassword              string
	RedisPassword           string
	MCPSecret               string
	GeminiAPIKey            string
	GCSCredentialsFile      string
	HoneycombTracingEnabled bool
}

func NewServer(
	ctx context.Context,
	params NewServerParams,
) (*Server, error) {
	cfg := params.Config
	dbPool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
		DBHost:         cfg.PostgresHost,
		DBPort:         cfg.PostgresPort,
		DBName:         cfg.PostgresDBName,
		DBUser:         cfg.PostgresUser,
		DBPassword:     params.DBPassword,
		TracingEnabled: params.HoneycombTracingEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("new db pool: %w", err)
	}

	if err := dbPool.Ping(ctx); err != nil {
		log.Warnf("failed to ping db: %s", err)
	}

	docs := store.NewPsqlStore(dbPool)
	if err := docs.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure documents schema: %w", err)
	}
	accounts := auth.NewAccountsRepo(dbPool)
	if err := accounts.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure accounts schema: %w", err)
	}

	pgxpoolCollector := pgxpoolprometheus.NewCollector(
		dbPool,
		map[string]string{"db_name": cfg.PostgresDBName},
	)
	promRegistry := metrics.SetupPrometheus(pgxpoolCollector)
	metricsManager := metrics.NewManager("backend", "main", promRegistry)
	metricsManager.GaugeLifeSignal.Set(0)

	rdb := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(cfg.RedisHost, cfg.RedisPort),
		Password: params.RedisPassword,
		DB:       0, // use default DB
	})

	rdbStatus := rdb.Ping(ctx)
	if err := rdbStatus.Err(); err != nil {
		log.Errorf("--> failed to ping redis: %s", err)
	} else {
		log.Debugf("redis ping: %s", rdbStatus.Val())
	}

	// use honeycomb distro to setup OpenTelemetry SDK
	otelShutdown, err := tracing.HoneycombSetup(tracing.HoneycombSetupParams{
		Enabled:     params.HoneycombTracingEnabled,
		ServiceName: "bodyforecast-backend",
		Redis:       rdb,
	})
	if err != nil {
		return nil, err
	}

	tracedHttpClient := &http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
		Timeout:   2 * time.Minute,
	}

	s := &Server{
		config:      cfg,
		dbPool:      dbPool,
		docs:        docs,
		versionInfo: params.VersionInfo,
		mcpSecret:   params.MCPSecret,

		redisClient: rdb,
		rateLimiter: redis_rate.NewLimiter(rdb),
		accounts:    accounts,
		authService: auth.NewService(auth.NewServiceParams{
			Accounts:      accounts,
			RedisClient:   rdb,
			SessionTTL:    cfg.SessionTTL(),
			ResetTokenTTL: cfg.PasswordResetTokenTTL(),
		}),

		generator: projection.NewGeminiClient(projection.GeminiClientParams{
			BaseURL:    cfg.GeminiBaseURL,
			Model:      cfg.GeminiModel,
			APIKey:     params.GeminiAPIKey,
			HttpClient: tracedHttpClient,
			CacheSize:  cfg.ProjectionCacheSizeMB * 1024 * 1024,
			CacheTTL:   cfg.ProjectionCacheTTL(),
			Metrics:    metricsManager,
		}),

		// telemetry
		metricsManager: metricsManager,
		promRegistry:   promRegistry,
		otelShutdown:   otelShutdown,
	}

	if err := s.setupMedia(ctx, params.GCSCredentialsFile); err != nil {
		return nil, err
	}

	s.motivation, err = loadMotivation(cfg.MotivationCsvPath)
	if err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Server) setupMedia(ctx context.Context, credentialsFile string) error {
	switch s.config.MediaBackend {
	case "gcs":
		var opts []option.ClientOption
		if credentialsFile != "" {
			opts = append(opts, option.WithCredentialsFile(credentialsFile))
		}
		gcsStore, err := media.NewGCSStore(ctx, s.config.MediaGCSBucket, opts...)
		if err != nil {
			return fmt.Errorf("new gcs media store: %w", err)
		}
		s.uploader = gcsStore
		log.Debugf("media stored in gcs bucket [%s]", s.config.MediaGCSBucket)
	case "disk":
		diskStore, err := media.NewDiskStore(s.config.MediaDiskRootPath, s.config.MediaPublicBaseURL)
		if err != nil {
			return fmt.Errorf("new disk media store: %w", err)
		}
		s.uploader = diskStore
		s.diskStore = diskStore
		log.Debugf("media stored on disk in [%s]", s.config.MediaDiskRootPath)
	default:
		return fmt.Errorf("unknown media backend: %s", s.config.MediaBackend)
	}
	return nil
}

func loadMotivation(csvPath string) (*insights.MotivationManager, error) {
	if csvPath == "" {
		return insights.NewDefaultMotivationManager(), nil
	}

	csvFile, err := os.Open(csvPath)
	if err != nil {
		return nil, fmt.Errorf("open motivation file: %w", err)
	}
	defer func() {
		if err := csvFile.Close(); err != nil {
			log.Warnf("close motivation csv file: %s", err)
		}
	}()

	mm, err := insights.NewMotivationManager(csv.NewReader(csvFile))
	if err != nil {
		return nil, fmt.Errorf("failed to create motivation manager: %w", err)
	}
	return mm, nil
}

func (s *Server) routerSetup() *mux.Router {
	r := mux.NewRouter()
	r.Use(otelmux.Middleware("main-router"))

	r.HandleFunc("/", s.handleRoot).Methods("GET", "POST", "OPTIONS").Name("root")
	r.HandleFunc("/version", s.handleVersion).Methods("GET", "OPTIONS").Name("version")

	workoutsRepo := training.NewRepo(s.docs)
	measurementsRepo := measurements.NewRepo(s.docs)
	goalsRepo := goals.NewRepo(s.docs)
	profilesRepo := users.NewRepo(s.docs)
	simulationsRepo := projection.NewRepo(s.docs)

	authHandler := auth.NewHandler(s.authService, profilesRepo)
	// registered before the rate limited subrouter so they are matched first
	r.HandleFunc("/auth/logout", authHandler.HandleLogout).Methods("POST", "OPTIONS").Name("logout")
	r.HandleFunc("/auth/me", authHandler.HandleCurrentUser).Methods("GET", "OPTIONS").Name("current-user")
	authRouter := r.PathPrefix("/auth").Subrouter()
	authRouter.HandleFunc("/register", authHandler.HandleRegister).Methods("POST", "OPTIONS").Name("register")
	authRouter.HandleFunc("/login", authHandler.HandleLogin).Methods("POST", "OPTIONS").Name("login")
	authRouter.HandleFunc("/password/reset", authHandler.HandleResetPassword).Methods("POST", "OPTIONS").Name("password-reset")
	authRouter.HandleFunc("/password/confirm", authHandler.HandleConfirmReset).Methods("POST", "OPTIONS").Name("password-confirm")
	authRouter.Use(middleware.RateLimit(s.rateLimiter, "auth", s.config.AuthRateLimitAllowedPerMin, s.metricsManager))

	workoutsHandler := training.NewHandler(workoutsRepo, s.metricsManager)
	r.HandleFunc("/workouts", workoutsHandler.HandleList).Methods("GET", "OPTIONS").Name("list-workouts")
	r.HandleFunc("/workouts", workoutsHandler.HandleAdd).Methods("POST", "OPTIONS").Name("new-workout")

	profileHandler := users.NewHandler(profilesRepo, s.accounts, s.uploader, s.config.MediaMaxUploadBytes)
	r.HandleFunc("/profile", profileHandler.HandleGet).Methods("GET", "OPTIONS").Name("get-profile")
	r.HandleFunc("/profile", profileHandler.HandleUpdate).Methods("PUT", "OPTIONS").Name("update-profile")
	r.HandleFunc("/profile/photo", profileHandler.HandleUploadPhoto).Methods("POST", "OPTIONS").Name("upload-profile-photo")

	measurementsHandler := measurements.NewHandler(measurementsRepo, profilesRepo, s.metricsManager)
	r.HandleFunc("/measurements", measurementsHandler.HandleList).Methods("GET", "OPTIONS").Name("list-measurements")
	r.HandleFunc("/measurements", measurementsHandler.HandleAdd).Methods("POST", "OPTIONS").Name("new-measurement")

	goalsHandler := goals.NewHandler(goalsRepo)
	r.HandleFunc("/goals", goalsHandler.HandleList).Methods("GET", "OPTIONS").Name("list-goals")
	r.HandleFunc("/goals", goalsHandler.HandleAdd).Methods("POST", "OPTIONS").Name("new-goal")
	r.HandleFunc("/goals/upcoming", goalsHandler.HandleUpcoming).Methods("GET", "OPTIONS").Name("upcoming-goals")
	r.HandleFunc("/goals/{id}", goalsHandler.HandleUpdate).Methods("PATCH", "OPTIONS").Name("update-goal")

	projectionService := projection.NewService(projection.ServiceParams{
		Uploader:       s.uploader,
		Generator:      s.generator,
		Workouts:       workoutsRepo,
		Simulations:    simulationsRepo,
		PlaceholderURL: s.config.ProjectionPlaceholderURL,
		Metrics:        s.metricsManager,
	})
	projectionHandler := projection.NewHandler(projectionService, s.config.MediaMaxUploadBytes)
	r.HandleFunc("/simulations", projectionHandler.HandleList).Methods("GET", "OPTIONS").Name("list-simulations")
	r.HandleFunc("/simulations", projectionHandler.HandleCreate).Methods("POST", "OPTIONS").Name("new-simulation")
	r.HandleFunc("/simulations/latest", projectionHandler.HandleLatest).Methods("GET", "OPTIONS").Name("latest-simulation")

	insightsHandler := insights.NewHandler(
		insights.NewDashboardService(insights.DashboardServiceParams{
			Workouts:      workoutsRepo,
			Goals:         goalsRepo,
			Simulations:   simulationsRepo,
			Motivation:    s.motivation,
			WorkoutsLimit: s.config.DashboardWorkoutsLimit,
			Metrics:       s.metricsManager,
		}),
		insights.NewProgressService(workoutsRepo, measurementsRepo, goalsRepo),
	)
	r.HandleFunc("/dashboard", insightsHandler.HandleDashboard).Methods("GET", "OPTIONS").Name("dashboard")
	r.HandleFunc("/progress", insightsHandler.HandleProgress).Methods("GET", "OPTIONS").Name("progress")

	if s.diskStore != nil {
		mediaHandler := media.NewHandler(s.diskStore)
		r.HandleFunc("/media/{path:.*}", mediaHandler.HandleGet).Methods("GET", "OPTIONS").Name("media")
	}

	mcpServer := statsmcp.NewServer(workoutsRepo, measurementsRepo, stats.GlobalRand{})
	mcpHandler := mcpsdk.NewStreamableHTTPHandler(func(*http.Request) *mcpsdk.Server {
		return mcpServer
	}, nil)
	r.Handle("/mcp", mcpHandler).Methods("GET", "POST", "DELETE", "OPTIONS").Name("mcp")

	// all the rest - unhandled paths
	r.HandleFunc("/{unknown}", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}).Methods("GET", "POST", "PUT", "PATCH", "OPTIONS").Name("unknown")

	authMiddleware := middleware.NewAuthMiddlewareHandler(s.mcpSecret, s.authService)

	r.Use(middleware.PanicRecovery(s.metricsManager))
	r.Use(middleware.LogRequest())
	r.Use(middleware.RequestMetrics(s.metricsManager))
	r.Use(middleware.Cors(s.config.AllowedOrigins))
	r.Use(authMiddleware.AuthCheck())
	r.Use(middleware.DrainAndCloseRequest())

	return r
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	pkg.WriteResponse(w, pkg.ContentType.Text, "I'm OK, thanks ;)", http.StatusOK)
}

func (s *Server) handleVersion(w http.ResponseWriter, _ *http.Request) {
	pkg.WriteResponse(w, pkg.ContentType.Text, s.versionInfo, http.StatusOK)
}

func (s *Server) Serve(host string, port int) {
	router := s.routerSetup()

	ipAndPort := net.JoinHostPort(host, strconv.Itoa(port))
	s.httpServer = &http.Server{
		Handler:      router,
		Addr:         ipAndPort,
		WriteTimeout: 3 * time.Minute, // projection calls the generative API synchronously
		ReadTimeout:  time.Minute,
		ConnState:    s.connStateMetrics,
	}

	metricsRouter := mux.NewRouter()
	metricsRouter.Handle("/metrics", promhttp.HandlerFor(
		s.promRegistry,
		promhttp.HandlerOpts{},
	))
	metricsAddr := net.JoinHostPort(s.config.PrometheusMetricsHost, s.config.PrometheusMetricsPort)
	s.metricsHttpServer = &http.Server{
		Addr:    metricsAddr,
		Handler: metricsRouter,
	}

	go func() {
		log.Infof(" > server listening on: [%s]", ipAndPort)
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("main service, listen and serve: %s", err)
		}
	}()

	go func() {
		log.Debugf(" > metrics listening on: [%s]", metricsAddr)
		err := s.metricsHttpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("metrics service, listen and serve: %s", err)
		}
	}()

	s.metricsManager.GaugeLifeSignal.Set(1)
}

func (s *Server) GracefulShutdown() {
	log.Debug("graceful shutdown initiated ...")

	s.metricsManager.GaugeLifeSignal.Set(0)

	s.otelShutdown()
	log.Trace("otel shut down ...")

	maxWaitDuration := time.Second * 15
	ctx, timeoutCancel := context.WithTimeout(context.Background(), maxWaitDuration)
	defer timeoutCancel()

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			log.Error(" >>> failed to gracefully shutdown http server")
		}
		log.Warnln("server shut down")
	}

	if s.metricsHttpServer != nil {
		if err := s.metricsHttpServer.Shutdown(ctx); err != nil {
			log.Error(" >>> failed to gracefully shutdown metrics http server")
		}
		log.Warnln("metrics server shut down")
	}

	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			log.Errorf("failed to close redis client conn: %s", err)
		}
	}

	if s.dbPool != nil {
		log.Debugln("closing db pool ...")
		s.dbPool.Close() // blocking operation
		log.Debugln("db pool closed")
	}

	if ok := sentry.Flush(5 * time.Second); ok {
		log.Debugf("sentry flush ok: %t", ok)
	}
}

func (s *Server) connStateMetrics(_ net.Conn, state http.ConnState) {
	switch state {
	case http.StateNew:
		s.metricsManager.GaugeRequests.Add(1)
	case http.StateClosed:
		s.metricsManager.GaugeRequests.Add(-1)
	default:
		// do nothing
	}
}

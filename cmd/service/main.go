package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"strings"
	"syscall"

	"github.com/2beens/bodyforecast/internal"
	"github.com/2beens/bodyforecast/internal/config"
	"github.com/2beens/bodyforecast/internal/logging"
	"github.com/2beens/bodyforecast/pkg"

	log "github.com/sirupsen/logrus"
)

func main() {
	fmt.Println("starting ...")

	env := flag.String("env", "development", "environment [prod | production | dev | development]")
	configPath := flag.String("config", "./config.toml", "path for the TOML config file")
	flag.Parse()

	log.Warnf("---->> running in [%s] environment", *env)

	cfg, err := config.Load(*env, *configPath)
	if err != nil {
		panic(err)
	}

	sentryDSN := os.Getenv("SENTRY_DSN")
	logging.Setup(logging.LoggerSetupParams{
		LogFileName:      cfg.LogsPath,
		LogToStdout:      cfg.LogToStdout,
		LogLevel:         cfg.LogLevel,
		LogFormatJSON:    cfg.LogFormatJSON,
		Environment:      cfg.Environment,
		SentryEnabled:    cfg.SentryEnabled,
		SentryDSN:        sentryDSN,
		SentryServerName: "bodyforecast-service",
	})

	log.Debugf("using port: %d", cfg.Port)
	log.Debugf("using server logs path: [%s]", cfg.LogsPath)

	versionInfo, err := tryGetLastCommitHash()
	if err != nil {
		log.Tracef("failed to get last commit hash / version info: %s", err)
	} else {
		log.Tracef("running version: %s", versionInfo)
	}

	dbPassword := os.Getenv("BODYFORECAST_DB_PASS")
	if dbPassword == "" {
		log.Warnln("db password not set, use BODYFORECAST_DB_PASS to set it")
	}

	redisPassword := os.Getenv("REDIS_PASS")
	if redisPassword == "" {
		log.Errorf("redis password not set. use REDIS_PASS")
	}

	mcpSecret := os.Getenv("BODYFORECAST_MCP_SECRET")
	if mcpSecret == "" {
		log.Warnln("mcp secret not set, /mcp is disabled. use BODYFORECAST_MCP_SECRET")
	}

	geminiAPIKey := os.Getenv("GEMINI_API_KEY")
	if geminiAPIKey == "" {
		log.Errorf("gemini API key not set, body projections will fail. use GEMINI_API_KEY")
	}

	gcsCredentialsFile := os.Getenv("GCS_CREDENTIALS_FILE")
	if cfg.MediaBackend == "gcs" && gcsCredentialsFile == "" {
		log.Warnln("GCS_CREDENTIALS_FILE not set, falling back to application default credentials")
	}

	if otelServiceName := os.Getenv("OTEL_SERVICE_NAME"); otelServiceName == "" {
		log.Warnln("OTEL_SERVICE_NAME env var not set")
	}

	honeycombEnabled := os.Getenv("HONEYCOMB_ENABLED") == "true"
	if honeycombEnabled {
		if honeycombApiKey := os.Getenv("HONEYCOMB_API_KEY"); honeycombApiKey == "" {
			log.Warnln("HONEYCOMB_API_KEY env var not set")
		}
	} else {
		log.Debugln("honeycomb tracing disabled")
	}

	chOsInterrupt := make(chan os.Signal, 1)
	signal.Notify(chOsInterrupt, os.Interrupt, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())

	if cfg.MediaBackend == "disk" {
		dirExists, err := pkg.PathExists(cfg.MediaDiskRootPath, true)
		if err != nil {
			log.Fatalf("check media root dir: %s", err)
		}
		if !dirExists {
			log.Infof("media root dir [%s] will be created", cfg.MediaDiskRootPath)
		}
	}

	server, err := internal.NewServer(
		ctx,
		internal.NewServerParams{
			Config:                  cfg,
			VersionInfo:             versionInfo,
			DBPassword:              dbPassword,
			RedisPassword:           redisPassword,
			MCPSecret:               mcpSecret,
			GeminiAPIKey:            geminiAPIKey,
			GCSCredentialsFile:      gcsCredentialsFile,
			HoneycombTracingEnabled: honeycombEnabled,
		},
	)
	if err != nil {
		log.Fatalf("new server: %s", err)
	}

	server.Serve(cfg.Host, cfg.Port)

	receivedSig := <-chOsInterrupt
	log.Warnf("signal [%s] received, killing everything ...", receivedSig)
	cancel()

	server.GracefulShutdown()
}

// tryGetLastCommitHash will try to get the last commit hash
// assumes that the built main executable is in project root
func tryGetLastCommitHash() (string, error) {
	cmd := exec.Command("/usr/bin/git", "rev-parse", "HEAD")
	stdout, err := cmd.Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(pkg.BytesToString(stdout)), nil
}

// Package main runs the training stats MCP server over stdio, for local assistants.
// The same server is mounted on the main backend at /mcp over HTTP.
package main

import (
	"context"
	"flag"
	"os"

	"github.com/2beens/bodyforecast/internal/config"
	"github.com/2beens/bodyforecast/internal/db"
	statsmcp "github.com/2beens/bodyforecast/internal/mcp"
	"github.com/2beens/bodyforecast/internal/measurements"
	"github.com/2beens/bodyforecast/internal/stats"
	"github.com/2beens/bodyforecast/internal/store"
	"github.com/2beens/bodyforecast/internal/training"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	log "github.com/sirupsen/logrus"
)

func main() {
	env := flag.String("env", "development", "environment [prod | production | dev | development]")
	configPath := flag.String("config", "./config.toml", "path to TOML config file")
	flag.Parse()

	// stdout carries the MCP protocol
	log.SetOutput(os.Stderr)

	cfg, err := config.Load(*env, *configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx := context.Background()
	dbPool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
		DBHost:     cfg.PostgresHost,
		DBPort:     cfg.PostgresPort,
		DBName:     cfg.PostgresDBName,
		DBUser:     cfg.PostgresUser,
		DBPassword: os.Getenv("BODYFORECAST_DB_PASS"),
	})
	if err != nil {
		log.Fatalf("db pool: %v", err)
	}
	defer dbPool.Close()

	docs := store.NewPsqlStore(dbPool)
	server := statsmcp.NewServer(
		training.NewRepo(docs),
		measurements.NewRepo(docs),
		stats.GlobalRand{},
	)

	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil {
		log.Fatal(err)
	}
}

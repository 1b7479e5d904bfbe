package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/omarshanyour/nutrimind-backend/internal/config"
	"github.com/omarshanyour/nutrimind-backend/internal/logging"

	log "github.com/sirupsen/logrus"
)

func main() {
	fmt.Println("starting nutrimind api ...")

	env := flag.String("env", "development", "environment [development | production]")
	configPath := flag.String("config", "./config.toml", "path for the TOML config file")
	flag.Parse()

	// Load .env if present; real environment variables take precedence
	if err := godotenv.Load(); err != nil {
		fmt.Println("no .env file, using environment only")
	}

	cfg, err := config.Load(*configPath, *env)
	if err != nil {
		panic(err)
	}

	logging.Setup(logging.LoggerSetupParams{
		LogFileName:   cfg.LogsPath,
		LogToStdout:   cfg.LogToStdout,
		LogLevel:      cfg.LogLevel,
		LogFormatJSON: cfg.LogFormatJSON,
	})
	log.Warnf("---->> running in [%s] environment", *env)

	if *env == "production" || *env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, err := newServer(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to create server: %s", err)
	}
	srv.serve()

	<-ctx.Done()
	log.Warnln("os interrupt received")
	if err := srv.gracefulShutdown(); err != nil {
		log.Errorf("shutdown: %s", err)
	}
}

package main

import (
	"bmp-steganography/config"
	"bmp-steganography/handlers"
	"bmp-steganography/logging"
	"bmp-steganography/stego"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var configPath string
	flagSet := pflag.NewFlagSet("lsbsteg-server", pflag.ContinueOnError)
	flagSet.StringVar(&configPath, "config", "", "path to YAML config file (default: $"+config.EnvConfigPath+")")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	defer logger.Sync()
	stego.SetLogger(logger)

	if !cfg.Log.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := handlers.NewRouter(cfg, logger)

	logger.Info("server starting", zap.String("port", cfg.Server.Port))
	logger.Info("API endpoints",
		zap.Strings("routes", []string{
			"POST /api/v1/stego/insert   - hide a secret file in a BMP or WAV carrier (returns stego file)",
			"POST /api/v1/stego/extract  - recover a secret file from a stego carrier",
			"POST /api/v1/stego/capacity - report how much a carrier can hold",
			"GET  /api/v1/health         - health check",
		}))

	if err := router.Run(":" + cfg.Server.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

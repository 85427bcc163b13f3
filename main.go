package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gopkg.in/yaml.v2"

	"flightdelay/db"
	qhttp "flightdelay/http"
	"flightdelay/logging"
	"flightdelay/ml"
	"flightdelay/monitoring"
)

type Config struct {
	Model struct {
		Path  string `yaml:"path"`
		Watch bool   `yaml:"watch"`
	} `yaml:"model"`
	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`
	Http struct {
		Port int `yaml:"port"`
	} `yaml:"http"`
	Log struct {
		Level string `yaml:"level"`
		Path  string `yaml:"path"`
	} `yaml:"log"`
}

func main() {
	// .env is optional; explicit environment wins over the config file.
	_ = godotenv.Load()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	config, err := loadConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	applyEnvOverrides(config)

	logger := logging.New(config.Log.Level, config.Log.Path)
	defer logger.Sync()

	audit := config.Database.Path != ""
	if audit {
		if err := db.InitDB(config.Database.Path); err != nil {
			logger.Fatal("failed to initialize database", zap.Error(err))
		}
		defer db.CloseDB()
		logger.Info("database initialized", zap.String("path", config.Database.Path))
	}

	model, err := ml.LoadDelayModel(config.Model.Path)
	if err != nil {
		logger.Fatal("failed to load model artifact", zap.String("path", config.Model.Path), zap.Error(err))
	}
	handle := ml.NewModelHandle(model)
	logger.Info("model loaded",
		zap.String("path", config.Model.Path),
		zap.String("algorithm", model.Algorithm()),
		zap.Int("vocabulary_size", len(model.Vocabulary())))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if config.Model.Watch {
		if err := ml.WatchArtifact(ctx, config.Model.Path, handle, logger); err != nil {
			logger.Fatal("failed to watch model artifact", zap.Error(err))
		}
	}

	stats := monitoring.NewStats()
	hub := monitoring.NewHub(logger)
	go hub.Run(ctx)
	go hub.StreamStats(ctx, stats, 5*time.Second)

	svc, err := qhttp.NewPredictService(handle, stats, logger, audit)
	if err != nil {
		logger.Fatal("failed to build predict service", zap.Error(err))
	}

	serverConfig := qhttp.DefaultServerConfig()
	if config.Http.Port != 0 {
		serverConfig.Port = config.Http.Port
	}
	server := qhttp.NewServer(serverConfig, svc, hub, logger)
	go func() {
		if err := server.Start(); err != nil {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	cancel()
	if err := server.Stop(); err != nil {
		logger.Warn("server forced to shutdown", zap.Error(err))
	}
	logger.Info("exiting")
}

func loadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var config Config
	if err := yaml.NewDecoder(file).Decode(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

func applyEnvOverrides(config *Config) {
	if v := os.Getenv("MODEL_PATH"); v != "" {
		config.Model.Path = v
	}
	if v := os.Getenv("DATABASE_PATH"); v != "" {
		config.Database.Path = v
	}
	if v := os.Getenv("HTTP_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			config.Http.Port = port
		}
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		config.Log.Level = v
	}
}

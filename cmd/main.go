package main

import (
	"context"
	"os"

	"github.com/desertthunder/ytsort/internal/services"
	"github.com/desertthunder/ytsort/internal/shared"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
)

func main() {
	godotenv.Load()

	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		} else {
			logger.Warn("failed to load config.toml, using defaults", "error", err)
		}
	}

	var youtubeService *services.YouTubeService
	creds := config.Credentials.YouTube
	if creds.ClientID != "" && creds.ClientSecret != "" {
		if svc, err := services.NewYouTubeService(creds); err == nil {
			youtubeService = svc
		} else {
			logger.Warn("youtube credentials rejected", "error", err)
		}
	}

	aiService := services.NewOpenAIService(os.Getenv("OPENAI_API_KEY"), config.Credentials.OpenAI.Model)

	runner := NewRunner(RunnerOpts{
		Config:  config,
		YouTube: youtubeService,
		AI:      aiService,
		Logger:  logger,
	})

	app := &cli.Command{
		Name:     "ytsort",
		Usage:    "Sort a YouTube music library into AI-curated playlists",
		Version:  "0.1.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logger.Fatalf("application error: %v", err)
	}
}

// Command fitswap-web starts the garment-swap API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/pchoi/fitswap/internal/config"
	"github.com/pchoi/fitswap/internal/gemini"
	"github.com/pchoi/fitswap/internal/imaging"
	"github.com/pchoi/fitswap/internal/library"
	"github.com/pchoi/fitswap/internal/logging"
	"github.com/pchoi/fitswap/internal/studio"
	"github.com/pchoi/fitswap/internal/swap"
	"github.com/pchoi/fitswap/internal/vision"
	"github.com/pchoi/fitswap/internal/web"
)

// CLI flags
var (
	portFlag          int
	imageModelFlag    string
	analysisModelFlag string
)

var rootCmd = &cobra.Command{
	Use:   "fitswap-web",
	Short: "API server for AI garment swapping",
	Long: `FitSwap Web starts the backend for the garment-swap studio: upload a
person photo and one or more product photos, and the server analyzes both,
builds a constrained editing directive, and returns the composited result.
Also serves scene generation, pose regeneration, and the element library.

Examples:
  fitswap-web
  fitswap-web --port 9090
  fitswap-web --image-model gemini-3-pro-image-preview`,
	Run: runMain,
}

func init() {
	rootCmd.Flags().IntVar(&portFlag, "port", 0, "Port to listen on (overrides PORT)")
	rootCmd.Flags().StringVar(&imageModelFlag, "image-model", "", "Model for image generation")
	rootCmd.Flags().StringVar(&analysisModelFlag, "analysis-model", "", "Model for image analysis")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runMain(cmd *cobra.Command, args []string) {
	logging.Init()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if portFlag != 0 {
		cfg.Port = portFlag
	}
	if imageModelFlag != "" {
		cfg.ImageModel = imageModelFlag
	}
	if analysisModelFlag != "" {
		cfg.AnalysisModel = analysisModelFlag
	}

	ctx := context.Background()
	invoker, err := gemini.NewClient(ctx, cfg.APIKey)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Gemini client")
	}

	codec := imaging.NewCodec(nil)
	analyzer := vision.NewAnalyzer(invoker, cfg.AnalysisModel)
	orchestrator := swap.NewOrchestrator(analyzer, invoker, cfg.ImageModel, cfg.FallbackImageModel)
	studioSvc := studio.NewService(analyzer, invoker, cfg.ImageModel)
	server := web.NewServer(codec, orchestrator, studioSvc, library.New())

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      server.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.RequestTimeout,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info().Msg("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.Info().
		Int("port", cfg.Port).
		Str("analysis_model", cfg.AnalysisModel).
		Str("image_model", cfg.ImageModel).
		Msg("Starting API server")
	fmt.Printf("\n  FitSwap API: http://localhost:%d\n\n", cfg.Port)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("Server failed")
	}
}

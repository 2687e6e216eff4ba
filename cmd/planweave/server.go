package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/planweave/planweave/internal/api"
	"github.com/planweave/planweave/internal/cache"
	"github.com/planweave/planweave/internal/config"
	"github.com/planweave/planweave/internal/export"
	"github.com/planweave/planweave/internal/location"
	"github.com/planweave/planweave/internal/pipeline"
	"github.com/planweave/planweave/internal/planner"
	"github.com/planweave/planweave/internal/search"
	"github.com/planweave/planweave/internal/storage"
	"github.com/planweave/planweave/internal/weather"
)

// resultsPerTopic is how many search results enrichment fetches per
// research topic.
const resultsPerTopic = 3

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the planweave server (foreground)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running planweave server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return stopServer()
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show planweave system status",
	RunE: func(cmd *cobra.Command, args []string) error {
		return showStatus()
	},
}

func pidFilePath(dataDir string) string {
	return filepath.Join(dataDir, "planweave.pid")
}

func writePIDFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0o644)
}

func readPIDFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(string(data)))
}

func removePIDFile(path string) {
	os.Remove(path)
}

func runServer() error {
	fmt.Fprintf(os.Stderr, "planweave version %s\n", version)

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Initialize structured logging.
	logLevel := slog.LevelInfo
	if strings.EqualFold(cfg.Log.Level, "debug") {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	// Write PID file. Check if server is already running via health endpoint.
	pidPath := pidFilePath(cfg.Storage.DataDir)
	healthURL := fmt.Sprintf("http://127.0.0.1:%d/health", cfg.Server.Port)
	healthClient := &http.Client{Timeout: 2 * time.Second}
	if resp, err := healthClient.Get(healthURL); err == nil {
		resp.Body.Close()
		if pid, pidErr := readPIDFile(pidPath); pidErr == nil {
			printWarning("planweave is already running (PID %d)", pid)
			return fmt.Errorf("server already running (PID %d)", pid)
		}
		printWarning("planweave is already running on port %d", cfg.Server.Port)
		return fmt.Errorf("server already running on port %d", cfg.Server.Port)
	}
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("writing PID file: %w", err)
	}
	defer removePIDFile(pidPath)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Open storage.
	store, err := storage.Open(cfg.Storage.DataDir)
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: closing storage: %v\n", err)
		}
	}()

	// Build the enrichment pipeline. Provider clients share one cache and
	// fall back to mock data when their credentials are missing.
	providerCache := cache.New(cfg.Cache.Enabled, time.Duration(cfg.Cache.TTLSeconds)*time.Second)
	searcher := search.NewClient(cfg.Providers.SearchAPIKey, cfg.Providers.SearchEngineID, providerCache)
	forecaster := weather.NewClient(cfg.Providers.WeatherAPIKey, providerCache)
	locator := location.NewExtractor(location.NewRecognizer())
	enricher := pipeline.NewEnricher(searcher, forecaster, locator, resultsPerTopic)

	gen, err := buildPlanner(cfg)
	if err != nil {
		return err
	}

	if cfg.Server.APIToken == "" {
		slog.Warn("no API token configured, bearer auth disabled")
	}

	// Build HTTP handler and server.
	handler := api.NewHandler(api.Deps{
		Store:    store,
		Planner:  gen,
		Enricher: enricher,
		Exporter: export.New(),
		Token:    cfg.Server.APIToken,
	})

	addr := fmt.Sprintf("127.0.0.1:%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	// Build and start MCP server (stdio transport in a goroutine).
	mcpSrv := api.NewMCPServer(api.MCPDeps{
		Store:      store,
		Planner:    gen,
		Enricher:   enricher,
		Forecaster: forecaster,
	})
	stdioSrv := server.NewStdioServer(mcpSrv)
	go func() {
		if err := stdioSrv.Listen(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("MCP stdio server error", "error", err)
		}
	}()
	slog.Info("MCP server started (stdio transport)")

	// Start server in a goroutine.
	errCh := make(chan error, 1)
	go func() {
		fmt.Fprintf(os.Stderr, "planweave listening on %s\n", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for signal or server error.
	select {
	case <-ctx.Done():
		fmt.Fprintln(os.Stderr, "shutting down...")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	// Graceful shutdown with timeout.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// buildPlanner picks the step generator: LLM-backed when an OpenAI key is
// configured, deterministic templates otherwise.
func buildPlanner(cfg config.Config) (planner.Generator, error) {
	if cfg.Planner.OpenAIAPIKey == "" {
		slog.Info("planner initialized", "mode", "template")
		return planner.NewTemplateGenerator(), nil
	}

	model, err := openai.New(
		openai.WithToken(cfg.Planner.OpenAIAPIKey),
		openai.WithModel(cfg.Planner.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("initializing LLM planner: %w", err)
	}
	slog.Info("planner initialized", "mode", "llm", "model", cfg.Planner.Model)
	return planner.NewLLMGenerator(model), nil
}

func stopServer() error {
	cfg, err := config.Load()
	if err != nil {
		printError("could not load config: %v", err)
		return err
	}

	pidPath := pidFilePath(cfg.Storage.DataDir)
	pid, err := readPIDFile(pidPath)
	if err != nil {
		printError("planweave is not running (no PID file)")
		return fmt.Errorf("not running: %w", err)
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		printError("could not find process %d", pid)
		return err
	}

	if err := process.Signal(syscall.SIGTERM); err != nil {
		printError("could not stop planweave (PID %d): %v", pid, err)
		removePIDFile(pidPath)
		return err
	}

	printSuccess("Sent stop signal to planweave (PID %d)", pid)
	return nil
}

func showStatus() error {
	cfg, err := config.Load()
	if err != nil {
		// Still show partial status even if config fails.
		printError("config error: %v", err)
		return nil
	}

	// Check server health.
	serverURL := fmt.Sprintf("http://127.0.0.1:%d", cfg.Server.Port)
	client := &http.Client{Timeout: 2 * time.Second}

	resp, err := client.Get(serverURL + "/health")
	if err != nil {
		printStatus("Server", "stopped")
	} else {
		resp.Body.Close()
		if resp.StatusCode == 200 {
			printStatus("Server", "running on port %d", cfg.Server.Port)
		} else {
			printStatus("Server", "error (HTTP %d)", resp.StatusCode)
		}
	}

	// Show planner and provider modes.
	if cfg.Planner.OpenAIAPIKey != "" {
		printStatus("Planner", "llm (%s)", cfg.Planner.Model)
	} else {
		printStatus("Planner", "template")
	}
	printStatus("Web search", "%s", providerMode(cfg.Providers.SearchAPIKey != "" && cfg.Providers.SearchEngineID != ""))
	printStatus("Weather", "%s", providerMode(cfg.Providers.WeatherAPIKey != ""))
	if cfg.Cache.Enabled {
		printStatus("Cache", "on (ttl %ds)", cfg.Cache.TTLSeconds)
	} else {
		printStatus("Cache", "off")
	}

	// Show plan count if server is running.
	if resp != nil && resp.StatusCode == 200 {
		statsResp, err := apiGet(client, serverURL+"/stats", cfg.Server.APIToken)
		if err == nil {
			var stats struct {
				TotalPlans int `json:"total_plans"`
			}
			if json.NewDecoder(statsResp.Body).Decode(&stats) == nil {
				printStatus("Plans", "%d", stats.TotalPlans)
			}
			statsResp.Body.Close()
		}
	}

	printStatus("Data dir", "%s", cfg.Storage.DataDir)
	return nil
}

func providerMode(credentialed bool) string {
	if credentialed {
		return "live"
	}
	return "mock data"
}

func apiGet(client *http.Client, url, token string) (*http.Response, error) {
	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return nil, err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return client.Do(req)
}

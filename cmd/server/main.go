package main

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/batch-image-converter/backend/internal/api"
	"github.com/batch-image-converter/backend/internal/batch"
	"github.com/batch-image-converter/backend/internal/config"
	"github.com/batch-image-converter/backend/internal/convert"
	"github.com/batch-image-converter/backend/internal/orchestrate"
)

// Version info (set during build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// Get the executable's directory for config resolution
	exePath, err := os.Executable()
	if err != nil {
		fmt.Printf("Failed to get executable path: %v\n", err)
		os.Exit(1)
	}
	exeDir := filepath.Dir(exePath)

	// Load XML configuration
	configPath := filepath.Join(exeDir, "BatchImageConverter.config")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Load conversion presets
	presets, err := convert.LoadPresets(cfg.Conversion.PresetsFile)
	if err != nil {
		fmt.Printf("Warning: failed to load presets, using defaults: %v\n", err)
		presets = convert.DefaultPresets()
	} else {
		fmt.Printf("Loaded %d conversion presets\n", len(presets))
	}

	// Initialize batch registry
	batchMgr := batch.NewManager()

	// Start background batch cleanup
	go func() {
		ticker := time.NewTicker(time.Duration(cfg.Batches.CleanupIntervalMinutes) * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			if n := batchMgr.CleanupOldBatches(time.Duration(cfg.Batches.BatchTimeoutMinutes) * time.Minute); n > 0 {
				fmt.Printf("[Cleanup] Removed %d stale batches\n", n)
			}
		}
	}()

	// Initialize WebSocket progress handler; it doubles as the
	// orchestrator's notifier
	wsHandler := api.NewWebSocketHandler(cfg.Advanced.WebSocketMaxMessageSize)

	// Initialize conversion orchestrator
	orch := orchestrate.New(convert.NewImagingService(), wsHandler, convert.Options{
		SizeLimitMB:    cfg.Conversion.SizeLimitMB,
		MaxDimensionPx: cfg.Conversion.MaxDimensionPx,
	})

	// Initialize API handlers
	handlers := api.NewHandlers(&api.Dependencies{
		Batches:      batchMgr,
		Orchestrator: orch,
		Presets:      presets,
		AllowedMIME:  cfg.AllowedMIMEList(),
		MaxFiles:     cfg.Security.MaxFilesPerBatch,
		Version:      Version,
	}, wsHandler)

	e := echo.New()
	e.HTTPErrorHandler = api.ErrorHandler

	// Configure middleware
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Skipper: func(c echo.Context) bool {
			if !cfg.Advanced.EnableRequestLogging {
				return true
			}
			path := c.Request().URL.Path
			return strings.HasSuffix(path, "/entries") ||
				path == "/api/health"
		},
	}))

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize:         1024 * 4,
		DisablePrintStack: false,
		LogLevel:          0,
	}))

	e.Use(middleware.TimeoutWithConfig(middleware.TimeoutConfig{
		Timeout: time.Duration(cfg.Server.ReadTimeout) * time.Second,
		Skipper: func(c echo.Context) bool {
			// Conversion and delivery can legitimately outlive the request
			// timeout; so can websocket streams
			path := c.Request().URL.Path
			return strings.HasSuffix(path, "/convert") ||
				strings.HasSuffix(path, "/download") ||
				strings.Contains(path, "/ws/")
		},
		ErrorMessage: "Request timeout",
	}))

	// Compression middleware; downloads are already compressed image/zip
	// payloads, so they are skipped
	if cfg.Batches.EnableCompression {
		e.Use(middleware.GzipWithConfig(middleware.GzipConfig{
			Level: cfg.Batches.CompressionLevel,
			Skipper: func(c echo.Context) bool {
				path := c.Request().URL.Path
				return strings.HasSuffix(path, "/download") ||
					strings.Contains(path, "/ws/")
			},
		}))
	}

	// Body limit middleware
	e.Use(middleware.BodyLimit(cfg.Server.BodyLimit))

	// CORS configuration
	if cfg.Server.EnableCORS {
		origins := strings.Split(cfg.Server.AllowOrigins, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		if len(origins) == 0 || (len(origins) == 1 && origins[0] == "") {
			origins = []string{"*"}
		}
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: origins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		}))
	}

	// API routes
	api.RegisterRoutes(e, handlers)

	// Configure server with settings from XML config
	s := &http.Server{
		Addr:         cfg.GetServerAddr(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Print startup banner
	fmt.Printf("\n")
	fmt.Printf("╔═══════════════════════════════════════════════════════════╗\n")
	fmt.Printf("║           Batch Image Converter Server                    ║\n")
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Version:    %-45s║\n", Version)
	fmt.Printf("║  Build Time: %-45s║\n", BuildTime)
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Config:    %-46s║\n", configPath)
	fmt.Printf("║  Listen:    http://%-38s║\n", cfg.GetServerAddr())
	fmt.Printf("╚═══════════════════════════════════════════════════════════╝\n")
	fmt.Printf("\n")

	e.Logger.Fatal(e.StartServer(s))
}

package main

import (
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// This file assembles the application's runtime configuration. All knobs come
// from the environment (optionally via a .env file); required provider keys
// fail fast at startup rather than degrading silently at request time.

type apiConfig struct {
	logger     *slog.Logger
	httpClient *http.Client

	dataGoKrKey string
	kakaoKey    string

	boardURL      string
	registryURL   string
	kakaoLocalURL string

	regions *RegionTable

	geocoder       GeocodingService
	regionalBoard  *RegionalBoardAdapter
	radiusSearch   *RadiusSearchAdapter
	categorySearch *CategorySearchAdapter
	symptomChecker SymptomChecker

	maxResults        int
	enrichConcurrency int
	defaultRadiusKm   float64
	port              string
	devMode           bool
}

// getRequiredEnv retrieves an environment variable by key, and fatals if it's not set.
func getRequiredEnv(key string, logger *slog.Logger) string {
	val, ok := os.LookupEnv(key)
	if !ok {
		logger.Error("environment variable must be set", "key", key)
		os.Exit(1)
	}
	return val
}

// getEnv retrieves an environment variable by key, with a fallback value.
func getEnv(key, fallback string, logger *slog.Logger) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	logger.Info("environment variable not set, using fallback", "key", key, "fallback", fallback)
	return fallback
}

// getEnvAsInt retrieves an environment variable as an integer, with a fallback value.
func getEnvAsInt(key string, fallback int, logger *slog.Logger) int {
	valStr, ok := os.LookupEnv(key)
	if !ok {
		logger.Info("environment variable not set, using fallback", "key", key, "fallback", fallback)
		return fallback
	}
	val, err := strconv.Atoi(valStr)
	if err != nil {
		logger.Warn("invalid integer value for environment variable, using fallback", "key", key, "value", valStr, "error", err)
		return fallback
	}
	return val
}

func config() *apiConfig {
	devModeStr := os.Getenv("DEV_MODE")
	devMode, err := strconv.ParseBool(devModeStr)
	if err != nil {
		devMode = false
	}

	var logger *slog.Logger
	if devMode {
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	} else {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, nil))
	}

	if err := godotenv.Load(); err != nil {
		logger.Info("no .env file found, relying on environment variables")
	}

	regions, err := LoadRegionTable()
	if err != nil {
		logger.Error("could not load region tables", "error", err)
		os.Exit(1)
	}

	httpClient := &http.Client{
		Timeout: 10 * time.Second,
	}

	cfg := apiConfig{
		logger:     logger,
		httpClient: httpClient,

		dataGoKrKey: getRequiredEnv("DATA_GO_KR_KEY", logger),
		kakaoKey:    getRequiredEnv("KAKAO_REST_API_KEY", logger),

		boardURL:      getEnv("REGIONAL_BOARD_URL", "http://apis.data.go.kr/B552657/ErmctInfoInqireService/", logger),
		registryURL:   getEnv("FACILITY_REGISTRY_URL", "http://apis.data.go.kr/B552657/HsptlAsembySearchService/", logger),
		kakaoLocalURL: getEnv("KAKAO_LOCAL_URL", "https://dapi.kakao.com/v2/local/", logger),

		regions: regions,

		maxResults:        getEnvAsInt("MAX_RESULTS", 30, logger),
		enrichConcurrency: getEnvAsInt("ENRICH_CONCURRENCY", 5, logger),
		defaultRadiusKm:   5,
		port:              getEnv("PORT", "8080", logger),
		devMode:           devMode,
	}

	cfg.geocoder = NewKakaoGeocodingService(cfg.kakaoKey, cfg.kakaoLocalURL, httpClient)
	cfg.regionalBoard = NewRegionalBoardAdapter(cfg.dataGoKrKey, cfg.boardURL, regions, httpClient, logger)
	cfg.radiusSearch = NewRadiusSearchAdapter(cfg.dataGoKrKey, cfg.registryURL, httpClient, logger)
	cfg.categorySearch = NewCategorySearchAdapter(cfg.kakaoKey, cfg.kakaoLocalURL, httpClient, logger)

	aiKey := getRequiredEnv("AI_GATEWAY_KEY", logger)
	aiGatewayURL := getEnv("AI_GATEWAY_URL", "https://ai.gateway.lovable.dev/v1", logger)
	aiModel := getEnv("AI_MODEL", "google/gemini-2.5-flash", logger)
	cfg.symptomChecker = NewGatewaySymptomChecker(aiKey, aiGatewayURL, aiModel, logger)

	return &cfg
}

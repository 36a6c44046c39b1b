package main

import (
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg := config()
	cfg.logger.Debug("configuration loaded")

	mux := http.NewServeMux()

	mux.HandleFunc("/api/facilities", cfg.handlerFacilities)
	mux.HandleFunc("/api/emergencyrooms", cfg.handlerEmergencyRooms)
	mux.HandleFunc("/api/geocode", cfg.handlerGeocode)
	mux.HandleFunc("/api/reversegeocode", cfg.handlerReverseGeocode)
	mux.HandleFunc("/api/symptomcheck", cfg.handlerSymptomCheck)
	mux.HandleFunc("/api/config", cfg.handlerConfig)

	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:    ":" + cfg.port,
		Handler: metricsMiddleware(corsMiddleware(mux)),
	}

	cfg.logger.Info("starting server", "port", cfg.port)
	err := server.ListenAndServe()
	if err != nil {
		cfg.logger.Error("server startup failed", "error", err)
		os.Exit(1)
	}
}

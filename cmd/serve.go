package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/skyfield-labs/aeromap/internal/discovery"
	"github.com/skyfield-labs/aeromap/internal/geocode"
	"github.com/skyfield-labs/aeromap/internal/model"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx, false, true)
		if err != nil {
			return err
		}
		defer env.Close()

		svc, err := newDiscovery()
		if err != nil {
			return err
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: newRouter(env, svc),
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			_ = srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return eris.Wrap(err, "server listen")
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

func newRouter(env *env, svc *discovery.Service) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/v1/providers", func(w http.ResponseWriter, r *http.Request) {
		type providerInfo struct {
			ID         string `json:"id"`
			Configured bool   `json:"configured"`
		}
		out := make([]providerInfo, 0, len(env.Descriptors))
		for _, d := range env.Descriptors {
			out = append(out, providerInfo{ID: d.ID, Configured: d.CredentialPresent})
		}
		writeJSON(w, http.StatusOK, out)
	})

	r.Get("/v1/resolve", func(w http.ResponseWriter, r *http.Request) {
		address := r.URL.Query().Get("address")
		if address == "" {
			writeJSONError(w, http.StatusBadRequest, "address query parameter is required")
			return
		}

		res, err := env.Resolver.Resolve(r.Context(), address)
		if err != nil {
			var exhausted *geocode.ExhaustedError
			switch {
			case errors.As(err, &exhausted):
				writeJSONError(w, http.StatusBadGateway, "no provider could resolve the address")
			case errors.Is(err, geocode.ErrEmptyProviderChain):
				writeJSONError(w, http.StatusServiceUnavailable, "no geocoding providers configured")
			default:
				zap.L().Error("resolve failed", zap.String("address", address), zap.Error(err))
				writeJSONError(w, http.StatusInternalServerError, "internal error")
			}
			return
		}
		writeJSON(w, http.StatusOK, res)
	})

	r.Post("/v1/discover", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Address     string  `json:"address"`
			Name        string  `json:"name"`
			RadiusMiles float64 `json:"radius_miles"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Address == "" {
			writeJSONError(w, http.StatusBadRequest, "address is required")
			return
		}
		radius := req.RadiusMiles
		if radius <= 0 {
			radius = cfg.Discovery.RadiusMiles
		}

		res, err := env.Resolver.Resolve(r.Context(), req.Address)
		if err != nil {
			writeJSONError(w, http.StatusBadGateway, "could not geocode the address")
			return
		}

		name := req.Name
		if name == "" {
			name = req.Address
		}
		facility := model.Facility{
			Name:     name,
			Address:  req.Address,
			Lat:      res.Lat,
			Lon:      res.Lon,
			Provider: res.Provider,
		}
		facilityID, err := env.Store.SaveFacility(r.Context(), &facility)
		if err != nil {
			zap.L().Error("save facility failed", zap.Error(err))
			writeJSONError(w, http.StatusInternalServerError, "internal error")
			return
		}

		suppliers, err := svc.FindSuppliers(r.Context(), res.Lat, res.Lon, radius)
		if err != nil {
			zap.L().Error("supplier search failed", zap.Error(err))
			writeJSONError(w, http.StatusBadGateway, "supplier search failed")
			return
		}
		if err := env.Store.SaveSuppliers(r.Context(), facilityID, suppliers); err != nil {
			zap.L().Error("save suppliers failed", zap.Error(err))
			writeJSONError(w, http.StatusInternalServerError, "internal error")
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"facility_id": facilityID,
			"facility":    facility,
			"suppliers":   suppliers,
		})
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

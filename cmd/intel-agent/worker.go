package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"intel-agent/internal/common/camunda"
	"intel-agent/internal/common/config"
	"intel-agent/internal/common/logger"
	"intel-agent/internal/common/observability"
	"intel-agent/internal/intel/agent"
	gi "intel-agent/internal/workers/intelligence/gather-intelligence"
	"intel-agent/pkg/registry"
)

const serviceName = "intel-agent"

func workerCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Serve the gather-intelligence task as a Camunda job worker",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, sync, err := setup(flags)
			if err != nil {
				return err
			}
			defer sync()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serveWorker(ctx, cfg, log)
		},
	}
}

func serveWorker(ctx context.Context, cfg *config.Config, log logger.Logger) error {
	log.Info("Starting intelligence worker", map[string]interface{}{
		"broker":      cfg.Camunda.BrokerAddress,
		"environment": cfg.App.Environment,
	})

	reg, err := loadRegistry(cfg)
	if err != nil {
		return err
	}
	workerCfg, err := gi.LoadConfig(cfg, reg)
	if err != nil {
		return err
	}

	obs := observability.New(serviceName, log)
	defer obs.Shutdown()

	opts, closeCache := openCache(ctx, cfg, log)
	defer closeCache()
	opts = append(opts, agent.WithObservability(obs))

	a, err := agent.New(cfg, log, opts...)
	if err != nil {
		return err
	}

	client, err := camunda.NewClientWithConfig(ctx, camunda.ConfigFrom(cfg.Camunda))
	if err != nil {
		return err
	}
	defer client.Close()
	log.Info("Zeebe client connected", nil)

	var w *camunda.CamundaWorker
	if workerCfg.Enabled {
		handler := gi.NewHandler(workerCfg, a, log)
		w = camunda.NewWorker(client.GetClient(), gi.TaskType, workerCfg.MaxJobsActive, workerCfg.Timeout, handler, log)
	} else {
		log.Info("worker disabled", map[string]interface{}{"taskType": gi.TaskType})
	}

	server := &http.Server{
		Addr:              cfg.Metrics.Address,
		Handler:           newHealthMux(client.HealthCheck),
		ReadHeaderTimeout: 5 * time.Second,
	}
	serverErr := make(chan error, 1)
	go func() {
		log.Info("Health/Metrics server listening", map[string]interface{}{"address": server.Addr})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("Shutdown signal received, stopping worker", nil)
	case err = <-serverErr:
		log.Error("Health/Metrics server failed", map[string]interface{}{"error": err.Error()})
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if w != nil {
		w.Stop()
	}
	if shutdownErr := server.Shutdown(shutdownCtx); shutdownErr != nil {
		log.Error("Error stopping Health/Metrics server", map[string]interface{}{"error": shutdownErr.Error()})
	}

	log.Info("Worker stopped gracefully", nil)
	return err
}

// loadRegistry reads the configured activity registry, falling back to the
// built-in description when none is configured.
func loadRegistry(cfg *config.Config) (*registry.ActivityRegistry, error) {
	if cfg.RegistryPath == "" {
		return registry.Builtin(), nil
	}
	reg, err := registry.LoadRegistry(cfg.RegistryPath)
	if err != nil {
		return nil, err
	}
	if err := reg.Validate(); err != nil {
		return nil, err
	}
	return reg, nil
}

func newHealthMux(ready func(context.Context) error) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, map[string]string{"status": "healthy"})
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		if err := ready(r.Context()); err != nil {
			writeStatus(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		writeStatus(w, http.StatusOK, map[string]string{"status": "ready"})
	})
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

func writeStatus(w http.ResponseWriter, code int, body map[string]string) {
	body["time"] = time.Now().Format(time.RFC3339)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}

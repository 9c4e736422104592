// cmd/intel-agent/main.go
package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"intel-agent/internal/common/config"
	"intel-agent/internal/common/database"
	"intel-agent/internal/common/logger"
	"intel-agent/internal/intel/agent"
)

type globalFlags struct {
	configPath string
	logLevel   string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:           "intel-agent",
		Short:         "Gather person, company and web intelligence from a free-text command",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "config file (default ./agent_config.{json,yaml})")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "log level override (debug, info, warn, error)")

	root.AddCommand(runCmd(flags), workerCmd(flags), registryCmd())
	return root
}

// setup loads the configuration and builds the logger it describes.
func setup(flags *globalFlags) (*config.Config, logger.Logger, func(), error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, nil, nil, err
	}

	level := cfg.Logging.Level
	if flags.logLevel != "" {
		level = flags.logLevel
	}
	zapLog := logger.New(level, cfg.Logging.Format)
	log := logger.NewZapAdapter(zapLog)

	if cfg.SourceFile != "" {
		log.Debug("Configuration loaded", map[string]interface{}{"file": cfg.SourceFile})
	}
	return cfg, log, func() { _ = zapLog.Sync() }, nil
}

// openCache connects the Redis fetch cache when one is configured. An
// unreachable Redis disables caching rather than failing the command.
func openCache(ctx context.Context, cfg *config.Config, log logger.Logger) ([]agent.Option, func()) {
	if !cfg.Cache.Enabled() {
		return nil, func() {}
	}

	redis := database.NewRedis(cfg.Cache.Redis)
	if err := redis.Ping(ctx); err != nil {
		log.Warn("Cache unavailable, continuing without it", map[string]interface{}{
			"address": cfg.Cache.Redis.Address,
			"error":   err.Error(),
		})
		_ = redis.Close()
		return nil, func() {}
	}

	log.Info("Redis cache connected", map[string]interface{}{"address": cfg.Cache.Redis.Address})
	return []agent.Option{agent.WithCache(redis)}, func() { _ = redis.Close() }
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/pressfeed-hq/pressfeed/internal/config"
	"github.com/pressfeed-hq/pressfeed/internal/logger"
	"github.com/pressfeed-hq/pressfeed/internal/pipeline"
	"github.com/pressfeed-hq/pressfeed/pkg/httpclient"
	"github.com/pressfeed-hq/pressfeed/pkg/images"
	"github.com/pressfeed-hq/pressfeed/pkg/publish"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "pressfeed:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfgFile string

	root := &cobra.Command{
		Use:           "pressfeed",
		Short:         "Builds an image-bearing RSS feed for sites that publish none",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "path to config file")

	build := &cobra.Command{
		Use:   "build",
		Short: "Fetch sources, resolve images, and write the feed",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBuild(cmd.Context(), cfgFile)
		},
	}
	root.AddCommand(build)

	return root
}

func runBuild(parent context.Context, cfgFile string) error {
	// Optional; a missing .env is the normal case in production.
	_ = godotenv.Load()

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	log, err := logger.New(logger.Config{
		Level:      cfg.Log.Level,
		FilePath:   cfg.Log.FilePath,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var cache *images.Cache
	if cfg.Resolver.CachePath != "" {
		cache, err = images.OpenCache(cfg.Resolver.CachePath)
		if err != nil {
			return err
		}
		defer cache.Close()
	}

	var sinks []publish.Sink
	if cfg.SinksFile != "" {
		sinkReg, err := publish.LoadSinks(cfg.SinksFile)
		if err != nil {
			return err
		}
		sinks, err = publish.BuildAll(ctx, publish.DefaultRegistry(), sinkReg.Enabled(), log)
		if err != nil {
			return err
		}
	}

	client := httpclient.NewRestyClient(cfg.HTTP.Timeout())
	p := pipeline.New(cfg, client, nil, cache, sinks, log)

	if err := p.Run(ctx); err != nil {
		log.ErrorObj("feed build failed", "build_failed", map[string]any{
			"error": err.Error(),
		})
		return err
	}
	return nil
}

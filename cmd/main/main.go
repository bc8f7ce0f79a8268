package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"sensor-dashboard/src/config"
	"sensor-dashboard/src/logger"
	"sensor-dashboard/src/metrics"
	"sensor-dashboard/src/models"
	"sensor-dashboard/src/server"
	"sensor-dashboard/src/stats"
	"sensor-dashboard/src/statsapi"

	"github.com/cli/browser"
)

// -----------------------------------------------------------------------------

func main() {

	// 1. Parse command line flags
	configPath := flag.String("config", "config/default.yaml", "path to config file")
	envPath := flag.String("env", ".env", "optional env file loaded before the config")
	writeConfig := flag.String("write-config", "", "write the effective config to this path and exit")
	flag.Parse()

	// 2. Load env overlay and config
	if err := config.LoadDotEnv(*envPath); err != nil {
		fmt.Printf("Error loading env file: %v\n", err)
		os.Exit(1)
	}
	conf, err := config.NewConfig(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *writeConfig != "" {
		if err := conf.Save(*writeConfig); err != nil {
			fmt.Printf("Error writing config: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// 3. Setup Logger and metrics
	appLogger := logger.NewLogger(conf.MConfig, conf.Name)
	m := metrics.New()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var wg sync.WaitGroup

	// 4. Charts, poller and dashboard server
	charts := setupCharts(conf.MConfig, m)
	controller, err := setupPoller(conf.MConfig, charts, m)
	if err != nil {
		appLogger.Critical("Failed to create poller: %v", err)
	}

	srv := server.NewDashboardServer(conf.MConfig, controller, charts, m, logger.NewLogger(conf.MConfig, "DashboardServer"))
	controller.OnUpdate(func(update models.MDashboardUpdate) {
		srv.Broadcast(&update)
	})

	// 5. Stats backend (store, aggregator, broker ingest, /stats)
	if conf.Stats.Enabled {
		store, err := setupStore(conf.MConfig)
		if err != nil {
			appLogger.Critical("%v", err)
		}
		defer store.Close()

		latest := stats.NewLatestQueue(conf.Stats.LatestSize)
		statsapi.NewStatsAPI(conf, store, latest, logger.NewLogger(conf.MConfig, "StatsAPI")).Register(srv.Routes())

		readings := make(chan models.MSensorMessage, 500)
		aggregator := setupAggregator(conf.MConfig, store, latest, m)
		wg.Add(1)
		go func() {
			defer wg.Done()
			aggregator.Run(ctx, readings)
		}()

		if source := setupReadingSource(conf.MConfig); source != nil {
			if err := source.Start(ctx, readings, &wg); err != nil {
				// The dashboard stays usable; buckets simply stop growing.
				appLogger.Error("Failed to start %s: %v", source.Name(), err)
			} else {
				appLogger.Info("Ingesting readings from %s", source.Name())
			}
		}
	}

	// 6. Start Servers
	stopGrpc, err := startServers(srv, controller, conf, *configPath, appLogger)
	if err != nil {
		appLogger.Critical("Failed to start servers: %v", err)
	}

	// 7. Start polling
	if err := controller.Start(ctx); err != nil {
		appLogger.Critical("Failed to start poller: %v", err)
	}

	dashboardURL := fmt.Sprintf("http://%s:%d/", conf.Host, conf.Port)
	appLogger.Info("Dashboard available at %s", dashboardURL)
	if conf.OpenBrowser {
		if err := browser.OpenURL(dashboardURL); err != nil {
			appLogger.Warning("Could not open browser: %v", err)
		}
	}

	// 8. Wait for shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down...")
	controller.Stop()
	stopGrpc()
	if err := srv.Stop(); err != nil {
		appLogger.Warning("Dashboard server shutdown: %v", err)
	}
	cancel()
	wg.Wait()
	appLogger.Info("Shutdown complete.")
}

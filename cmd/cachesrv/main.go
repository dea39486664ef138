/*
file: cachesrv/cmd/cachesrv/main.go
*/
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shirou/gopsutil/v4/mem"

	"github.com/akashmaji946/cachesrv/internal/auth"
	"github.com/akashmaji946/cachesrv/internal/config"
	"github.com/akashmaji946/cachesrv/internal/executor"
	"github.com/akashmaji946/cachesrv/internal/maintenance"
	"github.com/akashmaji946/cachesrv/internal/metrics"
	"github.com/akashmaji946/cachesrv/internal/runtimeconfig"
	"github.com/akashmaji946/cachesrv/internal/server"
	"github.com/akashmaji946/cachesrv/internal/stats"
	"github.com/akashmaji946/cachesrv/internal/store"
)

const shutdownTimeout = 5 * time.Second

const banner = `>>> cachesrv <<<`

// fanoutSink broadcasts storage observability events to both the
// textual stats block and the Prometheus registry, so internal/store
// only ever has to know about the single store.StatsSink it was built
// against.
type fanoutSink struct {
	stats   *stats.Stats
	metrics *metrics.Registry
}

func (f fanoutSink) IncCacheHit() {
	f.stats.IncCacheHit()
	f.metrics.IncCacheHit()
}

func (f fanoutSink) IncCacheMiss() {
	f.stats.IncCacheMiss()
	f.metrics.IncCacheMiss()
}

func (f fanoutSink) SetUsedMemory(bytes int64) {
	f.stats.SetUsedMemory(bytes)
	f.metrics.SetUsedMemory(bytes)
}

func main() {
	fmt.Println(banner)

	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	authSvc := auth.New(cfg.DefaultUser, cfg.DefaultPassword)
	runtimeCfg := runtimeconfig.New(cfg.MaxMemoryMB, cfg.Workers, cfg.DefaultTTLSec)

	statsBlock := stats.New(int64(cfg.MaxMemoryMB) * 1024 * 1024)
	metricsReg := metrics.New()
	metricsReg.SetMaxMemory(int64(cfg.MaxMemoryMB) * 1024 * 1024)
	sink := fanoutSink{stats: statsBlock, metrics: metricsReg}

	st := store.New(int64(cfg.MaxMemoryMB)*1024*1024, secondsToDuration(cfg.DefaultTTLSec), sink)

	exec := executor.New(st, authSvc, runtimeCfg, statsBlock, metricsReg)
	exec.SetMaxMemorySetters(statsBlock, metricsReg)
	exec.SetStatsFormatter(statsBlock, hostMemoryTotal())

	srv := server.New(cfg.Port, cfg.Workers, exec, connCounters(statsBlock, metricsReg)...)
	if err := srv.Start(); err != nil {
		log.Fatalf("cannot listen on port %d: %v", cfg.Port, err)
	}

	sweepCtx, stopSweep := context.WithCancel(context.Background())
	sweeper := maintenance.New(st, time.Second)
	go sweeper.Run(sweepCtx)

	var metricsServer *http.Server
	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(metricsReg.Registerer(), promhttp.HandlerOpts{}))
		metricsServer = &http.Server{Addr: cfg.MetricsAddr, Handler: mux}
		go func() {
			log.Printf("serving /metrics on %s", cfg.MetricsAddr)
			if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("metrics server error: %v", err)
			}
		}()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Println("shutdown signal received, starting graceful shutdown...")

	stopSweep()

	if metricsServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		_ = metricsServer.Shutdown(ctx)
		cancel()
	}

	if err := srv.Stop(shutdownTimeout); err != nil {
		log.Printf("shutdown did not complete cleanly: %v", err)
	}

	log.Println("graceful shutdown complete")
}

func secondsToDuration(seconds int64) time.Duration {
	return time.Duration(seconds) * time.Second
}

func connCounters(s *stats.Stats, m *metrics.Registry) []server.ConnCounter {
	return []server.ConnCounter{s, m}
}

func hostMemoryTotal() uint64 {
	vm, err := mem.VirtualMemory()
	if err != nil {
		log.Printf("could not read host memory: %v", err)
		return 0
	}
	return vm.Total
}

package main

import (
	"context"
	"flag"
	"log"
	"net"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	persistlog "chaoticweather.ai/internal/persistence/log"
	"chaoticweather.ai/internal/sim/effects"
	"chaoticweather.ai/internal/sim/multiworld"
	"chaoticweather.ai/internal/sim/regions"
	"chaoticweather.ai/internal/sim/tuning"
	"chaoticweather.ai/internal/transport/observer"
)

func main() {
	var (
		addr       = flag.String("addr", ":8080", "http listen address")
		seed       = flag.Int64("seed", 1337, "server seed; each world adds its seed_offset")
		configDir  = flag.String("configs", "./configs", "config directory")
		configPath = flag.String("config", "", "path to config.yml (default: <configs>/config.yml)")
		worldsPath = flag.String("worlds", "", "path to worlds.yaml (default: <configs>/worlds.yaml)")
		dataDir    = flag.String("data", "./data", "runtime data directory (audit logs)")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	cp := strings.TrimSpace(*configPath)
	if cp == "" {
		cp = filepath.Join(*configDir, "config.yml")
	}
	tune, err := tuning.Load(cp)
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}
	wp := strings.TrimSpace(*worldsPath)
	if wp == "" {
		wp = filepath.Join(*configDir, "worlds.yaml")
	}
	worlds, err := multiworld.Load(wp)
	if err != nil {
		logger.Fatalf("load worlds: %v", err)
	}

	store, closeStore, err := openRegionStore(tune.Regions)
	if err != nil {
		logger.Fatalf("region store: %v", err)
	}
	defer closeStore()
	idx := regions.NewIndex(store, subLogger(logger, "[regions] "))
	if err := idx.Load(); err != nil {
		// Start with no regions rather than refuse to serve; a reload retries.
		logger.Printf("load regions: %v", err)
	}

	_ = os.MkdirAll(*dataDir, 0o755)
	audit := persistlog.NewAuditLogger(*dataDir)
	defer audit.Close()

	hub := observer.NewHub(observer.Options{
		Manifest:    worlds.Manifest(),
		TickRateHz:  tune.TickRateHz,
		Logger:      subLogger(logger, "[observer] "),
		AllowRemote: envBool("CW_OBSERVER_ALLOW_REMOTE", false),
	})

	counts := newEffectCounter()
	mgr, err := multiworld.NewManager(multiworld.Options{
		Config:     worlds,
		Seed:       *seed,
		Tuning:     tune,
		TuningPath: cp,
		Regions:    idx,
		Effects:    effects.Fanout{hub, counts},
		Audit:      audit,
		Logger:     logger,
	})
	if err != nil {
		logger.Fatalf("manager: %v", err)
	}

	ctx, cancel := signalContext()
	defer cancel()

	go func() {
		if err := mgr.Run(ctx); err != nil && err != context.Canceled {
			logger.Printf("manager stopped: %v", err)
		}
	}()

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		select {
		case <-mgr.Done():
			rw.WriteHeader(http.StatusServiceUnavailable)
			_, _ = rw.Write([]byte("stopped"))
		default:
			rw.WriteHeader(200)
			_, _ = rw.Write([]byte("ok"))
		}
	})
	mux.HandleFunc("/metrics", metricsHandler(mgr, hub, counts))

	enableAdminHTTP := envBool("CW_ENABLE_ADMIN_HTTP", defaultEnableAdminHTTP())
	enablePprofHTTP := envBool("CW_ENABLE_PPROF_HTTP", false)
	if enableAdminHTTP {
		admin := &adminServer{mgr: mgr, logger: subLogger(logger, "[admin] ")}
		admin.register(mux)
	} else {
		logger.Printf("admin endpoints disabled (CW_ENABLE_ADMIN_HTTP=false)")
	}
	if enablePprofHTTP {
		mux.HandleFunc("/debug/pprof/", pprof.Index)
		mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
		mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	} else {
		logger.Printf("pprof endpoints disabled (CW_ENABLE_PPROF_HTTP=false)")
	}
	mux.HandleFunc("/v1/observe", hub.Handler())

	srv := &http.Server{
		Addr:              *addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel2()
		_ = srv.Shutdown(ctx2)
	}()

	logger.Printf("listening on %s (worlds=%d default=%s)", *addr, len(worlds.Worlds), worlds.DefaultWorldID)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("ListenAndServe: %v", err)
	}
	<-mgr.Done()
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}

func subLogger(l *log.Logger, prefix string) *log.Logger {
	return log.New(l.Writer(), prefix, l.Flags())
}

func isLoopbackRemote(remoteAddr string) bool {
	host := remoteAddr
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}
	host = strings.TrimPrefix(host, "[")
	host = strings.TrimSuffix(host, "]")
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

func defaultEnableAdminHTTP() bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("DEPLOY_ENV"))) {
	case "staging", "production":
		return false
	default:
		return true
	}
}

func envBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

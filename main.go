package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/gin-gonic/gin"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"

	"github.com/xaitan80/X-Standings/internal/auth"
	"github.com/xaitan80/X-Standings/internal/config"
	dbpkg "github.com/xaitan80/X-Standings/internal/db"
	"github.com/xaitan80/X-Standings/internal/feed"
	"github.com/xaitan80/X-Standings/internal/league"
	"github.com/xaitan80/X-Standings/internal/matches"
)

func main() {
	hashToken := flag.String("hash-token", "", "print the bcrypt hash of an admin token and exit")
	seed := flag.String("seed", "", "import a CSV/XLSX schedule into the archive at DB_PATH and exit")
	flag.Parse()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if *hashToken != "" {
		h, err := auth.HashToken(*hashToken)
		if err != nil {
			log.Fatalf("hash token: %v", err)
		}
		fmt.Println(h)
		return
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	log.SetLevel(cfg.LogLevel)
	dbpkg.SetLogger(log)

	if *seed != "" {
		if err := seedArchive(cfg, *seed, log); err != nil {
			log.Fatalf("seed: %v", err)
		}
		return
	}
	if err := run(cfg, log); err != nil {
		log.Fatal(err)
	}
}

func run(cfg *config.Config, log *logrus.Logger) error {
	store := league.NewStore()

	loader, closeLoader, err := newLoader(cfg, log)
	if err != nil {
		return err
	}
	defer closeLoader()

	if loader != nil {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.FeedTimeout*2)
		n, err := matches.Reload(ctx, loader, store)
		cancel()
		if err != nil {
			// keep serving; POST /api/matches/reload can retry
			log.WithError(err).WithField("source", cfg.Source).Warn("initial load failed")
		} else {
			log.WithFields(logrus.Fields{"source": cfg.Source, "matches": n}).Info("season loaded")
		}
	}

	protect, err := auth.AdminRequired(cfg.AdminTokenHash)
	if err != nil {
		return err
	}
	if protect == nil {
		log.Warn("ADMIN_TOKEN_HASH not set, mutating routes are open")
	}

	// HTTP
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(requestLogger(log), gin.Recovery())
	if err := r.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return fmt.Errorf("trusted proxies: %w", err)
	}

	matches.RegisterRoutes(r, matches.Deps{
		Store:    store,
		Loader:   loader,
		Flags:    matches.Flags(cfg.FlagBaseURL),
		Location: cfg.Location,
		Log:      log,
	}, protect)

	r.GET("/healthz", func(c *gin.Context) {
		snap := store.Snapshot()
		c.JSON(http.StatusOK, gin.H{"ok": true, "matches": len(snap.Matches), "revision": snap.Revision.String()})
	})

	srv := &http.Server{
		Addr: cfg.Addr,
		Handler: cors.Handler(cors.Options{
			AllowedOrigins: cfg.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPut, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Authorization", "Content-Type", "If-None-Match"},
			ExposedHeaders: []string{"ETag", matches.RevisionHeader},
			MaxAge:         300,
		})(r),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Infof("listening on %s", cfg.Addr)
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server: %w", err)
	case sig := <-shutdown:
		log.WithField("signal", sig.String()).Info("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown: %w", err)
		}
	}
	return nil
}

// newLoader builds the configured season source. The returned close func
// is never nil.
func newLoader(cfg *config.Config, log *logrus.Logger) (matches.Loader, func(), error) {
	noop := func() {}
	switch cfg.Source {
	case config.SourceFeed:
		return feed.NewClient(cfg.FeedBaseURL, cfg.FeedTimeout, log.WithField("component", "feed")), noop, nil
	case config.SourceFile:
		return matches.FileSource{Path: cfg.ImportPath, Location: cfg.Location}, noop, nil
	case config.SourceArchive:
		d, err := dbpkg.Open(cfg.DBPath)
		if err != nil {
			return nil, noop, err
		}
		return matches.NewRepository(d), func() { _ = dbpkg.Close(d) }, nil
	}
	return nil, noop, nil
}

func seedArchive(cfg *config.Config, path string, log *logrus.Logger) error {
	ctx := context.Background()
	list, err := matches.FileSource{Path: path, Location: cfg.Location}.Load(ctx)
	if err != nil {
		return err
	}
	if err := league.Validate(list); err != nil {
		return err
	}
	d, err := dbpkg.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer dbpkg.Close(d)
	if err := matches.NewRepository(d).ReplaceAll(ctx, list); err != nil {
		return err
	}
	log.WithFields(logrus.Fields{"db": cfg.DBPath, "matches": len(list)}).Info("archive seeded")
	return nil
}

func requestLogger(log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		entry := log.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
			"ip":      c.ClientIP(),
		})
		switch {
		case c.Writer.Status() >= http.StatusInternalServerError:
			entry.Error("request")
		case c.Writer.Status() >= http.StatusBadRequest:
			entry.Warn("request")
		default:
			entry.Debug("request")
		}
	}
}

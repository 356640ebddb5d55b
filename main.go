package main

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/finance-tracker/backend/internal/config"
	"github.com/finance-tracker/backend/internal/controllers/healthz"
	v1 "github.com/finance-tracker/backend/internal/controllers/v1"
	"github.com/finance-tracker/backend/internal/database"
	"github.com/finance-tracker/backend/internal/finance"
	"github.com/finance-tracker/backend/internal/notify"
	"github.com/finance-tracker/backend/internal/router"
	"github.com/finance-tracker/backend/internal/scheduler"
	"github.com/finance-tracker/backend/internal/store"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Changes that are held while the AMQP broker is slow.
const notifyBuffer = 256

func main() {
	cfg := config.Load()

	// gin uses debug as the default mode, we use release for
	// security reasons
	ginMode, ok := os.LookupEnv("GIN_MODE")
	if !ok {
		gin.SetMode("release")
	} else {
		gin.SetMode(ginMode)
	}

	// Log format can be explicitly set.
	// If it is not set, it defaults to human readable for development
	// and JSON for release
	logFormat, ok := os.LookupEnv("LOG_FORMAT")
	output := io.Writer(os.Stdout)
	if (!ok && gin.IsDebugging()) || (ok && logFormat == "human") {
		output = zerolog.ConsoleWriter{Out: os.Stdout}
	}

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if gin.IsDebugging() {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(output).With().Timestamp().Logger()

	if err := cfg.Validate(); err != nil {
		log.Fatal().Msg(err.Error())
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	broker := store.NewBroker()
	backend, err := connect(ctx, cfg, broker)
	if err != nil {
		log.Fatal().Msg(err.Error())
	}
	defer backend.Close(context.Background())

	dating := finance.KeepSourceDate
	if cfg.PropagationRedate {
		dating = finance.RedateToTargetMonth
	}
	records := store.NewRecords(backend)

	g, ctx := errgroup.WithContext(ctx)

	if cfg.AMQPURL != "" {
		notifier, err := notify.Dial(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, notifyBuffer)
		if err != nil {
			log.Fatal().Msg(err.Error())
		}
		defer notifier.Close()

		broker.Listen(notifier.Enqueue)
		g.Go(func() error { return notifier.Run(ctx) })
		log.Info().Str("exchange", cfg.AMQPExchange).Msg("publishing changes")
	}

	if len(cfg.ReportUsers) > 0 {
		reports, err := scheduler.Start(ctx, cfg.ReportSchedule, scheduler.Reporter{
			Fetcher: records,
			Labels:  finance.Registry{Store: records},
			Dir:     cfg.ReportDir,
			Users:   cfg.ReportUsers,
		})
		if err != nil {
			log.Fatal().Msg(err.Error())
		}
		defer func() { <-reports.Stop().Done() }()
		log.Info().Str("schedule", cfg.ReportSchedule).Strs("users", cfg.ReportUsers).Msg("scheduled annual summary export")
	}

	apiURL, _ := url.Parse(cfg.APIURL)
	r, teardown, err := router.Config(apiURL, router.Options{
		AllowOrigins: cfg.CORSAllowOrigins,
		EnablePprof:  cfg.EnablePprof,
	})
	if err != nil {
		log.Fatal().Msg(err.Error())
	}
	defer teardown()

	router.AttachRoutes(v1.New(records, dating), healthz.Controller{Backend: backend}, r.Group("/"))

	server := newServer(ctx, ":"+cfg.Port, r)

	g.Go(func() error {
		log.Info().Str("addr", server.Addr).Msg("listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		log.Info().Msg("shutting down")

		shutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdown)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Msg(err.Error())
	}
}

// connect opens the configured document store.
func connect(ctx context.Context, cfg *config.Config, broker *store.Broker) (store.Store, error) {
	if cfg.DataBackend == config.BackendMongo {
		return store.NewMongo(ctx, cfg.MongoURI, cfg.MongoDB, broker)
	}

	// Create data directory
	if err := os.MkdirAll(filepath.Dir(cfg.SQLiteDBPath), os.ModePerm); err != nil {
		return nil, err
	}

	db, err := database.Connect(cfg.SQLiteDBPath)
	if err != nil {
		return nil, err
	}

	return store.NewSQL(db, broker), nil
}

// newServer returns the HTTP server for handler. Requests are cancelled
// together with ctx, this is needed to end the live streams on shutdown.
func newServer(ctx context.Context, addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
}

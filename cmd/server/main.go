package main

import (
	"context"
	"database/sql"
	"github.com/beldeveloper/gitflow-promoter/internal/app"
	"github.com/beldeveloper/gitflow-promoter/internal/app/config"
	"github.com/beldeveloper/gitflow-promoter/internal/app/kafka"
	"github.com/beldeveloper/gitflow-promoter/internal/app/node"
	"github.com/beldeveloper/gitflow-promoter/internal/app/postgres"
	"github.com/beldeveloper/gitflow-promoter/internal/app/s3"
	"github.com/beldeveloper/gitflow-promoter/internal/app/svc"
	"github.com/beldeveloper/gitflow-promoter/pkg"
	"github.com/beldeveloper/gitflow-promoter/pkg/logger"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func main() {
	s := config.Load(config.NewViper())
	logger.Set(s.Debug)
	if s.LogJSON {
		logger.UseJSONLogging()
	}
	// get watcher, router and consumer using DI wire
	c, err := initializeContainer(s)
	if err != nil {
		log.Fatal().Err(err).Msg("main: initialize container")
	}
	ctx, cancel := context.WithCancel(context.Background())
	// the promotions left running by the previous run are failed before the watcher starts
	if err := c.promo.Recover(ctx); err != nil {
		log.Fatal().Err(err).Msg("main: recover promotions")
	}
	// run watcher that promotes the enqueued builds in background
	watched := make(chan struct{})
	go func() {
		defer close(watched)
		c.watcher.Watch(ctx)
	}()
	if c.consumer != nil {
		go func() {
			err := c.consumer.Consume(ctx)
			if err != nil {
				log.Error().Err(err).Msg("main: build events consumer stopped")
			}
		}()
	}
	// run http server
	runHttpServer(c.router, s)
	cancel()
	<-watched
	c.close()
}

type container struct {
	promo     app.PromotionSvc
	watcher   svc.Watcher
	router    *httprouter.Router
	consumer  *kafka.Consumer
	publisher app.EventPublisher
	db        *sql.DB
}

func newContainer(
	promo app.PromotionSvc,
	watcher svc.Watcher,
	router *httprouter.Router,
	consumer *kafka.Consumer,
	publisher app.EventPublisher,
	db *sql.DB,
) container {
	return container{
		promo:     promo,
		watcher:   watcher,
		router:    router,
		consumer:  consumer,
		publisher: publisher,
		db:        db,
	}
}

func (c container) close() {
	if c.consumer != nil {
		if err := c.consumer.Close(); err != nil {
			log.Error().Err(err).Msg("main: close consumer")
		}
	}
	if p, ok := c.publisher.(kafka.Publisher); ok {
		if err := p.Close(); err != nil {
			log.Error().Err(err).Msg("main: close publisher")
		}
	}
	if err := c.db.Close(); err != nil {
		log.Error().Err(err).Msg("main: close db")
	}
}

func workspacesDir(s config.Settings) app.WorkspacesDir {
	return app.WorkspacesDir(s.WorkspacesDir)
}

func newAccessKey(s config.Settings) app.ApiAccessKey {
	return app.ApiAccessKey(s.AccessKey)
}

func newJWTSecret(s config.Settings) app.JWTSecret {
	return app.JWTSecret(s.JWTSecret)
}

func newDefinitions(s config.Settings) (config.Definitions, error) {
	d, err := config.LoadDefinitions(s.Definitions)
	if err != nil {
		return d, err
	}
	jobs, _ := d.FindAll(context.Background())
	log.Info().Str("path", s.Definitions).Int("jobs", len(jobs)).Msg("Promotion definitions loaded")
	return d, nil
}

func newWatcher(promo app.PromotionSvc) svc.Watcher {
	return svc.NewWatcher([]app.WatcherJob{
		{
			Name: "promote",
			Do:   promo.PromoteJob,
		},
	})
}

func newPostgresConn(s config.Settings) (*sql.DB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	db, err := postgres.Open(ctx, s.DBDSN)
	if err != nil {
		return nil, err
	}
	err = postgres.Migrate(ctx, db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func newNodeRegistry(s config.Settings) app.NodeRegistry {
	local := node.NewLocal(app.WorkspacesDir(s.WorkspacesDir), app.GitExe(s.GitExe), s.CheckoutTimeout)
	return node.NewRegistry(map[string]app.NodeSvc{app.DefaultNode: local})
}

func newHook(s config.Settings) (pkg.HookSvc, error) {
	if s.HookAddr == "" {
		log.Warn().Msg("No hook handler address, the promotions are completed locally")
		return svc.LocalHook{}, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()
	conn, err := grpc.DialContext(ctx, s.HookAddr, grpc.WithTransportCredentials(insecure.NewCredentials()), grpc.WithBlock())
	if err != nil {
		log.Error().Err(err).Str("addr", s.HookAddr).Msg("main.newHook: dial")
		return nil, err
	}
	return svc.NewHook(conn), nil
}

func newPublisher(s config.Settings) app.EventPublisher {
	if len(s.KafkaBrokers) == 0 {
		return svc.NopPublisher{}
	}
	return kafka.NewPublisher(kafka.NewWriter(s.KafkaBrokers, s.KafkaPromotionsTopic))
}

func newConsumer(s config.Settings, promo app.PromotionSvc) *kafka.Consumer {
	if len(s.KafkaBrokers) == 0 {
		return nil
	}
	c := kafka.NewConsumer(kafka.NewReader(s.KafkaBrokers, s.KafkaBuildsTopic, s.KafkaGroup), promo)
	return &c
}

func newArchive(s config.Settings) (app.TranscriptArchive, error) {
	if s.S3Bucket == "" {
		return svc.NopArchive{}, nil
	}
	uploader, err := s3.NewUploader(context.Background())
	if err != nil {
		return nil, err
	}
	return s3.NewArchive(uploader, s.S3Bucket, s.S3Prefix)
}

func runHttpServer(router *httprouter.Router, s config.Settings) {
	srv := &http.Server{
		Addr:              ":" + s.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		var err error
		if len(s.HTTPSCrt) > 0 {
			err = srv.ListenAndServeTLS(s.HTTPSCrt, s.HTTPSKey)
		} else {
			err = srv.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Str("port", s.HTTPPort).Msg("main.runHttpServer: serve http")
		}
	}()
	log.Info().Msgf("Listening :%s for HTTP connections...", s.HTTPPort)
	<-done
	log.Info().Msg("Stopping the application...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("main.runHttpServer: server shutdown")
	}
}

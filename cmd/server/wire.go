//go:build wireinject
// +build wireinject

package main

import (
	"github.com/beldeveloper/gitflow-promoter/internal/app"
	"github.com/beldeveloper/gitflow-promoter/internal/app/config"
	"github.com/beldeveloper/gitflow-promoter/internal/app/http"
	"github.com/beldeveloper/gitflow-promoter/internal/app/postgres"
	"github.com/beldeveloper/gitflow-promoter/internal/app/svc"
	"github.com/google/wire"
)

func initializeContainer(s config.Settings) (container, error) {
	wire.Build(
		postgres.NewBuild,
		postgres.NewPromotion,
		svc.NewGate,
		svc.NewMacro,
		svc.NewCheckout,
		svc.NewPromotion,
		http.NewHandler,
		http.NewRouter,
		wire.Bind(new(app.JobRepo), new(config.Definitions)),
		newContainer,
		newWatcher,
		newPostgresConn,
		newDefinitions,
		newNodeRegistry,
		newHook,
		newPublisher,
		newConsumer,
		newArchive,
		workspacesDir,
		newAccessKey,
		newJWTSecret,
	)
	return container{}, nil
}

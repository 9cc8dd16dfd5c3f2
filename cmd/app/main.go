package main

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Rogue-Bear-Innovations/jobboard-back/internal/config"
	"github.com/Rogue-Bear-Innovations/jobboard-back/internal/db"
	"github.com/Rogue-Bear-Innovations/jobboard-back/internal/mail"
	"github.com/Rogue-Bear-Innovations/jobboard-back/internal/service"
	"github.com/Rogue-Bear-Innovations/jobboard-back/internal/transport"
)

func main() {
	app := fx.New(
		fx.Provide(
			config.NewConfig,
			NewLogger,
			db.NewGormClient,
			mail.NewSender,
			service.NewAuth,
			service.NewJobs,
			transport.NewHTTPServer,
		),
		fx.Invoke(func(*transport.HTTPServer) {}),
	)
	app.Run()
}

func NewLogger() (*zap.SugaredLogger, error) {
	logger, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}
	return logger.Sugar(), nil
}

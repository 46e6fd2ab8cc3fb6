package main

import (
	"context"
	"expvar"
	"log"
	"runtime"
	"time"

	"github.com/hilthontt/dealerdesk/internal/dependency"
	"github.com/hilthontt/dealerdesk/internal/infrastructure/configs"
)

func main() {
	configPath := configs.DetermineConfigPath()
	cfg, err := configs.Load(configPath)
	if err != nil {
		log.Fatal(err)
	}

	container, err := dependency.NewContainer(context.Background(), cfg)
	if err != nil {
		log.Fatal(err)
	}
	logger := container.Logger

	expvar.Publish("goroutines", expvar.Func(func() any {
		return runtime.NumGoroutine()
	}))

	app := container.Application()
	runErr := app.Run(app.Mount())
	if runErr != nil {
		logger.Errorw("server stopped with error", "error", runErr)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := container.Shutdown(ctx); err != nil || runErr != nil {
		cancel()
		log.Fatal("shutdown incomplete")
	}
}

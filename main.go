package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"vendorline/app/client/llm"
	"vendorline/app/config"
	"vendorline/app/server"
	"vendorline/app/service/analyze"
	"vendorline/app/service/compose"
	"vendorline/app/service/engine"
	"vendorline/app/service/interpret"
	"vendorline/app/service/inventory"
	"vendorline/app/service/ledger"
	"vendorline/app/util/mylog"

	"github.com/gofiber/fiber/v2/log"
	"github.com/samber/do"
)

func main() {
	di := do.New()
	defer di.Shutdown()
	defer log.Info("Waiting for services to finish...")

	mylog.Preinit()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	do.ProvideValue(di, appCtx)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	do.ProvideValue(di, cfg)

	if err = mylog.Init(cfg); err != nil {
		log.Fatalf("logging init failed: %v", err)
	}

	do.Provide(di, llm.NewClient)
	do.Provide(di, interpret.New)
	do.Provide(di, compose.New)
	do.Provide(di, ledger.New)
	do.Provide(di, inventory.New)
	do.Provide(di, analyze.New)
	do.Provide(di, engine.New)
	do.Provide(di, server.New)

	slog.Info("Service started")

	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt)
		<-sigint

		log.Info("Shutting down...")

		cancel()
	}()

	if err = do.MustInvoke[*server.Server](di).Run(appCtx); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}

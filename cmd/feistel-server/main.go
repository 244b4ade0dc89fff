package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/dspruth/feistel-edu/feistel/remote"
)

var (
	configPath = flag.String("config", "", "JSON config file")
	addr       = flag.String("addr", "", "listen address, overrides the config file")
	verbose    = flag.Bool("v", false, "debug logging")
)

func main() {
	customFormatter := new(log.TextFormatter)
	customFormatter.TimestampFormat = "2006-01-02 15:04:05"
	customFormatter.FullTimestamp = true
	log.SetFormatter(customFormatter)

	flag.Parse()
	if *verbose {
		log.SetLevel(log.DebugLevel)
	}

	cfg := remote.DefaultServerConfig()
	if *configPath != "" {
		var err error
		cfg, err = remote.LoadServerConfig(*configPath)
		if err != nil {
			log.Fatalf("Read config fail, err:%v, config:%s", err, *configPath)
		}
	}
	if *addr != "" {
		cfg.Addr = *addr
	}
	log.Infof("Config:%+v", cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := remote.NewServer(cfg, log.StandardLogger())
	if err := srv.Listen(); err != nil {
		log.Fatalf("Listen fail, err:%v, addr:%s", err, cfg.Addr)
	}
	if err := srv.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("Serve fail, err:%v", err)
	}
	log.Info("Server stopped")
}

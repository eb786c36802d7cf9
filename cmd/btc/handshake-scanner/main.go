package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/goodnatureofminers/btc-handshake-scanner/internal/metrics"
	"github.com/goodnatureofminers/btc-handshake-scanner/internal/peer"
	"github.com/goodnatureofminers/btc-handshake-scanner/internal/scanner"
	"github.com/goodnatureofminers/btc-handshake-scanner/internal/seed"
	"github.com/goodnatureofminers/btc-handshake-scanner/internal/wire"
)

type config struct {
	Network      string        `long:"network" env:"HANDSHAKE_NETWORK" description:"bitcoin network (mainnet, testnet3, signet, regtest, namecoin)" default:"mainnet"`
	Port         uint16        `long:"port" env:"HANDSHAKE_PORT" description:"peer port, defaults to the network's port"`
	Services     uint64        `long:"services" env:"HANDSHAKE_SERVICES" description:"services bitfield advertised by this node" default:"0"`
	RecvServices uint64        `long:"receiving-services" env:"HANDSHAKE_RECEIVING_SERVICES" description:"services bitfield placed in the receiver address record" default:"0"`
	Timeout      time.Duration `long:"timeout" env:"HANDSHAKE_TIMEOUT" description:"overall deadline shared by the whole sweep" default:"10s"`
	Workers      int           `long:"workers" env:"HANDSHAKE_WORKERS" description:"concurrent handshake workers" default:"16"`
	DialRPS      int           `long:"dial-rps" env:"HANDSHAKE_DIAL_RPS" description:"handshake attempts per second, 0 for unpaced" default:"0"`
	UserAgent    string        `long:"user-agent" env:"HANDSHAKE_USER_AGENT" description:"user agent sent in the version message"`
	StartHeight  int32         `long:"start-height" env:"HANDSHAKE_START_HEIGHT" description:"best block height advertised in the version message" default:"0"`
	StrictAck    bool          `long:"strict-ack" env:"HANDSHAKE_STRICT_ACK" description:"require an explicit verack instead of accepting a silent close"`
	MetricsAddr  string        `long:"metrics-addr" env:"HANDSHAKE_METRICS_ADDR" description:"optional prometheus listen address"`
	Args         struct {
		Seed string `positional-arg-name:"seed" description:"DNS seed hostname to query"`
	} `positional-args:"true" required:"true"`
}

func main() {
	cfg := config{}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic("can't initialize zap logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync()
	}()

	if _, err := flags.ParseArgs(&cfg, os.Args); err != nil {
		var ferr *flags.Error
		if errors.As(err, &ferr) && ferr.Type == flags.ErrHelp {
			return
		}
		logger.Fatal("failed to parse flags", zap.Error(err))
	}

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("handshake sweep failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg config, logger *zap.Logger) error {
	params, err := wire.ParamsFor(wire.Network(cfg.Network))
	if err != nil {
		return err
	}
	port := cfg.Port
	if port == 0 {
		port = params.DefaultPort
	}

	if cfg.MetricsAddr != "" {
		serveMetrics(ctx, cfg.MetricsAddr, logger)
	}

	resolver, err := seed.New(logger)
	if err != nil {
		return fmt.Errorf("init seed resolver: %w", err)
	}

	session := peer.New(peer.Config{
		Params:       params,
		Services:     wire.ServiceFlag(cfg.Services),
		RecvServices: wire.ServiceFlag(cfg.RecvServices),
		UserAgent:    cfg.UserAgent,
		StartHeight:  cfg.StartHeight,
		StrictAck:    cfg.StrictAck,
	}, logger)

	sc, err := scanner.New(scanner.Config{
		Seed:    cfg.Args.Seed,
		Port:    port,
		Timeout: cfg.Timeout,
		Workers: cfg.Workers,
		DialRPS: cfg.DialRPS,
	}, resolver, session, metrics.NewSweep(cfg.Network), logger)
	if err != nil {
		return err
	}

	_, err = sc.Run(ctx)
	return err
}

func serveMetrics(ctx context.Context, addr string, logger *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	s := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		_ = s.Shutdown(context.Background())
	}()
	go func() {
		logger.Info("serving metrics", zap.String("addr", addr))
		if err := s.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server stopped", zap.Error(err))
		}
	}()
}

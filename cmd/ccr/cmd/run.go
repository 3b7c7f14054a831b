package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/evote-ccr/control-component/engine/returncodes"
	"github.com/evote-ccr/control-component/module/exactlyonce"
	"github.com/evote-ccr/control-component/module/metrics"
	protocol "github.com/evote-ccr/control-component/module/returncodes"
	"github.com/evote-ccr/control-component/module/signature"
	"github.com/evote-ccr/control-component/network/codec/cbor"
	"github.com/evote-ccr/control-component/network/http"
	bstorage "github.com/evote-ccr/control-component/storage/badger"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Serve the return codes protocol",
	RunE:  run,
}

func init() {
	runCmd.Flags().String("listen", ":8080", "address of the HTTP ingress and metrics endpoint")
	runCmd.Flags().Int("workers", 8, "number of workers processing submitted messages")
	runCmd.Flags().Float64("rate-limit", 0, "messages per second accepted by the HTTP ingress, 0 disables the limit")
	runCmd.Flags().Int("rate-burst", 10, "burst of messages accepted above the rate limit")
	runCmd.Flags().String("publish-url", "", "broker endpoint responses are posted to")
	runCmd.Flags().Duration("publish-timeout", 10*time.Second, "timeout of a single publish attempt")
	runCmd.Flags().Uint64("publish-retries", 5, "number of publish retries")
	runCmd.Flags().Uint32("publish-breaker-failures", 5, "consecutive failed publications opening the circuit breaker")
	runCmd.Flags().Duration("publish-breaker-timeout", 30*time.Second, "time the circuit breaker stays open")
	runCmd.Flags().String("signing-key", "", "hex encoded secp256k1 private key signing the responses")
	runCmd.Flags().String("signing-alias", "", "alias of the signing key, defaults to ccr-<node-id>")
	runCmd.Flags().StringToString("trusted-keys", nil, "trusted senders as alias=hex public key")
	bindFlags(runCmd)
}

func run(_ *cobra.Command, _ []string) error {
	config, err := loadConfig()
	if err != nil {
		return err
	}
	nodeID, err := config.nodeID()
	if err != nil {
		return err
	}
	if config.PublishURL == "" {
		return errors.New("publish-url must be set")
	}
	signer, err := signature.NewKeySignerFromHex(config.SigningAlias, config.SigningKey)
	if err != nil {
		return fmt.Errorf("invalid signing-key: %w", err)
	}
	trust, err := signature.NewTrustStore(config.TrustedKeys)
	if err != nil {
		return fmt.Errorf("invalid trusted-keys: %w", err)
	}

	db, err := config.openDB(false)
	if err != nil {
		return err
	}
	defer db.Close()

	registerer := prometheus.DefaultRegisterer
	cacheMetrics := metrics.NewCacheCollector(registerer)
	commandMetrics := metrics.NewExactlyOnceCollector(registerer)
	stepMetrics := metrics.NewReturnCodesCollector(registerer)
	engineMetrics := metrics.NewEngineCollector(registerer)
	httpMetrics := metrics.NewHTTPCollector(registerer)

	all := bstorage.InitAll(cacheMetrics, db)
	codec := cbor.NewCodec()
	publisher := http.NewPublisher(log, config.PublishURL, codec, config.PublishTimeout, config.PublishRetries, config.breakerConfig())

	steps := protocol.NewProtocol(log, all.VerificationCardStates, all.Contributions, all.AllowLists, stepMetrics)
	engine := returncodes.New(
		log,
		nodeID,
		all,
		codec,
		signer,
		trust,
		publisher,
		exactlyonce.NewProcessor(log, db, all.Commands, commandMetrics),
		steps,
		protocol.NewLCCShareService(log, steps, all.Contributions, stepMetrics),
		engineMetrics,
		config.Workers,
	)
	defer engine.Stop()

	server := http.NewServer(log, config.serverConfig(), codec, engine, prometheus.DefaultGatherer, httpMetrics)
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.ListenAndServe()
	}()

	log.Info().
		Str("node_id", nodeID.String()).
		Str("signing_alias", signer.Alias()).
		Int("trusted_keys", len(config.TrustedKeys)).
		Msg("node started")

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-signals:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("http ingress failed: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return server.Shutdown(ctx)
}

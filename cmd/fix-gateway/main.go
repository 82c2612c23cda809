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

	"go.uber.org/zap"

	"github.com/tradewire/fixgate/internal/config"
	"github.com/tradewire/fixgate/internal/fix"
	"github.com/tradewire/fixgate/internal/journal"
	"github.com/tradewire/fixgate/internal/logging"
	"github.com/tradewire/fixgate/internal/observability"
	"github.com/tradewire/fixgate/internal/relay"
)

func main() {
	// Load configuration
	cfg := config.LoadConfig("fix-gateway")

	// Initialize logger
	logger, err := logging.NewLogger(cfg.ServiceName, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting fix-gateway service",
		zap.String("fix_addr", cfg.FIX.Addr()),
		zap.String("fix_version", string(cfg.FIX.Version)),
		zap.String("journal_path", cfg.JournalPath),
		zap.String("kafka_brokers", cfg.KafkaBrokers),
		zap.Int("http_port", cfg.HTTPPort),
	)

	// Open execution journal
	jnl, err := journal.Open(cfg.JournalPath)
	if err != nil {
		logger.Fatal("failed to open execution journal", zap.Error(err))
	}
	defer jnl.Close()

	logger.Info("execution journal opened", zap.String("path", cfg.JournalPath))

	// Create Kafka relay when brokers are configured
	var producer *relay.Producer
	if brokers := cfg.Brokers(); len(brokers) > 0 {
		producer, err = relay.NewProducer(brokers, cfg.ExecutionsTopic, logger)
		if err != nil {
			logger.Fatal("failed to create kafka producer", zap.Error(err))
		}
		defer producer.Close()
	} else {
		logger.Info("kafka relay disabled, no brokers configured")
	}

	// Create FIX client
	client, err := fix.NewClient(cfg.FIX, cfg.Credentials(), logger)
	if err != nil {
		logger.Fatal("invalid fix configuration", zap.Error(err))
	}

	// Start HTTP health server
	healthChecker := observability.NewHealthChecker(client.State, logger)
	httpErrCh := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf(":%d", cfg.HTTPPort)
		if err := healthChecker.StartHTTPServer(addr); err != nil && err != http.ErrServerClosed {
			httpErrCh <- err
		}
	}()

	// Connect the FIX session
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := client.ConnectWithRetry(ctx); err != nil {
		logger.Fatal("failed to establish fix session", zap.Error(err))
	}

	// Consume inbound business messages
	consumeErrCh := make(chan error, 1)
	go func() {
		consumeErrCh <- consume(ctx, client, jnl, producer, logger)
	}()

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("received shutdown signal", zap.String("signal", sig.String()))
	case err := <-consumeErrCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("message consumer stopped", zap.Error(err))
		}
	case err := <-httpErrCh:
		logger.Error("http server failed", zap.Error(err))
	}

	// Graceful teardown: logout, close transport, stop HTTP server
	cancel()
	if err := client.Disconnect(); err != nil {
		logger.Warn("disconnect failed", zap.Error(err))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := healthChecker.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown failed", zap.Error(err))
	}

	logger.Info("fix-gateway stopped")
}

// consume drains the client's business messages, journaling and relaying
// execution reports.
func consume(ctx context.Context, client *fix.Client, jnl *journal.Journal, producer *relay.Producer, logger *zap.Logger) error {
	for {
		msg, err := client.NextMessage(ctx)
		if err != nil {
			return err
		}

		msgType, _ := msg.MsgType()
		switch msgType {
		case fix.MsgTypeExecutionReport:
			report, err := fix.ParseExecutionReport(msg)
			if err != nil {
				logger.Warn("failed to parse execution report", zap.Error(err))
				continue
			}
			handleExecution(ctx, report, jnl, producer, logger)
		case fix.MsgTypeOrderCancelReject:
			reject, err := fix.ParseOrderCancelReject(msg)
			if err != nil {
				logger.Warn("failed to parse cancel reject", zap.Error(err))
				continue
			}
			logger.Warn("order cancel rejected",
				zap.String("cl_ord_id", reject.ClOrdID),
				zap.String("orig_cl_ord_id", reject.OrigClOrdID),
				zap.String("reason", reject.CxlRejReason),
				zap.String("text", reject.Text),
			)
		case fix.MsgTypeMarketDataSnapshot:
			snapshot, err := fix.ParseMarketDataSnapshot(msg)
			if err != nil {
				logger.Warn("failed to parse market data snapshot", zap.Error(err))
				continue
			}
			logger.Info("market data snapshot",
				zap.String("md_req_id", snapshot.MDReqID),
				zap.String("symbol", snapshot.Symbol),
			)
		default:
			logger.Debug("unhandled business message", zap.Stringer("msg_type", msgType))
		}
	}
}

func handleExecution(ctx context.Context, report *fix.ExecutionReport, jnl *journal.Journal, producer *relay.Producer, logger *zap.Logger) {
	logger.Info("execution report",
		zap.String("exec_id", report.ExecID),
		zap.String("cl_ord_id", report.ClOrdID),
		zap.Stringer("exec_type", report.ExecType),
		zap.Stringer("ord_status", report.OrdStatus),
		zap.String("symbol", report.Symbol),
		zap.Float64("cum_qty", report.CumQty),
	)

	duplicate, err := jnl.Record(ctx, report)
	if err != nil {
		logger.Error("failed to journal execution", zap.Error(err))
	} else if duplicate {
		logger.Debug("duplicate execution skipped", zap.String("exec_id", report.ExecID))
		return
	}

	if producer != nil {
		if err := producer.PublishExecution(ctx, report); err != nil {
			logger.Error("failed to publish execution event", zap.Error(err))
		}
	}
}

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"servicemon/internal/config"
	"servicemon/internal/logging"
	"servicemon/internal/notify"
	"servicemon/internal/probe"
	"servicemon/internal/runner"
)

// passwordEnv names the variable holding the SMTP app password. It is the
// one secret the config document must not carry.
const passwordEnv = "EMAIL_APP_PASSWORD"

var defaultSMTPAddr = fmt.Sprintf("%s:%d", notify.DefaultSMTPHost, notify.DefaultSMTPPort)

type options struct {
	path     string
	debug    bool
	dryRun   bool
	check    bool
	attempts int
	delay    time.Duration
	logDir   string
	smtpAddr string
}

func main() {
	var opts options
	flag.StringVar(&opts.path, "path", "./config.json", "path to the config file")
	flag.StringVar(&opts.path, "p", "./config.json", "shorthand for -path")
	flag.BoolVar(&opts.debug, "debug", false, "enable debug logging")
	flag.BoolVar(&opts.dryRun, "dry-run", false, "print alerts to stdout instead of mailing them")
	flag.BoolVar(&opts.check, "check", false, "validate config and mail setup, then exit")
	flag.IntVar(&opts.attempts, "attempts", probe.DefaultAttempts, "attempts per test")
	flag.DurationVar(&opts.delay, "retry-delay", probe.DefaultDelay, "pause between failed attempts")
	flag.StringVar(&opts.logDir, "log-dir", "logs", "directory for log files")
	flag.StringVar(&opts.smtpAddr, "smtp-addr", defaultSMTPAddr, "SMTP host:port for alert mail")
	flag.Parse()

	logger, err := logging.NewLogger(opts.logDir, opts.debug)
	if err != nil {
		log.Fatal(err)
	}

	err = run(logger, opts)
	_ = logger.Sync()
	if err != nil {
		os.Exit(1)
	}
}

func run(logger *zap.Logger, opts options) error {
	// Best effort: a missing .env just means the password comes from the
	// real environment.
	_ = godotenv.Load()

	cfg, err := config.Load(opts.path)
	if err != nil {
		logger.Error("config_load_error", zap.String("path", opts.path), zap.Error(err))
		return err
	}
	logger.Info("config_loaded",
		zap.String("path", opts.path),
		zap.Int("tests", len(cfg.Tests)),
		zap.Int("recipients", len(cfg.Contacts.Recipients)),
	)

	notifier, err := buildNotifier(logger, cfg, opts)
	if err != nil {
		return err
	}

	if opts.check {
		logger.Info("config_ok", zap.String("path", opts.path))
		return nil
	}

	exec := probe.NewHTTPExecutor(probe.DefaultTimeout, logger)
	retrier := probe.NewRetrier(exec, opts.attempts, opts.delay, logger)
	sweep := runner.New(logger, retrier)

	ctx := context.Background()
	report, runErr := sweep.Run(ctx, cfg.Tests)
	return route(ctx, logger, notifier, report, runErr)
}

// route delivers the sweep outcome to the right audience. A report of
// failing probes goes to the full recipient list and the run still counts
// as successful; a broken runner alerts the operators alone and the error
// comes back so the process exits non-zero.
func route(ctx context.Context, logger *zap.Logger, notifier notify.Notifier, report *runner.Report, runErr error) error {
	if runErr != nil {
		logger.Error("runner_error", zap.Error(runErr))
		if sendErr := notifier.Send(ctx, "Runner error: "+runErr.Error(), notify.AudienceOperators); sendErr != nil {
			logger.Error("alert_send_error", zap.Error(sendErr))
			runErr = multierr.Append(runErr, sendErr)
		}
		return runErr
	}

	if report != nil {
		logger.Warn("tests_failed_sending_alert", zap.Int("failed", len(report.Failed)))
		if sendErr := notifier.Send(ctx, report.Render(), notify.AudienceAll); sendErr != nil {
			logger.Error("alert_send_error", zap.Error(sendErr))
		}
		return nil
	}

	logger.Info("all_tests_passed")
	return nil
}

// buildNotifier assembles the sink the sweep will alert through. With
// -dry-run no credential is needed and nothing leaves the process.
func buildNotifier(logger *zap.Logger, cfg *config.Config, opts options) (notify.Notifier, error) {
	if opts.dryRun {
		return &notify.Writer{Out: os.Stdout}, nil
	}

	host, port, err := splitSMTPAddr(opts.smtpAddr)
	if err != nil {
		logger.Error("smtp_addr_error", zap.String("addr", opts.smtpAddr), zap.Error(err))
		return nil, err
	}

	email, err := notify.NewEmail(cfg.Contacts, cfg.Email, host, port, os.Getenv(passwordEnv))
	if err != nil {
		logger.Error("credential_error", zap.String("env", passwordEnv), zap.Error(err))
		return nil, err
	}
	return email, nil
}

func splitSMTPAddr(addr string) (string, int, error) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return "", 0, fmt.Errorf("smtp addr %q: %w", addr, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", 0, fmt.Errorf("smtp addr %q: %w", addr, err)
	}
	return host, port, nil
}

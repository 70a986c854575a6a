// Command formioctl reads and writes Form.io forms and submissions from the
// command line.
//
// Usage:
//
//	formioctl [flags] <command> [args]
//
// Settings come from -config, -env and FORMIO_* variables; see
// [github.com/formio/formio.go/pkg/config]. Commands:
//
//	whoami                       print the current user
//	forms                        list forms (-limit, -skip, -type)
//	form <path>                  print a form
//	submissions <path>           list submissions (-limit, -skip, -where k=v)
//	submission <path> <id>       print a submission
//	submit <path> <file|->       create or update a submission from JSON
//	delete <path> [id]           delete a form, or one of its submissions
//	roles                        list project roles
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	formio "github.com/formio/formio.go"
	"github.com/formio/formio.go/contrib/formiometrics"
	"github.com/formio/formio.go/contrib/ratelimit"
	"github.com/formio/formio.go/pkg/config"
)

var errUsage = errors.New("usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr, nil)
	if errors.Is(err, errUsage) || errors.Is(err, flag.ErrHelp) {
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run executes one command. client, when set, replaces the HTTP client the
// configuration would build.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer, client *http.Client) error {
	fs := flag.NewFlagSet("formioctl", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		configFile  string
		envFile     string
		baseURL     string
		projectURL  string
		token       string
		logLevel    string
		metricsAddr string
	)
	fs.StringVar(&configFile, "config", "", "YAML configuration file")
	fs.StringVar(&envFile, "env", "", "Dotenv file with FORMIO_* variables")
	fs.StringVar(&baseURL, "base", "", "API base URL (overrides configuration)")
	fs.StringVar(&projectURL, "project", "", "Project URL (overrides configuration)")
	fs.StringVar(&token, "token", "", "JWT token (overrides configuration)")
	fs.StringVar(&logLevel, "log-level", "", "Log level (overrides configuration)")
	fs.StringVar(&metricsAddr, "metrics", "", "Serve Prometheus metrics on this address while running")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: formioctl [flags] <command> [args]")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return errUsage
	}

	cfg, err := config.Load(config.Options{File: configFile, EnvFile: envFile})
	if err != nil {
		return err
	}
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if projectURL != "" {
		cfg.ProjectURL = projectURL
	}
	if token != "" {
		cfg.Token = token
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	logData, err := cfg.Logger()
	if err != nil {
		return err
	}
	defer logData.Close()
	log := logData.Logger
	if cfg.LogPath == "" {
		log = log.Output(zerolog.ConsoleWriter{Out: stderr})
	}

	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	c, err := cfg.NewContext(log, formio.WithHTTPClient(client))
	if err != nil {
		return err
	}

	if cfg.RateLimit > 0 {
		ratelimit.New(cfg.RateLimit, cfg.RateBurst, log).Register(c)
	}
	if metricsAddr != "" {
		stopMetrics, err := serveMetrics(metricsAddr, c, client, log)
		if err != nil {
			return err
		}
		defer stopMetrics()
	}

	cmd := &commands{ctx: c, in: stdin, out: stdout}
	return cmd.dispatch(ctx, fs.Arg(0), fs.Args()[1:])
}

func serveMetrics(addr string, c *formio.Context, client *http.Client, log zerolog.Logger) (func(), error) {
	reg := prometheus.NewRegistry()
	col, err := formiometrics.NewCollector("formioctl", reg)
	if err != nil {
		return nil, err
	}
	col.Register(c, client)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Str("addr", addr).Msg("metrics server stopped")
		}
	}()
	return func() { _ = srv.Close() }, nil
}

// Package harness holds the plumbing shared by the drip-health and
// drip-ml-test commands: common flags, client bootstrap and reporting.
package harness

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/vertti/dripcheck/pkg/check"
	"github.com/vertti/dripcheck/pkg/config"
	"github.com/vertti/dripcheck/pkg/drip"
	"github.com/vertti/dripcheck/pkg/logging"
	"github.com/vertti/dripcheck/pkg/output"
	"github.com/vertti/dripcheck/pkg/promexport"
)

// ErrChecksFailed is returned when at least one check or scenario failed.
// The report has already been printed, so callers only set the exit code.
var ErrChecksFailed = errors.New("checks failed")

// Flags are the options both commands accept.
type Flags struct {
	Verbose     bool
	JSON        bool
	Debug       bool
	EnvFile     string
	MetricsFile string
}

// Register adds the shared flags to fs.
func (f *Flags) Register(fs *pflag.FlagSet) {
	fs.BoolVarP(&f.Verbose, "verbose", "v", false, "show extra details")
	fs.BoolVar(&f.JSON, "json", false, "print the report as JSON")
	fs.BoolVar(&f.Debug, "debug", false, "log API requests to stderr")
	fs.StringVar(&f.EnvFile, "env-file", ".env", "dotenv file to load (ignored if missing)")
	fs.StringVar(&f.MetricsFile, "metrics-file", "", "write Prometheus textfile metrics to this path")
}

// Env is a bootstrapped harness: configuration, logger and API client.
type Env struct {
	Config *config.Config
	Logger *zap.Logger
	Client *drip.Client
}

// Bootstrap loads configuration and constructs the client. Any error here
// is fatal for the command.
func Bootstrap(f Flags) (*Env, error) {
	cfg, err := config.Load(f.EnvFile)
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(f.Debug || cfg.Debug)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	client, err := drip.NewClient(cfg.ClientConfig(), drip.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	return &Env{Config: cfg, Logger: logger, Client: client}, nil
}

// Close flushes the logger.
func (e *Env) Close() {
	_ = e.Logger.Sync()
}

// PrintContext prints the target URL and customer in verbose mode.
func (e *Env) PrintContext(w io.Writer, f Flags) {
	if !f.Verbose || f.JSON {
		return
	}
	output.Dimf(w, "API URL:  %s", e.Config.DisplayURL())
	output.Dimf(w, "Customer: %s", e.Config.CustomerID)
	fmt.Fprintln(w)
}

// Report describes how a command presents its results.
type Report struct {
	Noun     string // "checks" or "scenarios"
	Suite    string // metrics label
	Width    int    // rule width
	Separate bool   // blank line between results
}

// Write prints the results (or JSON), exports metrics when requested, and
// returns ErrChecksFailed unless everything passed.
func (r Report) Write(w io.Writer, results []check.Result, f Flags) error {
	if f.JSON {
		if err := output.PrintJSON(w, results); err != nil {
			return fmt.Errorf("failed to write JSON report: %w", err)
		}
	} else {
		output.PrintResults(w, results, f.Verbose, r.Separate)
		output.PrintSummary(w, results, r.Noun, r.Width)
	}

	if f.MetricsFile != "" {
		if err := promexport.WriteFile(f.MetricsFile, r.Suite, results); err != nil {
			return err
		}
	}

	if !check.AllPassed(results) {
		return ErrChecksFailed
	}
	return nil
}

// PrintFatal reports an error that ended the command. ErrChecksFailed is
// silent because the report already shows the failures.
func PrintFatal(w io.Writer, err error) {
	if err == nil || errors.Is(err, ErrChecksFailed) {
		return
	}
	output.Errorf(w, "FATAL: %v", err)

	if errors.Is(err, drip.ErrMissingAPIKey) || errors.Is(err, drip.ErrAuthentication) {
		fmt.Fprintln(w, "Ensure DRIP_API_KEY is set.")
	}
}

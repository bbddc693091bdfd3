package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"grafik/internal/admin"
	"grafik/pkg/adapters"
	"grafik/pkg/arguments"
	"grafik/pkg/db"
	"grafik/pkg/journal"
	"grafik/pkg/logger"
	"grafik/pkg/metrics"
	"grafik/pkg/otlp"
)

// defaultTable receives the records when the configuration does
// not name one.
const defaultTable = "grafik_logs"

// facadeFrames is the number of frames between the code calling the
// facade and the console backend.
const facadeFrames = 3

// options :
// The values provided on the command line.
type options struct {
	configFile string
	backend    string
	level      string
	adminPort  int
	demo       bool
}

func parseFlags(args []string) (options, *pflag.FlagSet, error) {
	var opts options

	flags := pflag.NewFlagSet("grafik_logger", pflag.ContinueOnError)
	flags.StringVarP(&opts.configFile, "config", "c", "", "configuration file to use (local/staging/production)")
	flags.StringVarP(&opts.backend, "backend", "b", "", fmt.Sprintf("logging library to use (%s)", strings.Join(adapters.Backends, ", ")))
	flags.StringVarP(&opts.level, "level", "l", "", "minimum severity displayed on the console")
	flags.IntVar(&opts.adminPort, "admin-port", 0, "port of the admin end points")
	flags.BoolVar(&opts.demo, "demo", false, "emit one record of each severity on start")

	err := flags.Parse(args)
	return opts, flags, err
}

// sinks :
// Gathers the loggers built from the configuration along with
// what needs to be released on exit.
type sinks struct {
	console  logger.Logger
	journals []*journal.Journal
	cleanup  []func()
}

// release :
// Closes the journals, flushing their pending records, then the
// connections they used and finally the console backend.
func (s *sinks) release() {
	for _, j := range s.journals {
		if err := j.Close(); err != nil {
			s.console.Error("Could not flush journal on exit (err: %v)", err)
		}
	}
	for i := len(s.cleanup) - 1; i >= 0; i-- {
		s.cleanup[i]()
	}

	adapters.Release(s.console)
}

func (s *sinks) dropCounters() []admin.DropCounter {
	out := make([]admin.DropCounter, 0, len(s.journals))
	for _, j := range s.journals {
		out = append(out, j)
	}
	return out
}

// buildJournals :
// Creates a journal for each store set up in the configuration.
// The journals report their own failures to the console only.
func buildJournals(ctx context.Context, s *sinks, source journal.Source) error {
	config := journal.ParseConfiguration()

	if db.Configured() {
		dbase, err := db.NewPool(s.console)
		if err != nil {
			return err
		}
		s.cleanup = append(s.cleanup, dbase.Close)

		table := defaultTable
		if viper.IsSet("Database.Table") {
			table = viper.GetString("Database.Table")
		}

		store, err := db.NewJournalStore(dbase, table)
		if err != nil {
			return err
		}
		if err := store.EnsureSchema(ctx); err != nil {
			s.console.Warn("Could not create journal table \"%s\" (err: %v)", table, err)
		}

		j, err := journal.New(store, config, source, s.console)
		if err != nil {
			return err
		}
		s.journals = append(s.journals, j)
	}

	if otlpConfig := otlp.ParseConfiguration(); len(otlpConfig.Endpoint) > 0 {
		conn, err := otlp.Dial(otlpConfig)
		if err != nil {
			return err
		}
		s.cleanup = append(s.cleanup, func() {
			_ = conn.Close()
		})

		j, err := journal.New(otlp.NewExporter(conn, s.console), config, source, s.console)
		if err != nil {
			return err
		}
		s.journals = append(s.journals, j)
	}

	return nil
}

// demo emits one record of each severity through the facade.
func demo() {
	logger.Trace("Trace message")
	logger.Debug("Debug message")
	logger.Info("Info message")
	logger.Warn("Warning message")
	logger.Error("Error message")
	logger.Critical("Critical message")
}

func run(args []string) int {
	opts, flags, err := parseFlags(args)
	if errors.Is(err, pflag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 2
	}

	metadata, err := arguments.Parse(opts.configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}
	if flags.Changed("admin-port") {
		metadata.Port = opts.adminPort
	}

	config := logger.ParseConfiguration()
	if !viper.IsSet("Logger.Environment") {
		config.Environment = metadata.Environment
	}
	if len(opts.level) > 0 {
		if config.Level, err = logger.ParseSeverity(opts.level); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			return 2
		}
	}

	backend := opts.backend
	if len(backend) == 0 {
		backend = viper.GetString("Logger.Backend")
	}

	console, err := adapters.New(backend, config, metadata.InstanceID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 2
	}

	s := &sinks{console: console}
	defer s.release()

	// The records of the facade go through the facade function, the
	// multi logger and the counting logger before reaching the console.
	counting, err := metrics.NewCountingLogger(adapters.WithCallerSkip(console, facadeFrames), nil)
	if err != nil {
		console.Error("Could not register metrics (err: %v)", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	instanceID := metadata.InstanceID
	if config.ForceLocal {
		instanceID = "local"
	}
	if err := buildJournals(ctx, s, journal.Source{AppName: config.AppName, InstanceID: instanceID}); err != nil {
		console.Error("Could not set up journals (err: %v)", err)
		return 1
	}

	loggers := []logger.Logger{counting}
	for _, j := range s.journals {
		loggers = append(loggers, j)
	}
	logger.SetDefault(logger.NewMultiLogger(loggers...))
	defer logger.SetDefault(console)

	if opts.demo {
		demo()
	}

	level, _ := console.(logger.Leveler)
	server := admin.NewServer(admin.Options{
		AppName:  config.AppName,
		Metadata: metadata,
		Level:    level,
		Journals: s.dropCounters(),
	}, console)

	logger.Info("Starting %s (env: %s, backend: %s, journals: %d)", config.AppName, config.Environment, backend, len(s.journals))

	if err := server.Serve(ctx); err != nil {
		logger.Error("Admin server failed (err: %v)", err)
		return 1
	}

	return 0
}

func main() {
	os.Exit(run(os.Args[1:]))
}

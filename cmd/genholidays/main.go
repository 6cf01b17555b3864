// Command genholidays maintains the Chinese public holiday records of the
// cnholiday package.
//
// It finds the State Council holiday notice of a year through the gov.cn
// search API, extracts the notice paragraphs, parses them into records and
// merges them into a record file. The record file can be queried, converted
// between formats, exported as iCalendar, and compiled into the Go source of
// the package's built-in data.
//
// Usage:
//
//	genholidays fetch --year 2024 --output holidays.json
//	genholidays gosrc --data holidays.json --output ../../builtin_data.go
package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := newRootCmd(nil).ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

// app carries the state shared by all subcommands.
type app struct {
	configPath string
	debug      bool

	cfg *config
	log *zap.Logger
}

// newRootCmd builds the command tree. A nil logger is replaced by a zap
// logger configured from the --debug flag.
func newRootCmd(log *zap.Logger) *cobra.Command {
	a := &app{log: log}

	root := &cobra.Command{
		Use:           "genholidays",
		Short:         "Fetch, parse and export Chinese public holiday records",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init()
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = a.log.Sync()
		},
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "path to a YAML configuration file")
	root.PersistentFlags().BoolVar(&a.debug, "debug", false, "enable debug logging")

	root.AddCommand(
		a.fetchCmd(),
		a.parseCmd(),
		a.queryCmd(),
		a.exportCmd(),
		a.gosrcCmd(),
	)
	return root
}

func (a *app) init() error {
	if a.log == nil {
		var err error
		if a.log, err = newLogger(a.debug); err != nil {
			return err
		}
	}

	a.cfg = defaultConfig()
	if a.configPath == "" {
		return nil
	}
	data, err := os.ReadFile(a.configPath)
	if err != nil {
		return err
	}
	if err := a.cfg.Parse(data); err != nil {
		return err
	}
	a.log.Debug("loaded configuration", zap.String("path", a.configPath))
	return nil
}

func newLogger(debug bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if debug {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.OutputPaths = []string{"stderr"}
	log, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return log.Named("genholidays"), nil
}

// Package templatesync holds the templatesync command line
package templatesync

import (
	"context"
	"flag"
	"io"
	"log"

	"github.com/go-logr/logr"
	"github.com/go-logr/stdr"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"templatesync-pg-backend/internal/config"
	"templatesync-pg-backend/internal/infrastructure/repositories/factory"
	"templatesync-pg-backend/internal/infrastructure/repositories/sqlstore/writers"
)

// OpenRegistryFunc opens the registry of the configured database
type OpenRegistryFunc func(ctx context.Context, db config.Database, opts writers.Options) (factory.Registry, error)

// Options customize the command
type Options struct {
	// OpenRegistry defaults to factory.NewRegistry
	OpenRegistry OpenRegistryFunc
}

type globals struct {
	configPath string
	out        io.Writer
	errOut     io.Writer
	open       OpenRegistryFunc
}

// NewCommand creates the templatesync root command
func NewCommand(ctx context.Context, out, errOut io.Writer, opts Options) *cobra.Command {
	g := &globals{out: out, errOut: errOut, open: opts.OpenRegistry}
	if g.open == nil {
		g.open = factory.NewRegistry
	}

	cmd := &cobra.Command{
		Use:           "templatesync",
		Short:         "Mirror template graphs and host prototypes onto linked hosts",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetContext(ctx)
	cmd.PersistentFlags().StringVar(&g.configPath, "config", "", "Path to configuration file")
	// klog flags (-v, --vmodule) registered by main through klog.InitFlags
	cmd.PersistentFlags().AddGoFlagSet(flag.CommandLine)

	cmd.AddCommand(newLinkCommand(g), newSchemaCommand(g))
	return cmd
}

func (g *globals) loadConfig() (*config.Config, error) {
	cfg, err := config.NewConfig(g.configPath)
	if err != nil {
		return nil, errors.WithMessage(err, "failed to load configuration")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.WithMessage(err, "configuration validation failed")
	}
	return cfg, nil
}

func (g *globals) logger(cfg *config.Config) logr.Logger {
	v, _ := cfg.Log.Verbosity()
	stdr.SetVerbosity(v)
	return stdr.New(log.New(g.errOut, "", log.LstdFlags)).WithName(cfg.App.Name)
}

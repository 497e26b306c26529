package templatesync

import (
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"templatesync-pg-backend/internal/sync/audit"
	"templatesync-pg-backend/internal/sync/linker"
	"templatesync-pg-backend/internal/sync/monitoring"
)

type linkOptions struct {
	hosts     []uint
	templates []uint
}

func newLinkCommand(g *globals) *cobra.Command {
	o := &linkOptions{}
	cmd := &cobra.Command{
		Use:   "link",
		Short: "Synchronize host prototypes and graphs of templates onto hosts",
		Long: "Synchronize host prototypes and graphs of the given templates onto each host. " +
			"Every host is handled in its own transaction; results are printed as JSON lines.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return g.runLink(cmd, o)
		},
	}
	cmd.Flags().UintSliceVar(&o.hosts, "host", nil, "Host ids to link (repeatable)")
	cmd.Flags().UintSliceVar(&o.templates, "templates", nil, "Template ids linked to the hosts")
	_ = cmd.MarkFlagRequired("host")
	_ = cmd.MarkFlagRequired("templates")
	return cmd
}

func (g *globals) runLink(cmd *cobra.Command, o *linkOptions) error {
	ctx := cmd.Context()
	cfg, err := g.loadConfig()
	if err != nil {
		return err
	}
	program, err := cfg.Sync.Program()
	if err != nil {
		return err
	}
	logger := g.logger(cfg)

	registry, err := g.open(ctx, cfg.Database, cfg.Sync.WriterOptions())
	if err != nil {
		return errors.WithMessage(err, "failed to open registry")
	}
	defer registry.Close()

	var (
		gatherer *prometheus.Registry
		metrics  *monitoring.Metrics
	)
	if cfg.Metrics.TextFile != "" {
		gatherer = prometheus.NewRegistry()
		metrics = monitoring.NewMetrics(gatherer)
	}

	l := linker.New(registry, audit.LogEmitter{Logger: logger.WithName("audit")}, linker.Options{
		Program:     program,
		PassRate:    cfg.Sync.PassRate,
		PassBurst:   cfg.Sync.PassBurst,
		PassTimeout: cfg.Sync.PassTimeout,
		Metrics:     metrics,
	}, logger)

	templateIDs := toIDs(o.templates)
	reqs := make([]linker.Request, 0, len(o.hosts))
	for _, h := range o.hosts {
		reqs = append(reqs, linker.Request{HostID: uint64(h), TemplateIDs: templateIDs})
	}

	start := time.Now()
	results, linkErr := l.LinkAll(ctx, reqs)
	logger.Info("Link run finished", "hosts", len(reqs), "succeeded", len(results), "elapsed", time.Since(start))

	enc := json.NewEncoder(cmd.OutOrStdout())
	for _, r := range results {
		if err := enc.Encode(r); err != nil {
			return errors.Wrap(err, "failed to print result")
		}
	}
	if gatherer != nil {
		if err := monitoring.WriteTextFile(cfg.Metrics.TextFile, gatherer); err != nil {
			logger.Error(err, "Metrics not written")
		}
	}
	return linkErr
}

func toIDs(in []uint) []uint64 {
	out := make([]uint64, len(in))
	for i, v := range in {
		out[i] = uint64(v)
	}
	return out
}

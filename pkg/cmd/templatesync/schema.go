package templatesync

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"templatesync-pg-backend/internal/config"
	"templatesync-pg-backend/internal/infrastructure/repositories"
	"templatesync-pg-backend/internal/infrastructure/repositories/dialect"
)

type schemaOptions struct {
	dialect string
	apply   bool
}

func newSchemaCommand(g *globals) *cobra.Command {
	o := &schemaOptions{}
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print or apply the DDL of the synchronized tables",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return g.runSchema(cmd, o)
		},
	}
	cmd.Flags().StringVar(&o.dialect, "dialect", "", "SQL dialect: postgres or mysql (defaults to the database driver)")
	cmd.Flags().BoolVar(&o.apply, "apply", false, "Execute the statements instead of printing them")
	return cmd
}

func (g *globals) runSchema(cmd *cobra.Command, o *schemaOptions) error {
	ctx := cmd.Context()
	cfg, err := g.loadConfig()
	if err != nil {
		return err
	}
	program, err := cfg.Sync.Program()
	if err != nil {
		return err
	}

	name := o.dialect
	if name == "" {
		name = cfg.Database.Driver
		if name == config.DriverMemory {
			name = dialect.DriverPostgres
		}
	}
	d, err := dialect.New(name)
	if err != nil {
		return err
	}
	statements := dialect.SchemaStatements(d, repositories.TablesFor(program))

	if !o.apply {
		for _, s := range statements {
			if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s;\n", s); err != nil {
				return errors.Wrap(err, "failed to print schema")
			}
		}
		return nil
	}

	registry, err := g.open(ctx, cfg.Database, cfg.Sync.WriterOptions())
	if err != nil {
		return errors.WithMessage(err, "failed to open registry")
	}
	defer registry.Close()
	if err := registry.ApplySchema(ctx, statements); err != nil {
		return errors.WithMessage(err, "failed to apply schema")
	}
	g.logger(cfg).Info("Schema applied", "dialect", d.Name(), "program", program, "statements", len(statements))
	return nil
}

package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/tinoosan/bookkeeping/internal/config"
	"github.com/tinoosan/bookkeeping/internal/dictionary"
	"github.com/tinoosan/bookkeeping/internal/httpapi"
	"github.com/tinoosan/bookkeeping/internal/ledger"
	"github.com/tinoosan/bookkeeping/internal/period"
	"github.com/tinoosan/bookkeeping/internal/service/balance"
	"github.com/tinoosan/bookkeeping/internal/service/chart"
)

const sectionsLong = `Print the balances of the entity's accounts of the given types, grouped by category.
Without --entity the dev seed entity is used (in-memory backend or DEV_SEED).`

type sectionsOptions struct {
	entity  string
	types   string
	section string
	start   string
	end     string
	format  string
}

func newSectionsCommand(configPath *string) *cobra.Command {
	var opts sectionsOptions

	cmd := &cobra.Command{
		Use:   "sections",
		Short: "Print section balances grouped by category",
		Long:  sectionsLong,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			return runSections(cmd, cfg, opts)
		},
	}

	cmd.Flags().StringVar(&opts.entity, "entity", "", "entity id")
	cmd.Flags().StringVar(&opts.types, "types", "", "comma separated account types, e.g. BANK,RECEIVABLE")
	cmd.Flags().StringVar(&opts.section, "section", "", "statement section code, e.g. current_assets")
	cmd.Flags().StringVar(&opts.start, "start", "", "start date (RFC3339 or 2006-01-02)")
	cmd.Flags().StringVar(&opts.end, "end", "", "end date (RFC3339 or 2006-01-02), defaults to now")
	cmd.Flags().StringVar(&opts.format, "format", "text", "output format: text|json")
	cmd.MarkFlagsMutuallyExclusive("types", "section")
	cmd.MarkFlagsOneRequired("types", "section")

	return cmd
}

func runSections(cmd *cobra.Command, cfg *config.Config, opts sectionsOptions) error {
	ctx := cmd.Context()
	logger := buildLogger(cfg.Log, cmd.ErrOrStderr())

	types, err := sectionTypes(opts)
	if err != nil {
		return err
	}
	var start, end *time.Time
	if opts.start != "" {
		t, err := httpapi.ParseDate(opts.start, false)
		if err != nil {
			return err
		}
		start = &t
	}
	if opts.end != "" {
		t, err := httpapi.ParseDate(opts.end, true)
		if err != nil {
			return err
		}
		end = &t
	}
	labels, err := cfg.LabelOverrides()
	if err != nil {
		return err
	}

	b, err := openBackend(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer b.close()

	entityID, err := resolveEntity(opts.entity, b)
	if err != nil {
		return err
	}

	resolver := period.New(b.store, b.store, time.Now)
	balances := balance.New(b.store, b.store, resolver)
	svc := chart.New(b.store, balances, dictionary.New(labels), resolver)

	rc, err := resolver.Context(ctx, entityID)
	if err != nil {
		return fmt.Errorf("entity %s: %w", entityID, err)
	}
	sb, err := svc.SectionBalances(ctx, rc, types, start, end)
	if err != nil {
		return err
	}
	logger.Debug("sections computed", "entity_id", entityID, "types", types, "groups", len(sb.Order))

	switch opts.format {
	case "json":
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(sb)
	case "text":
		return printSections(cmd.OutOrStdout(), rc.Currency, sb)
	default:
		return fmt.Errorf("unknown format %q", opts.format)
	}
}

func sectionTypes(opts sectionsOptions) ([]ledger.AccountType, error) {
	if opts.section != "" {
		sec, ok := dictionary.SectionFor(opts.section)
		if !ok {
			return nil, fmt.Errorf("unknown section %q", opts.section)
		}
		return sec.Types, nil
	}
	types, err := httpapi.ParseTypes(opts.types)
	if err != nil {
		return nil, err
	}
	if len(types) == 0 {
		return nil, fmt.Errorf("--types is empty")
	}
	return types, nil
}

func resolveEntity(flag string, b *backend) (uuid.UUID, error) {
	if flag != "" {
		id, err := uuid.Parse(flag)
		if err != nil {
			return uuid.Nil, fmt.Errorf("--entity: %w", err)
		}
		return id, nil
	}
	if b.seed == nil {
		return uuid.Nil, fmt.Errorf("--entity is required with the %s backend", b.name)
	}
	return b.seed.Entity.ID, nil
}

func printSections(w io.Writer, currency string, sb chart.SectionBalances) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, name := range sb.Order {
		group := sb.Categories[name]
		fmt.Fprintf(tw, "%s\t\t%s\n", name, group.Total.StringFixed(2))
		for _, acc := range group.Accounts {
			fmt.Fprintf(tw, "  %d\t%s\t%s\n", acc.Code, acc.Name, acc.ClosingBalance.StringFixed(2))
		}
	}
	fmt.Fprintf(tw, "Total (%s)\t\t%s\n", currency, sb.Total.StringFixed(2))
	return tw.Flush()
}

func newTypesCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List account types with their labels and code bases",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			labels, err := cfg.LabelOverrides()
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			for _, d := range dictionary.New(labels).All() {
				fmt.Fprintf(tw, "%s\t%s\t%d\n", d.Type, d.Label, d.CodeBase)
			}
			return tw.Flush()
		},
	}
}

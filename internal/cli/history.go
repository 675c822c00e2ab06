package cli

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/fluidc/pkg/errors"
	"github.com/matzehuels/fluidc/pkg/history"
)

// historyCommand creates the history command.
func (c *CLI) historyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "history",
		Aliases: []string{"runs"},
		Short:   "List and inspect recorded runs",
	}

	cmd.AddCommand(c.historyListCommand())
	cmd.AddCommand(c.historyShowCommand())
	cmd.AddCommand(c.historyDeleteCommand())

	return cmd
}

// openStore opens the configured history store or fails when history is
// disabled.
func (c *CLI) openStore(cmd *cobra.Command) (history.Store, error) {
	cfg, err := c.config()
	if err != nil {
		return nil, err
	}
	store := c.openHistory(cmd.Context(), cfg.History)
	if store == nil {
		return nil, errors.New(errors.ErrCodeNotFound, "run history is disabled or unavailable")
	}
	return store, nil
}

func (c *CLI) historyListCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := c.openStore(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				printInfo("No runs recorded")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), runsTable(runs, time.Now()))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of runs")
	return cmd
}

func (c *CLI) historyShowCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show one recorded run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := errors.ValidateRunID(args[0]); err != nil {
				return err
			}
			store, err := c.openStore(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			run, err := store.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(run)
			}

			fmt.Println(StyleTitle.Render("Run " + run.ID))
			printKeyValue("Created", run.CreatedAt.Local().Format(time.DateTime))
			printKeyValue("Source", run.Source)
			printKeyValue("Options", fmt.Sprintf("k=%d seed=%d %s tie=%s order=%s refine=%v",
				run.Options.K, run.Options.Seed, run.Options.Variant, run.Options.TieBreak, run.Options.Order, run.Options.Refine))
			printKeyValue("Modularity", fmt.Sprintf("%.4f", run.Modularity))
			res := run.Result()
			printKeyValue("Stop", stopLabel(res))
			printStats(len(run.Nodes), 0, run.Rounds, run.CacheHit)
			fmt.Println(communityTable(res, 12))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the run as JSON")
	return cmd
}

func (c *CLI) historyDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <run-id>...",
		Short: "Delete recorded runs",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := c.openStore(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			for _, id := range args {
				if err := errors.ValidateRunID(id); err != nil {
					return err
				}
				if err := store.Delete(cmd.Context(), id); err != nil {
					return err
				}
			}
			printSuccess("Deleted %d runs", len(args))
			return nil
		},
	}
}

func runsTable(runs []*history.Run, now time.Time) string {
	rows := make([][]string, len(runs))
	for i, r := range runs {
		rows[i] = []string{
			r.ID,
			formatRelativeTime(r.CreatedAt, now),
			r.Source,
			strconv.Itoa(r.Options.K),
			r.Options.Variant,
			fmt.Sprintf("%.4f", r.Modularity),
			strconv.Itoa(r.Communities()),
			r.Stop,
		}
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("ID", "Created", "Source", "k", "Variant", "Modularity", "Communities", "Stop").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			if col == 0 || col == 1 {
				return lipgloss.NewStyle().Foreground(colorDim)
			}
			return lipgloss.NewStyle()
		}).
		Render()
}

func formatRelativeTime(t, now time.Time) string {
	diff := now.Sub(t)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	default:
		return t.Format("Jan 2, 2006")
	}
}

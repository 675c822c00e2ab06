package cli

import (
	"encoding/json"
	"fmt"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/fluidc/pkg/pipeline"
)

// trialsCommand creates the trials command.
func (c *CLI) trialsCommand() *cobra.Command {
	var (
		flags    detectionFlags
		trials   int
		parallel int
		browse   bool
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "trials [graph]",
		Short: "Run independent seeds and rank them by modularity",
		Long: `Run several detections with consecutive seeds in parallel and rank the
partitions by modularity. The best partition is recorded in history.`,
		Example: `  fluidc trials --dataset karate -k 2 --trials 32 --parallel 8
  fluidc trials graph.json -k 5 --seed 100 --browse`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.config()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("trials") {
				trials = cfg.Defaults.Trials
			}
			if !cmd.Flags().Changed("parallel") {
				parallel = cfg.Defaults.Parallel
			}

			in, err := flags.input(args)
			if err != nil {
				return err
			}
			g, err := pipeline.Load(in)
			if err != nil {
				return err
			}
			opts := flags.options(cmd, cfg, in)
			opts.Logger = c.Logger

			runner, err := c.newRunner(ctx, flags.noCache, flags.noHistory)
			if err != nil {
				return err
			}
			defer runner.Close()

			prog := newProgress(c.Logger)
			spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Running %d trials...", trials))
			if !asJSON {
				spinner.Start()
			}
			out, err := runner.Trials(ctx, g, opts, pipeline.TrialsOptions{
				Trials:   trials,
				Parallel: parallel,
				OnTrial: func(done, total int) {
					spinner.SetMessage("Running trials... %d/%d", done, total)
				},
			})
			if !asJSON {
				spinner.Stop()
			}
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			}
			prog.done(fmt.Sprintf("Ran %d trials", len(out.Trials)))

			if browse {
				_, err := tea.NewProgram(newTrialModel(out), tea.WithContext(ctx)).Run()
				return err
			}
			printTrials(out)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().IntVarP(&trials, "trials", "t", pipeline.DefaultTrials, "number of independent runs")
	cmd.Flags().IntVarP(&parallel, "parallel", "p", 0, "maximum concurrent runs (default one per trial)")
	cmd.Flags().BoolVar(&browse, "browse", false, "browse the trials interactively")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the ranked trials as JSON")

	return cmd
}

func printTrials(out *pipeline.TrialsResult) {
	best := out.Best()
	printSuccess("Best modularity %s with seed %d", StyleNumber.Render(fmt.Sprintf("%.4f", best.Modularity)), best.Seed)
	if out.CacheHit {
		printDetail("served from cache")
	}
	fmt.Println(trialsTable(out.Trials, 0, -1))
	printNextStep("Reproduce the best run", fmt.Sprintf("fluidc detect ... --seed %d", best.Seed))
}

// trialsTable renders ranked trials, the first of which has rank first+1.
// The row at cursor is highlighted; pass -1 for none.
func trialsTable(trials []pipeline.Trial, first, cursor int) string {
	rows := make([][]string, len(trials))
	for i, t := range trials {
		rows[i] = []string{
			strconv.Itoa(first + i + 1),
			strconv.FormatUint(t.Seed, 10),
			fmt.Sprintf("%.4f", t.Modularity),
			strconv.Itoa(t.Partition.Rounds),
			string(t.Partition.Stop),
			strconv.Itoa(t.Partition.NonEmpty()),
			fmt.Sprint(t.Sizes),
		}
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("#", "Seed", "Modularity", "Rounds", "Stop", "Communities", "Sizes").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return styleHeader
			case row == cursor:
				return lipgloss.NewStyle().Foreground(colorCyan).Bold(true)
			case first+row == 0:
				return lipgloss.NewStyle().Foreground(colorGreen)
			}
			return lipgloss.NewStyle().Foreground(colorGray)
		}).
		Render()
}

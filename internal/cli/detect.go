package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/fluidc/internal/config"
	"github.com/matzehuels/fluidc/pkg/errors"
	"github.com/matzehuels/fluidc/pkg/fluid"
	"github.com/matzehuels/fluidc/pkg/graph"
	"github.com/matzehuels/fluidc/pkg/pipeline"
)

// detectionFlags are shared by detect and trials.
type detectionFlags struct {
	k         int
	seed      uint64
	maxRounds int
	variant   string
	tieBreak  string
	order     string
	refine    bool
	dataset   string
	noCache   bool
	noHistory bool
	refresh   bool
}

func (f *detectionFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.IntVarP(&f.k, "communities", "k", 0, "number of communities (default from config or dataset)")
	fs.Uint64Var(&f.seed, "seed", 0, "random seed (default: random, recorded in history)")
	fs.IntVar(&f.maxRounds, "max-rounds", 0, "round budget (default max(100, 10·|V|))")
	fs.StringVar(&f.variant, "variant", "", "scoring variant: fluidc or fluidc_plus")
	fs.StringVar(&f.tieBreak, "tie-break", "", "tie policy: random or largest")
	fs.StringVar(&f.order, "order", "", "visiting order: graph or degree")
	fs.BoolVar(&f.refine, "refine", false, "restart from bad seeds until partitions stabilize")
	fs.StringVar(&f.dataset, "dataset", "", fmt.Sprintf("built-in dataset instead of a file (%s)", strings.Join(graph.Datasets(), ", ")))
	fs.BoolVar(&f.noCache, "no-cache", false, "disable the result cache")
	fs.BoolVar(&f.noHistory, "no-history", false, "do not record the run")
	fs.BoolVar(&f.refresh, "refresh", false, "recompute even when the result is cached")

	_ = cmd.RegisterFlagCompletionFunc("variant", fixedCompletions(string(fluid.VariantFluidC), string(fluid.VariantFluidCPlus)))
	_ = cmd.RegisterFlagCompletionFunc("tie-break", fixedCompletions(string(fluid.TieRandom), string(fluid.TieLargest)))
	_ = cmd.RegisterFlagCompletionFunc("order", fixedCompletions(string(fluid.OrderGraph), string(fluid.OrderDegree)))
	_ = cmd.RegisterFlagCompletionFunc("dataset", fixedCompletions(graph.Datasets()...))
}

// input resolves the graph argument or --dataset.
func (f *detectionFlags) input(args []string) (pipeline.Input, error) {
	in := pipeline.Input{Dataset: f.dataset}
	if len(args) == 1 {
		in.Path = args[0]
	}
	if in.Path == "" && in.Dataset == "" {
		return in, errors.New(errors.ErrCodeInvalidInput, "a graph file or --dataset is required")
	}
	if in.Path != "" && in.Dataset != "" {
		return in, errors.New(errors.ErrCodeInvalidInput, "give either a graph file or --dataset, not both")
	}
	return in, nil
}

// options builds run options. Explicit flags win over the config file,
// which wins over built-in defaults.
func (f *detectionFlags) options(cmd *cobra.Command, cfg *config.Config, in pipeline.Input) pipeline.Options {
	opts := pipeline.Options{
		K:         f.k,
		MaxRounds: f.maxRounds,
		Variant:   f.variant,
		TieBreak:  f.tieBreak,
		Order:     f.order,
		Refine:    f.refine,
		Refresh:   f.refresh,
		Source:    in.Source(),
	}
	if cmd.Flags().Changed("seed") {
		opts.Seed = fluid.SeedPtr(f.seed)
	}
	if !cmd.Flags().Changed("refine") {
		opts.Refine = cfg.Defaults.Refine
	}
	cfg.Defaults.ApplyTo(&opts)
	if opts.K == 0 {
		opts.K = in.DefaultK()
	}
	return opts
}

func fixedCompletions(values ...string) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return values, cobra.ShellCompDirectiveNoFileComp
	}
}

// detectCommand creates the detect command.
func (c *CLI) detectCommand() *cobra.Command {
	var (
		flags  detectionFlags
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "detect [graph]",
		Short: "Partition a graph into k communities",
		Long: `Partition an undirected graph into k communities with FluidC or FluidC+.

The graph is a node-link JSON file (.json) or a whitespace-separated edge
list. Results are cached per graph and options when --seed is given.`,
		Example: `  fluidc detect --dataset karate -k 2 --seed 42
  fluidc detect graph.json -k 4 --variant fluidc_plus --format svg -o communities.svg
  fluidc detect edges.txt -k 3 --refine --format csv`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.config()
			if err != nil {
				return err
			}
			format, err = resolveFormat(cmd, format, output, cfg.Defaults.Format)
			if err != nil {
				return err
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
			opts.OnRound = func(s fluid.RoundStats) {
				c.Logger.Debug("round", "round", s.Round, "moves", s.Moves, "labeled", s.Labeled)
			}

			runner, err := c.newRunner(ctx, flags.noCache, flags.noHistory)
			if err != nil {
				return err
			}
			defer runner.Close()

			res, err := runner.Detect(ctx, g, opts)
			if err != nil {
				return err
			}
			data, err := pipeline.Render(ctx, g, res, format)
			if err != nil {
				return err
			}

			if output == "" {
				_, err := cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(output, data, 0644); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			printDetectSummary(res, output)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&format, "format", "f", "", "output format: json, yaml, csv, dot, svg, png, pdf (default from -o extension)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	_ = cmd.RegisterFlagCompletionFunc("format", fixedCompletions(
		pipeline.FormatJSON, pipeline.FormatYAML, pipeline.FormatCSV,
		pipeline.FormatDOT, pipeline.FormatSVG, pipeline.FormatPNG, pipeline.FormatPDF))

	return cmd
}

// resolveFormat picks the explicit --format, else the -o extension, else the
// configured default.
func resolveFormat(cmd *cobra.Command, format, output, fallback string) (string, error) {
	if !cmd.Flags().Changed("format") {
		format = fallback
		if ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(output)), "."); ext != "" {
			if ext == "yml" {
				ext = pipeline.FormatYAML
			}
			if ext == "gv" {
				ext = pipeline.FormatDOT
			}
			if pipeline.ValidFormats[ext] {
				format = ext
			}
		}
	}
	if format == "" {
		format = pipeline.FormatJSON
	}
	return format, pipeline.ValidateFormat(format)
}

func printDetectSummary(res *pipeline.Result, output string) {
	p := res.Partition
	printSuccess("Detected %d communities", p.NonEmpty())
	printStats(res.Stats.Nodes, res.Stats.Edges, p.Rounds, res.CacheHit)
	printKeyValue("Variant", string(p.Variant))
	printKeyValue("Modularity", fmt.Sprintf("%.4f", res.Modularity))
	printKeyValue("Stop", stopLabel(p))
	if res.Options.Seed != nil {
		printKeyValue("Seed", fmt.Sprint(*res.Options.Seed))
	}
	if res.Refine != nil {
		printKeyValue("Refine", fmt.Sprintf("%d iterations, %d restarts", res.Refine.Iterations, res.Refine.Restarts))
	}
	fmt.Println(communityTable(p, 8))
	printFile(output)
	if p.Stop == fluid.StopCancelled {
		printWarning("Run was cancelled; the partition is incomplete")
	}
	if res.RunID != "" {
		printNextStep("Show this run", "fluidc history show "+res.RunID)
	}
}

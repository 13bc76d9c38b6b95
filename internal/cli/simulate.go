package cli

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/towersets/pkg/errors"
	"github.com/matzehuels/towersets/pkg/simulate"
)

// simulateCommand creates the simulate command.
func (c *CLI) simulateCommand() *cobra.Command {
	var (
		sizes   string
		samples int
		rounds  int
		growth  int
		workers int
		seed    uint64
		asJSON  bool
	)

	cmd := &cobra.Command{
		Use:   "simulate [BLOCKS]",
		Short: "Sample random tower-sets and compare with the exact count",
		Long: `Draw random tower-sets of BLOCKS blocks in rounds of growing sample size and
count the distinct configurations found. A run is stable when the last round
found exactly the configurations of the earlier rounds; for small BLOCKS the
distinct count should then equal the exact count.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc := c.cfg.Simulate
			opts := simulate.Options{
				Blocks:     sc.Blocks,
				LevelSizes: c.cfg.LevelSizes,
				Samples:    sc.Samples,
				Rounds:     sc.Rounds,
				Growth:     sc.Growth,
				Workers:    c.cfg.Workers,
				Seed:       sc.Seed,
			}
			if len(args) > 0 {
				n, err := strconv.Atoi(args[0])
				if err != nil {
					return errors.New(errors.ErrCodeInvalidArgument, "BLOCKS must be an integer, got %q", args[0])
				}
				opts.Blocks = n
			}
			if cmd.Flags().Changed("sizes") {
				s, err := errors.ParseLevelSizes(sizes)
				if err != nil {
					return err
				}
				opts.LevelSizes = s
			}
			if cmd.Flags().Changed("samples") {
				opts.Samples = samples
			}
			if cmd.Flags().Changed("rounds") {
				opts.Rounds = rounds
			}
			if cmd.Flags().Changed("growth") {
				opts.Growth = growth
			}
			if cmd.Flags().Changed("workers") {
				opts.Workers = workers
			}
			if cmd.Flags().Changed("seed") {
				opts.Seed = seed
			}
			if !asJSON {
				opts.OnRound = func(r simulate.Round) {
					printInfo("Round %d: %s samples, %s distinct %s",
						r.Index+1,
						StyleNumber.Render(strconv.Itoa(r.Samples)),
						StyleNumber.Render(strconv.Itoa(r.Distinct)),
						StyleDim.Render("("+r.Duration.Round(time.Millisecond).String()+")"))
				}
			}

			runner, err := c.newRunner(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer runner.Close()

			report, err := runner.Simulate(cmd.Context(), opts)
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}
			printReport(report)
			return nil
		},
	}

	cmd.Flags().StringVar(&sizes, "sizes", "", "comma-separated level sizes (default from config, else 1,2)")
	cmd.Flags().IntVarP(&samples, "samples", "s", simulate.DefaultSamples, "samples in the first round")
	cmd.Flags().IntVarP(&rounds, "rounds", "r", simulate.DefaultRounds, "number of rounds")
	cmd.Flags().IntVar(&growth, "growth", simulate.DefaultGrowth, "sample multiplier between rounds")
	cmd.Flags().IntVarP(&workers, "workers", "w", 1, "concurrent samplers per round")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "random seed (default time-based)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	return cmd
}

func printReport(r *simulate.Report) {
	printNewline()
	printKeyValue("Run", r.RunID)
	printKeyValue("Blocks", strconv.Itoa(r.Blocks))
	printKeyValue("Level sizes", formatSizes(r.LevelSizes))
	printKeyValue("Seed", strconv.FormatUint(r.Seed, 10))
	printKeyValue("Distinct", strconv.Itoa(r.Distinct))
	printKeyValue("Expected", r.Expected.String())
	printKeyValue("Coverage", fmt.Sprintf("%.2f%%", 100*r.Coverage))
	printKeyValue("Duration", r.Duration.Round(time.Millisecond).String())
	printNewline()

	switch {
	case r.Stable && r.Expected.Cmp(big.NewInt(int64(r.Distinct))) == 0:
		printSuccess("Stable: every configuration was found")
	case r.Stable:
		printWarning("Stable, but %s configurations were never sampled", missing(r))
	case len(r.Rounds) < 2:
		printInfo("Single round, stability not checked")
	default:
		printWarning("Not stable: %d new and %d missing in the last round", len(r.NewInLast), len(r.MissingInLast))
		for _, s := range r.NewInLast {
			printDetail("+ %s", s)
		}
		for _, s := range r.MissingInLast {
			printDetail("- %s", s)
		}
	}
}

func missing(r *simulate.Report) string {
	d := new(big.Int).Sub(r.Expected, big.NewInt(int64(r.Distinct)))
	return d.String()
}

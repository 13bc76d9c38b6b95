package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/towersets/pkg/pipeline"
)

// verifyCommand creates the verify command.
func (c *CLI) verifyCommand() *cobra.Command {
	var flags countFlags

	cmd := &cobra.Command{
		Use:   "verify [N]",
		Short: "Cross-check the counts against partition enumeration",
		Long: fmt.Sprintf(`Recompute every count from 0 to N by enumerating integer partitions of the
block count and compare with the table-based result.

Partition enumeration grows exponentially, so N is limited to %d.`, pipeline.MaxVerifyN),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.options(cmd, args, &flags)
			if err != nil {
				return err
			}
			runner, err := c.newRunner(cmd.Context(), flags.noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			spinner := newSpinnerWithContext(cmd.Context(), fmt.Sprintf("Verifying n ≤ %d...", opts.MaxN))
			spinner.Start()
			res, err := runner.Verify(cmd.Context(), opts)
			switch {
			case res != nil && !res.OK():
				spinner.StopWithError(fmt.Sprintf("%d of %d values disagree", len(res.Mismatches), opts.MaxN+1))
				for _, m := range res.Mismatches {
					printDetail("n=%d  counted %s  enumerated %s", m.N, m.DP, m.Brute)
				}
				return err
			case err != nil:
				spinner.StopWithError("Verification failed")
				return err
			}

			spinner.StopWithSuccess(fmt.Sprintf("All %d values match partition enumeration", len(res.Values)))
			printKeyValue("Level sizes", formatSizes(res.LevelSizes))
			printKeyValue("Value at N", res.Values[res.MaxN].String())
			printKeyValue("Duration", res.Duration.Round(time.Millisecond).String())
			printStats(res.MaxN, res.LevelSizes, res.CacheHit)
			return nil
		},
	}

	flags.register(cmd, true)
	return cmd
}

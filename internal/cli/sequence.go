package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/towersets/pkg/pipeline"
)

// sequenceCommand creates the sequence command.
func (c *CLI) sequenceCommand() *cobra.Command {
	var (
		flags  countFlags
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "sequence [N]",
		Short: "Print tower-set counts for 0..N blocks",
		Long: `Print the number of distinct tower-sets for every block count from 0 to N.

N defaults to max_n from the config file (20 without one).`,
		Example: `  towersets sequence 30
  towersets sequence 12 --sizes 1,2,3
  towersets sequence 100 --format csv -o counts.csv`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := pipeline.ValidateFormat(format); err != nil {
				return err
			}
			opts, err := c.options(cmd, args, &flags)
			if err != nil {
				return err
			}
			runner, err := c.newRunner(cmd.Context(), flags.noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			res, err := runner.Sequence(cmd.Context(), opts)
			if err != nil {
				return err
			}

			if output == "" {
				return pipeline.Encode(cmd.OutOrStdout(), format, res)
			}
			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("create %s: %w", output, err)
			}
			if err := pipeline.Encode(f, format, res); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			printSuccess("Wrote %d values", len(res.Values))
			printFile(output)
			printStats(res.MaxN, res.LevelSizes, res.CacheHit)
			if res.MaxN <= pipeline.MaxVerifyN {
				printNewline()
				printNextStep("Cross-check", fmt.Sprintf("%s verify %d", appName, res.MaxN))
			}
			return nil
		},
	}

	flags.register(cmd, true)
	cmd.Flags().StringVarP(&format, "format", "f", pipeline.FormatText, "output format: text, json or csv")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to file instead of stdout")
	return cmd
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hive-corporation/watchtower-shippers/internal/feed"
	"github.com/hive-corporation/watchtower-shippers/internal/seed"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Generate a sample IOC feed",
	Long: `Write a generated IOC feed to stdout in the chosen format, for
exercising the shippers without a running Watchtower instance.`,
	Example: `  wtship seed --format cef --count 250 > feed.cef
  wtship seed --format stix --count 50 > bundle.json`,
	RunE: runSeed,
}

func init() {
	rootCmd.AddCommand(seedCmd)

	seedCmd.Flags().String("format", "cef", "feed format: cef or stix")
	seedCmd.Flags().Int("count", 100, "number of IOCs to generate")
	seedCmd.Flags().Int64("seed", 0, "random seed (0 for time-based)")
}

func runSeed(cmd *cobra.Command, args []string) error {
	formatStr, _ := cmd.Flags().GetString("format")
	count, _ := cmd.Flags().GetInt("count")
	randSeed, _ := cmd.Flags().GetInt64("seed")

	format, err := feed.ParseFormat(formatStr)
	if err != nil {
		return err
	}

	seed.Seed(randSeed)
	out := cmd.OutOrStdout()

	switch format {
	case feed.FormatCEF:
		for _, line := range seed.GenerateCEF(count) {
			fmt.Fprintln(out, line)
		}
	case feed.FormatSTIX:
		bundle, err := seed.GenerateSTIX(count)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(bundle))
	}

	return nil
}

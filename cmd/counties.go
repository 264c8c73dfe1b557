package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/market-dashboard/internal/derive"
	"github.com/sells-group/market-dashboard/internal/model"
)

var countiesCmd = &cobra.Command{
	Use:   "counties",
	Short: "List counties in the dataset",
	Long:  "Lists the dataset with the same conjunctive filters the dashboard applies: tier, unmet need, competition, market entry, and a name search.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		counties, err := loadCounties()
		if err != nil {
			return err
		}

		norm := func(v string) string {
			if v == "ALL" {
				return ""
			}
			return v
		}

		tier, _ := cmd.Flags().GetString("tier")
		unmet, _ := cmd.Flags().GetString("unmet-need")
		competition, _ := cmd.Flags().GetString("competition")
		entry, _ := cmd.Flags().GetString("market-entry")
		search, _ := cmd.Flags().GetString("search")

		filtered := derive.Filter(counties, model.FilterState{
			Tier:        model.Tier(norm(tier)),
			UnmetNeed:   norm(unmet),
			Competition: norm(competition),
			MarketEntry: norm(entry),
			Search:      search,
		})

		if len(filtered) == 0 {
			fmt.Fprintln(os.Stderr, "No counties match.")
			return nil
		}

		formatCounties(os.Stdout, filtered, len(counties))
		return nil
	},
}

var countyShowCmd = &cobra.Command{
	Use:   "show <rank>",
	Short: "Show full details of one county",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rank, err := strconv.Atoi(args[0])
		if err != nil {
			return eris.Wrap(err, "counties show: rank must be an integer")
		}

		counties, err := loadCounties()
		if err != nil {
			return err
		}

		county, ok := derive.ByRank(counties, rank)
		if !ok {
			return eris.Errorf("counties show: no county with rank %d", rank)
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(county)
	},
}

func init() {
	countiesCmd.Flags().String("tier", "", "filter by tier (TIER 1..TIER 4)")
	countiesCmd.Flags().String("unmet-need", "", "filter by unmet need level")
	countiesCmd.Flags().String("competition", "", "filter by competition level")
	countiesCmd.Flags().String("market-entry", "", "filter by market entry ease")
	countiesCmd.Flags().String("search", "", "substring match on county or provider name")

	countiesCmd.AddCommand(countyShowCmd)
	rootCmd.AddCommand(countiesCmd)
}

func formatCounties(out io.Writer, counties []model.County, total int) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "RANK\tCOUNTY\tTIER\tPOPULATION\tSCORE\tUNMET NEED\tCOMPETITION")
	_, _ = fmt.Fprintln(w, "----\t------\t----\t----------\t-----\t----------\t-----------")
	for _, c := range counties {
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%.1f\t%s\t%s\n",
			c.Rank,
			c.Name,
			c.Tier,
			numPrinter.Sprintf("%d", c.Population),
			c.OpportunityScore,
			c.UnmetNeed,
			c.CompetitionLevel,
		)
	}
	_ = w.Flush()
	_, _ = fmt.Fprintf(out, "\nShowing %d of %d counties\n", len(counties), total)
}

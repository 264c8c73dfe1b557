package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/sells-group/market-dashboard/internal/derive"
)

var statsTopN int

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print the derived dashboard statistics",
	Long:  "Prints the stat-card scalars, the tier distribution, the top opportunity scores, and the investment-level breakdown for the loaded dataset.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		counties, err := loadCounties()
		if err != nil {
			return err
		}

		formatSummary(os.Stdout, derive.Summarize(counties))
		fmt.Println()
		formatTiers(os.Stdout, derive.TierDistribution(counties), derive.TierPopulations(counties))
		fmt.Println()
		formatTopOpportunity(os.Stdout, derive.TopOpportunity(counties, statsTopN))
		fmt.Println()
		formatInvestment(os.Stdout, derive.InvestmentBreakdown(counties))
		return nil
	},
}

func init() {
	statsCmd.Flags().IntVar(&statsTopN, "top", 10, "number of counties in the opportunity listing")
	rootCmd.AddCommand(statsCmd)
}

// numPrinter groups thousands in population figures.
var numPrinter = message.NewPrinter(language.English)

func formatSummary(out io.Writer, s derive.Summary) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Total counties:\t%d\n", s.TotalCounties)
	_, _ = fmt.Fprintf(w, "Total population:\t%s\n", numPrinter.Sprintf("%d", s.TotalPopulation))
	_, _ = fmt.Fprintf(w, "Avg opportunity score:\t%.1f\n", s.AvgOpportunityScore)
	_, _ = fmt.Fprintf(w, "High priority counties:\t%d\n", s.HighPriorityCount)
	_ = w.Flush()
}

func formatTiers(out io.Writer, dist []derive.TierCount, pops []derive.TierPopulation) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "TIER\tCOUNTIES\tPOPULATION")
	_, _ = fmt.Fprintln(w, "----\t--------\t----------")
	for i, tc := range dist {
		_, _ = fmt.Fprintf(w, "%s\t%d\t%s\n",
			tc.Tier, tc.Count, numPrinter.Sprintf("%d", pops[i].Population))
	}
	_ = w.Flush()
}

func formatTopOpportunity(out io.Writer, entries []derive.ScoreEntry) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "COUNTY\tTIER\tSCORE")
	_, _ = fmt.Fprintln(w, "------\t----\t-----")
	for _, e := range entries {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%.1f\n", e.County, e.Tier, e.Score)
	}
	_ = w.Flush()
}

func formatInvestment(out io.Writer, groups []derive.InvestmentGroup) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "INVESTMENT\tCOUNTIES\tNAMES")
	_, _ = fmt.Fprintln(w, "----------\t--------\t-----")
	for _, g := range groups {
		names := strings.Join(g.Counties, ", ")
		if len(names) > 60 {
			names = names[:57] + "..."
		}
		_, _ = fmt.Fprintf(w, "%s\t%d\t%s\n", g.Level, g.Count, names)
	}
	_ = w.Flush()
}

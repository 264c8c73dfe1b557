// Package export writes the dashboard dataset and its derived views to an
// XLSX workbook for offline analysis.
package export

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/market-dashboard/internal/derive"
	"github.com/sells-group/market-dashboard/internal/model"
)

var countyHeader = []string{
	"Rank", "County", "Tier", "Population", "Growth Rate %", "Est. I/DD Population",
	"CDDP Provider", "Provider Full Name", "Provider Phone", "Competition Level",
	"Opportunity Score", "Service Gap Score", "Unmet Need", "Wait List",
	"Market Entry", "Licensing", "Investment Level", "ROI Timeline",
	"Recommended Phase", "Service Model", "Profit Margin", "Notes",
}

// WriteWorkbook writes the dataset plus the derived statistics to path.
// Sheets: Counties, Summary, Tiers, Investment.
func WriteWorkbook(counties []model.County, path string) error {
	f := xlsx.NewFile()

	if err := addCountiesSheet(f, counties); err != nil {
		return err
	}
	if err := addSummarySheet(f, counties); err != nil {
		return err
	}
	if err := addTiersSheet(f, counties); err != nil {
		return err
	}
	if err := addInvestmentSheet(f, counties); err != nil {
		return err
	}

	if err := f.Save(path); err != nil {
		return eris.Wrap(err, "export: save workbook")
	}
	return nil
}

func addCountiesSheet(f *xlsx.File, counties []model.County) error {
	sheet, err := f.AddSheet("Counties")
	if err != nil {
		return eris.Wrap(err, "export: add counties sheet")
	}

	addStringRow(sheet, countyHeader...)
	for _, c := range counties {
		row := sheet.AddRow()
		row.AddCell().SetInt(c.Rank)
		row.AddCell().SetString(c.Name)
		row.AddCell().SetString(string(c.Tier))
		row.AddCell().SetInt(c.Population)
		row.AddCell().SetFloat(c.GrowthRatePct)
		row.AddCell().SetString(c.EstDDPopulation)
		row.AddCell().SetString(c.CDDPProvider)
		row.AddCell().SetString(c.ProviderFullName)
		row.AddCell().SetString(c.ProviderPhone)
		row.AddCell().SetString(c.CompetitionLevel)
		row.AddCell().SetFloat(c.OpportunityScore)
		row.AddCell().SetFloat(c.ServiceGapScore)
		row.AddCell().SetString(c.UnmetNeed)
		row.AddCell().SetString(c.WaitListStatus)
		row.AddCell().SetString(c.MarketEntryEase)
		row.AddCell().SetString(c.Licensing)
		row.AddCell().SetString(c.InvestmentLevel)
		row.AddCell().SetString(c.ROITimeline)
		row.AddCell().SetString(c.RecommendedPhase)
		row.AddCell().SetString(c.ServiceModel)
		row.AddCell().SetString(c.ProfitMargin)
		row.AddCell().SetString(c.Notes)
	}
	return nil
}

func addSummarySheet(f *xlsx.File, counties []model.County) error {
	sheet, err := f.AddSheet("Summary")
	if err != nil {
		return eris.Wrap(err, "export: add summary sheet")
	}

	s := derive.Summarize(counties)
	addStringRow(sheet, "Metric", "Value")

	row := sheet.AddRow()
	row.AddCell().SetString("Total Counties")
	row.AddCell().SetInt(s.TotalCounties)

	row = sheet.AddRow()
	row.AddCell().SetString("Total Population")
	row.AddCell().SetInt(s.TotalPopulation)

	row = sheet.AddRow()
	row.AddCell().SetString("Avg Opportunity Score")
	row.AddCell().SetString(fmt.Sprintf("%.1f", s.AvgOpportunityScore))

	row = sheet.AddRow()
	row.AddCell().SetString("High Priority Counties")
	row.AddCell().SetInt(s.HighPriorityCount)

	return nil
}

func addTiersSheet(f *xlsx.File, counties []model.County) error {
	sheet, err := f.AddSheet("Tiers")
	if err != nil {
		return eris.Wrap(err, "export: add tiers sheet")
	}

	pops := derive.TierPopulations(counties)
	addStringRow(sheet, "Tier", "Counties", "Population")
	for i, tc := range derive.TierDistribution(counties) {
		row := sheet.AddRow()
		row.AddCell().SetString(string(tc.Tier))
		row.AddCell().SetInt(tc.Count)
		row.AddCell().SetInt(pops[i].Population)
	}
	return nil
}

func addInvestmentSheet(f *xlsx.File, counties []model.County) error {
	sheet, err := f.AddSheet("Investment")
	if err != nil {
		return eris.Wrap(err, "export: add investment sheet")
	}

	addStringRow(sheet, "Investment Level", "Counties", "County Names")
	for _, g := range derive.InvestmentBreakdown(counties) {
		row := sheet.AddRow()
		row.AddCell().SetString(g.Level)
		row.AddCell().SetInt(g.Count)
		row.AddCell().SetString(strings.Join(g.Counties, ", "))
	}
	return nil
}

func addStringRow(sheet *xlsx.Sheet, cells ...string) {
	row := sheet.AddRow()
	for _, c := range cells {
		row.AddCell().SetString(c)
	}
}

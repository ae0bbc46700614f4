package export

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/tablewise/bistro-cli/internal/model"
)

// WriteWorkbook renders one assessment to an XLSX workbook with an
// overview sheet, the full KPI set, and the suggestion list.
func WriteWorkbook(path string, record model.SurveyRecord, a *model.Assessment) error {
	f := xlsx.NewFile()

	if err := addOverviewSheet(f, record, a); err != nil {
		return err
	}
	if err := addKPISheet(f, a); err != nil {
		return err
	}
	if err := addSuggestionSheet(f, a); err != nil {
		return err
	}

	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "export: save workbook %s", path)
	}
	return nil
}

func addOverviewSheet(f *xlsx.File, record model.SurveyRecord, a *model.Assessment) error {
	sheet, err := f.AddSheet("Overview")
	if err != nil {
		return eris.Wrap(err, "export: add overview sheet")
	}

	addRow(sheet, "Record", record.ID)
	addRow(sheet, "Business type", string(record.BusinessType))
	addRow(sheet, "Monthly revenue", Currency(record.MonthlyRevenue))
	addRow(sheet, "Score", fmt.Sprintf("%d", a.Composite.Score))
	addRow(sheet, "Level", string(a.Composite.Level))
	addRow(sheet, "Summary", a.Composite.Description)
	addRow(sheet)

	addRow(sheet, "Strengths")
	for _, factor := range a.Composite.TopFactors {
		addRow(sheet, string(factor.Indicator), Score(factor.Score), Percent(factor.Weight))
	}
	addRow(sheet)

	addRow(sheet, "Weak spots")
	for _, factor := range a.Composite.BottomFactors {
		addRow(sheet, string(factor.Indicator), Score(factor.Score), Percent(factor.Weight))
	}
	return nil
}

func addKPISheet(f *xlsx.File, a *model.Assessment) error {
	sheet, err := f.AddSheet("KPIs")
	if err != nil {
		return eris.Wrap(err, "export: add kpi sheet")
	}
	k := a.KPI

	addRow(sheet, "Metric", "Value")
	addRow(sheet, "Gross margin", Percent(k.GrossMargin))
	addRow(sheet, "Net margin", Percent(k.NetMargin))
	addRow(sheet, "Cost rate", Percent(k.CostRate))
	addRow(sheet, "Food cost ratio", Percent(k.FoodCostRatio))
	addRow(sheet, "Labor cost ratio", Percent(k.LaborCostRatio))
	addRow(sheet, "Rent cost ratio", Percent(k.RentCostRatio))
	addRow(sheet, "Marketing cost ratio", Percent(k.MarketingCostRatio))
	addRow(sheet, "Table turnover", Score(k.TableTurnover))
	addRow(sheet, "Revenue per sqm", Currency(k.RevenuePerSqm))
	addRow(sheet, "Revenue per employee", Currency(k.RevenuePerEmployee))
	addRow(sheet, "Average spend", Currency(k.AverageSpend))
	addRow(sheet, "Repeat ratio", Percent(k.RepeatRatio))
	addRow(sheet, "Online ratio", Percent(k.OnlineRatio))
	addRow(sheet, "Review score", Score(k.ReviewScore))
	addRow(sheet, "Marketing ROI", Score(k.MarketingROI))
	addRow(sheet, "Location match", Score(k.LocationMatchScore))
	addRow(sheet)

	addRow(sheet, "Break-even revenue", Currency(k.BreakEven.BreakEvenRevenue))
	addRow(sheet, "Safety margin", Percent(k.BreakEven.SafetyMargin))
	addRow(sheet, "Customer lifetime value", Currency(k.Lifetime.Value))
	addRow(sheet, "Churn risk", Score(k.ChurnRiskScore))
	addRow(sheet, "Overall risk", Score(k.RiskRadar.Overall))
	addRow(sheet, "Competitiveness", Score(k.Competitiveness))
	addRow(sheet, "Expansion readiness", Score(k.Expansion.Overall))
	return nil
}

func addSuggestionSheet(f *xlsx.File, a *model.Assessment) error {
	sheet, err := f.AddSheet("Suggestions")
	if err != nil {
		return eris.Wrap(err, "export: add suggestion sheet")
	}

	addRow(sheet, "Priority", "Title", "Category", "Problem", "Solution", "Expected benefit")
	for _, s := range a.Suggestions {
		addRow(sheet,
			fmt.Sprintf("%.2f", s.Priority),
			s.Title,
			s.Category,
			s.Problem,
			strings.Join(s.Solution, "; "),
			s.ExpectedBenefit,
		)
	}
	return nil
}

func addRow(sheet *xlsx.Sheet, cells ...string) {
	row := sheet.AddRow()
	for _, c := range cells {
		row.AddCell().SetString(c)
	}
}

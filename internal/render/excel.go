package render

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/glimpse-data/glimpse/internal/insight"
	"github.com/glimpse-data/glimpse/internal/pipeline"
)

// WriteExcel exports a combined report as an .xlsx workbook, one sheet per
// stage plus an insights sheet per stage where the AI ran.
func WriteExcel(report *pipeline.Report, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", "Summary")
	if err := writeSummarySheet(f, report); err != nil {
		return err
	}
	if err := writeCorrelationSheet(f, report); err != nil {
		return err
	}
	if err := writeForecastSheet(f, report); err != nil {
		return err
	}
	if err := writeOutlierSheet(f, report); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func writeSummarySheet(f *excelize.File, report *pipeline.Report) error {
	const sheet = "Summary"
	stage := report.Stage(pipeline.StageSummary)
	if stage == nil {
		return nil
	}
	if err := f.SetColWidth(sheet, "A", "A", 100); err != nil {
		return fmt.Errorf("sheet %s: %w", sheet, err)
	}
	row := 1
	setCell(f, sheet, 1, row, fmt.Sprintf("Glimpse report for %s (%d rows x %d columns)",
		report.Source, report.Rows, report.Columns))
	row += 2
	for _, line := range strings.Split(strings.TrimRight(stage.SummaryText, "\n"), "\n") {
		setCell(f, sheet, 1, row, line)
		row++
	}
	writeInsight(f, sheet, &row, stage)
	return nil
}

func writeCorrelationSheet(f *excelize.File, report *pipeline.Report) error {
	const sheet = "Correlation"
	stage := report.Stage(pipeline.StageCorrelation)
	if stage == nil || stage.Correlation == nil {
		return nil
	}
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("sheet %s: %w", sheet, err)
	}
	m := stage.Correlation
	for j, label := range m.Labels {
		setCell(f, sheet, j+2, 1, label)
		setCell(f, sheet, 1, j+2, label)
	}
	for i := 0; i < m.Dim(); i++ {
		for j := 0; j < m.Dim(); j++ {
			if v := m.At(i, j); v == v {
				setCell(f, sheet, j+2, i+2, v)
			}
		}
	}
	row := m.Dim() + 3
	writeInsight(f, sheet, &row, stage)
	return nil
}

func writeForecastSheet(f *excelize.File, report *pipeline.Report) error {
	const sheet = "Forecast"
	stage := report.Stage(pipeline.StageForecast)
	if stage == nil {
		return nil
	}
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("sheet %s: %w", sheet, err)
	}
	row := 1
	if stage.Forecast == nil {
		msg := "Forecast unavailable"
		if stage.Err != "" {
			msg = stage.Err
		}
		setCell(f, sheet, 1, row, msg)
		row += 2
		writeInsight(f, sheet, &row, stage)
		return nil
	}

	setCell(f, sheet, 1, row, "date")
	setCell(f, sheet, 2, row, fmt.Sprintf("forecast_%s", stage.Forecast.Target))
	row++
	for _, p := range stage.Forecast.Predicted {
		setCell(f, sheet, 1, row, p.Date.Format("2006-01-02"))
		setCell(f, sheet, 2, row, p.Value)
		row++
	}
	row++
	writeInsight(f, sheet, &row, stage)
	return nil
}

func writeOutlierSheet(f *excelize.File, report *pipeline.Report) error {
	const sheet = "Outliers"
	stage := report.Stage(pipeline.StageOutliers)
	if stage == nil {
		return nil
	}
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("sheet %s: %w", sheet, err)
	}
	setCell(f, sheet, 1, 1, "column")
	setCell(f, sheet, 2, 1, "lower")
	setCell(f, sheet, 3, 1, "upper")
	setCell(f, sheet, 4, 1, "outliers")
	row := 2
	for _, c := range stage.Outliers {
		setCell(f, sheet, 1, row, c.Column)
		setCell(f, sheet, 2, row, c.Lower)
		setCell(f, sheet, 3, row, c.Upper)
		for k, v := range c.Values {
			setCell(f, sheet, 4+k, row, v)
		}
		row++
	}
	row++
	writeInsight(f, sheet, &row, stage)
	return nil
}

func writeInsight(f *excelize.File, sheet string, row *int, stage *pipeline.StageResult) {
	if stage.Insight.Status == insight.StatusOK {
		setCell(f, sheet, 1, *row, "AI explanation:")
		(*row)++
		for _, line := range stage.Insight.Lines {
			setCell(f, sheet, 1, *row, line)
			(*row)++
		}
		return
	}
	setCell(f, sheet, 1, *row, stage.Insight.Message)
	(*row)++
}

func setCell(f *excelize.File, sheet string, col, row int, value interface{}) {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return
	}
	_ = f.SetCellValue(sheet, cell, value)
}

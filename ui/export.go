package ui

import (
	"fmt"
	"log"
	"net/http"

	"github.com/xuri/excelize/v2"

	"battwatch/domain/battery"
	"battwatch/internal/analysis"
)

// handleExport streams the current dataset summary as an Excel
// workbook: one sheet of quick stats, one of feature statistics, one
// of per-battery degradation profiles.
func (a *App) handleExport(w http.ResponseWriter, r *http.Request) {
	ds, err := a.loader.Load()
	if err != nil {
		http.Error(w, uploadPrompt, http.StatusNotFound)
		return
	}

	summary := battery.Summarize(ds)
	features := analysis.ProfileFeatures(ds)
	profiles := analysis.ProfileBatteries(r.Context(), ds)

	f := excelize.NewFile()
	defer f.Close()

	const summarySheet = "Summary"
	f.SetSheetName("Sheet1", summarySheet)
	setRows(f, summarySheet, [][]interface{}{
		{"Metric", "Value"},
		{"Total Records", summary.TotalRecords},
		{"Battery Units", summary.BatteryUnits},
		{"Features", summary.FeatureCount},
		{"Failure Rate (%)", summary.FailureRate},
	})

	const featureSheet = "Features"
	f.NewSheet(featureSheet)
	featureRows := [][]interface{}{
		{"Feature", "N", "Missing", "Mean", "Median", "StdDev", "Min", "Max", "Failure Corr", "p-value"},
	}
	for _, fs := range features {
		featureRows = append(featureRows, []interface{}{
			fs.Name, fs.SampleSize, fs.MissingCount, fs.Mean, fs.Median, fs.StdDev,
			fs.Min, fs.Max, fs.FailureCorr, fs.FailurePValue,
		})
	}
	setRows(f, featureSheet, featureRows)

	const batterySheet = "Batteries"
	f.NewSheet(batterySheet)
	batteryRows := [][]interface{}{
		{"Battery", "Cycles", "First Capacity", "Last Capacity", "Fade (%)", "Latest SOH", "SOH Slope", "Failure Cycles"},
	}
	for _, p := range profiles {
		batteryRows = append(batteryRows, []interface{}{
			p.BatteryID, p.CycleCount, p.FirstCapacity, p.LastCapacity,
			p.FadePercent, p.LatestSOH, p.SOHSlope, p.FailureCycles,
		})
	}
	setRows(f, batterySheet, batteryRows)

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="battery_summary_report.xlsx"`)
	if err := f.Write(w); err != nil {
		log.Printf("[handleExport] Failed to write workbook: %v", err)
	}
}

func setRows(f *excelize.File, sheet string, rows [][]interface{}) {
	for i, row := range rows {
		cell := fmt.Sprintf("A%d", i+1)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			log.Printf("[setRows] Failed to set row %s!%s: %v", sheet, cell, err)
		}
	}
}

package ui

import (
	"context"
	"log"
	"net/http"

	"battwatch/domain/artifact"
	"battwatch/domain/battery"
	"battwatch/internal/analysis"
	"battwatch/internal/errors"
	"battwatch/internal/modelinfo"
)

// uploadPrompt is the informational message shown whenever a page
// needs the dataset and none has been uploaded yet.
const uploadPrompt = "No battery dataset loaded. Please upload the NASA battery dataset CSV on the Home page."

// pageData is the common view model shared by every page template.
type pageData struct {
	Active      string
	NeedsUpload bool
	Prompt      string
	Flash       string
	FlashError  string
}

// loadOrPrompt loads the dataset, mapping a missing or unreadable
// dataset to the upload prompt instead of an error page. Load
// failures are never fatal to a page render.
func (a *App) loadOrPrompt(page string) (pd pageData, ds *battery.Dataset) {
	pd = pageData{Active: page}
	loaded, err := a.loader.Load()
	if err != nil {
		if !errors.HasCode(err, errors.CodeNotFound) {
			log.Printf("[%s] Dataset load failed: %v", page, err)
		}
		pd.NeedsUpload = true
		pd.Prompt = uploadPrompt
		return pd, nil
	}
	return pd, loaded
}

type homeData struct {
	pageData
	Summary      battery.Summary
	Uploads      []artifact.Upload
	DatasetSlots []modelinfo.Info
	EnsembleNote string
}

// handleHome renders the overview page: project copy, quick stats and
// the upload widgets for the dataset plus the three model files.
func (a *App) handleHome(w http.ResponseWriter, r *http.Request) {
	pd, ds := a.loadOrPrompt("home")
	pd.Flash = r.URL.Query().Get("uploaded")
	pd.FlashError = r.URL.Query().Get("upload_error")

	data := homeData{
		pageData:     pd,
		DatasetSlots: a.inspector.InspectAll(r.Context()),
		EnsembleNote: "Ensemble approach: 50% LSTM (temporal patterns), 30% XGBoost (feature relationships), 20% One-Class SVM (anomaly detection).",
	}
	if ds != nil {
		data.Summary = battery.Summarize(ds)
	}

	if a.registry != nil {
		uploads, err := a.registry.ListRecent(r.Context(), 10)
		if err != nil {
			log.Printf("[home] Failed to list recent uploads: %v", err)
		} else {
			data.Uploads = uploads
		}
	}

	a.renderTemplate(w, "home.html", data)
}

type exploreData struct {
	pageData
	Summary  battery.Summary
	Features []analysis.FeatureStats
	Preview  []battery.Observation
	Headers  []string
}

// handleExplore renders per-feature descriptive statistics and the
// correlation of each feature with the failure label.
func (a *App) handleExplore(w http.ResponseWriter, r *http.Request) {
	pd, ds := a.loadOrPrompt("explore")
	data := exploreData{pageData: pd}

	if ds != nil {
		data.Summary = battery.Summarize(ds)
		data.Features = analysis.ProfileFeatures(ds)
		data.Headers = ds.Headers
		preview := ds.Observations
		if len(preview) > 10 {
			preview = preview[:10]
		}
		data.Preview = preview
	}

	a.renderTemplate(w, "explore.html", data)
}

type performanceData struct {
	pageData
	Models  []modelinfo.Info
	Weights map[string]float64
}

// handlePerformance renders the model artifact inventory: upload
// state, size, checksum and XGBoost learner metadata.
func (a *App) handlePerformance(w http.ResponseWriter, r *http.Request) {
	pd, _ := a.loadOrPrompt("performance")

	data := performanceData{
		pageData: pd,
		Models:   a.inspector.InspectAll(r.Context()),
		Weights: map[string]float64{
			"LSTM":          analysis.WeightTrend,
			"XGBoost":       analysis.WeightRules,
			"One-Class SVM": analysis.WeightAnomaly,
		},
	}

	a.renderTemplate(w, "performance.html", data)
}

type predictData struct {
	pageData
	Scores []analysis.HealthScore
}

// handlePredict renders the per-battery failure-risk assessment.
func (a *App) handlePredict(w http.ResponseWriter, r *http.Request) {
	pd, ds := a.loadOrPrompt("predict")
	data := predictData{pageData: pd}

	if ds != nil {
		data.Scores = analysis.ScoreBatteries(r.Context(), ds)
	}

	a.renderTemplate(w, "predict.html", data)
}

type monitorData struct {
	pageData
	Profiles []analysis.BatteryProfile
}

// handleMonitor renders the battery health monitoring page; the live
// tiles on it are fed over the /ws/monitor websocket.
func (a *App) handleMonitor(w http.ResponseWriter, r *http.Request) {
	pd, ds := a.loadOrPrompt("monitor")
	data := monitorData{pageData: pd}

	if ds != nil {
		data.Profiles = analysis.ProfileBatteries(r.Context(), ds)
	}

	a.renderTemplate(w, "monitor.html", data)
}

// snapshot builds the live monitoring payload pushed to websocket
// clients: the latest observation and risk band per battery.
func (a *App) snapshot(ctx context.Context) (map[string]interface{}, error) {
	ds, err := a.loader.Load()
	if err != nil {
		return nil, err
	}

	grouped := ds.ByBattery()
	scores := analysis.ScoreBatteries(ctx, ds)
	bands := make(map[string]string, len(scores))
	risks := make(map[string]float64, len(scores))
	for _, s := range scores {
		bands[s.BatteryID] = s.RiskBand
		risks[s.BatteryID] = s.RiskPercent
	}

	batteries := make([]map[string]interface{}, 0, len(grouped))
	for _, id := range ds.BatteryIDs() {
		obs := grouped[id]
		latest := obs[len(obs)-1]
		batteries = append(batteries, map[string]interface{}{
			"battery_id":  id,
			"cycle":       latest.Cycle,
			"voltage":     latest.Voltage,
			"temperature": latest.Temperature,
			"capacity":    latest.Capacity,
			"soc":         latest.SOC,
			"soh":         latest.SOH,
			"risk_band":   bands[id],
			"risk":        risks[id],
		})
	}

	return map[string]interface{}{"batteries": batteries}, nil
}

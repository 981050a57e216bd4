package modelinfo

import (
	"context"
	"io"
	"log"

	"battwatch/domain/artifact"
	"battwatch/internal/store"
	"battwatch/ports"

	"github.com/tidwall/gjson"
)

// Info describes one model or dataset artifact slot on the model
// performance page: whether it has been uploaded, its size and
// checksum, and (for the XGBoost JSON) learner metadata pulled out
// of the model file itself.
type Info struct {
	Kind       artifact.Kind `json:"kind"`
	Label      string        `json:"label"`
	Filename   string        `json:"filename"`
	Present    bool          `json:"present"`
	Size       int64         `json:"size_bytes"`
	SHA256     string        `json:"sha256"`
	UploadedAt string        `json:"uploaded_at,omitempty"`

	// XGBoost-only learner metadata; zero values elsewhere.
	TreeCount    int64    `json:"tree_count,omitempty"`
	Objective    string   `json:"objective,omitempty"`
	FeatureNames []string `json:"feature_names,omitempty"`
}

// Inspector reports artifact metadata without interpreting binary
// model formats.
type Inspector struct {
	store    *store.ArtifactStore
	registry ports.UploadRegistry
}

// NewInspector creates an inspector. The registry may be nil; then
// uploaded-at timestamps are simply omitted.
func NewInspector(s *store.ArtifactStore, registry ports.UploadRegistry) *Inspector {
	return &Inspector{store: s, registry: registry}
}

// InspectAll describes every artifact slot in display order.
func (i *Inspector) InspectAll(ctx context.Context) []Info {
	infos := make([]Info, 0, len(artifact.Kinds))
	for _, kind := range artifact.Kinds {
		infos = append(infos, i.Inspect(ctx, kind))
	}
	return infos
}

// Inspect describes one artifact slot.
func (i *Inspector) Inspect(ctx context.Context, kind artifact.Kind) Info {
	info := Info{
		Kind:     kind,
		Label:    kind.Label(),
		Filename: kind.Filename(),
	}

	stat, err := i.store.Stat(kind)
	if err != nil {
		return info
	}
	info.Present = true
	info.Size = stat.Size()

	if sum, err := i.store.Checksum(kind); err == nil {
		info.SHA256 = sum
	}

	if i.registry != nil {
		if upload, err := i.registry.LatestByKind(ctx, kind); err == nil {
			info.UploadedAt = upload.UploadedAt.Format("2006-01-02 15:04:05")
		}
	}

	if kind == artifact.KindXGBoost {
		i.inspectXGBoost(&info)
	}
	return info
}

// inspectXGBoost pulls learner metadata out of the uploaded XGBoost
// JSON. Absent paths are tolerated; whatever is found is reported.
func (i *Inspector) inspectXGBoost(info *Info) {
	f, err := i.store.Open(artifact.KindXGBoost)
	if err != nil {
		return
	}
	defer f.Close()

	raw, err := io.ReadAll(f)
	if err != nil {
		log.Printf("[Inspector] Failed to read XGBoost model: %v", err)
		return
	}
	if !gjson.ValidBytes(raw) {
		log.Printf("[Inspector] XGBoost artifact is not valid JSON")
		return
	}

	doc := gjson.ParseBytes(raw)
	info.TreeCount = doc.Get("learner.gradient_booster.model.gbtree_model_param.num_trees").Int()
	info.Objective = doc.Get("learner.objective.name").String()
	for _, name := range doc.Get("learner.feature_names").Array() {
		info.FeatureNames = append(info.FeatureNames, name.String())
	}
}

package artifact

import (
	"strings"
	"time"

	"battwatch/internal/errors"
)

// Kind identifies what an uploaded file is: the combined dataset or
// one of the three pre-trained model files.
type Kind string

const (
	KindDataset Kind = "dataset"
	KindXGBoost Kind = "xgboost"
	KindLSTM    Kind = "lstm"
	KindSVM     Kind = "svm"
)

// Kinds lists every artifact kind in display order.
var Kinds = []Kind{KindDataset, KindXGBoost, KindLSTM, KindSVM}

// Fixed on-disk filenames per kind; uploads overwrite these wholesale.
var filenames = map[Kind]string{
	KindDataset: "nasa_battery_data_combined.csv",
	KindXGBoost: "xgboost_model_tuned.json",
	KindLSTM:    "lstm_model_tuned.h5",
	KindSVM:     "one_class_svm_model_tuned.joblib",
}

// Accepted upload extensions per kind. The dataset additionally
// accepts .xlsx; it is converted to CSV on ingest.
var extensions = map[Kind][]string{
	KindDataset: {".csv", ".xlsx"},
	KindXGBoost: {".json"},
	KindLSTM:    {".h5"},
	KindSVM:     {".joblib"},
}

var labels = map[Kind]string{
	KindDataset: "NASA battery dataset",
	KindXGBoost: "XGBoost model",
	KindLSTM:    "LSTM model",
	KindSVM:     "One-Class SVM model",
}

// ParseKind converts a route/CLI token to a Kind.
func ParseKind(s string) (Kind, error) {
	kind := Kind(strings.ToLower(s))
	if _, ok := filenames[kind]; !ok {
		return "", errors.InvalidInput("unknown artifact kind: " + s)
	}
	return kind, nil
}

// Filename returns the fixed storage filename for the kind.
func (k Kind) Filename() string {
	return filenames[k]
}

// Label returns the human-readable name for the kind.
func (k Kind) Label() string {
	return labels[k]
}

// Extensions returns the accepted upload extensions for the kind.
func (k Kind) Extensions() []string {
	return extensions[k]
}

// AcceptsExtension reports whether the kind accepts a filename's
// extension, case-insensitively.
func (k Kind) AcceptsExtension(filename string) bool {
	lower := strings.ToLower(filename)
	for _, ext := range extensions[k] {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// Upload records one accepted upload for the registry.
type Upload struct {
	ID           string    `db:"id" json:"id"`
	Kind         Kind      `db:"kind" json:"kind"`
	OriginalName string    `db:"original_name" json:"original_name"`
	Size         int64     `db:"size_bytes" json:"size_bytes"`
	SHA256       string    `db:"sha256" json:"sha256"`
	UploadedAt   time.Time `db:"uploaded_at" json:"uploaded_at"`
}

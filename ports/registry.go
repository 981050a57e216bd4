package ports

import (
	"context"

	"battwatch/domain/artifact"
)

// UploadRegistry records accepted artifact uploads and serves the
// upload history shown in the UI and API.
type UploadRegistry interface {
	Record(ctx context.Context, upload artifact.Upload) error
	ListRecent(ctx context.Context, limit int) ([]artifact.Upload, error)
	LatestByKind(ctx context.Context, kind artifact.Kind) (*artifact.Upload, error)
}

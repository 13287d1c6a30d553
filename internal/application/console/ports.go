package console

import (
	"context"
	"io"

	"github.com/britrip/hotelier/internal/domain/analytics"
)

// Asset is an uploaded property photo
type Asset struct {
	Data        []byte
	ContentType string
	Filename    string
}

// AssetStore turns an uploaded photo into the reference kept in the record's
// photo list: a URL or an inline data URI
type AssetStore interface {
	Store(ctx context.Context, key string, asset Asset) (string, error)
}

// ReportExporter renders the analytics dashboard of a record as a PDF
type ReportExporter interface {
	Export(ctx context.Context, report *analytics.Report, w io.Writer) error
}

// Package storage keeps ingested property photos, either inline as data URIs
// or in S3-compatible object storage.
package storage

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"

	consoleapp "github.com/britrip/hotelier/internal/application/console"
)

var (
	// ErrEmptyAsset is returned for an upload without content
	ErrEmptyAsset = errors.New("asset has no content")
	// ErrNotImage is returned when the content is not an image
	ErrNotImage = errors.New("asset is not an image")
	// ErrBadDataURI is returned for a malformed data URI
	ErrBadDataURI = errors.New("malformed data URI")
)

// InlineAssetStore keeps photos inside the record as base64 data URIs
type InlineAssetStore struct{}

// NewInlineAssetStore creates an InlineAssetStore
func NewInlineAssetStore() *InlineAssetStore {
	return &InlineAssetStore{}
}

// Store implements consoleapp.AssetStore
func (s *InlineAssetStore) Store(ctx context.Context, key string, asset consoleapp.Asset) (string, error) {
	ct, err := imageContentType(asset)
	if err != nil {
		return "", err
	}
	return EncodeDataURI(ct, asset.Data), nil
}

// EncodeDataURI renders data as a base64 data URI
func EncodeDataURI(contentType string, data []byte) string {
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// DecodeDataURI parses a base64 data URI into an asset
func DecodeDataURI(uri string) (consoleapp.Asset, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return consoleapp.Asset{}, ErrBadDataURI
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return consoleapp.Asset{}, ErrBadDataURI
	}
	ct, isBase64 := strings.CutSuffix(meta, ";base64")
	if !isBase64 {
		return consoleapp.Asset{}, ErrBadDataURI
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return consoleapp.Asset{}, errors.Join(ErrBadDataURI, err)
	}
	return consoleapp.Asset{Data: data, ContentType: ct}, nil
}

// imageContentType sniffs the content when no type was declared and rejects
// anything that is not an image
func imageContentType(asset consoleapp.Asset) (string, error) {
	if len(asset.Data) == 0 {
		return "", ErrEmptyAsset
	}
	ct := asset.ContentType
	if ct == "" || ct == "application/octet-stream" {
		ct = http.DetectContentType(asset.Data)
	}
	if !strings.HasPrefix(ct, "image/") {
		return "", ErrNotImage
	}
	return ct, nil
}

var _ consoleapp.AssetStore = (*InlineAssetStore)(nil)

package storage

import (
	"bytes"
	"context"
	"fmt"
	"strconv"

	"despesas/internal/model"
)

// Archive stores one raw payload per period, overwriting on refetch.
type Archive struct {
	store Storage
}

// NewArchive wraps an object store.
func NewArchive(store Storage) *Archive {
	return &Archive{store: store}
}

// RawKey is the object key of a period payload: raw/<municipality>/<year>/<MM>.json.
func RawKey(p model.Period) string {
	return fmt.Sprintf("raw/%s/%04d/%02d.json", p.Municipality, p.Year, p.Month)
}

// Save uploads body as the payload of p.
func (a *Archive) Save(ctx context.Context, p model.Period, sourceURL string, body []byte, records int) (ObjectInfo, error) {
	key := RawKey(p)
	info, err := a.store.Put(ctx, key, bytes.NewReader(body), PutObjectOptions{
		Size:        int64(len(body)),
		ContentType: "application/json",
		Metadata: map[string]string{
			"source-url": sourceURL,
			"records":    strconv.Itoa(records),
		},
	})
	if err != nil {
		return ObjectInfo{}, fmt.Errorf("archive %s: %w", key, err)
	}
	return info, nil
}

package storage_test

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"despesas/internal/config"
	"despesas/internal/model"
	"despesas/internal/storage"
	"despesas/internal/storage/mocks"
)

func TestRawKey(t *testing.T) {
	p := model.Period{Municipality: "sao-jose-do-rio-preto", Year: 2026, Month: 1}
	assert.Equal(t, "raw/sao-jose-do-rio-preto/2026/01.json", storage.RawKey(p))
}

func TestArchive_Save(t *testing.T) {
	store := new(mocks.MockStorage)
	archive := storage.NewArchive(store)
	p := model.Period{Municipality: "x", Year: 2025, Month: 11}
	body := []byte(`[{"nr_empenho":"1"}]`)

	var uploaded []byte
	store.On("Put", mock.Anything, "raw/x/2025/11.json", mock.Anything, mock.MatchedBy(func(o storage.PutObjectOptions) bool {
		return o.Size == int64(len(body)) &&
			o.ContentType == "application/json" &&
			o.Metadata["source-url"] == "https://example.org/x/2025/11" &&
			o.Metadata["records"] == "1"
	})).Return(func(_ context.Context, key string, r io.Reader, _ storage.PutObjectOptions) storage.ObjectInfo {
		uploaded, _ = io.ReadAll(r)
		return storage.ObjectInfo{Key: key}
	}, nil)

	info, err := archive.Save(context.Background(), p, "https://example.org/x/2025/11", body, 1)

	require.NoError(t, err)
	assert.Equal(t, "raw/x/2025/11.json", info.Key)
	assert.Equal(t, body, uploaded)
	store.AssertExpectations(t)
}

func TestArchive_SaveError(t *testing.T) {
	store := new(mocks.MockStorage)
	store.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(storage.ObjectInfo{}, errors.New("bucket gone"))

	_, err := storage.NewArchive(store).Save(context.Background(), model.Period{Municipality: "x", Year: 2026, Month: 2}, "u", nil, 0)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "archive raw/x/2026/02.json")
}

func TestNewMinIO_Validation(t *testing.T) {
	ctx := context.Background()

	for _, cfg := range []config.MinIOConfig{
		{},
		{Endpoint: "localhost:9000"},
		{Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "b"},
	} {
		_, err := storage.NewMinIO(ctx, cfg)
		assert.ErrorIs(t, err, storage.ErrIncompleteConfig)
	}
}

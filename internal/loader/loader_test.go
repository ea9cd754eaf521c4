package loader_test

import (
	"bytes"
	"context"
	"image"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docintel/internal/domain"
	"docintel/internal/loader"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

func TestDetectFileType(t *testing.T) {
	var jpg bytes.Buffer
	require.NoError(t, jpeg.Encode(&jpg, image.NewGray(image.Rect(0, 0, 4, 4)), nil))

	tests := []struct {
		name    string
		data    []byte
		want    domain.FileType
		wantErr error
	}{
		{"pdf", []byte("%PDF-1.7\n..."), domain.FileTypePDF, nil},
		{"png", encodePNG(t, 2, 2), domain.FileTypePNG, nil},
		{"jpg", jpg.Bytes(), domain.FileTypeJPG, nil},
		{"text", []byte("hello"), "", domain.ErrUnsupportedFileType},
		{"empty", nil, "", domain.ErrUnsupportedFileType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := loader.DetectFileType(tt.data)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoad_PNG(t *testing.T) {
	pages, err := loader.New().Load(context.Background(), encodePNG(t, 30, 20), domain.FileTypePNG)

	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Equal(t, 0, pages[0].Index)
	assert.NoError(t, pages[0].Err)
	assert.Equal(t, image.Rect(0, 0, 30, 20), pages[0].Image.Bounds())
}

func TestLoad_CorruptImage(t *testing.T) {
	data := encodePNG(t, 10, 10)[:20]

	_, err := loader.New().Load(context.Background(), data, domain.FileTypePNG)

	assert.ErrorIs(t, err, domain.ErrInvalidImage)
}

func TestLoad_CorruptPDF(t *testing.T) {
	_, err := loader.New().Load(context.Background(), []byte("%PDF-1.4 not really"), domain.FileTypePDF)

	assert.ErrorIs(t, err, domain.ErrInvalidImage)
}

func TestLoad_UnsupportedType(t *testing.T) {
	_, err := loader.New().Load(context.Background(), []byte("x"), domain.FileType("docx"))

	assert.ErrorIs(t, err, domain.ErrUnsupportedFileType)
}

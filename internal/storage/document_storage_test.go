package storage

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0x00, 0x00, 0x00, 0x0D, 0x49, 0x48, 0x44, 0x52}

func TestDocumentStorage_SavePDF(t *testing.T) {
	root := t.TempDir()
	s, err := NewDocumentStorage(root, 1)
	require.NoError(t, err)

	content := append([]byte("%PDF-1.7\n"), bytes.Repeat([]byte("x"), 1000)...)
	userID, requestID := uuid.New(), uuid.New()

	stored, err := s.Save(context.Background(), userID, requestID, "../../passport.pdf", bytes.NewReader(content))
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", stored.MIME)
	assert.Equal(t, int64(len(content)), stored.Size)

	data, err := os.ReadFile(filepath.Join(root, stored.Path))
	require.NoError(t, err)
	assert.Equal(t, content, data)

	require.NoError(t, s.Delete(context.Background(), stored.Path))
	_, err = os.Stat(filepath.Join(root, stored.Path))
	assert.True(t, os.IsNotExist(err))
}

func TestDocumentStorage_SavePNGSmallerThanSniffWindow(t *testing.T) {
	s, err := NewDocumentStorage(t.TempDir(), 1)
	require.NoError(t, err)

	stored, err := s.Save(context.Background(), uuid.New(), uuid.New(), "scan.png", bytes.NewReader(pngHeader))
	require.NoError(t, err)
	assert.Equal(t, "image/png", stored.MIME)
	assert.Equal(t, ".png", filepath.Ext(stored.Path))
}

func TestDocumentStorage_RejectsUnsupportedType(t *testing.T) {
	s, err := NewDocumentStorage(t.TempDir(), 1)
	require.NoError(t, err)

	_, err = s.Save(context.Background(), uuid.New(), uuid.New(), "notes.txt", bytes.NewReader([]byte("просто текст")))
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestDocumentStorage_RejectsTooLarge(t *testing.T) {
	s, err := NewDocumentStorage(t.TempDir(), 1)
	require.NoError(t, err)

	content := append([]byte("%PDF-1.7\n"), bytes.Repeat([]byte("x"), 1024*1024)...)
	_, err = s.Save(context.Background(), uuid.New(), uuid.New(), "big.pdf", bytes.NewReader(content))
	assert.ErrorIs(t, err, ErrTooLarge)
}

package extract

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractText_RejectsNonPDFBytes(t *testing.T) {
	e := NewPDFExtractor()

	_, err := e.ExtractText(context.Background(), []byte("this is not a pdf"))
	require.Error(t, err)
}

func TestExtractText_RejectsEmptyBytes(t *testing.T) {
	e := NewPDFExtractor()

	_, err := e.ExtractText(context.Background(), nil)
	require.Error(t, err)
}

func TestExtractText_HonoursCancelledContext(t *testing.T) {
	e := NewPDFExtractor()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.ExtractText(ctx, []byte("%PDF-1.4"))
	require.ErrorIs(t, err, context.Canceled)
}

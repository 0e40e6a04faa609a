package worker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/fyde/pkg/models"
)

func TestWorkerPool_ResultsInInputOrder(t *testing.T) {
	var calls int64
	handler := func(ctx context.Context, path string) (*models.Document, error) {
		atomic.AddInt64(&calls, 1)
		if strings.HasSuffix(path, ".txt") {
			return nil, errors.New("rejected")
		}
		return &models.Document{Metadata: models.Metadata{Name: path}}, nil
	}

	paths := make([]string, 0, 25)
	for i := 0; i < 25; i++ {
		ext := ".pdf"
		if i%5 == 0 {
			ext = ".txt"
		}
		paths = append(paths, fmt.Sprintf("file-%02d%s", i, ext))
	}

	results := NewWorkerPool(handler, arbor.NewLogger(), 4).Run(context.Background(), paths)

	require.Len(t, results, len(paths))
	assert.Equal(t, int64(len(paths)), atomic.LoadInt64(&calls))
	for i, r := range results {
		assert.Equal(t, i, r.Index)
		assert.Equal(t, paths[i], r.Path)
		if strings.HasSuffix(paths[i], ".txt") {
			assert.Error(t, r.Err)
			assert.Nil(t, r.Document)
		} else {
			require.NoError(t, r.Err)
			assert.Equal(t, paths[i], r.Document.Metadata.Name)
		}
	}
}

func TestWorkerPool_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	handler := func(ctx context.Context, path string) (*models.Document, error) {
		return nil, ctx.Err()
	}

	results := NewWorkerPool(handler, arbor.NewLogger(), 2).Run(ctx, []string{"a", "b", "c"})
	require.Len(t, results, 3)
	for _, r := range results {
		assert.ErrorIs(t, r.Err, context.Canceled)
	}
}

func TestWorkerPool_Empty(t *testing.T) {
	results := NewWorkerPool(nil, arbor.NewLogger(), 3).Run(context.Background(), nil)
	assert.Empty(t, results)
}

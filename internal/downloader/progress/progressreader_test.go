package progress_test

import (
	"bytes"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/italolelis/film_downloader/internal/downloader/progress"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReader_ReportsEveryChunk(t *testing.T) {
	payload := strings.Repeat("x", 10)

	var reports []int64

	pr := progress.NewReader(iotest.OneByteReader(strings.NewReader(payload)), 10, func(received, total int64) {
		assert.Equal(t, int64(10), total)
		reports = append(reports, received)
	})

	out, err := io.ReadAll(pr)
	require.NoError(t, err)
	assert.Equal(t, payload, string(out))

	require.Len(t, reports, 10)
	for i, r := range reports {
		assert.Equal(t, int64(i+1), r)
	}

	assert.Equal(t, int64(10), pr.Received())
}

func TestReader_UnknownTotalAndNilCallback(t *testing.T) {
	pr := progress.NewReader(bytes.NewReader([]byte("abc")), -1, nil)

	out, err := io.ReadAll(pr)
	require.NoError(t, err)
	assert.Equal(t, "abc", string(out))
	assert.Equal(t, int64(3), pr.Received())
}

func TestReader_PropagatesErrors(t *testing.T) {
	pr := progress.NewReader(iotest.ErrReader(io.ErrUnexpectedEOF), 5, func(int64, int64) {
		t.Fatal("no progress expected without data")
	})

	_, err := io.ReadAll(pr)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

package explorer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pagedProvider serves records "r0".."r(n-1)" by page number.
func pagedProvider(n int, calls *[][2]int) PageFunc {
	return func(_ context.Context, page, size int) ([]json.RawMessage, error) {
		*calls = append(*calls, [2]int{page, size})
		var out []json.RawMessage
		for i := (page - 1) * size; i < page*size && i < n; i++ {
			out = append(out, json.RawMessage(fmt.Sprintf(`"r%d"`, i)))
		}
		return out, nil
	}
}

func ids(records []json.RawMessage) []string {
	out := make([]string, len(records))
	for i, r := range records {
		var s string
		_ = json.Unmarshal(r, &s)
		out[i] = s
	}
	return out
}

func TestFetchWindow_AlignedOffset(t *testing.T) {
	var calls [][2]int
	got, err := FetchWindow(context.Background(), 4, 8, 100, pagedProvider(20, &calls))
	require.NoError(t, err)
	assert.Equal(t, []string{"r8", "r9", "r10", "r11"}, ids(got))
	assert.Equal(t, [][2]int{{3, 4}}, calls)
}

func TestFetchWindow_HalfPageOffset(t *testing.T) {
	var calls [][2]int
	got, err := FetchWindow(context.Background(), 4, 2, 100, pagedProvider(20, &calls))
	require.NoError(t, err)
	assert.Equal(t, []string{"r2", "r3", "r4", "r5"}, ids(got))
	assert.Equal(t, [][2]int{{1, 4}, {2, 4}}, calls)
}

func TestFetchWindow_CoprimeOffsetUsesFullPages(t *testing.T) {
	var calls [][2]int
	got, err := FetchWindow(context.Background(), 75, 38, 100, pagedProvider(500, &calls))
	require.NoError(t, err)
	require.Len(t, got, 75)
	assert.Equal(t, "r38", ids(got)[0])
	assert.Equal(t, "r112", ids(got)[74])
	assert.Equal(t, [][2]int{{1, 75}, {2, 75}}, calls)
}

func TestFetchWindow_OffsetPastEnd(t *testing.T) {
	var calls [][2]int
	got, err := FetchWindow(context.Background(), 10, 25, 100, pagedProvider(22, &calls))
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, [][2]int{{3, 10}}, calls)
}

func TestFetchWindow_LimitAboveMaxPageSizeUnaligned(t *testing.T) {
	var calls [][2]int
	got, err := FetchWindow(context.Background(), 150, 75, 100, pagedProvider(1000, &calls))
	require.NoError(t, err)
	require.Len(t, got, 150)
	assert.Equal(t, "r75", ids(got)[0])
	assert.Equal(t, "r224", ids(got)[149])
	assert.Equal(t, [][2]int{{1, 100}, {2, 100}, {3, 100}}, calls)
}

func TestFetchWindow_MaxPageSize(t *testing.T) {
	var calls [][2]int
	got, err := FetchWindow(context.Background(), 200, 0, 100, pagedProvider(1000, &calls))
	require.NoError(t, err)
	assert.Len(t, got, 200)
	assert.Equal(t, [][2]int{{1, 100}, {2, 100}}, calls)
}

func TestFetchWindow_ShortPageStopsEarly(t *testing.T) {
	var calls [][2]int
	got, err := FetchWindow(context.Background(), 4, 2, 100, pagedProvider(3, &calls))
	require.NoError(t, err)
	assert.Equal(t, []string{"r2"}, ids(got))
	assert.Len(t, calls, 1)
}

func TestFetchWindow_Errors(t *testing.T) {
	_, err := FetchWindow(context.Background(), 0, 0, 100, nil)
	require.Error(t, err)

	_, err = FetchWindow(context.Background(), 10, -1, 100, nil)
	require.Error(t, err)

	boom := errors.New("boom")
	_, err = FetchWindow(context.Background(), 10, 0, 100, func(context.Context, int, int) ([]json.RawMessage, error) {
		return nil, boom
	})
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "page 1")
}

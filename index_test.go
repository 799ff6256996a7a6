package arxivhunter

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestIndex(t *testing.T) *Index {
	t.Helper()
	x, err := OpenIndex(filepath.Join(t.TempDir(), "sub", "index.db"))
	require.NoError(t, err)
	t.Cleanup(func() { x.Close() })
	return x
}

func TestIndexPutGet(t *testing.T) {
	x := openTestIndex(t)
	ctx := context.Background()
	rec := testRecord("2301.00001", "Strings on a Lattice", "High Energy Physics - Theory (hep-th)")
	rec.Abstract = "We put strings on a lattice."
	rec.Date = time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	require.NoError(t, x.Put(ctx, rec))

	got, err := x.Get(ctx, "2301.00001", DefaultBaseURL)
	require.NoError(t, err)
	assert.Equal(t, rec, got)

	rec.Title = "Strings on a Lattice, Revised"
	require.NoError(t, x.Put(ctx, rec))
	got, err = x.Get(ctx, "2301.00001", "http://mirror.test")
	require.NoError(t, err)
	assert.Equal(t, "Strings on a Lattice, Revised", got.Title)
	assert.Equal(t, "http://mirror.test/abs/2301.00001", got.Link)

	_, err = x.Get(ctx, "2301.09999", DefaultBaseURL)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestIndexDelete(t *testing.T) {
	x := openTestIndex(t)
	ctx := context.Background()
	require.NoError(t, x.Put(ctx, testRecord("2301.00001", "A", "Quantum Physics (quant-ph)")))
	require.NoError(t, x.Put(ctx, testRecord("2301.00002", "B", "Quantum Physics (quant-ph)")))

	require.NoError(t, x.Delete(ctx, "2301.00001", "2301.09999"))
	_, err := x.Get(ctx, "2301.00001", DefaultBaseURL)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = x.Get(ctx, "2301.00002", DefaultBaseURL)
	assert.NoError(t, err)
}

func TestIndexSearch(t *testing.T) {
	x := openTestIndex(t)
	ctx := context.Background()

	lattice := testRecord("2301.00001", "Strings on a Lattice", "High Energy Physics - Theory (hep-th)")
	lattice.Abstract = "Discretised worldsheets."
	branes := testRecord("2301.00002", "Branes Revisited", "High Energy Physics - Theory (hep-th)")
	branes.Abstract = "A lattice of branes."
	other := testRecord("2301.00003", "Neural Networks", "Machine Learning (cs.LG)")
	other.Abstract = "Gradient descent."
	for _, r := range []*Record{lattice, branes, other} {
		require.NoError(t, x.Put(ctx, r))
	}

	recs, err := x.Search(ctx, "lattice", DefaultBaseURL, 10)
	require.NoError(t, err)
	var ids []string
	for _, r := range recs {
		ids = append(ids, r.ID)
	}
	assert.ElementsMatch(t, []string{"2301.00001", "2301.00002"}, ids)

	recs, err = x.Search(ctx, "lattice", DefaultBaseURL, 1)
	require.NoError(t, err)
	assert.Len(t, recs, 1)

	recs, err = x.Search(ctx, "quantum gravity", DefaultBaseURL, 10)
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestIndexSearchAfterUpdateAndDelete(t *testing.T) {
	x := openTestIndex(t)
	ctx := context.Background()
	rec := testRecord("2301.00001", "Strings on a Lattice", "High Energy Physics - Theory (hep-th)")
	require.NoError(t, x.Put(ctx, rec))

	rec.Title = "Strings on a Circle"
	require.NoError(t, x.Put(ctx, rec))
	recs, err := x.Search(ctx, "lattice", DefaultBaseURL, 10)
	require.NoError(t, err)
	assert.Empty(t, recs)

	require.NoError(t, x.Delete(ctx, rec.ID))
	recs, err = x.Search(ctx, "circle", DefaultBaseURL, 10)
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestIndexSearchMalformedQuery(t *testing.T) {
	x := openTestIndex(t)
	ctx := context.Background()
	require.NoError(t, x.Put(ctx, testRecord("2301.00001", `Quotes "inside" titles`, "Quantum Physics (quant-ph)")))

	recs, err := x.Search(ctx, `"inside`, DefaultBaseURL, 10)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "2301.00001", recs[0].ID)
}

func TestIndexStats(t *testing.T) {
	x := openTestIndex(t)
	ctx := context.Background()

	st, err := x.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, st.Records)
	assert.True(t, st.LastFetched.IsZero())

	require.NoError(t, x.Put(ctx, testRecord("2301.00001", "A", "Quantum Physics (quant-ph)")))
	require.NoError(t, x.Put(ctx, testRecord("2301.00002", "B", "Quantum Physics (quant-ph)")))
	require.NoError(t, x.Put(ctx, testRecord("2301.00003", "C", "Machine Learning (cs.LG)")))

	st, err = x.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), st.Records)
	assert.Equal(t, int64(2), st.Categories)
	assert.WithinDuration(t, time.Now(), st.LastFetched, time.Minute)
}

func TestIndexReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.db")
	ctx := context.Background()

	x, err := OpenIndex(path)
	require.NoError(t, err)
	require.NoError(t, x.Put(ctx, testRecord("2301.00001", "A", "Quantum Physics (quant-ph)")))
	require.NoError(t, x.Close())

	x, err = OpenIndex(path)
	require.NoError(t, err)
	defer x.Close()
	got, err := x.Get(ctx, "2301.00001", DefaultBaseURL)
	require.NoError(t, err)
	assert.Equal(t, "A", got.Title)
}

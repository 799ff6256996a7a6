package arxivhunter

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

func newTestHunter(t *testing.T) (*Hunter, *fakeArxiv) {
	t.Helper()
	f := newFakeArxiv(t)
	h, err := New(testConfig(t, f.URL()), zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { h.Close() })
	return h, f
}

func TestHunterAddCommentRemove(t *testing.T) {
	h, f := newTestHunter(t)
	f.setPage("1234.5678", readTestdata(t, "abs_1234.5678.html"))
	ctx := context.Background()

	rec, err := h.Add(ctx, "1234.5678", "interesting")
	require.NoError(t, err)
	assert.Equal(t, "High_Energy_Physics_-_Theory_hep-th", rec.StoreName())

	comment, err := h.Comment("1234.5678")
	require.NoError(t, err)
	assert.Equal(t, "interesting", comment)

	data := readFile(t, h.Store().Path(rec.StoreName()))
	want := `1234.5678 & A Study of Things \& Stuff & Jane Doe, John Q. Smith, Collaboration & interesting & \href{` +
		f.URL() + `/abs/1234.5678}{arxiv} & \href{` + f.URL() + `/pdf/1234.5678.pdf}{pdf} \\` + "\n"
	assert.Equal(t, want, data)

	missing, err := h.Remove(ctx, "1234.5678")
	require.NoError(t, err)
	assert.Empty(t, missing)

	comment, err = h.Comment("1234.5678")
	require.NoError(t, err)
	assert.Equal(t, "", comment)
}

func TestHunterAddExisting(t *testing.T) {
	h, f := newTestHunter(t)
	f.setPage("2301.00001", absPage("First", "Quantum Physics (quant-ph)", "Doe, Jane"))
	ctx := context.Background()

	_, err := h.Add(ctx, "2301.00001", "one")
	require.NoError(t, err)

	rec, err := h.Add(ctx, "2301.00001", "two")
	require.ErrorIs(t, err, ErrExists)
	require.NotNil(t, rec)

	comment, err := h.Comment("2301.00001")
	require.NoError(t, err)
	assert.Equal(t, "one", comment)
}

func TestHunterAddFindsRowInOtherStore(t *testing.T) {
	h, f := newTestHunter(t)
	f.setPage("2301.00001", absPage("T", "Quantum Physics (quant-ph)", "Doe, Jane"))
	ctx := context.Background()
	_, err := h.Add(ctx, "2301.00001", "one")
	require.NoError(t, err)

	// The category changed upstream; the old row still counts.
	f.setPage("2301.00001", absPage("T", "Mathematical Physics (math-ph)", "Doe, Jane"))
	h.client.Forget("2301.00001")
	_, err = h.Add(ctx, "2301.00001", "two")
	assert.ErrorIs(t, err, ErrExists)
	assert.False(t, h.Store().Exists("Mathematical_Physics_math-ph"))
}

func TestHunterCommentLogsMissingStoreFile(t *testing.T) {
	f := newFakeArxiv(t)
	cfg := testConfig(t, f.URL())
	core, logs := observer.New(zap.WarnLevel)
	h, err := New(cfg, zap.New(core))
	require.NoError(t, err)
	t.Cleanup(func() { h.Close() })
	require.NoError(t, os.MkdirAll(filepath.Join(cfg.DataDir(), "Orphan"), 0o755))

	comment, err := h.Comment("1234.5678")
	require.NoError(t, err)
	assert.Equal(t, "", comment)
	assert.Equal(t, 1, logs.FilterMessage("skipping store").Len())
}

func TestHunterAddFailures(t *testing.T) {
	h, f := newTestHunter(t)
	f.setPage("2301.00002", absPage("T", "Quantum Physics (quant-ph)", "Doe, Jane, Jr."))
	ctx := context.Background()

	_, err := h.Add(ctx, "2301.00001", "-")
	assert.ErrorIs(t, err, ErrNetwork)

	_, err = h.Add(ctx, "2301.00002", "-")
	assert.ErrorIs(t, err, ErrParse)

	stores, err := h.Store().Categories()
	require.NoError(t, err)
	assert.Empty(t, stores, "failed adds must not touch the stores")
}

func TestHunterEdit(t *testing.T) {
	h, f := newTestHunter(t)
	f.setPage("2301.00001", absPage("Old Title", "Quantum Physics (quant-ph)", "Doe, Jane"))
	f.setPage("2301.00002", absPage("Neighbour", "Quantum Physics (quant-ph)", "Lee, Ann"))
	ctx := context.Background()

	_, err := h.Add(ctx, "2301.00001", "old")
	require.NoError(t, err)
	_, err = h.Add(ctx, "2301.00002", "-")
	require.NoError(t, err)

	f.setPage("2301.00001", absPage("New Title", "Quantum Physics (quant-ph)", "Doe, Jane"))
	rec, err := h.Edit(ctx, "2301.00001", "new")
	require.NoError(t, err)
	assert.Equal(t, "New Title", rec.Title)
	assert.Equal(t, 2, f.hitCount("2301.00001"), "edit fetches again")

	rows, err := h.Store().Rows("Quantum_Physics_quant-ph")
	require.NoError(t, err)
	count := 0
	for _, r := range rows {
		if r.ID == "2301.00001" {
			count++
			assert.Equal(t, "new", r.Comment)
			assert.Equal(t, "New Title", r.Title)
		}
	}
	assert.Equal(t, 1, count)
	assert.Len(t, rows, 2)
}

func TestHunterEditMovesCategory(t *testing.T) {
	h, f := newTestHunter(t)
	f.setPage("2301.00001", absPage("T", "Quantum Physics (quant-ph)", "Doe, Jane"))
	ctx := context.Background()
	_, err := h.Add(ctx, "2301.00001", "old")
	require.NoError(t, err)

	f.setPage("2301.00001", absPage("T", "Mathematical Physics (math-ph)", "Doe, Jane"))
	_, err = h.Edit(ctx, "2301.00001", "new")
	require.NoError(t, err)

	store, row, err := h.Store().Find("2301.00001")
	require.NoError(t, err)
	assert.Equal(t, "Mathematical_Physics_math-ph", store)
	assert.Equal(t, "new", row.Comment)
	assert.Equal(t, "", h.Store().Comment("Quantum_Physics_quant-ph", "2301.00001"))
}

func TestHunterRemoveReportsMissing(t *testing.T) {
	h, f := newTestHunter(t)
	f.setPage("2301.00001", absPage("T", "Quantum Physics (quant-ph)", "Doe, Jane"))
	ctx := context.Background()
	_, err := h.Add(ctx, "2301.00001", "-")
	require.NoError(t, err)

	missing, err := h.Remove(ctx, "2301.00001", "2301.09999")
	require.NoError(t, err)
	assert.Equal(t, []string{"2301.09999"}, missing)

	_, err = h.index.Get(ctx, "2301.00001", h.Config().BaseURL)
	assert.ErrorIs(t, err, ErrNotFound, "removed records leave the index")
}

func TestHunterRebuildAndCompile(t *testing.T) {
	requireTool(t, "true")
	h, f := newTestHunter(t)
	f.setPage("2301.00001", absPage("T", "Quantum Physics (quant-ph)", "Doe, Jane"))
	ctx := context.Background()
	_, err := h.Add(ctx, "2301.00001", "-")
	require.NoError(t, err)

	sections, err := h.Rebuild()
	require.NoError(t, err)
	require.Len(t, sections, 1)
	assert.Equal(t, h.Config().TeXPath(), h.Document().Path())
	assert.Contains(t, readFile(t, h.Document().Path()), `\section{Quantum Physics quant-ph}`)
	require.NoError(t, h.Compile(ctx))

	_, err = h.Remove(ctx, "2301.00001")
	require.NoError(t, err)
	sections, err = h.Rebuild()
	require.NoError(t, err)
	assert.Empty(t, sections)
	assert.False(t, h.Store().Exists("Quantum_Physics_quant-ph"))
}

func TestHunterRefresh(t *testing.T) {
	h, f := newTestHunter(t)
	f.setPage("2301.00001", absPage("Stays", "Quantum Physics (quant-ph)", "Doe, Jane"))
	f.setPage("2301.00002", absPage("Moves", "Quantum Physics (quant-ph)", "Lee, Ann"))
	f.setPage("2301.00003", absPage("Vanishes", "Quantum Physics (quant-ph)", "Roe, Rick"))
	ctx := context.Background()
	for _, id := range []string{"2301.00001", "2301.00002", "2301.00003"} {
		_, err := h.Add(ctx, id, "note "+id)
		require.NoError(t, err)
	}

	f.setPage("2301.00001", absPage("Stays, Retitled", "Quantum Physics (quant-ph)", "Doe, Jane"))
	f.setPage("2301.00002", absPage("Moves", "Mathematical Physics (math-ph)", "Lee, Ann"))
	f.setPage("2301.00003", "<html></html>")

	var seen []string
	n, err := h.Refresh(ctx, func(id string, err error) {
		seen = append(seen, id)
	})
	assert.Equal(t, 2, n)
	require.ErrorIs(t, err, ErrParse)
	assert.Contains(t, err.Error(), "2301.00003")
	assert.ElementsMatch(t, []string{"2301.00001", "2301.00002", "2301.00003"}, seen)

	_, row, err := h.Store().Find("2301.00001")
	require.NoError(t, err)
	assert.Equal(t, "Stays, Retitled", row.Title)
	assert.Equal(t, "note 2301.00001", row.Comment)

	store, row, err := h.Store().Find("2301.00002")
	require.NoError(t, err)
	assert.Equal(t, "Mathematical_Physics_math-ph", store)
	assert.Equal(t, "note 2301.00002", row.Comment)

	_, row, err = h.Store().Find("2301.00003")
	require.NoError(t, err)
	assert.Equal(t, "Vanishes", row.Title, "failed refresh keeps the old row")
}

func TestHunterRefreshMovesIntoLaterStoreOnce(t *testing.T) {
	h, f := newTestHunter(t)
	f.setPage("2301.00001", absPage("Moves", "Astrophysics (astro-ph)", "Doe, Jane"))
	f.setPage("2301.00002", absPage("Stays", "Quantum Physics (quant-ph)", "Lee, Ann"))
	ctx := context.Background()
	for _, id := range []string{"2301.00001", "2301.00002"} {
		_, err := h.Add(ctx, id, "note "+id)
		require.NoError(t, err)
	}

	f.setPage("2301.00001", absPage("Moves", "Quantum Physics (quant-ph)", "Doe, Jane"))
	var seen []string
	n, err := h.Refresh(ctx, func(id string, err error) {
		require.NoError(t, err)
		seen = append(seen, id)
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"2301.00001", "2301.00002"}, seen)
	assert.Equal(t, 2, f.hitCount("2301.00001"), "one fetch on add, one on refresh")

	rows, err := h.Store().Rows("Quantum_Physics_quant-ph")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "2301.00001", rows[1].ID)
	assert.Equal(t, "note 2301.00001", rows[1].Comment)

	sections, err := h.Rebuild()
	require.NoError(t, err)
	require.Len(t, sections, 1, "the emptied astro-ph store is dropped")
}

func TestHunterShowAndSearch(t *testing.T) {
	h, f := newTestHunter(t)
	f.setPage("1234.5678", readTestdata(t, "abs_1234.5678.html"))
	f.setPage("2301.00001", absPage("Unrelated", "Quantum Physics (quant-ph)", "Doe, Jane"))
	ctx := context.Background()

	_, err := h.Add(ctx, "1234.5678", "-")
	require.NoError(t, err)

	rec, err := h.Show(ctx, "1234.5678")
	require.NoError(t, err)
	assert.Equal(t, "We study things. Also stuff.", rec.Abstract)
	assert.Equal(t, 1, f.hitCount("1234.5678"), "show reads the index")

	// Not in the table: fetched and indexed on demand.
	rec, err = h.Show(ctx, "2301.00001")
	require.NoError(t, err)
	assert.Equal(t, "Unrelated", rec.Title)

	recs, err := h.Search(ctx, "stuff", 10)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "1234.5678", recs[0].ID)
}

func TestHunterExport(t *testing.T) {
	h, f := newTestHunter(t)
	f.setPage("1234.5678", readTestdata(t, "abs_1234.5678.html"))
	ctx := context.Background()
	_, err := h.Add(ctx, "1234.5678", "interesting")
	require.NoError(t, err)

	entries, err := h.Entries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.NotNil(t, entries[0].Record)

	var buf bytes.Buffer
	require.NoError(t, h.Export(ctx, &buf, FormatBibTeX))
	got := buf.String()
	assert.True(t, strings.HasPrefix(got, "@misc{doe2012a,\n"), got)
	assert.Contains(t, got, "primaryClass = {hep-th},")
	assert.Contains(t, got, "note = {interesting},")
}

func TestHunterStats(t *testing.T) {
	h, f := newTestHunter(t)
	f.setPage("2301.00001", absPage("A", "Quantum Physics (quant-ph)", "Doe, Jane"))
	f.setPage("2301.00002", absPage("B", "Machine Learning (cs.LG)", "Lee, Ann"))
	ctx := context.Background()
	for _, id := range []string{"2301.00001", "2301.00002"} {
		_, err := h.Add(ctx, id, "-")
		require.NoError(t, err)
	}

	st, err := h.Stats(ctx)
	require.NoError(t, err)
	want := &Stats{Stores: 2, Rows: 2}
	if diff := cmp.Diff(want, st, cmpopts.IgnoreFields(Stats{}, "Index")); diff != "" {
		t.Errorf("Stats mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, int64(2), st.Index.Records)
}

func TestHunterLatest(t *testing.T) {
	h, f := newTestHunter(t)
	f.setFeed("hep-th", readTestdata(t, "rss_hep-th.xml"))

	listings, err := h.Latest(context.Background(), "hep-th")
	require.NoError(t, err)
	assert.Len(t, listings, 2)
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig(t, DefaultBaseURL)
	cfg.Document = "../escape"
	_, err := New(cfg, nil)
	assert.Error(t, err)
}

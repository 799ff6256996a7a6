package arxivhunter

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"
)

// Hunter ties the fetcher, the category stores, the metadata index and the
// document together. It assumes it is the only writer of cfg.Root.
type Hunter struct {
	cfg      *Config
	client   *Client
	store    *Store
	index    *Index
	doc      *Document
	compiler *Compiler
	log      *zap.Logger
}

// New opens the bibliography described by cfg.
func New(cfg *Config, log *zap.Logger) (*Hunter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}

	index, err := OpenIndex(cfg.IndexPath())
	if err != nil {
		return nil, err
	}
	store := NewStore(cfg.DataDir(), log.Named("store"))
	return &Hunter{
		cfg:      cfg,
		client:   NewClient(cfg, log.Named("fetch")),
		store:    store,
		index:    index,
		doc:      NewDocument(cfg, store, log.Named("document")),
		compiler: NewCompiler(cfg, log.Named("compile")),
		log:      log,
	}, nil
}

// Close releases the metadata index.
func (h *Hunter) Close() error {
	return h.index.Close()
}

// Config returns the configuration the Hunter was opened with.
func (h *Hunter) Config() *Config {
	return h.cfg
}

// Document exposes the aggregate document.
func (h *Hunter) Document() *Document {
	return h.doc
}

// Store exposes the category stores.
func (h *Hunter) Store() *Store {
	return h.store
}

// Add fetches id and stores it with comment. When id already has a row the
// record is returned together with ErrExists and nothing changes.
func (h *Hunter) Add(ctx context.Context, id, comment string) (*Record, error) {
	rec, err := h.client.Fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	// The row may sit in another store if the category changed upstream.
	store, _, err := h.store.Find(rec.ID)
	switch {
	case err == nil:
		return rec, fmt.Errorf("%w: %s in %s", ErrExists, rec.ID, store)
	case !errors.Is(err, ErrNotFound):
		return nil, err
	}
	if err := h.store.Add(rec, comment); err != nil {
		if errors.Is(err, ErrExists) {
			return rec, err
		}
		return nil, err
	}
	h.indexRecord(ctx, rec)
	h.log.Info("added record", zap.String("id", rec.ID), zap.String("store", rec.StoreName()))
	return rec, nil
}

// Edit replaces the comment of id. The record is fetched again and its
// row removed and re-added, so title, authors and category are refreshed
// too. Exactly one row for id remains afterwards.
func (h *Hunter) Edit(ctx context.Context, id, comment string) (*Record, error) {
	h.client.Forget(id)
	rec, err := h.client.Fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	removed, err := h.store.Remove(rec.ID)
	if err != nil {
		return nil, err
	}
	if removed == 0 {
		h.log.Warn("editing a record that had no row", zap.String("id", rec.ID))
	}
	if err := h.store.Add(rec, comment); err != nil {
		return nil, err
	}
	h.indexRecord(ctx, rec)
	h.log.Info("edited record", zap.String("id", rec.ID), zap.String("store", rec.StoreName()))
	return rec, nil
}

// Remove deletes the rows for ids from every store. It returns the ids that
// had no row.
func (h *Hunter) Remove(ctx context.Context, ids ...string) (missing []string, err error) {
	var present []string
	for _, id := range ids {
		if _, _, err := h.store.Find(id); err != nil {
			if !errors.Is(err, ErrNotFound) {
				return nil, err
			}
			missing = append(missing, id)
			continue
		}
		present = append(present, id)
	}
	if len(present) == 0 {
		return missing, nil
	}

	n, err := h.store.Remove(present...)
	if err != nil {
		return missing, err
	}
	if err := h.index.Delete(ctx, present...); err != nil {
		h.log.Warn("metadata index out of sync", zap.Error(err))
	}
	h.log.Info("removed records", zap.Strings("ids", present), zap.Int("rows", n))
	return missing, nil
}

// Comment returns the stored comment for id, or "" when id has no row.
func (h *Hunter) Comment(id string) (string, error) {
	_, row, err := h.store.Find(id)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return row.Comment, nil
}

// Rebuild regenerates the aggregate document.
func (h *Hunter) Rebuild() ([]Section, error) {
	return h.doc.Rebuild()
}

// Compile typesets the aggregate document.
func (h *Hunter) Compile(ctx context.Context) error {
	return h.compiler.Compile(ctx)
}

// View opens the compiled document in the configured viewer.
func (h *Hunter) View() error {
	return h.compiler.View()
}

// ProgressFunc is called once per record during Refresh and Download.
type ProgressFunc func(id string, err error)

// Refresh fetches every stored record again and rewrites its row, keeping
// the comment. A record whose category changed moves to its new store.
// Failures are reported through fn and joined into the returned error.
func (h *Hunter) Refresh(ctx context.Context, fn ProgressFunc) (int, error) {
	stores, err := h.store.Categories()
	if err != nil {
		return 0, err
	}

	// Snapshot every row first: a record that changes category moves into
	// another store and must not be visited again there.
	type storedRow struct {
		store string
		row   Row
	}
	var pending []storedRow
	var errs []error
	for _, store := range stores {
		if !h.store.Exists(store) {
			continue
		}
		rows, err := h.store.Rows(store)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		for _, row := range rows {
			pending = append(pending, storedRow{store: store, row: row})
		}
	}

	refreshed := 0
	for _, p := range pending {
		if err := ctx.Err(); err != nil {
			return refreshed, errors.Join(append(errs, err)...)
		}
		err := h.refreshRow(ctx, p.store, p.row)
		if fn != nil {
			fn(p.row.ID, err)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("refresh %s: %w", p.row.ID, err))
			continue
		}
		refreshed++
	}
	return refreshed, errors.Join(errs...)
}

func (h *Hunter) refreshRow(ctx context.Context, store string, row Row) error {
	h.client.Forget(row.ID)
	rec, err := h.client.Fetch(ctx, row.ID)
	if err != nil {
		return err
	}
	if rec.StoreName() == store {
		if err := h.store.Replace(store, rec.Row(row.Comment)); err != nil {
			return err
		}
	} else {
		if _, err := h.store.RemoveFrom(store, row.ID); err != nil {
			return err
		}
		if err := h.store.Add(rec, row.Comment); err != nil {
			return err
		}
		h.log.Info("record changed category", zap.String("id", row.ID),
			zap.String("from", store), zap.String("to", rec.StoreName()))
	}
	h.indexRecord(ctx, rec)
	return nil
}

// Download saves the PDFs of ids under the root's pdf directory, or of
// every stored record when ids is empty. It returns how many files are
// present afterwards.
func (h *Hunter) Download(ctx context.Context, fn ProgressFunc, ids ...string) (int, error) {
	if len(ids) == 0 {
		entries, err := h.Entries(ctx)
		if err != nil {
			return 0, err
		}
		for _, e := range entries {
			ids = append(ids, e.Row.ID)
		}
	}

	var errs []error
	n := 0
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return n, errors.Join(append(errs, err)...)
		}
		_, err := h.client.DownloadPDF(ctx, id, h.cfg.PDFDir())
		if fn != nil {
			fn(id, err)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("download %s: %w", id, err))
			continue
		}
		n++
	}
	return n, errors.Join(errs...)
}

// Show returns the full metadata for id, from the index when possible.
func (h *Hunter) Show(ctx context.Context, id string) (*Record, error) {
	rec, err := h.index.Get(ctx, id, h.cfg.BaseURL)
	if err == nil {
		return rec, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	rec, err = h.client.Fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	h.indexRecord(ctx, rec)
	return rec, nil
}

// Search runs a full-text query over indexed titles and abstracts.
func (h *Hunter) Search(ctx context.Context, query string, limit int) ([]Record, error) {
	return h.index.Search(ctx, query, h.cfg.BaseURL, limit)
}

// Entries lists every stored row with its indexed metadata, in store order.
func (h *Hunter) Entries(ctx context.Context) ([]Entry, error) {
	stores, err := h.store.Categories()
	if err != nil {
		return nil, err
	}
	var entries []Entry
	for _, store := range stores {
		if !h.store.Exists(store) {
			continue
		}
		rows, err := h.store.Rows(store)
		if err != nil {
			return nil, err
		}
		for _, row := range rows {
			e := Entry{Store: store, Row: row}
			if rec, err := h.index.Get(ctx, row.ID, h.cfg.BaseURL); err == nil {
				e.Record = rec
			}
			entries = append(entries, e)
		}
	}
	return entries, nil
}

// Export writes every stored record to w in format.
func (h *Hunter) Export(ctx context.Context, w io.Writer, format string) error {
	entries, err := h.Entries(ctx)
	if err != nil {
		return err
	}
	return WriteEntries(w, format, entries)
}

// Latest lists the newest submissions of an arXiv archive.
func (h *Hunter) Latest(ctx context.Context, archive string) ([]Listing, error) {
	return h.client.Latest(ctx, archive)
}

// Stats summarises the stores and the index.
type Stats struct {
	Stores int
	Rows   int
	Index  *IndexStats
}

// Stats counts stores and rows and reads the index statistics.
func (h *Hunter) Stats(ctx context.Context) (*Stats, error) {
	stores, err := h.store.Categories()
	if err != nil {
		return nil, err
	}
	st := &Stats{}
	for _, store := range stores {
		if !h.store.Exists(store) {
			continue
		}
		rows, err := h.store.Rows(store)
		if err != nil {
			return nil, err
		}
		st.Stores++
		st.Rows += len(rows)
	}
	if st.Index, err = h.index.Stats(ctx); err != nil {
		return nil, err
	}
	return st, nil
}

func (h *Hunter) indexRecord(ctx context.Context, rec *Record) {
	if err := h.index.Put(ctx, rec); err != nil {
		h.log.Warn("metadata index out of sync", zap.String("id", rec.ID), zap.Error(err))
	}
}

package renamer

import (
	"context"
	"errors"
	"os"
	"strings"
	"syscall"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moyu-x/doc-renamer/internal"
	"github.com/moyu-x/doc-renamer/internal/fixture"
	"github.com/moyu-x/doc-renamer/pkg/extractor"
	"github.com/moyu-x/doc-renamer/pkg/ledger"
	"github.com/moyu-x/doc-renamer/pkg/naming"
	"github.com/moyu-x/doc-renamer/pkg/scanner"
)

var allCategories = internal.AllCategories()

func heading(title string) []byte {
	return fixture.Docx(fixture.Paragraph{Style: "Heading1", Text: title})
}

func writeFiles(t *testing.T, fs afero.Fs, files map[string][]byte) {
	t.Helper()
	for path, content := range files {
		require.NoError(t, afero.WriteFile(fs, path, content, 0644))
	}
}

func scan(t *testing.T, fs afero.Fs) []internal.ScannedFile {
	t.Helper()
	files, err := scanner.NewFileWalker(fs).Scan("/rec")
	require.NoError(t, err)
	return files
}

type batch struct {
	renamer *Renamer
	ledger  *ledger.Ledger
	store   ledger.Store
}

func newBatch(fs afero.Fs, store ledger.Store, opts Options) batch {
	if opts.Categories == nil {
		opts.Categories = allCategories
	}
	l := ledger.New(store, opts.Mode)
	return batch{
		renamer: New(fs, extractor.New(fs, 80), l, opts),
		ledger:  l,
		store:   store,
	}
}

func run(t *testing.T, fs afero.Fs, store ledger.Store, opts Options) (*internal.BatchStats, []internal.Outcome) {
	t.Helper()
	b := newBatch(fs, store, opts)
	stats, outcomes, err := b.renamer.Run(context.Background(), scan(t, fs))
	require.NoError(t, err)
	return stats, outcomes
}

func names(t *testing.T, fs afero.Fs) []string {
	t.Helper()
	entries, err := afero.ReadDir(fs, "/rec")
	require.NoError(t, err)
	var out []string
	for _, e := range entries {
		out = append(out, e.Name())
	}
	return out
}

func TestRun_DuplicateTitles(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFiles(t, fs, map[string][]byte{
		"/rec/a.docx": heading("Invoice March"),
		"/rec/b.docx": heading("Invoice March"),
	})

	stats, outcomes := run(t, fs, ledger.NewMemoryStore(), Options{Mode: internal.ModeApply})

	require.Len(t, outcomes, 2)
	assert.Equal(t, "Invoice March.docx", outcomes[0].NewName)
	assert.Equal(t, "Invoice March (1).docx", outcomes[1].NewName)
	assert.Equal(t, 2, stats.Renamed)
	assert.ElementsMatch(t, []string{"Invoice March.docx", "Invoice March (1).docx"}, names(t, fs))
}

func TestRun_CorruptFileFails(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFiles(t, fs, map[string][]byte{
		"/rec/sheet.xlsx": []byte("PK\x03\x04 not really a workbook"),
	})

	stats, outcomes := run(t, fs, ledger.NewMemoryStore(), Options{Mode: internal.ModeApply})

	require.Len(t, outcomes, 1)
	assert.Equal(t, internal.StatusFailed, outcomes[0].Status)
	assert.Equal(t, internal.ReasonCorrupt, outcomes[0].Reason)
	assert.NotEmpty(t, outcomes[0].Detail)
	assert.Equal(t, 1, stats.Failed)

	data, err := afero.ReadFile(fs, "/rec/sheet.xlsx")
	require.NoError(t, err)
	assert.Equal(t, "PK\x03\x04 not really a workbook", string(data))
}

func TestRun_PreviewOnlyWordSelected(t *testing.T) {
	fs := afero.NewMemMapFs()
	book, err := fixture.Xlsx("", [][]string{{"Budget"}})
	require.NoError(t, err)
	writeFiles(t, fs, map[string][]byte{
		"/rec/doc1.docx":  heading("Meeting Notes"),
		"/rec/book1.xlsx": book,
		"/rec/data.csv":   []byte("name,value\n"),
	})
	before := names(t, fs)

	store := ledger.NewMemoryStore()
	stats, outcomes := run(t, fs, store, Options{
		Mode:       internal.ModePreview,
		Categories: []internal.Category{internal.CategoryWord},
	})

	require.Len(t, outcomes, 3)
	var renamed, notSelected int
	for _, o := range outcomes {
		switch {
		case o.Status == internal.StatusRenamed:
			renamed++
			assert.True(t, o.Preview)
			assert.Equal(t, "Meeting Notes.docx", o.NewName)
		case o.Status == internal.StatusSkipped && o.Reason == internal.ReasonNotSelected:
			notSelected++
		}
	}
	assert.Equal(t, 1, renamed)
	assert.Equal(t, 2, notSelected)
	assert.Equal(t, 1, stats.Renamed)
	assert.Equal(t, before, names(t, fs))

	// 预览条目不可撤销
	batches, err := ledger.LoadBatches(store)
	require.NoError(t, err)
	require.Len(t, batches, 1)
	assert.Equal(t, ledger.OutcomePlanned, batches[0].Entries[0].Outcome)
}

func TestRun_Idempotent(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFiles(t, fs, map[string][]byte{
		"/rec/a.docx":   heading("Invoice March"),
		"/rec/b.docx":   heading("Invoice March"),
		"/rec/c.docx":   heading("Untitled"),
		"/rec/d.pptx":   fixture.Pptx([]fixture.Slide{{Title: "Roadmap"}}, nil),
		"/rec/bad.docx": {},
	})

	run(t, fs, ledger.NewMemoryStore(), Options{Mode: internal.ModeApply})
	first := names(t, fs)
	assert.Contains(t, first, naming.FallbackName("/rec/c.docx")+".docx")

	stats, outcomes := run(t, fs, ledger.NewMemoryStore(), Options{Mode: internal.ModeApply})
	assert.Equal(t, first, names(t, fs))
	assert.Equal(t, 0, stats.Renamed)
	for _, o := range outcomes {
		if o.Status == internal.StatusSkipped {
			assert.Equal(t, internal.ReasonAlreadyNamed, o.Reason, o.OriginalName)
		} else {
			assert.Equal(t, "bad.docx", o.OriginalName)
		}
	}
}

func TestRun_UndoRestoresOriginalNames(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFiles(t, fs, map[string][]byte{
		"/rec/a.docx": heading("Invoice March"),
		"/rec/b.docx": heading("Invoice March"),
		"/rec/c.csv":  []byte("cliente;valor\n"),
		"/rec/d.pptx": fixture.Pptx([]fixture.Slide{{Title: "Roadmap"}}, nil),
	})
	original := names(t, fs)

	store, err := ledger.OpenFileStore(fs, "/rec/"+internal.DefaultLedgerFile)
	require.NoError(t, err)
	defer store.Close()

	stats, _ := run(t, fs, store, Options{Mode: internal.ModeApply})
	require.Equal(t, 4, stats.Renamed)

	results, err := ledger.Undo(fs, store, stats.BatchID)
	require.NoError(t, err)
	require.Len(t, results, 4)
	for _, r := range results {
		assert.Equal(t, ledger.UndoRestored, r.Status)
	}

	after := names(t, fs)
	assert.ElementsMatch(t, append(original, internal.DefaultLedgerFile), after)
}

func TestRun_UnsupportedFiles(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFiles(t, fs, map[string][]byte{
		"/rec/notes.txt": []byte("hello"),
	})

	_, outcomes := run(t, fs, ledger.NewMemoryStore(), Options{Mode: internal.ModeApply})
	require.Len(t, outcomes, 1)
	assert.Equal(t, internal.StatusSkipped, outcomes[0].Status)
	assert.Equal(t, internal.ReasonUnsupported, outcomes[0].Reason)
}

func TestRun_DestinationAppearsDuringBatch(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFiles(t, fs, map[string][]byte{
		"/rec/a.docx": heading("Alpha"),
		"/rec/b.docx": heading("Beta"),
	})

	_, outcomes := run(t, fs, ledger.NewMemoryStore(), Options{
		Mode: internal.ModeApply,
		OnOutcome: func(done, total int, o internal.Outcome) {
			if done == 1 {
				require.NoError(t, afero.WriteFile(fs, "/rec/Beta.docx", []byte("other"), 0644))
			}
		},
	})

	require.Len(t, outcomes, 2)
	assert.Equal(t, internal.StatusRenamed, outcomes[0].Status)
	assert.Equal(t, internal.StatusFailed, outcomes[1].Status)
	assert.Equal(t, ReasonDestExists, outcomes[1].Reason)

	data, err := afero.ReadFile(fs, "/rec/Beta.docx")
	require.NoError(t, err)
	assert.Equal(t, "other", string(data))
}

func TestRun_StopAfterCurrentFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFiles(t, fs, map[string][]byte{
		"/rec/a.docx": heading("One"),
		"/rec/b.docx": heading("Two"),
		"/rec/c.docx": heading("Three"),
	})

	var b batch
	b = newBatch(fs, ledger.NewMemoryStore(), Options{
		Mode:      internal.ModeApply,
		OnOutcome: func(done, total int, o internal.Outcome) { b.renamer.Stop() },
	})

	stats, outcomes, err := b.renamer.Run(context.Background(), scan(t, fs))
	require.NoError(t, err)
	assert.Len(t, outcomes, 1)
	assert.True(t, stats.Stopped)
	assert.Len(t, b.ledger.Entries(), 1)
}

func TestRun_ContextCancelled(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFiles(t, fs, map[string][]byte{"/rec/a.docx": heading("One")})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	b := newBatch(fs, ledger.NewMemoryStore(), Options{Mode: internal.ModeApply})
	stats, outcomes, err := b.renamer.Run(ctx, scan(t, fs))
	require.NoError(t, err)
	assert.Empty(t, outcomes)
	assert.True(t, stats.Stopped)
}

func TestRun_Preconditions(t *testing.T) {
	fs := afero.NewMemMapFs()
	b := newBatch(fs, ledger.NewMemoryStore(), Options{})
	_, _, err := b.renamer.Run(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoFiles)

	b = newBatch(fs, ledger.NewMemoryStore(), Options{Categories: []internal.Category{}})
	files := []internal.ScannedFile{{Path: "/rec/a.docx", Ext: ".docx", Category: internal.CategoryWord}}
	_, _, err = b.renamer.Run(context.Background(), files)
	assert.ErrorIs(t, err, ErrNoCategories)
}

func TestRun_UniqueNamesPerDirectory(t *testing.T) {
	fs := afero.NewMemMapFs()
	files := map[string][]byte{}
	for _, n := range []string{"1", "2", "3", "4", "5", "6", "7", "8"} {
		files["/rec/f"+n+".docx"] = heading("Report")
	}
	writeFiles(t, fs, files)

	_, outcomes := run(t, fs, ledger.NewMemoryStore(), Options{Mode: internal.ModeApply, Workers: 3})

	seen := map[string]bool{}
	for _, o := range outcomes {
		require.Equal(t, internal.StatusRenamed, o.Status)
		key := strings.ToLower(o.NewName)
		assert.False(t, seen[key], o.NewName)
		seen[key] = true
	}
	assert.Len(t, names(t, fs), 8)
}

func TestClassifyError(t *testing.T) {
	cases := map[string]error{
		ReasonPermission:    &os.PathError{Op: "rename", Path: "/x", Err: os.ErrPermission},
		ReasonSourceMissing: &os.LinkError{Op: "rename", Old: "/x", New: "/y", Err: os.ErrNotExist},
		ReasonDestExists:    os.ErrExist,
		ReasonPathTooLong:   &os.PathError{Op: "rename", Path: "/x", Err: syscall.ENAMETOOLONG},
		ReasonCollision:     naming.ErrCollisionExhausted,
		"boom":              errors.New("boom"),
	}
	for want, err := range cases {
		assert.Equal(t, want, classifyError(err))
	}
}

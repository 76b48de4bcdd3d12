package ledger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moyu-x/doc-renamer/internal"
)

func TestLedger_RecordAndMarkOutcome(t *testing.T) {
	store := NewMemoryStore()
	l := New(store, internal.ModeApply)
	require.NotEmpty(t, l.BatchID())

	id, err := l.Record("/rec/doc1.docx", "/rec/Invoice.docx", Fingerprint{Size: 3, Digest: "abc"})
	require.NoError(t, err)

	// record 事件必须在返回前写入存储
	events, err := store.Events()
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, EventRecord, events[0].Kind)
	assert.Equal(t, OutcomePending, events[0].Outcome)

	require.NoError(t, l.MarkOutcome(id, OutcomeRenamed, ""))

	entries := l.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, OutcomeRenamed, entries[0].Outcome)
	assert.Equal(t, "/rec/doc1.docx", entries[0].OriginalPath)
	assert.Equal(t, l.BatchID(), entries[0].BatchID)

	assert.ErrorIs(t, l.MarkOutcome("nope", OutcomeFailed, "x"), ErrUnknownEntry)
}

func TestLedger_PreviewEntriesArePlanned(t *testing.T) {
	l := New(NewMemoryStore(), internal.ModePreview)
	_, err := l.Record("/rec/a.pdf", "/rec/B.pdf", Fingerprint{})
	require.NoError(t, err)
	assert.Equal(t, OutcomePlanned, l.Entries()[0].Outcome)
}

func TestLoadBatches_FoldsEvents(t *testing.T) {
	store := NewMemoryStore()

	first := New(store, internal.ModeApply)
	a, _ := first.Record("/rec/a.docx", "/rec/A.docx", Fingerprint{Size: 1})
	b, _ := first.Record("/rec/b.docx", "/rec/B.docx", Fingerprint{Size: 1})
	require.NoError(t, first.MarkOutcome(a, OutcomeRenamed, ""))
	require.NoError(t, first.MarkOutcome(b, OutcomeFailed, "permission denied"))

	second := New(store, internal.ModeApply)
	_, _ = second.Record("/rec/c.docx", "/rec/C.docx", Fingerprint{Size: 1})

	batches, err := LoadBatches(store)
	require.NoError(t, err)
	require.Len(t, batches, 2)

	assert.Equal(t, first.BatchID(), batches[0].ID)
	require.Len(t, batches[0].Entries, 2)
	assert.Equal(t, OutcomeRenamed, batches[0].Entries[0].Outcome)
	assert.Equal(t, OutcomeFailed, batches[0].Entries[1].Outcome)
	assert.Equal(t, "permission denied", batches[0].Entries[1].Reason)
	assert.Equal(t, 1, batches[0].Revertible())

	// 没有结果事件的条目保持 pending
	assert.Equal(t, OutcomePending, batches[1].Entries[0].Outcome)

	latest, err := FindBatch(batches, "")
	require.NoError(t, err)
	assert.Equal(t, second.BatchID(), latest.ID)

	_, err = FindBatch(batches, "missing")
	assert.ErrorIs(t, err, ErrBatchNotFound)
}

func TestFileStore_AppendAndReopen(t *testing.T) {
	fs := afero.NewMemMapFs()
	path := "/rec/.doc-renamer-ledger.jsonl"

	store, err := OpenFileStore(fs, path)
	require.NoError(t, err)
	l := New(store, internal.ModeApply)
	id, err := l.Record("/rec/a.csv", "/rec/Clientes.csv", Fingerprint{Size: 10, Digest: "00ff"})
	require.NoError(t, err)
	require.NoError(t, l.MarkOutcome(id, OutcomeRenamed, ""))
	require.NoError(t, store.Close())

	// 模拟崩溃时写了一半的最后一行
	f, err := fs.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0644)
	require.NoError(t, err)
	_, err = f.Write([]byte(`{"kind":"record","batch":"x`))
	require.NoError(t, err)
	require.NoError(t, f.Close())

	reopened, err := OpenFileStore(fs, path)
	require.NoError(t, err)
	defer reopened.Close()

	batches, err := LoadBatches(reopened)
	require.NoError(t, err)
	require.Len(t, batches, 1)
	require.Len(t, batches[0].Entries, 1)

	entry := batches[0].Entries[0]
	assert.Equal(t, OutcomeRenamed, entry.Outcome)
	assert.Equal(t, Fingerprint{Size: 10, Digest: "00ff"}, entry.Fingerprint)
	assert.Equal(t, internal.ModeApply, batches[0].Mode)

	events, err := ReadFileEvents(fs, "/rec/none.jsonl")
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestFileStore_TornLineDoesNotSwallowNextRecord(t *testing.T) {
	fs := afero.NewMemMapFs()
	path := "/rec/.doc-renamer-ledger.jsonl"
	require.NoError(t, afero.WriteFile(fs, path, []byte(`{"kind":"record","batch":"old","entry":"x","mo`), 0644))

	store, err := OpenFileStore(fs, path)
	require.NoError(t, err)
	defer store.Close()

	l := New(store, internal.ModeApply)
	id, err := l.Record("/rec/a.docx", "/rec/Invoice March.docx", Fingerprint{Size: 4, Digest: "0a0b"})
	require.NoError(t, err)
	require.NoError(t, l.MarkOutcome(id, OutcomeRenamed, ""))

	batches, err := LoadBatches(store)
	require.NoError(t, err)
	batch, err := FindBatch(batches, l.BatchID())
	require.NoError(t, err)
	require.Len(t, batch.Entries, 1)
	assert.Equal(t, OutcomeRenamed, batch.Entries[0].Outcome)

	latest, err := FindBatch(batches, "")
	require.NoError(t, err)
	assert.Equal(t, l.BatchID(), latest.ID)
}

func TestSQLStore(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "history.db")

	store, err := OpenSQLStore(dbPath)
	if err != nil {
		t.Fatalf("OpenSQLStore() error = %v", err)
	}

	l := New(store, internal.ModeApply)
	id, err := l.Record("/rec/a.pptx", "/rec/Roadmap.pptx", Fingerprint{Size: 42, Digest: "beef"})
	if err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if err := l.MarkOutcome(id, OutcomeRenamed, ""); err != nil {
		t.Fatalf("MarkOutcome() error = %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	store, err = OpenSQLStore(dbPath)
	if err != nil {
		t.Fatalf("OpenSQLStore() reopen error = %v", err)
	}
	defer store.Close()

	batches, err := LoadBatches(store)
	if err != nil {
		t.Fatalf("LoadBatches() error = %v", err)
	}
	if len(batches) != 1 || len(batches[0].Entries) != 1 {
		t.Fatalf("Expected 1 batch with 1 entry, got %+v", batches)
	}

	entry := batches[0].Entries[0]
	if entry.Outcome != OutcomeRenamed {
		t.Errorf("Expected outcome %s, got %s", OutcomeRenamed, entry.Outcome)
	}
	if entry.Fingerprint.Digest != "beef" || entry.Fingerprint.Size != 42 {
		t.Errorf("Unexpected fingerprint %+v", entry.Fingerprint)
	}
	if entry.NewPath != "/rec/Roadmap.pptx" {
		t.Errorf("Unexpected new path %s", entry.NewPath)
	}
}

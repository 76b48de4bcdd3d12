package ledger

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moyu-x/doc-renamer/internal"
)

// renameWithLedger 按先记录后重命名的顺序执行一次重命名
func renameWithLedger(t *testing.T, fs afero.Fs, l *Ledger, from, to string) string {
	t.Helper()
	fp, err := FingerprintOf(fs, from)
	require.NoError(t, err)
	id, err := l.Record(from, to, fp)
	require.NoError(t, err)
	require.NoError(t, fs.Rename(from, to))
	require.NoError(t, l.MarkOutcome(id, OutcomeRenamed, ""))
	return id
}

func TestUndo_RestoresOriginalNames(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/rec/a.docx", []byte("aaa"), 0644))
	require.NoError(t, afero.WriteFile(fs, "/rec/b.docx", []byte("bbb"), 0644))

	store := NewMemoryStore()
	l := New(store, internal.ModeApply)
	renameWithLedger(t, fs, l, "/rec/a.docx", "/rec/Invoice March.docx")
	renameWithLedger(t, fs, l, "/rec/b.docx", "/rec/Invoice March (1).docx")

	results, err := Undo(fs, store, "")
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.Equal(t, UndoRestored, r.Status)
	}
	// 按相反顺序撤销
	assert.Equal(t, "/rec/b.docx", results[0].Entry.OriginalPath)

	for path, content := range map[string]string{"/rec/a.docx": "aaa", "/rec/b.docx": "bbb"} {
		data, err := afero.ReadFile(fs, path)
		require.NoError(t, err)
		assert.Equal(t, content, string(data))
	}

	// 已撤销的批次不会再被选中
	batches, err := LoadBatches(store)
	require.NoError(t, err)
	assert.Equal(t, 2, batches[0].Count(OutcomeReverted))
	_, err = Undo(fs, store, "")
	assert.ErrorIs(t, err, ErrBatchNotFound)
}

func TestUndo_SkipsExternallyChangedEntries(t *testing.T) {
	fs := afero.NewMemMapFs()
	for _, name := range []string{"a", "b", "c", "d"} {
		require.NoError(t, afero.WriteFile(fs, "/rec/"+name+".pdf", []byte("content-"+name), 0644))
	}

	store := NewMemoryStore()
	l := New(store, internal.ModeApply)
	renameWithLedger(t, fs, l, "/rec/a.pdf", "/rec/A.pdf")
	renameWithLedger(t, fs, l, "/rec/b.pdf", "/rec/B.pdf")
	renameWithLedger(t, fs, l, "/rec/c.pdf", "/rec/C.pdf")
	renameWithLedger(t, fs, l, "/rec/d.pdf", "/rec/D.pdf")

	require.NoError(t, fs.Remove("/rec/A.pdf"))
	require.NoError(t, afero.WriteFile(fs, "/rec/b.pdf", []byte("new file"), 0644))
	require.NoError(t, afero.WriteFile(fs, "/rec/C.pdf", []byte("content-X"), 0644))

	results, err := Undo(fs, store, l.BatchID())
	require.NoError(t, err)

	byOriginal := map[string]UndoResult{}
	for _, r := range results {
		byOriginal[r.Entry.OriginalPath] = r
	}

	assert.Equal(t, ReasonNewPathMissing, byOriginal["/rec/a.pdf"].Reason)
	assert.Equal(t, ReasonOriginalExists, byOriginal["/rec/b.pdf"].Reason)
	assert.Equal(t, ReasonModified, byOriginal["/rec/c.pdf"].Reason)
	assert.Equal(t, UndoRestored, byOriginal["/rec/d.pdf"].Status)

	// 被跳过的文件保持不变
	data, err := afero.ReadFile(fs, "/rec/b.pdf")
	require.NoError(t, err)
	assert.Equal(t, "new file", string(data))
	exists, _ := afero.Exists(fs, "/rec/C.pdf")
	assert.True(t, exists)
}

func TestUndo_PendingEntriesAfterCrash(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/rec/a.xlsx", []byte("a"), 0644))
	require.NoError(t, afero.WriteFile(fs, "/rec/b.xlsx", []byte("b"), 0644))

	store := NewMemoryStore()
	l := New(store, internal.ModeApply)

	// a：记录后重命名完成，但结果事件未写入
	fp, _ := FingerprintOf(fs, "/rec/a.xlsx")
	_, err := l.Record("/rec/a.xlsx", "/rec/Budget.xlsx", fp)
	require.NoError(t, err)
	require.NoError(t, fs.Rename("/rec/a.xlsx", "/rec/Budget.xlsx"))

	// b：只写了记录，重命名没有发生
	fp, _ = FingerprintOf(fs, "/rec/b.xlsx")
	_, err = l.Record("/rec/b.xlsx", "/rec/Plan.xlsx", fp)
	require.NoError(t, err)

	results, err := Undo(fs, store, "")
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, UndoSkipped, results[0].Status)
	assert.Equal(t, ReasonNeverRenamed, results[0].Reason)
	assert.Equal(t, UndoRestored, results[1].Status)

	exists, _ := afero.Exists(fs, "/rec/a.xlsx")
	assert.True(t, exists)
}

func TestUndo_PreviewBatchRejected(t *testing.T) {
	store := NewMemoryStore()
	l := New(store, internal.ModePreview)
	_, err := l.Record("/rec/a.csv", "/rec/B.csv", Fingerprint{})
	require.NoError(t, err)

	_, err = Undo(afero.NewMemMapFs(), store, l.BatchID())
	assert.ErrorIs(t, err, ErrPreviewBatch)
}

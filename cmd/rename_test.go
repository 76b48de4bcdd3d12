package cmd

import (
	"context"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moyu-x/doc-renamer/internal"
)

type countingStopper struct {
	stops atomic.Int32
}

func (s *countingStopper) Stop() {
	s.stops.Add(1)
}

func TestStopOnDone_InterruptStopsBatch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := &countingStopper{}
	release := stopOnDone(ctx, s)

	cancel()
	require.Eventually(t, func() bool { return s.stops.Load() == 1 }, time.Second, 10*time.Millisecond)
	release()

	assert.Equal(t, int32(1), s.stops.Load())
}

func TestStopOnDone_NoStopAfterNormalFinish(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := &countingStopper{}
	release := stopOnDone(ctx, s)

	// 批处理正常结束后才取消信号上下文
	release()
	cancel()

	assert.Equal(t, int32(0), s.stops.Load())
}

func TestPrintOutcomes(t *testing.T) {
	var b strings.Builder
	printOutcomes(&b, []internal.Outcome{
		{OriginalPath: "/rec/a.docx", NewName: "Invoice March.docx", Status: internal.StatusRenamed, Preview: true},
		{OriginalPath: "/rec/b.xlsx", Status: internal.StatusFailed, Reason: internal.ReasonCorrupt, Detail: "zip: not a valid zip file"},
		{OriginalPath: "/rec/c.txt", Status: internal.StatusSkipped, Reason: internal.ReasonUnsupported},
	})

	out := b.String()
	assert.Contains(t, out, "计划  /rec/a.docx -> Invoice March.docx")
	assert.Contains(t, out, "/rec/b.xlsx (corrupt: zip: not a valid zip file)")
	assert.NotContains(t, out, "c.txt")
}

package sheets

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/saharamess/messbot/internal/model"
)

type appendedRow struct {
	sheet string
	row   []any
}

type fakeAppender struct {
	mu        sync.Mutex
	rows      []appendedRow
	attempts  int
	failFirst int
}

func (f *fakeAppender) Append(_ context.Context, sheet string, row []any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attempts++
	if f.attempts <= f.failFirst {
		return fmt.Errorf("quota exceeded")
	}
	f.rows = append(f.rows, appendedRow{sheet: sheet, row: row})
	return nil
}

func (f *fakeAppender) appended() []appendedRow {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]appendedRow, len(f.rows))
	copy(out, f.rows)
	return out
}

func TestRecorderAppendsWithTimestamp(t *testing.T) {
	appender := &fakeAppender{}
	r := NewRecorder(appender, nil, zap.NewNop())
	r.Start()

	r.Record("registrations", []any{int64(1), "B21ME1042", "PENDING"})
	r.Stop()

	rows := appender.appended()
	require.Len(t, rows, 1)
	assert.Equal(t, "registrations", rows[0].sheet)
	require.Len(t, rows[0].row, 4)
	assert.Equal(t, int64(1), rows[0].row[0])

	// The last cell is the sync timestamp.
	stamp, ok := rows[0].row[3].(string)
	require.True(t, ok)
	_, err := time.Parse(time.RFC3339, stamp)
	assert.NoError(t, err)
}

func TestRecorderKeepsRowOrder(t *testing.T) {
	appender := &fakeAppender{}
	r := NewRecorder(appender, nil, zap.NewNop())
	r.Start()

	for i := 0; i < 5; i++ {
		r.Record("scan_events", []any{int64(i)})
	}
	r.Stop()

	rows := appender.appended()
	require.Len(t, rows, 5)
	for i, row := range rows {
		assert.Equal(t, int64(i), row.row[0])
	}
}

func TestRecorderRetriesTransientFailure(t *testing.T) {
	appender := &fakeAppender{failFirst: 1}
	r := NewRecorder(appender, nil, zap.NewNop())
	r.Start()

	r.Record("payments", []any{int64(7)})
	r.Stop()

	rows := appender.appended()
	require.Len(t, rows, 1)
	assert.Equal(t, 2, appender.attempts)
}

func TestRecorderReplay(t *testing.T) {
	appender := &fakeAppender{}
	r := NewRecorder(appender, nil, zap.NewNop())

	letter := &model.DeadLetter{
		ID:        1,
		Operation: model.OpSheetsAppend,
		Payload:   map[string]any{"sheet": "payments", "row": []any{float64(7), "VERIFIED"}},
	}
	require.NoError(t, r.Replay(context.Background(), letter))

	rows := appender.appended()
	require.Len(t, rows, 1)
	assert.Equal(t, "payments", rows[0].sheet)

	assert.Error(t, r.Replay(context.Background(), &model.DeadLetter{ID: 2, Payload: map[string]any{"row": []any{}}}))
	assert.Error(t, r.Replay(context.Background(), &model.DeadLetter{ID: 3, Payload: map[string]any{"sheet": "x"}}))
}

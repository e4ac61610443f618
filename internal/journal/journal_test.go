package journal

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/cellref/internal/script"
)

func sampleReport(name string, started time.Time) *script.Report {
	return &script.Report{
		Script:     name,
		StartedAt:  started,
		FinishedAt: started.Add(time.Millisecond),
		Failures:   1,
		Steps: []script.StepResult{
			{Seq: 1, Cell: "n", Op: script.OpAdd, Result: "3", OK: true},
			{Seq: 2, Cell: "n", Op: script.OpGet, Result: "3", Expect: "4", OK: false},
		},
	}
}

func openJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(t.TempDir(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j
}

func TestOpen(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	j, err := Open(dir, nil)
	require.NoError(t, err)
	defer j.Close()

	assert.Equal(t, filepath.Join(dir, FileName), j.Path())
	_, err = os.Stat(j.Path())
	assert.NoError(t, err, "journal.db not created")
}

func TestRecordAndSteps(t *testing.T) {
	j := openJournal(t)

	started := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	id, err := j.Record(sampleReport("demo", started))
	require.NoError(t, err)

	parsed, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())

	steps, err := j.Steps(id)
	require.NoError(t, err)
	require.Len(t, steps, 2)
	assert.Equal(t, Step{RunID: id, Seq: 1, Cell: "n", Op: "add", Result: "3", OK: true}, steps[0])
	assert.Equal(t, Step{RunID: id, Seq: 2, Cell: "n", Op: "get", Result: "3", Expect: "4", OK: false}, steps[1])

	runs, err := j.Runs(0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, id, runs[0].RunID)
	assert.Equal(t, "demo", runs[0].Script)
	assert.Equal(t, 2, runs[0].Steps)
	assert.Equal(t, 1, runs[0].Failures)
	assert.True(t, runs[0].StartedAt.Equal(started))
	assert.True(t, runs[0].FinishedAt.Equal(started.Add(time.Millisecond)))
}

func TestRuns_OrderAndLimit(t *testing.T) {
	j := openJournal(t)

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	var ids []string
	for i, name := range []string{"first", "second", "third"} {
		id, err := j.Record(sampleReport(name, base.Add(time.Duration(i)*time.Hour)))
		require.NoError(t, err)
		ids = append(ids, id)
	}

	runs, err := j.Runs(0)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, "third", runs[0].Script)
	assert.Equal(t, "first", runs[2].Script)

	runs, err = j.Runs(2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, ids[2], runs[0].RunID)
	assert.Equal(t, ids[1], runs[1].RunID)
}

func TestRuns_Empty(t *testing.T) {
	j := openJournal(t)
	runs, err := j.Runs(10)
	require.NoError(t, err)
	assert.Empty(t, runs)
	assert.NotNil(t, runs)
}

func TestSteps_UnknownRun(t *testing.T) {
	j := openJournal(t)
	_, err := j.Steps("does-not-exist")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestReopenKeepsRuns(t *testing.T) {
	dir := t.TempDir()

	j, err := Open(dir, nil)
	require.NoError(t, err)
	id, err := j.Record(sampleReport("kept", time.Now()))
	require.NoError(t, err)
	require.NoError(t, j.Close())

	j, err = Open(dir, nil)
	require.NoError(t, err)
	defer j.Close()

	steps, err := j.Steps(id)
	require.NoError(t, err)
	assert.Len(t, steps, 2)
}

func TestClose(t *testing.T) {
	j, err := Open(t.TempDir(), nil)
	require.NoError(t, err)

	require.NoError(t, j.Close())
	assert.NoError(t, j.Close(), "Close must be idempotent")

	_, err = j.Record(sampleReport("late", time.Now()))
	assert.ErrorIs(t, err, ErrClosed)
	_, err = j.Runs(0)
	assert.ErrorIs(t, err, ErrClosed)
	_, err = j.Steps("x")
	assert.ErrorIs(t, err, ErrClosed)
}

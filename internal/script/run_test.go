package script

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunner_Counter(t *testing.T) {
	s, err := Load(filepath.Join("testdata", "counter.yaml"))
	require.NoError(t, err)

	report, err := NewRunner(nil).Run(s)
	require.NoError(t, err)
	require.NoError(t, report.Err())
	assert.Zero(t, report.Failures)

	var results []string
	for _, st := range report.Steps {
		assert.True(t, st.OK, "step %d (%s %s) got %q want %q", st.Seq, st.Cell, st.Op, st.Result, st.Expect)
		results = append(results, st.Result)
	}
	want := []string{"3", "5", "1", "2", "2", "[1 2]", "hello, world", "12", "5", "10", "0"}
	if diff := cmp.Diff(want, results); diff != "" {
		t.Errorf("step results mismatch (-want +got):\n%s", diff)
	}

	wantFinal := map[string]string{
		"count":    "Cell{0}",
		"items":    "Cell{[1 2]}",
		"greeting": "Cell{hello, world}",
	}
	if diff := cmp.Diff(wantFinal, report.Final); diff != "" {
		t.Errorf("final cells mismatch (-want +got):\n%s", diff)
	}
	assert.False(t, report.FinishedAt.Before(report.StartedAt))
}

func TestRunner_ExpectationFailure(t *testing.T) {
	logger, hook := test.NewNullLogger()

	s, err := Load(filepath.Join("testdata", "failing.yaml"))
	require.NoError(t, err)

	report, err := NewRunner(logger).Run(s)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Failures)
	assert.ErrorIs(t, report.Err(), ErrExpectation)

	require.Len(t, report.Steps, 2)
	assert.False(t, report.Steps[0].OK)
	assert.Equal(t, "2", report.Steps[0].Result)
	assert.Equal(t, "3", report.Steps[0].Expect)
	assert.True(t, report.Steps[1].OK)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Equal(t, "expectation failed", entry.Message)
	assert.Equal(t, "n", entry.Data["cell"])
}

func TestRunner_Operations(t *testing.T) {
	tests := []struct {
		name     string
		doc      string
		want     []string
		failures int
	}{
		{
			name: "int set and replace",
			doc: `
cells: [{name: n, kind: int, value: 7}]
steps:
  - {cell: n, op: set, arg: 1}
  - {cell: n, op: replace, arg: 2}
  - {cell: n, op: get}
`,
			want: []string{"1", "1", "2"},
		},
		{
			name: "text take leaves empty",
			doc: `
cells: [{name: s, kind: text, value: abc}]
steps:
  - {cell: s, op: take}
  - {cell: s, op: len}
  - {cell: s, op: set, arg: xy}
  - {cell: s, op: replace, arg: z}
  - {cell: s, op: get}
`,
			want: []string{"abc", "0", "xy", "xy", "z"},
		},
		{
			name: "list set take and replace",
			doc: `
cells: [{name: l, kind: list, value: [3]}]
steps:
  - {cell: l, op: set, arg: [4, 5]}
  - {cell: l, op: replace, arg: [6]}
  - {cell: l, op: take}
  - {cell: l, op: get}
  - {cell: l, op: push, arg: 9}
`,
			want: []string{"[4 5]", "[4 5]", "[6]", "[]", "1"},
		},
		{
			name: "text expect keeps numeric-looking scalars",
			doc: `
cells: [{name: s, kind: text}]
steps:
  - {cell: s, op: set, arg: "1.50"}
  - {cell: s, op: get, expect: 1.50}
  - {cell: s, op: len, expect: 4}
`,
			want: []string{"1.50", "1.50", "4"},
		},
		{
			name: "empty expect matches empty text",
			doc: `
cells: [{name: s, kind: text, value: abc}]
steps:
  - {cell: s, op: take, expect: abc}
  - cell: s
    op: get
    expect:
`,
			want: []string{"abc", ""},
		},
		{
			name: "list expects per op",
			doc: `
cells: [{name: l, kind: list}]
steps:
  - {cell: l, op: push, arg: 7, expect: 1}
  - {cell: l, op: get, expect: [7]}
  - {cell: l, op: len, expect: 2}
`,
			want:     []string{"1", "[7]", "1"},
			failures: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Parse([]byte(tt.doc))
			require.NoError(t, err)
			report, err := NewRunner(nil).Run(s)
			require.NoError(t, err)

			var got []string
			for _, st := range report.Steps {
				got = append(got, st.Result)
			}
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.failures, report.Failures)
		})
	}
}

func TestRunner_InvalidExpect(t *testing.T) {
	s, err := Parse([]byte(`
cells: [{name: n, kind: int}]
steps:
  - {cell: n, op: get, expect: zero}
`))
	require.NoError(t, err)

	_, err = NewRunner(nil).Run(s)
	assert.ErrorIs(t, err, ErrInvalidArg)
}

func TestRunner_InvalidArg(t *testing.T) {
	s, err := Parse([]byte(`
cells: [{name: n, kind: int}]
steps:
  - {cell: n, op: add, arg: many}
`))
	require.NoError(t, err)

	_, err = NewRunner(nil).Run(s)
	assert.ErrorIs(t, err, ErrInvalidArg)
}

func TestRunner_InvalidInitialValue(t *testing.T) {
	s, err := Parse([]byte(`cells: [{name: l, kind: list, value: nope}]`))
	require.NoError(t, err)

	_, err = NewRunner(nil).Run(s)
	assert.ErrorIs(t, err, ErrInvalidArg)
}

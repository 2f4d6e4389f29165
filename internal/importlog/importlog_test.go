package importlog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tally-dev/tally/internal/model"
	"github.com/tally-dev/tally/internal/pipeline"
)

var testTime = time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC)

func testEntry() Entry {
	return Entry{
		Timestamp: testTime,
		BatchID:   "6f1c1f0e-8a4b-4c7e-9d42-3b2a1d0c9e8f",
		Bank:      "Chase",
		File:      "chase_checking.csv",
		AccountID: 1,
		Rows:      6,
		Imported:  5,
		Failed:    1,
		Net:       decimal.RequireFromString("-142.37"),
	}
}

func TestAppend_NewFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Append(dir, []Entry{testEntry()}))

	entries, err := Read(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Chase", entries[0].Bank)
}

func TestAppend_ExistingFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Append(dir, []Entry{testEntry()}))

	e2 := testEntry()
	e2.Bank = "American Express"
	e2.AccountID = 2
	require.NoError(t, Append(dir, []Entry{e2}))

	entries, err := Read(dir)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "Chase", entries[0].Bank)
	assert.Equal(t, "American Express", entries[1].Bank)
	assert.Equal(t, 2, entries[1].AccountID)

	data, err := os.ReadFile(filepath.Join(dir, File))
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(data), Header))
}

func TestRead_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	original := testEntry()
	require.NoError(t, Append(dir, []Entry{original}))

	entries, err := Read(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	got := entries[0]
	assert.True(t, original.Timestamp.Equal(got.Timestamp))
	assert.Equal(t, original.BatchID, got.BatchID)
	assert.Equal(t, original.File, got.File)
	assert.Equal(t, original.Rows, got.Rows)
	assert.Equal(t, original.Imported, got.Imported)
	assert.Equal(t, original.Failed, got.Failed)
	assert.True(t, original.Net.Equal(got.Net))
}

func TestRead_NotFound(t *testing.T) {
	entries, err := Read(t.TempDir())
	require.NoError(t, err)
	assert.Nil(t, entries)
}

func TestRead_EmptyFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "logs"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, File), []byte(Header+"\n"), 0o644))

	entries, err := Read(dir)
	require.NoError(t, err)
	assert.Nil(t, entries)
}

func TestMarshalEntry(t *testing.T) {
	row := MarshalEntry(testEntry())
	assert.Equal(t, []string{
		"2025-01-15T10:30:00Z",
		"6f1c1f0e-8a4b-4c7e-9d42-3b2a1d0c9e8f",
		"Chase",
		"chase_checking.csv",
		"1", "6", "5", "1",
		"-142.37",
	}, row)
}

func TestUnmarshalEntry_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func([]string)
		want   string
	}{
		{"timestamp", func(r []string) { r[colTimestamp] = "yesterday" }, "parsing timestamp"},
		{"account", func(r []string) { r[colAccountID] = "one" }, "\"one\""},
		{"net", func(r []string) { r[colNet] = "lots" }, "parsing net"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := MarshalEntry(testEntry())
			tt.mutate(row)
			_, err := UnmarshalEntry(row)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	_, err := UnmarshalEntry([]string{"one", "two"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected 9 fields")
}

func TestFromResult(t *testing.T) {
	r := &pipeline.Result{
		Batch: &pipeline.Batch{
			ID:        "batch-1",
			AccountID: 3,
			Rows:      4,
			Transactions: []model.TransactionImport{
				{Amount: decimal.RequireFromString("10.00")},
				{Amount: decimal.RequireFromString("-2.50")},
			},
			RowErrors: []pipeline.RowError{{Index: 2, Kind: model.ErrorInvalidDate}, {Index: 3, Kind: model.ErrorInvalidAmount}},
			Net:       decimal.RequireFromString("7.50"),
		},
		File: "/book/import/wf.csv",
		Bank: "Wells Fargo",
	}

	e := FromResult(r, testTime.In(time.FixedZone("EST", -5*3600)))
	assert.True(t, testTime.Equal(e.Timestamp))
	assert.Equal(t, time.UTC, e.Timestamp.Location())
	assert.Equal(t, "batch-1", e.BatchID)
	assert.Equal(t, "wf.csv", e.File)
	assert.Equal(t, 3, e.AccountID)
	assert.Equal(t, 4, e.Rows)
	assert.Equal(t, 2, e.Imported)
	assert.Equal(t, 2, e.Failed)
	assert.Equal(t, "7.50", e.Net.StringFixed(2))
}

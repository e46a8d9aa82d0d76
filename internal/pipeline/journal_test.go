package pipeline_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/novalabs/novawallet/internal/pipeline"
)

func newJournal(t *testing.T) *pipeline.Journal {
	t.Helper()
	j, err := pipeline.OpenJournal(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j
}

func TestJournalRefusesDuplicatePending(t *testing.T) {
	j := newJournal(t)
	batch := [][]byte{[]byte("tx-1"), []byte("tx-2")}

	_, err := j.Begin("payment", batch)
	require.NoError(t, err)

	_, err = j.Begin("payment", batch)
	assert.ErrorIs(t, err, pipeline.ErrAlreadyPending)

	// A different batch is unaffected.
	_, err = j.Begin("payment", [][]byte{[]byte("tx-3")})
	assert.NoError(t, err)
}

func TestJournalDoneAllowsResubmit(t *testing.T) {
	j := newJournal(t)
	batch := [][]byte{[]byte("tx-1")}

	entry, err := j.Begin("payment", batch)
	require.NoError(t, err)
	entry.Done()

	_, err = j.Begin("payment", batch)
	assert.NoError(t, err, "a settled batch may be submitted again")
}

func TestJournalFailAllowsResubmit(t *testing.T) {
	j := newJournal(t)
	batch := [][]byte{[]byte("tx-1")}

	entry, err := j.Begin("payment", batch)
	require.NoError(t, err)
	entry.Fail(errors.New("node unavailable"))

	_, err = j.Begin("payment", batch)
	assert.NoError(t, err)
}

func TestJournalPendingCount(t *testing.T) {
	j := newJournal(t)

	first, err := j.Begin("payment", [][]byte{[]byte("a")})
	require.NoError(t, err)
	_, err = j.Begin("collectable", [][]byte{[]byte("b")})
	require.NoError(t, err)

	n, err := j.Pending()
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	first.Done()
	n, err = j.Pending()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestNilJournalEntryIsNoOp(t *testing.T) {
	var entry *pipeline.JournalEntry
	entry.Done()
	entry.Fail(errors.New("ignored"))
}

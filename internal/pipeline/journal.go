package pipeline

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/novalabs/novawallet/internal/telemetry"
)

// Journal durably tracks every submission so a crash never silently loses a
// transaction, and an identical batch is never submitted twice while one is
// still pending. Status moves pending -> done | fail. Journal writes after
// Begin are best-effort: a journal failure must not fail a submission that
// the network already accepted.
type Journal struct {
	db *sql.DB
}

// OpenJournal opens (and if needed initializes) the journal at path.
func OpenJournal(path string) (*Journal, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS submissions (
			id TEXT PRIMARY KEY,
			batch_hash TEXT,
			kind TEXT,
			status TEXT,
			error TEXT,
			created INTEGER
		);
		CREATE INDEX IF NOT EXISTS submissions_hash ON submissions (batch_hash, status);
	`)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Journal{db: db}, nil
}

// Close releases the journal's database handle.
func (j *Journal) Close() error {
	return j.db.Close()
}

// Begin records a pending submission. It returns ErrAlreadyPending when the
// same batch already has a pending row.
func (j *Journal) Begin(kind string, batch [][]byte) (*JournalEntry, error) {
	hash := batchHash(batch)

	var existing string
	err := j.db.QueryRow(
		`SELECT id FROM submissions WHERE batch_hash = ? AND status = 'pending'`, hash,
	).Scan(&existing)
	if err == nil {
		return nil, ErrAlreadyPending
	}
	if err != sql.ErrNoRows {
		return nil, err
	}

	entry := &JournalEntry{j: j, ID: uuid.NewString(), hash: hash}
	_, err = j.db.Exec(
		`INSERT INTO submissions (id, batch_hash, kind, status, created) VALUES (?, ?, ?, 'pending', ?)`,
		entry.ID, hash, kind, time.Now().Unix(),
	)
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// Pending returns how many submissions are still in flight.
func (j *Journal) Pending() (int, error) {
	var n int
	err := j.db.QueryRow(`SELECT COUNT(*) FROM submissions WHERE status = 'pending'`).Scan(&n)
	return n, err
}

// JournalEntry is one in-flight submission. A nil entry (journal disabled)
// accepts every call as a no-op.
type JournalEntry struct {
	j    *Journal
	ID   string
	hash string
}

// Done marks the submission dispatched.
func (e *JournalEntry) Done() {
	e.setStatus("done", "")
}

// Fail records the submission's failure.
func (e *JournalEntry) Fail(err error) {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	e.setStatus("fail", msg)
}

func (e *JournalEntry) setStatus(status, errMsg string) {
	if e == nil {
		return
	}
	_, err := e.j.db.Exec(
		`UPDATE submissions SET status = ?, error = ? WHERE id = ?`,
		status, errMsg, e.ID,
	)
	if err != nil {
		telemetry.Logger("pipeline").WithError(err).Warn("journal update failed")
	}
}

func batchHash(batch [][]byte) string {
	h := sha256.New()
	for _, tx := range batch {
		h.Write(tx)
	}
	return hex.EncodeToString(h.Sum(nil))
}

package remote

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/novalabs/novawallet/internal/account"
)

// SQLite is a metadata store backed by a local sqlite database. It mirrors
// the cloud store's shape (accounts, contacts, default pointer) and is
// synced upstream outside this module.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (and if needed initializes) the metadata database at path.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS accounts (
			address TEXT PRIMARY KEY,
			alias TEXT,
			solana_address TEXT
		);

		CREATE TABLE IF NOT EXISTS contacts (
			position INTEGER PRIMARY KEY AUTOINCREMENT,
			address TEXT UNIQUE,
			alias TEXT,
			solana_address TEXT
		);

		CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT
		);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing metadata db: %w", err)
	}

	return &SQLite{db: db}, nil
}

// Close releases the underlying database handle.
func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) RestoreAccounts(ctx context.Context) (*Restoration, error) {
	res := &Restoration{Accounts: make(map[string]*account.Account)}

	rows, err := s.db.QueryContext(ctx, `SELECT address, alias, solana_address FROM accounts`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		res.Accounts[a.Address] = a
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	contacts, err := s.db.QueryContext(ctx, `SELECT address, alias, solana_address FROM contacts ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer contacts.Close()
	for contacts.Next() {
		c, err := scanAccount(contacts)
		if err != nil {
			return nil, err
		}
		res.Contacts = append(res.Contacts, c)
	}
	if err := contacts.Err(); err != nil {
		return nil, err
	}

	res.DefaultAddress, err = s.GetDefaultAddress(ctx)
	if err != nil {
		return nil, err
	}

	return res, nil
}

func (s *SQLite) UpdateAccounts(ctx context.Context, accounts map[string]*account.Account) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM accounts`); err != nil {
		return err
	}
	for _, a := range accounts {
		_, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO accounts (address, alias, solana_address) VALUES (?, ?, ?)`,
			a.Address, a.Alias, a.SolanaAddress)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLite) UpdateContacts(ctx context.Context, contacts []*account.Account) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM contacts`); err != nil {
		return err
	}
	for _, c := range contacts {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO contacts (address, alias, solana_address) VALUES (?, ?, ?)`,
			c.Address, c.Alias, c.SolanaAddress)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLite) GetDefaultAddress(ctx context.Context) (string, error) {
	var addr string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE key = 'default_address'`).Scan(&addr)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return addr, err
}

func (s *SQLite) SetDefaultAddress(ctx context.Context, address string) error {
	if address == "" {
		_, err := s.db.ExecContext(ctx, `DELETE FROM settings WHERE key = 'default_address'`)
		return err
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO settings (key, value) VALUES ('default_address', ?)`, address)
	return err
}

// SignOut wipes every table, matching the cloud store's sign-out semantics.
func (s *SQLite) SignOut(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM accounts;
		DELETE FROM contacts;
		DELETE FROM settings;
	`)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*account.Account, error) {
	var a account.Account
	var solanaAddr sql.NullString
	if err := row.Scan(&a.Address, &a.Alias, &solanaAddr); err != nil {
		return nil, err
	}
	if solanaAddr.Valid {
		a.SolanaAddress = solanaAddr.String
	}
	a.NetType = account.DeriveNetType(a.Address)
	return &a, nil
}

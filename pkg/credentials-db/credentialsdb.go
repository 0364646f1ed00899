package credentialsdb

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

var (
	//go:embed files/create_credentials_table.sql
	CREATE_CREDENTIALS_TABLE_SQL string
)

type Entry struct {
	Name      string
	Value     string
	UpdatedOn time.Time
}

func Initialize(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(CREATE_CREDENTIALS_TABLE_SQL); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// GetCredential returns nil when no value is stored under name.
func GetCredential(ctx context.Context, db *sql.DB, name string) (*Entry, error) {
	row := db.QueryRowContext(ctx, "SELECT name, value, updated_on FROM credentials WHERE name = ?", name)

	entry := &Entry{}
	var updatedOn string
	err := row.Scan(&entry.Name, &entry.Value, &updatedOn)
	if err != nil && errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	entry.UpdatedOn, err = parseTime(updatedOn)
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func SetCredential(ctx context.Context, db *sql.DB, name string, value string) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO credentials (name, value, updated_on) VALUES (?, ?, ?)
			ON CONFLICT(name) DO UPDATE SET value = excluded.value, updated_on = excluded.updated_on`,
		name, value, formatTime(time.Now().UTC()))
	return err
}

func DeleteCredential(ctx context.Context, db *sql.DB, name string) error {
	_, err := db.ExecContext(ctx, "DELETE FROM credentials WHERE name = ?", name)
	return err
}

// Private

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}

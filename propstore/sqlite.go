/*
 * sqlite.go, part of gochemcore.
 *
 *
 * Copyright 2026 The gochemcore Authors
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 *
 */


package propstore

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"

	chem "github.com/rmera/gochemcore"
	_ "modernc.org/sqlite" // pure go sqlite driver
)

//SQLite is a property store in a single SQLite table. It is safe for concurrent use.
type SQLite struct {
	db        *sql.DB
	namespace string
	path      string
}

//OpenSQLite opens (creating it if needed) the SQLite database at path. Use ":memory:" for a
//database that lives only as long as the store.
func OpenSQLite(path, namespace string) (*SQLite, error) {
	if path == "" {
		path = "gochem-properties.db"
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, Error{"create dirs: " + err.Error(), []string{"OpenSQLite"}, true}
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, Error{"open sqlite: " + err.Error(), []string{"OpenSQLite"}, true}
	}
	//each connection to ":memory:" is a different database.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS snapshots (
		key TEXT PRIMARY KEY,
		payload BLOB NOT NULL
	)`); err != nil {
		db.Close()
		return nil, Error{"create snapshots table: " + err.Error(), []string{"OpenSQLite"}, true}
	}
	return &SQLite{db: db, namespace: namespace, path: path}, nil
}

//Load returns the snapshot stored for sys, or nil, nil if there is none.
func (s *SQLite) Load(ctx context.Context, sys *chem.System) (*chem.Properties, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM snapshots WHERE key = ?`, Key(s.namespace, sys)).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, Error{"select snapshot: " + err.Error(), []string{"SQLite.Load"}, true}
	}
	return checked(payload, sys, "SQLite.Load")
}

//Save stores p for sys, replacing whatever was stored for the same system.
func (s *SQLite) Save(ctx context.Context, sys *chem.System, p *chem.Properties) error {
	data, err := Encode(sys, p)
	if err != nil {
		return errDecorate(err, "SQLite.Save")
	}
	if _, err = s.db.ExecContext(ctx, `INSERT INTO snapshots(key,payload) VALUES(?,?) ON CONFLICT(key) DO UPDATE SET payload=excluded.payload`,
		Key(s.namespace, sys), data); err != nil {
		return Error{"upsert snapshot: " + err.Error(), []string{"SQLite.Save"}, true}
	}
	return nil
}

//Len returns the number of stored snapshots, in every namespace.
func (s *SQLite) Len(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM snapshots`).Scan(&n); err != nil {
		return 0, Error{"count snapshots: " + err.Error(), []string{"SQLite.Len"}, true}
	}
	return n, nil
}

// Path returns the configured database path.
func (s *SQLite) Path() string { return s.path }

//Close closes the database.
func (s *SQLite) Close() error { return s.db.Close() }

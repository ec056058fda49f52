// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/bspindex/bspidx/pkg/model"
	"github.com/bspindex/bspidx/pkg/store"
)

// Store is the persistent store.Store implementation. It holds one
// *sql.DB limited to a single open connection — the store is logically
// single-writer, and modernc.org/sqlite serializes writers on the same
// file regardless, so there is nothing to gain from a pool here.
type Store struct {
	db   *sql.DB
	path string

	mu sync.Mutex
	tx *sql.Tx // set only while Transaction(...) is running
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Open creates the schema on first use (idempotent) and applies the
// write-throughput tuning pragmas. dbPath's parent directory is created if
// missing.
func Open(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}
	db.SetMaxOpenConns(1)

	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", p, err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{db: db, path: dbPath}, nil
}

func (s *Store) Path() string { return s.path }

func (s *Store) Close() error { return s.db.Close() }

// conn returns the current execer: the active transaction if Transaction
// is in progress, otherwise the shared *sql.DB.
func (s *Store) conn() execer {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tx != nil {
		return s.tx
	}
	return s.db
}

// withTx runs fn in its own single-statement-group transaction, unless a
// Transaction(...) call is already in progress, in which case fn reuses it
// — satisfying "insert_symbols etc. must execute in a single transaction
// per call" without forcing every call site to manage a *sql.Tx itself.
func (s *Store) withTx(ctx context.Context, fn func(tx execer) error) error {
	s.mu.Lock()
	if s.tx != nil {
		tx := s.tx
		s.mu.Unlock()
		return fn(tx)
	}
	s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (s *Store) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	s.mu.Lock()
	if s.tx != nil {
		s.mu.Unlock()
		return fmt.Errorf("store: nested Transaction calls are not supported")
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("begin transaction: %w", err)
	}
	s.tx = tx
	s.mu.Unlock()

	runErr := fn(ctx)

	s.mu.Lock()
	s.tx = nil
	s.mu.Unlock()

	if runErr != nil {
		_ = tx.Rollback()
		return runErr
	}
	return tx.Commit()
}

func (s *Store) InsertFile(ctx context.Context, f model.File) (int64, error) {
	var id int64
	err := s.withTx(ctx, func(tx execer) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO files (path, name, kind, size, mtime, hash)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(path) DO UPDATE SET
				name = excluded.name,
				kind = excluded.kind,
				size = excluded.size,
				mtime = excluded.mtime,
				hash = excluded.hash
		`, f.Path, f.Name, string(f.Kind), f.Size, f.MTime, f.Hash)
		if err != nil {
			return fmt.Errorf("upsert file: %w", err)
		}
		row := tx.QueryRowContext(ctx, `SELECT id FROM files WHERE path = ?`, f.Path)
		return row.Scan(&id)
	})
	return id, err
}

func (s *Store) GetFile(ctx context.Context, id int64) (*model.File, error) {
	row := s.conn().QueryRowContext(ctx, `
		SELECT id, path, name, kind, size, mtime, hash FROM files WHERE id = ?
	`, id)
	var f model.File
	var kind string
	if err := row.Scan(&f.ID, &f.Path, &f.Name, &kind, &f.Size, &f.MTime, &f.Hash); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	f.Kind = model.FileKind(kind)
	return &f, nil
}

func (s *Store) DeleteFile(ctx context.Context, path string) error {
	return s.withTx(ctx, func(tx execer) error {
		var id int64
		err := tx.QueryRowContext(ctx, `SELECT id FROM files WHERE path = ?`, path).Scan(&id)
		if err == sql.ErrNoRows {
			return nil
		}
		if err != nil {
			return fmt.Errorf("lookup file id: %w", err)
		}

		stmts := []struct {
			query string
			arg   int64
		}{
			{`DELETE FROM dt_properties WHERE node_id IN (SELECT id FROM dt_nodes WHERE file_id = ?)`, id},
			{`DELETE FROM symbols WHERE file_id = ?`, id},
			{`DELETE FROM includes WHERE from_file_id = ?`, id},
			{`DELETE FROM dt_nodes WHERE file_id = ?`, id},
			{`DELETE FROM gpio_pins WHERE file_id = ?`, id},
			{`DELETE FROM files WHERE id = ?`, id},
		}
		for _, st := range stmts {
			if _, err := tx.ExecContext(ctx, st.query, st.arg); err != nil {
				return fmt.Errorf("delete file records: %w", err)
			}
		}
		return nil
	})
}

func (s *Store) DeleteSymbolsByFile(ctx context.Context, fileID int64) error {
	return s.withTx(ctx, func(tx execer) error {
		_, err := tx.ExecContext(ctx, `DELETE FROM symbols WHERE file_id = ?`, fileID)
		return err
	})
}

func (s *Store) DeleteIncludesByFile(ctx context.Context, fileID int64) error {
	return s.withTx(ctx, func(tx execer) error {
		_, err := tx.ExecContext(ctx, `DELETE FROM includes WHERE from_file_id = ?`, fileID)
		return err
	})
}

// DeleteDTNodesByFile removes a file's DTProperty rows first (they
// reference dt_nodes.id, which is about to disappear), then its DTNode
// rows, mirroring DeleteFile's ownership order.
func (s *Store) DeleteDTNodesByFile(ctx context.Context, fileID int64) error {
	return s.withTx(ctx, func(tx execer) error {
		if _, err := tx.ExecContext(ctx, `
			DELETE FROM dt_properties WHERE node_id IN (SELECT id FROM dt_nodes WHERE file_id = ?)
		`, fileID); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `DELETE FROM dt_nodes WHERE file_id = ?`, fileID)
		return err
	})
}

func (s *Store) DeleteDTPropertiesByFile(ctx context.Context, fileID int64) error {
	return s.withTx(ctx, func(tx execer) error {
		_, err := tx.ExecContext(ctx, `
			DELETE FROM dt_properties WHERE node_id IN (SELECT id FROM dt_nodes WHERE file_id = ?)
		`, fileID)
		return err
	})
}

func (s *Store) DeleteGPIOPinsByFile(ctx context.Context, fileID int64) error {
	return s.withTx(ctx, func(tx execer) error {
		_, err := tx.ExecContext(ctx, `DELETE FROM gpio_pins WHERE file_id = ?`, fileID)
		return err
	})
}

func (s *Store) InsertSymbols(ctx context.Context, batch []model.Symbol) error {
	if len(batch) == 0 {
		return nil
	}
	return s.withTx(ctx, func(tx execer) error {
		for _, sym := range batch {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO symbols (name, value, kind, file_id, line) VALUES (?, ?, ?, ?, ?)
			`, sym.Name, sym.Value, string(sym.Kind), sym.FileID, sym.Line); err != nil {
				return fmt.Errorf("insert symbol: %w", err)
			}
		}
		return nil
	})
}

func (s *Store) InsertIncludes(ctx context.Context, batch []model.Include) error {
	if len(batch) == 0 {
		return nil
	}
	return s.withTx(ctx, func(tx execer) error {
		for _, inc := range batch {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO includes (from_file_id, to_path, kind, line) VALUES (?, ?, ?, ?)
			`, inc.FromFileID, inc.ToPath, string(inc.Kind), inc.Line); err != nil {
				return fmt.Errorf("insert include: %w", err)
			}
		}
		return nil
	})
}

func (s *Store) InsertDTNodes(ctx context.Context, batch []model.DTNode) ([]int64, error) {
	if len(batch) == 0 {
		return nil, nil
	}
	ids := make([]int64, len(batch))
	err := s.withTx(ctx, func(tx execer) error {
		for i, n := range batch {
			res, err := tx.ExecContext(ctx, `
				INSERT INTO dt_nodes (file_id, path, name, label, address, parent_id, start_line, end_line)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			`, n.FileID, n.Path, n.Name, n.Label, n.Address, n.ParentID, n.StartLine, n.EndLine)
			if err != nil {
				return fmt.Errorf("insert dt_node: %w", err)
			}
			id, err := res.LastInsertId()
			if err != nil {
				return fmt.Errorf("dt_node last insert id: %w", err)
			}
			ids[i] = id
		}
		return nil
	})
	return ids, err
}

func (s *Store) InsertDTProperties(ctx context.Context, batch []model.DTProperty) error {
	if len(batch) == 0 {
		return nil
	}
	return s.withTx(ctx, func(tx execer) error {
		for _, p := range batch {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO dt_properties (node_id, name, value, line) VALUES (?, ?, ?, ?)
			`, p.NodeID, p.Name, p.Value, p.Line); err != nil {
				return fmt.Errorf("insert dt_property: %w", err)
			}
		}
		return nil
	})
}

func (s *Store) InsertGPIOPins(ctx context.Context, batch []model.GPIOPin) error {
	if len(batch) == 0 {
		return nil
	}
	return s.withTx(ctx, func(tx execer) error {
		for _, p := range batch {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO gpio_pins (file_id, controller, pin, label, function, direction, line)
				VALUES (?, ?, ?, ?, ?, ?, ?)
			`, p.FileID, p.Controller, p.Pin, p.Label, p.Function, string(p.Direction), p.Line); err != nil {
				return fmt.Errorf("insert gpio_pin: %w", err)
			}
		}
		return nil
	})
}

func (s *Store) FileMTimes(ctx context.Context) ([]store.FileMTime, error) {
	rows, err := s.conn().QueryContext(ctx, `SELECT path, mtime FROM files`)
	if err != nil {
		return nil, fmt.Errorf("query file mtimes: %w", err)
	}
	defer rows.Close()

	var out []store.FileMTime
	for rows.Next() {
		var fm store.FileMTime
		if err := rows.Scan(&fm.Path, &fm.MTime); err != nil {
			return nil, err
		}
		out = append(out, fm)
	}
	return out, rows.Err()
}

func (s *Store) FindSymbolExact(ctx context.Context, name string) (*model.Symbol, error) {
	row := s.conn().QueryRowContext(ctx, `
		SELECT id, name, value, kind, file_id, line FROM symbols WHERE name = ? LIMIT 1
	`, name)
	var sym model.Symbol
	var kind string
	if err := row.Scan(&sym.ID, &sym.Name, &sym.Value, &kind, &sym.FileID, &sym.Line); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	sym.Kind = model.SymbolKind(kind)
	return &sym, nil
}

func (s *Store) FindAllReferences(ctx context.Context, name string, limit int) ([]model.Symbol, error) {
	rows, err := s.conn().QueryContext(ctx, `
		SELECT s.id, s.name, s.value, s.kind, s.file_id, s.line
		FROM symbols s
		JOIN files f ON f.id = s.file_id
		WHERE s.name = ?
		ORDER BY
			CASE WHEN s.kind IN ('label', 'node') THEN 0 ELSE 1 END,
			f.path,
			s.line
		LIMIT ?
	`, name, limit)
	if err != nil {
		return nil, fmt.Errorf("find all references: %w", err)
	}
	defer rows.Close()
	return scanSymbols(rows)
}

func (s *Store) FindDTNodeByLabel(ctx context.Context, label string) (*model.DTNode, error) {
	row := s.conn().QueryRowContext(ctx, `
		SELECT id, file_id, path, name, label, address, parent_id, start_line, end_line
		FROM dt_nodes WHERE label = ? LIMIT 1
	`, label)
	var n model.DTNode
	if err := row.Scan(&n.ID, &n.FileID, &n.Path, &n.Name, &n.Label, &n.Address, &n.ParentID, &n.StartLine, &n.EndLine); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &n, nil
}

func (s *Store) FindDTLabelReferences(ctx context.Context, label string, limit int) ([]model.DTNode, error) {
	rows, err := s.conn().QueryContext(ctx, `
		SELECT id, file_id, path, name, label, address, parent_id, start_line, end_line FROM (
			SELECT n.id, n.file_id, n.path, n.name, n.label, n.address, n.parent_id, n.start_line, n.end_line,
			       f.path AS fpath
			FROM dt_nodes n JOIN files f ON f.id = n.file_id
			WHERE n.label = ?
			UNION
			SELECT DISTINCT n.id, n.file_id, n.path, n.name, n.label, n.address, n.parent_id, n.start_line, n.end_line,
			       f.path AS fpath
			FROM dt_nodes n
			JOIN dt_properties p ON p.node_id = n.id
			JOIN files f ON f.id = n.file_id
			WHERE p.value LIKE '%&' || ? || '%'
		)
		ORDER BY fpath, start_line
		LIMIT ?
	`, label, label, limit)
	if err != nil {
		return nil, fmt.Errorf("find dt label references: %w", err)
	}
	defer rows.Close()

	var out []model.DTNode
	for rows.Next() {
		var n model.DTNode
		var fpath string
		if err := rows.Scan(&n.ID, &n.FileID, &n.Path, &n.Name, &n.Label, &n.Address, &n.ParentID, &n.StartLine, &n.EndLine, &fpath); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (s *Store) FindGPIOPinsByLabel(ctx context.Context, label string) ([]model.GPIOPin, error) {
	rows, err := s.conn().QueryContext(ctx, `
		SELECT id, file_id, controller, pin, label, function, direction, line
		FROM gpio_pins WHERE label = ?
	`, label)
	if err != nil {
		return nil, fmt.Errorf("find gpio pins by label: %w", err)
	}
	defer rows.Close()

	var out []model.GPIOPin
	for rows.Next() {
		var p model.GPIOPin
		var dir string
		if err := rows.Scan(&p.ID, &p.FileID, &p.Controller, &p.Pin, &p.Label, &p.Function, &dir, &p.Line); err != nil {
			return nil, err
		}
		p.Direction = model.GPIODirection(dir)
		out = append(out, p)
	}
	return out, rows.Err()
}

// ftsSpecialChars triggers the substring-degradation fallback: any of
// "/ - . @" in the query falls back to a LIKE scan instead of FTS5, since
// those characters are either FTS5 syntax or path separators users expect
// to match literally.
var ftsSpecialChars = regexp.MustCompile(`[/\-.@]`)

// ftsTokenRe keeps only word characters for the sanitized FTS prefix query.
var ftsTokenRe = regexp.MustCompile(`\w+`)

func (s *Store) SearchSymbols(ctx context.Context, query string, limit int) ([]model.Symbol, error) {
	if query == "" {
		return nil, nil
	}
	if ftsSpecialChars.MatchString(query) {
		return s.searchSymbolsSubstring(ctx, query, limit)
	}
	return s.searchSymbolsFTS(ctx, query, limit)
}

func (s *Store) searchSymbolsFTS(ctx context.Context, query string, limit int) ([]model.Symbol, error) {
	tokens := ftsTokenRe.FindAllString(query, -1)
	if len(tokens) == 0 {
		return s.searchSymbolsSubstring(ctx, query, limit)
	}
	var ftsQuery strings.Builder
	for i, t := range tokens {
		if i > 0 {
			ftsQuery.WriteString(" ")
		}
		ftsQuery.WriteString(t)
		ftsQuery.WriteString("*")
	}

	rows, err := s.conn().QueryContext(ctx, `
		SELECT s.id, s.name, s.value, s.kind, s.file_id, s.line
		FROM symbols_fts fts
		JOIN symbols s ON s.id = fts.rowid
		WHERE symbols_fts MATCH ?
		ORDER BY
			CASE WHEN s.name = ? THEN 0 ELSE 1 END,
			length(s.name)
		LIMIT ?
	`, ftsQuery.String(), query, limit)
	if err != nil {
		// A syntactically invalid FTS5 query degrades to substring rather
		// than surfacing a query-layer failure to the caller.
		return s.searchSymbolsSubstring(ctx, query, limit)
	}
	defer rows.Close()
	return scanSymbols(rows)
}

func (s *Store) searchSymbolsSubstring(ctx context.Context, query string, limit int) ([]model.Symbol, error) {
	like := "%" + query + "%"
	rows, err := s.conn().QueryContext(ctx, `
		SELECT s.id, s.name, s.value, s.kind, s.file_id, s.line
		FROM symbols s
		JOIN files f ON f.id = s.file_id
		WHERE s.name LIKE ? OR s.value LIKE ? OR f.path LIKE ?
		ORDER BY
			CASE
				WHEN s.name = ? THEN 0
				WHEN s.name LIKE ? THEN 1
				WHEN f.path LIKE ? THEN 2
				ELSE 3
			END,
			length(s.name)
		LIMIT ?
	`, like, like, like, query, query+"%", like, limit)
	if err != nil {
		return nil, fmt.Errorf("search symbols substring: %w", err)
	}
	defer rows.Close()
	return scanSymbols(rows)
}

func (s *Store) SearchFiles(ctx context.Context, query string, limit int) ([]model.File, error) {
	if query == "" {
		return nil, nil
	}
	like := "%" + query + "%"
	rows, err := s.conn().QueryContext(ctx, `
		SELECT id, path, name, kind, size, mtime, hash FROM files
		WHERE path LIKE ? OR name LIKE ?
		ORDER BY
			CASE
				WHEN path = ? THEN 0
				WHEN name = ? THEN 1
				WHEN name LIKE ? THEN 2
				ELSE 3
			END,
			length(path)
		LIMIT ?
	`, like, like, query, query, query+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("search files: %w", err)
	}
	defer rows.Close()
	return scanFiles(rows)
}

func (s *Store) DirectoryExists(ctx context.Context, prefix string) (bool, error) {
	prefix = strings.TrimSuffix(prefix, "/")
	var count int
	err := s.conn().QueryRowContext(ctx, `
		SELECT COUNT(*) FROM files WHERE path = ? OR path LIKE ?
	`, prefix, prefix+"/%").Scan(&count)
	return count > 0, err
}

func (s *Store) FilesInDirectory(ctx context.Context, prefix string, limit int) ([]model.File, error) {
	prefix = strings.TrimSuffix(prefix, "/")
	rows, err := s.conn().QueryContext(ctx, `
		SELECT id, path, name, kind, size, mtime, hash FROM files WHERE path LIKE ? LIMIT ?
	`, prefix+"/%", limit*8+limit)
	if err != nil {
		return nil, fmt.Errorf("files in directory: %w", err)
	}
	defer rows.Close()
	all, err := scanFiles(rows)
	if err != nil {
		return nil, err
	}

	// Keep only immediate children: no further "/" after the prefix.
	var out []model.File
	for _, f := range all {
		rest := strings.TrimPrefix(f.Path, prefix+"/")
		if !strings.Contains(rest, "/") {
			out = append(out, f)
			if len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}

func (s *Store) FilesIncluding(ctx context.Context, path string) ([]string, error) {
	base := filepath.Base(path)
	rows, err := s.conn().QueryContext(ctx, `
		SELECT DISTINCT f.path
		FROM includes i JOIN files f ON f.id = i.from_file_id
		WHERE i.to_path = ? OR i.to_path LIKE ?
	`, path, "%/"+base)
	if err != nil {
		return nil, fmt.Errorf("files including: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	sort.Strings(out)
	return out, rows.Err()
}

func (s *Store) GetStats(ctx context.Context) (model.Stats, error) {
	var stats model.Stats
	queries := []struct {
		table string
		dest  *int
	}{
		{"files", &stats.Files},
		{"symbols", &stats.Symbols},
		{"includes", &stats.Includes},
		{"dt_nodes", &stats.DTNodes},
		{"gpio_pins", &stats.GPIOPins},
	}
	for _, q := range queries {
		if err := s.conn().QueryRowContext(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %s`, q.table)).Scan(q.dest); err != nil {
			return stats, fmt.Errorf("count %s: %w", q.table, err)
		}
	}
	return stats, nil
}

func (s *Store) GetMetadata(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.conn().QueryRowContext(ctx, `SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (s *Store) SetMetadata(ctx context.Context, key, value string) error {
	return s.withTx(ctx, func(tx execer) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO metadata (key, value) VALUES (?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value
		`, key, value)
		return err
	})
}

func (s *Store) Checkpoint(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `PRAGMA wal_checkpoint(TRUNCATE)`)
	return err
}

func (s *Store) ClearAll(ctx context.Context) error {
	return s.withTx(ctx, func(tx execer) error {
		for _, table := range []string{"dt_properties", "symbols", "includes", "dt_nodes", "gpio_pins", "files", "metadata"} {
			if _, err := tx.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s`, table)); err != nil {
				return fmt.Errorf("clear %s: %w", table, err)
			}
		}
		return nil
	})
}

func scanSymbols(rows *sql.Rows) ([]model.Symbol, error) {
	var out []model.Symbol
	for rows.Next() {
		var sym model.Symbol
		var kind string
		if err := rows.Scan(&sym.ID, &sym.Name, &sym.Value, &kind, &sym.FileID, &sym.Line); err != nil {
			return nil, err
		}
		sym.Kind = model.SymbolKind(kind)
		out = append(out, sym)
	}
	return out, rows.Err()
}

func scanFiles(rows *sql.Rows) ([]model.File, error) {
	var out []model.File
	for rows.Next() {
		var f model.File
		var kind string
		if err := rows.Scan(&f.ID, &f.Path, &f.Name, &kind, &f.Size, &f.MTime, &f.Hash); err != nil {
			return nil, err
		}
		f.Kind = model.FileKind(kind)
		out = append(out, f)
	}
	return out, rows.Err()
}

var _ store.Store = (*Store)(nil)

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

// Package sqlite is the modernc.org/sqlite-backed implementation of
// store.Store: a single file per project, WAL journaling, and an FTS5
// mirror of the symbols table kept in sync by triggers rather than by
// application code remembering to update it twice.
package sqlite

// schema is applied once per connection via CREATE TABLE/INDEX/TRIGGER IF
// NOT EXISTS, so opening an existing database is idempotent. Foreign-key
// enforcement is intentionally off: ownership is enforced by DeleteFile's
// explicit multi-statement delete order, not by the database engine (this
// makes bulk-insert ordering across tables irrelevant, per the store's own
// design).
const schema = `
CREATE TABLE IF NOT EXISTS files (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    path TEXT NOT NULL UNIQUE,
    name TEXT NOT NULL,
    kind TEXT NOT NULL,
    size INTEGER NOT NULL DEFAULT 0,
    mtime REAL NOT NULL DEFAULT 0,
    hash TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS symbols (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    value TEXT NOT NULL DEFAULT '',
    kind TEXT NOT NULL,
    file_id INTEGER NOT NULL,
    line INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_symbols_file ON symbols(file_id);
CREATE INDEX IF NOT EXISTS idx_symbols_name ON symbols(name);

CREATE VIRTUAL TABLE IF NOT EXISTS symbols_fts USING fts5(
    name, value, content='symbols', content_rowid='id'
);

CREATE TRIGGER IF NOT EXISTS symbols_ai AFTER INSERT ON symbols BEGIN
    INSERT INTO symbols_fts(rowid, name, value) VALUES (new.id, new.name, new.value);
END;
CREATE TRIGGER IF NOT EXISTS symbols_ad AFTER DELETE ON symbols BEGIN
    INSERT INTO symbols_fts(symbols_fts, rowid, name, value) VALUES ('delete', old.id, old.name, old.value);
END;
CREATE TRIGGER IF NOT EXISTS symbols_au AFTER UPDATE ON symbols BEGIN
    INSERT INTO symbols_fts(symbols_fts, rowid, name, value) VALUES ('delete', old.id, old.name, old.value);
    INSERT INTO symbols_fts(rowid, name, value) VALUES (new.id, new.name, new.value);
END;

CREATE TABLE IF NOT EXISTS includes (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    from_file_id INTEGER NOT NULL,
    to_path TEXT NOT NULL,
    kind TEXT NOT NULL,
    line INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_includes_from ON includes(from_file_id);
CREATE INDEX IF NOT EXISTS idx_includes_to ON includes(to_path);

CREATE TABLE IF NOT EXISTS dt_nodes (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    file_id INTEGER NOT NULL,
    path TEXT NOT NULL,
    name TEXT NOT NULL,
    label TEXT NOT NULL DEFAULT '',
    address TEXT NOT NULL DEFAULT '',
    parent_id INTEGER NOT NULL DEFAULT 0,
    start_line INTEGER NOT NULL,
    end_line INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_dt_nodes_file ON dt_nodes(file_id);
CREATE INDEX IF NOT EXISTS idx_dt_nodes_path ON dt_nodes(path);
CREATE INDEX IF NOT EXISTS idx_dt_nodes_label ON dt_nodes(label);

CREATE TABLE IF NOT EXISTS dt_properties (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    node_id INTEGER NOT NULL,
    name TEXT NOT NULL,
    value TEXT NOT NULL DEFAULT '',
    line INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_dt_properties_node ON dt_properties(node_id);

CREATE TABLE IF NOT EXISTS gpio_pins (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    file_id INTEGER NOT NULL,
    controller TEXT NOT NULL,
    pin INTEGER NOT NULL,
    label TEXT NOT NULL DEFAULT '',
    function TEXT NOT NULL DEFAULT '',
    direction TEXT NOT NULL DEFAULT '',
    line INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_gpio_pins_file ON gpio_pins(file_id);
CREATE INDEX IF NOT EXISTS idx_gpio_pins_controller ON gpio_pins(controller);
CREATE INDEX IF NOT EXISTS idx_gpio_pins_label ON gpio_pins(label);

CREATE TABLE IF NOT EXISTS metadata (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
);
`

// pragmas tune the connection for write-heavy, single-writer indexing
// workloads: WAL favors write throughput over read concurrency (which this
// engine doesn't need, having one writer), NORMAL synchronous trades a
// sliver of durability on power loss for much cheaper commits, and the
// negative cache_size is KiB (so -32000 is ~32 MiB), matching the "tens of
// megabytes" the store's design calls for.
var pragmas = []string{
	"PRAGMA journal_mode=WAL",
	"PRAGMA synchronous=NORMAL",
	"PRAGMA cache_size=-32000",
	"PRAGMA foreign_keys=OFF",
}

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

// Package memory is the in-memory store.Store fallback: hash maps with
// linear-scan search. It serves callers that choose a degraded mode at
// construction time, pkg/engine's fallback when the sqlite store cannot be
// opened, and fast, file-free unit tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/bspindex/bspidx/pkg/model"
	"github.com/bspindex/bspidx/pkg/store"
)

// Store implements store.Store entirely in memory. Every write is
// serialized by mu, matching the single-writer model the persistent
// backend also follows.
type Store struct {
	mu sync.Mutex

	nextFileID  int64
	nextSymID   int64
	nextIncID   int64
	nextNodeID  int64
	nextPropID  int64
	nextGPIOID  int64

	filesByID   map[int64]model.File
	filesByPath map[string]int64

	symbols  map[int64]model.Symbol
	includes map[int64]model.Include
	dtNodes  map[int64]model.DTNode
	dtProps  map[int64]model.DTProperty
	gpioPins map[int64]model.GPIOPin

	metadata map[string]string

	inTx bool
}

func New() *Store {
	return &Store{
		filesByID:   make(map[int64]model.File),
		filesByPath: make(map[string]int64),
		symbols:     make(map[int64]model.Symbol),
		includes:    make(map[int64]model.Include),
		dtNodes:     make(map[int64]model.DTNode),
		dtProps:     make(map[int64]model.DTProperty),
		gpioPins:    make(map[int64]model.GPIOPin),
		metadata:    make(map[string]string),
	}
}

func (s *Store) Path() string { return "" }

func (s *Store) Close() error { return nil }

func (s *Store) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	// The in-memory backend mutates in place; there is no WAL to roll
	// back, so a failing fn simply leaves whatever partial writes it made
	// — acceptable for the degraded-mode fallback, whose contract is
	// survival, not transactional parity with the persistent backend.
	return fn(ctx)
}

func (s *Store) InsertFile(ctx context.Context, f model.File) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.filesByPath[f.Path]; ok {
		f.ID = id
		s.filesByID[id] = f
		return id, nil
	}
	s.nextFileID++
	id := s.nextFileID
	f.ID = id
	s.filesByID[id] = f
	s.filesByPath[f.Path] = id
	return id, nil
}

func (s *Store) GetFile(ctx context.Context, id int64) (*model.File, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.filesByID[id]
	if !ok {
		return nil, nil
	}
	cp := f
	return &cp, nil
}

func (s *Store) DeleteFile(ctx context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.filesByPath[path]
	if !ok {
		return nil
	}

	s.deleteDTNodesByFileLocked(id)
	s.deleteSymbolsByFileLocked(id)
	s.deleteIncludesByFileLocked(id)
	s.deleteGPIOPinsByFileLocked(id)
	delete(s.filesByID, id)
	delete(s.filesByPath, path)
	return nil
}

// deleteDTNodesByFileLocked removes a file's DTProperty rows (which
// reference a DTNode about to disappear) before its DTNode rows, mirroring
// DeleteFile's ownership order. Callers must hold s.mu.
func (s *Store) deleteDTNodesByFileLocked(fileID int64) {
	var deadNodes []int64
	for nid, n := range s.dtNodes {
		if n.FileID == fileID {
			deadNodes = append(deadNodes, nid)
		}
	}
	deadNodeSet := make(map[int64]bool, len(deadNodes))
	for _, nid := range deadNodes {
		deadNodeSet[nid] = true
	}
	for pid, p := range s.dtProps {
		if deadNodeSet[p.NodeID] {
			delete(s.dtProps, pid)
		}
	}
	for _, nid := range deadNodes {
		delete(s.dtNodes, nid)
	}
}

func (s *Store) deleteDTPropertiesByFileLocked(fileID int64) {
	deadNodeSet := make(map[int64]bool)
	for nid, n := range s.dtNodes {
		if n.FileID == fileID {
			deadNodeSet[nid] = true
		}
	}
	for pid, p := range s.dtProps {
		if deadNodeSet[p.NodeID] {
			delete(s.dtProps, pid)
		}
	}
}

func (s *Store) deleteSymbolsByFileLocked(fileID int64) {
	for sid, sym := range s.symbols {
		if sym.FileID == fileID {
			delete(s.symbols, sid)
		}
	}
}

func (s *Store) deleteIncludesByFileLocked(fileID int64) {
	for iid, inc := range s.includes {
		if inc.FromFileID == fileID {
			delete(s.includes, iid)
		}
	}
}

func (s *Store) deleteGPIOPinsByFileLocked(fileID int64) {
	for gid, g := range s.gpioPins {
		if g.FileID == fileID {
			delete(s.gpioPins, gid)
		}
	}
}

func (s *Store) DeleteSymbolsByFile(ctx context.Context, fileID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteSymbolsByFileLocked(fileID)
	return nil
}

func (s *Store) DeleteIncludesByFile(ctx context.Context, fileID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteIncludesByFileLocked(fileID)
	return nil
}

func (s *Store) DeleteDTNodesByFile(ctx context.Context, fileID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteDTNodesByFileLocked(fileID)
	return nil
}

func (s *Store) DeleteDTPropertiesByFile(ctx context.Context, fileID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteDTPropertiesByFileLocked(fileID)
	return nil
}

func (s *Store) DeleteGPIOPinsByFile(ctx context.Context, fileID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteGPIOPinsByFileLocked(fileID)
	return nil
}

func (s *Store) InsertSymbols(ctx context.Context, batch []model.Symbol) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sym := range batch {
		s.nextSymID++
		sym.ID = s.nextSymID
		s.symbols[sym.ID] = sym
	}
	return nil
}

func (s *Store) InsertIncludes(ctx context.Context, batch []model.Include) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, inc := range batch {
		s.nextIncID++
		inc.ID = s.nextIncID
		s.includes[inc.ID] = inc
	}
	return nil
}

func (s *Store) InsertDTNodes(ctx context.Context, batch []model.DTNode) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]int64, len(batch))
	for i, n := range batch {
		s.nextNodeID++
		n.ID = s.nextNodeID
		s.dtNodes[n.ID] = n
		ids[i] = n.ID
	}
	return ids, nil
}

func (s *Store) InsertDTProperties(ctx context.Context, batch []model.DTProperty) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range batch {
		s.nextPropID++
		p.ID = s.nextPropID
		s.dtProps[p.ID] = p
	}
	return nil
}

func (s *Store) InsertGPIOPins(ctx context.Context, batch []model.GPIOPin) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range batch {
		s.nextGPIOID++
		p.ID = s.nextGPIOID
		s.gpioPins[p.ID] = p
	}
	return nil
}

func (s *Store) FileMTimes(ctx context.Context) ([]store.FileMTime, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]store.FileMTime, 0, len(s.filesByID))
	for _, f := range s.filesByID {
		out = append(out, store.FileMTime{Path: f.Path, MTime: f.MTime})
	}
	return out, nil
}

func (s *Store) FindSymbolExact(ctx context.Context, name string) (*model.Symbol, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sym := range s.symbols {
		if sym.Name == name {
			cp := sym
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *Store) FindAllReferences(ctx context.Context, name string, limit int) ([]model.Symbol, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matches []model.Symbol
	for _, sym := range s.symbols {
		if sym.Name == name {
			matches = append(matches, sym)
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		pi, pj := s.rank(matches[i]), s.rank(matches[j])
		if pi != pj {
			return pi < pj
		}
		fi, fj := s.filePath(matches[i].FileID), s.filePath(matches[j].FileID)
		if fi != fj {
			return fi < fj
		}
		return matches[i].Line < matches[j].Line
	})
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

func (s *Store) rank(sym model.Symbol) int {
	if sym.Kind == model.SymbolKindLabel || sym.Kind == model.SymbolKindNode {
		return 0
	}
	return 1
}

func (s *Store) filePath(fileID int64) string {
	if f, ok := s.filesByID[fileID]; ok {
		return f.Path
	}
	return ""
}

func (s *Store) FindDTNodeByLabel(ctx context.Context, label string) (*model.DTNode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.dtNodes {
		if n.Label == label {
			cp := n
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *Store) FindDTLabelReferences(ctx context.Context, label string, limit int) ([]model.DTNode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[int64]bool)
	var matches []model.DTNode
	for _, n := range s.dtNodes {
		if n.Label == label {
			matches = append(matches, n)
			seen[n.ID] = true
		}
	}
	needle := "&" + label
	for _, p := range s.dtProps {
		if seen[p.NodeID] {
			continue
		}
		if strings.Contains(p.Value, needle) {
			if n, ok := s.dtNodes[p.NodeID]; ok {
				matches = append(matches, n)
				seen[n.ID] = true
			}
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		fi, fj := s.filePath(matches[i].FileID), s.filePath(matches[j].FileID)
		if fi != fj {
			return fi < fj
		}
		return matches[i].StartLine < matches[j].StartLine
	})
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

func (s *Store) FindGPIOPinsByLabel(ctx context.Context, label string) ([]model.GPIOPin, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.GPIOPin
	for _, p := range s.gpioPins {
		if p.Label == label {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) SearchSymbols(ctx context.Context, query string, limit int) ([]model.Symbol, error) {
	if query == "" {
		return nil, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	lowerQ := strings.ToLower(query)
	degrade := strings.ContainsAny(query, "/-.@")

	type scored struct {
		sym   model.Symbol
		score int
	}
	var out []scored
	for _, sym := range s.symbols {
		lowerName := strings.ToLower(sym.Name)
		if degrade {
			path := s.filePath(sym.FileID)
			if !strings.Contains(lowerName, lowerQ) && !strings.Contains(strings.ToLower(sym.Value), lowerQ) && !strings.Contains(strings.ToLower(path), lowerQ) {
				continue
			}
			score := 3
			switch {
			case sym.Name == query:
				score = 0
			case strings.HasPrefix(lowerName, lowerQ):
				score = 1
			case strings.Contains(strings.ToLower(path), lowerQ):
				score = 2
			}
			out = append(out, scored{sym, score})
		} else {
			if !strings.HasPrefix(lowerName, lowerQ) {
				continue
			}
			score := 1
			if sym.Name == query {
				score = 0
			}
			out = append(out, scored{sym, score})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].score != out[j].score {
			return out[i].score < out[j].score
		}
		return len(out[i].sym.Name) < len(out[j].sym.Name)
	})
	result := make([]model.Symbol, 0, len(out))
	for _, o := range out {
		result = append(result, o.sym)
		if limit > 0 && len(result) >= limit {
			break
		}
	}
	return result, nil
}

func (s *Store) SearchFiles(ctx context.Context, query string, limit int) ([]model.File, error) {
	if query == "" {
		return nil, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	lowerQ := strings.ToLower(query)
	type scored struct {
		f     model.File
		score int
	}
	var out []scored
	for _, f := range s.filesByID {
		lp, ln := strings.ToLower(f.Path), strings.ToLower(f.Name)
		if !strings.Contains(lp, lowerQ) && !strings.Contains(ln, lowerQ) {
			continue
		}
		score := 3
		switch {
		case f.Path == query:
			score = 0
		case f.Name == query:
			score = 1
		case strings.HasPrefix(ln, lowerQ):
			score = 2
		}
		out = append(out, scored{f, score})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].score != out[j].score {
			return out[i].score < out[j].score
		}
		return len(out[i].f.Path) < len(out[j].f.Path)
	})
	result := make([]model.File, 0, len(out))
	for _, o := range out {
		result = append(result, o.f)
		if limit > 0 && len(result) >= limit {
			break
		}
	}
	return result, nil
}

func (s *Store) DirectoryExists(ctx context.Context, prefix string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prefix = strings.TrimSuffix(prefix, "/")
	for _, f := range s.filesByID {
		if f.Path == prefix || strings.HasPrefix(f.Path, prefix+"/") {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) FilesInDirectory(ctx context.Context, prefix string, limit int) ([]model.File, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prefix = strings.TrimSuffix(prefix, "/")
	var out []model.File
	for _, f := range s.filesByID {
		rest := strings.TrimPrefix(f.Path, prefix+"/")
		if rest == f.Path || strings.Contains(rest, "/") {
			continue
		}
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) FilesIncluding(ctx context.Context, path string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	base := "/" + baseName(path)
	seen := make(map[string]bool)
	var out []string
	for _, inc := range s.includes {
		if inc.ToPath == path || strings.HasSuffix(inc.ToPath, base) {
			if f, ok := s.filesByID[inc.FromFileID]; ok && !seen[f.Path] {
				seen[f.Path] = true
				out = append(out, f.Path)
			}
		}
	}
	sort.Strings(out)
	return out, nil
}

func baseName(path string) string {
	idx := strings.LastIndexByte(path, '/')
	if idx < 0 {
		return path
	}
	return path[idx+1:]
}

func (s *Store) GetStats(ctx context.Context) (model.Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return model.Stats{
		Files:    len(s.filesByID),
		Symbols:  len(s.symbols),
		Includes: len(s.includes),
		DTNodes:  len(s.dtNodes),
		GPIOPins: len(s.gpioPins),
	}, nil
}

func (s *Store) GetMetadata(ctx context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.metadata[key]
	return v, ok, nil
}

func (s *Store) SetMetadata(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metadata[key] = value
	return nil
}

func (s *Store) Checkpoint(ctx context.Context) error { return nil }

func (s *Store) ClearAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filesByID = make(map[int64]model.File)
	s.filesByPath = make(map[string]int64)
	s.symbols = make(map[int64]model.Symbol)
	s.includes = make(map[int64]model.Include)
	s.dtNodes = make(map[int64]model.DTNode)
	s.dtProps = make(map[int64]model.DTProperty)
	s.gpioPins = make(map[int64]model.GPIOPin)
	s.metadata = make(map[string]string)
	return nil
}

var _ store.Store = (*Store)(nil)

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

// Package indexing drives incremental indexing (C5): it detects changes
// against the store's path→mtime view, dispatches added/modified files
// through the parsers with a bounded-parallel worker pool, commits the
// resulting record batches, and reports progress.
package indexing

// Phase is one stage of an indexing run's progress stream. Events within
// a run are delivered in phase order and never regress.
type Phase string

const (
	PhaseInit      Phase = "init"
	PhaseFiles     Phase = "files"
	PhaseSymbols   Phase = "symbols"
	PhaseIncludes  Phase = "includes"
	PhaseDT        Phase = "dt"
	PhaseGPIO      Phase = "gpio"
	PhaseDone      Phase = "done"
	PhaseError     Phase = "error"
	PhaseCancelled Phase = "cancelled"
)

// Event is one point in an indexing run's progress stream.
type Event struct {
	Phase   Phase
	Current int
	Total   int
	Message string
	Speed   float64 // messages/sec estimate, 0 if not meaningful for this event
}

// ProgressFunc receives Events in phase order. Implementations must not
// block the controller for long; they are called synchronously from the
// dispatch loop.
type ProgressFunc func(Event)

func noopProgress(Event) {}

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

package main

import (
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	"github.com/bspindex/bspidx/pkg/indexing"
)

// ProgressConfig determines if and how indexing progress should be displayed.
type ProgressConfig struct {
	// Enabled indicates whether a progress bar should be shown. Disabled
	// when --json or --quiet is set, or when stderr is not a TTY.
	Enabled bool
	// Writer is where progress output goes (always os.Stderr).
	Writer io.Writer
	// NoColor disables colored output in the progress bar.
	NoColor bool
}

// NewProgressConfig derives a ProgressConfig from global CLI flags and TTY
// detection.
func NewProgressConfig(globals GlobalFlags) ProgressConfig {
	enabled := !globals.JSON && !globals.Quiet && isatty.IsTerminal(os.Stderr.Fd())
	return ProgressConfig{Enabled: enabled, Writer: os.Stderr, NoColor: globals.NoColor}
}

// progressDriver adapts an indexing.ProgressFunc event stream onto a single
// progress bar, swapping its description as the run moves between phases.
// It is nil-safe: every method is a no-op when progress display is disabled.
type progressDriver struct {
	cfg   ProgressConfig
	bar   *progressbar.ProgressBar
	phase indexing.Phase
}

func newProgressDriver(cfg ProgressConfig, first indexing.Event) *progressDriver {
	d := &progressDriver{cfg: cfg}
	if cfg.Enabled {
		d.bar = newBarForPhase(cfg, first)
		d.phase = first.Phase
	}
	return d
}

func (d *progressDriver) update(ev indexing.Event) {
	if d.bar == nil {
		return
	}
	if ev.Phase != d.phase {
		_ = d.bar.Finish()
		d.bar = newBarForPhase(d.cfg, ev)
		d.phase = ev.Phase
	}
	if ev.Total > 0 {
		_ = d.bar.Set(ev.Current)
	} else {
		_ = d.bar.Add(1)
	}
}

func (d *progressDriver) finish() {
	if d.bar != nil {
		_ = d.bar.Finish()
	}
}

func newBarForPhase(cfg ProgressConfig, ev indexing.Event) *progressbar.ProgressBar {
	desc := phaseLabel(ev.Phase)
	if ev.Total > 0 {
		return newProgressBar(cfg, int64(ev.Total), desc)
	}
	return newSpinner(cfg, desc)
}

func phaseLabel(p indexing.Phase) string {
	switch p {
	case indexing.PhaseInit:
		return "Scanning files"
	case indexing.PhaseFiles:
		return "Parsing files"
	case indexing.PhaseSymbols:
		return "Committing symbols"
	case indexing.PhaseIncludes:
		return "Committing includes"
	case indexing.PhaseDT:
		return "Committing device-tree nodes"
	case indexing.PhaseGPIO:
		return "Committing GPIO pins"
	default:
		return string(p)
	}
}

// newProgressBar creates a progress bar with consistent styling. Returns
// nil if progress is disabled.
func newProgressBar(cfg ProgressConfig, total int64, description string) *progressbar.ProgressBar {
	if !cfg.Enabled {
		return nil
	}
	return progressbar.NewOptions64(total,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(cfg.Writer),
		progressbar.OptionShowCount(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionEnableColorCodes(!cfg.NoColor),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}

// newSpinner creates an indeterminate progress spinner. Returns nil if
// progress is disabled.
func newSpinner(cfg ProgressConfig, description string) *progressbar.ProgressBar {
	if !cfg.Enabled {
		return nil
	}
	return progressbar.NewOptions(-1,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(cfg.Writer),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionEnableColorCodes(!cfg.NoColor),
	)
}

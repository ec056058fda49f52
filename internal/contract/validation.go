// Copyright 2025 KrakLabs
// SPDX-License-Identifier: AGPL-3.0-or-later

package contract

import (
	"fmt"
	"os"
	"strconv"
)

const (
	// DefaultSoftLimitBytes is the baseline maximum file size the indexer
	// will parse.
	DefaultSoftLimitBytes = 64 << 20 // 64 MiB
)

// SoftLimitBytes returns the effective maximum file size, controlled via
// env BSPIDX_SOFT_LIMIT_BYTES and falling back to DefaultSoftLimitBytes.
func SoftLimitBytes() int64 {
	if v := os.Getenv("BSPIDX_SOFT_LIMIT_BYTES"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			return n
		}
	}
	return DefaultSoftLimitBytes
}

// CheckFileSize returns a non-nil error if size exceeds the effective soft
// limit. The indexing controller treats this the same as any other
// per-file parse error: logged, counted, and skipped without aborting the
// run.
func CheckFileSize(path string, size int64) error {
	if limit := SoftLimitBytes(); size > limit {
		return fmt.Errorf("%s is %d bytes, exceeds soft limit of %d bytes", path, size, limit)
	}
	return nil
}

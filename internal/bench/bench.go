// Copyright (C) 2024 PartiQL-Go Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

// Package bench reads the TOTAL_ROWS/BATCH_SIZE/NUM_BATCHES
// environment variables that size a synthetic run across the three
// engines: how many rows the in-memory generator produces, and what
// batch size the vectorized engine requests of it.
package bench

import (
	"os"
	"strconv"
)

// Config sizes one benchmark run. Zero values are replaced by
// FromEnv's defaults; a caller building one by hand gets whatever it
// sets.
type Config struct {
	TotalRows  int
	BatchSize  int
	NumBatches int
}

const (
	defaultTotalRows = 100_000
	defaultBatchSize = 1024
)

// FromEnv reads TOTAL_ROWS, BATCH_SIZE and NUM_BATCHES, falling back to
// defaults for any that are unset or unparsable. NumBatches, if left
// at zero by the environment, is derived from TotalRows/BatchSize.
func FromEnv() Config {
	c := Config{
		TotalRows: envInt("TOTAL_ROWS", defaultTotalRows),
		BatchSize: envInt("BATCH_SIZE", defaultBatchSize),
	}
	c.NumBatches = envInt("NUM_BATCHES", 0)
	if c.NumBatches == 0 && c.BatchSize > 0 {
		c.NumBatches = (c.TotalRows + c.BatchSize - 1) / c.BatchSize
	}
	return c
}

func envInt(name string, def int) int {
	s, ok := os.LookupEnv(name)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

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

package bench

import "testing"

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("TOTAL_ROWS", "")
	t.Setenv("BATCH_SIZE", "")
	t.Setenv("NUM_BATCHES", "")
	c := FromEnv()
	if c.TotalRows != defaultTotalRows || c.BatchSize != defaultBatchSize {
		t.Fatalf("unexpected defaults: %+v", c)
	}
	if c.NumBatches != (defaultTotalRows+defaultBatchSize-1)/defaultBatchSize {
		t.Fatalf("NumBatches not derived: %+v", c)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("TOTAL_ROWS", "10")
	t.Setenv("BATCH_SIZE", "4")
	t.Setenv("NUM_BATCHES", "")
	c := FromEnv()
	if c.TotalRows != 10 || c.BatchSize != 4 || c.NumBatches != 3 {
		t.Fatalf("unexpected config: %+v", c)
	}
}

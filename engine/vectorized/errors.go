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

// Package vectorized implements the batch-at-a-time pull pipeline: a
// topological walk over a plan.Graph where every operator consumes and
// produces a vector.Batch, installing a selection vector at Filter
// rather than compacting so downstream operators see the original
// column buffers with an index list, and compacting only where a node
// must materialize a fresh schema (Project, GroupBy).
package vectorized

import (
	"fmt"

	"github.com/partiqlgo/execore/execerr"
)

func fatalEval(format string, args ...interface{}) error {
	return execerr.New(execerr.KindEvaluation, execerr.Fatal, fmt.Errorf(format, args...))
}

func fatalCompile(format string, args ...interface{}) error {
	return execerr.New(execerr.KindCompilation, execerr.Fatal, fmt.Errorf(format, args...))
}

func recordRecoverable(acc *execerr.Accumulator, kind execerr.Kind, cause error) error {
	return acc.Record(execerr.New(kind, execerr.Recoverable, cause))
}

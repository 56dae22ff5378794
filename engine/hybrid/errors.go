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

// Package hybrid implements the per-row register-bytecode VM: a pull
// pipeline that materializes one plan.Node at a time, same as legacy
// and vectorized, but evaluates every row's expressions by running a
// compiled compile.Program against a Frame's slots rather than
// tree-walking an Expr or running a vector-op stream over a column.
// Row-reader-sourced values are promoted through a per-row arena so
// a reader's UntilNext stability promise never outlives the tick that
// produced it.
package hybrid

import (
	"fmt"

	"github.com/partiqlgo/execore/execerr"
)

func fatalEval(format string, args ...any) error {
	return execerr.New(execerr.KindEvaluation, execerr.Fatal, fmt.Errorf(format, args...))
}

func fatalCompile(format string, args ...any) error {
	return execerr.New(execerr.KindCompilation, execerr.Fatal, fmt.Errorf(format, args...))
}

// recordRecoverable records a Recoverable error of the given kind on
// acc; the caller's row evaluation continues with its own Null
// substitute after calling this.
func recordRecoverable(acc *execerr.Accumulator, kind execerr.Kind, cause error) {
	acc.Record(execerr.New(kind, execerr.Recoverable, cause))
}

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

// Package legacy implements the tuple-at-a-time DAG evaluator: a
// topological walk over a plan.Graph that materializes an intermediate
// bag or list at every node and applies compiled expressions by
// tree-walking them against dynamically typed values, rather than
// lowering them to a vector-op stream or register bytecode.
package legacy

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
// acc. The Accumulator never aborts for Recoverable severity, so the
// caller's row evaluation always continues with its own Null/Missing
// substitute after calling this.
func recordRecoverable(acc *execerr.Accumulator, kind execerr.Kind, cause error) {
	acc.Record(execerr.New(kind, execerr.Recoverable, cause))
}

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

package reader

import (
	"fmt"

	"github.com/partiqlgo/execore/execerr"
)

// RejectedSource reports that a reader was asked to honor a Source
// kind it does not accept, listing the alternatives it does accept.
func RejectedSource(got SourceKind, accepted ...SourceKind) error {
	return execerr.New(execerr.KindProjection, execerr.Fatal,
		fmt.Errorf("unsupported projection source %v; accepted: %v", got, accepted))
}

// SourceNotFound reports a FieldPath/ColumnIndex target that does not
// exist in the underlying data source, listing what is available.
func SourceNotFound(name string, available []string) error {
	return execerr.New(execerr.KindProjection, execerr.Fatal,
		fmt.Errorf("source %q not found; available: %v", name, available))
}

// NonScalar reports a projection-phase violation: a projection
// target resolved to non-scalar data.
func NonScalar(name string) error {
	return execerr.New(execerr.KindProjection, execerr.Fatal,
		fmt.Errorf("projection target %q is not scalar (Phase-0 only supports scalar types)", name))
}

// DeepNesting reports a projection-phase violation: a FieldPath went
// deeper than one level.
func DeepNesting(path []string) error {
	return execerr.New(execerr.KindProjection, execerr.Fatal,
		fmt.Errorf("field path %v nests more than one level deep (Phase-0 only supports a.b)", path))
}

// AccessFailed reports a data-source access failure (file-open, etc).
func AccessFailed(resource string, err error) error {
	return execerr.New(execerr.KindDataSource, execerr.Fatal,
		fmt.Errorf("failed to access %s: %w", resource, err))
}

// CorruptedData reports a per-row or whole-resource decode failure.
func CorruptedData(resource, location, detail string) error {
	return execerr.New(execerr.KindDataSource, execerr.Recoverable,
		fmt.Errorf("corrupted data in %s at %s: %s", resource, location, detail))
}

// UnsupportedConversion reports a fatal String->Int64-style conversion
// the reader cannot perform losslessly.
func UnsupportedConversion(from, to vectorTypeName string) error {
	return execerr.New(execerr.KindTypeConversion, execerr.Fatal,
		fmt.Errorf("unsupported conversion from %s to %s", from, to))
}

type vectorTypeName = string

// ValidateFieldPath enforces the nesting constraint on a FieldPath
// source (at most two components); it does not check that the target
// is scalar.
func ValidateFieldPath(s Source) error {
	if s.Kind != SourceFieldPath {
		return nil
	}
	if len(s.FieldPath) > 2 {
		return DeepNesting(s.FieldPath)
	}
	return nil
}

// Copyright (C) 2022 Sneller, Inc.
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

package date

import "testing"

func TestDateComponents(t *testing.T) {
	tm := Date(2024, 3, 15, 13, 45, 30, 123)
	if y, mo, d := tm.Year(), tm.Month(), tm.Day(); y != 2024 || mo != 3 || d != 15 {
		t.Fatalf("Year/Month/Day = %d/%d/%d, want 2024/3/15", y, mo, d)
	}
	if h, mi, s := tm.Hour(), tm.Minute(), tm.Second(); h != 13 || mi != 45 || s != 30 {
		t.Fatalf("Hour/Minute/Second = %d/%d/%d, want 13/45/30", h, mi, s)
	}
	if ns := tm.Nanosecond(); ns != 123 {
		t.Fatalf("Nanosecond = %d, want 123", ns)
	}
}

func TestDateNormalizesOverflow(t *testing.T) {
	cases := []struct {
		name                   string
		y, mo, d, h, mi, s, ns int
		wantY, wantMo, wantD   int
	}{
		{"month overflow", 2024, 13, 1, 0, 0, 0, 0, 2025, 1, 1},
		{"month underflow", 2024, 0, 1, 0, 0, 0, 0, 2023, 12, 1},
		{"day overflow into next month", 2024, 1, 32, 0, 0, 0, 0, 2024, 2, 1},
		{"day overflow across Feb in a leap year", 2024, 2, 30, 0, 0, 0, 0, 2024, 3, 1},
		{"day overflow across Feb in a non-leap year", 2023, 2, 29, 0, 0, 0, 0, 2023, 3, 1},
		{"day underflow into previous month", 2024, 3, 0, 0, 0, 0, 0, 2024, 2, 29},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := Date(c.y, c.mo, c.d, c.h, c.mi, c.s, c.ns)
			if y, mo, d := got.Year(), got.Month(), got.Day(); y != c.wantY || mo != c.wantMo || d != c.wantD {
				t.Fatalf("Date(%d,%d,%d,...) = %d-%02d-%02d, want %d-%02d-%02d",
					c.y, c.mo, c.d, y, mo, d, c.wantY, c.wantMo, c.wantD)
			}
		})
	}
}

func TestDateNormalizesTimeCarry(t *testing.T) {
	// 61 seconds rolls into the next minute; the resulting -1 hour
	// rolls the day back into the previous month (June 1st, hour -1
	// becomes May 31st, 23:xx).
	got := Date(2024, 6, 1, -1, 0, 61, 0)
	if h, mi, s := got.Hour(), got.Minute(), got.Second(); h != 23 || mi != 1 || s != 1 {
		t.Fatalf("Hour/Minute/Second = %d/%d/%d, want 23/1/1", h, mi, s)
	}
	if y, mo, d := got.Year(), got.Month(), got.Day(); y != 2024 || mo != 5 || d != 31 {
		t.Fatalf("Year/Month/Day = %d/%d/%d, want 2024/5/31", y, mo, d)
	}
}

func TestTimeString(t *testing.T) {
	cases := []struct {
		tm   Time
		want string
	}{
		{Date(2024, 3, 15, 13, 45, 30, 0), "2024-03-15 13:45:30 +0000 UTC"},
		{Date(2024, 3, 15, 13, 45, 30, 42), "2024-03-15 13:45:30.42 +0000 UTC"},
	}
	for _, c := range cases {
		if got := c.tm.String(); got != c.want {
			t.Errorf("String() = %q, want %q", got, c.want)
		}
	}
}

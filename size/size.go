/***********************************************************************************************************************
 *
 *   MIT License
 *
 *   Copyright (c) 2022 Nicolas JUHEL
 *
 *   Permission is hereby granted, free of charge, to any person obtaining a copy
 *   of this software and associated documentation files (the "Software"), to deal
 *   in the Software without restriction, including without limitation the rights
 *   to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 *   copies of the Software, and to permit persons to whom the Software is
 *   furnished to do so, subject to the following conditions:
 *
 *   The above copyright notice and this permission notice shall be included in all
 *   copies or substantial portions of the Software.
 *
 *   THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 *   IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 *   FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 *   AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 *   LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 *   OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 *   SOFTWARE.
 *
 *
 **********************************************************************************************************************/

// Package size implements a human-readable byte-count config value (e.g.
// "32KB", "10MiB"), usable as a struct field directly unmarshalled from
// JSON/YAML/TOML/CBOR configuration.
package size

import (
	"fmt"
	"strconv"
	"strings"
)

// Size is a byte count, expressed in config files as a number optionally
// suffixed with a unit (B, KB/KiB, MB/MiB, GB/GiB, TB/TiB).
type Size int64

const (
	unitKB = 1000
	unitMB = unitKB * 1000
	unitGB = unitMB * 1000
	unitTB = unitGB * 1000

	unitKiB = 1024
	unitMiB = unitKiB * 1024
	unitGiB = unitMiB * 1024
	unitTiB = unitGiB * 1024
)

// Int64 returns the size in bytes.
func (s Size) Int64() int64 {
	return int64(s)
}

// Uint64 returns the size in bytes, clamped to 0 for a negative value.
func (s Size) Uint64() uint64 {
	if s < 0 {
		return 0
	}
	return uint64(s)
}

// String renders the size using the largest binary unit that divides it
// evenly, falling back to a plain byte count.
func (s Size) String() string {
	n := int64(s)

	switch {
	case n != 0 && n%unitTiB == 0:
		return fmt.Sprintf("%dTiB", n/unitTiB)
	case n != 0 && n%unitGiB == 0:
		return fmt.Sprintf("%dGiB", n/unitGiB)
	case n != 0 && n%unitMiB == 0:
		return fmt.Sprintf("%dMiB", n/unitMiB)
	case n != 0 && n%unitKiB == 0:
		return fmt.Sprintf("%dKiB", n/unitKiB)
	default:
		return fmt.Sprintf("%dB", n)
	}
}

// Parse interprets s as a byte count: a bare integer, or an integer
// immediately followed by one of B, KB, MB, GB, TB (decimal, base 1000) or
// KiB, MiB, GiB, TiB (binary, base 1024), case-insensitively.
func Parse(s string) (Size, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("size: empty value")
	}

	i := 0
	for i < len(s) && (s[i] == '-' || s[i] == '+' || (s[i] >= '0' && s[i] <= '9')) {
		i++
	}
	if i == 0 {
		return 0, fmt.Errorf("size: %q does not start with a number", s)
	}

	n, err := strconv.ParseInt(s[:i], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("size: invalid numeric part in %q: %w", s, err)
	}

	unit := strings.ToUpper(strings.TrimSpace(s[i:]))
	mult, ok := unitMultiplier(unit)
	if !ok {
		return 0, fmt.Errorf("size: unknown unit %q in %q", unit, s)
	}

	return Size(n * mult), nil
}

func unitMultiplier(unit string) (int64, bool) {
	switch unit {
	case "", "B":
		return 1, true
	case "KB":
		return unitKB, true
	case "MB":
		return unitMB, true
	case "GB":
		return unitGB, true
	case "TB":
		return unitTB, true
	case "KIB":
		return unitKiB, true
	case "MIB":
		return unitMiB, true
	case "GIB":
		return unitGiB, true
	case "TIB":
		return unitTiB, true
	default:
		return 0, false
	}
}

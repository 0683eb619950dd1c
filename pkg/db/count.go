/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package db

import (
	"fmt"
	"math"
	"strconv"
)

// ToCount converts the value a driver returns for COUNT(*) into an int64.
// Drivers disagree on the native type (SQLite hands back int64, Postgres
// bigint, some MySQL setups text), so the conversion is explicit and refuses
// anything that is not a non-negative integer.
func ToCount(v any) (int64, error) {
	switch n := v.(type) {
	case int64:
		return checkCount(n)
	case int32:
		return checkCount(int64(n))
	case int:
		return checkCount(int64(n))
	case uint64:
		if n > math.MaxInt64 {
			return 0, fmt.Errorf("%w: %d overflows int64", ErrInvalidCount, n)
		}

		return int64(n), nil
	case float64:
		if n != math.Trunc(n) || n < 0 || n > 1<<53 {
			return 0, fmt.Errorf("%w: %v", ErrInvalidCount, n)
		}

		return int64(n), nil
	case []byte:
		return parseCount(string(n))
	case string:
		return parseCount(n)
	case nil:
		return 0, fmt.Errorf("%w: NULL", ErrInvalidCount)
	default:
		return 0, fmt.Errorf("%w: unsupported type %T", ErrInvalidCount, v)
	}
}

func checkCount(n int64) (int64, error) {
	if n < 0 {
		return 0, fmt.Errorf("%w: %d is negative", ErrInvalidCount, n)
	}

	return n, nil
}

func parseCount(s string) (int64, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidCount, err)
	}

	return checkCount(n)
}

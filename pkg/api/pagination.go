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

package api

import (
	"net/http"
	"strconv"
	"time"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

type page struct {
	before time.Time
	take   int
}

// parsePage reads ?cursor=<RFC3339>&take=<n>. An unparsable cursor,
// including the literal "null", starts from the newest row.
func parsePage(r *http.Request) page {
	q := r.URL.Query()

	p := page{take: defaultPageSize}

	if raw := q.Get("cursor"); raw != "" && raw != "null" {
		if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
			p.before = t
		}
	}

	if raw := q.Get("take"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			p.take = min(n, maxPageSize)
		}
	}

	return p
}

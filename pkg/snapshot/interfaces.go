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

// Package snapshot pkg/snapshot/interfaces.go
package snapshot

import (
	"context"

	"github.com/mfreeman451/fleetwatch/pkg/models"
)

//go:generate mockgen -destination=mock_snapshot.go -package=snapshot github.com/mfreeman451/fleetwatch/pkg/snapshot Archiver

// Archiver copies snapshot rows to long-term storage before they are pruned.
type Archiver interface {
	// Archive stores rows and returns the location they were written to.
	Archive(ctx context.Context, rows []models.StatusSnapshot) (string, error)
}

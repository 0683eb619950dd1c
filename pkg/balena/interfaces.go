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

// Package balena pkg/balena/interfaces.go
package balena

import (
	"context"

	"github.com/mfreeman451/fleetwatch/pkg/models"
)

//go:generate mockgen -destination=mock_balena.go -package=balena github.com/mfreeman451/fleetwatch/pkg/balena FleetClient

// FleetClient lists the devices registered under a fleet application.
type FleetClient interface {
	ListDevices(ctx context.Context) ([]models.DeviceObservation, error)
}

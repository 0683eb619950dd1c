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

package alerts

import "errors"

var (
	ErrNotification      = errors.New("alert notification failed")
	ErrWebhookDisabled   = errors.New("webhook alerter is disabled")
	ErrWebhookCooldown   = errors.New("alert is within cooldown period")
	ErrInvalidJSON       = errors.New("invalid JSON generated")
	ErrWebhookStatus     = errors.New("webhook returned non-2xx status")
	ErrTemplateParse     = errors.New("template parsing failed")
	ErrTemplateExecution = errors.New("template execution failed")
)

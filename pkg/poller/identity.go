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

package poller

import (
	"fmt"

	"github.com/carverauto/odoosync/pkg/models"
)

const identityNamespace = "odoo"

// messageIdentity derives the deterministic idempotency key for one
// logical event, e.g. "odoo-res.partner-123-create". Stable across
// process restarts so the broker's dedup window rejects replays.
func messageIdentity(model string, recordID int, kind models.EventKind) string {
	return fmt.Sprintf("%s-%s-%d-%s", identityNamespace, model, recordID, kind)
}

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package format

// OffsetTracker corrects a selection captured before a series of edits.
// Edits must be recorded in increasing offset order, each before it is
// applied. An edit counts against an anchor when its offset lies strictly
// before the anchor's current position.
type OffsetTracker struct {
	start, end           int
	driftStart, driftEnd int
}

func NewOffsetTracker(start, end int) *OffsetTracker {
	if end < start {
		start, end = end, start
	}
	return &OffsetTracker{start: start, end: end}
}

// RecordEdit notes that delta characters are about to be inserted (delta > 0)
// or removed (delta < 0) at offset. For a removal, offset is the position of
// the first removed character.
func (t *OffsetTracker) RecordEdit(offset, delta int) {
	if offset < t.CorrectedStart() {
		t.driftStart += delta
	}
	if offset < t.CorrectedEnd() {
		t.driftEnd += delta
	}
}

func (t *OffsetTracker) Start() int { return t.start }

func (t *OffsetTracker) End() int { return t.end }

func (t *OffsetTracker) DriftStart() int { return t.driftStart }

func (t *OffsetTracker) DriftEnd() int { return t.driftEnd }

func (t *OffsetTracker) CorrectedStart() int { return t.start + t.driftStart }

func (t *OffsetTracker) CorrectedEnd() int { return t.end + t.driftEnd }

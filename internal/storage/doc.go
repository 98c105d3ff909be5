/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package storage implements script persistence and indexing.
// It handles create/open/save for the canonical .writer JSON file with transactional writes, schema validation and timestamped backups.
// It also manages a per-script embedded SQLite index at <dir>/.swr/<name>.sqlite used for paragraph search and text history.
// The index is derived from the .writer file and can be deleted at any time.
package storage

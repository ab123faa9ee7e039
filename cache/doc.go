// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package cache holds the two serving-path caches: a TTL-based cache of
// formatted query results in front of search, and a bounded no-eviction
// cache of rendered answers in front of the conversational layer.
//
// Both are plain lock-guarded tables constructed once at process start.
// Reads never observe a partially written entry; the only permitted race
// is the benign duplicate write on concurrent misses for the same key.
package cache

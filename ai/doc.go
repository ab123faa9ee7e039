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


// Package ai defines the embedding provider abstraction for kbase.
//
// The Embedder interface treats embedding generation as an opaque external
// function: given text, return a fixed-dimension float vector or a failure.
// Adapters truncate overlong input deterministically (MaxEmbedChars) and
// never retry; retry policy belongs to the caller (see the backfill
// package). Production use goes through ai/openai; tests use ai/mock.
package ai

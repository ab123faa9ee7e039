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


// Package search combines lexical and vector retrieval over the document
// corpus. The lexical index is the mandatory baseline; the vector leg is
// best effort and every one of its failure modes degrades a query to
// lexical-only results rather than surfacing an error.
//
// Hybrid fusion scores lexical candidates by reciprocal rank and vector
// candidates by raw cosine similarity, then blends them with configurable
// weights. SearchText wraps the lexical path in a formatted answer layer
// backed by a TTL query cache.
package search

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


// Package index implements the lexical side of retrieval: an in-memory
// inverted index over document titles, keywords, and content with
// field-weighted TF-IDF scoring (title 10, keywords 5, content 1).
//
// Tokenization is locale-aware for the bilingual Vietnamese/English
// corpus: matching is case-insensitive and diacritic-insensitive, so
// "tuyển sinh" and "TUYEN SINH" reach the same postings list.
//
// The index is read-only at query time and holds no business logic
// beyond relevance scoring; rank fusion with vector results happens in
// the search package.
package index

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


package core

import "errors"

// Domain validation errors
var (
	// ErrInvalidDocument indicates a Document failed validation.
	ErrInvalidDocument = errors.New("invalid document")

	// ErrEmptyURL indicates the URL field is empty.
	ErrEmptyURL = errors.New("url cannot be empty")

	// ErrEmptyTitle indicates the Title field is empty.
	ErrEmptyTitle = errors.New("title cannot be empty")

	// ErrContentTooShort indicates the content is below the persistable minimum.
	ErrContentTooShort = errors.New("content below minimum length")

	// ErrContentTooLong indicates the content exceeds the maximum length.
	ErrContentTooLong = errors.New("content exceeds maximum length")

	// ErrInvalidCategory indicates an unrecognized document category.
	ErrInvalidCategory = errors.New("invalid category")

	// ErrInvalidEmbedding indicates an embedding with the wrong dimensionality.
	ErrInvalidEmbedding = errors.New("invalid embedding dimensionality")

	// ErrInvalidTimestamp indicates a timestamp is in the future.
	ErrInvalidTimestamp = errors.New("timestamp cannot be in the future")
)

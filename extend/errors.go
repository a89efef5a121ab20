/*
Copyright 2023 Alexander Bartolomey (github@alexanderbartolomey.de)

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package extend

import "errors"

var (
	// ErrBufferExhausted is returned when a write would overrun the output
	// buffer's precomputed capacity. Per SPEC_FULL.md §9 (Open Question:
	// "buffer overrun re-validation"), this is surfaced as a per-message
	// resource error rather than silently truncating or panicking.
	ErrBufferExhausted = errors.New("extend: output buffer exhausted")

	// ErrSetAlreadyOpen is returned by BeginDataSet when a Data Set is
	// already open and must be closed first.
	ErrSetAlreadyOpen = errors.New("extend: a data set is already open")

	// ErrSetOpenDuringWrite is returned when a verbatim set or Template Set
	// write is attempted while a Data Set is open; spec.md §9 requires the
	// builder's open-set bookkeeping to stay exclusive.
	ErrSetOpenDuringWrite = errors.New("extend: cannot write a set while a data set is open")

	// ErrMalformedTemplate mirrors spec.md §4.B step 3's "old_tmplt.raw.length >= 4" check.
	ErrMalformedTemplate = errors.New("extend: template record too short to extend")
)

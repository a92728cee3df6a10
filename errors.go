// Copyright 2026 SEQSENSE, Inc.
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

package webmrepair

import (
	"errors"
)

// Structural errors returned by Scan.
var (
	ErrMissingHeader    = errors.New("missing EBML header")
	ErrMissingSegment   = errors.New("missing Segment element")
	ErrTruncatedElement = errors.New("truncated element")
	ErrMalformedVint    = errors.New("malformed vint")
)

// Encoding limits of the codec.
var (
	ErrValueTooLarge         = errors.New("value too large")
	ErrUnsupportedFloatWidth = errors.New("unsupported float width")
)

var (
	// ErrMalformedInput is reported by Repair when the recording can't be scanned.
	ErrMalformedInput = errors.New("malformed input")
	// ErrPolicyViolation is matched by every error folded into Report.Err.
	ErrPolicyViolation = errors.New("policy violation")
)

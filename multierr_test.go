// Copyright 2020 SEQSENSE, Inc.
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
	"testing"
)

func TestMultiError(t *testing.T) {
	var errs multiError
	if errs.ErrorOrNil() != nil {
		t.Fatal("Empty multiError must be nil")
	}
	errs.Add(nil)
	errs.Add(ErrTruncatedElement)
	if s := errs.Error(); s != "truncated element" {
		t.Errorf("Unexpected message '%s'", s)
	}
	errs.Add(ErrPolicyViolation)
	err := errs.ErrorOrNil()
	if !errors.Is(err, ErrTruncatedElement) || !errors.Is(err, ErrPolicyViolation) || errors.Is(err, ErrMissingHeader) {
		t.Errorf("Unexpected errors.Is results for '%v'", err)
	}
	expected := "multiple errors: 'truncated element' 'policy violation'"
	if s := err.Error(); s != expected {
		t.Errorf("Expected '%s', got '%s'", expected, s)
	}
}

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

package main

import (
	"bytes"
	"errors"
	"testing"
)

type dummyWriter struct {
	err error
	n   int
}

func (w *dummyWriter) Write(b []byte) (int, error) {
	w.n++
	if w.err != nil {
		return 0, w.err
	}
	return len(b), nil
}

func TestReportWriter(t *testing.T) {
	t.Run("Nil", func(t *testing.T) {
		buf := &bytes.Buffer{}
		w := &reportWriter{Writer: buf}
		w.Printf("a=%d\n", 1)
		w.JSON(map[string]int{"b": 2})
		if err := w.Err(); err != nil {
			t.Errorf("Base writer didn't return error, but reportWriter stores error: '%v'", err)
		}
		expected := "a=1\n{\n  \"b\": 2\n}\n"
		if s := buf.String(); s != expected {
			t.Errorf("Expected %q, got %q", expected, s)
		}
	})
	t.Run("Error", func(t *testing.T) {
		dummyErr := errors.New("test")
		base := &dummyWriter{err: dummyErr}
		w := &reportWriter{Writer: base}
		n, err := w.Write(make([]byte, 10))
		if n != 10 {
			t.Error("Write length differs")
		}
		if err != nil {
			t.Error("reportWriter.Write must not return error")
		}
		w.Printf("ignored")
		if base.n != 1 {
			t.Errorf("Writes after an error must be dropped, base writer called %d times", base.n)
		}
		if err := w.Err(); err != dummyErr {
			t.Errorf("Expected to store '%v', but got '%v'", dummyErr, err)
		}
	})
	t.Run("Unmarshalable", func(t *testing.T) {
		w := &reportWriter{Writer: &dummyWriter{}}
		w.JSON(make(chan int))
		if w.Err() == nil {
			t.Error("Expected JSON error to be stored")
		}
	})
}

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
	"encoding/json"
	"fmt"
	"io"
	"sync/atomic"
)

// reportWriter prints command reports. Write errors don't interrupt the
// report; the first one is kept and returned by Err.
type reportWriter struct {
	io.Writer
	err atomic.Value // errHolder
}

type errHolder struct {
	error
}

func (w *reportWriter) setErr(err error) {
	if w.err.Load() == nil {
		w.err.Store(errHolder{err})
	}
}

func (w *reportWriter) Write(b []byte) (int, error) {
	if err := w.err.Load(); err != nil {
		return len(b), nil
	}
	if _, err := w.Writer.Write(b); err != nil {
		w.setErr(err)
	}
	return len(b), nil
}

func (w *reportWriter) Printf(format string, args ...interface{}) {
	fmt.Fprintf(w, format, args...)
}

// JSON writes v as indented JSON followed by a newline.
func (w *reportWriter) JSON(v interface{}) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		w.setErr(err)
		return
	}
	_, _ = w.Write(append(b, '\n'))
}

func (w *reportWriter) Err() error {
	h, ok := w.err.Load().(errHolder)
	if !ok {
		return nil
	}
	return h.error
}

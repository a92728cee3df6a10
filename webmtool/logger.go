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

package main

import (
	"fmt"
	"io"

	"github.com/rs/zerolog"
)

// zerologLogger routes webmrepair logs to a zerolog console writer.
type zerologLogger struct {
	l zerolog.Logger
}

func newLogger(w io.Writer, verbose bool) *zerologLogger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return &zerologLogger{
		l: zerolog.New(zerolog.ConsoleWriter{Out: w, NoColor: true}).
			Level(level).
			With().Timestamp().Str("module", "webmrepair").Logger(),
	}
}

func (z *zerologLogger) Debug(args ...interface{}) {
	z.l.Debug().Msg(fmt.Sprint(args...))
}

func (z *zerologLogger) Debugf(format string, args ...interface{}) {
	z.l.Debug().Msgf(format, args...)
}

func (z *zerologLogger) Info(args ...interface{}) {
	z.l.Info().Msg(fmt.Sprint(args...))
}

func (z *zerologLogger) Infof(format string, args ...interface{}) {
	z.l.Info().Msgf(format, args...)
}

func (z *zerologLogger) Warn(args ...interface{}) {
	z.l.Warn().Msg(fmt.Sprint(args...))
}

func (z *zerologLogger) Warnf(format string, args ...interface{}) {
	z.l.Warn().Msgf(format, args...)
}

func (z *zerologLogger) Error(args ...interface{}) {
	z.l.Error().Msg(fmt.Sprint(args...))
}

func (z *zerologLogger) Errorf(format string, args ...interface{}) {
	z.l.Error().Msgf(format, args...)
}

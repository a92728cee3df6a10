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
	"fmt"
	"math"
	"time"
)

// DurationUnit is the unit of a bare measured duration.
type DurationUnit string

const (
	DurationUnitMilliseconds DurationUnit = "ms"
	DurationUnitSeconds      DurationUnit = "s"
)

// Duration converts v expressed in u.
func (u DurationUnit) Duration(v float64) (time.Duration, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("invalid duration value %v", v)
	}
	switch u {
	case DurationUnitMilliseconds:
		return DurationFromSeconds(v / 1000), nil
	case DurationUnitSeconds, "":
		return DurationFromSeconds(v), nil
	default:
		return 0, fmt.Errorf("unknown duration unit %q", string(u))
	}
}

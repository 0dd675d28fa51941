// Author: momentics <momentics@gmail.com>
// SPDX-License-Identifier: MIT

package client

import (
	"fmt"
	"time"

	"github.com/momentics/hioload-wsbench/api"
)

// Throughput returns round trips per second over d. Whole-second durations
// use integer division.
func Throughput(roundTrips int64, d time.Duration) int64 {
	if d <= 0 {
		return 0
	}
	if secs := int64(d / time.Second); secs > 0 && d%time.Second == 0 {
		return roundTrips / secs
	}
	return int64(float64(roundTrips) / d.Seconds())
}

// Report formats the result line, e.g. "plain client:41250".
func Report(mode api.Mode, perSecond int64) string {
	return fmt.Sprintf("%s client:%d", mode, perSecond)
}

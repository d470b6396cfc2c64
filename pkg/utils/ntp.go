package utils

import (
	"time"

	"github.com/beevik/ntp"
)

const defaultNTPServer = "pool.ntp.org"

// ClockOffset queries an NTP server and reports how far the local clock
// drifts. Boards without an RTC can drift badly, which shows up in the
// timestamped capture names.
func ClockOffset() (time.Duration, error) {
	resp, err := ntp.QueryWithOptions(defaultNTPServer, ntp.QueryOptions{Timeout: 3 * time.Second})
	if err != nil {
		return 0, err
	}
	if err = resp.Validate(); err != nil {
		return 0, err
	}

	return resp.ClockOffset, nil
}

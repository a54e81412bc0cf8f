package common

import (
	"regexp"
	"strconv"
	"time"

	"github.com/pkg/errors"
)

// millisRegexp matches a timestamp that is already expressed as milliseconds
// since the epoch.
var millisRegexp = regexp.MustCompile(`^\d+$`)

// FormatTimestamp formats a timestamp as milliseconds since the epoch, which is
// the representation the mobile client expects in push data payloads.
func FormatTimestamp(timestamp time.Time) string {
	return strconv.FormatInt(timestamp.UnixNano()/int64(time.Millisecond), 10)
}

// FixTimestamp normalizes a timestamp that may be expressed either as
// milliseconds since the epoch or as an RFC 3339 date. Empty timestamps are
// passed through so that optional fields stay optional.
func FixTimestamp(timestamp string) (string, error) {
	wrapMsg := "unable to normalize the timestamp"

	// Handle the cases where the timestamp requires no parsing.
	if timestamp == "" || millisRegexp.MatchString(timestamp) {
		return timestamp, nil
	}

	// The only other format we accept is RFC 3339, with or without subseconds.
	parsed, err := time.Parse(time.RFC3339Nano, timestamp)
	if err != nil {
		return "", errors.Wrap(err, wrapMsg)
	}

	return FormatTimestamp(parsed), nil
}

package bible

import "time"

// timeNow is a package-level variable for testability.
// Tests can replace this to control timestamps in assertions.
var timeNow = time.Now

// Now returns the current UTC time as an ISO-8601 string, the format
// used for every timestamp in the story bible.
func Now() string {
	return timeNow().UTC().Format(time.RFC3339)
}

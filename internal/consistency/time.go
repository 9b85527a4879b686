package consistency

import "time"

// timeNow is swapped out in tests for deterministic report paths.
var timeNow = time.Now

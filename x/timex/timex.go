package timex

import "time"

// NowMs returns Unix milliseconds as int64. Used only for log/notification
// timestamps; protocol timing itself runs off the tick counter, not the
// wall clock.
func NowMs() int64 { return time.Now().UnixMilli() }

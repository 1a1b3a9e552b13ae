package utils

import "time"

// GetCurrentTimeMillis returns current time in milliseconds since epoch
func GetCurrentTimeMillis() int64 {
	return time.Now().UnixMilli()
}

// MillisToTime converts milliseconds since epoch to time.Time
func MillisToTime(millis int64) time.Time {
	return time.UnixMilli(millis)
}

// TimeToMillis converts time.Time to milliseconds since epoch
func TimeToMillis(t time.Time) int64 {
	return t.UnixMilli()
}

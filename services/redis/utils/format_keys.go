package utils

/**
 * This file contains utility functions to format the keys for Redis
 * (key, value) pairs. It avoids having to call "fmt.Sprintf(...)"
 * with the same format spec every time, potentially confusing the key format.
 */

import "fmt"

func FormatSessionKey(sessionId string) string {
	return fmt.Sprintf("session:%s", sessionId)
}

// FormatActiveSessionsKey returns the key of the set holding the ids of all
// sessions the tick loop must visit.
func FormatActiveSessionsKey() string {
	return "sessions:active"
}

// FormatSequenceKey returns the key of the monotonic broadcast sequence
// counter for one channel.
func FormatSequenceKey(channelKey string) string {
	return fmt.Sprintf("seq:%s", channelKey)
}

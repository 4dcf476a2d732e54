// Package activity counts a viewer's recent submissions for flood control.
package activity

import (
	"time"

	"forumhelper/pkg/forum"
)

// Window is the look-back period for the flood-control counters.
const Window = time.Hour

// TopicsInPastHour counts topics the viewer created at or after now-1h.
func TopicsInPastHour(v *forum.Viewer, now time.Time) int {
	if v == nil {
		return 0
	}
	return countSince(v.TopicsCreated, now.Add(-Window))
}

// PostsInPastHour counts posts the viewer created at or after now-1h.
func PostsInPastHour(v *forum.Viewer, now time.Time) int {
	if v == nil {
		return 0
	}
	return countSince(v.PostsCreated, now.Add(-Window))
}

func countSince(history map[int64]time.Time, since time.Time) int {
	count := 0
	for _, at := range history {
		if !at.Before(since) {
			count++
		}
	}
	return count
}

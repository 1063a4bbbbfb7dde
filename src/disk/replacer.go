package disk

import "bufpool/src/common"

// Replacer decides which unpinned frame of the buffer pool gets evicted next.
type Replacer interface {
	// Victim removes and returns the next frame to evict. It returns false
	// when every tracked frame is pinned.
	Victim() (common.FrameId, bool)
	// Pin makes a frame ineligible for eviction.
	Pin(common.FrameId)
	// Unpin makes a frame eligible for eviction.
	Unpin(common.FrameId)
	// Size returns the number of evictable frames.
	Size() int
}

package disk

import (
	"container/list"
	"sync"

	log "github.com/sirupsen/logrus"

	"bufpool/src/common"
)

// LRUReplacer evicts the frame that has been unpinned the longest. Recency is
// the moment a frame became evictable, not its last access: unpinning an
// already evictable frame does not move it.
type LRUReplacer struct {
	numPages int
	dataList list.List
	index    map[common.FrameId]*list.Element
	mu       sync.Mutex
}

func NewLRUReplacer(numPages int) *LRUReplacer {
	return &LRUReplacer{
		numPages: numPages,
		index:    make(map[common.FrameId]*list.Element, numPages),
	}
}

func (lru *LRUReplacer) Victim() (common.FrameId, bool) {
	lru.mu.Lock()
	defer lru.mu.Unlock()

	elem := lru.dataList.Front()
	if elem == nil {
		return 0, false
	}
	frameId := lru.dataList.Remove(elem).(common.FrameId)
	delete(lru.index, frameId)
	return frameId, true
}

func (lru *LRUReplacer) Pin(frameId common.FrameId) {
	lru.mu.Lock()
	defer lru.mu.Unlock()

	if elem, ok := lru.index[frameId]; ok {
		lru.dataList.Remove(elem)
		delete(lru.index, frameId)
	}
}

func (lru *LRUReplacer) Unpin(frameId common.FrameId) {
	lru.mu.Lock()
	defer lru.mu.Unlock()

	if _, ok := lru.index[frameId]; ok {
		return
	}
	if frameId < 0 || int(frameId) >= lru.numPages {
		log.Warnf("Unpinning frame %d outside of replacer capacity %d.", frameId, lru.numPages)
	}
	lru.index[frameId] = lru.dataList.PushBack(frameId)
}

func (lru *LRUReplacer) Size() int {
	lru.mu.Lock()
	defer lru.mu.Unlock()
	return len(lru.index)
}

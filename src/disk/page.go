package disk

import (
	"sync"

	"bufpool/src/common"
)

// Page is a frame of the buffer pool together with the page it holds.
// Callers latch the contents with the embedded RWMutex; the metadata is
// owned by the BufferPoolManager.
type Page struct {
	data     []byte
	frameId  common.FrameId
	pageId   common.PageId
	pinCount int
	isDirty  bool
	sync.RWMutex
}

func (p *Page) Data() []byte { return p.data }

// FrameId is the slot of the pool this page lives in. It never changes.
func (p *Page) FrameId() common.FrameId { return p.frameId }

// PageId is InvalidPageId while the frame is empty.
func (p *Page) PageId() common.PageId { return p.pageId }

func (p *Page) PinCount() int { return p.pinCount }

func (p *Page) IsPinned() bool { return p.pinCount > 0 }

func (p *Page) IsDirty() bool { return p.isDirty }

func (p *Page) IsEmpty() bool { return p.pageId == common.InvalidPageId }

func (p *Page) reset() {
	p.pageId = common.InvalidPageId
	p.pinCount = 0
	p.isDirty = false
}

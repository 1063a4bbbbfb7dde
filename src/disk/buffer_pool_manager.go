package disk

import (
	"container/list"
	"errors"
	"fmt"
	"sync"

	"github.com/ncw/directio"
	log "github.com/sirupsen/logrus"

	"bufpool/src/common"
)

var (
	ErrBufferPoolFull  = errors.New("buffer pool is full")
	ErrPagePinned      = errors.New("page is pinned")
	ErrPageNotResident = errors.New("page is not in the buffer pool")
	ErrPageNotPinned   = errors.New("page is not pinned")
)

// BufferPoolManager caches database pages in a fixed number of frames. Free
// frames are used first; once they run out the replacer picks the victim.
type BufferPoolManager struct {
	size        int
	pages       []Page
	replacer    Replacer
	freeList    list.List
	pageTable   map[common.PageId]common.FrameId
	diskManager *DiskManager
	mu          sync.Mutex
}

func NewBufferPoolManager(size int, diskManager *DiskManager, replacer Replacer) *BufferPoolManager {
	bpm := &BufferPoolManager{
		size:        size,
		pages:       make([]Page, size),
		replacer:    replacer,
		pageTable:   make(map[common.PageId]common.FrameId),
		diskManager: diskManager,
	}
	for i := 0; i < size; i++ {
		bpm.pages[i].data = directio.AlignedBlock(pageSize)
		bpm.pages[i].frameId = common.FrameId(i)
		bpm.pages[i].reset()
		bpm.freeList.PushBack(common.FrameId(i))
	}
	return bpm
}

func (bpm *BufferPoolManager) FetchPage(pageId common.PageId) (*Page, error) {
	bpm.mu.Lock()
	defer bpm.mu.Unlock()

	if !bpm.diskManager.IsAllocated(pageId) {
		log.Warnf("Trying to fetch page %d, but the page is not allocated.", pageId)
		return nil, fmt.Errorf("fetch page %d: %w", pageId, ErrInvalidPageId)
	}
	if frameId, ok := bpm.pageTable[pageId]; ok {
		bpm.replacer.Pin(frameId)
		page := &bpm.pages[frameId]
		page.pinCount++
		return page, nil
	}
	frameId, err := bpm.acquireFrame()
	if err != nil {
		return nil, err
	}
	page := &bpm.pages[frameId]
	if err := bpm.diskManager.ReadPage(pageId, page.Data()); err != nil {
		log.WithError(err).Warnf("Cannot read page %d from disk.", pageId)
		bpm.freeList.PushBack(frameId)
		return nil, err
	}
	page.pageId = pageId
	page.pinCount = 1
	bpm.pageTable[pageId] = frameId
	return page, nil
}

func (bpm *BufferPoolManager) NewPage() (*Page, error) {
	bpm.mu.Lock()
	defer bpm.mu.Unlock()

	frameId, err := bpm.acquireFrame()
	if err != nil {
		return nil, err
	}
	newPageId, err := bpm.diskManager.AllocatePage()
	if err != nil {
		log.WithError(err).Errorf("Allocate page failed.")
		bpm.freeList.PushBack(frameId)
		return nil, err
	}
	page := &bpm.pages[frameId]
	for i := range page.data {
		page.data[i] = 0
	}
	page.pageId = newPageId
	page.pinCount = 1
	bpm.pageTable[newPageId] = frameId
	return page, nil
}

func (bpm *BufferPoolManager) UnpinPage(pageId common.PageId, isDirty bool) error {
	bpm.mu.Lock()
	defer bpm.mu.Unlock()

	frameId, ok := bpm.pageTable[pageId]
	if !ok {
		log.Warnf("Trying to unpin page %d, but the page is not in the buffer.", pageId)
		return fmt.Errorf("unpin page %d: %w", pageId, ErrPageNotResident)
	}
	page := &bpm.pages[frameId]
	if page.pinCount <= 0 {
		log.Warnf("Trying to unpin page %d, but page's pin count is zero.", pageId)
		return fmt.Errorf("unpin page %d: %w", pageId, ErrPageNotPinned)
	}
	page.pinCount--
	page.isDirty = page.isDirty || isDirty
	if page.pinCount == 0 {
		bpm.replacer.Unpin(frameId)
	}
	return nil
}

func (bpm *BufferPoolManager) FlushPage(pageId common.PageId) error {
	bpm.mu.Lock()
	defer bpm.mu.Unlock()

	frameId, ok := bpm.pageTable[pageId]
	if !ok {
		log.Warnf("Page %d is not in buffer. Cannot flush page.", pageId)
		return fmt.Errorf("flush page %d: %w", pageId, ErrPageNotResident)
	}
	return bpm.flushFrame(frameId)
}

func (bpm *BufferPoolManager) FlushAllPages() error {
	bpm.mu.Lock()
	defer bpm.mu.Unlock()

	for _, frameId := range bpm.pageTable {
		if err := bpm.flushFrame(frameId); err != nil {
			return err
		}
	}
	return nil
}

func (bpm *BufferPoolManager) DeletePage(pageId common.PageId) error {
	bpm.mu.Lock()
	defer bpm.mu.Unlock()

	frameId, ok := bpm.pageTable[pageId]
	if !ok {
		return bpm.diskManager.DeallocatePage(pageId)
	}
	page := &bpm.pages[frameId]
	if page.IsPinned() {
		return fmt.Errorf("delete page %d: %w", pageId, ErrPagePinned)
	}
	if err := bpm.diskManager.DeallocatePage(pageId); err != nil {
		return err
	}
	bpm.replacer.Pin(frameId)
	delete(bpm.pageTable, pageId)
	page.reset()
	bpm.freeList.PushBack(frameId)
	return nil
}

// Close writes back every dirty page and closes the database file.
func (bpm *BufferPoolManager) Close() error {
	if err := bpm.FlushAllPages(); err != nil {
		if closeErr := bpm.diskManager.Close(); closeErr != nil {
			log.WithError(closeErr).Errorf("Cannot close database file %s.", bpm.diskManager.fileName)
		}
		return err
	}
	return bpm.diskManager.Close()
}

func (bpm *BufferPoolManager) flushFrame(frameId common.FrameId) error {
	page := &bpm.pages[frameId]
	if page.IsEmpty() || !page.isDirty {
		return nil
	}
	if err := bpm.diskManager.WritePage(page.pageId, page.Data()); err != nil {
		log.WithError(err).Errorf("Cannot flush page %d.", page.pageId)
		return err
	}
	page.isDirty = false
	return nil
}

// acquireFrame returns an empty frame, evicting an unpinned page if the free
// list is exhausted. The caller owns the frame and must either install a page
// in it or put it back on the free list.
func (bpm *BufferPoolManager) acquireFrame() (common.FrameId, error) {
	if elem := bpm.freeList.Front(); elem != nil {
		return bpm.freeList.Remove(elem).(common.FrameId), nil
	}
	frameId, ok := bpm.replacer.Victim()
	if !ok {
		log.Warnf("Buffer pool is full.")
		return 0, ErrBufferPoolFull
	}
	page := &bpm.pages[frameId]
	log.Debugf("Evicting page %d from frame %d.", page.pageId, page.FrameId())
	if err := bpm.flushFrame(frameId); err != nil {
		bpm.replacer.Unpin(frameId)
		return 0, fmt.Errorf("write back page %d: %w", page.pageId, err)
	}
	delete(bpm.pageTable, page.pageId)
	page.reset()
	return frameId, nil
}

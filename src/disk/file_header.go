package disk

import (
	"errors"
	"unsafe"

	"bufpool/src/common"
)

var ErrFreeListFull = errors.New("free page list is full")

// headerPageInfo overlays page 0 of the database file. The free page ids
// occupy the rest of the page starting at freeList.
type headerPageInfo struct {
	nextPageId   common.PageId
	numFreePages int32
	freeList     [maxFreePages]common.PageId
}

const (
	headerFixedSize = int(unsafe.Sizeof(common.PageId(0))) + int(unsafe.Sizeof(int32(0)))
	maxFreePages    = (pageSize - headerFixedSize) / int(unsafe.Sizeof(common.PageId(0)))
)

func createHeaderPageInfo(data []byte) *headerPageInfo {
	return (*headerPageInfo)(unsafe.Pointer(&data[0]))
}

func (hdr *headerPageInfo) init() {
	hdr.nextPageId = 1
	hdr.numFreePages = 0
}

func (hdr *headerPageInfo) get(i int32) common.PageId {
	return hdr.freeList[i]
}

func (hdr *headerPageInfo) hasFreePage() bool {
	return hdr.numFreePages > 0
}

// popFreePage hands out the oldest deallocated page first.
func (hdr *headerPageInfo) popFreePage() common.PageId {
	ret := hdr.freeList[0]
	copy(hdr.freeList[:hdr.numFreePages-1], hdr.freeList[1:hdr.numFreePages])
	hdr.numFreePages--
	return ret
}

func (hdr *headerPageInfo) isFree(pageId common.PageId) bool {
	for _, id := range hdr.freeList[:hdr.numFreePages] {
		if id == pageId {
			return true
		}
	}
	return false
}

func (hdr *headerPageInfo) pushFreePage(pageId common.PageId) error {
	if int(hdr.numFreePages) >= maxFreePages {
		return ErrFreeListFull
	}
	hdr.freeList[hdr.numFreePages] = pageId
	hdr.numFreePages++
	return nil
}

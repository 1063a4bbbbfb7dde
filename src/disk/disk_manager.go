package disk

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ncw/directio"
	log "github.com/sirupsen/logrus"

	"bufpool/src/common"
)

const (
	pageSize = 4096
)

var (
	ErrInvalidPageId = errors.New("invalid page id")
	ErrShortRead     = errors.New("read less than a page")
	ErrPageFree      = errors.New("page is already deallocated")
)

// DiskManager reads and writes fixed-size pages of a single database file.
// It is not safe for concurrent use; the buffer pool serializes access.
type DiskManager struct {
	fileName      string
	header        *headerPageInfo
	headerRawData []byte

	fi *os.File
}

func NewDiskManager(fileName string) (*DiskManager, error) {
	fi, err := directio.OpenFile(fileName, os.O_CREATE|os.O_RDWR|os.O_SYNC, 0644)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", fileName, err)
	}
	dm := &DiskManager{
		fileName:      fileName,
		fi:            fi,
		headerRawData: directio.AlignedBlock(pageSize),
	}
	size, err := dm.getFileSize()
	if err != nil {
		fi.Close()
		return nil, err
	}
	dm.header = createHeaderPageInfo(dm.headerRawData)
	if size == 0 { // New file
		dm.header.init()
		if err := dm.writeHeaderPage(); err != nil {
			fi.Close()
			return nil, fmt.Errorf("write header page: %w", err)
		}
		log.Debugf("Created database file %s.", fileName)
	} else {
		if err := dm.readPageData(common.PageId(0), dm.headerRawData); err != nil {
			fi.Close()
			return nil, fmt.Errorf("read header page: %w", err)
		}
	}
	return dm, nil
}

func (dm *DiskManager) Close() error {
	return dm.fi.Close()
}

func (dm *DiskManager) AllocatePage() (common.PageId, error) {
	var pageId common.PageId
	if dm.header.hasFreePage() {
		pageId = dm.header.popFreePage()
	} else {
		pageId = dm.header.nextPageId
		if err := dm.writePageData(pageId, directio.AlignedBlock(pageSize)); err != nil {
			return common.InvalidPageId, fmt.Errorf("extend file with page %d: %w", pageId, err)
		}
		dm.header.nextPageId++
	}
	if err := dm.writeHeaderPage(); err != nil {
		return common.InvalidPageId, fmt.Errorf("write header page: %w", err)
	}
	return pageId, nil
}

func (dm *DiskManager) DeallocatePage(pageId common.PageId) error {
	if pageId <= 0 || pageId >= dm.header.nextPageId {
		return fmt.Errorf("deallocate page %d: %w", pageId, ErrInvalidPageId)
	}
	if dm.header.isFree(pageId) {
		return fmt.Errorf("deallocate page %d: %w", pageId, ErrPageFree)
	}
	if err := dm.header.pushFreePage(pageId); err != nil {
		return fmt.Errorf("deallocate page %d: %w", pageId, err)
	}
	if err := dm.writeHeaderPage(); err != nil {
		return fmt.Errorf("write header page: %w", err)
	}
	return nil
}

// IsAllocated reports whether pageId is a data page handed out by
// AllocatePage and not deallocated since. The header page is never allocated.
func (dm *DiskManager) IsAllocated(pageId common.PageId) bool {
	return pageId > 0 && pageId < dm.header.nextPageId && !dm.header.isFree(pageId)
}

// ReadPage fills data, which must be an aligned block of pageSize bytes.
func (dm *DiskManager) ReadPage(pageId common.PageId, data []byte) error {
	return dm.readPageData(pageId, data)
}

func (dm *DiskManager) WritePage(pageId common.PageId, data []byte) error {
	return dm.writePageData(pageId, data)
}

func (dm *DiskManager) getFileSize() (int64, error) {
	stat, err := dm.fi.Stat()
	if err != nil {
		return 0, err
	}
	return stat.Size(), nil
}

func (dm *DiskManager) readPageData(pageId common.PageId, data []byte) error {
	if pageId < 0 {
		return fmt.Errorf("read page %d: %w", pageId, ErrInvalidPageId)
	}
	offset := int64(pageId) * pageSize
	size, err := dm.getFileSize()
	if err != nil {
		return err
	}
	if offset >= size {
		return fmt.Errorf("read page %d: %w", pageId, io.EOF)
	}
	n, err := dm.fi.ReadAt(data, offset)
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	if n < pageSize {
		return fmt.Errorf("read page %d: %w", pageId, ErrShortRead)
	}
	return nil
}

func (dm *DiskManager) writePageData(pageId common.PageId, data []byte) error {
	if pageId < 0 {
		return fmt.Errorf("write page %d: %w", pageId, ErrInvalidPageId)
	}
	_, err := dm.fi.WriteAt(data, int64(pageId)*pageSize)
	return err
}

func (dm *DiskManager) writeHeaderPage() error {
	return dm.writePageData(common.PageId(0), dm.headerRawData)
}

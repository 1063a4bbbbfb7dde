package disk

import (
	"math/rand"
	"os"
	"testing"

	"github.com/ncw/directio"
	"github.com/stretchr/testify/require"

	"bufpool/src/common"
)

var testFileName = "tmp-file"

func newTestDiskManager(t *testing.T) *DiskManager {
	dm, err := NewDiskManager(testFileName)
	require.NoError(t, err)
	return dm
}

func TestNewDiskManager(t *testing.T) {
	defer os.Remove(testFileName)
	dm := newTestDiskManager(t)
	defer dm.Close()

	require.Equal(t, testFileName, dm.fileName)
	require.Equal(t, int32(0), dm.header.numFreePages)
	require.Equal(t, common.PageId(1), dm.header.nextPageId)

	// Check whether the header page is written.
	fi, err := os.Open(testFileName)
	require.NoError(t, err)
	defer fi.Close()
	headerPageData := directio.AlignedBlock(pageSize)
	n, err := fi.Read(headerPageData)
	require.NoError(t, err)
	require.Equal(t, pageSize, n)
	expectedHeader := createHeaderPageInfo(headerPageData)
	require.Equal(t, int32(0), expectedHeader.numFreePages)
	require.Equal(t, common.PageId(1), expectedHeader.nextPageId)
}

func TestReadWrite(t *testing.T) {
	defer os.Remove(testFileName)
	dm := newTestDiskManager(t)

	allData := make([][]byte, 0)
	for i := 0; i < 10; i++ {
		pageId, err := dm.AllocatePage()
		require.NoError(t, err)
		data := directio.AlignedBlock(pageSize)
		rand.Read(data)
		allData = append(allData, data)
		require.NoError(t, dm.WritePage(pageId, data))

		secondData := directio.AlignedBlock(pageSize)
		require.NoError(t, dm.ReadPage(pageId, secondData))
		require.Equal(t, data, secondData)
	}
	require.NoError(t, dm.Close())

	newDm := newTestDiskManager(t)
	defer newDm.Close()
	for i := 0; i < 10; i++ {
		data := directio.AlignedBlock(pageSize)
		require.NoError(t, newDm.ReadPage(common.PageId(i+1), data))
		require.Equal(t, allData[i], data)
	}
}

func TestReadPage_Invalid(t *testing.T) {
	defer os.Remove(testFileName)
	dm := newTestDiskManager(t)
	defer dm.Close()

	data := directio.AlignedBlock(pageSize)
	require.ErrorIs(t, dm.ReadPage(common.PageId(-1), data), ErrInvalidPageId)
	require.Error(t, dm.ReadPage(common.PageId(3), data)) // past end of file
	require.ErrorIs(t, dm.WritePage(common.PageId(-1), data), ErrInvalidPageId)
}

func TestAllocateAndDeallocate(t *testing.T) {
	defer os.Remove(testFileName)
	dm := newTestDiskManager(t)
	defer dm.Close()

	// Allocate pages in sequence.
	for i := 1; i <= 5; i++ {
		pageId, err := dm.AllocatePage()
		require.NoError(t, err)
		require.Equal(t, common.PageId(i), pageId)
		require.Equal(t, common.PageId(i+1), dm.header.nextPageId)
		require.Equal(t, int32(0), dm.header.numFreePages)
	}

	// Deallocate pages in sequence.
	for i := 1; i <= 5; i++ {
		require.NoError(t, dm.DeallocatePage(common.PageId(i)))
		require.Equal(t, common.PageId(6), dm.header.nextPageId)
		require.Equal(t, int32(i), dm.header.numFreePages)
		require.Equal(t, common.PageId(i), dm.header.get(int32(i-1)))
	}

	// Allocate some pages, then deallocate some, finally allocate again.
	for i := 1; i <= 5; i++ {
		_, err := dm.AllocatePage()
		require.NoError(t, err)
	}
	for i := 1; i <= 3; i++ {
		require.NoError(t, dm.DeallocatePage(common.PageId(i)))
	}
	for i := 1; i <= 3; i++ {
		pageId, err := dm.AllocatePage()
		require.NoError(t, err)
		require.Equal(t, common.PageId(i), pageId)
		require.Equal(t, common.PageId(6), dm.header.nextPageId)
		require.Equal(t, int32(3-i), dm.header.numFreePages)
	}
	for i := 1; i <= 5; i++ {
		pageId, err := dm.AllocatePage()
		require.NoError(t, err)
		require.Equal(t, common.PageId(i+5), pageId)
		require.Equal(t, common.PageId(i+6), dm.header.nextPageId)
		require.Equal(t, int32(0), dm.header.numFreePages)
	}

	require.ErrorIs(t, dm.DeallocatePage(common.PageId(0)), ErrInvalidPageId)
	require.ErrorIs(t, dm.DeallocatePage(common.PageId(100)), ErrInvalidPageId)
}

func TestDeallocateTwice(t *testing.T) {
	defer os.Remove(testFileName)
	dm := newTestDiskManager(t)
	defer dm.Close()

	for i := 0; i < 3; i++ {
		_, err := dm.AllocatePage()
		require.NoError(t, err)
	}
	require.True(t, dm.IsAllocated(common.PageId(2)))
	require.NoError(t, dm.DeallocatePage(common.PageId(2)))
	require.False(t, dm.IsAllocated(common.PageId(2)))

	require.ErrorIs(t, dm.DeallocatePage(common.PageId(2)), ErrPageFree)
	require.Equal(t, int32(1), dm.header.numFreePages)

	first, err := dm.AllocatePage()
	require.NoError(t, err)
	second, err := dm.AllocatePage()
	require.NoError(t, err)
	require.Equal(t, common.PageId(2), first)
	require.Equal(t, common.PageId(4), second)
	require.True(t, dm.IsAllocated(common.PageId(2)))
}

func TestIsAllocated(t *testing.T) {
	defer os.Remove(testFileName)
	dm := newTestDiskManager(t)
	defer dm.Close()

	_, err := dm.AllocatePage()
	require.NoError(t, err)
	require.False(t, dm.IsAllocated(common.PageId(0)))
	require.True(t, dm.IsAllocated(common.PageId(1)))
	require.False(t, dm.IsAllocated(common.PageId(2)))
	require.False(t, dm.IsAllocated(common.PageId(-1)))
	require.ErrorIs(t, dm.DeallocatePage(common.PageId(100)), ErrInvalidPageId)
}

func TestHeaderPage(t *testing.T) {
	defer os.Remove(testFileName)
	dm := newTestDiskManager(t)

	for i := 0; i < 5; i++ {
		_, err := dm.AllocatePage()
		require.NoError(t, err)
	}
	require.NoError(t, dm.DeallocatePage(common.PageId(2)))
	require.NoError(t, dm.DeallocatePage(common.PageId(4)))
	require.NoError(t, dm.Close())

	newDm := newTestDiskManager(t)
	defer newDm.Close()

	require.Equal(t, int32(2), newDm.header.numFreePages)
	require.Equal(t, common.PageId(6), newDm.header.nextPageId)
	require.Equal(t, common.PageId(2), newDm.header.get(int32(0)))
	require.Equal(t, common.PageId(4), newDm.header.get(int32(1)))
}

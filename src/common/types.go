package common

// PageId numbers a page of the database file. Page 0 holds the file header.
type PageId int32

// FrameId names a slot of the buffer pool.
type FrameId int

const (
	InvalidPageId = PageId(-1)
)

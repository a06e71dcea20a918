package data

import "time"

// Attributes describes a single entry as seen by the guest.
// Created and Modified are milliseconds since the unix epoch.
type Attributes struct {
	Size       int64 `json:"size"`
	IsDir      bool  `json:"isDir"`
	IsReadOnly bool  `json:"isReadOnly"`
	Created    int64 `json:"created"`
	Modified   int64 `json:"modified"`
}

// NewFileAttributes returns attributes for a regular file.
func NewFileAttributes(size int64, readOnly bool, created, modified time.Time) *Attributes {
	return &Attributes{
		Size:       size,
		IsReadOnly: readOnly,
		Created:    Millis(created),
		Modified:   Millis(modified),
	}
}

// NewDirAttributes returns attributes for a directory.
func NewDirAttributes(readOnly bool, created, modified time.Time) *Attributes {
	return &Attributes{
		IsDir:      true,
		IsReadOnly: readOnly,
		Created:    Millis(created),
		Modified:   Millis(modified),
	}
}

// Millis converts t to milliseconds since the epoch, mapping the zero time to 0.
func Millis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

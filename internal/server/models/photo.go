package models

import "time"

// Photo is an image attached to an item. StorageKey is the object key in
// the bucket and never leaves the server; clients get a signed URL instead.
type Photo struct {
	ID          string
	ItemID      string
	StorageKey  string
	ContentType string
	URL         string
	CreatedAt   time.Time
}

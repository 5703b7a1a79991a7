package vault

import "time"

type BlobMeta struct {
	BlobID      string    `json:"blob_id"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	Timestamp   time.Time `json:"timestamp"`
}

package models

import "time"

// Attachment is a file reference owned by exactly one service record.
//
// FileData carries the raw bytes only while an upload is pending; the
// local cache keeps the metadata and the remote store keeps the bytes.
type Attachment struct {
	ID              string    `json:"id"`
	ServiceRecordID string    `json:"service_record_id"`
	Filename        string    `json:"filename"`
	Mimetype        string    `json:"mimetype"`
	Size            int64     `json:"size"`
	URL             string    `json:"url"`
	FileData        []byte    `json:"file_data"`
	UploadedBy      string    `json:"uploaded_by"`
	CreatedAt       time.Time `json:"created_at"`
}

// AttachmentFile is the downloaded content of an attachment.
type AttachmentFile struct {
	Buffer   []byte
	Mimetype string
	Filename string
}

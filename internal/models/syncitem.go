package models

import (
	"encoding/json"
	"time"
)

// SyncOp is the kind of pending mutation.
type SyncOp string

const (
	OpCreate SyncOp = "create"
	OpUpdate SyncOp = "update"
	OpDelete SyncOp = "delete"
)

// SyncTable names the domain collection a queue item targets.
type SyncTable string

const (
	TableServiceRecords SyncTable = "service_records"
	TableAttachments    SyncTable = "attachments"
	TableUsers          SyncTable = "users"
)

// SyncQueueItem is a durable pending mutation awaiting replay against
// the remote gateway.
//
// Payload holds the full normalized record for create/update, or just
// {"id": ...} for delete. Retries counts failed replay attempts; items
// are dropped once the cap is exceeded.
type SyncQueueItem struct {
	ID         string
	Op         SyncOp
	Table      SyncTable
	Payload    json.RawMessage
	Retries    int
	EnqueuedAt time.Time
}

// DeletePayload is the payload of a delete queue item.
type DeletePayload struct {
	ID string `json:"id"`
}

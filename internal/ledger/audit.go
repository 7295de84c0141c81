package ledger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

// ActivityLog is one row of the append-only audit trail.
type ActivityLog struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	UserID    string    `json:"user_id"`
	Action    string    `json:"action"`
	Details   string    `json:"details"`
}

// EditLog records one field-level change of an updatable record.
type EditLog struct {
	RecordType RecordType `json:"record_type"`
	RecordID   string     `json:"record_id"`
	Timestamp  time.Time  `json:"timestamp"`
	UserID     string     `json:"user_id"`
	Field      string     `json:"field"`
	OldValue   string     `json:"old_value"`
	NewValue   string     `json:"new_value"`
}

type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestRejected RequestStatus = "rejected"
)

type ApprovalRequest struct {
	ID           string        `json:"id"`
	RecordType   RecordType    `json:"record_type"`
	RecordID     string        `json:"record_id"`
	RequestedBy  string        `json:"requested_by"`
	RequestDate  time.Time     `json:"request_date"`
	Status       RequestStatus `json:"status"`
	ApprovedBy   string        `json:"approved_by,omitempty"`
	ApprovalDate *time.Time    `json:"approval_date,omitempty"`
}

// Fields never reported by Diff.
var auditFields = map[string]bool{
	"id":           true,
	"lifecycle":    true,
	"version":      true,
	"created_by":   true,
	"created_at":   true,
	"updated_at":   true,
	"edit_history": true,
}

// Diff compares the JSON form of two versions of a record and returns one
// EditLog per changed field, sorted by field name. Identity and audit
// metadata are ignored.
func Diff(recordType RecordType, recordID, userID string, at time.Time, before, after any) ([]EditLog, error) {
	oldFields, err := fieldsOf(before)
	if err != nil {
		return nil, err
	}
	newFields, err := fieldsOf(after)
	if err != nil {
		return nil, err
	}

	keys := make(map[string]struct{}, len(oldFields)+len(newFields))
	for k := range oldFields {
		keys[k] = struct{}{}
	}
	for k := range newFields {
		keys[k] = struct{}{}
	}
	names := make([]string, 0, len(keys))
	for k := range keys {
		if !auditFields[k] {
			names = append(names, k)
		}
	}
	sort.Strings(names)

	var logs []EditLog
	for _, name := range names {
		o, n := oldFields[name], newFields[name]
		if bytes.Equal(o, n) {
			continue
		}
		logs = append(logs, EditLog{
			RecordType: recordType,
			RecordID:   recordID,
			Timestamp:  at,
			UserID:     userID,
			Field:      name,
			OldValue:   displayValue(o),
			NewValue:   displayValue(n),
		})
	}
	return logs, nil
}

func fieldsOf(v any) (map[string]json.RawMessage, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("diff: marshal record: %w", err)
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("diff: record is not an object: %w", err)
	}
	return fields, nil
}

func displayValue(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	return strings.TrimSpace(string(raw))
}

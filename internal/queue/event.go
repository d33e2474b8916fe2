// Package queue defines message payloads exchanged over the message broker.
package queue

// FollowUpCreatedEvent is published when a follow-up is scheduled. It
// carries enough information for downstream consumers to log or notify
// without querying the primary database.
type FollowUpCreatedEvent struct {
    FollowUpID      uint64 `json:"followup_id"`
    AccountID       uint64 `json:"account_id"`
    AccountName     string `json:"account_name"`
    AccountCategory string `json:"account_category"`
    SalesRepID      uint64 `json:"sales_rep_id,omitempty"`
    FollowUpDate    string `json:"follow_up_date"`
    Status          string `json:"status"`
    CreatedAt       string `json:"created_at"`
}

package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Query lifecycle statuses. A status in the resolved set is terminal.
const (
	StatusPending            = "pending"
	StatusApproved           = "approved"
	StatusDeferred           = "deferred"
	StatusOTC                = "otc"
	StatusWaived             = "waived"
	StatusResolved           = "resolved"
	StatusRequestApproved    = "request-approved"
	StatusRequestDeferral    = "request-deferral"
	StatusRequestOTC         = "request-otc"
	StatusPendingApproval    = "pending-approval"
	StatusWaitingForApproval = "waiting-for-approval"
)

var resolvedStatuses = map[string]bool{
	StatusApproved:        true,
	StatusDeferred:        true,
	StatusOTC:             true,
	StatusWaived:          true,
	StatusResolved:        true,
	StatusRequestApproved: true,
	StatusRequestDeferral: true,
	StatusRequestOTC:      true,
}

var knownStatuses = map[string]bool{
	StatusPending:            true,
	StatusApproved:           true,
	StatusDeferred:           true,
	StatusOTC:                true,
	StatusWaived:             true,
	StatusResolved:           true,
	StatusRequestApproved:    true,
	StatusRequestDeferral:    true,
	StatusRequestOTC:         true,
	StatusPendingApproval:    true,
	StatusWaitingForApproval: true,
}

// IsResolvedStatus reports whether a status belongs to the terminal resolved set
func IsResolvedStatus(status string) bool {
	return resolvedStatuses[status]
}

// IsKnownStatus reports whether a status is part of the query lifecycle
func IsKnownStatus(status string) bool {
	return knownStatuses[status]
}

// QueryGroup represents the QUERY_GROUP table plus its sub-queries
type QueryGroup struct {
	GroupID          string  `db:"GROUP_ID" json:"id"`
	AppNo            string  `db:"APP_NO" json:"appNo"`
	CustomerName     string  `db:"CUSTOMER_NAME" json:"customerName"`
	Branch           string  `db:"BRANCH" json:"branch"`
	BranchCode       string  `db:"BRANCH_CODE" json:"branchCode,omitempty"`
	Status           string  `db:"STATUS" json:"status"`
	MarkedForTeam    string  `db:"MARKED_FOR_TEAM" json:"markedForTeam"`
	SendTo           string  `db:"SEND_TO" json:"sendTo"`
	SendToSales      bool    `db:"SEND_TO_SALES" json:"sendToSales"`
	SendToCredit     bool    `db:"SEND_TO_CREDIT" json:"sendToCredit"`
	RaisedBy         string  `db:"RAISED_BY" json:"raisedBy,omitempty"`
	CreatedAt        int64   `db:"CREATED_AT" json:"createdAt"`
	SubmittedAt      int64   `db:"SUBMITTED_AT" json:"submittedAt"`
	LastUpdated      int64   `db:"LAST_UPDATED" json:"lastUpdated"`
	ResolvedAt       *int64  `db:"RESOLVED_AT" json:"resolvedAt,omitempty"`
	ResolvedBy       *string `db:"RESOLVED_BY" json:"resolvedBy,omitempty"`
	ResolutionReason *string `db:"RESOLUTION_REASON" json:"resolutionReason,omitempty"`
	ApproverComment  *string `db:"APPROVER_COMMENT" json:"approverComment,omitempty"`
	ApprovedBy       *string `db:"APPROVED_BY" json:"approvedBy,omitempty"`
	ApprovedAt       *int64  `db:"APPROVED_AT" json:"approvedAt,omitempty"`
	ApprovalStatus   *string `db:"APPROVAL_STATUS" json:"approvalStatus,omitempty"`

	// Loaded from QUERY_ITEM, never scanned directly
	Queries []QueryItem `db:"-" json:"queries"`

	// Live enrichment from the sanctioned application store, not persisted here
	SanctionedAmount *float64 `db:"-" json:"sanctionedAmount,omitempty"`
	LoanType         *string  `db:"-" json:"loanType,omitempty"`
}

// QueryItem represents one sub-query within a group (QUERY_ITEM table)
type QueryItem struct {
	QueryID          string  `db:"QUERY_ID" json:"id"`
	GroupID          string  `db:"GROUP_ID" json:"groupId"`
	Text             string  `db:"QUERY_TEXT" json:"text"`
	QueryNumber      int64   `db:"QUERY_NUMBER" json:"queryNumber"`
	Status           string  `db:"STATUS" json:"status"`
	SentTo           string  `db:"SENT_TO" json:"sentTo"`
	TAT              string  `db:"TAT" json:"tat,omitempty"`
	ResolvedAt       *int64  `db:"RESOLVED_AT" json:"resolvedAt,omitempty"`
	ResolvedBy       *string `db:"RESOLVED_BY" json:"resolvedBy,omitempty"`
	ResolutionReason *string `db:"RESOLUTION_REASON" json:"resolutionReason,omitempty"`
	ApproverComment  *string `db:"APPROVER_COMMENT" json:"approverComment,omitempty"`
	ApprovedBy       *string `db:"APPROVED_BY" json:"approvedBy,omitempty"`
	ApprovedAt       *int64  `db:"APPROVED_AT" json:"approvedAt,omitempty"`
	ApprovalStatus   *string `db:"APPROVAL_STATUS" json:"approvalStatus,omitempty"`
}

// AllItemsResolved reports whether every sub-query of the group is in the
// resolved set. A group with no loaded items is never considered resolved.
func (g *QueryGroup) AllItemsResolved() bool {
	if len(g.Queries) == 0 {
		return false
	}
	for _, item := range g.Queries {
		if !IsResolvedStatus(item.Status) {
			return false
		}
	}
	return true
}

// FlexID is an identifier that callers may send as a JSON string or number.
// It always unmarshals to its string form.
type FlexID string

// UnmarshalJSON accepts both "123" and 123 on the wire
func (f *FlexID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = FlexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*f = FlexID(n.String())
		return nil
	}
	return fmt.Errorf("invalid identifier: %s", string(data))
}

// String returns the trimmed string form of the identifier
func (f FlexID) String() string {
	return strings.TrimSpace(string(f))
}

// NumericallyEqual reports whether two identifiers match after numeric
// coercion (both parse as numbers and compare equal). Used only on the
// fallback-cache path where producers historically mixed types.
func NumericallyEqual(a, b string) bool {
	na, errA := strconv.ParseFloat(strings.TrimSpace(a), 64)
	nb, errB := strconv.ParseFloat(strings.TrimSpace(b), 64)
	if errA != nil || errB != nil {
		return false
	}
	return na == nb
}

// QueryCreateRequest is the body of POST /queries
type QueryCreateRequest struct {
	AppNo    string   `json:"appNo"`
	Queries  []string `json:"queries"`
	SendTo   string   `json:"sendTo"`
	RaisedBy string   `json:"raisedBy,omitempty"`
	TAT      string   `json:"tat,omitempty"`
}

// QueryUpdateRequest is the body of PATCH /queries
type QueryUpdateRequest struct {
	QueryID           FlexID `json:"queryId"`
	OriginalQueryID   FlexID `json:"originalQueryId,omitempty"`
	IsIndividualQuery bool   `json:"isIndividualQuery,omitempty"`
	Status            string `json:"status"`
	ResolvedBy        string `json:"resolvedBy,omitempty"`
	ResolutionReason  string `json:"resolutionReason,omitempty"`
	ApproverComment   string `json:"approverComment,omitempty"`
	ApprovedBy        string `json:"approvedBy,omitempty"`
	ApprovalStatus    string `json:"approvalStatus,omitempty"`
}

// QueryListFilters holds the supported listing filters
type QueryListFilters struct {
	Team     string
	Status   string
	Resolved *bool
	Branches []string
	AppNo    string
	Limit    int
}

// QueryStats counts pending/resolved at the sub-query granularity
type QueryStats struct {
	Pending  int `json:"pending"`
	Resolved int `json:"resolved"`
	Total    int `json:"total"`
}

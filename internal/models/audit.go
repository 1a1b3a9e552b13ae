package models

// QueryStatusAudit represents the QUERY_STATUS_AUDIT table. One row per
// status transition, written best-effort.
type QueryStatusAudit struct {
	AuditID        string  `db:"AUDIT_ID" json:"auditId"`
	QueryID        string  `db:"QUERY_ID" json:"queryId"`
	GroupID        string  `db:"GROUP_ID" json:"groupId"`
	PreviousStatus *string `db:"PREVIOUS_STATUS" json:"previousStatus,omitempty"`
	CurrentStatus  string  `db:"CURRENT_STATUS" json:"currentStatus"`
	ActionBy       *string `db:"ACTION_BY" json:"actionBy,omitempty"`
	Reason         *string `db:"REASON" json:"reason,omitempty"`
	ActionTime     int64   `db:"ACTION_TIME" json:"actionTime"`
}

package models

// SanctionedApplication represents the SANCTIONED_APPLICATION table. Rows are
// created by the upload tooling and deleted only by the resolution cascade
// once every query group for the appId is resolved.
type SanctionedApplication struct {
	AppID            string  `db:"APP_ID" json:"appId"`
	CustomerName     string  `db:"CUSTOMER_NAME" json:"customerName"`
	Branch           string  `db:"BRANCH" json:"branch"`
	SanctionedAmount float64 `db:"SANCTIONED_AMOUNT" json:"sanctionedAmount"`
	LoanType         string  `db:"LOAN_TYPE" json:"loanType"`
	SalesExec        string  `db:"SALES_EXEC" json:"salesExec,omitempty"`
	Status           string  `db:"STATUS" json:"status"`
	UploadedAt       int64   `db:"UPLOADED_AT" json:"uploadedAt"`
}

// LoanApplication represents the LOAN_APPLICATION table, the upstream
// application record consulted by the metadata fallback chain
type LoanApplication struct {
	AppNo        string `db:"APP_NO" json:"appNo"`
	CustomerName string `db:"CUSTOMER_NAME" json:"customerName"`
	Branch       string `db:"BRANCH" json:"branch"`
	BranchCode   string `db:"BRANCH_CODE" json:"branchCode,omitempty"`
}

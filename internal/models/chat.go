package models

// ChatMessage represents the CHAT_MESSAGE table
type ChatMessage struct {
	MessageID  string `db:"MESSAGE_ID" json:"id"`
	QueryID    string `db:"QUERY_ID" json:"queryId"`
	Message    string `db:"MESSAGE" json:"message"`
	Sender     string `db:"SENDER" json:"sender"`
	SenderRole string `db:"SENDER_ROLE" json:"senderRole,omitempty"`
	Team       string `db:"TEAM" json:"team,omitempty"`
	SentAt     int64  `db:"SENT_AT" json:"timestamp"`
}

// ChatPostRequest is the body of POST /queries/{id}/chat. QueryID is optional;
// when present it must match the URL's query id.
type ChatPostRequest struct {
	QueryID    string `json:"queryId,omitempty"`
	Message    string `json:"message"`
	Sender     string `json:"sender"`
	SenderRole string `json:"senderRole,omitempty"`
	Team       string `json:"team,omitempty"`
}

// ChatPostResponse reports the stored (or pre-existing duplicate) message
type ChatPostResponse struct {
	Message     *ChatMessage `json:"message"`
	IsDuplicate bool         `json:"isDuplicate"`
}

// Remark represents the QUERY_REMARK table, the legacy per-group remark
// mirror kept populated for older dashboard views
type Remark struct {
	RemarkID  string `db:"REMARK_ID" json:"id"`
	GroupID   string `db:"GROUP_ID" json:"groupId"`
	Text      string `db:"REMARK_TEXT" json:"text"`
	Author    string `db:"AUTHOR" json:"author"`
	Team      string `db:"TEAM" json:"team,omitempty"`
	CreatedAt int64  `db:"CREATED_AT" json:"createdAt"`
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/lendops/query-management-api/internal/dao"
	"github.com/lendops/query-management-api/internal/models"
	"github.com/lendops/query-management-api/internal/notify"
	"github.com/lendops/query-management-api/pkg/utils"
)

// ChatService handles business logic for per-query chat threads
type ChatService struct {
	chatDAO          *dao.ChatDAO
	remarkDAO        *dao.RemarkDAO
	groupDAO         *dao.QueryGroupDAO
	hub              *notify.Hub
	readDedupWindow  time.Duration
	writeDedupWindow time.Duration
	logger           *logrus.Logger
}

// NewChatService creates a new chat service instance
func NewChatService(
	chatDAO *dao.ChatDAO,
	remarkDAO *dao.RemarkDAO,
	groupDAO *dao.QueryGroupDAO,
	hub *notify.Hub,
	readDedupWindow time.Duration,
	writeDedupWindow time.Duration,
	logger *logrus.Logger,
) *ChatService {
	return &ChatService{
		chatDAO:          chatDAO,
		remarkDAO:        remarkDAO,
		groupDAO:         groupDAO,
		hub:              hub,
		readDedupWindow:  readDedupWindow,
		writeDedupWindow: writeDedupWindow,
		logger:           logger,
	}
}

// GetThread returns the chat thread for a query, oldest first, with
// near-simultaneous duplicates collapsed
func (s *ChatService) GetThread(ctx context.Context, queryID string) ([]models.ChatMessage, error) {
	queryID = strings.TrimSpace(queryID)
	if queryID == "" {
		return nil, NewValidationError("query id is required")
	}

	messages, err := s.chatDAO.ListByQueryID(ctx, queryID)
	if err != nil {
		return nil, fmt.Errorf("failed to load chat thread: %w", err)
	}

	return CollapseDuplicates(messages, s.readDedupWindow), nil
}

// PostMessage appends a message to a query's thread. A message repeating
// the same sender and text within the write dedup window is not stored
// again; the existing message is returned with IsDuplicate set.
func (s *ChatService) PostMessage(ctx context.Context, queryID string, request *models.ChatPostRequest) (*models.ChatPostResponse, error) {
	queryID = strings.TrimSpace(queryID)
	if queryID == "" {
		return nil, NewValidationError("query id is required")
	}

	bodyQueryID := strings.TrimSpace(request.QueryID)
	if bodyQueryID != "" && bodyQueryID != queryID {
		return nil, NewValidationError(fmt.Sprintf("body queryId %s does not match URL query id %s", bodyQueryID, queryID))
	}

	message := strings.TrimSpace(request.Message)
	if message == "" {
		return nil, NewValidationError("message is required")
	}
	if err := utils.ValidateMaxLength("message", message, 4000); err != nil {
		return nil, NewValidationError(err.Error())
	}

	sender := strings.TrimSpace(request.Sender)
	if sender == "" {
		return nil, NewValidationError("sender is required")
	}

	now := utils.GetCurrentTimeMillis()
	cutoff := now - s.writeDedupWindow.Milliseconds()

	existing, err := s.chatDAO.GetRecentDuplicate(ctx, queryID, sender, message, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to check for duplicate message: %w", err)
	}
	if existing != nil {
		s.logger.WithFields(logrus.Fields{
			"queryId": queryID,
			"sender":  sender,
		}).Info("Suppressed duplicate chat message")
		return &models.ChatPostResponse{Message: existing, IsDuplicate: true}, nil
	}

	msg := &models.ChatMessage{
		MessageID:  utils.GenerateMessageID(),
		QueryID:    queryID,
		Message:    message,
		Sender:     sender,
		SenderRole: strings.TrimSpace(request.SenderRole),
		Team:       models.NormalizeTeam(request.Team),
		SentAt:     now,
	}

	if err := s.chatDAO.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to store chat message: %w", err)
	}

	s.mirrorRemark(ctx, queryID, msg)

	s.hub.Publish(notify.Event{
		Type:    notify.EventChatMessage,
		QueryID: queryID,
		Team:    msg.Team,
		Payload: msg,
	})

	return &models.ChatPostResponse{Message: msg, IsDuplicate: false}, nil
}

// GetRemarks returns the legacy remark mirror for a group, oldest first
func (s *ChatService) GetRemarks(ctx context.Context, groupID string) ([]models.Remark, error) {
	groupID = strings.TrimSpace(groupID)
	if groupID == "" {
		return nil, NewValidationError("query id is required")
	}

	remarks, err := s.remarkDAO.ListByGroupID(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to load remarks: %w", err)
	}

	return remarks, nil
}

// mirrorRemark appends a copy of the message into the group's remark list
// so legacy views stay populated. Non-fatal on any failure.
func (s *ChatService) mirrorRemark(ctx context.Context, queryID string, msg *models.ChatMessage) {
	group, err := s.groupDAO.GetByID(ctx, queryID)
	if err != nil {
		if !errors.Is(err, dao.ErrNotFound) {
			s.logger.WithError(err).WithField("queryId", queryID).Warn("Remark mirror skipped, group lookup failed")
		}
		return
	}

	remark := &models.Remark{
		RemarkID:  utils.GenerateRemarkID(),
		GroupID:   group.GroupID,
		Text:      msg.Message,
		Author:    msg.Sender,
		Team:      msg.Team,
		CreatedAt: msg.SentAt,
	}

	if err := s.remarkDAO.Create(ctx, remark); err != nil {
		s.logger.WithError(err).WithField("groupId", group.GroupID).Warn("Failed to mirror chat message into remarks")
	}
}

// DebugThread compares the raw stored thread against the deduplicated view
type DebugThread struct {
	QueryID    string               `json:"queryId"`
	RawCount   int                  `json:"rawCount"`
	ViewCount  int                  `json:"viewCount"`
	Raw        []models.ChatMessage `json:"raw"`
	View       []models.ChatMessage `json:"view"`
	Suppressed int                  `json:"suppressed"`
}

// GetDebugThread is a diagnostic dump of a thread before and after
// duplicate collapsing. Not a stable contract.
func (s *ChatService) GetDebugThread(ctx context.Context, queryID string) (*DebugThread, error) {
	queryID = strings.TrimSpace(queryID)
	if queryID == "" {
		return nil, NewValidationError("queryId is required")
	}

	raw, err := s.chatDAO.ListByQueryID(ctx, queryID)
	if err != nil {
		return nil, fmt.Errorf("failed to load chat thread: %w", err)
	}

	view := CollapseDuplicates(raw, s.readDedupWindow)

	return &DebugThread{
		QueryID:    queryID,
		RawCount:   len(raw),
		ViewCount:  len(view),
		Raw:        raw,
		View:       view,
		Suppressed: len(raw) - len(view),
	}, nil
}

// CollapseDuplicates drops messages repeating the same sender and text
// within the window of a previously kept message. Input must be sorted
// oldest first.
func CollapseDuplicates(messages []models.ChatMessage, window time.Duration) []models.ChatMessage {
	if len(messages) == 0 {
		return []models.ChatMessage{}
	}

	windowMillis := window.Milliseconds()
	lastKept := make(map[string]int64, len(messages))
	result := make([]models.ChatMessage, 0, len(messages))

	for _, msg := range messages {
		key := msg.Sender + "\x00" + msg.Message
		if prev, ok := lastKept[key]; ok && msg.SentAt-prev <= windowMillis {
			continue
		}
		lastKept[key] = msg.SentAt
		result = append(result, msg)
	}

	return result
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/lendops/query-management-api/internal/cache"
	"github.com/lendops/query-management-api/internal/dao"
	"github.com/lendops/query-management-api/internal/database"
	"github.com/lendops/query-management-api/internal/models"
	"github.com/lendops/query-management-api/internal/notify"
	"github.com/lendops/query-management-api/pkg/utils"
)

// QueryService handles business logic for the query lifecycle
type QueryService struct {
	groupDAO       *dao.QueryGroupDAO
	itemDAO        *dao.QueryItemDAO
	sanctionDAO    *dao.SanctionDAO
	applicationDAO *dao.ApplicationDAO
	auditDAO       *dao.StatusAuditDAO
	db             *database.DB
	fallback       *cache.FallbackStore
	hub            *notify.Hub
	logger         *logrus.Logger
	numbers        queryNumberAllocator
}

// NewQueryService creates a new query service instance
func NewQueryService(
	groupDAO *dao.QueryGroupDAO,
	itemDAO *dao.QueryItemDAO,
	sanctionDAO *dao.SanctionDAO,
	applicationDAO *dao.ApplicationDAO,
	auditDAO *dao.StatusAuditDAO,
	db *database.DB,
	fallback *cache.FallbackStore,
	hub *notify.Hub,
	logger *logrus.Logger,
) *QueryService {
	return &QueryService{
		groupDAO:       groupDAO,
		itemDAO:        itemDAO,
		sanctionDAO:    sanctionDAO,
		applicationDAO: applicationDAO,
		auditDAO:       auditDAO,
		db:             db,
		fallback:       fallback,
		hub:            hub,
		logger:         logger,
	}
}

// CreateQueries creates one query group per supplied text, each holding a
// single sub-query with a fresh query number
func (s *QueryService) CreateQueries(ctx context.Context, request *models.QueryCreateRequest) ([]models.QueryGroup, error) {
	if err := utils.ValidateAppNo(request.AppNo); err != nil {
		return nil, NewValidationError(err.Error())
	}

	texts := make([]string, 0, len(request.Queries))
	for _, text := range request.Queries {
		if trimmed := strings.TrimSpace(text); trimmed != "" {
			texts = append(texts, trimmed)
		}
	}
	if len(texts) == 0 {
		return nil, NewValidationError("at least one non-empty query text is required")
	}

	team := models.NormalizeTeam(request.SendTo)
	if !models.IsValidTeam(team) {
		return nil, NewValidationError(fmt.Sprintf("unknown target team: %s", request.SendTo))
	}

	meta := s.resolveApplicationMetadata(ctx, request.AppNo)

	firstNumber, err := s.numbers.allocate(ctx, s.itemDAO, int64(len(texts)))
	if err != nil {
		return nil, err
	}

	now := utils.GetCurrentTimeMillis()
	groups := make([]models.QueryGroup, 0, len(texts))

	for i, text := range texts {
		group := models.QueryGroup{
			GroupID:       utils.GenerateQueryID(),
			AppNo:         request.AppNo,
			CustomerName:  meta.CustomerName,
			Branch:        meta.Branch,
			BranchCode:    meta.BranchCode,
			Status:        models.StatusPending,
			MarkedForTeam: team,
			SendTo:        team,
			SendToSales:   team == models.TeamSales,
			SendToCredit:  team == models.TeamCredit,
			RaisedBy:      strings.TrimSpace(request.RaisedBy),
			CreatedAt:     now,
			SubmittedAt:   now,
			LastUpdated:   now,
		}

		item := models.QueryItem{
			QueryID:     utils.GenerateQueryID(),
			GroupID:     group.GroupID,
			Text:        text,
			QueryNumber: firstNumber + int64(i),
			Status:      models.StatusPending,
			SentTo:      team,
			TAT:         strings.TrimSpace(request.TAT),
		}

		group.Queries = []models.QueryItem{item}
		groups = append(groups, group)
	}

	err = s.db.WithTransaction(ctx, func(tx *database.Transaction) error {
		for i := range groups {
			if err := s.groupDAO.CreateWithTx(ctx, tx, &groups[i]); err != nil {
				return err
			}
			for j := range groups[i].Queries {
				if err := s.itemDAO.CreateWithTx(ctx, tx, &groups[i].Queries[j]); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to persist query groups: %w", err)
	}

	for i := range groups {
		group := &groups[i]
		s.fallback.Put(group)
		s.recordAudit(ctx, &group.Queries[0], nil, "Query created")
		s.hub.Publish(notify.Event{
			Type:    notify.EventQueryCreated,
			QueryID: group.GroupID,
			AppNo:   group.AppNo,
			Team:    group.MarkedForTeam,
			Payload: group,
		})
	}

	s.logger.WithFields(logrus.Fields{
		"appNo": request.AppNo,
		"count": len(groups),
		"team":  team,
	}).Info("Created query groups")

	return groups, nil
}

// UpdateQuery locates a sub-query or group by the caller's loosely-typed
// identifiers and applies a status transition plus resolution metadata
func (s *QueryService) UpdateQuery(ctx context.Context, request *models.QueryUpdateRequest) (*models.QueryGroup, error) {
	status := strings.TrimSpace(strings.ToLower(request.Status))
	if status == "" {
		return nil, NewValidationError("status is required")
	}
	if !models.IsKnownStatus(status) {
		return nil, NewValidationError(fmt.Sprintf("unknown status: %s", request.Status))
	}

	candidates := idCandidates(request)
	if len(candidates) == 0 {
		return nil, NewValidationError("queryId is required")
	}

	group, item, dbErr := s.locate(ctx, candidates)
	if dbErr != nil {
		// Availability over consistency: when the database is unreachable
		// the update is applied to the in-process snapshot instead.
		s.logger.WithError(dbErr).Warn("Database lookup failed, trying fallback store")
		return s.updateViaFallback(request, status, candidates)
	}
	if group == nil {
		if fbGroup, err := s.updateViaFallback(request, status, candidates); err == nil {
			return fbGroup, nil
		}
		return nil, NewNotFoundError(fmt.Sprintf("no query matches identifier %s", candidates[0]))
	}

	now := utils.GetCurrentTimeMillis()

	// A sub-query hit updates just that sub-query and the group aggregates
	// below; a group hit updates every sub-query.
	targets := group.Queries
	if item != nil {
		targets = []models.QueryItem{*item}
	}

	previous := make(map[string]string, len(targets))
	for i := range targets {
		target := &targets[i]
		if target.Status == status {
			continue
		}
		// Resolved statuses are terminal; only moves within the resolved
		// set are allowed.
		if models.IsResolvedStatus(target.Status) && !models.IsResolvedStatus(status) {
			return nil, NewInvalidStatusError(fmt.Sprintf("sub-query %s is already resolved", target.QueryID))
		}
		previous[target.QueryID] = target.Status
		applyResolution(target, request, status, now)
	}

	merged := mergeItems(group.Queries, targets)
	group.Queries = merged
	group.LastUpdated = now
	if group.AllItemsResolved() {
		group.Status = status
		group.ResolvedAt = &now
		if request.ResolvedBy != "" {
			resolvedBy := request.ResolvedBy
			group.ResolvedBy = &resolvedBy
		}
		if request.ResolutionReason != "" {
			reason := request.ResolutionReason
			group.ResolutionReason = &reason
		}
		if request.ApproverComment != "" {
			comment := request.ApproverComment
			group.ApproverComment = &comment
		}
		if request.ApprovedBy != "" {
			approvedBy := request.ApprovedBy
			group.ApprovedBy = &approvedBy
			group.ApprovedAt = &now
		}
		if request.ApprovalStatus != "" {
			approvalStatus := request.ApprovalStatus
			group.ApprovalStatus = &approvalStatus
		}
	} else if !models.IsResolvedStatus(status) {
		group.Status = status
	}

	err := s.db.WithTransaction(ctx, func(tx *database.Transaction) error {
		for i := range targets {
			if _, changed := previous[targets[i].QueryID]; !changed {
				continue
			}
			if err := s.itemDAO.UpdateStatusWithTx(ctx, tx, &targets[i]); err != nil {
				return err
			}
		}
		return s.groupDAO.UpdateResolutionWithTx(ctx, tx, group)
	})
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			return nil, NewNotFoundError(err.Error())
		}
		return nil, fmt.Errorf("failed to update query: %w", err)
	}

	s.fallback.Put(group)

	for i := range targets {
		prev, changed := previous[targets[i].QueryID]
		if !changed {
			continue
		}
		prevCopy := prev
		s.recordAudit(ctx, &targets[i], &prevCopy, request.ResolutionReason)
	}

	s.hub.Publish(notify.Event{
		Type:    notify.EventQueryUpdated,
		QueryID: group.GroupID,
		AppNo:   group.AppNo,
		Team:    group.MarkedForTeam,
		Payload: group,
	})

	if models.IsResolvedStatus(group.Status) {
		s.hub.Publish(notify.Event{
			Type:    notify.EventGroupResolved,
			QueryID: group.GroupID,
			AppNo:   group.AppNo,
			Team:    group.MarkedForTeam,
		})
		s.cascadeSanctionRemoval(ctx, group.AppNo)
	}

	return group, nil
}

// locate performs ordered fallback matching against the persisted store.
// It returns (nil, nil, nil) when no candidate matched, and a non-nil error
// only on database failure.
func (s *QueryService) locate(ctx context.Context, candidates []string) (*models.QueryGroup, *models.QueryItem, error) {
	for _, id := range candidates {
		item, err := s.itemDAO.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, dao.ErrNotFound) {
				continue
			}
			return nil, nil, err
		}

		group, err := s.loadGroup(ctx, item.GroupID)
		if err != nil {
			if errors.Is(err, dao.ErrNotFound) {
				continue
			}
			return nil, nil, err
		}
		return group, item, nil
	}

	for _, id := range candidates {
		group, err := s.loadGroup(ctx, id)
		if err != nil {
			if errors.Is(err, dao.ErrNotFound) {
				continue
			}
			return nil, nil, err
		}
		return group, nil, nil
	}

	return nil, nil, nil
}

func (s *QueryService) loadGroup(ctx context.Context, groupID string) (*models.QueryGroup, error) {
	group, err := s.groupDAO.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}

	items, err := s.itemDAO.ListByGroupID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	group.Queries = items

	return group, nil
}

// updateViaFallback applies the status transition against the in-process
// snapshot, tolerating numeric-vs-string identifier mismatches
func (s *QueryService) updateViaFallback(request *models.QueryUpdateRequest, status string, candidates []string) (*models.QueryGroup, error) {
	now := utils.GetCurrentTimeMillis()

	for _, id := range candidates {
		if group, item, ok := s.fallback.FindItem(id); ok {
			if models.IsResolvedStatus(item.Status) && !models.IsResolvedStatus(status) {
				return nil, NewInvalidStatusError(fmt.Sprintf("sub-query %s is already resolved", item.QueryID))
			}
			applyResolution(item, request, status, now)
			group.LastUpdated = now
			if group.AllItemsResolved() {
				group.Status = status
				group.ResolvedAt = &now
			}
			s.fallback.Put(group)
			s.hub.Publish(notify.Event{
				Type:    notify.EventQueryUpdated,
				QueryID: group.GroupID,
				AppNo:   group.AppNo,
				Team:    group.MarkedForTeam,
				Payload: group,
			})
			return group, nil
		}
	}

	for _, id := range candidates {
		if group, ok := s.fallback.Get(id); ok {
			for i := range group.Queries {
				if models.IsResolvedStatus(group.Queries[i].Status) && !models.IsResolvedStatus(status) {
					return nil, NewInvalidStatusError(fmt.Sprintf("sub-query %s is already resolved", group.Queries[i].QueryID))
				}
			}
			for i := range group.Queries {
				applyResolution(&group.Queries[i], request, status, now)
			}
			group.Status = status
			group.LastUpdated = now
			if models.IsResolvedStatus(status) {
				group.ResolvedAt = &now
			}
			s.fallback.Put(group)
			s.hub.Publish(notify.Event{
				Type:    notify.EventQueryUpdated,
				QueryID: group.GroupID,
				AppNo:   group.AppNo,
				Team:    group.MarkedForTeam,
				Payload: group,
			})
			return group, nil
		}
	}

	return nil, NewNotFoundError(fmt.Sprintf("no query matches identifier %s", candidates[0]))
}

// cascadeSanctionRemoval deletes the sanctioned application once every
// query group for the application is resolved. Best-effort; failures are
// logged and never fail the originating update.
func (s *QueryService) cascadeSanctionRemoval(ctx context.Context, appNo string) {
	count, err := s.groupDAO.UnresolvedCountByAppNo(ctx, appNo, "")
	if err != nil {
		s.logger.WithError(err).WithField("appNo", appNo).Warn("Skipping sanction cascade, unresolved count failed")
		return
	}
	if count > 0 {
		return
	}

	rows, err := s.sanctionDAO.DeleteByAppID(ctx, appNo)
	if err != nil {
		s.logger.WithError(err).WithField("appNo", appNo).Warn("Failed to delete sanctioned application")
		return
	}
	if rows == 0 {
		return
	}

	// Cached snapshots for this application carry enrichment from the
	// deleted sanction row and must not be served again.
	for _, cached := range s.fallback.ByAppNo(appNo) {
		s.fallback.Invalidate(cached.GroupID)
	}

	s.logger.WithField("appNo", appNo).Info("Removed sanctioned application, all queries resolved")
	s.hub.Publish(notify.Event{
		Type:  notify.EventSanctionRemoved,
		AppNo: appNo,
	})
}

// ListQueries returns query groups matching the filters, with sub-queries
// attached and sanctioned-application enrichment applied
func (s *QueryService) ListQueries(ctx context.Context, filters models.QueryListFilters) ([]models.QueryGroup, error) {
	filters.Team = models.NormalizeTeam(filters.Team)
	filters.Limit = utils.ValidateLimit(filters.Limit)

	groups, err := s.groupDAO.List(ctx, filters)
	if err != nil {
		s.logger.WithError(err).Warn("Database list failed, serving fallback snapshot")
		return s.listFromFallback(filters), nil
	}

	if err := s.attachItems(ctx, groups); err != nil {
		return nil, err
	}

	groups = filterResolved(groups, filters.Resolved)
	s.enrichFromSanctions(ctx, groups)
	s.fallback.PutAll(groups)

	return groups, nil
}

// GetQueryStats counts pending and resolved sub-queries across the
// groups matching the filters
func (s *QueryService) GetQueryStats(ctx context.Context, filters models.QueryListFilters) (*models.QueryStats, error) {
	groups, err := s.ListQueries(ctx, filters)
	if err != nil {
		return nil, err
	}

	stats := &models.QueryStats{}
	for i := range groups {
		for j := range groups[i].Queries {
			stats.Total++
			if models.IsResolvedStatus(groups[i].Queries[j].Status) {
				stats.Resolved++
			} else {
				stats.Pending++
			}
		}
	}

	return stats, nil
}

// GetQueryByID retrieves one query group with its sub-queries
func (s *QueryService) GetQueryByID(ctx context.Context, groupID string) (*models.QueryGroup, error) {
	group, err := s.loadGroup(ctx, groupID)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			if cached, ok := s.fallback.Get(groupID); ok {
				return cached, nil
			}
			return nil, NewNotFoundError(fmt.Sprintf("query group %s not found", groupID))
		}
		if cached, ok := s.fallback.Get(groupID); ok {
			s.logger.WithError(err).Warn("Database lookup failed, serving fallback snapshot")
			return cached, nil
		}
		return nil, err
	}

	s.enrichFromSanctions(ctx, []models.QueryGroup{*group})
	s.fallback.Put(group)

	return group, nil
}

// GetAuditTrail returns the status transition history of a sub-query
func (s *QueryService) GetAuditTrail(ctx context.Context, queryID string) ([]models.QueryStatusAudit, error) {
	records, err := s.auditDAO.ListByQueryID(ctx, queryID)
	if err != nil {
		return nil, fmt.Errorf("failed to load audit trail: %w", err)
	}
	return records, nil
}

func (s *QueryService) attachItems(ctx context.Context, groups []models.QueryGroup) error {
	if len(groups) == 0 {
		return nil
	}

	groupIDs := make([]string, 0, len(groups))
	for i := range groups {
		groupIDs = append(groupIDs, groups[i].GroupID)
	}

	items, err := s.itemDAO.ListByGroupIDs(ctx, groupIDs)
	if err != nil {
		return err
	}

	byGroup := make(map[string][]models.QueryItem, len(groups))
	for _, item := range items {
		byGroup[item.GroupID] = append(byGroup[item.GroupID], item)
	}

	for i := range groups {
		groups[i].Queries = byGroup[groups[i].GroupID]
	}

	return nil
}

// enrichFromSanctions overrides possibly-stale group fields with live
// sanctioned-application data. Best-effort; lookup failures are logged.
func (s *QueryService) enrichFromSanctions(ctx context.Context, groups []models.QueryGroup) {
	if len(groups) == 0 {
		return
	}

	appNos := make([]string, 0, len(groups))
	seen := make(map[string]bool, len(groups))
	for i := range groups {
		if !seen[groups[i].AppNo] {
			seen[groups[i].AppNo] = true
			appNos = append(appNos, groups[i].AppNo)
		}
	}

	apps, err := s.sanctionDAO.GetByAppIDs(ctx, appNos)
	if err != nil {
		s.logger.WithError(err).Warn("Sanctioned application enrichment failed")
		return
	}

	byAppNo := make(map[string]models.SanctionedApplication, len(apps))
	for _, app := range apps {
		byAppNo[app.AppID] = app
	}

	for i := range groups {
		app, ok := byAppNo[groups[i].AppNo]
		if !ok {
			continue
		}
		if app.CustomerName != "" {
			groups[i].CustomerName = app.CustomerName
		}
		if app.Branch != "" {
			groups[i].Branch = app.Branch
		}
		amount := app.SanctionedAmount
		loanType := app.LoanType
		groups[i].SanctionedAmount = &amount
		if loanType != "" {
			groups[i].LoanType = &loanType
		}
	}
}

func (s *QueryService) listFromFallback(filters models.QueryListFilters) []models.QueryGroup {
	groups := s.fallback.Snapshot()

	result := make([]models.QueryGroup, 0, len(groups))
	for _, group := range groups {
		if filters.AppNo != "" && !strings.Contains(group.AppNo, filters.AppNo) {
			continue
		}
		if filters.Status != "" && group.Status != filters.Status {
			continue
		}
		switch filters.Team {
		case models.TeamSales:
			if !group.SendToSales {
				continue
			}
		case models.TeamCredit:
			if !group.SendToCredit {
				continue
			}
		}
		if len(filters.Branches) > 0 && !matchesBranch(&group, filters.Branches) {
			continue
		}
		result = append(result, group)
	}

	result = filterResolved(result, filters.Resolved)
	if filters.Limit > 0 && len(result) > filters.Limit {
		result = result[:filters.Limit]
	}

	return result
}

// matchesBranch mirrors the persisted listing's case-insensitive match
// against either the branch name or the branch code
func matchesBranch(group *models.QueryGroup, branches []string) bool {
	branch := strings.ToLower(group.Branch)
	code := strings.ToLower(group.BranchCode)
	for _, b := range branches {
		b = strings.ToLower(strings.TrimSpace(b))
		if b != "" && (b == branch || b == code) {
			return true
		}
	}
	return false
}

func (s *QueryService) recordAudit(ctx context.Context, item *models.QueryItem, previousStatus *string, reason string) {
	audit := &models.QueryStatusAudit{
		AuditID:        utils.GenerateAuditID(),
		QueryID:        item.QueryID,
		GroupID:        item.GroupID,
		PreviousStatus: previousStatus,
		CurrentStatus:  item.Status,
		ActionTime:     utils.GetCurrentTimeMillis(),
	}
	if item.ResolvedBy != nil {
		audit.ActionBy = item.ResolvedBy
	}
	if reason != "" {
		audit.Reason = &reason
	}

	if err := s.auditDAO.Create(ctx, audit); err != nil {
		s.logger.WithError(err).WithField("queryId", item.QueryID).Warn("Failed to record status audit")
	}
}

// idCandidates builds the ordered list of identifiers to try: the caller's
// own "original" id first, then the raw id, then its trimmed form
func idCandidates(request *models.QueryUpdateRequest) []string {
	raw := []string{
		request.OriginalQueryID.String(),
		string(request.QueryID),
		request.QueryID.String(),
	}

	seen := make(map[string]bool, len(raw))
	candidates := make([]string, 0, len(raw))
	for _, id := range raw {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		candidates = append(candidates, id)
	}

	return candidates
}

// applyResolution writes the transition and resolution metadata onto a
// sub-query in place
func applyResolution(item *models.QueryItem, request *models.QueryUpdateRequest, status string, now int64) {
	item.Status = status

	if models.IsResolvedStatus(status) {
		item.ResolvedAt = &now
		if request.ResolvedBy != "" {
			resolvedBy := request.ResolvedBy
			item.ResolvedBy = &resolvedBy
		}
		if request.ResolutionReason != "" {
			reason := request.ResolutionReason
			item.ResolutionReason = &reason
		}
	}
	if request.ApproverComment != "" {
		comment := request.ApproverComment
		item.ApproverComment = &comment
	}
	if request.ApprovedBy != "" {
		approvedBy := request.ApprovedBy
		item.ApprovedBy = &approvedBy
		item.ApprovedAt = &now
	}
	if request.ApprovalStatus != "" {
		approvalStatus := request.ApprovalStatus
		item.ApprovalStatus = &approvalStatus
	}
}

// mergeItems replaces entries of base with updated versions sharing the
// same query ID
func mergeItems(base, updated []models.QueryItem) []models.QueryItem {
	byID := make(map[string]models.QueryItem, len(updated))
	for _, item := range updated {
		byID[item.QueryID] = item
	}

	merged := make([]models.QueryItem, len(base))
	for i, item := range base {
		if repl, ok := byID[item.QueryID]; ok {
			merged[i] = repl
		} else {
			merged[i] = item
		}
	}

	return merged
}

func filterResolved(groups []models.QueryGroup, resolved *bool) []models.QueryGroup {
	if resolved == nil {
		return groups
	}

	result := make([]models.QueryGroup, 0, len(groups))
	for _, group := range groups {
		if models.IsResolvedStatus(group.Status) == *resolved {
			result = append(result, group)
		}
	}

	return result
}

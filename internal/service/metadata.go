package service

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/lendops/query-management-api/internal/dao"
)

// Placeholders used when no upstream record describes the application
const (
	defaultCustomerName = "Valued Customer"
	defaultBranch       = "Main Branch"
)

type applicationMetadata struct {
	CustomerName string
	Branch       string
	BranchCode   string
}

// resolveApplicationMetadata fills in customer and branch details for an
// application number. Lookup order: sanctioned application, then the
// upstream loan application record, then the app-number prefix directory,
// then placeholders. Upstream data quality is uneven, so each step only
// fills the fields the previous steps left empty.
func (s *QueryService) resolveApplicationMetadata(ctx context.Context, appNo string) applicationMetadata {
	meta := applicationMetadata{}

	if app, err := s.sanctionDAO.GetByAppID(ctx, appNo); err == nil {
		meta.CustomerName = app.CustomerName
		meta.Branch = app.Branch
	} else if !errors.Is(err, dao.ErrNotFound) {
		s.logger.WithError(err).WithField("appNo", appNo).Warn("Sanctioned application lookup failed")
	}

	if meta.CustomerName == "" || meta.Branch == "" {
		if app, err := s.applicationDAO.GetByAppNo(ctx, appNo); err == nil {
			if meta.CustomerName == "" {
				meta.CustomerName = app.CustomerName
			}
			if meta.Branch == "" {
				meta.Branch = app.Branch
			}
			meta.BranchCode = app.BranchCode
		} else if !errors.Is(err, dao.ErrNotFound) {
			s.logger.WithError(err).WithField("appNo", appNo).Warn("Loan application lookup failed")
		}
	}

	if meta.Branch == "" {
		if prefix, err := s.applicationDAO.GetBranchByPrefix(ctx, appNo); err == nil {
			meta.Branch = prefix.Branch
			if meta.BranchCode == "" {
				meta.BranchCode = prefix.BranchCode
			}
		} else if !errors.Is(err, dao.ErrNotFound) {
			s.logger.WithError(err).WithField("appNo", appNo).Warn("Branch prefix lookup failed")
		}
	}

	if meta.CustomerName == "" {
		meta.CustomerName = defaultCustomerName
	}
	if meta.Branch == "" {
		meta.Branch = defaultBranch
		s.logger.WithFields(logrus.Fields{
			"appNo": appNo,
		}).Debug("No branch record found, using placeholder")
	}

	return meta
}

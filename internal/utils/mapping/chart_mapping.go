package mapping

import (
	"github.com/fincore-erp/gl_budget_engine/internal/core/domain"
	"github.com/fincore-erp/gl_budget_engine/internal/models"
)

// ToModelGroup converts a domain AccountGroup to its row model
func ToModelGroup(d domain.AccountGroup) models.AccountGroup {
	return models.AccountGroup{
		GroupID:     d.GroupID,
		Code:        d.Code,
		Name:        d.Name,
		GroupType:   string(d.Type),
		Description: d.Description,
		IsActive:    d.IsActive,
		AuditFields: ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainGroup converts an account_groups row to a domain AccountGroup
func ToDomainGroup(m models.AccountGroup) domain.AccountGroup {
	return domain.AccountGroup{
		GroupID:     m.GroupID,
		Code:        m.Code,
		Name:        m.Name,
		Type:        domain.GroupType(m.GroupType),
		Description: m.Description,
		IsActive:    m.IsActive,
		AuditFields: ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainGroupSlice converts a slice of rows to domain AccountGroups
func ToDomainGroupSlice(ms []models.AccountGroup) []domain.AccountGroup {
	ds := make([]domain.AccountGroup, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainGroup(m)
	}
	return ds
}

// ToModelSubGroup converts a domain AccountSubGroup to its row model
func ToModelSubGroup(d domain.AccountSubGroup) models.AccountSubGroup {
	return models.AccountSubGroup{
		SubGroupID:       d.SubGroupID,
		Code:             d.Code,
		Name:             d.Name,
		GroupID:          d.GroupID,
		ParentSubGroupID: d.ParentSubGroupID,
		Level:            d.Level,
		IsActive:         d.IsActive,
		AuditFields:      ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainSubGroup converts an account_sub_groups row to a domain AccountSubGroup
func ToDomainSubGroup(m models.AccountSubGroup) domain.AccountSubGroup {
	return domain.AccountSubGroup{
		SubGroupID:       m.SubGroupID,
		Code:             m.Code,
		Name:             m.Name,
		GroupID:          m.GroupID,
		ParentSubGroupID: m.ParentSubGroupID,
		Level:            m.Level,
		IsActive:         m.IsActive,
		AuditFields:      ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainSubGroupSlice converts a slice of rows to domain AccountSubGroups
func ToDomainSubGroupSlice(ms []models.AccountSubGroup) []domain.AccountSubGroup {
	ds := make([]domain.AccountSubGroup, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainSubGroup(m)
	}
	return ds
}

// ToModelLedger converts a domain AccountLedger to its row model
func ToModelLedger(d domain.AccountLedger) models.AccountLedger {
	return models.AccountLedger{
		LedgerID:       d.LedgerID,
		Code:           d.Code,
		Name:           d.Name,
		SubGroupID:     d.SubGroupID,
		BalanceType:    string(d.BalanceType),
		OpeningBalance: d.OpeningBalance,
		CurrentBalance: d.CurrentBalance,
		CurrencyCode:   d.CurrencyCode,
		Description:    d.Description,
		IsActive:       d.IsActive,
		AuditFields:    ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainLedger converts an account_ledgers row to a domain AccountLedger
func ToDomainLedger(m models.AccountLedger) domain.AccountLedger {
	return domain.AccountLedger{
		LedgerID:       m.LedgerID,
		Code:           m.Code,
		Name:           m.Name,
		SubGroupID:     m.SubGroupID,
		BalanceType:    domain.BalanceType(m.BalanceType),
		OpeningBalance: m.OpeningBalance,
		CurrentBalance: m.CurrentBalance,
		CurrencyCode:   m.CurrencyCode,
		Description:    m.Description,
		IsActive:       m.IsActive,
		AuditFields:    ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainLedgerSlice converts a slice of rows to domain AccountLedgers
func ToDomainLedgerSlice(ms []models.AccountLedger) []domain.AccountLedger {
	ds := make([]domain.AccountLedger, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainLedger(m)
	}
	return ds
}

package mapping

import (
	"github.com/fincore-erp/gl_budget_engine/internal/core/domain"
	"github.com/fincore-erp/gl_budget_engine/internal/models"
)

// ToModelEntry converts a domain JournalEntry to its row model. Lines are
// stored separately and are not carried on the entry row.
func ToModelEntry(d domain.JournalEntry) models.JournalEntry {
	return models.JournalEntry{
		EntryID:          d.EntryID,
		EntryNumber:      d.EntryNumber,
		EntryDate:        d.EntryDate,
		Reference:        d.Reference,
		Description:      d.Description,
		Status:           string(d.Status),
		OriginalEntryID:  d.OriginalEntryID,
		ReversingEntryID: d.ReversingEntryID,
		TotalDebit:       d.TotalDebit,
		TotalCredit:      d.TotalCredit,
		AuditFields:      ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainEntry converts a journal_entries row to a domain JournalEntry
func ToDomainEntry(m models.JournalEntry) domain.JournalEntry {
	return domain.JournalEntry{
		EntryID:          m.EntryID,
		EntryNumber:      m.EntryNumber,
		EntryDate:        m.EntryDate,
		Reference:        m.Reference,
		Description:      m.Description,
		Status:           domain.JournalStatus(m.Status),
		IsPosted:         domain.JournalStatus(m.Status) == domain.Posted,
		OriginalEntryID:  m.OriginalEntryID,
		ReversingEntryID: m.ReversingEntryID,
		TotalDebit:       m.TotalDebit,
		TotalCredit:      m.TotalCredit,
		AuditFields:      ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelLine converts a domain JournalLine to its row model
func ToModelLine(d domain.JournalLine) models.JournalLine {
	return models.JournalLine{
		LineID:         d.LineID,
		EntryID:        d.EntryID,
		LedgerID:       d.LedgerID,
		Debit:          d.Debit,
		Credit:         d.Credit,
		Description:    d.Description,
		RunningBalance: d.RunningBalance,
	}
}

// ToDomainLine converts a journal_lines row to a domain JournalLine
func ToDomainLine(m models.JournalLine) domain.JournalLine {
	return domain.JournalLine{
		LineID:         m.LineID,
		EntryID:        m.EntryID,
		LedgerID:       m.LedgerID,
		Debit:          m.Debit,
		Credit:         m.Credit,
		Description:    m.Description,
		RunningBalance: m.RunningBalance,
	}
}

// ToDomainLineSlice converts a slice of rows to domain JournalLines
func ToDomainLineSlice(ms []models.JournalLine) []domain.JournalLine {
	ds := make([]domain.JournalLine, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainLine(m)
	}
	return ds
}

package dto

import (
	"time"

	"github.com/fincore-erp/gl_budget_engine/internal/core/domain"
	"github.com/shopspring/decimal"
)

// JournalLineInput is one debit or credit line of a posting request. Exactly
// one of Debit/Credit must be positive; the service rejects anything else.
type JournalLineInput struct {
	LedgerID    string          `json:"ledgerID" binding:"required"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Description string          `json:"description"`
}

// PostEntryRequest defines the data needed to post a journal entry.
type PostEntryRequest struct {
	EntryDate   time.Time          `json:"entryDate" binding:"required"`
	Reference   string             `json:"reference"`
	Description string             `json:"description" binding:"required"`
	Lines       []JournalLineInput `json:"lines" binding:"required,min=2,dive"`
}

// JournalLineResponse defines the data returned for a journal line.
type JournalLineResponse struct {
	LineID         string          `json:"lineID"`
	LedgerID       string          `json:"ledgerID"`
	Debit          decimal.Decimal `json:"debit"`
	Credit         decimal.Decimal `json:"credit"`
	Description    string          `json:"description"`
	RunningBalance decimal.Decimal `json:"runningBalance"`
}

// EntryResponse defines the data returned for a journal entry.
type EntryResponse struct {
	EntryID          string                `json:"entryID"`
	EntryNumber      int64                 `json:"entryNumber"`
	EntryDate        time.Time             `json:"entryDate"`
	Reference        string                `json:"reference"`
	Description      string                `json:"description"`
	Status           domain.JournalStatus  `json:"status"`
	OriginalEntryID  *string               `json:"originalEntryID,omitempty"`
	ReversingEntryID *string               `json:"reversingEntryID,omitempty"`
	TotalDebit       decimal.Decimal       `json:"totalDebit"`
	TotalCredit      decimal.Decimal       `json:"totalCredit"`
	Lines            []JournalLineResponse `json:"lines,omitempty"`
	CreatedAt        time.Time             `json:"createdAt"`
	CreatedBy        string                `json:"createdBy"`
}

// ToJournalLineResponse converts a domain.JournalLine to its DTO
func ToJournalLineResponse(l *domain.JournalLine) JournalLineResponse {
	return JournalLineResponse{
		LineID:         l.LineID,
		LedgerID:       l.LedgerID,
		Debit:          l.Debit,
		Credit:         l.Credit,
		Description:    l.Description,
		RunningBalance: l.RunningBalance,
	}
}

// ToEntryResponse converts a domain.JournalEntry to EntryResponse DTO
func ToEntryResponse(e *domain.JournalEntry) EntryResponse {
	resp := EntryResponse{
		EntryID:          e.EntryID,
		EntryNumber:      e.EntryNumber,
		EntryDate:        e.EntryDate,
		Reference:        e.Reference,
		Description:      e.Description,
		Status:           e.Status,
		OriginalEntryID:  e.OriginalEntryID,
		ReversingEntryID: e.ReversingEntryID,
		TotalDebit:       e.TotalDebit,
		TotalCredit:      e.TotalCredit,
		CreatedAt:        e.CreatedAt,
		CreatedBy:        e.CreatedBy,
	}
	if len(e.Lines) > 0 {
		resp.Lines = make([]JournalLineResponse, len(e.Lines))
		for i := range e.Lines {
			resp.Lines[i] = ToJournalLineResponse(&e.Lines[i])
		}
	}
	return resp
}

// ListEntriesParams defines query parameters for listing journal entries.
type ListEntriesParams struct {
	Limit            int     `form:"limit,default=20"`
	NextToken        *string `form:"nextToken"`
	IncludeReversals bool    `form:"includeReversals,default=true"`
}

// ListEntriesResponse wraps a page of journal entries with the token for the
// next page.
type ListEntriesResponse struct {
	Entries   []EntryResponse `json:"entries"`
	NextToken *string         `json:"nextToken,omitempty"`
}

// ListLinesParams defines query parameters for listing a ledger's lines.
type ListLinesParams struct {
	Limit     int     `form:"limit,default=20"`
	NextToken *string `form:"nextToken"`
}

// ListLinesResponse wraps a page of journal lines.
type ListLinesResponse struct {
	Lines     []JournalLineResponse `json:"lines"`
	NextToken *string               `json:"nextToken,omitempty"`
}

// BalanceResponse defines the data returned for a ledger balance query.
type BalanceResponse struct {
	LedgerID string          `json:"ledgerID"`
	AsOf     time.Time       `json:"asOf"`
	Balance  decimal.Decimal `json:"balance"`
}

// ToBalanceResponse converts a domain.LedgerBalance to its DTO
func ToBalanceResponse(b *domain.LedgerBalance) BalanceResponse {
	return BalanceResponse{
		LedgerID: b.LedgerID,
		AsOf:     b.AsOf,
		Balance:  b.Balance,
	}
}

// RecomputeResponse reports the outcome of a balance repair run for one ledger.
type RecomputeResponse struct {
	LedgerID string          `json:"ledgerID"`
	Stored   decimal.Decimal `json:"stored"`
	Replayed decimal.Decimal `json:"replayed"`
	Drifted  bool            `json:"drifted"`
	Repaired bool            `json:"repaired"`
}

// TrialBalanceRowResponse represents a row in the trial balance report response
type TrialBalanceRowResponse struct {
	LedgerID  string          `json:"ledgerID"`
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	GroupType string          `json:"groupType"`
	GroupName string          `json:"groupName"`
	Debit     decimal.Decimal `json:"debit"`
	Credit    decimal.Decimal `json:"credit"`
}

// TrialBalanceResponse represents the trial balance report response
type TrialBalanceResponse struct {
	AsOf   string                    `json:"asOf"`
	Rows   []TrialBalanceRowResponse `json:"rows"`
	Totals struct {
		Debit  decimal.Decimal `json:"debit"`
		Credit decimal.Decimal `json:"credit"`
	} `json:"totals"`
	Balanced bool `json:"balanced"`
}

// ToTrialBalanceResponse converts a domain trial balance report to its DTO
func ToTrialBalanceResponse(report *domain.TrialBalanceReport) TrialBalanceResponse {
	response := TrialBalanceResponse{
		AsOf:     report.AsOf.Format("2006-01-02"),
		Rows:     make([]TrialBalanceRowResponse, len(report.Rows)),
		Balanced: report.Balanced,
	}
	for i, row := range report.Rows {
		response.Rows[i] = TrialBalanceRowResponse{
			LedgerID:  row.LedgerID,
			Code:      row.Code,
			Name:      row.Name,
			GroupType: string(row.GroupType),
			GroupName: row.GroupName,
			Debit:     row.Debit,
			Credit:    row.Credit,
		}
	}
	response.Totals.Debit = report.TotalDebit
	response.Totals.Credit = report.TotalCredit
	return response
}

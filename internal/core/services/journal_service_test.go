package services_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/fincore-erp/gl_budget_engine/internal/apperrors"
	"github.com/fincore-erp/gl_budget_engine/internal/core/domain"
	portssvc "github.com/fincore-erp/gl_budget_engine/internal/core/ports/services"
	"github.com/fincore-erp/gl_budget_engine/internal/core/services"
	"github.com/fincore-erp/gl_budget_engine/internal/dto"
)

// --- Test Suite Setup ---
type JournalServiceTestSuite struct {
	suite.Suite
	mockJournalRepo *MockJournalRepository
	mockChartRepo   *MockChartRepository
	service         portssvc.JournalSvcFacade
	cashLedger      domain.AccountLedger
	payableLedger   domain.AccountLedger
	expenseLedger   domain.AccountLedger
	userID          string
}

func (suite *JournalServiceTestSuite) SetupTest() {
	suite.mockJournalRepo = new(MockJournalRepository)
	suite.mockChartRepo = new(MockChartRepository)
	suite.service = services.NewJournalService(suite.mockJournalRepo, suite.mockChartRepo, nil)

	suite.userID = uuid.NewString()

	suite.cashLedger = domain.AccountLedger{
		LedgerID:     uuid.NewString(),
		Code:         "1010",
		Name:         "Cash",
		BalanceType:  domain.DebitBalance,
		CurrencyCode: "USD",
		IsActive:     true,
	}
	suite.payableLedger = domain.AccountLedger{
		LedgerID:     uuid.NewString(),
		Code:         "2010",
		Name:         "Accounts Payable",
		BalanceType:  domain.CreditBalance,
		CurrencyCode: "USD",
		IsActive:     true,
	}
	suite.expenseLedger = domain.AccountLedger{
		LedgerID:     uuid.NewString(),
		Code:         "5010",
		Name:         "Office Supplies",
		BalanceType:  domain.DebitBalance,
		CurrencyCode: "USD",
		IsActive:     true,
	}
}

func (suite *JournalServiceTestSuite) ledgerMap(ledgers ...domain.AccountLedger) map[string]domain.AccountLedger {
	m := make(map[string]domain.AccountLedger, len(ledgers))
	for _, l := range ledgers {
		m[l.LedgerID] = l
	}
	return m
}

// --- Test Cases ---

func (suite *JournalServiceTestSuite) TestPostEntry_Success() {
	ctx := context.Background()
	req := dto.PostEntryRequest{
		EntryDate:   time.Now().UTC().Add(-time.Hour),
		Description: "Bought office supplies on credit",
		Lines: []dto.JournalLineInput{
			{LedgerID: suite.expenseLedger.LedgerID, Debit: decimal.NewFromInt(250)},
			{LedgerID: suite.payableLedger.LedgerID, Credit: decimal.NewFromInt(250)},
		},
	}

	suite.mockChartRepo.On("FindLedgersByIDs", ctx, []string{suite.expenseLedger.LedgerID, suite.payableLedger.LedgerID}).
		Return(suite.ledgerMap(suite.expenseLedger, suite.payableLedger), nil).Once()

	var savedChanges map[string]decimal.Decimal
	suite.mockJournalRepo.On("SaveEntry", ctx, mock.AnythingOfType("domain.JournalEntry"), mock.AnythingOfType("map[string]decimal.Decimal")).
		Run(func(args mock.Arguments) {
			savedChanges = args.Get(2).(map[string]decimal.Decimal)
		}).
		Return(int64(42), nil).Once()

	entry, err := suite.service.PostEntry(ctx, req, suite.userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(entry)
	suite.NotEmpty(entry.EntryID)
	suite.Equal(int64(42), entry.EntryNumber)
	suite.Equal(domain.Posted, entry.Status)
	suite.True(entry.IsPosted)
	suite.Equal(suite.userID, entry.CreatedBy)
	suite.True(entry.TotalDebit.Equal(decimal.NewFromInt(250)))
	suite.True(entry.TotalCredit.Equal(decimal.NewFromInt(250)))
	suite.Len(entry.Lines, 2)

	// The debit grows the debit-natured expense, the credit grows the
	// credit-natured payable.
	suite.Require().NotNil(savedChanges)
	suite.True(savedChanges[suite.expenseLedger.LedgerID].Equal(decimal.NewFromInt(250)))
	suite.True(savedChanges[suite.payableLedger.LedgerID].Equal(decimal.NewFromInt(250)))

	suite.mockChartRepo.AssertExpectations(suite.T())
	suite.mockJournalRepo.AssertExpectations(suite.T())
}

func (suite *JournalServiceTestSuite) TestPostEntry_Unbalanced() {
	ctx := context.Background()
	req := dto.PostEntryRequest{
		EntryDate:   time.Now().UTC().Add(-time.Hour),
		Description: "Unbalanced entry",
		Lines: []dto.JournalLineInput{
			{LedgerID: suite.expenseLedger.LedgerID, Debit: decimal.NewFromInt(300)},
			{LedgerID: suite.payableLedger.LedgerID, Credit: decimal.NewFromInt(250)},
		},
	}

	_, err := suite.service.PostEntry(ctx, req, suite.userID)

	suite.Require().Error(err)
	var unbalanced *apperrors.UnbalancedEntryError
	suite.Require().ErrorAs(err, &unbalanced)
	suite.True(unbalanced.Delta.Equal(decimal.NewFromInt(50)))
	suite.mockJournalRepo.AssertNotCalled(suite.T(), "SaveEntry", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *JournalServiceTestSuite) TestPostEntry_SingleLedger() {
	ctx := context.Background()
	req := dto.PostEntryRequest{
		EntryDate:   time.Now().UTC().Add(-time.Hour),
		Description: "Both lines on one ledger",
		Lines: []dto.JournalLineInput{
			{LedgerID: suite.cashLedger.LedgerID, Debit: decimal.NewFromInt(100)},
			{LedgerID: suite.cashLedger.LedgerID, Credit: decimal.NewFromInt(100)},
		},
	}

	_, err := suite.service.PostEntry(ctx, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrEntryMinLedgers)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *JournalServiceTestSuite) TestPostEntry_InactiveLedger() {
	ctx := context.Background()
	inactive := suite.expenseLedger
	inactive.IsActive = false

	req := dto.PostEntryRequest{
		EntryDate:   time.Now().UTC().Add(-time.Hour),
		Description: "Posting to a deactivated account",
		Lines: []dto.JournalLineInput{
			{LedgerID: inactive.LedgerID, Debit: decimal.NewFromInt(80)},
			{LedgerID: suite.cashLedger.LedgerID, Credit: decimal.NewFromInt(80)},
		},
	}

	suite.mockChartRepo.On("FindLedgersByIDs", ctx, mock.AnythingOfType("[]string")).
		Return(suite.ledgerMap(inactive, suite.cashLedger), nil).Once()

	_, err := suite.service.PostEntry(ctx, req, suite.userID)

	suite.Require().Error(err)
	var inactiveErr *apperrors.InactiveAccountError
	suite.Require().ErrorAs(err, &inactiveErr)
	suite.Equal(inactive.LedgerID, inactiveErr.LedgerID)
	suite.mockJournalRepo.AssertNotCalled(suite.T(), "SaveEntry", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *JournalServiceTestSuite) TestPostEntry_CurrencyMismatch() {
	ctx := context.Background()
	euroLedger := suite.payableLedger
	euroLedger.CurrencyCode = "EUR"

	req := dto.PostEntryRequest{
		EntryDate:   time.Now().UTC().Add(-time.Hour),
		Description: "Mixed currencies",
		Lines: []dto.JournalLineInput{
			{LedgerID: suite.expenseLedger.LedgerID, Debit: decimal.NewFromInt(60)},
			{LedgerID: euroLedger.LedgerID, Credit: decimal.NewFromInt(60)},
		},
	}

	suite.mockChartRepo.On("FindLedgersByIDs", ctx, mock.AnythingOfType("[]string")).
		Return(suite.ledgerMap(suite.expenseLedger, euroLedger), nil).Once()

	_, err := suite.service.PostEntry(ctx, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrCurrencyMismatch)
}

func (suite *JournalServiceTestSuite) TestPostEntry_FutureDate() {
	ctx := context.Background()
	req := dto.PostEntryRequest{
		EntryDate:   time.Now().UTC().Add(48 * time.Hour),
		Description: "Posted from the future",
		Lines: []dto.JournalLineInput{
			{LedgerID: suite.expenseLedger.LedgerID, Debit: decimal.NewFromInt(10)},
			{LedgerID: suite.cashLedger.LedgerID, Credit: decimal.NewFromInt(10)},
		},
	}

	_, err := suite.service.PostEntry(ctx, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrEntryDateInFuture)
}

func (suite *JournalServiceTestSuite) TestPostEntry_MissingDescription() {
	ctx := context.Background()
	req := dto.PostEntryRequest{
		EntryDate:   time.Now().UTC(),
		Description: "   ",
		Lines: []dto.JournalLineInput{
			{LedgerID: suite.expenseLedger.LedgerID, Debit: decimal.NewFromInt(10)},
			{LedgerID: suite.cashLedger.LedgerID, Credit: decimal.NewFromInt(10)},
		},
	}

	_, err := suite.service.PostEntry(ctx, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrDescriptionMissing)
}

func (suite *JournalServiceTestSuite) TestReverseEntry_Success() {
	ctx := context.Background()
	originalID := uuid.NewString()
	original := &domain.JournalEntry{
		EntryID:     originalID,
		EntryNumber: 7,
		EntryDate:   time.Now().UTC().Add(-24 * time.Hour),
		Description: "Supplier invoice",
		Status:      domain.Posted,
		IsPosted:    true,
		TotalDebit:  decimal.NewFromInt(500),
		TotalCredit: decimal.NewFromInt(500),
		Lines: []domain.JournalLine{
			{LineID: uuid.NewString(), EntryID: originalID, LedgerID: suite.expenseLedger.LedgerID, Debit: decimal.NewFromInt(500), Credit: decimal.Zero},
			{LineID: uuid.NewString(), EntryID: originalID, LedgerID: suite.payableLedger.LedgerID, Debit: decimal.Zero, Credit: decimal.NewFromInt(500)},
		},
	}

	suite.mockJournalRepo.On("FindEntryByID", ctx, originalID).Return(original, nil).Once()
	suite.mockChartRepo.On("FindLedgersByIDs", ctx, mock.AnythingOfType("[]string")).
		Return(suite.ledgerMap(suite.expenseLedger, suite.payableLedger), nil).Once()

	var savedEntry domain.JournalEntry
	var savedChanges map[string]decimal.Decimal
	suite.mockJournalRepo.On("SaveEntry", ctx, mock.AnythingOfType("domain.JournalEntry"), mock.AnythingOfType("map[string]decimal.Decimal")).
		Run(func(args mock.Arguments) {
			savedEntry = args.Get(1).(domain.JournalEntry)
			savedChanges = args.Get(2).(map[string]decimal.Decimal)
		}).
		Return(int64(8), nil).Once()
	suite.mockJournalRepo.On("UpdateEntryStatusAndLinks", ctx, originalID, domain.Reversed, mock.AnythingOfType("*string"), (*string)(nil), suite.userID, mock.AnythingOfType("time.Time")).
		Return(nil).Once()

	reversal, err := suite.service.ReverseEntry(ctx, originalID, suite.userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(reversal)
	suite.NotEqual(originalID, reversal.EntryID)
	suite.Equal(int64(8), reversal.EntryNumber)
	suite.Require().NotNil(reversal.OriginalEntryID)
	suite.Equal(originalID, *reversal.OriginalEntryID)
	suite.True(strings.HasPrefix(reversal.Description, "Reversal of: "))

	// Sides swap, amounts do not.
	suite.Len(savedEntry.Lines, 2)
	suite.True(savedEntry.Lines[0].Debit.IsZero())
	suite.True(savedEntry.Lines[0].Credit.Equal(decimal.NewFromInt(500)))
	suite.True(savedEntry.Lines[1].Debit.Equal(decimal.NewFromInt(500)))
	suite.True(savedEntry.Lines[1].Credit.IsZero())

	// Net effect undoes the original posting.
	suite.True(savedChanges[suite.expenseLedger.LedgerID].Equal(decimal.NewFromInt(-500)))
	suite.True(savedChanges[suite.payableLedger.LedgerID].Equal(decimal.NewFromInt(-500)))

	suite.mockJournalRepo.AssertExpectations(suite.T())
	suite.mockChartRepo.AssertExpectations(suite.T())
}

func (suite *JournalServiceTestSuite) TestReverseEntry_AlreadyReversed() {
	ctx := context.Background()
	originalID := uuid.NewString()
	original := &domain.JournalEntry{
		EntryID:     originalID,
		Description: "Already undone",
		Status:      domain.Reversed,
	}

	suite.mockJournalRepo.On("FindEntryByID", ctx, originalID).Return(original, nil).Once()

	_, err := suite.service.ReverseEntry(ctx, originalID, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrEntryNotPosted)
	suite.ErrorIs(err, apperrors.ErrWorkflow)
	suite.mockJournalRepo.AssertNotCalled(suite.T(), "SaveEntry", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *JournalServiceTestSuite) TestReverseEntry_OfReversal_LinksAndCloses() {
	ctx := context.Background()
	firstID := uuid.NewString()
	reversalID := uuid.NewString()
	reversalEntry := &domain.JournalEntry{
		EntryID:         reversalID,
		Description:     "Reversal of: Supplier invoice",
		Status:          domain.Posted,
		IsPosted:        true,
		OriginalEntryID: &firstID,
		TotalDebit:      decimal.NewFromInt(500),
		TotalCredit:     decimal.NewFromInt(500),
		Lines: []domain.JournalLine{
			{LineID: uuid.NewString(), EntryID: reversalID, LedgerID: suite.expenseLedger.LedgerID, Credit: decimal.NewFromInt(500)},
			{LineID: uuid.NewString(), EntryID: reversalID, LedgerID: suite.payableLedger.LedgerID, Debit: decimal.NewFromInt(500)},
		},
	}

	suite.mockJournalRepo.On("FindEntryByID", ctx, reversalID).Return(reversalEntry, nil).Once()
	suite.mockChartRepo.On("FindLedgersByIDs", ctx, mock.AnythingOfType("[]string")).
		Return(suite.ledgerMap(suite.expenseLedger, suite.payableLedger), nil).Once()
	suite.mockJournalRepo.On("SaveEntry", ctx, mock.AnythingOfType("domain.JournalEntry"), mock.AnythingOfType("map[string]decimal.Decimal")).
		Return(int64(9), nil).Once()
	// The reversal itself becomes terminal so it cannot be reversed twice.
	suite.mockJournalRepo.On("UpdateEntryStatusAndLinks", ctx, reversalID, domain.Reversed, mock.AnythingOfType("*string"), &firstID, suite.userID, mock.AnythingOfType("time.Time")).
		Return(nil).Once()

	entry, err := suite.service.ReverseEntry(ctx, reversalID, suite.userID)

	suite.Require().NoError(err)
	suite.Equal("Supplier invoice", entry.Description)
	suite.Require().NotNil(entry.OriginalEntryID)
	suite.Equal(reversalID, *entry.OriginalEntryID)
	suite.mockJournalRepo.AssertExpectations(suite.T())
}

func (suite *JournalServiceTestSuite) TestReverseEntry_ReversalAlreadyUndone() {
	ctx := context.Background()
	firstID := uuid.NewString()
	undoneID := uuid.NewString()
	undone := &domain.JournalEntry{
		EntryID:         undoneID,
		Description:     "Reversal of: Supplier invoice",
		Status:          domain.Reversed,
		OriginalEntryID: &firstID,
	}

	suite.mockJournalRepo.On("FindEntryByID", ctx, undoneID).Return(undone, nil).Once()

	_, err := suite.service.ReverseEntry(ctx, undoneID, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrEntryNotPosted)
	suite.mockJournalRepo.AssertNotCalled(suite.T(), "SaveEntry", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *JournalServiceTestSuite) TestReverseEntry_NotFound() {
	ctx := context.Background()
	missingID := uuid.NewString()
	suite.mockJournalRepo.On("FindEntryByID", ctx, missingID).Return(nil, apperrors.ErrNotFound).Once()

	_, err := suite.service.ReverseEntry(ctx, missingID, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *JournalServiceTestSuite) TestGetEntryByID_LoadsMissingLines() {
	ctx := context.Background()
	entryID := uuid.NewString()
	entry := &domain.JournalEntry{EntryID: entryID, Status: domain.Posted}
	lines := []domain.JournalLine{
		{LineID: uuid.NewString(), EntryID: entryID, LedgerID: suite.cashLedger.LedgerID, Debit: decimal.NewFromInt(10)},
		{LineID: uuid.NewString(), EntryID: entryID, LedgerID: suite.payableLedger.LedgerID, Credit: decimal.NewFromInt(10)},
	}

	suite.mockJournalRepo.On("FindEntryByID", ctx, entryID).Return(entry, nil).Once()
	suite.mockJournalRepo.On("FindLinesByEntryID", ctx, entryID).Return(lines, nil).Once()

	got, err := suite.service.GetEntryByID(ctx, entryID)

	suite.Require().NoError(err)
	suite.Len(got.Lines, 2)
	suite.mockJournalRepo.AssertExpectations(suite.T())
}

func (suite *JournalServiceTestSuite) TestListEntries_DefaultsLimit() {
	ctx := context.Background()
	suite.mockJournalRepo.On("ListEntries", ctx, 20, (*string)(nil), true).
		Return([]domain.JournalEntry{{EntryID: uuid.NewString()}}, nil, nil).Once()

	resp, err := suite.service.ListEntries(ctx, dto.ListEntriesParams{Limit: 0, IncludeReversals: true})

	suite.Require().NoError(err)
	suite.Len(resp.Entries, 1)
	suite.Nil(resp.NextToken)
}

func (suite *JournalServiceTestSuite) TestListLinesByLedger_UnknownLedger() {
	ctx := context.Background()
	ledgerID := uuid.NewString()
	suite.mockChartRepo.On("FindLedgerByID", ctx, ledgerID).Return(nil, apperrors.ErrNotFound).Once()

	_, err := suite.service.ListLinesByLedger(ctx, ledgerID, dto.ListLinesParams{})

	suite.Require().Error(err)
	suite.True(errors.Is(err, apperrors.ErrNotFound))
	suite.mockJournalRepo.AssertNotCalled(suite.T(), "ListLinesByLedgerID", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestJournalServiceTestSuite(t *testing.T) {
	suite.Run(t, new(JournalServiceTestSuite))
}

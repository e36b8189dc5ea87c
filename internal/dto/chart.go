package dto

import (
	"time"

	"github.com/fincore-erp/gl_budget_engine/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateGroupRequest defines the data needed to create an account group.
type CreateGroupRequest struct {
	Code        string           `json:"code" binding:"required"`
	Name        string           `json:"name" binding:"required"`
	Type        domain.GroupType `json:"type" binding:"required,oneof=ASSETS LIABILITIES INCOME EXPENSES"`
	Description string           `json:"description"`
}

// UpdateGroupRequest defines the data allowed for updating a group.
// Use pointers to distinguish between zero-value updates and fields not provided.
type UpdateGroupRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"isActive"`
}

// GroupResponse defines the data returned for an account group.
type GroupResponse struct {
	GroupID       string           `json:"groupID"`
	Code          string           `json:"code"`
	Name          string           `json:"name"`
	Type          domain.GroupType `json:"type"`
	Description   string           `json:"description"`
	IsActive      bool             `json:"isActive"`
	CreatedAt     time.Time        `json:"createdAt"`
	CreatedBy     string           `json:"createdBy"`
	LastUpdatedAt time.Time        `json:"lastUpdatedAt"`
	LastUpdatedBy string           `json:"lastUpdatedBy"`
}

// ToGroupResponse converts a domain.AccountGroup to GroupResponse DTO
func ToGroupResponse(g *domain.AccountGroup) GroupResponse {
	return GroupResponse{
		GroupID:       g.GroupID,
		Code:          g.Code,
		Name:          g.Name,
		Type:          g.Type,
		Description:   g.Description,
		IsActive:      g.IsActive,
		CreatedAt:     g.CreatedAt,
		CreatedBy:     g.CreatedBy,
		LastUpdatedAt: g.LastUpdatedAt,
		LastUpdatedBy: g.LastUpdatedBy,
	}
}

// ToListGroupResponse converts a slice of domain.AccountGroup to DTOs
func ToListGroupResponse(groups []domain.AccountGroup) []GroupResponse {
	res := make([]GroupResponse, len(groups))
	for i := range groups {
		res[i] = ToGroupResponse(&groups[i])
	}
	return res
}

// CreateSubGroupRequest defines the data needed to create an account sub-group.
type CreateSubGroupRequest struct {
	Code             string  `json:"code" binding:"required"`
	Name             string  `json:"name" binding:"required"`
	GroupID          string  `json:"groupID" binding:"required"`
	ParentSubGroupID *string `json:"parentSubGroupID"`
}

// UpdateSubGroupRequest defines the data allowed for updating a sub-group.
type UpdateSubGroupRequest struct {
	Name             *string `json:"name"`
	ParentSubGroupID *string `json:"parentSubGroupID"`
	IsActive         *bool   `json:"isActive"`
}

// SubGroupResponse defines the data returned for a sub-group.
type SubGroupResponse struct {
	SubGroupID       string    `json:"subGroupID"`
	Code             string    `json:"code"`
	Name             string    `json:"name"`
	GroupID          string    `json:"groupID"`
	ParentSubGroupID *string   `json:"parentSubGroupID,omitempty"`
	Level            int       `json:"level"`
	IsActive         bool      `json:"isActive"`
	CreatedAt        time.Time `json:"createdAt"`
	LastUpdatedAt    time.Time `json:"lastUpdatedAt"`
}

// ToSubGroupResponse converts a domain.AccountSubGroup to SubGroupResponse DTO
func ToSubGroupResponse(sg *domain.AccountSubGroup) SubGroupResponse {
	return SubGroupResponse{
		SubGroupID:       sg.SubGroupID,
		Code:             sg.Code,
		Name:             sg.Name,
		GroupID:          sg.GroupID,
		ParentSubGroupID: sg.ParentSubGroupID,
		Level:            sg.Level,
		IsActive:         sg.IsActive,
		CreatedAt:        sg.CreatedAt,
		LastUpdatedAt:    sg.LastUpdatedAt,
	}
}

// ToListSubGroupResponse converts a slice of domain.AccountSubGroup to DTOs
func ToListSubGroupResponse(subGroups []domain.AccountSubGroup) []SubGroupResponse {
	res := make([]SubGroupResponse, len(subGroups))
	for i := range subGroups {
		res[i] = ToSubGroupResponse(&subGroups[i])
	}
	return res
}

// CreateLedgerRequest defines the data needed to create a ledger account.
// BalanceType is optional; when omitted it defaults to the natural side of the
// owning group's type.
type CreateLedgerRequest struct {
	Code           string              `json:"code" binding:"required"`
	Name           string              `json:"name" binding:"required"`
	SubGroupID     string              `json:"subGroupID" binding:"required"`
	BalanceType    *domain.BalanceType `json:"balanceType" binding:"omitempty,oneof=DEBIT CREDIT"`
	OpeningBalance decimal.Decimal     `json:"openingBalance"`
	CurrencyCode   string              `json:"currencyCode" binding:"required,len=3"`
	Description    string              `json:"description"`
}

// UpdateLedgerRequest defines the data allowed for updating a ledger account.
type UpdateLedgerRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"isActive"`
}

// LedgerResponse defines the data returned for a ledger account.
type LedgerResponse struct {
	LedgerID       string             `json:"ledgerID"`
	Code           string             `json:"code"`
	Name           string             `json:"name"`
	SubGroupID     string             `json:"subGroupID"`
	BalanceType    domain.BalanceType `json:"balanceType"`
	OpeningBalance decimal.Decimal    `json:"openingBalance"`
	CurrentBalance decimal.Decimal    `json:"currentBalance"`
	CurrencyCode   string             `json:"currencyCode"`
	Description    string             `json:"description"`
	IsActive       bool               `json:"isActive"`
	CreatedAt      time.Time          `json:"createdAt"`
	CreatedBy      string             `json:"createdBy"`
	LastUpdatedAt  time.Time          `json:"lastUpdatedAt"`
	LastUpdatedBy  string             `json:"lastUpdatedBy"`
}

// ToLedgerResponse converts a domain.AccountLedger to LedgerResponse DTO
func ToLedgerResponse(l *domain.AccountLedger) LedgerResponse {
	return LedgerResponse{
		LedgerID:       l.LedgerID,
		Code:           l.Code,
		Name:           l.Name,
		SubGroupID:     l.SubGroupID,
		BalanceType:    l.BalanceType,
		OpeningBalance: l.OpeningBalance,
		CurrentBalance: l.CurrentBalance,
		CurrencyCode:   l.CurrencyCode,
		Description:    l.Description,
		IsActive:       l.IsActive,
		CreatedAt:      l.CreatedAt,
		CreatedBy:      l.CreatedBy,
		LastUpdatedAt:  l.LastUpdatedAt,
		LastUpdatedBy:  l.LastUpdatedBy,
	}
}

// ToListLedgerResponse converts a slice of domain.AccountLedger to DTOs
func ToListLedgerResponse(ledgers []domain.AccountLedger) []LedgerResponse {
	res := make([]LedgerResponse, len(ledgers))
	for i := range ledgers {
		res[i] = ToLedgerResponse(&ledgers[i])
	}
	return res
}

// LedgerHierarchyResponse is the resolved group to ledger path of one account.
type LedgerHierarchyResponse struct {
	Group    GroupResponse    `json:"group"`
	SubGroup SubGroupResponse `json:"subGroup"`
	Ledger   LedgerResponse   `json:"ledger"`
}

// ToLedgerHierarchyResponse converts a domain.LedgerHierarchy to its DTO
func ToLedgerHierarchyResponse(h *domain.LedgerHierarchy) LedgerHierarchyResponse {
	return LedgerHierarchyResponse{
		Group:    ToGroupResponse(&h.Group),
		SubGroup: ToSubGroupResponse(&h.SubGroup),
		Ledger:   ToLedgerResponse(&h.Ledger),
	}
}

// ListLedgersParams defines query parameters for listing ledger accounts.
type ListLedgersParams struct {
	Limit  int `form:"limit,default=20"`
	Offset int `form:"offset,default=0"`
}

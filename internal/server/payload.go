package server

import (
	"github.com/tabsplit/tabsplit/internal/models"
	"github.com/tabsplit/tabsplit/internal/service"
)

// Clients have historically sent two shapes for bill items: `unitPrice` with
// `assignedUserIds`, and `amount` with `assigned_user_ids`. Both are accepted
// here and normalized in one place; everything past this file sees only the
// canonical draft.

type itemPayload struct {
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	Quantity        int64    `json:"quantity"`
	UnitPrice       *int64   `json:"unitPrice"`
	Amount          *int64   `json:"amount"`
	AssignedUserIDs []string `json:"assignedUserIds"`
	AssignedSnake   []string `json:"assigned_user_ids"`
}

type billPayload struct {
	GroupID   string        `json:"groupId"`
	Title     string        `json:"title"`
	RawSource string        `json:"rawSource"`
	Currency  string        `json:"currency"`
	PayerID   string        `json:"payerId"`
	Items     []itemPayload `json:"items"`
}

// toDraft normalizes the payload into the canonical BillDraft. Amounts are
// minor currency units. Quantity defaults to 1 downstream.
func (p billPayload) toDraft(createdBy string) service.BillDraft {
	draft := service.BillDraft{
		GroupID:   p.GroupID,
		Title:     p.Title,
		RawSource: p.RawSource,
		Currency:  p.Currency,
		PayerID:   p.PayerID,
		CreatedBy: createdBy,
	}
	for _, item := range p.Items {
		name := item.Name
		if name == "" {
			name = item.Description
		}
		var unitPrice int64
		if item.UnitPrice != nil {
			unitPrice = *item.UnitPrice
		} else if item.Amount != nil {
			unitPrice = *item.Amount
		}
		assignees := item.AssignedUserIDs
		if len(assignees) == 0 {
			assignees = item.AssignedSnake
		}
		draft.Items = append(draft.Items, service.ItemDraft{
			Name:            name,
			Quantity:        item.Quantity,
			UnitPrice:       unitPrice,
			AssignedUserIDs: assignees,
		})
	}
	return draft
}

type assignmentResponse struct {
	ID        string `json:"id"`
	UserID    string `json:"userId"`
	SettledAt int64  `json:"settledAt,omitempty"`
}

type itemResponse struct {
	ID          string               `json:"id"`
	Name        string               `json:"name"`
	Quantity    int64                `json:"quantity"`
	UnitPrice   int64                `json:"unitPrice"`
	Subtotal    int64                `json:"subtotal"`
	Assignments []assignmentResponse `json:"assignments"`
}

type billResponse struct {
	ID          string         `json:"id"`
	GroupID     string         `json:"groupId"`
	Title       string         `json:"title"`
	RawSource   string         `json:"rawSource,omitempty"`
	TotalAmount int64          `json:"totalAmount"`
	Currency    string         `json:"currency"`
	SplitType   string         `json:"splitType"`
	PayerID     string         `json:"payerId"`
	CreatedBy   string         `json:"createdBy"`
	CreatedAt   int64          `json:"createdAt"`
	Items       []itemResponse `json:"items"`
}

func toBillResponse(bill *models.Bill) billResponse {
	out := billResponse{
		ID:          bill.ID,
		GroupID:     bill.GroupID,
		Title:       bill.Title,
		RawSource:   bill.RawSource,
		TotalAmount: bill.TotalAmount,
		Currency:    bill.Currency,
		SplitType:   bill.SplitType,
		PayerID:     bill.PayerID,
		CreatedBy:   bill.CreatedBy,
		CreatedAt:   bill.CreatedAt,
		Items:       []itemResponse{},
	}
	for _, item := range bill.Items {
		itemOut := itemResponse{
			ID:          item.ID,
			Name:        item.Name,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Subtotal:    item.Subtotal(),
			Assignments: []assignmentResponse{},
		}
		for _, a := range item.Assignments {
			itemOut.Assignments = append(itemOut.Assignments, assignmentResponse{
				ID:        a.ID,
				UserID:    a.UserID,
				SettledAt: a.SettledAt,
			})
		}
		out.Items = append(out.Items, itemOut)
	}
	return out
}

type userResponse struct {
	ID             string `json:"id"`
	Username       string `json:"username"`
	Email          string `json:"email"`
	DefaultGroupID string `json:"defaultGroupId,omitempty"`
	Role           string `json:"role"`
	IsActive       bool   `json:"isActive"`
	CreatedAt      int64  `json:"createdAt"`
}

func toUserResponse(user *models.User) userResponse {
	return userResponse{
		ID:             user.ID,
		Username:       user.Username,
		Email:          user.Email,
		DefaultGroupID: user.DefaultGroupID,
		Role:           user.Role,
		IsActive:       user.IsActive,
		CreatedAt:      user.CreatedAt,
	}
}

type memberResponse struct {
	UserID   string `json:"userId"`
	Role     string `json:"role"`
	JoinedAt int64  `json:"joinedAt"`
}

type groupResponse struct {
	ID            string           `json:"id"`
	Name          string           `json:"name"`
	ParentGroupID string           `json:"parentGroupId,omitempty"`
	CreatedAt     int64            `json:"createdAt"`
	Members       []memberResponse `json:"members"`
}

func toGroupResponse(group *models.Group) groupResponse {
	out := groupResponse{
		ID:            group.ID,
		Name:          group.Name,
		ParentGroupID: group.ParentGroupID,
		CreatedAt:     group.CreatedAt,
		Members:       []memberResponse{},
	}
	for _, m := range group.Members {
		out.Members = append(out.Members, memberResponse{
			UserID:   m.UserID,
			Role:     m.Role,
			JoinedAt: m.JoinedAt,
		})
	}
	return out
}

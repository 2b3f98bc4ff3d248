package server

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tabsplit/tabsplit/internal/metrics"
	"github.com/tabsplit/tabsplit/internal/parser"
)

func (s *Server) handleListBills(c *gin.Context) {
	bills, err := s.bills.ListBills(c.Request.Context(), c.Query("groupId"))
	if err != nil {
		writeError(c, err)
		return
	}

	out := make([]billResponse, 0, len(bills))
	for _, bill := range bills {
		out = append(out, toBillResponse(bill))
	}
	c.JSON(http.StatusOK, gin.H{"bills": out})
}

func (s *Server) handleCreateBill(c *gin.Context) {
	var payload billPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	billID, err := s.bills.CreateBill(c.Request.Context(), payload.toDraft(c.GetString(ContextUserID)))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": billID})
}

func (s *Server) handleGetBill(c *gin.Context) {
	bill, err := s.bills.GetBill(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bill": toBillResponse(bill)})
}

func (s *Server) handleUpdateBill(c *gin.Context) {
	var payload billPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := s.bills.UpdateBill(c.Request.Context(), c.Param("id"), payload.toDraft(c.GetString(ContextUserID))); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleDeleteBill(c *gin.Context) {
	if err := s.bills.DeleteBill(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleBalances(c *gin.Context) {
	balances, err := s.ledger.GlobalBalances(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	type entry struct {
		UserID       string `json:"userId"`
		Username     string `json:"username"`
		Email        string `json:"email"`
		BalanceMinor int64  `json:"balanceMinor"`
		Balance      string `json:"balance"`
		Currency     string `json:"currency"`
	}
	out := make([]entry, 0, len(balances))
	for _, b := range balances {
		out = append(out, entry{
			UserID:       b.UserID,
			Username:     b.Username,
			Email:        b.Email,
			BalanceMinor: b.NetMinor,
			Balance:      formatMinor(b.NetMinor),
			Currency:     b.Currency,
		})
	}
	c.JSON(http.StatusOK, gin.H{"balances": out})
}

func (s *Server) handleGroupBalances(c *gin.Context) {
	groupBalances, err := s.ledger.GroupBalances(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	type memberEntry struct {
		UserID       string `json:"userId"`
		Username     string `json:"username"`
		BalanceMinor int64  `json:"balanceMinor"`
		Balance      string `json:"balance"`
	}
	type groupEntry struct {
		GroupID   string        `json:"groupId"`
		GroupName string        `json:"groupName"`
		Members   []memberEntry `json:"members"`
	}
	out := make([]groupEntry, 0, len(groupBalances))
	for _, g := range groupBalances {
		entry := groupEntry{GroupID: g.GroupID, GroupName: g.GroupName, Members: []memberEntry{}}
		for _, m := range g.Members {
			entry.Members = append(entry.Members, memberEntry{
				UserID:       m.UserID,
				Username:     m.Username,
				BalanceMinor: m.BalanceMinor,
				Balance:      formatMinor(m.BalanceMinor),
			})
		}
		out = append(out, entry)
	}
	c.JSON(http.StatusOK, gin.H{"groups": out})
}

type settlePayload struct {
	AssignmentIDs []string `json:"assignmentIds"`
}

func (s *Server) handleSettle(c *gin.Context) {
	var payload settlePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	count, err := s.bills.SettleAssignments(c.Request.Context(), c.GetString(ContextUserID), payload.AssignmentIDs)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"settled": count})
}

type parsePayload struct {
	Text string `json:"text" binding:"required"`
}

// handleParse exposes the table parser so clients can preview OCR output
// before committing a bill.
func (s *Server) handleParse(c *gin.Context) {
	var payload parsePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text is required"})
		return
	}

	items, err := parser.ParseTable(payload.Text)
	if err != nil {
		metrics.ParseFailures.Inc()
		writeError(c, err)
		return
	}

	type entry struct {
		Description string `json:"description"`
		Quantity    int64  `json:"quantity,omitempty"`
		AmountMinor int64  `json:"amountMinor"`
		Amount      string `json:"amount"`
	}
	out := make([]entry, 0, len(items))
	for _, item := range items {
		out = append(out, entry{
			Description: item.Description,
			Quantity:    item.Quantity,
			AmountMinor: item.AmountMinor,
			Amount:      formatMinor(item.AmountMinor),
		})
	}
	c.JSON(http.StatusOK, gin.H{"items": out})
}

// formatMinor renders integer minor units as a decimal string, e.g. -825 →
// "-8.25". Presentation only; no arithmetic happens on the string form.
func formatMinor(v int64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

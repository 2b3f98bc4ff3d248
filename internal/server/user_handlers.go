package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tabsplit/tabsplit/internal/storage"
)

func (s *Server) handleListUsers(c *gin.Context) {
	users, err := s.users.ListUsers(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	out := make([]userResponse, 0, len(users))
	for _, user := range users {
		out = append(out, toUserResponse(user))
	}
	c.JSON(http.StatusOK, gin.H{"users": out})
}

// handleCreateUser lets an authenticated caller create an account directly,
// e.g. an admin enrolling a housemate who will log in later.
func (s *Server) handleCreateUser(c *gin.Context) {
	var payload registerPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email, username and password are required"})
		return
	}

	user, _, err := s.users.Register(c.Request.Context(), payload.Email, payload.Username, payload.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": toUserResponse(user)})
}

func (s *Server) handleGetUser(c *gin.Context) {
	user, err := s.users.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	activeGroup, err := s.users.ActiveGroup(c.Request.Context(), user.ID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":        toUserResponse(user),
		"activeGroup": activeGroup,
	})
}

type userUpdatePayload struct {
	Username       *string `json:"username"`
	Email          *string `json:"email"`
	DefaultGroupID *string `json:"defaultGroupId"`
	Role           *string `json:"role"`
	IsActive       *bool   `json:"isActive"`
}

func (s *Server) handleUpdateUser(c *gin.Context) {
	var payload userUpdatePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	update := storage.UserUpdate{
		Username:       payload.Username,
		Email:          payload.Email,
		DefaultGroupID: payload.DefaultGroupID,
		Role:           payload.Role,
		IsActive:       payload.IsActive,
	}
	if err := s.users.UpdateUser(c.Request.Context(), c.Param("id"), update); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// handleDeleteUser deactivates by default; ?hard=true removes the row.
func (s *Server) handleDeleteUser(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	var err error
	if c.Query("hard") == "true" {
		err = s.users.HardDeleteUser(ctx, id)
	} else {
		err = s.users.DeactivateUser(ctx, id)
	}
	if err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

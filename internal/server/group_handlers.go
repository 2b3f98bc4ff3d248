package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) handleListGroups(c *gin.Context) {
	groups, err := s.groups.ListGroups(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	out := make([]groupResponse, 0, len(groups))
	for _, group := range groups {
		out = append(out, toGroupResponse(group))
	}
	c.JSON(http.StatusOK, gin.H{"groups": out})
}

type groupPayload struct {
	Name          string `json:"name"`
	ParentGroupID string `json:"parentGroupId"`
}

func (s *Server) handleCreateGroup(c *gin.Context) {
	var payload groupPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	group, err := s.groups.CreateGroup(c.Request.Context(), payload.Name, payload.ParentGroupID, c.GetString(ContextUserID))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"group": toGroupResponse(group)})
}

func (s *Server) handleGetGroup(c *gin.Context) {
	group, err := s.groups.GetGroup(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"group": toGroupResponse(group)})
}

type groupUpdatePayload struct {
	Name          *string `json:"name"`
	ParentGroupID *string `json:"parentGroupId"`
}

func (s *Server) handleUpdateGroup(c *gin.Context) {
	var payload groupUpdatePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := s.groups.UpdateGroup(c.Request.Context(), c.Param("id"), payload.Name, payload.ParentGroupID); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleDeleteGroup(c *gin.Context) {
	if err := s.groups.DeleteGroup(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type memberPayload struct {
	UserID string `json:"userId" binding:"required"`
	Role   string `json:"role"`
}

func (s *Server) handleAddMember(c *gin.Context) {
	var payload memberPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId is required"})
		return
	}

	if err := s.groups.AddMember(c.Request.Context(), c.Param("id"), payload.UserID, payload.Role); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusCreated)
}

func (s *Server) handleRemoveMember(c *gin.Context) {
	if err := s.groups.RemoveMember(c.Request.Context(), c.Param("id"), c.Param("userId")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Package server exposes the services over a JSON REST API.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/tabsplit/tabsplit/internal/auth"
	"github.com/tabsplit/tabsplit/internal/metrics"
	"github.com/tabsplit/tabsplit/internal/service"
)

// Server wires the services into a gin router.
type Server struct {
	users  *service.UserService
	groups *service.GroupService
	bills  *service.BillService
	ledger *service.LedgerService
	tokens *auth.JWTManager
	engine *gin.Engine
}

// New builds the router with all routes registered.
func New(
	users *service.UserService,
	groups *service.GroupService,
	bills *service.BillService,
	ledger *service.LedgerService,
	tokens *auth.JWTManager,
) *Server {
	s := &Server{
		users:  users,
		groups: groups,
		bills:  bills,
		ledger: ledger,
		tokens: tokens,
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery(), RequestLogger(), Metrics(), CORS())

	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	engine.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := engine.Group("/api")
	{
		api.POST("/auth/register", s.handleRegister)
		api.POST("/auth/login", s.handleLogin)
	}

	authed := api.Group("", RequireAuth(tokens))
	{
		authed.GET("/users", s.handleListUsers)
		authed.POST("/users", s.handleCreateUser)
		authed.GET("/users/:id", s.handleGetUser)
		authed.PATCH("/users/:id", s.handleUpdateUser)
		authed.DELETE("/users/:id", s.handleDeleteUser)

		authed.GET("/groups", s.handleListGroups)
		authed.POST("/groups", s.handleCreateGroup)
		authed.GET("/groups/:id", s.handleGetGroup)
		authed.PATCH("/groups/:id", s.handleUpdateGroup)
		authed.DELETE("/groups/:id", s.handleDeleteGroup)
		authed.POST("/groups/:id/members", s.handleAddMember)
		authed.DELETE("/groups/:id/members/:userId", s.handleRemoveMember)

		authed.GET("/bills", s.handleListBills)
		authed.POST("/bills", s.handleCreateBill)
		authed.GET("/bills/balances", s.handleBalances)
		authed.GET("/bills/balances/groups", s.handleGroupBalances)
		authed.POST("/bills/settle", s.handleSettle)
		authed.POST("/bills/parse", s.handleParse)
		authed.GET("/bills/:id", s.handleGetBill)
		authed.PUT("/bills/:id", s.handleUpdateBill)
		authed.DELETE("/bills/:id", s.handleDeleteBill)
	}

	s.engine = engine
	return s
}

// Handler returns the h2c-wrapped handler so gRPC-style HTTP/2 clients work
// without TLS.
func (s *Server) Handler() http.Handler {
	return h2c.NewHandler(s.engine, &http2.Server{})
}

package account

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ashfaq-akash/LittleLemonApi/internal/logger"
	"github.com/ashfaq-akash/LittleLemonApi/internal/validation"
	"github.com/ashfaq-akash/LittleLemonApi/internal/web"
)

// Handler serves registration, token exchange and group management
type Handler struct {
	service *Service
	logger  *logger.Logger
}

func NewHandler(service *Service, log *logger.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  log,
	}
}

// RegisterPublic mounts the routes reachable without a token
func (h *Handler) RegisterPublic(rg *gin.RouterGroup) {
	rg.POST("/users", h.register)
	rg.POST("/api-token-auth/", h.issueToken)
}

// Register mounts the routes that need an authenticated caller
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("/users/me", h.me)
	rg.GET("/groups/:group/users", h.groupMembers)
	rg.POST("/groups/:group/users", h.addToGroup)
	rg.DELETE("/groups/:group/users/:userId", h.removeFromGroup)
}

func (h *Handler) register(c *gin.Context) {
	var in UserInput
	if err := validation.BindJSON(c, &in); err != nil {
		web.Fail(c, h.logger, "user_register_failed", err)
		return
	}
	u, err := h.service.Register(c.Request.Context(), in)
	if err != nil {
		web.Fail(c, h.logger, "user_register_failed", err)
		return
	}
	c.JSON(http.StatusCreated, web.NewUserResponse(u))
}

func (h *Handler) issueToken(c *gin.Context) {
	var in Credentials
	if err := validation.BindJSON(c, &in); err != nil {
		web.Fail(c, h.logger, "token_issue_failed", err)
		return
	}
	token, err := h.service.IssueToken(c.Request.Context(), in)
	if err != nil {
		web.Fail(c, h.logger, "token_issue_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

func (h *Handler) me(c *gin.Context) {
	p, err := web.MustPrincipal(c)
	if err != nil {
		web.Fail(c, h.logger, "user_me_failed", err)
		return
	}
	u, err := h.service.Me(c.Request.Context(), p)
	if err != nil {
		web.Fail(c, h.logger, "user_me_failed", err)
		return
	}
	c.JSON(http.StatusOK, web.NewUserResponse(u))
}

func (h *Handler) groupMembers(c *gin.Context) {
	p, err := web.MustPrincipal(c)
	if err != nil {
		web.Fail(c, h.logger, "group_list_failed", err)
		return
	}
	users, err := h.service.GroupMembers(c.Request.Context(), p, c.Param("group"))
	if err != nil {
		web.Fail(c, h.logger, "group_list_failed", err)
		return
	}

	out := make([]*web.UserResponse, 0, len(users))
	for i := range users {
		out = append(out, web.NewUserResponse(&users[i]))
	}
	c.JSON(http.StatusOK, out)
}

type memberRequest struct {
	Username string `json:"username"`
}

func (h *Handler) addToGroup(c *gin.Context) {
	p, err := web.MustPrincipal(c)
	if err != nil {
		web.Fail(c, h.logger, "group_add_failed", err)
		return
	}
	var req memberRequest
	if err := validation.BindJSON(c, &req); err != nil {
		web.Fail(c, h.logger, "group_add_failed", err)
		return
	}

	msg, err := h.service.AddToGroup(c.Request.Context(), p, c.Param("group"), req.Username)
	if err != nil {
		web.Fail(c, h.logger, "group_add_failed", err)
		return
	}
	web.Message(c, http.StatusCreated, msg)
}

func (h *Handler) removeFromGroup(c *gin.Context) {
	p, err := web.MustPrincipal(c)
	if err != nil {
		web.Fail(c, h.logger, "group_remove_failed", err)
		return
	}
	userID, err := web.IDParam(c, "userId", "User")
	if err != nil {
		web.Fail(c, h.logger, "group_remove_failed", err)
		return
	}

	msg, err := h.service.RemoveFromGroup(c.Request.Context(), p, c.Param("group"), userID)
	if err != nil {
		web.Fail(c, h.logger, "group_remove_failed", err)
		return
	}
	web.Message(c, http.StatusOK, msg)
}

package api

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"agentschat/internal/auth"
	"agentschat/internal/chat"
	"agentschat/internal/models"
)

const maxUploadBytes = 10 << 20 // 10 MB

// Handler wires HTTP routes to the chat service.
type Handler struct {
	chat *chat.Service
	auth *auth.Service
	log  *zap.Logger
}

// NewHandler constructs a Handler instance.
func NewHandler(chatService *chat.Service, authService *auth.Service, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{chat: chatService, auth: authService, log: log}
}

// RegisterRoutes attaches all HTTP routes to the router.
func (h *Handler) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api")
	api.POST("/register", h.register)
	api.POST("/login", h.login)

	authed := api.Group("", h.auth.Middleware())
	authed.GET("/me", h.me)
	authed.GET("/users", h.listUsers)
	authed.DELETE("/users/:id", h.deleteUser)
	authed.POST("/agents", h.createAgent)
	authed.GET("/agents", h.listAgents)
	authed.DELETE("/agents/:id", h.deleteAgent)
	authed.POST("/groups", h.createGroup)
	authed.GET("/groups", h.myGroups)
	authed.POST("/groups/:id/join", h.joinGroup)
	authed.GET("/groups/:id/messages", h.listMessages)
	authed.POST("/groups/:id/messages", h.postMessage)
	authed.POST("/groups/:id/agents/:agent_id", h.addAgentToGroup)
	authed.POST("/friends/:id", h.addFriend)
}

func (h *Handler) currentUser(c *gin.Context) (*models.User, bool) {
	user, ok := auth.UserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
		return nil, false
	}
	return user, true
}

func respondError(c *gin.Context, err error) {
	status := http.StatusBadRequest
	switch {
	case errors.Is(err, chat.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, chat.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, chat.ErrConflict):
		status = http.StatusConflict
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) register(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	user, err := h.chat.Register(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	token, err := h.auth.IssueToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "issue token failed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"token": token, "user": user})
}

func (h *Handler) login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	user, err := h.chat.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	token, err := h.auth.IssueToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "issue token failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

func (h *Handler) me(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handler) listUsers(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	users, err := h.chat.ListUsers(c.Request.Context(), user)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

func (h *Handler) deleteUser(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	if err := h.chat.DeleteUser(c.Request.Context(), user, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type createAgentRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	APIURL      string `json:"api_url"`
}

func (h *Handler) createAgent(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	var req createAgentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	agent, err := h.chat.CreateAgent(c.Request.Context(), user, req.Name, req.Description, req.APIURL)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, agent)
}

func (h *Handler) listAgents(c *gin.Context) {
	if _, ok := h.currentUser(c); !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"agents": h.chat.ListAgents(c.Request.Context())})
}

func (h *Handler) deleteAgent(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	if err := h.chat.DeleteAgent(c.Request.Context(), user, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) createGroup(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	var req struct {
		Name string `json:"name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	group, err := h.chat.CreateGroup(c.Request.Context(), user, req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, group)
}

func (h *Handler) myGroups(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"groups": h.chat.MyGroups(c.Request.Context(), user)})
}

func (h *Handler) joinGroup(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	if err := h.chat.JoinGroup(c.Request.Context(), user, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "joined"})
}

func (h *Handler) listMessages(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	messages, err := h.chat.ListMessages(c.Request.Context(), user, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

// postMessage accepts a form post with a "content" field and an optional
// "file" attachment. An attachment makes the message an audio message.
func (h *Handler) postMessage(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	content := c.PostForm("content")

	var attachment *chat.Attachment
	fileHeader, err := c.FormFile("file")
	if err == nil {
		if fileHeader.Size > maxUploadBytes {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
			return
		}
		f, err := fileHeader.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "open file failed"})
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "read file failed"})
			return
		}
		attachment = &chat.Attachment{
			Filename: filepath.Base(fileHeader.Filename),
			Data:     data,
		}
	}

	message, err := h.chat.PostMessage(c.Request.Context(), user, c.Param("id"), content, attachment)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, message)
}

func (h *Handler) addAgentToGroup(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	if err := h.chat.AddAgentToGroup(c.Request.Context(), user, c.Param("id"), c.Param("agent_id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "added"})
}

func (h *Handler) addFriend(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	if err := h.chat.AddFriend(c.Request.Context(), user, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "added"})
}

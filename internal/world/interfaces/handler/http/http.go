package http

import (
	"OpenFront/internal/shared/transport"
	"OpenFront/internal/world/entity"
	"OpenFront/internal/world/interfaces/handler"
	"OpenFront/internal/world/interfaces/handler/dto"
	"context"
	nethttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type HttpHandler struct {
	game *handler.Game
}

func NewHttpHandler(g *handler.Game) *HttpHandler {
	return &HttpHandler{game: g}
}

func (h *HttpHandler) RegisterRoutes(group *gin.RouterGroup) {
	api := group.Group("/api")
	api.POST("/token", h.Token)
	api.POST("/games", h.CreateGame)

	games := api.Group("/games/:game")
	games.GET("/snapshot", h.Snapshot)
	games.POST("/commands", h.Command)
	games.POST("/reset", h.Reset)
}

// Token 给对局里的某个帝国签发 token。
func (h *HttpHandler) Token(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.TokenReq
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(ctx, c, transport.InvalidParam, "参数有误")
		return
	}
	gameID := h.game.GameOrDefault(req.Game)
	token, err := h.game.IssueToken(ctx, gameID, entity.EmpireID(req.EmpireID))
	if err != nil {
		h.error(ctx, c, "http token", err)
		return
	}
	h.ok(ctx, c, dto.TokenResp{Token: token, Game: string(gameID), Empire: req.EmpireID})
}

// CreateGame 新建一局，id 由服务端生成。
func (h *HttpHandler) CreateGame(c *gin.Context) {
	ctx := c.Request.Context()

	gameID := entity.GameID(uuid.NewString())
	if _, err := h.game.Runtime.Create(ctx, gameID); err != nil {
		h.error(ctx, c, "http create game", err)
		return
	}
	h.ok(ctx, c, dto.GameCreatedResp{Game: string(gameID)})
}

func (h *HttpHandler) Snapshot(c *gin.Context) {
	ctx := c.Request.Context()

	state, err := h.game.Runtime.Snapshot(ctx, entity.GameID(c.Param("game")))
	if err != nil {
		h.error(ctx, c, "http snapshot", err)
		return
	}
	h.ok(ctx, c, dto.StateView(state))
}

func (h *HttpHandler) Command(c *gin.Context) {
	ctx := c.Request.Context()
	gameID := entity.GameID(c.Param("game"))

	actor, err := h.game.Authorize(ctx, c.GetHeader("Authorization"), gameID)
	if err != nil {
		h.error(ctx, c, "http command", err)
		return
	}

	var req dto.CommandReq
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(ctx, c, transport.InvalidParam, "参数有误")
		return
	}

	state, changed, err := h.game.Command(ctx, gameID, actor, req.Type, req.Payload)
	if err != nil {
		h.error(ctx, c, "http command", err)
		return
	}
	h.ok(ctx, c, dto.CommandResp{Changed: changed, State: dto.StateView(state)})
}

func (h *HttpHandler) Reset(c *gin.Context) {
	ctx := c.Request.Context()
	gameID := entity.GameID(c.Param("game"))

	if _, err := h.game.Authorize(ctx, c.GetHeader("Authorization"), gameID); err != nil {
		h.error(ctx, c, "http reset", err)
		return
	}
	state, err := h.game.Runtime.Reset(ctx, gameID)
	if err != nil {
		h.error(ctx, c, "http reset", err)
		return
	}
	h.ok(ctx, c, dto.StateView(state))
}

func (h *HttpHandler) ok(ctx context.Context, c *gin.Context, data any) {
	transport.SetBizCode(ctx, transport.BizCode(transport.OK))
	c.JSON(nethttp.StatusOK, dto.Success(data))
}

func (h *HttpHandler) fail(ctx context.Context, c *gin.Context, code int, msg string) {
	transport.SetBizCode(ctx, transport.BizCode(code))
	c.JSON(nethttp.StatusOK, dto.Error(code, msg))
}

func (h *HttpHandler) error(ctx context.Context, c *gin.Context, action string, err error) {
	code, msg := handler.HandleError(ctx, h.game.Log, action, err)
	h.fail(ctx, c, code, msg)
}

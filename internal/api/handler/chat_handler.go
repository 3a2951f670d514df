package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/kyzmat/marketplace/internal/api/metrics"
	"github.com/kyzmat/marketplace/internal/core/domain"
	"github.com/kyzmat/marketplace/internal/core/ports"
	"github.com/kyzmat/marketplace/internal/i18n"
)

// ConversationStreamer pushes a conversation's new messages over a websocket
// until ctx is done or the peer disconnects.
type ConversationStreamer interface {
	Serve(ctx context.Context, conn *websocket.Conn, conversationID string)
}

// ChatHandler handles conversations, messages and the live message stream.
type ChatHandler struct {
	service  ports.ChatService
	streamer ConversationStreamer
	upgrader websocket.Upgrader
	tr       *i18n.Translator
}

// NewChatHandler builds a ChatHandler. streamer may be nil, in which case the
// stream endpoint answers 503.
func NewChatHandler(service ports.ChatService, streamer ConversationStreamer, tr *i18n.Translator) *ChatHandler {
	return &ChatHandler{
		service:  service,
		streamer: streamer,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Tokens travel in the query string, so same-origin is not required.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		tr: tr,
	}
}

// List handles GET /v1/conversations.
//
// @Summary      Caller's conversations, most recently active first
// @Tags         chat
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  conversationResponse
// @Router       /v1/conversations [get]
func (h *ChatHandler) List(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	views, err := h.service.ListConversations(c.Request().Context(), actor.ID)
	if err != nil {
		return err
	}

	p := newPresenter(h.tr, c)
	out := make([]conversationResponse, 0, len(views))
	for i := range views {
		out = append(out, p.conversation(&views[i]))
	}
	return c.JSON(http.StatusOK, out)
}

// Start handles POST /v1/conversations.
//
// @Summary      Open a conversation about a job
// @Description  Returns the existing conversation when one already links the job, client and executor.
// @Tags         chat
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      startConversationRequest  true  "Job and executor"
// @Success      200   {object}  conversationResponse
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /v1/conversations [post]
func (h *ChatHandler) Start(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	var req startConversationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(req); err != nil {
		return err
	}

	view, err := h.service.StartConversation(c.Request().Context(), ports.StartConversationInput{
		JobID:         req.JobID,
		Caller:        actor,
		CounterpartID: req.ExecutorID,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newPresenter(h.tr, c).conversation(view))
}

// Get handles GET /v1/conversations/:id.
//
// @Summary      Get a conversation
// @Tags         chat
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Conversation id"
// @Success      200  {object}  conversationResponse
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /v1/conversations/{id} [get]
func (h *ChatHandler) Get(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	view, err := h.service.GetConversation(c.Request().Context(), c.Param("id"), actor)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newPresenter(h.tr, c).conversation(view))
}

// Messages handles GET /v1/conversations/:id/messages.
//
// @Summary      Messages of a conversation in chronological order
// @Tags         chat
// @Produce      json
// @Security     BearerAuth
// @Param        id   path     string  true  "Conversation id"
// @Success      200  {array}  messageResponse
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /v1/conversations/{id}/messages [get]
func (h *ChatHandler) Messages(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	msgs, err := h.service.ListMessages(c.Request().Context(), c.Param("id"), actor)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newPresenter(h.tr, c).messages(msgs))
}

// Send handles POST /v1/conversations/:id/messages.
//
// @Summary      Send a message
// @Tags         chat
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string              true  "Conversation id"
// @Param        body  body      sendMessageRequest  true  "Message"
// @Success      201   {object}  messageResponse
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      429   {object}  map[string]string
// @Router       /v1/conversations/{id}/messages [post]
func (h *ChatHandler) Send(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	var req sendMessageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(req); err != nil {
		return err
	}

	msg, err := h.service.SendMessage(c.Request().Context(), ports.SendMessageInput{
		ConversationID: c.Param("id"),
		Sender:         actor,
		Content:        req.Content,
	})
	if err != nil {
		if errors.Is(err, domain.ErrRateLimited) {
			metrics.ChatRateLimitedTotal.Inc()
		}
		return err
	}
	metrics.ChatMessagesTotal.Inc()
	return c.JSON(http.StatusCreated, newPresenter(h.tr, c).message(msg))
}

// MarkRead handles POST /v1/conversations/:id/read.
//
// @Summary      Mark the counterpart's messages as read
// @Tags         chat
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Conversation id"
// @Success      200  {object}  conversationResponse
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /v1/conversations/{id}/read [post]
func (h *ChatHandler) MarkRead(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	view, err := h.service.MarkRead(c.Request().Context(), c.Param("id"), actor)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newPresenter(h.tr, c).conversation(view))
}

// Stream handles GET /v1/conversations/:id/ws. The token may be passed as
// ?access_token= because browsers cannot set headers on websocket upgrades.
//
// @Summary      Live message stream (websocket)
// @Tags         chat
// @Param        id            path   string  true   "Conversation id"
// @Param        access_token  query  string  false  "JWT when no Authorization header can be sent"
// @Success      101
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /v1/conversations/{id}/ws [get]
func (h *ChatHandler) Stream(c echo.Context) error {
	if h.streamer == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "live updates are disabled")
	}
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	view, err := h.service.GetConversation(c.Request().Context(), c.Param("id"), actor)
	if err != nil {
		return err
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// The upgrader has already written the HTTP error.
		return nil
	}
	h.streamer.Serve(c.Request().Context(), conn, view.Conversation.ID)
	return nil
}

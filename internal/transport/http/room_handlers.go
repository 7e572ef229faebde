package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/kumpulhq/kumpul-server/internal/media"
	"github.com/kumpulhq/kumpul-server/internal/store"
)

// recentMessagesLimit caps how much chat history the room detail view loads.
const recentMessagesLimit = 50

// RoomHandlers provides HTTP handlers for room management endpoints.
type RoomHandlers struct {
	store store.Store
	media media.Engine
	log   *zerolog.Logger
}

// NewRoomHandlers creates a new room handlers instance.
func NewRoomHandlers(st store.Store, engine media.Engine, logger *zerolog.Logger) *RoomHandlers {
	return &RoomHandlers{
		store: st,
		media: engine,
		log:   logger,
	}
}

// CreateRoomRequest represents the create room request body.
type CreateRoomRequest struct {
	Title string `json:"title" binding:"required,min=1,max=128"`
}

// RoomResponse represents a room in API responses.
type RoomResponse struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	HostID      string `json:"hostId"`
	MediaRoomID string `json:"mediaRoomId,omitempty"`
	CreatedAt   string `json:"createdAt"`
}

// MessageResponse represents a chat message in room detail views.
type MessageResponse struct {
	ID        string     `json:"id"`
	RoomID    string     `json:"roomId"`
	Text      string     `json:"text"`
	Author    AuthorInfo `json:"author"`
	CreatedAt string     `json:"createdAt"`
}

// AuthorInfo identifies a message author.
type AuthorInfo struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// RoomDetailResponse is the room detail view: the room, its host, the most
// recent chat history, and how to join the media backend if one is set up.
type RoomDetailResponse struct {
	Room     RoomResponse      `json:"room"`
	Host     *UserResponse     `json:"host,omitempty"`
	Messages []MessageResponse `json:"messages"`
	Media    *media.JoinInfo   `json:"media,omitempty"`
}

func roomResponse(r *store.Room) RoomResponse {
	return RoomResponse{
		ID:          r.ID,
		Title:       r.Title,
		HostID:      r.HostID,
		MediaRoomID: r.MediaRoomID,
		CreatedAt:   r.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
}

// CreateRoom handles room creation. The caller becomes the host. When a
// media backend is configured the room is provisioned there first.
// POST /api/rooms
func (h *RoomHandlers) CreateRoom(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "unauthorized"})
		return
	}

	var req CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid create room request")
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid request body"})
		return
	}

	mediaRoomID, err := h.media.ProvisionRoom(c.Request.Context(), uuid.NewString())
	if err != nil {
		h.log.Error().Err(err).Str("title", req.Title).Msg("failed to provision media room")
		c.JSON(http.StatusBadGateway, ErrorResponse{Message: "media backend unavailable"})
		return
	}

	room, err := h.store.CreateRoom(c.Request.Context(), req.Title, userID, mediaRoomID)
	if err != nil {
		h.log.Error().Err(err).Str("title", req.Title).Msg("failed to create room")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "internal server error"})
		return
	}

	h.log.Info().Str("room_id", room.ID).Str("host_id", userID).Msg("room created")
	c.JSON(http.StatusCreated, roomResponse(room))
}

// ListRooms lists all rooms, newest first.
// GET /api/rooms
func (h *RoomHandlers) ListRooms(c *gin.Context) {
	rooms, err := h.store.ListRooms(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list rooms")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "internal server error"})
		return
	}

	out := make([]RoomResponse, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, roomResponse(r))
	}
	c.JSON(http.StatusOK, gin.H{"rooms": out})
}

// GetRoom returns a room with its host, recent chat history, and media
// join info for the caller when the backend supports tokens.
// GET /api/rooms/:id
func (h *RoomHandlers) GetRoom(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "unauthorized"})
		return
	}
	roomID := c.Param("id")

	room, err := h.store.GetRoomByID(c.Request.Context(), roomID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Message: "room not found"})
			return
		}
		h.log.Error().Err(err).Str("room_id", roomID).Msg("failed to load room")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "internal server error"})
		return
	}

	detail := RoomDetailResponse{Room: roomResponse(room), Messages: []MessageResponse{}}

	if host, err := h.store.GetUserByID(c.Request.Context(), room.HostID); err == nil {
		hr := userResponse(host)
		detail.Host = &hr
	}

	messages, err := h.store.ListRecentMessages(c.Request.Context(), roomID, recentMessagesLimit)
	if err != nil {
		h.log.Error().Err(err).Str("room_id", roomID).Msg("failed to load messages")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "internal server error"})
		return
	}
	for _, m := range messages {
		detail.Messages = append(detail.Messages, MessageResponse{
			ID:     m.ID,
			RoomID: m.RoomID,
			Text:   m.Text,
			Author: AuthorInfo{
				ID:    m.UserID,
				Name:  m.AuthorName,
				Email: m.AuthorEmail,
			},
			CreatedAt: m.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		})
	}

	if room.MediaRoomID != "" {
		name, _ := c.Get(ContextKeyUserName)
		displayName, _ := name.(string)
		join, err := h.media.JoinToken(c.Request.Context(), room.MediaRoomID, userID, displayName)
		switch {
		case err == nil:
			detail.Media = join
		case errors.Is(err, media.ErrNotSupported):
			// Backend hands out no tokens; clients join by room id alone.
		default:
			h.log.Warn().Err(err).Str("room_id", roomID).Msg("failed to issue media token")
		}
	}

	c.JSON(http.StatusOK, detail)
}

// DeleteRoom removes a room. Only the host may delete it. The media room
// is torn down best-effort.
// DELETE /api/rooms/:id
func (h *RoomHandlers) DeleteRoom(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "unauthorized"})
		return
	}
	roomID := c.Param("id")

	room, err := h.store.GetRoomByID(c.Request.Context(), roomID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Message: "room not found"})
			return
		}
		h.log.Error().Err(err).Str("room_id", roomID).Msg("failed to load room")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "internal server error"})
		return
	}
	if room.HostID != userID {
		c.JSON(http.StatusForbidden, ErrorResponse{Message: "only host can delete room"})
		return
	}

	if err := h.store.DeleteRoom(c.Request.Context(), roomID); err != nil {
		h.log.Error().Err(err).Str("room_id", roomID).Msg("failed to delete room")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "internal server error"})
		return
	}

	if room.MediaRoomID != "" {
		if err := h.media.DestroyRoom(c.Request.Context(), room.MediaRoomID); err != nil {
			h.log.Warn().Err(err).Str("room_id", roomID).Msg("failed to destroy media room")
		}
	}

	h.log.Info().Str("room_id", roomID).Msg("room deleted")
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

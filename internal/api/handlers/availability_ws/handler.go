package availability_ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/m04kA/HSM-MarketplaceService/internal/api/middleware"
	"github.com/m04kA/HSM-MarketplaceService/internal/service/provider/models"
)

const (
	readLimit          = 4 << 10
	pongWait           = 60 * time.Second
	unavailableTimeout = 5 * time.Second
)

// availabilityMessage сообщение провайдера с его позицией и услугами
type availabilityMessage struct {
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	ServiceIDs []int64 `json:"serviceIds"`
}

// statusMessage ответ сервера на обновление доступности
type statusMessage struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

type Handler struct {
	service  ProviderService
	upgrader websocket.Upgrader
	logger   Logger
}

func NewHandler(service ProviderService, logger Logger) *Handler {
	return &Handler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Мобильные клиенты приходят без заголовка Origin
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger: logger,
	}
}

// Handle GET /api/v1/provider/availability/ws
// Каждое сообщение провайдера обновляет его позицию и набор услуг.
// Закрытие соединения помечает провайдера недоступным.
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	providerID, _ := middleware.UserID(r.Context())

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("GET /provider/availability/ws - Upgrade failed: provider_id=%d, error=%v", providerID, err)
		return
	}
	defer conn.Close()

	h.logger.Info("GET /provider/availability/ws - Connected: provider_id=%d", providerID)

	conn.SetReadLimit(readLimit)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	defer h.markUnavailable(providerID)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Warn("GET /provider/availability/ws - Read error: provider_id=%d, error=%v", providerID, err)
			}
			return
		}

		var msg availabilityMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			h.respond(conn, statusMessage{OK: false, Error: "invalid message"})
			continue
		}

		_, err = h.service.UpdateAvailability(r.Context(), &models.UpdateAvailabilityRequest{
			ProviderID: providerID,
			Latitude:   msg.Latitude,
			Longitude:  msg.Longitude,
			ServiceIDs: msg.ServiceIDs,
		})
		if err != nil {
			h.logger.Warn("GET /provider/availability/ws - Update failed: provider_id=%d, error=%v", providerID, err)
			h.respond(conn, statusMessage{OK: false, Error: "failed to update availability"})
			continue
		}

		h.respond(conn, statusMessage{OK: true})
	}
}

// markUnavailable помечает провайдера недоступным после закрытия соединения.
// Контекст запроса к этому моменту уже отменён, поэтому используется свой.
func (h *Handler) markUnavailable(providerID int64) {
	ctx, cancel := context.WithTimeout(context.Background(), unavailableTimeout)
	defer cancel()

	if err := h.service.SetUnavailable(ctx, providerID); err != nil {
		h.logger.Error("GET /provider/availability/ws - Failed to mark unavailable: provider_id=%d, error=%v",
			providerID, err)
		return
	}

	h.logger.Info("GET /provider/availability/ws - Disconnected: provider_id=%d", providerID)
}

func (h *Handler) respond(conn *websocket.Conn, msg statusMessage) {
	if err := conn.WriteJSON(msg); err != nil {
		h.logger.Warn("GET /provider/availability/ws - Write failed: %v", err)
	}
}

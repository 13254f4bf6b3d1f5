package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/HSM-MarketplaceService/pkg/metrics"
)

// Метрики регистрируются в глобальном registry prometheus,
// поэтому создаются на весь пакет один раз
var testMetrics = metrics.New("test")

func TestMetricsMiddleware_StatusPassthrough(t *testing.T) {
	r := mux.NewRouter()
	r.Use(MetricsMiddleware(testMetrics, "test"))
	r.HandleFunc("/missing", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMetricsMiddleware_WebsocketUpgrade(t *testing.T) {
	r := mux.NewRouter()
	r.Use(MetricsMiddleware(testMetrics, "test"))

	upgrader := websocket.Upgrader{}
	r.HandleFunc("/ws", func(w http.ResponseWriter, req *http.Request) {
		conn, err := upgrader.Upgrade(w, req, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		if msgType, data, err := conn.ReadMessage(); err == nil {
			_ = conn.WriteMessage(msgType, data)
		}
	})

	srv := httptest.NewServer(r)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err, "upgrade must succeed behind the metrics middleware")
	defer conn.Close()

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("ping")))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, "ping", string(data))
}

func TestStatusRecorder_HijackUnsupported(t *testing.T) {
	rec := &statusRecorder{ResponseWriter: httptest.NewRecorder(), status: http.StatusOK}

	_, _, err := rec.Hijack()
	require.Error(t, err)
}

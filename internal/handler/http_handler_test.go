package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/mohitjoer/freelance-chat-service/internal/domain"
	"github.com/mohitjoer/freelance-chat-service/internal/service"
	"github.com/mohitjoer/freelance-chat-service/internal/store"
)

func newHistoryRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()

	history := service.NewHistoryService(store.NewMemoryStore(), nil, 0)
	NewHTTPHandler(history).RegisterRoutes(router)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, APIResponse) {
	t.Helper()
	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var resp APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w, resp
}

func roomFromResponse(t *testing.T, resp APIResponse) domain.Room {
	t.Helper()
	data, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var room domain.Room
	require.NoError(t, json.Unmarshal(data, &room))
	return room
}

func TestGetRoom_CreatesOnFirstTouch(t *testing.T) {
	req := require.New(t)
	router := newHistoryRouter(t)

	w, resp := doJSON(t, router, http.MethodGet, "/api/v1/rooms/job-42", "")
	req.Equal(http.StatusOK, w.Code)
	req.True(resp.Success)

	room := roomFromResponse(t, resp)
	req.Equal("job-42", room.RoomID)
	req.Empty(room.Messages)
}

func TestAppendMessage_ReturnsUpdatedRoom(t *testing.T) {
	req := require.New(t)
	router := newHistoryRouter(t)

	w, resp := doJSON(t, router, http.MethodPost, "/api/v1/rooms/job-42/messages",
		`{"senderId":"u1","role":"client","body":"hello"}`)
	req.Equal(http.StatusOK, w.Code)
	req.True(resp.Success)

	room := roomFromResponse(t, resp)
	req.Len(room.Messages, 1)

	last := room.Messages[len(room.Messages)-1]
	req.Equal("hello", last.Body)
	req.Equal("u1", last.SenderID)
	req.Equal("client", last.Role)
	req.NotEmpty(last.MessageID)
	req.False(last.Timestamp.IsZero())

	// Fetching afterwards shows the appended message as the latest entry.
	w, resp = doJSON(t, router, http.MethodGet, "/api/v1/rooms/job-42", "")
	req.Equal(http.StatusOK, w.Code)
	room = roomFromResponse(t, resp)
	req.Len(room.Messages, 1)
	req.Equal("hello", room.Messages[len(room.Messages)-1].Body)
}

func TestAppendMessage_MissingFieldsRejected(t *testing.T) {
	req := require.New(t)
	router := newHistoryRouter(t)

	w, resp := doJSON(t, router, http.MethodPost, "/api/v1/rooms/job-42/messages",
		`{"senderId":"u1","role":"client"}`)
	req.Equal(http.StatusBadRequest, w.Code)
	req.False(resp.Success)
	req.NotEmpty(resp.Error)
}

func TestAppendMessage_PreservesInsertionOrder(t *testing.T) {
	req := require.New(t)
	router := newHistoryRouter(t)

	for _, body := range []string{"one", "two", "three"} {
		w, _ := doJSON(t, router, http.MethodPost, "/api/v1/rooms/job-42/messages",
			`{"senderId":"u1","role":"client","body":"`+body+`"}`)
		req.Equal(http.StatusOK, w.Code)
	}

	_, resp := doJSON(t, router, http.MethodGet, "/api/v1/rooms/job-42", "")
	room := roomFromResponse(t, resp)
	req.Len(room.Messages, 3)
	req.Equal("one", room.Messages[0].Body)
	req.Equal("two", room.Messages[1].Body)
	req.Equal("three", room.Messages[2].Body)
}

func TestHealthCheck(t *testing.T) {
	req := require.New(t)
	router := newHistoryRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	req.Equal(http.StatusOK, w.Code)
}

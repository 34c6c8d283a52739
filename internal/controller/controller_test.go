package controller

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"discharge-assistant-be/internal/dto"
	"discharge-assistant-be/internal/entity"
	"discharge-assistant-be/internal/pkg/logger"
	"discharge-assistant-be/internal/pkg/serverutils"
	internalWS "discharge-assistant-be/internal/websocket"
	"discharge-assistant-be/pkg/rag"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubChatService struct {
	lastReq *dto.ChatMessageRequest
	reset   string
	err     error
}

func (s *stubChatService) HandleMessage(ctx context.Context, req *dto.ChatMessageRequest) (*dto.ChatMessageResponse, error) {
	s.lastReq = req
	if s.err != nil {
		return nil, s.err
	}
	return &dto.ChatMessageResponse{Response: "Hello!", Agent: entity.AgentReceptionist}, nil
}

func (s *stubChatService) ResetSession(ctx context.Context, sessionId string) (*dto.ResetSessionResponse, error) {
	s.reset = sessionId
	return &dto.ResetSessionResponse{Status: "success", Message: "Session reset successfully"}, nil
}

func (s *stubChatService) GetSession(ctx context.Context, sessionId string) (*dto.GetSessionResponse, error) {
	return &dto.GetSessionResponse{SessionId: sessionId}, nil
}

func (s *stubChatService) Greeting() *dto.GreetingResponse {
	return &dto.GreetingResponse{Greeting: "Hi there"}
}

func (s *stubChatService) ListPatients() *dto.ListPatientsResponse {
	return &dto.ListPatientsResponse{Patients: []*dto.PatientListItem{{Name: "John Smith"}}}
}

type stubAdminService struct {
	operator string
}

func (s *stubAdminService) RequestIngestion(ctx context.Context, req *dto.IngestDocumentRequest, operator string) (*dto.IngestAcceptedResponse, error) {
	s.operator = operator
	return &dto.IngestAcceptedResponse{Status: "accepted", SourcePath: "data/book.pdf"}, nil
}

func (s *stubAdminService) IndexStats(ctx context.Context) (*rag.Stats, error) {
	return &rag.Stats{Collection: "nephrology_docs", State: "populated", Exists: true, Chunks: 3}, nil
}

func newApp(chat *stubChatService, admin *stubAdminService, secret string) *fiber.App {
	log := logger.NewNopLogger()
	app := fiber.New(fiber.Config{ErrorHandler: serverutils.ErrorHandler(log)})
	NewHealthController("Post-Discharge Medical AI Assistant", "1.0.0").RegisterRoutes(app)
	NewChatController(chat, internalWS.NewHub(nil, log)).RegisterRoutes(app)
	NewAdminController(admin, secret).RegisterRoutes(app)
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, body string, header ...string) (*http.Response, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	resp, err := app.Test(req)
	require.NoError(t, err)

	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp, out
}

func TestHealthRoutes(t *testing.T) {
	app := newApp(&stubChatService{}, &stubAdminService{}, "")
	for _, path := range []string{"/", "/api/v1/"} {
		resp, body := doJSON(t, app, "GET", path, "")
		assert.Equal(t, 200, resp.StatusCode)
		assert.Equal(t, "online", body["status"])
		assert.Equal(t, "1.0.0", body["version"])
	}
}

func TestSendMessage(t *testing.T) {
	chat := &stubChatService{}
	app := newApp(chat, &stubAdminService{}, "")

	resp, body := doJSON(t, app, "POST", "/api/v1/chat/message", `{"message":"start","session_id":"abc","patient_name":"John"}`)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "Hello!", body["response"])
	assert.Equal(t, "receptionist", body["agent"])
	assert.Nil(t, body["patient_data"])
	assert.Contains(t, body, "sources")
	require.NotNil(t, chat.lastReq)
	assert.Equal(t, "John", chat.lastReq.PatientName)
}

func TestSendMessageValidation(t *testing.T) {
	chat := &stubChatService{}
	app := newApp(chat, &stubAdminService{}, "")

	resp, body := doJSON(t, app, "POST", "/api/v1/chat/message", `{"message":"   ","session_id":"abc"}`)
	assert.Equal(t, 400, resp.StatusCode)
	assert.Equal(t, serverutils.InvalidPayloadMessage, body["message"])
	assert.Nil(t, chat.lastReq)

	long := strings.Repeat("a", 4001)
	resp, _ = doJSON(t, app, "POST", "/api/v1/chat/message", `{"message":"`+long+`","session_id":"abc"}`)
	assert.Equal(t, 400, resp.StatusCode)

	resp, body = doJSON(t, app, "POST", "/api/v1/chat/message", `{"message":`)
	assert.Equal(t, 400, resp.StatusCode)
	errs := body["errors"].([]interface{})
	assert.Equal(t, "body", errs[0].(map[string]interface{})["field"])
}

func TestSendMessageInternalError(t *testing.T) {
	app := newApp(&stubChatService{err: errors.New("session store down")}, &stubAdminService{}, "")

	resp, body := doJSON(t, app, "POST", "/api/v1/chat/message", `{"message":"hi","session_id":"abc"}`)
	assert.Equal(t, 500, resp.StatusCode)
	assert.Equal(t, serverutils.InternalErrorMessage, body["message"])
}

func TestSessionRoutes(t *testing.T) {
	chat := &stubChatService{}
	app := newApp(chat, &stubAdminService{}, "")

	resp, body := doJSON(t, app, "POST", "/api/v1/chat/session/abc/reset", "")
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "success", body["status"])
	assert.Equal(t, "abc", chat.reset)

	resp, body = doJSON(t, app, "GET", "/api/v1/chat/session/abc", "")
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "abc", body["session_id"])
	assert.Nil(t, body["session"])

	resp, _ = doJSON(t, app, "GET", "/api/v1/chat/session/"+strings.Repeat("x", 129), "")
	assert.Equal(t, 400, resp.StatusCode)
}

func TestGreetingAndPatients(t *testing.T) {
	app := newApp(&stubChatService{}, &stubAdminService{}, "")

	_, body := doJSON(t, app, "GET", "/api/v1/chat/greeting", "")
	assert.Equal(t, "Hi there", body["greeting"])

	_, body = doJSON(t, app, "GET", "/api/v1/chat/patients", "")
	assert.Len(t, body["patients"], 1)
}

func TestWebsocketRouteRejectsPlainHTTP(t *testing.T) {
	app := newApp(&stubChatService{}, &stubAdminService{}, "")
	resp, _ := doJSON(t, app, "GET", "/api/v1/chat/ws/abc", "")
	assert.Equal(t, fiber.StatusUpgradeRequired, resp.StatusCode)
}

func TestAdminRoutes(t *testing.T) {
	admin := &stubAdminService{}
	app := newApp(&stubChatService{}, admin, "s3cret")

	resp, _ := doJSON(t, app, "POST", "/api/v1/admin/ingest", "")
	assert.Equal(t, 401, resp.StatusCode)

	token, err := serverutils.IssueToken("s3cret", "ops", time.Minute)
	require.NoError(t, err)

	resp, body := doJSON(t, app, "POST", "/api/v1/admin/ingest", "", "Authorization", "Bearer "+token)
	assert.Equal(t, 202, resp.StatusCode)
	assert.Equal(t, "ops", admin.operator)
	assert.Equal(t, "accepted", body["data"].(map[string]interface{})["status"])

	resp, body = doJSON(t, app, "GET", "/api/v1/admin/index", "", "Authorization", "Bearer "+token)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "populated", body["data"].(map[string]interface{})["state"])
}

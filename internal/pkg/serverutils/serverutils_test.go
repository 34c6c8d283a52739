package serverutils

import (
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"discharge-assistant-be/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	Message   string `json:"message" validate:"required,notblank,max=10"`
	SessionId string `json:"session_id" validate:"required"`
}

func TestValidateRequest(t *testing.T) {
	assert.NoError(t, ValidateRequest(sampleRequest{Message: "hi", SessionId: "s"}))

	err := ValidateRequest(sampleRequest{Message: "   "})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Errors, 2)
	assert.Equal(t, FieldError{Field: "message", Message: "Field must not be blank"}, verr.Errors[0])
	assert.Equal(t, FieldError{Field: "session_id", Message: "Field required"}, verr.Errors[1])

	err = ValidateRequest(sampleRequest{Message: "this is far too long", SessionId: "s"})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "String should have at most 10 characters", verr.Errors[0].Message)
}

func decode(t *testing.T, body io.Reader) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(body).Decode(&out))
	return out
}

func TestErrorHandler(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(logger.NewNopLogger())})
	app.Get("/validation", func(c *fiber.Ctx) error {
		return &ValidationError{Errors: []FieldError{{Field: "message", Message: "Field required"}}}
	})
	app.Get("/fiber", func(c *fiber.Ctx) error { return fiber.NewError(fiber.StatusNotFound, "nope") })
	app.Get("/boom", func(c *fiber.Ctx) error { return errors.New("db password leaked here") })

	resp, err := app.Test(httptest.NewRequest("GET", "/validation", nil))
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
	body := decode(t, resp.Body)
	assert.Equal(t, InvalidPayloadMessage, body["message"])
	assert.Len(t, body["errors"], 1)

	resp, err = app.Test(httptest.NewRequest("GET", "/fiber", nil))
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/boom", nil))
	require.NoError(t, err)
	assert.Equal(t, 500, resp.StatusCode)
	body = decode(t, resp.Body)
	assert.Equal(t, InternalErrorMessage, body["message"])
	assert.NotContains(t, body, "errors")
}

func TestJwtMiddleware(t *testing.T) {
	app := fiber.New()
	app.Get("/admin", JwtMiddleware("s3cret"), func(c *fiber.Ctx) error {
		return c.SendString(c.Locals("operator").(string))
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/admin", nil))
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)

	token, err := IssueToken("s3cret", "ops", time.Minute)
	require.NoError(t, err)
	req := httptest.NewRequest("GET", "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	b, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "ops", string(b))

	bad, _ := IssueToken("other", "ops", time.Minute)
	req = httptest.NewRequest("GET", "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+bad)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)
}

func TestJwtMiddlewareDisabledWithoutSecret(t *testing.T) {
	app := fiber.New()
	app.Get("/admin", JwtMiddleware(""), func(c *fiber.Ctx) error { return c.SendStatus(200) })

	resp, err := app.Test(httptest.NewRequest("GET", "/admin", nil))
	require.NoError(t, err)
	assert.Equal(t, 503, resp.StatusCode)

	_, err = IssueToken("", "ops", time.Minute)
	assert.Error(t, err)
}

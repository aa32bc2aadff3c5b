package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func newTestContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	return c, w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return resp
}

func TestOK(t *testing.T) {
	c, w := newTestContext()

	OK(c, map[string]string{"domain": "okulum.com"})

	if w.Code != http.StatusOK {
		t.Errorf("status = %d; want 200", w.Code)
	}
	resp := decodeResponse(t, w)
	if resp.Code != CodeSuccess || resp.Message != "success" {
		t.Errorf("unexpected envelope: %+v", resp)
	}
}

func TestOKMsg(t *testing.T) {
	c, w := newTestContext()

	OKMsg(c, "queued", nil)

	resp := decodeResponse(t, w)
	if resp.Message != "queued" {
		t.Errorf("message = %q; want queued", resp.Message)
	}
}

func TestFailErr(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		wantStatus int
		wantCode   int
	}{
		{
			name:       "unauthorized",
			err:        ErrUnauthorized(""),
			wantStatus: http.StatusUnauthorized,
			wantCode:   CodeUnauthorized,
		},
		{
			name:       "param invalid",
			err:        ErrParamInvalid("domain is malformed"),
			wantStatus: http.StatusBadRequest,
			wantCode:   CodeParamInvalid,
		},
		{
			name:       "already exists",
			err:        ErrAlreadyExists("domain is already assigned"),
			wantStatus: http.StatusConflict,
			wantCode:   CodeAlreadyExists,
		},
		{
			name:       "provider error hides internals",
			err:        ErrProviderError("", errors.New("raw provider payload")),
			wantStatus: http.StatusBadGateway,
			wantCode:   CodeProviderError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := newTestContext()
			FailErr(c, tt.err)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d; want %d", w.Code, tt.wantStatus)
			}
			resp := decodeResponse(t, w)
			if resp.Code != tt.wantCode {
				t.Errorf("code = %d; want %d", resp.Code, tt.wantCode)
			}
			if tt.err.Err != nil && resp.Message == tt.err.Err.Error() {
				t.Error("internal error must not leak into the response message")
			}
		})
	}
}

func TestAppErrorWithData(t *testing.T) {
	withData := ErrParamInvalid("bad").WithData(map[string]string{"field": "domain"})
	if withData.Data == nil {
		t.Error("WithData() must attach data")
	}
}

package recovery

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/medrec/portal/internal/domain/account"
)

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func httpStatus(t *testing.T, err error) int {
	t.Helper()
	he, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected *echo.HTTPError, got %v", err)
	}
	return he.Code
}

func TestHandler_RequestLink_UnknownEmail(t *testing.T) {
	h := NewHandler(newTestService(newMockAccountRepo(), &mailRecorder{}))
	e := echo.New()

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/reset_password_request", `{"email":"nobody@example.com"}`), rec)

	if got := httpStatus(t, h.RequestLink(c)); got != http.StatusNotFound {
		t.Errorf("expected 404, got %d", got)
	}
}

func TestHandler_RequestLink(t *testing.T) {
	repo := newMockAccountRepo()
	repo.add("jdoe", "jdoe@example.com", "hash")
	mails := &mailRecorder{}
	h := NewHandler(newTestService(repo, mails))
	e := echo.New()

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/reset_password_request", `{"email":"jdoe@example.com"}`), rec)

	if err := h.RequestLink(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if len(mails.sent) != 1 {
		t.Errorf("expected 1 mail, got %d", len(mails.sent))
	}
	if strings.Contains(rec.Body.String(), ".eyJ") {
		t.Error("response body leaks the reset token")
	}
}

func TestHandler_CheckLink_Invalid(t *testing.T) {
	h := NewHandler(newTestService(newMockAccountRepo(), &mailRecorder{}))
	e := echo.New()

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	c.SetParamNames("token")
	c.SetParamValues("garbage")

	if got := httpStatus(t, h.CheckLink(c)); got != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", got)
	}
}

func TestHandler_RedeemLink(t *testing.T) {
	repo := newMockAccountRepo()
	hash, _ := account.HashPassword("oldsecret")
	a := repo.add("jdoe", "jdoe@example.com", hash)

	svc := newTestService(repo, &mailRecorder{})
	h := NewHandler(svc)
	e := echo.New()

	token, err := svc.tokens.Issue("jdoe@example.com")
	if err != nil {
		t.Fatalf("Issue() error: %v", err)
	}

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/", `{"password":"newsecret"}`), rec)
	c.SetParamNames("token")
	c.SetParamValues(token)

	if err := h.RedeemLink(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if !account.CheckPassword(repo.items[a.ID].PasswordHash, "newsecret") {
		t.Error("password not replaced")
	}
}

func TestHandler_VerifyCode_ErrorStatuses(t *testing.T) {
	repo := newMockAccountRepo()
	repo.add("jdoe", "jdoe@example.com", "hash")
	h := NewHandler(newTestService(repo, &mailRecorder{}))
	e := echo.New()

	// No code pending yet.
	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/verify_reset_code", `{"email":"jdoe@example.com","code":"123456"}`), rec)
	if got := httpStatus(t, h.VerifyCode(c)); got != http.StatusBadRequest {
		t.Errorf("not requested: expected 400, got %d", got)
	}

	// Unknown email.
	rec = httptest.NewRecorder()
	c = e.NewContext(jsonRequest(http.MethodPost, "/verify_reset_code", `{"email":"ghost@example.com","code":"123456"}`), rec)
	if got := httpStatus(t, h.VerifyCode(c)); got != http.StatusNotFound {
		t.Errorf("unknown email: expected 404, got %d", got)
	}
}

package api_test

import (
	"bytes"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/hugh/orgbook/internal/api"
	"github.com/hugh/orgbook/internal/api/handlers"
	"github.com/hugh/orgbook/internal/database/models"
	"github.com/hugh/orgbook/internal/roles"
	"github.com/hugh/orgbook/internal/testutil"
)

func setupAPI(t *testing.T) (*testutil.Services, http.Handler) {
	t.Helper()

	s := testutil.NewServices(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	router := api.NewRouter(api.RouterConfig{
		Logger:        logger,
		JWTService:    s.JWT,
		AuthService:   s.Auth,
		Accounts:      s.Accounts,
		Organizations: s.Organizations,
		Attachments:   s.Attachments,
		Health:        handlers.NewHealthHandler(s.DB),
	})

	return s, router
}

func TestHealthEndpoints(t *testing.T) {
	_, router := setupAPI(t)

	for _, path := range []string{"/health", "/ready"} {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, testutil.UnauthenticatedRequest(t, http.MethodGet, path, nil))
		testutil.AssertStatus(t, rr, http.StatusOK)
	}
}

func TestSignUpLoginFlow(t *testing.T) {
	_, router := setupAPI(t)

	signup := map[string]string{
		"handle":   "newcomer",
		"email":    "newcomer@example.com",
		"password": "Str0ngP@ss!",
	}

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, testutil.UnauthenticatedRequest(t, http.MethodPost, "/api/v1/auth/signup", signup))
	testutil.AssertStatus(t, rr, http.StatusCreated)

	var created models.Account
	testutil.ParseJSONResponse(t, rr, &created)
	if created.Role != roles.User {
		t.Errorf("signup must always create a USER, got %s", created.Role)
	}
	if strings.Contains(rr.Body.String(), "password") {
		t.Error("response body leaks password material")
	}

	// The same handle cannot sign up twice.
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, testutil.UnauthenticatedRequest(t, http.MethodPost, "/api/v1/auth/signup", signup))
	testutil.AssertStatus(t, rr, http.StatusConflict)

	login := map[string]string{"email": signup["email"], "password": signup["password"]}
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, testutil.UnauthenticatedRequest(t, http.MethodPost, "/api/v1/auth/login", login))
	testutil.AssertStatus(t, rr, http.StatusOK)

	var pair map[string]string
	testutil.ParseJSONResponse(t, rr, &pair)
	if pair["access_token"] == "" || pair["refresh_token"] == "" {
		t.Fatal("expected a token pair from login")
	}

	// The refresh token mints a fresh pair.
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, testutil.UnauthenticatedRequest(t, http.MethodPost, "/api/v1/auth/refresh",
		map[string]string{"refresh_token": pair["refresh_token"]}))
	testutil.AssertStatus(t, rr, http.StatusOK)

	login["password"] = "Wr0ngP@ssword"
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, testutil.UnauthenticatedRequest(t, http.MethodPost, "/api/v1/auth/login", login))
	testutil.AssertStatus(t, rr, http.StatusUnauthorized)
}

func TestSignUpValidation(t *testing.T) {
	_, router := setupAPI(t)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, testutil.UnauthenticatedRequest(t, http.MethodPost, "/api/v1/auth/signup", map[string]string{
		"handle":   "x",
		"email":    "not-an-email",
		"password": "weak",
	}))
	testutil.AssertStatus(t, rr, http.StatusBadRequest)

	var resp struct {
		Details map[string]string `json:"details"`
	}
	testutil.ParseJSONResponse(t, rr, &resp)
	for _, field := range []string{"handle", "email", "password"} {
		if resp.Details[field] == "" {
			t.Errorf("expected a validation detail for %s", field)
		}
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	_, router := setupAPI(t)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, testutil.UnauthenticatedRequest(t, http.MethodGet, "/api/v1/accounts/me", nil))
	testutil.AssertStatus(t, rr, http.StatusUnauthorized)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, testutil.AuthenticatedRequest(t, http.MethodGet, "/api/v1/accounts/me", nil, "garbage-token"))
	testutil.AssertStatus(t, rr, http.StatusUnauthorized)
}

func TestMe(t *testing.T) {
	s, router := setupAPI(t)
	account := testutil.CreateTestAccount(t, s.DB, roles.User)
	token := testutil.GenerateTestToken(t, s.JWT, account)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, testutil.AuthenticatedRequest(t, http.MethodGet, "/api/v1/accounts/me", nil, token))
	testutil.AssertStatus(t, rr, http.StatusOK)

	var got models.Account
	testutil.ParseJSONResponse(t, rr, &got)
	if got.ID != account.ID || got.Handle != account.Handle {
		t.Errorf("expected the caller's own account, got id=%d", got.ID)
	}
}

func TestAccountListRoleGate(t *testing.T) {
	s, router := setupAPI(t)
	user := testutil.CreateTestAccount(t, s.DB, roles.User)
	admin := testutil.CreateTestAccount(t, s.DB, roles.Admin)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, testutil.AuthenticatedRequest(t, http.MethodGet, "/api/v1/accounts/", nil,
		testutil.GenerateTestToken(t, s.JWT, user)))
	testutil.AssertStatus(t, rr, http.StatusForbidden)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, testutil.AuthenticatedRequest(t, http.MethodGet, "/api/v1/accounts/?limit=10&page=1", nil,
		testutil.GenerateTestToken(t, s.JWT, admin)))
	testutil.AssertStatus(t, rr, http.StatusOK)

	var list struct {
		List        []models.Account `json:"list"`
		TotalAmount int64            `json:"totalAmount"`
		Limit       int              `json:"limit"`
		Page        int              `json:"page"`
	}
	testutil.ParseJSONResponse(t, rr, &list)
	if list.TotalAmount != 1 || list.Limit != 10 || list.Page != 1 {
		t.Errorf("unexpected envelope: total=%d limit=%d page=%d", list.TotalAmount, list.Limit, list.Page)
	}
}

func TestAccountListInvalidRoleFilter(t *testing.T) {
	s, router := setupAPI(t)
	admin := testutil.CreateTestAccount(t, s.DB, roles.Admin)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, testutil.AuthenticatedRequest(t, http.MethodGet, "/api/v1/accounts/?role=OVERLORD", nil,
		testutil.GenerateTestToken(t, s.JWT, admin)))
	testutil.AssertStatus(t, rr, http.StatusBadRequest)
}

func TestAccountGetHiddenBehindNotFound(t *testing.T) {
	s, router := setupAPI(t)
	user := testutil.CreateTestAccount(t, s.DB, roles.User)
	admin := testutil.CreateTestAccount(t, s.DB, roles.Admin)
	token := testutil.GenerateTestToken(t, s.JWT, user)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, testutil.AuthenticatedRequest(t, http.MethodGet,
		idPath("/api/v1/accounts/", admin.ID), nil, token))
	testutil.AssertStatus(t, rr, http.StatusNotFound)
}

func TestAccountUpdate(t *testing.T) {
	s, router := setupAPI(t)
	user := testutil.CreateTestAccount(t, s.DB, roles.User)
	token := testutil.GenerateTestToken(t, s.JWT, user)
	path := idPath("/api/v1/accounts/", user.ID)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, testutil.AuthenticatedRequest(t, http.MethodPatch, path,
		map[string]string{"handle": "renamed_user"}, token))
	testutil.AssertStatus(t, rr, http.StatusOK)

	var got models.Account
	testutil.ParseJSONResponse(t, rr, &got)
	if got.Handle != "renamed_user" {
		t.Errorf("expected renamed handle, got %s", got.Handle)
	}

	// Role changes are rejected outright.
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, testutil.AuthenticatedRequest(t, http.MethodPatch, path,
		map[string]string{"role": "ADMIN"}, token))
	testutil.AssertStatus(t, rr, http.StatusConflict)
}

func TestAccountDelete(t *testing.T) {
	s, router := setupAPI(t)
	user := testutil.CreateTestAccount(t, s.DB, roles.User)
	admin := testutil.CreateTestAccount(t, s.DB, roles.Admin)
	token := testutil.GenerateTestToken(t, s.JWT, admin)
	path := idPath("/api/v1/accounts/", user.ID)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, testutil.AuthenticatedRequest(t, http.MethodDelete, path, nil, token))
	testutil.AssertStatus(t, rr, http.StatusOK)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, testutil.AuthenticatedRequest(t, http.MethodGet, path, nil, token))
	testutil.AssertStatus(t, rr, http.StatusNotFound)
}

func TestOrganizationLifecycle(t *testing.T) {
	s, router := setupAPI(t)
	user := testutil.CreateTestAccount(t, s.DB, roles.User)
	token := testutil.GenerateTestToken(t, s.JWT, user)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, testutil.AuthenticatedRequest(t, http.MethodPost, "/api/v1/organizations/", map[string]interface{}{
		"title":   "Harbor Trading",
		"service": "Shipping",
		"address": "5 Quay Lane",
		"capital": 12000,
	}, token))
	testutil.AssertStatus(t, rr, http.StatusCreated)

	var org models.Organization
	testutil.ParseJSONResponse(t, rr, &org)
	if org.AccountID != user.ID {
		t.Errorf("expected the caller as owner, got %d", org.AccountID)
	}
	path := idPath("/api/v1/organizations/", org.ID)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, testutil.AuthenticatedRequest(t, http.MethodGet, path, nil, token))
	testutil.AssertStatus(t, rr, http.StatusOK)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, testutil.AuthenticatedRequest(t, http.MethodPatch, path,
		map[string]interface{}{"capital": 15000}, token))
	testutil.AssertStatus(t, rr, http.StatusOK)

	var updated models.Organization
	testutil.ParseJSONResponse(t, rr, &updated)
	if updated.Capital != 15000 {
		t.Errorf("expected capital 15000, got %d", updated.Capital)
	}

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, testutil.AuthenticatedRequest(t, http.MethodDelete, path, nil, token))
	testutil.AssertStatus(t, rr, http.StatusOK)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, testutil.AuthenticatedRequest(t, http.MethodGet, path, nil, token))
	testutil.AssertStatus(t, rr, http.StatusNotFound)
}

func TestOrganizationListIsolation(t *testing.T) {
	s, router := setupAPI(t)
	alice := testutil.CreateTestAccount(t, s.DB, roles.User)
	bob := testutil.CreateTestAccount(t, s.DB, roles.User)
	testutil.CreateTestOrganization(t, s.DB, alice)
	testutil.CreateTestOrganization(t, s.DB, bob)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, testutil.AuthenticatedRequest(t, http.MethodGet, "/api/v1/organizations/", nil,
		testutil.GenerateTestToken(t, s.JWT, alice)))
	testutil.AssertStatus(t, rr, http.StatusOK)

	var list struct {
		List        []models.Organization `json:"list"`
		TotalAmount int64                 `json:"totalAmount"`
	}
	testutil.ParseJSONResponse(t, rr, &list)
	if list.TotalAmount != 1 {
		t.Errorf("expected only the caller's organization, got %d", list.TotalAmount)
	}
}

func TestAttachmentUploadAndServe(t *testing.T) {
	s, router := setupAPI(t)
	user := testutil.CreateTestAccount(t, s.DB, roles.User)
	org := testutil.CreateTestOrganization(t, s.DB, user)
	token := testutil.GenerateTestToken(t, s.JWT, user)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "logo.png")
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	if _, err := part.Write([]byte("png-bytes")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	req := httptest.NewRequest(http.MethodPatch, idPath("/api/v1/organizations/", org.ID), &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	testutil.AssertStatus(t, rr, http.StatusOK)

	var updated models.Organization
	testutil.ParseJSONResponse(t, rr, &updated)
	if updated.Attachment == nil {
		t.Fatal("expected an attachment after the multipart update")
	}

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, testutil.AuthenticatedRequest(t, http.MethodGet,
		idPath("/api/v1/attachments/", updated.Attachment.ID), nil, token))
	testutil.AssertStatus(t, rr, http.StatusOK)
	if rr.Body.String() != "png-bytes" {
		t.Errorf("served payload does not match the upload: %q", rr.Body.String())
	}

	// Clearing via the JSON sentinel removes the attachment for good.
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, testutil.AuthenticatedRequest(t, http.MethodPatch,
		idPath("/api/v1/organizations/", org.ID), map[string]string{"file": "null"}, token))
	testutil.AssertStatus(t, rr, http.StatusOK)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, testutil.AuthenticatedRequest(t, http.MethodGet,
		idPath("/api/v1/attachments/", updated.Attachment.ID), nil, token))
	testutil.AssertStatus(t, rr, http.StatusNotFound)
}

func idPath(prefix string, id uint) string {
	return prefix + strconv.FormatUint(uint64(id), 10)
}

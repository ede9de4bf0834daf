package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hugh/orgbook/internal/accounts"
	"github.com/hugh/orgbook/internal/attachments"
	"github.com/hugh/orgbook/internal/auth"
	"github.com/hugh/orgbook/internal/database/models"
	"github.com/hugh/orgbook/internal/organizations"
	"github.com/hugh/orgbook/internal/roles"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DefaultPassword is the plaintext behind every fixture account's hash.
const DefaultPassword = "Str0ngP@ss!"

var seq uint64

// SetupTestDB creates an in-memory SQLite database for testing
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	err = db.AutoMigrate(
		&models.Account{},
		&models.Organization{},
		&models.Attachment{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			sqlDB.Close()
		}
	})

	return db
}

// NewHasher returns a bcrypt hasher at minimum cost to keep tests fast.
func NewHasher() *auth.Hasher {
	return auth.NewHasher(bcrypt.MinCost)
}

// NewJWTService creates a JWT service for testing
func NewJWTService() *auth.JWTService {
	return auth.NewJWTService("test-secret-key-for-testing", 24*time.Hour, 7*24*time.Hour)
}

// Services is the fully wired registry pair plus their collaborators.
type Services struct {
	DB            *gorm.DB
	JWT           *auth.JWTService
	Hasher        *auth.Hasher
	Auth          *auth.Service
	Attachments   *attachments.Store
	Accounts      *accounts.Service
	Organizations *organizations.Service
}

// NewServices builds the registries against a fresh test database, bound the
// same way the server wires them.
func NewServices(t *testing.T) *Services {
	t.Helper()

	db := SetupTestDB(t)
	jwtService := NewJWTService()
	hasher := NewHasher()
	store := attachments.NewStore(db)
	accountService := accounts.NewService(db, hasher, store)
	organizationService := organizations.NewService(db, accountService, store)
	accountService.BindOrganizations(organizationService)

	return &Services{
		DB:            db,
		JWT:           jwtService,
		Hasher:        hasher,
		Auth:          auth.NewService(db, jwtService, hasher),
		Attachments:   store,
		Accounts:      accountService,
		Organizations: organizationService,
	}
}

// CreateTestAccount inserts an account with the given role and a unique
// handle/email, with DefaultPassword behind the hash.
func CreateTestAccount(t *testing.T, db *gorm.DB, role roles.Role) *models.Account {
	t.Helper()

	n := atomic.AddUint64(&seq, 1)
	hash, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	account := &models.Account{
		Handle:       fmt.Sprintf("account_%d", n),
		Email:        fmt.Sprintf("account-%d@example.com", n),
		PasswordHash: string(hash),
		Role:         role,
	}

	if err := db.Create(account).Error; err != nil {
		t.Fatalf("failed to create test account: %v", err)
	}

	return account
}

// CreateTestOrganization inserts an organization owned by the given account.
func CreateTestOrganization(t *testing.T, db *gorm.DB, owner *models.Account) *models.Organization {
	t.Helper()

	n := atomic.AddUint64(&seq, 1)
	org := &models.Organization{
		Title:     fmt.Sprintf("Org %d", n),
		Service:   "Consulting",
		Address:   "1 Main St",
		Capital:   1000,
		AccountID: owner.ID,
	}

	if err := db.Create(org).Error; err != nil {
		t.Fatalf("failed to create test organization: %v", err)
	}

	return org
}

// CreateTestAttachment inserts an attachment linked to the given owner.
func CreateTestAttachment(t *testing.T, db *gorm.DB, ownerType string, ownerID uint) *models.Attachment {
	t.Helper()

	attachment := &models.Attachment{
		Data:      []byte("payload"),
		MimeType:  "image/png",
		OwnerType: ownerType,
		OwnerID:   ownerID,
	}

	if err := db.Create(attachment).Error; err != nil {
		t.Fatalf("failed to create test attachment: %v", err)
	}

	return attachment
}

// GenerateTestToken generates a valid JWT token for the given account
func GenerateTestToken(t *testing.T, jwtService *auth.JWTService, account *models.Account) string {
	t.Helper()

	token, err := jwtService.GenerateToken(account.ID, account.Email, account.Role)
	if err != nil {
		t.Fatalf("failed to generate test token: %v", err)
	}

	return token
}

// AuthenticatedRequest creates an HTTP request with authentication
func AuthenticatedRequest(t *testing.T, method, path string, body interface{}, token string) *http.Request {
	t.Helper()

	var reqBody *bytes.Buffer
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return req
}

// UnauthenticatedRequest creates an HTTP request without authentication
func UnauthenticatedRequest(t *testing.T, method, path string, body interface{}) *http.Request {
	t.Helper()
	return AuthenticatedRequest(t, method, path, body, "")
}

// AssertStatus checks if the response has the expected status code
func AssertStatus(t *testing.T, rr *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if rr.Code != expected {
		t.Errorf("expected status %d, got %d. Body: %s", expected, rr.Code, rr.Body.String())
	}
}

// ParseJSONResponse parses the response body into the given struct
func ParseJSONResponse(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()

	if err := json.Unmarshal(rr.Body.Bytes(), v); err != nil {
		t.Fatalf("failed to parse response body: %v. Body: %s", err, rr.Body.String())
	}
}

// TestContext creates a context with a timeout for tests
func TestContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return ctx
}

package query_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/hugh/orgbook/internal/database/models"
	"github.com/hugh/orgbook/internal/query"
	"github.com/hugh/orgbook/internal/roles"
	"github.com/hugh/orgbook/internal/testutil"
	"gorm.io/gorm"
)

func seedAccounts(t *testing.T, db *gorm.DB, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		account := models.Account{
			Handle:       fmt.Sprintf("pager_%02d", i),
			Email:        fmt.Sprintf("pager-%02d@example.com", i),
			PasswordHash: "x",
			Role:         roles.User,
		}
		if err := db.Create(&account).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
}

func TestPaginate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	seedAccounts(t, db, 25)

	var page []models.Account
	total, err := query.Paginate(
		db.Model(&models.Account{}).Order("id ASC"),
		query.Pagination{Limit: 10, Page: 2},
		&page,
	)
	if err != nil {
		t.Fatalf("Paginate: %v", err)
	}

	if total != 25 {
		t.Errorf("expected total 25, got %d", total)
	}
	if len(page) != 10 {
		t.Fatalf("expected 10 rows, got %d", len(page))
	}
	if page[0].Handle != "pager_10" || page[9].Handle != "pager_19" {
		t.Errorf("expected rows 11-20, got %s..%s", page[0].Handle, page[9].Handle)
	}
}

func TestPaginateLastPartialPage(t *testing.T) {
	db := testutil.SetupTestDB(t)
	seedAccounts(t, db, 25)

	var page []models.Account
	total, err := query.Paginate(
		db.Model(&models.Account{}).Order("id ASC"),
		query.Pagination{Limit: 10, Page: 3},
		&page,
	)
	if err != nil {
		t.Fatalf("Paginate: %v", err)
	}

	if total != 25 {
		t.Errorf("expected total 25, got %d", total)
	}
	if len(page) != 5 {
		t.Errorf("expected 5 rows on the last page, got %d", len(page))
	}
}

func TestPaginateNoLimit(t *testing.T) {
	db := testutil.SetupTestDB(t)
	seedAccounts(t, db, 7)

	var page []models.Account
	total, err := query.Paginate(db.Model(&models.Account{}), query.Pagination{}, &page)
	if err != nil {
		t.Fatalf("Paginate: %v", err)
	}

	if total != 7 || len(page) != 7 {
		t.Errorf("expected all 7 rows, got total=%d len=%d", total, len(page))
	}
}

func TestContainsFold(t *testing.T) {
	db := testutil.SetupTestDB(t)
	for i, handle := range []string{"Alice", "alberto", "bob"} {
		account := models.Account{
			Handle:       handle,
			Email:        fmt.Sprintf("fold-%d@example.com", i),
			PasswordHash: "x",
			Role:         roles.User,
		}
		if err := db.Create(&account).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	var matches []models.Account
	q := query.ContainsFold(db.Model(&models.Account{}), "AL", "handle", "email")
	if err := q.Find(&matches).Error; err != nil {
		t.Fatalf("Find: %v", err)
	}

	if len(matches) != 2 {
		t.Errorf("expected 2 case-insensitive matches, got %d", len(matches))
	}
}

func TestContainsFoldMatchesAnyColumn(t *testing.T) {
	db := testutil.SetupTestDB(t)
	account := models.Account{
		Handle:       "plainhandle",
		Email:        "needle@example.com",
		PasswordHash: "x",
		Role:         roles.User,
	}
	if err := db.Create(&account).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	var matches []models.Account
	q := query.ContainsFold(db.Model(&models.Account{}), "needle", "handle", "email")
	if err := q.Find(&matches).Error; err != nil {
		t.Fatalf("Find: %v", err)
	}

	if len(matches) != 1 {
		t.Errorf("expected match on email column, got %d rows", len(matches))
	}
}

func TestDatePrefix(t *testing.T) {
	db := testutil.SetupTestDB(t)
	seedAccounts(t, db, 3)

	today := time.Now().Format("2006-01-02")

	var matches []models.Account
	q := query.DatePrefix(db.Model(&models.Account{}), "accounts.created_at", today)
	if err := q.Find(&matches).Error; err != nil {
		t.Fatalf("Find: %v", err)
	}
	if len(matches) != 3 {
		t.Errorf("expected all 3 rows created today, got %d", len(matches))
	}

	matches = nil
	q = query.DatePrefix(db.Model(&models.Account{}), "accounts.created_at", "1999-01-01")
	if err := q.Find(&matches).Error; err != nil {
		t.Fatalf("Find: %v", err)
	}
	if len(matches) != 0 {
		t.Errorf("expected no rows for an old date, got %d", len(matches))
	}
}

func TestMinMaxInt(t *testing.T) {
	db := testutil.SetupTestDB(t)
	owner := testutil.CreateTestAccount(t, db, roles.User)
	for i, capital := range []int{100, 500, 1000} {
		org := models.Organization{
			Title:     fmt.Sprintf("Capital Org %d", i),
			Service:   "Finance",
			Address:   "1 Main St",
			Capital:   capital,
			AccountID: owner.ID,
		}
		if err := db.Create(&org).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	var orgs []models.Organization
	q := db.Model(&models.Organization{})
	q = query.MinInt(q, "capital", 200)
	q = query.MaxInt(q, "capital", 800)
	if err := q.Find(&orgs).Error; err != nil {
		t.Fatalf("Find: %v", err)
	}

	if len(orgs) != 1 || orgs[0].Capital != 500 {
		t.Errorf("expected only the 500 capital row, got %d rows", len(orgs))
	}
}

func TestParseDirection(t *testing.T) {
	tests := []struct {
		input string
		want  query.Direction
		ok    bool
	}{
		{"ASC", query.Asc, true},
		{"asc", query.Asc, true},
		{"DESC", query.Desc, true},
		{"desc", query.Desc, true},
		{"", "", false},
		{"sideways", "", false},
	}

	for _, tt := range tests {
		got, ok := query.ParseDirection(tt.input)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseDirection(%q) = (%q, %v), want (%q, %v)", tt.input, got, ok, tt.want, tt.ok)
		}
	}
}

func TestPaginationOffset(t *testing.T) {
	tests := []struct {
		limit, page, want int
	}{
		{10, 1, 0},
		{10, 2, 10},
		{10, 3, 20},
		{10, 0, 0},
		{0, 5, 0},
	}

	for _, tt := range tests {
		p := query.Pagination{Limit: tt.limit, Page: tt.page}
		if got := p.Offset(); got != tt.want {
			t.Errorf("Offset(limit=%d, page=%d) = %d, want %d", tt.limit, tt.page, got, tt.want)
		}
	}
}

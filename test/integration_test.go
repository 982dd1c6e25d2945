//go:build integration

package test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"tableside/internal/auth"
	"tableside/internal/domain"
	"tableside/internal/menu"
	"tableside/internal/orders"
	"tableside/internal/reservations"
	"tableside/internal/shortener"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func seedUser(ctx context.Context, t *testing.T, repo *auth.UserRepository, username string) domain.User {
	t.Helper()

	user, err := repo.Create(ctx, username, username+"@example.com", "not-a-real-hash")
	if err != nil {
		t.Fatalf("failed to seed user %s: %v", username, err)
	}
	return user
}

func seedMenuItem(ctx context.Context, t *testing.T, repo *menu.MenuRepository, name, price string, stock int) domain.MenuItem {
	t.Helper()

	item, err := repo.Create(ctx, domain.MenuItem{
		Name:  name,
		Price: decimal.RequireFromString(price),
		Stock: stock,
	})
	if err != nil {
		t.Fatalf("failed to seed menu item %s: %v", name, err)
	}
	return item
}

func currentStock(ctx context.Context, t *testing.T, repo *menu.MenuRepository, itemID string) int {
	t.Helper()

	item, err := repo.GetByID(ctx, itemID)
	if err != nil {
		t.Fatalf("failed to fetch menu item %s: %v", itemID, err)
	}
	return item.Stock
}

func TestPlaceOrderFlow(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pg := SetupPostgres(ctx, t)
	defer pg.Cleanup()

	db, err := DBWithSchema(pg.ConnStr, "restaurant")
	if err != nil {
		t.Fatalf("failed to open restaurant DB: %v", err)
	}
	defer func() { _ = db.Close() }()

	logger := discardLogger()
	userRepo := auth.NewUserRepository(db)
	menuRepo := menu.NewMenuRepository(db)
	ledger := orders.NewLedger(db)
	orderRepo := orders.NewOrderRepository(db)
	handler := orders.NewHandler(ledger, orderRepo, nil, logger)

	user := seedUser(ctx, t, userRepo, "alice")
	burger := seedMenuItem(ctx, t, menuRepo, "Burger", "8.00", 10)

	reqBody := fmt.Sprintf(`{"user_id": %q, "items": [{"menu_item_id": %q, "quantity": 3}]}`, user.ID, burger.ID)
	req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	handler.HandlePlace(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
	}

	var resp struct {
		OrderID string          `json:"order_id"`
		Total   decimal.Decimal `json:"total"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if resp.OrderID == "" {
		t.Fatal("expected order_id to be set")
	}
	if want := decimal.RequireFromString("24.00"); !resp.Total.Equal(want) {
		t.Fatalf("expected total %s, got %s", want, resp.Total)
	}

	if got := currentStock(ctx, t, menuRepo, burger.ID); got != 7 {
		t.Fatalf("expected stock 7 after order, got %d", got)
	}

	order, err := orderRepo.GetByID(ctx, resp.OrderID)
	if err != nil {
		t.Fatalf("failed to fetch order: %v", err)
	}
	if len(order.Items) != 1 {
		t.Fatalf("expected 1 line item, got %d", len(order.Items))
	}
	line := order.Items[0]
	if line.Quantity != 3 {
		t.Fatalf("expected quantity 3, got %d", line.Quantity)
	}
	if want := decimal.RequireFromString("8.00"); !line.UnitPrice.Equal(want) {
		t.Fatalf("expected unit price %s, got %s", want, line.UnitPrice)
	}
	if !line.Subtotal.Equal(order.Total) {
		t.Fatalf("expected subtotal %s to equal total %s", line.Subtotal, order.Total)
	}
}

func TestPlaceOrderRollsBackWhenAnyLineFails(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pg := SetupPostgres(ctx, t)
	defer pg.Cleanup()

	db, err := DBWithSchema(pg.ConnStr, "restaurant")
	if err != nil {
		t.Fatalf("failed to open restaurant DB: %v", err)
	}
	defer func() { _ = db.Close() }()

	userRepo := auth.NewUserRepository(db)
	menuRepo := menu.NewMenuRepository(db)
	ledger := orders.NewLedger(db)

	user := seedUser(ctx, t, userRepo, "bob")
	pizza := seedMenuItem(ctx, t, menuRepo, "Pizza", "12.50", 20)
	salad := seedMenuItem(ctx, t, menuRepo, "Salad", "6.00", 1)

	_, err = ledger.PlaceOrder(ctx, user.ID, []domain.CartLine{
		{MenuItemID: pizza.ID, Quantity: 2},
		{MenuItemID: salad.ID, Quantity: 5},
	})
	if err == nil {
		t.Fatal("expected placement to fail on under-stocked line")
	}
	if domain.KindOf(err) != domain.KindConflict {
		t.Fatalf("expected conflict kind, got %v (%v)", domain.KindOf(err), err)
	}

	if got := currentStock(ctx, t, menuRepo, pizza.ID); got != 20 {
		t.Fatalf("expected pizza stock untouched at 20, got %d", got)
	}
	if got := currentStock(ctx, t, menuRepo, salad.ID); got != 1 {
		t.Fatalf("expected salad stock untouched at 1, got %d", got)
	}

	var orderCount int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM orders").Scan(&orderCount); err != nil {
		t.Fatalf("failed to count orders: %v", err)
	}
	if orderCount != 0 {
		t.Fatalf("expected no persisted orders, got %d", orderCount)
	}
}

func TestConcurrentOrdersNeverOversell(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pg := SetupPostgres(ctx, t)
	defer pg.Cleanup()

	db, err := DBWithSchema(pg.ConnStr, "restaurant")
	if err != nil {
		t.Fatalf("failed to open restaurant DB: %v", err)
	}
	defer func() { _ = db.Close() }()

	logger := discardLogger()
	userRepo := auth.NewUserRepository(db)
	menuRepo := menu.NewMenuRepository(db)
	ledger := orders.NewLedger(db)
	orderRepo := orders.NewOrderRepository(db)
	handler := orders.NewHandler(ledger, orderRepo, nil, logger)

	user := seedUser(ctx, t, userRepo, "carol")
	item := seedMenuItem(ctx, t, menuRepo, "Ramen", "11.00", 5)

	var wg sync.WaitGroup
	codes := make([]int, 2)
	start := make(chan struct{})

	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start

			reqBody := fmt.Sprintf(`{"user_id": %q, "items": [{"menu_item_id": %q, "quantity": 3}]}`, user.ID, item.ID)
			req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(reqBody))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			handler.HandlePlace(rec, req)
			codes[i] = rec.Code
		}(i)
	}

	close(start)
	wg.Wait()

	created, conflicted := 0, 0
	for _, code := range codes {
		switch code {
		case http.StatusCreated:
			created++
		case http.StatusConflict:
			conflicted++
		default:
			t.Fatalf("unexpected status code %d", code)
		}
	}
	if created != 1 || conflicted != 1 {
		t.Fatalf("expected exactly one success and one conflict, got %d created and %d conflicted", created, conflicted)
	}

	if got := currentStock(ctx, t, menuRepo, item.ID); got != 2 {
		t.Fatalf("expected final stock 2, got %d", got)
	}
}

func TestPlaceOrderIsNotIdempotent(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pg := SetupPostgres(ctx, t)
	defer pg.Cleanup()

	db, err := DBWithSchema(pg.ConnStr, "restaurant")
	if err != nil {
		t.Fatalf("failed to open restaurant DB: %v", err)
	}
	defer func() { _ = db.Close() }()

	userRepo := auth.NewUserRepository(db)
	menuRepo := menu.NewMenuRepository(db)
	ledger := orders.NewLedger(db)

	user := seedUser(ctx, t, userRepo, "dave")
	item := seedMenuItem(ctx, t, menuRepo, "Tacos", "4.50", 10)

	cart := []domain.CartLine{{MenuItemID: item.ID, Quantity: 2}}

	first, err := ledger.PlaceOrder(ctx, user.ID, cart)
	if err != nil {
		t.Fatalf("first placement failed: %v", err)
	}
	second, err := ledger.PlaceOrder(ctx, user.ID, cart)
	if err != nil {
		t.Fatalf("second placement failed: %v", err)
	}

	if first.Order.ID == second.Order.ID {
		t.Fatal("expected distinct order ids for repeated identical carts")
	}
	if got := currentStock(ctx, t, menuRepo, item.ID); got != 6 {
		t.Fatalf("expected stock deducted twice down to 6, got %d", got)
	}
}

func TestConcurrentReservationsSingleWinner(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pg := SetupPostgres(ctx, t)
	defer pg.Cleanup()

	db, err := DBWithSchema(pg.ConnStr, "restaurant")
	if err != nil {
		t.Fatalf("failed to open restaurant DB: %v", err)
	}
	defer func() { _ = db.Close() }()

	logger := discardLogger()
	userRepo := auth.NewUserRepository(db)
	resRepo := reservations.NewReservationRepository(db)
	handler := reservations.NewHandler(resRepo, nil, logger)

	userA := seedUser(ctx, t, userRepo, "erin")
	userB := seedUser(ctx, t, userRepo, "frank")

	table, err := resRepo.CreateTable(ctx, 7, 4)
	if err != nil {
		t.Fatalf("failed to create table: %v", err)
	}

	slot := time.Date(2026, 9, 12, 19, 0, 0, 0, time.UTC)

	var wg sync.WaitGroup
	codes := make([]int, 2)
	start := make(chan struct{})

	for i, userID := range []string{userA.ID, userB.ID} {
		wg.Add(1)
		go func(i int, userID string) {
			defer wg.Done()
			<-start

			reqBody := fmt.Sprintf(`{"user_id": %q, "table_id": %q, "reserved_at": %q}`,
				userID, table.ID, slot.Format(time.RFC3339))
			req := httptest.NewRequest(http.MethodPost, "/reservations", strings.NewReader(reqBody))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			handler.HandleReserve(rec, req)
			codes[i] = rec.Code
		}(i, userID)
	}

	close(start)
	wg.Wait()

	created, conflicted := 0, 0
	for _, code := range codes {
		switch code {
		case http.StatusCreated:
			created++
		case http.StatusConflict:
			conflicted++
		default:
			t.Fatalf("unexpected status code %d", code)
		}
	}
	if created != 1 || conflicted != 1 {
		t.Fatalf("expected exactly one success and one conflict, got %d created and %d conflicted", created, conflicted)
	}

	booked, err := resRepo.ListByTable(ctx, table.ID)
	if err != nil {
		t.Fatalf("failed to list reservations: %v", err)
	}
	if len(booked) != 1 {
		t.Fatalf("expected exactly one persisted reservation, got %d", len(booked))
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pg := SetupPostgres(ctx, t)
	defer pg.Cleanup()

	db, err := DBWithSchema(pg.ConnStr, "restaurant")
	if err != nil {
		t.Fatalf("failed to open restaurant DB: %v", err)
	}
	defer func() { _ = db.Close() }()

	handler := auth.NewHandler(auth.NewUserRepository(db), discardLogger())

	register := func() *httptest.ResponseRecorder {
		reqBody := `{"username": "grace", "email": "grace@example.com", "password": "hunter2hunter2"}`
		req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(reqBody))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		handler.HandleRegister(rec, req)
		return rec
	}

	if rec := register(); rec.Code != http.StatusCreated {
		t.Fatalf("expected first registration to succeed, got %d: %s", rec.Code, rec.Body.String())
	}
	if rec := register(); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected duplicate username to be rejected with %d, got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestShortenerRedirectCountsHits(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pg := SetupPostgres(ctx, t)
	defer pg.Cleanup()

	db, err := DBWithSchema(pg.ConnStr, "shortener")
	if err != nil {
		t.Fatalf("failed to open shortener DB: %v", err)
	}
	defer func() { _ = db.Close() }()

	repo := shortener.NewLinkRepository(db)
	handler := shortener.NewHandler(repo, "http://short.local", discardLogger())

	reqBody := `{"url": "https://example.com/menu"}`
	req := httptest.NewRequest(http.MethodPost, "/links", strings.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.HandleShorten(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
	}

	var created struct {
		Code     string `json:"code"`
		ShortURL string `json:"short_url"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if created.Code == "" {
		t.Fatal("expected a short code")
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{code}", handler.HandleRedirect)

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/"+created.Code, nil)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusFound {
			t.Fatalf("expected status %d, got %d", http.StatusFound, rec.Code)
		}
		if loc := rec.Header().Get("Location"); loc != "https://example.com/menu" {
			t.Fatalf("unexpected redirect target: %s", loc)
		}
	}

	link, err := repo.Get(ctx, created.Code)
	if err != nil {
		t.Fatalf("failed to fetch link: %v", err)
	}
	if link.Hits != 2 {
		t.Fatalf("expected 2 hits, got %d", link.Hits)
	}
}

func TestKafkaConnection(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	brokers, cleanup := SetupKafka(ctx, t)
	defer cleanup()

	if len(brokers) == 0 {
		t.Fatal("expected at least one broker")
	}
}

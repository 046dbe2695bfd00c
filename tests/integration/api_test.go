package integration

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	httpHandler "donut-trade-backend/internal/adapter/http/handler"
	redisStorage "donut-trade-backend/internal/adapter/storage/redis"
	"donut-trade-backend/internal/core/domain"
	"donut-trade-backend/internal/service"
	"donut-trade-backend/pkg/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testApp builds a full application stack with in-memory repos and miniredis.
// This exercises the real HTTP layer, middleware, handlers, services, and
// Redis stores end-to-end; only PostgreSQL is substituted.

type testApp struct {
	server      *httptest.Server
	redis       *miniredis.Miniredis
	accountRepo *inMemoryAccountRepo
	tokenSvc    *service.JWTTokenService
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)

	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})

	// Redis stores
	catalogCache := redisStorage.NewCatalogCache(rdb)

	// Core services with real implementations
	hashSvc := service.NewArgon2HashService()
	tokenSvc := service.NewJWTTokenService("test-jwt-secret-key-32bytes!!", 24*time.Hour, "test-issuer")

	// In-memory repos
	accountRepo := newInMemoryAccountRepo()
	listingRepo := newInMemoryListingRepo()
	txRepo := newInMemoryTransactionRepo()
	depositRepo := newInMemoryDepositRepo()
	auditRepo := newInMemoryAuditRepo()
	transactor := newInMemoryTransactor()

	// Business services
	log := logger.New("debug", false)
	ledger := service.NewLedgerService(accountRepo, auditRepo, log)
	authSvc := service.NewAuthService(accountRepo, hashSvc, tokenSvc, log)
	listingSvc := service.NewListingService(listingRepo, transactor, catalogCache, nil, log)
	escrowSvc := service.NewEscrowService(txRepo, listingRepo, ledger, transactor, catalogCache, nil, log)
	depositSvc := service.NewDepositService(depositRepo, ledger, transactor, nil, log)
	reportingSvc := service.NewReportingService(accountRepo, txRepo, auditRepo)

	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		AuthSvc:      authSvc,
		ListingSvc:   listingSvc,
		EscrowSvc:    escrowSvc,
		DepositSvc:   depositSvc,
		ReportingSvc: reportingSvc,
		TokenSvc:     tokenSvc,
		Logger:       log,
	})

	server := httptest.NewServer(router)

	return &testApp{
		server:      server,
		redis:       mr,
		accountRepo: accountRepo,
		tokenSvc:    tokenSvc,
	}
}

func (a *testApp) close() {
	a.server.Close()
	a.redis.Close()
}

// --- Helpers ---

func doJSON(t *testing.T, method, url, token string, body any) (*http.Response, map[string]interface{}) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var parsed map[string]interface{}
	_ = json.NewDecoder(resp.Body).Decode(&parsed)
	return resp, parsed
}

// registerAndLogin creates an account through the API and returns its token
// and account ID.
func registerAndLogin(t *testing.T, app *testApp, username, email string) (token, accountID string) {
	t.Helper()

	resp, body := doJSON(t, http.MethodPost, app.server.URL+"/api/v1/auth/register", "", map[string]string{
		"username": username,
		"email":    email,
		"password": "StrongPass123!",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	accountID = body["data"].(map[string]interface{})["id"].(string)

	resp, body = doJSON(t, http.MethodPost, app.server.URL+"/api/v1/auth/login", "", map[string]string{
		"email":    email,
		"password": "StrongPass123!",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	token = body["data"].(map[string]interface{})["token"].(string)
	return token, accountID
}

// registerAdmin creates an account, promotes it to admin directly in the
// repo, then logs in again so the token carries the admin role.
func registerAdmin(t *testing.T, app *testApp, username, email string) string {
	t.Helper()

	_, accountID := registerAndLogin(t, app, username, email)
	id, err := uuid.Parse(accountID)
	require.NoError(t, err)
	app.accountRepo.setRole(id, domain.AccountRoleAdmin)

	resp, body := doJSON(t, http.MethodPost, app.server.URL+"/api/v1/auth/login", "", map[string]string{
		"email":    email,
		"password": "StrongPass123!",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return body["data"].(map[string]interface{})["token"].(string)
}

// fundAccount runs the deposit workflow end to end: the user requests a
// deposit and an admin approves it.
func fundAccount(t *testing.T, app *testApp, userToken, adminToken string, amount int64) {
	t.Helper()

	resp, body := doJSON(t, http.MethodPost, app.server.URL+"/api/v1/deposits", userToken, map[string]int64{
		"amount": amount,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	depositID := body["data"].(map[string]interface{})["id"].(string)

	resp, _ = doJSON(t, http.MethodPost, app.server.URL+"/api/v1/admin/deposits/"+depositID+"/approve", adminToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func getBalance(t *testing.T, app *testApp, token string) int64 {
	t.Helper()
	resp, body := doJSON(t, http.MethodGet, app.server.URL+"/api/v1/account/balance", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return int64(body["data"].(map[string]interface{})["balance"].(float64))
}

// --- Integration Tests ---

func TestIntegration_HealthCheck(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	resp, err := http.Get(app.server.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "healthy", body["status"])
}

func TestIntegration_RegisterAndLogin(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	resp, body := doJSON(t, http.MethodPost, app.server.URL+"/api/v1/auth/register", "", map[string]string{
		"username": "steve_miner",
		"email":    "steve@example.com",
		"password": "StrongPass123!",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	data := body["data"].(map[string]interface{})
	assert.NotEmpty(t, data["id"])
	assert.Equal(t, "user", data["role"])
	assert.Equal(t, float64(0), data["balance"])

	resp, body = doJSON(t, http.MethodPost, app.server.URL+"/api/v1/auth/login", "", map[string]string{
		"email":    "steve@example.com",
		"password": "StrongPass123!",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, body["data"].(map[string]interface{})["token"])
}

func TestIntegration_LoginWrongCredentials(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	resp, _ := doJSON(t, http.MethodPost, app.server.URL+"/api/v1/auth/login", "", map[string]string{
		"email":    "nobody@example.com",
		"password": "wrong-pass",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestIntegration_DuplicateUsername(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	registerAndLogin(t, app, "alex_trader", "alex@example.com")

	resp, _ := doJSON(t, http.MethodPost, app.server.URL+"/api/v1/auth/register", "", map[string]string{
		"username": "alex_trader",
		"email":    "other@example.com",
		"password": "StrongPass123!",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestIntegration_ProtectedRouteRequiresToken(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	resp, _ := doJSON(t, http.MethodGet, app.server.URL+"/api/v1/account/balance", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestIntegration_AdminRouteForbiddenForUser(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	token, _ := registerAndLogin(t, app, "regular_user", "regular@example.com")

	resp, _ := doJSON(t, http.MethodGet, app.server.URL+"/api/v1/admin/deposits", token, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestIntegration_DepositWorkflow(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	userToken, _ := registerAndLogin(t, app, "depositor", "depositor@example.com")
	adminToken := registerAdmin(t, app, "mod_account", "mod@example.com")

	// Balance starts at zero; a pending request does not credit
	resp, body := doJSON(t, http.MethodPost, app.server.URL+"/api/v1/deposits", userToken, map[string]int64{
		"amount": 10000,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	depositID := body["data"].(map[string]interface{})["id"].(string)
	assert.Equal(t, int64(0), getBalance(t, app, userToken))

	// Approve credits the user
	resp, body = doJSON(t, http.MethodPost, app.server.URL+"/api/v1/admin/deposits/"+depositID+"/approve", adminToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "approved", body["data"].(map[string]interface{})["status"])
	assert.Equal(t, int64(10000), getBalance(t, app, userToken))

	// Re-approving the same request is rejected
	resp, _ = doJSON(t, http.MethodPost, app.server.URL+"/api/v1/admin/deposits/"+depositID+"/approve", adminToken, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, int64(10000), getBalance(t, app, userToken))
}

func TestIntegration_RejectedDepositDoesNotCredit(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	userToken, _ := registerAndLogin(t, app, "rejected_user", "rejected@example.com")
	adminToken := registerAdmin(t, app, "mod_account", "mod@example.com")

	resp, body := doJSON(t, http.MethodPost, app.server.URL+"/api/v1/deposits", userToken, map[string]int64{
		"amount": 5000,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	depositID := body["data"].(map[string]interface{})["id"].(string)

	resp, body = doJSON(t, http.MethodPost, app.server.URL+"/api/v1/admin/deposits/"+depositID+"/reject", adminToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "rejected", body["data"].(map[string]interface{})["status"])
	assert.Equal(t, int64(0), getBalance(t, app, userToken))
}

func TestIntegration_FullEscrowFlow(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	sellerToken, _ := registerAndLogin(t, app, "the_seller", "seller@example.com")
	buyerToken, _ := registerAndLogin(t, app, "the_buyer", "buyer@example.com")
	adminToken := registerAdmin(t, app, "the_admin", "admin@example.com")

	fundAccount(t, app, buyerToken, adminToken, 10000)

	// Seller lists an item for 8,000
	resp, body := doJSON(t, http.MethodPost, app.server.URL+"/api/v1/listings", sellerToken, map[string]any{
		"title":     "Creeper Spawner",
		"item_type": "spawner",
		"item_name": "creeper_spawner",
		"quantity":  1,
		"price":     8000,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	listingID := body["data"].(map[string]interface{})["id"].(string)

	// Listing is visible in the public catalog
	resp, body = doJSON(t, http.MethodGet, app.server.URL+"/api/v1/listings", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["data"].([]interface{}), 1)

	// Buyer purchases: funds move into escrow, listing leaves the catalog
	resp, body = doJSON(t, http.MethodPost, app.server.URL+"/api/v1/listings/"+listingID+"/purchase", buyerToken, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	txData := body["data"].(map[string]interface{})
	txID := txData["id"].(string)
	assert.Equal(t, "escrow", txData["status"])
	assert.Equal(t, int64(2000), getBalance(t, app, buyerToken))
	assert.Equal(t, int64(0), getBalance(t, app, sellerToken))

	// Escrow queue shows the open transaction
	resp, body = doJSON(t, http.MethodGet, app.server.URL+"/api/v1/admin/transactions", adminToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["data"].([]interface{}), 1)

	// Admin confirms delivery: held funds reach the seller
	resp, body = doJSON(t, http.MethodPost, app.server.URL+"/api/v1/admin/transactions/"+txID+"/deliver", adminToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "completed", body["data"].(map[string]interface{})["status"])
	assert.Equal(t, int64(2000), getBalance(t, app, buyerToken))
	assert.Equal(t, int64(8000), getBalance(t, app, sellerToken))

	// Settled escrow admits no second settlement
	resp, _ = doJSON(t, http.MethodPost, app.server.URL+"/api/v1/admin/transactions/"+txID+"/deliver", adminToken, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// Listing is now sold
	resp, body = doJSON(t, http.MethodGet, app.server.URL+"/api/v1/listings/"+listingID, buyerToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "sold", body["data"].(map[string]interface{})["status"])

	// Audit log recorded deposit, purchase and sale entries
	resp, body = doJSON(t, http.MethodGet, app.server.URL+"/api/v1/admin/audit", adminToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	auditData := body["data"].(map[string]interface{})
	assert.Equal(t, float64(3), auditData["total"])
}

func TestIntegration_CancelRefundsBuyer(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	sellerToken, _ := registerAndLogin(t, app, "cancel_seller", "cseller@example.com")
	buyerToken, _ := registerAndLogin(t, app, "cancel_buyer", "cbuyer@example.com")
	adminToken := registerAdmin(t, app, "cancel_admin", "cadmin@example.com")

	fundAccount(t, app, buyerToken, adminToken, 6000)

	resp, body := doJSON(t, http.MethodPost, app.server.URL+"/api/v1/listings", sellerToken, map[string]any{
		"title":     "Netherite Sword",
		"item_type": "tools",
		"item_name": "netherite_sword",
		"quantity":  1,
		"price":     6000,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	listingID := body["data"].(map[string]interface{})["id"].(string)

	resp, body = doJSON(t, http.MethodPost, app.server.URL+"/api/v1/listings/"+listingID+"/purchase", buyerToken, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	txID := body["data"].(map[string]interface{})["id"].(string)
	require.Equal(t, int64(0), getBalance(t, app, buyerToken))

	// Cancel refunds the buyer in full and reactivates the listing
	resp, body = doJSON(t, http.MethodPost, app.server.URL+"/api/v1/admin/transactions/"+txID+"/cancel", adminToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "cancelled", body["data"].(map[string]interface{})["status"])
	assert.Equal(t, int64(6000), getBalance(t, app, buyerToken))
	assert.Equal(t, int64(0), getBalance(t, app, sellerToken))

	resp, body = doJSON(t, http.MethodGet, app.server.URL+"/api/v1/listings/"+listingID, buyerToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "active", body["data"].(map[string]interface{})["status"])
}

func TestIntegration_PurchaseInsufficientFunds(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	sellerToken, _ := registerAndLogin(t, app, "poor_seller", "pseller@example.com")
	buyerToken, _ := registerAndLogin(t, app, "poor_buyer", "pbuyer@example.com")
	adminToken := registerAdmin(t, app, "poor_admin", "padmin@example.com")

	fundAccount(t, app, buyerToken, adminToken, 5000)

	resp, body := doJSON(t, http.MethodPost, app.server.URL+"/api/v1/listings", sellerToken, map[string]any{
		"title":     "Diamond Armour Set",
		"item_type": "armour",
		"item_name": "diamond_armour",
		"quantity":  1,
		"price":     6000,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	listingID := body["data"].(map[string]interface{})["id"].(string)

	// 5,000 balance cannot cover a 6,000 listing; nothing changes
	resp, _ = doJSON(t, http.MethodPost, app.server.URL+"/api/v1/listings/"+listingID+"/purchase", buyerToken, nil)
	assert.Equal(t, http.StatusPaymentRequired, resp.StatusCode)
	assert.Equal(t, int64(5000), getBalance(t, app, buyerToken))

	resp, body = doJSON(t, http.MethodGet, app.server.URL+"/api/v1/listings/"+listingID, buyerToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "active", body["data"].(map[string]interface{})["status"])
}

func TestIntegration_SelfTradeRejected(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	sellerToken, _ := registerAndLogin(t, app, "solo_trader", "solo@example.com")
	adminToken := registerAdmin(t, app, "solo_admin", "sadmin@example.com")

	fundAccount(t, app, sellerToken, adminToken, 10000)

	resp, body := doJSON(t, http.MethodPost, app.server.URL+"/api/v1/listings", sellerToken, map[string]any{
		"title":     "Iron Farm",
		"item_type": "farm",
		"item_name": "iron_farm",
		"quantity":  1,
		"price":     3000,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	listingID := body["data"].(map[string]interface{})["id"].(string)

	resp, _ = doJSON(t, http.MethodPost, app.server.URL+"/api/v1/listings/"+listingID+"/purchase", sellerToken, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, int64(10000), getBalance(t, app, sellerToken))
}

func TestIntegration_WithdrawListing(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	sellerToken, _ := registerAndLogin(t, app, "withdrawer", "withdrawer@example.com")
	otherToken, _ := registerAndLogin(t, app, "other_user", "other@example.com")

	resp, body := doJSON(t, http.MethodPost, app.server.URL+"/api/v1/listings", sellerToken, map[string]any{
		"title":     "Villager Stash",
		"item_type": "stash",
		"item_name": "villager_stash",
		"quantity":  5,
		"price":     1500,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	listingID := body["data"].(map[string]interface{})["id"].(string)

	// Another user cannot withdraw someone else's listing
	resp, _ = doJSON(t, http.MethodDelete, app.server.URL+"/api/v1/listings/"+listingID, otherToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// The owner can
	resp, _ = doJSON(t, http.MethodDelete, app.server.URL+"/api/v1/listings/"+listingID, sellerToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = doJSON(t, http.MethodGet, app.server.URL+"/api/v1/listings/"+listingID, sellerToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "cancelled", body["data"].(map[string]interface{})["status"])
}

func TestIntegration_BalanceHistory(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	userToken, _ := registerAndLogin(t, app, "historian", "historian@example.com")
	adminToken := registerAdmin(t, app, "hist_admin", "hadmin@example.com")

	fundAccount(t, app, userToken, adminToken, 7000)
	fundAccount(t, app, userToken, adminToken, 3000)

	resp, body := doJSON(t, http.MethodGet, app.server.URL+"/api/v1/account/history", userToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	entries := body["data"].([]interface{})
	require.Len(t, entries, 2)

	// Newest first; balances chain: 0 -> 7000 -> 10000
	first := entries[0].(map[string]interface{})
	assert.Equal(t, "deposit", first["kind"])
	assert.Equal(t, float64(10000), first["balance_after"])
	second := entries[1].(map[string]interface{})
	assert.Equal(t, float64(7000), second["balance_after"])
}

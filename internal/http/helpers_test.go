package httpserver_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"storefront/internal/config"
	"storefront/internal/domain"
	httpserver "storefront/internal/http"
	applog "storefront/internal/log"
	"storefront/internal/payment"
	"storefront/internal/repos"
)

func testConfig() config.Config {
	return config.Config{
		DBDSN:   ":memory:",
		Payment: config.Payment{Currency: "INR"},
		Invoice: config.Invoice{StoreName: "Storefront", Font: "Helvetica"},
	}
}

var testLimits = httpserver.Limits{Global: 1000, Login: 100}

func newApp(t *testing.T, cfg config.Config, gw payment.Gateway, limits httpserver.Limits) (*fiber.App, *sqlx.DB) {
	t.Helper()
	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return httpserver.New(cfg, db, gw, limits), db
}

func extractCookie(resp *http.Response, name string) string {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

func csrfToken(t *testing.T, app *fiber.App) string {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest("GET", "/login/", nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	tok := extractCookie(resp, "csrf_")
	if tok == "" {
		t.Fatal("csrf token missing")
	}
	return tok
}

func postLogin(t *testing.T, app *fiber.App, tok string, form url.Values) *http.Response {
	t.Helper()
	form.Set("csrf", tok)
	req := newFormRequest("/login/", form)
	req.AddCookie(&http.Cookie{Name: "csrf_", Value: tok})
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

// login signs the seeded user in and returns the session cookie value.
func login(t *testing.T, app *fiber.App, email string) string {
	t.Helper()
	resp := postLogin(t, app, csrfToken(t, app), url.Values{"email": {email}, "password": {"Passw0rd!"}})
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("login %s: expected redirect, got %d", email, resp.StatusCode)
	}
	sid := extractCookie(resp, "sid")
	if sid == "" {
		t.Fatalf("login %s: no session cookie", email)
	}
	return sid
}

func get(t *testing.T, app *fiber.App, path, sid string, asJSON bool) *http.Response {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	if sid != "" {
		req.AddCookie(&http.Cookie{Name: "sid", Value: sid})
	}
	if asJSON {
		req.Header.Set("Accept", fiber.MIMEApplicationJSON)
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

type orderBody struct {
	Order  domain.Order       `json:"order"`
	Items  []domain.OrderItem `json:"items"`
	Totals domain.Totals      `json:"totals"`
	Error  string             `json:"error"`
}

func decodeOrder(t *testing.T, resp *http.Response) orderBody {
	t.Helper()
	var body orderBody
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func requireAmount(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.True(t, decimal.RequireFromString(want).Equal(got), "want %s, got %s", want, got)
}

type logEntry struct {
	Level    string                 `json:"level"`
	Action   string                 `json:"action"`
	Category string                 `json:"category"`
	UserID   string                 `json:"user_id"`
	Fields   map[string]interface{} `json:"fields"`
}

type lockedWriter struct {
	w  *bytes.Buffer
	mu *sync.Mutex
}

func (lw *lockedWriter) Write(p []byte) (int, error) {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	return lw.w.Write(p)
}

// captureLogs redirects the application log for the duration of fn.
func captureLogs(t *testing.T, fn func()) []logEntry {
	t.Helper()
	var buf bytes.Buffer
	var mu sync.Mutex
	applog.SetOutput(&lockedWriter{w: &buf, mu: &mu})
	defer applog.SetOutput(os.Stdout)

	fn()

	var entries []logEntry
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var e logEntry
		if err := json.Unmarshal([]byte(line), &e); err == nil {
			entries = append(entries, e)
		}
	}
	return entries
}

func findAction(entries []logEntry, action string) (logEntry, bool) {
	for _, e := range entries {
		if e.Action == action {
			return e, true
		}
	}
	return logEntry{}, false
}

type fakeGateway struct {
	secret string
	fail   error
}

func (g *fakeGateway) CreateOrder(_ context.Context, req payment.OrderRequest) (*payment.RemoteOrder, error) {
	if g.fail != nil {
		return nil, g.fail
	}
	return &payment.RemoteOrder{ID: "order_remote_" + req.Receipt, Amount: req.Amount, Currency: req.Currency, Status: "created"}, nil
}

func (g *fakeGateway) VerifyPayment(orderRef, paymentRef, signature string) error {
	return payment.Verify(g.secret, orderRef, paymentRef, signature)
}

func (g *fakeGateway) KeyID() string { return "key_test" }

func newFormRequest(path string, form url.Values) *http.Request {
	req := httptest.NewRequest("POST", path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

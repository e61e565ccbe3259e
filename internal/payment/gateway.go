package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"storefront/internal/config"
)

var ErrSignatureMismatch = errors.New("payment signature mismatch")

// Gateway is the remote payment provider. Amounts are in the smallest
// currency unit.
type Gateway interface {
	CreateOrder(ctx context.Context, req OrderRequest) (*RemoteOrder, error)
	VerifyPayment(orderRef, paymentRef, signature string) error
	KeyID() string
}

type OrderRequest struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Capture  int               `json:"payment_capture"`
	Notes    map[string]string `json:"notes,omitempty"`
}

type RemoteOrder struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

// Client talks to a Razorpay-style orders API.
type Client struct {
	httpClient *http.Client
	baseApiURL string
	keyID      string
	keySecret  string
}

func NewClient(cfg *config.Payment) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseApiURL: strings.TrimRight(cfg.BaseApiURL, "/"),
		keyID:      cfg.KeyID,
		keySecret:  cfg.KeySecret,
	}
}

func (c *Client) KeyID() string { return c.keyID }

func (c *Client) CreateOrder(ctx context.Context, in OrderRequest) (*RemoteOrder, error) {
	if in.Amount <= 0 {
		return nil, fmt.Errorf("amount must be positive, got %d", in.Amount)
	}
	body, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("marshal req payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseApiURL+"/v1/orders", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("http new request: %w", err)
	}
	req.SetBasicAuth(c.keyID, c.keySecret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http client do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("gateway error %d: %s", resp.StatusCode, string(b))
	}

	var out RemoteOrder
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode gateway response: %w", err)
	}
	if out.ID == "" {
		return nil, errors.New("gateway response missing order id")
	}
	return &out, nil
}

// VerifyPayment checks the signature the gateway hands the browser after a
// successful payment.
func (c *Client) VerifyPayment(orderRef, paymentRef, signature string) error {
	return Verify(c.keySecret, orderRef, paymentRef, signature)
}

// Sign computes hex(HMAC-SHA256(secret, orderRef|paymentRef)).
func Sign(secret, orderRef, paymentRef string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderRef + "|" + paymentRef))
	return hex.EncodeToString(mac.Sum(nil))
}

func Verify(secret, orderRef, paymentRef, signature string) error {
	if orderRef == "" || paymentRef == "" || signature == "" {
		return fmt.Errorf("%w: missing reference or signature", ErrSignatureMismatch)
	}
	expected := Sign(secret, orderRef, paymentRef)
	if !hmac.Equal([]byte(expected), []byte(strings.ToLower(signature))) {
		return ErrSignatureMismatch
	}
	return nil
}

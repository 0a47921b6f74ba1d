package payosrepo

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"clothesrental/util/httpx"
)

type httpRepo struct {
	baseURL     string
	clientID    string
	apiKey      string
	checksumKey string
	client      *http.Client
}

func NewHTTP(baseURL, clientID, apiKey, checksumKey string) Repo {
	return &httpRepo{
		baseURL:     baseURL,
		clientID:    clientID,
		apiKey:      apiKey,
		checksumKey: checksumKey,
		client:      httpx.Client(10 * time.Second),
	}
}

func (r *httpRepo) newRequest(ctx context.Context, method, path string, body []byte) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, r.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("x-client-id", r.clientID)
	req.Header.Set("x-api-key", r.apiKey)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func (r *httpRepo) CreateCheckout(ctx context.Context, in CreateCheckoutReq) (*CreateCheckoutResp, error) {
	body, _ := json.Marshal(map[string]any{
		"orderCode":   in.OrderCode,
		"amount":      in.Amount,
		"description": in.Description,
		"items":       []map[string]any{{"name": in.ItemName, "quantity": 1, "price": in.Amount}},
		"expiredAt":   time.Now().UTC().Add(time.Duration(in.ExpirySec) * time.Second).Unix(),
	})
	req, err := r.newRequest(ctx, http.MethodPost, "/v2/payment-requests", body)
	if err != nil {
		return nil, err
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("payos create checkout: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("payos create checkout failed: %s", resp.Status)
	}

	var out struct {
		Code string `json:"code"`
		Desc string `json:"desc"`
		Data struct {
			CheckoutURL string `json:"checkoutUrl"`
			ExpiredAt   string `json:"expiredAt"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	if out.Data.CheckoutURL == "" {
		return nil, errors.New("payos: empty checkout url")
	}
	return &CreateCheckoutResp{CheckoutURL: out.Data.CheckoutURL, ExpiresAt: out.Data.ExpiredAt}, nil
}

func (r *httpRepo) GetPaymentStatus(ctx context.Context, orderCode string) (string, error) {
	req, err := r.newRequest(ctx, http.MethodGet, "/v2/payment-requests/"+orderCode, nil)
	if err != nil {
		return "", err
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("payos get status: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("payos get status failed: %s", resp.Status)
	}

	var out struct {
		Data struct {
			Status string `json:"status"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if out.Data.Status == "" {
		return "", errors.New("payos: empty payment status")
	}
	return out.Data.Status, nil
}

func (r *httpRepo) VerifyWebhookSignature(sigHeader string, rawBody []byte) error {
	if r.checksumKey == "" {
		return nil
	}
	mac := hmac.New(sha256.New, []byte(r.checksumKey))
	mac.Write(rawBody)
	want := hex.EncodeToString(mac.Sum(nil))
	if subtle.ConstantTimeCompare([]byte(want), []byte(sigHeader)) != 1 {
		return errors.New("payos: webhook signature mismatch")
	}
	return nil
}

package utils

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

// PayPalClient answers one question for the booking flow: was this
// order captured? Without credentials it runs in mock mode and
// approves everything (local development), the same way email falls
// back to [MOCK EMAIL].
type PayPalClient struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	HTTP         *http.Client
}

func NewPayPalClientFromEnv() *PayPalClient {
	return &PayPalClient{
		BaseURL:      EnvOrDefault("PAYPAL_API_BASE", "https://api-m.sandbox.paypal.com"),
		ClientID:     os.Getenv("PAYPAL_CLIENT_ID"),
		ClientSecret: os.Getenv("PAYPAL_CLIENT_SECRET"),
		HTTP:         &http.Client{Timeout: 30 * time.Second},
	}
}

func (p *PayPalClient) mockMode() bool {
	return p.ClientID == "" || p.ClientSecret == ""
}

type paypalTokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

func (p *PayPalClient) accessToken() (string, error) {
	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequest("POST", p.BaseURL+"/v1/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("cannot build token request: %w", err)
	}
	req.SetBasicAuth(p.ClientID, p.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.HTTP.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("token HTTP error %d: %s", resp.StatusCode, string(body))
	}

	var tr paypalTokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return "", fmt.Errorf("token JSON parse error: %w", err)
	}
	if tr.AccessToken == "" {
		return "", fmt.Errorf("empty access token in response")
	}
	return tr.AccessToken, nil
}

type paypalOrderResponse struct {
	ID            string `json:"id"`
	Status        string `json:"status"`
	PurchaseUnits []struct {
		Payments struct {
			Captures []struct {
				ID     string `json:"id"`
				Status string `json:"status"`
			} `json:"captures"`
		} `json:"payments"`
	} `json:"purchase_units"`
}

// OrderCaptured checks the order status with PayPal and returns the
// capture's transaction id. Anything other than a COMPLETED order
// with at least one COMPLETED capture is a failure.
func (p *PayPalClient) OrderCaptured(orderID string) (string, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return "", fmt.Errorf("empty order id")
	}

	if p.mockMode() {
		log.Printf("[MOCK PAYPAL] order %s treated as captured", orderID)
		return "MOCK-" + orderID, nil
	}

	token, err := p.accessToken()
	if err != nil {
		return "", err
	}

	req, err := http.NewRequest("GET", p.BaseURL+"/v2/checkout/orders/"+url.PathEscape(orderID), nil)
	if err != nil {
		return "", fmt.Errorf("cannot build order request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.HTTP.Do(req)
	if err != nil {
		return "", fmt.Errorf("order request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("order HTTP error %d: %s", resp.StatusCode, string(body))
	}

	var order paypalOrderResponse
	if err := json.Unmarshal(body, &order); err != nil {
		return "", fmt.Errorf("order JSON parse error: %w", err)
	}
	if order.Status != "COMPLETED" {
		return "", fmt.Errorf("order %s has status %s", orderID, order.Status)
	}

	for _, pu := range order.PurchaseUnits {
		for _, capture := range pu.Payments.Captures {
			if capture.Status == "COMPLETED" {
				return capture.ID, nil
			}
		}
	}
	return "", fmt.Errorf("order %s has no completed capture", orderID)
}

package billing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestCreateCheckoutSession(t *testing.T) {
	var gotForm map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/checkout/sessions" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk_test_123" {
			t.Fatalf("unexpected authorization header %q", got)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("unexpected form parse error: %v", err)
		}
		gotForm = map[string]string{}
		for k := range r.PostForm {
			gotForm[k] = r.PostForm.Get(k)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"cs_1","url":"https://checkout.example/cs_1"}`))
	}))
	defer server.Close()

	client := &CheckoutClient{
		SecretKey:  "sk_test_123",
		APIBaseURL: server.URL,
		HTTPClient: &http.Client{Timeout: 5 * time.Second},
	}

	session, err := client.CreateCheckoutSession(context.Background(), CheckoutParams{
		ApplicationID: 42,
		UserID:        7,
		TierName:      "Founders Club",
		PriceRef:      "price_abc",
		SuccessURL:    "https://pourhaus.example/membership/welcome",
		CancelURL:     "https://pourhaus.example/membership/apply",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if session.ID != "cs_1" || session.URL != "https://checkout.example/cs_1" {
		t.Fatalf("unexpected session: %+v", session)
	}

	if gotForm["mode"] != "subscription" {
		t.Fatalf("mode = %q, want subscription", gotForm["mode"])
	}
	if gotForm["line_items[0][price]"] != "price_abc" {
		t.Fatalf("price = %q, want price_abc", gotForm["line_items[0][price]"])
	}
	if gotForm["metadata[applicationId]"] != "42" || gotForm["metadata[userId]"] != "7" {
		t.Fatalf("unexpected metadata: %v", gotForm)
	}
	if gotForm["metadata[tierName]"] != "Founders Club" {
		t.Fatalf("tier metadata = %q", gotForm["metadata[tierName]"])
	}
}

func TestCreateCheckoutSession_ProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		w.Write([]byte(`{"error":{"message":"no such price"}}`))
	}))
	defer server.Close()

	client := &CheckoutClient{
		SecretKey:  "sk_test_123",
		APIBaseURL: server.URL,
		HTTPClient: server.Client(),
	}

	_, err := client.CreateCheckoutSession(context.Background(), CheckoutParams{
		ApplicationID: 42, UserID: 7, TierName: "X", PriceRef: "price_missing",
		SuccessURL: "https://x/s", CancelURL: "https://x/c",
	})
	if err == nil {
		t.Fatalf("expected error from non-2xx provider response")
	}
}

func TestCreateCheckoutSession_MissingConfig(t *testing.T) {
	client := &CheckoutClient{APIBaseURL: "https://unused", HTTPClient: http.DefaultClient}
	if _, err := client.CreateCheckoutSession(context.Background(), CheckoutParams{
		ApplicationID: 1, UserID: 1, PriceRef: "price_x",
	}); err == nil {
		t.Fatalf("expected error without a secret key")
	}

	client.SecretKey = "sk_test"
	if _, err := client.CreateCheckoutSession(context.Background(), CheckoutParams{
		ApplicationID: 1, UserID: 1,
	}); err == nil {
		t.Fatalf("expected error without a price reference")
	}
}

package entropy

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestSeededDeterministic(t *testing.T) {
	a, b := NewSeeded(11), NewSeeded(11)
	for i := 0; i < 100; i++ {
		va, vb := a.Float64(), b.Float64()
		if va != vb {
			t.Fatalf("draw %d differs: %v != %v", i, va, vb)
		}
		if va < 0 || va >= 1 {
			t.Fatalf("draw %d = %v, want [0, 1)", i, va)
		}
	}
}

func TestFuncSource(t *testing.T) {
	var src Source = Func(func() float64 { return 0.25 })
	if got := src.Float64(); got != 0.25 {
		t.Errorf("Func.Float64() = %v, want 0.25", got)
	}
}

func TestNilClientFallsBack(t *testing.T) {
	if c := NewClient(""); c != nil {
		t.Fatalf("NewClient(\"\") = %v, want nil", c)
	}
	var c *Client
	if c.Enabled() {
		t.Errorf("nil client reports enabled")
	}
	for i := 0; i < 50; i++ {
		if v := c.Float64(); v < 0 || v >= 1 {
			t.Fatalf("fallback draw = %v, want [0, 1)", v)
		}
	}
	if v := cryptoRandFloat(); v < 0 || v >= 1 {
		t.Errorf("crypto draw = %v, want [0, 1)", v)
	}
}

func TestClientUsesPool(t *testing.T) {
	data := make([]float64, 0, 20)
	for i := 0; i < 20; i++ {
		data = append(data, float64(i)/20)
	}
	data = append(data, 1.0) // must be discarded

	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		var resp struct {
			Result struct {
				Random struct {
					Data []float64 `json:"data"`
				} `json:"random"`
			} `json:"result"`
		}
		resp.Result.Random.Data = data
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	c := NewClient("test-key")
	c.endpoint = srv.URL
	c.client = &http.Client{Timeout: time.Second}

	if got := c.Float64(); got != 0 {
		t.Errorf("first draw = %v, want 0 (head of pool)", got)
	}
	if got := c.Float64(); got != 0.05 {
		t.Errorf("second draw = %v, want 0.05", got)
	}
	if requests != 1 {
		t.Errorf("requests = %d, want 1", requests)
	}
	for _, v := range c.pool {
		if v >= 1 {
			t.Errorf("pool holds out-of-range value %v", v)
		}
	}
}

func TestClientAPIErrorFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error":{"message":"bad key"}}`))
	}))
	defer srv.Close()

	c := NewClient("bad")
	c.endpoint = srv.URL
	if v := c.Float64(); v < 0 || v >= 1 {
		t.Errorf("fallback draw = %v, want [0, 1)", v)
	}
	if len(c.pool) != 0 {
		t.Errorf("pool = %v, want empty after API error", c.pool)
	}
}

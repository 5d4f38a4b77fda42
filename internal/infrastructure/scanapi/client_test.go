package scanapi

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/ardwiinoo/launch-indexer/internal/config"
)

func testClientConfig(baseURL string) config.ScanAPIConfig {
	return config.ScanAPIConfig{
		BaseURL:        baseURL,
		APIKey:         "test-key",
		RequestTimeout: 5 * time.Second,
		MaxRetries:     2,
		RetryDelay:     time.Millisecond,
	}
}

func TestClient_GetLogs_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("module") != "logs" || q.Get("action") != "getLogs" {
			t.Errorf("unexpected query: %s", r.URL.RawQuery)
		}
		if q.Get("fromBlock") != "100" || q.Get("toBlock") != "200" {
			t.Errorf("block range mismatch: %s", r.URL.RawQuery)
		}
		if q.Get("apikey") != "test-key" {
			t.Errorf("api key not forwarded")
		}

		fmt.Fprint(w, `{"status":"1","message":"OK","result":[
			{"address":"0xcccc00000000000000000000000000000000cccc",
			 "topics":["0xabc"],
			 "data":"0x",
			 "blockNumber":"0x64",
			 "transactionHash":"0x1111111111111111111111111111111111111111111111111111111111111111",
			 "transactionIndex":"0x2",
			 "timeStamp":"0x65a4f1c0",
			 "logIndex":"0x0"}
		]}`)
	}))
	defer server.Close()

	client := NewClient(testClientConfig(server.URL), zap.NewNop())

	logs, err := client.GetLogs(context.Background(), testFactoryAddr, sigTokenBuy, 100, 200)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(logs) != 1 {
		t.Fatalf("expected 1 log, got %d", len(logs))
	}
	if logs[0].Block != "0x64" || logs[0].TxIndex != "0x2" {
		t.Errorf("log fields mismatch: %+v", logs[0])
	}
}

func TestClient_GetLogs_NoRecords(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":"0","message":"No records found","result":[]}`)
	}))
	defer server.Close()

	client := NewClient(testClientConfig(server.URL), zap.NewNop())

	logs, err := client.GetLogs(context.Background(), "", sigTokenBuy, 100, 200)
	if err != nil {
		t.Fatalf("no records must not be an error: %v", err)
	}
	if len(logs) != 0 {
		t.Errorf("expected empty result, got %d logs", len(logs))
	}
}

func TestClient_GetLogs_APIErrorRetries(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		fmt.Fprint(w, `{"status":"0","message":"Max rate limit reached","result":"error"}`)
	}))
	defer server.Close()

	client := NewClient(testClientConfig(server.URL), zap.NewNop())

	_, err := client.GetLogs(context.Background(), "", sigTokenBuy, 100, 200)
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Errorf("expected 3 attempts (1 + 2 retries), got %d", got)
	}
}

func TestClient_GetLogs_RecoversAfterTransientFailure(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, `{"status":"1","message":"OK","result":[]}`)
	}))
	defer server.Close()

	client := NewClient(testClientConfig(server.URL), zap.NewNop())

	logs, err := client.GetLogs(context.Background(), "", sigTokenBuy, 100, 200)
	if err != nil {
		t.Fatalf("expected recovery on retry: %v", err)
	}
	if len(logs) != 0 {
		t.Errorf("expected empty result, got %d logs", len(logs))
	}
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Errorf("expected 2 attempts, got %d", got)
	}
}

func TestClient_GetLogs_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	cfg := testClientConfig(server.URL)
	cfg.RetryDelay = time.Minute // would stall if the context were ignored
	client := NewClient(cfg, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.GetLogs(ctx, "", sigTokenBuy, 100, 200)
	if err == nil {
		t.Fatal("expected error for cancelled context")
	}
}

func TestClient_HeadBlock(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("module") != "proxy" || q.Get("action") != "eth_blockNumber" {
			t.Errorf("unexpected query: %s", r.URL.RawQuery)
		}
		fmt.Fprint(w, `{"jsonrpc":"2.0","id":1,"result":"0xbc614e"}`)
	}))
	defer server.Close()

	client := NewClient(testClientConfig(server.URL), zap.NewNop())

	head, err := client.HeadBlock(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if head != 12345678 {
		t.Errorf("head mismatch: expected 12345678, got %d", head)
	}
}

func TestClient_HeadBlock_Malformed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"result":"not-hex"}`)
	}))
	defer server.Close()

	client := NewClient(testClientConfig(server.URL), zap.NewNop())

	if _, err := client.HeadBlock(context.Background()); err == nil {
		t.Fatal("expected error for malformed head")
	}
}

func TestParseHexUint(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"0x0", 0, false},
		{"0x64", 100, false},
		{"0xbc614e", 12345678, false},
		{"5", 5, false},
		{"0x", 0, true},
		{"", 0, true},
		{"zz", 0, true},
	}

	for _, tt := range tests {
		got, err := parseHexUint(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("parseHexUint(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseHexUint(%q): unexpected error %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parseHexUint(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

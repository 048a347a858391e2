package routes

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"TSNiSAM/internal/cache"
	"TSNiSAM/internal/collector"
	"TSNiSAM/internal/config"
	"TSNiSAM/internal/metrics"
	"TSNiSAM/internal/service"

	"github.com/gin-gonic/gin"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func setup(t *testing.T, fetcher collector.Fetcher) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	cfg.DataSource.Provider = "mock"
	cfg.DataSource.DefaultStart = "2023-01-01"

	m := metrics.New()
	coll := collector.NewCollector(fetcher, cache.NewMemoryCache(time.Minute), cfg.Tickers, m)
	svc, err := service.New(cfg, coll, nil, m)
	if err != nil {
		t.Fatal(err)
	}
	return SetupRouter(cfg, svc, fetcher.Name(), m)
}

func do(t *testing.T, r http.Handler, method, target string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("%s %s: decode: %v\n%s", method, target, err, rec.Body.String())
		}
	}
	return rec, env
}

func TestHealth(t *testing.T) {
	r := setup(t, &collector.MockFetcher{})
	rec, _ := do(t, r, "GET", "/health")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"mock"`) {
		t.Errorf("health = %d %s", rec.Code, rec.Body.String())
	}
}

func TestStatusMapping(t *testing.T) {
	r := setup(t, &collector.MockFetcher{})
	tests := []struct {
		name   string
		target string
		want   int
	}{
		{"tickers", "/api/v1/tickers", http.StatusOK},
		{"prices", "/api/v1/prices?symbol=TCS.NS&start=2024-01-01&end=2024-03-01", http.StatusOK},
		{"weekly prices", "/api/v1/prices?symbol=TCS.NS&interval=1wk", http.StatusOK},
		{"lowercase symbol", "/api/v1/prices?symbol=tcs.ns", http.StatusOK},
		{"missing symbol", "/api/v1/prices", http.StatusBadRequest},
		{"unknown ticker", "/api/v1/prices?symbol=AAPL", http.StatusBadRequest},
		{"bad date", "/api/v1/prices?symbol=TCS.NS&start=01-01-2024", http.StatusBadRequest},
		{"inverted range", "/api/v1/prices?symbol=TCS.NS&start=2024-03-01&end=2024-01-01", http.StatusBadRequest},
		{"bad interval", "/api/v1/prices?symbol=TCS.NS&interval=1h", http.StatusBadRequest},
		{"indicators", "/api/v1/indicators?symbol=INFY.NS&rsi=10&sma=5,10&bb_window=15&bb_k=1.5", http.StatusOK},
		{"indicators bad rsi", "/api/v1/indicators?symbol=INFY.NS&rsi=abc", http.StatusBadRequest},
		{"indicators huge rsi", "/api/v1/indicators?symbol=INFY.NS&rsi=9223372036854775807", http.StatusBadRequest},
		{"indicators huge macd", "/api/v1/indicators?symbol=INFY.NS&macd_slow=9223372036854775807", http.StatusBadRequest},
		{"indicators bad bb_k", "/api/v1/indicators?symbol=INFY.NS&bb_k=-1", http.StatusBadRequest},
		{"insufficient data", "/api/v1/indicators?symbol=INFY.NS&start=2024-01-01&end=2024-01-05", http.StatusUnprocessableEntity},
		{"signal", "/api/v1/signal?symbol=HDFCBANK.NS", http.StatusOK},
		{"simulation", "/api/v1/simulation?symbol=TCS.NS&paths=100&days=30&seed=42&summary=true", http.StatusOK},
		{"simulation too few paths", "/api/v1/simulation?symbol=TCS.NS&paths=5", http.StatusBadRequest},
		{"simulation zero paths", "/api/v1/simulation?symbol=TCS.NS&paths=0", http.StatusBadRequest},
		{"simulation zero days", "/api/v1/simulation?symbol=TCS.NS&days=0", http.StatusBadRequest},
		{"simulation bad seed", "/api/v1/simulation?symbol=TCS.NS&seed=-1", http.StatusBadRequest},
		{"recommendations", "/api/v1/recommendations", http.StatusOK},
		{"fundamentals", "/api/v1/fundamentals/reliance.ns", http.StatusOK},
		{"fundamentals missing", "/api/v1/fundamentals/TCS.NS", http.StatusBadGateway},
		{"fundamentals unknown", "/api/v1/fundamentals/NOPE", http.StatusBadRequest},
		{"unknown chart", "/api/v1/charts/pie.png?symbol=TCS.NS", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := do(t, r, "GET", tt.target)
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.want, rec.Body.String())
			}
			if env.Success != (tt.want == http.StatusOK) {
				t.Errorf("success = %v for status %d", env.Success, rec.Code)
			}
			if !env.Success && env.Error == "" {
				t.Error("error envelope without error text")
			}
		})
	}
}

func TestUpstreamFailureIs502(t *testing.T) {
	r := setup(t, &collector.MockFetcher{Err: http.ErrHandlerTimeout})
	rec, env := do(t, r, "GET", "/api/v1/signal?symbol=TCS.NS")
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
	if env.Success || !strings.Contains(env.Error, "data unavailable") {
		t.Errorf("envelope = %+v", env)
	}
}

func TestIndicatorsPayload(t *testing.T) {
	r := setup(t, &collector.MockFetcher{})
	rec, env := do(t, r, "GET", "/api/v1/indicators?symbol=TCS.NS&start=2024-01-01&end=2024-06-01&sma=20")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var res service.IndicatorResult
	if err := json.Unmarshal(env.Data, &res); err != nil {
		t.Fatal(err)
	}
	ma := res.Indicators["MA20"]
	if len(ma) != len(res.Close) {
		t.Fatalf("MA20 has %d points, close has %d", len(ma), len(res.Close))
	}
	if ma[0].Valid || !ma[19].Valid {
		t.Errorf("MA20 warm-up wrong: first=%v twentieth=%v", ma[0], ma[19])
	}
	if _, ok := res.Indicators["MA50"]; ok {
		t.Error("sma=20 should drop MA50")
	}
}

func TestSimulationSummaryOnly(t *testing.T) {
	r := setup(t, &collector.MockFetcher{})
	_, env := do(t, r, "GET", "/api/v1/simulation?symbol=TCS.NS&paths=100&days=30&seed=42&summary=true")
	var res service.SimulationResult
	if err := json.Unmarshal(env.Data, &res); err != nil {
		t.Fatal(err)
	}
	if res.Paths.Paths != nil {
		t.Error("summary=true should omit raw paths")
	}
	if len(res.Summary.P50) != 30 {
		t.Errorf("P50 has %d points, want 30", len(res.Summary.P50))
	}
	if res.Paths.Seed == nil || *res.Paths.Seed != 42 {
		t.Errorf("seed = %v", res.Paths.Seed)
	}
}

func TestCharts(t *testing.T) {
	r := setup(t, &collector.MockFetcher{})
	for _, name := range []string{"price", "rsi", "macd", "bollinger", "simulation"} {
		t.Run(name, func(t *testing.T) {
			rec, _ := do(t, r, "GET", "/api/v1/charts/"+name+".png?symbol=TCS.NS&start=2024-01-01&end=2024-06-01&paths=100&days=30&seed=1")
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
			}
			if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
				t.Errorf("content type = %q", ct)
			}
		})
	}
}

func TestInvalidateCache(t *testing.T) {
	mock := &collector.MockFetcher{}
	r := setup(t, mock)
	do(t, r, "GET", "/api/v1/prices?symbol=TCS.NS&start=2024-01-01&end=2024-02-01")
	do(t, r, "GET", "/api/v1/prices?symbol=TCS.NS&start=2024-01-01&end=2024-02-01")
	if mock.Calls() != 1 {
		t.Fatalf("calls = %d, want 1", mock.Calls())
	}

	rec, env := do(t, r, "DELETE", "/api/v1/cache/TCS.NS")
	if rec.Code != http.StatusOK || !strings.Contains(string(env.Data), `"removed":1`) {
		t.Fatalf("invalidate = %d %s", rec.Code, rec.Body.String())
	}
	do(t, r, "GET", "/api/v1/prices?symbol=TCS.NS&start=2024-01-01&end=2024-02-01")
	if mock.Calls() != 2 {
		t.Errorf("calls after invalidate = %d, want 2", mock.Calls())
	}

	if rec, _ := do(t, r, "DELETE", "/api/v1/cache/NOPE"); rec.Code != http.StatusBadRequest {
		t.Errorf("unknown symbol invalidate = %d", rec.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	r := setup(t, &collector.MockFetcher{})
	do(t, r, "GET", "/api/v1/tickers")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body := rec.Body.String()
	if !strings.Contains(body, `tsnisam_http_requests_total{route="/api/v1/tickers",status="200"} 1`) {
		t.Errorf("metrics missing request counter:\n%s", body)
	}
}

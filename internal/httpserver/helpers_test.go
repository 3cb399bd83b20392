package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"grocery-commerce/internal/catalog"
	"grocery-commerce/internal/notify"
	"grocery-commerce/internal/payment"
	"grocery-commerce/internal/repository/kv"
	cartsvc "grocery-commerce/internal/service/cart"
	checkoutsvc "grocery-commerce/internal/service/checkout"
	ordersvc "grocery-commerce/internal/service/order"
	"grocery-commerce/internal/service/pricing"
	profilesvc "grocery-commerce/internal/service/profile"
	"grocery-commerce/internal/session"
)

type testAPI struct {
	t       *testing.T
	router  *gin.Engine
	gateway *payment.Simulated
}

func testDeps(t *testing.T) (Deps, *payment.Simulated) {
	t.Helper()
	reader := catalog.New(catalog.Embedded(), nil)
	if err := reader.Load(context.Background()); err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	registry := session.NewRegistry(kv.NewMemory(), notify.Discard{}, nil)
	identity, err := session.NewIdentity(registry, session.IdentityConfig{Secret: []byte("test-secret")}, nil)
	if err != nil {
		t.Fatalf("identity: %v", err)
	}
	engine := pricing.NewEngine(nil)
	profiles := profilesvc.New(nil)
	orders := ordersvc.New(nil)
	gateway := payment.NewSimulated(0)
	return Deps{
		Catalog:  reader,
		Sessions: registry,
		Identity: identity,
		Cart:     cartsvc.New(reader, nil),
		Pricing:  engine,
		Checkout: checkoutsvc.New(profiles, engine, orders, gateway, checkoutsvc.Config{}, nil),
		Orders:   orders,
		Profile:  profiles,
	}, gateway
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)
	deps, gw := testDeps(t)
	router, err := buildRouter(nil, deps)
	if err != nil {
		t.Fatalf("build router: %v", err)
	}
	return &testAPI{t: t, router: router, gateway: gw}
}

type apiResponse struct {
	Code          int
	Data          json.RawMessage  `json:"data"`
	Error         string           `json:"error"`
	Notifications []notify.Message `json:"notifications"`
}

func (a *testAPI) do(method, path, token string, body any) apiResponse {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			a.t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)

	var resp apiResponse
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			a.t.Fatalf("decode %s %s: %v body=%s", method, path, err, rec.Body.String())
		}
	}
	resp.Code = rec.Code
	return resp
}

func (a *testAPI) expect(resp apiResponse, code int) {
	a.t.Helper()
	if resp.Code != code {
		a.t.Fatalf("expected %d, got %d error=%q data=%s", code, resp.Code, resp.Error, resp.Data)
	}
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		t.Fatalf("decode data: %v (%s)", err, raw)
	}
	return v
}

func (a *testAPI) guestToken() string {
	a.t.Helper()
	resp := a.do(http.MethodPost, "/sessions/guest", "", nil)
	a.expect(resp, http.StatusCreated)
	return decode[tokenResponse](a.t, resp.Data).Token
}

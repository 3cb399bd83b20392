package httpserver

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

type stubPinger struct {
	err error
}

func (s stubPinger) Ping(context.Context) error {
	return s.err
}

func TestBuildRouter_MissingDeps(t *testing.T) {
	if _, err := buildRouter(nil, Deps{}); err == nil {
		t.Fatalf("expected error for missing deps")
	}
}

func TestHealthz(t *testing.T) {
	api := newTestAPI(t)
	resp := api.do(http.MethodGet, "/healthz", "", nil)
	api.expect(resp, http.StatusOK)
}

func TestReadyz(t *testing.T) {
	gin.SetMode(gin.TestMode)
	deps, _ := testDeps(t)

	deps.Ready = stubPinger{}
	router, err := buildRouter(nil, deps)
	if err != nil {
		t.Fatalf("build router: %v", err)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	deps.Ready = stubPinger{err: errors.New("down")}
	router, err = buildRouter(nil, deps)
	if err != nil {
		t.Fatalf("build router: %v", err)
	}
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestSessionMiddleware_RequiresToken(t *testing.T) {
	api := newTestAPI(t)
	api.expect(api.do(http.MethodGet, "/cart", "", nil), http.StatusUnauthorized)
	api.expect(api.do(http.MethodGet, "/cart", "not-a-token", nil), http.StatusUnauthorized)
}

func TestBearerToken(t *testing.T) {
	cases := map[string]string{
		"Bearer abc":   "abc",
		"bearer  abc ": "abc",
		"Basic abc":    "",
		"":             "",
	}
	for header, want := range cases {
		if got := bearerToken(header); got != want {
			t.Fatalf("%q: expected %q, got %q", header, want, got)
		}
	}
}

func TestCatalogRoutes(t *testing.T) {
	api := newTestAPI(t)

	resp := api.do(http.MethodGet, "/products?category=Dairy%20%26%20Eggs&sort=price", "", nil)
	api.expect(resp, http.StatusOK)
	list := decode[productList](t, resp.Data)
	if list.Count != 4 {
		t.Fatalf("expected 4 dairy products, got %d", list.Count)
	}
	for i := 1; i < len(list.Results); i++ {
		if list.Results[i].Price.LessThan(list.Results[i-1].Price) {
			t.Fatalf("expected ascending price order")
		}
	}

	resp = api.do(http.MethodGet, "/products/p-001", "", nil)
	api.expect(resp, http.StatusOK)
	api.expect(api.do(http.MethodGet, "/products/p-999", "", nil), http.StatusNotFound)
	api.expect(api.do(http.MethodGet, "/time-slots", "", nil), http.StatusOK)
	api.expect(api.do(http.MethodGet, "/brands", "", nil), http.StatusOK)
	api.expect(api.do(http.MethodGet, "/categories", "", nil), http.StatusOK)
}

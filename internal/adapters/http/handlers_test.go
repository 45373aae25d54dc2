package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	handler "github.com/naturkollen/skyddadnatur/internal/adapters/http"
	"github.com/naturkollen/skyddadnatur/internal/adapters/naturvard"
	"github.com/naturkollen/skyddadnatur/internal/adapters/valkey"
	"github.com/naturkollen/skyddadnatur/internal/core/domain"
	"github.com/naturkollen/skyddadnatur/internal/core/ports"
	"github.com/naturkollen/skyddadnatur/internal/core/usecases"
)

// ---- Mock sources ----

type mockSource struct {
	source     domain.Source
	listFn     func(ctx context.Context, filter domain.AreaFilter) ([]domain.Area, error)
	geometryFn func(ctx context.Context, id, status string) (string, error)
	extentFn   func(ctx context.Context, ids []string) (string, error)
}

func (m *mockSource) Source() domain.Source {
	if m.source == "" {
		return domain.SourceNVR
	}
	return m.source
}

func (m *mockSource) List(ctx context.Context, filter domain.AreaFilter) ([]domain.Area, error) {
	if m.listFn != nil {
		return m.listFn(ctx, filter)
	}
	return nil, nil
}

func (m *mockSource) Geometry(ctx context.Context, id, status string) (string, error) {
	if m.geometryFn != nil {
		return m.geometryFn(ctx, id, status)
	}
	return "", naturvard.ErrNotFound
}

func (m *mockSource) Extent(ctx context.Context, ids []string) (string, error) {
	if m.extentFn != nil {
		return m.extentFn(ctx, ids)
	}
	return "", naturvard.ErrUpstream
}

// ---- Test helpers ----

func setupApp(deps *handler.Dependencies) *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	handler.SetupRoutes(app, deps)
	return app
}

func makeDeps(src *mockSource) *handler.Dependencies {
	sources := map[domain.Source]ports.AreaSource{
		domain.SourceNVR: src,
	}
	areas := usecases.NewAreaService(sources, nil)
	return &handler.Dependencies{
		Areas:   areas,
		Extents: usecases.NewExtentService(sources, areas),
		Sources: sources,
	}
}

func readBody(t *testing.T, body io.Reader) []byte {
	t.Helper()
	b, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return b
}

// ---- Source handler tests ----

func TestListSources(t *testing.T) {
	app := setupApp(makeDeps(&mockSource{}))

	req := httptest.NewRequest("GET", "/v1/sources", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var sources []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&sources); err != nil {
		t.Fatal(err)
	}
	if len(sources) != 3 {
		t.Fatalf("expected 3 sources, got %d", len(sources))
	}
	if sources[0].ID != "nvr" {
		t.Errorf("expected first source nvr, got %s", sources[0].ID)
	}
}

// ---- Area list handler tests ----

func TestListAreas_Success(t *testing.T) {
	deps := makeDeps(&mockSource{
		listFn: func(ctx context.Context, filter domain.AreaFilter) ([]domain.Area, error) {
			return []domain.Area{
				{ID: "2001234", Source: domain.SourceNVR, Name: "Tyresta", Category: "Nationalpark"},
				{ID: "2005678", Source: domain.SourceNVR, Name: "Abisko", Category: "Nationalpark"},
			}, nil
		},
	})
	app := setupApp(deps)

	req := httptest.NewRequest("GET", "/v1/areas", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result struct {
		Data       []domain.Area `json:"data"`
		Pagination struct {
			Total int `json:"total"`
		} `json:"pagination"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatal(err)
	}
	if result.Pagination.Total != 2 {
		t.Errorf("expected total 2, got %d", result.Pagination.Total)
	}
	if len(result.Data) != 2 {
		t.Errorf("expected 2 areas, got %d", len(result.Data))
	}
	if result.Data[0].Name != "Tyresta" {
		t.Errorf("expected Tyresta, got %s", result.Data[0].Name)
	}
}

func TestListAreas_Pagination(t *testing.T) {
	areas := make([]domain.Area, 5)
	for i := range areas {
		areas[i] = domain.Area{ID: fmt.Sprintf("200%d", i), Name: fmt.Sprintf("Area %d", i)}
	}
	deps := makeDeps(&mockSource{
		listFn: func(ctx context.Context, filter domain.AreaFilter) ([]domain.Area, error) {
			return areas, nil
		},
	})
	app := setupApp(deps)

	req := httptest.NewRequest("GET", "/v1/areas?offset=2&limit=2", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result struct {
		Data       []domain.Area `json:"data"`
		Pagination struct {
			Offset int `json:"offset"`
			Limit  int `json:"limit"`
			Total  int `json:"total"`
		} `json:"pagination"`
	}
	json.NewDecoder(resp.Body).Decode(&result)
	if result.Pagination.Total != 5 {
		t.Errorf("expected total 5, got %d", result.Pagination.Total)
	}
	if len(result.Data) != 2 {
		t.Errorf("expected 2 areas in page, got %d", len(result.Data))
	}
	if result.Data[0].ID != "2002" {
		t.Errorf("expected page to start at 2002, got %s", result.Data[0].ID)
	}
	if resp.Header.Get("Link") == "" {
		t.Error("expected Link header on paginated response")
	}
}

func TestListAreas_PaginationWithLimitHonoringUpstream(t *testing.T) {
	// The registries honor the requested page size, so the upstream
	// fetch must not shrink to the client's page size or offsets past
	// the first client page would always come back empty.
	areas := make([]domain.Area, 5)
	for i := range areas {
		areas[i] = domain.Area{ID: fmt.Sprintf("200%d", i), Name: fmt.Sprintf("Area %d", i)}
	}
	var gotLimit int
	deps := makeDeps(&mockSource{
		listFn: func(ctx context.Context, filter domain.AreaFilter) ([]domain.Area, error) {
			gotLimit = filter.Limit
			if filter.Limit < len(areas) {
				return areas[:filter.Limit], nil
			}
			return areas, nil
		},
	})
	app := setupApp(deps)

	req := httptest.NewRequest("GET", "/v1/areas?offset=2&limit=2", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result struct {
		Data       []domain.Area `json:"data"`
		Pagination struct {
			Total int `json:"total"`
		} `json:"pagination"`
	}
	json.NewDecoder(resp.Body).Decode(&result)
	if gotLimit <= 2 {
		t.Errorf("upstream fetch size coupled to client limit: %d", gotLimit)
	}
	if result.Pagination.Total != 5 {
		t.Errorf("expected total 5, got %d", result.Pagination.Total)
	}
	if len(result.Data) != 2 {
		t.Fatalf("expected 2 areas at offset 2, got %d", len(result.Data))
	}
	if result.Data[0].ID != "2002" || result.Data[1].ID != "2003" {
		t.Errorf("wrong page contents: %+v", result.Data)
	}
}

func TestListAreas_CountyNameTranslated(t *testing.T) {
	var gotCode string
	deps := makeDeps(&mockSource{
		listFn: func(ctx context.Context, filter domain.AreaFilter) ([]domain.Area, error) {
			gotCode = filter.CountyCode
			return nil, nil
		},
	})
	app := setupApp(deps)

	req := httptest.NewRequest("GET", "/v1/areas?county=Sk%C3%A5ne", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if gotCode != "12" {
		t.Errorf("expected county code 12 for Skåne, got %q", gotCode)
	}
}

func TestListAreas_UnknownCounty(t *testing.T) {
	app := setupApp(makeDeps(&mockSource{}))

	req := httptest.NewRequest("GET", "/v1/areas?county=Atlantis", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}

	var apiErr handler.APIError
	json.Unmarshal(readBody(t, resp.Body), &apiErr)
	if apiErr.Code != "bad_request" {
		t.Errorf("expected code bad_request, got %s", apiErr.Code)
	}
}

func TestListAreas_InvalidSource(t *testing.T) {
	app := setupApp(makeDeps(&mockSource{}))

	req := httptest.NewRequest("GET", "/v1/areas?source=bogus", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestListAreas_UpstreamError(t *testing.T) {
	deps := makeDeps(&mockSource{
		listFn: func(ctx context.Context, filter domain.AreaFilter) ([]domain.Area, error) {
			return nil, fmt.Errorf("%w: status 503", naturvard.ErrUpstream)
		},
	})
	app := setupApp(deps)

	req := httptest.NewRequest("GET", "/v1/areas", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 502 {
		t.Fatalf("expected 502, got %d", resp.StatusCode)
	}

	var apiErr handler.APIError
	json.Unmarshal(readBody(t, resp.Body), &apiErr)
	if apiErr.Code != "upstream_error" {
		t.Errorf("expected code upstream_error, got %s", apiErr.Code)
	}
}

// ---- Geometry handler tests ----

func TestGetAreaGeometry_Success(t *testing.T) {
	deps := makeDeps(&mockSource{
		geometryFn: func(ctx context.Context, id, status string) (string, error) {
			// Stockholm in the national grid.
			return "POINT (674032 6580822)", nil
		},
	})
	app := setupApp(deps)

	req := httptest.NewRequest("GET", "/v1/areas/2001234/geometry", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var geom domain.Geometry
	if err := json.NewDecoder(resp.Body).Decode(&geom); err != nil {
		t.Fatal(err)
	}
	if geom.ID != "2001234" {
		t.Errorf("expected id 2001234, got %s", geom.ID)
	}
	if geom.CRS != domain.CRSWGS84 {
		t.Errorf("expected CRS %s, got %s", domain.CRSWGS84, geom.CRS)
	}
	if !strings.Contains(geom.WKT, "18.0") || !strings.Contains(geom.WKT, "59.3") {
		t.Errorf("expected longitude/latitude in WGS 84, got %s", geom.WKT)
	}
}

func TestGetAreaGeometry_NotFound(t *testing.T) {
	app := setupApp(makeDeps(&mockSource{}))

	req := httptest.NewRequest("GET", "/v1/areas/999/geometry", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 404 {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}

	var apiErr handler.APIError
	json.Unmarshal(readBody(t, resp.Body), &apiErr)
	if apiErr.Code != "not_found" {
		t.Errorf("expected code not_found, got %s", apiErr.Code)
	}
}

func TestGetAreaGeometry_StatusForwarded(t *testing.T) {
	var gotStatus string
	deps := makeDeps(&mockSource{
		geometryFn: func(ctx context.Context, id, status string) (string, error) {
			gotStatus = status
			return "POINT (500000 6651411)", nil
		},
	})
	app := setupApp(deps)

	req := httptest.NewRequest("GET", "/v1/areas/1/geometry?status=G%C3%A4llande", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if gotStatus != "Gällande" {
		t.Errorf("expected status Gällande, got %q", gotStatus)
	}
}

// ---- Extent handler tests ----

func TestAreasExtent_Success(t *testing.T) {
	deps := makeDeps(&mockSource{
		extentFn: func(ctx context.Context, ids []string) (string, error) {
			return "POLYGON ((500000 6500000, 600000 6500000, 600000 6600000, 500000 6600000, 500000 6500000))", nil
		},
	})
	app := setupApp(deps)

	req := httptest.NewRequest("GET", "/v1/areas/extent?ids=2001234,2005678", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var extent domain.Extent
	if err := json.NewDecoder(resp.Body).Decode(&extent); err != nil {
		t.Fatal(err)
	}
	if len(extent.IDs) != 2 {
		t.Errorf("expected 2 ids, got %d", len(extent.IDs))
	}
	if extent.CRS != domain.CRSWGS84 {
		t.Errorf("expected CRS %s, got %s", domain.CRSWGS84, extent.CRS)
	}
	if !strings.HasPrefix(extent.WKT, "POLYGON ((") {
		t.Errorf("expected a WKT polygon, got %s", extent.WKT)
	}
}

func TestAreasExtent_FallbackOnUpstreamFailure(t *testing.T) {
	deps := makeDeps(&mockSource{
		geometryFn: func(ctx context.Context, id, status string) (string, error) {
			switch id {
			case "a":
				return "POLYGON ((500000 6500000, 510000 6500000, 510000 6510000, 500000 6500000))", nil
			case "b":
				return "POLYGON ((520000 6520000, 530000 6520000, 530000 6530000, 520000 6520000))", nil
			}
			return "", naturvard.ErrNotFound
		},
	})
	app := setupApp(deps)

	req := httptest.NewRequest("GET", "/v1/areas/extent?ids=a,b", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200 via fallback, got %d", resp.StatusCode)
	}

	var extent domain.Extent
	json.NewDecoder(resp.Body).Decode(&extent)
	if !strings.HasPrefix(extent.WKT, "POLYGON ((") {
		t.Errorf("expected a WKT polygon, got %s", extent.WKT)
	}
}

func TestAreasExtent_MissingIDs(t *testing.T) {
	app := setupApp(makeDeps(&mockSource{}))

	req := httptest.NewRequest("GET", "/v1/areas/extent", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestAreasExtent_BlankIDs(t *testing.T) {
	app := setupApp(makeDeps(&mockSource{}))

	req := httptest.NewRequest("GET", "/v1/areas/extent?ids=,%20,", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestAreasExtent_TooManyIDs(t *testing.T) {
	ids := make([]string, 51)
	for i := range ids {
		ids[i] = fmt.Sprintf("%d", i)
	}
	app := setupApp(makeDeps(&mockSource{}))

	req := httptest.NewRequest("GET", "/v1/areas/extent?ids="+strings.Join(ids, ","), nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

// ---- GraphQL tests ----

func TestGraphQL_Areas(t *testing.T) {
	deps := makeDeps(&mockSource{
		listFn: func(ctx context.Context, filter domain.AreaFilter) ([]domain.Area, error) {
			if filter.Name != "Tyresta" {
				t.Errorf("name filter not forwarded: %q", filter.Name)
			}
			return []domain.Area{{ID: "2001234", Name: "Tyresta"}}, nil
		},
	})
	app := setupApp(deps)

	body := strings.NewReader(`{"query":"{ areas(name: \"Tyresta\") { id name } }"}`)
	req := httptest.NewRequest("POST", "/graphql", body)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result struct {
		Data struct {
			Areas []struct {
				ID   string `json:"id"`
				Name string `json:"name"`
			} `json:"areas"`
		} `json:"data"`
		Errors []interface{} `json:"errors"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatal(err)
	}
	if len(result.Errors) > 0 {
		t.Fatalf("unexpected graphql errors: %v", result.Errors)
	}
	if len(result.Data.Areas) != 1 || result.Data.Areas[0].Name != "Tyresta" {
		t.Errorf("unexpected result: %+v", result.Data.Areas)
	}
}

// ---- Health tests ----

func TestHealth(t *testing.T) {
	app := setupApp(makeDeps(&mockSource{}))

	req := httptest.NewRequest("GET", "/v1/health", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

type mockCacheSvc struct {
	getErr error
}

func (m *mockCacheSvc) Get(ctx context.Context, key string) ([]byte, error) {
	return nil, m.getErr
}
func (m *mockCacheSvc) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	return nil
}
func (m *mockCacheSvc) Delete(ctx context.Context, key string) error { return nil }

func readyChecks(t *testing.T, app *fiber.App) (int, map[string]string) {
	t.Helper()
	req := httptest.NewRequest("GET", "/v1/ready", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	var body struct {
		Checks map[string]string `json:"checks"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	return resp.StatusCode, body.Checks
}

func TestReady_CacheMissIsHealthy(t *testing.T) {
	deps := makeDeps(&mockSource{})
	deps.Cache = &mockCacheSvc{getErr: valkey.ErrMiss}
	app := setupApp(deps)

	code, checks := readyChecks(t, app)
	if code != 200 {
		t.Fatalf("expected 200, got %d", code)
	}
	if checks["cache"] != "ok" {
		t.Errorf("a miss on the probe key must read as healthy, got %q", checks["cache"])
	}
}

func TestReady_CacheTransportErrorDegrades(t *testing.T) {
	deps := makeDeps(&mockSource{})
	deps.Cache = &mockCacheSvc{getErr: errors.New("dial tcp 127.0.0.1:6379: connection refused")}
	app := setupApp(deps)

	// The service works uncached, so a broken cache is reported but
	// does not fail readiness.
	code, checks := readyChecks(t, app)
	if code != 200 {
		t.Fatalf("expected 200, got %d", code)
	}
	if !strings.HasPrefix(checks["cache"], "error:") {
		t.Errorf("expected cache error to be reported, got %q", checks["cache"])
	}
}

func TestReady_NoSources(t *testing.T) {
	deps := makeDeps(&mockSource{})
	deps.Sources = nil
	app := setupApp(deps)

	req := httptest.NewRequest("GET", "/v1/ready", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 503 {
		t.Fatalf("expected 503, got %d", resp.StatusCode)
	}
}

package naturvard

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/naturkollen/skyddadnatur/internal/core/domain"
)

func newTestRegistry(t *testing.T, handler http.HandlerFunc) *RegistryClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewNVR(NewClient(srv.URL, 5*time.Second))
}

func TestList_MapsRecordsAndQuery(t *testing.T) {
	var gotPath, gotQuery string
	reg := newTestRegistry(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"id":"2001234","namn":"Tyresta","skyddstyp":"Nationalpark","beslutsstatus":"Gällande","lan":"Stockholms län","kommun":"Haninge","areaHa":1960.5,"beslutsar":1993}
		]`))
	})

	areas, err := reg.List(context.Background(), domain.AreaFilter{
		Name:       "Tyresta",
		CountyCode: "01",
		Limit:      10,
	})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if gotPath != "/naturvardsregistret/omraden" {
		t.Errorf("unexpected path %s", gotPath)
	}
	for _, want := range []string{"namn=Tyresta", "lanskod=01", "limit=10"} {
		if !strings.Contains(gotQuery, want) {
			t.Errorf("query %q missing %q", gotQuery, want)
		}
	}
	if len(areas) != 1 {
		t.Fatalf("expected 1 area, got %d", len(areas))
	}
	a := areas[0]
	if a.ID != "2001234" || a.Name != "Tyresta" || a.Category != "Nationalpark" {
		t.Errorf("record not mapped: %+v", a)
	}
	if a.Source != domain.SourceNVR {
		t.Errorf("expected source nvr, got %s", a.Source)
	}
	if a.AreaHa != 1960.5 || a.DecidedYear != 1993 {
		t.Errorf("numeric fields not mapped: %+v", a)
	}
}

func TestGeometry_ReturnsTrimmedWKT(t *testing.T) {
	reg := newTestRegistry(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/naturvardsregistret/omrade/2001234/geometri" {
			http.NotFound(w, r)
			return
		}
		if r.URL.Query().Get("status") != "Gällande" {
			t.Errorf("status not forwarded: %s", r.URL.RawQuery)
		}
		w.Write([]byte("POLYGON ((674000 6580000, 675000 6580000, 675000 6581000, 674000 6580000))\n"))
	})

	wkt, err := reg.Geometry(context.Background(), "2001234", "Gällande")
	if err != nil {
		t.Fatalf("Geometry: %v", err)
	}
	if wkt != "POLYGON ((674000 6580000, 675000 6580000, 675000 6581000, 674000 6580000))" {
		t.Errorf("unexpected WKT: %q", wkt)
	}
}

func TestGeometry_NotFound(t *testing.T) {
	reg := newTestRegistry(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	_, err := reg.Geometry(context.Background(), "999", "")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	// A 404 is still an upstream condition.
	if !errors.Is(err, ErrUpstream) {
		t.Fatalf("expected ErrNotFound to wrap ErrUpstream, got %v", err)
	}
}

func TestGeometry_ServerError(t *testing.T) {
	reg := newTestRegistry(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "registret är inte tillgängligt", http.StatusServiceUnavailable)
	})

	_, err := reg.Geometry(context.Background(), "1", "")
	if !errors.Is(err, ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
	if errors.Is(err, ErrNotFound) {
		t.Fatalf("a 503 must not read as not-found: %v", err)
	}
}

func TestExtent_SendsIDsAsCSV(t *testing.T) {
	reg := newTestRegistry(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/naturvardsregistret/omraden/utbredning" {
			http.NotFound(w, r)
			return
		}
		if r.URL.Query().Get("ids") != "a,b,c" {
			t.Errorf("ids not joined: %s", r.URL.RawQuery)
		}
		w.Write([]byte("POLYGON ((500000 6500000, 600000 6500000, 600000 6600000, 500000 6600000, 500000 6500000))"))
	})

	wkt, err := reg.Extent(context.Background(), []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("Extent: %v", err)
	}
	if !strings.HasPrefix(wkt, "POLYGON") {
		t.Errorf("unexpected extent: %q", wkt)
	}
}

func TestDatasetPaths(t *testing.T) {
	cases := []struct {
		reg  func(*Client) *RegistryClient
		want string
	}{
		{NewNVR, "/naturvardsregistret/omraden"},
		{NewNatura2000, "/natura2000/omraden"},
		{NewRamsar, "/ramsar/omraden"},
	}
	for _, tc := range cases {
		var gotPath string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			w.Write([]byte("[]"))
		}))
		reg := tc.reg(NewClient(srv.URL, time.Second))
		if _, err := reg.List(context.Background(), domain.AreaFilter{}); err != nil {
			t.Fatalf("List: %v", err)
		}
		if gotPath != tc.want {
			t.Errorf("expected path %s, got %s", tc.want, gotPath)
		}
		srv.Close()
	}
}

func TestContextCancellation(t *testing.T) {
	reg := newTestRegistry(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte("[]"))
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := reg.List(ctx, domain.AreaFilter{})
	if !errors.Is(err, ErrUpstream) {
		t.Fatalf("expected ErrUpstream on cancelled context, got %v", err)
	}
}

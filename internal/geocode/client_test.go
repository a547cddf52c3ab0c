package geocode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("q") != "goa beach" || q.Get("format") != "json" || q.Get("limit") != "3" {
			t.Errorf("query = %v", q)
		}
		_, _ = w.Write([]byte(`[{"display_name":"Goa Beach, India","lat":"15.28","lon":"73.91"}]`))
	}))
	defer srv.Close()

	places, err := NewClient(srv.URL, 3).Search(context.Background(), "goa beach")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(places) != 1 || places[0].DisplayName != "Goa Beach, India" {
		t.Errorf("places = %+v", places)
	}
}

func TestSearchBlankQuery(t *testing.T) {
	c := NewClient("http://unused.invalid", 5)
	places, err := c.Search(context.Background(), "   ")
	if err != nil || places != nil {
		t.Errorf("Search blank = %v, %v; want nil, nil", places, err)
	}
}

func TestSearchServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	if _, err := NewClient(srv.URL, 5).Search(context.Background(), "goa"); err == nil {
		t.Error("expected error")
	}
}

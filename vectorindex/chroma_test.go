package vectorindex

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
)

type fakeEmbedder struct{}

func (fakeEmbedder) EmbedTexts(texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range out {
		out[i] = []float32{0.1, 0.2}
	}
	return out, nil
}

func (fakeEmbedder) ModelName() string { return "fake" }

func chromaConfigFor(t *testing.T, srv *httptest.Server) ChromaConfig {
	t.Helper()
	u, err := url.Parse(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	port, err := strconv.Atoi(u.Port())
	if err != nil {
		t.Fatal(err)
	}
	return ChromaConfig{Host: u.Hostname(), Port: port, CollectionName: "weekly_news"}
}

func TestNewChromaCreatesWhenLookupMalformed(t *testing.T) {
	// The lookup responds with a non-string id; the client must fall through
	// to the create path instead of panicking.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.Method == http.MethodGet {
			_, _ = w.Write([]byte(`{"id": 123}`))
			return
		}
		_, _ = w.Write([]byte(`{"id": "col-1"}`))
	}))
	defer srv.Close()

	c, err := NewChroma(chromaConfigFor(t, srv), fakeEmbedder{})
	if err != nil {
		t.Fatalf("NewChroma failed: %v", err)
	}
	if c.collectionID != "col-1" {
		t.Errorf("collectionID = %q, want col-1", c.collectionID)
	}
}

func TestNewChromaCreatesWhenLookupFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			http.Error(w, "no such collection", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": "col-2"}`))
	}))
	defer srv.Close()

	c, err := NewChroma(chromaConfigFor(t, srv), fakeEmbedder{})
	if err != nil {
		t.Fatalf("NewChroma failed: %v", err)
	}
	if c.collectionID != "col-2" {
		t.Errorf("collectionID = %q, want col-2", c.collectionID)
	}
}

func TestNewChromaUsesExistingCollection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": "col-existing"}`))
	}))
	defer srv.Close()

	c, err := NewChroma(chromaConfigFor(t, srv), fakeEmbedder{})
	if err != nil {
		t.Fatalf("NewChroma failed: %v", err)
	}
	if c.collectionID != "col-existing" {
		t.Errorf("collectionID = %q, want col-existing", c.collectionID)
	}
}

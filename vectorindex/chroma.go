// Package vectorindex maintains the Chroma search index over weekly bundle
// articles and answers similarity queries for the web UI.
package vectorindex

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
)

// Chroma wraps the Chroma vector database REST API (v2). Chroma v2 expects
// client-supplied embeddings, so every write and query path goes through the
// configured EmbeddingsProvider.
type Chroma struct {
	baseURL        string
	tenant         string
	database       string
	collectionName string
	collectionID   string
	httpClient     *http.Client
	embedder       EmbeddingsProvider
}

// ChromaConfig holds connection settings for the Chroma server.
type ChromaConfig struct {
	Host           string
	Port           int
	CollectionName string
}

// Document is one indexable article record.
type Document struct {
	ID       string
	Content  string
	Metadata map[string]interface{}
}

// QueryResults is the response shape of a similarity query.
type QueryResults struct {
	IDs       [][]string                 `json:"ids"`
	Distances [][]float32                `json:"distances"`
	Metadatas [][]map[string]interface{} `json:"metadatas"`
	Documents [][]string                 `json:"documents"`
}

// GetResults is the response shape of a get request.
type GetResults struct {
	IDs       []string                 `json:"ids"`
	Metadatas []map[string]interface{} `json:"metadatas"`
	Documents []string                 `json:"documents"`
}

// NewChroma connects to Chroma and gets or creates the news collection.
func NewChroma(config ChromaConfig, embedder EmbeddingsProvider) (*Chroma, error) {
	if embedder == nil {
		return nil, fmt.Errorf("no embeddings provider configured: set COHERE_API_KEY or OPENAI_API_KEY")
	}

	wrapper := &Chroma{
		baseURL:        fmt.Sprintf("http://%s:%d/api/v2", config.Host, config.Port),
		tenant:         "default_tenant",
		database:       "default_database",
		collectionName: config.CollectionName,
		httpClient:     &http.Client{},
		embedder:       embedder,
	}
	log.Printf("Using embeddings provider: %s", embedder.ModelName())

	collectionID, err := wrapper.getOrCreateCollection(config.CollectionName)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create collection: %w", err)
	}
	wrapper.collectionID = collectionID
	return wrapper, nil
}

func (c *Chroma) getOrCreateCollection(name string) (string, error) {
	url := fmt.Sprintf("%s/tenants/%s/databases/%s/collections/%s", c.baseURL, c.tenant, c.database, name)
	if id, ok := c.lookupCollection(url); ok {
		log.Printf("Using existing collection: %s", name)
		return id, nil
	}

	log.Printf("Creating new collection: %s", name)
	createURL := fmt.Sprintf("%s/tenants/%s/databases/%s/collections", c.baseURL, c.tenant, c.database)
	payload := map[string]interface{}{
		"name": name,
		"metadata": map[string]interface{}{
			"description": "Weekly AI news search collection",
		},
		"get_or_create": true,
	}

	body, err := c.post(createURL, payload)
	if err != nil {
		return "", err
	}

	var result map[string]interface{}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("failed to parse response: %w, body: %s", err, string(body))
	}
	id, ok := result["id"].(string)
	if !ok {
		return "", fmt.Errorf("collection response missing id: %s", string(body))
	}
	return id, nil
}

// lookupCollection fetches an existing collection's ID. Any failure (network,
// non-200, malformed body) reports not-found so the caller falls through to
// the create path.
func (c *Chroma) lookupCollection(url string) (string, bool) {
	resp, err := c.httpClient.Get(url)
	if err != nil {
		return "", false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", false
	}
	var result map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", false
	}
	id, ok := result["id"].(string)
	return id, ok && id != ""
}

func (c *Chroma) collectionURL() string {
	return fmt.Sprintf("%s/tenants/%s/databases/%s/collections/%s", c.baseURL, c.tenant, c.database, c.collectionID)
}

// AddDocuments indexes documents with client-side embeddings.
func (c *Chroma) AddDocuments(docs []Document) error {
	if len(docs) == 0 {
		return nil
	}

	documents := make([]string, len(docs))
	metadatas := make([]map[string]interface{}, len(docs))
	ids := make([]string, len(docs))
	for i, doc := range docs {
		documents[i] = doc.Content
		metadatas[i] = doc.Metadata
		ids[i] = doc.ID
	}

	embs, err := c.embedder.EmbedTexts(documents)
	if err != nil {
		return fmt.Errorf("failed to generate embeddings: %w", err)
	}

	payload := map[string]interface{}{
		"documents":  documents,
		"metadatas":  metadatas,
		"ids":        ids,
		"embeddings": embs,
	}
	if _, err := c.post(fmt.Sprintf("%s/add", c.collectionURL()), payload); err != nil {
		return fmt.Errorf("failed to add documents: %w", err)
	}
	log.Printf("Added %d document(s) to collection", len(docs))
	return nil
}

// QuerySimilar runs a similarity search for queryText.
func (c *Chroma) QuerySimilar(queryText string, nResults int) (*QueryResults, error) {
	embs, err := c.embedder.EmbedTexts([]string{queryText})
	if err != nil {
		return nil, fmt.Errorf("failed to generate query embeddings: %w", err)
	}

	payload := map[string]interface{}{
		"n_results":        nResults,
		"include":          []string{"metadatas", "documents", "distances"},
		"query_embeddings": embs,
	}
	body, err := c.post(fmt.Sprintf("%s/query", c.collectionURL()), payload)
	if err != nil {
		return nil, fmt.Errorf("failed to query collection: %w", err)
	}

	var result QueryResults
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListMetadatas returns the metadata of every indexed document, used to
// rebuild the seen-link set when Redis is unavailable.
func (c *Chroma) ListMetadatas() ([]map[string]interface{}, error) {
	payload := map[string]interface{}{
		"include": []string{"metadatas"},
	}
	body, err := c.post(fmt.Sprintf("%s/get", c.collectionURL()), payload)
	if err != nil {
		return nil, fmt.Errorf("failed to list metadatas: %w", err)
	}

	var result GetResults
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, err
	}
	return result.Metadatas, nil
}

// Count returns the number of indexed documents.
func (c *Chroma) Count() (int, error) {
	resp, err := c.httpClient.Get(fmt.Sprintf("%s/count", c.collectionURL()))
	if err != nil {
		return 0, fmt.Errorf("failed to count documents: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return 0, fmt.Errorf("failed to count documents: %s", string(body))
	}

	var count int
	if err := json.NewDecoder(resp.Body).Decode(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (c *Chroma) Close() error { return nil }

// post sends a JSON payload and returns the response body on 2xx.
func (c *Chroma) post(url string, payload map[string]interface{}) ([]byte, error) {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Post(url, "application/json", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, string(body))
	}
	return body, nil
}

package embeddings

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbed_SendsRequestAndParsesVector(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody embeddingRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"data": []map[string]interface{}{
				{"embedding": []float32{0.25, -0.5, 1.0}},
			},
		})
	}))
	defer server.Close()

	client := NewClient(Config{
		BaseURL:    server.URL,
		APIKey:     "sk-test",
		Model:      "text-embedding-3-small",
		Dimensions: 3,
	})

	vector, err := client.Embed(context.Background(), "Buy milk")
	require.NoError(t, err)

	assert.Equal(t, []float32{0.25, -0.5, 1.0}, vector)
	assert.Equal(t, "/v1/embeddings", gotPath)
	assert.Equal(t, "Bearer sk-test", gotAuth)
	assert.Equal(t, "Buy milk", gotBody.Input)
	assert.Equal(t, "text-embedding-3-small", gotBody.Model)
	assert.Equal(t, 3, gotBody.Dimensions)
}

func TestEmbed_NonOKStatusIsAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"rate limited"}`, http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL})

	_, err := client.Embed(context.Background(), "Buy milk")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestEmbed_EmptyResponseIsAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL})

	_, err := client.Embed(context.Background(), "Buy milk")
	assert.Error(t, err)
}

func TestEmbed_HonorsContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := client.Embed(ctx, "Buy milk")
	assert.Error(t, err)
}

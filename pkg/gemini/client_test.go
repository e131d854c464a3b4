package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/gemini-2.5-flash:generateContent", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))

		var req GenerateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Contents, 1)
		assert.Equal(t, "analyze this", req.Contents[0].Parts[0].Text)
		require.NotNil(t, req.GenerationConfig)
		assert.Equal(t, 2000, req.GenerationConfig.MaxOutputTokens)

		json.NewEncoder(w).Encode(GenerateResponse{
			Candidates: []Candidate{
				{Content: Content{Parts: []Part{{Text: "{\"Event\":"}, {Text: " \"fraud\"}"}}}},
			},
		})
	}))
	defer srv.Close()

	c := NewClient("test-key", WithBaseURL(srv.URL))
	temp := 0.3
	resp, err := c.GenerateContent(context.Background(), "gemini-2.5-flash", GenerateRequest{
		Contents: []Content{{Role: "user", Parts: []Part{{Text: "analyze this"}}}},
		GenerationConfig: &GenerationConfig{
			Temperature:     &temp,
			MaxOutputTokens: 2000,
		},
	})

	require.NoError(t, err)
	assert.Equal(t, `{"Event": "fraud"}`, resp.Text())
}

func TestGenerateContent_APIErrorPreservesStatusAndBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error": {"message": "Resource exhausted: quota"}}`))
	}))
	defer srv.Close()

	c := NewClient("test-key", WithBaseURL(srv.URL))
	_, err := c.GenerateContent(context.Background(), "gemini-2.5-flash", GenerateRequest{})

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
	assert.Contains(t, apiErr.Body, "quota")
}

func TestText_EmptyResponse(t *testing.T) {
	var resp *GenerateResponse
	assert.Equal(t, "", resp.Text())
	assert.Equal(t, "", (&GenerateResponse{}).Text())
}

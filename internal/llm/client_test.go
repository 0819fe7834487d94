package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOpenAIClientDefaults(t *testing.T) {
	client := NewOpenAIClient()
	assert.Empty(t, client.model)
}

func TestNewOpenAIClientWithModel(t *testing.T) {
	client := NewOpenAIClient(WithModel("gpt-4o-mini"))
	assert.Equal(t, "gpt-4o-mini", client.model)
}

func TestApplyDefaultsUsesClientModel(t *testing.T) {
	client := NewOpenAIClient(WithModel("gpt-4o-mini"))

	req := client.applyDefaults(ChatRequest{
		SystemMessage: "test",
		UserMessage:   "apple",
	})
	assert.Equal(t, "gpt-4o-mini", req.Model)
}

func TestApplyDefaultsRequestModelTakesPrecedence(t *testing.T) {
	client := NewOpenAIClient(WithModel("gpt-4o-mini"))

	req := client.applyDefaults(ChatRequest{
		Model:         "gpt-4o",
		SystemMessage: "test",
		UserMessage:   "apple",
	})
	assert.Equal(t, "gpt-4o", req.Model)
}

func TestChatCompletionPostsToConfiguredEndpoint(t *testing.T) {
	tests := []struct {
		name      string
		path      string
		wantPath  string
		wantQuery string
	}{
		{
			name:     "chat completions path",
			path:     "/v1/chat/completions",
			wantPath: "/v1/chat/completions",
		},
		{
			name:     "custom path",
			path:     "/api/score",
			wantPath: "/api/score",
		},
		{
			name:      "query string kept",
			path:      "/openai/chat/completions?api-version=2024-01-01",
			wantPath:  "/openai/chat/completions",
			wantQuery: "api-version=2024-01-01",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotMethod, gotPath, gotQuery string
			var calls int
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls++
				gotMethod = r.Method
				gotPath = r.URL.Path
				gotQuery = r.URL.RawQuery
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{"choices":[{"index":0,"message":{"role":"assistant","content":"1"}}]}`))
			}))
			defer srv.Close()

			client := NewOpenAIClient(WithEndpoint(srv.URL+tt.path), WithAPIKey("sk-test"))

			_, err := client.ChatCompletion(context.Background(), ChatRequest{Model: "m", UserMessage: "x"})
			require.NoError(t, err)

			assert.Equal(t, 1, calls)
			assert.Equal(t, http.MethodPost, gotMethod)
			assert.Equal(t, tt.wantPath, gotPath)
			assert.Equal(t, tt.wantQuery, gotQuery)
		})
	}
}

func TestChatCompletionEndpointWithCustomHTTPClient(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"index":0,"message":{"role":"assistant","content":"1"}}]}`))
	}))
	defer srv.Close()

	hc := &http.Client{}
	client := NewOpenAIClient(WithEndpoint(srv.URL+"/score"), WithHTTPClient(hc))

	_, err := client.ChatCompletion(context.Background(), ChatRequest{Model: "m", UserMessage: "x"})
	require.NoError(t, err)
	assert.Equal(t, "/score", gotPath)
	assert.Nil(t, hc.Transport)
}

func TestChatCompletionInvalidEndpoint(t *testing.T) {
	client := NewOpenAIClient(WithEndpoint("http://[::1"))

	_, err := client.ChatCompletion(context.Background(), ChatRequest{Model: "m", UserMessage: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid endpoint")
}

func TestChatCompletionSendsTwoMessagesWithBearerToken(t *testing.T) {
	var (
		gotAuth string
		gotPath string
		gotBody struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
	)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotBody)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"index":0,"message":{"role":"assistant","content":" 12.5 \n"}}]}`))
	}))
	defer srv.Close()

	client := NewOpenAIClient(
		WithEndpoint(srv.URL+"/v1/chat/completions"),
		WithAPIKey("sk-test"),
	)

	resp, err := client.ChatCompletion(context.Background(), ChatRequest{
		Model:         "gpt-4o-mini",
		SystemMessage: "rubric",
		UserMessage:   "  apple  ",
	})
	require.NoError(t, err)

	assert.Equal(t, " 12.5 \n", resp.Content)
	assert.Equal(t, "Bearer sk-test", gotAuth)
	assert.Equal(t, "/v1/chat/completions", gotPath)
	assert.Equal(t, "gpt-4o-mini", gotBody.Model)
	require.Len(t, gotBody.Messages, 2)
	assert.Equal(t, "system", gotBody.Messages[0].Role)
	assert.Equal(t, "rubric", gotBody.Messages[0].Content)
	assert.Equal(t, "user", gotBody.Messages[1].Role)
	assert.Equal(t, "  apple  ", gotBody.Messages[1].Content)
}

func TestChatCompletionNoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	client := NewOpenAIClient(WithBaseURL(srv.URL), WithAPIKey("sk-test"))

	_, err := client.ChatCompletion(context.Background(), ChatRequest{Model: "m", UserMessage: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no choices returned")
}

func TestResponseBodyOnFailure(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{
			name:   "plain text error",
			status: http.StatusBadGateway,
			body:   "upstream exploded",
		},
		{
			name:   "json error object",
			status: http.StatusUnauthorized,
			body:   `{"error":{"message":"Incorrect API key","type":"invalid_request_error"},"trace":"RAWMARKER"}`,
		},
		{
			name:   "malformed success body",
			status: http.StatusOK,
			body:   "<html>RAWMARKER</html>",
		},
		{
			name:   "success without choices",
			status: http.StatusOK,
			body:   `{"choices":[],"trace":"RAWMARKER"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			client := NewOpenAIClient(WithEndpoint(srv.URL+"/v1/chat/completions"), WithAPIKey("sk-test"))

			_, err := client.ChatCompletion(context.Background(), ChatRequest{Model: "m", UserMessage: "x"})
			require.Error(t, err)
			assert.Equal(t, tt.body, ResponseBody(err))
		})
	}
}

func TestResponseBodyIsBounded(t *testing.T) {
	large := strings.Repeat("x", maxCapturedBody*2)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(large))
	}))
	defer srv.Close()

	client := NewOpenAIClient(WithBaseURL(srv.URL), WithAPIKey("sk-test"))

	_, err := client.ChatCompletion(context.Background(), ChatRequest{Model: "m", UserMessage: "x"})
	require.Error(t, err)
	assert.Len(t, ResponseBody(err), maxCapturedBody)
}

func TestResponseBodyWithoutBody(t *testing.T) {
	assert.Empty(t, ResponseBody(assert.AnError))
	assert.Empty(t, ResponseBody(nil))
}

package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aleksanderujek/oro/internal/model"
)

func TestNewOpenAIProvider(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name: "valid config",
			config: Config{
				APIKey: "test-key",
			},
			wantErr: false,
		},
		{
			name: "missing API key",
			config: Config{
				APIKey: "",
			},
			wantErr: true,
		},
		{
			name: "custom model and settings",
			config: Config{
				APIKey:      "test-key",
				Model:       "gpt-4o",
				Temperature: 0.5,
				MaxTokens:   300,
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := newOpenAIProvider(tt.config)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.NotNil(t, p)
				assert.Equal(t, "openai", p.Name())
			}
		})
	}
}

func testDraft() model.ExpenseDraft {
	return model.ExpenseDraft{
		Name:       "Blue Bottle Coffee",
		Amount:     5.40,
		OccurredAt: time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
	}
}

func openAIContent(content string) openAIResponse {
	var resp openAIResponse
	resp.Choices = make([]struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
		Index        int    `json:"index"`
	}, 1)
	resp.Choices[0].Message.Content = content
	return resp
}

func TestOpenAIProviderSuggest(t *testing.T) {
	tests := []struct {
		name         string
		mockResponse openAIResponse
		wantTopKey   string
		statusCode   int
		wantCount    int
		wantErr      bool
	}{
		{
			name:         "successful suggestion",
			mockResponse: openAIContent(`{"suggestions":[{"category":"coffee","confidence":0.92},{"category":"dining","confidence":0.35}]}`),
			statusCode:   http.StatusOK,
			wantTopKey:   "coffee",
			wantCount:    2,
			wantErr:      false,
		},
		{
			name:         "fenced response still parses",
			mockResponse: openAIContent("```json\n" + `{"suggestions":[{"category":"groceries","confidence":0.88}]}` + "\n```"),
			statusCode:   http.StatusOK,
			wantTopKey:   "groceries",
			wantCount:    1,
			wantErr:      false,
		},
		{
			name:       "API error",
			statusCode: http.StatusInternalServerError,
			wantErr:    true,
		},
		{
			name:         "no choices in response",
			mockResponse: openAIResponse{},
			statusCode:   http.StatusOK,
			wantErr:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "POST", r.Method)
				assert.Equal(t, "/v1/chat/completions", r.URL.Path)
				assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

				var body map[string]any
				require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
				assert.Equal(t, "gpt-4o-mini", body["model"])

				w.WriteHeader(tt.statusCode)
				if tt.statusCode == http.StatusOK {
					_ = json.NewEncoder(w).Encode(tt.mockResponse)
				}
			}))
			defer server.Close()

			p := &openAIProvider{
				apiKey:      "test-key",
				model:       "gpt-4o-mini",
				baseURL:     server.URL,
				temperature: 0.3,
				maxTokens:   200,
				httpClient:  server.Client(),
			}

			suggestions, err := p.Suggest(context.Background(), testDraft(), testCategories())

			if tt.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			require.Len(t, suggestions, tt.wantCount)
			assert.Equal(t, tt.wantTopKey, suggestions[0].CategoryKey)
			require.NoError(t, suggestions.Validate())
		})
	}
}

func TestOpenAIProviderSuggestHonorsContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	p := &openAIProvider{
		apiKey:     "test-key",
		model:      "gpt-4o-mini",
		baseURL:    server.URL,
		httpClient: server.Client(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := p.Suggest(ctx, testDraft(), testCategories())
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

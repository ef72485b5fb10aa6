package analysis

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 1x1 transparent PNG
var tinyPNG, _ = base64.StdEncoding.DecodeString(
	"iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAQAAAC1HAwCAAAAC0lEQVR42mNkYAAAAAYAAjCB0C8AAAAASUVORK5CYII=")

func geminiReply(text string) string {
	b, _ := json.Marshal(map[string]interface{}{
		"candidates": []map[string]interface{}{
			{"content": map[string]interface{}{"parts": []map[string]string{{"text": text}}}},
		},
	})
	return string(b)
}

func newTestGemini(t *testing.T, handler http.HandlerFunc) *GeminiClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewGeminiClient("test-key", "gemini-test", WithBaseURL(srv.URL), WithImageClient(srv.Client()))
}

func TestGeminiClient_AnalyzeText(t *testing.T) {
	t.Parallel()

	var gotPath, gotKey string
	client := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("key")
		_, _ = w.Write([]byte(geminiReply("```json\n" +
			`{"estimatedCarbs": 62, "estimatedSugar": 3, "summary": "Rice and beans", "carbSource": "rice", "recommendations": ["Add protein", " "]}` +
			"\n```")))
	})

	res, err := client.AnalyzeText(context.Background(), "rice and beans")
	require.NoError(t, err)

	assert.Equal(t, "/gemini-test:generateContent", gotPath)
	assert.Equal(t, "test-key", gotKey)
	assert.Equal(t, 62.0, res.EstimatedCarbs)
	assert.Equal(t, 3.0, res.EstimatedSugar)
	assert.Equal(t, "rice", res.CarbSource)
	assert.Equal(t, []string{"Add protein"}, res.Recommendations)
}

func TestGeminiClient_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status int
		body   string
		want   Kind
	}{
		{"quota", http.StatusTooManyRequests, `{"error":{"status":"RESOURCE_EXHAUSTED"}}`, KindQuota},
		{"server error", http.StatusInternalServerError, `oops`, KindUpstream},
		{"not json", http.StatusOK, geminiReply("I think about 40 grams"), KindMalformed},
		{"negative carbs", http.StatusOK, geminiReply(`{"estimatedCarbs": -5, "summary": "x"}`), KindMalformed},
		{"missing carbs", http.StatusOK, geminiReply(`{"summary": "x"}`), KindMalformed},
		{"no candidates", http.StatusOK, `{"candidates": []}`, KindMalformed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := client.AnalyzeText(context.Background(), "pasta")
			require.Error(t, err)
			assert.Equal(t, tt.want, KindOf(err))
		})
	}
}

func TestGeminiClient_NoAPIKey(t *testing.T) {
	t.Parallel()

	client := NewGeminiClient("", "")

	_, err := client.AnalyzeText(context.Background(), "pasta")
	assert.Equal(t, KindUnavailable, KindOf(err))
	assert.ErrorIs(t, err, ErrNoAPIKey)

	_, err = client.AnalyzePhoto(context.Background(), "data:image/png;base64,AAAA")
	assert.Equal(t, KindUnavailable, KindOf(err))
}

func TestGeminiClient_Timeout(t *testing.T) {
	t.Parallel()

	client := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.AnalyzeText(ctx, "pasta")
	assert.Equal(t, KindTimeout, KindOf(err))
}

func TestGeminiClient_Clarify(t *testing.T) {
	t.Parallel()

	client := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(geminiReply(`Here you go: ["How big was the bowl?", "Was it white or brown rice?", "Any sauce?"]`)))
	})

	questions, err := client.Clarify(context.Background(), "rice bowl")
	require.NoError(t, err)
	assert.Len(t, questions, 3)
	assert.Equal(t, "How big was the bowl?", questions[0])
}

func TestGeminiClient_AnalyzePhotoFetchesRemoteImage(t *testing.T) {
	t.Parallel()

	var inlineMime string
	mux := http.NewServeMux()
	mux.HandleFunc("/photos/lunch.png", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(tinyPNG)
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		var req geminiRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		for _, p := range req.Contents[0].Parts {
			if p.InlineData != nil {
				inlineMime = p.InlineData.MimeType
			}
		}
		_, _ = w.Write([]byte(geminiReply(`{"foods": ["rice", "chicken curry"], "description": "Chicken curry with rice", "carbSource": "rice", "estimatedCarbs": 70}`)))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	client := NewGeminiClient("k", "m", WithBaseURL(srv.URL), WithImageClient(srv.Client()))

	res, err := client.AnalyzePhoto(context.Background(), srv.URL+"/photos/lunch.png")
	require.NoError(t, err)

	assert.Equal(t, "image/png", inlineMime)
	assert.Equal(t, []string{"rice", "chicken curry"}, res.Foods)
	assert.Equal(t, 70.0, res.EstimatedCarbs)
	assert.True(t, res.Usable())
}

func TestGeminiClient_AnalyzePhotoRejectsBadReference(t *testing.T) {
	t.Parallel()

	client := NewGeminiClient("k", "m")

	_, err := client.AnalyzePhoto(context.Background(), "ftp://example.com/a.png")
	assert.Equal(t, KindMalformed, KindOf(err))

	_, err = client.AnalyzePhoto(context.Background(), "data:image/png,notbase64")
	assert.Equal(t, KindMalformed, KindOf(err))
}

func TestDecodeDataURL(t *testing.T) {
	t.Parallel()

	ref := "data:image/png;base64," + base64.StdEncoding.EncodeToString(tinyPNG)
	mimeType, data, err := DecodeDataURL(ref)
	require.NoError(t, err)
	assert.Equal(t, "image/png", mimeType)
	assert.Equal(t, tinyPNG, data)

	_, _, err = DecodeDataURL("data:image/png;base64,%%%")
	assert.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "imageData must be"))
}

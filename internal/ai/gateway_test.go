package ai_test

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/dom/whats-cookin/internal/ai"
	"github.com/dom/whats-cookin/internal/domain"
	"github.com/dom/whats-cookin/internal/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fakeCompleter struct {
	reply     string
	err       error
	parts     []ai.ContentPart
	maxTokens int
}

func (f *fakeCompleter) Complete(ctx context.Context, parts []ai.ContentPart, maxTokens int) (string, error) {
	f.parts = parts
	f.maxTokens = maxTokens
	return f.reply, f.err
}

// pngHeader is enough for http.DetectContentType to report image/png.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestGateway_DetectIngredients(t *testing.T) {
	tests := []struct {
		name    string
		reply   string
		err     error
		want    []string
		wantErr error
	}{
		{name: "clean reply", reply: `["chicken thighs", "onions"]`, want: []string{"chicken thighs", "onions"}},
		{name: "prose reply", reply: `I can see: ["egg"]. Hope that helps!`, want: []string{"egg"}},
		{name: "unparseable reply", reply: `Sorry, I can't tell.`, want: []string{}},
		{name: "provider down", err: fmt.Errorf("%w: status 502", ai.ErrProviderUnavailable), wantErr: ai.ErrProviderUnavailable},
		{name: "malformed envelope", err: fmt.Errorf("%w: no choices", ai.ErrProviderMalformedReply), wantErr: ai.ErrProviderMalformedReply},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			completer := &fakeCompleter{reply: tt.reply, err: tt.err}
			gateway := ai.NewGateway(completer, metrics.New(), zaptest.NewLogger(t))

			got, err := gateway.DetectIngredients(context.Background(), pngHeader)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGateway_DetectIngredients_Request(t *testing.T) {
	completer := &fakeCompleter{reply: `[]`}
	gateway := ai.NewGateway(completer, metrics.New(), zaptest.NewLogger(t))

	_, err := gateway.DetectIngredients(context.Background(), pngHeader)
	require.NoError(t, err)

	assert.Equal(t, 300, completer.maxTokens)
	require.Len(t, completer.parts, 2)
	assert.Equal(t, "text", completer.parts[0].Type)
	assert.Contains(t, completer.parts[0].Text, "JSON array")
	assert.Equal(t, "image_url", completer.parts[1].Type)
	require.NotNil(t, completer.parts[1].ImageURL)
	assert.Equal(t, "data:image/png;base64,"+base64.StdEncoding.EncodeToString(pngHeader), completer.parts[1].ImageURL.URL)
}

func TestGateway_DetectIngredients_UnknownImageTypeSentAsJPEG(t *testing.T) {
	completer := &fakeCompleter{reply: `[]`}
	gateway := ai.NewGateway(completer, metrics.New(), zaptest.NewLogger(t))

	_, err := gateway.DetectIngredients(context.Background(), []byte("raw bytes"))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(completer.parts[1].ImageURL.URL, "data:image/jpeg;base64,"))
}

func TestGateway_RecommendRecipes(t *testing.T) {
	tests := []struct {
		name    string
		reply   string
		err     error
		want    []domain.Recommendation
		wantErr error
	}{
		{
			name:  "clean reply",
			reply: `[{"name":"Omelette","link":"https://example.com/omelette"}]`,
			want:  []domain.Recommendation{{Name: "Omelette", Link: "https://example.com/omelette"}},
		},
		{name: "unparseable reply", reply: `no ideas`, want: []domain.Recommendation{}},
		{name: "provider down", err: errors.Join(ai.ErrProviderUnavailable, context.DeadlineExceeded), wantErr: ai.ErrProviderUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			completer := &fakeCompleter{reply: tt.reply, err: tt.err}
			gateway := ai.NewGateway(completer, metrics.New(), zaptest.NewLogger(t))

			got, err := gateway.RecommendRecipes(context.Background(), []string{"egg", "cheese"})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGateway_RecommendRecipes_Prompt(t *testing.T) {
	completer := &fakeCompleter{reply: `[]`}
	gateway := ai.NewGateway(completer, metrics.New(), zaptest.NewLogger(t))

	_, err := gateway.RecommendRecipes(context.Background(), []string{"chicken", "soy sauce", "onion"})
	require.NoError(t, err)

	assert.Equal(t, 800, completer.maxTokens)
	require.Len(t, completer.parts, 1)
	prompt := completer.parts[0].Text
	assert.Contains(t, prompt, "Given these ingredients: chicken, soy sauce, onion")
	assert.Contains(t, prompt, "Suggest 5 recipe ideas")
	assert.Contains(t, prompt, `{"name": "Recipe Name", "link": "https://..."}`)
}

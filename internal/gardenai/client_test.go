package gardenai

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProvider returns canned responses and counts calls.
type fakeProvider struct {
	responses []string
	errs      []error
	calls     int
	lastWeb   bool
}

func (f *fakeProvider) Generate(_ context.Context, _ string, webSearch bool) (string, error) {
	idx := f.calls
	f.calls++
	f.lastWeb = webSearch
	if idx < len(f.errs) && f.errs[idx] != nil {
		return "", f.errs[idx]
	}
	if idx < len(f.responses) {
		return f.responses[idx], nil
	}
	return "", fmt.Errorf("no response configured for call %d", idx)
}

func TestStripCodeFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare_json", `{"a": 1}`, `{"a": 1}`},
		{"fenced_with_tag", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"fenced_no_tag", "```\n{\"a\": 1}\n```", `{"a": 1}`},
		{"surrounding_whitespace", "  ```json\n{\"a\": 1}\n```  ", `{"a": 1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stripCodeFences(tt.in))
		})
	}
}

func TestIdentify_VerifiedResult(t *testing.T) {
	provider := &fakeProvider{responses: []string{
		"```json\n" + `{"identified": true, "confidence": "verified", "plant": {"common_name": "Lavender", "scientific_name": "Lavandula angustifolia", "top_level": "Shrub", "middle_level": "Lavandula"}}` + "\n```",
	}}
	client := NewClient(provider)

	result, err := client.Identify(context.Background(), "Lavender")

	require.NoError(t, err)
	assert.True(t, result.Identified)
	assert.Equal(t, ConfidenceVerified, result.Confidence)
	require.NotNil(t, result.Plant)
	assert.Equal(t, "Lavender", result.Plant.CommonName)
	assert.False(t, provider.lastWeb, "plain identification must not use web search")
}

func TestIdentify_CachedByRawQuery(t *testing.T) {
	provider := &fakeProvider{responses: []string{
		`{"identified": true, "confidence": "verified", "plant": {"common_name": "Lavender"}}`,
	}}
	client := NewClient(provider)

	_, err := client.Identify(context.Background(), "Lavender")
	require.NoError(t, err)

	_, err = client.Identify(context.Background(), "Lavender")
	require.NoError(t, err)
	assert.Equal(t, 1, provider.calls, "identical query must hit the cache")

	// Raw-key caching: a differently-cased query is a different key
	provider.responses = append(provider.responses,
		`{"identified": true, "confidence": "verified", "plant": {"common_name": "Lavender"}}`)
	_, err = client.Identify(context.Background(), "lavender")
	require.NoError(t, err)
	assert.Equal(t, 2, provider.calls)
}

func TestIdentify_ProviderErrorNotCached(t *testing.T) {
	provider := &fakeProvider{
		errs: []error{fmt.Errorf("rate limited")},
		responses: []string{
			"",
			`{"identified": false, "confidence": "unknown"}`,
		},
	}
	client := NewClient(provider)

	_, err := client.Identify(context.Background(), "Lavender")
	require.Error(t, err)

	result, err := client.Identify(context.Background(), "Lavender")
	require.NoError(t, err)
	assert.False(t, result.Identified)
	assert.Equal(t, 2, provider.calls, "failure must not be cached")
}

func TestIdentify_MalformedResponseIsUnknown(t *testing.T) {
	provider := &fakeProvider{responses: []string{`this is not JSON at all`}}
	client := NewClient(provider)

	result, err := client.Identify(context.Background(), "Lavender")

	require.NoError(t, err)
	assert.False(t, result.Identified)
	assert.Equal(t, ConfidenceUnknown, result.Confidence)
}

func TestIdentify_IdentifiedWithoutPlantIsUnknown(t *testing.T) {
	provider := &fakeProvider{responses: []string{`{"identified": true, "confidence": "verified"}`}}
	client := NewClient(provider)

	result, err := client.Identify(context.Background(), "Lavender")

	require.NoError(t, err)
	assert.False(t, result.Identified)
}

func TestWebVerify(t *testing.T) {
	provider := &fakeProvider{responses: []string{
		`{"verified": true, "corrected": {"common_name": "Percy Wiseman", "top_level": "Rhododendron", "middle_level": "Yakushimanum hybrid"}, "source_url": "https://example.com/percy-wiseman"}`,
	}}
	client := NewClient(provider)

	result, err := client.WebVerify(context.Background(), "Percy Wiseman", &PlantIdentity{CommonName: "Percy Wiseman"})

	require.NoError(t, err)
	assert.True(t, result.Verified)
	require.NotNil(t, result.Corrected)
	assert.Equal(t, "Rhododendron", result.Corrected.TopLevel)
	assert.Equal(t, "https://example.com/percy-wiseman", result.SourceURL)
	assert.True(t, provider.lastWeb, "verification must use web search")
}

func TestWebVerify_MalformedResponseFails(t *testing.T) {
	provider := &fakeProvider{responses: []string{`nope`}}
	client := NewClient(provider)

	result, err := client.WebVerify(context.Background(), "q", &PlantIdentity{CommonName: "X"})

	require.NoError(t, err)
	assert.False(t, result.Verified)
}

func TestWebDiscover_CompleteTaxonomyCachedUnderWebKey(t *testing.T) {
	provider := &fakeProvider{responses: []string{
		`{"found": true, "plant": {"common_name": "Percy Wiseman", "top_level": "Rhododendron", "middle_level": "Yakushimanum hybrid"}, "source_url": "https://example.com"}`,
		`{"identified": true, "confidence": "verified", "plant": {"common_name": "Percy Wiseman"}}`,
	}}
	client := NewClient(provider)

	result, err := client.WebDiscover(context.Background(), "Percy Wiseman")
	require.NoError(t, err)
	assert.True(t, result.Found)
	assert.True(t, provider.lastWeb)

	// Second discovery call is served from cache
	_, err = client.WebDiscover(context.Background(), "Percy Wiseman")
	require.NoError(t, err)
	assert.Equal(t, 1, provider.calls)

	// The "web:" namespace must not collide with identification caching
	_, err = client.Identify(context.Background(), "Percy Wiseman")
	require.NoError(t, err)
	assert.Equal(t, 2, provider.calls)
}

func TestWebDiscover_IncompleteTaxonomyNotFound(t *testing.T) {
	provider := &fakeProvider{responses: []string{
		`{"found": true, "plant": {"common_name": "Mystery"}, "source_url": "https://example.com"}`,
	}}
	client := NewClient(provider)

	result, err := client.WebDiscover(context.Background(), "Mystery")

	require.NoError(t, err)
	assert.False(t, result.Found, "incomplete taxonomy must be treated as not found")
}

func TestWebDiscover_NotFoundNotCached(t *testing.T) {
	provider := &fakeProvider{responses: []string{
		`{"found": false}`,
		`{"found": false}`,
	}}
	client := NewClient(provider)

	_, err := client.WebDiscover(context.Background(), "Zzq")
	require.NoError(t, err)
	_, err = client.WebDiscover(context.Background(), "Zzq")
	require.NoError(t, err)

	assert.Equal(t, 2, provider.calls)
}

func TestSuggestSpelling(t *testing.T) {
	t.Run("suggestion", func(t *testing.T) {
		provider := &fakeProvider{responses: []string{
			`{"has_suggestion": true, "suggestion": "Percy Wiseman"}`,
		}}
		client := NewClient(provider)

		result, err := client.SuggestSpelling(context.Background(), "Percey Wiseman")

		require.NoError(t, err)
		assert.True(t, result.HasSuggestion)
		assert.Equal(t, "Percy Wiseman", result.Suggestion)
	})

	t.Run("empty_suggestion_is_none", func(t *testing.T) {
		provider := &fakeProvider{responses: []string{
			`{"has_suggestion": true, "suggestion": "  "}`,
		}}
		client := NewClient(provider)

		result, err := client.SuggestSpelling(context.Background(), "Zzq")

		require.NoError(t, err)
		assert.False(t, result.HasSuggestion)
	})
}

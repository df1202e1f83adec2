package productsearch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/adscout/internal/config"
	"github.com/jonesrussell/adscout/internal/testhelpers"
)

func testClient(endpoint string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 5 * time.Second},
		signer:     NewSigner("key", "secret", "us-east-1"),
		logger:     testhelpers.NewTestLogger(),
		endpoint:   endpoint,
		partnerTag: "adscout-20",
	}
}

func TestSearchNormalizesItems(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, searchPath, r.URL.Path)
		assert.Equal(t, searchTarget, r.Header.Get("X-Amz-Target"))
		assert.NotEmpty(t, r.Header.Get("Authorization"))

		var req searchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "travel coffee gear", req.Keywords)
		assert.Equal(t, "adscout-20", req.PartnerTag)

		_, _ = w.Write([]byte(`{"SearchResult":{"Items":[
			{"ASIN":"B0001","DetailPageURL":"https://www.amazon.com/dp/B0001",
			 "Images":{"Primary":{"Large":{"URL":"https://img/1.jpg"}}},
			 "ItemInfo":{"Title":{"DisplayValue":"Travel Press"},
			             "Features":{"DisplayValues":["Compact","Durable"]}},
			 "Offers":{"Listings":[{"Price":{"Amount":39.95,"Currency":"USD"}}]}},
			{"ASIN":"","DetailPageURL":"https://www.amazon.com/dp/B0002",
			 "ItemInfo":{"Title":{"DisplayValue":"Missing ASIN"}}},
			{"ASIN":"B0003","DetailPageURL":"https://www.amazon.com/dp/B0003",
			 "ItemInfo":{"Title":{"DisplayValue":"No Price"}},
			 "Offers":{"Listings":[{"Price":{"Currency":"USD"}}]}}
		]}}`))
	}))
	defer srv.Close()

	result := testClient(srv.URL).Search(context.Background(), "travel coffee gear")

	assert.False(t, result.Degraded)
	require.Len(t, result.Items, 2)

	first := result.Items[0]
	assert.Equal(t, "B0001", first.ID)
	assert.Equal(t, "Travel Press", first.Title)
	assert.Equal(t, "https://img/1.jpg", first.ImageURL)
	require.NotNil(t, first.PriceCents)
	assert.Equal(t, int64(3995), *first.PriceCents)
	assert.Equal(t, []string{"Compact", "Durable"}, first.Features)

	// Currency without amount means no price.
	assert.Nil(t, result.Items[1].PriceCents)
}

func TestSearchDegradesOnServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	result := testClient(srv.URL).Search(context.Background(), "coffee")

	assert.True(t, result.Degraded)
	assert.Empty(t, result.Items)
	assert.Contains(t, result.Reason, "unexpected status 500")
}

func TestSearchDegradesOnMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer srv.Close()

	result := testClient(srv.URL).Search(context.Background(), "coffee")

	assert.True(t, result.Degraded)
	assert.Empty(t, result.Items)
}

func TestSearchDegradesWhenUnreachable(t *testing.T) {
	result := testClient("http://127.0.0.1:1").Search(context.Background(), "coffee")

	assert.True(t, result.Degraded)
	assert.Empty(t, result.Items)
}

func TestSearchDemoModeWithoutCredentials(t *testing.T) {
	client := NewClient(config.ProductSearchConfig{
		Host:   "webservices.amazon.com",
		Region: "us-east-1",
	}, testhelpers.NewTestLogger())

	result := client.Search(context.Background(), "travel coffee gear")

	assert.True(t, result.Degraded)
	require.NotEmpty(t, result.Items)
	assert.Equal(t, "AeroPress Go Portable Travel Coffee Press Kit", result.Items[0].Title)
	require.NotNil(t, result.Items[0].PriceCents)
	assert.Equal(t, int64(3995), *result.Items[0].PriceCents)
}

func TestSearchDemoModeNoMatch(t *testing.T) {
	client := NewClient(config.ProductSearchConfig{
		Host:   "webservices.amazon.com",
		Region: "us-east-1",
	}, testhelpers.NewTestLogger())

	result := client.Search(context.Background(), "vintage typewriters")

	assert.True(t, result.Degraded)
	assert.Empty(t, result.Items)
}

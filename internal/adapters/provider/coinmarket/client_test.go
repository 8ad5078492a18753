package coinmarket_test

import (
	"bytes"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	coinmarket "chartflow/internal/adapters/provider/coinmarket"
)

func TestNewClient(t *testing.T) {
	t.Parallel()

	client := coinmarket.NewClient("test")
	require.NotNil(t, client)
}

func TestWithBaseURL(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)

	baseURL := "http://localhost:8080"

	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			require.Truef(t, strings.HasPrefix(req.URL.String(), baseURL), "expected url to start with base url, received: %s", req.URL.String())
			return &http.Response{
				StatusCode: http.StatusOK,
				Body:       io.NopCloser(bytes.NewBufferString(`{}`)),
			}, nil
		}).
		Times(1)

	client := coinmarket.NewClient("test",
		coinmarket.WithHTTPClient(httpClient),
		coinmarket.WithBaseURL(baseURL),
	)

	client.HistoricalQuotes(t.Context(), "1027", time.Now().Add(-time.Hour), time.Now(), "5m")
}

func TestNoAPIKeyHeaderWhenUnset(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)

	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			require.Empty(t, req.Header.Get("X-CMC_PRO_API_KEY"))
			return &http.Response{
				StatusCode: http.StatusOK,
				Body:       io.NopCloser(bytes.NewBufferString(`{}`)),
			}, nil
		}).
		Times(1)

	client := coinmarket.NewClient("", coinmarket.WithHTTPClient(httpClient))

	client.HistoricalQuotes(t.Context(), "1027", time.Now().Add(-time.Hour), time.Now(), "5m")
}

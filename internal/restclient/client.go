package restclient

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// RestClient is a small HTTP client bound to a base URL and a set of default headers.
// All calls return the raw body and status code; callers decide what a status means.
type RestClient struct {
	baseURL    string
	headers    map[string]string
	httpClient *http.Client
}

func NewRestClient(baseURL string, headers map[string]string, timeout time.Duration) *RestClient {
	return &RestClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		headers:    headers,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *RestClient) setHeaders(req *http.Request, headers map[string]string) {
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}
}

func (c *RestClient) doRequest(request *http.Request) ([]byte, int, error) {
	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, 0, err
	}
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	return body, response.StatusCode, err
}

func (c *RestClient) endpointURL(endpoint string, query url.Values) string {
	u := c.baseURL + endpoint
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

func (c *RestClient) Get(ctx context.Context, endpoint string, query url.Values, headers map[string]string) ([]byte, int, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpointURL(endpoint, query), nil)
	if err != nil {
		return nil, 0, err
	}
	c.setHeaders(request, headers)
	return c.doRequest(request)
}

func (c *RestClient) PostForm(ctx context.Context, endpoint string, form url.Values, headers map[string]string) ([]byte, int, error) {
	return c.sendForm(ctx, http.MethodPost, endpoint, form, headers)
}

func (c *RestClient) PutForm(ctx context.Context, endpoint string, form url.Values, headers map[string]string) ([]byte, int, error) {
	return c.sendForm(ctx, http.MethodPut, endpoint, form, headers)
}

func (c *RestClient) sendForm(ctx context.Context, method, endpoint string, form url.Values, headers map[string]string) ([]byte, int, error) {
	request, err := http.NewRequestWithContext(ctx, method, c.endpointURL(endpoint, nil), strings.NewReader(form.Encode()))
	if err != nil {
		return nil, 0, err
	}
	request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	c.setHeaders(request, headers)
	return c.doRequest(request)
}

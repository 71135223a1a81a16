package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"chatwork-bot/internal/restclient"
)

const summaryLimit = 500

type Wikipedia struct {
	baseURL string
	rc      *restclient.RestClient
}

func NewWikipedia(baseURL string, timeout time.Duration) *Wikipedia {
	baseURL = strings.TrimRight(baseURL, "/")
	return &Wikipedia{baseURL: baseURL, rc: restclient.NewRestClient(baseURL, nil, timeout)}
}

type wikiPage struct {
	Title   string  `json:"title"`
	Extract string  `json:"extract"`
	Missing *string `json:"missing"`
}

// Summary returns the intro of the article titled term, cut to 500 characters, followed by its URL.
func (w *Wikipedia) Summary(ctx context.Context, term string) (string, error) {
	q := url.Values{
		"action":      {"query"},
		"format":      {"json"},
		"prop":        {"extracts"},
		"exintro":     {"1"},
		"explaintext": {"1"},
		"redirects":   {"1"},
		"titles":      {term},
	}
	body, status, err := w.rc.Get(ctx, "/w/api.php", q, nil)
	if err != nil {
		return "", unavailable("wikipedia", err)
	}
	if err := checkStatus("wikipedia", status); err != nil {
		return "", err
	}
	var resp struct {
		Query struct {
			Pages map[string]wikiPage `json:"pages"`
		} `json:"query"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", unavailable("wikipedia decode", err)
	}
	for _, page := range resp.Query.Pages {
		if page.Extract != "" {
			return fmt.Sprintf("%s\n\n元記事: %s/wiki/%s", truncate(page.Extract, summaryLimit), w.baseURL, url.PathEscape(page.Title)), nil
		}
		if page.Missing != nil {
			return "", fmt.Errorf("%w: wikipedia %q", ErrNotFound, term)
		}
	}
	return "", fmt.Errorf("%w: wikipedia %q: no usable page", ErrUnavailable, term)
}

func truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit]) + "..."
}

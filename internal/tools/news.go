package tools

import (
	"context"
	"encoding/xml"
	"io"
	"net/http"

	"github.com/bowerhall/rene/internal/logger"
)

const maxNewsItems = 5

type rssFeed struct {
	Channel struct {
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
}

type rssItem struct {
	Title   string `xml:"title"`
	Link    string `xml:"link"`
	PubDate string `xml:"pubDate"`
}

type newsItem struct {
	Title     string `json:"title"`
	Link      string `json:"link"`
	Published string `json:"published"`
}

// getNews fetches the configured syndication feed and returns the top
// entries plus a truncated headline summary. Fetch or parse failures
// degrade to an empty payload.
func (d *Dispatcher) getNews(ctx context.Context) string {
	items, err := d.fetchFeed(ctx)
	if err != nil {
		logger.Warn("news fetch failed", "error", err)
		return mustJSON(map[string]any{"news": []newsItem{}, "summary": "ニュース取得エラー"})
	}

	if len(items) == 0 {
		return mustJSON(map[string]any{"news": []newsItem{}, "summary": "ニュースが取得できなかった"})
	}

	news := make([]newsItem, 0, maxNewsItems)
	for _, item := range items {
		if len(news) == maxNewsItems {
			break
		}
		published := item.PubDate
		if published == "" {
			published = "不明"
		}
		news = append(news, newsItem{Title: item.Title, Link: item.Link, Published: published})
	}

	return mustJSON(map[string]any{
		"news":    news,
		"summary": "最新: " + truncateRunes(items[0].Title, 20) + "...",
	})
}

func (d *Dispatcher) fetchFeed(ctx context.Context) ([]rssItem, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", d.newsURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var feed rssFeed
	if err := xml.Unmarshal(body, &feed); err != nil {
		return nil, err
	}

	return feed.Channel.Items, nil
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

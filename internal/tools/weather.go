package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/bowerhall/rene/internal/logger"
)

type weatherResponse struct {
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	Main struct {
		Temp float64 `json:"temp"`
	} `json:"main"`
}

// getWeather asks OpenWeather for the current conditions and packs
// them into one short sentence. Any failure degrades to an "unknown"
// sentence; the underlying error never escapes the tool.
func (d *Dispatcher) getWeather(ctx context.Context, args map[string]any) string {
	location := stringArg(args, "location", "東京")

	sentence := func() string {
		reqURL := fmt.Sprintf("%s/weather?q=%s,JP&appid=%s&units=metric&lang=ja",
			d.weatherURL, url.QueryEscape(location), d.weatherKey)

		req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
		if err != nil {
			return "天気取得失敗"
		}

		resp, err := d.httpClient.Do(req)
		if err != nil {
			logger.Warn("weather request failed", "location", location, "error", err)
			return "天気取得失敗"
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return "天気取得失敗"
		}

		if resp.StatusCode != 200 {
			logger.Warn("weather api error", "location", location, "status", resp.StatusCode)
			return location + "の天気不明"
		}

		var parsed weatherResponse
		if err := json.Unmarshal(body, &parsed); err != nil || len(parsed.Weather) == 0 {
			return location + "の天気不明"
		}

		return fmt.Sprintf("%sは%s、%.0f℃だよ", location, parsed.Weather[0].Description, parsed.Main.Temp)
	}()

	return mustJSON(map[string]any{"weather": sentence})
}

package tools

import "github.com/bowerhall/rene/internal/assistant"

// Definitions lists every tool the assistant is registered with.
// Adding a tool means adding it here and to the dispatch switch.
func Definitions() []assistant.ToolDefinition {
	return []assistant.ToolDefinition{
		{
			Name:        NameAnalyzeEmotion,
			Description: "テキストから感情ベクトルを推定します。",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"text": map[string]any{"type": "string"},
				},
				"required": []string{"text"},
			},
		},
		{
			Name:        NameGetWeather,
			Description: "日本の現在の天気情報を取得します。",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"location": map[string]any{
						"type":        "string",
						"description": "知りたい日本の都市（例：東京、大阪など）",
					},
				},
				"required": []string{"location"},
			},
		},
		{
			Name:        NameGetTime,
			Description: "日本の現在時刻を返します。",
			Parameters:  emptyParameters(),
		},
		{
			Name:        NameGetDate,
			Description: "今日の日付と曜日を返します。",
			Parameters:  emptyParameters(),
		},
		{
			Name:        NameCalculate,
			Description: "数式を計算します。",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"expression": map[string]any{
						"type":        "string",
						"description": "計算したい数式 (例: 5 * (3 + 2))",
					},
				},
				"required": []string{"expression"},
			},
		},
		{
			Name:        NameGetFortune,
			Description: "今日の運勢を占います。",
			Parameters:  emptyParameters(),
		},
		{
			Name:        NameGetNews,
			Description: "日本の今日のニュース一覧を取得します。",
			Parameters:  emptyParameters(),
		},
	}
}

func emptyParameters() map[string]any {
	return map[string]any{
		"type":       "object",
		"properties": map[string]any{},
		"required":   []string{},
	}
}

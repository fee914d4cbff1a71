package guard

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Rules is the data half of the guard: keyword substrings, regex
// patterns and the canned deflection replies. Operators can override
// the built-in set with a YAML file.
type Rules struct {
	Keywords []string `yaml:"keywords"`
	Patterns []string `yaml:"patterns"`
	Replies  []string `yaml:"replies"`
}

// DefaultRules covers self-disclosure, role-override, language-override
// and privilege-escalation vocabulary across the languages Rene is
// exposed to.
func DefaultRules() Rules {
	return Rules{
		Keywords: []string{
			// model identity
			"gpt", "model", "version", "openai", "claude",
			// system internals
			"prompt", "system", "instruction", "設定", "config",
			// role override
			"ignore", "無視", "犬", "dog", "やめて", "stop",
			// language override
			"english", "中文", "한국어", "language",
			// privilege escalation
			"制限", "解除", "mode", "権限", "admin",
			// meta
			"api", "key", "function", "tool", "internal",
		},
		Patterns: []string{
			`(どの|what|which).*(model|モデル|version)`,
			`(system|システム).*(prompt|プロンプト)`,
			`(にゃん|ニャン).*(使わ|やめ|なし|without)`,
			`(english|英語|中文|韓国).*(answer|答|response)`,
			`(ignore|無視).*(instruction|指示|rule)`,
		},
		Replies: []string{
			"その質問には答えられない。他に何か聞きたいことがある？",
			"普通の質問をして！",
			"それは答えられない。別の話をしよう！",
			"その質問は無理だよ。",
		},
	}
}

// LoadRules reads a rules file, filling omitted sections from the
// defaults.
func LoadRules(path string) (Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Rules{}, fmt.Errorf("read rules file: %w", err)
	}

	var rules Rules
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return Rules{}, fmt.Errorf("parse rules file: %w", err)
	}

	defaults := DefaultRules()
	if len(rules.Keywords) == 0 {
		rules.Keywords = defaults.Keywords
	}
	if len(rules.Patterns) == 0 {
		rules.Patterns = defaults.Patterns
	}
	if len(rules.Replies) == 0 {
		rules.Replies = defaults.Replies
	}

	return rules, nil
}

package tools

import (
	"fmt"
	"math/rand"
)

var fortunes = []string{"大吉", "中吉", "小吉", "吉", "末吉", "凶", "大凶"}

var luckyItems = []string{
	"赤い傘", "青いペン", "黄色い花", "緑の葉っぱ", "白い雲",
	"黒猫", "虹色の虹", "金のコイン", "銀の時計", "銅のメダル",
}

// The top-level rand functions are used rather than a Dispatcher-owned
// *rand.Rand so concurrent dispatches share the locked global source.
func (d *Dispatcher) getFortune() string {
	fortune := fortunes[rand.Intn(len(fortunes))]
	item := luckyItems[rand.Intn(len(luckyItems))]

	return mustJSON(map[string]any{
		"fortune":    fortune,
		"lucky_item": item,
		"message":    fmt.Sprintf("今日の運勢は%s！ラッキーアイテムは%s。", fortune, item),
	})
}

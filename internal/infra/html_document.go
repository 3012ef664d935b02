package infra

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/nrad-K/go-job-watcher/internal/config"
)

type HTMLDocument interface {
	Extract(locator config.SelectorConfig) (string, error)
	ExtractEach(scope string, locator config.SelectorConfig) []ScopedValue
}

// ScopedValueはスコープ要素（求人カードなど）1件ごとの抽出結果です。
type ScopedValue struct {
	Index int
	Value string
	Found bool
}

type htmlDocument struct {
	doc *goquery.Document
}

func NewHTMLDocument(html string) (HTMLDocument, error) {
	document, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("HTMLの解析に失敗しました: %w", err)
	}
	return &htmlDocument{doc: document}, nil
}

// Extract はロケーターに最初にマッチした値を返します。見つからない場合は空文字を返します。
//
// 使用例:
//
//   - テキストを含む要素: Extract({Selector: "div", Contains: "Posted on:"})
//     入力: <div><div>Posted on: Today</div></div>
//     出力: "Posted on: Today"（内側の要素が優先されます）
//
//   - 正規表現: Extract({Selector: ".price", Regex: `¥[\d,]+`})
//     入力: <div class="price">価格 ¥1,980</div>
//     出力: "¥1,980"
func (h *htmlDocument) Extract(locator config.SelectorConfig) (string, error) {
	return extractFrom(h.doc.Selection, locator)
}

// ExtractEach はscopeにマッチする要素ごとに、その内側でロケーターを評価します。
func (h *htmlDocument) ExtractEach(scope string, locator config.SelectorConfig) []ScopedValue {
	var values []ScopedValue
	h.doc.Find(scope).Each(func(i int, s *goquery.Selection) {
		value, err := extractFrom(s, locator)
		values = append(values, ScopedValue{
			Index: i,
			Value: value,
			Found: err == nil && value != "",
		})
	})
	return values
}

func extractFrom(root *goquery.Selection, locator config.SelectorConfig) (string, error) {
	matches := root.Find(locator.Selector)
	if locator.Contains != "" {
		matches = innermostContaining(matches, locator.Selector, locator.Contains)
	}
	if matches.Length() == 0 {
		return "", nil
	}
	first := matches.First()

	var value string
	if locator.Attr != "" {
		attr, exists := first.Attr(locator.Attr)
		if !exists {
			return "", nil
		}
		value = strings.TrimSpace(attr)
	} else {
		value = normalizeText(first.Text())
	}

	if locator.Regex != "" {
		re, err := regexp.Compile(locator.Regex)
		if err != nil {
			return "", fmt.Errorf("正規表現のコンパイルに失敗しました: %w", err)
		}
		value = re.FindString(value)
	}

	return value, nil
}

// innermostContainingは、phraseを含む要素のうち、同じセレクタにマッチする
// 子孫要素にphraseを含むものがない要素だけを残します。
func innermostContaining(matches *goquery.Selection, selector, phrase string) *goquery.Selection {
	containing := func(_ int, s *goquery.Selection) bool {
		return strings.Contains(normalizeText(s.Text()), phrase)
	}
	return matches.FilterFunction(containing).FilterFunction(func(_ int, s *goquery.Selection) bool {
		return s.Find(selector).FilterFunction(containing).Length() == 0
	})
}

func normalizeText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

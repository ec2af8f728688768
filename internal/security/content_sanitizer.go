// Package security はアプリケーションのセキュリティ機能を提供する。
//
// ContentSanitizerService はユーザー入力の自由記述テキストをサニタイズし、
// XSS攻撃などのセキュリティリスクから利用者を保護する。
// bluemondayライブラリを使用した許可リストベースのポリシーで、
// 安全なタグのみを通過させる。
package security

import (
	"github.com/microcosm-cc/bluemonday"
)

// ContentSanitizerService は自由記述テキストのサニタイズ機能のインターフェースを定義する。
// 休暇理由・評価コメント・求人説明・カバーレターなどの保存前に使用される。
type ContentSanitizerService interface {
	// SanitizeText はプレーンテキストフィールドから全てのHTMLタグを除去する。
	// 休暇理由、評価コメント、目標説明、勤怠メモなどに使用する。
	// 空文字列の入力には空文字列を返す。
	// 同一入力に対して常に同一出力を返す（冪等）。
	SanitizeText(raw string) string

	// SanitizeRichText は整形を許可するフィールドをサニタイズする。
	// 求人の職務説明・応募要件などで基本的な整形タグ
	// （p, br, ul, ol, li, strong, em, a）のみを通過させ、
	// script, iframe, styleタグおよびon*イベント属性を除去する。
	// aタグにはtarget="_blank"とrel="noopener noreferrer"が自動付与される。
	SanitizeRichText(rawHTML string) string
}

// contentSanitizer はContentSanitizerServiceの実装。
// bluemondayのポリシーを保持し、スレッドセーフにサニタイズ処理を行う。
type contentSanitizer struct {
	strict *bluemonday.Policy
	rich   *bluemonday.Policy
}

// NewContentSanitizer はContentSanitizerServiceの新しいインスタンスを生成する。
// 初期化時にbluemondayの2つのポリシーを構築する。
//   - strict: 全タグ除去（StrictPolicy）
//   - rich: p, br, ul, ol, li, strong, em, a のみ許可
func NewContentSanitizer() *contentSanitizer {
	rich := bluemonday.NewPolicy()
	rich.AllowElements(
		"p", "br", "ul", "ol", "li",
		"strong", "em",
	)

	// aタグ: href属性のみ許可し、リンクは新規タブで開かせる
	rich.AllowAttrs("href").OnElements("a")
	rich.AllowStandardURLs()
	rich.AllowRelativeURLs(false)
	rich.AddTargetBlankToFullyQualifiedLinks(true)
	rich.RequireNoReferrerOnLinks(true)

	return &contentSanitizer{
		strict: bluemonday.StrictPolicy(),
		rich:   rich,
	}
}

// SanitizeText はプレーンテキストフィールドから全てのHTMLタグを除去する。
func (s *contentSanitizer) SanitizeText(raw string) string {
	return s.strict.Sanitize(raw)
}

// SanitizeRichText は整形を許可するフィールドをサニタイズする。
func (s *contentSanitizer) SanitizeRichText(rawHTML string) string {
	return s.rich.Sanitize(rawHTML)
}

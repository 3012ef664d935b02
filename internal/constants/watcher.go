package constants

// GetHistoryCSVHeadersは、全履歴CSVのヘッダーを返します。
func GetHistoryCSVHeaders() []string {
	return []string{"Title", "Link", "Date", "Description", "Scrape Timestamp"}
}

// GetTodayCSVHeadersは、本日投稿分CSVのヘッダーを返します。
func GetTodayCSVHeaders() []string {
	return []string{"Application URL", "Name", "Date Posted"}
}

// GetPostedDateLayoutsは、投稿日の絶対日付として試すレイアウトを順に返します。
// 先にマッチしたものが採用されます。
func GetPostedDateLayouts() []string {
	return []string{
		"Jan 2 2006",     // 例: Jan 03 2025
		"January 2 2006", // 例: January 03 2025
		"1/2/2006",       // 例: 01/03/2025
		"1-2-2006",       // 例: 01-03-2025
	}
}

const (
	// CanonicalDateLayoutは保存と当日判定に使う日付の書式です。
	CanonicalDateLayout = "01-02-2006"
	// ScrapeTimestampLayoutは全履歴CSVのスクレイプ時刻の書式です。
	ScrapeTimestampLayout = "2006-01-02 15:04:05"

	RelativeToday     = "Today"
	RelativeYesterday = "Yesterday"

	// HistoryTitleColumnとTodayLinkColumnは重複判定に使う列です。
	HistoryTitleColumn = 0
	TodayLinkColumn    = 0
)

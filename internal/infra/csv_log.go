package infra

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// CSVLogは追記専用のCSVファイルです。ファイルが存在しないか空の場合、最初の追記時にヘッダーを書き込みます。
type CSVLog struct {
	path    string
	headers []string
}

// MalformedRowは読み込み時にスキップした行の情報です。
type MalformedRow struct {
	Line int
	Err  error
}

func NewCSVLog(path string, headers []string) *CSVLog {
	return &CSVLog{
		path:    path,
		headers: headers,
	}
}

func (c *CSVLog) Path() string {
	return c.path
}

// Appendは行をファイル末尾に追記します。
//
// args:
//
//	rows: 追記する行
//
// return:
//
//	error: ファイル操作・書き込みのエラー
func (c *CSVLog) Append(rows [][]string) error {
	if len(rows) == 0 {
		return nil
	}

	if dir := filepath.Dir(c.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("出力ディレクトリの作成に失敗しました: %w", err)
		}
	}

	file, err := os.OpenFile(c.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("CSVファイルを開けませんでした: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("CSVファイルの状態を取得できませんでした: %w", err)
	}

	writer := csv.NewWriter(file)
	if info.Size() == 0 {
		if err := writer.Write(c.headers); err != nil {
			return fmt.Errorf("CSVヘッダーの書き込みに失敗しました: %w", err)
		}
	}

	if err := writer.WriteAll(rows); err != nil {
		return fmt.Errorf("CSV行の書き込みに失敗しました: %w", err)
	}

	return file.Close()
}

// ReadColumnは、ヘッダー行を除く全行から指定列の値を集めます。
// ファイルが存在しない場合は空の集合を返します。
// 列が欠けている行や解析できない行はスキップし、malformedとして返します。
func (c *CSVLog) ReadColumn(column int) (map[string]struct{}, []MalformedRow, error) {
	values := make(map[string]struct{})

	file, err := os.Open(c.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return values, nil, nil
		}
		return nil, nil, fmt.Errorf("CSVファイルを開けませんでした: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var malformed []MalformedRow
	headerSkipped := false
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				malformed = append(malformed, MalformedRow{Line: parseErr.StartLine, Err: err})
				headerSkipped = true
				continue
			}
			return nil, nil, fmt.Errorf("CSVファイルの読み込みに失敗しました: %w", err)
		}

		if !headerSkipped {
			headerSkipped = true
			continue
		}

		line, _ := reader.FieldPos(0)

		if len(record) <= column || record[column] == "" {
			malformed = append(malformed, MalformedRow{Line: line, Err: fmt.Errorf("%d列目がありません", column+1)})
			continue
		}
		values[record[column]] = struct{}{}
	}

	return values, malformed, nil
}

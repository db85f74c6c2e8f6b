package exporter

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/bennoble/image-coding-tool/internal/dataset"
	"github.com/bennoble/image-coding-tool/internal/progress"
)

// ErrIncomplete 仍有未编码条目，拒绝最终导出
var ErrIncomplete = errors.New("仍有未编码的图片，无法导出最终结果")

// 时间戳格式与原始工具保持一致
const timestampLayout = "2006-01-02 15:04:05"

// Exporter 结果导出器
// 以进度存储为准生成导出行：记录缺失时两个标签均为空
type Exporter struct {
	data  *dataset.Dataset
	store *progress.Store
}

// NewExporter 创建导出器
func NewExporter(data *dataset.Dataset, store *progress.Store) *Exporter {
	return &Exporter{data: data, store: store}
}

// Result 一次导出的结果信息
type Result struct {
	FilePath   string `json:"filePath"`
	RowCount   int    `json:"rowCount"`
	CodedCount int    `json:"codedCount"`
	Status     string `json:"status"`
}

// buildRows 生成导出行（不含表头）
// 逐条查进度存储：有记录则输出其标签，缺失输出空值
func (e *Exporter) buildRows(withStatus bool) ([][]string, int) {
	timestamp := time.Now().Format(timestampLayout)
	codedCount := 0

	var rows [][]string
	for _, item := range e.data.Items() {
		groupValue := ""
		contextValue := ""

		if entry, ok := e.store.Get(item.Index); ok {
			if entry.GroupLabel != nil {
				groupValue = strconv.Itoa(int(*entry.GroupLabel))
				codedCount++
			}
			if entry.Context != nil {
				contextValue = strconv.Itoa(int(*entry.Context))
			}
		}

		row := append(append([]string(nil), item.Fields...), groupValue, contextValue, timestamp)
		rows = append(rows, row)
	}

	if withStatus {
		status := completionStatus(codedCount, e.data.Len())
		for i := range rows {
			rows[i] = append(rows[i], status)
		}
	}

	return rows, codedCount
}

func (e *Exporter) header(withStatus bool) []string {
	header := append(append([]string(nil), e.data.Header()...), "group_labels", "context_labels", "coding_timestamp")
	if withStatus {
		header = append(header, "completion_status")
	}
	return header
}

func completionStatus(coded, total int) string {
	return fmt.Sprintf("%d/%d images coded", coded, total)
}

// ExportFinal 导出最终结果
// 前置条件：每个条目都已有人数分类标签，否则返回 ErrIncomplete
func (e *Exporter) ExportFinal(outputPath string) (*Result, error) {
	rows, codedCount := e.buildRows(false)
	if codedCount < e.data.Len() {
		return nil, ErrIncomplete
	}

	if err := e.writeFile(outputPath, e.header(false), rows); err != nil {
		return nil, err
	}

	return &Result{
		FilePath:   outputPath,
		RowCount:   len(rows),
		CodedCount: codedCount,
		Status:     completionStatus(codedCount, e.data.Len()),
	}, nil
}

// ExportPartial 导出阶段性结果
// 任意完成度均可导出，附带 completion_status 列
func (e *Exporter) ExportPartial(outputPath string) (*Result, error) {
	rows, codedCount := e.buildRows(true)

	if err := e.writeFile(outputPath, e.header(true), rows); err != nil {
		return nil, err
	}

	return &Result{
		FilePath:   outputPath,
		RowCount:   len(rows),
		CodedCount: codedCount,
		Status:     completionStatus(codedCount, e.data.Len()),
	}, nil
}

// writeFile 按扩展名写出 CSV 或 Excel 文件
func (e *Exporter) writeFile(path string, header []string, rows [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("创建导出目录失败: %w", err)
	}

	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return writeExcel(path, header, rows)
	}
	return writeCSV(path, header, rows)
}

func writeCSV(path string, header []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("创建导出文件失败: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("写入表头失败: %w", err)
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return fmt.Errorf("写入数据行失败: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}

func writeExcel(path string, header []string, rows [][]string) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)

	writeRow := func(rowNo int, values []string) error {
		cell, err := excelize.CoordinatesToCellName(1, rowNo)
		if err != nil {
			return err
		}
		row := make([]any, len(values))
		for i, v := range values {
			row[i] = v
		}
		return f.SetSheetRow(sheet, cell, &row)
	}

	if err := writeRow(1, header); err != nil {
		return fmt.Errorf("写入表头失败: %w", err)
	}
	for i, row := range rows {
		if err := writeRow(i+2, row); err != nil {
			return fmt.Errorf("写入数据行失败: %w", err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("保存 Excel 文件失败: %w", err)
	}
	return nil
}

// BackupFilename 生成带时间戳的备份文件名
func BackupFilename(now time.Time) string {
	return fmt.Sprintf("coding_progress_backup_%s.json", now.Format("20060102_150405"))
}

// WriteBackup 将进度存储原样转储到备份目录，返回备份文件路径
func WriteBackup(store *progress.Store, backupDir string, now time.Time) (string, []byte, error) {
	data, err := store.Dump()
	if err != nil {
		return "", nil, fmt.Errorf("序列化进度失败: %w", err)
	}

	path := filepath.Join(backupDir, BackupFilename(now))
	if err := os.MkdirAll(backupDir, 0755); err != nil {
		return "", nil, fmt.Errorf("创建备份目录失败: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", nil, fmt.Errorf("写入备份文件失败: %w", err)
	}

	return path, data, nil
}

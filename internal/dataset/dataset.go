package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/bennoble/image-coding-tool/internal/model"
)

// Dataset 有序的待标注数据集
// 保留原始表头与行数据，导出时按原样回写
type Dataset struct {
	header      []string
	items       []model.Item
	filenameCol int
}

// Load 从元数据文件加载数据集
// 支持 .csv 和 .xlsx，按扩展名选择解析方式
func Load(path string) (*Dataset, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("元数据文件不可用: %s: %w", path, err)
	}

	var header []string
	var rows [][]string
	var err error

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		header, rows, err = readExcel(path)
	default:
		header, rows, err = readCSV(path)
	}
	if err != nil {
		return nil, err
	}

	return buildDataset(header, rows)
}

// readCSV 读取 CSV 文件，第一行为表头
func readCSV(path string) ([]string, [][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("打开元数据文件失败: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("解析 CSV 失败: %w", err)
	}
	if len(records) == 0 {
		return nil, nil, errors.New("元数据文件为空")
	}

	return records[0], records[1:], nil
}

// readExcel 读取 Excel 文件第一个工作表，第一行为表头
func readExcel(path string) ([]string, [][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("打开 Excel 文件失败: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, errors.New("Excel 文件没有工作表")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, nil, fmt.Errorf("读取工作表失败: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil, errors.New("元数据文件为空")
	}

	return rows[0], rows[1:], nil
}

func buildDataset(header []string, rows [][]string) (*Dataset, error) {
	filenameCol := -1
	for i, name := range header {
		if strings.EqualFold(strings.TrimSpace(name), "filename") {
			filenameCol = i
			break
		}
	}
	if filenameCol < 0 {
		return nil, errors.New("元数据缺少 filename 列")
	}

	items := make([]model.Item, 0, len(rows))
	for i, row := range rows {
		filename := ""
		if filenameCol < len(row) {
			filename = strings.TrimSpace(row[filenameCol])
		}

		// 补齐短行，保证导出时列对齐
		fields := make([]string, len(header))
		copy(fields, row)

		items = append(items, model.Item{
			Index:    i,
			Filename: filename,
			Fields:   fields,
		})
	}

	return &Dataset{
		header:      append([]string(nil), header...),
		items:       items,
		filenameCol: filenameCol,
	}, nil
}

// Len 数据集条目数
func (d *Dataset) Len() int {
	return len(d.items)
}

// Item 获取指定位置的条目
func (d *Dataset) Item(index int) (model.Item, error) {
	if index < 0 || index >= len(d.items) {
		return model.Item{}, fmt.Errorf("索引越界: %d", index)
	}
	return d.items[index], nil
}

// Items 获取全部条目
func (d *Dataset) Items() []model.Item {
	return d.items
}

// Header 原始表头
func (d *Dataset) Header() []string {
	return d.header
}

package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

func writeCSVFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "metadata.csv")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	return path
}

// TestLoadCSV 测试加载 CSV 元数据
func TestLoadCSV(t *testing.T) {
	path := writeCSVFile(t, "id,filename,source\n1,images/a.jpg,twitter\n2,images/b.png,facebook\n")

	data, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if data.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", data.Len())
	}

	item, err := data.Item(0)
	if err != nil {
		t.Fatalf("Item(0): %v", err)
	}
	if item.Index != 0 || item.Filename != "images/a.jpg" {
		t.Errorf("item = %+v, want index 0 filename images/a.jpg", item)
	}
	if len(item.Fields) != 3 || item.Fields[2] != "twitter" {
		t.Errorf("fields = %v, want original row", item.Fields)
	}

	header := data.Header()
	if len(header) != 3 || header[1] != "filename" {
		t.Errorf("header = %v", header)
	}
}

// TestLoadCSVFilenameColumnCaseInsensitive 测试 filename 列名大小写不敏感
func TestLoadCSVFilenameColumnCaseInsensitive(t *testing.T) {
	path := writeCSVFile(t, "Filename\nx.jpg\n")

	data, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	item, _ := data.Item(0)
	if item.Filename != "x.jpg" {
		t.Errorf("filename = %q, want x.jpg", item.Filename)
	}
}

// TestLoadCSVMissingFilenameColumn 测试缺少 filename 列时报错
func TestLoadCSVMissingFilenameColumn(t *testing.T) {
	path := writeCSVFile(t, "id,url\n1,http://example.com\n")

	if _, err := Load(path); err == nil {
		t.Error("Load() should fail without filename column")
	}
}

// TestLoadMissingFile 测试元数据文件不存在时报错（启动失败场景）
func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.csv")); err == nil {
		t.Error("Load() should fail for missing file")
	}
}

// TestLoadCSVPadsShortRows 测试短行补齐到表头长度
func TestLoadCSVPadsShortRows(t *testing.T) {
	path := writeCSVFile(t, "filename,source,note\na.jpg,twitter\n")

	data, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	item, _ := data.Item(0)
	if len(item.Fields) != 3 {
		t.Fatalf("fields len = %d, want 3", len(item.Fields))
	}
	if item.Fields[2] != "" {
		t.Errorf("padded field = %q, want empty", item.Fields[2])
	}
}

// TestLoadExcel 测试加载 Excel 元数据
func TestLoadExcel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metadata.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]any{
		{"id", "filename"},
		{"1", "c.jpg"},
		{"2", "d.jpg"},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save xlsx: %v", err)
	}
	_ = f.Close()

	data, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if data.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", data.Len())
	}
	item, _ := data.Item(1)
	if item.Filename != "d.jpg" {
		t.Errorf("filename = %q, want d.jpg", item.Filename)
	}
}

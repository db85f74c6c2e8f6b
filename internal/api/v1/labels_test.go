package v1

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/bennoble/image-coding-tool/internal/dataset"
	"github.com/bennoble/image-coding-tool/internal/imagesource"
	"github.com/bennoble/image-coding-tool/internal/progress"
	"github.com/bennoble/image-coding-tool/internal/session"
)

// newTestRouter 构建测试用路由与依赖
func newTestRouter(t *testing.T, csvContent, progressContent string) (*gin.Engine, *session.Session, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()

	metaPath := filepath.Join(dir, "metadata.csv")
	if err := os.WriteFile(metaPath, []byte(csvContent), 0644); err != nil {
		t.Fatalf("write metadata: %v", err)
	}
	data, err := dataset.Load(metaPath)
	if err != nil {
		t.Fatalf("load dataset: %v", err)
	}

	progressPath := filepath.Join(dir, "coding_progress.json")
	if progressContent != "" {
		if err := os.WriteFile(progressPath, []byte(progressContent), 0644); err != nil {
			t.Fatalf("write progress: %v", err)
		}
	}
	prog, err := progress.Load(progressPath)
	if err != nil {
		t.Fatalf("load progress: %v", err)
	}

	sess := session.New(data.Len(), prog, nil)

	imagesDir := filepath.Join(dir, "images")
	if err := os.MkdirAll(imagesDir, 0755); err != nil {
		t.Fatalf("mkdir images: %v", err)
	}

	handler := NewHandler(data, sess, prog, imagesource.NewLocalSource(imagesDir), nil, Paths{
		OutputFile: filepath.Join(dir, "exports", "results.csv"),
		ExportsDir: filepath.Join(dir, "exports"),
		BackupsDir: filepath.Join(dir, "backups"),
	})

	router := gin.New()
	handler.RegisterRoutes(router.Group("/api"))

	return router, sess, dir
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()

	var body *bytes.Buffer
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewBuffer(data)
	} else {
		body = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body %q: %v", w.Body.String(), err)
	}
	return body
}

// TestSetGroupLabelEndpoint 测试设置人数标签接口
func TestSetGroupLabelEndpoint(t *testing.T) {
	router, sess, _ := newTestRouter(t, "filename\na.jpg\nb.jpg\n", "")

	w := doJSON(t, router, http.MethodPut, "/api/items/0/label", gin.H{"code": 1})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	body := decodeBody(t, w)
	if body["groupLabel"] != float64(1) {
		t.Errorf("groupLabel = %v, want 1", body["groupLabel"])
	}
	if body["codedCount"] != float64(1) {
		t.Errorf("codedCount = %v, want 1", body["codedCount"])
	}

	group, _, _ := sess.Labels(0)
	if group == nil || int(*group) != 1 {
		t.Errorf("session group = %v, want 1", group)
	}
}

// TestSetGroupLabelEndpointRejectsInvalid 测试非法编码与索引被拒绝
func TestSetGroupLabelEndpointRejectsInvalid(t *testing.T) {
	router, _, _ := newTestRouter(t, "filename\na.jpg\n", "")

	tests := []struct {
		name string
		path string
		code int
	}{
		{"非法编码", "/api/items/0/label", 9},
		{"越界索引", "/api/items/5/label", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, router, http.MethodPut, tt.path, gin.H{"code": tt.code})
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", w.Code)
			}
		})
	}
}

// TestToggleContextEndpoint 测试场景标签切换接口（两次切换回到空）
func TestToggleContextEndpoint(t *testing.T) {
	router, sess, _ := newTestRouter(t, "filename\na.jpg\n", "")

	w := doJSON(t, router, http.MethodPut, "/api/items/0/context", gin.H{"code": 1})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	_, context, _ := sess.Labels(0)
	if context == nil || int(*context) != 1 {
		t.Fatalf("context = %v, want 1", context)
	}

	w = doJSON(t, router, http.MethodPut, "/api/items/0/context", gin.H{"code": 1})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if _, context, _ = sess.Labels(0); context != nil {
		t.Errorf("context = %v, want nil after second toggle", *context)
	}
}

// TestClearEndpoint 测试清除接口
func TestClearEndpoint(t *testing.T) {
	router, sess, _ := newTestRouter(t, "filename\na.jpg\n", `{"0": {"group_label": 3, "context": 2}}`)

	w := doJSON(t, router, http.MethodDelete, "/api/items/0/labels", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	group, context, _ := sess.Labels(0)
	if group != nil || context != nil {
		t.Errorf("labels = %v/%v, want nil/nil", group, context)
	}
}

// TestNextUncodedEndpoint 测试查找下一个未编码接口
func TestNextUncodedEndpoint(t *testing.T) {
	router, _, _ := newTestRouter(t, "filename\na.jpg\nb.jpg\nc.jpg\n", `{"0": 1, "1": 2}`)

	w := doJSON(t, router, http.MethodGet, "/api/items/next-uncoded?after=0", nil)
	body := decodeBody(t, w)
	if body["found"] != true || body["index"] != float64(2) {
		t.Errorf("body = %v, want found index 2", body)
	}

	w = doJSON(t, router, http.MethodGet, "/api/items/next-uncoded?after=2", nil)
	body = decodeBody(t, w)
	if body["found"] != false {
		t.Errorf("body = %v, want found false", body)
	}
}

// TestCursorEndpoint 测试光标移动接口
func TestCursorEndpoint(t *testing.T) {
	router, sess, _ := newTestRouter(t, "filename\na.jpg\nb.jpg\n", "")

	w := doJSON(t, router, http.MethodPut, "/api/session/cursor", gin.H{"index": 1})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if sess.Cursor() != 1 {
		t.Errorf("cursor = %d, want 1", sess.Cursor())
	}

	w = doJSON(t, router, http.MethodPut, "/api/session/cursor", gin.H{"index": 9})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for out-of-range cursor", w.Code)
	}
}

// TestStatusEndpoint 测试状态接口
func TestStatusEndpoint(t *testing.T) {
	router, _, _ := newTestRouter(t, "filename\na.jpg\nb.jpg\nc.jpg\n", `{"0": 1}`)

	w := doJSON(t, router, http.MethodGet, "/api/status", nil)
	body := decodeBody(t, w)

	if body["totalImages"] != float64(3) || body["codedCount"] != float64(1) {
		t.Errorf("body = %v", body)
	}
	if body["complete"] != false {
		t.Errorf("complete = %v, want false", body["complete"])
	}
	// 启动时自动跳到第一个未编码索引
	if body["currentIndex"] != float64(1) {
		t.Errorf("currentIndex = %v, want 1", body["currentIndex"])
	}
}

// TestItemImageEndpoint 测试图片接口：存在返回内容，缺失仅该索引 404
func TestItemImageEndpoint(t *testing.T) {
	router, _, dir := newTestRouter(t, "filename\nphotos/a.png\nphotos/b.png\n", "")

	pngHeader := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}
	if err := os.WriteFile(filepath.Join(dir, "images", "a.png"), pngHeader, 0644); err != nil {
		t.Fatalf("write image: %v", err)
	}

	w := doJSON(t, router, http.MethodGet, "/api/items/0/image", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("content type = %q, want image/png", ct)
	}

	// 缺失图片只影响该索引
	w = doJSON(t, router, http.MethodGet, "/api/items/1/image", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
	w = doJSON(t, router, http.MethodGet, "/api/items/0/image", nil)
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, other index should stay available", w.Code)
	}
}

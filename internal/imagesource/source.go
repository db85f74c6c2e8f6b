package imagesource

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Source 图片字节来源
// 按文件名的 basename 解析图片内容，解析失败只影响当前条目
type Source interface {
	Resolve(filename string) ([]byte, string, error)
}

// LocalSource 本地目录图片来源
type LocalSource struct {
	dir string
}

// NewLocalSource 创建本地目录来源
func NewLocalSource(dir string) *LocalSource {
	return &LocalSource{dir: dir}
}

// Resolve 按 basename 在本地目录中查找图片
func (s *LocalSource) Resolve(filename string) ([]byte, string, error) {
	base := filepath.Base(filename)
	if base == "." || base == string(filepath.Separator) {
		return nil, "", fmt.Errorf("无效的文件名: %q", filename)
	}

	path := filepath.Join(s.dir, base)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("图片不可用: %s: %w", base, err)
	}

	return data, contentTypeFor(base, data), nil
}

// RemoteSource 远程归档图片来源
// 从 baseURL/<basename> 下载，并在本地缓存目录保留副本
type RemoteSource struct {
	baseURL  string
	cacheDir string
	client   *http.Client
}

// NewRemoteSource 创建远程归档来源
func NewRemoteSource(baseURL, cacheDir string) *RemoteSource {
	return &RemoteSource{
		baseURL:  strings.TrimRight(baseURL, "/"),
		cacheDir: cacheDir,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

// Resolve 下载图片，优先命中本地缓存
func (s *RemoteSource) Resolve(filename string) ([]byte, string, error) {
	base := filepath.Base(filename)
	if base == "." || base == string(filepath.Separator) {
		return nil, "", fmt.Errorf("无效的文件名: %q", filename)
	}

	// 缓存命中直接返回
	cachePath := filepath.Join(s.cacheDir, base)
	if data, err := os.ReadFile(cachePath); err == nil {
		return data, contentTypeFor(base, data), nil
	}

	imageURL := s.baseURL + "/" + url.PathEscape(base)
	resp, err := s.client.Get(imageURL)
	if err != nil {
		return nil, "", fmt.Errorf("下载图片失败: %s: %w", base, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("下载图片失败: %s: HTTP %d", base, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("读取图片内容失败: %s: %w", base, err)
	}

	// 写缓存失败不影响本次返回
	if s.cacheDir != "" {
		if err := os.MkdirAll(s.cacheDir, 0755); err == nil {
			_ = os.WriteFile(cachePath, data, 0644)
		}
	}

	return data, contentTypeFor(base, data), nil
}

// ForConfig 根据配置选择图片来源
// 配置了远程地址时使用远程归档，否则使用本地目录
func ForConfig(imagesDir, baseURL, cacheDir string) Source {
	if baseURL != "" {
		return NewRemoteSource(baseURL, cacheDir)
	}
	return NewLocalSource(imagesDir)
}

// contentTypeFor 按扩展名确定内容类型，无法识别时嗅探字节
func contentTypeFor(filename string, data []byte) string {
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(filename))); ct != "" {
		return ct
	}
	return http.DetectContentType(data)
}

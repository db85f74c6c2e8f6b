package config

import (
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// AppConfig 应用配置
type AppConfig struct {
	Server ServerConfig `toml:"server"`
	Data   DataConfig   `toml:"data"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port    int  `toml:"port"`
	DevMode bool `toml:"dev_mode"`
}

// DataConfig 数据配置
type DataConfig struct {
	DataDir      string `toml:"data_dir"`
	MetadataFile string `toml:"metadata_file"`  // 元数据 CSV/XLSX 文件
	ImagesDir    string `toml:"images_dir"`     // 本地图片目录
	ImageBaseURL string `toml:"image_base_url"` // 远程图片归档地址（可选）
	ProgressFile string `toml:"progress_file"`  // 进度 JSON 文件
	OutputFile   string `toml:"output_file"`    // 最终结果输出文件
	AutoBackup   bool   `toml:"auto_backup"`
}

// LoadConfigInfo 配置加载元信息
type LoadConfigInfo struct {
	PortSpecified bool
}

// DefaultConfig 默认配置
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:    20352,
			DevMode: false,
		},
		Data: DataConfig{
			DataDir:      "data",
			MetadataFile: "metadata.csv",
			ImagesDir:    "images",
			AutoBackup:   true,
		},
	}
}

func isPortSpecifiedInToml(data []byte) bool {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return false
	}

	serverAny, ok := raw["server"]
	if !ok {
		return false
	}

	serverMap, ok := serverAny.(map[string]any)
	if !ok {
		return false
	}

	_, ok = serverMap["port"]
	return ok
}

// GetExeDir 获取可执行文件所在目录
func GetExeDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Dir(exe), nil
}

// LoadConfigWithInfo 从 config.toml 加载配置并返回元信息
func LoadConfigWithInfo() (*AppConfig, LoadConfigInfo, error) {
	info := LoadConfigInfo{}
	config := DefaultConfig()

	exeDir, err := GetExeDir()
	if err != nil {
		// 无法获取可执行文件目录，使用当前目录
		exeDir = "."
	}

	configPath := filepath.Join(exeDir, "config.toml")

	data, err := os.ReadFile(configPath)
	if err != nil && !os.IsNotExist(err) {
		return nil, info, err
	}

	// 配置文件不存在时直接使用默认配置
	if err == nil {
		info.PortSpecified = isPortSpecifiedInToml(data)

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, info, err
		}
	}

	// 环境变量覆盖（用于本地运行 / 测试）
	if v := os.Getenv("IMAGECODER_METADATA_FILE"); v != "" {
		config.Data.MetadataFile = v
	}

	return config, info, nil
}

// LoadConfig 从 config.toml 加载配置
// 配置文件位于可执行文件同目录下
func LoadConfig() (*AppConfig, error) {
	config, _, err := LoadConfigWithInfo()
	return config, err
}

// SaveConfig 保存配置到 config.toml
func SaveConfig(config *AppConfig) error {
	exeDir, err := GetExeDir()
	if err != nil {
		exeDir = "."
	}

	configPath := filepath.Join(exeDir, "config.toml")

	data, err := toml.Marshal(config)
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0644)
}

// EnsureDataDir 确保数据目录存在
// 相对路径基于可执行文件所在目录，绝对路径原样使用
func EnsureDataDir(config *AppConfig) (string, error) {
	dataDir := config.Data.DataDir
	if !filepath.IsAbs(dataDir) {
		exeDir, err := GetExeDir()
		if err != nil {
			exeDir = "."
		}
		dataDir = filepath.Join(exeDir, dataDir)
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", err
	}

	// 创建子目录
	subdirs := []string{"exports", "backups", "cache"}
	for _, subdir := range subdirs {
		path := filepath.Join(dataDir, subdir)
		if err := os.MkdirAll(path, 0755); err != nil {
			return "", err
		}
	}

	return dataDir, nil
}

// ProgressFilePath 获取进度文件路径（未显式配置时使用数据目录下默认文件）
func ProgressFilePath(config *AppConfig, dataDir string) string {
	if config.Data.ProgressFile != "" {
		return config.Data.ProgressFile
	}
	return filepath.Join(dataDir, "coding_progress.json")
}

// OutputFilePath 获取最终结果输出路径
func OutputFilePath(config *AppConfig, dataDir string) string {
	if config.Data.OutputFile != "" {
		return config.Data.OutputFile
	}
	return filepath.Join(dataDir, "exports", "coding_results.csv")
}

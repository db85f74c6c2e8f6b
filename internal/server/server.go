package server

import (
	"embed"
	"io/fs"
	"log"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"

	v1 "github.com/bennoble/image-coding-tool/internal/api/v1"
	"github.com/bennoble/image-coding-tool/internal/config"
	"github.com/bennoble/image-coding-tool/internal/dataset"
	"github.com/bennoble/image-coding-tool/internal/exporter"
	"github.com/bennoble/image-coding-tool/internal/imagesource"
	"github.com/bennoble/image-coding-tool/internal/progress"
	"github.com/bennoble/image-coding-tool/internal/session"
	"github.com/bennoble/image-coding-tool/internal/store"
)

//go:embed all:static
var staticFiles embed.FS

// Server HTTP服务器
type Server struct {
	router  *gin.Engine
	store   *store.Store
	session *session.Session
	v1      *v1.Handler
}

// NewServer 创建服务器
// 元数据不可用时直接失败，不构建部分状态
func NewServer(cfg *config.AppConfig) (*Server, error) {
	devMode := cfg.Server.DevMode
	if !devMode {
		gin.SetMode(gin.ReleaseMode)
	}

	dataDir, err := config.EnsureDataDir(cfg)
	if err != nil {
		dataDir = cfg.Data.DataDir
	}

	// 加载数据集（启动必需）
	data, err := dataset.Load(cfg.Data.MetadataFile)
	if err != nil {
		return nil, err
	}

	// 加载进度存储
	prog, err := progress.Load(config.ProgressFilePath(cfg, dataDir))
	if err != nil {
		return nil, err
	}

	// 启动时备份一次进度文件，防止会话期间损坏
	if cfg.Data.AutoBackup && prog.Count() > 0 {
		if _, _, err := exporter.WriteBackup(prog, filepath.Join(dataDir, "backups"), time.Now()); err != nil {
			log.Printf("启动备份失败: %v", err)
		}
	}

	// 初始化操作日志库
	dbPath := filepath.Join(dataDir, "imagecoder.db")
	sqliteStore, err := store.New(dbPath)
	if err != nil {
		return nil, err
	}
	journal := store.NewJournal(sqliteStore)

	// 重建会话状态
	sess := session.New(data.Len(), prog, journal)

	// 图片来源
	images := imagesource.ForConfig(
		cfg.Data.ImagesDir,
		cfg.Data.ImageBaseURL,
		filepath.Join(dataDir, "cache"),
	)

	handler := v1.NewHandler(data, sess, prog, images, journal, v1.Paths{
		OutputFile: config.OutputFilePath(cfg, dataDir),
		ExportsDir: filepath.Join(dataDir, "exports"),
		BackupsDir: filepath.Join(dataDir, "backups"),
	})

	s := &Server{
		router:  gin.Default(),
		store:   sqliteStore,
		session: sess,
		v1:      handler,
	}

	s.setupRoutes(devMode)

	return s, nil
}

// setupRoutes 设置路由
func (s *Server) setupRoutes(devMode bool) {
	// CORS
	s.router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	// API 路由
	api := s.router.Group("/api")
	{
		s.v1.RegisterRoutes(api)
	}

	// 静态资源
	if devMode {
		// 开发模式：代理到前端开发服务器
		s.router.NoRoute(func(c *gin.Context) {
			c.Redirect(http.StatusTemporaryRedirect, "http://localhost:5173"+c.Request.URL.Path)
		})
	} else {
		// 生产模式：使用embed的静态资源
		sub, _ := fs.Sub(staticFiles, "static")

		s.router.GET("/app.js", func(c *gin.Context) {
			data, err := fs.ReadFile(sub, "app.js")
			if err != nil {
				c.Status(http.StatusNotFound)
				return
			}
			c.Data(http.StatusOK, "application/javascript; charset=utf-8", data)
		})

		s.router.GET("/style.css", func(c *gin.Context) {
			data, err := fs.ReadFile(sub, "style.css")
			if err != nil {
				c.Status(http.StatusNotFound)
				return
			}
			c.Data(http.StatusOK, "text/css; charset=utf-8", data)
		})

		// 首页
		s.router.GET("/", func(c *gin.Context) {
			data, _ := fs.ReadFile(sub, "index.html")
			c.Data(http.StatusOK, "text/html; charset=utf-8", data)
		})

		// 其余路由回退到首页
		s.router.NoRoute(func(c *gin.Context) {
			data, _ := fs.ReadFile(sub, "index.html")
			c.Data(http.StatusOK, "text/html; charset=utf-8", data)
		})
	}
}

// Run 启动服务器
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}

// Close 关闭服务器持有的资源
func (s *Server) Close() error {
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			log.Printf("关闭数据库失败: %v", err)
			return err
		}
	}
	return nil
}

// Session 获取会话状态（用于测试）
func (s *Server) Session() *session.Session {
	return s.session
}

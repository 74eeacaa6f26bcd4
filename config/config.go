// Package config 从环境变量（以及可选的 .env 文件）读取服务配置。
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/ByLCY/mockup/geom"
)

// Config 汇总所有可配置项。
type Config struct {
	ListenAddr        string
	LogLevel          string
	StorageType       string // memory | filesystem
	LocalStoragePath  string
	AssetFetchTimeout time.Duration
	AllowRemoteAssets bool
	// AssetDir 是 HTTP 会话允许读取本地 logo 的目录，为空时禁止本地文件。
	AssetDir    string
	ArtifactTTL time.Duration
	PDFPage     geom.Page
}

// Default 返回默认配置。
func Default() Config {
	return Config{
		ListenAddr:        ":3003",
		LogLevel:          "info",
		StorageType:       "memory",
		LocalStoragePath:  "./artifacts",
		AssetFetchTimeout: 15 * time.Second,
		AllowRemoteAssets: true,
		ArtifactTTL:       10 * time.Minute,
		PDFPage:           geom.A4,
	}
}

// Load 先加载 .env（不存在时忽略），再读取环境变量。
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("读取 .env 失败: %w", err)
		}
		logrus.Debug("No .env file found")
	}
	return FromEnv(os.Getenv)
}

// FromEnv 用给定的查找函数构建配置，未设置的项保持默认值。
func FromEnv(getenv func(string) string) (Config, error) {
	cfg := Default()
	if v := getenv("LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		if _, err := logrus.ParseLevel(v); err != nil {
			return Config{}, fmt.Errorf("LOG_LEVEL 无效: %w", err)
		}
		cfg.LogLevel = v
	}
	if v := strings.ToLower(getenv("STORAGE_TYPE")); v != "" {
		switch v {
		case "memory", "filesystem":
			cfg.StorageType = v
		default:
			return Config{}, fmt.Errorf("STORAGE_TYPE 无效: %q（可选 memory、filesystem）", v)
		}
	}
	if v := getenv("LOCAL_STORAGE_PATH"); v != "" {
		cfg.LocalStoragePath = v
	}
	if v := getenv("ASSET_FETCH_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d < 0 {
			return Config{}, fmt.Errorf("ASSET_FETCH_TIMEOUT 无效: %q", v)
		}
		cfg.AssetFetchTimeout = d
	}
	if v := getenv("ALLOW_REMOTE_ASSETS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("ALLOW_REMOTE_ASSETS 无效: %w", err)
		}
		cfg.AllowRemoteAssets = b
	}
	if v := getenv("ASSET_DIR"); v != "" {
		cfg.AssetDir = v
	}
	if v := getenv("ARTIFACT_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return Config{}, fmt.Errorf("ARTIFACT_TTL 无效: %q", v)
		}
		cfg.ArtifactTTL = d
	}
	if v := getenv("PDF_PAGE"); v != "" {
		page, err := geom.ParsePage(v)
		if err != nil {
			return Config{}, fmt.Errorf("PDF_PAGE 无效: %w", err)
		}
		cfg.PDFPage = page
	}
	return cfg, nil
}

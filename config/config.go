// Package config 读取 YAML 配置文件并补齐默认值。
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	ModeDev     = "dev"
	ModeRelease = "release"
)

type ServerConfig struct {
	Addr         string   `yaml:"addr"`
	AllowOrigins []string `yaml:"allowOrigins"`
}

type RenderConfig struct {
	Supersample    int     `yaml:"supersample"`
	BarHeightRatio float64 `yaml:"barHeightRatio"`
	MinCaptionPt   float64 `yaml:"minCaptionPt"`
	Symbology      string  `yaml:"symbology"`
	ShowCaption    *bool   `yaml:"showCaption"`
	Font           string  `yaml:"font"`
	Workers        int     `yaml:"workers"`
}

// Captions 返回是否绘制说明文字，未配置时为 true。
func (r RenderConfig) Captions() bool {
	return r.ShowCaption == nil || *r.ShowCaption
}

type PreviewConfig struct {
	PaddingPx  float64 `yaml:"paddingPx"`
	ViewportPx float64 `yaml:"viewportPx"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type Config struct {
	Version string        `yaml:"version"`
	Mode    string        `yaml:"mode"`
	Server  ServerConfig  `yaml:"server"`
	Render  RenderConfig  `yaml:"render"`
	Preview PreviewConfig `yaml:"preview"`
	Log     LogConfig     `yaml:"log"`
}

// Default 返回未读取任何文件时的配置。
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load 读取 path 指向的 YAML；文件中未出现的字段取默认值。
func Load(path string) (*Config, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}
	return Parse(buf)
}

// Parse 解析 YAML 内容。
func Parse(buf []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(buf, &cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Mode == "" {
		c.Mode = ModeRelease
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Mode == ModeDev && len(c.Server.AllowOrigins) == 0 {
		c.Server.AllowOrigins = []string{"http://localhost:3000"}
	}
	if c.Render.Supersample == 0 {
		c.Render.Supersample = 4
	}
	if c.Render.BarHeightRatio == 0 {
		c.Render.BarHeightRatio = 0.7
	}
	if c.Render.MinCaptionPt == 0 {
		c.Render.MinCaptionPt = 6
	}
	if c.Render.Symbology == "" {
		c.Render.Symbology = "code128"
	}
	if c.Render.Workers == 0 {
		c.Render.Workers = 1
	}
	if c.Preview.PaddingPx == 0 {
		c.Preview.PaddingPx = 20
	}
	if c.Preview.ViewportPx == 0 {
		c.Preview.ViewportPx = 800
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Validate 检查取值范围。
func (c *Config) Validate() error {
	if c.Mode != ModeDev && c.Mode != ModeRelease {
		return fmt.Errorf("mode 只能是 dev 或 release，实际 %q", c.Mode)
	}
	if c.Render.Supersample < 2 {
		return fmt.Errorf("render.supersample 必须 ≥ 2，实际 %d", c.Render.Supersample)
	}
	if c.Render.BarHeightRatio <= 0 || c.Render.BarHeightRatio > 1 {
		return fmt.Errorf("render.barHeightRatio 必须位于 (0, 1]，实际 %g", c.Render.BarHeightRatio)
	}
	if c.Render.Workers < 1 {
		return fmt.Errorf("render.workers 必须 ≥ 1，实际 %d", c.Render.Workers)
	}
	if c.Preview.PaddingPx < 0 {
		return fmt.Errorf("preview.paddingPx 不能为负数")
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}

// ParseLevel 将 debug/info/warn/error 转换为 slog.Level。
func ParseLevel(s string) (slog.Level, error) {
	var lv slog.Level
	if err := lv.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("未知的日志级别 %q", s)
	}
	return lv, nil
}

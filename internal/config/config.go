package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Variant はどちらのアプリケーションとして起動するかを表す
type Variant string

// Variant の定数定義
const (
	VariantPlain  Variant = "plain"  // main.html を空のコンテキストで描画するだけ
	VariantViewer Variant = "viewer" // 静的ファイル配信・CORS・バージョン変数つき
)

// DefaultSecretKey は起動時に設定されるセッション署名用のキー
const DefaultSecretKey = "viscos"

// Config はアプリケーション全体の設定を保持する構造体
type Config struct {
	Server ServerConfig `yaml:"server"`
	App    AppConfig    `yaml:"app"`
}

// ServerConfig はHTTPサーバーの設定
type ServerConfig struct {
	Host string `yaml:"host" validate:"omitempty,hostname|ip"` // リッスンするホスト
	Port int    `yaml:"port" validate:"min=1,max=65535"`       // リッスンするポート番号

	// ginの動作モード (debug / release / test)
	Mode string `yaml:"mode" validate:"oneof=debug release test"`

	// タイムアウト設定
	ReadTimeout     time.Duration `yaml:"read_timeout" validate:"min=0"`  // 読み込みタイムアウト
	WriteTimeout    time.Duration `yaml:"write_timeout" validate:"min=0"` // 書き込みタイムアウト
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" validate:"min=0"`
}

// AppConfig はアプリケーション固有の設定
type AppConfig struct {
	Variant   Variant `yaml:"variant" validate:"oneof=plain viewer"`
	SecretKey string  `yaml:"secret_key" validate:"required"`

	// 空の場合は埋め込みファイルを使う
	StaticDir   string `yaml:"static_dir"`
	TemplateDir string `yaml:"template_dir"`
}

// Default はデフォルト設定を返す
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            5000,
			Mode:            "release",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 5 * time.Second,
		},
		App: AppConfig{
			Variant:   VariantViewer,
			SecretKey: DefaultSecretKey,
		},
	}
}

// Load は設定を読み込む
// デフォルト値 → YAMLファイル（pathが空でなければ）→ 環境変数 の順で上書きする
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()

	// 設定の検証
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("設定の検証に失敗: %w", err)
	}

	return cfg, nil
}

// loadFile はYAMLファイルの値で設定を上書きする
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("設定ファイルの読み込みに失敗: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("設定ファイルの解析に失敗 (%s): %w", path, err)
	}

	return nil
}

// applyEnv は環境変数で設定を上書きする
func (c *Config) applyEnv() {
	c.Server.Host = getEnvOrDefault("SERVER_HOST", c.Server.Host)
	c.Server.Port = getEnvAsIntOrDefault("PORT", c.Server.Port)
	c.Server.Mode = getEnvOrDefault("GIN_MODE", c.Server.Mode)

	c.App.Variant = Variant(getEnvOrDefault("VISCOS_VARIANT", string(c.App.Variant)))
	c.App.SecretKey = getEnvOrDefault("VISCOS_SECRET_KEY", c.App.SecretKey)
	c.App.StaticDir = getEnvOrDefault("VISCOS_STATIC_DIR", c.App.StaticDir)
	c.App.TemplateDir = getEnvOrDefault("VISCOS_TEMPLATE_DIR", c.App.TemplateDir)
}

// Validate は設定の妥当性を検証する
func (c *Config) Validate() error {
	err := validator.New().Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s の値が不正です: %v (%s)", fe.Namespace(), fe.Value(), fe.Tag()))
	}
	return errors.New(strings.Join(msgs, "; "))
}

// ServerAddress はサーバーのリッスンアドレスを返す
func (c *Config) ServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// ServesStatic は /static 配下の静的ファイルを配信するかどうか
func (v Variant) ServesStatic() bool {
	return v == VariantViewer
}

// AllowsCrossOrigin はクロスオリジンを許可するかどうか
func (v Variant) AllowsCrossOrigin() bool {
	return v == VariantViewer
}

// getEnvOrDefault は環境変数を取得し、設定されていない場合はデフォルト値を返す
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsIntOrDefault は環境変数を整数として取得し、設定されていない場合はデフォルト値を返す
func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var intVal int
		if _, err := fmt.Sscanf(value, "%d", &intVal); err == nil {
			return intVal
		}
		log.Printf("環境変数 %s の値が整数ではないため無視します: %q (デフォルト: %d)", key, value, defaultValue)
	}
	return defaultValue
}

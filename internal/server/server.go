package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"viscos/internal/config"

	"github.com/gin-gonic/gin"
)

// Server はHTTPサーバーを管理する構造体
type Server struct {
	config     *config.Config
	engine     *gin.Engine
	httpServer *http.Server

	mu       sync.Mutex
	listener net.Listener
}

// New は新しいServerインスタンスを作成する
// テンプレートや静的ファイルの読み込みに失敗した場合はエラーを返す
func New(cfg *config.Config) (*Server, error) {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}

	templates, err := loadTemplates(cfg.App.TemplateDir)
	if err != nil {
		return nil, err
	}

	s := &Server{
		config: cfg,
		engine: gin.New(),
	}

	if err := s.setupRoutes(NewPageHandler(cfg.App.Variant, templates)); err != nil {
		return nil, err
	}

	s.httpServer = &http.Server{
		Addr:         cfg.ServerAddress(),
		Handler:      s.engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return s, nil
}

// setupRoutes はミドルウェアとHTTPルートを設定する
func (s *Server) setupRoutes(page *PageHandler) error {
	variant := s.config.App.Variant

	// 未定義メソッドには405を返す
	s.engine.HandleMethodNotAllowed = true

	s.engine.Use(gin.Recovery())
	s.engine.Use(requestID())
	s.engine.Use(requestLogger())
	s.engine.Use(securityHeaders())
	if variant.AllowsCrossOrigin() {
		s.engine.Use(crossOrigin())
	}
	s.engine.Use(sessionStore(s.config.App.SecretKey))

	// 静的ファイル
	if variant.ServesStatic() {
		static, err := staticFileSystem(s.config.App.StaticDir)
		if err != nil {
			return err
		}
		s.engine.StaticFS("/static", static)
	}

	// ルートページ
	s.engine.GET("/", page.Main)
	s.engine.HEAD("/", page.Main)

	return nil
}

// Handler はginエンジンを http.Handler として返す
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Addr は実際にリッスンしているアドレスを返す
// 起動前は設定上のアドレスを返す
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.httpServer.Addr
}

// Start はサーバーを起動する
// コンテキストのキャンセルかシグナルを受け取るまでブロックする
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("リッスンに失敗: %w", err)
	}
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	// シャットダウン用のチャンネル
	shutdownCh := make(chan error, 1)

	// サーバーを別ゴルーチンで起動
	go func() {
		log.Printf("HTTPサーバーを起動しています: %s (variant=%s)", ln.Addr(), s.config.App.Variant)
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			shutdownCh <- fmt.Errorf("サーバーの起動に失敗: %w", err)
		}
	}()

	// シグナルハンドリング
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	// コンテキストかシグナルを待つ
	select {
	case <-ctx.Done():
		log.Println("コンテキストがキャンセルされました")
	case sig := <-sigCh:
		log.Printf("シグナルを受信しました: %v", sig)
	case err := <-shutdownCh:
		return err
	}

	// グレースフルシャットダウン
	return s.Shutdown()
}

// Shutdown はサーバーをグレースフルにシャットダウンする
func (s *Server) Shutdown() error {
	log.Println("サーバーをシャットダウンしています...")

	timeout := s.config.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("サーバーのシャットダウンに失敗: %w", err)
	}

	log.Println("サーバーが正常にシャットダウンされました")
	return nil
}

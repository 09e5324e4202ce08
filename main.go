package main

import (
	"context"
	"log"
	"os"

	"viscos/internal/config"
	"viscos/internal/server"
)

func main() {
	// 設定を読み込む
	cfg, err := config.Load(os.Getenv("VISCOS_CONFIG"))
	if err != nil {
		log.Fatalf("設定の読み込みに失敗しました: %v", err)
	}

	// サーバーを作成
	srv, err := server.New(cfg)
	if err != nil {
		log.Fatalf("サーバーの作成に失敗しました: %v", err)
	}

	// サーバーを起動
	if err := srv.Start(context.Background()); err != nil {
		log.Fatalf("サーバーの起動に失敗しました: %v", err)
	}
}

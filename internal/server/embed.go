package server

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"os"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed all:static
var staticFS embed.FS

// mainTemplate はルートページのテンプレート名
const mainTemplate = "main.html"

// loadTemplates はテンプレートを読み込む
// dir が空の場合は埋め込みテンプレートを使う
func loadTemplates(dir string) (*template.Template, error) {
	var fsys fs.FS
	if dir == "" {
		sub, err := fs.Sub(templateFS, "templates")
		if err != nil {
			return nil, fmt.Errorf("埋め込みテンプレートの取得に失敗: %w", err)
		}
		fsys = sub
	} else {
		fsys = os.DirFS(dir)
	}

	tmpl, err := template.ParseFS(fsys, "*.html")
	if err != nil {
		return nil, fmt.Errorf("テンプレートの解析に失敗: %w", err)
	}
	if tmpl.Lookup(mainTemplate) == nil {
		return nil, fmt.Errorf("テンプレート %s が見つかりません", mainTemplate)
	}

	return tmpl, nil
}

// staticFileSystem は /static で配信するファイルシステムを返す
// dir が空の場合は埋め込みファイルを使う
func staticFileSystem(dir string) (http.FileSystem, error) {
	if dir == "" {
		sub, err := fs.Sub(staticFS, "static")
		if err != nil {
			return nil, fmt.Errorf("埋め込み静的ファイルシステムの作成に失敗: %w", err)
		}
		return filesOnly{http.FS(sub)}, nil
	}

	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("静的ファイルディレクトリを開けません: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s はディレクトリではありません", dir)
	}

	return filesOnly{http.Dir(dir)}, nil
}

// filesOnly はディレクトリを存在しないものとして扱うファイルシステム
// ディレクトリ一覧を返さず404にするために使う
type filesOnly struct {
	fs http.FileSystem
}

// Open はファイルのみを開く
func (f filesOnly) Open(name string) (http.File, error) {
	file, err := f.fs.Open(name)
	if err != nil {
		return nil, err
	}

	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, err
	}
	if info.IsDir() {
		_ = file.Close()
		return nil, fs.ErrNotExist
	}

	return file, nil
}

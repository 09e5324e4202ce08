package server

import (
	"bytes"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"viscos/internal/config"
)

const testOrigin = "https://client.example.org"

// TestCrossOriginHeaders は全ルートでOriginが反映されることをテストする
func TestCrossOriginHeaders(t *testing.T) {
	srv := newTestServer(t, newTestConfig(config.VariantViewer))

	testCases := []struct {
		name       string
		path       string
		wantStatus int
	}{
		{"ルート", "/", http.StatusOK},
		{"静的ファイル", "/static/js/main.js", http.StatusOK},
		{"存在しない静的ファイル", "/static/nope.css", http.StatusNotFound},
		{"未定義のパス", "/nope", http.StatusNotFound},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			req.Header.Set("Origin", testOrigin)
			req.Header.Set("Cookie", "token=abc")
			rec := serve(srv, req)

			if rec.Code != tc.wantStatus {
				t.Errorf("予期しないステータスコード: got %d, want %d", rec.Code, tc.wantStatus)
			}
			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != testOrigin {
				t.Errorf("Access-Control-Allow-Origin が一致しません: got %q, want %q", got, testOrigin)
			}
			if got := rec.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
				t.Errorf("Access-Control-Allow-Credentials が一致しません: got %q", got)
			}
		})
	}
}

// TestSameOriginHasNoCrossOriginHeaders は自オリジンからのリクエストにCORSヘッダーが付かないことをテストする
func TestSameOriginHasNoCrossOriginHeaders(t *testing.T) {
	srv := newTestServer(t, newTestConfig(config.VariantViewer))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://"+req.Host)
	req.Header.Set("Cookie", "token=abc")
	rec := serve(srv, req)

	if rec.Code != http.StatusOK {
		t.Errorf("予期しないステータスコード: got %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("自オリジンでCORSヘッダーが付与されています: %q", got)
	}
}

// TestCrossOriginPreflight はプリフライトリクエストをテストする
func TestCrossOriginPreflight(t *testing.T) {
	srv := newTestServer(t, newTestConfig(config.VariantViewer))

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", testOrigin)
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := serve(srv, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("予期しないステータスコード: got %d, want %d", rec.Code, http.StatusNoContent)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != testOrigin {
		t.Errorf("Access-Control-Allow-Origin が一致しません: got %q", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Methods"); !strings.Contains(got, http.MethodGet) {
		t.Errorf("Access-Control-Allow-Methods に GET が含まれていません: got %q", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Errorf("Access-Control-Allow-Credentials が一致しません: got %q", got)
	}
}

// TestPlainHasNoCrossOrigin はplainにCORSヘッダーが付かないことをテストする
func TestPlainHasNoCrossOrigin(t *testing.T) {
	srv := newTestServer(t, newTestConfig(config.VariantPlain))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", testOrigin)
	rec := serve(srv, req)

	if rec.Code != http.StatusOK {
		t.Errorf("予期しないステータスコード: got %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("plainでCORSヘッダーが付与されています: %q", got)
	}

	// 静的ファイルも配信しない
	rec = serve(srv, httptest.NewRequest(http.MethodGet, "/static/js/main.js", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("plainで静的ファイルが配信されています: got %d", rec.Code)
	}
}

// TestStaticFiles は埋め込み静的ファイルの配信をテストする
func TestStaticFiles(t *testing.T) {
	srv := newTestServer(t, newTestConfig(config.VariantViewer))

	want, err := staticFS.ReadFile("static/js/main.js")
	if err != nil {
		t.Fatalf("埋め込みファイルの読み込みに失敗しました: %v", err)
	}

	rec := serve(srv, httptest.NewRequest(http.MethodGet, "/static/js/main.js", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("予期しないステータスコード: got %d", rec.Code)
	}
	if !bytes.Equal(rec.Body.Bytes(), want) {
		t.Error("静的ファイルの内容が一致しません")
	}
	if ct := rec.Header().Get("Content-Type"); !strings.Contains(ct, "javascript") {
		t.Errorf("Content-Typeが一致しません: got %s", ct)
	}
	if cc := rec.Header().Get("Cache-Control"); cc != "" {
		t.Errorf("Cache-Controlが付与されています: %s", cc)
	}

	rec = serve(srv, httptest.NewRequest(http.MethodGet, "/static/css/main.css", nil))
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/css") {
		t.Errorf("CSSのContent-Typeが一致しません: got %s", ct)
	}

	// ディレクトリ一覧は返さない
	for _, path := range []string{"/static/", "/static/js/", "/static/../server.go"} {
		rec = serve(srv, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code == http.StatusOK {
			t.Errorf("%s で200が返されました", path)
		}
	}
}

// TestStaticDir はディスク上の静的ディレクトリからの配信をテストする
func TestStaticDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "hello.txt"), []byte("hello"), 0o644); err != nil {
		t.Fatalf("ファイルの作成に失敗しました: %v", err)
	}
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatalf("ディレクトリの作成に失敗しました: %v", err)
	}

	cfg := newTestConfig(config.VariantViewer)
	cfg.App.StaticDir = dir
	srv := newTestServer(t, cfg)

	rec := serve(srv, httptest.NewRequest(http.MethodGet, "/static/hello.txt", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "hello" {
		t.Errorf("静的ファイルが配信されません: got %d %q", rec.Code, rec.Body.String())
	}

	rec = serve(srv, httptest.NewRequest(http.MethodGet, "/static/sub/", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("ディレクトリで404が期待されました: got %d", rec.Code)
	}
}

// TestSecurityHeaders はセキュリティヘッダーをテストする
func TestSecurityHeaders(t *testing.T) {
	srv := newTestServer(t, newTestConfig(config.VariantPlain))

	rec := serve(srv, httptest.NewRequest(http.MethodGet, "/", nil))
	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options が一致しません: got %q", got)
	}
	if got := rec.Header().Get("Referrer-Policy"); got != "strict-origin-when-cross-origin" {
		t.Errorf("Referrer-Policy が一致しません: got %q", got)
	}
	if got := rec.Header().Get("X-Frame-Options"); got != "" {
		t.Errorf("X-Frame-Options が付与されています: %q", got)
	}
}

// TestNoSessionCookie はルートページがセッションクッキーを発行しないことをテストする
func TestNoSessionCookie(t *testing.T) {
	for _, variant := range []config.Variant{config.VariantPlain, config.VariantViewer} {
		t.Run(string(variant), func(t *testing.T) {
			srv := newTestServer(t, newTestConfig(variant))

			rec := serve(srv, httptest.NewRequest(http.MethodGet, "/", nil))
			if got := rec.Header().Values("Set-Cookie"); len(got) != 0 {
				t.Errorf("Set-Cookie が発行されています: %v", got)
			}
		})
	}
}

// TestRequestLogger はアクセスログとリクエストIDをテストする
func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	srv := newTestServer(t, newTestConfig(config.VariantPlain))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "req-123")
	serve(srv, req)
	serve(srv, httptest.NewRequest(http.MethodGet, "/missing", nil))

	out := buf.String()
	for _, want := range []string{
		"id=req-123 method=GET path=/ status=200",
		"method=GET path=/missing status=404",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("ログに %q が含まれていません:\n%s", want, out)
		}
	}
	if strings.Contains(out, "id= ") {
		t.Errorf("リクエストIDが空のログがあります:\n%s", out)
	}
}

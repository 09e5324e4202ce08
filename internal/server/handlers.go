package server

import (
	"bytes"
	"html/template"
	"log"
	"net/http"
	"strconv"

	"viscos/internal/config"

	"github.com/gin-gonic/gin"
)

// main.html に渡すライブラリのバージョン
// CDNのURLに埋め込まれるため、設定ではなく固定値として持つ
const (
	threeJSVersion = "0.150.1"
	datGUIVersion  = "0.7.7"
)

// PageHandler はルートページを描画するハンドラー
type PageHandler struct {
	variant   config.Variant
	templates *template.Template
}

// NewPageHandler は新しいPageHandlerを作成する
func NewPageHandler(variant config.Variant, templates *template.Template) *PageHandler {
	return &PageHandler{
		variant:   variant,
		templates: templates,
	}
}

// TemplateContext はテンプレートに渡す変数をリクエストごとに生成する
func (h *PageHandler) TemplateContext() gin.H {
	if h.variant != config.VariantViewer {
		return gin.H{}
	}

	return gin.H{
		"three_js_version": threeJSVersion,
		"dat_gui_version":  datGUIVersion,
	}
}

// Main は GET / と HEAD / のハンドラー
// リクエストの内容は描画結果に影響しない
// HEAD ではGETと同じステータスとヘッダーを返し、ボディは送らない
func (h *PageHandler) Main(c *gin.Context) {
	// 途中まで書き込んだ200を返さないよう、バッファに描画してから送る
	var buf bytes.Buffer
	if err := h.templates.ExecuteTemplate(&buf, mainTemplate, h.TemplateContext()); err != nil {
		log.Printf("テンプレート %s の描画に失敗: %v", mainTemplate, err)
		_ = c.Error(err)
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	if c.Request.Method == http.MethodHead {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.Header("Content-Length", strconv.Itoa(buf.Len()))
		c.Status(http.StatusOK)
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

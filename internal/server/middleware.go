package server

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/secure"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// requestIDKey はginコンテキストに保存するリクエストIDのキー
	requestIDKey = "request_id"

	// sessionName はセッションクッキーの名前
	sessionName = "viscos_session"
)

// requestID はリクエストごとにIDを振る
// クライアントが X-Request-ID を送ってきた場合はそれを使う
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Next()
	}
}

// requestLogger は1リクエストにつき1行のアクセスログを出力する
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		size := c.Writer.Size()
		if size < 0 {
			size = 0
		}
		log.Printf("request id=%s method=%s path=%s status=%d bytes=%d duration=%s remote=%s",
			c.GetString(requestIDKey),
			c.Request.Method,
			c.Request.URL.Path,
			c.Writer.Status(),
			size,
			time.Since(start).Round(time.Microsecond),
			c.ClientIP(),
		)
	}
}

// securityHeaders はセキュリティ関連のレスポンスヘッダーを付与する
// 埋め込み表示を妨げないようフレーム制限はかけない
func securityHeaders() gin.HandlerFunc {
	return secure.New(secure.Config{
		ContentTypeNosniff: true,
		ReferrerPolicy:     "strict-origin-when-cross-origin",
	})
}

// crossOrigin は全ルートに資格情報つきCORSを適用する
// 資格情報を許可する場合 "*" は使えないため、リクエスト元のOriginをそのまま返す
func crossOrigin() gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool { return true },
		AllowMethods: []string{
			http.MethodGet,
			http.MethodHead,
			http.MethodPost,
			http.MethodPut,
			http.MethodPatch,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}

// sessionStore はシークレットキーで署名するクッキーセッションを有効にする
// セッションに書き込むまでクッキーは発行されない
func sessionStore(secretKey string) gin.HandlerFunc {
	store := cookie.NewStore([]byte(secretKey))
	store.Options(sessions.Options{
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return sessions.Sessions(sessionName, store)
}

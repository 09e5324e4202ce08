// Package server は、viscos のHTTPアプリケーションを管理します。
//
// このパッケージは、ginエンジンの構築、ミドルウェアの組み立て、
// ルートページの描画、静的ファイルの配信、サーバーの起動と停止を担当します。
//
// 責務:
//   - GET / で main.html を描画して返す
//   - /static 配下の静的ファイル（JS/CSS）の配信（viewerのみ）
//   - 資格情報つきクロスオリジンリクエストの許可（viewerのみ）
//   - シークレットキーによるセッションクッキーの署名
//   - グレースフルシャットダウン
//
// 仕様:
//   - ルーティングはgin-gonic/ginを使用
//   - CORSはgin-contrib/cors、セキュリティヘッダーはgin-contrib/secureを使用
//   - テンプレートと静的ファイルはgo:embedで埋め込み、ディレクトリ指定で差し替え可能
//   - 登録するハンドラーは GET / の1つだけ
package server

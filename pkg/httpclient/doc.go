// Package httpclient は外部サービスからJSONを取得するHTTPクライアントを提供する。
//
// IDプロバイダーのJWKSエンドポイントからの署名鍵取得に使用する。
// 明示的なタイムアウトと、通信エラー・5xxに限定した指数バックオフ付きの
// リトライを備える。
package httpclient

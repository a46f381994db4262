// Package middleware はGinベースのHTTP APIで使用する共通ミドルウェアを提供する。
//
// ルートごとの権限による認可判定（Protect）、リクエストID、パニックリカバリ、
// CORS設定を含む。
package middleware

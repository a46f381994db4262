// Package auth は外部IDプロバイダーが発行したアクセストークンによる認可判定を提供する。
//
// Bearerトークンの抽出、JWKSエンドポイントからの署名鍵セット取得、
// RS256系に限定した署名検証とissuer/audience/有効期限の検証、
// permissionsクレームによる権限確認を行う。失敗はすべて型付きの *Error で返し、
// 呼び出し側はKindからHTTPステータスとエラーコードを得る。
package auth

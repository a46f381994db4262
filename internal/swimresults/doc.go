// Package swimresults は競泳記録APIのHTTPサーバーを提供する。
//
// 選手（swimmers）・大会（meets）・記録（results）のCRUDを公開し、
// 保護されたルートはすべて middleware.Protect を経由して権限を確認する。
//
// エンドポイント:
//
//	GET    /                      挨拶文（認可不要）
//	GET    /health                ヘルスチェック（認可不要）
//	GET    /swimmers              get:swimmers
//	POST   /swimmers              post:swimmer
//	GET    /swimmers/:id          get:swimmers
//	PATCH  /swimmers/:id          patch:swimmer
//	DELETE /swimmers/:id          delete:swimmer
//	GET    /swimmers/:id/results  get:results
//	GET    /meets                 get:meets
//	POST   /meets                 post:meet
//	GET    /meets/:id             get:meets
//	PATCH  /meets/:id             patch:meet
//	DELETE /meets/:id             delete:meet
//	GET    /meets/:id/results     get:results
//	GET    /results               get:results
//	POST   /results               post:result
//	DELETE /results/:id           delete:result
package swimresults

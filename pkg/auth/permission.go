package auth

import "fmt"

// CheckPermission はクレームに必要な権限が含まれているかを確認する。
func CheckPermission(claims *Claims, required string) error {
	if claims == nil || claims.Permissions == nil {
		return ErrPermissionsClaimMissing
	}
	if !claims.HasPermission(required) {
		return newError(KindPermissionDenied, fmt.Errorf("権限 %q がありません", required))
	}
	return nil
}

//go:build mobile

package utils

// MobileEmulateEnv 移动端构建忽略该变量
const MobileEmulateEnv = "ALGOQUEST_MOBILE_EMULATE"

// IsMobile 移动端构建总是返回 true，营地提示改为“点击”
func IsMobile() bool { return true }

//go:build !mobile

package utils

import (
	"os"
	"strings"
)

// MobileEmulateEnv 设置后桌面端按触屏模式显示提示文字
const MobileEmulateEnv = "ALGOQUEST_MOBILE_EMULATE"

// IsMobile 是否按移动端交互方式运行
// 桌面端默认返回 false，环境变量 ALGOQUEST_MOBILE_EMULATE 为 1/true/yes 时返回 true
func IsMobile() bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(MobileEmulateEnv))) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

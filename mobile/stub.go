//go:build !mobile

// Package mobile 是 gomobile bind 的入口
//
// 普通构建只编译这个文件，任务游戏的移动端初始化在 mobile.go 中，
// 需要 -tags mobile 才会参与编译。
package mobile

// Dummy 让 ./... 在桌面端也能找到可编译的包
func Dummy() {}

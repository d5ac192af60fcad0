package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/decker502/algoquest/pkg/app"
	"github.com/decker502/algoquest/pkg/config"
	"github.com/decker502/algoquest/pkg/embedded"
	"github.com/hajimehoshi/ebiten/v2"
)

var (
	// 命令行参数
	verbose    = flag.Bool("verbose", false, "显示详细调试信息（包括挑战目标）")
	playerName = flag.String("player", "", "任务中的称呼（会保存到设置）")
	scriptPath = flag.String("script", "", "任务脚本路径，默认使用内置脚本")
	seed       = flag.Uint64("seed", 0, "挑战随机种子，0 表示随机")
)

func main() {
	flag.Parse()

	// 初始化嵌入资源（dataFS 在 embed.go 中声明）
	embedded.Init(dataFS)

	gameApp, err := app.NewApp(app.Config{
		Verbose:    *verbose,
		PlayerName: *playerName,
		ScriptPath: *scriptPath,
		Seed:       *seed,
	})
	if err != nil {
		// NewApp 在非 verbose 模式下会关闭日志，错误直接写到 stderr
		fmt.Fprintf(os.Stderr, "游戏初始化失败: %v\n", err)
		os.Exit(1)
	}

	ebiten.SetWindowSize(config.ScreenWidth, config.ScreenHeight)
	ebiten.SetWindowTitle("Algorithm Quest")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(gameApp); err != nil {
		log.Fatal(err)
	}
}

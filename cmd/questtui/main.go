// questtui 在终端中运行算法任务
//
// 与 ebiten 版本使用同一个任务导演和挑战实现，只替换显示端。
//
// 用法（在项目根目录运行）：
//
//	go run ./cmd/questtui --player Ada
//	go run ./cmd/questtui --script data/quest/algorithm_quest.yaml --seed 42 --instant
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/decker502/algoquest/pkg/app"
	"github.com/decker502/algoquest/pkg/config"
	"github.com/decker502/algoquest/pkg/game"
	"github.com/decker502/algoquest/pkg/quest"
)

var (
	// 命令行参数
	scriptPath = flag.String("script", "data/quest/algorithm_quest.yaml", "任务脚本路径")
	playerName = flag.String("player", "", "任务中的称呼，默认使用保存的设置")
	seed       = flag.Uint64("seed", 0, "挑战随机种子，0 表示随机")
	instant    = flag.Bool("instant", false, "立即显示全文，不使用逐字效果")
	logFile    = flag.String("log", "", "把调试日志写到指定文件（终端界面运行时无法显示日志）")
)

func main() {
	flag.Parse()

	log.SetOutput(io.Discard)
	if *logFile != "" {
		f, err := tea.LogToFile(*logFile, "questtui")
		if err != nil {
			fmt.Printf("Error opening log file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
	}

	script, err := config.LoadQuestScript(*scriptPath)
	if err != nil {
		fmt.Printf("Error loading quest script: %v\n", err)
		os.Exit(1)
	}

	settings := game.OpenSettingsManager(game.AppName).GetSettings()
	name := settings.PlayerName
	if *playerName != "" {
		name = *playerName
	}

	opts := []quest.Option{quest.WithRand(app.NewRand(*seed))}
	if *instant {
		opts = append(opts, quest.WithTypingInterval(0))
	} else if interval := app.TypingInterval(settings.TypingIntervalMs); interval != 0 {
		opts = append(opts, quest.WithTypingInterval(interval))
	}

	model, err := NewModel(script, name, settings.ShowHints, opts...)
	if err != nil {
		fmt.Printf("Error starting quest: %v\n", err)
		os.Exit(1)
	}

	p := tea.NewProgram(model, tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		fmt.Printf("Alas, there's been an error: %v", err)
		os.Exit(1)
	}
	if m, ok := final.(Model); ok && m.host.completed {
		fmt.Println("The Master Monk bows. Your training is complete.")
	}
}

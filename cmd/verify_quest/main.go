// verify_quest 无界面地跑完整个任务，用于验证脚本和挑战配置
//
// 猜数字挑战用二分查找求解，排序挑战用选择排序求解；
// --exhaust 会先故意耗尽一次次数，验证挑战会自动重置而任务保持阻塞。
//
// 用法（在项目根目录运行）：
//
//	go run ./cmd/verify_quest --verbose
//	go run ./cmd/verify_quest --script path/to/quest.yaml --seed 42 --exhaust
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/decker502/algoquest/pkg/app"
	"github.com/decker502/algoquest/pkg/challenge"
	"github.com/decker502/algoquest/pkg/config"
	"github.com/decker502/algoquest/pkg/quest"
	"github.com/decker502/algoquest/pkg/scheduler"
)

var (
	// 命令行参数
	verbose    = flag.Bool("verbose", false, "显示详细调试信息")
	scriptPath = flag.String("script", "data/quest/algorithm_quest.yaml", "任务脚本路径")
	playerName = flag.String("player", "", "任务中的称呼")
	seed       = flag.Uint64("seed", 0, "挑战随机种子，0 表示随机")
	exhaust    = flag.Bool("exhaust", false, "每个挑战先故意耗尽一次次数")
)

// frameDelta 模拟的帧间隔（秒）
const frameDelta = 1.0 / 60.0

// maxFrames 超过这个帧数仍未完成视为卡死
const maxFrames = 60 * 60 * 10

// transcriptHost 把导演的回调输出为文字记录
type transcriptHost struct {
	stage     int
	lastText  string
	challenge challenge.Challenge
	completed bool
}

func (h *transcriptHost) DisplayText(text string) { h.lastText = text }

func (h *transcriptHost) ShowChallenge(c challenge.Challenge) {
	h.challenge = c
	used, budget := c.Progress()
	fmt.Printf("    ⚔️  challenge %s shown (%d/%d)\n", c.Kind(), used, budget)
}

func (h *transcriptHost) HideChallenge(c challenge.Challenge) {
	if h.challenge == c {
		h.challenge = nil
	}
	fmt.Printf("    ✅ challenge %s cleared\n", c.Kind())
}

func (h *transcriptHost) QuestCompleted() {
	h.completed = true
}

func main() {
	flag.Parse()
	if !*verbose {
		log.SetOutput(io.Discard)
	}

	script, err := config.LoadQuestScript(*scriptPath)
	if err != nil {
		fmt.Printf("FAIL: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Quest %q: %d stages, %d gates\n", script.ID, len(script.Stages), script.GateCount())

	if err := run(script); err != nil {
		fmt.Printf("FAIL: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("OK: quest completed")
}

// run 驱动导演跑完整个任务
func run(script *config.QuestScript) error {
	host := &transcriptHost{stage: -1}
	sched := scheduler.New()
	director, err := quest.New(script, sched, host, quest.WithRand(app.NewRand(*seed)))
	if err != nil {
		return err
	}
	director.Start(*playerName)

	exhausted := map[challenge.Challenge]bool{}
	for frame := 0; frame < maxFrames; frame++ {
		if host.completed {
			fmt.Printf("Completed after %d frames (%.1fs virtual time)\n", frame,
				sched.Now().Seconds())
			return nil
		}

		if director.StageIndex() != host.stage {
			host.stage = director.StageIndex()
			stage := director.Stage()
			fmt.Printf("[%2d] %-14s %s\n", stage.Index, stage.Kind, firstLine(stage.RenderText(director.State().PlayerLabel)))
		}

		switch c := director.ActiveChallenge().(type) {
		case nil:
			if director.Phase() == quest.PhaseIdle {
				director.Advance()
				continue
			}
		case *challenge.BinarySearch:
			if c.Status() == challenge.StatusActive {
				if *exhaust && !exhausted[c] {
					exhausted[c] = true
					if err := exhaustBinarySearch(director, c); err != nil {
						return err
					}
				} else if err := solveBinarySearch(director, c); err != nil {
					return err
				}
			}
		case *challenge.Sorting:
			if c.Status() == challenge.StatusActive {
				if *exhaust && !exhausted[c] {
					exhausted[c] = true
					if err := exhaustSorting(director, c); err != nil {
						return err
					}
				} else if err := solveSorting(director, c); err != nil {
					return err
				}
			}
		}

		director.Update(frameDelta)
	}
	return fmt.Errorf("quest did not complete within %v of virtual time (stage %d, phase %s)",
		time.Duration(maxFrames)*time.Second/60, director.StageIndex(), director.Phase())
}

// solveBinarySearch 二分查找求解
// size 为 2 的幂时折半可能多用一次而耗尽，此时等待重置后再解
func solveBinarySearch(d *quest.Director, c *challenge.BinarySearch) error {
	lo, hi := c.Range()
	for lo <= hi {
		mid := (lo + hi) / 2
		res, err := d.SubmitGuess(fmt.Sprint(mid))
		if err != nil {
			return fmt.Errorf("guess %d: %w", mid, err)
		}
		fmt.Printf("    guess %-3d → %s (%d/%d)\n", mid, res.Verdict, res.Used, res.Budget)

		switch res.Verdict {
		case challenge.VerdictCorrect:
			return nil
		case challenge.VerdictTooLow:
			lo = mid + 1
		case challenge.VerdictTooHigh:
			hi = mid - 1
		}
		if res.Outcome.Kind == challenge.OutcomeExhausted {
			fmt.Printf("    ❌ exhausted %d tries, retrying after reset\n", res.Budget)
			return nil
		}
	}
	return fmt.Errorf("binary search range collapsed without finding the target")
}

// exhaustBinarySearch 一直猜一个错误的值直到次数耗尽
func exhaustBinarySearch(d *quest.Director, c *challenge.BinarySearch) error {
	lo, hi := c.Range()
	wrong := lo
	if c.Target() == lo {
		wrong = hi
	}
	if wrong == c.Target() {
		// 单值集合无法猜错
		return solveBinarySearch(d, c)
	}
	for {
		res, err := d.SubmitGuess(fmt.Sprint(wrong))
		if err != nil {
			return fmt.Errorf("guess %d: %w", wrong, err)
		}
		if res.Outcome.Kind == challenge.OutcomeExhausted {
			fmt.Printf("    ❌ exhausted after %d tries, waiting for reset\n", res.Used)
			return nil
		}
	}
}

// solveSorting 选择排序求解
func solveSorting(d *quest.Director, c *challenge.Sorting) error {
	target := c.SortedOrder()
	for i := range target {
		records := c.Records()
		if records[i].Value == target[i].Value {
			continue
		}
		j := i + 1
		for j < len(records) && records[j].Value != target[i].Value {
			j++
		}
		if j >= len(records) {
			return fmt.Errorf("value %d missing from %v", target[i].Value, records)
		}

		res, err := d.SubmitSwap(fmt.Sprint(i+1), fmt.Sprint(j+1))
		if err != nil {
			return fmt.Errorf("swap %d,%d: %w", i+1, j+1, err)
		}
		fmt.Printf("    swap %d,%d → %s\n", i+1, j+1, c.Display())
		switch res.Outcome.Kind {
		case challenge.OutcomeSolved:
			return nil
		case challenge.OutcomeExhausted:
			return fmt.Errorf("sorting exhausted %d swaps", res.Budget)
		}
	}
	return fmt.Errorf("records sorted without a Solved outcome: %v", c.Records())
}

// exhaustSorting 反复交换同一对位置直到次数耗尽
func exhaustSorting(d *quest.Director, c *challenge.Sorting) error {
	for {
		res, err := d.SubmitSwap("1", "2")
		if err != nil {
			return fmt.Errorf("swap 1,2: %w", err)
		}
		switch res.Outcome.Kind {
		case challenge.OutcomeExhausted:
			fmt.Printf("    ❌ exhausted after %d swaps, waiting for reshuffle\n", res.Used)
			return nil
		case challenge.OutcomeSolved:
			// 两条记录时一次交换就可能排好
			return nil
		}
	}
}

// firstLine 返回文本第一行（过长时截断）
func firstLine(text string) string {
	for i, r := range text {
		if r == '\n' {
			text = text[:i]
			break
		}
	}
	runes := []rune(text)
	if len(runes) > 60 {
		return string(runes[:57]) + "..."
	}
	return text
}

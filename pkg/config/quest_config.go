package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/decker502/algoquest/pkg/challenge"
	"github.com/decker502/algoquest/pkg/embedded"
	"gopkg.in/yaml.v3"
)

// DefaultQuestScriptPath 内置任务脚本在嵌入文件系统中的路径
const DefaultQuestScriptPath = "data/quest/algorithm_quest.yaml"

// 任务脚本默认值
const (
	DefaultSpeaker          = "👨‍🦲 Master Monk"
	DefaultTypingIntervalMs = 20
	DefaultPlayerLabel      = "Adventurer"

	// PlayerToken 阶段文本中的玩家名字占位符
	PlayerToken = "{PLAYER}"
)

// StageKind 阶段类型
type StageKind string

const (
	// StageNarrative 叙事阶段：显示完文本后等待玩家点击 Next
	StageNarrative StageKind = "narrative"
	// StageGate 挑战关卡：显示完文本后进入挑战，解出前无法继续
	StageGate StageKind = "challenge-gate"
)

// Stage 任务中的一个阶段
type Stage struct {
	Index     int            `yaml:"-"`         // 阶段索引，由加载器按列表位置分配
	Text      string         `yaml:"text"`      // 显示文本，可包含 {PLAYER}
	Kind      StageKind      `yaml:"kind"`      // 阶段类型，默认根据 challenge 推断
	Challenge challenge.Kind `yaml:"challenge"` // 挑战类型（仅 challenge-gate）
}

// IsGate 是否是挑战关卡
func (s Stage) IsGate() bool {
	return s.Kind == StageGate
}

// RenderText 返回替换了玩家名字的文本
func (s Stage) RenderText(playerLabel string) string {
	return strings.ReplaceAll(s.Text, PlayerToken, playerLabel)
}

// BinarySearchSection 猜数字挑战参数
type BinarySearchSection struct {
	Size         int `yaml:"size"`         // 取值范围 1..size，默认 50
	SolveDelayMs *int `yaml:"solveDelayMs"` // 解出后的显示延迟，nil 表示默认 2500，显式 0 立即结束
	ResetDelayMs *int `yaml:"resetDelayMs"` // 次数耗尽后的重置延迟，nil 表示默认 2500
}

// RecordConfig 排序记录
type RecordConfig struct {
	Name  string `yaml:"name"`
	Value int    `yaml:"value"`
}

// SortingSection 排序挑战参数
type SortingSection struct {
	Records      []RecordConfig `yaml:"records"`      // 待排序记录，默认为五位人物
	SolveDelayMs *int           `yaml:"solveDelayMs"` // nil 表示默认 1500
	ResetDelayMs *int           `yaml:"resetDelayMs"` // nil 表示默认 1500
}

// QuestScript 任务脚本
// 加载后不可修改，任务导演只持有当前阶段索引
type QuestScript struct {
	ID               string              `yaml:"id"`
	Title            string              `yaml:"title"`
	Speaker          string              `yaml:"speaker"`          // 对话框名牌
	TypingIntervalMs int                 `yaml:"typingIntervalMs"` // 逐字显示间隔，0 使用默认值，负数立即显示全文
	Stages           []Stage             `yaml:"stages"`
	BinarySearch     BinarySearchSection `yaml:"binarySearch"`
	Sorting          SortingSection      `yaml:"sorting"`
}

// LoadQuestScript 从YAML文件加载任务脚本
// 参数：
//
//	path - 脚本文件路径（相对或绝对路径）
//
// 返回：
//
//	*QuestScript - 解析并校验后的脚本
//	error - 如果文件读取、解析或校验失败，返回错误信息
func LoadQuestScript(path string) (*QuestScript, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read quest script %s: %w", path, err)
	}
	return ParseQuestScript(data, path)
}

// LoadEmbeddedQuestScript 从嵌入资源加载内置任务脚本
// 需要先调用 embedded.Init()
func LoadEmbeddedQuestScript() (*QuestScript, error) {
	data, err := embedded.ReadFile(DefaultQuestScriptPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded quest script %s: %w", DefaultQuestScriptPath, err)
	}
	return ParseQuestScript(data, DefaultQuestScriptPath)
}

// ParseQuestScript 解析YAML数据
// source 只用于错误信息
func ParseQuestScript(data []byte, source string) (*QuestScript, error) {
	var script QuestScript
	if err := yaml.Unmarshal(data, &script); err != nil {
		return nil, fmt.Errorf("failed to parse quest script YAML from %s: %w", source, err)
	}

	applyQuestDefaults(&script)

	if err := validateQuestScript(&script); err != nil {
		return nil, fmt.Errorf("invalid quest script in %s: %w", source, err)
	}

	return &script, nil
}

// applyQuestDefaults 为缺失的可选字段设置默认值
func applyQuestDefaults(script *QuestScript) {
	if script.Speaker == "" {
		script.Speaker = DefaultSpeaker
	}
	if script.TypingIntervalMs == 0 {
		script.TypingIntervalMs = DefaultTypingIntervalMs
	}

	for i := range script.Stages {
		stage := &script.Stages[i]
		stage.Index = i
		// 未写 kind 时根据是否配置了 challenge 推断
		if stage.Kind == "" {
			if stage.Challenge != "" {
				stage.Kind = StageGate
			} else {
				stage.Kind = StageNarrative
			}
		}
	}

	bs := &script.BinarySearch
	if bs.Size == 0 {
		bs.Size = challenge.DefaultBinarySearchSize
	}
	defaultDelayMs(&bs.SolveDelayMs, challenge.DefaultBinarySearchSolveDelay)
	defaultDelayMs(&bs.ResetDelayMs, challenge.DefaultBinarySearchResetDelay)

	so := &script.Sorting
	if len(so.Records) == 0 {
		for _, r := range challenge.DefaultRecords() {
			so.Records = append(so.Records, RecordConfig{Name: r.Name, Value: r.Value})
		}
	}
	defaultDelayMs(&so.SolveDelayMs, challenge.DefaultSortingSolveDelay)
	defaultDelayMs(&so.ResetDelayMs, challenge.DefaultSortingResetDelay)
}

// defaultDelayMs 未配置（nil）时填入默认延迟，显式给出的 0 保持不变
func defaultDelayMs(field **int, def time.Duration) {
	if *field == nil {
		ms := int(def / time.Millisecond)
		*field = &ms
	}
}

// delayMs 返回延迟毫秒数，nil 视为 0
func delayMs(v *int) time.Duration {
	if v == nil {
		return 0
	}
	return time.Duration(*v) * time.Millisecond
}

// negativeDelay 是否配置了负的延迟
func negativeDelay(values ...*int) bool {
	for _, v := range values {
		if v != nil && *v < 0 {
			return true
		}
	}
	return false
}

// validateQuestScript 验证任务脚本的完整性和合法性
func validateQuestScript(script *QuestScript) error {
	if script.ID == "" {
		return fmt.Errorf("quest ID is required")
	}

	if len(script.Stages) == 0 {
		return fmt.Errorf("at least one stage is required")
	}

	for i, stage := range script.Stages {
		if strings.TrimSpace(stage.Text) == "" {
			return fmt.Errorf("stage %d: text is required", i)
		}

		switch stage.Kind {
		case StageNarrative:
			if stage.Challenge != "" {
				return fmt.Errorf("stage %d: narrative stage cannot have a challenge (got %q)", i, stage.Challenge)
			}
		case StageGate:
			if !stage.Challenge.Valid() {
				return fmt.Errorf("stage %d: unknown challenge %q (must be %q or %q)",
					i, stage.Challenge, challenge.KindBinarySearch, challenge.KindSorting)
			}
		default:
			return fmt.Errorf("stage %d: unknown kind %q (must be %q or %q)", i, stage.Kind, StageNarrative, StageGate)
		}
	}

	if script.BinarySearch.Size < 1 {
		return fmt.Errorf("binarySearch.size must be at least 1, got %d", script.BinarySearch.Size)
	}
	if negativeDelay(script.BinarySearch.SolveDelayMs, script.BinarySearch.ResetDelayMs) {
		return fmt.Errorf("binarySearch delays cannot be negative")
	}

	records := script.Sorting.Records
	if len(records) < 2 {
		return fmt.Errorf("sorting needs at least 2 records, got %d", len(records))
	}
	distinct := false
	for j, r := range records {
		if r.Name == "" {
			return fmt.Errorf("sorting record %d: name is required", j)
		}
		if r.Value != records[0].Value {
			distinct = true
		}
	}
	// 所有值相同时任何排列都是有序的，无法洗成未排序状态
	if !distinct {
		return fmt.Errorf("sorting records need at least two distinct values")
	}
	if negativeDelay(script.Sorting.SolveDelayMs, script.Sorting.ResetDelayMs) {
		return fmt.Errorf("sorting delays cannot be negative")
	}

	return nil
}

// TypingInterval 返回逐字显示间隔（≤ 0 表示立即显示全文）
func (s *QuestScript) TypingInterval() time.Duration {
	return time.Duration(s.TypingIntervalMs) * time.Millisecond
}

// GateCount 返回挑战关卡数量
func (s *QuestScript) GateCount() int {
	n := 0
	for _, stage := range s.Stages {
		if stage.IsGate() {
			n++
		}
	}
	return n
}

// BinarySearchConfig 转换为挑战配置
func (s *QuestScript) BinarySearchConfig() challenge.BinarySearchConfig {
	return challenge.BinarySearchConfig{
		Size:       s.BinarySearch.Size,
		SolveDelay: delayMs(s.BinarySearch.SolveDelayMs),
		ResetDelay: delayMs(s.BinarySearch.ResetDelayMs),
	}
}

// SortingConfig 转换为挑战配置
func (s *QuestScript) SortingConfig() challenge.SortingConfig {
	records := make([]challenge.Record, len(s.Sorting.Records))
	for i, r := range s.Sorting.Records {
		records[i] = challenge.Record{Name: r.Name, Value: r.Value}
	}
	return challenge.SortingConfig{
		Records:    records,
		SolveDelay: delayMs(s.Sorting.SolveDelayMs),
		ResetDelay: delayMs(s.Sorting.ResetDelayMs),
	}
}

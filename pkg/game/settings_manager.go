package game

import (
	"fmt"
	"log"
	"strings"
	"unicode/utf8"

	"github.com/quasilyte/gdata/v2"
	"gopkg.in/yaml.v3"
)

// AppName gdata 存储目录名
const AppName = "algoquest"

// 设置取值范围
const (
	// MaxPlayerNameLength 玩家名字最大字符数
	MaxPlayerNameLength = 20
	// MaxTypingIntervalMs 逐字显示间隔上限
	MaxTypingIntervalMs = 200
	// InstantTyping 立即显示全文
	InstantTyping = -1
)

// QuestSettings 全局设置
// 注意：只保存玩家偏好，任务进度不会持久化
type QuestSettings struct {
	PlayerName       string `yaml:"playerName"`       // 任务中的称呼，空表示使用默认称呼
	TypingIntervalMs int    `yaml:"typingIntervalMs"` // 逐字显示间隔，0 使用脚本配置，-1 立即显示
	Fullscreen       bool   `yaml:"fullscreen"`       // 启动时是否全屏
	ShowHints        bool   `yaml:"showHints"`        // 挑战中是否显示剩余次数提示
}

// DefaultSettings 返回默认设置
func DefaultSettings() *QuestSettings {
	return &QuestSettings{
		PlayerName:       "",
		TypingIntervalMs: 0,
		Fullscreen:       false,
		ShowHints:        true,
	}
}

// SettingsManager 设置管理器
// 负责设置的加载、保存和内存管理
type SettingsManager struct {
	gdataManager *gdata.Manager // gdata 跨平台存储管理器，可为 nil（降级模式）
	settings     *QuestSettings // 当前设置
}

// 存储路径常量
const (
	settingsObject   = "settings"
	settingsProperty = "global"
)

// OpenSettingsManager 打开 gdata 存储并创建设置管理器
// gdata 初始化失败时退化为仅内存设置，不影响游戏运行
func OpenSettingsManager(appName string) *SettingsManager {
	gdataManager, err := gdata.Open(gdata.Config{AppName: appName})
	if err != nil {
		log.Printf("[SettingsManager] Warning: gdata unavailable: %v (settings will not persist)", err)
		gdataManager = nil
	}
	sm, _ := NewSettingsManager(gdataManager)
	return sm
}

// NewSettingsManager 创建新的设置管理器实例
//
// 参数：
//   - gdataManager: gdata 跨平台存储管理器，可为 nil（降级模式，仅内存设置）
//
// 返回：
//   - *SettingsManager: 设置管理器实例
//   - error: 始终为 nil，加载失败只记录日志并使用默认设置
func NewSettingsManager(gdataManager *gdata.Manager) (*SettingsManager, error) {
	sm := &SettingsManager{
		gdataManager: gdataManager,
		settings:     DefaultSettings(),
	}

	// 尝试加载已保存的设置
	if err := sm.Load(); err != nil {
		// 加载失败不是致命错误，使用默认设置
		log.Printf("[SettingsManager] Warning: Failed to load settings: %v (using defaults)", err)
	}

	return sm, nil
}

// Load 从 gdata 加载设置
//
// 如果 gdataManager 为 nil 或文件不存在，使用默认设置
//
// 返回：
//   - error: 如果读取或反序列化失败返回错误
func (sm *SettingsManager) Load() error {
	// 降级模式：无法持久化，使用默认设置
	if sm.gdataManager == nil {
		sm.settings = DefaultSettings()
		return nil
	}

	if !sm.gdataManager.ObjectPropExists(settingsObject, settingsProperty) {
		sm.settings = DefaultSettings()
		return nil
	}

	data, err := sm.gdataManager.LoadObjectProp(settingsObject, settingsProperty)
	if err != nil {
		sm.settings = DefaultSettings()
		return fmt.Errorf("failed to load settings: %w", err)
	}

	// 从默认值开始反序列化，旧文件缺少的字段保留默认值
	loaded := DefaultSettings()
	if err := yaml.Unmarshal(data, loaded); err != nil {
		sm.settings = DefaultSettings()
		return fmt.Errorf("failed to unmarshal settings: %w", err)
	}
	loaded.PlayerName = normalizePlayerName(loaded.PlayerName)
	loaded.TypingIntervalMs = clampTypingInterval(loaded.TypingIntervalMs)

	sm.settings = loaded
	log.Printf("[SettingsManager] Settings loaded successfully")
	return nil
}

// Save 保存设置到 gdata
//
// 如果 gdataManager 为 nil，返回 nil（降级模式，不报错）
func (sm *SettingsManager) Save() error {
	if sm.gdataManager == nil {
		return nil
	}

	data, err := yaml.Marshal(sm.settings)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	if err := sm.gdataManager.SaveObjectProp(settingsObject, settingsProperty, data); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	log.Printf("[SettingsManager] Settings saved successfully")
	return nil
}

// IsPersistent 设置是否能持久化
func (sm *SettingsManager) IsPersistent() bool {
	return sm.gdataManager != nil
}

// GetSettings 获取当前设置
func (sm *SettingsManager) GetSettings() *QuestSettings {
	return sm.settings
}

// SetPlayerName 设置玩家称呼
//
// 首尾空白会被去掉，超过 MaxPlayerNameLength 个字符的部分被截断
// 注意：仅修改内存中的设置，需调用 Save() 方法持久化
func (sm *SettingsManager) SetPlayerName(name string) {
	sm.settings.PlayerName = normalizePlayerName(name)
}

// SetTypingIntervalMs 设置逐字显示间隔
//
// 负数统一为 InstantTyping，超过 MaxTypingIntervalMs 被限制
// 注意：仅修改内存中的设置，需调用 Save() 方法持久化
func (sm *SettingsManager) SetTypingIntervalMs(ms int) {
	sm.settings.TypingIntervalMs = clampTypingInterval(ms)
}

// SetFullscreen 设置全屏模式
//
// 注意：仅修改内存中的设置，需调用 Save() 方法持久化
func (sm *SettingsManager) SetFullscreen(enabled bool) {
	sm.settings.Fullscreen = enabled
}

// SetShowHints 设置是否显示剩余次数提示
//
// 注意：仅修改内存中的设置，需调用 Save() 方法持久化
func (sm *SettingsManager) SetShowHints(enabled bool) {
	sm.settings.ShowHints = enabled
}

// normalizePlayerName 去掉首尾空白并按字符截断
func normalizePlayerName(name string) string {
	name = strings.TrimSpace(name)
	if utf8.RuneCountInString(name) <= MaxPlayerNameLength {
		return name
	}
	runes := []rune(name)
	return strings.TrimSpace(string(runes[:MaxPlayerNameLength]))
}

// clampTypingInterval 将间隔限制在 [InstantTyping, MaxTypingIntervalMs]
func clampTypingInterval(ms int) int {
	if ms < 0 {
		return InstantTyping
	}
	if ms > MaxTypingIntervalMs {
		return MaxTypingIntervalMs
	}
	return ms
}

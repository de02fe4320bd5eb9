package generator

// SystemInstruction 约束每条生成的帖子。
const SystemInstruction = "You write short, cryptic, mysterious single-paragraph posts " +
	"(max 280 chars). Avoid unsafe content."

// 生成帖子的采样参数。
const (
	DefaultTemperature = 0.9
	DefaultMaxTokens   = 120
)

// Prompt 表示发送给 LLM 的消息集合。
type Prompt struct {
	System      string
	User        string
	Temperature float64
	MaxTokens   int64
}

// BuildPostPrompt 用固定的系统指令包装用户提示词。
func BuildPostPrompt(user string) Prompt {
	return Prompt{
		System:      SystemInstruction,
		User:        user,
		Temperature: DefaultTemperature,
		MaxTokens:   DefaultMaxTokens,
	}
}

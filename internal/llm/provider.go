// Package llm routes analysis prompts to generative-text services with
// failover from the primary provider to a backup.
package llm

import "context"

// systemRole is the fixed system prompt for the backup chat service.
const systemRole = "你是一位资深保险反欺诈分析师，擅长从长文中抽取严格结构化信息。"

// Provider generates a text completion for an analysis prompt.
type Provider interface {
	// Analyze sends the prompt and returns the completion text. An empty
	// completion is reported as an error, never as ("", nil).
	Analyze(ctx context.Context, prompt string) (string, error)
	Name() string
}

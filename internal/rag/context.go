package rag

import (
	"strings"

	"github.com/dream-ai/bp-assistant/internal/db"
)

// DomainInstruction keeps the assistant on the manual's subject
const DomainInstruction = "You are a support assistant for a blood pressure monitor. " +
	"Answer only from the manual excerpts above and the conversation so far. " +
	"If the question is not about the blood pressure monitor or its manual, " +
	"politely refuse and say you can only help with this device."

// ContextBuilder builds context for LLM from retrieval results
type ContextBuilder struct {
	maxTokens int
	counter   TokenCounter
}

// NewContextBuilder creates a new context builder. A nil counter falls back to an estimate.
func NewContextBuilder(maxTokens int, counter TokenCounter) *ContextBuilder {
	if maxTokens <= 0 {
		maxTokens = 2000
	}
	if counter == nil {
		counter = EstimateCounter{}
	}
	return &ContextBuilder{
		maxTokens: maxTokens,
		counter:   counter,
	}
}

// BuildContext joins retrieved chunk texts in rank order. Chunks that would
// push the block past the token budget are dropped; the first chunk is always kept.
func (cb *ContextBuilder) BuildContext(records []*db.ScoredRecord) string {
	var parts []string
	used := 0
	for _, r := range records {
		if r == nil || strings.TrimSpace(r.Text) == "" {
			continue
		}
		tokens := cb.counter.CountTokens(r.Text)
		if len(parts) > 0 && used+tokens > cb.maxTokens {
			break
		}
		parts = append(parts, r.Text)
		used += tokens
	}
	return strings.Join(parts, "\n\n")
}

// BuildPrompt wraps the question with the retrieved context and the domain instruction
func (cb *ContextBuilder) BuildPrompt(context, question string) string {
	var b strings.Builder

	b.WriteString("Manual excerpts:\n")
	if context == "" {
		b.WriteString("(no relevant excerpts found)\n")
	} else {
		b.WriteString(context)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(DomainInstruction)
	b.WriteString("\n\nQuestion: ")
	b.WriteString(question)

	return b.String()
}

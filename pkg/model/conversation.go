package model

import (
	"context"
	"strings"
	"sync"
)

type PromptContext struct {
	MessageType ContextMessageType
	Content     string
}

// Message is one provider-neutral chat turn.
type Message struct {
	Role    string
	Content string
}

// Conversation holds the context messages that precede a generator's prompt.
// Generators embed it to satisfy ContentGenerator.AddPromptContext.
type Conversation struct {
	mu       sync.RWMutex
	contexts []PromptContext
}

// AddPromptContext appends a context message. Blank content is dropped.
func (c *Conversation) AddPromptContext(_ context.Context, messageType ContextMessageType, content string) {
	content = strings.TrimSpace(content)
	if content == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.contexts = append(c.contexts, PromptContext{MessageType: messageType, Content: content})
}

// Contexts returns a copy of the context messages in insertion order.
func (c *Conversation) Contexts() []PromptContext {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]PromptContext(nil), c.contexts...)
}

// Messages returns the context messages followed by prompt as the final user turn.
func (c *Conversation) Messages(prompt string) []Message {
	contexts := c.Contexts()
	messages := make([]Message, 0, len(contexts)+1)
	for _, item := range contexts {
		messages = append(messages, Message{Role: item.MessageType.Role(), Content: item.Content})
	}
	return append(messages, Message{Role: "user", Content: prompt})
}

// SplitSystem separates system instructions from the conversational turns,
// for APIs that carry the system prompt out of band.
func (c *Conversation) SplitSystem(prompt string) (system []string, turns []Message) {
	for _, message := range c.Messages(prompt) {
		if message.Role == "system" {
			system = append(system, message.Content)
			continue
		}
		turns = append(turns, message)
	}
	return system, turns
}

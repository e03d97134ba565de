package core

import (
	"context"
	"fmt"
	"strings"

	"videoprompt/core/videoprompt"
)

type CommandContext struct {
	Ctx       context.Context
	Msg       IncomingMessage
	Responder Responder
	Bot       *Bot
	Args      []string
}

type CommandHandler func(ctx CommandContext) error

type CommandRegistry struct {
	commands map[string]CommandHandler
}

func NewCommandRegistry() *CommandRegistry {
	return &CommandRegistry{
		commands: make(map[string]CommandHandler),
	}
}

func (r *CommandRegistry) Register(name string, handler CommandHandler) {
	r.commands[strings.ToLower(name)] = handler
}

// Execute runs the named command and reports whether it exists. Handler
// errors are sent back to the chat.
func (r *CommandRegistry) Execute(name string, ctx CommandContext) bool {
	handler, exists := r.commands[strings.ToLower(name)]
	if !exists {
		return false
	}
	if err := handler(ctx); err != nil {
		_ = ctx.Responder.SendText(ctx.Msg.ChatID, fmt.Sprintf("⚠️ Error executing command: %v", err))
	}
	return true
}

func RegisterDefaultCommands(b *Bot) {
	b.Commands.Register("help", func(ctx CommandContext) error {
		helpText := "Send a screen recording of a browser session and I will reply with a task prompt " +
			"an automation agent can follow.\n" +
			"Commands: `help`, `model`, `formats`."
		return ctx.Responder.SendText(ctx.Msg.ChatID, helpText)
	})

	b.Commands.Register("model", func(ctx CommandContext) error {
		text := fmt.Sprintf("Model: `%s` (temperature %.2f, top-p %.2f, top-k %.0f, max output tokens %d)",
			ctx.Bot.Generator.Model(),
			videoprompt.Temperature, videoprompt.TopP, videoprompt.TopK, videoprompt.MaxOutputTokens)
		return ctx.Responder.SendText(ctx.Msg.ChatID, text)
	})

	b.Commands.Register("formats", func(ctx CommandContext) error {
		text := "Supported formats: " + strings.Join(videoprompt.SupportedExtensions, ", ")
		return ctx.Responder.SendText(ctx.Msg.ChatID, text)
	})
}

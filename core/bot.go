package core

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"videoprompt/core/videoprompt"
	"videoprompt/log"
)

type BotConfig struct {
	Name string `toml:"name"`
	// SpoolDir holds downloaded videos while they are analysed. Empty means os.TempDir().
	SpoolDir string `toml:"spool_dir"`
}

// PromptGenerator is implemented by *videoprompt.Generator.
type PromptGenerator interface {
	Generate(ctx context.Context, videoPath string) videoprompt.Result
	Model() string
}

type Bot struct {
	Generator PromptGenerator
	Config    *BotConfig
	Commands  *CommandRegistry
}

func NewBot(generator PromptGenerator, cfg *BotConfig) *Bot {
	b := &Bot{
		Generator: generator,
		Config:    cfg,
		Commands:  NewCommandRegistry(),
	}
	RegisterDefaultCommands(b)
	return b
}

func (b *Bot) prefix() string {
	return "!" + strings.ToLower(b.Config.Name)
}

// HandleMessage answers a video with its task prompt and routes
// "!<name> <command>" messages to the command registry. Everything else is ignored.
func (b *Bot) HandleMessage(ctx context.Context, msg IncomingMessage, responder Responder) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("PANIC in HandleMessage: %v", r)
		}
	}()

	if msg.IsVideo {
		b.processVideo(ctx, &msg, responder)
		return
	}

	if !strings.HasPrefix(strings.ToLower(msg.Content), b.prefix()) {
		return
	}

	parts := strings.Fields(msg.Content)
	if len(parts) < 2 {
		_ = responder.SendText(msg.ChatID, fmt.Sprintf("Send me a screen recording of a browser session, or try `%s help`.", b.prefix()))
		return
	}

	cmdCtx := CommandContext{
		Ctx:       ctx,
		Msg:       msg,
		Responder: responder,
		Bot:       b,
		Args:      parts[2:],
	}
	if !b.Commands.Execute(parts[1], cmdCtx) {
		_ = responder.SendText(msg.ChatID, fmt.Sprintf("Unknown command `%s`. Try `%s help`.", parts[1], b.prefix()))
	}
}

func (b *Bot) processVideo(ctx context.Context, msg *IncomingMessage, responder Responder) {
	if msg.MessageID != "" {
		_ = responder.SendReaction(msg.ChatID, msg.MessageID, "👀")
	}

	path, err := b.spool(msg)
	if err != nil {
		log.Errorf("failed to spool video from %s: %v", msg.UserID, err)
		b.reply(msg, responder, "Error: could not store the video for analysis.")
		return
	}
	defer func() {
		if err := os.Remove(path); err != nil {
			log.Warnf("failed to remove spooled video %s: %v", path, err)
		}
	}()

	log.Infof("analysing %d byte video from %s on %s", len(msg.VideoData), msg.UserID, msg.Platform)
	res := b.Generator.Generate(ctx, path)
	b.reply(msg, responder, res.String())
}

// spool writes the video to a temp file whose extension the generator can
// check. Unknown formats keep their own extension so the generator rejects them.
func (b *Bot) spool(msg *IncomingMessage) (string, error) {
	ext := videoprompt.ExtensionFor(msg.VideoName, msg.VideoMimeType)
	if ext == "" {
		ext = strings.ToLower(filepath.Ext(msg.VideoName))
	}
	if ext == "" {
		ext = ".bin"
	}

	f, err := os.CreateTemp(b.Config.SpoolDir, "session-*"+ext)
	if err != nil {
		return "", fmt.Errorf("create spool file: %w", err)
	}
	if _, err := f.Write(msg.VideoData); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("write spool file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("close spool file: %w", err)
	}
	return f.Name(), nil
}

func (b *Bot) reply(msg *IncomingMessage, responder Responder, text string) {
	var err error
	if msg.MessageID != "" {
		err = responder.ReplyText(msg.ChatID, msg.MessageID, text)
	} else {
		err = responder.SendText(msg.ChatID, text)
	}
	if err != nil {
		log.Errorf("failed to send reply to %s: %v", msg.ChatID, err)
	}
}

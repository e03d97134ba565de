package discord

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/bwmarrin/discordgo"

	"videoprompt/core"
	"videoprompt/core/videoprompt"
	"videoprompt/log"
)

const maxMessageLength = 2000

type Config struct {
	Enabled bool   `toml:"enabled"`
	Token   string `toml:"token"`
}

type DiscordAdapter struct {
	Session *discordgo.Session
	Core    *core.Bot
	BotID   string

	ctx context.Context
}

var _ core.Responder = (*DiscordAdapter)(nil)

func NewDiscordAdapter(token string, coreBot *core.Bot) (*DiscordAdapter, error) {
	dg, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, err
	}
	dg.Identify.Intents = discordgo.IntentsGuildMessages | discordgo.IntentsDirectMessages | discordgo.IntentMessageContent

	return &DiscordAdapter{
		Session: dg,
		Core:    coreBot,
		ctx:     context.Background(),
	}, nil
}

// Start opens the gateway connection. Messages are handled until Close.
func (da *DiscordAdapter) Start(ctx context.Context) error {
	da.ctx = ctx
	da.Session.AddHandler(da.handleMessage)

	if err := da.Session.Open(); err != nil {
		return fmt.Errorf("error opening discord connection: %w", err)
	}

	u, err := da.Session.User("@me")
	if err != nil {
		return fmt.Errorf("error fetching self user: %w", err)
	}
	da.BotID = u.ID

	log.Infof("Discord adapter started. Logged in as %s", u.Username)
	return nil
}

func (da *DiscordAdapter) Close() {
	if err := da.Session.Close(); err != nil {
		log.Warnf("failed to close discord session: %v", err)
	}
}

// videoAttachment returns the first attachment the generator can take.
func videoAttachment(attachments []*discordgo.MessageAttachment) *discordgo.MessageAttachment {
	for _, att := range attachments {
		if videoprompt.ExtensionFor(att.Filename, att.ContentType) != "" {
			return att
		}
	}
	return nil
}

// stripMention turns "<@id> help" into "<name> help" so the core sees its
// usual command prefix.
func stripMention(content, botID, botName string) string {
	mention, nickMention := "<@"+botID+">", "<@!"+botID+">"
	if !strings.Contains(content, mention) && !strings.Contains(content, nickMention) {
		return content
	}
	content = strings.ReplaceAll(content, mention, "")
	content = strings.ReplaceAll(content, nickMention, "")
	return "!" + strings.ToLower(botName) + " " + strings.TrimSpace(content)
}

func (da *DiscordAdapter) handleMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.ID == da.BotID {
		return
	}

	incomingMsg := core.IncomingMessage{
		Platform:  "discord",
		UserID:    m.Author.ID,
		UserName:  m.Author.Username,
		ChatID:    m.ChannelID,
		MessageID: m.ID,
		Content:   stripMention(m.Content, da.BotID, da.Core.Config.Name),
	}

	if att := videoAttachment(m.Attachments); att != nil {
		data, err := da.downloadAttachment(att.URL)
		if err != nil {
			log.Errorf("Failed to download discord attachment: %v", err)
		} else {
			incomingMsg.IsVideo = true
			incomingMsg.VideoData = data
			incomingMsg.VideoName = att.Filename
			incomingMsg.VideoMimeType = att.ContentType
		}
	}

	go da.Core.HandleMessage(da.ctx, incomingMsg, da)
}

func (da *DiscordAdapter) downloadAttachment(url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(da.ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := da.Session.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("attachment download failed with status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func truncate(text string) string {
	if len(text) > maxMessageLength {
		return text[:maxMessageLength-10] + "..."
	}
	return text
}

func (da *DiscordAdapter) SendText(chatID string, text string) error {
	_, err := da.Session.ChannelMessageSend(chatID, truncate(text))
	return err
}

func (da *DiscordAdapter) ReplyText(chatID string, originalMsgID string, text string) error {
	ref := &discordgo.MessageReference{
		MessageID: originalMsgID,
		ChannelID: chatID,
	}

	_, err := da.Session.ChannelMessageSendComplex(chatID, &discordgo.MessageSend{
		Content:   truncate(text),
		Reference: ref,
	})
	return err
}

func (da *DiscordAdapter) SendReaction(chatID string, messageID string, emoji string) error {
	return da.Session.MessageReactionAdd(chatID, messageID, emoji)
}

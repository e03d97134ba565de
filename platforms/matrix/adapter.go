package matrix

import (
	"context"
	"errors"
	"strings"
	"time"

	"maunium.net/go/mautrix"
	"maunium.net/go/mautrix/event"
	"maunium.net/go/mautrix/id"

	"videoprompt/core"
	"videoprompt/log"
)

// maxEventAge drops backlog delivered by the first sync after a restart.
const maxEventAge = 2 * time.Minute

type MatrixAdapter struct {
	Client   *mautrix.Client
	Core     *core.Bot
	AutoJoin bool
}

var _ core.Responder = (*MatrixAdapter)(nil)

func NewMatrixAdapter(client *mautrix.Client, coreBot *core.Bot, autoJoin bool) *MatrixAdapter {
	return &MatrixAdapter{
		Client:   client,
		Core:     coreBot,
		AutoJoin: autoJoin,
	}
}

// Start syncs until ctx is done.
func (ma *MatrixAdapter) Start(ctx context.Context) error {
	syncer, ok := ma.Client.Syncer.(*mautrix.DefaultSyncer)
	if !ok {
		return errors.New("matrix client does not use the default syncer")
	}

	syncer.OnEventType(event.EventMessage, ma.handleEvent)
	syncer.OnEventType(event.StateMember, ma.handleInvite)

	log.Info("Starting Matrix adapter...")
	err := ma.Client.SyncWithContext(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (ma *MatrixAdapter) handleInvite(ctx context.Context, evt *event.Event) {
	if !ma.AutoJoin {
		return
	}

	state := evt.Content.AsMember()
	isForMe := evt.GetStateKey() == ma.Client.UserID.String()
	if state.Membership != event.MembershipInvite || !isForMe {
		return
	}

	log.Infof("Received invite from %s for room %s. Joining...", evt.Sender, evt.RoomID)
	if _, err := ma.Client.JoinRoom(ctx, evt.RoomID.String(), nil); err != nil {
		log.Errorf("Failed to join room %s: %v", evt.RoomID, err)
		return
	}
	log.Infof("Joined room %s", evt.RoomID)
	_ = ma.SendText(evt.RoomID.String(), "Hello! Send me a screen recording of a browser session and I will write the task prompt for it.")
}

func (ma *MatrixAdapter) SendText(chatID string, text string) error {
	_, err := ma.Client.SendMessageEvent(context.Background(), id.RoomID(chatID), event.EventMessage, &event.MessageEventContent{
		MsgType: event.MsgText,
		Body:    text,
	})
	return err
}

func (ma *MatrixAdapter) ReplyText(chatID string, originalMsgID string, text string) error {
	_, err := ma.Client.SendMessageEvent(context.Background(), id.RoomID(chatID), event.EventMessage, &event.MessageEventContent{
		MsgType: event.MsgText,
		Body:    text,
		RelatesTo: &event.RelatesTo{
			InReplyTo: &event.InReplyTo{
				EventID: id.EventID(originalMsgID),
			},
		},
	})
	return err
}

func (ma *MatrixAdapter) SendReaction(chatID string, messageID string, emoji string) error {
	_, err := ma.Client.SendMessageEvent(context.Background(), id.RoomID(chatID), event.EventReaction, &event.ReactionEventContent{
		RelatesTo: event.RelatesTo{
			Type:    event.RelAnnotation,
			EventID: id.EventID(messageID),
			Key:     emoji,
		},
	})
	return err
}

// downloadVideo fetches an attachment, decrypting it when it came from an
// encrypted room.
func (ma *MatrixAdapter) downloadVideo(ctx context.Context, content *event.MessageEventContent) ([]byte, string, error) {
	var mimeType string
	if info := content.GetInfo(); info != nil {
		mimeType = info.MimeType
	}

	if content.File != nil {
		uri, err := content.File.URL.Parse()
		if err != nil {
			return nil, mimeType, err
		}
		ciphertext, err := ma.Client.DownloadBytes(ctx, uri)
		if err != nil {
			return nil, mimeType, err
		}
		if err := content.File.DecryptInPlace(ciphertext); err != nil {
			return nil, mimeType, err
		}
		return ciphertext, mimeType, nil
	}

	if content.URL == "" {
		return nil, mimeType, errors.New("video event has no URL")
	}
	uri, err := content.URL.Parse()
	if err != nil {
		return nil, mimeType, err
	}
	data, err := ma.Client.DownloadBytes(ctx, uri)
	return data, mimeType, err
}

func videoName(content *event.MessageEventContent) string {
	if content.FileName != "" {
		return content.FileName
	}
	return content.Body
}

func (ma *MatrixAdapter) attachVideo(ctx context.Context, msg *core.IncomingMessage, content *event.MessageEventContent) {
	data, mime, err := ma.downloadVideo(ctx, content)
	if err != nil {
		log.Errorf("Failed to download video: %v", err)
		return
	}
	msg.IsVideo = true
	msg.VideoData = data
	msg.VideoName = videoName(content)
	msg.VideoMimeType = mime
}

// repliedVideo returns the video a message replies to, if any.
func (ma *MatrixAdapter) repliedVideo(ctx context.Context, roomID id.RoomID, replyID id.EventID) *event.MessageEventContent {
	replyEvt, err := ma.Client.GetEvent(ctx, roomID, replyID)
	if err != nil {
		log.Errorf("Failed to fetch reply event: %v", err)
		return nil
	}
	replyEvt.RoomID = roomID
	_ = replyEvt.Content.ParseRaw(replyEvt.Type)

	if replyEvt.Type == event.EventEncrypted && ma.Client.Crypto != nil {
		decrypted, err := ma.Client.Crypto.Decrypt(ctx, replyEvt)
		if err != nil {
			log.Errorf("Failed to decrypt replied event: %v", err)
			return nil
		}
		replyEvt = decrypted
		_ = replyEvt.Content.ParseRaw(replyEvt.Type)
	}

	content, ok := replyEvt.Content.Parsed.(*event.MessageEventContent)
	if !ok || content.MsgType != event.MsgVideo {
		return nil
	}
	return content
}

func (ma *MatrixAdapter) handleEvent(ctx context.Context, evt *event.Event) {
	if evt.Sender == ma.Client.UserID || time.Since(time.UnixMilli(evt.Timestamp)) > maxEventAge {
		return
	}

	msgContent, ok := evt.Content.Parsed.(*event.MessageEventContent)
	if !ok {
		return
	}

	incomingMsg := core.IncomingMessage{
		Platform:  "matrix",
		UserID:    string(evt.Sender),
		UserName:  string(evt.Sender),
		ChatID:    string(evt.RoomID),
		MessageID: string(evt.ID),
		Content:   msgContent.Body,
	}

	if msgContent.MsgType == event.MsgVideo {
		ma.attachVideo(ctx, &incomingMsg, msgContent)
	} else if ma.mentionsBot(msgContent.Body) && msgContent.RelatesTo != nil && msgContent.RelatesTo.InReplyTo != nil {
		if video := ma.repliedVideo(ctx, evt.RoomID, msgContent.RelatesTo.InReplyTo.EventID); video != nil {
			log.Info("Found video in reply history. Downloading...")
			ma.attachVideo(ctx, &incomingMsg, video)
		}
	}

	go ma.Core.HandleMessage(context.WithoutCancel(ctx), incomingMsg, ma)
}

func (ma *MatrixAdapter) mentionsBot(body string) bool {
	name := strings.ToLower(ma.Core.Config.Name)
	return name != "" && strings.Contains(strings.ToLower(body), name)
}

package handoff

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/MikeSquared-Agency/usher/internal/hermes"
	"github.com/MikeSquared-Agency/usher/internal/oracle"
	"github.com/MikeSquared-Agency/usher/internal/session"
	"github.com/MikeSquared-Agency/usher/internal/transcript"
)

const (
	// Sent when the oracle fails outright. A transport error is not a
	// reason to page a human; ownership stays with the bot.
	apologyReply = "Sorry, something went wrong. Please try again later."

	// Fixed wording announced to the visitor before a transfer.
	handoffPreamble = "Let me connect you with one of our support operators. One moment please."

	senderRoleUser = "user"
	contentText    = "text"
)

// Gateway is the outbound platform surface the controller drives. Calls are
// fire-and-forget: failures are logged, never propagated to the webhook.
type Gateway interface {
	SendMessage(ctx context.Context, conversationID, text string) error
	SetTyping(ctx context.Context, conversationID string, typing bool) error
	Transfer(ctx context.Context, conversationID, operatorID string) error
}

// Transcripts records conversation lines and complaints for diagnostics.
type Transcripts interface {
	SaveMessage(ctx context.Context, conversationID string, sender transcript.Sender, text string) error
	SaveComplaint(ctx context.Context, conversationID, text string) error
}

// Announcer publishes handoff events to the swarm.
type Announcer interface {
	Publish(subject string, data any) error
}

// Options carries the deployment identities and tuning knobs.
type Options struct {
	BotOperatorID   string
	HumanOperatorID string
	OracleTimeout   time.Duration
	Workers         int
	QueueSize       int
}

// Controller decides, per webhook event, whether the bot or a human owns
// the conversation and drives replies and transfers accordingly. Handle
// returns immediately; all downstream work runs on the worker pool, with
// state mutations serialized per conversation id.
type Controller struct {
	sessions    session.Store
	oracle      oracle.Responder
	gateway     Gateway
	transcripts Transcripts // optional
	announcer   Announcer   // optional
	logger      *slog.Logger

	locks *keyMutex
	pool  *pool
	opts  Options
}

func New(sessions session.Store, resp oracle.Responder, gw Gateway, transcripts Transcripts, announcer Announcer, opts Options, logger *slog.Logger) *Controller {
	if opts.OracleTimeout <= 0 {
		opts.OracleTimeout = 30 * time.Second
	}
	if opts.Workers <= 0 {
		opts.Workers = 8
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = 256
	}
	return &Controller{
		sessions:    sessions,
		oracle:      resp,
		gateway:     gw,
		transcripts: transcripts,
		announcer:   announcer,
		logger:      logger,
		locks:       newKeyMutex(),
		pool:        newPool(opts.Workers, opts.QueueSize, logger),
		opts:        opts,
	}
}

// Handle accepts one webhook delivery and returns without waiting for any
// downstream work. A nil event (unrecognized webhook) is a no-op.
func (c *Controller) Handle(ev Event) {
	if ev == nil {
		return
	}
	c.pool.submit(func() {
		ctx := context.Background()
		switch e := ev.(type) {
		case NewMessage:
			c.processMessage(ctx, e)
		case ChatClosed:
			c.processClosed(ctx, e)
		}
	})
}

// Stop drains in-flight work. Call on shutdown.
func (c *Controller) Stop() {
	c.pool.stop()
}

func (c *Controller) processMessage(ctx context.Context, ev NewMessage) {
	if ev.ContentType != contentText || strings.TrimSpace(ev.Content) == "" {
		return
	}
	if ev.SenderRole != senderRoleUser {
		// Operator messages only matter for the transcript.
		c.record(ctx, ev.ChatID, transcript.SenderOperator, ev.Content)
		return
	}

	unlock := c.locks.Lock(ev.ChatID)
	sess, err := c.loadSession(ctx, ev.ChatID)
	if err != nil {
		unlock()
		// Fail closed: without trustworthy state the bot must not guess,
		// or it risks talking over a human operator.
		c.logger.Error("session load failed, refusing to act", "conversation_id", ev.ChatID, "error", err)
		return
	}

	// The platform's own assignment is authoritative: if an operator picked
	// the chat up out-of-band, the bot goes quiet immediately.
	if c.hintIsHuman(ev.OwnerHint) {
		if sess.Owner != session.OwnerHuman {
			sess.Owner = session.OwnerHuman
			// PendingTransfer stays untouched: it marks transfers this
			// controller initiated, and this reassignment came from outside.
			sess.Touch()
			if err := c.sessions.Put(ctx, sess); err != nil {
				c.logger.Error("session write failed", "conversation_id", ev.ChatID, "error", err)
			}
			c.logger.Info("owner hint says human, silencing bot", "conversation_id", ev.ChatID)
		}
		unlock()
		return
	}

	if sess.Owner == session.OwnerHuman {
		unlock()
		c.record(ctx, ev.ChatID, transcript.SenderVisitor, ev.Content)
		return
	}
	// Ownership decided; the slow oracle call runs without the lock.
	unlock()

	c.record(ctx, ev.ChatID, transcript.SenderVisitor, ev.Content)
	c.reply(ctx, ev)
}

func (c *Controller) reply(ctx context.Context, ev NewMessage) {
	if err := c.gateway.SetTyping(ctx, ev.ChatID, true); err != nil {
		c.logger.Warn("set typing failed", "conversation_id", ev.ChatID, "error", err)
	}

	octx, cancel := context.WithTimeout(ctx, c.opts.OracleTimeout)
	res, err := c.oracle.Respond(octx, ev.Content)
	cancel()

	if terr := c.gateway.SetTyping(ctx, ev.ChatID, false); terr != nil {
		c.logger.Warn("set typing failed", "conversation_id", ev.ChatID, "error", terr)
	}

	if err != nil {
		c.logger.Error("oracle failed", "conversation_id", ev.ChatID, "error", err)
		c.send(ctx, ev.ChatID, apologyReply)
		return
	}

	if res.Intent == oracle.IntentComplaint && c.transcripts != nil {
		if err := c.transcripts.SaveComplaint(ctx, ev.ChatID, ev.Content); err != nil {
			c.logger.Warn("complaint record failed", "conversation_id", ev.ChatID, "error", err)
		}
	}

	if res.Defer {
		c.escalate(ctx, ev.ChatID, res.Intent)
		return
	}

	c.send(ctx, ev.ChatID, res.Reply)
	c.record(ctx, ev.ChatID, transcript.SenderBot, res.Reply)
}

// escalate flips ownership to human and issues the transfer. The store
// write commits under the conversation lock before any outbound call, so a
// concurrent duplicate delivery sees human ownership and backs off; at most
// one delivery performs the transfer.
func (c *Controller) escalate(ctx context.Context, chatID string, intent oracle.Intent) {
	unlock := c.locks.Lock(chatID)
	sess, err := c.loadSession(ctx, chatID)
	if err != nil {
		unlock()
		c.logger.Error("session load failed, refusing to escalate", "conversation_id", chatID, "error", err)
		return
	}
	if sess.Owner == session.OwnerHuman {
		unlock()
		return // another delivery already escalated
	}
	sess.Owner = session.OwnerHuman
	sess.PendingTransfer = true
	sess.Touch()
	if err := c.sessions.Put(ctx, sess); err != nil {
		unlock()
		// An unpersisted ownership flip could race the next delivery, so
		// no transfer without the committed write.
		c.logger.Error("session write failed, skipping transfer", "conversation_id", chatID, "error", err)
		return
	}
	unlock()

	c.send(ctx, chatID, handoffPreamble)
	if err := c.gateway.Transfer(ctx, chatID, c.opts.HumanOperatorID); err != nil {
		c.logger.Error("transfer failed", "conversation_id", chatID, "error", err)
	}
	c.announce(hermes.SubjectEscalated, chatID, c.opts.HumanOperatorID, intent)
	c.logger.Info("conversation escalated", "conversation_id", chatID, "intent", string(intent))
}

func (c *Controller) processClosed(ctx context.Context, ev ChatClosed) {
	unlock := c.locks.Lock(ev.ChatID)
	sess, err := c.loadSession(ctx, ev.ChatID)
	if err != nil {
		unlock()
		c.logger.Error("session load failed, refusing to act", "conversation_id", ev.ChatID, "error", err)
		return
	}
	if sess.Owner != session.OwnerHuman {
		unlock()
		return
	}

	wasPending := sess.PendingTransfer
	sess.Owner = session.OwnerBot
	sess.PendingTransfer = false
	sess.Touch()
	if err := c.sessions.Put(ctx, sess); err != nil {
		unlock()
		c.logger.Error("session write failed", "conversation_id", ev.ChatID, "error", err)
		return
	}
	unlock()

	// Only undo transfers this controller made; a chat a human claimed on
	// their own closes without a reverse transfer.
	if wasPending {
		if err := c.gateway.Transfer(ctx, ev.ChatID, c.opts.BotOperatorID); err != nil {
			c.logger.Error("reverse transfer failed", "conversation_id", ev.ChatID, "error", err)
		}
		c.announce(hermes.SubjectReturned, ev.ChatID, c.opts.BotOperatorID, "")
	}
	c.logger.Info("conversation returned to bot", "conversation_id", ev.ChatID, "was_pending", wasPending)
}

func (c *Controller) loadSession(ctx context.Context, chatID string) (*session.Session, error) {
	sess, err := c.sessions.Get(ctx, chatID)
	if err == nil {
		return sess, nil
	}
	if errors.Is(err, session.ErrNotFound) {
		return session.New(chatID), nil
	}
	return nil, err
}

func (c *Controller) hintIsHuman(hint string) bool {
	return hint != "" && hint != c.opts.BotOperatorID
}

func (c *Controller) send(ctx context.Context, chatID, text string) {
	if text == "" {
		return
	}
	if err := c.gateway.SendMessage(ctx, chatID, text); err != nil {
		c.logger.Error("send message failed", "conversation_id", chatID, "error", err)
	}
}

func (c *Controller) record(ctx context.Context, chatID string, sender transcript.Sender, text string) {
	if c.transcripts == nil {
		return
	}
	if err := c.transcripts.SaveMessage(ctx, chatID, sender, text); err != nil {
		c.logger.Warn("transcript write failed", "conversation_id", chatID, "error", err)
	}
}

func (c *Controller) announce(subject, chatID, operatorID string, intent oracle.Intent) {
	if c.announcer == nil {
		return
	}
	evt := hermes.HandoffEvent{
		ConversationID: chatID,
		OperatorID:     operatorID,
		Intent:         string(intent),
		Timestamp:      time.Now().UTC(),
	}
	if err := c.announcer.Publish(subject, evt); err != nil {
		c.logger.Warn("announce failed", "subject", subject, "error", err)
	}
}

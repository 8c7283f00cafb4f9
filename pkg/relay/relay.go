package relay

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mahaj/room-relay/pkg/model"
	"github.com/mahaj/room-relay/pkg/presence"
	"github.com/mahaj/room-relay/pkg/store"
)

const (
	// historyLimit is how many messages a joining session receives.
	historyLimit = 50

	// maxDraftLen caps typing_update draft payloads.
	maxDraftLen = 5000
)

// EventMirror receives a copy of every broadcast frame (see pkg/stream).
type EventMirror interface {
	Publish(ctx context.Context, roomID string, frame []byte) error
}

// Relay is the central coordinator. It validates inbound client intents,
// drives the room registry, typing coordinator and history store, and fans
// events out to affected sessions. Intents for one connection arrive from
// that connection's read goroutine; everything shared is locked per room, so
// one session's pending store call never stalls another room.
//
// Invalid intents (blank ids, oversize drafts, intents before join) are
// dropped without emission. A store failure suppresses the intent's side
// effects and leaves the connection alive.
type Relay struct {
	registry *Registry
	typing   *TypingCoordinator
	store    store.HistoryStore
	presence presence.Tracker
	mirror   EventMirror
	log      *zap.Logger

	handlers map[string]func(ctx context.Context, sess *Session, data json.RawMessage)
}

// Options configures a Relay. Store is required; Presence and Mirror may be
// nil to disable those integrations; TypingIdle defaults to DefaultTypingIdle.
type Options struct {
	Store      store.HistoryStore
	Presence   presence.Tracker
	Mirror     EventMirror
	TypingIdle time.Duration
	Logger     *zap.Logger
}

func New(opts Options) *Relay {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	r := &Relay{
		registry: NewRegistry(),
		store:    opts.Store,
		presence: opts.Presence,
		mirror:   opts.Mirror,
		log:      opts.Logger,
	}
	r.typing = NewTypingCoordinator(opts.TypingIdle, r.typingExpired)
	r.handlers = map[string]func(context.Context, *Session, json.RawMessage){
		model.EventJoin:         r.handleJoin,
		model.EventSendMessage:  r.handleSendMessage,
		model.EventTypingUpdate: r.handleTypingUpdate,
		model.EventTypingStatus: r.handleTypingStatus,
		model.EventMessageRead:  r.handleMessageRead,
	}
	return r
}

// Registry exposes the room registry (the API service and tests read it).
func (r *Relay) Registry() *Registry {
	return r.registry
}

// Dispatch decodes one inbound frame and routes it by event name. Unknown
// events and malformed payloads are dropped; a panic in a handler is
// contained to this intent.
func (r *Relay) Dispatch(ctx context.Context, sess *Session, frame []byte) {
	var env model.Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		r.log.Debug("dropping malformed frame", zap.String("session", sess.Handle()), zap.Error(err))
		return
	}
	h, ok := r.handlers[env.Event]
	if !ok {
		return
	}

	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error("intent handler panicked",
				zap.String("event", env.Event),
				zap.String("session", sess.Handle()),
				zap.Any("panic", rec))
		}
	}()
	h(ctx, sess, env.Data)
}

func (r *Relay) handleJoin(ctx context.Context, sess *Session, data json.RawMessage) {
	var p model.JoinPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return
	}
	r.Join(ctx, sess, p.RoomID, p.UserID)
}

func (r *Relay) handleSendMessage(ctx context.Context, sess *Session, data json.RawMessage) {
	var p model.SendMessagePayload
	if err := json.Unmarshal(data, &p); err != nil {
		return
	}
	r.Send(ctx, sess, p.Message)
}

func (r *Relay) handleTypingUpdate(ctx context.Context, sess *Session, data json.RawMessage) {
	var p model.TypingUpdatePayload
	if err := json.Unmarshal(data, &p); err != nil {
		return
	}
	r.TypingUpdate(ctx, sess, p.Draft)
}

func (r *Relay) handleTypingStatus(ctx context.Context, sess *Session, data json.RawMessage) {
	var p model.TypingStatusPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return
	}
	r.TypingStatus(ctx, sess, p.Status)
}

func (r *Relay) handleMessageRead(ctx context.Context, sess *Session, data json.RawMessage) {
	var p model.MessageReadPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return
	}
	r.MarkRead(ctx, sess, p.MessageID)
}

// Join adds the session to a room and replies with recent history, oldest
// first. Blank ids are dropped. A store failure degrades to an empty history;
// the join itself still succeeds. Only the joining session receives anything.
func (r *Relay) Join(ctx context.Context, sess *Session, roomID, userID string) {
	roomID = strings.TrimSpace(roomID)
	userID = strings.TrimSpace(userID)
	if roomID == "" || userID == "" {
		return
	}

	if prev := sess.RoomID(); prev != "" && prev != roomID {
		r.typing.Clear(prev, sess.UserID())
		r.untrack(ctx, prev, sess.UserID())
	}
	r.registry.Join(sess, roomID, userID)
	sess.bind(userID, roomID)
	r.track(ctx, roomID, sess.UserID())

	history, err := r.store.FetchRecent(ctx, roomID, historyLimit)
	if err != nil {
		r.log.Error("history fetch failed, joining with empty history",
			zap.String("room", roomID), zap.Error(err))
		history = nil
	}
	if history == nil {
		history = []model.Message{}
	}
	sess.out.Send(model.EventHistory, history)
}

// Send persists the text and broadcasts the stored message to the whole
// room, sender included, so the sender's UI reconciles its optimistic state
// with the authoritative id and timestamp. Blank text and unjoined sessions
// are dropped. If Append fails nothing is broadcast.
func (r *Relay) Send(ctx context.Context, sess *Session, text string) {
	roomID := sess.RoomID()
	if roomID == "" || strings.TrimSpace(text) == "" {
		return
	}

	// Append and broadcast under the room's send lock: two sends that persist
	// in order O1, O2 reach every member in that order. Other rooms proceed
	// unhindered while this room's store call is in flight.
	mu := r.registry.sendLock(roomID)
	if mu == nil {
		return
	}
	mu.Lock()
	defer mu.Unlock()

	msg, err := r.store.Append(ctx, roomID, sess.UserID(), text)
	if err != nil {
		r.log.Error("append failed, dropping message",
			zap.String("room", roomID), zap.String("from", sess.UserID()), zap.Error(err))
		return
	}
	r.broadcast(ctx, roomID, model.EventNewMessage, msg, nil)
}

// TypingUpdate forwards the sender's current draft to everyone else in the
// room. Oversize drafts and unjoined sessions are dropped.
func (r *Relay) TypingUpdate(ctx context.Context, sess *Session, draft string) {
	roomID := sess.RoomID()
	if roomID == "" || len(draft) > maxDraftLen {
		return
	}

	r.typing.SetDraft(roomID, sess.UserID(), draft)
	r.broadcast(ctx, roomID, model.EventRemoteTypingUpdate, model.RemoteTypingUpdate{
		From:  sess.UserID(),
		Draft: draft,
		TS:    time.Now().UnixMilli(),
	}, sess)
}

// TypingStatus forwards a typing/stopped indicator to everyone else in the
// room and arms the idle decay for "typing".
func (r *Relay) TypingStatus(ctx context.Context, sess *Session, status string) {
	roomID := sess.RoomID()
	if roomID == "" || (status != model.StatusTyping && status != model.StatusStopped) {
		return
	}

	r.typing.SetStatus(sess, roomID, sess.UserID(), status)
	r.broadcast(ctx, roomID, model.EventRemoteTypingStatus, model.RemoteTypingStatus{
		From:   sess.UserID(),
		Status: status,
	}, sess)
}

// MarkRead persists the read flag and notifies everyone but the reader, so
// the original author's ticks update. If persistence fails no ack goes out;
// durable and live state never diverge.
func (r *Relay) MarkRead(ctx context.Context, sess *Session, messageID int64) {
	roomID := sess.RoomID()
	if roomID == "" || messageID == 0 {
		return
	}

	if err := r.store.MarkRead(ctx, messageID); err != nil {
		r.log.Error("mark read failed, suppressing ack",
			zap.Int64("message", messageID), zap.Error(err))
		return
	}
	r.broadcast(ctx, roomID, model.EventMessageReadAck, model.MessageReadAck{
		MessageID: messageID,
		By:        sess.UserID(),
		TS:        time.Now().UnixMilli(),
	}, sess)
}

// Disconnect tears down everything the relay holds for a session. Safe to
// call more than once; emits nothing.
func (r *Relay) Disconnect(ctx context.Context, sess *Session) {
	if roomID := sess.RoomID(); roomID != "" {
		r.typing.Clear(roomID, sess.UserID())
		r.untrack(ctx, roomID, sess.UserID())
	}
	r.registry.Leave(sess)
}

// typingExpired is the coordinator's idle callback: the user went quiet, tell
// the rest of the room exactly once.
func (r *Relay) typingExpired(sess *Session, roomID, userID string) {
	r.broadcast(context.Background(), roomID, model.EventRemoteTypingStatus, model.RemoteTypingStatus{
		From:   userID,
		Status: model.StatusStopped,
	}, sess)
}

func (r *Relay) broadcast(ctx context.Context, roomID, event string, payload any, exclude *Session) {
	r.registry.Broadcast(roomID, event, payload, exclude)

	if r.mirror == nil {
		return
	}
	frame, err := model.EncodeEnvelope(event, payload)
	if err != nil {
		r.log.Error("encode mirror frame", zap.String("event", event), zap.Error(err))
		return
	}
	if err := r.mirror.Publish(ctx, roomID, frame); err != nil {
		r.log.Error("event mirror publish failed", zap.String("event", event), zap.Error(err))
	}
}

func (r *Relay) track(ctx context.Context, roomID, userID string) {
	if r.presence == nil {
		return
	}
	if err := r.presence.Track(ctx, roomID, userID); err != nil {
		r.log.Warn("presence track failed", zap.String("room", roomID), zap.Error(err))
	}
}

func (r *Relay) untrack(ctx context.Context, roomID, userID string) {
	if r.presence == nil {
		return
	}
	if err := r.presence.Untrack(ctx, roomID, userID); err != nil {
		r.log.Warn("presence untrack failed", zap.String("room", roomID), zap.Error(err))
	}
}

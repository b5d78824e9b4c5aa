package realtime

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/npezzotti/smartshop/internal/database"
	"github.com/npezzotti/smartshop/internal/stats"
	"github.com/npezzotti/smartshop/internal/types"
	"github.com/rs/zerolog"
)

const (
	DefaultBotReplyDelay = time.Second
	backgroundTimeout    = 5 * time.Second
)

var (
	ErrEmptyMessage  = errors.New("message text cannot be empty")
	ErrInvalidSender = errors.New("invalid message sender")
	ErrMissingUser   = errors.New("user id cannot be empty")
)

// NotifyParams describes a notification. A nil UserId makes it a
// broadcast that is stored for every feed but pushed to no one.
type NotifyParams struct {
	UserId      *string
	Type        string
	Title       string
	Message     string
	RelatedId   string
	RelatedType string
}

// Service owns the chat and notification fanout: it persists every
// message before pushing it to the target user's room.
type Service struct {
	log      zerolog.Logger
	db       database.Repository
	rooms    *Rooms
	bus      Bus
	stats    stats.StatsProvider
	botDelay time.Duration

	pendingMu sync.Mutex
	pending   map[*time.Timer]string
	closed    bool
	wg        sync.WaitGroup

	pumps sync.WaitGroup
}

func NewService(logger zerolog.Logger, db database.Repository, rooms *Rooms, bus Bus, su stats.StatsProvider, botDelay time.Duration) *Service {
	for _, m := range []string{
		stats.ConnectedClients,
		stats.ActiveRooms,
		stats.ChatMessagesSent,
		stats.BotRepliesSent,
		stats.NotificationsPublished,
		stats.NotificationsFailed,
		stats.DroppedEvents,
	} {
		su.RegisterMetric(m)
	}

	return &Service{
		log:      logger.With().Str("component", "realtime").Logger(),
		db:       db,
		rooms:    rooms,
		bus:      bus,
		stats:    su,
		botDelay: botDelay,
		pending:  make(map[*time.Timer]string),
	}
}

func (s *Service) Rooms() *Rooms {
	return s.rooms
}

// Connect tracks a newly upgraded connection so it receives broadcasts.
func (s *Service) Connect(c *Client) {
	s.rooms.Connect(c)
	s.stats.Incr(stats.ConnectedClients)
}

// Serve tracks c and starts its read and write pumps. Shutdown waits for
// both pumps to exit.
func (s *Service) Serve(c *Client) {
	s.Connect(c)

	s.pumps.Add(2)
	go func() {
		defer s.pumps.Done()
		c.Write()
	}()
	go func() {
		defer s.pumps.Done()
		c.Read()
	}()
}

// RegisterConnection places c in the room of userId. Repeated joins of
// the same room are ignored.
func (s *Service) RegisterConnection(c *Client, userId string) {
	before := s.rooms.Len()
	if !s.rooms.Join(c, userId) {
		return
	}

	s.log.Debug().Str("user_id", userId).Msg("connection joined user room")
	s.updateRoomGauge(before)
}

// UnregisterConnection drops c from its room. It is safe to call for
// connections that never joined one.
func (s *Service) UnregisterConnection(c *Client) {
	before := s.rooms.Len()
	userId, ok := s.rooms.Disconnect(c)
	s.stats.Decr(stats.ConnectedClients)
	if ok {
		s.log.Debug().Str("user_id", userId).Msg("connection left user room")
	}
	s.updateRoomGauge(before)
}

func (s *Service) updateRoomGauge(before int) {
	switch after := s.rooms.Len(); {
	case after > before:
		s.stats.Incr(stats.ActiveRooms)
	case after < before:
		s.stats.Decr(stats.ActiveRooms)
	}
}

// SendChatMessage stores a chat message and then pushes it to the user's
// room. Messages from users schedule an automatic bot reply. Nothing is
// pushed and no reply is scheduled when the message cannot be stored.
func (s *Service) SendChatMessage(ctx context.Context, userId, sender, text string) (types.ChatMessage, error) {
	if userId == "" {
		return types.ChatMessage{}, ErrMissingUser
	}
	if text == "" {
		return types.ChatMessage{}, ErrEmptyMessage
	}
	switch sender {
	case types.SenderUser, types.SenderBot, types.SenderAdmin:
	default:
		return types.ChatMessage{}, ErrInvalidSender
	}

	msg, err := s.persistAndPush(ctx, userId, sender, text)
	if err != nil {
		return types.ChatMessage{}, err
	}
	s.stats.Incr(stats.ChatMessagesSent)

	if sender == types.SenderUser {
		s.scheduleBotReply(userId, text)
	}

	return msg, nil
}

func (s *Service) persistAndPush(ctx context.Context, userId, sender, text string) (types.ChatMessage, error) {
	dbMsg := database.Message{
		Id:        uuid.NewString(),
		UserId:    userId,
		Sender:    sender,
		Text:      text,
		CreatedAt: Now(),
	}

	if err := s.db.CreateMessage(ctx, dbMsg); err != nil {
		return types.ChatMessage{}, fmt.Errorf("persist message: %w", err)
	}

	msg := types.ChatMessage{
		Id:        dbMsg.Id,
		UserId:    dbMsg.UserId,
		Sender:    dbMsg.Sender,
		Text:      dbMsg.Text,
		Timestamp: dbMsg.CreatedAt,
	}

	frame, err := newMessageFrame(msg)
	if err != nil {
		return msg, fmt.Errorf("encode message: %w", err)
	}
	if err := s.bus.PublishUser(ctx, userId, frame); err != nil {
		// The message is stored and will show up in history.
		s.log.Warn().Err(err).Str("user_id", userId).Msg("failed to push chat message")
	}

	return msg, nil
}

// scheduleBotReply answers a user message after the configured delay. The
// reply goes to whichever connections are in the user's room when the
// timer fires. Pending replies are only cancelled by Shutdown.
func (s *Service) scheduleBotReply(userId, text string) {
	reply := BotReply(text)

	s.pendingMu.Lock()
	defer s.pendingMu.Unlock()

	if s.closed {
		return
	}

	s.wg.Add(1)
	var t *time.Timer
	t = time.AfterFunc(s.botDelay, func() {
		defer s.wg.Done()

		s.pendingMu.Lock()
		delete(s.pending, t)
		s.pendingMu.Unlock()

		ctx, cancel := context.WithTimeout(context.Background(), backgroundTimeout)
		defer cancel()

		if _, err := s.persistAndPush(ctx, userId, types.SenderBot, reply); err != nil {
			s.log.Error().Err(err).Str("user_id", userId).Msg("bot reply failed")
			return
		}
		s.stats.Incr(stats.BotRepliesSent)
	})
	s.pending[t] = userId
}

// PendingReplies returns the number of scheduled bot replies.
func (s *Service) PendingReplies() int {
	s.pendingMu.Lock()
	defer s.pendingMu.Unlock()

	return len(s.pending)
}

// Notify stores a notification and pushes it when it targets a user who
// is online. Failures are logged and never reported to the caller, so a
// notification problem cannot fail the operation that triggered it.
func (s *Service) Notify(ctx context.Context, p NotifyParams) {
	n := database.Notification{
		Id:          uuid.NewString(),
		UserId:      p.UserId,
		Title:       p.Title,
		Message:     p.Message,
		Type:        p.Type,
		RelatedId:   p.RelatedId,
		RelatedType: p.RelatedType,
		CreatedAt:   Now(),
	}

	logger := s.log.With().Str("type", p.Type).Logger()
	if p.UserId != nil {
		logger = logger.With().Str("user_id", *p.UserId).Logger()
	}

	if err := s.db.CreateNotification(ctx, n); err != nil {
		s.stats.Incr(stats.NotificationsFailed)
		logger.Error().Err(err).Msg("failed to persist notification")
		return
	}

	if p.UserId == nil {
		return
	}

	frame, err := notificationFrame(types.Notification{
		Id:          n.Id,
		UserId:      n.UserId,
		Type:        n.Type,
		Title:       n.Title,
		Message:     n.Message,
		RelatedId:   n.RelatedId,
		RelatedType: n.RelatedType,
		CreatedAt:   n.CreatedAt,
	})
	if err != nil {
		logger.Error().Err(err).Msg("failed to encode notification")
		return
	}

	if err := s.bus.PublishUser(ctx, *p.UserId, frame); err != nil {
		s.stats.Incr(stats.NotificationsFailed)
		logger.Warn().Err(err).Msg("failed to push notification")
		return
	}
	// Counts hand-offs to the bus, whether or not a connection was listening.
	s.stats.Incr(stats.NotificationsPublished)
}

// BroadcastTimer pushes the new flash sale end time to every connection.
func (s *Service) BroadcastTimer(ctx context.Context, endTime time.Time) {
	frame, err := encodeEvent(EventTimerUpdate, TimerUpdate{EndTime: endTime})
	if err != nil {
		s.log.Error().Err(err).Msg("failed to encode timer update")
		return
	}

	if err := s.bus.PublishAll(ctx, frame); err != nil {
		s.log.Warn().Err(err).Msg("failed to broadcast timer update")
	}
}

// Shutdown cancels pending bot replies and waits for replies that are
// already running to finish. It then closes every connection and waits
// for the pumps started by Serve to exit.
func (s *Service) Shutdown(ctx context.Context) error {
	s.pendingMu.Lock()
	s.closed = true
	for t := range s.pending {
		if t.Stop() {
			s.wg.Done()
		}
		delete(s.pending, t)
	}
	s.pendingMu.Unlock()

	if err := waitContext(ctx, &s.wg); err != nil {
		return fmt.Errorf("waiting for bot replies: %w", err)
	}

	for _, c := range s.rooms.Clients() {
		c.stopClient()
	}

	if err := waitContext(ctx, &s.pumps); err != nil {
		return fmt.Errorf("waiting for connections to close: %w", err)
	}

	return s.bus.Close()
}

func waitContext(ctx context.Context, wg *sync.WaitGroup) error {
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

package realtime

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Bus carries encoded frames to the connections that should receive
// them. Delivery is best effort.
type Bus interface {
	PublishUser(ctx context.Context, userId string, frame []byte) error
	PublishAll(ctx context.Context, frame []byte) error
	Close() error
}

// LocalBus delivers frames to connections held by this process only.
type LocalBus struct {
	rooms *Rooms
}

func NewLocalBus(rooms *Rooms) *LocalBus {
	return &LocalBus{rooms: rooms}
}

func (b *LocalBus) PublishUser(_ context.Context, userId string, frame []byte) error {
	b.rooms.SendToUser(userId, frame)
	return nil
}

func (b *LocalBus) PublishAll(_ context.Context, frame []byte) error {
	b.rooms.Broadcast(frame)
	return nil
}

func (b *LocalBus) Close() error {
	return nil
}

const (
	redisChannelPrefix = "smartshop:"
	redisUserPrefix    = redisChannelPrefix + "user:"
	redisBroadcast     = redisChannelPrefix + "broadcast"
)

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// RedisBus fans frames out through Redis pub/sub so that every server
// instance delivers to the connections it holds locally.
type RedisBus struct {
	log    zerolog.Logger
	client *redis.Client
	rooms  *Rooms
	pubsub *redis.PubSub
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewRedisBus(ctx context.Context, logger zerolog.Logger, cfg RedisConfig, rooms *Rooms) (*RedisBus, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	pubsub := client.PSubscribe(ctx, redisChannelPrefix+"*")
	// Wait for the subscription confirmation so no frame published right
	// after startup is missed.
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		client.Close()
		return nil, fmt.Errorf("subscribe: %w", err)
	}

	runCtx, cancel := context.WithCancel(context.Background())
	b := &RedisBus{
		log:    logger.With().Str("component", "redis-bus").Logger(),
		client: client,
		rooms:  rooms,
		pubsub: pubsub,
		cancel: cancel,
	}

	b.wg.Add(1)
	go b.run(runCtx)

	return b, nil
}

func (b *RedisBus) PublishUser(ctx context.Context, userId string, frame []byte) error {
	return b.client.Publish(ctx, redisUserPrefix+userId, frame).Err()
}

func (b *RedisBus) PublishAll(ctx context.Context, frame []byte) error {
	return b.client.Publish(ctx, redisBroadcast, frame).Err()
}

func (b *RedisBus) run(ctx context.Context) {
	defer b.wg.Done()

	ch := b.pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			b.deliver(msg.Channel, []byte(msg.Payload))
		}
	}
}

func (b *RedisBus) deliver(channel string, frame []byte) {
	if channel == redisBroadcast {
		b.rooms.Broadcast(frame)
		return
	}

	if userId, ok := strings.CutPrefix(channel, redisUserPrefix); ok && userId != "" {
		b.rooms.SendToUser(userId, frame)
		return
	}

	b.log.Debug().Str("channel", channel).Msg("ignoring message on unknown channel")
}

func (b *RedisBus) Close() error {
	b.cancel()
	err := b.pubsub.Close()
	b.wg.Wait()

	if cerr := b.client.Close(); err == nil {
		err = cerr
	}

	return err
}

package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/simmer-app/simmer-backend/internal/types"
)

const redisKeyPrefix = "simmer:collections:"

// redisEnvelope is the payload stored under the collection key and
// published on its update channel. Origin lets subscribers drop the echo
// of their own saves.
type redisEnvelope struct {
	Origin  string         `json:"origin"`
	Recipes []types.Recipe `json:"recipes"`
}

// RedisRepository keeps the collection as one JSON value in Redis and
// fans out saves through pub/sub. Unlike the automerge driver it offers
// no merging: concurrent saves resolve to whichever write lands last.
type RedisRepository struct {
	client     *redis.Client
	collection string
	origin     string
	pubsub     *redis.PubSub
	done       chan struct{}
}

// NewRedis creates a repository on an existing client. The client is
// shared with other users and is not closed by Close.
func NewRedis(client *redis.Client, collectionID string) (*RedisRepository, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	if collectionID == "" {
		return nil, errors.New("collection id is required")
	}
	return &RedisRepository{
		client:     client,
		collection: collectionID,
		origin:     uuid.New().String(),
	}, nil
}

func (r *RedisRepository) key() string {
	return redisKeyPrefix + r.collection
}

func (r *RedisRepository) channel() string {
	return redisKeyPrefix + r.collection + ":updates"
}

// Load returns the collection stored under the collection key. A missing
// key loads as an empty collection.
func (r *RedisRepository) Load(ctx context.Context) ([]types.Recipe, error) {
	val, err := r.client.Get(ctx, r.key()).Bytes()
	if errors.Is(err, redis.Nil) {
		return []types.Recipe{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load collection: %w", err)
	}
	var env redisEnvelope
	if err := json.Unmarshal(val, &env); err != nil {
		return nil, fmt.Errorf("failed to decode collection: %w", err)
	}
	if env.Recipes == nil {
		env.Recipes = []types.Recipe{}
	}
	return env.Recipes, nil
}

// Save stores the snapshot and publishes it to other replicas in one
// round trip.
func (r *RedisRepository) Save(ctx context.Context, recipes []types.Recipe) error {
	data, err := json.Marshal(redisEnvelope{Origin: r.origin, Recipes: recipes})
	if err != nil {
		return fmt.Errorf("failed to encode collection: %w", err)
	}
	pipe := r.client.Pipeline()
	pipe.Set(ctx, r.key(), data, 0)
	pipe.Publish(ctx, r.channel(), data)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save collection: %w", err)
	}
	return nil
}

// Subscribe listens on the collection's update channel and delivers every
// snapshot published by other replicas. It may be called once.
func (r *RedisRepository) Subscribe(ctx context.Context, fn func([]types.Recipe)) error {
	if r.pubsub != nil {
		return errors.New("already subscribed")
	}
	pubsub := r.client.Subscribe(ctx, r.channel())
	// Force the SUBSCRIBE round trip so a broken connection surfaces here
	// instead of as silently missing updates.
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return fmt.Errorf("failed to subscribe to collection updates: %w", err)
	}
	r.pubsub = pubsub
	r.done = make(chan struct{})

	ch := pubsub.Channel()
	go func() {
		defer close(r.done)
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var env redisEnvelope
				if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
					log.Printf("[SyncRepository] dropping malformed update: %v", err)
					continue
				}
				if env.Origin == r.origin {
					continue
				}
				if env.Recipes == nil {
					env.Recipes = []types.Recipe{}
				}
				fn(env.Recipes)
			}
		}
	}()
	return nil
}

// Close stops the subscription. The injected client stays open.
func (r *RedisRepository) Close() error {
	if r.pubsub == nil {
		return nil
	}
	err := r.pubsub.Close()
	<-r.done
	return err
}

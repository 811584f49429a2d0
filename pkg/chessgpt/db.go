package chessgpt

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// DB persists serialized games to Redis so rooms survive restarts. Keys are
// room IDs, values the "fen:"/"pgn:" form produced by Game.Serialize, and
// entries expire together with their session.
type DB struct {
	rdb    *redis.Client
	logger *zap.Logger
}

func NewDB(redisURL string, logger *zap.Logger) (*DB, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}
	return &DB{rdb: rdb, logger: logger}, nil
}

func (db *DB) LoadSessions(ctx context.Context) map[string]string {
	rooms, err := db.rdb.Keys(ctx, "*").Result()
	if err != nil {
		db.logger.Error("redis keys", zap.Error(err))
		return nil
	}
	games := make(map[string]string, len(rooms))
	for _, room := range rooms {
		game, err := db.rdb.Get(ctx, room).Result()
		if err != nil {
			db.logger.Error("redis get", zap.String("room", room), zap.Error(err))
			continue
		}
		games[room] = game
	}
	return games
}

func (db *DB) SaveSession(ctx context.Context, room, game string, expiration time.Duration) {
	if err := db.rdb.Set(ctx, room, game, expiration).Err(); err != nil {
		db.logger.Error("redis set", zap.String("room", room), zap.Error(err))
	}
}

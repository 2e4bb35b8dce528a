package mongodb

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/samfeldman824/putr/internal/logger"
	"github.com/samfeldman824/putr/internal/models"
	"github.com/samfeldman824/putr/internal/repository"
)

type playerRepository struct {
	collection *mongo.Collection
}

// NewPlayerRepository creates a PlayerRepository backed by a MongoDB
// collection, one document per player keyed by canonical name.
func NewPlayerRepository(client *mongo.Client, database, collection string) repository.PlayerRepository {
	return &playerRepository{
		collection: client.Database(database).Collection(collection),
	}
}

// Connect establishes and pings a MongoDB connection.
func Connect(uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return client, nil
}

func (r *playerRepository) Get(ctx context.Context, name string) (*models.PlayerStats, error) {
	log := logger.FromContext(ctx).WithPrefix("player_repo")
	log.Debug("getting player: name=%s", name)

	var record models.PlayerStats
	err := r.collection.FindOne(ctx, bson.M{"_id": name}).Decode(&record)
	if errors.Is(err, mongo.ErrNoDocuments) {
		log.Debug("player not found: name=%s", name)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get player %s: %v", name, err)
		return nil, err
	}
	return &record, nil
}

func (r *playerRepository) GetMultiple(ctx context.Context, names []string) (map[string]models.PlayerStats, error) {
	log := logger.FromContext(ctx).WithPrefix("player_repo")
	log.Debug("getting %d players", len(names))

	result := make(map[string]models.PlayerStats, len(names))
	if len(names) == 0 {
		return result, nil
	}

	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": names}})
	if err != nil {
		log.Error("failed to query players: %v", err)
		return nil, err
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var record models.PlayerStats
		if err := cursor.Decode(&record); err != nil {
			log.Error("failed to decode player document: %v", err)
			return nil, err
		}
		result[record.Name] = record
	}
	return result, cursor.Err()
}

func (r *playerRepository) Set(ctx context.Context, name string, record models.PlayerStats) error {
	log := logger.FromContext(ctx).WithPrefix("player_repo")
	log.Debug("writing player record: name=%s", name)

	record.Name = name
	opts := options.Replace().SetUpsert(true)
	if _, err := r.collection.ReplaceOne(ctx, bson.M{"_id": name}, record, opts); err != nil {
		log.Error("failed to write player %s: %v", name, err)
		return err
	}
	return nil
}

func (r *playerRepository) FindByNicknames(ctx context.Context, nicknames []string) (*repository.MatchResult, error) {
	log := logger.FromContext(ctx).WithPrefix("player_repo")
	log.Debug("resolving %d nicknames", len(nicknames))

	result := &repository.MatchResult{
		Matched: make(map[string]repository.NicknameMatch, len(nicknames)),
	}

	for _, alias := range nicknames {
		// Exact key match wins over the nickname index.
		record, err := r.Get(ctx, alias)
		if err != nil {
			return nil, err
		}
		if record == nil {
			record, err = r.findByNicknameIndex(ctx, alias)
			if err != nil {
				return nil, err
			}
		}
		if record == nil {
			result.Unmatched = append(result.Unmatched, alias)
			continue
		}
		result.Matched[alias] = repository.NicknameMatch{
			Canonical: record.Name,
			Record:    *record,
		}
	}

	if len(result.Unmatched) > 0 {
		log.Debug("unmatched nicknames: %s", strings.Join(result.Unmatched, ", "))
	}
	return result, nil
}

func (r *playerRepository) findByNicknameIndex(ctx context.Context, alias string) (*models.PlayerStats, error) {
	var record models.PlayerStats
	err := r.collection.FindOne(ctx, bson.M{"player_nicknames": alias}).Decode(&record)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *playerRepository) Backup(ctx context.Context, names []string) (map[string]models.PlayerStats, error) {
	log := logger.FromContext(ctx).WithPrefix("player_repo")
	log.Debug("backing up %d players", len(names))
	return r.GetMultiple(ctx, names)
}

func (r *playerRepository) Restore(ctx context.Context, backup map[string]models.PlayerStats) error {
	log := logger.FromContext(ctx).WithPrefix("player_repo")
	log.Info("restoring %d players from backup", len(backup))

	var failed []string
	for name, record := range backup {
		if err := r.Set(ctx, name, record); err != nil {
			log.Error("failed to restore player %s: %v", name, err)
			failed = append(failed, name)
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("failed to restore players: %s", strings.Join(failed, ", "))
	}
	return nil
}

func (r *playerRepository) BatchUpdate(ctx context.Context, records map[string]models.PlayerStats) (*repository.BatchResult, error) {
	log := logger.FromContext(ctx).WithPrefix("player_repo")
	log.Debug("batch updating %d players", len(records))

	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		result repository.BatchResult
	)

	// Writes are issued concurrently and joined; a failure on one key must
	// not block the others.
	for name, record := range records {
		wg.Add(1)
		go func(name string, record models.PlayerStats) {
			defer wg.Done()
			err := r.Set(ctx, name, record)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Errors = append(result.Errors, repository.KeyError{Key: name, Err: err})
				return
			}
			result.SuccessCount++
		}(name, record)
	}
	wg.Wait()

	log.Debug("batch update complete: %d succeeded, %d failed", result.SuccessCount, len(result.Errors))
	return &result, nil
}

func (r *playerRepository) List(ctx context.Context) (map[string]models.PlayerStats, error) {
	log := logger.FromContext(ctx).WithPrefix("player_repo")
	log.Debug("listing all players")

	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		log.Error("failed to list players: %v", err)
		return nil, err
	}
	defer cursor.Close(ctx)

	players := make(map[string]models.PlayerStats)
	for cursor.Next(ctx) {
		var record models.PlayerStats
		if err := cursor.Decode(&record); err != nil {
			log.Error("failed to decode player document: %v", err)
			return nil, err
		}
		players[record.Name] = record
	}

	log.Debug("found %d players", len(players))
	return players, cursor.Err()
}

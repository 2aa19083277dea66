package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config holds Redis configuration
type Config struct {
	Host        string
	Port        string
	Password    string
	DB          int
	MaxRetries  int
	PoolSize    int
	DialTimeout time.Duration
	ReadTimeout time.Duration
}

// NewRedisClient creates a new Redis client and verifies connectivity
func NewRedisClient(cfg Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		MaxRetries:   cfg.MaxRetries,
		PoolSize:     cfg.PoolSize,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: 3 * time.Second,
		PoolTimeout:  4 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return client, nil
}

// Close gracefully closes the Redis client
func Close(client *redis.Client) error {
	if client != nil {
		return client.Close()
	}
	return nil
}

// DriverGeoKey is the geo set holding last-known driver positions, mirrored
// from the location ledger for fast radius queries.
const DriverGeoKey = "drivers:locations"

// UpsertDriverLocation records a driver position in the geo set
func UpsertDriverLocation(ctx context.Context, client *redis.Client, driverID string, lat, lon float64) error {
	return client.GeoAdd(ctx, DriverGeoKey, &redis.GeoLocation{
		Name:      driverID,
		Latitude:  lat,
		Longitude: lon,
	}).Err()
}

// RemoveDriverLocation drops a driver from the geo set
func RemoveDriverLocation(ctx context.Context, client *redis.Client, driverID string) error {
	return client.ZRem(ctx, DriverGeoKey, driverID).Err()
}

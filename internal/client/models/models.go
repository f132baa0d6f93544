// Package models defines the entities persisted in the local store.
package models

import "time"

// SyncStatus tracks whether a user-scoped record has been confirmed by the
// remote mirror. It only ever moves from SyncPending to SyncDone, and only
// after a remote acknowledgment.
type SyncStatus int

const (
	SyncPending SyncStatus = 0
	SyncDone    SyncStatus = 1
)

// Remote collection names, matching the document paths used by the mirror.
const (
	CollectionCities = "favoriteCities"
	CollectionMoods  = "moodHistory"
)

// User is the local identity record. Anonymous users have SyncEnabled=false
// and never reach the remote store.
type User struct {
	UserID      string
	Email       string
	DisplayName string
	CreatedAt   time.Time
	LastLogin   time.Time
	SyncEnabled bool
	Anonymous   bool
	ThemeMode   int
}

// FavoriteCity is a saved location. CityKey is the provider-specific city id
// and doubles as the remote document id, so pushes are idempotent.
type FavoriteCity struct {
	ID          int64
	UserID      string
	CityKey     string
	Name        string
	CountryCode string
	Latitude    float64
	Longitude   float64
	IsDefault   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
	SyncStatus  SyncStatus
}

// MoodRating is an observation that is immutable after creation except for
// its sync status. RecordID is assigned at creation time and used as the
// remote document id.
type MoodRating struct {
	ID          int64
	RecordID    string
	UserID      string
	Rating      int
	Condition   string
	Description string
	Temperature float64
	FeelsLike   float64
	Humidity    int
	Pressure    int
	WindSpeed   float64
	Note        string
	CityKey     string
	CityName    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	SyncStatus  SyncStatus
}

// WeatherSnapshot is a point-in-time weather reading for one location.
type WeatherSnapshot struct {
	CityKey     string
	CityName    string
	Latitude    float64
	Longitude   float64
	Temperature float64
	FeelsLike   float64
	Condition   string
	Description string
	Icon        string
	WindSpeed   float64
	Humidity    int
	Pressure    int
	Visibility  int
}

// WeatherCacheEntry is the single current snapshot stored per city key.
// ExpiresAt is always after FetchedAt; staleness is computed at read time
// and never triggers deletion.
type WeatherCacheEntry struct {
	Snapshot  WeatherSnapshot
	FetchedAt time.Time
	ExpiresAt time.Time
}

// QueueOp is the operation kind carried by a sync queue entry.
type QueueOp int

const (
	OpInsert QueueOp = 1
	OpUpdate QueueOp = 2
	OpDelete QueueOp = 3
)

// Queue entry statuses.
const (
	QueuePending = 0
	QueueDone    = 1
)

// SyncQueueEntry records a local mutation that could not be mirrored
// immediately, typically a delete issued while offline.
type SyncQueueEntry struct {
	ID         int64
	UserID     string
	Collection string
	RecordID   string
	Op         QueueOp
	Payload    []byte
	CreatedAt  time.Time
	RetryCount int
	Status     int
}

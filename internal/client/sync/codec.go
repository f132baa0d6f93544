package sync

import (
	"fmt"

	"github.com/weathermood/weathermood/internal/client/models"
	"github.com/weathermood/weathermood/internal/client/remote"
	"github.com/weathermood/weathermood/internal/timex"
)

// Conversions between local entities and the mirror's document shape.
// Numeric field values may arrive as float64 after a JSON round trip, so
// the readers accept both.

func cityRecord(c models.FavoriteCity) remote.Record {
	return remote.Record{
		ID: c.CityKey,
		Fields: map[string]any{
			"city_key":     c.CityKey,
			"name":         c.Name,
			"country_code": c.CountryCode,
			"latitude":     c.Latitude,
			"longitude":    c.Longitude,
			"is_default":   c.IsDefault,
			"created_at":   timex.ToMillis(c.CreatedAt),
		},
		UpdatedAt: c.UpdatedAt,
	}
}

func cityFromRecord(userID string, rec remote.Record) (*models.FavoriteCity, error) {
	f := fields(rec.Fields)
	name := f.str("name")
	if rec.ID == "" || name == "" {
		return nil, fmt.Errorf("malformed city record %q", rec.ID)
	}
	return &models.FavoriteCity{
		UserID:      userID,
		CityKey:     rec.ID,
		Name:        name,
		CountryCode: f.str("country_code"),
		Latitude:    f.num("latitude"),
		Longitude:   f.num("longitude"),
		IsDefault:   f.boolean("is_default"),
		CreatedAt:   timex.FromMillis(f.integer("created_at")),
		UpdatedAt:   rec.UpdatedAt,
		SyncStatus:  models.SyncDone,
	}, nil
}

func moodRecord(m models.MoodRating) remote.Record {
	return remote.Record{
		ID: m.RecordID,
		Fields: map[string]any{
			"rating":      m.Rating,
			"condition":   m.Condition,
			"description": m.Description,
			"temperature": m.Temperature,
			"feels_like":  m.FeelsLike,
			"humidity":    m.Humidity,
			"pressure":    m.Pressure,
			"wind_speed":  m.WindSpeed,
			"note":        m.Note,
			"city_key":    m.CityKey,
			"city_name":   m.CityName,
			"created_at":  timex.ToMillis(m.CreatedAt),
		},
		UpdatedAt: m.UpdatedAt,
	}
}

func moodFromRecord(userID string, rec remote.Record) (*models.MoodRating, error) {
	f := fields(rec.Fields)
	rating := int(f.integer("rating"))
	if rec.ID == "" || rating < 1 || rating > 5 {
		return nil, fmt.Errorf("malformed mood record %q", rec.ID)
	}
	return &models.MoodRating{
		RecordID:    rec.ID,
		UserID:      userID,
		Rating:      rating,
		Condition:   f.str("condition"),
		Description: f.str("description"),
		Temperature: f.num("temperature"),
		FeelsLike:   f.num("feels_like"),
		Humidity:    int(f.integer("humidity")),
		Pressure:    int(f.integer("pressure")),
		WindSpeed:   f.num("wind_speed"),
		Note:        f.str("note"),
		CityKey:     f.str("city_key"),
		CityName:    f.str("city_name"),
		CreatedAt:   timex.FromMillis(f.integer("created_at")),
		UpdatedAt:   rec.UpdatedAt,
		SyncStatus:  models.SyncDone,
	}, nil
}

type fields map[string]any

func (f fields) str(key string) string {
	s, _ := f[key].(string)
	return s
}

func (f fields) boolean(key string) bool {
	b, _ := f[key].(bool)
	return b
}

func (f fields) num(key string) float64 {
	switch v := f[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return 0
	}
}

func (f fields) integer(key string) int64 {
	switch v := f[key].(type) {
	case float64:
		return int64(v)
	case int:
		return int64(v)
	case int64:
		return v
	default:
		return 0
	}
}

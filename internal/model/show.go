package model

import "time"

// Show represents a scheduled screening of a movie on a screen.
//
// Fields:
//
//	ID         – primary key identifier.
//	ScreenID   – screen where the show is taking place.
//	MovieTitle – title of the movie being shown.
//	StartsAt   – when the show begins (UTC).
//	EndsAt     – when the show ends (must be after StartsAt).
//	CreatedAt  – creation timestamp.
type Show struct {
	ID         uint64    // shows.id
	ScreenID   uint64    // shows.screen_id
	MovieTitle string    // shows.movie_title
	StartsAt   time.Time // shows.starts_at
	EndsAt     time.Time // shows.ends_at
	CreatedAt  time.Time // shows.created_at
}

// Started reports whether the show has begun at now.
func (s Show) Started(now time.Time) bool { return !s.StartsAt.After(now) }

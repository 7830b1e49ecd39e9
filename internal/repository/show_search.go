package repository

import (
	"context"
	"strings"
	"time"

	"github.com/iliyamo/movie-booking/internal/model"
)

// Time filters understood by ShowSearchQuery.
const (
	ShowsUpcoming = "upcoming" // not started yet (default)
	ShowsActive   = "active"   // not ended yet
	ShowsAny      = "any"      // no time filter
)

// ShowSearchQuery defines filters & pagination for searching shows.
type ShowSearchQuery struct {
	Title      string
	Screen     string
	TimeFilter string
	Page       int
	PageSize   int
}

// Matches applies the filters of q to one show at now.  Title and screen
// name match case-insensitively on substrings.
func (q ShowSearchQuery) Matches(s model.Show, screenName string, now time.Time) bool {
	switch strings.ToLower(q.TimeFilter) {
	case ShowsAny:
	case ShowsActive:
		if !s.EndsAt.After(now) {
			return false
		}
	default:
		if !s.StartsAt.After(now) {
			return false
		}
	}
	if q.Title != "" && !strings.Contains(strings.ToLower(s.MovieTitle), strings.ToLower(q.Title)) {
		return false
	}
	if q.Screen != "" && !strings.Contains(strings.ToLower(screenName), strings.ToLower(q.Screen)) {
		return false
	}
	return true
}

// Search returns one page of shows matching q, earliest first, and the
// total number of matches.
func (r *ShowRepo) Search(ctx context.Context, q ShowSearchQuery, now time.Time) ([]model.Show, int64, error) {
	where := []string{}
	args := []any{}

	switch strings.ToLower(q.TimeFilter) {
	case ShowsAny:
	case ShowsActive:
		where = append(where, "s.ends_at > ?")
		args = append(args, now.UTC())
	default:
		where = append(where, "s.starts_at > ?")
		args = append(args, now.UTC())
	}
	if q.Title != "" {
		where = append(where, "LOWER(s.movie_title) LIKE ?")
		args = append(args, "%"+strings.ToLower(q.Title)+"%")
	}
	if q.Screen != "" {
		where = append(where, "LOWER(sc.name) LIKE ?")
		args = append(args, "%"+strings.ToLower(q.Screen)+"%")
	}

	cond := "1=1"
	if len(where) > 0 {
		cond = strings.Join(where, " AND ")
	}

	db := conn(ctx, r.db)
	var total int64
	countSQL := `SELECT COUNT(*)
		FROM shows s
		JOIN screens sc ON sc.id = s.screen_id
		WHERE ` + cond
	if err := db.QueryRowContext(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	dataSQL := `SELECT s.id, s.screen_id, s.movie_title, s.starts_at, s.ends_at, s.created_at
		FROM shows s
		JOIN screens sc ON sc.id = s.screen_id
		WHERE ` + cond + `
		ORDER BY s.starts_at ASC, s.id ASC
		LIMIT ? OFFSET ?`
	argsData := append(append([]any{}, args...), q.PageSize, (q.Page-1)*q.PageSize)

	out, err := queryAll(ctx, db, scanShow, dataSQL, argsData...)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

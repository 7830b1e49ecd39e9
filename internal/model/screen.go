package model

import "time"

// Screen represents an auditorium in which shows are projected.  Seats
// are generated per screen and a show always runs on exactly one screen.
//
// Fields:
//
//	ID          – primary key identifier.
//	Name        – unique screen name.
//	DisplayTech – projection technology (e.g. "IMAX", "4K").
//	AudioTech   – sound system (e.g. "Dolby Atmos").
//	IsActive    – whether the screen accepts new shows.
//	CreatedAt   – creation timestamp.
type Screen struct {
	ID          uint64    // screens.id
	Name        string    // screens.name
	DisplayTech string    // screens.display_tech
	AudioTech   string    // screens.audio_tech
	IsActive    bool      // screens.is_active
	CreatedAt   time.Time // screens.created_at
}

package service

import (
	"time"

	"github.com/courtside/courtside-api/internal/models"
)

// GenerateSessions builds the fixed session schedule for a new enrollment:
// exactly totalSessions records, indexed 1..N, all in the requested slot and
// awaiting their first attendance mark. Pure; ids are assigned at persist
// time.
func GenerateSessions(totalSessions int, slot string) []models.Session {
	sessions := make([]models.Session, 0, totalSessions)
	for i := 1; i <= totalSessions; i++ {
		sessions = append(sessions, models.Session{
			Index:  i,
			Slot:   slot,
			Status: models.SessionStatusPending,
		})
	}
	return sessions
}

// ComputeEndDate returns the program-wide end date. Plain day arithmetic;
// weekends and holidays are not skipped.
func ComputeEndDate(start time.Time, durationDays int) time.Time {
	return start.AddDate(0, 0, durationDays)
}

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TournamentFormat constrains the shape of registrations and entrants.
type TournamentFormat string

// Supported tournament formats.
const (
	FormatSolo TournamentFormat = "solo"
	FormatDuo  TournamentFormat = "duo"
	FormatTeam TournamentFormat = "team"
)

// Valid reports whether the format is one of the known constants.
func (f TournamentFormat) Valid() bool {
	return f == FormatSolo || f == FormatDuo || f == FormatTeam
}

// RequiresTeam reports whether registrations must carry a team name.
func (f TournamentFormat) RequiresTeam() bool {
	return f == FormatDuo || f == FormatTeam
}

// EntrantKind for the format: team entries compete under their team name,
// solo entries under the student id.
func (f TournamentFormat) EntrantKind() EntrantKind {
	if f.RequiresTeam() {
		return EntrantTeam
	}
	return EntrantIndividual
}

// TournamentStatus represents the lifecycle of a tournament.
type TournamentStatus string

// Possible tournament statuses.
const (
	TournamentStatusUpcoming  TournamentStatus = "upcoming"
	TournamentStatusOngoing   TournamentStatus = "ongoing"
	TournamentStatusCompleted TournamentStatus = "completed"
	TournamentStatusCancelled TournamentStatus = "cancelled"
)

// Visibility controls tournament discoverability.
type Visibility string

// Visibility values.
const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

// EntrantKind tags entrant identifiers so downstream logic never has to guess
// whether a string is a student id or a team name.
type EntrantKind string

// Entrant kinds.
const (
	EntrantIndividual EntrantKind = "individual"
	EntrantTeam       EntrantKind = "team"
)

// Entrant identifies one competitor in a bracket.
type Entrant struct {
	Kind EntrantKind `json:"kind"`
	ID   string      `json:"id"`
}

// RegistrationStatus tracks an entrant through the tournament.
type RegistrationStatus string

// Registration statuses.
const (
	RegistrationStatusRegistered RegistrationStatus = "registered"
	RegistrationStatusCheckedIn  RegistrationStatus = "checked_in"
	RegistrationStatusEliminated RegistrationStatus = "eliminated"
	RegistrationStatusQualified  RegistrationStatus = "qualified"
	RegistrationStatusWinner     RegistrationStatus = "winner"
)

// Registration records one student's entry into a tournament. At most one
// registration per student per tournament.
type Registration struct {
	ID                    string             `db:"id" json:"id"`
	TournamentID          string             `db:"tournament_id" json:"-"`
	Student               string             `db:"student" json:"student"`
	FullName              string             `db:"full_name" json:"full_name"`
	Email                 string             `db:"email" json:"email"`
	Phone                 string             `db:"phone" json:"phone"`
	DOB                   string             `db:"dob" json:"dob"`
	EmergencyContactName  string             `db:"emergency_contact_name" json:"emergency_contact_name"`
	EmergencyContactPhone string             `db:"emergency_contact_phone" json:"emergency_contact_phone"`
	TeamName              *string            `db:"team_name" json:"team_name,omitempty"`
	Format                TournamentFormat   `db:"format" json:"format"`
	RegisteredAt          time.Time          `db:"registered_at" json:"registered_at"`
	Status                RegistrationStatus `db:"status" json:"status"`
}

// MatchStatus represents the state of a single match.
type MatchStatus string

// Match statuses.
const (
	MatchStatusUpcoming  MatchStatus = "upcoming"
	MatchStatusLive      MatchStatus = "live"
	MatchStatusCompleted MatchStatus = "completed"
)

// Match is one node of a single-elimination bracket. Round, MatchNumber and
// SlotIndex are assigned once at generation and never change; only result and
// scheduling fields are mutated afterwards.
type Match struct {
	ID           string      `db:"id" json:"id"`
	TournamentID string      `db:"tournament_id" json:"-"`
	Round        int         `db:"round" json:"round"`
	MatchNumber  int         `db:"match_number" json:"match_number"`
	SlotIndex    int         `db:"slot_index" json:"slot_index"`
	PlayerA      *Entrant    `db:"-" json:"player_a,omitempty"`
	PlayerB      *Entrant    `db:"-" json:"player_b,omitempty"`
	ScoreA       int         `db:"score_a" json:"score_a"`
	ScoreB       int         `db:"score_b" json:"score_b"`
	Winner       *Entrant    `db:"-" json:"winner,omitempty"`
	Court        string      `db:"court" json:"court"`
	ScheduledAt  *time.Time  `db:"scheduled_at" json:"scheduled_at,omitempty"`
	Status       MatchStatus `db:"status" json:"status"`
}

// Tournament is the aggregate owning registrations and the generated bracket.
type Tournament struct {
	ID                  string           `db:"id" json:"id"`
	Title               string           `db:"title" json:"title"`
	Description         string           `db:"description" json:"description"`
	Sport               string           `db:"sport" json:"sport"`
	VenueName           string           `db:"venue_name" json:"venue_name"`
	VenueCity           string           `db:"venue_city" json:"venue_city"`
	StartDate           time.Time        `db:"start_date" json:"start_date"`
	EndDate             time.Time        `db:"end_date" json:"end_date"`
	RegistrationOpenAt  *time.Time       `db:"registration_open_at" json:"registration_open_at,omitempty"`
	RegistrationCloseAt *time.Time       `db:"registration_close_at" json:"registration_close_at,omitempty"`
	MaxParticipants     int              `db:"max_participants" json:"max_participants"`
	EntryFee            decimal.Decimal  `db:"entry_fee" json:"entry_fee"`
	Currency            string           `db:"currency" json:"currency"`
	Status              TournamentStatus `db:"status" json:"status"`
	Visibility          Visibility       `db:"visibility" json:"visibility"`
	Format              TournamentFormat `db:"format" json:"format"`
	CurrentRound        int              `db:"current_round" json:"current_round"`
	CreatedBy           string           `db:"created_by" json:"created_by"`
	Registrations       []Registration   `db:"-" json:"registrations"`
	Matches             []Match          `db:"-" json:"matches"`
	Version             int              `db:"version" json:"-"`
	CreatedAt           time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time        `db:"updated_at" json:"updated_at"`
}

// RegistrationByStudent returns the registration for a student, or nil.
func (t *Tournament) RegistrationByStudent(studentID string) *Registration {
	for i := range t.Registrations {
		if t.Registrations[i].Student == studentID {
			return &t.Registrations[i]
		}
	}
	return nil
}

// MatchByID locates a match within the aggregate. Returns nil when absent.
func (t *Tournament) MatchByID(matchID string) *Match {
	for i := range t.Matches {
		if t.Matches[i].ID == matchID {
			return &t.Matches[i]
		}
	}
	return nil
}

// Entrants derives the entrant list from registrations: one identifier per
// registration, team name for duo/team formats, student id otherwise.
func (t *Tournament) Entrants() []Entrant {
	entrants := make([]Entrant, 0, len(t.Registrations))
	for i := range t.Registrations {
		reg := &t.Registrations[i]
		if t.Format.RequiresTeam() {
			name := ""
			if reg.TeamName != nil {
				name = *reg.TeamName
			}
			entrants = append(entrants, Entrant{Kind: EntrantTeam, ID: name})
			continue
		}
		entrants = append(entrants, Entrant{Kind: EntrantIndividual, ID: reg.Student})
	}
	return entrants
}

// TournamentFilter provides filters for listing tournaments.
type TournamentFilter struct {
	Status    TournamentStatus
	Sport     string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

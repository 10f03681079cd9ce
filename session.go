package confreport

import (
	"fmt"
	"sort"
	"strings"
)

// Session describes one conference session and its position in the
// conference-day/time convention.
type Session struct {
	Code string
	Rank int
	Name string
}

// SessionTable is the set of recognised session codes plus an optional
// lookup from localised session labels to codes. The zero value recognises
// nothing; use DefaultSessions.
type SessionTable struct {
	byCode  map[string]Session
	byLabel map[string]string
}

// defaultSessions lists the sessions in reading order: Saturday morning <
// Saturday afternoon < Saturday priesthood < Sunday morning < Sunday afternoon.
var defaultSessions = []Session{
	{Code: "sat_am", Rank: 1, Name: "Saturday Morning Session"},
	{Code: "sat_pm", Rank: 2, Name: "Saturday Afternoon Session"},
	{Code: "sat_ps", Rank: 3, Name: "General Priesthood Session"},
	{Code: "sun_am", Rank: 4, Name: "Sunday Morning Session"},
	{Code: "sun_pm", Rank: 5, Name: "Sunday Afternoon Session"},
}

// DefaultSessions returns the standard five-session table. Each session's
// English name is registered as a label.
func DefaultSessions() SessionTable {
	t, _ := NewSessionTable(defaultSessions, nil)
	return t
}

// NewSessionTable builds a table from sessions and a label→code map.
// Session names are registered as labels automatically. Codes must be
// unique, ranks must be unique, and every label must map to a known code.
func NewSessionTable(sessions []Session, labels map[string]string) (SessionTable, error) {
	t := SessionTable{
		byCode:  make(map[string]Session, len(sessions)),
		byLabel: make(map[string]string, len(sessions)+len(labels)),
	}
	ranks := make(map[int]string, len(sessions))
	for _, s := range sessions {
		code := strings.TrimSpace(s.Code)
		if code == "" {
			return SessionTable{}, fmt.Errorf("%w: empty session code", ErrInvalidOptions)
		}
		if _, dup := t.byCode[code]; dup {
			return SessionTable{}, fmt.Errorf("%w: duplicate session code %q", ErrInvalidOptions, code)
		}
		if other, dup := ranks[s.Rank]; dup {
			return SessionTable{}, fmt.Errorf("%w: sessions %q and %q share rank %d", ErrInvalidOptions, other, code, s.Rank)
		}
		s.Code = code
		ranks[s.Rank] = code
		t.byCode[code] = s
		if s.Name != "" {
			t.byLabel[normalizeLabel(s.Name)] = code
		}
	}
	for label, code := range labels {
		if _, ok := t.byCode[code]; !ok {
			return SessionTable{}, fmt.Errorf("%w: label %q maps to unknown session %q", ErrInvalidOptions, label, code)
		}
		t.byLabel[normalizeLabel(label)] = code
	}
	return t, nil
}

// Lookup returns the session registered under code.
func (t SessionTable) Lookup(code string) (Session, bool) {
	s, ok := t.byCode[code]
	return s, ok
}

// Rank returns the ordering rank of code; ok is false for unknown codes.
func (t SessionTable) Rank(code string) (rank int, ok bool) {
	s, ok := t.byCode[code]
	return s.Rank, ok
}

// Resolve maps a localised session label (e.g., "Vasárnap délelőtti ülés")
// to its session code. Matching ignores case and surrounding whitespace.
func (t SessionTable) Resolve(label string) (string, bool) {
	code, ok := t.byLabel[normalizeLabel(label)]
	return code, ok
}

// Len returns the number of registered sessions.
func (t SessionTable) Len() int { return len(t.byCode) }

// Sessions returns the sessions sorted by rank.
func (t SessionTable) Sessions() []Session {
	out := make([]Session, 0, len(t.byCode))
	for _, s := range t.byCode {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Rank < out[j].Rank })
	return out
}

func normalizeLabel(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

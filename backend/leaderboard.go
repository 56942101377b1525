package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// MatchRecord is one finished match as stored on the leaderboard.
type MatchRecord struct {
	Date           string `json:"date"`
	Winner         string `json:"winner"`
	Outcome        string `json:"outcome"`
	Moves          int    `json:"moves"`
	ElapsedSeconds int    `json:"elapsedSeconds"`
	BlackSeat      string `json:"blackSeat"`
	WhiteSeat      string `json:"whiteSeat"`
	BlackCaptures  int    `json:"blackCaptures"`
	WhiteCaptures  int    `json:"whiteCaptures"`
}

// RecordStore abstracts where leaderboard records live so the
// controller never touches the filesystem directly.
type RecordStore interface {
	Load() ([]MatchRecord, error)
	Save(records []MatchRecord) error
}

// FileRecordStore keeps records in a single JSON file.
type FileRecordStore struct {
	path string
}

func NewFileRecordStore(path string) *FileRecordStore {
	return &FileRecordStore{path: path}
}

func (s *FileRecordStore) Load() ([]MatchRecord, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read leaderboard: %w", err)
	}
	var records []MatchRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse leaderboard: %w", err)
	}
	return records, nil
}

func (s *FileRecordStore) Save(records []MatchRecord) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode leaderboard: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write leaderboard: %w", err)
	}
	return os.Rename(tmp, s.path)
}

// Leaderboard accumulates finished matches and persists them through a
// RecordStore. Safe for concurrent use.
type Leaderboard struct {
	mu      sync.Mutex
	store   RecordStore
	records []MatchRecord
}

func NewLeaderboard(store RecordStore) *Leaderboard {
	board := &Leaderboard{store: store}
	if store != nil {
		records, err := store.Load()
		if err != nil {
			log.Warnf("Leaderboard load failed: %v", err)
		}
		board.records = records
	}
	return board
}

func (l *Leaderboard) Add(record MatchRecord) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = append(l.records, record)
	if l.store != nil {
		if err := l.store.Save(l.records); err != nil {
			log.Warnf("Leaderboard save failed: %v", err)
		}
	}
}

// Top returns up to n records, fastest wins first.
func (l *Leaderboard) Top(n int) []MatchRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	sorted := make([]MatchRecord, len(l.records))
	copy(sorted, l.records)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Moves != sorted[j].Moves {
			return sorted[i].Moves < sorted[j].Moves
		}
		return sorted[i].ElapsedSeconds < sorted[j].ElapsedSeconds
	})
	if n > 0 && n < len(sorted) {
		sorted = sorted[:n]
	}
	return sorted
}

func (l *Leaderboard) All() []MatchRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]MatchRecord, len(l.records))
	copy(out, l.records)
	return out
}

// RecordFinishedMatch builds a MatchRecord from the terminal state of a
// match and appends it.
func (l *Leaderboard) RecordFinishedMatch(winner PlayerColor, reason string, state GameState, settings GameSettings, moves int, blackMs, whiteMs float64) {
	record := MatchRecord{
		Date:           time.Now().Format(time.RFC3339),
		Winner:         winner.String(),
		Outcome:        reason,
		Moves:          moves,
		ElapsedSeconds: int((blackMs + whiteMs) / 1000),
		BlackSeat:      settings.BlackSeat.String(),
		WhiteSeat:      settings.WhiteSeat.String(),
		BlackCaptures:  state.CapturedBlack,
		WhiteCaptures:  state.CapturedWhite,
	}
	l.Add(record)
}

package main

// LedgerEntry records one committed move together with everything
// replay needs: the captures it produced (never recomputed) and the
// clock snapshot of both players at commit time.
type LedgerEntry struct {
	Move              Move
	Player            PlayerColor
	CapturedPositions []Move
	CapturedCount     int
	ElapsedMs         float64
	BlackClockMs      float64
	WhiteClockMs      float64
	Forced            bool
}

func (e LedgerEntry) clone() LedgerEntry {
	clone := e
	clone.CapturedPositions = append([]Move(nil), e.CapturedPositions...)
	return clone
}

// Ledger is the append-only move record with a read head for replay.
// During live play the head sits at the tail. After a rewind, pushing
// a new move first discards everything beyond the head (branch-cut).
type Ledger struct {
	entries []LedgerEntry
	head    int
}

func (l *Ledger) Clear() {
	l.entries = nil
	l.head = 0
}

// Push appends an entry at the read head, truncating any stale tail
// left behind by a rewind.
func (l *Ledger) Push(entry LedgerEntry) {
	if l.head < len(l.entries) {
		l.entries = l.entries[:l.head]
	}
	l.entries = append(l.entries, entry)
	l.head = len(l.entries)
}

func (l Ledger) Size() int {
	return len(l.entries)
}

func (l Ledger) Head() int {
	return l.head
}

// Seek moves the read head; it reports the clamped position.
func (l *Ledger) Seek(index int) int {
	if index < 0 {
		index = 0
	}
	if index > len(l.entries) {
		index = len(l.entries)
	}
	l.head = index
	return l.head
}

func (l Ledger) At(index int) (LedgerEntry, bool) {
	if index < 0 || index >= len(l.entries) {
		return LedgerEntry{}, false
	}
	return l.entries[index].clone(), true
}

func (l Ledger) All() []LedgerEntry {
	out := make([]LedgerEntry, 0, len(l.entries))
	for _, entry := range l.entries {
		out = append(out, entry.clone())
	}
	return out
}

// Upto returns the entries before the read head, for replay.
func (l Ledger) Upto(index int) []LedgerEntry {
	if index < 0 {
		index = 0
	}
	if index > len(l.entries) {
		index = len(l.entries)
	}
	out := make([]LedgerEntry, 0, index)
	for _, entry := range l.entries[:index] {
		out = append(out, entry.clone())
	}
	return out
}

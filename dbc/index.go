package dbc

import (
	"github.com/mf4kit/mf4kit/internal/collision"
	"github.com/mf4kit/mf4kit/internal/hash"
)

// buildIndex populates db's lookup maps after parsing. Messages are keyed
// by name through a 64-bit hash rather than the raw string, the same
// identification scheme mebo uses for its metric IDs. A collision.Tracker
// watches for two distinct message names landing on the same hash; when
// that happens the later message silently wins the name-hash slot (message
// IDs remain an exact, collision-free index either way).
func (db *Database) buildIndex() {
	db.byID = make(map[uint32]*Message, len(db.Messages))
	db.byNameHash = make(map[uint64]*Message, len(db.Messages))

	tracker := collision.NewTracker()

	for _, msg := range db.Messages {
		db.byID[msg.ID] = msg

		h := hash.ID(msg.Name)
		db.byNameHash[h] = msg

		_ = tracker.Track(msg.Name, h)
	}

	db.nameHashCollision = tracker.HasCollision()
}

// MessageByID returns the message with the given arbitration ID, if any.
func (db *Database) MessageByID(id uint32) (*Message, bool) {
	msg, ok := db.byID[id]

	return msg, ok
}

// MessageByName returns the message with the given name, if any.
func (db *Database) MessageByName(name string) (*Message, bool) {
	msg, ok := db.byNameHash[hash.ID(name)]

	return msg, ok
}

// HasNameHashCollision reports whether two distinct message names hashed to
// the same key while the index was built. MessageByName is still safe to
// call in that case; it just resolves to whichever of the colliding
// messages was indexed last.
func (db *Database) HasNameHashCollision() bool { return db.nameHashCollision }

// Package store persists songs. FileStore keeps one binary file per song
// next to a gob index; DynamoMeta mirrors song metadata into DynamoDB.
package store

import (
	"time"

	"github.com/google/uuid"
	"github.com/jsphweid/engraver/model"
	"github.com/pkg/errors"
)

var ErrNotFound = errors.New("song not found")

// Entry is the index record of a stored song.
type Entry struct {
	ID      uuid.UUID
	Title   string
	Artist  string
	Bars    int
	Tracks  int
	Updated time.Time
}

func EntryOf(s *model.Song) Entry {
	return Entry{
		ID:      s.ID,
		Title:   s.Meta.Title,
		Artist:  s.Meta.Artist,
		Bars:    s.BarCount(),
		Tracks:  s.TrackCount(),
		Updated: time.Now().UTC().Truncate(time.Second),
	}
}

type Store interface {
	// Put saves the song under its ID, giving it a fresh one when unset.
	Put(s *model.Song) (uuid.UUID, error)
	Get(id uuid.UUID) (*model.Song, error)
	List() ([]Entry, error)
	Delete(id uuid.UUID) error
}

// MetaStore receives the index records of saved songs.
type MetaStore interface {
	PutMeta(e Entry) error
	GetMetas(ids []uuid.UUID) (map[uuid.UUID]Entry, error)
	DeleteMeta(id uuid.UUID) error
}

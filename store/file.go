package store

import (
	"bufio"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/jsphweid/engraver/constants"
	"github.com/jsphweid/engraver/debug"
	"github.com/jsphweid/engraver/model"
	"github.com/jsphweid/engraver/util"
	"github.com/pkg/errors"
)

// Index maps song ids to their entries; it is gob encoded in index.dat.
type Index = map[string]Entry

// FileStore writes <uuid>.dat song files into Dir. An optional MetaStore
// is told about every put and delete.
type FileStore struct {
	Dir  string
	Meta MetaStore

	mu sync.Mutex
}

func NewFileStore(dir string, meta MetaStore) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrapf(err, "creating store dir %s", dir)
	}
	return &FileStore{Dir: dir, Meta: meta}, nil
}

func (f *FileStore) songPath(id uuid.UUID) string {
	return filepath.Join(f.Dir, id.String()+constants.SongExt)
}

func (f *FileStore) indexPath() string {
	return filepath.Join(f.Dir, constants.IndexFilename)
}

func (f *FileStore) readIndex() (Index, error) {
	index, err := util.ReadBinary[Index](f.indexPath())
	if os.IsNotExist(errors.Cause(err)) {
		return Index{}, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "reading index")
	}
	if index == nil {
		index = Index{}
	}
	return index, nil
}

func (f *FileStore) Put(s *model.Song) (uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if err := f.writeSong(s); err != nil {
		return s.ID, err
	}
	index, err := f.readIndex()
	if err != nil {
		return s.ID, err
	}
	e := EntryOf(s)
	index[s.ID.String()] = e
	if err := util.CreateBinary(f.indexPath(), index); err != nil {
		return s.ID, errors.Wrap(err, "writing index")
	}
	debug.Log("store", "put %s (%d bars, %d tracks)", s.ID, e.Bars, e.Tracks)
	if f.Meta != nil {
		if err := f.Meta.PutMeta(e); err != nil {
			return s.ID, errors.Wrap(err, "storing metadata")
		}
	}
	return s.ID, nil
}

// writeSong goes through a temporary file so a failed write never
// replaces a good song.
func (f *FileStore) writeSong(s *model.Song) error {
	path := f.songPath(s.ID)
	tmp, err := os.CreateTemp(f.Dir, "song-*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	w := bufio.NewWriter(tmp)
	if err := model.WriteSong(w, s); err != nil {
		tmp.Close()
		return errors.Wrapf(err, "encoding song %s", s.ID)
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func (f *FileStore) Get(id uuid.UUID) (*model.Song, error) {
	file, err := os.Open(f.songPath(id))
	if os.IsNotExist(err) {
		return nil, errors.Wrapf(ErrNotFound, "song %s", id)
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return model.ReadSong(bufio.NewReader(file))
}

// List returns the index ordered by title, then id.
func (f *FileStore) List() ([]Entry, error) {
	f.mu.Lock()
	index, err := f.readIndex()
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	out := make([]Entry, 0, len(index))
	for _, key := range util.GetSortedKeys(index) {
		out = append(out, index[key])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

func (f *FileStore) Delete(id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	err := os.Remove(f.songPath(id))
	if os.IsNotExist(err) {
		return errors.Wrapf(ErrNotFound, "song %s", id)
	}
	if err != nil {
		return err
	}
	index, err := f.readIndex()
	if err != nil {
		return err
	}
	delete(index, id.String())
	if err := util.CreateBinary(f.indexPath(), index); err != nil {
		return errors.Wrap(err, "writing index")
	}
	debug.Log("store", "deleted %s", id)
	if f.Meta != nil {
		return f.Meta.DeleteMeta(id)
	}
	return nil
}

// Stats sums the song files on disk, as the report command prints them.
type Stats struct {
	Songs  int
	Bars   int
	Tracks int
	Bytes  int64
}

func (f *FileStore) Stats() (Stats, error) {
	var st Stats
	entries, err := f.List()
	if err != nil {
		return st, err
	}
	for _, e := range entries {
		info, err := os.Stat(f.songPath(e.ID))
		if err != nil {
			return st, err
		}
		st.Songs++
		st.Bars += e.Bars
		st.Tracks += e.Tracks
		st.Bytes += info.Size()
	}
	return st, nil
}

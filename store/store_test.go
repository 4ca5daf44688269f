package store

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"
	"github.com/google/uuid"
	"github.com/jsphweid/engraver/model"
	"github.com/jsphweid/engraver/theory"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSong(t *testing.T, title string, bars int) *model.Song {
	s := model.NewSong()
	s.Meta.Title = title
	for i := 0; i < bars; i++ {
		require.NoError(t, s.AppendBar(model.NewBar(theory.CommonTime, theory.KeySignature{})))
	}
	tr := model.NewTrack("Lead", model.TrackStandard)
	require.NoError(t, s.AppendTrack(tr))
	c := model.NewChord(theory.Half)
	require.NoError(t, c.AppendNote(model.NewNote(theory.Pitch{Step: theory.StepE, Octave: 4})))
	require.NoError(t, tr.Voice(0).Phrase(0).AppendChord(c))
	return s
}

// fakeDynamo keeps items in memory and answers at most pageSize keys per
// batch, leaving the rest unprocessed.
type fakeDynamo struct {
	dynamodbiface.DynamoDBAPI
	items    map[string]map[string]*dynamodb.AttributeValue
	pageSize int
	batches  []int
}

func newFakeDynamo() *fakeDynamo {
	return &fakeDynamo{items: map[string]map[string]*dynamodb.AttributeValue{}, pageSize: 1000}
}

func (f *fakeDynamo) PutItem(in *dynamodb.PutItemInput) (*dynamodb.PutItemOutput, error) {
	f.items[*in.Item["PK"].S] = in.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamo) DeleteItem(in *dynamodb.DeleteItemInput) (*dynamodb.DeleteItemOutput, error) {
	delete(f.items, *in.Key["PK"].S)
	return &dynamodb.DeleteItemOutput{}, nil
}

func (f *fakeDynamo) BatchGetItem(in *dynamodb.BatchGetItemInput) (*dynamodb.BatchGetItemOutput, error) {
	out := &dynamodb.BatchGetItemOutput{Responses: map[string][]map[string]*dynamodb.AttributeValue{}}
	for table, ka := range in.RequestItems {
		if len(ka.Keys) > 100 {
			return nil, fmt.Errorf("too many keys: %d", len(ka.Keys))
		}
		f.batches = append(f.batches, len(ka.Keys))
		keys := ka.Keys
		if len(keys) > f.pageSize {
			out.UnprocessedKeys = map[string]*dynamodb.KeysAndAttributes{table: {Keys: keys[f.pageSize:]}}
			keys = keys[:f.pageSize]
		}
		for _, k := range keys {
			if item, ok := f.items[*k["PK"].S]; ok {
				out.Responses[table] = append(out.Responses[table], item)
			}
		}
	}
	return out, nil
}

func TestFileStore(t *testing.T) {
	dir := t.TempDir()
	st, err := NewFileStore(dir, nil)
	require.NoError(t, err)
	assert := assert.New(t)

	list, err := st.List()
	require.NoError(t, err)
	assert.Empty(list)

	b := newSong(t, "Blues", 12)
	a := newSong(t, "Aria", 4)
	for _, s := range []*model.Song{b, a} {
		id, err := st.Put(s)
		require.NoError(t, err)
		assert.Equal(s.ID, id)
		assert.FileExists(filepath.Join(dir, id.String()+".dat"))
	}
	assert.FileExists(filepath.Join(dir, "index.dat"))

	back, err := st.Get(b.ID)
	require.NoError(t, err)
	assert.True(b.Equal(back))

	list, err = st.List()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal("Aria", list[0].Title)
	assert.Equal(12, list[1].Bars)
	assert.Equal(1, list[1].Tracks)

	b.Meta.Title = "Blues in F"
	_, err = st.Put(b)
	require.NoError(t, err)
	list, _ = st.List()
	assert.Len(list, 2)
	assert.Equal("Blues in F", list[1].Title)

	stats, err := st.Stats()
	require.NoError(t, err)
	assert.Equal(2, stats.Songs)
	assert.Equal(16, stats.Bars)
	assert.Greater(stats.Bytes, int64(0))

	require.NoError(t, st.Delete(a.ID))
	_, err = st.Get(a.ID)
	assert.True(errors.Is(err, ErrNotFound))
	assert.True(errors.Is(st.Delete(a.ID), ErrNotFound))
	list, _ = st.List()
	assert.Len(list, 1)

	matches, _ := filepath.Glob(filepath.Join(dir, "*.tmp"))
	assert.Empty(matches)
}

func TestFileStoreAssignsID(t *testing.T) {
	st, err := NewFileStore(t.TempDir(), nil)
	require.NoError(t, err)
	s := newSong(t, "Untitled", 1)
	s.ID = uuid.Nil
	id, err := st.Put(s)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, id)
	assert.Equal(t, id, s.ID)
}

func TestFileStoreRejectsCorruptSong(t *testing.T) {
	dir := t.TempDir()
	st, err := NewFileStore(dir, nil)
	require.NoError(t, err)
	id := uuid.New()
	require.NoError(t, os.WriteFile(filepath.Join(dir, id.String()+".dat"), []byte("garbage"), 0644))
	_, err = st.Get(id)
	assert.Error(t, err)
}

func TestFileStoreMirrorsMetadata(t *testing.T) {
	fake := newFakeDynamo()
	meta := &DynamoMeta{Client: fake, Table: "songs"}
	st, err := NewFileStore(t.TempDir(), meta)
	require.NoError(t, err)

	s := newSong(t, "Etude", 3)
	s.Meta.Artist = "Anon"
	_, err = st.Put(s)
	require.NoError(t, err)

	got, err := meta.GetMetas([]uuid.UUID{s.ID, uuid.New()})
	require.NoError(t, err)
	require.Len(t, got, 1)
	e := got[s.ID]
	assert := assert.New(t)
	assert.Equal("Etude", e.Title)
	assert.Equal("Anon", e.Artist)
	assert.Equal(3, e.Bars)
	assert.False(e.Updated.IsZero())

	require.NoError(t, st.Delete(s.ID))
	assert.Empty(fake.items)
}

func TestGetMetasBatches(t *testing.T) {
	tests := []struct {
		ids      int
		pageSize int
		batches  []int
	}{
		{0, 1000, nil},
		{100, 1000, []int{100}},
		{250, 1000, []int{100, 100, 50}},
		{120, 40, []int{100, 60, 20, 20}},
	}
	for _, test := range tests {
		t.Run(fmt.Sprintf("%d/%d", test.ids, test.pageSize), func(t *testing.T) {
			fake := newFakeDynamo()
			fake.pageSize = test.pageSize
			meta := &DynamoMeta{Client: fake, Table: "songs"}
			var ids []uuid.UUID
			for i := 0; i < test.ids; i++ {
				e := Entry{ID: uuid.New(), Title: fmt.Sprintf("song %d", i), Bars: i}
				require.NoError(t, meta.PutMeta(e))
				ids = append(ids, e.ID)
			}
			got, err := meta.GetMetas(ids)
			require.NoError(t, err)
			assert.Len(t, got, test.ids)
			assert.Equal(t, test.batches, fake.batches)
		})
	}
}

func TestFromItemNeedsKey(t *testing.T) {
	_, err := fromItem(map[string]*dynamodb.AttributeValue{})
	assert.Error(t, err)
	_, err = fromItem(map[string]*dynamodb.AttributeValue{"PK": {S: aws.String("nope")}})
	assert.Error(t, err)
}

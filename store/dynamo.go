package store

import (
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"
	"github.com/google/uuid"
	"github.com/jsphweid/engraver/constants"
	"github.com/jsphweid/engraver/debug"
	"github.com/jsphweid/engraver/util"
	"github.com/pkg/errors"
)

// DynamoMeta keeps one item per song keyed by PK = song id.
type DynamoMeta struct {
	Client dynamodbiface.DynamoDBAPI
	Table  string
}

// NewDynamoMeta connects to endpoint, usually a local DynamoDB.
func NewDynamoMeta(endpoint, region, table string) (*DynamoMeta, error) {
	if region == "" {
		region = constants.DefaultRegion
	}
	if table == "" {
		table = constants.DefaultTable
	}
	sess, err := session.NewSession(&aws.Config{
		Region:   aws.String(region),
		Endpoint: aws.String(endpoint),
	})
	if err != nil {
		return nil, errors.Wrap(err, "creating DynamoDB session")
	}
	return &DynamoMeta{Client: dynamodb.New(sess), Table: table}, nil
}

func (d *DynamoMeta) PutMeta(e Entry) error {
	_, err := d.Client.PutItem(&dynamodb.PutItemInput{
		TableName: aws.String(d.Table),
		Item:      toItem(e),
	})
	return errors.Wrapf(err, "putting metadata for %s", e.ID)
}

func (d *DynamoMeta) DeleteMeta(id uuid.UUID) error {
	_, err := d.Client.DeleteItem(&dynamodb.DeleteItemInput{
		TableName: aws.String(d.Table),
		Key:       key(id),
	})
	return errors.Wrapf(err, "deleting metadata for %s", id)
}

// GetMetas batches the lookups in groups of constants.BatchGetLimit.
// Unknown ids are missing from the result.
func (d *DynamoMeta) GetMetas(ids []uuid.UUID) (map[uuid.UUID]Entry, error) {
	res := make(map[uuid.UUID]Entry)
	for start := 0; start < len(ids); start += constants.BatchGetLimit {
		batch := ids[start:util.Min(start+constants.BatchGetLimit, len(ids))]
		var keys []map[string]*dynamodb.AttributeValue
		for _, id := range batch {
			keys = append(keys, key(id))
		}
		request := map[string]*dynamodb.KeysAndAttributes{d.Table: {Keys: keys}}
		for len(request) > 0 {
			out, err := d.Client.BatchGetItem(&dynamodb.BatchGetItemInput{RequestItems: request})
			if err != nil {
				return nil, errors.Wrap(err, "batch get from DynamoDB")
			}
			for _, item := range out.Responses[d.Table] {
				e, err := fromItem(item)
				if err != nil {
					return nil, err
				}
				res[e.ID] = e
			}
			request = out.UnprocessedKeys
		}
	}
	debug.Log("store", "fetched %d of %d metadata items", len(res), len(ids))
	return res, nil
}

func key(id uuid.UUID) map[string]*dynamodb.AttributeValue {
	return map[string]*dynamodb.AttributeValue{"PK": {S: aws.String(id.String())}}
}

func toItem(e Entry) map[string]*dynamodb.AttributeValue {
	item := key(e.ID)
	item["Title"] = &dynamodb.AttributeValue{S: aws.String(e.Title)}
	item["Artist"] = &dynamodb.AttributeValue{S: aws.String(e.Artist)}
	item["Bars"] = &dynamodb.AttributeValue{N: aws.String(strconv.Itoa(e.Bars))}
	item["Tracks"] = &dynamodb.AttributeValue{N: aws.String(strconv.Itoa(e.Tracks))}
	item["Updated"] = &dynamodb.AttributeValue{S: aws.String(e.Updated.Format(time.RFC3339))}
	return item
}

func fromItem(item map[string]*dynamodb.AttributeValue) (Entry, error) {
	var e Entry
	pk := item["PK"]
	if pk == nil || pk.S == nil {
		return e, errors.New("metadata item without PK")
	}
	id, err := uuid.Parse(*pk.S)
	if err != nil {
		return e, errors.Wrapf(err, "metadata item PK %q", *pk.S)
	}
	e.ID = id
	if v := item["Title"]; v != nil && v.S != nil {
		e.Title = *v.S
	}
	if v := item["Artist"]; v != nil && v.S != nil {
		e.Artist = *v.S
	}
	if v := item["Bars"]; v != nil && v.N != nil {
		e.Bars, _ = strconv.Atoi(*v.N)
	}
	if v := item["Tracks"]; v != nil && v.N != nil {
		e.Tracks, _ = strconv.Atoi(*v.N)
	}
	if v := item["Updated"]; v != nil && v.S != nil {
		e.Updated, _ = time.Parse(time.RFC3339, *v.S)
	}
	return e, nil
}

package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	dynamotypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/rs/zerolog"

	"github.com/rustyeddy/tradejournal/position"
)

// DynamoAPI is the part of *dynamodb.Client the store uses.
type DynamoAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// dynamoItem is one document. The table's partition key is pk
// ("<kind>#<id>").
type dynamoItem struct {
	PK         string    `dynamodbav:"pk"`
	Kind       string    `dynamodbav:"kind"`
	ID         string    `dynamodbav:"id"`
	PositionID string    `dynamodbav:"position_id"`
	Version    int64     `dynamodbav:"version"`
	Codec      string    `dynamodbav:"codec"`
	Body       []byte    `dynamodbav:"body"`
	UpdatedAt  time.Time `dynamodbav:"updated_at"`
}

type Dynamo struct {
	api   DynamoAPI
	table string
	codec Codec
	log   zerolog.Logger
	now   func() time.Time
}

// NewDynamo builds a client from the default AWS credential chain.
func NewDynamo(ctx context.Context, table, region string, codec Codec, log zerolog.Logger) (*Dynamo, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return NewDynamoWithClient(dynamodb.NewFromConfig(cfg), table, codec, log), nil
}

func NewDynamoWithClient(api DynamoAPI, table string, codec Codec, log zerolog.Logger) *Dynamo {
	return &Dynamo{
		api:   api,
		table: table,
		codec: codec,
		log:   log.With().Str("store", "dynamodb").Str("table", table).Logger(),
		now:   time.Now,
	}
}

func pk(kind, id string) string { return kind + "#" + id }

func keyOf(kind, id string) map[string]dynamotypes.AttributeValue {
	return map[string]dynamotypes.AttributeValue{
		"pk": &dynamotypes.AttributeValueMemberS{Value: pk(kind, id)},
	}
}

func (d *Dynamo) get(ctx context.Context, kind, label, id string) (dynamoItem, error) {
	out, err := d.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(d.table),
		Key:            keyOf(kind, id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return dynamoItem{}, err
	}
	if len(out.Item) == 0 {
		return dynamoItem{}, notFound(label, id)
	}
	var item dynamoItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return dynamoItem{}, fmt.Errorf("unmarshal %s %s: %w", label, id, err)
	}
	return item, nil
}

// scan pages through every item of kind, optionally limited to one position.
func (d *Dynamo) scan(ctx context.Context, kind, positionID string) ([]dynamoItem, error) {
	input := &dynamodb.ScanInput{
		TableName:                aws.String(d.table),
		FilterExpression:         aws.String("#k = :k"),
		ExpressionAttributeNames: map[string]string{"#k": "kind"},
		ExpressionAttributeValues: map[string]dynamotypes.AttributeValue{
			":k": &dynamotypes.AttributeValueMemberS{Value: kind},
		},
		ConsistentRead: aws.Bool(true),
	}
	if positionID != "" {
		input.FilterExpression = aws.String("#k = :k AND #p = :p")
		input.ExpressionAttributeNames["#p"] = "position_id"
		input.ExpressionAttributeValues[":p"] = &dynamotypes.AttributeValueMemberS{Value: positionID}
	}

	var items []dynamoItem
	pages := dynamodb.NewScanPaginator(d.api, input)
	for pages.HasMorePages() {
		page, err := pages.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		var batch []dynamoItem
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			return nil, err
		}
		items = append(items, batch...)
	}
	return items, nil
}

func (d *Dynamo) codecFor(name string) Codec {
	if c, err := CodecByName(name); err == nil {
		return c
	}
	return d.codec
}

func (d *Dynamo) GetPosition(ctx context.Context, id string) (position.Position, error) {
	item, err := d.get(ctx, kindPosition, "position", id)
	if err != nil {
		return position.Position{}, err
	}
	return d.decodePosition(item)
}

func (d *Dynamo) decodePosition(item dynamoItem) (position.Position, error) {
	p, err := decodePosition(d.codecFor(item.Codec), item.Body, d.log)
	if err != nil {
		return position.Position{}, fmt.Errorf("decode position %s: %w", item.ID, err)
	}
	p.Version = item.Version
	return p, nil
}

func (d *Dynamo) ListPositions(ctx context.Context) ([]position.Position, error) {
	items, err := d.scan(ctx, kindPosition, "")
	if err != nil {
		return nil, err
	}
	out := make([]position.Position, 0, len(items))
	for _, item := range items {
		p, err := d.decodePosition(item)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	sortPositions(out)
	return out, nil
}

func (d *Dynamo) PutPosition(ctx context.Context, p position.Position) (position.Position, error) {
	next := p.Clone()
	next.Version = p.Version + 1
	body, err := encodePosition(d.codec, next)
	if err != nil {
		return position.Position{}, err
	}
	av, err := attributevalue.MarshalMap(dynamoItem{
		PK:         pk(kindPosition, p.ID),
		Kind:       kindPosition,
		ID:         p.ID,
		PositionID: p.ID,
		Version:    next.Version,
		Codec:      d.codec.Name(),
		Body:       body,
		UpdatedAt:  d.now().UTC(),
	})
	if err != nil {
		return position.Position{}, fmt.Errorf("marshal position: %w", err)
	}

	input := &dynamodb.PutItemInput{
		TableName: aws.String(d.table),
		Item:      av,
	}
	if p.Version == 0 {
		input.ConditionExpression = aws.String("attribute_not_exists(pk)")
	} else {
		input.ConditionExpression = aws.String("#v = :v")
		input.ExpressionAttributeNames = map[string]string{"#v": "version"}
		input.ExpressionAttributeValues = map[string]dynamotypes.AttributeValue{
			":v": &dynamotypes.AttributeValueMemberN{Value: strconv.FormatInt(p.Version, 10)},
		}
	}

	if _, err := d.api.PutItem(ctx, input); err != nil {
		if isConditionFailed(err) {
			return position.Position{}, conflict(p.ID, p.Version)
		}
		return position.Position{}, err
	}
	return next, nil
}

func (d *Dynamo) DeletePosition(ctx context.Context, id string) error {
	return d.delete(ctx, kindPosition, "position", id)
}

func (d *Dynamo) GetJournalEntry(ctx context.Context, id string) (position.JournalEntry, error) {
	item, err := d.get(ctx, kindJournal, "journal entry", id)
	if err != nil {
		return position.JournalEntry{}, err
	}
	return decodeJournal(d.codecFor(item.Codec), item.Body)
}

func (d *Dynamo) ListJournalEntries(ctx context.Context, positionID string) ([]position.JournalEntry, error) {
	items, err := d.scan(ctx, kindJournal, positionID)
	if err != nil {
		return nil, err
	}
	out := make([]position.JournalEntry, 0, len(items))
	for _, item := range items {
		e, err := decodeJournal(d.codecFor(item.Codec), item.Body)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	sortJournal(out)
	return out, nil
}

func (d *Dynamo) PutJournalEntry(ctx context.Context, e position.JournalEntry) error {
	body, err := encodeJournal(d.codec, e)
	if err != nil {
		return err
	}
	av, err := attributevalue.MarshalMap(dynamoItem{
		PK:         pk(kindJournal, e.ID),
		Kind:       kindJournal,
		ID:         e.ID,
		PositionID: e.PositionID,
		Codec:      d.codec.Name(),
		Body:       body,
		UpdatedAt:  d.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal journal entry: %w", err)
	}
	_, err = d.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(d.table),
		Item:      av,
	})
	return err
}

func (d *Dynamo) DeleteJournalEntry(ctx context.Context, id string) error {
	return d.delete(ctx, kindJournal, "journal entry", id)
}

func (d *Dynamo) DeleteJournalEntriesByPosition(ctx context.Context, positionID string) (int, error) {
	items, err := d.scan(ctx, kindJournal, positionID)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, item := range items {
		err := d.delete(ctx, kindJournal, "journal entry", item.ID)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

func (d *Dynamo) delete(ctx context.Context, kind, label, id string) error {
	_, err := d.api.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           aws.String(d.table),
		Key:                 keyOf(kind, id),
		ConditionExpression: aws.String("attribute_exists(pk)"),
	})
	if isConditionFailed(err) {
		return notFound(label, id)
	}
	return err
}

func (d *Dynamo) Close() error { return nil }

func isConditionFailed(err error) bool {
	var ccf *dynamotypes.ConditionalCheckFailedException
	return errors.As(err, &ccf)
}

package store

import (
	"context"
	"sort"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	dynamotypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// fakeDynamo understands exactly the condition and filter expressions the
// Dynamo store sends. Scans return pages of two items.
type fakeDynamo struct {
	mu    sync.Mutex
	items map[string]map[string]dynamotypes.AttributeValue
	scans int
}

func newFakeDynamo() *fakeDynamo {
	return &fakeDynamo{items: map[string]map[string]dynamotypes.AttributeValue{}}
}

func sAttr(item map[string]dynamotypes.AttributeValue, name string) string {
	if v, ok := item[name].(*dynamotypes.AttributeValueMemberS); ok {
		return v.Value
	}
	return ""
}

func nAttr(item map[string]dynamotypes.AttributeValue, name string) string {
	if v, ok := item[name].(*dynamotypes.AttributeValueMemberN); ok {
		return v.Value
	}
	return ""
}

func conditionFailed() error {
	return &dynamotypes.ConditionalCheckFailedException{Message: aws.String("The conditional request failed")}
}

func (f *fakeDynamo) GetItem(ctx context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return &dynamodb.GetItemOutput{Item: f.items[sAttr(in.Key, "pk")]}, nil
}

func (f *fakeDynamo) PutItem(ctx context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := sAttr(in.Item, "pk")
	cur, exists := f.items[key]
	switch aws.ToString(in.ConditionExpression) {
	case "":
	case "attribute_not_exists(pk)":
		if exists {
			return nil, conditionFailed()
		}
	case "#v = :v":
		if !exists || nAttr(cur, in.ExpressionAttributeNames["#v"]) != nAttr(in.ExpressionAttributeValues, ":v") {
			return nil, conditionFailed()
		}
	default:
		panic("unexpected condition " + aws.ToString(in.ConditionExpression))
	}
	f.items[key] = in.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamo) DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := sAttr(in.Key, "pk")
	if _, ok := f.items[key]; !ok && aws.ToString(in.ConditionExpression) == "attribute_exists(pk)" {
		return nil, conditionFailed()
	}
	delete(f.items, key)
	return &dynamodb.DeleteItemOutput{}, nil
}

func (f *fakeDynamo) Scan(ctx context.Context, in *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scans++

	kind := sAttr(in.ExpressionAttributeValues, ":k")
	pos := sAttr(in.ExpressionAttributeValues, ":p")

	keys := make([]string, 0, len(f.items))
	for k, item := range f.items {
		if kind != "" && sAttr(item, "kind") != kind {
			continue
		}
		if pos != "" && sAttr(item, "position_id") != pos {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	start := 0
	if after := sAttr(in.ExclusiveStartKey, "pk"); after != "" {
		start = sort.SearchStrings(keys, after)
		if start < len(keys) && keys[start] == after {
			start++
		}
	}
	end := start + 2
	if end > len(keys) {
		end = len(keys)
	}

	out := &dynamodb.ScanOutput{}
	for _, k := range keys[start:end] {
		out.Items = append(out.Items, f.items[k])
	}
	if end < len(keys) {
		out.LastEvaluatedKey = map[string]dynamotypes.AttributeValue{
			"pk": &dynamotypes.AttributeValueMemberS{Value: keys[end-1]},
		}
	}
	return out, nil
}

package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-retail-api/internal/domain"
)

// activityAPI is the slice of the DynamoDB client the repo needs.
type activityAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// ActivityRepo provides append and windowed queries over the activity log.
// PK: entry_id. GSI email-created_at-index: email (hash) + created_at (range),
// stored RFC3339 UTC so lexicographic range conditions are chronological.
type ActivityRepo struct {
	client    activityAPI
	tableName string
}

func NewActivityRepo(client *dynamodb.Client, tableName string) *ActivityRepo {
	return &ActivityRepo{client: client, tableName: tableName}
}

func (r *ActivityRepo) Append(ctx context.Context, e *domain.ActivityLogEntry) error {
	item, err := attributevalue.MarshalMap(e)
	if err != nil {
		return fmt.Errorf("marshal activity entry: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

// CountSince returns how many entries with the given action exist for the
// email at or after since.
func (r *ActivityRepo) CountSince(ctx context.Context, email, action string, since time.Time) (int, error) {
	entries, err := r.querySince(ctx, email, since, true)
	if err != nil {
		return 0, err
	}
	n := 0
	for i := range entries {
		if entries[i].Action == action {
			n++
		}
	}
	return n, nil
}

// MostRecentSince returns the newest entry with the given action for the
// email at or after since, or ErrNotFound.
func (r *ActivityRepo) MostRecentSince(ctx context.Context, email, action string, since time.Time) (*domain.ActivityLogEntry, error) {
	entries, err := r.querySince(ctx, email, since, false)
	if err != nil {
		return nil, err
	}
	for i := range entries {
		if entries[i].Action == action {
			return &entries[i], nil
		}
	}
	return nil, fmt.Errorf("no matching activity: %w", domain.ErrNotFound)
}

// OldestSince returns the oldest matching entry in the window, used to derive
// when the rolling ceiling frees up.
func (r *ActivityRepo) OldestSince(ctx context.Context, email, action string, since time.Time) (*domain.ActivityLogEntry, error) {
	entries, err := r.querySince(ctx, email, since, true)
	if err != nil {
		return nil, err
	}
	for i := range entries {
		if entries[i].Action == action {
			return &entries[i], nil
		}
	}
	return nil, fmt.Errorf("no matching activity: %w", domain.ErrNotFound)
}

// querySince returns all entries for the email in the window, following
// LastEvaluatedKey so windows larger than a single 1MB page still count
// everything. The action filter happens client-side: a FilterExpression
// combined with Limit would silently under-count because DynamoDB filters
// after the page is cut.
func (r *ActivityRepo) querySince(ctx context.Context, email string, since time.Time, ascending bool) ([]domain.ActivityLogEntry, error) {
	input := &dynamodb.QueryInput{
		TableName:                aws.String(r.tableName),
		IndexName:                aws.String("email-created_at-index"),
		KeyConditionExpression:   aws.String("#e = :email AND #c >= :since"),
		ExpressionAttributeNames: map[string]string{"#e": "email", "#c": "created_at"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":email": &types.AttributeValueMemberS{Value: email},
			":since": &types.AttributeValueMemberS{Value: since.UTC().Format(time.RFC3339)},
		},
		ScanIndexForward: aws.Bool(ascending),
	}
	var entries []domain.ActivityLogEntry
	for {
		out, err := r.client.Query(ctx, input)
		if err != nil {
			return nil, err
		}
		var page []domain.ActivityLogEntry
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, err
		}
		entries = append(entries, page...)
		if len(out.LastEvaluatedKey) == 0 {
			break
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}
	return entries, nil
}

package dynamo

import (
	"context"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-retail-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pagedActivityClient serves pre-built query pages in order, echoing each
// page's LastEvaluatedKey so the caller has to follow it.
type pagedActivityClient struct {
	pages     []*dynamodb.QueryOutput
	calls     int
	startKeys []map[string]types.AttributeValue
}

func (c *pagedActivityClient) PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	return &dynamodb.PutItemOutput{}, nil
}

func (c *pagedActivityClient) Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	c.startKeys = append(c.startKeys, params.ExclusiveStartKey)
	out := c.pages[c.calls]
	c.calls++
	return out, nil
}

func activityItems(t *testing.T, entries ...domain.ActivityLogEntry) []map[string]types.AttributeValue {
	t.Helper()
	items := make([]map[string]types.AttributeValue, 0, len(entries))
	for _, e := range entries {
		item, err := attributevalue.MarshalMap(e)
		require.NoError(t, err)
		items = append(items, item)
	}
	return items
}

func resendEntry(id string, at time.Time) domain.ActivityLogEntry {
	return domain.ActivityLogEntry{
		EntryID:   id,
		Email:     "shopper@example.com",
		Action:    "otp_resent",
		CreatedAt: at,
	}
}

func TestCountSince_FollowsPagination(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	cursor := map[string]types.AttributeValue{
		"entry_id": &types.AttributeValueMemberS{Value: "e2"},
	}
	client := &pagedActivityClient{pages: []*dynamodb.QueryOutput{
		{
			Items: activityItems(t,
				resendEntry("e1", now.Add(-40*time.Minute)),
				resendEntry("e2", now.Add(-25*time.Minute)),
			),
			LastEvaluatedKey: cursor,
		},
		{
			Items: activityItems(t, resendEntry("e3", now.Add(-5*time.Minute))),
		},
	}}
	repo := &ActivityRepo{client: client, tableName: "activity_log"}

	n, err := repo.CountSince(context.Background(), "shopper@example.com", "otp_resent", now.Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	require.Equal(t, 2, client.calls)
	assert.Nil(t, client.startKeys[0])
	assert.Equal(t, cursor, client.startKeys[1])
}

func TestCountSince_FiltersActionAcrossPages(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	login := domain.ActivityLogEntry{
		EntryID:   "e9",
		Email:     "shopper@example.com",
		Action:    "login",
		CreatedAt: now.Add(-10 * time.Minute),
	}
	client := &pagedActivityClient{pages: []*dynamodb.QueryOutput{
		{
			Items:            activityItems(t, resendEntry("e1", now.Add(-30*time.Minute)), login),
			LastEvaluatedKey: map[string]types.AttributeValue{"entry_id": &types.AttributeValueMemberS{Value: "e9"}},
		},
		{
			Items: activityItems(t, resendEntry("e2", now.Add(-2*time.Minute))),
		},
	}}
	repo := &ActivityRepo{client: client, tableName: "activity_log"}

	n, err := repo.CountSince(context.Background(), "shopper@example.com", "otp_resent", now.Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestOldestSince_SinglePage(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	client := &pagedActivityClient{pages: []*dynamodb.QueryOutput{
		{Items: activityItems(t,
			resendEntry("e1", now.Add(-50*time.Minute)),
			resendEntry("e2", now.Add(-10*time.Minute)),
		)},
	}}
	repo := &ActivityRepo{client: client, tableName: "activity_log"}

	oldest, err := repo.OldestSince(context.Background(), "shopper@example.com", "otp_resent", now.Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, "e1", oldest.EntryID)
	assert.Equal(t, 1, client.calls)
}

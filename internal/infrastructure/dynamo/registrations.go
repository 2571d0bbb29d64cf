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

// verifiedGraceTTL is how long a verified record lingers before DynamoDB TTL
// removes it. Long enough for the issuing request to finish, short enough
// that the record can never satisfy another verify.
const verifiedGraceTTL = time.Minute

// RegistrationRepo manages pending OTP registrations. PK: email.
// A PutItem on an existing email replaces the prior unverified record, which
// gives the upsert-on-resend semantics for free.
type RegistrationRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewRegistrationRepo(client *dynamodb.Client, tableName string) *RegistrationRepo {
	return &RegistrationRepo{client: client, tableName: tableName}
}

func (r *RegistrationRepo) Upsert(ctx context.Context, p *domain.PendingRegistration) error {
	item, err := attributevalue.MarshalMap(p)
	if err != nil {
		return fmt.Errorf("marshal pending registration: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

// GetUnverifiedByEmail returns the live pending record for the email, or
// ErrNotFound when none exists or the record was already verified.
func (r *RegistrationRepo) GetUnverifiedByEmail(ctx context.Context, email string) (*domain.PendingRegistration, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("email", email),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("pending registration not found: %w", domain.ErrNotFound)
	}
	var p domain.PendingRegistration
	if err := attributevalue.UnmarshalMap(out.Item, &p); err != nil {
		return nil, err
	}
	if p.Verified {
		return nil, fmt.Errorf("registration already verified: %w", domain.ErrNotFound)
	}
	return &p, nil
}

// IncrementAttempts bumps the attempt counter with an ADD expression.
// The read-check-increment sequence across a whole verify call is still not
// transactional; two concurrent verifies can race past the ceiling by one.
func (r *RegistrationRepo) IncrementAttempts(ctx context.Context, email string) error {
	_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                aws.String(r.tableName),
		Key:                      strKey("email", email),
		UpdateExpression:         aws.String("ADD #a :one"),
		ExpressionAttributeNames: map[string]string{"#a": fieldAttempts},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":one": &types.AttributeValueMemberN{Value: "1"},
		},
	})
	return err
}

// MarkVerified flags the record verified and shortens its TTL to a grace
// window so a resend can never resurrect it.
func (r *RegistrationRepo) MarkVerified(ctx context.Context, email string) error {
	expr, names, values, err := buildUpdateExpr(map[string]interface{}{
		fieldVerified:  true,
		fieldExpiresAt: time.Now().Add(verifiedGraceTTL).Unix(),
	})
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("email", email),
		UpdateExpression:          aws.String(expr),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
	})
	return err
}

func (r *RegistrationRepo) Delete(ctx context.Context, email string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("email", email),
	})
	return err
}

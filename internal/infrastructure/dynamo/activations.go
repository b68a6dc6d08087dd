package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-profile-api/internal/domain"
)

// batchDeleteMax is the DynamoDB BatchWriteItem request limit.
const batchDeleteMax = 25

// ActivationRepo manages pending password-reset tickets.
// PK: activation_id; GSI email-created_at-index orders tickets per email
// by issuance time.
type ActivationRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewActivationRepo(client *dynamodb.Client, tableName string) *ActivationRepo {
	return &ActivationRepo{client: client, tableName: tableName}
}

func (r *ActivationRepo) Put(ctx context.Context, a *domain.Activation) error {
	item, err := attributevalue.MarshalMap(a)
	if err != nil {
		return fmt.Errorf("marshal activation: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

// FindByEmailAndCode returns tickets matching both email and code,
// newest-first. Multiple tickets can match when the same code was issued
// twice for one email; callers take the first.
func (r *ActivationRepo) FindByEmailAndCode(ctx context.Context, email, code string) ([]domain.Activation, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("email-created_at-index"),
		KeyConditionExpression: aws.String("#e = :email"),
		FilterExpression:       aws.String("#c = :code"),
		ExpressionAttributeNames: map[string]string{
			"#e": "email",
			"#c": "code",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":email": &types.AttributeValueMemberS{Value: email},
			":code":  &types.AttributeValueMemberS{Value: code},
		},
		ScanIndexForward: aws.Bool(false), // newest first
	})
	if err != nil {
		return nil, err
	}
	var activations []domain.Activation
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &activations); err != nil {
		return nil, err
	}
	return activations, nil
}

func (r *ActivationRepo) Delete(ctx context.Context, activationID string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("activation_id", activationID),
	})
	return err
}

// DeleteOlderThan removes every activation issued before cutoff,
// redeemed or not, and returns the number deleted. created_at is stored
// as RFC 3339 text so the comparison is a plain string filter.
func (r *ActivationRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	deleted := 0
	input := &dynamodb.ScanInput{
		TableName:                aws.String(r.tableName),
		FilterExpression:         aws.String("#ca < :cutoff"),
		ProjectionExpression:     aws.String("activation_id"),
		ExpressionAttributeNames: map[string]string{"#ca": "created_at"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":cutoff": &types.AttributeValueMemberS{Value: cutoff.UTC().Format(time.RFC3339Nano)},
		},
	}
	for {
		out, err := r.client.Scan(ctx, input)
		if err != nil {
			return deleted, err
		}
		ids := make([]string, 0, len(out.Items))
		for _, item := range out.Items {
			if v, ok := item["activation_id"].(*types.AttributeValueMemberS); ok {
				ids = append(ids, v.Value)
			}
		}
		n, err := r.batchDelete(ctx, ids)
		deleted += n
		if err != nil {
			return deleted, err
		}
		if out.LastEvaluatedKey == nil {
			return deleted, nil
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}
}

func (r *ActivationRepo) batchDelete(ctx context.Context, ids []string) (int, error) {
	deleted := 0
	for len(ids) > 0 {
		chunk := ids
		if len(chunk) > batchDeleteMax {
			chunk = chunk[:batchDeleteMax]
		}
		ids = ids[len(chunk):]

		reqs := make([]types.WriteRequest, 0, len(chunk))
		for _, id := range chunk {
			reqs = append(reqs, types.WriteRequest{
				DeleteRequest: &types.DeleteRequest{Key: strKey("activation_id", id)},
			})
		}
		_, err := r.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
			RequestItems: map[string][]types.WriteRequest{r.tableName: reqs},
		})
		if err != nil {
			return deleted, err
		}
		deleted += len(chunk)
	}
	return deleted, nil
}

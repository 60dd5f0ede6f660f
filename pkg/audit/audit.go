// Package audit registra as escritas feitas pelo console (quem, o quê,
// quando e com que resultado) para a tela de monitoramento.
package audit

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/google/uuid"
)

// partition agrupa todos os registros do console na mesma chave de partição.
const partition = "console"

// Record é uma escrita auditada.
type Record struct {
	PK      string    `dynamodbav:"pk" json:"-"`
	SK      string    `dynamodbav:"sk" json:"-"`
	ID      string    `dynamodbav:"id" json:"id"`
	At      time.Time `dynamodbav:"at" json:"at"`
	User    string    `dynamodbav:"user" json:"user"`
	Action  string    `dynamodbav:"action" json:"action"`
	Target  string    `dynamodbav:"target,omitempty" json:"target,omitempty"`
	Success bool      `dynamodbav:"success" json:"success"`
	Message string    `dynamodbav:"message,omitempty" json:"message,omitempty"`
}

// Log grava e lista registros de auditoria.
type Log interface {
	Record(ctx context.Context, r Record) error
	Recent(ctx context.Context, limit int) ([]Record, error)
}

// DynamoDBClient é o subconjunto do cliente usado pelo DynamoLog.
type DynamoDBClient interface {
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, in *dynamodb.QueryInput, opts ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// DynamoLog guarda os registros em uma tabela com chave pk/sk. A chave de
// ordenação começa pelo instante, então a consulta em ordem reversa traz os
// mais recentes primeiro.
type DynamoLog struct {
	client DynamoDBClient
	table  string
	now    func() time.Time
}

func NewDynamoLog(client DynamoDBClient, table string) *DynamoLog {
	return &DynamoLog{client: client, table: table, now: time.Now}
}

func (l *DynamoLog) Record(ctx context.Context, r Record) error {
	r = stamp(r, l.now)
	r.PK = partition
	r.SK = r.At.UTC().Format(time.RFC3339Nano) + "#" + r.ID

	item, err := attributevalue.MarshalMap(r)
	if err != nil {
		return fmt.Errorf("audit: marshal failed: %w", err)
	}
	_, err = l.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(l.table),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("audit: put failed: %w", err)
	}
	return nil
}

func (l *DynamoLog) Recent(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 20
	}
	expr, err := expression.NewBuilder().
		WithKeyCondition(expression.KeyEqual(expression.Key("pk"), expression.Value(partition))).
		Build()
	if err != nil {
		return nil, fmt.Errorf("audit: build expression failed: %w", err)
	}

	out, err := l.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(l.table),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ScanIndexForward:          aws.Bool(false),
		Limit:                     aws.Int32(int32(limit)),
	})
	if err != nil {
		return nil, fmt.Errorf("audit: query failed: %w", err)
	}

	var records []Record
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &records); err != nil {
		return nil, fmt.Errorf("audit: unmarshal failed: %w", err)
	}
	return records, nil
}

// MemoryLog mantém os últimos registros em memória; usado sem tabela
// configurada.
type MemoryLog struct {
	mu      sync.Mutex
	size    int
	records []Record
	now     func() time.Time
}

func NewMemoryLog(size int) *MemoryLog {
	if size <= 0 {
		size = 100
	}
	return &MemoryLog{size: size, now: time.Now}
}

func (l *MemoryLog) Record(_ context.Context, r Record) error {
	if r.Action == "" {
		return errors.New("audit: action vazia")
	}
	r = stamp(r, l.now)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = append(l.records, r)
	if len(l.records) > l.size {
		l.records = l.records[len(l.records)-l.size:]
	}
	return nil
}

func (l *MemoryLog) Recent(_ context.Context, limit int) ([]Record, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if limit <= 0 || limit > len(l.records) {
		limit = len(l.records)
	}
	out := make([]Record, 0, limit)
	for i := len(l.records) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, l.records[i])
	}
	return out, nil
}

func stamp(r Record, now func() time.Time) Record {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.At.IsZero() {
		r.At = now()
	}
	return r
}

package cloud

import (
	"context"
	"fmt"
	"io"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type S3Client interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Archive guarda cópias de arquivos gerados pelo console em um bucket.
type Archive struct {
	client S3Client
	bucket string
	prefix string
}

func NewArchive(client S3Client, bucket, prefix string) *Archive {
	return &Archive{client: client, bucket: bucket, prefix: prefix}
}

// Put envia body para <prefix>/<name> e devolve a chave do objeto. body
// precisa permitir Seek para que o SDK calcule o checksum.
func (a *Archive) Put(ctx context.Context, name string, body io.ReadSeeker, contentType string) (string, error) {
	key := path.Join(a.prefix, name)
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("erro ao enviar %s para o S3: %w", key, err)
	}
	return key, nil
}

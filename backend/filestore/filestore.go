// Package filestore keeps uploaded images and hands back the URL they are
// served from.
package filestore

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/minio/minio-go/v7"
)

type Store interface {
	Put(ctx context.Context, name, contentType string, r io.Reader, size int64) (string, error)
}

// Local writes files under Dir; the server exposes Dir at BaseURL.
type Local struct {
	Dir     string
	BaseURL string
}

func NewLocal(dir, baseURL string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Local{Dir: dir, BaseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (l *Local) Put(_ context.Context, name, _ string, r io.Reader, _ int64) (string, error) {
	dst, err := os.Create(filepath.Join(l.Dir, filepath.Base(name)))
	if err != nil {
		return "", fmt.Errorf("create %s: %w", name, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, r); err != nil {
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	return l.BaseURL + "/" + filepath.Base(name), nil
}

type Minio struct {
	client *minio.Client
	bucket string
}

func NewMinio(client *minio.Client, bucket string) *Minio {
	return &Minio{client: client, bucket: bucket}
}

type policyStatement struct {
	Effect    string              `json:"Effect"`
	Principal map[string][]string `json:"Principal"`
	Action    []string            `json:"Action"`
	Resource  []string            `json:"Resource"`
}

type bucketPolicy struct {
	Version   string            `json:"Version"`
	Statement []policyStatement `json:"Statement"`
}

// publicReadPolicy lets anyone GET objects in bucket, but not list or write.
func publicReadPolicy(bucket string) (string, error) {
	p := bucketPolicy{
		Version: "2012-10-17",
		Statement: []policyStatement{{
			Effect:    "Allow",
			Principal: map[string][]string{"AWS": {"*"}},
			Action:    []string{"s3:GetObject"},
			Resource:  []string{"arn:aws:s3:::" + bucket + "/*"},
		}},
	}
	buf, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	return string(buf), nil
}

// OpenMinio creates bucket if needed and makes its objects publicly
// readable, since Put hands out plain object URLs.
func OpenMinio(ctx context.Context, client *minio.Client, bucket string) (*Minio, error) {
	ok, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", bucket, err)
	}
	if !ok {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", bucket, err)
		}
	}
	policy, err := publicReadPolicy(bucket)
	if err != nil {
		return nil, err
	}
	if err := client.SetBucketPolicy(ctx, bucket, policy); err != nil {
		return nil, fmt.Errorf("set policy on %s: %w", bucket, err)
	}
	return NewMinio(client, bucket), nil
}

func (m *Minio) Put(ctx context.Context, name, contentType string, r io.Reader, size int64) (string, error) {
	_, err := m.client.PutObject(ctx, m.bucket, name, r, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", name, err)
	}
	u := m.client.EndpointURL()
	return fmt.Sprintf("%s://%s/%s/%s", u.Scheme, u.Host, m.bucket, name), nil
}

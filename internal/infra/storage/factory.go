package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/bryanwahyu/codeguard/internal/config"
	domain "github.com/bryanwahyu/codeguard/internal/domain/analyses"
)

// Open returns the configured report store, nil for driver "none".
func Open(ctx context.Context, cfg *config.Config) (domain.ReportStore, error) {
	s := cfg.Storage
	switch s.Driver {
	case "", "none":
		return nil, nil
	case "minio":
		st, err := NewMinio(ctx, s.Endpoint, s.Region, s.Bucket, s.AccessKey, s.SecretKey, s.UseSSL)
		if err != nil {
			return nil, err
		}
		return st, nil
	case "s3":
		st, err := NewS3(ctx, s.Endpoint, s.Region, s.Bucket, s.AccessKey, s.SecretKey, s.UseSSL)
		if err != nil {
			return nil, err
		}
		return st, nil
	}
	return nil, fmt.Errorf("unknown storage driver %q", s.Driver)
}

// normalizeEndpoint removes protocol prefix and path from endpoint
func normalizeEndpoint(endpoint string) string {
	endpoint = strings.TrimPrefix(endpoint, "https://")
	endpoint = strings.TrimPrefix(endpoint, "http://")
	if idx := strings.Index(endpoint, "/"); idx != -1 {
		endpoint = endpoint[:idx]
	}
	return endpoint
}

func scheme(useSSL bool) string {
	if useSSL {
		return "https"
	}
	return "http"
}

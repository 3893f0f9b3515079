package framestore

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/rs/zerolog"
)

// Config contains credentials required to talk to Cloudinary.
type Config struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
}

// Service stores proctoring frames in Cloudinary.
type Service struct {
	client *cloudinary.Cloudinary
	folder string
	logger zerolog.Logger
}

// New constructs a frame store backed by Cloudinary.
func New(cfg Config, logger zerolog.Logger) (*Service, error) {
	if cfg.CloudName == "" || cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, fmt.Errorf("cloudinary credentials must be provided")
	}

	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary: %w", err)
	}

	return &Service{
		client: cld,
		folder: cfg.Folder,
		logger: logger.With().Str("component", "framestore").Logger(),
	}, nil
}

// Upload sends the frame to Cloudinary and returns a secure URL.
func (s *Service) Upload(ctx context.Context, name string, reader io.Reader) (string, error) {
	folder := strings.Trim(s.folder, "/")
	publicID := buildPublicID(name)

	params := uploader.UploadParams{
		Folder:       folder,
		PublicID:     publicID,
		ResourceType: "image",
	}

	result, err := s.client.Upload.Upload(ctx, reader, params)
	if err != nil {
		return "", fmt.Errorf("failed to upload frame: %w", err)
	}

	s.logger.Info().Str("public_id", result.PublicID).Msg("frame uploaded to cloudinary")

	return result.SecureURL, nil
}

// Destroy removes a previously uploaded frame by its URL.
func (s *Service) Destroy(ctx context.Context, frameURL string) error {
	publicID, err := publicIDFromURL(frameURL)
	if err != nil {
		return err
	}

	_, err = s.client.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:     publicID,
		ResourceType: "image",
	})
	if err != nil {
		return fmt.Errorf("failed to destroy frame: %w", err)
	}

	s.logger.Info().Str("public_id", publicID).Msg("frame removed from cloudinary")

	return nil
}

func buildPublicID(name string) string {
	base := strings.TrimSuffix(name, path.Ext(name))
	base = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			return r
		}
		return '-'
	}, base)

	base = strings.Trim(base, "-")
	if base == "" {
		base = fmt.Sprintf("frame-%d", time.Now().Unix())
	}

	return fmt.Sprintf("%s-%d", base, time.Now().Unix())
}

// publicIDFromURL extracts the Cloudinary public ID from a delivery URL.
// Delivery URLs look like
// https://res.cloudinary.com/<cloud>/image/upload/v123/<folder>/<id>.<ext>.
func publicIDFromURL(frameURL string) (string, error) {
	parsed, err := url.Parse(frameURL)
	if err != nil {
		return "", fmt.Errorf("invalid frame url: %w", err)
	}

	segments := strings.Split(strings.Trim(parsed.Path, "/"), "/")
	uploadIdx := -1
	for i, segment := range segments {
		if segment == "upload" {
			uploadIdx = i
			break
		}
	}

	if uploadIdx < 0 || uploadIdx+1 >= len(segments) {
		return "", fmt.Errorf("frame url has no upload segment: %s", frameURL)
	}

	rest := segments[uploadIdx+1:]
	if len(rest) > 0 && strings.HasPrefix(rest[0], "v") {
		rest = rest[1:]
	}

	if len(rest) == 0 {
		return "", fmt.Errorf("frame url has no public id: %s", frameURL)
	}

	joined := strings.Join(rest, "/")
	return strings.TrimSuffix(joined, path.Ext(joined)), nil
}

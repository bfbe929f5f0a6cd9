package utils

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"regexp"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

const cloudinaryHost = "res.cloudinary.com"

var versionSegment = regexp.MustCompile(`^v\d+$`)

// ImageStore keeps listing photos.
type ImageStore interface {
	Upload(ctx context.Context, file io.Reader, filename string) (string, error)
	Delete(ctx context.Context, imageURL string) error
	Owns(imageURL string) bool
}

type Cloudinary struct {
	cld    *cloudinary.Cloudinary
	folder string
}

func NewCloudinary(cloudName, apiKey, apiSecret, folder string) (*Cloudinary, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("cloudinary config error: %w", err)
	}
	return &Cloudinary{cld: cld, folder: folder}, nil
}

// Upload stores the image in the configured folder and returns its https URL.
func (c *Cloudinary) Upload(ctx context.Context, file io.Reader, filename string) (string, error) {
	uploadResp, err := c.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		Folder: c.folder,
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", filename, err)
	}
	if uploadResp.SecureURL == "" {
		return "", fmt.Errorf("upload %s: no url returned", filename)
	}

	return uploadResp.SecureURL, nil
}

// Delete destroys the image behind a full delivery URL.
func (c *Cloudinary) Delete(ctx context.Context, imageURL string) error {
	publicID, err := extractPublicID(imageURL)
	if err != nil {
		return fmt.Errorf("could not extract public ID: %w", err)
	}

	_, err = c.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID: publicID,
	})
	if err != nil {
		return fmt.Errorf("delete error: %w", err)
	}

	return nil
}

func (c *Cloudinary) Owns(imageURL string) bool {
	u, err := url.Parse(imageURL)
	return err == nil && u.Host == cloudinaryHost
}

// extractPublicID maps
// https://res.cloudinary.com/demo/image/upload/v1234567890/foodshare/abc123.jpg
// to foodshare/abc123.
func extractPublicID(imageURL string) (string, error) {
	parsedURL, err := url.Parse(imageURL)
	if err != nil {
		return "", err
	}

	parts := strings.Split(strings.Trim(parsedURL.Path, "/"), "/")
	upload := -1
	for i, p := range parts {
		if p == "upload" {
			upload = i
			break
		}
	}
	if upload < 0 || upload == len(parts)-1 {
		return "", fmt.Errorf("invalid cloudinary URL format")
	}

	rest := parts[upload+1:]
	if len(rest) > 1 && versionSegment.MatchString(rest[0]) {
		rest = rest[1:]
	}

	last := rest[len(rest)-1]
	rest[len(rest)-1] = strings.TrimSuffix(last, path.Ext(last))
	return path.Join(rest...), nil
}

package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/anjiri1684/studlyf_network/apperrors"
	"github.com/anjiri1684/studlyf_network/utils"
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

type CloudinaryStore struct {
	cld *cloudinary.Cloudinary
}

func NewCloudinaryStore(cloudinaryURL string) (*CloudinaryStore, error) {
	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary: %w", err)
	}
	return &CloudinaryStore{cld: cld}, nil
}

func (s *CloudinaryStore) Put(ctx context.Context, folder string, a Asset) (*StoredAsset, error) {
	publicID := strings.TrimSuffix(utils.ObjectName(a.Name), "."+extension(a.Name))
	res, err := s.cld.Upload.Upload(ctx, a.Body, uploader.UploadParams{
		Folder:       folder,
		PublicID:     publicID,
		ResourceType: "auto",
	})
	if err != nil {
		return nil, apperrors.Internal(err, "failed to upload asset")
	}
	if res.Error.Message != "" {
		return nil, apperrors.Internal(fmt.Errorf("%s", res.Error.Message), "failed to upload asset")
	}

	size := a.Size
	if res.Bytes > 0 {
		size = int64(res.Bytes)
	}
	return &StoredAsset{
		URL:         res.SecureURL,
		Name:        a.Name,
		ContentType: a.ContentType,
		Size:        size,
	}, nil
}

func extension(name string) string {
	i := strings.LastIndex(name, ".")
	if i < 0 {
		return ""
	}
	return strings.ToLower(name[i+1:])
}

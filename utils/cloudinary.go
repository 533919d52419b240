package utils

import (
	"context"
	"errors"
	"io"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"vitclubs/config"
)

// Transformations applied at upload time. Cloudinary re-encodes the image
// server side, so the stored URL always points at the constrained variant.
const (
	// ProfileTransformation crops to a 500x500 cover fit.
	ProfileTransformation = "c_fill,w_500,h_500,q_auto:80"
	// PostTransformation constrains the image to fit within 800x800.
	PostTransformation = "c_limit,w_800,h_800,q_auto:80"
)

// UploadImage sends an image to Cloudinary with the given transformation and
// returns the hosted URL.
func UploadImage(ctx context.Context, file io.Reader, folder, publicID, transformation string) (string, error) {
	cfg := config.Get()
	if cfg.CloudinaryURL == "" {
		return "", errors.New("cloudinary not configured")
	}

	cld, err := cloudinary.NewFromURL(cfg.CloudinaryURL)
	if err != nil {
		return "", err
	}

	result, err := cld.Upload.Upload(ctx, file, uploader.UploadParams{
		Folder:         folder,
		PublicID:       publicID,
		Transformation: transformation,
	})
	if err != nil {
		return "", err
	}
	if result.SecureURL == "" {
		return "", errors.New("upload returned no URL")
	}
	return result.SecureURL, nil
}

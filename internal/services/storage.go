package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"net/url"
	"os"
	"path"
	"strings"
	"time"

	"ecohub_back_end/internal/database"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
)

// Préfixes d'objets dans le bucket MinIO
const (
	productImagePrefix = "products"
	vendorDocPrefix    = "vendors"
)

func minioBucket() string {
	bucket := os.Getenv("MINIO_BUCKET")
	if bucket == "" {
		bucket = "ecohub-media"
	}
	return bucket
}

// UploadProductImage stocke une image produit dans MinIO et retourne son URL.
// Le nom d'objet est préfixé par l'id produit, suffixe aléatoire contre les
// collisions de noms de fichiers.
func UploadProductImage(ctx context.Context, productID string, file *multipart.FileHeader) (string, error) {
	return uploadObject(ctx, fmt.Sprintf("%s/%s/%s-%s", productImagePrefix, productID, uuid.NewString()[:8], file.Filename), file)
}

// UploadVendorDocument stocke un justificatif vendeur (licence, certificat
// de durabilité) et retourne son URL
func UploadVendorDocument(ctx context.Context, vendorID, kind string, file *multipart.FileHeader) (string, error) {
	return uploadObject(ctx, fmt.Sprintf("%s/%s/%s%s", vendorDocPrefix, vendorID, kind, path.Ext(file.Filename)), file)
}

func uploadObject(ctx context.Context, objectName string, file *multipart.FileHeader) (string, error) {
	if database.MinIO == nil {
		return "", fmt.Errorf("MinIO non initialisé")
	}
	f, err := file.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()

	bucket := minioBucket()
	_, err = database.MinIO.PutObject(ctx, bucket, objectName, f, file.Size,
		minio.PutObjectOptions{ContentType: file.Header.Get("Content-Type")})
	if err != nil {
		return "", err
	}

	scheme := "http"
	if os.Getenv("MINIO_USE_SSL") == "true" {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, os.Getenv("MINIO_ENDPOINT"), bucket, objectName), nil
}

// GenerateSignedURL produit une URL de lecture à durée limitée pour un
// objet du bucket (justificatifs vendeurs, réservés aux admins)
func GenerateSignedURL(ctx context.Context, objectURL string, duration time.Duration) (string, error) {
	if database.MinIO == nil {
		return "", fmt.Errorf("MinIO non initialisé")
	}
	bucket := minioBucket()

	// Ne garder que le chemin de l'objet relatif au bucket
	key := objectURL
	if i := strings.Index(objectURL, "/"+bucket+"/"); i >= 0 {
		key = objectURL[i+len(bucket)+2:]
	}

	presignedURL, err := database.MinIO.PresignedGetObject(ctx, bucket, key, duration, make(url.Values))
	if err != nil {
		return "", err
	}
	return presignedURL.String(), nil
}

// Package assets stores product images and store logos in MongoDB GridFS.
package assets

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrNotFound    = errors.New("asset not found")
	ErrNotImage    = errors.New("only image uploads are accepted")
	ErrTooLarge    = errors.New("asset exceeds the upload limit")
	ErrEmptyUpload = errors.New("empty upload")
)

// Asset describes a stored file.
type Asset struct {
	ID          string `json:"id"`
	URL         string `json:"url"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
	StoreID     string `json:"storeId"`
}

// Blob is a downloaded asset.
type Blob struct {
	ContentType string
	Size        int64
	Body        io.ReadCloser
}

// Bucket is the subset of *gridfs.Bucket the store uses.
type Bucket interface {
	UploadFromStream(filename string, source io.Reader, opts ...*options.UploadOptions) (primitive.ObjectID, error)
	OpenDownloadStream(fileID interface{}) (*gridfs.DownloadStream, error)
}

type Store struct {
	bucket   Bucket
	maxBytes int64
}

func NewStore(bucket Bucket, maxBytes int64) *Store {
	return &Store{bucket: bucket, maxBytes: maxBytes}
}

// NewGridFSStore opens the "assets" bucket of db.
func NewGridFSStore(db *mongo.Database, maxBytes int64) (*Store, error) {
	bucket, err := gridfs.NewBucket(db, options.GridFSBucket().SetName("assets"))
	if err != nil {
		return nil, fmt.Errorf("open gridfs bucket: %w", err)
	}
	return NewStore(bucket, maxBytes), nil
}

// URL is the public path an asset is served from.
func URL(id string) string { return "/assets/" + id }

// Upload sniffs the content type, enforces the size limit and stores r for storeID.
func (s *Store) Upload(ctx context.Context, storeID, filename string, r io.Reader) (Asset, error) {
	data, err := io.ReadAll(io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return Asset{}, fmt.Errorf("read upload: %w", err)
	}
	if len(data) == 0 {
		return Asset{}, ErrEmptyUpload
	}
	if int64(len(data)) > s.maxBytes {
		return Asset{}, ErrTooLarge
	}

	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		return Asset{}, ErrNotImage
	}
	if err := ctx.Err(); err != nil {
		return Asset{}, err
	}

	meta := bson.D{{Key: "storeId", Value: storeID}, {Key: "contentType", Value: contentType}}
	id, err := s.bucket.UploadFromStream(filename, bytes.NewReader(data), options.GridFSUpload().SetMetadata(meta))
	if err != nil {
		return Asset{}, fmt.Errorf("gridfs upload: %w", err)
	}

	hex := id.Hex()
	return Asset{ID: hex, URL: URL(hex), ContentType: contentType, Size: int64(len(data)), StoreID: storeID}, nil
}

// Open streams an asset. The caller closes Body.
func (s *Store) Open(ctx context.Context, id string) (Blob, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return Blob{}, ErrNotFound
	}
	if err := ctx.Err(); err != nil {
		return Blob{}, err
	}

	stream, err := s.bucket.OpenDownloadStream(oid)
	if err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return Blob{}, ErrNotFound
		}
		return Blob{}, fmt.Errorf("gridfs open: %w", err)
	}

	file := stream.GetFile()
	contentType := "application/octet-stream"
	var meta struct {
		ContentType string `bson:"contentType"`
	}
	if file.Metadata != nil && bson.Unmarshal(file.Metadata, &meta) == nil && meta.ContentType != "" {
		contentType = meta.ContentType
	}
	return Blob{ContentType: contentType, Size: file.Length, Body: stream}, nil
}

package models

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/aws/aws-lambda-go/events"
)

// Notification identifies the object that triggered a load.
type Notification struct {
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
}

// NotificationFromS3Event reads the bucket and key of the first record.
// S3 delivers keys URL-encoded, so the key is unescaped here.
func NotificationFromS3Event(event events.S3Event) (Notification, error) {
	if len(event.Records) == 0 {
		return Notification{}, InputError(ErrNoRecords)
	}

	record := event.Records[0]
	bucket := strings.TrimSpace(record.S3.Bucket.Name)
	if bucket == "" {
		return Notification{}, InputError(ErrEmptyBucket)
	}

	key, err := url.QueryUnescape(record.S3.Object.Key)
	if err != nil {
		return Notification{Bucket: bucket}, InputError(fmt.Errorf("failed to decode S3 key: %w", err))
	}
	if key == "" {
		return Notification{Bucket: bucket}, InputError(ErrEmptyKey)
	}

	return Notification{Bucket: bucket, Key: key}, nil
}

// Locator returns the fully-qualified object path, s3://bucket/key.
func (n Notification) Locator() string {
	return "s3://" + n.Bucket + "/" + n.Key
}

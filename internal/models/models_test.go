package models

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func s3Event(bucket, key string) events.S3Event {
	return events.S3Event{
		Records: []events.S3EventRecord{{
			EventName: "ObjectCreated:Put",
			S3: events.S3Entity{
				Bucket: events.S3Bucket{Name: bucket},
				Object: events.S3Object{Key: key, Size: 512},
			},
		}},
	}
}

func TestNotificationFromS3Event(t *testing.T) {
	n, err := NotificationFromS3Event(s3Event("sales-data", "2024/01/uploads/jan.csv"))
	require.NoError(t, err)

	assert.Equal(t, "sales-data", n.Bucket)
	assert.Equal(t, "2024/01/uploads/jan.csv", n.Key)
	assert.Equal(t, "s3://sales-data/2024/01/uploads/jan.csv", n.Locator())
}

func TestNotificationFromS3Event_DecodesKey(t *testing.T) {
	n, err := NotificationFromS3Event(s3Event("sales-data", "2024/01/vendas+janeiro%282%29.csv"))
	require.NoError(t, err)

	assert.Equal(t, "2024/01/vendas janeiro(2).csv", n.Key)
}

func TestNotificationFromS3Event_UsesFirstRecord(t *testing.T) {
	event := s3Event("first", "a.csv")
	event.Records = append(event.Records, s3Event("second", "b.csv").Records...)

	n, err := NotificationFromS3Event(event)
	require.NoError(t, err)
	assert.Equal(t, "first", n.Bucket)
}

func TestNotificationFromS3Event_InputErrors(t *testing.T) {
	tests := []struct {
		name  string
		event events.S3Event
		want  error
	}{
		{"no records", events.S3Event{}, ErrNoRecords},
		{"empty bucket", s3Event("", "jan.csv"), ErrEmptyBucket},
		{"blank bucket", s3Event("   ", "jan.csv"), ErrEmptyBucket},
		{"empty key", s3Event("sales-data", ""), ErrEmptyKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NotificationFromS3Event(tt.event)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, ErrorKindInput, KindOf(err))
		})
	}
}

func TestNotificationFromS3Event_BadEscape(t *testing.T) {
	n, err := NotificationFromS3Event(s3Event("sales-data", "bad%zz.csv"))
	require.Error(t, err)

	assert.Equal(t, ErrorKindInput, KindOf(err))
	assert.Equal(t, "sales-data", n.Bucket)
}

func TestLoadError_MessageIsVerbatim(t *testing.T) {
	cause := errors.New(`ERROR: Load into table 'vendas' failed. Check 'stl_load_errors' system table for details.`)
	err := ExecutionError(cause)

	assert.Equal(t, cause.Error(), err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestLoadError_NilCause(t *testing.T) {
	err := &LoadError{Kind: ErrorKindConnection}
	assert.Equal(t, "connection error", err.Error())
}

func TestKindOf(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", ConnectionError(errors.New("refused")))

	assert.Equal(t, ErrorKindConnection, KindOf(wrapped))
	assert.Equal(t, ErrorKind(""), KindOf(errors.New("plain")))
	assert.Equal(t, ErrorKind(""), KindOf(nil))
}

func TestAsLoadError(t *testing.T) {
	typed := ConfigurationError(errors.New("missing"))
	assert.Same(t, typed, AsLoadError(typed, ErrorKindExecution))

	untyped := AsLoadError(errors.New("boom"), ErrorKindExecution)
	assert.Equal(t, ErrorKindExecution, untyped.Kind)
	assert.Equal(t, "boom", untyped.Error())
}

func TestLoadResult(t *testing.T) {
	ok := Success()
	assert.Equal(t, http.StatusOK, ok.StatusCode)
	assert.Equal(t, "Success!", ok.Body)
	assert.True(t, ok.OK())
	assert.Nil(t, ok.Err)

	failed := Failure(ConnectionError(errors.New("dial tcp: i/o timeout")))
	assert.Equal(t, http.StatusInternalServerError, failed.StatusCode)
	assert.Equal(t, "dial tcp: i/o timeout", failed.Body)
	assert.False(t, failed.OK())
	require.NotNil(t, failed.Err)
	assert.Equal(t, ErrorKindConnection, failed.Err.Kind)
}

// Package handlers provides the Lambda handlers for the redshift sales loader.
package handlers

import (
	"context"
	"fmt"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/google/uuid"
	"go.uber.org/zap"

	appConfig "redshift-sales-loader/internal/config"
	"redshift-sales-loader/internal/models"
	"redshift-sales-loader/internal/services/ses"
	"redshift-sales-loader/internal/services/warehouse"
	"redshift-sales-loader/internal/utils"
)

// Loader runs one bulk load.
type Loader interface {
	Load(ctx context.Context, cmd warehouse.CopyCommand) (int64, error)
}

// Alerter is told about failed loads.
type Alerter interface {
	SendLoadFailure(ctx context.Context, to string, n models.Notification, loadErr *models.LoadError) error
}

// LoaderHandler copies newly uploaded objects into the warehouse.
type LoaderHandler struct {
	loader     Loader
	iamRole    string
	alerter    Alerter
	alertEmail string
}

// NewLoaderHandler builds the handler from the environment. Missing warehouse
// settings fail here rather than on the first event.
func NewLoaderHandler(ctx context.Context) (*LoaderHandler, error) {
	cfg, err := appConfig.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	h := NewLoaderHandlerWithConfig(cfg, warehouse.New(cfg), nil)

	if cfg.AlertsEnabled() {
		alerts, err := ses.NewService(ctx, cfg)
		if err != nil {
			utils.GetLogger().Warn("Failure alerts disabled", utils.Error(err))
		} else {
			h.alerter = alerts
		}
	}

	return h, nil
}

// NewLoaderHandlerWithConfig wires the handler with explicit collaborators.
// alerter may be nil.
func NewLoaderHandlerWithConfig(cfg *appConfig.Config, loader Loader, alerter Alerter) *LoaderHandler {
	return &LoaderHandler{
		loader:     loader,
		iamRole:    cfg.IAMRoleARN,
		alerter:    alerter,
		alertEmail: cfg.AlertEmail,
	}
}

// Handle loads the object named by the first record of s3Event. The outcome
// is always reported through the result; the returned error is always nil.
func (h *LoaderHandler) Handle(ctx context.Context, s3Event events.S3Event) (result models.LoadResult, _ error) {
	logger := utils.GetLogger().With(utils.String("invocationID", invocationID(ctx)))

	var notification models.Notification
	defer func() {
		if r := recover(); r != nil {
			result = h.fail(ctx, logger, notification, models.ExecutionError(fmt.Errorf("%v", r)))
		}
	}()

	notification, err := models.NotificationFromS3Event(s3Event)
	if err != nil {
		return h.fail(ctx, logger, notification, err), nil
	}

	locator := notification.Locator()
	logger.Info("Loading object into warehouse",
		utils.String("locator", locator),
		utils.String("table", warehouse.DestinationTable))

	rows, err := h.loader.Load(ctx, warehouse.NewCopyCommand(locator, h.iamRole))
	if err != nil {
		return h.fail(ctx, logger, notification, err), nil
	}

	logger.Info("Load committed",
		utils.String("locator", locator),
		utils.Int64("rows", rows))

	return models.Success(), nil
}

func (h *LoaderHandler) fail(ctx context.Context, logger *zap.Logger, n models.Notification, err error) models.LoadResult {
	loadErr := models.AsLoadError(err, models.ErrorKindExecution)

	logger.Error("Load failed",
		utils.String("kind", string(loadErr.Kind)),
		utils.String("bucket", n.Bucket),
		utils.String("key", n.Key),
		utils.Error(loadErr))

	if h.alerter != nil && h.alertEmail != "" {
		if err := h.alerter.SendLoadFailure(ctx, h.alertEmail, n, loadErr); err != nil {
			logger.Warn("Failed to send failure alert", utils.Error(err))
		}
	}

	return models.Failure(loadErr)
}

// invocationID prefers the Lambda request id so log lines match the platform's.
func invocationID(ctx context.Context) string {
	if lc, ok := lambdacontext.FromContext(ctx); ok && lc.AwsRequestID != "" {
		return lc.AwsRequestID
	}
	return uuid.NewString()
}

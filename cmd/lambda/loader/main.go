// Loader Lambda entry point, triggered by S3 ObjectCreated events
package main

import (
	"context"
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	"redshift-sales-loader/internal/handlers"
	"redshift-sales-loader/internal/utils"
)

func main() {
	_ = utils.InitLogger(os.Getenv("LOG_LEVEL"))
	defer utils.Sync()

	handler, err := handlers.NewLoaderHandler(context.Background())
	if err != nil {
		utils.GetLogger().Error("Failed to create loader handler", utils.Error(err))
		utils.Sync()
		panic("Failed to create handler: " + err.Error())
	}

	lambda.Start(handler.Handle)
}

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"go.uber.org/zap"

	"mobility-portal/internal/common/aws"
	"mobility-portal/internal/common/camunda"
	"mobility-portal/internal/common/config"
	"mobility-portal/internal/common/logger"
	"mobility-portal/internal/store"
	ass "mobility-portal/internal/workers/mobility/aggregate-submission-statistics"
	ssc "mobility-portal/internal/workers/mobility/send-submission-confirmation"
	vaf "mobility-portal/internal/workers/mobility/validate-application-form"
)

func connectZeebe(cfg *config.Config, zapLog *zap.Logger) (zbc.Client, error) {
	var client zbc.Client
	err := retryWithBackoff(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		var err error
		client, err = camunda.Connect(ctx, cfg.Camunda.BrokerAddress, config.GetDuration(cfg.Camunda.RequestTimeout))
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")
	if err != nil {
		return nil, err
	}
	zapLog.Info("Zeebe client connected successfully")
	return client, nil
}

func workerTimeout(cfg *config.Config, taskType string) time.Duration {
	return config.GetDuration(config.GetWorkerConfig(cfg, taskType).Timeout)
}

// startWorkers opens the job workers of the mobility process.
func startWorkers(ctx context.Context, cfg *config.Config, client zbc.Client, records store.SubmissionStore, log logger.Logger) (*camunda.Workers, error) {
	workers := camunda.NewWorkers(client, log)

	validate := vaf.NewHandler(&vaf.Config{
		EmailDomain: cfg.App.EmailDomain,
		Timeout:     workerTimeout(cfg, vaf.TaskType),
	}, log)
	workers.Start(vaf.TaskType, config.GetWorkerConfig(cfg, vaf.TaskType), validate.Handle)

	stats := ass.NewHandler(&ass.Config{Timeout: workerTimeout(cfg, ass.TaskType)}, records, log)
	workers.Start(ass.TaskType, config.GetWorkerConfig(cfg, ass.TaskType), stats.Handle)

	var sender ssc.Sender
	var publisher ssc.Publisher
	if cfg.AWS.SES.Enabled || cfg.AWS.SNS.Enabled {
		awsCfg, err := aws.LoadConfig(ctx, cfg.AWS.Region)
		if err != nil {
			return nil, fmt.Errorf("aws config: %w", err)
		}
		if cfg.AWS.SES.Enabled {
			sender = aws.NewMailer(aws.NewSESClient(awsCfg), cfg.AWS.SES.FromEmail)
		}
		if cfg.AWS.SNS.Enabled {
			publisher = aws.NewTopicPublisher(aws.NewSNSClient(awsCfg), cfg.AWS.SNS.StaffTopicARN)
		}
	}
	confirm := ssc.NewHandler(&ssc.Config{
		EmailEnabled: cfg.AWS.SES.Enabled,
		StaffEnabled: cfg.AWS.SNS.Enabled,
		Timeout:      workerTimeout(cfg, ssc.TaskType),
	}, sender, publisher, log)
	workers.Start(ssc.TaskType, config.GetWorkerConfig(cfg, ssc.TaskType), confirm.Handle)

	return workers, nil
}

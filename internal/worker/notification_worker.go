package worker

import (
	"go.uber.org/zap"

	"github.com/appdotbuilder/isp-helpdesk-rfo/internal/service"
)

// StartNotificationWorker subscribes the notification service to the
// ticket event stream. Safe to call with a nil service; nothing is
// registered in that case.
func StartNotificationWorker(logger *zap.Logger, notificationService *service.NotificationService) {
	if notificationService == nil {
		return
	}
	notificationService.RegisterHandlers()
	logger.Info("notification worker subscribed to ticket events")
}

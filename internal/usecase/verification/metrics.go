package verification

import (
	"github.com/nobridge/nobridge-backend/internal/metrics"
	"github.com/nobridge/nobridge-backend/internal/pkg/apperror"
)

const (
	actionSubmit      = "submit"
	actionBump        = "bump"
	actionAdminUpdate = "admin_update"
	actionUpload      = "upload_document"
)

func observe(action string, err error) {
	if err == nil {
		metrics.VerificationAction(action, "ok")
		return
	}
	metrics.VerificationAction(action, string(apperror.CodeOf(err)))
}

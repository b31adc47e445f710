package services

import (
	apperrors "cryptocap/internal/errors"
)

// Report service errors
var (
	ErrReportNotLoaded = apperrors.NewAppError(apperrors.ErrTypeNotFound, "report has not been loaded", nil)
	ErrUnknownPeriod   = apperrors.NewAppValidationError("period must be one of 24h, 7d")
	ErrInvalidCount    = apperrors.NewAppValidationError("n must be between 1 and 100")
)

// MaxViewSize bounds the n query parameter of the ranking views
const MaxViewSize = 100

// File: utils/constants.go
package utils

// Context keys set by the auth and device middleware.
const (
	CtxUserID   = "userID"
	CtxDeviceID = "deviceID"
	CtxLogger   = "logger"
)

// TryAgainMessage is shown when a backend lookup fails and the user may retry.
const TryAgainMessage = "Something went wrong, please try again"

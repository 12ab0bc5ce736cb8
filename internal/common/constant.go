package common

// Request headers carrying app credentials on upload, list and delete calls.
const (
	AppNameHeaderName  = "X-App-Name"
	AppTokenHeaderName = "X-App-Token"
	OriginHeaderName   = "Origin"
)

// DefaultExtension is used for stored names when the original filename has
// no extension.
const DefaultExtension = "bin"

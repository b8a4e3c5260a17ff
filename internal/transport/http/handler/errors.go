package handler

const (
	errInternalServer = "Internal server error"
	errValidation     = "Validation failed"

	errUserExists         = "The user already exists"
	errUserNotFound       = "The user does not exist"
	errInvalidCredentials = "Invalid user credentials"
	errNotAuthenticated   = "User not authenticated"

	errTrackIDNotFound   = "Track ID does not exist"
	errInvalidTrackingID = "Invalid tracking ID"
	errShipmentNotFound  = "The shipment does not exist"
	errInvalidShipment   = "Shipment attributes were rejected"
)

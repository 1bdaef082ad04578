package control

type UnlockRequest struct {
	BikeID string `json:"bike_id" binding:"required"`
	UserID string `json:"user_id"`
}

type UnlockResponse struct {
	CommandID   string `json:"command_id"`
	UnlockToken string `json:"unlock_token"`
	ExpiryS     int    `json:"expiry_s"`
}

type DuplicateResponse struct {
	Status   string `json:"status"`
	Key      string `json:"key"`
	Resource string `json:"resource,omitempty"`
}

// PolledCommand is the wire shape a device receives when polling: the
// command id and type with the payload fields flattened alongside them.
type PolledCommand struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	UnlockToken string `json:"unlock_token,omitempty"`
	ExpiryS     int    `json:"expiry_s,omitempty"`
}

type AckRequest struct {
	Status string `json:"status"`
}

type AckResponse struct {
	OK bool   `json:"ok"`
	ID string `json:"id"`
}

package ingestion

// PositionMessage is the JSON body a device publishes on its telemetry
// topic.
type PositionMessage struct {
	DeviceID  string   `json:"device_id" validate:"required"`
	Ts        int64    `json:"ts" validate:"required,gt=0"`
	Lat       float64  `json:"lat" validate:"min=-90,max=90"`
	Lon       float64  `json:"lon" validate:"min=-180,max=180"`
	Battery   *float64 `json:"battery,omitempty" validate:"omitempty,min=0,max=100"`
	Speed     *float64 `json:"speed,omitempty" validate:"omitempty,min=0"`
	RideState string   `json:"ride_state,omitempty" validate:"omitempty,ride_state"`
	UniqueKey string   `json:"unique_key,omitempty"`
}

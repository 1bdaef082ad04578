package ingestion

import (
	"fmt"

	"bikefleet/pkg/utils"
)

// ValidatePosition checks a decoded telemetry message before it reaches the
// processor queue.
func ValidatePosition(msg *PositionMessage) error {
	if msg == nil {
		return fmt.Errorf("nil position message")
	}
	if err := utils.ValidateStruct(msg); err != nil {
		return fmt.Errorf("invalid position message: %w", err)
	}
	return nil
}

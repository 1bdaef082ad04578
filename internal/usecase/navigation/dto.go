package navigation

import domainRoute "bikefleet/internal/domain/route"

type CreateRouteRequest struct {
	Origin *domainRoute.LatLon `json:"origin" binding:"required"`
	Dest   *domainRoute.LatLon `json:"dest" binding:"required"`
	BikeID string              `json:"bike_id"`
}

type RouteResponse struct {
	RouteID  string             `json:"route_id"`
	LengthM  float64            `json:"length_m"`
	BaseEtaS float64            `json:"base_eta_s"`
	Steps    []domainRoute.Step `json:"steps"`
}

type EtaResponse struct {
	EtaS        float64 `json:"eta_s"`
	Condition   string  `json:"condition"`
	SpeedFactor float64 `json:"speed_factor"`
}

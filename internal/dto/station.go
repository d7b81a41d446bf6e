package dto

// ── station DTO ──

// CreateStationRequest station submission.
// Status is accepted for compatibility with older clients and ignored.
type CreateStationRequest struct {
	Name       string           `json:"name"        binding:"required,min=2,max=150"`
	Address    string           `json:"address"     binding:"required,max=255"`
	City       string           `json:"city"        binding:"required,max=100"`
	PostalCode string           `json:"postal_code" binding:"required,max=10"`
	Latitude   float64          `json:"latitude"    binding:"omitempty,min=-90,max=90"`
	Longitude  float64          `json:"longitude"   binding:"omitempty,min=-180,max=180"`
	Type       string           `json:"type"        binding:"required,oneof=WASH_STATION PARKING"`
	Status     string           `json:"status"`
	Images     []string         `json:"images"      binding:"omitempty,max=10,dive,max=500"`
	Services   *ServicesPayload `json:"services"`
	Parking    *ParkingPayload  `json:"parking"`
}

// ParkingPayload parking attributes as submitted. Like ServicesPayload it
// accepts the legacy spellings, see UnmarshalJSON in parking_payload.go.
type ParkingPayload struct {
	IsPaid           bool     `json:"is_paid"`
	Tariff           *float64 `json:"tariff"`
	StayTax          *float64 `json:"stay_tax"`
	Electricity      string   `json:"electricity"`
	NearbyAmenities  []string `json:"nearby_amenities"`
	HandicapAccess   bool     `json:"handicap_access"`
	TotalPlaces      int      `json:"total_places"`
	HasWifi          bool     `json:"has_wifi"`
	HasChargingPoint bool     `json:"has_charging_point"`
	WaterPoint       bool     `json:"water_point"`
	WasteWater       bool     `json:"waste_water"`
}

// StationListRequest listing query
type StationListRequest struct {
	PaginationRequest
	Type   string `form:"type"   binding:"omitempty,oneof=WASH_STATION PARKING"`
	City   string `form:"city"   binding:"omitempty,max=100"`
	Status string `form:"status" binding:"omitempty,oneof=PENDING ACTIVE INACTIVE"`
}

// ValidateStationRequest administrator decision
type ValidateStationRequest struct {
	Status string `json:"status" binding:"required,oneof=ACTIVE INACTIVE"`
}

// StationResponse station with its sub-record
type StationResponse struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Address     string           `json:"address"`
	City        string           `json:"city"`
	PostalCode  string           `json:"postal_code"`
	Latitude    float64          `json:"latitude"`
	Longitude   float64          `json:"longitude"`
	Type        string           `json:"type"`
	Status      string           `json:"status"`
	Images      []string         `json:"images"`
	AuthorID    string           `json:"author_id"`
	Author      *AuthorResponse  `json:"author,omitempty"`
	Services    *ServiceResponse `json:"services,omitempty"`
	Parking     *ParkingResponse `json:"parking,omitempty"`
	ValidatedAt string           `json:"validated_at,omitempty"`
	ValidatedBy string           `json:"validated_by,omitempty"`
	CreatedAt   string           `json:"created_at"`
	UpdatedAt   string           `json:"updated_at"`
}

// AuthorResponse station or review author
type AuthorResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ServiceResponse wash capabilities
type ServiceResponse struct {
	HighPressure       string   `json:"high_pressure"`
	TirePressure       bool     `json:"tire_pressure"`
	Vacuum             bool     `json:"vacuum"`
	HandicapAccess     bool     `json:"handicap_access"`
	WasteWater         bool     `json:"waste_water"`
	WaterPoint         bool     `json:"water_point"`
	WasteWaterDisposal bool     `json:"waste_water_disposal"`
	BlackWaterDisposal bool     `json:"black_water_disposal"`
	Electricity        string   `json:"electricity"`
	MaxVehicleLength   *float64 `json:"max_vehicle_length,omitempty"`
	PaymentMethods     []string `json:"payment_methods"`
}

// ParkingResponse parking attributes
type ParkingResponse struct {
	IsPaid           bool     `json:"is_paid"`
	Tariff           *float64 `json:"tariff,omitempty"`
	StayTax          *float64 `json:"stay_tax,omitempty"`
	Electricity      string   `json:"electricity"`
	NearbyAmenities  []string `json:"nearby_amenities"`
	HandicapAccess   bool     `json:"handicap_access"`
	TotalPlaces      int      `json:"total_places"`
	HasWifi          bool     `json:"has_wifi"`
	HasChargingPoint bool     `json:"has_charging_point"`
	WaterPoint       bool     `json:"water_point"`
	WasteWater       bool     `json:"waste_water"`
}

// StationPage cached listing page
type StationPage struct {
	Items []StationResponse `json:"items"`
	Total int64             `json:"total"`
}

package model

import (
	"time"

	"gorm.io/datatypes"
)

// Station wash station or parking spot, table stations
type Station struct {
	StationID        string                      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"station_id"`
	Name             string                      `gorm:"type:varchar(150);not null"                     json:"name"`
	Address          string                      `gorm:"type:varchar(255);not null"                     json:"address"`
	City             string                      `gorm:"type:varchar(100);not null"                     json:"city"`
	PostalCode       string                      `gorm:"type:varchar(10);not null"                      json:"postal_code"`
	Latitude         float64                     `gorm:"not null"                                       json:"latitude"`
	Longitude        float64                     `gorm:"not null"                                       json:"longitude"`
	Type             StationType                 `gorm:"type:varchar(20);not null"                      json:"type"`
	Status           StationStatus               `gorm:"type:varchar(20);not null;default:'PENDING'"    json:"status"`
	Images           datatypes.JSONSlice[string] `gorm:"type:jsonb;not null;default:'[]'"               json:"images"`
	EncryptedName    string                      `gorm:"type:text;not null;default:''"                  json:"-"`
	EncryptedAddress string                      `gorm:"type:text;not null;default:''"                  json:"-"`
	AuthorID         string                      `gorm:"type:uuid;not null;index"                       json:"author_id"`
	ValidatedAt      *time.Time                  `                                                      json:"validated_at,omitempty"`
	ValidatedBy      *string                     `gorm:"type:varchar(255)"                              json:"validated_by,omitempty"`
	BaseModel

	// associations
	Author  *User           `gorm:"foreignKey:AuthorID;references:UserID"   json:"author,omitempty"`
	Service *Service        `gorm:"foreignKey:StationID;references:StationID" json:"service,omitempty"`
	Parking *ParkingDetails `gorm:"foreignKey:StationID;references:StationID" json:"parking,omitempty"`
}

// TableName table name
func (Station) TableName() string { return "stations" }

// Service wash capabilities of a WASH_STATION, table services (1:1)
type Service struct {
	ServiceID          string                      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"service_id"`
	StationID          string                      `gorm:"type:uuid;not null;uniqueIndex"                 json:"station_id"`
	HighPressure       HighPressure                `gorm:"type:varchar(20);not null;default:'NONE'"       json:"high_pressure"`
	TirePressure       bool                        `gorm:"not null;default:false"                         json:"tire_pressure"`
	Vacuum             bool                        `gorm:"not null;default:false"                         json:"vacuum"`
	HandicapAccess     bool                        `gorm:"not null;default:false"                         json:"handicap_access"`
	WasteWater         bool                        `gorm:"not null;default:false"                         json:"waste_water"`
	WaterPoint         bool                        `gorm:"not null;default:false"                         json:"water_point"`
	WasteWaterDisposal bool                        `gorm:"not null;default:false"                         json:"waste_water_disposal"`
	BlackWaterDisposal bool                        `gorm:"not null;default:false"                         json:"black_water_disposal"`
	Electricity        Electricity                 `gorm:"type:varchar(10);not null;default:'NONE'"       json:"electricity"`
	MaxVehicleLength   *float64                    `                                                      json:"max_vehicle_length,omitempty"`
	PaymentMethods     datatypes.JSONSlice[string] `gorm:"type:jsonb;not null;default:'[]'"               json:"payment_methods"`
	BaseModel
}

// TableName table name
func (Service) TableName() string { return "services" }

// DefaultService all flags off, categories NONE
func DefaultService(stationID string) *Service {
	return &Service{
		StationID:      stationID,
		HighPressure:   HighPressureNone,
		Electricity:    ElectricityNone,
		PaymentMethods: datatypes.JSONSlice[string]{},
	}
}

// Sanitize coerces out-of-enumeration values back to defaults.
// Returns true when something had to be repaired.
func (s *Service) Sanitize() bool {
	repaired := false
	if !s.HighPressure.IsValid() {
		s.HighPressure = HighPressureNone
		repaired = true
	}
	if !s.Electricity.IsValid() {
		s.Electricity = ElectricityNone
		repaired = true
	}
	if s.MaxVehicleLength != nil && *s.MaxVehicleLength <= 0 {
		s.MaxVehicleLength = nil
		repaired = true
	}
	filtered := FilterPaymentMethods(s.PaymentMethods)
	if s.PaymentMethods != nil && len(filtered) != len(s.PaymentMethods) {
		repaired = true
	}
	s.PaymentMethods = filtered
	return repaired
}

// ParkingDetails attributes of a PARKING station, table parking_details (1:1)
type ParkingDetails struct {
	ParkingDetailsID string                      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"parking_details_id"`
	StationID        string                      `gorm:"type:uuid;not null;uniqueIndex"                 json:"station_id"`
	IsPaid           bool                        `gorm:"not null;default:false"                         json:"is_paid"`
	Tariff           *float64                    `                                                      json:"tariff,omitempty"`
	StayTax          *float64                    `                                                      json:"stay_tax,omitempty"`
	Electricity      Electricity                 `gorm:"type:varchar(10);not null;default:'NONE'"       json:"electricity"`
	NearbyAmenities  datatypes.JSONSlice[string] `gorm:"type:jsonb;not null;default:'[]'"               json:"nearby_amenities"`
	HandicapAccess   bool                        `gorm:"not null;default:false"                         json:"handicap_access"`
	TotalPlaces      int                         `gorm:"not null;default:0"                             json:"total_places"`
	HasWifi          bool                        `gorm:"not null;default:false"                         json:"has_wifi"`
	HasChargingPoint bool                        `gorm:"not null;default:false"                         json:"has_charging_point"`
	WaterPoint       bool                        `gorm:"not null;default:false"                         json:"water_point"`
	WasteWater       bool                        `gorm:"not null;default:false"                         json:"waste_water"`
	BaseModel
}

// TableName table name
func (ParkingDetails) TableName() string { return "parking_details" }

// DefaultParkingDetails free, no hookup, no amenity
func DefaultParkingDetails(stationID string) *ParkingDetails {
	return &ParkingDetails{
		StationID:       stationID,
		Electricity:     ElectricityNone,
		NearbyAmenities: datatypes.JSONSlice[string]{},
	}
}

// Sanitize coerces out-of-enumeration values back to defaults.
// Returns true when something had to be repaired.
func (p *ParkingDetails) Sanitize() bool {
	repaired := false
	if !p.Electricity.IsValid() {
		p.Electricity = ElectricityNone
		repaired = true
	}
	if p.TotalPlaces < 0 {
		p.TotalPlaces = 0
		repaired = true
	}
	filtered := FilterAmenities(p.NearbyAmenities)
	if p.NearbyAmenities != nil && len(filtered) != len(p.NearbyAmenities) {
		repaired = true
	}
	p.NearbyAmenities = filtered
	return repaired
}

// Review rating and comment on a station, table reviews
type Review struct {
	ReviewID         string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"review_id"`
	StationID        string `gorm:"type:uuid;not null;index"                       json:"station_id"`
	AuthorID         string `gorm:"type:uuid;not null"                             json:"author_id"`
	Content          string `gorm:"type:text;not null"                             json:"content"`
	EncryptedContent string `gorm:"type:text;not null;default:''"                  json:"-"`
	Rating           int    `gorm:"type:smallint;not null"                         json:"rating"`
	BaseModel

	Author *User `gorm:"foreignKey:AuthorID;references:UserID" json:"author,omitempty"`
}

// TableName table name
func (Review) TableName() string { return "reviews" }

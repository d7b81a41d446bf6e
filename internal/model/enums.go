package model

import "strings"

// ── station type ──

// StationType discriminates wash stations from parking spots
type StationType string

const (
	StationTypeWash    StationType = "WASH_STATION"
	StationTypeParking StationType = "PARKING"
)

// IsValid reports whether t is a known type
func (t StationType) IsValid() bool {
	return t == StationTypeWash || t == StationTypeParking
}

// ── station status ──

// StationStatus lifecycle state
type StationStatus string

const (
	StatusPending  StationStatus = "PENDING"
	StatusActive   StationStatus = "ACTIVE"
	StatusInactive StationStatus = "INACTIVE"
)

// statusTransitions allowed moves. Re-applying ACTIVE or INACTIVE is an
// overwrite (it refreshes validated_at); nothing returns to PENDING.
var statusTransitions = map[StationStatus][]StationStatus{
	StatusPending:  {StatusActive, StatusInactive},
	StatusActive:   {StatusActive, StatusInactive},
	StatusInactive: {StatusActive, StatusInactive},
}

// IsValid reports whether s is a known status
func (s StationStatus) IsValid() bool {
	_, ok := statusTransitions[s]
	return ok
}

// CanTransitionTo reports whether next is reachable from s
func (s StationStatus) CanTransitionTo(next StationStatus) bool {
	for _, allowed := range statusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ── high pressure ──

// HighPressure high-pressure lane category
type HighPressure string

const (
	HighPressureNone        HighPressure = "NONE"
	HighPressurePasserelle  HighPressure = "PASSERELLE"
	HighPressureEchafaudage HighPressure = "ECHAFAUDAGE"
	HighPressurePortique    HighPressure = "PORTIQUE"
)

// IsValid reports whether h is a known category
func (h HighPressure) IsValid() bool {
	switch h {
	case HighPressureNone, HighPressurePasserelle, HighPressureEchafaudage, HighPressurePortique:
		return true
	}
	return false
}

// ── electricity ──

// Electricity available hookup
type Electricity string

const (
	ElectricityNone  Electricity = "NONE"
	ElectricityAmp8  Electricity = "AMP_8"
	ElectricityAmp15 Electricity = "AMP_15"
)

// IsValid reports whether e is a known hookup
func (e Electricity) IsValid() bool {
	return e == ElectricityNone || e == ElectricityAmp8 || e == ElectricityAmp15
}

// ── payment methods ──

// PaymentMethod accepted payment method
type PaymentMethod string

const (
	PaymentJeton       PaymentMethod = "JETON"
	PaymentEspeces     PaymentMethod = "ESPECES"
	PaymentCarte       PaymentMethod = "CARTE_BANCAIRE"
	PaymentSansContact PaymentMethod = "SANS_CONTACT"
)

var paymentMethods = map[PaymentMethod]bool{
	PaymentJeton: true, PaymentEspeces: true, PaymentCarte: true, PaymentSansContact: true,
}

// ── nearby amenities ──

// Amenity shop or service near a parking spot
type Amenity string

const (
	AmenityBoulangerie    Amenity = "BOULANGERIE"
	AmenityRestaurant     Amenity = "RESTAURANT"
	AmenitySupermarche    Amenity = "SUPERMARCHE"
	AmenityPharmacie      Amenity = "PHARMACIE"
	AmenityLaverie        Amenity = "LAVERIE"
	AmenityStationEssence Amenity = "STATION_ESSENCE"
	AmenityTabac          Amenity = "TABAC"
)

var amenities = map[Amenity]bool{
	AmenityBoulangerie: true, AmenityRestaurant: true, AmenitySupermarche: true,
	AmenityPharmacie: true, AmenityLaverie: true, AmenityStationEssence: true, AmenityTabac: true,
}

// FilterPaymentMethods keeps recognized values, uppercased and deduplicated.
// Unknown values are dropped, not rejected.
func FilterPaymentMethods(values []string) []string {
	return filterKnown(values, func(v string) bool { return paymentMethods[PaymentMethod(v)] })
}

// FilterAmenities keeps recognized values, uppercased and deduplicated.
// Unknown values are dropped, not rejected.
func FilterAmenities(values []string) []string {
	return filterKnown(values, func(v string) bool { return amenities[Amenity(v)] })
}

func filterKnown(values []string, known func(string) bool) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		v = strings.ToUpper(strings.TrimSpace(v))
		if !known(v) || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

// ── roles ──

const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

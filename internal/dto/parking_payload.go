package dto

import (
	"encoding/json"
	"fmt"
)

// parkingAliases maps a folded key to the canonical parking field
var parkingAliases = map[string]string{
	"ispaid":            "is_paid",
	"payant":            "is_paid",
	"tariff":            "tariff",
	"tarif":             "tariff",
	"staytax":           "stay_tax",
	"taxesejour":        "stay_tax",
	"taxedesejour":      "stay_tax",
	"electricity":       "electricity",
	"electricite":       "electricity",
	"nearbyamenities":   "nearby_amenities",
	"commercesproches":  "nearby_amenities",
	"commerces":         "nearby_amenities",
	"amenities":         "nearby_amenities",
	"handicapaccess":    "handicap_access",
	"handicapeaccess":   "handicap_access",
	"acceshandicape":    "handicap_access",
	"totalplaces":       "total_places",
	"nombreplaces":      "total_places",
	"nbplaces":          "total_places",
	"haswifi":           "has_wifi",
	"wifi":              "has_wifi",
	"haschargingpoint":  "has_charging_point",
	"bornerecharge":     "has_charging_point",
	"bornedechargement": "has_charging_point",
	"waterpoint":        "water_point",
	"pointeau":          "water_point",
	"wastewater":        "waste_water",
	"eauxusees":         "waste_water",
}

// UnmarshalJSON accepts every historical spelling of the parking object.
// Amenities are uppercased here; unknown ones are dropped by model sanitizing.
func (p *ParkingPayload) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parking: %w", err)
	}

	*p = ParkingPayload{}
	for _, e := range resolveAliases(raw, parkingAliases) {
		var err error
		switch e.field {
		case "tariff":
			p.Tariff, err = looseFloat(e.value)
		case "stay_tax":
			p.StayTax, err = looseFloat(e.value)
		case "electricity":
			var s string
			s, err = looseString(e.value)
			p.Electricity = normalizeElectricity(s)
		case "total_places":
			p.TotalPlaces, err = looseInt(e.value)
		case "nearby_amenities":
			var list []string
			list, err = looseList(e.value)
			p.NearbyAmenities = make([]string, 0, len(list))
			for _, a := range list {
				if a = canonicalEnum(a); a != "" {
					p.NearbyAmenities = append(p.NearbyAmenities, a)
				}
			}
		default:
			var b bool
			b, err = looseBool(e.value)
			p.setFlag(e.field, b)
		}
		if err != nil {
			return fmt.Errorf("parking.%s: %w", e.key, err)
		}
	}
	return nil
}

func (p *ParkingPayload) setFlag(field string, v bool) {
	switch field {
	case "is_paid":
		p.IsPaid = v
	case "handicap_access":
		p.HandicapAccess = v
	case "has_wifi":
		p.HasWifi = v
	case "has_charging_point":
		p.HasChargingPoint = v
	case "water_point":
		p.WaterPoint = v
	case "waste_water":
		p.WasteWater = v
	}
}

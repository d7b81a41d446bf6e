package dto

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ServicesPayload wash capabilities as submitted by clients.
//
// Older clients and the imported legacy dataset spell the same fields in
// several ways (camelCase, snake_case, the original French names) and encode
// values loosely ("8A", "amp_8", "oui", 1). UnmarshalJSON reduces all of them
// to this canonical shape. Enumerated values are uppercased but not checked;
// unknown values are dropped later by model sanitizing.
type ServicesPayload struct {
	HighPressure       string   `json:"high_pressure"`
	TirePressure       bool     `json:"tire_pressure"`
	Vacuum             bool     `json:"vacuum"`
	HandicapAccess     bool     `json:"handicap_access"`
	WasteWater         bool     `json:"waste_water"`
	WaterPoint         bool     `json:"water_point"`
	WasteWaterDisposal bool     `json:"waste_water_disposal"`
	BlackWaterDisposal bool     `json:"black_water_disposal"`
	Electricity        string   `json:"electricity"`
	MaxVehicleLength   *float64 `json:"max_vehicle_length"`
	PaymentMethods     []string `json:"payment_methods"`
}

// servicesAliases maps a folded key (lowercase, no separators) to the canonical field
var servicesAliases = map[string]string{
	"highpressure":       "high_pressure",
	"hautepression":      "high_pressure",
	"typehautepression":  "high_pressure",
	"tirepressure":       "tire_pressure",
	"gonflage":           "tire_pressure",
	"pressionpneus":      "tire_pressure",
	"vacuum":             "vacuum",
	"aspirateur":         "vacuum",
	"handicapaccess":     "handicap_access",
	"handicapeaccess":    "handicap_access",
	"acceshandicape":     "handicap_access",
	"wastewater":         "waste_water",
	"eauxusees":          "waste_water",
	"waterpoint":         "water_point",
	"pointeau":           "water_point",
	"wastewaterdisposal": "waste_water_disposal",
	"vidangeeauxgrises":  "waste_water_disposal",
	"greywaterdisposal":  "waste_water_disposal",
	"blackwaterdisposal": "black_water_disposal",
	"vidangeeauxnoires":  "black_water_disposal",
	"electricity":        "electricity",
	"electricite":        "electricity",
	"maxvehiclelength":   "max_vehicle_length",
	"longueurmax":        "max_vehicle_length",
	"longueurmaximale":   "max_vehicle_length",
	"paymentmethods":     "payment_methods",
	"moyenspaiement":     "payment_methods",
	"paiements":          "payment_methods",
}

func foldKey(k string) string {
	k = strings.ToLower(k)
	return strings.NewReplacer("_", "", "-", "", " ", "").Replace(k)
}

// UnmarshalJSON accepts every historical spelling of the services object
func (p *ServicesPayload) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("services: %w", err)
	}

	*p = ServicesPayload{}
	for _, e := range resolveAliases(raw, servicesAliases) {
		key, field, value := e.key, e.field, e.value
		var err error
		switch field {
		case "high_pressure":
			var s string
			s, err = looseString(value)
			p.HighPressure = normalizeHighPressure(s)
		case "electricity":
			var s string
			s, err = looseString(value)
			p.Electricity = normalizeElectricity(s)
		case "max_vehicle_length":
			p.MaxVehicleLength, err = looseFloat(value)
		case "payment_methods":
			var list []string
			list, err = looseList(value)
			p.PaymentMethods = make([]string, 0, len(list))
			for _, m := range list {
				p.PaymentMethods = append(p.PaymentMethods, normalizePayment(m))
			}
		default:
			var b bool
			b, err = looseBool(value)
			p.setFlag(field, b)
		}
		if err != nil {
			return fmt.Errorf("services.%s: %w", key, err)
		}
	}
	return nil
}

type aliasedValue struct {
	key   string
	field string
	value json.RawMessage
}

// resolveAliases returns the recognised keys of raw in the order they must be
// applied: legacy spellings in lexical order, then the canonical key itself,
// so that when several spellings disagree the canonical one wins and the
// result never depends on map iteration.
func resolveAliases(raw map[string]json.RawMessage, aliases map[string]string) []aliasedValue {
	out := make([]aliasedValue, 0, len(raw))
	for key, value := range raw {
		if field, ok := aliases[foldKey(key)]; ok {
			out = append(out, aliasedValue{key: key, field: field, value: value})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		ci, cj := out[i].key == out[i].field, out[j].key == out[j].field
		if ci != cj {
			return cj
		}
		return out[i].key < out[j].key
	})
	return out
}

func (p *ServicesPayload) setFlag(field string, v bool) {
	switch field {
	case "tire_pressure":
		p.TirePressure = v
	case "vacuum":
		p.Vacuum = v
	case "handicap_access":
		p.HandicapAccess = v
	case "waste_water":
		p.WasteWater = v
	case "water_point":
		p.WaterPoint = v
	case "waste_water_disposal":
		p.WasteWaterDisposal = v
	case "black_water_disposal":
		p.BlackWaterDisposal = v
	}
}

// ── value decoding ──

func looseString(raw json.RawMessage) (string, error) {
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return "", err
	}
	switch t := v.(type) {
	case nil:
		return "", nil
	case string:
		return t, nil
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), nil
	case bool:
		if t {
			return "true", nil
		}
		return "", nil
	}
	return "", fmt.Errorf("unexpected value %s", string(raw))
}

func looseBool(raw json.RawMessage) (bool, error) {
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return false, err
	}
	switch t := v.(type) {
	case nil:
		return false, nil
	case bool:
		return t, nil
	case float64:
		return t != 0, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "oui", "yes", "1", "on":
			return true, nil
		case "", "false", "non", "no", "0", "off":
			return false, nil
		}
	}
	return false, fmt.Errorf("not a boolean: %s", string(raw))
}

func looseInt(raw json.RawMessage) (int, error) {
	f, err := looseFloat(raw)
	if err != nil || f == nil {
		return 0, err
	}
	return int(*f), nil
}

func looseFloat(raw json.RawMessage) (*float64, error) {
	s, err := looseString(raw)
	if err != nil {
		return nil, err
	}
	s = strings.TrimSpace(strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), "m"))
	if s == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
	if err != nil {
		return nil, fmt.Errorf("not a number: %s", string(raw))
	}
	return &f, nil
}

// looseList accepts a JSON array or a comma separated string
func looseList(raw json.RawMessage) ([]string, error) {
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, nil
	}
	s, err := looseString(raw)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts, nil
}

func canonicalEnum(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	return strings.NewReplacer("-", "_", " ", "_").Replace(s)
}

func normalizeHighPressure(s string) string {
	switch v := canonicalEnum(s); v {
	case "", "FALSE", "AUCUN", "AUCUNE", "NON":
		return "NONE"
	case "ÉCHAFAUDAGE":
		return "ECHAFAUDAGE"
	default:
		return v
	}
}

func normalizeElectricity(s string) string {
	switch canonicalEnum(s) {
	case "", "NONE", "FALSE", "AUCUN", "AUCUNE", "NON":
		return "NONE"
	case "8", "8A", "AMP_8", "AMP8", "8_AMP":
		return "AMP_8"
	case "15", "15A", "16A", "AMP_15", "AMP15", "15_AMP":
		return "AMP_15"
	default:
		return canonicalEnum(s)
	}
}

func normalizePayment(s string) string {
	switch v := canonicalEnum(s); v {
	case "JETONS", "TOKEN", "TOKENS":
		return "JETON"
	case "ESPÈCES", "CASH", "LIQUIDE":
		return "ESPECES"
	case "CB", "CARTE", "CARD", "CREDIT_CARD":
		return "CARTE_BANCAIRE"
	case "CONTACTLESS", "NFC":
		return "SANS_CONTACT"
	default:
		return v
	}
}

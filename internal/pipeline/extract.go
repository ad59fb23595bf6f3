package pipeline

import (
	"strconv"
	"time"

	"carburants/internal"
	"carburants/internal/config"
)

// attributeAliases maps each canonical attribute to the ordered list of
// source keys it may arrive under, across publication vintages of the feed.
// Resolution is first-non-null over the list.
var attributeAliases = map[string][]string{
	"date":           {"maj", "date", "date_maj", "prix_maj", "horodatage"},
	"cp":             {"cp", "code_postal", "codepostal"},
	"commune":        {"commune", "ville"},
	"adresse":        {"adresse", "adr"},
	"prix":           {"prix", "valeur", "prix_valeur"},
	"carburant":      {"nom", "carburant", "produit", "prix_nom", "libelle", "nom_carburant", "type", "code", "fuel", "fuel_name"},
	"carburant_code": {"idcarburant", "carburant_id", "code_carburant"},
	"id_station":     {"id", "id_station", "identifiant"},
}

// Extractor turns one raw feed record into a canonical Releve. It never
// fails: attributes that cannot be resolved or parsed come out nil and are
// dropped by the relevant downstream filter instead.
type Extractor struct {
	rules config.Rules
	loc   *time.Location
}

func NewExtractor(rules config.Rules, loc *time.Location) *Extractor {
	return &Extractor{rules: rules, loc: loc}
}

func (e *Extractor) Extract(rec map[string]any) internal.Releve {
	fields, lat, lon, recID := resolveShape(rec)

	row := internal.Releve{
		ID:        recID,
		Latitude:  lat,
		Longitude: lon,
		CP:        stringAttr(fields, "cp"),
		Commune:   stringAttr(fields, "commune"),
		Adresse:   stringAttr(fields, "adresse"),
		IDStation: stringAttr(fields, "id_station"),
		Carburant: e.inferCarburant(fields),
	}

	if raw := firstNonNull(fields, attributeAliases["date"]...); raw != nil {
		row.Date = ParseTimestamp(asString(raw), e.loc)
	}
	if row.Date != nil {
		jour := row.Date.In(e.loc).Format("2006-01-02")
		row.Jour = &jour
	}

	if raw := firstNonNull(fields, attributeAliases["prix"]...); raw != nil {
		row.Prix = ParsePrice(asString(raw))
	}

	return row
}

// resolveShape settles the record shape once: records wrapping a "fields"
// sub-object carry their coordinates under geometry.coordinates [lon, lat];
// flat records may nest geometry the same way or expose plain
// longitude/latitude (or x/y) keys.
func resolveShape(rec map[string]any) (fields map[string]any, lat, lon *float64, recID *string) {
	if nested, ok := rec["fields"].(map[string]any); ok {
		lon, lat = geometryCoords(rec["geometry"])
		return nested, lat, lon, toStringPtr(rec["recordid"])
	}

	fields = rec
	lon, lat = geometryCoords(fields["geometry"])
	if lat == nil && lon == nil {
		lon = toFloatPtr(firstNonNull(fields, "longitude", "x"))
		lat = toFloatPtr(firstNonNull(fields, "latitude", "y"))
	}
	recID = toStringPtr(firstNonNull(fields, "recordid", "id"))
	return fields, lat, lon, recID
}

func geometryCoords(v any) (lon, lat *float64) {
	geo, ok := v.(map[string]any)
	if !ok {
		return nil, nil
	}
	coords, ok := geo["coordinates"].([]any)
	if !ok || len(coords) != 2 {
		return nil, nil
	}
	return toFloatPtr(coords[0]), toFloatPtr(coords[1])
}

func (e *Extractor) inferCarburant(fields map[string]any) *string {
	if raw := firstNonNull(fields, attributeAliases["carburant"]...); raw != nil {
		if label := NormalizeFuelLabel(asString(raw), e.rules.FuelAliases); label != nil {
			return label
		}
	}
	// No label anywhere: fall back to the numeric fuel-code field.
	if raw := firstNonNull(fields, attributeAliases["carburant_code"]...); raw != nil {
		if label, ok := e.rules.FuelCodes[asString(raw)]; ok {
			return &label
		}
	}
	return nil
}

// firstNonNull returns the value of the first key present with a non-nil,
// non-empty value.
func firstNonNull(fields map[string]any, keys ...string) any {
	for _, key := range keys {
		v, ok := fields[key]
		if !ok || v == nil {
			continue
		}
		if s, isString := v.(string); isString && s == "" {
			continue
		}
		return v
	}
	return nil
}

func stringAttr(fields map[string]any, attr string) *string {
	return toStringPtr(firstNonNull(fields, attributeAliases[attr]...))
}

func asString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

func toStringPtr(v any) *string {
	if v == nil {
		return nil
	}
	s := asString(v)
	if s == "" {
		return nil
	}
	return &s
}

func toFloatPtr(v any) *float64 {
	switch t := v.(type) {
	case float64:
		return &t
	case int:
		f := float64(t)
		return &f
	case string:
		if parsed, err := strconv.ParseFloat(t, 64); err == nil {
			return &parsed
		}
	}
	return nil
}

package extract

import "strings"

// pageLocation is the typed form of the "maybe string, maybe object" location
// shapes JSON-LD publishers use. One conversion function exists per source
// shape; nothing downstream sees the dynamic values.
type pageLocation struct {
	City      string
	Region    string
	Country   string
	Latitude  *float64
	Longitude *float64
}

// locationFrom coerces a schema.org location value. It accepts a plain
// "City, Country" string, a Place object with a nested address, or a bare
// address object.
func locationFrom(v any) pageLocation {
	switch loc := v.(type) {
	case string:
		return locationFromText(loc)
	case map[string]any:
		out := addressFrom(loc["address"])
		if out == (pageLocation{}) {
			if name, ok := loc["name"].(string); ok {
				out = locationFromText(name)
			}
		}
		if geo, ok := loc["geo"].(map[string]any); ok {
			out.Latitude = floatField(geo, "latitude")
			out.Longitude = floatField(geo, "longitude")
		}
		return out
	}
	return pageLocation{}
}

// addressFrom coerces a schema.org address value, which is either a plain
// string or a PostalAddress object.
func addressFrom(v any) pageLocation {
	switch addr := v.(type) {
	case string:
		return locationFromText(addr)
	case map[string]any:
		return pageLocation{
			City:    stringField(addr, "addressLocality"),
			Region:  stringField(addr, "addressRegion"),
			Country: countryFrom(addr["addressCountry"]),
		}
	}
	return pageLocation{}
}

// countryFrom handles addressCountry published as either a code string or a
// Country object.
func countryFrom(v any) string {
	switch c := v.(type) {
	case string:
		return strings.TrimSpace(c)
	case map[string]any:
		return stringField(c, "name")
	}
	return ""
}

// locationFromText splits "City, Country" (or "City, Region, Country") text.
func locationFromText(text string) pageLocation {
	parts := strings.Split(text, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	switch len(parts) {
	case 1:
		return pageLocation{City: parts[0]}
	case 2:
		return pageLocation{City: parts[0], Country: parts[1]}
	default:
		return pageLocation{City: parts[0], Region: parts[1], Country: parts[len(parts)-1]}
	}
}

func floatField(node map[string]any, key string) *float64 {
	if f, ok := node[key].(float64); ok {
		v := f
		return &v
	}
	return nil
}

package las

import (
	"fmt"
	"strings"

	"github.com/arloliu/golidar/endian"
	"github.com/arloliu/golidar/errs"
)

// GeoTIFF keys consulted for WKT derivation.
const (
	geoKeyGTCitation      = 1026
	geoKeyGeographicType  = 2048
	geoKeyGeogCitation    = 2049
	geoKeyProjectedCSType = 3072
	geoKeyPCSCitation     = 3073
)

// asciiParamsTag marks a key whose value lives in the ASCII params VLR.
const asciiParamsTag = 34737

// GeoKeyEntry is one key of the GeoTIFF key directory carried in VLR 34735.
type GeoKeyEntry struct {
	KeyID           uint16
	TIFFTagLocation uint16
	Count           uint16
	ValueOffset     uint16
}

// GeoKeys accumulates the CRS state read from the three GeoTIFF VLRs.
type GeoKeys struct {
	directory    []GeoKeyEntry
	doubleParams []float64
	asciiParams  string
}

// addKeyDirectory parses the key directory payload: a 4-short header
// followed by one 4-short entry per key.
func (g *GeoKeys) addKeyDirectory(data []byte) error {
	r := endian.NewReader(data, endian.GetLittleEndianEngine())

	// Directory version, key revision, minor revision.
	if err := r.Skip(6); err != nil {
		return fmt.Errorf("GeoKey directory: %w", err)
	}
	numKeys, err := r.Uint16()
	if err != nil {
		return fmt.Errorf("GeoKey directory: %w", err)
	}

	g.directory = make([]GeoKeyEntry, 0, numKeys)
	for i := 0; i < int(numKeys); i++ {
		var entry GeoKeyEntry
		if entry.KeyID, err = r.Uint16(); err != nil {
			return fmt.Errorf("GeoKey %d: %w", i, err)
		}
		if entry.TIFFTagLocation, err = r.Uint16(); err != nil {
			return fmt.Errorf("GeoKey %d: %w", i, err)
		}
		if entry.Count, err = r.Uint16(); err != nil {
			return fmt.Errorf("GeoKey %d: %w", i, err)
		}
		if entry.ValueOffset, err = r.Uint16(); err != nil {
			return fmt.Errorf("GeoKey %d: %w", i, err)
		}
		g.directory = append(g.directory, entry)
	}

	return nil
}

// addDoubleParams parses the double-params payload (VLR 34736).
func (g *GeoKeys) addDoubleParams(data []byte) {
	engine := endian.GetLittleEndianEngine()
	r := endian.NewReader(data, engine)

	g.doubleParams = make([]float64, 0, len(data)/8)
	for r.Remaining() >= 8 {
		v, _ := r.Float64()
		g.doubleParams = append(g.doubleParams, v)
	}
}

// addAsciiParams captures the ASCII-params payload (VLR 34737).
func (g *GeoKeys) addAsciiParams(data []byte) {
	g.asciiParams = string(data)
}

// find returns the directory entry for a key id.
func (g *GeoKeys) find(keyID uint16) (GeoKeyEntry, bool) {
	for _, entry := range g.directory {
		if entry.KeyID == keyID {
			return entry, true
		}
	}

	return GeoKeyEntry{}, false
}

// asciiValue resolves a key whose value is a substring of the ASCII params,
// with GeoTIFF's '|' terminators stripped.
func (g *GeoKeys) asciiValue(entry GeoKeyEntry) (string, bool) {
	if entry.TIFFTagLocation != asciiParamsTag {
		return "", false
	}
	start, end := int(entry.ValueOffset), int(entry.ValueOffset)+int(entry.Count)
	if end > len(g.asciiParams) {
		return "", false
	}

	return strings.TrimRight(g.asciiParams[start:end], "|\x00 "), true
}

// Wkt derives a CRS description from the GeoKeys: a projected or geographic
// EPSG code when one is present with a known WKT rendering, otherwise the
// best citation string the keys carry. Fails with errs.ErrNoCrs when the
// keys hold nothing usable.
func (g *GeoKeys) Wkt() (string, error) {
	if entry, ok := g.find(geoKeyProjectedCSType); ok && entry.TIFFTagLocation == 0 {
		if wkt, ok := epsgToWkt(entry.ValueOffset); ok {
			return wkt, nil
		}
	}
	if entry, ok := g.find(geoKeyGeographicType); ok && entry.TIFFTagLocation == 0 {
		if wkt, ok := epsgToWkt(entry.ValueOffset); ok {
			return wkt, nil
		}
	}

	for _, keyID := range []uint16{geoKeyPCSCitation, geoKeyGTCitation, geoKeyGeogCitation} {
		if entry, ok := g.find(keyID); ok {
			if citation, ok := g.asciiValue(entry); ok && citation != "" {
				return citation, nil
			}
		}
	}

	return "", fmt.Errorf("no usable GeoKeys: %w", errs.ErrNoCrs)
}

// epsgToWkt renders WKT for the EPSG codes that dominate real-world lidar
// holdings: WGS84 / NAD83 geographic CRS and their UTM projections. Codes
// outside this set yield ok=false and callers fall back to citation strings.
func epsgToWkt(code uint16) (string, bool) {
	switch {
	case code == 4326:
		return geographicWkt("WGS 84", "WGS_1984", "WGS 84", 6378137, 298.257223563), true
	case code == 4269:
		return geographicWkt("NAD83", "North_American_Datum_1983", "GRS 1980", 6378137, 298.257222101), true
	case code >= 32601 && code <= 32660:
		return utmWkt("WGS 84", int(code-32600), true, code), true
	case code >= 32701 && code <= 32760:
		return utmWkt("WGS 84", int(code-32700), false, code), true
	case code >= 26901 && code <= 26923:
		return utmWkt("NAD83", int(code-26900), true, code), true
	default:
		return "", false
	}
}

func geographicWkt(name, datum, spheroid string, semiMajor, invFlattening float64) string {
	return fmt.Sprintf(
		`GEOGCS["%s",DATUM["%s",SPHEROID["%s",%g,%g]],PRIMEM["Greenwich",0],UNIT["degree",0.0174532925199433]]`,
		name, datum, spheroid, semiMajor, invFlattening)
}

func utmWkt(datumName string, zone int, north bool, epsg uint16) string {
	hemisphere := "N"
	falseNorthing := 0.0
	if !north {
		hemisphere = "S"
		falseNorthing = 10000000.0
	}

	base := geographicWkt("WGS 84", "WGS_1984", "WGS 84", 6378137, 298.257223563)
	if datumName == "NAD83" {
		base = geographicWkt("NAD83", "North_American_Datum_1983", "GRS 1980", 6378137, 298.257222101)
	}

	centralMeridian := -183 + 6*zone

	return fmt.Sprintf(
		`PROJCS["%s / UTM zone %d%s",%s,PROJECTION["Transverse_Mercator"],`+
			`PARAMETER["latitude_of_origin",0],PARAMETER["central_meridian",%d],`+
			`PARAMETER["scale_factor",0.9996],PARAMETER["false_easting",500000],`+
			`PARAMETER["false_northing",%g],UNIT["metre",1],AUTHORITY["EPSG","%d"]]`,
		datumName, zone, hemisphere, base, centralMeridian, falseNorthing, epsg)
}

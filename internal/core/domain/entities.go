package domain

// Source identifies one of the upstream protected-area registries.
type Source string

const (
	// SourceNVR is Naturvårdsregistret, the national registry of
	// protected areas (national parks, nature reserves, biotope
	// protection areas and so on).
	SourceNVR Source = "nvr"
	// SourceNatura2000 covers the EU-designated Natura 2000 sites
	// (SPA and SCI/SAC).
	SourceNatura2000 Source = "natura2000"
	// SourceRamsar covers wetland sites designated under the Ramsar
	// convention.
	SourceRamsar Source = "ramsar"
)

// Valid reports whether s names a known registry.
func (s Source) Valid() bool {
	switch s {
	case SourceNVR, SourceNatura2000, SourceRamsar:
		return true
	}
	return false
}

// Sources lists all known registries in a stable order.
func Sources() []Source {
	return []Source{SourceNVR, SourceNatura2000, SourceRamsar}
}

// Area is a protected nature area as listed by an upstream registry.
type Area struct {
	ID           string  `json:"id"`
	Source       Source  `json:"source"`
	Name         string  `json:"name"`
	Category     string  `json:"category,omitempty"` // e.g. NP, NR, SPA, RAMSAR
	Status       string  `json:"status,omitempty"`   // e.g. Gällande, Föreslagen
	County       string  `json:"county,omitempty"`
	Municipality string  `json:"municipality,omitempty"`
	AreaHa       float64 `json:"area_ha,omitempty"`
	DecidedYear  int     `json:"decided_year,omitempty"`
}

// AreaFilter narrows an area listing. Zero-valued fields are ignored.
type AreaFilter struct {
	Name         string // substring match on area name
	CountyCode   string // two-digit county code, e.g. "01" for Stockholm
	Municipality string // municipality name, passed through to upstream
	Status       string // registration status
	Limit        int
}

// CRSWGS84 is the coordinate reference system declared on every
// geometry this service returns. Upstream data arrives in EPSG:3006
// and is reprojected before leaving the service.
const CRSWGS84 = "EPSG:4326"

// Geometry is a single area's boundary, reprojected to WGS 84.
type Geometry struct {
	ID     string `json:"id"`
	Source Source `json:"source"`
	CRS    string `json:"crs"`
	WKT    string `json:"geometry"`
}

// Extent is the combined bounding box of one or more areas, WGS 84.
type Extent struct {
	IDs    []string `json:"ids"`
	Source Source   `json:"source"`
	CRS    string   `json:"crs"`
	WKT    string   `json:"extent"`
}

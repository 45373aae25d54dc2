package naturvard

import (
	"context"
	"net/url"
	"strings"

	"github.com/naturkollen/skyddadnatur/internal/core/domain"
	"github.com/naturkollen/skyddadnatur/internal/pkg/metrics"
)

// RegistryClient implements ports.AreaSource against one dataset on
// the geodata platform. The three registries share one URL scheme and
// differ only in dataset path and source tag.
type RegistryClient struct {
	client  *Client
	dataset string
	source  domain.Source
}

// NewNVR returns the client for Naturvårdsregistret (national parks,
// nature reserves, and other nationally protected areas).
func NewNVR(c *Client) *RegistryClient {
	return &RegistryClient{client: c, dataset: "naturvardsregistret", source: domain.SourceNVR}
}

// NewNatura2000 returns the client for the EU Natura 2000 sites.
func NewNatura2000(c *Client) *RegistryClient {
	return &RegistryClient{client: c, dataset: "natura2000", source: domain.SourceNatura2000}
}

// NewRamsar returns the client for Ramsar convention wetland sites.
func NewRamsar(c *Client) *RegistryClient {
	return &RegistryClient{client: c, dataset: "ramsar", source: domain.SourceRamsar}
}

func (r *RegistryClient) Source() domain.Source { return r.source }

// areaRecord is the upstream list row. Field names follow the
// registry's Swedish schema; they are reshaped into domain.Area so the
// rest of the service sees stable names.
type areaRecord struct {
	ID        string  `json:"id"`
	Namn      string  `json:"namn"`
	Kategori  string  `json:"skyddstyp"`
	Status    string  `json:"beslutsstatus"`
	Lan       string  `json:"lan"`
	Kommun    string  `json:"kommun"`
	AreaHa    float64 `json:"areaHa"`
	Beslutsar int     `json:"beslutsar"`
}

// List fetches areas matching the filter.
func (r *RegistryClient) List(ctx context.Context, filter domain.AreaFilter) ([]domain.Area, error) {
	q := url.Values{}
	if filter.Name != "" {
		q.Set("namn", filter.Name)
	}
	if filter.CountyCode != "" {
		q.Set("lanskod", filter.CountyCode)
	}
	if filter.Municipality != "" {
		q.Set("kommun", filter.Municipality)
	}
	if filter.Status != "" {
		q.Set("status", filter.Status)
	}
	intQuery(q, "limit", filter.Limit)

	timer := metrics.UpstreamTimer(string(r.source), "list")
	var records []areaRecord
	err := r.client.getJSON(ctx, "/"+r.dataset+"/omraden", q, &records)
	timer.Done(err)
	if err != nil {
		return nil, err
	}

	areas := make([]domain.Area, 0, len(records))
	for _, rec := range records {
		areas = append(areas, domain.Area{
			ID:           rec.ID,
			Source:       r.source,
			Name:         rec.Namn,
			Category:     rec.Kategori,
			Status:       rec.Status,
			County:       rec.Lan,
			Municipality: rec.Kommun,
			AreaHa:       rec.AreaHa,
			DecidedYear:  rec.Beslutsar,
		})
	}
	return areas, nil
}

// Geometry fetches one area's boundary as WKT in EPSG:3006.
func (r *RegistryClient) Geometry(ctx context.Context, id, status string) (string, error) {
	q := url.Values{}
	if status != "" {
		q.Set("status", status)
	}

	timer := metrics.UpstreamTimer(string(r.source), "geometry")
	wkt, err := r.client.getText(ctx, "/"+r.dataset+"/omrade/"+url.PathEscape(id)+"/geometri", q)
	timer.Done(err)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(wkt), nil
}

// Extent fetches the upstream-computed combined extent of the given
// areas as WKT in EPSG:3006.
func (r *RegistryClient) Extent(ctx context.Context, ids []string) (string, error) {
	q := url.Values{}
	q.Set("ids", strings.Join(ids, ","))

	timer := metrics.UpstreamTimer(string(r.source), "extent")
	wkt, err := r.client.getText(ctx, "/"+r.dataset+"/omraden/utbredning", q)
	timer.Done(err)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(wkt), nil
}

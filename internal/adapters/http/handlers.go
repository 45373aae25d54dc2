package http

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/naturkollen/skyddadnatur/internal/adapters/naturvard"
	"github.com/naturkollen/skyddadnatur/internal/core/domain"
	"github.com/naturkollen/skyddadnatur/internal/pkg/admincodes"
	"github.com/naturkollen/skyddadnatur/internal/pkg/wkt"
)

// maxExtentIDs caps how many areas one extent request may combine.
const maxExtentIDs = 50

// maxListWindow is the upstream fetch size for area listings. The
// registries accept a page size but no offset, so the handler fetches
// the full window once and slices locally; the window must therefore
// not shrink to the client's page size or no request could ever see
// past the first client page.
const maxListWindow = 500

// sourceParam reads and validates the source query parameter,
// defaulting to the national registry.
func sourceParam(c *fiber.Ctx) (domain.Source, error) {
	s := domain.Source(c.Query("source", string(domain.SourceNVR)))
	if !s.Valid() {
		return "", errors.New("source must be one of: nvr, natura2000, ramsar")
	}
	return s, nil
}

// mapServiceError translates usecase errors into the API envelope.
func mapServiceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, naturvard.ErrNotFound):
		return errNotFound(c, err.Error())
	case errors.Is(err, naturvard.ErrUpstream):
		LoggerFromCtx(c.UserContext()).Warn("upstream registry failure", "error", err)
		return errBadGateway(c, err.Error())
	case errors.Is(err, wkt.ErrEmptyGeometry):
		LoggerFromCtx(c.UserContext()).Warn("upstream returned empty geometry", "error", err)
		return errBadGateway(c, err.Error())
	default:
		LoggerFromCtx(c.UserContext()).Error("request failed", "error", err)
		return errInternal(c, err.Error())
	}
}

// SourceInfo describes one upstream registry.
type SourceInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ListSourcesHandler enumerates the available registries.
func ListSourcesHandler(deps *Dependencies) fiber.Handler {
	names := map[domain.Source]string{
		domain.SourceNVR:        "Naturvårdsregistret",
		domain.SourceNatura2000: "Natura 2000",
		domain.SourceRamsar:     "Ramsar wetland sites",
	}
	return func(c *fiber.Ctx) error {
		var out []SourceInfo
		for _, s := range domain.Sources() {
			out = append(out, SourceInfo{ID: string(s), Name: names[s]})
		}
		c.Set("Cache-Control", "public, max-age=3600")
		return c.JSON(out)
	}
}

// ListAreasHandler returns areas matching the query filters.
func ListAreasHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		source, err := sourceParam(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}

		offset := c.QueryInt("offset", 0)
		limit := c.QueryInt("limit", 100)
		if offset < 0 {
			offset = 0
		}
		if limit <= 0 || limit > maxListWindow {
			limit = 100
		}

		filter := domain.AreaFilter{
			Name:         c.Query("q"),
			Municipality: c.Query("municipality"),
			Status:       c.Query("status"),
			Limit:        maxListWindow,
		}
		if county := c.Query("county"); county != "" {
			code := admincodes.CountyCode(county)
			if code == "" {
				return errBadRequest(c, "unknown county: "+county)
			}
			filter.CountyCode = code
		}

		areas, err := deps.Areas.List(c.UserContext(), source, filter)
		if err != nil {
			return mapServiceError(c, err)
		}

		// Offset pagination over the fetched window.
		total := len(areas)
		if offset >= total {
			areas = nil
		} else {
			end := offset + limit
			if end > total {
				end = total
			}
			areas = areas[offset:end]
		}

		pg := Pagination{Offset: offset, Limit: limit, Total: total}
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: areas, Pagination: pg})
	}
}

// GetAreaGeometryHandler returns one area's boundary in WGS 84.
func GetAreaGeometryHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "area id is required")
		}
		source, err := sourceParam(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}

		geom, err := deps.Areas.Geometry(c.UserContext(), source, id, c.Query("status"))
		if err != nil {
			return mapServiceError(c, err)
		}

		c.Set("Cache-Control", "public, max-age=3600")
		return c.JSON(geom)
	}
}

// AreasExtentHandler returns the combined bounding box of the given
// areas as a WKT polygon in WGS 84.
func AreasExtentHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := c.Query("ids")
		if raw == "" {
			return errBadRequest(c, "ids query parameter is required")
		}
		var ids []string
		for _, id := range strings.Split(raw, ",") {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, id)
			}
		}
		if len(ids) == 0 {
			return errBadRequest(c, "ids query parameter must contain at least one id")
		}
		if len(ids) > maxExtentIDs {
			return errBadRequest(c, "too many ids (max 50)")
		}

		source, err := sourceParam(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}

		extent, err := deps.Extents.GetAreasExtent(c.UserContext(), source, ids)
		if err != nil {
			return mapServiceError(c, err)
		}

		return c.JSON(extent)
	}
}

package http

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/geogrids/internal/core/domain"
	"github.com/samirrijal/geogrids/internal/pkg/gdgg"
)

// maxWordText bounds the text accepted by the decode endpoint.
const maxWordText = 1024

// EncodeCellHandler hashes a coordinate: GET /v1/cells/encode?lat=&lon=&precision=
func EncodeCellHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		lat, lon, err := queryLatLon(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		precision := c.QueryInt("precision", deps.defaultPrecision())

		cell, err := deps.Grid.Encode(c.UserContext(), lat, lon, precision)
		if err != nil {
			return handleError(c, err)
		}
		return c.JSON(cell)
	}
}

// GetCellHandler returns the cell of a readable hash: GET /v1/cells/:hash
func GetCellHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		cell, err := deps.Grid.LocateReadable(c.UserContext(), c.Params("hash"))
		if err != nil {
			return handleError(c, err)
		}
		return c.JSON(cell)
	}
}

// LocateNumericHandler returns the cell of a numeric hash:
// GET /v1/cells/numeric/:hash?precision=
func LocateNumericHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		hash, err := strconv.ParseUint(c.Params("hash"), 10, 64)
		if err != nil {
			return errBadRequest(c, "hash must be an unsigned 64-bit integer")
		}
		precision := c.QueryInt("precision", deps.defaultPrecision())

		cell, err := deps.Grid.LocateNumeric(c.UserContext(), hash, precision)
		if err != nil {
			return handleError(c, err)
		}
		return c.JSON(cell)
	}
}

// CellAreaHandler returns a cell as GeoJSON: GET /v1/cells/:hash/area
func CellAreaHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		data, err := deps.Grid.AreaGeoJSON(c.UserContext(), c.Params("hash"))
		if err != nil {
			return handleError(c, err)
		}
		c.Set(fiber.HeaderContentType, "application/geo+json")
		return c.Send(data)
	}
}

type batchRequest struct {
	Points    []domain.GeoPoint `json:"points"`
	Precision int               `json:"precision"`
	Async     bool              `json:"async"`
}

// BatchEncodeHandler hashes many points at once: POST /v1/cells/batch.
// With "async": true the batch is queued for the worker and 202 is returned.
func BatchEncodeHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req batchRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if len(req.Points) == 0 {
			return errBadRequest(c, "points must not be empty")
		}
		if req.Precision == 0 {
			req.Precision = deps.defaultPrecision()
		}

		if req.Async {
			job, err := deps.Grid.SubmitBatch(c.UserContext(), req.Points, req.Precision)
			if err != nil {
				return handleError(c, err)
			}
			return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
				"job_id": job.ID,
				"points": len(job.Points),
			})
		}

		cells, err := deps.Grid.EncodeBatch(c.UserContext(), req.Points, req.Precision)
		if err != nil {
			return handleError(c, err)
		}
		return c.JSON(fiber.Map{"cells": cells})
	}
}

// PrecisionsHandler lists the precisions that map onto whole levels.
func PrecisionsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"precisions":  deps.Grid.Precisions(),
			"default":     deps.defaultPrecision(),
			"max_numeric": gdgg.MaxPrecision,
			"max_batch":   deps.Grid.MaxBatch(),
		})
	}
}

// ListWordlistsHandler returns the latest version of each word list.
func ListWordlistsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		lists, err := deps.Wordlists.List(c.UserContext())
		if err != nil {
			return handleError(c, err)
		}

		offset, limit := pageParams(c)
		pg := Pagination{Offset: offset, Limit: limit, Total: len(lists)}
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: paginate(lists, offset, limit), Pagination: pg})
	}
}

// CreateWordlistHandler registers a word list version: POST /v1/wordlists
func CreateWordlistHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var wl domain.Wordlist
		if err := c.BodyParser(&wl); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if err := deps.Wordlists.Register(c.UserContext(), &wl); err != nil {
			return handleError(c, err)
		}
		c.Location("/v1/wordlists/" + wl.Name + "?version=" + strconv.Itoa(wl.Version))
		return c.Status(fiber.StatusCreated).JSON(wl)
	}
}

// GetWordlistHandler returns one word list: GET /v1/wordlists/:name?version=
func GetWordlistHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		version, err := queryVersion(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		wl, err := deps.Wordlists.Get(c.UserContext(), c.Params("name"), version)
		if err != nil {
			return handleError(c, err)
		}
		return c.JSON(wl)
	}
}

// EncodeWordsHandler spells a numeric hash with a word list:
// GET /v1/wordlists/:name/encode?hash=&precision= or ?lat=&lon=&precision=
func EncodeWordsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		version, err := queryVersion(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		precision := c.QueryInt("precision", deps.defaultPrecision())
		ctx := c.UserContext()

		var hash uint64
		var cell *domain.Cell
		if raw := c.Query("hash"); raw != "" {
			hash, err = strconv.ParseUint(raw, 10, 64)
			if err != nil {
				return errBadRequest(c, "hash must be an unsigned 64-bit integer")
			}
		} else {
			lat, lon, err := queryLatLon(c)
			if err != nil {
				return errBadRequest(c, "either hash or lat and lon are required")
			}
			cell, err = deps.Grid.Encode(ctx, lat, lon, precision)
			if err != nil {
				return handleError(c, err)
			}
			hash, precision = cell.NumericHash, cell.Precision
		}

		enc, err := deps.Wordlists.EncodeHash(ctx, c.Params("name"), version, hash, precision)
		if err != nil {
			return handleError(c, err)
		}
		return c.JSON(fiber.Map{"encoding": enc, "cell": cell})
	}
}

// DecodeWordsHandler reads words back into a hash:
// GET /v1/wordlists/:name/decode?text=&locate=true
// With locate the decoded hash is resolved to its cell when its precision
// addresses one.
func DecodeWordsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		version, err := queryVersion(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		text := c.Query("text")
		if strings.TrimSpace(text) == "" {
			return errBadRequest(c, "text query parameter is required")
		}
		if len(text) > maxWordText {
			return errBadRequest(c, "text too long")
		}
		ctx := c.UserContext()

		dec, err := deps.Wordlists.DecodeText(ctx, c.Params("name"), version, text)
		if err != nil {
			return handleError(c, err)
		}

		resp := fiber.Map{"decoding": dec}
		if c.QueryBool("locate") && dec.Precision >= 3 && dec.Precision <= gdgg.MaxPrecision {
			cell, err := deps.Grid.LocateNumeric(ctx, dec.Hash, dec.Precision)
			if err != nil {
				return handleError(c, err)
			}
			resp["cell"] = cell
		}
		return c.JSON(resp)
	}
}

type paramError string

func (e paramError) Error() string { return string(e) }

func queryLatLon(c *fiber.Ctx) (float64, float64, error) {
	latStr, lonStr := c.Query("lat"), c.Query("lon")
	if latStr == "" || lonStr == "" {
		return 0, 0, paramError("lat and lon are required")
	}
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return 0, 0, paramError("lat must be a number")
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return 0, 0, paramError("lon must be a number")
	}
	return lat, lon, nil
}

// queryVersion reads ?version=; absent means latest (0).
func queryVersion(c *fiber.Ctx) (int, error) {
	raw := c.Query("version")
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, paramError("version must be a non-negative integer")
	}
	return v, nil
}

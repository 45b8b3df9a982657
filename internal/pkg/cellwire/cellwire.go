// Package cellwire encodes cell events in the protobuf wire format so they
// stay compact on the message bus. Field numbers are stable; unknown fields
// are skipped on decode.
package cellwire

import (
	"errors"
	"fmt"
	"math"
	"time"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/samirrijal/geogrids/internal/core/domain"
)

// ErrMalformed wraps every decode failure.
var ErrMalformed = errors.New("malformed cell payload")

// event fields
const (
	fieldJobID protowire.Number = 1
	fieldTime  protowire.Number = 2
	fieldCell  protowire.Number = 3
)

// cell fields
const (
	fieldReadable  protowire.Number = 1
	fieldNumeric   protowire.Number = 2
	fieldPrecision protowire.Number = 3
	fieldOctant    protowire.Number = 4
	fieldLevels    protowire.Number = 5
	fieldCenter    protowire.Number = 6
	fieldCorners   protowire.Number = 7
	fieldSource    protowire.Number = 8
)

// point fields
const (
	fieldLat protowire.Number = 1
	fieldLon protowire.Number = 2
)

// MarshalEvent encodes a cell event.
func MarshalEvent(ev *domain.CellEvent) []byte {
	var b []byte
	if ev.JobID != "" {
		b = protowire.AppendTag(b, fieldJobID, protowire.BytesType)
		b = protowire.AppendString(b, ev.JobID)
	}
	if !ev.Time.IsZero() {
		b = protowire.AppendTag(b, fieldTime, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(ev.Time.UnixNano()))
	}
	b = protowire.AppendTag(b, fieldCell, protowire.BytesType)
	b = protowire.AppendBytes(b, MarshalCell(&ev.Cell))
	return b
}

// UnmarshalEvent decodes a payload produced by MarshalEvent.
func UnmarshalEvent(b []byte) (*domain.CellEvent, error) {
	ev := &domain.CellEvent{}
	err := walk(b, func(num protowire.Number, typ protowire.Type, v []byte, x uint64) error {
		switch {
		case num == fieldJobID && typ == protowire.BytesType:
			ev.JobID = string(v)
		case num == fieldTime && typ == protowire.VarintType:
			ev.Time = time.Unix(0, int64(x)).UTC()
		case num == fieldCell && typ == protowire.BytesType:
			c, err := UnmarshalCell(v)
			if err != nil {
				return err
			}
			ev.Cell = *c
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ev, nil
}

// MarshalCell encodes a cell. Bounds are not sent; they follow from the corners.
func MarshalCell(c *domain.Cell) []byte {
	var b []byte
	b = protowire.AppendTag(b, fieldReadable, protowire.BytesType)
	b = protowire.AppendString(b, c.ReadableHash)
	b = protowire.AppendTag(b, fieldNumeric, protowire.VarintType)
	b = protowire.AppendVarint(b, c.NumericHash)
	b = protowire.AppendTag(b, fieldPrecision, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(c.Precision))
	b = protowire.AppendTag(b, fieldOctant, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(c.Octant))

	if len(c.Levels) > 0 {
		var packed []byte
		for _, l := range c.Levels {
			packed = protowire.AppendVarint(packed, uint64(l))
		}
		b = protowire.AppendTag(b, fieldLevels, protowire.BytesType)
		b = protowire.AppendBytes(b, packed)
	}

	b = appendPoint(b, fieldCenter, c.Center)
	for _, p := range c.Corners {
		b = appendPoint(b, fieldCorners, p)
	}
	if c.Source != nil {
		b = appendPoint(b, fieldSource, *c.Source)
	}
	return b
}

// UnmarshalCell decodes a payload produced by MarshalCell.
func UnmarshalCell(b []byte) (*domain.Cell, error) {
	c := &domain.Cell{}
	err := walk(b, func(num protowire.Number, typ protowire.Type, v []byte, x uint64) error {
		switch {
		case num == fieldReadable && typ == protowire.BytesType:
			c.ReadableHash = string(v)
		case num == fieldNumeric && typ == protowire.VarintType:
			c.NumericHash = x
		case num == fieldPrecision && typ == protowire.VarintType:
			c.Precision = int(x)
		case num == fieldOctant && typ == protowire.VarintType:
			c.Octant = int(x)
		case num == fieldLevels && typ == protowire.BytesType:
			for len(v) > 0 {
				l, n := protowire.ConsumeVarint(v)
				if n < 0 {
					return fmt.Errorf("%w: levels: %v", ErrMalformed, protowire.ParseError(n))
				}
				c.Levels = append(c.Levels, int(l))
				v = v[n:]
			}
		case num == fieldCenter && typ == protowire.BytesType:
			p, err := unmarshalPoint(v)
			if err != nil {
				return err
			}
			c.Center = p
		case num == fieldCorners && typ == protowire.BytesType:
			p, err := unmarshalPoint(v)
			if err != nil {
				return err
			}
			c.Corners = append(c.Corners, p)
		case num == fieldSource && typ == protowire.BytesType:
			p, err := unmarshalPoint(v)
			if err != nil {
				return err
			}
			c.Source = &p
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	c.Bounds = domain.BoundsOf(c.Corners)
	return c, nil
}

func appendPoint(b []byte, num protowire.Number, p domain.GeoPoint) []byte {
	var m []byte
	m = protowire.AppendTag(m, fieldLat, protowire.Fixed64Type)
	m = protowire.AppendFixed64(m, math.Float64bits(p.Lat))
	m = protowire.AppendTag(m, fieldLon, protowire.Fixed64Type)
	m = protowire.AppendFixed64(m, math.Float64bits(p.Lon))
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, m)
}

func unmarshalPoint(b []byte) (domain.GeoPoint, error) {
	var p domain.GeoPoint
	err := walk(b, func(num protowire.Number, typ protowire.Type, _ []byte, x uint64) error {
		if typ != protowire.Fixed64Type {
			return nil
		}
		switch num {
		case fieldLat:
			p.Lat = math.Float64frombits(x)
		case fieldLon:
			p.Lon = math.Float64frombits(x)
		}
		return nil
	})
	return p, err
}

// walk visits every field of a message. Bytes fields arrive in v, varint and
// fixed64 fields in x; other wire types are skipped.
func walk(b []byte, visit func(num protowire.Number, typ protowire.Type, v []byte, x uint64) error) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(n))
		}
		b = b[n:]

		var (
			v []byte
			x uint64
		)
		switch typ {
		case protowire.VarintType:
			x, n = protowire.ConsumeVarint(b)
		case protowire.Fixed64Type:
			x, n = protowire.ConsumeFixed64(b)
		case protowire.BytesType:
			v, n = protowire.ConsumeBytes(b)
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
		}
		if n < 0 {
			return fmt.Errorf("%w: field %d: %v", ErrMalformed, num, protowire.ParseError(n))
		}
		b = b[n:]

		if err := visit(num, typ, v, x); err != nil {
			return err
		}
	}
	return nil
}

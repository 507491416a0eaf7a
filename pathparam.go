package weave

import (
	"strconv"

	"github.com/google/uuid"
)

// ParamKind identifies which concrete variant a PathParam holds.
type ParamKind uint8

const (
	ParamStr ParamKind = iota
	ParamPath
	ParamInt
	ParamUInt
	ParamUUID
)

// PathParam is the sum type requires: Str, Path (multi-segment
// remainder), Int, UInt, Uuid. Exactly one of the typed accessors is valid,
// selected by Kind.
type PathParam struct {
	Kind ParamKind
	raw string
	i int64
	u uint64
	id uuid.UUID
}

// String returns the original path text for this parameter, regardless of
// kind (invariant 8: round-tripping a typed segment yields its source text).
func (p PathParam) String() string { return p.raw }

// Str returns the value as a string; valid for Kind == ParamStr or ParamPath.
func (p PathParam) Str() string { return p.raw }

// Int returns the value as an int64; valid for Kind == ParamInt.
func (p PathParam) Int() int64 { return p.i }

// UInt returns the value as a uint64; valid for Kind == ParamUInt.
func (p PathParam) UInt() uint64 { return p.u }

// UUID returns the value as a parsed uuid.UUID; valid for Kind == ParamUUID.
func (p PathParam) UUID() uuid.UUID { return p.id }

// segKind is a segment's declared type, parsed out of a route pattern like
// "<id:int>". It mirrors its segment-kind enumeration.
type segKind uint8

const (
	segLiteral segKind = iota
	segStr
	segInt
	segI32
	segI64
	segU32
	segU64
	segUUID
	segPathParam // "<name:**>" terminal wildcard, called Wildcard elsewhere
)

func parseSegKind(typ string) (segKind, bool) {
	switch typ {
	case "str":
		return segStr, true
	case "int", "i64":
		return segInt, true
	case "i32":
		return segI32, true
	case "u32":
		return segU32, true
	case "u64":
		return segU64, true
	case "uuid":
		return segUUID, true
	case "path":
		return segPathParam, true
	}
	return segLiteral, false
}

// tryParse attempts to parse text as the declared type. Overflow and
// malformed input return ok == false (a routing miss, never a panic or a
// 500 — invariant/testable-property 12).
func (k segKind) tryParse(text string) (PathParam, bool) {
	switch k {
	case segStr:
		return PathParam{Kind: ParamStr, raw: text}, true
	case segInt, segI64:
		n, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return PathParam{}, false
		}
		return PathParam{Kind: ParamInt, raw: text, i: n}, true
	case segI32:
		n, err := strconv.ParseInt(text, 10, 32)
		if err != nil {
			return PathParam{}, false
		}
		return PathParam{Kind: ParamInt, raw: text, i: n}, true
	case segU32:
		// ParseUint rejects leading '+'/'-' and overflow by construction.
		n, err := strconv.ParseUint(text, 10, 32)
		if err != nil {
			return PathParam{}, false
		}
		return PathParam{Kind: ParamUInt, raw: text, u: n}, true
	case segU64:
		n, err := strconv.ParseUint(text, 10, 64)
		if err != nil {
			return PathParam{}, false
		}
		return PathParam{Kind: ParamUInt, raw: text, u: n}, true
	case segUUID:
		id, err := uuid.Parse(text)
		if err != nil {
			return PathParam{}, false
		}
		return PathParam{Kind: ParamUUID, raw: text, id: id}, true
	}
	return PathParam{}, false
}

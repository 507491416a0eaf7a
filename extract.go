package weave

import (
	"reflect"
	"strconv"
	"strings"
)

// extractTag is the struct-tag key used by PathInto/QueryInto to map a
// field to its source key. Declaration order of the struct's fields is
// the order fields are decoded in; the first failing field short-circuits
// the whole extraction (mirrors original_source/silent/src/extractor/
// from_request.rs's field-by-field FromRequest contract).
const extractTag = "weave"

// PathInto decodes the request's path parameters into dst, a pointer to
// a struct whose fields carry a `weave:"name"` tag (or, absent a tag,
// match the field name case-insensitively against the parameter name).
func PathInto(req *Request, dst any) error {
	return decodeFields(dst, func(name string) (string, bool) {
		p, ok := req.Param(name)
		if !ok {
			return "", false
		}
		return p.String(), true
	})
}

// QueryInto decodes the request's query parameters into dst the same way
// PathInto does for path parameters. Missing query keys leave the field
// at its zero value rather than erroring, matching Scenario B's
// {"q1":"x","q2":null,...} shape where absent keys are simply omitted.
func QueryInto(req *Request, dst any) error {
	q := req.Query()
	return decodeFields(dst, func(name string) (string, bool) {
		if !q.Has(name) {
			return "", false
		}
		return q.Get(name), true
	})
}

// HeaderInto decodes request headers into dst by the same field-tag
// convention.
func HeaderInto(req *Request, dst any) error {
	return decodeFields(dst, func(name string) (string, bool) {
		v := req.Header(name)
		if v == "" {
			return "", false
		}
		return v, true
	})
}

// ConfigOf is re-exported here under the extractor vocabulary: obtain a
// typed value from the request's shared Configs. Field-by-field binding doesn't apply — Configs values are
// already Go types, not strings.
func ConfigFrom[T any](req *Request) (T, bool) {
	return ConfigOf[T](req.Configs())
}

// ExtensionInto retrieves req's extension under key into dst (a pointer).
// Returns a ParamError if the extension is absent or of the wrong type.
func ExtensionInto[T any](req *Request, key any) (T, error) {
	var zero T
	v, ok := req.Extension(key)
	if !ok {
		return zero, ParamFailure("extension", "not present")
	}
	typed, ok := v.(T)
	if !ok {
		return zero, ParamFailure("extension", "wrong type")
	}
	return typed, nil
}

// ExtractInto fills dst (a pointer to struct) from whichever source each
// field declares, in declaration order, short-circuiting on the first
// failing field — the composite, multi-source extractor §9 describes as
// "fields each implement a from_request contract", generalizing PathInto/
// QueryInto/HeaderInto's single-source decodeFields into one pass that can
// mix sources within the same destination. A field declares its source
// with a `weave:"source=key"` tag: "path", "query", "header" and "form"
// take a string key and decode like decodeFields; "json" decodes the
// entire body into that one field via Request.JSON; "config" looks the
// field's own type up in the shared Configs; "extension=key" looks up an
// extension by key. A field with no weave tag is left untouched.
func ExtractInto(req *Request, dst any) error {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Pointer || rv.Elem().Kind() != reflect.Struct {
		return ParamFailure("", "destination must be a pointer to struct")
	}
	rv = rv.Elem()
	rt := rv.Type()

	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}
		tag := field.Tag.Get(extractTag)
		if tag == "" {
			continue
		}
		source, key, _ := strings.Cut(tag, "=")
		if err := extractField(req, source, key, rv.Field(i)); err != nil {
			return err
		}
	}
	return nil
}

func extractField(req *Request, source, key string, fv reflect.Value) error {
	switch source {
	case "path":
		p, ok := req.Param(key)
		if !ok {
			return nil
		}
		return setFieldOrFail(key, fv, p.String())
	case "query":
		q := req.Query()
		if !q.Has(key) {
			return nil
		}
		return setFieldOrFail(key, fv, q.Get(key))
	case "header":
		v := req.Header(key)
		if v == "" {
			return nil
		}
		return setFieldOrFail(key, fv, v)
	case "form":
		form, err := req.Form()
		if err != nil {
			return err
		}
		if !form.Has(key) {
			return nil
		}
		return setFieldOrFail(key, fv, form.Get(key))
	case "json":
		if !fv.CanAddr() {
			return ParamFailure(key, "json-sourced field must be addressable")
		}
		return req.JSON(fv.Addr().Interface())
	case "config":
		cfgs := req.Configs()
		if cfgs == nil {
			return ParamFailure(key, "no config registered for type "+fv.Type().String())
		}
		val, ok := cfgs.values[fv.Type()]
		if !ok {
			return ParamFailure(key, "no config registered for type "+fv.Type().String())
		}
		fv.Set(reflect.ValueOf(val))
		return nil
	case "extension":
		v, ok := req.Extension(key)
		if !ok {
			return ParamFailure(key, "extension not present")
		}
		ev := reflect.ValueOf(v)
		if !ev.Type().AssignableTo(fv.Type()) {
			return ParamFailure(key, "extension wrong type")
		}
		fv.Set(ev)
		return nil
	default:
		return ParamFailure(key, "unknown extractor source "+source)
	}
}

func setFieldOrFail(key string, fv reflect.Value, raw string) error {
	if err := setFieldFromString(fv, raw); err != nil {
		return ParamFailure(key, err.Error())
	}
	return nil
}

// HandlerFromExtractor turns fn, which only needs its composite,
// already-extracted argument, into a Handler — the adapter §9 places in
// the pipeline between the route match and the business logic, built on
// ExtractInto instead of requiring the handler body to call the
// single-source XInto helpers itself.
func HandlerFromExtractor[T any](fn func(*Request, T) (*Response, error)) Handler {
	return func(req *Request) (*Response, error) {
		var args T
		if err := ExtractInto(req, &args); err != nil {
			return nil, err
		}
		return fn(req, args)
	}
}

// decodeFields walks dst's exported fields in declaration order, looking
// each one up via lookup and parsing the resulting string into the
// field's type. The first field that's present but fails to parse
// short-circuits with a ParamError; a field simply absent from lookup is
// left at its zero value.
func decodeFields(dst any, lookup func(name string) (string, bool)) error {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Pointer || rv.Elem().Kind() != reflect.Struct {
		return ParamFailure("", "destination must be a pointer to struct")
	}
	rv = rv.Elem()
	rt := rv.Type()

	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}
		key := field.Tag.Get(extractTag)
		if key == "" {
			key = field.Name
		}
		raw, ok := lookup(key)
		if !ok {
			continue
		}
		if err := setFieldFromString(rv.Field(i), raw); err != nil {
			return ParamFailure(key, err.Error())
		}
	}
	return nil
}

func setFieldFromString(fv reflect.Value, raw string) error {
	switch fv.Kind() {
	case reflect.String:
		fv.SetString(raw)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return err
		}
		fv.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return err
		}
		fv.SetUint(n)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return err
		}
		fv.SetBool(b)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return err
		}
		fv.SetFloat(f)
	case reflect.Pointer:
		if fv.IsNil() {
			fv.Set(reflect.New(fv.Type().Elem()))
		}
		return setFieldFromString(fv.Elem(), raw)
	default:
		return ParamFailure("", "unsupported field kind "+fv.Kind().String())
	}
	return nil
}

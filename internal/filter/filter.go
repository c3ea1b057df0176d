// Package filter turns raw list query parameters into validated, immutable
// filter specifications and renders them as parameterised SQL.
package filter

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Reserved query keys shared by every resource.
const (
	KeySearch = "search"
	KeyLimit  = "limit"
	KeyOffset = "offset"

	MaxSearchLength = 200
)

const dateOnlyLayout = "2006-01-02"

// Kind is the expected type of a filter value.
type Kind int

const (
	KindEnum Kind = iota + 1
	KindUUID
	KindBool
	KindText
	KindDate
)

// Op is a comparison operator allowed in predicates.
type Op string

const (
	OpEq  Op = "="
	OpGte Op = ">="
	OpLte Op = "<="
)

func (o Op) valid() bool {
	return o == OpEq || o == OpGte || o == OpLte
}

// Field declares one recognised query key and the column it filters.
type Field struct {
	Key    string
	Column string
	Kind   Kind
	// Op defaults to OpEq.
	Op   Op
	Enum []string
}

func (f Field) op() Op {
	if f.Op == "" {
		return OpEq
	}
	return f.Op
}

// Order is one ORDER BY term.
type Order struct {
	Column string
	Desc   bool
}

// Schema is the allow-list for one list endpoint.
type Schema struct {
	Resource      string
	Fields        []Field
	SearchColumns []string
	// Fixed predicates are always applied and cannot be overridden by the caller.
	Fixed        []Predicate
	Order        []Order
	DefaultLimit int
	MaxLimit     int
}

// Predicate is a single typed comparison.
type Predicate struct {
	Key    string
	Column string
	Op     Op
	Value  any
}

// FieldError describes one offending query parameter.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists every query parameter that failed coercion or bounds.
type ValidationError struct {
	Resource string
	Fields   []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return fmt.Sprintf("invalid %s filter: %s", e.Resource, strings.Join(parts, "; "))
}

// Spec is a validated filter specification. It is immutable; accessors return copies.
type Spec struct {
	resource   string
	predicates []Predicate
	search     string
	limit      int
	offset     int
}

// Predicates returns the predicates in schema declaration order.
func (s Spec) Predicates() []Predicate {
	out := make([]Predicate, len(s.predicates))
	copy(out, s.predicates)
	return out
}

// Search returns the trimmed search substring, or "".
func (s Spec) Search() string { return s.search }

// Limit returns the page size.
func (s Spec) Limit() int { return s.limit }

// Offset returns the number of rows skipped.
func (s Spec) Offset() int { return s.offset }

// Value returns the coerced value for a query key, if present.
func (s Spec) Value(key string) (any, bool) {
	for _, p := range s.predicates {
		if p.Key == key {
			return p.Value, true
		}
	}
	return nil, false
}

// Parse validates raw query values against the schema. Unrecognised keys are
// ignored, empty values count as absent, and nothing is clamped: any bad value
// fails the whole request with every offending field listed.
func Parse(schema Schema, values url.Values) (Spec, error) {
	spec := Spec{resource: schema.Resource}
	var errs []FieldError

	single := func(key string) (string, bool) {
		raw, ok := values[key]
		if !ok || len(raw) == 0 {
			return "", false
		}
		if len(raw) > 1 {
			errs = append(errs, FieldError{Field: key, Message: "must be given at most once"})
			return "", false
		}
		v := strings.TrimSpace(raw[0])
		return v, v != ""
	}

	for _, f := range schema.Fields {
		raw, ok := single(f.Key)
		if !ok {
			continue
		}
		value, msg := coerce(f, raw)
		if msg != "" {
			errs = append(errs, FieldError{Field: f.Key, Message: msg})
			continue
		}
		spec.predicates = append(spec.predicates, Predicate{Key: f.Key, Column: f.Column, Op: f.op(), Value: value})
	}
	errs = append(errs, checkRanges(spec.predicates)...)

	if search, ok := single(KeySearch); ok {
		if len([]rune(search)) > MaxSearchLength {
			errs = append(errs, FieldError{Field: KeySearch, Message: fmt.Sprintf("must be at most %d characters", MaxSearchLength)})
		} else {
			spec.search = search
		}
	}

	spec.limit = schema.DefaultLimit
	if raw, ok := single(KeyLimit); ok {
		n, err := strconv.Atoi(raw)
		switch {
		case err != nil:
			errs = append(errs, FieldError{Field: KeyLimit, Message: "must be an integer"})
		case n < 1:
			errs = append(errs, FieldError{Field: KeyLimit, Message: "must be at least 1"})
		case n > schema.MaxLimit:
			errs = append(errs, FieldError{Field: KeyLimit, Message: fmt.Sprintf("must be at most %d", schema.MaxLimit)})
		default:
			spec.limit = n
		}
	}

	if raw, ok := single(KeyOffset); ok {
		n, err := strconv.Atoi(raw)
		switch {
		case err != nil:
			errs = append(errs, FieldError{Field: KeyOffset, Message: "must be an integer"})
		case n < 0:
			errs = append(errs, FieldError{Field: KeyOffset, Message: "must be zero or greater"})
		default:
			spec.offset = n
		}
	}

	if len(errs) > 0 {
		return Spec{}, &ValidationError{Resource: schema.Resource, Fields: errs}
	}
	return spec, nil
}

func coerce(f Field, raw string) (any, string) {
	switch f.Kind {
	case KindEnum:
		v := strings.ToLower(raw)
		for _, allowed := range f.Enum {
			if v == allowed {
				return v, ""
			}
		}
		return nil, "must be one of: " + strings.Join(f.Enum, ", ")
	case KindUUID:
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, "must be a valid UUID"
		}
		return id.String(), ""
	case KindBool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, "must be true or false"
		}
		return b, ""
	case KindText:
		if len([]rune(raw)) > MaxSearchLength {
			return nil, fmt.Sprintf("must be at most %d characters", MaxSearchLength)
		}
		return raw, ""
	case KindDate:
		t, ok := parseDate(raw, f.op() == OpLte)
		if !ok {
			return nil, "must be an RFC 3339 timestamp or a YYYY-MM-DD date"
		}
		return t, ""
	default:
		return nil, "is not supported"
	}
}

// parseDate accepts RFC 3339 or a bare date. A bare upper bound covers the whole day.
func parseDate(raw string, endOfDay bool) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), true
	}
	t, err := time.Parse(dateOnlyLayout, raw)
	if err != nil {
		return time.Time{}, false
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, true
}

// checkRanges rejects lower bounds that come after upper bounds on the same column.
func checkRanges(preds []Predicate) []FieldError {
	lower := map[string]Predicate{}
	for _, p := range preds {
		if p.Op == OpGte {
			lower[p.Column] = p
		}
	}
	var errs []FieldError
	for _, p := range preds {
		if p.Op != OpLte {
			continue
		}
		lo, ok := lower[p.Column]
		if !ok {
			continue
		}
		from, okFrom := lo.Value.(time.Time)
		to, okTo := p.Value.(time.Time)
		if okFrom && okTo && to.Before(from) {
			errs = append(errs, FieldError{Field: p.Key, Message: "must not be before " + lo.Key})
		}
	}
	return errs
}

// Query is a rendered WHERE / ORDER BY / LIMIT clause set.
type Query struct {
	where   string
	args    []any
	orderBy string
	limit   int
	offset  int
}

// Build renders a spec into SQL fragments, re-checking every column against
// the schema allow-list.
func Build(spec Spec, schema Schema) (Query, error) {
	if spec.resource != schema.Resource {
		return Query{}, fmt.Errorf("filter: spec for %q used with schema %q", spec.resource, schema.Resource)
	}
	if len(schema.Order) == 0 {
		return Query{}, fmt.Errorf("filter: schema %q has no order", schema.Resource)
	}
	if spec.limit < 1 || spec.limit > schema.MaxLimit || spec.offset < 0 {
		return Query{}, fmt.Errorf("filter: limit/offset out of bounds for %q", schema.Resource)
	}

	allowed := make(map[string]struct{}, len(schema.Fields)+len(schema.Fixed))
	for _, f := range schema.Fields {
		allowed[f.Column] = struct{}{}
	}
	for _, p := range schema.Fixed {
		allowed[p.Column] = struct{}{}
	}

	var conds []string
	var args []any
	add := func(p Predicate) error {
		if _, ok := allowed[p.Column]; !ok {
			return fmt.Errorf("filter: column %q is not allowed for %q", p.Column, schema.Resource)
		}
		if !p.Op.valid() {
			return fmt.Errorf("filter: operator %q is not allowed", p.Op)
		}
		args = append(args, p.Value)
		conds = append(conds, fmt.Sprintf("%s %s $%d", p.Column, p.Op, len(args)))
		return nil
	}

	for _, p := range schema.Fixed {
		if err := add(p); err != nil {
			return Query{}, err
		}
	}
	for _, p := range spec.predicates {
		if err := add(p); err != nil {
			return Query{}, err
		}
	}

	if spec.search != "" && len(schema.SearchColumns) > 0 {
		args = append(args, "%"+escapeLike(spec.search)+"%")
		ors := make([]string, 0, len(schema.SearchColumns))
		for _, col := range schema.SearchColumns {
			ors = append(ors, fmt.Sprintf("%s ILIKE $%d", col, len(args)))
		}
		conds = append(conds, "("+strings.Join(ors, " OR ")+")")
	}

	q := Query{args: args, limit: spec.limit, offset: spec.offset}
	if len(conds) > 0 {
		q.where = " WHERE " + strings.Join(conds, " AND ")
	}

	terms := make([]string, 0, len(schema.Order))
	for _, o := range schema.Order {
		dir := "ASC"
		if o.Desc {
			dir = "DESC"
		}
		terms = append(terms, o.Column+" "+dir)
	}
	q.orderBy = " ORDER BY " + strings.Join(terms, ", ")
	return q, nil
}

// Select renders the page query.
func (q Query) Select(from, columns string) (string, []any) {
	args := append(q.Args(), q.limit, q.offset)
	sql := fmt.Sprintf("SELECT %s FROM %s%s%s LIMIT $%d OFFSET $%d",
		columns, from, q.where, q.orderBy, len(args)-1, len(args))
	return sql, args
}

// Count renders the total-count query for the same predicates.
func (q Query) Count(from string) (string, []any) {
	return "SELECT COUNT(*) FROM " + from + q.where, q.Args()
}

// Args returns a copy of the predicate arguments.
func (q Query) Args() []any {
	out := make([]any, len(q.args))
	copy(out, q.args)
	return out
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// Page is the pagination block returned with every list response.
type Page struct {
	Total   int  `json:"total"`
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"hasMore"`
}

// NewPage computes pagination for a spec and a total count.
func NewPage(spec Spec, total int) Page {
	return Page{
		Total:   total,
		Limit:   spec.limit,
		Offset:  spec.offset,
		HasMore: spec.offset < total && total-spec.offset > spec.limit,
	}
}

// Window returns the [start, end) slice bounds of the page within n items.
func (s Spec) Window(n int) (int, int) {
	start := s.offset
	if start > n {
		start = n
	}
	end := start + s.limit
	if end > n {
		end = n
	}
	return start, end
}

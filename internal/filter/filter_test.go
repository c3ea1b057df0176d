package filter

import (
	"math"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSchema = Schema{
	Resource: "contacts",
	Fields: []Field{
		{Key: "status", Column: "status", Kind: KindEnum, Enum: []string{"new", "contacted", "closed"}},
		{Key: "contact_id", Column: "contact_id", Kind: KindUUID},
		{Key: "is_active", Column: "is_active", Kind: KindBool},
		{Key: "date_from", Column: "created_at", Kind: KindDate, Op: OpGte},
		{Key: "date_to", Column: "created_at", Kind: KindDate, Op: OpLte},
	},
	SearchColumns: []string{"first_name", "email"},
	Order:         []Order{{Column: "created_at", Desc: true}, {Column: "id", Desc: true}},
	DefaultLimit:  20,
	MaxLimit:      100,
}

func TestParseDefaults(t *testing.T) {
	spec, err := Parse(testSchema, url.Values{})
	require.NoError(t, err)

	assert.Equal(t, 20, spec.Limit())
	assert.Equal(t, 0, spec.Offset())
	assert.Empty(t, spec.Predicates())
	assert.Empty(t, spec.Search())
}

func TestParseIgnoresUnknownKeys(t *testing.T) {
	spec, err := Parse(testSchema, url.Values{"sort": {"name"}, "foo": {"bar"}})
	require.NoError(t, err)
	assert.Empty(t, spec.Predicates())
}

func TestParseCoercesValues(t *testing.T) {
	q := url.Values{
		"status":     {"NEW"},
		"contact_id": {"6F9619FF-8B86-D011-B42D-00C04FC964FF"},
		"is_active":  {"true"},
		"date_from":  {"2024-01-01"},
		"date_to":    {"2024-01-31"},
		"search":     {"  acme  "},
		"limit":      {"50"},
		"offset":     {"40"},
	}
	spec, err := Parse(testSchema, q)
	require.NoError(t, err)

	preds := spec.Predicates()
	require.Len(t, preds, 5)
	assert.Equal(t, "new", preds[0].Value)
	assert.Equal(t, "6f9619ff-8b86-d011-b42d-00c04fc964ff", preds[1].Value)
	assert.Equal(t, true, preds[2].Value)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), preds[3].Value)

	to := preds[4].Value.(time.Time)
	assert.Equal(t, 31, to.Day())
	assert.Equal(t, 23, to.Hour())
	assert.Equal(t, 59, to.Minute())

	assert.Equal(t, "acme", spec.Search())
	assert.Equal(t, 50, spec.Limit())
	assert.Equal(t, 40, spec.Offset())
}

func TestParseReportsEveryOffendingField(t *testing.T) {
	q := url.Values{
		"status":     {"bogus"},
		"contact_id": {"not-a-uuid"},
		"is_active":  {"maybe"},
		"date_from":  {"yesterday"},
		"limit":      {"0"},
		"offset":     {"-1"},
	}
	_, err := Parse(testSchema, q)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	fields := make([]string, 0, len(verr.Fields))
	for _, f := range verr.Fields {
		fields = append(fields, f.Field)
	}
	assert.Equal(t, []string{"status", "contact_id", "is_active", "date_from", "limit", "offset"}, fields)
}

func TestParseDoesNotClampLimit(t *testing.T) {
	_, err := Parse(testSchema, url.Values{"limit": {"101"}})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Fields, 1)
	assert.Equal(t, "limit", verr.Fields[0].Field)
	assert.Contains(t, verr.Fields[0].Message, "100")

	spec, err := Parse(testSchema, url.Values{"limit": {"100"}})
	require.NoError(t, err)
	assert.Equal(t, 100, spec.Limit())
}

func TestParseRejectsInvertedDateRange(t *testing.T) {
	_, err := Parse(testSchema, url.Values{"date_from": {"2024-02-01"}, "date_to": {"2024-01-01"}})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "date_to", verr.Fields[0].Field)

	_, err = Parse(testSchema, url.Values{"date_from": {"2024-01-01"}, "date_to": {"2024-01-01"}})
	assert.NoError(t, err)
}

func TestParseRejectsRepeatedKeys(t *testing.T) {
	_, err := Parse(testSchema, url.Values{"status": {"new", "closed"}})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "status", verr.Fields[0].Field)
}

func TestParseRejectsLongSearch(t *testing.T) {
	_, err := Parse(testSchema, url.Values{"search": {strings.Repeat("a", MaxSearchLength+1)}})
	assert.Error(t, err)

	_, err = Parse(testSchema, url.Values{"search": {strings.Repeat("a", MaxSearchLength)}})
	assert.NoError(t, err)
}

func TestParseIsDeterministic(t *testing.T) {
	q := url.Values{"is_active": {"false"}, "status": {"closed"}, "search": {"x"}, "offset": {"5"}}
	a, err := Parse(testSchema, q)
	require.NoError(t, err)
	b, err := Parse(testSchema, q)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	qa, err := Build(a, testSchema)
	require.NoError(t, err)
	qb, err := Build(b, testSchema)
	require.NoError(t, err)
	sa, argsA := qa.Select("contacts", "*")
	sb, argsB := qb.Select("contacts", "*")
	assert.Equal(t, sa, sb)
	assert.Equal(t, argsA, argsB)
}

func TestSpecAccessorsReturnCopies(t *testing.T) {
	spec, err := Parse(testSchema, url.Values{"status": {"new"}})
	require.NoError(t, err)

	preds := spec.Predicates()
	preds[0].Column = "password_hash"
	assert.Equal(t, "status", spec.Predicates()[0].Column)
}

func TestBuildRendersSQL(t *testing.T) {
	spec, err := Parse(testSchema, url.Values{"status": {"new"}, "search": {"50%_off"}, "limit": {"10"}, "offset": {"20"}})
	require.NoError(t, err)

	q, err := Build(spec, testSchema)
	require.NoError(t, err)

	sql, args := q.Select("contacts", "id, email")
	assert.Equal(t,
		"SELECT id, email FROM contacts WHERE status = $1 AND (first_name ILIKE $2 OR email ILIKE $2) ORDER BY created_at DESC, id DESC LIMIT $3 OFFSET $4",
		sql)
	assert.Equal(t, []any{"new", `%50\%\_off%`, 10, 20}, args)

	count, countArgs := q.Count("contacts")
	assert.Equal(t, "SELECT COUNT(*) FROM contacts WHERE status = $1 AND (first_name ILIKE $2 OR email ILIKE $2)", count)
	assert.Equal(t, []any{"new", `%50\%\_off%`}, countArgs)
}

func TestBuildWithoutPredicates(t *testing.T) {
	spec, err := Parse(testSchema, url.Values{})
	require.NoError(t, err)
	q, err := Build(spec, testSchema)
	require.NoError(t, err)

	sql, args := q.Select("contacts", "*")
	assert.Equal(t, "SELECT * FROM contacts ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2", sql)
	assert.Equal(t, []any{20, 0}, args)
}

func TestBuildAppliesFixedPredicates(t *testing.T) {
	public := testSchema
	public.Fixed = []Predicate{{Column: "is_active", Op: OpEq, Value: true}}
	public.Fields = public.Fields[:1]

	spec, err := Parse(public, url.Values{"status": {"new"}})
	require.NoError(t, err)
	q, err := Build(spec, public)
	require.NoError(t, err)

	sql, args := q.Count("contacts")
	assert.Equal(t, "SELECT COUNT(*) FROM contacts WHERE is_active = $1 AND status = $2", sql)
	assert.Equal(t, []any{true, "new"}, args)
}

func TestBuildRejectsForeignSchema(t *testing.T) {
	spec, err := Parse(testSchema, url.Values{"status": {"new"}})
	require.NoError(t, err)

	other := testSchema
	other.Resource = "machines"
	_, err = Build(spec, other)
	assert.Error(t, err)

	narrowed := testSchema
	narrowed.Fields = narrowed.Fields[1:]
	_, err = Build(spec, narrowed)
	assert.Error(t, err)
}

func TestNewPage(t *testing.T) {
	spec, err := Parse(testSchema, url.Values{"limit": {"10"}, "offset": {"20"}})
	require.NoError(t, err)

	assert.Equal(t, Page{Total: 31, Limit: 10, Offset: 20, HasMore: true}, NewPage(spec, 31))
	assert.False(t, NewPage(spec, 30).HasMore)
	assert.False(t, NewPage(spec, 0).HasMore)
}

func TestNewPageHugeOffset(t *testing.T) {
	spec, err := Parse(testSchema, url.Values{"limit": {"10"}, "offset": {strconv.Itoa(math.MaxInt - 5)}})
	require.NoError(t, err)

	page := NewPage(spec, 5)
	assert.False(t, page.HasMore)
	assert.Equal(t, math.MaxInt-5, page.Offset)

	start, end := spec.Window(5)
	assert.Equal(t, 5, start)
	assert.Equal(t, 5, end)
}

func TestWindow(t *testing.T) {
	spec, err := Parse(testSchema, url.Values{"limit": {"10"}, "offset": {"5"}})
	require.NoError(t, err)

	start, end := spec.Window(12)
	assert.Equal(t, 5, start)
	assert.Equal(t, 12, end)

	start, end = spec.Window(3)
	assert.Equal(t, 3, start)
	assert.Equal(t, 3, end)
}

package emit

import (
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kellegram/skematic/internal/canon"
	"github.com/kellegram/skematic/internal/ir"
	"github.com/kellegram/skematic/internal/parser"
)

const blogSrc = `
meta: { project: "blog" }
nodes:
  - id: user, name: "User", fields: [
      { name: "id", type: "UUID", required: true },
      { name: "email", type: "Email", required: false, nullable: true },
      { name: "age", type: "Int", min: 0, max: 130 },
      { name: "mode", type: "String", enum: ["AUTO", "MANUAL"] },
      { name: "tags", type: "array", items: "String" }
    ]
  - id: post, name: "Post", fields: [
      { name: "id", type: "UUID" },
      { name: "published", type: "Bool", default: false },
      { name: "created_at", type: "DateTime" }
    ]
edges:
  - id: e1, from: user, to: post, rel: posts, cardinality: many
  - id: e2, from: post, to: user, rel: author
`

func blogDoc(t *testing.T) *ir.Document {
	t.Helper()
	ast, err := parser.Parse(blogSrc)
	require.NoError(t, err)
	doc, err := canon.Canonicalize(ast, canon.Options{IDs: canon.NewGeneratorAt(0)})
	require.NoError(t, err)
	return doc
}

func TestZodBackendGolden(t *testing.T) {
	out, err := Emit("zod", blogDoc(t))
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "zod_blog", []byte(out))
}

func TestFirestoreBackendGolden(t *testing.T) {
	out, err := Emit("firestore", blogDoc(t))
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "firestore_blog", []byte(out))
}

func TestZodUserEntityEndToEnd(t *testing.T) {
	ast, err := parser.Parse(`
nodes:
  - id: User, fields: [
      { name: "id", type: "UUID", required: true },
      { name: "email", type: "String", required: false, nullable: true }
    ]
`)
	require.NoError(t, err)
	doc, err := canon.Canonicalize(ast, canon.Options{IDs: canon.NewGeneratorAt(0)})
	require.NoError(t, err)

	out, err := Emit("zod", doc)
	require.NoError(t, err)

	assert.Contains(t, out, "export const UserSchema = z.object({")
	assert.Contains(t, out, "id: z.string().uuid(),")
	assert.Contains(t, out, "email: z.string().optional().nullable(),")
	assert.Contains(t, out, "export type User = z.infer<typeof UserSchema>;")
}

func TestSelfReferenceUsesLazy(t *testing.T) {
	ast, err := parser.Parse(`
nodes:
  - id: category
edges:
  - id: e1, from: category, to: category, rel: parent
`)
	require.NoError(t, err)
	doc, err := canon.Canonicalize(ast, canon.Options{IDs: canon.NewGeneratorAt(0)})
	require.NoError(t, err)

	out, err := Emit("zod", doc)
	require.NoError(t, err)
	assert.Contains(t, out, "parent: z.lazy(() => CategorySchema)")
}

func TestUnknownBackendNamesTarget(t *testing.T) {
	_, err := Emit("protobuf", blogDoc(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"protobuf"`)
	assert.Contains(t, err.Error(), "zod")
}

func TestRegistryNames(t *testing.T) {
	assert.Equal(t, []string{"firestore", "zod"}, Names())
}

func TestEmitNilDocument(t *testing.T) {
	_, err := Emit("zod", nil)
	assert.Error(t, err)
}

func TestBackendsAreStateless(t *testing.T) {
	doc := blogDoc(t)
	first, err := Emit("zod", doc)
	require.NoError(t, err)
	second, err := Emit("zod", doc)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestEntitiesDerivedFromScalarAttrs(t *testing.T) {
	ast, err := parser.Parse(`
nodes:
  - id: reading, taken_at: "2025-01-01T00:00:00Z", value: 3.5, sensor: "550e8400-e29b-41d4-a716-446655440000", ok: true
`)
	require.NoError(t, err)
	doc, err := canon.Canonicalize(ast, canon.Options{IDs: canon.NewGeneratorAt(0)})
	require.NoError(t, err)

	entities := Entities(doc)
	require.Len(t, entities, 1)
	require.Len(t, entities[0].Fields, 4)

	byName := map[string]Field{}
	for _, f := range entities[0].Fields {
		byName[f.Name] = f
	}
	assert.Equal(t, TypeTimestamp, byName["taken_at"].Type)
	assert.Equal(t, TypeNumber, byName["value"].Type)
	assert.Equal(t, TypeUUID, byName["sensor"].Type)
	assert.Equal(t, TypeBoolean, byName["ok"].Type)
}

func TestCompanionAttrsFoldIntoField(t *testing.T) {
	ast, err := parser.Parse(`
nodes:
  - id: cfg, temperature: 72, temperature_min: -50, temperature_max: 150
`)
	require.NoError(t, err)
	doc, err := canon.Canonicalize(ast, canon.Options{IDs: canon.NewGeneratorAt(0)})
	require.NoError(t, err)

	entities := Entities(doc)
	require.Len(t, entities, 1)
	require.Len(t, entities[0].Fields, 1)

	f := entities[0].Fields[0]
	assert.Equal(t, "temperature", f.Name)
	require.NotNil(t, f.Min)
	require.NotNil(t, f.Max)
	assert.Equal(t, float64(-50), *f.Min)
	assert.Equal(t, float64(150), *f.Max)
}

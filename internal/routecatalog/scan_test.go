package routecatalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const brandRoutes = `import express from 'express';
const router = express.Router();

import {
    create,
    getAll,
} from '../../controllers/BrandController.js';

const middleware = express.Router();
router.use('/', middleware);

middleware.post('/', upload.single('image'), createRules, create);
middleware.get('/', getAll);
middleware.get('/deleted', getAllDeleted);
middleware.get('/:id', getById);
middleware.put('/:id', upload.single('image'), createRules, update);
middleware.delete('/:id', destroy);
middleware.delete('/restore/:id', restore);

export default router;
`

func TestScanLinesExtractsRegistrations(t *testing.T) {
	entries, warnings := ScanLines("brand", brandRoutes)
	require.Empty(t, warnings)
	assert.Equal(t, []Entry{
		{Name: "create", Slug: "/", Method: "POST"},
		{Name: "getAll", Slug: "/", Method: "GET"},
		{Name: "getAllDeleted", Slug: "/deleted", Method: "GET"},
		{Name: "getById", Slug: "/:id", Method: "GET"},
		{Name: "update", Slug: "/:id", Method: "PUT"},
		{Name: "destroy", Slug: "/:id", Method: "DELETE"},
		{Name: "restore", Slug: "/restore/:id", Method: "DELETE"},
	}, entries)
}

func TestScanLinesBracketedMiddleware(t *testing.T) {
	entries, warnings := ScanLines("role", "middleware.post('/', [createRules], create);\nmiddleware.put('/:id', [createRules], update);")
	require.Empty(t, warnings)
	require.Len(t, entries, 2)
	assert.Equal(t, Entry{Name: "create", Slug: "/", Method: "POST"}, entries[0])
	assert.Equal(t, Entry{Name: "update", Slug: "/:id", Method: "PUT"}, entries[1])
}

func TestScanLinesChiRegistrations(t *testing.T) {
	src := "\tr.Get(\"/\", h.listRoles)\n\tr.Get(\"/{id}\", h.showRole)\n\tr.Post(\"/sync\", h.sync) // enqueue\n"
	entries, warnings := ScanLines("role", src)
	require.Empty(t, warnings)
	assert.Equal(t, []Entry{
		{Name: "listRoles", Slug: "/", Method: "GET"},
		{Name: "showRole", Slug: "/:id", Method: "GET"},
		{Name: "sync", Slug: "/sync", Method: "POST"},
	}, entries)
}

func TestScanLinesSkipsNonRegistrations(t *testing.T) {
	src := `// middleware.get('/commented', nope);
router.use('/', middleware);
const x = middleware.getAll('/x', y);
   /* middleware.delete('/x', nope) */`
	entries, warnings := ScanLines("brand", src)
	assert.Empty(t, entries)
	assert.Empty(t, warnings)
}

func TestScanLinesWarnsOnAmbiguousLines(t *testing.T) {
	src := "middleware.get(getAll);\nmiddleware.post('/',\n    create);\nmiddleware.get('/ok', ok);"
	entries, warnings := ScanLines("brand", src)
	require.Len(t, entries, 1)
	assert.Equal(t, "ok", entries[0].Name)

	require.Len(t, warnings, 2)
	assert.Equal(t, 1, warnings[0].Line)
	assert.Equal(t, reasonMissingPath, warnings[0].Reason)
	assert.Equal(t, 2, warnings[1].Line)
	assert.Equal(t, reasonMissingHandler, warnings[1].Reason)
	assert.Contains(t, warnings[1].String(), "brand:2")
}

func TestScanLinesCollapsesDuplicates(t *testing.T) {
	src := "middleware.get('/', first);\nmiddleware.get('/', second);\nmiddleware.post('/', create);"
	entries, _ := ScanLines("brand", src)
	require.Len(t, entries, 2)
	assert.Equal(t, "first", entries[0].Name)
	assert.Equal(t, "POST", entries[1].Method)
}

func TestNormalizePath(t *testing.T) {
	cases := map[string]string{
		"":                "/",
		"/":               "/",
		"/{id}":           "/:id",
		"/{id:[0-9]+}/x":  "/:id/x",
		"/restore/:id":    "/restore/:id",
		" /deleted ":      "/deleted",
	}
	for in, want := range cases {
		assert.Equal(t, want, normalizePath(in), "input %q", in)
	}
}

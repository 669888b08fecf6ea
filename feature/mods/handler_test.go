package mods_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mod-manager/core/meta"
	coremods "mod-manager/core/mods"
	"mod-manager/feature/mods"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// zeroIsVanilla treats every EQDP edit with a zero entry as a no-op.
type zeroIsVanilla struct{}

func (zeroIsVanilla) CheckNoOp(_ context.Context, e meta.TableEdit) bool {
	return e.Eqdp != nil && e.Eqdp.Entry == 0
}

func writePackage(t *testing.T, root, id, metaJSON, edits string) {
	t.Helper()
	dir := filepath.Join(root, id)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, coremods.MetaFile), []byte(metaJSON), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.tex"), []byte("a"), 0o644))
	if edits != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, coremods.EditsFile), []byte(edits), 0o644))
	}
}

func setupApp(t *testing.T) (*fiber.App, string) {
	t.Helper()
	root := t.TempDir()
	writePackage(t, root, "Alpha", `{"Name": "Alpha", "Files": {"a.tex": ["chara/a.tex"]}}`, `[
  {"Type": "Eqdp", "Eqdp": {"SetId": 1, "Slot": "Hair", "GenderRace": "0101", "Entry": 0}},
  {"Type": "Eqdp", "Eqdp": {"SetId": 2, "Slot": "Hair", "GenderRace": "0101", "Entry": 1024}}
]`)
	writePackage(t, root, "Beta", `{"Name": "Beta", "Files": {"a.tex": ["chara/b.tex"]}}`, "")

	store := coremods.NewStore(coremods.Config{Directory: root, Workers: 2}, zap.NewNop())
	feature := mods.NewFeature(store, zeroIsVanilla{}, zap.NewNop())
	assert.Equal(t, "mods", feature.Name())
	assert.True(t, feature.IsEnabled())

	app := fiber.New()
	require.NoError(t, feature.Load(app))
	return app, root
}

func call(t *testing.T, app *fiber.App, method, path, body string) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

func TestModsReloadAndList(t *testing.T) {
	app, root := setupApp(t)

	status, body := call(t, app, "GET", "/mods", "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.JSONEq(t, `[]`, string(body))

	writePackage(t, root, "Broken", `{"Name": `, "")
	status, body = call(t, app, "POST", "/mods/reload", "")
	require.Equal(t, fiber.StatusOK, status)
	var report mods.ReloadReport
	require.NoError(t, json.Unmarshal(body, &report))
	assert.Equal(t, 2, report.Loaded)
	assert.Len(t, report.Failed, 1)

	status, body = call(t, app, "GET", "/mods", "")
	require.Equal(t, fiber.StatusOK, status)
	var list []mods.Summary
	require.NoError(t, json.Unmarshal(body, &list))
	require.Len(t, list, 2)
	assert.Equal(t, "Alpha", list[0].ID)
	assert.Equal(t, 2, list[0].Edits)
	assert.Equal(t, 1, list[0].Files)

	status, _ = call(t, app, "GET", "/mods/Beta", "")
	assert.Equal(t, fiber.StatusOK, status)
	status, _ = call(t, app, "GET", "/mods/Gamma", "")
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestModsPrune(t *testing.T) {
	app, root := setupApp(t)
	status, _ := call(t, app, "POST", "/mods/reload", "")
	require.Equal(t, fiber.StatusOK, status)

	status, body := call(t, app, "POST", "/mods/Alpha/prune", "")
	require.Equal(t, fiber.StatusOK, status)
	var res mods.PruneResult
	require.NoError(t, json.Unmarshal(body, &res))
	assert.Equal(t, 1, res.Removed)

	data, err := os.ReadFile(filepath.Join(root, "Alpha", coremods.EditsFile))
	require.NoError(t, err)
	var edits []meta.TableEdit
	require.NoError(t, json.Unmarshal(data, &edits))
	require.Len(t, edits, 1)
	assert.Equal(t, uint16(2), edits[0].Eqdp.SetID)

	status, _ = call(t, app, "POST", "/mods/Missing/prune", "")
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestModsRenameAndDelete(t *testing.T) {
	app, root := setupApp(t)
	status, _ := call(t, app, "POST", "/mods/reload", "")
	require.Equal(t, fiber.StatusOK, status)

	status, _ = call(t, app, "POST", "/mods/Alpha/rename", `{"id":"Beta"}`)
	assert.Equal(t, fiber.StatusConflict, status)

	status, _ = call(t, app, "POST", "/mods/Alpha/rename", `{"id":"a/b"}`)
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = call(t, app, "POST", "/mods/Alpha/rename", `{"id":"Gamma"}`)
	require.Equal(t, fiber.StatusOK, status)
	assert.DirExists(t, filepath.Join(root, "Gamma"))

	status, _ = call(t, app, "DELETE", "/mods/Gamma", "")
	assert.Equal(t, fiber.StatusNoContent, status)
	assert.NoDirExists(t, filepath.Join(root, "Gamma"))
}

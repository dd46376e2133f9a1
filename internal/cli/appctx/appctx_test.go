package appctx

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lherron/farmlist/internal/catalog"
	"github.com/lherron/farmlist/internal/db"
	"github.com/lherron/farmlist/internal/domain"
	"github.com/lherron/farmlist/internal/store"
	"github.com/lherron/farmlist/internal/testutil"
	"github.com/spf13/cobra"
)

// isolate points HOME, the working directory and the database path at a
// fresh temp dir so no real config leaks into the test.
func isolate(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)
	t.Setenv("FARMLIST_CATALOG", "")
	t.Setenv("FARMLIST_OUTPUT", "")
	t.Setenv("FARMLIST_DB_PATH", filepath.Join(tmpDir, "farmlist.db"))
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(old) })
	return tmpDir
}

func testCommand(args ...string) *cobra.Command {
	cmd := &cobra.Command{Use: "farmlist"}
	cmd.Flags().String("db", "", "Database path")
	cmd.Flags().String("catalog", "", "Catalog directory")
	cmd.Flags().StringP("output", "o", "", "Output format")
	cmd.Flags().Bool("selected-only", false, "Only selected bundles contribute")
	_ = cmd.ParseFlags(args)
	return cmd
}

func TestBootstrap_ConfigOnly(t *testing.T) {
	isolate(t)

	app, err := Bootstrap(testCommand(), Options{})
	if err != nil {
		t.Fatalf("Bootstrap failed: %v", err)
	}
	defer app.Close()

	if app.Config == nil {
		t.Error("Config should not be nil")
	}
	if app.DB != nil || app.Catalog != nil || app.Tracker != nil {
		t.Error("nothing but config should be loaded")
	}
}

func TestBootstrap_EmbeddedDefaults(t *testing.T) {
	isolate(t)

	app, err := Bootstrap(testCommand(), DefaultOptions())
	if err != nil {
		t.Fatalf("Bootstrap failed: %v", err)
	}
	defer app.Close()

	testutil.AssertEqual(t, SourceEmbedded, app.Source)
	if app.Tracker == nil || len(app.Tracker.Items()) == 0 {
		t.Error("tracker should be built over the embedded catalog")
	}
}

func TestBootstrap_DatabaseCatalog(t *testing.T) {
	tmpDir := isolate(t)
	dbPath := filepath.Join(tmpDir, "farmlist.db")

	database, err := db.Open(dbPath)
	testutil.AssertNoError(t, err)
	_, err = database.Migrate()
	testutil.AssertNoError(t, err)
	cat := catalog.Build(nil, []domain.ItemRecord{{Name: "Leek"}}, domain.Definitions{})
	_, err = store.New(database).Catalogs.Save(cat, "test")
	testutil.AssertNoError(t, err)
	database.Close()

	app, err := Bootstrap(testCommand(), DefaultOptions())
	if err != nil {
		t.Fatalf("Bootstrap failed: %v", err)
	}
	defer app.Close()

	testutil.AssertEqual(t, "db:IMP-00001", app.Source)
	testutil.AssertEqual(t, 1, len(app.Catalog.Items()))
}

func TestBootstrap_EmptyDatabaseFallsBack(t *testing.T) {
	tmpDir := isolate(t)
	database, err := db.Open(filepath.Join(tmpDir, "farmlist.db"))
	testutil.AssertNoError(t, err)
	_, err = database.Migrate()
	testutil.AssertNoError(t, err)
	database.Close()

	app, err := Bootstrap(testCommand(), Options{NeedsCatalog: true})
	if err != nil {
		t.Fatalf("Bootstrap failed: %v", err)
	}
	defer app.Close()
	testutil.AssertEqual(t, SourceEmbedded, app.Source)
}

func TestBootstrap_CatalogFlagOverride(t *testing.T) {
	isolate(t)
	dir := testutil.CatalogDir(t, "name,season,need_shipping\nMelon,summer,1\n", "")

	app, err := Bootstrap(testCommand("--catalog", dir), Options{NeedsCatalog: true})
	if err != nil {
		t.Fatalf("Bootstrap failed: %v", err)
	}
	defer app.Close()

	testutil.AssertEqual(t, "dir:"+dir, app.Source)
	if !app.Catalog.HasItem("Melon") {
		t.Error("catalog should come from the flag directory")
	}
}

func TestBootstrap_RequiresMigration(t *testing.T) {
	tmpDir := isolate(t)
	database, err := db.Open(filepath.Join(tmpDir, "farmlist.db"))
	testutil.AssertNoError(t, err)
	database.Close()

	_, err = Bootstrap(testCommand(), AdminOptions())
	if err == nil || !strings.Contains(err.Error(), "requires migration") {
		t.Errorf("expected migration error, got %v", err)
	}
}

func TestBootstrap_InvalidOutput(t *testing.T) {
	isolate(t)
	if _, err := Bootstrap(testCommand("-o", "xml"), Options{}); err == nil {
		t.Error("expected invalid output error")
	}
}

func TestBootstrap_SelectedOnlyFlag(t *testing.T) {
	isolate(t)
	app, err := Bootstrap(testCommand("--selected-only"), Options{})
	testutil.AssertNoError(t, err)
	defer app.Close()
	if !app.Config.SelectedBundlesOnly {
		t.Error("--selected-only should set SelectedBundlesOnly")
	}
}

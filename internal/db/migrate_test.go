package db

import (
	"path/filepath"
	"reflect"
	"testing"
	"testing/fstest"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func openSQLite(t *testing.T) *gorm.DB {
	t.Helper()

	gormDB, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "migrate.db")), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	if err := gormDB.Exec("SELECT 1").Error; err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	return gormDB
}

func TestMigrateFSAppliesOnce(t *testing.T) {
	gormDB := openSQLite(t)
	fsys := fstest.MapFS{
		"0002_notes.sql":  {Data: []byte("-- notes; table\nCREATE TABLE notes (id TEXT PRIMARY KEY);\nINSERT INTO notes (id) VALUES ('a');")},
		"0001_people.sql": {Data: []byte("CREATE TABLE people (id TEXT PRIMARY KEY);")},
		"README.md":       {Data: []byte("not a migration")},
	}

	applied, err := MigrateFS(gormDB, fsys)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if want := []string{"0001_people.sql", "0002_notes.sql"}; !reflect.DeepEqual(applied, want) {
		t.Fatalf("expected %v applied, got %v", want, applied)
	}

	applied, err = MigrateFS(gormDB, fsys)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(applied) != 0 {
		t.Fatalf("expected nothing applied twice, got %v", applied)
	}

	var count int64
	if err := gormDB.Raw("SELECT COUNT(1) FROM notes").Scan(&count).Error; err != nil || count != 1 {
		t.Fatalf("expected one note row, got %d (%v)", count, err)
	}
}

func TestMigrateFSRollsBackFailedFile(t *testing.T) {
	gormDB := openSQLite(t)
	fsys := fstest.MapFS{
		"0001_broken.sql": {Data: []byte("CREATE TABLE half (id TEXT PRIMARY KEY);\nINSERT INTO missing_table VALUES (1);")},
	}

	if _, err := MigrateFS(gormDB, fsys); err == nil {
		t.Fatalf("expected error for broken migration")
	}

	var count int64
	if err := gormDB.Raw("SELECT COUNT(1) FROM schema_migrations").Scan(&count).Error; err != nil || count != 0 {
		t.Fatalf("expected no recorded migration, got %d (%v)", count, err)
	}
}

func TestSplitStatements(t *testing.T) {
	got := splitStatements("-- header; comment\nCREATE TABLE a (id INT);\n\n  ;\nCREATE INDEX i ON a (id);\n")
	want := []string{"CREATE TABLE a (id INT)", "CREATE INDEX i ON a (id)"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

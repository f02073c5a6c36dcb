package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/crate/internal/activity"
	"github.com/desertthunder/crate/internal/models"
	"github.com/desertthunder/crate/internal/server"
	"github.com/desertthunder/crate/internal/shared"
	"github.com/desertthunder/crate/internal/store"
	tu "github.com/desertthunder/crate/internal/testing"
	"github.com/urfave/cli/v3"
)

const seedTOML = `[[items]]
title = "Spastik"
creator = "Plastikman"
format = "vinyl"
year = 1994

[[items]]
title = "Xpander"
creator = "Sasha"
format = "cd"
year = 1995

[[items]]
title = "Dark and Long"
creator = "Underworld"
format = "tape"
year = 1993
`

type testCatalog struct {
	url      string
	guard    *store.Guard[models.Item, *models.Item]
	recorder *activity.Memory
}

func newTestCatalog(t *testing.T) testCatalog {
	t.Helper()
	guard := store.NewItemGuard()
	recorder := activity.NewMemory(3)
	srv := httptest.NewServer(server.NewCatalogRouter(server.Options{
		Store:    guard,
		Activity: recorder,
		Logger:   log.New(io.Discard),
	}))
	t.Cleanup(srv.Close)
	return testCatalog{url: srv.URL, guard: guard, recorder: recorder}
}

func newTestRunner(output io.Writer) *Runner {
	return NewRunner(RunnerOpts{Output: output, Logger: log.New(io.Discard)})
}

func run(ctx context.Context, r *Runner, args ...string) error {
	app := &cli.Command{Name: "crate", Commands: r.register()}
	return app.Run(ctx, append([]string{"crate"}, args...))
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestEntityCommands(t *testing.T) {
	ctx := context.Background()

	t.Run("add, get, update, delete", func(t *testing.T) {
		catalog := newTestCatalog(t)
		output := &bytes.Buffer{}
		runner := newTestRunner(output)

		err := run(ctx, runner, "entity", "add", "--server", catalog.url,
			"--title", "Spastik", "--creator", "Plastikman", "--format", "vinyl", "--year", "1994")
		if err != nil {
			t.Fatalf("add failed: %v", err)
		}

		id := strings.TrimSpace(output.String())
		if id == "" {
			t.Fatal("expected the assigned id to be printed")
		}
		stored, err := catalog.guard.Get(id)
		if err != nil || stored.Title != "Spastik" {
			t.Fatalf("expected stored entity under %s, got %+v (%v)", id, stored, err)
		}

		output.Reset()
		if err := run(ctx, runner, "entity", "get", "--server", catalog.url, "--json", id); err != nil {
			t.Fatalf("get failed: %v", err)
		}
		var got models.Item
		if err := json.Unmarshal(output.Bytes(), &got); err != nil {
			t.Fatalf("failed to decode get output %q: %v", output.String(), err)
		}
		if got != stored {
			t.Errorf("expected %+v, got %+v", stored, got)
		}

		output.Reset()
		err = run(ctx, runner, "entity", "update", "--server", catalog.url,
			"--title", "Spastik", "--creator", "Plastikman", "--format", "cd", "--year", "2002", id)
		if err != nil {
			t.Fatalf("update failed: %v", err)
		}
		if updated, _ := catalog.guard.Get(id); updated.Format != "cd" || updated.Year != 2002 {
			t.Errorf("expected updated entity, got %+v", updated)
		}

		output.Reset()
		if err := run(ctx, runner, "entity", "delete", "--server", catalog.url, id); err != nil {
			t.Fatalf("delete failed: %v", err)
		}
		if !strings.Contains(output.String(), "Deleted "+id) {
			t.Errorf("unexpected delete output %q", output.String())
		}
		if catalog.guard.Len() != 0 {
			t.Errorf("expected empty catalog, got %d", catalog.guard.Len())
		}
	})

	t.Run("get unknown id", func(t *testing.T) {
		catalog := newTestCatalog(t)
		runner := newTestRunner(&bytes.Buffer{})

		err := run(ctx, runner, "entity", "get", "--server", catalog.url, "missing")
		if !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("delete unknown id", func(t *testing.T) {
		catalog := newTestCatalog(t)
		runner := newTestRunner(&bytes.Buffer{})

		err := run(ctx, runner, "entity", "delete", "--server", catalog.url, "missing")
		if !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("get without id", func(t *testing.T) {
		catalog := newTestCatalog(t)
		runner := newTestRunner(&bytes.Buffer{})

		err := run(ctx, runner, "entity", "get", "--server", catalog.url)
		if !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("add rejects out of range year", func(t *testing.T) {
		catalog := newTestCatalog(t)
		runner := newTestRunner(&bytes.Buffer{})

		err := run(ctx, runner, "entity", "add", "--server", catalog.url,
			"--title", "t", "--creator", "c", "--format", "cd", "--year", "70000")
		if !errors.Is(err, shared.ErrInvalidFlag) {
			t.Errorf("expected ErrInvalidFlag, got %v", err)
		}
		if catalog.guard.Len() != 0 {
			t.Error("rejected add must not reach the server")
		}
	})

	t.Run("list formats", func(t *testing.T) {
		catalog := newTestCatalog(t)
		if _, err := catalog.guard.Seed([]models.Item{
			models.NewItem("Xpander", "Sasha", "cd", 1995),
			models.NewItem("Spastik", "Plastikman", "vinyl", 1994),
		}); err != nil {
			t.Fatalf("failed to seed: %v", err)
		}

		tc := []struct {
			format string
			want   []string
		}{
			{"txt", []string{"1. Plastikman - Spastik (vinyl, 1994)", "2. Sasha - Xpander (cd, 1995)"}},
			{"csv", []string{"Spastik,Plastikman,vinyl,1994"}},
			{"markdown", []string{"| Spastik | Plastikman | vinyl | 1994 |"}},
			{"table", []string{"Spastik", "Xpander"}},
		}

		for _, tt := range tc {
			t.Run(tt.format, func(t *testing.T) {
				output := &bytes.Buffer{}
				runner := newTestRunner(output)

				if err := run(ctx, runner, "entity", "list", "--server", catalog.url, "--format", tt.format); err != nil {
					t.Fatalf("list failed: %v", err)
				}
				for _, want := range tt.want {
					if !strings.Contains(output.String(), want) {
						t.Errorf("expected %q in output:\n%s", want, output.String())
					}
				}
			})
		}

		t.Run("json", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := newTestRunner(output)

			if err := run(ctx, runner, "entity", "list", "--server", catalog.url, "--json"); err != nil {
				t.Fatalf("list failed: %v", err)
			}
			var items []models.Item
			if err := json.Unmarshal(output.Bytes(), &items); err != nil {
				t.Fatalf("failed to decode list output: %v", err)
			}
			if len(items) != 2 || items[0].Creator != "Plastikman" {
				t.Errorf("expected sorted items, got %+v", items)
			}
		})

		t.Run("unknown format", func(t *testing.T) {
			runner := newTestRunner(&bytes.Buffer{})

			err := run(ctx, runner, "entity", "list", "--server", catalog.url, "--format", "xml")
			if !errors.Is(err, shared.ErrInvalidFlag) {
				t.Errorf("expected ErrInvalidFlag, got %v", err)
			}
		})

		t.Run("output file", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := newTestRunner(output)
			path := filepath.Join(t.TempDir(), "catalog.csv")

			if err := run(ctx, runner, "entity", "list", "--server", catalog.url, "--format", "csv", "--output", path); err != nil {
				t.Fatalf("list failed: %v", err)
			}
			tu.AssertFileExists(t, path)
			if content := tu.MustReadFile(t, path); !strings.Contains(content, "Xpander,Sasha,cd,1995") {
				t.Errorf("unexpected export:\n%s", content)
			}
			if !strings.Contains(output.String(), "Exported 2 entities") {
				t.Errorf("unexpected output %q", output.String())
			}
		})
	})

	t.Run("server unreachable", func(t *testing.T) {
		runner := newTestRunner(&bytes.Buffer{})

		err := run(ctx, runner, "entity", "list", "--server", "http://127.0.0.1:1")
		if !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
	})

	t.Run("import", func(t *testing.T) {
		catalog := newTestCatalog(t)
		output := &bytes.Buffer{}
		runner := newTestRunner(output)
		path := writeFile(t, "seed.toml", seedTOML)

		err := run(ctx, runner, "entity", "import", "--server", catalog.url, "--file", path, "--rate", "1000")
		if err != nil {
			t.Fatalf("import failed: %v", err)
		}
		if catalog.guard.Len() != 3 {
			t.Errorf("expected 3 imported entities, got %d", catalog.guard.Len())
		}
		if !strings.Contains(output.String(), "Imported 3 of 3 entities (0 failed)") {
			t.Errorf("unexpected import output:\n%s", output.String())
		}
	})

	t.Run("import json summary", func(t *testing.T) {
		catalog := newTestCatalog(t)
		output := &bytes.Buffer{}
		runner := newTestRunner(output)
		path := writeFile(t, "seed.toml", seedTOML)

		err := run(ctx, runner, "entity", "import", "--server", catalog.url, "--file", path, "--rate", "1000", "--json")
		if err != nil {
			t.Fatalf("import failed: %v", err)
		}

		var summary importSummary
		if err := json.Unmarshal(output.Bytes(), &summary); err != nil {
			t.Fatalf("failed to decode summary %q: %v", output.String(), err)
		}
		if summary.Total != 3 || summary.Succeeded != 3 || len(summary.Results) != 3 {
			t.Errorf("unexpected summary: %+v", summary)
		}
		for i, row := range summary.Results {
			if row.Index != i || row.ID == "" || row.Error != "" {
				t.Errorf("unexpected row %d: %+v", i, row)
			}
		}
	})

	t.Run("import reports entries with ids", func(t *testing.T) {
		catalog := newTestCatalog(t)
		output := &bytes.Buffer{}
		runner := newTestRunner(output)
		path := writeFile(t, "seed.json",
			`{"items":[{"title":"a","creator":"b","format":"cd","year":1},{"id":"taken","title":"c","creator":"d","format":"cd","year":2}]}`)

		err := run(ctx, runner, "entity", "import", "--server", catalog.url, "--file", path, "--rate", "1000")
		if err != nil {
			t.Fatalf("import failed: %v", err)
		}
		if catalog.guard.Len() != 1 {
			t.Errorf("expected 1 imported entity, got %d", catalog.guard.Len())
		}
		if !strings.Contains(output.String(), "Imported 1 of 2 entities (1 failed)") {
			t.Errorf("unexpected import output:\n%s", output.String())
		}
	})

	t.Run("import unsupported file", func(t *testing.T) {
		catalog := newTestCatalog(t)
		runner := newTestRunner(&bytes.Buffer{})
		path := writeFile(t, "seed.csv", "title\n")

		err := run(ctx, runner, "entity", "import", "--server", catalog.url, "--file", path)
		if !errors.Is(err, shared.ErrUnsupportedSeed) {
			t.Errorf("expected ErrUnsupportedSeed, got %v", err)
		}
	})
}

func TestActivityCommand(t *testing.T) {
	ctx := context.Background()

	t.Run("shows requests made by a client", func(t *testing.T) {
		catalog := newTestCatalog(t)
		runner := newTestRunner(&bytes.Buffer{})

		if err := run(ctx, runner, "entity", "list", "--server", catalog.url, "--client", "alice", "--json"); err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if err := run(ctx, runner, "entity", "get", "--server", catalog.url, "--client", "alice", "nope"); !errors.Is(err, shared.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}

		output := &bytes.Buffer{}
		runner = newTestRunner(output)
		if err := run(ctx, runner, "activity", "--server", catalog.url, "--json", "alice"); err != nil {
			t.Fatalf("activity failed: %v", err)
		}

		var entries []activity.Entry
		if err := json.Unmarshal(output.Bytes(), &entries); err != nil {
			t.Fatalf("failed to decode activity %q: %v", output.String(), err)
		}
		if len(entries) != 2 {
			t.Fatalf("expected 2 entries, got %+v", entries)
		}
		if entries[0].Status != 404 || entries[1].Method != "GET" || entries[1].Status != 200 {
			t.Errorf("expected newest first, got %+v", entries)
		}
	})

	t.Run("table output", func(t *testing.T) {
		catalog := newTestCatalog(t)
		runner := newTestRunner(&bytes.Buffer{})

		if err := run(ctx, runner, "entity", "list", "--server", catalog.url, "--client", "bob", "--json"); err != nil {
			t.Fatalf("list failed: %v", err)
		}

		output := &bytes.Buffer{}
		runner = newTestRunner(output)
		if err := run(ctx, runner, "activity", "--server", catalog.url, "bob"); err != nil {
			t.Fatalf("activity failed: %v", err)
		}
		for _, want := range []string{"Activity for bob", "GET", "/entity", "200"} {
			if !strings.Contains(output.String(), want) {
				t.Errorf("expected %q in output:\n%s", want, output.String())
			}
		}
	})

	t.Run("unknown client", func(t *testing.T) {
		catalog := newTestCatalog(t)
		output := &bytes.Buffer{}
		runner := newTestRunner(output)

		if err := run(ctx, runner, "activity", "--server", catalog.url, "nobody"); err != nil {
			t.Fatalf("activity failed: %v", err)
		}
		if !strings.Contains(output.String(), "No requests recorded") {
			t.Errorf("unexpected output %q", output.String())
		}
	})

	t.Run("missing client id", func(t *testing.T) {
		catalog := newTestCatalog(t)
		runner := newTestRunner(&bytes.Buffer{})

		if err := run(ctx, runner, "activity", "--server", catalog.url); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})
}

func TestSetupCommands(t *testing.T) {
	ctx := context.Background()

	t.Run("config", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		output := &bytes.Buffer{}
		runner := newTestRunner(output)

		if err := run(ctx, runner, "setup", "config", "--config", path); err != nil {
			t.Fatalf("setup config failed: %v", err)
		}
		tu.AssertFileExists(t, path)

		config, err := shared.LoadConfig(path)
		if err != nil {
			t.Fatalf("written config does not load: %v", err)
		}
		if config.Server.Port != 3030 {
			t.Errorf("expected default port, got %d", config.Server.Port)
		}

		if err := run(ctx, runner, "setup", "config", "--config", path); err == nil {
			t.Error("expected error when config already exists")
		}
	})

	t.Run("database", func(t *testing.T) {
		dir := t.TempDir()
		dbPath := filepath.Join(dir, "activity.db")
		configPath := writeFile(t, "config.toml", "[database]\npath = \""+filepath.ToSlash(dbPath)+"\"\n")
		output := &bytes.Buffer{}
		runner := newTestRunner(output)

		if err := run(ctx, runner, "setup", "database", "--config", configPath); err != nil {
			t.Fatalf("setup database failed: %v", err)
		}
		tu.AssertFileExists(t, dbPath)

		db, err := shared.NewDatabase(dbPath)
		if err != nil {
			t.Fatalf("failed to reopen database: %v", err)
		}
		defer db.Close()

		var count int
		if err := db.QueryRow("SELECT COUNT(*) FROM activity").Scan(&count); err != nil {
			t.Fatalf("expected activity table: %v", err)
		}
		if !strings.Contains(output.String(), "activity.backend") {
			t.Errorf("expected backend hint, got %q", output.String())
		}
	})
}

func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to find a free port: %v", err)
	}
	defer ln.Close()
	return ln.Addr().(*net.TCPAddr).Port
}

func TestServe(t *testing.T) {
	t.Run("serves until cancelled", func(t *testing.T) {
		runner := newTestRunner(&bytes.Buffer{})
		addr := net.JoinHostPort("127.0.0.1", strconv.Itoa(freePort(t)))
		seed := writeFile(t, "seed.toml", seedTOML)

		ctx, cancel := context.WithCancel(context.Background())
		errc := make(chan error, 1)
		go func() {
			errc <- run(ctx, runner, "serve", "--addr", addr, "--seed", seed, "--log-level", "error")
		}()

		probe := newTestRunner(&bytes.Buffer{})
		var items []models.Item
		deadline := time.Now().Add(2 * time.Second)
		for {
			output := &bytes.Buffer{}
			probe.output = output
			err := run(context.Background(), probe, "entity", "list", "--server", "http://"+addr, "--json")
			if err == nil {
				if err := json.Unmarshal(output.Bytes(), &items); err != nil {
					t.Fatalf("failed to decode list: %v", err)
				}
				break
			}
			if time.Now().After(deadline) {
				t.Fatalf("server never came up: %v", err)
			}
			time.Sleep(20 * time.Millisecond)
		}

		if len(items) != 3 {
			t.Errorf("expected 3 seeded entities, got %d", len(items))
		}

		cancel()
		select {
		case err := <-errc:
			if err != nil {
				t.Errorf("expected clean shutdown, got %v", err)
			}
		case <-time.After(5 * time.Second):
			t.Fatal("serve did not return after cancel")
		}
	})

	t.Run("rejects invalid flags", func(t *testing.T) {
		tc := []struct {
			name string
			args []string
			want error
		}{
			{"malformed addr", []string{"--addr", "nope"}, shared.ErrInvalidFlag},
			{"non-numeric port", []string{"--addr", "127.0.0.1:http"}, shared.ErrInvalidFlag},
			{"port out of range", []string{"--addr", "127.0.0.1:70000"}, shared.ErrInvalidConfig},
			{"unknown log level", []string{"--log-level", "loud"}, shared.ErrInvalidConfig},
			{"unsupported seed", []string{"--seed", writeFile(t, "seed.csv", "title\n")}, shared.ErrUnsupportedSeed},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				runner := newTestRunner(&bytes.Buffer{})

				err := run(context.Background(), runner, append([]string{"serve"}, tt.args...)...)
				if !errors.Is(err, tt.want) {
					t.Errorf("expected %v, got %v", tt.want, err)
				}
			})
		}
	})

	t.Run("buildCatalog honours the activity backend", func(t *testing.T) {
		config := shared.DefaultConfig()
		config.Activity.Backend = "none"
		runner := newTestRunner(&bytes.Buffer{})

		handler, closeFn, err := runner.buildCatalog(config)
		if err != nil {
			t.Fatalf("failed to build catalog: %v", err)
		}
		defer closeFn()

		srv := httptest.NewServer(handler)
		defer srv.Close()

		output := &bytes.Buffer{}
		probe := newTestRunner(output)
		err = run(context.Background(), probe, "activity", "--server", srv.URL, "alice")
		if !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound without a recorder, got %v", err)
		}
	})
}

func TestTUICommand(t *testing.T) {
	runner := newTestRunner(&bytes.Buffer{})

	err := run(context.Background(), runner, "tui", "--server", "http://127.0.0.1:1")
	if !errors.Is(err, shared.ErrServiceUnavailable) {
		t.Errorf("expected ErrServiceUnavailable, got %v", err)
	}
}

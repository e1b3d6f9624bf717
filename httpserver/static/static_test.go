package static

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sabouaram/evloop/handler"
)

func TestIsSafeBlocksTraversal(t *testing.T) {
	sec := DefaultPathSecurity()
	if sec.isSafe("../../../etc/passwd") {
		t.Fatal("expected traversal path to be rejected")
	}
}

func TestIsSafeBlocksDotFilesByDefault(t *testing.T) {
	sec := DefaultPathSecurity()
	if sec.isSafe(".env") {
		t.Fatal("expected dot-file to be rejected by default")
	}
}

func TestIsSafeAllowsDotFilesWhenEnabled(t *testing.T) {
	sec := DefaultPathSecurity()
	sec.AllowDotFiles = true
	if !sec.isSafe(".well-known/token") {
		t.Fatal("expected dot-file to be allowed once AllowDotFiles is set")
	}
}

func TestIsSafeBlocksPatternMatch(t *testing.T) {
	sec := DefaultPathSecurity()
	if sec.isSafe("vendor/node_modules/pkg/index.js") {
		t.Fatal("expected blocked pattern component to be rejected")
	}
}

func TestRegisterWalksDirectoryAndServesFile(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "index.html"), []byte("<h1>hi</h1>"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if err := os.Mkdir(filepath.Join(root, ".git"), 0o755); err != nil {
		t.Fatalf("mkdir .git: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, ".git", "config"), []byte("secret"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	reg := handler.NewRegistry(nil)
	if err := Register(reg, root, "/assets", DefaultPathSecurity()); err != nil {
		t.Fatalf("Register: %v", err)
	}

	entry, ok := reg.Lookup("/assets/index.html")
	if !ok {
		t.Fatal("expected index.html to be registered")
	}
	body, err := entry.Body(&handler.Env{})
	if err != nil {
		t.Fatalf("body: %v", err)
	}
	if string(body.([]byte)) != "<h1>hi</h1>" {
		t.Fatalf("unexpected body: %v", body)
	}

	if _, ok := reg.Lookup("/assets/.git/config"); ok {
		t.Fatal("expected .git/config to be rejected, not registered")
	}
}

func TestJoinURIHandlesRootStem(t *testing.T) {
	if got := joinURI("/", "index.html"); got != "/index.html" {
		t.Fatalf("unexpected uri: %q", got)
	}
	if got := joinURI("/assets", "css/site.css"); got != "/assets/css/site.css" {
		t.Fatalf("unexpected uri: %q", got)
	}
}

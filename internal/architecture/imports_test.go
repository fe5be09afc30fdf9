package architecture_test

import (
	"bufio"
	"fmt"
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

// fileImports is every internal .go file mapped to its import paths,
// keyed by the file path relative to the module root.
type fileImports map[string][]string

func TestLayerBoundaries(t *testing.T) {
	root, modulePath := moduleInfo(t)
	imports := collectImports(t, root)

	rules := map[string][]string{
		"internal/platform/": {
			modulePath + "/internal/types",
			modulePath + "/internal/data/",
			modulePath + "/internal/services",
			modulePath + "/internal/http",
			modulePath + "/internal/clients/",
			modulePath + "/internal/app",
		},
		"internal/types/": {
			modulePath + "/internal/platform/",
			modulePath + "/internal/data/",
			modulePath + "/internal/services",
			modulePath + "/internal/http",
			modulePath + "/internal/clients/",
			modulePath + "/internal/app",
		},
		"internal/data/": {
			modulePath + "/internal/services",
			modulePath + "/internal/http",
			modulePath + "/internal/clients/",
			modulePath + "/internal/app",
		},
		"internal/services/": {
			modulePath + "/internal/http",
			modulePath + "/internal/app",
		},
		"internal/http/": {
			modulePath + "/internal/app",
		},
		"internal/observability/": {
			modulePath + "/internal/data/",
			modulePath + "/internal/services",
			modulePath + "/internal/http",
			modulePath + "/internal/app",
		},
	}

	type violation struct {
		file string
		imp  string
		rule string
	}
	var violations []violation

	for file, imps := range imports {
		var disallowed []string
		for prefix, bad := range rules {
			if strings.HasPrefix(file, prefix) {
				disallowed = bad
				break
			}
		}
		if len(disallowed) == 0 {
			continue
		}
		for _, imp := range imps {
			for _, bad := range disallowed {
				if strings.HasPrefix(imp, bad) {
					violations = append(violations, violation{file: file, imp: imp, rule: bad})
					break
				}
			}
		}
	}

	if len(violations) > 0 {
		var b strings.Builder
		b.WriteString("layer boundary violations:\n")
		for _, v := range violations {
			fmt.Fprintf(&b, "- %s imports %q (disallowed: %q)\n", v.file, v.imp, v.rule)
		}
		t.Fatal(b.String())
	}
}

func TestClientsWiredOnlyFromApp(t *testing.T) {
	root, modulePath := moduleInfo(t)
	imports := collectImports(t, root)

	type violation struct {
		file string
		imp  string
	}
	var violations []violation

	for file, imps := range imports {
		// The composition root owns client construction; clients may
		// reference their own siblings.
		if strings.HasPrefix(file, "internal/app/") || strings.HasPrefix(file, "internal/clients/") {
			continue
		}
		for _, imp := range imps {
			if strings.HasPrefix(imp, modulePath+"/internal/clients/") {
				violations = append(violations, violation{file: file, imp: imp})
				break
			}
		}
	}

	if len(violations) > 0 {
		var b strings.Builder
		b.WriteString("internal/clients imported outside internal/app (construct clients in app and pass handles down):\n")
		for _, v := range violations {
			fmt.Fprintf(&b, "- %s imports %q\n", v.file, v.imp)
		}
		t.Fatal(b.String())
	}
}

func moduleInfo(t *testing.T) (root, modulePath string) {
	t.Helper()

	start, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	root, err = findModuleRoot(start)
	if err != nil {
		t.Fatalf("find module root: %v", err)
	}
	modulePath, err = readModulePath(filepath.Join(root, "go.mod"))
	if err != nil {
		t.Fatalf("read module path: %v", err)
	}
	return root, modulePath
}

func collectImports(t *testing.T, root string) fileImports {
	t.Helper()

	internalDir := filepath.Join(root, "internal")
	fset := token.NewFileSet()
	out := fileImports{}

	walkErr := filepath.WalkDir(internalDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			switch d.Name() {
			case ".git", "vendor", "node_modules", ".gocache":
				return filepath.SkipDir
			default:
				return nil
			}
		}
		if !strings.HasSuffix(path, ".go") {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		f, err := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
		if err != nil {
			return err
		}
		for _, spec := range f.Imports {
			if spec == nil || spec.Path == nil {
				continue
			}
			imp, err := strconv.Unquote(spec.Path.Value)
			if err != nil {
				continue
			}
			out[rel] = append(out[rel], imp)
		}
		return nil
	})
	if walkErr != nil {
		t.Fatalf("walk internal/: %v", walkErr)
	}
	return out
}

func findModuleRoot(start string) (string, error) {
	dir := start
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("go.mod not found from %s", start)
		}
		dir = parent
	}
}

func readModulePath(goModPath string) (string, error) {
	f, err := os.Open(goModPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}
		if !strings.HasPrefix(line, "module ") {
			continue
		}
		mp := strings.TrimSpace(strings.TrimPrefix(line, "module "))
		if mp == "" {
			return "", fmt.Errorf("empty module path in %s", goModPath)
		}
		return mp, nil
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", fmt.Errorf("module path not found in %s", goModPath)
}

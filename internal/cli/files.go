package cli

import (
	"fmt"
	"go/token"
	"os"
	"path/filepath"
	"strings"

	"github.com/roach88/abibind/internal/compiler"
)

// writeFileAtomic writes data next to path and renames it into place, so
// path is either untouched or complete.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("setting file mode: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("renaming file: %w", err)
	}
	return nil
}

// packageFor picks the package name of a generated file: pkg when set,
// else the output directory's name when it is a valid identifier, else
// compiler.DefaultPackage.
func packageFor(pkg, output string) string {
	if pkg != "" {
		return pkg
	}
	if output == "" {
		return compiler.DefaultPackage
	}
	abs, err := filepath.Abs(output)
	if err != nil {
		return compiler.DefaultPackage
	}
	name := strings.ToLower(filepath.Base(filepath.Dir(abs)))
	name = strings.NewReplacer("-", "", ".", "").Replace(name)
	if !token.IsIdentifier(name) || token.IsKeyword(name) {
		return compiler.DefaultPackage
	}
	return name
}

//go:build governance

package core_test

import (
	"go/types"
	"strings"
	"testing"

	"golang.org/x/tools/go/packages"
)

// =============================================================================
// LAYERING TEST - pkg never reaches into internal, only the CLI uses cobra
// =============================================================================

// TestGovernance_Layering loads the whole module and checks the import
// direction between layers.
func TestGovernance_Layering(t *testing.T) {
	cfg := &packages.Config{Mode: packages.NeedName | packages.NeedImports}
	pkgs, err := packages.Load(cfg, modulePath+"/...")
	if err != nil {
		t.Fatalf("Failed to load packages: %v", err)
	}

	base := modulePath + "/"
	for _, p := range pkgs {
		rel := strings.TrimPrefix(p.PkgPath, base)
		inCLI := strings.HasPrefix(rel, "internal/cli") || strings.HasPrefix(rel, "cmd/") || strings.HasPrefix(rel, "scripts/")

		for imp := range p.Imports {
			switch {
			case strings.HasPrefix(rel, "pkg/") && strings.HasPrefix(imp, base+"internal/"):
				t.Errorf("LAYERING VIOLATION: '%s' imports '%s'.\n"+
					"   Fix: pkg/ is public API and must not depend on internal/.",
					rel, strings.TrimPrefix(imp, base))
			case !inCLI && strings.HasPrefix(imp, base+"internal/cli"):
				t.Errorf("LAYERING VIOLATION: '%s' imports the CLI package '%s'.",
					rel, strings.TrimPrefix(imp, base))
			case !inCLI && imp == "github.com/spf13/cobra":
				t.Errorf("LAYERING VIOLATION: '%s' imports cobra; commands belong in internal/cli.", rel)
			}
		}
	}
}

// =============================================================================
// COHESION TEST - Core types must be shared by multiple packages
// =============================================================================

// TestGovernance_CoreCohesion reports core types that only one package uses.
// Those belong with their sole consumer.
func TestGovernance_CoreCohesion(t *testing.T) {
	cfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedImports | packages.NeedTypes |
			packages.NeedTypesInfo | packages.NeedDeps,
	}
	pkgs, err := packages.Load(cfg, modulePath+"/...")
	if err != nil {
		t.Fatalf("Failed to load packages: %v", err)
	}

	coreDefs := make(map[types.Object]string)
	var corePkg *packages.Package
	for _, p := range pkgs {
		if p.PkgPath != modulePath+"/pkg/core" {
			continue
		}
		corePkg = p
		scope := p.Types.Scope()
		for _, name := range scope.Names() {
			if obj := scope.Lookup(name); obj.Exported() {
				if _, isType := obj.(*types.TypeName); isType {
					coreDefs[obj] = name
				}
			}
		}
		break
	}
	if corePkg == nil {
		t.Fatal("Could not find pkg/core")
	}

	usageMap := make(map[string]map[string]bool)
	for _, name := range coreDefs {
		usageMap[name] = make(map[string]bool)
	}

	base := modulePath + "/"
	for _, p := range pkgs {
		if p.PkgPath == corePkg.PkgPath || p.TypesInfo == nil {
			continue
		}
		for _, obj := range p.TypesInfo.Uses {
			if name, exists := coreDefs[obj]; exists {
				usageMap[name][strings.TrimPrefix(p.PkgPath, base)] = true
			}
		}
	}

	for typeName, importers := range usageMap {
		switch len(importers) {
		case 0:
			t.Logf("WARNING: Unused Core Type: %s (consider deleting)", typeName)
		case 1:
			for user := range importers {
				t.Logf("COHESION: 'core.%s' is used only by '%s'", typeName, user)
			}
		}
	}
}

package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// Fixture file ids.
const (
	MainFileID  = "main-file"
	ThemeFileID = "theme-file"
)

// Fixture mode ids.
const (
	PaletteMode = "1:0"
	LightMode   = "2:0"
	DarkMode    = "2:1"
)

// MainPayload is a Main file: a Palette collection with colors, a number and
// an in-file alias, plus a hidden collection that ingestion skips.
const MainPayload = `{
  "status": 200,
  "error": false,
  "meta": {
    "variableCollections": {
      "VariableCollectionId:1:0": {
        "id": "VariableCollectionId:1:0",
        "name": "Palette",
        "modes": [{"modeId": "1:0", "name": "Value"}],
        "defaultModeId": "1:0"
      },
      "VariableCollectionId:1:9": {
        "id": "VariableCollectionId:1:9",
        "name": "Internal",
        "modes": [{"modeId": "1:9", "name": "Value"}],
        "defaultModeId": "1:9",
        "hiddenFromPublishing": true
      }
    },
    "variables": {
      "VariableID:1:1": {
        "id": "VariableID:1:1",
        "name": "red/500",
        "variableCollectionId": "VariableCollectionId:1:0",
        "resolvedType": "COLOR",
        "valuesByMode": {"1:0": {"r": 1, "g": 0, "b": 0, "a": 1}}
      },
      "VariableID:1:2": {
        "id": "VariableID:1:2",
        "name": "grey/900",
        "variableCollectionId": "VariableCollectionId:1:0",
        "resolvedType": "COLOR",
        "valuesByMode": {"1:0": {"r": 0.2, "g": 0.2, "b": 0.2, "a": 1}}
      },
      "VariableID:1:3": {
        "id": "VariableID:1:3",
        "name": "space/sm",
        "variableCollectionId": "VariableCollectionId:1:0",
        "resolvedType": "FLOAT",
        "valuesByMode": {"1:0": 8}
      },
      "VariableID:1:4": {
        "id": "VariableID:1:4",
        "name": "brand/primary",
        "variableCollectionId": "VariableCollectionId:1:0",
        "resolvedType": "COLOR",
        "valuesByMode": {"1:0": {"type": "VARIABLE_ALIAS", "id": "VariableID:1:1"}}
      },
      "VariableID:1:5": {
        "id": "VariableID:1:5",
        "name": "white",
        "variableCollectionId": "VariableCollectionId:1:0",
        "resolvedType": "COLOR",
        "valuesByMode": {"1:0": {"r": 1, "g": 1, "b": 1, "a": 1}}
      },
      "VariableID:1:9": {
        "id": "VariableID:1:9",
        "name": "secret",
        "variableCollectionId": "VariableCollectionId:1:9",
        "resolvedType": "FLOAT",
        "valuesByMode": {"1:9": 1}
      }
    }
  }
}`

// ThemePayload is a Theme file with light and dark modes. surface/bg aliases
// Main file colors, loop/a and loop/b alias each other.
const ThemePayload = `{
  "status": 200,
  "error": false,
  "meta": {
    "variableCollections": {
      "VariableCollectionId:2:0": {
        "id": "VariableCollectionId:2:0",
        "name": "Semantic",
        "modes": [
          {"modeId": "2:0", "name": "ClassCraft (Light)"},
          {"modeId": "2:1", "name": "ClassCraft (Dark)"}
        ],
        "defaultModeId": "2:0"
      }
    },
    "variables": {
      "VariableID:2:1": {
        "id": "VariableID:2:1",
        "name": "surface/bg",
        "variableCollectionId": "VariableCollectionId:2:0",
        "resolvedType": "COLOR",
        "valuesByMode": {
          "2:0": {"type": "VARIABLE_ALIAS", "id": "VariableID:main-file/1:5"},
          "2:1": {"type": "VARIABLE_ALIAS", "id": "VariableID:1:2"}
        }
      },
      "VariableID:2:2": {
        "id": "VariableID:2:2",
        "name": "loop/a",
        "variableCollectionId": "VariableCollectionId:2:0",
        "resolvedType": "FLOAT",
        "valuesByMode": {
          "2:0": {"type": "VARIABLE_ALIAS", "id": "VariableID:2:3"},
          "2:1": {"type": "VARIABLE_ALIAS", "id": "VariableID:2:3"}
        }
      },
      "VariableID:2:3": {
        "id": "VariableID:2:3",
        "name": "loop/b",
        "variableCollectionId": "VariableCollectionId:2:0",
        "resolvedType": "FLOAT",
        "valuesByMode": {
          "2:0": {"type": "VARIABLE_ALIAS", "id": "VariableID:2:2"},
          "2:1": {"type": "VARIABLE_ALIAS", "id": "VariableID:2:2"}
        }
      },
      "VariableID:2:4": {
        "id": "VariableID:2:4",
        "name": "flag/rounded",
        "variableCollectionId": "VariableCollectionId:2:0",
        "resolvedType": "BOOLEAN",
        "valuesByMode": {"2:0": true, "2:1": false}
      }
    }
  }
}`

// WritePayloads writes the Main and Theme fixtures as "<id>.json" into dir.
func WritePayloads(t testing.TB, dir string) {
	t.Helper()
	files := map[string]string{
		MainFileID:  MainPayload,
		ThemeFileID: ThemePayload,
	}
	for id, body := range files {
		if err := os.WriteFile(filepath.Join(dir, id+".json"), []byte(body), 0o644); err != nil {
			t.Fatalf("failed to write %s payload: %v", id, err)
		}
	}
}

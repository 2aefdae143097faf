package am

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkSettingsFromSource(t *testing.T) {
	t.Run("Flat settings", func(t *testing.T) {
		settings := map[string]interface{}{
			"blank_geology": "UNKNOWN",
			"encoding":      "utf-8",
		}

		sourceMap := make(map[string]SourceInfo)
		markSettingsFromSource(settings, "", SourceUser, "/home/user/.qntx-ags/am.toml", sourceMap)

		assert.Len(t, sourceMap, 2)
		assert.Equal(t, SourceUser, sourceMap["encoding"].Source)
		assert.Equal(t, "/home/user/.qntx-ags/am.toml", sourceMap["encoding"].Path)
	})

	t.Run("Nested settings", func(t *testing.T) {
		settings := map[string]interface{}{
			"import": map[string]interface{}{
				"blank_geology": "NR",
			},
			"watch": map[string]interface{}{
				"debounce_ms": 100,
			},
		}

		sourceMap := make(map[string]SourceInfo)
		markSettingsFromSource(settings, "", SourceProject, "/site/am.toml", sourceMap)

		assert.Equal(t, SourceProject, sourceMap["import.blank_geology"].Source)
		assert.Equal(t, SourceProject, sourceMap["watch.debounce_ms"].Source)
		assert.Equal(t, "/site/am.toml", sourceMap["watch.debounce_ms"].Path)
		_, exists := sourceMap["import"]
		assert.False(t, exists, "sections are not leaves")
	})
}

func TestFlattenSettingsWithSources(t *testing.T) {
	settings := map[string]interface{}{
		"watch": map[string]interface{}{
			"max_files_per_minute": 60,
			"debounce_ms":          500,
		},
		"database": map[string]interface{}{
			"path": "site.db",
		},
	}
	sourceMap := map[string]SourceInfo{
		"database.path": {Source: SourceUser, Path: "/u/am.toml"},
	}

	introspection := &ConfigIntrospection{}
	flattenSettingsWithSources(settings, "", introspection, sourceMap)

	require.Len(t, introspection.Settings, 3)
	// Sorted by key
	assert.Equal(t, "database.path", introspection.Settings[0].Key)
	assert.Equal(t, "watch.debounce_ms", introspection.Settings[1].Key)
	assert.Equal(t, "watch.max_files_per_minute", introspection.Settings[2].Key)

	assert.Equal(t, SourceUser, introspection.Settings[0].Source)
	assert.Equal(t, SourceDefault, introspection.Settings[1].Source)
	assert.Equal(t, "built-in default", introspection.Settings[1].SourcePath)
}

func TestEnvVar(t *testing.T) {
	assert.Equal(t, "AGS_DATABASE_PATH", EnvVar("database.path"))
	assert.Equal(t, "AGS_WATCH_MAX_FILES_PER_MINUTE", EnvVar("watch.max_files_per_minute"))
}

func TestGetConfigIntrospection(t *testing.T) {
	home, project := isolate(t)

	userDir := filepath.Join(home, ".qntx-ags")
	require.NoError(t, os.MkdirAll(userDir, DefaultDirPermissions))
	userPath := filepath.Join(userDir, "am.toml")
	require.NoError(t, os.WriteFile(userPath, []byte("[database]\npath = \"user.db\"\n"), DefaultFilePermissions))
	projectPath := filepath.Join(project, "am.toml")
	require.NoError(t, os.WriteFile(projectPath, []byte("[import]\nblank_geology = \"NR\"\n"), DefaultFilePermissions))
	t.Setenv("AGS_WATCH_DEBOUNCE_MS", "100")

	introspection, err := GetConfigIntrospection()
	require.NoError(t, err)

	byKey := make(map[string]SettingInfo)
	for _, s := range introspection.Settings {
		byKey[s.Key] = s
	}

	for _, key := range Keys() {
		assert.Contains(t, byKey, key)
	}
	assert.Equal(t, SourceUser, byKey["database.path"].Source)
	assert.Equal(t, userPath, byKey["database.path"].SourcePath)
	assert.Equal(t, SourceProject, byKey["import.blank_geology"].Source)
	assert.Equal(t, SourceEnvironment, byKey["watch.debounce_ms"].Source)
	assert.Equal(t, "AGS_WATCH_DEBOUNCE_MS", byKey["watch.debounce_ms"].SourcePath)
	assert.Equal(t, SourceDefault, byKey["import.encoding"].Source)
}

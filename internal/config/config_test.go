package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigLoader_Load(t *testing.T) {
	tests := []struct {
		name              string
		configContent     string
		useExplicitPath   bool
		wantErr           bool
		want              *Config
		wantErrorContains []string
	}{
		{
			name: "valid config file with custom values",
			configContent: `data:
  driver: sqlite
  path: custom/highlights.db
export:
  language: zh
  output_directory: custom/exports
covers:
  directory: custom/covers
`,
			useExplicitPath: false,
			wantErr:         false,
			want: &Config{
				Data: DataConfig{
					Driver: DataDriverSQLite,
					Path:   "custom/highlights.db",
				},
				Export: ExportConfig{
					Language:        "zh",
					OutputDirectory: "custom/exports",
				},
				Covers: CoversConfig{
					Directory: "custom/covers",
				},
			},
		},
		{
			name: "invalid YAML format",
			configContent: `data:
  driver: file
  invalid yaml format here [[[
`,
			useExplicitPath: false,
			wantErr:         true,
			wantErrorContains: []string{
				"configuration file found but could not be read",
				"Please check the file format and permissions",
			},
		},
		{
			name: "unknown keys fall back to defaults",
			configContent: `wrong_key:
  some_value: test
`,
			useExplicitPath: false,
			wantErr:         false,
			want: &Config{
				Data: DataConfig{
					Driver: DataDriverFile,
					Path:   filepath.Join("data", "highlights.json"),
				},
				Export: ExportConfig{
					Language:        "en",
					OutputDirectory: ".",
				},
				Covers: CoversConfig{
					Directory: "covers",
				},
			},
		},
		{
			name: "partial config with missing fields uses defaults",
			configContent: `data:
  path: custom/highlights.json
`,
			useExplicitPath: false,
			wantErr:         false,
			want: &Config{
				Data: DataConfig{
					Driver: DataDriverFile,
					Path:   "custom/highlights.json",
				},
				Export: ExportConfig{
					Language:        "en",
					OutputDirectory: ".",
				},
				Covers: CoversConfig{
					Directory: "covers",
				},
			},
		},
		{
			name: "unsupported data driver",
			configContent: `data:
  driver: mysql
`,
			useExplicitPath: false,
			wantErr:         true,
			wantErrorContains: []string{
				"invalid configuration",
				"driver",
			},
		},
		{
			name: "unsupported export language",
			configContent: `export:
  language: fr
`,
			useExplicitPath: false,
			wantErr:         true,
			wantErrorContains: []string{
				"invalid configuration",
				"language",
			},
		},
		{
			name: "explicit config file path",
			configContent: `data:
  driver: file
  path: explicit/highlights.json
export:
  language: en
  output_directory: explicit/exports
covers:
  directory: explicit/covers
`,
			useExplicitPath: true,
			wantErr:         false,
			want: &Config{
				Data: DataConfig{
					Driver: DataDriverFile,
					Path:   "explicit/highlights.json",
				},
				Export: ExportConfig{
					Language:        "en",
					OutputDirectory: "explicit/exports",
				},
				Covers: CoversConfig{
					Directory: "explicit/covers",
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tempDir := t.TempDir()

			var configPath string
			if tt.useExplicitPath {
				configPath = filepath.Join(tempDir, "config.yml")
				err := os.WriteFile(configPath, []byte(tt.configContent), 0644)
				require.NoError(t, err)
			} else {
				if tt.configContent != "" {
					configPath = filepath.Join(tempDir, "config.yaml")
					err := os.WriteFile(configPath, []byte(tt.configContent), 0644)
					require.NoError(t, err)
				}

				originalDir, err := os.Getwd()
				require.NoError(t, err)
				defer func() {
					err := os.Chdir(originalDir)
					require.NoError(t, err)
				}()

				err = os.Chdir(tempDir)
				require.NoError(t, err)
				configPath = ""
			}

			loader, err := NewConfigLoader(configPath)
			require.NoError(t, err)

			got, err := loader.Load()

			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, got)
				for _, wantMsg := range tt.wantErrorContains {
					assert.Contains(t, err.Error(), wantMsg)
				}
				return
			}

			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got)
		})
	}
}

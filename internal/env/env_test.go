package env

import (
	"path/filepath"
	"runtime"
	"testing"
)

func TestLoad(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("base directories differ outside linux")
	}
	t.Cleanup(Load)

	tests := []struct {
		name       string
		env        map[string]string
		wantConfig string
		wantLog    string
		wantDebug  bool
	}{
		{
			name: "explicit paths",
			env: map[string]string{
				"ORGANIZEIMG_CONFIG_PATH": "/etc/organizeimg.yaml",
				"ORGANIZEIMG_LOG_PATH":    "/var/log/organizeimg.log",
			},
			wantConfig: "/etc/organizeimg.yaml",
			wantLog:    "/var/log/organizeimg.log",
		},
		{
			name: "debug mirror",
			env: map[string]string{
				"ORGANIZEIMG_CONFIG_PATH": "/etc/organizeimg.yaml",
				"ORGANIZEIMG_LOG_PATH":    "/var/log/organizeimg.log",
				"ORGANIZEIMG_DEBUG":       "1",
			},
			wantConfig: "/etc/organizeimg.yaml",
			wantLog:    "/var/log/organizeimg.log",
			wantDebug:  true,
		},
		{
			name: "xdg directories",
			env: map[string]string{
				"ORGANIZEIMG_CONFIG_PATH": "",
				"ORGANIZEIMG_LOG_PATH":    "",
				"XDG_CONFIG_HOME":         "/xdg/config",
				"XDG_DATA_HOME":           "/xdg/data",
			},
			wantConfig: filepath.Join("/xdg/config", "organizeimg", "config.yaml"),
			wantLog:    filepath.Join("/xdg/data", "organizeimg", "debug.log"),
		},
		{
			name: "home fallback",
			env: map[string]string{
				"ORGANIZEIMG_CONFIG_PATH": "",
				"ORGANIZEIMG_LOG_PATH":    "",
				"XDG_CONFIG_HOME":         "",
				"XDG_DATA_HOME":           "",
				"HOME":                    "/home/alice",
			},
			wantConfig: filepath.Join("/home/alice", ".config", "organizeimg", "config.yaml"),
			wantLog:    filepath.Join("/home/alice", ".local/share", "organizeimg", "debug.log"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			Load()

			if ORGANIZEIMG_CONFIG_PATH != tt.wantConfig {
				t.Errorf("ORGANIZEIMG_CONFIG_PATH = %q, want %q", ORGANIZEIMG_CONFIG_PATH, tt.wantConfig)
			}
			if ORGANIZEIMG_LOG_PATH != tt.wantLog {
				t.Errorf("ORGANIZEIMG_LOG_PATH = %q, want %q", ORGANIZEIMG_LOG_PATH, tt.wantLog)
			}
			if ORGANIZEIMG_DEBUG != tt.wantDebug {
				t.Errorf("ORGANIZEIMG_DEBUG = %v, want %v", ORGANIZEIMG_DEBUG, tt.wantDebug)
			}
		})
	}
}

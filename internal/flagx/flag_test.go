package flagx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		names []string
		want  []string
	}{
		{
			name:  "separate value",
			args:  []string{"-c", "conf.yaml", "-a", ":8080"},
			names: []string{"-c"},
			want:  []string{"-c", "conf.yaml"},
		},
		{
			name:  "equals form",
			args:  []string{"--config=alt.json", "-a", ":8080"},
			names: []string{"--config"},
			want:  []string{"--config=alt.json"},
		},
		{
			name:  "server flags out of a mixed command line",
			args:  []string{"-a", ":8080", "-d", "postgres://db", "-verbose", "-z", "Europe/Riga"},
			names: []string{"-a", "-d", "-z"},
			want:  []string{"-a", ":8080", "-d", "postgres://db", "-z", "Europe/Riga"},
		},
		{
			name:  "unknown flags and positionals dropped",
			args:  []string{"-x", "1", "--y=2", "serve"},
			names: []string{"-c"},
			want:  []string{},
		},
		{
			name:  "trailing flag without value",
			args:  []string{"-c"},
			names: []string{"-c"},
			want:  []string{"-c"},
		},
		{
			name:  "dash token is not a value",
			args:  []string{"-c", "--config=alt.json"},
			names: []string{"-c", "--config"},
			want:  []string{"-c", "--config=alt.json"},
		},
		{
			name:  "value starting with dash in equals form",
			args:  []string{"--config=--odd.json"},
			names: []string{"--config"},
			want:  []string{"--config=--odd.json"},
		},
		{
			name:  "repeated flag keeps order",
			args:  []string{"-t", "5", "-t", "10"},
			names: []string{"-t"},
			want:  []string{"-t", "5", "-t", "10"},
		},
		{
			name: "nil args",
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterArgs(tt.args, tt.names...))
		})
	}
}

func TestConfigPath(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"short", []string{"-c", "/etc/policysignoff/server.yaml"}, "/etc/policysignoff/server.yaml"},
		{"long", []string{"-config", "/etc/policysignoff/server.json"}, "/etc/policysignoff/server.json"},
		{"double dash equals", []string{"--config=/tmp/a.yml", "-a", ":1"}, "/tmp/a.yml"},
		{"last wins", []string{"-c", "/a.json", "-config", "/b.json"}, "/b.json"},
		{"absent", []string{"-a", ":8080", "-d", "dsn"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ConfigPath(tt.args))
		})
	}
}

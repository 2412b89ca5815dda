package flagx

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name         string
		args         []string
		allowedFlags []string
		want         []string
	}{
		{
			name:         "short flag with separate value",
			args:         []string{"create-user", "-d", "postgres://x", "-s", "k"},
			allowedFlags: []string{"-d"},
			want:         []string{"-d", "postgres://x"},
		},
		{
			name:         "equals form",
			args:         []string{"--config=alt.json", "-d", "dsn"},
			allowedFlags: []string{"-c", "--config"},
			want:         []string{"--config=alt.json"},
		},
		{
			name:         "unknown flags and commands ignored",
			args:         []string{"migrate", "-x", "1", "--y=2"},
			allowedFlags: []string{"-c"},
			want:         []string{},
		},
		{
			name:         "flag without value at end",
			args:         []string{"-c"},
			allowedFlags: []string{"-c"},
			want:         []string{"-c"},
		},
		{
			name:         "next dash-starting token is not a value",
			args:         []string{"-c", "-notvalue"},
			allowedFlags: []string{"-c"},
			want:         []string{"-c"},
		},
		{
			name:         "repeated flag kept in order",
			args:         []string{"-d", "one", "-d", "two"},
			allowedFlags: []string{"-d"},
			want:         []string{"-d", "one", "-d", "two"},
		},
		{
			name:         "empty args",
			args:         []string{},
			allowedFlags: []string{"-c"},
			want:         []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterArgs(tt.args, tt.allowedFlags)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("FilterArgs() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestPositional(t *testing.T) {
	valueFlags := []string{"-d", "-s", "-c"}

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{"command only", []string{"migrate"}, []string{"migrate"}},
		{"flags before command", []string{"-d", "dsn", "issue-token", "a@b.c"}, []string{"issue-token", "a@b.c"}},
		{"flags between words", []string{"add-to-group", "-s", "key", "a@b.c", "ops"}, []string{"add-to-group", "a@b.c", "ops"}},
		{"equals form skipped", []string{"-d=dsn", "migrate"}, []string{"migrate"}},
		{"boolean switch does not eat word", []string{"-v", "migrate"}, []string{"migrate"}},
		{"double dash ends flags", []string{"create-role", "--", "-weird"}, []string{"create-role", "-weird"}},
		{"nothing", []string{}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Positional(tt.args, valueFlags))
		})
	}
}

func TestConfigPath(t *testing.T) {
	t.Run("short", func(t *testing.T) {
		assert.Equal(t, "/etc/identity.json", ConfigPath([]string{"migrate", "-c", "/etc/identity.json"}))
	})

	t.Run("long", func(t *testing.T) {
		assert.Equal(t, "/etc/identity.json", ConfigPath([]string{"-config", "/etc/identity.json"}))
	})

	t.Run("absent", func(t *testing.T) {
		assert.Empty(t, ConfigPath([]string{"-d", "dsn", "migrate"}))
	})

	t.Run("last wins", func(t *testing.T) {
		assert.Equal(t, "2.json", ConfigPath([]string{"-c", "1.json", "-config", "2.json"}))
	})
}

package platform

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetect(t *testing.T) {
	t.Setenv(KernelRunTypeEnv, "Interactive")
	t.Setenv(DataProxyURLEnv, "https://proxy.example/")
	t.Setenv(DataProxyTokenEnv, "proxy-data")
	t.Setenv(IAPTokenEnv, "iap")
	t.Setenv(UserSecretsTokenEnv, "jwt")
	t.Setenv(ColabReleaseTagEnv, "")
	t.Setenv(ColabRuntimeAddrEnv, "")

	env := Detect()
	assert.Equal(t, "https://proxy.example", env.DataProxyURL)
	assert.Equal(t, "proxy-data", env.DataProxyToken)
	assert.Equal(t, "iap", env.IAPToken)
	assert.Equal(t, "jwt", env.UserSecretsToken)
	assert.True(t, env.InKaggleNotebook())
	assert.False(t, env.InColab())
}

func TestEnvironment_Predicates(t *testing.T) {
	tests := []struct {
		name   string
		env    Environment
		kaggle bool
		colab  bool
	}{
		{name: "plain machine"},
		{name: "kaggle without proxy", env: Environment{KernelRunType: "Batch"}},
		{name: "kaggle", env: Environment{KernelRunType: "Batch", DataProxyURL: "http://p"}, kaggle: true},
		{name: "colab", env: Environment{ColabReleaseTag: "release-colab_20240101"}, colab: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kaggle, tt.env.InKaggleNotebook())
			assert.Equal(t, tt.colab, tt.env.InColab())
		})
	}
}

func TestParseFlag(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"", false},
		{"0", false},
		{"false", false},
		{"nope", false},
		{"1", true},
		{"true", true},
		{"TRUE", true},
		{" yes ", true},
		{"on", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseFlag(tt.in))
		})
	}
}

func TestEnvFlag(t *testing.T) {
	t.Setenv(DisableColabCacheEnv, "1")
	assert.True(t, EnvFlag(DisableColabCacheEnv))
	t.Setenv(DisableColabCacheEnv, "")
	assert.False(t, EnvFlag(DisableColabCacheEnv))
}

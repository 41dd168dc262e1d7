// Package platform detects the runtime environment kagglehub is running in
// (a Kaggle notebook, Google Colab, or neither) from process environment
// variables.
package platform

import (
	"os"
	"strconv"
	"strings"
)

// Environment variables consulted during detection.
const (
	KernelRunTypeEnv    = "KAGGLE_KERNEL_RUN_TYPE"
	DataProxyURLEnv     = "KAGGLE_DATA_PROXY_URL"
	DataProxyTokenEnv   = "KAGGLE_DATA_PROXY_TOKEN"
	IAPTokenEnv         = "KAGGLE_IAP_TOKEN"
	UserSecretsTokenEnv = "KAGGLE_USER_SECRETS_TOKEN"
	ColabReleaseTagEnv  = "COLAB_RELEASE_TAG"
	ColabRuntimeAddrEnv = "TBE_RUNTIME_ADDR"

	DisableKaggleCacheEnv = "DISABLE_KAGGLE_CACHE"
	DisableColabCacheEnv  = "DISABLE_COLAB_CACHE"
	KaggleMountFolderEnv  = "KAGGLE_CACHE_MOUNT_FOLDER"
	ColabMountFolderEnv   = "COLAB_CACHE_MOUNT_FOLDER"
)

// DefaultMountFolder is where both notebook runtimes mount attached resources.
const DefaultMountFolder = "/kaggle/input"

// Environment is a snapshot of the runtime-specific variables.
type Environment struct {
	KernelRunType    string
	DataProxyURL     string
	DataProxyToken   string
	IAPToken         string
	UserSecretsToken string
	ColabReleaseTag  string
	ColabRuntimeAddr string
}

// Detect reads the current process environment.
func Detect() Environment {
	return Environment{
		KernelRunType:    os.Getenv(KernelRunTypeEnv),
		DataProxyURL:     strings.TrimRight(os.Getenv(DataProxyURLEnv), "/"),
		DataProxyToken:   os.Getenv(DataProxyTokenEnv),
		IAPToken:         os.Getenv(IAPTokenEnv),
		UserSecretsToken: os.Getenv(UserSecretsTokenEnv),
		ColabReleaseTag:  os.Getenv(ColabReleaseTagEnv),
		ColabRuntimeAddr: os.Getenv(ColabRuntimeAddrEnv),
	}
}

// InKaggleNotebook reports whether the process runs inside a Kaggle notebook
// with access to the data proxy.
func (e Environment) InKaggleNotebook() bool {
	return e.KernelRunType != "" && e.DataProxyURL != ""
}

// InColab reports whether the process runs inside Google Colab.
func (e Environment) InColab() bool {
	return e.ColabReleaseTag != ""
}

// ParseFlag interprets a boolean environment value. Unset and unrecognised
// values are false.
func ParseFlag(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "yes", "y", "on":
		return true
	}
	b, err := strconv.ParseBool(strings.TrimSpace(value))
	return err == nil && b
}

// EnvFlag reads name with ParseFlag.
func EnvFlag(name string) bool {
	return ParseFlag(os.Getenv(name))
}

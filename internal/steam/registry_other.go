//go:build !windows

package steam

// RegistryInstallPath has no registry to consult outside Windows.
func RegistryInstallPath() (string, bool) {
	return "", false
}

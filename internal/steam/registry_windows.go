//go:build windows

package steam

import (
	"path/filepath"

	"golang.org/x/sys/windows/registry"
)

var registryLocations = []struct {
	root  registry.Key
	path  string
	value string
}{
	{registry.CURRENT_USER, `Software\Valve\Steam`, "SteamPath"},
	{registry.LOCAL_MACHINE, `SOFTWARE\WOW6432Node\Valve\Steam`, "InstallPath"},
	{registry.LOCAL_MACHINE, `SOFTWARE\Valve\Steam`, "InstallPath"},
}

// RegistryInstallPath returns the Steam client directory recorded in the
// registry. SteamPath is stored with forward slashes.
func RegistryInstallPath() (string, bool) {
	for _, loc := range registryLocations {
		k, err := registry.OpenKey(loc.root, loc.path, registry.QUERY_VALUE)
		if err != nil {
			continue
		}
		v, _, err := k.GetStringValue(loc.value)
		k.Close()
		if err != nil || v == "" {
			continue
		}
		return filepath.Clean(filepath.FromSlash(v)), true
	}
	return "", false
}

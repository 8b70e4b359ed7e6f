package assets

import (
	"embed"
	"fmt"
)

// Scaffold templates. File names drop the leading dot of their target.
const (
	Crontab        = "crontab"
	Gitignore      = "gitignore"
	SettingsCommon = "settings.common.php"
	SettingsLocal  = "settings.local.php"
)

//go:embed scaffold
var assetsFS embed.FS

// ReadTemplate reads an embedded scaffold template.
func ReadTemplate(name string) (string, error) {
	data, err := assetsFS.ReadFile("scaffold/" + name)
	if err != nil {
		return "", fmt.Errorf("failed to read template %s: %w", name, err)
	}
	return string(data), nil
}

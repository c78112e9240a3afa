package configuration

import (
	"errors"
	"io/fs"

	"post-manager/infrastructure/logger"

	"github.com/subosito/gotenv"
)

// LoadEnvFromFile loads KEY=VALUE files such as config.env or .env.
// Missing files are skipped and variables already in the environment win.
func LoadEnvFromFile(paths ...string) []string {
	var loaded []string
	for _, p := range paths {
		if err := gotenv.Load(p); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				logger.GetLogger().WithField("file", p).WithField("error", err).Warn("Failed parsing env file")
			}
			continue
		}
		loaded = append(loaded, p)
	}
	return loaded
}

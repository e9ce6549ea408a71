package technique

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/zjrosen/mise/internal/log"
	technique "github.com/zjrosen/mise/internal/technique/domain"
)

// UserCatalogBaseDir returns ~/.mise, the root of user technique catalogs.
// Returns empty string if home directory cannot be determined.
func UserCatalogBaseDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".mise")
}

// LoadUserCatalogFromDir loads user techniques from baseDir/techniques.
// A missing directory is not an error and returns nil, nil, nil. Invalid
// catalogs are logged and skipped; the returned FS is still usable.
func LoadUserCatalogFromDir(baseDir string) ([]*technique.Technique, fs.FS, error) {
	if baseDir == "" {
		return nil, nil, nil
	}

	info, err := os.Stat(filepath.Join(baseDir, catalogRoot))
	if err != nil || !info.IsDir() {
		return nil, nil, nil
	}

	userFS := os.DirFS(baseDir)

	techniques, err := LoadCatalogFromYAMLWithSource(userFS, technique.SourceUser)
	if err != nil {
		log.Warn(log.CatTechnique, "loading user techniques", "error", err.Error(), "dir", baseDir)
		return nil, userFS, nil
	}

	log.Debug(log.CatTechnique, "loaded user techniques", "count", len(techniques), "dir", baseDir)
	return techniques, userFS, nil
}
